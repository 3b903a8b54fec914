package main

import (
	"context"
	"html/template"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gst-reporter/gst-reporter/internal/app"
	"github.com/gst-reporter/gst-reporter/internal/auth"
	"github.com/gst-reporter/gst-reporter/internal/charts"
	"github.com/gst-reporter/gst-reporter/internal/dashboard"
	"github.com/gst-reporter/gst-reporter/internal/ledger"
	"github.com/gst-reporter/gst-reporter/internal/observability"
	"github.com/gst-reporter/gst-reporter/internal/platform/cache"
	"github.com/gst-reporter/gst-reporter/internal/platform/db"
	"github.com/gst-reporter/gst-reporter/internal/reports"
	"github.com/gst-reporter/gst-reporter/internal/reports/export"
	"github.com/gst-reporter/gst-reporter/internal/shared"
	"github.com/gst-reporter/gst-reporter/internal/view"
	"github.com/gst-reporter/gst-reporter/report"
)

type barRenderer struct{}

func (barRenderer) Bars(width, height int, series []float64, labels []string, opts charts.BarOpts) (template.HTML, error) {
	return charts.Bars(width, height, series, labels, opts)
}

type pieRenderer struct{}

func (pieRenderer) Pie(size int, values []float64, labels []string, opts charts.PieOpts) (template.HTML, error) {
	return charts.Pie(size, values, labels, opts)
}

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	if err := db.Migrate(cfg.PGDSN); err != nil {
		logger.Error("run migrations", slog.Any("error", err))
		os.Exit(1)
	}

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr, cfg.RedisPassword)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, "gst_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)

	templates, err := view.NewEngine()
	if err != nil {
		logger.Error("parse templates", slog.Any("error", err))
		os.Exit(1)
	}

	authRepo := auth.NewRepository(dbpool)
	authService := auth.NewService(authRepo)
	authHandler := auth.NewHandler(logger, authService, templates, sessionManager, csrfManager)

	worksetCache := ledger.NewCache(redisClient, cfg.WorksetTTL)

	reportRepo := reports.NewRepository(dbpool)
	reportCache := reports.NewCache(redisClient, 10*time.Minute)
	reportService := reports.NewService(reportRepo, reportCache, logger)

	gotenberg := report.NewClient(cfg.GotenbergURL)
	pdfExporter := &export.PDFExporter{Renderer: gotenberg}

	dashboardHandler := dashboard.NewHandler(
		logger,
		templates,
		csrfManager,
		worksetCache,
		reportService,
		barRenderer{},
		pieRenderer{},
		pdfExporter,
	)

	metrics := observability.NewMetrics()

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		Templates:        templates,
		SessionManager:   sessionManager,
		CSRFManager:      csrfManager,
		AuthHandler:      authHandler,
		DashboardHandler: dashboardHandler,
		Metrics:          metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
