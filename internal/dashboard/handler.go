// Package dashboard serves the upload, aggregation and history pages.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"github.com/gst-reporter/gst-reporter/internal/charts"
	"github.com/gst-reporter/gst-reporter/internal/ledger"
	"github.com/gst-reporter/gst-reporter/internal/money"
	"github.com/gst-reporter/gst-reporter/internal/platform/httpx"
	"github.com/gst-reporter/gst-reporter/internal/reports"
	"github.com/gst-reporter/gst-reporter/internal/reports/export"
	"github.com/gst-reporter/gst-reporter/internal/shared"
	"github.com/gst-reporter/gst-reporter/internal/view"
)

// Upload size cap, matching typical small spreadsheet exports.
const maxUploadBytes = 10 << 20

// ReportService defines the persistence contract used by the handler.
type ReportService interface {
	Save(ctx context.Context, username string, totals reports.Totals) (int64, error)
	History(ctx context.Context, username string) ([]reports.Report, error)
	Monthly(ctx context.Context, username string) ([]reports.MonthlyBucket, error)
	Clear(ctx context.Context, username string) (int64, error)
}

// BarRenderer draws a single-series bar chart.
type BarRenderer interface {
	Bars(width, height int, series []float64, labels []string, opts charts.BarOpts) (template.HTML, error)
}

// PieRenderer draws a share chart.
type PieRenderer interface {
	Pie(size int, values []float64, labels []string, opts charts.PieOpts) (template.HTML, error)
}

// PDFExporter renders the working table to PDF bytes.
type PDFExporter interface {
	RenderReport(ctx context.Context, ws *ledger.Workset) ([]byte, error)
}

// Handler wires the authenticated dashboard endpoints.
type Handler struct {
	logger      *slog.Logger
	templates   *view.Engine
	csrfManager *shared.CSRFManager
	worksets    *ledger.Cache
	service     ReportService
	bars        BarRenderer
	pies        PieRenderer
	pdf         PDFExporter
	now         func() time.Time
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, templates *view.Engine, csrf *shared.CSRFManager, worksets *ledger.Cache, service ReportService, bars BarRenderer, pies PieRenderer, pdf PDFExporter) *Handler {
	return &Handler{
		logger:      logger,
		templates:   templates,
		csrfManager: csrf,
		worksets:    worksets,
		service:     service,
		bars:        bars,
		pies:        pies,
		pdf:         pdf,
		now:         time.Now,
	}
}

// MountRoutes registers dashboard routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.showDashboard)
	r.Post("/upload", h.handleUpload)
	r.Post("/rate", h.handleRate)
	r.Post("/reports/save", h.handleSave)
	r.Get("/export/pdf", h.exportPDF)
	r.Get("/export/excel", h.exportExcel)
	r.Get("/export/csv", h.exportCSV)
	r.Get("/history", h.showHistory)
	r.Post("/history/clear", h.handleClear)
}

type totalsView struct {
	TotalAmount string
	TotalGST    string
	GrandTotal  string
}

type dashboardData struct {
	Workset        *ledger.Workset
	Totals         totalsView
	NeedsRate      bool
	PendingColumns []string
	Rates          []int
	BreakdownChart template.HTML
	ShareChart     template.HTML
}

func (h *Handler) showDashboard(w http.ResponseWriter, r *http.Request) {
	username := shared.SessionFromContext(r.Context()).User()
	data := dashboardData{Rates: ledger.Rates}

	ws, err := h.worksets.Get(r.Context(), username)
	switch {
	case err == nil:
		data.Workset = ws
		data.Totals = totalsView{
			TotalAmount: money.FormatRs(ws.Totals.TotalAmount),
			TotalGST:    money.FormatRs(ws.Totals.TotalGST),
			GrandTotal:  money.FormatRs(ws.Totals.GrandTotal),
		}
		h.renderCharts(&data, ws)
	case errors.Is(err, ledger.ErrNoWorkset):
		if table, tErr := h.worksets.GetTable(r.Context(), username); tErr == nil {
			data.NeedsRate = true
			data.PendingColumns = table.Columns
		}
	default:
		h.logger.Error("load workset", slog.Any("error", err))
	}

	h.renderPage(w, r, "pages/dashboard.html", "GST Reporter", data, http.StatusOK)
}

func (h *Handler) renderCharts(data *dashboardData, ws *ledger.Workset) {
	breakdown, err := h.bars.Bars(0, 0,
		[]float64{ws.Totals.TotalAmount, ws.Totals.TotalGST, ws.Totals.GrandTotal},
		[]string{"Amount", "GST", "Total"},
		charts.BarOpts{Title: "GST Breakdown", Description: "Amount, GST and grand total of the current upload"})
	if err != nil {
		h.logger.Warn("render breakdown chart", slog.Any("error", err))
	} else {
		data.BreakdownChart = breakdown
	}

	share, err := h.pies.Pie(0,
		[]float64{ws.Totals.TotalAmount, ws.Totals.TotalGST},
		[]string{"Amount", "GST"},
		charts.PieOpts{Title: "Amount vs GST Share", Description: "Share of amount versus GST"})
	if err != nil {
		h.logger.Warn("render share chart", slog.Any("error", err))
	} else {
		data.ShareChart = share
	}
}

func (h *Handler) handleUpload(w http.ResponseWriter, r *http.Request) {
	username := shared.SessionFromContext(r.Context()).User()
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		h.flashError(r, "Upload too large or malformed")
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		h.flashError(r, "Choose a file to upload")
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	defer func() {
		_ = file.Close()
	}()

	table, err := ledger.ParseUpload(header.Filename, file)
	if err != nil {
		h.flashError(r, uploadErrorMessage(err))
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	if table.ColumnIndex(ledger.AmountColumn) < 0 {
		h.flashError(r, "File must contain 'Amount' column")
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	// A fresh upload always replaces whatever was pending.
	_ = h.worksets.Drop(r.Context(), username)
	_ = h.worksets.DropTable(r.Context(), username)

	if table.HasGSTColumn() {
		ws, err := ledger.Aggregate(table, 0)
		if err != nil {
			h.flashError(r, uploadErrorMessage(err))
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		if err := h.worksets.Put(r.Context(), username, ws); err != nil {
			h.logger.Error("cache workset", slog.Any("error", err))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
	} else {
		// No tax column: park the table until a rate is chosen.
		if err := h.worksets.PutTable(r.Context(), username, table); err != nil {
			h.logger.Error("cache upload", slog.Any("error", err))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) handleRate(w http.ResponseWriter, r *http.Request) {
	username := shared.SessionFromContext(r.Context()).User()
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	rate, err := strconv.Atoi(r.PostFormValue("rate"))
	if err != nil || !ledger.ValidRate(rate) {
		h.flashError(r, "GST rate must be one of 5, 12, 18 or 28")
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	table, err := h.worksets.GetTable(r.Context(), username)
	if err != nil {
		h.flashError(r, "Upload a file first")
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	ws, err := ledger.Aggregate(table, rate)
	if err != nil {
		h.flashError(r, uploadErrorMessage(err))
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	if err := h.worksets.Put(r.Context(), username, ws); err != nil {
		h.logger.Error("cache workset", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	_ = h.worksets.DropTable(r.Context(), username)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) handleSave(w http.ResponseWriter, r *http.Request) {
	username := shared.SessionFromContext(r.Context()).User()
	ws, err := h.worksets.Get(r.Context(), username)
	if err != nil {
		h.flashError(r, "Nothing to save, upload a file first")
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	if _, err := h.service.Save(r.Context(), username, ws.Totals); err != nil {
		h.logger.Error("save report", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		sess.AddFlash(shared.FlashMessage{Kind: "success", Message: "Saved!"})
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) exportPDF(w http.ResponseWriter, r *http.Request) {
	username := shared.SessionFromContext(r.Context()).User()
	ws, err := h.worksets.Get(r.Context(), username)
	if err != nil {
		httpx.Problem(w, http.StatusNotFound, "No Upload", "upload a file before exporting")
		return
	}
	pdf, err := h.pdf.RenderReport(r.Context(), ws)
	if err != nil {
		h.logger.Error("render pdf", slog.Any("error", err))
		httpx.Problem(w, http.StatusBadGateway, "PDF Render Failed", "")
		return
	}
	name := export.PDFFilename(h.now())
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", name))
	_, _ = w.Write(pdf)
}

func (h *Handler) exportExcel(w http.ResponseWriter, r *http.Request) {
	username := shared.SessionFromContext(r.Context()).User()
	ws, err := h.worksets.Get(r.Context(), username)
	if err != nil {
		httpx.Problem(w, http.StatusNotFound, "No Upload", "upload a file before exporting")
		return
	}
	workbook, err := export.WriteExcel(ws)
	if err != nil {
		h.logger.Error("render excel", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Excel Render Failed", "")
		return
	}
	name := export.ExcelFilename(h.now())
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", name))
	_, _ = w.Write(workbook)
}

func (h *Handler) exportCSV(w http.ResponseWriter, r *http.Request) {
	username := shared.SessionFromContext(r.Context()).User()
	ws, err := h.worksets.Get(r.Context(), username)
	if err != nil {
		httpx.Problem(w, http.StatusNotFound, "No Upload", "upload a file before exporting")
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", "attachment; filename=report.csv")
	if err := export.WriteCSV(w, ws); err != nil {
		h.logger.Error("render csv", slog.Any("error", err))
	}
}

type historyRow struct {
	SrNo        int
	Date        string
	TotalAmount string
	TotalGST    string
	GrandTotal  string
}

type monthlyRow struct {
	SrNo        int
	Month       string
	TotalAmount string
	TotalGST    string
	GrandTotal  string
}

type historyData struct {
	Rows         []historyRow
	Monthly      []monthlyRow
	MonthlyChart template.HTML
}

func (h *Handler) showHistory(w http.ResponseWriter, r *http.Request) {
	username := shared.SessionFromContext(r.Context()).User()

	var (
		saved   []reports.Report
		buckets []reports.MonthlyBucket
	)
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		saved, err = h.service.History(ctx, username)
		return err
	})
	g.Go(func() error {
		var err error
		buckets, err = h.service.Monthly(ctx, username)
		return err
	})
	if err := g.Wait(); err != nil {
		h.logger.Error("load history", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	data := historyData{}
	for i, report := range saved {
		data.Rows = append(data.Rows, historyRow{
			SrNo:        i + 1,
			Date:        report.Date,
			TotalAmount: money.Format(report.TotalAmount),
			TotalGST:    money.Format(report.TotalGST),
			GrandTotal:  money.Format(report.GrandTotal),
		})
	}
	series := make([]float64, 0, len(buckets))
	labels := make([]string, 0, len(buckets))
	for i, bucket := range buckets {
		data.Monthly = append(data.Monthly, monthlyRow{
			SrNo:        i + 1,
			Month:       bucket.Month,
			TotalAmount: money.Format(bucket.TotalAmount),
			TotalGST:    money.Format(bucket.TotalGST),
			GrandTotal:  money.Format(bucket.GrandTotal),
		})
		series = append(series, bucket.GrandTotal)
		labels = append(labels, bucket.Month)
	}
	if len(series) > 0 {
		chart, err := h.bars.Bars(720, 0, series, labels,
			charts.BarOpts{Title: "Monthly Grand Total", Description: "Grand total per calendar month", Colors: []string{"#3498db"}})
		if err != nil {
			h.logger.Warn("render monthly chart", slog.Any("error", err))
		} else {
			data.MonthlyChart = chart
		}
	}

	h.renderPage(w, r, "pages/history.html", "History", data, http.StatusOK)
}

func (h *Handler) handleClear(w http.ResponseWriter, r *http.Request) {
	username := shared.SessionFromContext(r.Context()).User()
	deleted, err := h.service.Clear(r.Context(), username)
	if err != nil {
		h.logger.Error("clear history", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		sess.AddFlash(shared.FlashMessage{Kind: "success", Message: fmt.Sprintf("Cleared %d saved reports", deleted)})
	}
	http.Redirect(w, r, "/history", http.StatusSeeOther)
}

func (h *Handler) flashError(r *http.Request, message string) {
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		sess.AddFlash(shared.FlashMessage{Kind: "error", Message: message})
	}
}

func (h *Handler) renderPage(w http.ResponseWriter, r *http.Request, page, title string, data any, status int) {
	sess := shared.SessionFromContext(r.Context())
	csrfToken, _ := h.csrfManager.EnsureToken(r.Context(), sess)
	var flash *shared.FlashMessage
	if sess != nil {
		flash = sess.PopFlash()
	}
	viewData := view.TemplateData{
		Title:       title,
		Username:    sess.User(),
		CSRFToken:   csrfToken,
		Flash:       flash,
		CurrentPath: r.URL.Path,
		Data:        data,
	}
	if status != http.StatusOK {
		w.WriteHeader(status)
	}
	if err := h.templates.Render(w, page, viewData); err != nil {
		h.logger.Error("render page", slog.String("page", page), slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func uploadErrorMessage(err error) string {
	var parseErr *ledger.ParseError
	switch {
	case errors.Is(err, ledger.ErrMissingAmount):
		return "File must contain 'Amount' column"
	case errors.Is(err, ledger.ErrInvalidRate):
		return "GST rate must be one of 5, 12, 18 or 28"
	case errors.Is(err, ledger.ErrUnsupportedFormat):
		return "Upload a .csv, .txt or .xlsx file"
	case errors.Is(err, ledger.ErrEmptyTable):
		return "File contains no rows"
	case errors.As(err, &parseErr):
		return fmt.Sprintf("Row %d has a malformed Amount value", parseErr.Row)
	default:
		return "Could not read the uploaded file"
	}
}
