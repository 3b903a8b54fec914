package app

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gst-reporter/gst-reporter/internal/shared"
	_ "github.com/gst-reporter/gst-reporter/testing"
)

type middlewareFixture struct {
	router   http.Handler
	sessions *shared.SessionManager
	csrf     *shared.CSRFManager
}

func newMiddlewareFixture(t *testing.T) *middlewareFixture {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	sessions := shared.NewSessionManager(client, "test_session", "secret", time.Hour, false)
	csrf := shared.NewCSRFManager("csrfsecret")
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	router := chi.NewRouter()
	router.Use(MiddlewareStack(MiddlewareConfig{
		Logger:         logger,
		SessionManager: sessions,
		CSRFManager:    csrf,
	})...)
	router.Get("/open", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	router.Post("/submit", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	router.Group(func(r chi.Router) {
		r.Use(RequireUser)
		r.Get("/private", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
	})

	return &middlewareFixture{router: router, sessions: sessions, csrf: csrf}
}

// seedSession creates a session, runs mutate against it and returns its cookie.
func (f *middlewareFixture) seedSession(t *testing.T, mutate func(sess *shared.Session)) *http.Cookie {
	t.Helper()
	ctx := context.Background()
	seedReq := httptest.NewRequest(http.MethodGet, "/open", nil)
	sess, err := f.sessions.Load(ctx, seedReq)
	require.NoError(t, err)
	if mutate != nil {
		mutate(sess)
	}
	seedRes := httptest.NewRecorder()
	require.NoError(t, f.sessions.Commit(ctx, seedRes, seedReq, sess))
	for _, c := range seedRes.Result().Cookies() {
		if c.Name == f.sessions.CookieName() {
			return c
		}
	}
	t.Fatal("seed session cookie not set")
	return nil
}

func TestMiddlewareStackSetsSecurityHeaders(t *testing.T) {
	f := newMiddlewareFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/open", nil)
	res := httptest.NewRecorder()
	f.router.ServeHTTP(res, req)

	require.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, "DENY", res.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", res.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "default-src 'self'", res.Header().Get("Content-Security-Policy"))
}

func TestMiddlewareStackRejectsMissingCSRFToken(t *testing.T) {
	f := newMiddlewareFixture(t)
	cookie := f.seedSession(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/submit", strings.NewReader(""))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(cookie)
	res := httptest.NewRecorder()
	f.router.ServeHTTP(res, req)

	assert.Equal(t, http.StatusForbidden, res.Code)
}

func TestMiddlewareStackAcceptsValidCSRFToken(t *testing.T) {
	f := newMiddlewareFixture(t)

	var token string
	cookie := f.seedSession(t, func(sess *shared.Session) {
		var err error
		token, err = f.csrf.EnsureToken(context.Background(), sess)
		require.NoError(t, err)
	})

	form := url.Values{shared.CSRFFormField: {token}}
	req := httptest.NewRequest(http.MethodPost, "/submit", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(cookie)
	res := httptest.NewRecorder()
	f.router.ServeHTTP(res, req)

	assert.Equal(t, http.StatusOK, res.Code)
}

func TestRequireUserRedirectsAnonymous(t *testing.T) {
	f := newMiddlewareFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	res := httptest.NewRecorder()
	f.router.ServeHTTP(res, req)

	require.Equal(t, http.StatusSeeOther, res.Code)
	assert.Equal(t, "/welcome", res.Header().Get("Location"))
}

func TestRequireUserAllowsAuthenticated(t *testing.T) {
	f := newMiddlewareFixture(t)
	cookie := f.seedSession(t, func(sess *shared.Session) {
		sess.SetUser("ramesh")
	})

	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.AddCookie(cookie)
	res := httptest.NewRecorder()
	f.router.ServeHTTP(res, req)

	assert.Equal(t, http.StatusOK, res.Code)
}
