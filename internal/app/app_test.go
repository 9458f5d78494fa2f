package app

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freshmart/storefront/internal/shared"
	_ "github.com/freshmart/storefront/internal/testing/guard"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("SESSION_SECRET", "s")
	t.Setenv("CSRF_SECRET", "c")
	t.Setenv("BACKEND_URL", "http://api.local")
	t.Setenv("PG_DSN", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "http://api.local", cfg.BackendURL)
	assert.Equal(t, 300*time.Millisecond, cfg.SearchDebounce)
	assert.Equal(t, 10*time.Second, cfg.BackendTimeout)
	assert.False(t, cfg.HasPostgres())
	assert.False(t, cfg.IsProduction())
}

func TestLoggerTagsService(t *testing.T) {
	var buf bytes.Buffer
	cfg := &Config{AppEnv: "staging", LogFormat: "json", LogLevel: slog.LevelInfo}
	logger := newLogger(cfg, "worker", &buf)

	logger.Debug("hidden")
	logger.Info("order placed", slog.Int64("order_id", 9))

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "order placed", rec["msg"])
	assert.Equal(t, "storefront", rec["service"])
	assert.Equal(t, "staging", rec["env"])
	assert.Equal(t, "worker", rec["component"])
	assert.EqualValues(t, 9, rec["order_id"])
}

func TestLoadConfigLogLevel(t *testing.T) {
	t.Setenv("SESSION_SECRET", "s")
	t.Setenv("CSRF_SECRET", "c")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("SERVICE_NAME", "storefront-eu")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, "storefront-eu", cfg.ServiceName)
}

func TestLoadConfigRequiresSecrets(t *testing.T) {
	t.Setenv("SESSION_SECRET", "")
	t.Setenv("CSRF_SECRET", "c")
	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestInTestModeFromGuard(t *testing.T) {
	RefreshTestMode()
	assert.True(t, InTestMode())
}

type harness struct {
	sessions *shared.SessionManager
	csrf     *shared.CSRFManager
	router   http.Handler
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	h := &harness{
		sessions: shared.NewSessionManager(client, "sid", "secret", time.Hour, false),
		csrf:     shared.NewCSRFManager("csrf"),
	}
	r := chi.NewRouter()
	r.Use(SessionMiddleware(nil, h.sessions))
	r.Use(CSRFMiddleware(nil, h.csrf))
	r.Get("/csrf", func(w http.ResponseWriter, r *http.Request) {
		token, err := h.csrf.EnsureToken(r.Context(), shared.SessionFromContext(r.Context()))
		require.NoError(t, err)
		_, _ = w.Write([]byte(token))
	})
	r.Post("/thing", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	r.With(RequireUser).Get("/private", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	h.router = r
	return h
}

func TestCSRFHeaderRequiredOnUnsafeMethods(t *testing.T) {
	h := newHarness(t)

	rr := httptest.NewRecorder()
	h.router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/csrf", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	token := rr.Body.String()
	cookies := rr.Result().Cookies()
	require.NotEmpty(t, cookies)

	req := httptest.NewRequest(http.MethodPost, "/thing", nil)
	req.AddCookie(cookies[0])
	rr = httptest.NewRecorder()
	h.router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Contains(t, rr.Body.String(), "Session expired")

	req = httptest.NewRequest(http.MethodPost, "/thing", nil)
	req.AddCookie(cookies[0])
	req.Header.Set(shared.CSRFHeader, token)
	rr = httptest.NewRecorder()
	h.router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusNoContent, rr.Code)
}

func TestRequireUser(t *testing.T) {
	h := newHarness(t)
	rr := httptest.NewRecorder()
	h.router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/private", nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Contains(t, rr.Body.String(), "Please sign in to continue")

	sess, err := h.sessions.Load(context.Background(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	next := RequireUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	sess.SignIn(3, "a@b.c", "A")
	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req = req.WithContext(shared.ContextWithSession(req.Context(), sess))
	rr = httptest.NewRecorder()
	next.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
}
