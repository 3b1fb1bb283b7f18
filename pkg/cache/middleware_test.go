package cache

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func countingHandler(calls *int32, status int, body string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(calls, 1)
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	})
}

func TestMiddlewareCachesGetResponses(t *testing.T) {
	var calls int32
	c := NewLRUCache(10, time.Minute)
	handler := Middleware(c)(countingHandler(&calls, http.StatusOK, `{"size":1}`))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/entries?limit=5", nil))
	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
	assert.Equal(t, `{"size":1}`, rec.Body.String())

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/entries?limit=5", nil))
	assert.Equal(t, "HIT", rec.Header().Get("X-Cache"))
	assert.Equal(t, `{"size":1}`, rec.Body.String())
	assert.Equal(t, int32(1), calls)

	// Different query string is a different key.
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/entries?limit=10", nil))
	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
	assert.Equal(t, int32(2), calls)
}

func TestMiddlewareSkipsNon200(t *testing.T) {
	var calls int32
	c := NewLRUCache(10, time.Minute)
	handler := Middleware(c)(countingHandler(&calls, http.StatusNotFound, "not found"))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/entries/x", nil))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/entries/x", nil))
	assert.Equal(t, int32(2), calls)
	assert.Equal(t, 0, c.Size())
}

func TestMiddlewareWriteInvalidates(t *testing.T) {
	var calls int32
	c := NewLRUCache(10, time.Minute)
	handler := Middleware(c)(countingHandler(&calls, http.StatusOK, "ok"))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/records", nil))
	assert.Equal(t, 1, c.Size())

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/changes/1:analyze", nil))
	assert.Equal(t, 0, c.Size())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/records", nil))
	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
}

func TestManagerDisabled(t *testing.T) {
	assert.Nil(t, NewManager(nil))
	assert.Nil(t, NewManager(&Config{Enabled: false}))

	// Nil manager middleware is a pass-through and does not panic.
	var m *Manager
	m.InvalidateAll()
	var calls int32
	handler := m.AuditMiddleware()(countingHandler(&calls, http.StatusOK, "ok"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/entries", nil))
	assert.Empty(t, rec.Header().Get("X-Cache"))
	assert.Equal(t, int32(1), calls)
}

func TestConfigFromEnvOverrides(t *testing.T) {
	t.Setenv("FAQPROV_CACHE_ENABLED", "false")
	t.Setenv("FAQPROV_CACHE_AUDIT_TTL", "120")
	t.Setenv("FAQPROV_CACHE_MAX_SIZE", "50")

	cfg := ConfigFromEnv()
	assert.False(t, cfg.Enabled)
	assert.Equal(t, 120*time.Second, cfg.AuditTTL)
	assert.Equal(t, 60*time.Second, cfg.ImpactTTL)
	assert.Equal(t, 50, cfg.MaxSize)
}
