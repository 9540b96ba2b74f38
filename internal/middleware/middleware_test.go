package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	appErrors "github.com/carehub/storefront/pkg/errors"
	"github.com/carehub/storefront/pkg/logger"
	"github.com/carehub/storefront/pkg/metrics"
	"github.com/carehub/storefront/pkg/response"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func observeLogs(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	core, recorded := observer.New(zap.DebugLevel)
	logger.Replace(zap.New(core))
	t.Cleanup(func() { logger.Replace(nil) })
	return recorded
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) response.Response {
	t.Helper()
	var payload response.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	return payload
}

func TestRecoveryMiddleware(t *testing.T) {
	logs := observeLogs(t)

	r := gin.New()
	r.Use(Recovery())
	r.GET("/panic", func(c *gin.Context) {
		panic("boom")
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

	require.Equal(t, http.StatusInternalServerError, w.Code)
	payload := decodeEnvelope(t, w)
	require.False(t, payload.Success)
	require.Equal(t, "Internal server error", payload.Message)
	require.Equal(t, "boom", payload.Error)

	require.Equal(t, 1, logs.FilterMessage("panic").Len())
}

func TestErrorsMiddlewareRendersAttachedError(t *testing.T) {
	observeLogs(t)

	r := gin.New()
	r.Use(Errors())
	r.GET("/fail", func(c *gin.Context) {
		_ = c.Error(appErrors.NewNotFound("Banner"))
	})
	r.GET("/ok", func(c *gin.Context) {
		_ = c.Error(errors.New("ignored"))
		c.Status(http.StatusNoContent)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/fail", nil))
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Equal(t, "Banner not found", decodeEnvelope(t, w).Message)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok", nil))
	require.Equal(t, http.StatusNoContent, w.Code)
}

func TestNotFoundHandler(t *testing.T) {
	r := gin.New()
	r.NoRoute(NotFoundHandler)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/missing", nil))

	require.Equal(t, http.StatusNotFound, w.Code)
	payload := decodeEnvelope(t, w)
	require.False(t, payload.Success)
	require.Equal(t, "Route GET /missing not found", payload.Message)
	require.Equal(t, "NOT_FOUND", payload.Error)
}

func TestLoggerMiddleware(t *testing.T) {
	logs := observeLogs(t)

	r := gin.New()
	r.Use(Logger())
	r.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})
	r.GET("/bad", func(c *gin.Context) {
		c.Status(http.StatusBadRequest)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping?x=1", nil))
	require.Equal(t, "pong", w.Body.String())

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/bad", nil))

	entries := logs.FilterMessage("request").All()
	require.Len(t, entries, 2)
	require.Equal(t, zap.InfoLevel, entries[0].Level)
	require.Equal(t, "/ping?x=1", entries[0].ContextMap()["path"])
	require.Equal(t, "http", entries[0].ContextMap()["module"])
	require.Equal(t, zap.WarnLevel, entries[1].Level)
}

func TestMetricsMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(Metrics())
	r.GET("/api/banners/:id", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	before := latencySeries(t, "/api/banners/:id")
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/banners/7", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/banners/8", nil))

	// both requests share the route template series
	require.Equal(t, before+1, latencySeries(t, "/api/banners/:id"))
	require.NotNil(t, metrics.APILatency)
}

func latencySeries(t *testing.T, path string) int {
	t.Helper()
	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)

	count := 0
	for _, family := range families {
		if family.GetName() != "storefront_api_latency_seconds" {
			continue
		}
		for _, m := range family.GetMetric() {
			for _, label := range m.GetLabel() {
				if label.GetName() == "path" && label.GetValue() == path {
					count++
				}
			}
		}
	}
	return count
}

func TestSecurityHeaders(t *testing.T) {
	r := gin.New()
	r.Use(SecurityHeaders())
	r.GET("/ping", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

	require.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	require.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	require.Equal(t, DefaultContentSecurityPolicy, w.Header().Get("Content-Security-Policy"))
	require.Equal(t, "no-referrer", w.Header().Get("Referrer-Policy"))
	require.Equal(t, "no-store", w.Header().Get("Cache-Control"))
}

func TestCORSAllowAll(t *testing.T) {
	r := gin.New()
	r.Use(CORS(nil))
	r.GET("/resource", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	preflight := httptest.NewRecorder()
	r.ServeHTTP(preflight, httptest.NewRequest(http.MethodOptions, "/resource", nil))
	require.Equal(t, http.StatusNoContent, preflight.Code)
	require.Equal(t, "*", preflight.Header().Get("Access-Control-Allow-Origin"))
	require.Contains(t, preflight.Header().Get("Access-Control-Allow-Methods"), "PUT")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/resource", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSRestrictedOrigins(t *testing.T) {
	r := gin.New()
	r.Use(CORS([]string{"http://localhost:3000/"}))
	r.GET("/resource", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	allowed := httptest.NewRequest(http.MethodGet, "/resource", nil)
	allowed.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, allowed)
	require.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))

	denied := httptest.NewRequest(http.MethodGet, "/resource", nil)
	denied.Header.Set("Origin", "http://evil.example")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, denied)
	require.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}
