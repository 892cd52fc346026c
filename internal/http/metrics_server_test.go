package http

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allisson/marketplace/internal/metrics"
)

func TestMetricsServer(t *testing.T) {
	gin.SetMode(gin.TestMode)

	provider, err := metrics.NewProvider("test_app")
	require.NoError(t, err)

	server := NewMetricsServer("127.0.0.1", 0, slog.New(slog.DiscardHandler), provider)

	t.Run("Healthz", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		server.Handler().ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"status":"healthy"}`, w.Body.String())
	})

	t.Run("Metrics", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
		server.Handler().ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestMetricsServer_WithoutProvider(t *testing.T) {
	gin.SetMode(gin.TestMode)

	server := NewMetricsServer("127.0.0.1", 0, slog.New(slog.DiscardHandler), nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	server.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
