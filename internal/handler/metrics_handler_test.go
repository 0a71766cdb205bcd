package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthReportsPerDependencyStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)

	checks := map[string]HealthCheck{
		"mongodb": func(context.Context) error { return nil },
		"redis":   func(context.Context) error { return errors.New("connection refused") },
		"twilio":  nil,
	}
	h := NewMetricsHandler(nil, checks)

	r := gin.New()
	r.GET("/api/health", h.Health)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `"status":"degraded"`)
	assert.Contains(t, body, `"mongodb":"ok"`)
	assert.Contains(t, body, `"redis":"unavailable"`)
	assert.Contains(t, body, `"twilio":"not_configured"`)
}

func TestHealthAllDependenciesUp(t *testing.T) {
	gin.SetMode(gin.TestMode)

	ok := func(context.Context) error { return nil }
	h := NewMetricsHandler(nil, map[string]HealthCheck{"mongodb": ok, "redis": ok})

	r := gin.New()
	r.GET("/api/health", h.Health)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"healthy"`)
}
