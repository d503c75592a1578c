package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHealthEndpoint(t *testing.T) {
	router, _ := setupTestRouter()

	w := perform(router, http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status": "ok", "service": "catalogue-service"}`, w.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	router, _ := setupTestRouter()

	w := perform(router, http.MethodGet, "/metrics", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "go_goroutines")
}

func TestCorsConfig(t *testing.T) {
	wildcard := corsConfig([]string{"*"})
	assert.True(t, wildcard.AllowAllOrigins)
	assert.False(t, wildcard.AllowCredentials)
	assert.Empty(t, wildcard.AllowOrigins)

	empty := corsConfig(nil)
	assert.True(t, empty.AllowAllOrigins)

	listed := corsConfig([]string{"https://relatos.example"})
	assert.False(t, listed.AllowAllOrigins)
	assert.True(t, listed.AllowCredentials)
	assert.Equal(t, []string{"https://relatos.example"}, listed.AllowOrigins)
}

func TestCorsPreflight(t *testing.T) {
	router, _ := setupTestRouter()

	req, _ := http.NewRequest(http.MethodOptions, "/books", nil)
	req.Header.Set("Origin", "https://relatos.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPatch)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
