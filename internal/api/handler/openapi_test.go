package handler_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	specpkg "github.com/mahectf/ctfboard/api"
	"github.com/mahectf/ctfboard/internal/api/handler"
)

func TestOpenAPIHandler_ReturnsJSON(t *testing.T) {
	t.Parallel()

	yamlSpec := []byte(`openapi: "3.0.3"
info:
  title: Test API
  version: "1.0.0"
paths: {}
`)
	h := handler.NewOpenAPIHandler(yamlSpec)
	req := httptest.NewRequest(http.MethodGet, "/openapi.json", nil)
	w := httptest.NewRecorder()

	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var result map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result), "response should be valid JSON")
	assert.Equal(t, "3.0.3", result["openapi"])
	assert.Contains(t, result, "paths")
}

func TestOpenAPIHandler_InvalidYAML_Returns500(t *testing.T) {
	t.Parallel()

	h := handler.NewOpenAPIHandler([]byte(`{{{not yaml at all}}}`))
	req := httptest.NewRequest(http.MethodGet, "/openapi.json", nil)
	w := httptest.NewRecorder()

	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "INTERNAL_ERROR", errorCode(t, w))
}

func TestOpenAPIHandler_EmbeddedSpecDocumentsRoutes(t *testing.T) {
	t.Parallel()

	h := handler.NewOpenAPIHandler(specpkg.OpenAPISpec)
	req := httptest.NewRequest(http.MethodGet, "/openapi.json", nil)
	w := httptest.NewRecorder()

	h.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var result map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	paths := result["paths"].(map[string]interface{})
	for _, p := range []string{
		"/health",
		"/api/teams/register",
		"/api/auth/sign-in",
		"/api/challenges/{category}",
		"/api/flags",
		"/api/leaderboard",
		"/admin/revalidate",
	} {
		assert.Contains(t, paths, p)
	}
}
