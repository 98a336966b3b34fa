package validator

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	apperrors "storybook-ai/backend/pkg/errors"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var schemaPath = filepath.Join("..", "..", "api", "openapi.yaml")

func TestAspectRatio(t *testing.T) {
	v := validator.New()
	require.NoError(t, v.RegisterValidation("aspect_ratio", AspectRatio))

	type req struct {
		Ratio string `validate:"aspect_ratio"`
	}

	for _, ok := range []string{"16:9", "1:1", "21:9", "custom"} {
		assert.NoError(t, v.Struct(req{Ratio: ok}), ok)
	}
	for _, bad := range []string{"", "0:1", "16x9", "16:", "wide", "1:1:1"} {
		assert.Error(t, v.Struct(req{Ratio: bad}), bad)
	}
}

func TestRegisterBindings(t *testing.T) {
	require.NoError(t, RegisterBindings())
	// Registering twice replaces the rule
	require.NoError(t, RegisterBindings())
}

func newEngine(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	v, err := NewOpenAPIValidator(schemaPath)
	require.NoError(t, err)

	r := gin.New()
	r.Use(apperrors.ErrorHandler())
	r.Use(v.Middleware())
	r.POST("/api/story/generate", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.POST("/api/story/validate", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/internal", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func post(r *gin.Engine, path, body string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestOpenAPIValidator_Middleware(t *testing.T) {
	r := newEngine(t)

	w := post(r, "/api/story/generate", `{"child_name":"Maya","child_age":6,"child_interests":"dinosaurs"}`)
	assert.Equal(t, http.StatusOK, w.Code)

	w = post(r, "/api/story/generate", `{"child_name":"Maya","child_age":"6","child_interests":"dinosaurs"}`)
	assert.Equal(t, http.StatusOK, w.Code)

	w = post(r, "/api/story/generate", `{"child_name":"Maya","child_age":40,"child_interests":"dinosaurs"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), apperrors.CodeInvalidRequest)

	w = post(r, "/api/story/generate", `{"child_name":"Maya","child_age":"forty","child_interests":"dinosaurs"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = post(r, "/api/story/validate?migrate=v3", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	req, _ := http.NewRequest(http.MethodGet, "/internal", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestOpenAPIValidator_LoadAndReload(t *testing.T) {
	_, err := NewOpenAPIValidator("does-not-exist.yaml")
	assert.Error(t, err)

	v, err := NewOpenAPIValidator(schemaPath)
	require.NoError(t, err)
	require.NoError(t, v.ReloadSchema())

	doc := v.Document()
	require.NotNil(t, doc)
	assert.NotNil(t, doc.Paths.Find("/api/story/generate"))
	assert.Empty(t, doc.Servers)
}
