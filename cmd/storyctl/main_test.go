package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCLI(args ...string) (int, string, string) {
	var stdout, stderr bytes.Buffer
	code := run(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestValidate_AcceptsCurrentDocument(t *testing.T) {
	code, out, _ := runCLI("validate", "testdata/story.json")

	assert.Equal(t, 0, code)
	assert.Contains(t, out, `OK: "Maya and the Dinosaur Parade"`)
}

func TestValidate_RejectsLegacyDocumentWithoutMigrate(t *testing.T) {
	code, _, errOut := runCLI("validate", "testdata/story_v1.json")

	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "INVALID (parse)")
}

func TestValidate_MigratesLegacyDocument(t *testing.T) {
	code, out, errOut := runCLI("validate", "-migrate", "testdata/story_v1.json")

	require.Equal(t, 0, code, errOut)
	assert.Contains(t, out, "OK:")
	assert.Contains(t, out, `"global_state"`)
}

func TestValidate_ReportsViolations(t *testing.T) {
	data, err := os.ReadFile("testdata/story.json")
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	characters := doc["characters"].([]any)
	characters[2].(map[string]any)["voice"] = characters[1].(map[string]any)["voice"]

	path := filepath.Join(t.TempDir(), "dup.json")
	encoded, err := json.Marshal(doc)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, encoded, 0o644))

	code, _, errOut := runCLI("validate", path)

	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "[duplicate_voices]")
}

func TestValidate_Usage(t *testing.T) {
	code, _, _ := runCLI()
	assert.Equal(t, 2, code)

	code, _, _ = runCLI("validate")
	assert.Equal(t, 2, code)

	code, _, errOut := runCLI("publish")
	assert.Equal(t, 2, code)
	assert.Contains(t, errOut, `unknown command "publish"`)
}

func TestGenerate_SendsCredentialsAndPrintsStory(t *testing.T) {
	t.Setenv("STORY_ACCESS_CODE", "open-sesame")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("ELEVENLABS_API_KEY", "")
	t.Setenv("REPLICATE_API_TOKEN", "")

	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/story/generate", r.URL.Path)
		assert.Equal(t, "open-sesame", r.Header.Get("X-Access-Code"))
		assert.Empty(t, r.Header.Get("X-OpenAI-Key"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"story":{"main":{"title":"T"}}}`))
	}))
	defer srv.Close()

	code, out, errOut := runCLI("generate", "-url", srv.URL, "-name", "Maya", "-age", "6", "-interests", "dinosaurs")

	require.Equal(t, 0, code, errOut)
	assert.Equal(t, "Maya", got["child_name"])
	assert.EqualValues(t, 6, got["child_age"])
	assert.Contains(t, out, `"title": "T"`)
}

func TestGenerate_ReportsServerErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"detail":"Access denied"}`))
	}))
	defer srv.Close()

	code, _, errOut := runCLI("generate", "-url", srv.URL, "-name", "Maya", "-age", "6", "-interests", "dinosaurs")

	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "Server returned 403")
}

func TestGenerate_RequiresFields(t *testing.T) {
	code, _, errOut := runCLI("generate", "-name", "Maya")

	assert.Equal(t, 2, code)
	assert.Contains(t, errOut, "requires -name, -age and -interests")
}
