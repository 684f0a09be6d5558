package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/entrepeneur4lyf/buildpilot/internal/config"
	"github.com/entrepeneur4lyf/buildpilot/internal/llm"
	"github.com/entrepeneur4lyf/buildpilot/internal/planner"
	"github.com/entrepeneur4lyf/buildpilot/internal/plans"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubGenerator struct {
	calls    atomic.Int32
	result   *planner.Result
	err      error
	deadline bool
}

func (g *stubGenerator) Generate(ctx context.Context, name, desc string) (*planner.Result, error) {
	g.calls.Add(1)
	_, g.deadline = ctx.Deadline()
	if g.err != nil {
		return nil, g.err
	}
	return g.result, nil
}

func newTestServer(t *testing.T, gen *stubGenerator, mutate func(*Options)) http.Handler {
	t.Helper()
	opts := Options{
		Generator:      gen,
		Store:          plans.NewStore(t.TempDir()),
		AllowedOrigins: []string{"http://localhost:3000"},
	}
	if mutate != nil {
		mutate(&opts)
	}
	return NewServer(opts).Handler()
}

func doRequest(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestHealth(t *testing.T) {
	h := newTestServer(t, &stubGenerator{}, nil)

	for _, path := range []string{"/api/health/", "/api/health"} {
		rec := doRequest(t, h, http.MethodGet, path, "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, map[string]any{
			"status":  "healthy",
			"message": "BuildPilot AI backend is running",
		}, decodeBody(t, rec))
	}
}

func TestGeneratePlan_Success(t *testing.T) {
	gen := &stubGenerator{result: &planner.Result{RunID: "r1", RawText: "```markdown\n# Plan\n```", NormalizedText: "# Plan"}}
	h := newTestServer(t, gen, func(o *Options) { o.GenerateTimeout = time.Minute })

	rec := doRequest(t, h, http.MethodPost, "/api/generate-plan/", `{"project_name":"Demo","project_description":"A demo app"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]any{"message": "success", "plan": "# Plan"}, decodeBody(t, rec))
	assert.Equal(t, int32(1), gen.calls.Load())
	assert.True(t, gen.deadline)
}

func TestGeneratePlan_MissingFields(t *testing.T) {
	gen := &stubGenerator{}
	h := newTestServer(t, gen, nil)

	for _, body := range []string{
		`{}`,
		`{"project_name":"Demo"}`,
		`{"project_description":"x"}`,
		`{"project_name":"  ","project_description":"x"}`,
	} {
		rec := doRequest(t, h, http.MethodPost, "/api/generate-plan/", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		assert.Equal(t, "Both project_name and project_description are required", decodeBody(t, rec)["error"])
	}
	assert.Equal(t, int32(0), gen.calls.Load())
}

func TestGeneratePlan_MalformedJSON(t *testing.T) {
	gen := &stubGenerator{}
	h := newTestServer(t, gen, nil)

	rec := doRequest(t, h, http.MethodPost, "/api/generate-plan/", `{"project_name":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, int32(0), gen.calls.Load())
}

func TestGeneratePlan_MissingCredentials(t *testing.T) {
	gen := &stubGenerator{}
	h := newTestServer(t, gen, func(o *Options) {
		o.CheckCredentials = func() error {
			return &config.ConfigurationError{Provider: llm.ProviderOpenAI, Setting: "OPENAI_API_KEY"}
		}
	})

	rec := doRequest(t, h, http.MethodPost, "/api/generate-plan/", `{"project_name":"Demo","project_description":"x"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "OpenAI API key not configured", decodeBody(t, rec)["error"])
	assert.Equal(t, int32(0), gen.calls.Load())
}

func TestGeneratePlan_PipelineFailure(t *testing.T) {
	gen := &stubGenerator{err: &planner.GenerationError{Stage: planner.StageAnalysis, Err: errors.New("quota exceeded")}}
	h := newTestServer(t, gen, nil)

	rec := doRequest(t, h, http.MethodPost, "/api/generate-plan/", `{"project_name":"Demo","project_description":"x"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	msg, _ := decodeBody(t, rec)["error"].(string)
	assert.True(t, strings.HasPrefix(msg, "An error occurred: "), msg)
	assert.Contains(t, msg, "quota exceeded")
}

func TestMethodNotAllowed(t *testing.T) {
	gen := &stubGenerator{}
	h := newTestServer(t, gen, nil)

	tests := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/generate-plan/"},
		{http.MethodGet, "/api/generate-plan"},
		{http.MethodPut, "/api/generate-plan/"},
		{http.MethodPost, "/api/health/"},
		{http.MethodDelete, "/api/download-plan/my_app_plan.md/"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := doRequest(t, h, tt.method, tt.path, "")
			assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
			assert.Equal(t, fmt.Sprintf("Method %q not allowed.", tt.method), decodeBody(t, rec)["error"])
		})
	}
	assert.Zero(t, gen.calls.Load())
}

func TestUnknownRouteIsNotFound(t *testing.T) {
	h := newTestServer(t, &stubGenerator{}, nil)
	rec := doRequest(t, h, http.MethodGet, "/api/unknown/", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGeneratePlan_SavePlans(t *testing.T) {
	dir := t.TempDir()
	gen := &stubGenerator{result: &planner.Result{NormalizedText: "# Saved"}}
	h := newTestServer(t, gen, func(o *Options) {
		o.Store = plans.NewStore(dir)
		o.SavePlans = true
	})

	rec := doRequest(t, h, http.MethodPost, "/api/generate-plan/", `{"project_name":"My App","project_description":"x"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "my_app_plan.md", decodeBody(t, rec)["file"])

	data, err := os.ReadFile(filepath.Join(dir, "my_app_plan.md"))
	require.NoError(t, err)
	assert.Equal(t, "# Saved", string(data))

	dl := doRequest(t, h, http.MethodGet, "/api/download-plan/my_app_plan.md/", "")
	require.Equal(t, http.StatusOK, dl.Code)
	assert.Equal(t, "# Saved", dl.Body.String())
	assert.Contains(t, dl.Header().Get("Content-Type"), "text/markdown")
	assert.Equal(t, `attachment; filename="my_app_plan.md"`, dl.Header().Get("Content-Disposition"))
}

func TestGeneratePlan_SaveFailureStillReturnsPlan(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	gen := &stubGenerator{result: &planner.Result{NormalizedText: "# Plan"}}
	h := newTestServer(t, gen, func(o *Options) {
		o.Store = plans.NewStore(filepath.Join(blocker, "sub"))
		o.SavePlans = true
	})

	rec := doRequest(t, h, http.MethodPost, "/api/generate-plan/", `{"project_name":"Demo","project_description":"x"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "# Plan", body["plan"])
	assert.NotContains(t, body, "file")
}

func TestDownloadPlan_Errors(t *testing.T) {
	h := newTestServer(t, &stubGenerator{}, nil)

	rec := doRequest(t, h, http.MethodGet, "/api/download-plan/missing_plan.md/", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doRequest(t, h, http.MethodGet, "/api/download-plan/notes.txt/", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, h, http.MethodGet, "/api/download-plan/..%2Fsecret_plan.md/", "")
	assert.NotEqual(t, http.StatusOK, rec.Code)
}

func TestCORS(t *testing.T) {
	h := newTestServer(t, &stubGenerator{}, nil)

	req := httptest.NewRequest(http.MethodOptions, "/api/generate-plan/", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/api/health/", nil)
	req.Header.Set("Origin", "http://evil.example")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))

	wildcard := newTestServer(t, &stubGenerator{}, func(o *Options) { o.AllowedOrigins = []string{"*"} })
	rec = httptest.NewRecorder()
	wildcard.ServeHTTP(rec, req)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestMetricsRoute(t *testing.T) {
	h := newTestServer(t, &stubGenerator{}, func(o *Options) {
		o.MetricsHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("metrics"))
		})
	})

	rec := doRequest(t, h, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "metrics", rec.Body.String())
}
