package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/buemura/scamscan/internal/engine"
	"github.com/buemura/scamscan/internal/scanner"
	"github.com/buemura/scamscan/internal/store"
	"github.com/buemura/scamscan/internal/web/jobs"
	"github.com/buemura/scamscan/pkg/types"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pendingProvider struct{}

func (pendingProvider) Name() string        { return "vt" }
func (pendingProvider) Description() string { return "pending" }
func (pendingProvider) Scan(_ context.Context, _ string) types.SourceResult {
	return types.SourceResult{Status: types.StatusPending, Detail: "queued", Handle: "h1"}
}
func (pendingProvider) Resolve(_ context.Context, _ string) types.SourceResult {
	return types.SourceResult{Status: types.StatusMalicious, Detail: "flagged"}
}

func setupTestHandlers(t *testing.T, providers ...scanner.Provider) (*Handlers, *chi.Mux, *store.Memory) {
	t.Helper()
	mem := store.NewMemory(store.DefaultHistoryLimit)
	deps := engine.Deps{Reports: mem, Learned: mem, History: mem}
	if len(providers) > 0 {
		reg := scanner.NewRegistry()
		for _, p := range providers {
			reg.Register(p)
		}
		deps.Aggregator = scanner.NewAggregator(reg, scanner.DefaultOptions())
	}
	eng := engine.New(deps)
	h := NewHandlers(jobs.NewManager(eng, time.Second), eng)

	r := chi.NewRouter()
	r.Post("/api/v1/analyses", h.CreateAnalysis)
	r.Get("/api/v1/analyses", h.ListAnalyses)
	r.Get("/api/v1/analyses/{id}", h.GetAnalysis)
	r.Delete("/api/v1/analyses/{id}", h.DeleteAnalysis)
	r.Get("/api/v1/analyses/{id}/report", h.GetAnalysisReport)
	r.Post("/api/v1/analyses/{id}/resolve", h.ResolveAnalysis)
	r.Post("/api/v1/reports", h.CreateReport)
	r.Post("/api/v1/urls/extract", h.ExtractURLs)
	r.Post("/api/v1/urls/check", h.CheckURL)
	r.Post("/api/v1/urls/scan", h.ScanURL)
	r.Get("/api/v1/rules", h.ListRules)
	return h, r, mem
}

func do(router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func completedJob(t *testing.T, h *Handlers, message string) jobs.Job {
	t.Helper()
	job := h.Manager.Create(message)
	require.NoError(t, h.Manager.Start(job.ID))
	var done jobs.Job
	require.Eventually(t, func() bool {
		j, err := h.Manager.Get(job.ID)
		done = j
		return err == nil && j.Status == jobs.StatusCompleted
	}, 5*time.Second, 10*time.Millisecond)
	return done
}

func TestCreateAnalysis_ValidBody(t *testing.T) {
	_, router, _ := setupTestHandlers(t)

	w := do(router, http.MethodPost, "/api/v1/analyses", `{"message": "URGENT: claim your prize"}`)

	assert.Equal(t, http.StatusCreated, w.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp["id"])
	assert.Equal(t, "running", resp["status"])
}

func TestCreateAnalysis_Invalid(t *testing.T) {
	_, router, _ := setupTestHandlers(t)

	tests := map[string]string{
		"empty message": `{"message": "   "}`,
		"invalid json":  `{invalid`,
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			w := do(router, http.MethodPost, "/api/v1/analyses", body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestListAnalyses(t *testing.T) {
	h, router, _ := setupTestHandlers(t)
	completedJob(t, h, "urgent")

	w := do(router, http.MethodGet, "/api/v1/analyses", "")
	assert.Equal(t, http.StatusOK, w.Code)

	var list []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "scam", list[0]["verdict"])
	assert.Equal(t, float64(79), list[0]["confidence"])
	assert.Equal(t, float64(1), list[0]["finding_count"])
}

func TestGetAnalysis(t *testing.T) {
	h, router, _ := setupTestHandlers(t)
	job := completedJob(t, h, "urgent")

	w := do(router, http.MethodGet, "/api/v1/analyses/"+job.ID, "")
	assert.Equal(t, http.StatusOK, w.Code)

	var got jobs.Job
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.NotNil(t, got.Outcome)
	assert.Equal(t, types.VerdictScam, got.Outcome.Verdict)

	w = do(router, http.MethodGet, "/api/v1/analyses/nonexistent", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetAnalysisReport(t *testing.T) {
	h, router, _ := setupTestHandlers(t)

	pending := h.Manager.Create("not started")
	w := do(router, http.MethodGet, "/api/v1/analyses/"+pending.ID+"/report", "")
	assert.Equal(t, http.StatusConflict, w.Code)

	job := completedJob(t, h, "urgent")
	w = do(router, http.MethodGet, "/api/v1/analyses/"+job.ID+"/report", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), "scamscan Report")
}

func TestResolveAnalysis(t *testing.T) {
	h, router, _ := setupTestHandlers(t, pendingProvider{})
	job := completedJob(t, h, "see https://example.com/")
	require.True(t, job.Outcome.HasPending())

	w := do(router, http.MethodPost, "/api/v1/analyses/"+job.ID+"/resolve", "")
	assert.Equal(t, http.StatusOK, w.Code)

	var got jobs.Job
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.NotNil(t, got.Outcome)
	assert.False(t, got.Outcome.HasPending())
	assert.Equal(t, types.VerdictScam, got.Outcome.Verdict)

	stored, err := h.Manager.Get(job.ID)
	require.NoError(t, err)
	assert.Equal(t, types.VerdictScam, stored.Outcome.Verdict)
}

func TestResolveAnalysis_NotCompleted(t *testing.T) {
	h, router, _ := setupTestHandlers(t)
	job := h.Manager.Create("x")
	w := do(router, http.MethodPost, "/api/v1/analyses/"+job.ID+"/resolve", "")
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestDeleteAnalysis(t *testing.T) {
	h, router, _ := setupTestHandlers(t)
	job := h.Manager.Create("x")

	w := do(router, http.MethodDelete, "/api/v1/analyses/"+job.ID, "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(router, http.MethodDelete, "/api/v1/analyses/"+job.ID, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateReport(t *testing.T) {
	h, router, mem := setupTestHandlers(t)
	ctx := context.Background()

	w := do(router, http.MethodPost, "/api/v1/reports", `{"message": "pay the fee", "urls": ["https://fee.example/pay"]}`)
	assert.Equal(t, http.StatusCreated, w.Code)

	job := completedJob(t, h, "claim at https://prize.example/")
	w = do(router, http.MethodPost, "/api/v1/reports", `{"analysis_id": "`+job.ID+`"}`)
	assert.Equal(t, http.StatusCreated, w.Code)

	corpus, err := mem.Reports(ctx)
	require.NoError(t, err)
	require.Len(t, corpus, 2)
	assert.Equal(t, "pay the fee", corpus[0].Message)
	assert.Equal(t, []string{"https://prize.example/"}, corpus[1].URLs)
}

func TestCreateReport_Invalid(t *testing.T) {
	_, router, _ := setupTestHandlers(t)

	tests := []struct {
		name string
		body string
		code int
	}{
		{"empty", `{}`, http.StatusBadRequest},
		{"bad url", `{"urls": ["ftp://x"]}`, http.StatusBadRequest},
		{"unknown analysis", `{"analysis_id": "nope"}`, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(router, http.MethodPost, "/api/v1/reports", tt.body)
			assert.Equal(t, tt.code, w.Code)
		})
	}
}

func TestExtractURLs(t *testing.T) {
	_, router, _ := setupTestHandlers(t)

	w := do(router, http.MethodPost, "/api/v1/urls/extract", `{"text": "see bit.ly/abc123 for details"}`)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		URLs []string `json:"urls"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, []string{"https://bit.ly/abc123"}, resp.URLs)
}

func TestCheckURL(t *testing.T) {
	_, router, _ := setupTestHandlers(t)

	w := do(router, http.MethodPost, "/api/v1/urls/check", `{"url": "http://192.168.1.1/login"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Direct IP address used as domain")

	w = do(router, http.MethodPost, "/api/v1/urls/check", `{"url": ""}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestScanURL(t *testing.T) {
	_, router, _ := setupTestHandlers(t)

	w := do(router, http.MethodPost, "/api/v1/urls/scan", `{"url": "https://bit.ly/x"}`)
	assert.Equal(t, http.StatusOK, w.Code)

	var v types.URLVerdict
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	assert.True(t, v.IsMalicious)
	require.Len(t, v.Sources, 1)
	assert.Equal(t, "local", v.Sources[0].Provider)
}

func TestListRules(t *testing.T) {
	_, router, _ := setupTestHandlers(t)

	w := do(router, http.MethodGet, "/api/v1/rules", "")
	assert.Equal(t, http.StatusOK, w.Code)

	var ruleSet []types.DetectionRule
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ruleSet))
	assert.Len(t, ruleSet, 3)
	assert.True(t, strings.Contains(w.Body.String(), `"type":"keyword"`))
}
