package api

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/buemura/scamscan/internal/output"
	"github.com/buemura/scamscan/internal/scanner"
	"github.com/buemura/scamscan/internal/web/jobs"
	"github.com/buemura/scamscan/pkg/types"
	"github.com/go-chi/chi/v5"
)

// Service is the analysis functionality the API exposes beyond async jobs.
type Service interface {
	ResolvePending(ctx context.Context, o types.ScanOutcome) types.ScanOutcome
	Report(ctx context.Context, item types.ReportedItem) error
	ActiveRules(ctx context.Context) []types.DetectionRule
	URLScanner() *scanner.Aggregator
}

// Handlers holds dependencies for the REST API handlers.
type Handlers struct {
	Manager *jobs.Manager
	Service Service
}

// NewHandlers creates API handlers with the given dependencies.
func NewHandlers(manager *jobs.Manager, service Service) *Handlers {
	return &Handlers{Manager: manager, Service: service}
}

// CreateAnalysis handles POST /api/v1/analyses.
func (h *Handlers) CreateAnalysis(w http.ResponseWriter, r *http.Request) {
	req, err := decodeCreateAnalysisRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	job := h.Manager.Create(req.Message)
	if err := h.Manager.Start(job.ID); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to start analysis: "+err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"id":     job.ID,
		"status": jobs.StatusRunning,
	})
}

// ListAnalyses handles GET /api/v1/analyses.
func (h *Handlers) ListAnalyses(w http.ResponseWriter, r *http.Request) {
	jobList := h.Manager.List()

	type analysisSummary struct {
		ID           string         `json:"id"`
		Status       jobs.JobStatus `json:"status"`
		Verdict      types.Verdict  `json:"verdict,omitempty"`
		Confidence   int            `json:"confidence,omitempty"`
		CreatedAt    time.Time      `json:"created_at"`
		FindingCount int            `json:"finding_count"`
	}

	summaries := make([]analysisSummary, len(jobList))
	for i, j := range jobList {
		summaries[i] = analysisSummary{
			ID:           j.ID,
			Status:       j.Status,
			CreatedAt:    j.CreatedAt,
			FindingCount: j.FindingCount(),
		}
		if j.Outcome != nil {
			summaries[i].Verdict = j.Outcome.Verdict
			summaries[i].Confidence = j.Outcome.Confidence
		}
	}

	writeJSON(w, http.StatusOK, summaries)
}

// GetAnalysis handles GET /api/v1/analyses/{id}.
func (h *Handlers) GetAnalysis(w http.ResponseWriter, r *http.Request) {
	job, ok := h.job(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, job)
}

// GetAnalysisReport handles GET /api/v1/analyses/{id}/report.
func (h *Handlers) GetAnalysisReport(w http.ResponseWriter, r *http.Request) {
	job, ok := h.completedJob(w, r)
	if !ok {
		return
	}

	formatter := &output.HTMLFormatter{}
	var buf bytes.Buffer
	if err := formatter.Format(&buf, []types.ScanOutcome{*job.Outcome}); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to render report: "+err.Error())
		return
	}

	w.Header().Set("Content-Type", "text/html")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// ResolveAnalysis handles POST /api/v1/analyses/{id}/resolve.
func (h *Handlers) ResolveAnalysis(w http.ResponseWriter, r *http.Request) {
	job, ok := h.completedJob(w, r)
	if !ok {
		return
	}

	resolved := h.Service.ResolvePending(r.Context(), *job.Outcome)
	updated, err := h.Manager.SetOutcome(job.ID, resolved)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// DeleteAnalysis handles DELETE /api/v1/analyses/{id}.
func (h *Handlers) DeleteAnalysis(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.Manager.Delete(id); err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) job(w http.ResponseWriter, r *http.Request) (jobs.Job, bool) {
	job, err := h.Manager.Get(chi.URLParam(r, "id"))
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, jobs.ErrNotFound) {
			status = http.StatusNotFound
		}
		writeError(w, status, err.Error())
		return jobs.Job{}, false
	}
	return job, true
}

func (h *Handlers) completedJob(w http.ResponseWriter, r *http.Request) (jobs.Job, bool) {
	job, ok := h.job(w, r)
	if !ok {
		return jobs.Job{}, false
	}
	if job.Status != jobs.StatusCompleted || job.Outcome == nil {
		writeError(w, http.StatusConflict, "analysis is not yet completed")
		return jobs.Job{}, false
	}
	return job, true
}
