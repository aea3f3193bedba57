package api

import (
	"net/http"

	"github.com/buemura/scamscan/internal/extract"
	"github.com/buemura/scamscan/internal/scanner/local"
	"github.com/buemura/scamscan/pkg/types"
)

// CreateReport handles POST /api/v1/reports.
func (h *Handlers) CreateReport(w http.ResponseWriter, r *http.Request) {
	req, err := decodeReportRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	item := types.ReportedItem{Message: req.Message, URLs: req.URLs}
	if req.AnalysisID != "" {
		job, err := h.Manager.Get(req.AnalysisID)
		if err != nil {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		if job.Outcome == nil {
			writeError(w, http.StatusConflict, "analysis is not yet completed")
			return
		}
		item = types.ReportedItem{Message: job.Outcome.Message, URLs: job.Outcome.ExtractedURLs}
	}
	if item.URLs == nil {
		item.URLs = []string{}
	}

	if err := h.Service.Report(r.Context(), item); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"status": "reported", "report": item})
}

// ExtractURLs handles POST /api/v1/urls/extract.
func (h *Handlers) ExtractURLs(w http.ResponseWriter, r *http.Request) {
	var req TextRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"urls": extract.URLs(req.Text)})
}

// CheckURL handles POST /api/v1/urls/check.
func (h *Handlers) CheckURL(w http.ResponseWriter, r *http.Request) {
	req, err := decodeURLRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	res := local.Check(req.URL)
	writeJSON(w, http.StatusOK, map[string]any{
		"url":     req.URL,
		"status":  res.Status,
		"reasons": res.Reasons,
	})
}

// ScanURL handles POST /api/v1/urls/scan.
func (h *Handlers) ScanURL(w http.ResponseWriter, r *http.Request) {
	req, err := decodeURLRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, h.Service.URLScanner().ScanURL(r.Context(), req.URL))
}

// ListRules handles GET /api/v1/rules.
func (h *Handlers) ListRules(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Service.ActiveRules(r.Context()))
}
