package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/buemura/scamscan/pkg/types"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// CreateAnalysisRequest is the JSON body for POST /api/v1/analyses.
type CreateAnalysisRequest struct {
	Message string `json:"message"`
}

// ReportRequest is the JSON body for POST /api/v1/reports. Either
// AnalysisID or Message/URLs must be set.
type ReportRequest struct {
	AnalysisID string   `json:"analysis_id"`
	Message    string   `json:"message"`
	URLs       []string `json:"urls"`
}

// TextRequest is the JSON body for POST /api/v1/urls/extract.
type TextRequest struct {
	Text string `json:"text"`
}

// URLRequest is the JSON body for POST /api/v1/urls/check and /urls/scan.
type URLRequest struct {
	URL string `json:"url"`
}

func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	return nil
}

// decodeCreateAnalysisRequest reads and validates the request body.
func decodeCreateAnalysisRequest(r *http.Request) (*CreateAnalysisRequest, error) {
	var req CreateAnalysisRequest
	if err := decodeJSON(r, &req); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Message) == "" {
		return nil, fmt.Errorf("message is required")
	}
	return &req, nil
}

func decodeReportRequest(r *http.Request) (*ReportRequest, error) {
	var req ReportRequest
	if err := decodeJSON(r, &req); err != nil {
		return nil, err
	}
	if req.AnalysisID == "" && strings.TrimSpace(req.Message) == "" && len(req.URLs) == 0 {
		return nil, fmt.Errorf("analysis_id, message or urls is required")
	}
	for _, u := range req.URLs {
		if !types.HasHTTPScheme(u) {
			return nil, fmt.Errorf("invalid url %q: must start with http:// or https://", u)
		}
	}
	return &req, nil
}

func decodeURLRequest(r *http.Request) (*URLRequest, error) {
	var req URLRequest
	if err := decodeJSON(r, &req); err != nil {
		return nil, err
	}
	req.URL = strings.TrimSpace(req.URL)
	if req.URL == "" {
		return nil, fmt.Errorf("url is required")
	}
	return &req, nil
}
