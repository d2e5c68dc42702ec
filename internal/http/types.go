package http

import "jobfetch/internal/model"

// ExtractRequest is the body of POST /v1/jobs/extract.
type ExtractRequest struct {
	URL string `json:"url"`
}

// ExtractResponse is the envelope for single-URL extraction. Code and
// Error are set only on failure.
type ExtractResponse struct {
	Success bool              `json:"success"`
	Posting *model.JobPosting `json:"posting,omitempty"`
	Code    string            `json:"code,omitempty"`
	Error   string            `json:"error,omitempty"`
}

// BatchExtractRequest is the body of POST /v1/jobs/extract/batch.
type BatchExtractRequest struct {
	URLs []string `json:"urls"`
}

// BatchExtractResponse reports per-URL outcomes in input order.
type BatchExtractResponse struct {
	Success bool              `json:"success"`
	Results []model.BatchItem `json:"results,omitempty"`
	Code    string            `json:"code,omitempty"`
	Error   string            `json:"error,omitempty"`
}

// AttemptsResponse is the body of GET /v1/attempts.
type AttemptsResponse struct {
	Success  bool                      `json:"success"`
	Attempts []model.ExtractionAttempt `json:"attempts,omitempty"`
	Code     string                    `json:"code,omitempty"`
	Error    string                    `json:"error,omitempty"`
}
