// Package handlers provides HTTP request handlers for the ScanPro API.
// This file implements the scan job endpoints: submission, listing,
// status, results retrieval, and cancellation.
package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/MAS191/ScanPro/internal/jobs"
	"github.com/MAS191/ScanPro/internal/metrics"
	"github.com/MAS191/ScanPro/internal/report"
)

// Scan validation constants.
const (
	maxScanNameLength = 255
	maxTargetLength   = 255
)

// ScanHandler handles scan job API endpoints.
type ScanHandler struct {
	jobs    JobService
	logger  *slog.Logger
	metrics metrics.MetricsRegistry
}

// NewScanHandler creates a new scan handler.
func NewScanHandler(jobService JobService, logger *slog.Logger, metricsRegistry metrics.MetricsRegistry) *ScanHandler {
	return &ScanHandler{
		jobs:    jobService,
		logger:  logger.With("handler", "scan"),
		metrics: metricsRegistry,
	}
}

// ScanRequest represents a scan submission request. Durations are given
// in milliseconds; unset fields inherit from the selected profile and
// then the server defaults.
type ScanRequest struct {
	Name        string   `json:"name,omitempty"`
	Targets     []string `json:"targets"`
	Ports       string   `json:"ports,omitempty"`
	Profile     string   `json:"profile,omitempty"`
	ScanType    string   `json:"scan_type,omitempty"`
	TimeoutMS   *int     `json:"timeout_ms,omitempty"`
	Concurrency *int     `json:"concurrency,omitempty"`
	DelayMS     *int     `json:"delay_ms,omitempty"`
	Banners     *bool    `json:"banners,omitempty"`
}

// ScanResponse represents a scan job in API responses.
type ScanResponse struct {
	ID        string        `json:"id"`
	Name      string        `json:"name,omitempty"`
	Status    string        `json:"status"`
	Source    string        `json:"source"`
	Targets   []string      `json:"targets"`
	Ports     string        `json:"ports,omitempty"`
	Profile   string        `json:"profile,omitempty"`
	ScanType  string        `json:"scan_type,omitempty"`
	Progress  jobs.Progress `json:"progress"`
	CreatedAt time.Time     `json:"created_at"`
	StartedAt *time.Time    `json:"started_at,omitempty"`
	EndedAt   *time.Time    `json:"ended_at,omitempty"`
	Duration  string        `json:"duration,omitempty"`
	Error     string        `json:"error,omitempty"`
}

// CreateScan handles POST /api/v1/scans - submit a new scan job.
func (h *ScanHandler) CreateScan(w http.ResponseWriter, r *http.Request) {
	requestID := getRequestID(r)
	h.logger.Info("Submitting scan", "request_id", requestID)

	var req ScanRequest
	if err := parseJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}

	if err := validateScanRequest(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}

	job, err := h.jobs.Submit(toJobRequest(&req))
	if err != nil {
		handleServiceError(w, r, err, "submit", "scan", h.logger)
		return
	}

	h.logger.Info("Scan submitted",
		"request_id", requestID,
		"job_id", job.ID,
		"targets", len(req.Targets))

	writeJSON(w, r, http.StatusAccepted, jobToResponse(job))

	recordMetric(h.metrics, "api_scans_created_total", metrics.Labels{
		"profile": req.Profile,
	})
}

// ListScans handles GET /api/v1/scans - list scan jobs, newest first,
// with pagination and optional status/source filters.
func (h *ScanHandler) ListScans(w http.ResponseWriter, r *http.Request) {
	params, err := getPaginationParams(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}

	all := h.jobs.List()
	filtered := filterJobs(all, r.URL.Query().Get("status"), r.URL.Query().Get("source"))

	page := paginate(filtered, params)
	responses := make([]ScanResponse, len(page))
	for i, job := range page {
		responses[i] = jobToResponse(job)
	}

	writePaginatedResponse(w, r, responses, params, len(filtered))

	recordMetric(h.metrics, "api_scans_listed_total", nil)
}

// GetScan handles GET /api/v1/scans/{id} - get a scan job's status and
// progress.
func (h *ScanHandler) GetScan(w http.ResponseWriter, r *http.Request) {
	id, err := extractUUIDFromPath(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}

	job, err := h.jobs.Get(id.String())
	if err != nil {
		handleServiceError(w, r, err, "get", "scan", h.logger)
		return
	}

	writeJSON(w, r, http.StatusOK, jobToResponse(job))

	recordMetric(h.metrics, "api_scans_retrieved_total", nil)
}

// GetScanResults handles GET /api/v1/scans/{id}/results - get the
// report for a completed scan. Requests for jobs that are still running
// answer 409; canceled and failed jobs have no results to serve.
func (h *ScanHandler) GetScanResults(w http.ResponseWriter, r *http.Request) {
	id, err := extractUUIDFromPath(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}

	result, cfg, err := h.jobs.Result(id.String())
	if err != nil {
		handleServiceError(w, r, err, "get results for", "scan", h.logger)
		return
	}

	writeJSON(w, r, http.StatusOK, report.New(result, cfg))

	recordMetric(h.metrics, "api_scan_results_retrieved_total", nil)
}

// StopScan handles POST /api/v1/scans/{id}/stop - cancel a pending or
// running scan. Cancellation is asynchronous: the returned snapshot may
// still show the job as running while the engine unwinds.
func (h *ScanHandler) StopScan(w http.ResponseWriter, r *http.Request) {
	requestID := getRequestID(r)

	id, err := extractUUIDFromPath(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}

	h.logger.Info("Stopping scan", "request_id", requestID, "job_id", id)

	job, err := h.jobs.Cancel(id.String())
	if err != nil {
		handleServiceError(w, r, err, "stop", "scan", h.logger)
		return
	}

	response := map[string]interface{}{
		"id":         job.ID,
		"message":    "cancellation requested",
		"scan":       jobToResponse(job),
		"timestamp":  time.Now().UTC(),
		"request_id": requestID,
	}

	writeJSON(w, r, http.StatusAccepted, response)

	recordMetric(h.metrics, "api_scans_stopped_total", nil)
}

// Helper functions

// validateScanRequest checks the request fields the handler can judge
// without expanding targets. Target and port specifications are
// validated by the job manager at submission.
func validateScanRequest(req *ScanRequest) error {
	if len(req.Name) > maxScanNameLength {
		return fmt.Errorf("scan name too long (max %d characters)", maxScanNameLength)
	}

	if len(req.Targets) == 0 {
		return fmt.Errorf("at least one target is required")
	}

	for i, target := range req.Targets {
		if target == "" {
			return fmt.Errorf("target %d is empty", i+1)
		}
		if len(target) > maxTargetLength {
			return fmt.Errorf("target %d too long (max %d characters)", i+1, maxTargetLength)
		}
	}

	if req.TimeoutMS != nil && *req.TimeoutMS <= 0 {
		return fmt.Errorf("timeout_ms must be positive")
	}

	if req.Concurrency != nil && *req.Concurrency <= 0 {
		return fmt.Errorf("concurrency must be positive")
	}

	if req.DelayMS != nil && *req.DelayMS < 0 {
		return fmt.Errorf("delay_ms cannot be negative")
	}

	return nil
}

// toJobRequest converts an API scan request into a job request.
func toJobRequest(req *ScanRequest) jobs.Request {
	out := jobs.Request{
		Name:     req.Name,
		Targets:  req.Targets,
		Ports:    req.Ports,
		Profile:  req.Profile,
		ScanType: req.ScanType,
		Source:   jobs.SourceAPI,
		Banners:  req.Banners,
	}

	if req.TimeoutMS != nil {
		timeout := time.Duration(*req.TimeoutMS) * time.Millisecond
		out.Timeout = &timeout
	}
	if req.DelayMS != nil {
		delay := time.Duration(*req.DelayMS) * time.Millisecond
		out.Delay = &delay
	}
	if req.Concurrency != nil {
		concurrency := *req.Concurrency
		out.Concurrency = &concurrency
	}

	return out
}

// jobToResponse converts a job snapshot to the API response shape.
func jobToResponse(job jobs.Job) ScanResponse {
	resp := ScanResponse{
		ID:        job.ID,
		Name:      job.Request.Name,
		Status:    string(job.Status),
		Source:    job.Source,
		Targets:   job.Request.Targets,
		Ports:     job.Request.Ports,
		Profile:   job.Request.Profile,
		ScanType:  job.Request.ScanType,
		Progress:  job.Progress,
		CreatedAt: job.CreatedAt,
		StartedAt: job.StartedAt,
		EndedAt:   job.EndedAt,
		Error:     job.Error,
	}

	if d := job.Duration(); d > 0 {
		resp.Duration = d.Round(time.Millisecond).String()
	}

	return resp
}

// filterJobs narrows a job list by status and source. Empty filter
// values match everything.
func filterJobs(all []jobs.Job, status, source string) []jobs.Job {
	if status == "" && source == "" {
		return all
	}

	filtered := make([]jobs.Job, 0, len(all))
	for _, job := range all {
		if status != "" && string(job.Status) != status {
			continue
		}
		if source != "" && job.Source != source {
			continue
		}
		filtered = append(filtered, job)
	}
	return filtered
}
