// Package handlers provides HTTP request handlers for the ScanPro API.
// This file implements schedule management endpoints for recurring
// scans, including creation, removal, and activation control.
package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/MAS191/ScanPro/internal/errors"
	"github.com/MAS191/ScanPro/internal/metrics"
	"github.com/MAS191/ScanPro/internal/scheduler"
)

// Schedule validation constants.
const (
	maxScheduleNameLength = 255
)

// ScheduleHandler handles schedule-related API endpoints.
type ScheduleHandler struct {
	schedules ScheduleService
	logger    *slog.Logger
	metrics   metrics.MetricsRegistry
}

// NewScheduleHandler creates a new schedule handler.
func NewScheduleHandler(scheduleService ScheduleService, logger *slog.Logger, metricsRegistry metrics.MetricsRegistry) *ScheduleHandler {
	return &ScheduleHandler{
		schedules: scheduleService,
		logger:    logger.With("handler", "schedule"),
		metrics:   metricsRegistry,
	}
}

// ScheduleRequest represents a schedule creation request. The scan
// payload uses the same shape as POST /scans; its name may be left
// empty to inherit the schedule name.
type ScheduleRequest struct {
	Name string      `json:"name"`
	Cron string      `json:"cron"`
	Scan ScanRequest `json:"scan"`
}

// ScheduleResponse represents a schedule response.
type ScheduleResponse struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Cron      string     `json:"cron"`
	Targets   []string   `json:"targets"`
	Ports     string     `json:"ports,omitempty"`
	Profile   string     `json:"profile,omitempty"`
	ScanType  string     `json:"scan_type,omitempty"`
	Enabled   bool       `json:"enabled"`
	LastRun   *time.Time `json:"last_run,omitempty"`
	NextRun   time.Time  `json:"next_run"`
	LastJobID string     `json:"last_job_id,omitempty"`
}

// ListSchedules handles GET /api/v1/schedules - list all schedules.
func (h *ScheduleHandler) ListSchedules(w http.ResponseWriter, r *http.Request) {
	params, err := getPaginationParams(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}

	entries := h.schedules.Entries()
	page := paginate(entries, params)

	responses := make([]ScheduleResponse, 0, len(page))
	for i := range page {
		responses = append(responses, entryToResponse(&page[i]))
	}

	recordMetric(h.metrics, "api_schedules_listed_total", nil)
	writePaginatedResponse(w, r, responses, params, len(entries))
}

// CreateSchedule handles POST /api/v1/schedules - register a recurring
// scan. New schedules start enabled.
func (h *ScheduleHandler) CreateSchedule(w http.ResponseWriter, r *http.Request) {
	var req ScheduleRequest
	if err := parseJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}

	if err := h.validateScheduleRequest(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}

	entry, err := h.schedules.Add(scheduler.Schedule{
		Name:    req.Name,
		Cron:    req.Cron,
		Request: toJobRequest(&req.Scan),
	})
	if err != nil {
		handleServiceError(w, r, err, "create", "schedule", h.logger)
		return
	}

	h.logger.Info("Schedule created",
		"request_id", getRequestID(r),
		"schedule_id", entry.ID,
		"cron", entry.Cron)

	recordMetric(h.metrics, "api_schedules_created_total", nil)
	writeJSON(w, r, http.StatusCreated, entryToResponse(&entry))
}

// GetSchedule handles GET /api/v1/schedules/{id} - get a specific
// schedule.
func (h *ScheduleHandler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	scheduleID, err := extractUUIDFromPath(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}

	for _, entry := range h.schedules.Entries() {
		if entry.ID == scheduleID {
			recordMetric(h.metrics, "api_schedules_retrieved_total", nil)
			writeJSON(w, r, http.StatusOK, entryToResponse(&entry))
			return
		}
	}

	handleServiceError(w, r,
		errors.ErrNotFoundWithID("schedule", scheduleID.String()),
		"get", "schedule", h.logger)
}

// DeleteSchedule handles DELETE /api/v1/schedules/{id} - unregister a
// schedule.
func (h *ScheduleHandler) DeleteSchedule(w http.ResponseWriter, r *http.Request) {
	scheduleID, err := extractUUIDFromPath(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}

	if err := h.schedules.Remove(scheduleID); err != nil {
		handleServiceError(w, r, err, "delete", "schedule", h.logger)
		return
	}

	h.logger.Info("Schedule deleted",
		"request_id", getRequestID(r),
		"schedule_id", scheduleID)

	recordMetric(h.metrics, "api_schedules_deleted_total", nil)
	w.WriteHeader(http.StatusNoContent)
}

// EnableSchedule handles POST /api/v1/schedules/{id}/enable - enable a
// schedule.
func (h *ScheduleHandler) EnableSchedule(w http.ResponseWriter, r *http.Request) {
	h.setScheduleEnabled(w, r, true)
}

// DisableSchedule handles POST /api/v1/schedules/{id}/disable - disable
// a schedule. The schedule stays registered; its ticks stop submitting
// scans.
func (h *ScheduleHandler) DisableSchedule(w http.ResponseWriter, r *http.Request) {
	h.setScheduleEnabled(w, r, false)
}

func (h *ScheduleHandler) setScheduleEnabled(w http.ResponseWriter, r *http.Request, enabled bool) {
	scheduleID, err := extractUUIDFromPath(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}

	action, metricName := "disable", "api_schedules_disabled_total"
	if enabled {
		action, metricName = "enable", "api_schedules_enabled_total"
	}

	if enabled {
		err = h.schedules.Enable(scheduleID)
	} else {
		err = h.schedules.Disable(scheduleID)
	}
	if err != nil {
		handleServiceError(w, r, err, action, "schedule", h.logger)
		return
	}

	h.logger.Info("Schedule "+action+"d",
		"request_id", getRequestID(r),
		"schedule_id", scheduleID)

	recordMetric(h.metrics, metricName, nil)
	writeJSON(w, r, http.StatusOK, map[string]interface{}{
		"schedule_id": scheduleID,
		"status":      action + "d",
		"message":     fmt.Sprintf("Schedule has been %sd", action),
		"timestamp":   time.Now().UTC(),
		"request_id":  getRequestID(r),
	})
}

// Helper methods

// validateScheduleRequest validates a schedule request. Cron syntax is
// checked by the scheduler itself at registration.
func (h *ScheduleHandler) validateScheduleRequest(req *ScheduleRequest) error {
	if req.Name == "" {
		return fmt.Errorf("schedule name is required")
	}
	if len(req.Name) > maxScheduleNameLength {
		return fmt.Errorf("schedule name too long (max %d characters)", maxScheduleNameLength)
	}
	if req.Cron == "" {
		return fmt.Errorf("cron expression is required")
	}
	return validateScanRequest(&req.Scan)
}

// entryToResponse converts a scheduler entry to the API response shape.
func entryToResponse(entry *scheduler.Entry) ScheduleResponse {
	return ScheduleResponse{
		ID:        entry.ID.String(),
		Name:      entry.Name,
		Cron:      entry.Cron,
		Targets:   entry.Request.Targets,
		Ports:     entry.Request.Ports,
		Profile:   entry.Request.Profile,
		ScanType:  entry.Request.ScanType,
		Enabled:   entry.Enabled,
		LastRun:   entry.LastRun,
		NextRun:   entry.NextRun,
		LastJobID: entry.LastJobID,
	}
}
