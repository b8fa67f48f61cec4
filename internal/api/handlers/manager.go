// Package handlers provides HTTP request handlers for the ScanPro API.
// This package implements REST endpoint handlers for scan jobs,
// profiles, schedules, and operational endpoints, plus the WebSocket
// event stream.
package handlers

import (
	"log/slog"
	"net/http"

	"github.com/MAS191/ScanPro/internal/jobs"
	"github.com/MAS191/ScanPro/internal/metrics"
)

// HandlerManager manages all API handlers and their dependencies.
type HandlerManager struct {
	logger  *slog.Logger
	metrics metrics.MetricsRegistry

	// Individual handler groups
	health    *HealthHandler
	scan      *ScanHandler
	profile   *ProfileHandler
	schedule  *ScheduleHandler
	websocket *WebSocketHandler
}

// New creates a new handler manager with all handler groups initialized.
func New(
	jobService JobService,
	scheduleService ScheduleService,
	profileStore ProfileStore,
	logger *slog.Logger,
	metricsRegistry metrics.MetricsRegistry,
) *HandlerManager {
	hm := &HandlerManager{
		logger:  logger,
		metrics: metricsRegistry,
	}

	hm.websocket = NewWebSocketHandler(logger, metricsRegistry)
	hm.health = NewHealthHandler(jobService, scheduleService, hm.websocket, logger, metricsRegistry)
	hm.scan = NewScanHandler(jobService, logger, metricsRegistry)
	hm.profile = NewProfileHandler(profileStore, logger, metricsRegistry)
	hm.schedule = NewScheduleHandler(scheduleService, logger, metricsRegistry)

	return hm
}

// Healthz handles GET /healthz - liveness check.
func (hm *HandlerManager) Healthz(w http.ResponseWriter, r *http.Request) {
	hm.health.Healthz(w, r)
}

// Status handles GET /status - get system status.
func (hm *HandlerManager) Status(w http.ResponseWriter, r *http.Request) {
	hm.health.Status(w, r)
}

// Version handles GET /version - get version information.
func (hm *HandlerManager) Version(w http.ResponseWriter, r *http.Request) {
	hm.health.Version(w, r)
}

// ListScans handles GET /api/v1/scans - list all scans.
func (hm *HandlerManager) ListScans(w http.ResponseWriter, r *http.Request) {
	hm.scan.ListScans(w, r)
}

// CreateScan handles POST /api/v1/scans - submit a new scan.
func (hm *HandlerManager) CreateScan(w http.ResponseWriter, r *http.Request) {
	hm.scan.CreateScan(w, r)
}

// GetScan handles GET /api/v1/scans/{id} - get a specific scan.
func (hm *HandlerManager) GetScan(w http.ResponseWriter, r *http.Request) {
	hm.scan.GetScan(w, r)
}

// GetScanResults handles GET /api/v1/scans/{id}/results - get scan results.
func (hm *HandlerManager) GetScanResults(w http.ResponseWriter, r *http.Request) {
	hm.scan.GetScanResults(w, r)
}

// StopScan handles POST /api/v1/scans/{id}/stop - stop a scan.
func (hm *HandlerManager) StopScan(w http.ResponseWriter, r *http.Request) {
	hm.scan.StopScan(w, r)
}

// ListProfiles handles GET /api/v1/profiles - list all profiles.
func (hm *HandlerManager) ListProfiles(w http.ResponseWriter, r *http.Request) {
	hm.profile.ListProfiles(w, r)
}

// CreateProfile handles POST /api/v1/profiles - create a new profile.
func (hm *HandlerManager) CreateProfile(w http.ResponseWriter, r *http.Request) {
	hm.profile.CreateProfile(w, r)
}

// GetProfile handles GET /api/v1/profiles/{id} - get a specific profile.
func (hm *HandlerManager) GetProfile(w http.ResponseWriter, r *http.Request) {
	hm.profile.GetProfile(w, r)
}

// UpdateProfile handles PUT /api/v1/profiles/{id} - update an existing profile.
func (hm *HandlerManager) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	hm.profile.UpdateProfile(w, r)
}

// DeleteProfile handles DELETE /api/v1/profiles/{id} - delete a profile.
func (hm *HandlerManager) DeleteProfile(w http.ResponseWriter, r *http.Request) {
	hm.profile.DeleteProfile(w, r)
}

// ListPresets handles GET /api/v1/presets - list port presets.
func (hm *HandlerManager) ListPresets(w http.ResponseWriter, r *http.Request) {
	hm.profile.ListPresets(w, r)
}

// ListSchedules handles GET /api/v1/schedules - list all schedules.
func (hm *HandlerManager) ListSchedules(w http.ResponseWriter, r *http.Request) {
	hm.schedule.ListSchedules(w, r)
}

// CreateSchedule handles POST /api/v1/schedules - create a new schedule.
func (hm *HandlerManager) CreateSchedule(w http.ResponseWriter, r *http.Request) {
	hm.schedule.CreateSchedule(w, r)
}

// GetSchedule handles GET /api/v1/schedules/{id} - get a specific schedule.
func (hm *HandlerManager) GetSchedule(w http.ResponseWriter, r *http.Request) {
	hm.schedule.GetSchedule(w, r)
}

// DeleteSchedule handles DELETE /api/v1/schedules/{id} - delete a schedule.
func (hm *HandlerManager) DeleteSchedule(w http.ResponseWriter, r *http.Request) {
	hm.schedule.DeleteSchedule(w, r)
}

// EnableSchedule handles POST /api/v1/schedules/{id}/enable - enable a schedule.
func (hm *HandlerManager) EnableSchedule(w http.ResponseWriter, r *http.Request) {
	hm.schedule.EnableSchedule(w, r)
}

// DisableSchedule handles POST /api/v1/schedules/{id}/disable - disable a schedule.
func (hm *HandlerManager) DisableSchedule(w http.ResponseWriter, r *http.Request) {
	hm.schedule.DisableSchedule(w, r)
}

// ScanWebSocket handles GET /ws/scans - WebSocket stream of scan events.
func (hm *HandlerManager) ScanWebSocket(w http.ResponseWriter, r *http.Request) {
	hm.websocket.HandleScans(w, r)
}

// HandleJobEvent forwards a job lifecycle event to WebSocket clients.
// It is wired into the jobs manager event hook by the daemon.
func (hm *HandlerManager) HandleJobEvent(event jobs.JobEvent) {
	hm.websocket.HandleJobEvent(event)
}

// ConnectedClients returns the number of connected WebSocket clients.
func (hm *HandlerManager) ConnectedClients() int {
	return hm.websocket.GetConnectedClients()
}

// Close shuts down the WebSocket hub.
func (hm *HandlerManager) Close() error {
	return hm.websocket.Close()
}

// GetLogger returns the logger instance.
func (hm *HandlerManager) GetLogger() *slog.Logger {
	return hm.logger
}

// GetMetrics returns the metrics registry.
func (hm *HandlerManager) GetMetrics() metrics.MetricsRegistry {
	return hm.metrics
}
