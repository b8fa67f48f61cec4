// Package handlers provides HTTP request handlers for the ScanPro API.
// This file implements health check, system status, and version
// endpoints.
package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"runtime"
	"time"

	"github.com/MAS191/ScanPro/internal/jobs"
	"github.com/MAS191/ScanPro/internal/metrics"
)

// Status constants.
const (
	StatusHealthy       = "healthy"
	StatusDegraded      = "degraded"
	StatusNotConfigured = "not configured"
)

// Health check thresholds.
const (
	maxHealthyMemory     = 1 << 30 // 1GB allocated
	maxHealthyGoroutines = 5000
)

// ClientCounter reports connected WebSocket clients. It is satisfied
// by *WebSocketHandler.
type ClientCounter interface {
	GetConnectedClients() int
}

// HealthHandler handles health check and status endpoints.
type HealthHandler struct {
	jobs      JobService
	schedules ScheduleService
	clients   ClientCounter
	logger    *slog.Logger
	metrics   metrics.MetricsRegistry
	startTime time.Time
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(
	jobService JobService,
	scheduleService ScheduleService,
	clients ClientCounter,
	logger *slog.Logger,
	metricsRegistry metrics.MetricsRegistry,
) *HealthHandler {
	return &HealthHandler{
		jobs:      jobService,
		schedules: scheduleService,
		clients:   clients,
		logger:    logger.With("handler", "health"),
		metrics:   metricsRegistry,
		startTime: time.Now(),
	}
}

// HealthResponse represents a health check response.
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Uptime    string            `json:"uptime"`
	Checks    map[string]string `json:"checks"`
}

// LivenessResponse represents a simple liveness check response.
type LivenessResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Uptime    string    `json:"uptime"`
}

// StatusResponse represents a detailed status response.
type StatusResponse struct {
	Service   ServiceInfo    `json:"service"`
	System    SystemInfo     `json:"system"`
	Jobs      jobs.Stats     `json:"jobs"`
	Scheduler SchedulerInfo  `json:"scheduler"`
	WebSocket WebSocketInfo  `json:"websocket"`
	Metrics   MetricsInfo    `json:"metrics"`
	Health    HealthResponse `json:"health"`
	Timestamp time.Time      `json:"timestamp"`
}

// ServiceInfo contains service-related information.
type ServiceInfo struct {
	Name      string    `json:"name"`
	Version   string    `json:"version"`
	StartTime time.Time `json:"start_time"`
	Uptime    string    `json:"uptime"`
	PID       int       `json:"pid"`
}

// SystemInfo contains system-related information.
type SystemInfo struct {
	OS           string     `json:"os"`
	Architecture string     `json:"architecture"`
	CPUs         int        `json:"cpus"`
	GoVersion    string     `json:"go_version"`
	Memory       MemoryInfo `json:"memory"`
	Goroutines   int        `json:"goroutines"`
}

// MemoryInfo contains memory usage information.
type MemoryInfo struct {
	Allocated   uint64 `json:"allocated_bytes"`
	TotalAlloc  uint64 `json:"total_alloc_bytes"`
	System      uint64 `json:"system_bytes"`
	GCCycles    uint32 `json:"gc_cycles"`
	LastGC      string `json:"last_gc,omitempty"`
	HeapObjects uint64 `json:"heap_objects"`
}

// SchedulerInfo contains schedule registration information.
type SchedulerInfo struct {
	Schedules int `json:"schedules"`
	Enabled   int `json:"enabled"`
}

// WebSocketInfo contains event stream information.
type WebSocketInfo struct {
	ConnectedClients int `json:"connected_clients"`
}

// MetricsInfo contains metrics system information.
type MetricsInfo struct {
	Enabled       bool `json:"enabled"`
	TotalCounters int  `json:"total_counters"`
	TotalGauges   int  `json:"total_gauges"`
	TotalHistos   int  `json:"total_histograms"`
}

// VersionResponse represents version information.
type VersionResponse struct {
	Version   string    `json:"version"`
	Commit    string    `json:"commit"`
	BuildTime string    `json:"build_time"`
	GoVersion string    `json:"go_version"`
	Timestamp time.Time `json:"timestamp"`
}

// Healthz performs a simple liveness check without dependencies.
func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	h.logger.Debug("Liveness check requested", "remote_addr", r.RemoteAddr)

	response := LivenessResponse{
		Status:    "alive",
		Timestamp: time.Now().UTC(),
		Uptime:    time.Since(h.startTime).String(),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.logger.Error("Failed to encode liveness response", "error", err)
		return
	}

	if h.metrics != nil {
		h.metrics.Counter("api_liveness_checks_total", nil)
	}
}

// Status provides detailed system status information.
func (h *HealthHandler) Status(w http.ResponseWriter, r *http.Request) {
	h.logger.Debug("Status check requested", "remote_addr", r.RemoteAddr)

	response := StatusResponse{
		Timestamp: time.Now().UTC(),
	}

	response.Service = ServiceInfo{
		Name:      "scanpro",
		Version:   getVersion(),
		StartTime: h.startTime,
		Uptime:    time.Since(h.startTime).String(),
		PID:       os.Getpid(),
	}

	response.System = h.getSystemInfo()

	if h.jobs != nil {
		response.Jobs = h.jobs.Stats()
	}
	response.Scheduler = h.getSchedulerInfo()
	if h.clients != nil {
		response.WebSocket.ConnectedClients = h.clients.GetConnectedClients()
	}
	response.Metrics = h.getMetricsInfo()
	response.Health = h.getHealthInfo()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.logger.Error("Failed to encode status response", "error", err)
		return
	}

	if h.metrics != nil {
		h.metrics.Counter("api_status_checks_total", metrics.Labels{
			"status": response.Health.Status,
		})
	}
}

// Version provides version information.
func (h *HealthHandler) Version(w http.ResponseWriter, r *http.Request) {
	h.logger.Debug("Version requested", "remote_addr", r.RemoteAddr)

	response := VersionResponse{
		Version:   getVersion(),
		Commit:    getCommit(),
		BuildTime: getBuildTime(),
		GoVersion: runtime.Version(),
		Timestamp: time.Now().UTC(),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.logger.Error("Failed to encode version response", "error", err)
		return
	}

	if h.metrics != nil {
		h.metrics.Counter("api_version_requests_total", nil)
	}
}

// getSystemInfo gathers system information.
func (h *HealthHandler) getSystemInfo() SystemInfo {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	memInfo := MemoryInfo{
		Allocated:   memStats.Alloc,
		TotalAlloc:  memStats.TotalAlloc,
		System:      memStats.Sys,
		GCCycles:    memStats.NumGC,
		HeapObjects: memStats.HeapObjects,
	}

	// LastGC is nanoseconds since epoch as uint64; guard the int64
	// conversion.
	const maxInt64 = 1<<63 - 1
	if memStats.LastGC > 0 && memStats.LastGC <= maxInt64 {
		memInfo.LastGC = time.Unix(0, int64(memStats.LastGC)).Format(time.RFC3339)
	}

	return SystemInfo{
		OS:           runtime.GOOS,
		Architecture: runtime.GOARCH,
		CPUs:         runtime.NumCPU(),
		GoVersion:    runtime.Version(),
		Memory:       memInfo,
		Goroutines:   runtime.NumGoroutine(),
	}
}

// getSchedulerInfo gathers schedule registration counts.
func (h *HealthHandler) getSchedulerInfo() SchedulerInfo {
	info := SchedulerInfo{}
	if h.schedules == nil {
		return info
	}

	entries := h.schedules.Entries()
	info.Schedules = len(entries)
	for i := range entries {
		if entries[i].Enabled {
			info.Enabled++
		}
	}
	return info
}

// getMetricsInfo gathers metrics system information.
func (h *HealthHandler) getMetricsInfo() MetricsInfo {
	info := MetricsInfo{
		Enabled: h.metrics != nil && h.metrics.IsEnabled(),
	}
	if h.metrics == nil {
		return info
	}

	for _, metric := range h.metrics.GetMetrics() {
		switch metric.Type {
		case metrics.TypeCounter:
			info.TotalCounters++
		case metrics.TypeGauge:
			info.TotalGauges++
		case metrics.TypeHistogram:
			info.TotalHistos++
		}
	}
	return info
}

// getHealthInfo performs health checks and returns status. The process
// serves requests even when degraded; the checks exist so operators
// notice runaway memory or goroutine growth.
func (h *HealthHandler) getHealthInfo() HealthResponse {
	response := HealthResponse{
		Status:    StatusHealthy,
		Timestamp: time.Now().UTC(),
		Uptime:    time.Since(h.startTime).String(),
		Checks:    make(map[string]string),
	}

	if h.jobs != nil {
		response.Checks["jobs"] = "ok"
	} else {
		response.Checks["jobs"] = StatusNotConfigured
	}

	if h.schedules != nil {
		response.Checks["scheduler"] = "ok"
	} else {
		response.Checks["scheduler"] = StatusNotConfigured
	}

	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)
	if memStats.Alloc > maxHealthyMemory {
		response.Status = StatusDegraded
		response.Checks["memory"] = "high usage"
	} else {
		response.Checks["memory"] = "ok"
	}

	if goroutines := runtime.NumGoroutine(); goroutines > maxHealthyGoroutines {
		response.Status = StatusDegraded
		response.Checks["goroutines"] = "high count"
	} else {
		response.Checks["goroutines"] = "ok"
	}

	return response
}

// Build information, set via ldflags by the release build.
var (
	version   = "dev"
	commit    = "none"
	buildTime = "unknown"
)

func getVersion() string {
	return version
}

func getCommit() string {
	return commit
}

func getBuildTime() string {
	return buildTime
}

// SetBuildInfo sets build information (called by main package).
func SetBuildInfo(v, c, bt string) {
	version = v
	commit = c
	buildTime = bt
}
