// Package docs provides Swagger documentation for the ScanPro API.
//
// This file contains all API endpoint documentation using swaggo
// annotations. Run `swag init` to regenerate the OpenAPI specification
// under ./swagger.
//
//go:generate swag init -g swagger_docs.go -o ./swagger --parseDependency --parseInternal
package docs

import (
	"net/http"
	"time"
)

// @title ScanPro API
// @version 0.3.0
// @description Concurrent TCP port scanning service with scan profiles, cron scheduling and live progress streaming.
// @description
// @description ## Features
// @description - **Native Scan Engine**: Concurrent TCP connect scans with per-port timeouts and banner grabbing
// @description - **Scan Profiles**: Built-in and user-defined timing profiles (fast, normal, thorough)
// @description - **Port Presets**: Named port sets such as web, db, top100 and full
// @description - **Scheduling**: Recurring scans from cron expressions
// @description - **Real-time Updates**: WebSocket stream of job lifecycle and progress events at /ws/scans
// @description - **Monitoring**: Prometheus metrics, structured logging and health checks
// @description
// @description ## Authentication
// @description When authentication is enabled, include your API key in the `X-API-Key` header
// @description or as an `Authorization: Bearer <key>` token. Health, version and metrics
// @description endpoints never require authentication.
//
// @security ApiKeyAuth
//
// @contact.name ScanPro Support
// @contact.url https://github.com/MAS191/ScanPro
//
// @host localhost:8080
// @BasePath /api/v1
//
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key
// @description API key for authentication

// LivenessResponse represents a liveness probe response
type LivenessResponse struct {
	Status    string    `json:"status" example:"alive"`
	Timestamp time.Time `json:"timestamp"`
	Uptime    string    `json:"uptime" example:"2h30m45s"`
}

// HealthResponse represents aggregated component health
type HealthResponse struct {
	Status    string            `json:"status" example:"healthy"`
	Timestamp time.Time         `json:"timestamp"`
	Uptime    string            `json:"uptime" example:"2h30m45s"`
	Checks    map[string]string `json:"checks"`
}

// StatusResponse represents the full daemon status report
type StatusResponse struct {
	Service   map[string]interface{} `json:"service"`
	System    map[string]interface{} `json:"system"`
	Jobs      map[string]interface{} `json:"jobs"`
	Scheduler map[string]interface{} `json:"scheduler"`
	WebSocket map[string]interface{} `json:"websocket"`
	Metrics   map[string]interface{} `json:"metrics"`
	Health    HealthResponse         `json:"health"`
	Timestamp time.Time              `json:"timestamp"`
}

// VersionResponse represents version and build information
type VersionResponse struct {
	Version   string    `json:"version" example:"0.3.0"`
	Commit    string    `json:"commit" example:"ab3f19c"`
	BuildTime string    `json:"build_time" example:"2026-08-01T12:00:00Z"`
	GoVersion string    `json:"go_version" example:"go1.26.2"`
	Timestamp time.Time `json:"timestamp"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error     string    `json:"error" example:"Resource not found"`
	Message   string    `json:"message" example:"scan not found"`
	Code      string    `json:"code,omitempty" example:"NOT_FOUND"`
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id,omitempty" example:"req_a1b2c3d4"`
}

// ScanRequest represents a request to create a new scan
type ScanRequest struct {
	Name        string   `json:"name,omitempty" example:"nightly perimeter sweep"`
	Targets     []string `json:"targets" example:"192.168.1.0/24"`
	Ports       string   `json:"ports,omitempty" example:"22,80,443,8000-8100"`
	Profile     string   `json:"profile,omitempty" example:"fast"`
	ScanType    string   `json:"scan_type,omitempty" example:"tcp_connect"`
	TimeoutMS   *int     `json:"timeout_ms,omitempty" example:"500"`
	Concurrency *int     `json:"concurrency,omitempty" example:"100"`
	DelayMS     *int     `json:"delay_ms,omitempty" example:"0"`
	Banners     *bool    `json:"banners,omitempty" example:"true"`
}

// ScanProgress represents live progress counters for a scan
type ScanProgress struct {
	TargetsTotal int     `json:"targets_total" example:"254"`
	TargetsDone  int     `json:"targets_done" example:"128"`
	PortsScanned int     `json:"ports_scanned" example:"12800"`
	OpenPorts    int     `json:"open_ports" example:"37"`
	Percent      float64 `json:"percent" example:"50.4"`
}

// ScanResponse represents a scan job snapshot
type ScanResponse struct {
	ID        string       `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	Name      string       `json:"name,omitempty" example:"nightly perimeter sweep"`
	Status    string       `json:"status" example:"running" enums:"pending,running,completed,failed,canceled"`
	Source    string       `json:"source" example:"api" enums:"api,scheduler"`
	Targets   []string     `json:"targets" example:"192.168.1.0/24"`
	Ports     string       `json:"ports,omitempty" example:"22,80,443"`
	Profile   string       `json:"profile,omitempty" example:"fast"`
	ScanType  string       `json:"scan_type,omitempty" example:"tcp_connect"`
	Progress  ScanProgress `json:"progress"`
	CreatedAt time.Time    `json:"created_at"`
	StartedAt *time.Time   `json:"started_at,omitempty"`
	EndedAt   *time.Time   `json:"ended_at,omitempty"`
	Duration  string       `json:"duration,omitempty" example:"14m30s"`
	Error     string       `json:"error,omitempty"`
}

// PortResult represents a single scanned port in a report
type PortResult struct {
	Port     int     `json:"port" example:"443"`
	State    string  `json:"state" example:"open" enums:"open,closed,filtered"`
	Service  string  `json:"service,omitempty" example:"https"`
	Banner   string  `json:"banner,omitempty" example:"SSH-2.0-OpenSSH_9.6"`
	ScanTime float64 `json:"scan_time" example:"0.012"`
	Error    string  `json:"error,omitempty"`
}

// HostResult represents one scanned host in a report
type HostResult struct {
	Host         string       `json:"host" example:"192.168.1.100"`
	ScanStart    time.Time    `json:"scan_start"`
	ScanEnd      time.Time    `json:"scan_end"`
	ScanDuration float64      `json:"scan_duration" example:"3.21"`
	IsAlive      bool         `json:"is_alive" example:"true"`
	Ports        []PortResult `json:"ports"`
}

// ScanReport represents the full results document of a completed scan
type ScanReport struct {
	Version  string                 `json:"scanpro_version" example:"0.3.0"`
	ScanInfo map[string]interface{} `json:"scan_info"`
	Hosts    []HostResult           `json:"hosts"`
}

// ProfileRequest represents a request to create or update a profile
type ProfileRequest struct {
	ID          string `json:"id" example:"dmz-sweep"`
	Name        string `json:"name" example:"DMZ Sweep"`
	Description string `json:"description,omitempty" example:"Slow scan for rate-limited segments"`
	TimeoutMS   int    `json:"timeout_ms" example:"2000"`
	Concurrency int    `json:"concurrency" example:"25"`
	DelayMS     int    `json:"delay_ms" example:"100"`
}

// ProfileResponse represents a scan profile
type ProfileResponse struct {
	ID          string `json:"id" example:"fast"`
	Name        string `json:"name" example:"Fast"`
	Description string `json:"description,omitempty" example:"Quick scan with short timeouts"`
	TimeoutMS   int    `json:"timeout_ms" example:"500"`
	Concurrency int    `json:"concurrency" example:"200"`
	DelayMS     int    `json:"delay_ms" example:"0"`
	BuiltIn     bool   `json:"built_in" example:"true"`
}

// PresetResponse represents a named port preset
type PresetResponse struct {
	Name      string `json:"name" example:"web"`
	PortCount int    `json:"port_count" example:"8"`
	Ports     []int  `json:"ports,omitempty" example:"80,443,8080,8443"`
}

// PresetListResponse represents the preset listing envelope
type PresetListResponse struct {
	Presets []PresetResponse `json:"presets"`
	Count   int              `json:"count" example:"6"`
}

// ScheduleRequest represents a request to register a schedule
type ScheduleRequest struct {
	Name string      `json:"name" example:"nightly"`
	Cron string      `json:"cron" example:"0 2 * * *"`
	Scan ScanRequest `json:"scan"`
}

// ScheduleResponse represents a registered schedule
type ScheduleResponse struct {
	ID        string     `json:"id" example:"550e8400-e29b-41d4-a716-446655440005"`
	Name      string     `json:"name" example:"nightly"`
	Cron      string     `json:"cron" example:"0 2 * * *"`
	Targets   []string   `json:"targets" example:"192.168.1.0/24"`
	Ports     string     `json:"ports,omitempty" example:"top100"`
	Profile   string     `json:"profile,omitempty" example:"default"`
	ScanType  string     `json:"scan_type,omitempty" example:"tcp_connect"`
	Enabled   bool       `json:"enabled" example:"true"`
	LastRun   *time.Time `json:"last_run,omitempty"`
	NextRun   time.Time  `json:"next_run"`
	LastJobID string     `json:"last_job_id,omitempty"`
}

// PaginationInfo represents pagination metadata
type PaginationInfo struct {
	Page       int `json:"page" example:"1"`
	PageSize   int `json:"page_size" example:"20"`
	TotalItems int `json:"total_items" example:"42"`
	TotalPages int `json:"total_pages" example:"3"`
}

// PaginatedScansResponse represents a paginated list of scans
type PaginatedScansResponse struct {
	Data       []ScanResponse `json:"data"`
	Pagination PaginationInfo `json:"pagination"`
}

// PaginatedProfilesResponse represents a paginated list of profiles
type PaginatedProfilesResponse struct {
	Data       []ProfileResponse `json:"data"`
	Pagination PaginationInfo    `json:"pagination"`
}

// PaginatedSchedulesResponse represents a paginated list of schedules
type PaginatedSchedulesResponse struct {
	Data       []ScheduleResponse `json:"data"`
	Pagination PaginationInfo     `json:"pagination"`
}

// Healthz godoc
// @Summary Liveness probe
// @Description Returns liveness without touching any dependency
// @Tags System
// @Produce json
// @Success 200 {object} LivenessResponse
// @Router /healthz [get]
// @ID getHealthz
func Healthz(_ http.ResponseWriter, _ *http.Request) {}

// Status godoc
// @Summary System status
// @Description Returns service, system, job, scheduler and event stream status
// @Tags System
// @Produce json
// @Success 200 {object} StatusResponse
// @Failure 500 {object} ErrorResponse
// @Router /status [get]
// @ID getStatus
func Status(_ http.ResponseWriter, _ *http.Request) {}

// Version godoc
// @Summary Version information
// @Description Returns version and build information
// @Tags System
// @Produce json
// @Success 200 {object} VersionResponse
// @Router /version [get]
// @ID getVersion
func Version(_ http.ResponseWriter, _ *http.Request) {}

// Metrics godoc
// @Summary Prometheus metrics
// @Description Returns metrics in Prometheus exposition format
// @Tags System
// @Produce text/plain
// @Success 200 {string} string
// @Router /metrics [get]
// @ID getMetrics
func Metrics(_ http.ResponseWriter, _ *http.Request) {}

// ListScans godoc
// @Summary List scans
// @Description Get paginated list of scan jobs, newest first
// @Tags Scans
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param page_size query int false "Items per page" default(20)
// @Param status query string false "Filter by status" Enums(pending,running,completed,failed,canceled)
// @Success 200 {object} PaginatedScansResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Security ApiKeyAuth
// @Router /scans [get]
// @ID listScans
func ListScans(_ http.ResponseWriter, _ *http.Request) {}

// CreateScan godoc
// @Summary Create scan
// @Description Submit a new scan job. The job is queued and runs asynchronously; watch /ws/scans or poll the job for progress.
// @Tags Scans
// @Accept json
// @Produce json
// @Param scan body ScanRequest true "Scan configuration"
// @Success 202 {object} ScanResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Security ApiKeyAuth
// @Router /scans [post]
// @ID createScan
func CreateScan(_ http.ResponseWriter, _ *http.Request) {}

// GetScan godoc
// @Summary Get scan
// @Description Get a scan job snapshot by ID
// @Tags Scans
// @Produce json
// @Param scanId path string true "Scan ID" format(uuid)
// @Success 200 {object} ScanResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security ApiKeyAuth
// @Router /scans/{scanId} [get]
// @ID getScan
func GetScan(_ http.ResponseWriter, _ *http.Request) {}

// GetScanResults godoc
// @Summary Get scan results
// @Description Get the full results report of a completed scan
// @Tags Scans
// @Produce json
// @Param scanId path string true "Scan ID" format(uuid)
// @Success 200 {object} ScanReport
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Scan has not finished"
// @Security ApiKeyAuth
// @Router /scans/{scanId}/results [get]
// @ID getScanResults
func GetScanResults(_ http.ResponseWriter, _ *http.Request) {}

// StopScan godoc
// @Summary Stop scan
// @Description Cancel a pending or running scan. Cancellation is asynchronous; the returned snapshot may still show the scan unwinding.
// @Tags Scans
// @Produce json
// @Param scanId path string true "Scan ID" format(uuid)
// @Success 202 {object} ScanResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Scan already finished"
// @Security ApiKeyAuth
// @Router /scans/{scanId}/stop [post]
// @ID stopScan
func StopScan(_ http.ResponseWriter, _ *http.Request) {}

// ListProfiles godoc
// @Summary List profiles
// @Description Get paginated list of scan profiles
// @Tags Profiles
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param page_size query int false "Items per page" default(20)
// @Success 200 {object} PaginatedProfilesResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Security ApiKeyAuth
// @Router /profiles [get]
// @ID listProfiles
func ListProfiles(_ http.ResponseWriter, _ *http.Request) {}

// CreateProfile godoc
// @Summary Create profile
// @Description Create a new scan profile
// @Tags Profiles
// @Accept json
// @Produce json
// @Param profile body ProfileRequest true "Profile configuration"
// @Success 201 {object} ProfileResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Security ApiKeyAuth
// @Router /profiles [post]
// @ID createProfile
func CreateProfile(_ http.ResponseWriter, _ *http.Request) {}

// GetProfile godoc
// @Summary Get profile
// @Description Get scan profile details by ID
// @Tags Profiles
// @Produce json
// @Param profileId path string true "Profile ID"
// @Success 200 {object} ProfileResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security ApiKeyAuth
// @Router /profiles/{profileId} [get]
// @ID getProfile
func GetProfile(_ http.ResponseWriter, _ *http.Request) {}

// UpdateProfile godoc
// @Summary Update profile
// @Description Update a user-defined scan profile. Built-in profiles cannot be changed.
// @Tags Profiles
// @Accept json
// @Produce json
// @Param profileId path string true "Profile ID"
// @Param profile body ProfileRequest true "Updated profile configuration"
// @Success 200 {object} ProfileResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Profile is built-in"
// @Security ApiKeyAuth
// @Router /profiles/{profileId} [put]
// @ID updateProfile
func UpdateProfile(_ http.ResponseWriter, _ *http.Request) {}

// DeleteProfile godoc
// @Summary Delete profile
// @Description Delete a user-defined scan profile. Built-in profiles cannot be deleted.
// @Tags Profiles
// @Param profileId path string true "Profile ID"
// @Success 204 "Successfully deleted"
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Profile is built-in"
// @Security ApiKeyAuth
// @Router /profiles/{profileId} [delete]
// @ID deleteProfile
func DeleteProfile(_ http.ResponseWriter, _ *http.Request) {}

// ListPresets godoc
// @Summary List port presets
// @Description Get the named port presets accepted in the ports field of scan requests
// @Tags Profiles
// @Produce json
// @Success 200 {object} PresetListResponse
// @Failure 401 {object} ErrorResponse
// @Security ApiKeyAuth
// @Router /presets [get]
// @ID listPresets
func ListPresets(_ http.ResponseWriter, _ *http.Request) {}

// ListSchedules godoc
// @Summary List schedules
// @Description Get paginated list of registered schedules
// @Tags Schedules
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param page_size query int false "Items per page" default(20)
// @Success 200 {object} PaginatedSchedulesResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Security ApiKeyAuth
// @Router /schedules [get]
// @ID listSchedules
func ListSchedules(_ http.ResponseWriter, _ *http.Request) {}

// CreateSchedule godoc
// @Summary Create schedule
// @Description Register a recurring scan from a cron expression
// @Tags Schedules
// @Accept json
// @Produce json
// @Param schedule body ScheduleRequest true "Schedule configuration"
// @Success 201 {object} ScheduleResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Schedule name already exists"
// @Security ApiKeyAuth
// @Router /schedules [post]
// @ID createSchedule
func CreateSchedule(_ http.ResponseWriter, _ *http.Request) {}

// GetSchedule godoc
// @Summary Get schedule
// @Description Get schedule details by ID
// @Tags Schedules
// @Produce json
// @Param scheduleId path string true "Schedule ID" format(uuid)
// @Success 200 {object} ScheduleResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security ApiKeyAuth
// @Router /schedules/{scheduleId} [get]
// @ID getSchedule
func GetSchedule(_ http.ResponseWriter, _ *http.Request) {}

// DeleteSchedule godoc
// @Summary Delete schedule
// @Description Remove a schedule. Jobs it already submitted keep running.
// @Tags Schedules
// @Param scheduleId path string true "Schedule ID" format(uuid)
// @Success 204 "Successfully deleted"
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security ApiKeyAuth
// @Router /schedules/{scheduleId} [delete]
// @ID deleteSchedule
func DeleteSchedule(_ http.ResponseWriter, _ *http.Request) {}

// EnableSchedule godoc
// @Summary Enable schedule
// @Description Resume submitting scans for a schedule
// @Tags Schedules
// @Produce json
// @Param scheduleId path string true "Schedule ID" format(uuid)
// @Success 200 {object} map[string]string
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security ApiKeyAuth
// @Router /schedules/{scheduleId}/enable [post]
// @ID enableSchedule
func EnableSchedule(_ http.ResponseWriter, _ *http.Request) {}

// DisableSchedule godoc
// @Summary Disable schedule
// @Description Stop submitting scans for a schedule without removing it
// @Tags Schedules
// @Produce json
// @Param scheduleId path string true "Schedule ID" format(uuid)
// @Success 200 {object} map[string]string
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security ApiKeyAuth
// @Router /schedules/{scheduleId}/disable [post]
// @ID disableSchedule
func DisableSchedule(_ http.ResponseWriter, _ *http.Request) {}
