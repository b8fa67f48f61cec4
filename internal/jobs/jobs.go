// Package jobs tracks scan jobs through their lifecycle for the ScanPro
// daemon. A job wraps a single engine run with an ID, a status, and live
// progress counters so the API and scheduler can submit scans, watch
// them, and fetch results once they finish. The registry is held
// entirely in memory; jobs do not survive a restart.
package jobs

import (
	"time"

	"github.com/MAS191/ScanPro/internal/scanning"
)

// Status describes where a job is in its lifecycle.
type Status string

const (
	// StatusPending means the job is queued but has not started.
	StatusPending Status = "pending"
	// StatusRunning means a worker is executing the scan.
	StatusRunning Status = "running"
	// StatusCompleted means the scan finished and results are available.
	StatusCompleted Status = "completed"
	// StatusFailed means the scan ended with an error.
	StatusFailed Status = "failed"
	// StatusCanceled means the job was stopped before it could finish.
	StatusCanceled Status = "canceled"
)

// Finished reports whether the status is terminal.
func (s Status) Finished() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusCanceled:
		return true
	}
	return false
}

// Job submission sources, recorded for accounting.
const (
	SourceAPI       = "api"
	SourceScheduler = "scheduler"
)

// Request describes a scan to run. Targets and ports are given as raw
// specifications; the manager expands and validates them at submission
// so a bad request fails before a job ever exists.
type Request struct {
	// Name is an optional operator-chosen label.
	Name string `json:"name,omitempty"`
	// Targets holds target specifications. Each entry may be a host, an
	// IP address, a CIDR network, or an IPv4 range.
	Targets []string `json:"targets"`
	// Ports is a port specification or preset name. Empty selects the
	// manager's default.
	Ports string `json:"ports,omitempty"`
	// Profile selects a scan profile by ID. Profile values fill settings
	// the request leaves unset.
	Profile string `json:"profile,omitempty"`
	// ScanType selects the probe technique. Empty selects the default.
	ScanType string `json:"scan_type,omitempty"`
	// Source records who submitted the job. Empty defaults to SourceAPI.
	Source string `json:"source,omitempty"`

	// Explicit engine settings. Nil fields take their value from the
	// profile and then the manager defaults; set fields always win and
	// are clamped into the supported ranges.
	Timeout     *time.Duration `json:"timeout,omitempty"`
	Concurrency *int           `json:"concurrency,omitempty"`
	Delay       *time.Duration `json:"delay,omitempty"`
	Banners     *bool          `json:"banners,omitempty"`
}

// Progress carries live counters for a running job. TargetsDone counts
// skipped targets as done so Percent always reaches 100.
type Progress struct {
	TargetsTotal int     `json:"targets_total"`
	TargetsDone  int     `json:"targets_done"`
	PortsScanned int     `json:"ports_scanned"`
	OpenPorts    int     `json:"open_ports"`
	Percent      float64 `json:"percent"`
}

// Job is a point-in-time snapshot of a tracked scan job. Snapshots are
// values; holding one does not observe later changes.
type Job struct {
	ID        string     `json:"id"`
	Status    Status     `json:"status"`
	Source    string     `json:"source"`
	Request   Request    `json:"request"`
	Progress  Progress   `json:"progress"`
	CreatedAt time.Time  `json:"created_at"`
	StartedAt *time.Time `json:"started_at,omitempty"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`
	// Error holds the failure message for failed jobs.
	Error string `json:"error,omitempty"`
	// Result is set on snapshots of completed jobs. The result is never
	// mutated after the run finishes, so sharing the pointer is safe.
	Result *scanning.RunResult `json:"-"`
}

// Duration returns how long the job has been running, or its final
// runtime once it has ended. Jobs that never started report zero.
func (j *Job) Duration() time.Duration {
	if j.StartedAt == nil {
		return 0
	}
	if j.EndedAt == nil {
		return time.Since(*j.StartedAt)
	}
	return j.EndedAt.Sub(*j.StartedAt)
}

// EventType identifies a job lifecycle event.
type EventType string

const (
	// EventJobSubmitted fires when a job is accepted onto the queue.
	EventJobSubmitted EventType = "job_submitted"
	// EventJobStarted fires when a worker picks the job up.
	EventJobStarted EventType = "job_started"
	// EventJobProgress fires as targets finish during the run.
	EventJobProgress EventType = "job_progress"
	// EventJobCompleted fires when the scan finishes successfully.
	EventJobCompleted EventType = "job_completed"
	// EventJobFailed fires when the scan ends with an error.
	EventJobFailed EventType = "job_failed"
	// EventJobCanceled fires when the job is stopped early.
	EventJobCanceled EventType = "job_canceled"
)

// JobEvent pairs an event type with a snapshot of the job it concerns.
type JobEvent struct {
	Type EventType `json:"type"`
	Job  Job       `json:"job"`
}

// EventFunc receives job lifecycle events. Calls are synchronous from
// manager goroutines, so implementations must return quickly.
type EventFunc func(JobEvent)

// Stats counts tracked jobs by status.
type Stats struct {
	Pending   int `json:"pending"`
	Running   int `json:"running"`
	Completed int `json:"completed"`
	Failed    int `json:"failed"`
	Canceled  int `json:"canceled"`
	Total     int `json:"total"`
}
