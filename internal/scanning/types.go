package scanning

import (
	"fmt"
	"time"
)

const (
	// minPort is the lowest valid TCP port number.
	minPort = 1
	// maxPort is the highest valid TCP port number.
	maxPort = 65535
)

// PortState classifies the outcome of a single port probe.
type PortState string

const (
	// PortStateOpen means the connection attempt succeeded.
	PortStateOpen PortState = "open"
	// PortStateClosed means the host actively refused the connection.
	PortStateClosed PortState = "closed"
	// PortStateFiltered means the connection attempt timed out, which
	// usually indicates a firewall dropping packets.
	PortStateFiltered PortState = "filtered"
	// PortStateUnknown means the probe failed for a reason that does not
	// map onto any other state.
	PortStateUnknown PortState = "unknown"
)

// ScanType identifies the probe technique requested for a scan.
type ScanType string

const (
	// ScanTypeTCPConnect performs a full TCP handshake per port. This is
	// the only technique currently implemented.
	ScanTypeTCPConnect ScanType = "tcp_connect"
	// ScanTypeTCPSYN is recognized but not implemented; requesting it
	// fails the run before any probe is sent.
	ScanTypeTCPSYN ScanType = "tcp_syn"
	// ScanTypeUDP is recognized but not implemented.
	ScanTypeUDP ScanType = "udp"
	// ScanTypeICMP is recognized but not implemented.
	ScanTypeICMP ScanType = "icmp"
)

// knownScanTypes holds every scan type the configuration accepts. Acceptance
// is not implementation: only tcp_connect survives Run's type check.
var knownScanTypes = map[ScanType]bool{
	ScanTypeTCPConnect: true,
	ScanTypeTCPSYN:     true,
	ScanTypeUDP:        true,
	ScanTypeICMP:       true,
}

// ScanError represents error types for scan operations.
type ScanError struct {
	Op   string // Operation that failed
	Err  error  // Original error
	Host string // Host where the error occurred, if applicable
	Port int    // Port where the error occurred, if applicable
}

func (e *ScanError) Error() string {
	if e.Host != "" && e.Port > 0 {
		return fmt.Sprintf("%s failed for %s:%d: %v", e.Op, e.Host, e.Port, e.Err)
	}
	if e.Host != "" {
		return fmt.Sprintf("%s failed for %s: %v", e.Op, e.Host, e.Err)
	}
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *ScanError) Unwrap() error {
	return e.Err
}

// PortResult records the outcome of probing a single port on a host. Host
// carries the resolved address the probe actually dialed, which may differ
// from the target name the caller supplied.
type PortResult struct {
	Host    string
	Port    int
	State   PortState
	Service string
	Banner  string
	Elapsed time.Duration
	Err     string
}

// HostResult aggregates the port results for one scanned target. Host is the
// target exactly as the caller supplied it. Ports appear in the order probes
// completed, not in port order; consumers that want sorted output sort for
// themselves.
type HostResult struct {
	Host      string
	Ports     []PortResult
	ScanStart time.Time
	ScanEnd   time.Time
	IsAlive   bool
}

// OpenPorts returns the results for ports found open, in completion order.
func (h *HostResult) OpenPorts() []PortResult {
	var open []PortResult
	for _, p := range h.Ports {
		if p.State == PortStateOpen {
			open = append(open, p)
		}
	}
	return open
}

// Config defines a scan request.
type Config struct {
	// Targets is the list of hosts to scan, in order. Entries may be
	// hostnames or IP addresses; expansion of CIDR blocks and address
	// ranges happens before the engine sees them.
	Targets []string
	// Ports lists the ports probed on every target. The list must be
	// sorted ascending with no duplicates.
	Ports []int
	// ScanType selects the probe technique.
	ScanType ScanType
	// Timeout bounds each individual connection attempt.
	Timeout time.Duration
	// Concurrency is the number of probe workers started per host.
	Concurrency int
	// Delay paces connection attempts across the whole worker pool. Zero
	// disables pacing.
	Delay time.Duration
	// Banners enables a banner read on every open port.
	Banners bool
	// Verbose requests per-port progress logging.
	Verbose bool
}

// Validate checks if the scan configuration is valid. It reports problems
// rather than repairing them; normalizing the port list is the caller's job.
func (c *Config) Validate() error {
	if len(c.Targets) == 0 {
		return &ScanError{Op: "validate config", Err: fmt.Errorf("no targets specified")}
	}
	if len(c.Ports) == 0 {
		return &ScanError{Op: "validate config", Err: fmt.Errorf("no ports specified")}
	}
	for i, port := range c.Ports {
		if port < minPort || port > maxPort {
			return &ScanError{
				Op:  "validate config",
				Err: fmt.Errorf("invalid port %d: must be between %d and %d", port, minPort, maxPort),
			}
		}
		if i > 0 && port <= c.Ports[i-1] {
			return &ScanError{
				Op:  "validate config",
				Err: fmt.Errorf("ports must be sorted ascending without duplicates (%d after %d)", port, c.Ports[i-1]),
			}
		}
	}
	if !knownScanTypes[c.ScanType] {
		return &ScanError{Op: "validate config", Err: fmt.Errorf("invalid scan type: %q", c.ScanType)}
	}
	if c.Timeout <= 0 {
		return &ScanError{Op: "validate config", Err: fmt.Errorf("timeout must be positive, got %v", c.Timeout)}
	}
	if c.Concurrency < 1 {
		return &ScanError{Op: "validate config", Err: fmt.Errorf("concurrency must be at least 1, got %d", c.Concurrency)}
	}
	if c.Delay < 0 {
		return &ScanError{Op: "validate config", Err: fmt.Errorf("delay cannot be negative, got %v", c.Delay)}
	}
	return nil
}

// Stats summarizes a completed run.
type Stats struct {
	// TotalHosts counts targets that resolved and were scanned. Skipped
	// targets do not count.
	TotalHosts int
	// LiveHosts counts scanned hosts with at least one open port.
	LiveHosts int
	// PortsScanned counts recorded port results across all hosts.
	PortsScanned int
	// OpenPorts counts recorded results in the open state.
	OpenPorts int
}

// RunResult contains everything produced by a scan run.
type RunResult struct {
	Hosts     []HostResult
	Stats     Stats
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
}

// NewRunResult creates a RunResult with the start time set to now.
func NewRunResult() *RunResult {
	return &RunResult{
		StartTime: time.Now(),
	}
}

// Complete marks the run finished, stamps the end time, and computes summary
// statistics from the accumulated host results.
func (r *RunResult) Complete() {
	r.EndTime = time.Now()
	r.Duration = r.EndTime.Sub(r.StartTime)

	r.Stats = Stats{TotalHosts: len(r.Hosts)}
	for i := range r.Hosts {
		host := &r.Hosts[i]
		if host.IsAlive {
			r.Stats.LiveHosts++
		}
		r.Stats.PortsScanned += len(host.Ports)
		for _, p := range host.Ports {
			if p.State == PortStateOpen {
				r.Stats.OpenPorts++
			}
		}
	}
}

// EventType identifies a progress event emitted during a run.
type EventType string

const (
	// EventHostStarted fires before a target is resolved.
	EventHostStarted EventType = "host_started"
	// EventPortResult fires once per recorded port result.
	EventPortResult EventType = "port_result"
	// EventHostSkipped fires when a target fails to resolve and is
	// dropped from the run.
	EventHostSkipped EventType = "host_skipped"
	// EventHostCompleted fires after a target's worker pool has drained.
	EventHostCompleted EventType = "host_completed"
	// EventScanCompleted fires exactly once, after the last target.
	EventScanCompleted EventType = "scan_completed"
)

// Event carries progress information for a running scan. Target is always
// the caller-supplied target string and TargetIndex is zero-based.
type Event struct {
	Type        EventType
	Target      string
	TargetIndex int
	TargetCount int
	// Result is set for port_result events.
	Result *PortResult
	// Host is set for host_completed events.
	Host *HostResult
	// Err is set for host_skipped events, and on scan_completed when the
	// run was canceled.
	Err error
}

// ProgressFunc receives progress events during a run. Calls are made
// synchronously from the scan goroutine, so implementations must return
// quickly or they will stall the scan. A nil ProgressFunc disables event
// delivery.
type ProgressFunc func(Event)
