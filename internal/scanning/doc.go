// Package scanning provides the core port scanning engine for ScanPro.
//
// This package contains the native TCP connect scanner that powers ScanPro's
// port scanning capabilities. It handles target resolution, concurrent port
// probing, banner grabbing, and provides the core data structures used
// throughout the application.
//
// # Overview
//
// The scanning package is built around the Config structure which defines
// scan parameters, and the RunResult structure which contains scan outcomes.
// The main entry points are the Run family of functions, from the plain Run
// up to RunWithResolver for full control over resolution and progress
// reporting.
//
// # Main Components
//
// ## Scan Execution
//
// The core scanning functionality is provided through:
//   - Config: Configuration structure defining scan parameters
//   - Run, RunWithContext: Execute a scan, optionally under a context
//   - RunWithProgress: Execute a scan with streaming progress events
//   - RunWithResolver: Execute a scan with a custom target resolver
//
// Targets are scanned strictly sequentially, in the order given. Each target
// gets a fresh pool of probe workers sized by Config.Concurrency, so worker
// state never leaks between hosts.
//
// ## Probing
//
// Individual ports are probed through:
//   - Prober: Interface for probing a single host and port
//   - ConnectProber: Full TCP connect implementation, no privileges needed
//
// A successful connection marks the port open. A refused connection marks it
// closed, a timed-out attempt marks it filtered, and any other failure marks
// it unknown with the error text preserved on the result.
//
// ## Target Resolution
//
// Targets are resolved to IPv4 addresses before probing:
//   - Resolver: Interface for target resolution
//   - SystemResolver: Resolution through the operating system resolver
//   - DNSResolver: Direct A queries against a configured DNS server
//
// Targets that fail to resolve are skipped entirely and never produce a
// HostResult.
//
// ## Result Processing
//
// Scan results are structured through:
//   - RunResult: Complete run output with timing and summary statistics
//   - HostResult: Per-target results keyed by the original target string
//   - PortResult: Per-port outcome carrying the resolved address, state,
//     service name, optional banner, and probe latency
//   - Stats: Run totals (hosts scanned, live hosts, ports, open ports)
//
// Port results within a host are recorded in completion order, not port
// order.
//
// # Usage Examples
//
// ## Basic Scan
//
//	cfg := &scanning.Config{
//		Targets:     []string{"192.168.1.10", "192.168.1.11"},
//		Ports:       []int{22, 80, 443},
//		ScanType:    scanning.ScanTypeTCPConnect,
//		Timeout:     3 * time.Second,
//		Concurrency: 100,
//		Banners:     true,
//	}
//
//	result, err := scanning.Run(cfg)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	for _, host := range result.Hosts {
//		fmt.Printf("%s alive=%v open=%d\n",
//			host.Host, host.IsAlive, len(host.OpenPorts()))
//	}
//
// ## Scan With Progress Events
//
//	result, err := scanning.RunWithProgress(ctx, cfg, func(ev scanning.Event) {
//		if ev.Type == scanning.EventPortResult && ev.Result.State == scanning.PortStateOpen {
//			fmt.Printf("%s:%d open\n", ev.Result.Host, ev.Result.Port)
//		}
//	})
//
// Progress callbacks run synchronously on the scan goroutine and must return
// quickly.
//
// # Scan Types
//
// Recognized scan types:
//   - "tcp_connect": full TCP connect scan (implemented, no privileges
//     required)
//   - "tcp_syn", "udp", "icmp": recognized in configuration but not
//     implemented; requesting one fails the run with zero results
//
// # Cancellation
//
// All entry points honor context cancellation. When the context is canceled
// mid-run, workers stop picking up new ports, probes aborted mid-dial are
// discarded, and the partial results accumulated so far are returned
// together with a non-nil error. A canceled run can therefore still carry
// useful data.
//
// # Error Handling
//
// Configuration problems and unsupported scan types are reported through the
// internal/errors package with stable error codes, so callers can map them
// onto exit codes or API responses. Per-port failures never fail the run;
// they are recorded as port states on the results instead.
//
// # Thread Safety
//
// The scanning package is designed to be thread-safe:
//   - Multiple runs can execute concurrently
//   - Config is treated as read-only during a run
//   - Resolver implementations must be safe for concurrent use
//   - Context cancellation is properly handled
//
// # Integration
//
// This package integrates with other ScanPro components:
//   - internal/targets: Target and port specification parsing
//   - internal/profiles: Named parameter presets applied to Config
//   - internal/report: Rendering of RunResult in various formats
//   - internal/jobs: Background scan execution and tracking
//   - internal/api: REST API endpoints for scan management
package scanning
