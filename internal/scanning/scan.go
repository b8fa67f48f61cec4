package scanning

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/MAS191/ScanPro/internal/errors"
	"github.com/MAS191/ScanPro/internal/logging"
	"github.com/MAS191/ScanPro/internal/metrics"
)

// activeRuns tracks concurrently executing scan runs for the active scans
// gauge.
var activeRuns atomic.Int64

// Run executes the scan described by cfg and blocks until it finishes.
func Run(cfg *Config) (*RunResult, error) {
	return RunWithContext(context.Background(), cfg)
}

// RunWithContext executes the scan described by cfg, honoring ctx for
// cancellation. On cancellation the results accumulated so far are returned
// together with a non-nil error.
func RunWithContext(ctx context.Context, cfg *Config) (*RunResult, error) {
	return RunWithProgress(ctx, cfg, nil)
}

// RunWithProgress executes the scan and delivers progress events to
// progress, which may be nil.
func RunWithProgress(ctx context.Context, cfg *Config, progress ProgressFunc) (*RunResult, error) {
	return RunWithResolver(ctx, cfg, nil, progress)
}

// RunWithResolver is the full scan entry point. A nil resolver selects the
// system resolver.
//
// Targets are scanned strictly one after another, each with its own worker
// pool. Targets that fail to resolve are skipped without producing a
// HostResult. Only tcp_connect scans are performed; any other scan type
// fails before a single probe is sent.
func RunWithResolver(ctx context.Context, cfg *Config, resolver Resolver, progress ProgressFunc) (*RunResult, error) {
	start := time.Now()
	defer func() {
		metrics.GetGlobalMetrics().RecordScanDuration(string(cfg.ScanType), time.Since(start))
	}()

	logging.Info("Starting scan operation",
		"scan_type", cfg.ScanType,
		"targets", len(cfg.Targets),
		"ports", len(cfg.Ports),
		"concurrency", cfg.Concurrency,
		"timeout", cfg.Timeout)

	if err := cfg.Validate(); err != nil {
		metrics.GetGlobalMetrics().IncrementScanErrors(string(cfg.ScanType), "config_invalid")
		metrics.GetGlobalMetrics().IncrementScansTotal(string(cfg.ScanType), "error")
		return nil, errors.WrapScanError(errors.CodeValidation, "invalid configuration", err)
	}
	if cfg.ScanType != ScanTypeTCPConnect {
		metrics.GetGlobalMetrics().IncrementScanErrors(string(cfg.ScanType), "unsupported_type")
		metrics.GetGlobalMetrics().IncrementScansTotal(string(cfg.ScanType), "error")
		return nil, errors.ErrScanTypeUnsupported(string(cfg.ScanType))
	}
	if resolver == nil {
		resolver = SystemResolver{}
	}

	metrics.GetGlobalMetrics().SetActiveScans(int(activeRuns.Add(1)))
	defer func() {
		metrics.GetGlobalMetrics().SetActiveScans(int(activeRuns.Add(-1)))
	}()

	result := NewRunResult()
	prober := NewConnectProber(cfg.Timeout, cfg.Banners)

	var runErr error
	for i, target := range cfg.Targets {
		if ctx.Err() != nil {
			runErr = ctx.Err()
			break
		}

		emit(progress, Event{
			Type:        EventHostStarted,
			Target:      target,
			TargetIndex: i,
			TargetCount: len(cfg.Targets),
		})

		addr, err := resolver.Resolve(ctx, target)
		if err != nil {
			if ctx.Err() != nil {
				runErr = ctx.Err()
				break
			}
			logging.ErrorScan("Skipping unresolvable target", target, err)
			metrics.GetGlobalMetrics().IncrementScanErrors(string(cfg.ScanType), "resolve_failed")
			emit(progress, Event{
				Type:        EventHostSkipped,
				Target:      target,
				TargetIndex: i,
				TargetCount: len(cfg.Targets),
				Err:         errors.ErrResolveFailed(target, err),
			})
			continue
		}

		if cfg.Verbose {
			logging.InfoScan("Scanning host", target, "resolved", addr)
		}

		hostResult := scanHost(ctx, addr, cfg, prober, func(pr PortResult) {
			if cfg.Verbose {
				logging.Debug("Port result",
					"target", target,
					"port", pr.Port,
					"state", pr.State,
					"elapsed", pr.Elapsed)
			}
			emit(progress, Event{
				Type:        EventPortResult,
				Target:      target,
				TargetIndex: i,
				TargetCount: len(cfg.Targets),
				Result:      &pr,
			})
		})
		// Results are reported under the name the caller asked for; the
		// resolved address stays on the individual port results.
		hostResult.Host = target
		result.Hosts = append(result.Hosts, hostResult)

		recordHostMetrics(cfg, &hostResult)
		emit(progress, Event{
			Type:        EventHostCompleted,
			Target:      target,
			TargetIndex: i,
			TargetCount: len(cfg.Targets),
			Host:        &hostResult,
		})

		logging.InfoScan("Host scan completed", target,
			"resolved", addr,
			"ports_scanned", len(hostResult.Ports),
			"is_alive", hostResult.IsAlive)
	}

	if runErr == nil {
		runErr = ctx.Err()
	}

	result.Complete()

	status := "success"
	if runErr != nil {
		status = "canceled"
	}
	metrics.GetGlobalMetrics().IncrementScansTotal(string(cfg.ScanType), status)

	emit(progress, Event{
		Type:        EventScanCompleted,
		TargetCount: len(cfg.Targets),
		Err:         runErr,
	})

	logging.Info("Scan operation completed",
		"scan_type", cfg.ScanType,
		"status", status,
		"hosts_scanned", result.Stats.TotalHosts,
		"live_hosts", result.Stats.LiveHosts,
		"open_ports", result.Stats.OpenPorts,
		"duration", result.Duration)

	if runErr != nil {
		if runErr == context.DeadlineExceeded {
			return result, errors.WrapScanError(errors.CodeTimeout, "scan interrupted by deadline", runErr)
		}
		return result, errors.WrapScanError(errors.CodeCanceled, "scan canceled", runErr)
	}
	return result, nil
}

// recordHostMetrics updates the per-host counters after a host finishes.
func recordHostMetrics(cfg *Config, host *HostResult) {
	pm := metrics.GetGlobalMetrics()

	states := make(map[PortState]int, 4)
	for _, p := range host.Ports {
		states[p.State]++
	}
	for state, count := range states {
		pm.IncrementPortsScanned(string(cfg.ScanType), string(state), count)
	}

	hostStatus := "down"
	if host.IsAlive {
		hostStatus = "up"
	}
	pm.IncrementHostsScanned(string(cfg.ScanType), hostStatus, 1)
}

// emit delivers an event when a progress callback is registered.
func emit(progress ProgressFunc, event Event) {
	if progress != nil {
		progress(event)
	}
}
