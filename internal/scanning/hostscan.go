package scanning

import (
	"context"
	"sync"
	"time"
)

// scanHost probes every configured port on a single resolved host. Each call
// starts a fresh pool of cfg.Concurrency workers that drain a shared port
// queue, so no state leaks between hosts.
//
// When cfg.Delay is positive, a single ticker shared by the whole pool gates
// connection attempts, pacing the host at one attempt per delay interval
// regardless of pool size.
//
// On cancellation the queue stops feeding, workers exit before their next
// probe, and results from probes aborted mid-dial are discarded. Whatever
// completed before that stays in the returned HostResult, so partial results
// survive cancellation.
//
// The emit callback, when non-nil, is invoked synchronously for every
// recorded result, in completion order.
func scanHost(ctx context.Context, host string, cfg *Config, prober Prober, emit func(PortResult)) HostResult {
	hostResult := HostResult{
		Host:      host,
		ScanStart: time.Now(),
	}

	var pace <-chan time.Time
	if cfg.Delay > 0 {
		ticker := time.NewTicker(cfg.Delay)
		defer ticker.Stop()
		pace = ticker.C
	}

	jobs := make(chan int)
	results := make(chan PortResult)

	var wg sync.WaitGroup
	for i := 0; i < cfg.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for port := range jobs {
				if ctx.Err() != nil {
					return
				}
				if pace != nil {
					select {
					case <-pace:
					case <-ctx.Done():
						return
					}
				}
				result, err := prober.Probe(ctx, host, port)
				if err != nil {
					// Aborted mid-probe; nothing to record.
					return
				}
				results <- result
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, port := range cfg.Ports {
			select {
			case jobs <- port:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	for result := range results {
		hostResult.Ports = append(hostResult.Ports, result)
		if result.State == PortStateOpen {
			hostResult.IsAlive = true
		}
		if emit != nil {
			emit(result)
		}
	}

	hostResult.ScanEnd = time.Now()
	return hostResult
}
