package jobs

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MAS191/ScanPro/internal/errors"
	"github.com/MAS191/ScanPro/internal/profiles"
	"github.com/MAS191/ScanPro/internal/scanning"
	"github.com/MAS191/ScanPro/internal/workers"
)

// manualPool collects submitted jobs so tests decide exactly when they
// execute.
type manualPool struct {
	mu   sync.Mutex
	jobs []workers.Job
}

func (p *manualPool) Submit(j workers.Job) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.jobs = append(p.jobs, j)
	return nil
}

func (p *manualPool) runAll(ctx context.Context) {
	p.mu.Lock()
	jobs := p.jobs
	p.jobs = nil
	p.mu.Unlock()
	for _, j := range jobs {
		_ = j.Execute(ctx)
	}
}

type rejectPool struct{ err error }

func (p rejectPool) Submit(workers.Job) error { return p.err }

// scanScript stands in for the engine. It optionally blocks until its
// gate closes or the context is canceled, replays scripted progress
// events, and returns a fixed outcome.
type scanScript struct {
	result *scanning.RunResult
	err    error
	events []scanning.Event
	block  chan struct{}
	calls  atomic.Int32
}

func (s *scanScript) run(ctx context.Context, _ *scanning.Config, _ scanning.Resolver, progress scanning.ProgressFunc) (*scanning.RunResult, error) {
	s.calls.Add(1)
	if s.block != nil {
		select {
		case <-s.block:
		case <-ctx.Done():
			return s.result, errors.WrapScanError(errors.CodeCanceled, "Scan canceled", ctx.Err())
		}
	}
	if progress != nil {
		for _, ev := range s.events {
			progress(ev)
		}
	}
	return s.result, s.err
}

func scriptResult(portsScanned, openPorts int) *scanning.RunResult {
	r := scanning.NewRunResult()
	r.Stats = scanning.Stats{
		TotalHosts:   1,
		LiveHosts:    1,
		PortsScanned: portsScanned,
		OpenPorts:    openPorts,
	}
	r.EndTime = time.Now()
	return r
}

func hostDoneEvents(targets ...string) []scanning.Event {
	events := make([]scanning.Event, 0, len(targets))
	for i, target := range targets {
		events = append(events, scanning.Event{
			Type:        scanning.EventHostCompleted,
			Target:      target,
			TargetIndex: i,
			TargetCount: len(targets),
		})
	}
	return events
}

func waitEvent(t *testing.T, ch <-chan JobEvent, want EventType) JobEvent {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case ev := <-ch:
			if ev.Type == want {
				return ev
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %s event", want)
		}
	}
}

func TestNewManagerDefaults(t *testing.T) {
	m := NewManager(Options{})

	assert.Equal(t, DefaultMaxCompleted, m.opts.MaxCompleted)
	assert.Equal(t, DefaultPortSpec, m.opts.DefaultPorts)
	assert.Equal(t, scanning.ScanTypeTCPConnect, m.opts.Defaults.ScanType)
	assert.Equal(t, 3*time.Second, m.opts.Defaults.Timeout)
	assert.Equal(t, 100, m.opts.Defaults.Concurrency)
	assert.NotNil(t, m.opts.Profiles)
	assert.NotNil(t, m.runScan)
}

func TestBuildConfig(t *testing.T) {
	duration := func(d time.Duration) *time.Duration { return &d }
	intp := func(n int) *int { return &n }
	boolp := func(b bool) *bool { return &b }

	t.Run("minimal request uses defaults", func(t *testing.T) {
		m := NewManager(Options{})
		cfg, err := m.buildConfig(&Request{Targets: []string{"127.0.0.1"}})
		require.NoError(t, err)

		assert.Equal(t, []string{"127.0.0.1"}, cfg.Targets)
		assert.Len(t, cfg.Ports, 100)
		assert.Equal(t, scanning.ScanTypeTCPConnect, cfg.ScanType)
		assert.Equal(t, 3*time.Second, cfg.Timeout)
		assert.Equal(t, 100, cfg.Concurrency)
		assert.False(t, cfg.Banners)
	})

	t.Run("explicit ports", func(t *testing.T) {
		m := NewManager(Options{})
		cfg, err := m.buildConfig(&Request{Targets: []string{"127.0.0.1"}, Ports: "80,22"})
		require.NoError(t, err)
		assert.Equal(t, []int{22, 80}, cfg.Ports)
	})

	t.Run("profile fills unset fields", func(t *testing.T) {
		m := NewManager(Options{})
		cfg, err := m.buildConfig(&Request{Targets: []string{"127.0.0.1"}, Profile: "fast"})
		require.NoError(t, err)
		assert.Equal(t, 1*time.Second, cfg.Timeout)
		assert.Equal(t, 200, cfg.Concurrency)
	})

	t.Run("explicit settings beat the profile", func(t *testing.T) {
		m := NewManager(Options{})
		cfg, err := m.buildConfig(&Request{
			Targets: []string{"127.0.0.1"},
			Profile: "fast",
			Timeout: duration(5 * time.Second),
		})
		require.NoError(t, err)
		assert.Equal(t, 5*time.Second, cfg.Timeout)
		assert.Equal(t, 200, cfg.Concurrency)
	})

	t.Run("explicit zero delay beats profile delay", func(t *testing.T) {
		m := NewManager(Options{})
		cfg, err := m.buildConfig(&Request{
			Targets: []string{"127.0.0.1"},
			Profile: "slow",
			Delay:   duration(0),
		})
		require.NoError(t, err)
		assert.Equal(t, time.Duration(0), cfg.Delay)
		assert.Equal(t, 10*time.Second, cfg.Timeout)
	})

	t.Run("settings are clamped", func(t *testing.T) {
		m := NewManager(Options{})
		cfg, err := m.buildConfig(&Request{
			Targets:     []string{"127.0.0.1"},
			Timeout:     duration(10 * time.Millisecond),
			Concurrency: intp(5000),
		})
		require.NoError(t, err)
		assert.Equal(t, profiles.MinTimeout, cfg.Timeout)
		assert.Equal(t, profiles.MaxConcurrency, cfg.Concurrency)
	})

	t.Run("banners override", func(t *testing.T) {
		m := NewManager(Options{})
		cfg, err := m.buildConfig(&Request{Targets: []string{"127.0.0.1"}, Banners: boolp(true)})
		require.NoError(t, err)
		assert.True(t, cfg.Banners)
	})

	t.Run("multiple target specs expand", func(t *testing.T) {
		m := NewManager(Options{})
		cfg, err := m.buildConfig(&Request{Targets: []string{"10.0.0.1", "192.168.1.0/30"}})
		require.NoError(t, err)
		assert.Equal(t, []string{"10.0.0.1", "192.168.1.1", "192.168.1.2"}, cfg.Targets)
	})

	t.Run("no targets", func(t *testing.T) {
		m := NewManager(Options{})
		_, err := m.buildConfig(&Request{})
		require.Error(t, err)
		assert.True(t, errors.IsCode(err, errors.CodeTargetInvalid))
	})

	t.Run("malformed target", func(t *testing.T) {
		m := NewManager(Options{})
		_, err := m.buildConfig(&Request{Targets: []string{"10.0.0.0/40"}})
		require.Error(t, err)
		assert.True(t, errors.IsCode(err, errors.CodeTargetInvalid))
	})

	t.Run("malformed ports", func(t *testing.T) {
		m := NewManager(Options{})
		_, err := m.buildConfig(&Request{Targets: []string{"127.0.0.1"}, Ports: "99999"})
		require.Error(t, err)
		assert.True(t, errors.IsCode(err, errors.CodeValidation))
	})

	t.Run("unknown profile", func(t *testing.T) {
		m := NewManager(Options{})
		_, err := m.buildConfig(&Request{Targets: []string{"127.0.0.1"}, Profile: "warp"})
		require.Error(t, err)
		assert.True(t, errors.IsNotFound(err))
	})

	t.Run("unknown scan type", func(t *testing.T) {
		m := NewManager(Options{})
		_, err := m.buildConfig(&Request{Targets: []string{"127.0.0.1"}, ScanType: "xmas"})
		require.Error(t, err)
		assert.True(t, errors.IsCode(err, errors.CodeValidation))
	})

	t.Run("target cap", func(t *testing.T) {
		m := NewManager(Options{MaxTargets: 4})
		_, err := m.buildConfig(&Request{Targets: []string{"192.168.1.0/29"}})
		require.Error(t, err)
		assert.True(t, errors.IsCode(err, errors.CodeValidation))
		assert.Contains(t, err.Error(), "limit is 4")
	})

	t.Run("private only rejects public targets", func(t *testing.T) {
		m := NewManager(Options{PrivateOnly: true})
		_, err := m.buildConfig(&Request{Targets: []string{"192.168.1.1", "8.8.8.8"}})
		require.Error(t, err)
		assert.True(t, errors.IsCode(err, errors.CodeTargetInvalid))
		assert.Contains(t, err.Error(), "8.8.8.8")
	})

	t.Run("private only allows localhost", func(t *testing.T) {
		m := NewManager(Options{PrivateOnly: true})
		cfg, err := m.buildConfig(&Request{Targets: []string{"localhost", "10.1.2.3"}})
		require.NoError(t, err)
		assert.Equal(t, []string{"localhost", "10.1.2.3"}, cfg.Targets)
	})
}

func TestSubmitLifecycle(t *testing.T) {
	pool := &manualPool{}
	events := make(chan JobEvent, 64)
	m := NewManager(Options{Pool: pool, OnEvent: func(ev JobEvent) { events <- ev }})

	script := &scanScript{
		result: scriptResult(4, 2),
		events: hostDoneEvents("127.0.0.1"),
	}
	m.runScan = script.run

	job, err := m.Submit(Request{Targets: []string{"127.0.0.1"}, Ports: "22,80,443,8080"})
	require.NoError(t, err)

	_, parseErr := uuid.Parse(job.ID)
	assert.NoError(t, parseErr)
	assert.Equal(t, StatusPending, job.Status)
	assert.Equal(t, SourceAPI, job.Source)
	assert.Equal(t, 1, job.Progress.TargetsTotal)
	assert.False(t, job.CreatedAt.IsZero())
	assert.Nil(t, job.StartedAt)

	submitted := waitEvent(t, events, EventJobSubmitted)
	assert.Equal(t, job.ID, submitted.Job.ID)

	pool.runAll(context.Background())

	waitEvent(t, events, EventJobStarted)
	progress := waitEvent(t, events, EventJobProgress)
	assert.Equal(t, 1, progress.Job.Progress.TargetsDone)
	assert.Equal(t, float64(100), progress.Job.Progress.Percent)

	completed := waitEvent(t, events, EventJobCompleted)
	assert.Equal(t, StatusCompleted, completed.Job.Status)

	got, err := m.Get(job.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, got.Status)
	assert.Equal(t, 4, got.Progress.PortsScanned)
	assert.Equal(t, 2, got.Progress.OpenPorts)
	assert.Equal(t, float64(100), got.Progress.Percent)
	require.NotNil(t, got.StartedAt)
	require.NotNil(t, got.EndedAt)
	assert.Empty(t, got.Error)
	assert.EqualValues(t, 1, script.calls.Load())

	result, cfg, err := m.Result(job.ID)
	require.NoError(t, err)
	require.NotNil(t, result)
	require.NotNil(t, cfg)
	assert.Equal(t, 2, result.Stats.OpenPorts)
	assert.Equal(t, []int{22, 80, 443, 8080}, cfg.Ports)
}

func TestSubmitKeepsExplicitSource(t *testing.T) {
	pool := &manualPool{}
	m := NewManager(Options{Pool: pool})
	m.runScan = (&scanScript{result: scriptResult(1, 0)}).run

	job, err := m.Submit(Request{Targets: []string{"127.0.0.1"}, Ports: "80", Source: SourceScheduler})
	require.NoError(t, err)
	assert.Equal(t, SourceScheduler, job.Source)
}

func TestSubmitValidationFailure(t *testing.T) {
	pool := &manualPool{}
	m := NewManager(Options{Pool: pool})

	_, err := m.Submit(Request{Targets: []string{"not//valid"}})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeTargetInvalid))
	assert.Empty(t, m.List())
	assert.Zero(t, m.Stats().Total)
}

func TestSubmitQueueFull(t *testing.T) {
	poolErr := errors.NewScanError(errors.CodeServiceUnavailable, "job queue is full")
	m := NewManager(Options{Pool: rejectPool{err: poolErr}})

	_, err := m.Submit(Request{Targets: []string{"127.0.0.1"}, Ports: "80"})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeJobQueueFull))
	assert.True(t, errors.IsRetryable(err))

	// The rejected job must leave no trace behind.
	assert.Empty(t, m.List())
	assert.Zero(t, m.Stats().Total)
}

func TestFailedRun(t *testing.T) {
	pool := &manualPool{}
	events := make(chan JobEvent, 64)
	m := NewManager(Options{Pool: pool, OnEvent: func(ev JobEvent) { events <- ev }})
	m.runScan = (&scanScript{
		err: errors.NewScanError(errors.CodeScanFailed, "connection storm"),
	}).run

	job, err := m.Submit(Request{Targets: []string{"127.0.0.1"}, Ports: "80"})
	require.NoError(t, err)
	pool.runAll(context.Background())

	failed := waitEvent(t, events, EventJobFailed)
	assert.Equal(t, StatusFailed, failed.Job.Status)
	assert.Contains(t, failed.Job.Error, "connection storm")

	got, err := m.Get(job.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, got.Status)

	_, _, err = m.Result(job.ID)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeScanFailed))
}

func TestResultStates(t *testing.T) {
	t.Run("unknown job", func(t *testing.T) {
		m := NewManager(Options{Pool: &manualPool{}})
		_, _, err := m.Result("no-such-id")
		require.Error(t, err)
		assert.True(t, errors.IsNotFound(err))
	})

	t.Run("pending job conflicts", func(t *testing.T) {
		pool := &manualPool{}
		m := NewManager(Options{Pool: pool})
		m.runScan = (&scanScript{result: scriptResult(1, 0)}).run

		job, err := m.Submit(Request{Targets: []string{"127.0.0.1"}, Ports: "80"})
		require.NoError(t, err)

		_, _, err = m.Result(job.ID)
		require.Error(t, err)
		assert.True(t, errors.IsConflict(err))
	})

	t.Run("running job conflicts", func(t *testing.T) {
		pool := &manualPool{}
		events := make(chan JobEvent, 64)
		m := NewManager(Options{Pool: pool, OnEvent: func(ev JobEvent) { events <- ev }})
		script := &scanScript{result: scriptResult(1, 0), block: make(chan struct{})}
		m.runScan = script.run

		job, err := m.Submit(Request{Targets: []string{"127.0.0.1"}, Ports: "80"})
		require.NoError(t, err)

		go pool.runAll(context.Background())
		waitEvent(t, events, EventJobStarted)

		_, _, err = m.Result(job.ID)
		require.Error(t, err)
		assert.True(t, errors.IsConflict(err))

		close(script.block)
		waitEvent(t, events, EventJobCompleted)
	})

	t.Run("canceled job", func(t *testing.T) {
		pool := &manualPool{}
		m := NewManager(Options{Pool: pool})

		job, err := m.Submit(Request{Targets: []string{"127.0.0.1"}, Ports: "80"})
		require.NoError(t, err)
		_, err = m.Cancel(job.ID)
		require.NoError(t, err)

		_, _, err = m.Result(job.ID)
		require.Error(t, err)
		assert.True(t, errors.IsCode(err, errors.CodeCanceled))
	})
}

func TestCancelPendingJob(t *testing.T) {
	pool := &manualPool{}
	events := make(chan JobEvent, 64)
	m := NewManager(Options{Pool: pool, OnEvent: func(ev JobEvent) { events <- ev }})
	script := &scanScript{result: scriptResult(1, 0)}
	m.runScan = script.run

	job, err := m.Submit(Request{Targets: []string{"127.0.0.1"}, Ports: "80"})
	require.NoError(t, err)

	canceled, err := m.Cancel(job.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCanceled, canceled.Status)
	require.NotNil(t, canceled.EndedAt)
	waitEvent(t, events, EventJobCanceled)

	// The queued closure still runs, but the scan must not.
	pool.runAll(context.Background())
	assert.Zero(t, script.calls.Load())

	got, err := m.Get(job.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCanceled, got.Status)
	assert.Nil(t, got.StartedAt)
}

func TestCancelRunningJob(t *testing.T) {
	pool := &manualPool{}
	events := make(chan JobEvent, 64)
	m := NewManager(Options{Pool: pool, OnEvent: func(ev JobEvent) { events <- ev }})
	script := &scanScript{block: make(chan struct{})}
	m.runScan = script.run

	job, err := m.Submit(Request{Targets: []string{"127.0.0.1"}, Ports: "80"})
	require.NoError(t, err)

	go pool.runAll(context.Background())
	waitEvent(t, events, EventJobStarted)

	snapshot, err := m.Cancel(job.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusRunning, snapshot.Status)

	done := waitEvent(t, events, EventJobCanceled)
	assert.Equal(t, StatusCanceled, done.Job.Status)

	got, err := m.Get(job.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCanceled, got.Status)
	require.NotNil(t, got.EndedAt)
}

func TestCancelFinishedJob(t *testing.T) {
	pool := &manualPool{}
	m := NewManager(Options{Pool: pool})
	m.runScan = (&scanScript{result: scriptResult(1, 0)}).run

	job, err := m.Submit(Request{Targets: []string{"127.0.0.1"}, Ports: "80"})
	require.NoError(t, err)
	pool.runAll(context.Background())

	_, err = m.Cancel(job.ID)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeJobFinished))
}

func TestCancelUnknownJob(t *testing.T) {
	m := NewManager(Options{Pool: &manualPool{}})
	_, err := m.Cancel("ghost")
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

func TestListNewestFirst(t *testing.T) {
	pool := &manualPool{}
	m := NewManager(Options{Pool: pool})
	m.runScan = (&scanScript{result: scriptResult(1, 0)}).run

	var ids []string
	for i := 0; i < 3; i++ {
		job, err := m.Submit(Request{Targets: []string{"127.0.0.1"}, Ports: "80"})
		require.NoError(t, err)
		ids = append(ids, job.ID)
	}

	listed := m.List()
	require.Len(t, listed, 3)
	assert.Equal(t, ids[2], listed[0].ID)
	assert.Equal(t, ids[1], listed[1].ID)
	assert.Equal(t, ids[0], listed[2].ID)
}

func TestCompletedJobEviction(t *testing.T) {
	pool := &manualPool{}
	m := NewManager(Options{Pool: pool, MaxCompleted: 2})
	m.runScan = (&scanScript{result: scriptResult(1, 0)}).run

	var ids []string
	for i := 0; i < 3; i++ {
		job, err := m.Submit(Request{Targets: []string{"127.0.0.1"}, Ports: "80"})
		require.NoError(t, err)
		pool.runAll(context.Background())
		ids = append(ids, job.ID)
	}

	listed := m.List()
	require.Len(t, listed, 2)
	assert.Equal(t, ids[2], listed[0].ID)
	assert.Equal(t, ids[1], listed[1].ID)

	_, err := m.Get(ids[0])
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

func TestEvictionSparesUnfinishedJobs(t *testing.T) {
	pool := &manualPool{}
	m := NewManager(Options{Pool: pool, MaxCompleted: 1})
	m.runScan = (&scanScript{result: scriptResult(1, 0)}).run

	for i := 0; i < 3; i++ {
		_, err := m.Submit(Request{Targets: []string{"127.0.0.1"}, Ports: "80"})
		require.NoError(t, err)
	}

	// All three are still pending, so none may be evicted.
	assert.Len(t, m.List(), 3)
	assert.Equal(t, 3, m.Stats().Pending)
}

func TestStats(t *testing.T) {
	pool := &manualPool{}
	events := make(chan JobEvent, 64)
	m := NewManager(Options{Pool: pool, OnEvent: func(ev JobEvent) { events <- ev }})
	m.runScan = (&scanScript{result: scriptResult(1, 0)}).run

	done, err := m.Submit(Request{Targets: []string{"127.0.0.1"}, Ports: "80"})
	require.NoError(t, err)
	pool.runAll(context.Background())
	waitEvent(t, events, EventJobCompleted)

	pending, err := m.Submit(Request{Targets: []string{"127.0.0.1"}, Ports: "80"})
	require.NoError(t, err)
	_, err = m.Cancel(pending.ID)
	require.NoError(t, err)

	_, err = m.Submit(Request{Targets: []string{"127.0.0.1"}, Ports: "80"})
	require.NoError(t, err)

	stats := m.Stats()
	assert.Equal(t, Stats{
		Pending:   1,
		Completed: 1,
		Canceled:  1,
		Total:     3,
	}, stats)

	got, err := m.Get(done.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, got.Status)
}

func TestCancelAll(t *testing.T) {
	pool := &manualPool{}
	events := make(chan JobEvent, 64)
	m := NewManager(Options{Pool: pool, OnEvent: func(ev JobEvent) { events <- ev }})
	script := &scanScript{block: make(chan struct{})}
	m.runScan = script.run

	running, err := m.Submit(Request{Targets: []string{"127.0.0.1"}, Ports: "80"})
	require.NoError(t, err)
	go pool.runAll(context.Background())
	waitEvent(t, events, EventJobStarted)

	queued, err := m.Submit(Request{Targets: []string{"127.0.0.1"}, Ports: "80"})
	require.NoError(t, err)

	m.CancelAll()

	// The queued job cancels immediately; the running one settles once
	// its context cancellation reaches the scan.
	got, err := m.Get(queued.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCanceled, got.Status)

	waitEvent(t, events, EventJobCanceled)
	require.Eventually(t, func() bool {
		job, err := m.Get(running.ID)
		return err == nil && job.Status == StatusCanceled
	}, 2*time.Second, 10*time.Millisecond)
}

func TestRunSlotLimitSerializesRuns(t *testing.T) {
	pool := &manualPool{}
	m := NewManager(Options{Pool: pool, MaxConcurrentRuns: 1})
	script := &scanScript{result: scriptResult(1, 0), block: make(chan struct{})}
	m.runScan = script.run

	first, err := m.Submit(Request{Targets: []string{"127.0.0.1"}, Ports: "80"})
	require.NoError(t, err)
	second, err := m.Submit(Request{Targets: []string{"127.0.0.2"}, Ports: "80"})
	require.NoError(t, err)

	pool.mu.Lock()
	queued := pool.jobs
	pool.jobs = nil
	pool.mu.Unlock()
	require.Len(t, queued, 2)

	var wg sync.WaitGroup
	for _, j := range queued {
		wg.Add(1)
		go func(j workers.Job) {
			defer wg.Done()
			_ = j.Execute(context.Background())
		}(j)
	}

	// One job claims the single slot and reaches the engine; the other
	// waits for the slot and stays pending.
	require.Eventually(t, func() bool {
		s := m.Stats()
		return s.Running == 1 && s.Pending == 1
	}, 2*time.Second, 10*time.Millisecond)
	assert.EqualValues(t, 1, script.calls.Load())

	close(script.block)
	wg.Wait()

	for _, id := range []string{first.ID, second.ID} {
		got, err := m.Get(id)
		require.NoError(t, err)
		assert.Equal(t, StatusCompleted, got.Status)
	}
	assert.EqualValues(t, 2, script.calls.Load())
}

func TestCancelDuringSlotWait(t *testing.T) {
	pool := &manualPool{}
	m := NewManager(Options{Pool: pool, MaxConcurrentRuns: 1})
	script := &scanScript{result: scriptResult(1, 0), block: make(chan struct{})}
	m.runScan = script.run

	first, err := m.Submit(Request{Targets: []string{"127.0.0.1"}, Ports: "80"})
	require.NoError(t, err)
	second, err := m.Submit(Request{Targets: []string{"127.0.0.2"}, Ports: "80"})
	require.NoError(t, err)

	pool.mu.Lock()
	queued := pool.jobs
	pool.jobs = nil
	pool.mu.Unlock()
	require.Len(t, queued, 2)

	var wg sync.WaitGroup
	for _, j := range queued {
		wg.Add(1)
		go func(j workers.Job) {
			defer wg.Done()
			_ = j.Execute(context.Background())
		}(j)
	}

	require.Eventually(t, func() bool {
		s := m.Stats()
		return s.Running == 1 && s.Pending == 1
	}, 2*time.Second, 10*time.Millisecond)

	// Either job may have won the slot; cancel whichever is waiting.
	var waiting string
	for _, id := range []string{first.ID, second.ID} {
		got, err := m.Get(id)
		require.NoError(t, err)
		if got.Status == StatusPending {
			waiting = got.ID
		}
	}
	require.NotEmpty(t, waiting)

	canceled, err := m.Cancel(waiting)
	require.NoError(t, err)
	assert.Equal(t, StatusCanceled, canceled.Status)

	close(script.block)
	wg.Wait()

	got, err := m.Get(waiting)
	require.NoError(t, err)
	assert.Equal(t, StatusCanceled, got.Status)
	assert.Nil(t, got.StartedAt)
	assert.EqualValues(t, 1, script.calls.Load())
}

func TestCloseFailsSlotWaiters(t *testing.T) {
	pool := &manualPool{}
	m := NewManager(Options{Pool: pool, MaxConcurrentRuns: 1})
	script := &scanScript{result: scriptResult(1, 0)}
	m.runScan = script.run

	job, err := m.Submit(Request{Targets: []string{"127.0.0.1"}, Ports: "80"})
	require.NoError(t, err)

	m.Close()
	pool.runAll(context.Background())

	got, err := m.Get(job.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, got.Status)
	assert.Contains(t, got.Error, "closed")
	assert.Zero(t, script.calls.Load())
}

func TestLongRunningWithoutLimit(t *testing.T) {
	m := NewManager(Options{Pool: &manualPool{}})
	assert.Nil(t, m.LongRunning())
	m.Close()
}

func TestManagerWithWorkerPool(t *testing.T) {
	pool := workers.New(workers.Config{Workers: 2, QueueSize: 8, ShutdownTimeout: 2 * time.Second})
	pool.Start()
	defer func() { _ = pool.Shutdown() }()

	events := make(chan JobEvent, 64)
	m := NewManager(Options{Pool: pool, OnEvent: func(ev JobEvent) { events <- ev }})
	m.runScan = (&scanScript{result: scriptResult(3, 1), events: hostDoneEvents("127.0.0.1")}).run

	job, err := m.Submit(Request{Targets: []string{"127.0.0.1"}, Ports: "22,80,443"})
	require.NoError(t, err)

	completed := waitEvent(t, events, EventJobCompleted)
	assert.Equal(t, job.ID, completed.Job.ID)

	got, err := m.Get(job.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, got.Status)
	assert.Equal(t, 3, got.Progress.PortsScanned)
	assert.Equal(t, 1, got.Progress.OpenPorts)
}

func TestProgressAcrossTargets(t *testing.T) {
	pool := &manualPool{}
	events := make(chan JobEvent, 64)
	m := NewManager(Options{Pool: pool, OnEvent: func(ev JobEvent) { events <- ev }})

	hosts := []string{"10.0.0.1", "10.0.0.2", "10.0.0.3", "10.0.0.4"}
	m.runScan = (&scanScript{result: scriptResult(8, 0), events: hostDoneEvents(hosts...)}).run

	_, err := m.Submit(Request{Targets: hosts, Ports: "22,80"})
	require.NoError(t, err)
	pool.runAll(context.Background())

	var percents []float64
	for i := 0; i < len(hosts); i++ {
		ev := waitEvent(t, events, EventJobProgress)
		percents = append(percents, ev.Job.Progress.Percent)
	}
	assert.Equal(t, []float64{25, 50, 75, 100}, percents)
}

func TestSkippedTargetsCountTowardProgress(t *testing.T) {
	pool := &manualPool{}
	events := make(chan JobEvent, 64)
	m := NewManager(Options{Pool: pool, OnEvent: func(ev JobEvent) { events <- ev }})

	m.runScan = (&scanScript{
		result: scriptResult(2, 0),
		events: []scanning.Event{
			{Type: scanning.EventHostSkipped, Target: "nosuch.invalid", TargetIndex: 0, TargetCount: 2},
			{Type: scanning.EventHostCompleted, Target: "10.0.0.1", TargetIndex: 1, TargetCount: 2},
		},
	}).run

	_, err := m.Submit(Request{Targets: []string{"nosuch.invalid", "10.0.0.1"}, Ports: "80"})
	require.NoError(t, err)
	pool.runAll(context.Background())

	first := waitEvent(t, events, EventJobProgress)
	assert.Equal(t, float64(50), first.Job.Progress.Percent)
	second := waitEvent(t, events, EventJobProgress)
	assert.Equal(t, float64(100), second.Job.Progress.Percent)
}

func TestPortResultsUpdateCounters(t *testing.T) {
	pool := &manualPool{}
	m := NewManager(Options{Pool: pool})

	open := &scanning.PortResult{Host: "10.0.0.1", Port: 22, State: scanning.PortStateOpen}
	closed := &scanning.PortResult{Host: "10.0.0.1", Port: 23, State: scanning.PortStateClosed}
	m.runScan = (&scanScript{
		result: scriptResult(2, 1),
		events: []scanning.Event{
			{Type: scanning.EventPortResult, Target: "10.0.0.1", Result: open},
			{Type: scanning.EventPortResult, Target: "10.0.0.1", Result: closed},
			{Type: scanning.EventHostCompleted, Target: "10.0.0.1", TargetCount: 1},
		},
	}).run

	job, err := m.Submit(Request{Targets: []string{"10.0.0.1"}, Ports: "22,23"})
	require.NoError(t, err)
	pool.runAll(context.Background())

	got, err := m.Get(job.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Progress.PortsScanned)
	assert.Equal(t, 1, got.Progress.OpenPorts)
}
