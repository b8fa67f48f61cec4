package jobs

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MAS191/ScanPro/internal/errors"
	"github.com/MAS191/ScanPro/internal/logging"
	"github.com/MAS191/ScanPro/internal/metrics"
	"github.com/MAS191/ScanPro/internal/profiles"
	"github.com/MAS191/ScanPro/internal/scanning"
	"github.com/MAS191/ScanPro/internal/targets"
	"github.com/MAS191/ScanPro/internal/workers"
)

const (
	// DefaultMaxCompleted bounds how many finished jobs stay queryable.
	DefaultMaxCompleted = 100

	// DefaultPortSpec is the port specification used when a request does
	// not name one.
	DefaultPortSpec = "top100"

	// jobTypeScan labels scan jobs on the worker pool.
	jobTypeScan = "scan"
)

// Submitter is the slice of the worker pool the manager needs. It is
// satisfied by *workers.Pool.
type Submitter interface {
	Submit(workers.Job) error
}

// Options configure a Manager.
type Options struct {
	// Pool executes submitted jobs. Required.
	Pool Submitter
	// Profiles supplies scan profiles. Nil gets a fresh manager holding
	// the built-in set.
	Profiles *profiles.Manager
	// Resolver overrides target resolution for scans. Nil uses the
	// system resolver.
	Resolver scanning.Resolver
	// Defaults supply engine settings for fields neither the request nor
	// its profile set. Zero fields fall back to the default profile.
	Defaults scanning.Config
	// DefaultPorts is the port specification for requests without one.
	// Empty means DefaultPortSpec.
	DefaultPorts string
	// MaxCompleted bounds retained finished jobs; beyond it the oldest
	// submission is evicted. Zero means DefaultMaxCompleted.
	MaxCompleted int
	// MaxTargets caps the expanded target count per job. Zero applies no
	// cap beyond the parser's own expansion limit.
	MaxTargets int
	// MaxConcurrentRuns caps engine runs executing at once, independently
	// of the pool's worker count. A job whose worker is waiting for a run
	// slot stays pending and can still be canceled. Zero disables the
	// limit.
	MaxConcurrentRuns int
	// PrivateOnly refuses targets outside private, loopback, and
	// link-local address space.
	PrivateOnly bool
	// OnEvent, when set, receives lifecycle and progress events. Calls
	// are synchronous; implementations must return quickly.
	OnEvent EventFunc
}

// Manager owns the in-memory scan job registry. It validates requests,
// hands accepted jobs to the worker pool, and tracks each one from
// pending to a terminal status.
type Manager struct {
	opts Options

	mu      sync.RWMutex
	records map[string]*record
	order   []string

	// resources gates engine runs when MaxConcurrentRuns is set; nil
	// means unbounded.
	resources scanning.ResourceManager

	// runScan is swapped out in tests.
	runScan func(context.Context, *scanning.Config, scanning.Resolver, scanning.ProgressFunc) (*scanning.RunResult, error)
}

type record struct {
	job    Job
	cfg    *scanning.Config
	cancel context.CancelFunc
}

// NewManager creates a job manager with the given options.
func NewManager(opts Options) *Manager {
	if opts.Profiles == nil {
		opts.Profiles = profiles.NewManager()
	}
	if opts.MaxCompleted <= 0 {
		opts.MaxCompleted = DefaultMaxCompleted
	}
	if opts.DefaultPorts == "" {
		opts.DefaultPorts = DefaultPortSpec
	}
	if opts.Defaults.ScanType == "" {
		opts.Defaults.ScanType = scanning.ScanTypeTCPConnect
	}
	if def, err := opts.Profiles.GetByID(profiles.DefaultProfileID); err == nil {
		if opts.Defaults.Timeout <= 0 {
			opts.Defaults.Timeout = def.Timeout
		}
		if opts.Defaults.Concurrency <= 0 {
			opts.Defaults.Concurrency = def.Concurrency
		}
	}
	m := &Manager{
		opts:    opts,
		records: make(map[string]*record),
		runScan: scanning.RunWithResolver,
	}
	if opts.MaxConcurrentRuns > 0 {
		m.resources = scanning.NewFixedResourceManager(opts.MaxConcurrentRuns)
	}
	return m
}

// Submit validates req, registers a pending job, and queues it on the
// worker pool. The returned snapshot reflects the job at submission
// time. Requests that fail validation or find the queue full produce no
// job at all.
func (m *Manager) Submit(req Request) (Job, error) {
	if req.Source == "" {
		req.Source = SourceAPI
	}
	cfg, err := m.buildConfig(&req)
	if err != nil {
		metrics.GetGlobalMetrics().IncrementJobErrors(req.Source, "rejected")
		return Job{}, err
	}

	id := uuid.New().String()
	rec := &record{
		job: Job{
			ID:        id,
			Status:    StatusPending,
			Source:    req.Source,
			Request:   req,
			Progress:  Progress{TargetsTotal: len(cfg.Targets)},
			CreatedAt: time.Now().UTC(),
		},
		cfg: cfg,
	}

	m.mu.Lock()
	m.records[id] = rec
	m.order = append(m.order, id)
	m.evictLocked()
	m.updateGaugesLocked()
	snapshot := rec.job
	m.mu.Unlock()

	work := workers.NewFuncJob(id, jobTypeScan, func(ctx context.Context) error {
		return m.execute(ctx, id, cfg)
	})
	if err := m.opts.Pool.Submit(work); err != nil {
		m.mu.Lock()
		delete(m.records, id)
		m.dropOrderLocked(id)
		m.updateGaugesLocked()
		m.mu.Unlock()
		metrics.GetGlobalMetrics().IncrementJobErrors(req.Source, "queue_full")
		return Job{}, errors.ErrJobQueueFull(err)
	}

	metrics.GetGlobalMetrics().IncrementJobsTotal(req.Source, "submitted")
	logging.InfoJob("Scan job submitted", id,
		"source", req.Source,
		"targets", len(cfg.Targets),
		"ports", len(cfg.Ports))
	m.emit(EventJobSubmitted, snapshot)
	return snapshot, nil
}

// Get returns a snapshot of the job with the given ID.
func (m *Manager) Get(id string) (Job, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.records[id]
	if !ok {
		return Job{}, errors.ErrJobNotFound(id)
	}
	return rec.job, nil
}

// List returns snapshots of every tracked job, newest submission first.
func (m *Manager) List() []Job {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Job, 0, len(m.order))
	for i := len(m.order) - 1; i >= 0; i-- {
		if rec, ok := m.records[m.order[i]]; ok {
			out = append(out, rec.job)
		}
	}
	return out
}

// Result returns the run result and resolved configuration for a
// completed job. Pending and running jobs report a still-running
// conflict; canceled and failed jobs report why no result exists.
func (m *Manager) Result(id string) (*scanning.RunResult, *scanning.Config, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.records[id]
	if !ok {
		return nil, nil, errors.ErrJobNotFound(id)
	}
	switch rec.job.Status {
	case StatusCompleted:
		return rec.job.Result, rec.cfg, nil
	case StatusCanceled:
		return nil, nil, errors.NewJobErrorWithID(errors.CodeCanceled,
			"Scan job was canceled before completing", id).WithState(string(StatusCanceled))
	case StatusFailed:
		return nil, nil, errors.NewJobErrorWithID(errors.CodeScanFailed,
			"Scan job failed: "+rec.job.Error, id).WithState(string(StatusFailed))
	default:
		return nil, nil, errors.ErrJobStillRunning(id).WithState(string(rec.job.Status))
	}
}

// Cancel stops the job with the given ID. Pending jobs are marked
// canceled and never run; running jobs have their context canceled and
// settle to a terminal status through the normal completion path, so
// the snapshot returned for them still shows running.
func (m *Manager) Cancel(id string) (Job, error) {
	m.mu.Lock()
	rec, ok := m.records[id]
	if !ok {
		m.mu.Unlock()
		return Job{}, errors.ErrJobNotFound(id)
	}

	switch rec.job.Status {
	case StatusPending:
		now := time.Now().UTC()
		rec.job.Status = StatusCanceled
		rec.job.EndedAt = &now
		cancel := rec.cancel
		rec.cancel = nil
		snapshot := rec.job
		m.evictLocked()
		m.updateGaugesLocked()
		m.mu.Unlock()

		// A pending job with a cancel func is sitting in a run slot
		// wait; firing it unblocks the worker.
		if cancel != nil {
			cancel()
		}
		metrics.GetGlobalMetrics().IncrementJobsTotal(snapshot.Source, string(StatusCanceled))
		logging.InfoJob("Scan job canceled before start", id)
		m.emit(EventJobCanceled, snapshot)
		return snapshot, nil

	case StatusRunning:
		cancel := rec.cancel
		snapshot := rec.job
		m.mu.Unlock()

		if cancel != nil {
			cancel()
		}
		logging.InfoJob("Scan job cancel requested", id)
		return snapshot, nil

	default:
		state := string(rec.job.Status)
		m.mu.Unlock()
		return Job{}, errors.ErrJobAlreadyFinished(id).WithState(state)
	}
}

// CancelAll cancels every pending and running job. The daemon calls
// this during shutdown so the worker pool can drain quickly.
func (m *Manager) CancelAll() {
	m.mu.RLock()
	ids := make([]string, 0, len(m.order))
	for _, id := range m.order {
		if rec, ok := m.records[id]; ok && !rec.job.Status.Finished() {
			ids = append(ids, id)
		}
	}
	m.mu.RUnlock()

	for _, id := range ids {
		if _, err := m.Cancel(id); err != nil && !errors.IsCode(err, errors.CodeJobFinished) {
			logging.ErrorJob("Failed to cancel job during shutdown", id, err)
		}
	}
}

// Stats returns job counts by status.
func (m *Manager) Stats() Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.statsLocked()
}

// execute runs on a pool worker. It claims a run slot when a limit is
// configured, moves the job to running, drives the engine, and settles
// the terminal status.
func (m *Manager) execute(poolCtx context.Context, id string, cfg *scanning.Config) error {
	runCtx, cancel := context.WithCancel(poolCtx)
	defer cancel()

	// Register the cancel func before the slot wait so Cancel can
	// interrupt a job that is queued behind other runs.
	m.mu.Lock()
	rec, ok := m.records[id]
	if !ok || rec.job.Status != StatusPending {
		canceled := ok && rec.job.Status == StatusCanceled
		m.mu.Unlock()
		if canceled {
			return context.Canceled
		}
		return nil
	}
	rec.cancel = cancel
	m.mu.Unlock()

	if m.resources != nil {
		if err := m.resources.Acquire(runCtx, id); err != nil {
			m.settleUnstarted(id, err)
			return err
		}
		defer m.resources.Release(id)
	}

	start := time.Now().UTC()
	m.mu.Lock()
	rec, ok = m.records[id]
	if !ok || rec.job.Status != StatusPending {
		canceled := ok && rec.job.Status == StatusCanceled
		if ok {
			rec.cancel = nil
		}
		m.mu.Unlock()
		if canceled {
			return context.Canceled
		}
		return nil
	}
	rec.job.Status = StatusRunning
	rec.job.StartedAt = &start
	rec.cancel = cancel
	started := rec.job
	m.updateGaugesLocked()
	m.mu.Unlock()

	logging.InfoJob("Scan job started", id, "source", started.Source)
	m.emit(EventJobStarted, started)

	result, runErr := m.runScan(runCtx, cfg, m.opts.Resolver, func(ev scanning.Event) {
		m.observeScanEvent(id, ev)
	})

	end := time.Now().UTC()
	status := StatusCompleted
	errMsg := ""
	if runErr != nil {
		if errors.IsCode(runErr, errors.CodeCanceled) || errors.IsCode(runErr, errors.CodeTimeout) {
			status = StatusCanceled
		} else {
			status = StatusFailed
			errMsg = runErr.Error()
		}
	}

	m.mu.Lock()
	rec, ok = m.records[id]
	if !ok {
		m.mu.Unlock()
		return runErr
	}
	rec.job.Status = status
	rec.job.EndedAt = &end
	rec.job.Error = errMsg
	rec.job.Result = result
	rec.cancel = nil
	if result != nil {
		rec.job.Progress.PortsScanned = result.Stats.PortsScanned
		rec.job.Progress.OpenPorts = result.Stats.OpenPorts
	}
	if status == StatusCompleted {
		rec.job.Progress.TargetsDone = rec.job.Progress.TargetsTotal
		rec.job.Progress.Percent = 100
	}
	finished := rec.job
	m.evictLocked()
	m.updateGaugesLocked()
	m.mu.Unlock()

	mets := metrics.GetGlobalMetrics()
	mets.IncrementJobsTotal(finished.Source, string(status))
	mets.RecordJobDuration(finished.Source, end.Sub(start))

	switch status {
	case StatusCompleted:
		logging.InfoJob("Scan job completed", id,
			"duration", end.Sub(start).String(),
			"hosts", finished.Progress.TargetsTotal,
			"open_ports", finished.Progress.OpenPorts)
		m.emit(EventJobCompleted, finished)
	case StatusCanceled:
		logging.InfoJob("Scan job canceled", id)
		m.emit(EventJobCanceled, finished)
	default:
		logging.ErrorJob("Scan job failed", id, runErr)
		mets.IncrementJobErrors(finished.Source, "scan_failed")
		m.emit(EventJobFailed, finished)
	}
	return runErr
}

// settleUnstarted finishes a job whose wait for a run slot was
// interrupted before the engine started.
func (m *Manager) settleUnstarted(id string, cause error) {
	status := StatusFailed
	errMsg := cause.Error()
	if cause == context.Canceled || cause == context.DeadlineExceeded {
		status = StatusCanceled
		errMsg = ""
	}

	now := time.Now().UTC()
	m.mu.Lock()
	rec, ok := m.records[id]
	if ok {
		rec.cancel = nil
	}
	if !ok || rec.job.Status != StatusPending {
		m.mu.Unlock()
		return
	}
	rec.job.Status = status
	rec.job.EndedAt = &now
	rec.job.Error = errMsg
	finished := rec.job
	m.evictLocked()
	m.updateGaugesLocked()
	m.mu.Unlock()

	metrics.GetGlobalMetrics().IncrementJobsTotal(finished.Source, string(status))
	if status == StatusCanceled {
		logging.InfoJob("Scan job canceled while waiting for a run slot", id)
		m.emit(EventJobCanceled, finished)
		return
	}
	logging.ErrorJob("Scan job failed before starting", id, cause)
	metrics.GetGlobalMetrics().IncrementJobErrors(finished.Source, "slot_wait")
	m.emit(EventJobFailed, finished)
}

// LongRunning returns the IDs of jobs that have held an engine run slot
// longer than expected. Without a run limit it returns nil.
func (m *Manager) LongRunning() []string {
	if m.resources == nil {
		return nil
	}
	return m.resources.GetLongRunning()
}

// Close shuts the run limiter down. Workers still waiting for a slot
// fail their jobs; callers should cancel jobs first so none are.
func (m *Manager) Close() {
	if m.resources != nil {
		_ = m.resources.Close()
	}
}

// observeScanEvent folds engine progress events into the job's
// counters. Port results only bump counters; host boundaries also fan a
// progress event out, which keeps event volume proportional to targets
// rather than to ports.
func (m *Manager) observeScanEvent(id string, ev scanning.Event) {
	switch ev.Type {
	case scanning.EventPortResult:
		m.mu.Lock()
		if rec, ok := m.records[id]; ok {
			rec.job.Progress.PortsScanned++
			if ev.Result != nil && ev.Result.State == scanning.PortStateOpen {
				rec.job.Progress.OpenPorts++
			}
		}
		m.mu.Unlock()

	case scanning.EventHostCompleted, scanning.EventHostSkipped:
		var snapshot Job
		emit := false
		m.mu.Lock()
		if rec, ok := m.records[id]; ok {
			rec.job.Progress.TargetsDone++
			if total := rec.job.Progress.TargetsTotal; total > 0 {
				rec.job.Progress.Percent = float64(rec.job.Progress.TargetsDone) / float64(total) * 100
			}
			snapshot = rec.job
			emit = true
		}
		m.mu.Unlock()
		if emit {
			m.emit(EventJobProgress, snapshot)
		}
	}
}

// buildConfig expands and validates the request into an engine
// configuration. Precedence for engine settings is explicit request
// values, then the profile, then the manager defaults, all clamped into
// the supported ranges at the end.
func (m *Manager) buildConfig(req *Request) (*scanning.Config, error) {
	if len(req.Targets) == 0 {
		return nil, errors.NewScanError(errors.CodeTargetInvalid, "No targets specified")
	}
	expanded, err := targets.ParseTargets(strings.Join(req.Targets, ","))
	if err != nil {
		return nil, errors.WrapScanError(errors.CodeTargetInvalid, "Invalid target specification", err)
	}
	if m.opts.MaxTargets > 0 && len(expanded) > m.opts.MaxTargets {
		return nil, errors.NewScanError(errors.CodeValidation,
			fmt.Sprintf("Target specification expands to %d hosts, limit is %d", len(expanded), m.opts.MaxTargets))
	}
	if m.opts.PrivateOnly {
		for _, target := range expanded {
			if !targets.IsPrivateTarget(target) {
				return nil, errors.NewScanErrorWithTarget(errors.CodeTargetInvalid,
					"Target is outside private address space", target)
			}
		}
	}

	portSpec := req.Ports
	if strings.TrimSpace(portSpec) == "" {
		portSpec = m.opts.DefaultPorts
	}
	ports, err := targets.ParsePorts(portSpec)
	if err != nil {
		return nil, errors.WrapScanError(errors.CodeValidation, "Invalid port specification", err)
	}

	cfg := &scanning.Config{
		Targets:  expanded,
		Ports:    ports,
		ScanType: m.opts.Defaults.ScanType,
		Banners:  m.opts.Defaults.Banners,
	}
	if req.ScanType != "" {
		cfg.ScanType = scanning.ScanType(req.ScanType)
	}

	if req.Profile != "" {
		profile, err := m.opts.Profiles.GetByID(req.Profile)
		if err != nil {
			return nil, err
		}
		profile.Apply(cfg)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = m.opts.Defaults.Timeout
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = m.opts.Defaults.Concurrency
	}
	if cfg.Delay == 0 {
		cfg.Delay = m.opts.Defaults.Delay
	}

	if req.Timeout != nil {
		cfg.Timeout = *req.Timeout
	}
	if req.Concurrency != nil {
		cfg.Concurrency = *req.Concurrency
	}
	if req.Delay != nil {
		cfg.Delay = *req.Delay
	}
	if req.Banners != nil {
		cfg.Banners = *req.Banners
	}

	profiles.Clamp(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, errors.WrapScanError(errors.CodeValidation, "Invalid scan configuration", err)
	}
	return cfg, nil
}

func (m *Manager) emit(t EventType, job Job) {
	if m.opts.OnEvent == nil {
		return
	}
	m.opts.OnEvent(JobEvent{Type: t, Job: job})
}

// evictLocked drops the oldest finished submissions once more than
// MaxCompleted of them are retained. Pending and running jobs are never
// evicted.
func (m *Manager) evictLocked() {
	finished := 0
	for _, id := range m.order {
		if rec, ok := m.records[id]; ok && rec.job.Status.Finished() {
			finished++
		}
	}
	excess := finished - m.opts.MaxCompleted
	if excess <= 0 {
		return
	}

	kept := m.order[:0]
	for _, id := range m.order {
		rec, ok := m.records[id]
		if ok && excess > 0 && rec.job.Status.Finished() {
			delete(m.records, id)
			excess--
			continue
		}
		kept = append(kept, id)
	}
	m.order = kept
}

func (m *Manager) dropOrderLocked(id string) {
	for i, v := range m.order {
		if v == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			return
		}
	}
}

func (m *Manager) statsLocked() Stats {
	s := Stats{Total: len(m.records)}
	for _, rec := range m.records {
		switch rec.job.Status {
		case StatusPending:
			s.Pending++
		case StatusRunning:
			s.Running++
		case StatusCompleted:
			s.Completed++
		case StatusFailed:
			s.Failed++
		case StatusCanceled:
			s.Canceled++
		}
	}
	return s
}

func (m *Manager) updateGaugesLocked() {
	s := m.statsLocked()
	mets := metrics.GetGlobalMetrics()
	mets.SetQueueDepth(s.Pending)
	mets.SetBusyWorkers(s.Running)
}
