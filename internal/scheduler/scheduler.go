// Package scheduler runs recurring scans for the ScanPro daemon.
// Schedules are declared in configuration or added at runtime and live
// only in memory. Each cron tick submits a job to the jobs manager; a
// tick is skipped when the previous run of that schedule has not
// finished yet.
package scheduler

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/MAS191/ScanPro/internal/errors"
	"github.com/MAS191/ScanPro/internal/jobs"
	"github.com/MAS191/ScanPro/internal/logging"
)

// JobSubmitter is the slice of the jobs manager the scheduler needs.
// It is satisfied by *jobs.Manager.
type JobSubmitter interface {
	Submit(jobs.Request) (jobs.Job, error)
	Get(id string) (jobs.Job, error)
}

// Schedule describes a recurring scan. The request is submitted as-is
// on every tick except that Source is forced to the scheduler and an
// empty job name inherits the schedule name.
type Schedule struct {
	Name    string
	Cron    string
	Request jobs.Request
}

// Entry is a snapshot of a registered schedule.
type Entry struct {
	ID        uuid.UUID    `json:"id"`
	Name      string       `json:"name"`
	Cron      string       `json:"cron"`
	Request   jobs.Request `json:"request"`
	Enabled   bool         `json:"enabled"`
	LastRun   *time.Time   `json:"last_run,omitempty"`
	NextRun   time.Time    `json:"next_run"`
	LastJobID string       `json:"last_job_id,omitempty"`
}

type entry struct {
	id        uuid.UUID
	name      string
	cronExpr  string
	schedule  cron.Schedule
	cronID    cron.EntryID
	request   jobs.Request
	enabled   bool
	lastRun   time.Time
	lastJobID string
}

// Scheduler owns the cron runner and the registered schedules.
type Scheduler struct {
	jobs JobSubmitter
	cron *cron.Cron

	mu      sync.RWMutex
	entries map[uuid.UUID]*entry
	order   []uuid.UUID
	running bool
}

// New creates a scheduler that submits scans through submitter.
func New(submitter JobSubmitter) *Scheduler {
	return &Scheduler{
		jobs:    submitter,
		cron:    cron.New(),
		entries: make(map[uuid.UUID]*entry),
	}
}

// Add registers a schedule. Standard 5-field cron expressions are
// accepted; schedule names must be unique. Schedules added before
// Start begin firing once the scheduler starts.
func (s *Scheduler) Add(sched Schedule) (Entry, error) {
	name := strings.TrimSpace(sched.Name)
	if name == "" {
		return Entry{}, errors.NewConfigFieldError(errors.CodeValidation,
			"Schedule name must not be empty", "name", sched.Name)
	}
	parsed, err := cron.ParseStandard(sched.Cron)
	if err != nil {
		return Entry{}, errors.NewConfigFieldError(errors.CodeValidation,
			fmt.Sprintf("Invalid cron expression: %v", err), "cron", sched.Cron)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.entries {
		if existing.name == name {
			return Entry{}, errors.ErrConflictWithReason("schedule",
				fmt.Sprintf("name %q already exists", name))
		}
	}

	ent := &entry{
		id:       uuid.New(),
		name:     name,
		cronExpr: sched.Cron,
		schedule: parsed,
		request:  sched.Request,
		enabled:  true,
	}
	id := ent.id
	cronID, err := s.cron.AddFunc(sched.Cron, func() {
		s.runSchedule(id)
	})
	if err != nil {
		return Entry{}, errors.WrapConfigError(errors.CodeValidation,
			"Failed to register cron schedule", err)
	}
	ent.cronID = cronID

	s.entries[id] = ent
	s.order = append(s.order, id)

	logging.Info("Schedule added",
		"schedule", name,
		"cron", sched.Cron,
		"next_run", parsed.Next(time.Now()).Format(time.RFC3339))
	return s.snapshotLocked(ent), nil
}

// Remove unregisters a schedule.
func (s *Scheduler) Remove(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ent, ok := s.entries[id]
	if !ok {
		return errors.ErrNotFoundWithID("schedule", id.String())
	}
	s.cron.Remove(ent.cronID)
	delete(s.entries, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}

	logging.Info("Schedule removed", "schedule", ent.name)
	return nil
}

// Enable turns a schedule back on.
func (s *Scheduler) Enable(id uuid.UUID) error {
	return s.setEnabled(id, true)
}

// Disable keeps a schedule registered but stops its ticks from
// submitting scans.
func (s *Scheduler) Disable(id uuid.UUID) error {
	return s.setEnabled(id, false)
}

func (s *Scheduler) setEnabled(id uuid.UUID, enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ent, ok := s.entries[id]
	if !ok {
		return errors.ErrNotFoundWithID("schedule", id.String())
	}
	ent.enabled = enabled

	action := "disabled"
	if enabled {
		action = "enabled"
	}
	logging.Info("Schedule "+action, "schedule", ent.name)
	return nil
}

// Entries returns snapshots of all schedules in registration order.
func (s *Scheduler) Entries() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Entry, 0, len(s.order))
	for _, id := range s.order {
		if ent, ok := s.entries[id]; ok {
			out = append(out, s.snapshotLocked(ent))
		}
	}
	return out
}

// Start begins firing schedules.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("scheduler is already running")
	}
	s.cron.Start()
	s.running = true

	logging.Info("Scheduler started", "schedules", len(s.entries))
	return nil
}

// Stop halts schedule firing. Schedules stay registered, so the
// scheduler can be started again.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}
	s.cron.Stop()
	s.running = false

	logging.Info("Scheduler stopped")
}

// runSchedule is the cron tick body. It submits the schedule's scan
// unless the schedule is disabled or its previous run is still active.
func (s *Scheduler) runSchedule(id uuid.UUID) {
	s.mu.RLock()
	ent, ok := s.entries[id]
	if !ok || !ent.enabled {
		s.mu.RUnlock()
		return
	}
	name := ent.name
	lastJobID := ent.lastJobID
	req := ent.request
	s.mu.RUnlock()

	if lastJobID != "" {
		if job, err := s.jobs.Get(lastJobID); err == nil && !job.Status.Finished() {
			logging.Info("Skipping scheduled scan, previous run still active",
				"schedule", name, "job_id", lastJobID)
			return
		}
	}

	req.Source = jobs.SourceScheduler
	if req.Name == "" {
		req.Name = name
	}
	job, err := s.jobs.Submit(req)

	now := time.Now().UTC()
	s.mu.Lock()
	if ent, ok := s.entries[id]; ok {
		ent.lastRun = now
		if err == nil {
			ent.lastJobID = job.ID
		}
	}
	s.mu.Unlock()

	if err != nil {
		logging.Error("Scheduled scan submission failed",
			"schedule", name, "error", err)
		return
	}
	logging.Info("Scheduled scan submitted", "schedule", name, "job_id", job.ID)
}

func (s *Scheduler) snapshotLocked(ent *entry) Entry {
	snap := Entry{
		ID:        ent.id,
		Name:      ent.name,
		Cron:      ent.cronExpr,
		Request:   ent.request,
		Enabled:   ent.enabled,
		NextRun:   ent.schedule.Next(time.Now()),
		LastJobID: ent.lastJobID,
	}
	if !ent.lastRun.IsZero() {
		lastRun := ent.lastRun
		snap.LastRun = &lastRun
	}
	return snap
}
