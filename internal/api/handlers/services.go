// Package handlers provides HTTP request handlers for the ScanPro API.
// This file declares the service interfaces the handlers consume. The
// concrete implementations live in the jobs, scheduler, and profiles
// packages; handlers depend on interfaces so tests can substitute mocks.
package handlers

import (
	"github.com/google/uuid"

	"github.com/MAS191/ScanPro/internal/jobs"
	"github.com/MAS191/ScanPro/internal/profiles"
	"github.com/MAS191/ScanPro/internal/scanning"
	"github.com/MAS191/ScanPro/internal/scheduler"
)

//go:generate mockgen -source=services.go -destination=mocks/mock_services.go -package=mocks

// JobService is the slice of the job manager the scan endpoints use.
// *jobs.Manager satisfies it.
type JobService interface {
	Submit(req jobs.Request) (jobs.Job, error)
	Get(id string) (jobs.Job, error)
	List() []jobs.Job
	Result(id string) (*scanning.RunResult, *scanning.Config, error)
	Cancel(id string) (jobs.Job, error)
	Stats() jobs.Stats
}

// ScheduleService is the slice of the scheduler the schedule endpoints
// use. *scheduler.Scheduler satisfies it.
type ScheduleService interface {
	Add(sched scheduler.Schedule) (scheduler.Entry, error)
	Remove(id uuid.UUID) error
	Enable(id uuid.UUID) error
	Disable(id uuid.UUID) error
	Entries() []scheduler.Entry
}

// ProfileStore is the slice of the profile manager the profile
// endpoints use. *profiles.Manager satisfies it.
type ProfileStore interface {
	GetAll() []*profiles.Profile
	GetByID(id string) (*profiles.Profile, error)
	Create(profile *profiles.Profile) error
	Update(profile *profiles.Profile) error
	Delete(id string) error
}
