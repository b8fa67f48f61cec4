// Package profiles provides scan profile management for ScanPro.
// It handles predefined and custom scan parameter sets so that common
// scanning styles can be requested by name instead of raw numbers.
package profiles

import (
	"fmt"
	"regexp"
	"sort"
	"sync"
	"time"

	"github.com/MAS191/ScanPro/internal/errors"
	"github.com/MAS191/ScanPro/internal/scanning"
)

// Parameter bounds applied when a configuration is clamped. Values outside
// these ranges are pulled back to the nearest bound rather than rejected.
const (
	MinTimeout     = 100 * time.Millisecond
	MaxTimeout     = 60 * time.Second
	MinConcurrency = 1
	MaxConcurrency = 1000
	MaxDelay       = 10 * time.Second
)

// DefaultProfileID names the built-in profile used when the caller does not
// select one.
const DefaultProfileID = "default"

// profileIDPattern restricts profile IDs to lowercase slugs.
var profileIDPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)

// Profile is a named set of scan timing parameters. A profile supplies
// values for settings the caller left unset; it never overrides explicit
// choices.
type Profile struct {
	ID          string        `json:"id" yaml:"id"`
	Name        string        `json:"name" yaml:"name"`
	Description string        `json:"description" yaml:"description"`
	Timeout     time.Duration `json:"timeout" yaml:"timeout"`
	Concurrency int           `json:"concurrency" yaml:"concurrency"`
	Delay       time.Duration `json:"delay" yaml:"delay"`
	BuiltIn     bool          `json:"built_in" yaml:"-"`
}

// Apply copies the profile's parameters into cfg for every field still at
// its zero value.
func (p *Profile) Apply(cfg *scanning.Config) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = p.Timeout
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = p.Concurrency
	}
	if cfg.Delay == 0 {
		cfg.Delay = p.Delay
	}
}

// Clamp pulls the timing parameters of cfg back into the supported ranges.
func Clamp(cfg *scanning.Config) {
	if cfg.Timeout < MinTimeout {
		cfg.Timeout = MinTimeout
	}
	if cfg.Timeout > MaxTimeout {
		cfg.Timeout = MaxTimeout
	}
	if cfg.Concurrency < MinConcurrency {
		cfg.Concurrency = MinConcurrency
	}
	if cfg.Concurrency > MaxConcurrency {
		cfg.Concurrency = MaxConcurrency
	}
	if cfg.Delay < 0 {
		cfg.Delay = 0
	}
	if cfg.Delay > MaxDelay {
		cfg.Delay = MaxDelay
	}
}

// builtInProfiles returns the predefined profile set.
func builtInProfiles() []Profile {
	return []Profile{
		{
			ID:          DefaultProfileID,
			Name:        "Default",
			Description: "Balanced settings suitable for most networks",
			Timeout:     3 * time.Second,
			Concurrency: 100,
			Delay:       0,
			BuiltIn:     true,
		},
		{
			ID:          "fast",
			Name:        "Fast",
			Description: "Short timeouts and a large pool for responsive networks",
			Timeout:     1 * time.Second,
			Concurrency: 200,
			Delay:       0,
			BuiltIn:     true,
		},
		{
			ID:          "slow",
			Name:        "Slow",
			Description: "Patient settings for slow or distant networks",
			Timeout:     10 * time.Second,
			Concurrency: 50,
			Delay:       100 * time.Millisecond,
			BuiltIn:     true,
		},
		{
			ID:          "stealth",
			Name:        "Stealth",
			Description: "Low and slow probing to reduce network noise",
			Timeout:     5 * time.Second,
			Concurrency: 25,
			Delay:       500 * time.Millisecond,
			BuiltIn:     true,
		},
		{
			ID:          "aggressive",
			Name:        "Aggressive",
			Description: "Maximum probe rate for internal networks",
			Timeout:     2 * time.Second,
			Concurrency: 300,
			Delay:       0,
			BuiltIn:     true,
		},
	}
}

// Manager handles scan profile operations. The built-in profiles are always
// present; custom profiles live alongside them for the lifetime of the
// process.
type Manager struct {
	mu       sync.RWMutex
	profiles map[string]Profile
}

// NewManager creates a profile manager seeded with the built-in profiles.
func NewManager() *Manager {
	m := &Manager{
		profiles: make(map[string]Profile),
	}
	for _, p := range builtInProfiles() {
		m.profiles[p.ID] = p
	}
	return m
}

// GetAll returns all profiles sorted by ID, built-ins first.
func (m *Manager) GetAll() []*Profile {
	m.mu.RLock()
	defer m.mu.RUnlock()

	profiles := make([]*Profile, 0, len(m.profiles))
	for id := range m.profiles {
		p := m.profiles[id]
		profiles = append(profiles, &p)
	}

	sort.Slice(profiles, func(i, j int) bool {
		if profiles[i].BuiltIn != profiles[j].BuiltIn {
			return profiles[i].BuiltIn
		}
		return profiles[i].ID < profiles[j].ID
	})
	return profiles
}

// GetByID returns a profile by ID.
func (m *Manager) GetByID(id string) (*Profile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.profiles[id]
	if !ok {
		return nil, errors.ErrNotFoundWithID("profile", id)
	}
	return &p, nil
}

// Create adds a new custom scan profile. Profiles created at runtime are
// never built-in, whatever the caller set.
func (m *Manager) Create(profile *Profile) error {
	if err := ValidateProfile(profile); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.profiles[profile.ID]; exists {
		return errors.ErrConflictWithReason("profile", fmt.Sprintf("ID %s already exists", profile.ID))
	}

	p := *profile
	p.BuiltIn = false
	m.profiles[p.ID] = p
	return nil
}

// Update replaces an existing custom scan profile. Built-in profiles cannot
// be modified.
func (m *Manager) Update(profile *Profile) error {
	if err := ValidateProfile(profile); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.profiles[profile.ID]
	if !ok {
		return errors.ErrNotFoundWithID("profile", profile.ID)
	}
	if existing.BuiltIn {
		return errors.ErrConflictWithReason("profile", "built-in profiles cannot be modified")
	}

	p := *profile
	p.BuiltIn = false
	m.profiles[p.ID] = p
	return nil
}

// Delete removes a custom scan profile. Built-in profiles cannot be
// deleted.
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.profiles[id]
	if !ok {
		return errors.ErrNotFoundWithID("profile", id)
	}
	if existing.BuiltIn {
		return errors.ErrConflictWithReason("profile", "built-in profiles cannot be deleted")
	}

	delete(m.profiles, id)
	return nil
}

// CloneProfile creates a copy of an existing profile under a new ID.
func (m *Manager) CloneProfile(sourceID, newID, newName string) error {
	source, err := m.GetByID(sourceID)
	if err != nil {
		return fmt.Errorf("failed to get source profile: %w", err)
	}

	clone := *source
	clone.ID = newID
	clone.Name = newName
	clone.BuiltIn = false

	return m.Create(&clone)
}

// ValidateProfile validates a scan profile definition.
func ValidateProfile(profile *Profile) error {
	if profile.ID == "" {
		return fmt.Errorf("profile ID is required")
	}
	if !profileIDPattern.MatchString(profile.ID) {
		return fmt.Errorf("invalid profile ID %q: must be a lowercase slug", profile.ID)
	}
	if profile.Name == "" {
		return fmt.Errorf("profile name is required")
	}
	if profile.Timeout < MinTimeout || profile.Timeout > MaxTimeout {
		return fmt.Errorf("timeout %v out of range [%v, %v]", profile.Timeout, MinTimeout, MaxTimeout)
	}
	if profile.Concurrency < MinConcurrency || profile.Concurrency > MaxConcurrency {
		return fmt.Errorf("concurrency %d out of range [%d, %d]",
			profile.Concurrency, MinConcurrency, MaxConcurrency)
	}
	if profile.Delay < 0 || profile.Delay > MaxDelay {
		return fmt.Errorf("delay %v out of range [0, %v]", profile.Delay, MaxDelay)
	}
	return nil
}
