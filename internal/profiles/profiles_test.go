package profiles

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/MAS191/ScanPro/internal/errors"
	"github.com/MAS191/ScanPro/internal/scanning"
)

// TestNewManager tests the creation of a new Manager.
func TestNewManager(t *testing.T) {
	manager := NewManager()

	assert.NotNil(t, manager)
	assert.Len(t, manager.GetAll(), 5)
}

// TestBuiltInProfiles tests that the predefined profiles carry the expected
// timing parameters.
func TestBuiltInProfiles(t *testing.T) {
	manager := NewManager()

	tests := []struct {
		id          string
		timeout     time.Duration
		concurrency int
		delay       time.Duration
	}{
		{"default", 3 * time.Second, 100, 0},
		{"fast", 1 * time.Second, 200, 0},
		{"slow", 10 * time.Second, 50, 100 * time.Millisecond},
		{"stealth", 5 * time.Second, 25, 500 * time.Millisecond},
		{"aggressive", 2 * time.Second, 300, 0},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			p, err := manager.GetByID(tt.id)
			require.NoError(t, err)

			assert.Equal(t, tt.timeout, p.Timeout)
			assert.Equal(t, tt.concurrency, p.Concurrency)
			assert.Equal(t, tt.delay, p.Delay)
			assert.True(t, p.BuiltIn)
			assert.NotEmpty(t, p.Name)
			assert.NotEmpty(t, p.Description)
		})
	}
}

func TestGetByIDUnknown(t *testing.T) {
	manager := NewManager()

	_, err := manager.GetByID("nonexistent")
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}

// TestProfileApply tests that a profile fills unset values and leaves
// explicit ones alone.
func TestProfileApply(t *testing.T) {
	manager := NewManager()
	slow, err := manager.GetByID("slow")
	require.NoError(t, err)

	t.Run("fills unset fields", func(t *testing.T) {
		cfg := &scanning.Config{}
		slow.Apply(cfg)

		assert.Equal(t, 10*time.Second, cfg.Timeout)
		assert.Equal(t, 50, cfg.Concurrency)
		assert.Equal(t, 100*time.Millisecond, cfg.Delay)
	})

	t.Run("keeps explicit fields", func(t *testing.T) {
		cfg := &scanning.Config{
			Timeout:     time.Second,
			Concurrency: 7,
			Delay:       time.Millisecond,
		}
		slow.Apply(cfg)

		assert.Equal(t, time.Second, cfg.Timeout)
		assert.Equal(t, 7, cfg.Concurrency)
		assert.Equal(t, time.Millisecond, cfg.Delay)
	})
}

// TestClamp tests that out-of-range values are pulled back to the bounds.
func TestClamp(t *testing.T) {
	tests := []struct {
		name string
		in   scanning.Config
		want scanning.Config
	}{
		{
			name: "below minimums",
			in:   scanning.Config{Timeout: time.Millisecond, Concurrency: 0, Delay: -time.Second},
			want: scanning.Config{Timeout: MinTimeout, Concurrency: MinConcurrency, Delay: 0},
		},
		{
			name: "above maximums",
			in:   scanning.Config{Timeout: time.Hour, Concurrency: 5000, Delay: time.Minute},
			want: scanning.Config{Timeout: MaxTimeout, Concurrency: MaxConcurrency, Delay: MaxDelay},
		},
		{
			name: "in range untouched",
			in:   scanning.Config{Timeout: 3 * time.Second, Concurrency: 100, Delay: 50 * time.Millisecond},
			want: scanning.Config{Timeout: 3 * time.Second, Concurrency: 100, Delay: 50 * time.Millisecond},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.in
			Clamp(&cfg)

			assert.Equal(t, tt.want.Timeout, cfg.Timeout)
			assert.Equal(t, tt.want.Concurrency, cfg.Concurrency)
			assert.Equal(t, tt.want.Delay, cfg.Delay)
		})
	}
}

// TestValidateProfile tests profile validation.
func TestValidateProfile(t *testing.T) {
	valid := func() *Profile {
		return &Profile{
			ID:          "custom-internal",
			Name:        "Custom Internal",
			Timeout:     2 * time.Second,
			Concurrency: 150,
			Delay:       10 * time.Millisecond,
		}
	}

	tests := []struct {
		name      string
		mutate    func(*Profile)
		wantError bool
	}{
		{"valid profile", func(*Profile) {}, false},
		{"missing ID", func(p *Profile) { p.ID = "" }, true},
		{"uppercase ID", func(p *Profile) { p.ID = "Custom" }, true},
		{"ID with spaces", func(p *Profile) { p.ID = "my profile" }, true},
		{"missing name", func(p *Profile) { p.Name = "" }, true},
		{"timeout too small", func(p *Profile) { p.Timeout = time.Millisecond }, true},
		{"timeout too large", func(p *Profile) { p.Timeout = 2 * time.Minute }, true},
		{"concurrency too small", func(p *Profile) { p.Concurrency = 0 }, true},
		{"concurrency too large", func(p *Profile) { p.Concurrency = 1001 }, true},
		{"negative delay", func(p *Profile) { p.Delay = -time.Second }, true},
		{"delay too large", func(p *Profile) { p.Delay = time.Minute }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := valid()
			tt.mutate(p)

			err := ValidateProfile(p)
			if tt.wantError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCreateProfile(t *testing.T) {
	manager := NewManager()

	profile := &Profile{
		ID:          "lab",
		Name:        "Lab",
		Timeout:     time.Second,
		Concurrency: 10,
	}
	require.NoError(t, manager.Create(profile))

	got, err := manager.GetByID("lab")
	require.NoError(t, err)
	assert.Equal(t, "Lab", got.Name)
	assert.False(t, got.BuiltIn)

	t.Run("duplicate ID conflicts", func(t *testing.T) {
		err := manager.Create(profile)
		require.Error(t, err)
		assert.True(t, apperrors.IsConflict(err))
	})

	t.Run("existing built-in ID conflicts", func(t *testing.T) {
		p := &Profile{ID: "default", Name: "Default", Timeout: time.Second, Concurrency: 10}
		err := manager.Create(p)
		require.Error(t, err)
		assert.True(t, apperrors.IsConflict(err))
	})
}

func TestUpdateProfile(t *testing.T) {
	manager := NewManager()
	require.NoError(t, manager.Create(&Profile{
		ID:          "lab",
		Name:        "Lab",
		Timeout:     time.Second,
		Concurrency: 10,
	}))

	t.Run("updates custom profile", func(t *testing.T) {
		err := manager.Update(&Profile{
			ID:          "lab",
			Name:        "Lab v2",
			Timeout:     2 * time.Second,
			Concurrency: 20,
		})
		require.NoError(t, err)

		got, err := manager.GetByID("lab")
		require.NoError(t, err)
		assert.Equal(t, "Lab v2", got.Name)
		assert.Equal(t, 2*time.Second, got.Timeout)
	})

	t.Run("rejects built-in", func(t *testing.T) {
		err := manager.Update(&Profile{
			ID:          "default",
			Name:        "Hijacked",
			Timeout:     time.Second,
			Concurrency: 1,
		})
		require.Error(t, err)
		assert.True(t, apperrors.IsConflict(err))
	})

	t.Run("rejects unknown", func(t *testing.T) {
		err := manager.Update(&Profile{
			ID:          "ghost",
			Name:        "Ghost",
			Timeout:     time.Second,
			Concurrency: 1,
		})
		require.Error(t, err)
		assert.True(t, apperrors.IsNotFound(err))
	})
}

func TestDeleteProfile(t *testing.T) {
	manager := NewManager()
	require.NoError(t, manager.Create(&Profile{
		ID:          "lab",
		Name:        "Lab",
		Timeout:     time.Second,
		Concurrency: 10,
	}))

	t.Run("deletes custom profile", func(t *testing.T) {
		require.NoError(t, manager.Delete("lab"))

		_, err := manager.GetByID("lab")
		assert.True(t, apperrors.IsNotFound(err))
	})

	t.Run("rejects built-in", func(t *testing.T) {
		err := manager.Delete("stealth")
		require.Error(t, err)
		assert.True(t, apperrors.IsConflict(err))

		_, getErr := manager.GetByID("stealth")
		assert.NoError(t, getErr)
	})

	t.Run("rejects unknown", func(t *testing.T) {
		err := manager.Delete("ghost")
		require.Error(t, err)
		assert.True(t, apperrors.IsNotFound(err))
	})
}

func TestCloneProfile(t *testing.T) {
	manager := NewManager()

	require.NoError(t, manager.CloneProfile("stealth", "stealth-lab", "Stealth Lab"))

	clone, err := manager.GetByID("stealth-lab")
	require.NoError(t, err)
	assert.Equal(t, "Stealth Lab", clone.Name)
	assert.False(t, clone.BuiltIn)

	source, err := manager.GetByID("stealth")
	require.NoError(t, err)
	assert.Equal(t, source.Timeout, clone.Timeout)
	assert.Equal(t, source.Concurrency, clone.Concurrency)
	assert.Equal(t, source.Delay, clone.Delay)

	t.Run("unknown source", func(t *testing.T) {
		err := manager.CloneProfile("ghost", "copy", "Copy")
		assert.Error(t, err)
	})
}

func TestGetAllOrdering(t *testing.T) {
	manager := NewManager()
	require.NoError(t, manager.Create(&Profile{
		ID:          "aaa-custom",
		Name:        "Custom",
		Timeout:     time.Second,
		Concurrency: 10,
	}))

	all := manager.GetAll()
	require.Len(t, all, 6)

	// Built-ins sort ahead of custom profiles regardless of ID.
	for _, p := range all[:5] {
		assert.True(t, p.BuiltIn, "profile %s", p.ID)
	}
	assert.Equal(t, "aaa-custom", all[5].ID)
}

func TestReturnedProfilesAreCopies(t *testing.T) {
	manager := NewManager()

	p, err := manager.GetByID("default")
	require.NoError(t, err)
	p.Concurrency = 9999

	again, err := manager.GetByID("default")
	require.NoError(t, err)
	assert.Equal(t, 100, again.Concurrency)
}
