package scanning

import (
	"context"
	"fmt"
	"sync"
	"time"
)

const (
	// longRunThreshold marks a run as suspiciously long once exceeded.
	longRunThreshold = 30 * time.Minute
)

// ResourceManager bounds the number of scan runs executing at once. The jobs
// layer acquires a slot before calling Run and releases it afterwards, so a
// burst of submitted jobs cannot flood the network with probes.
type ResourceManager interface {
	// Acquire claims a slot for the given run ID. It blocks until a slot
	// is available or the context is canceled.
	Acquire(ctx context.Context, runID string) error

	// Release returns the slot held by the given run ID.
	Release(runID string)

	// GetActiveRuns returns the number of runs currently holding slots.
	GetActiveRuns() int

	// GetAvailableSlots returns the number of free slots.
	GetAvailableSlots() int

	// GetLongRunning returns the IDs of runs that have held a slot longer
	// than the long-run threshold.
	GetLongRunning() []string

	// Close shuts the manager down. Pending and future Acquire calls
	// fail after Close.
	Close() error
}

// FixedResourceManager implements ResourceManager with a fixed slot count.
type FixedResourceManager struct {
	capacity   int
	semaphore  chan struct{}
	activeRuns map[string]time.Time
	mutex      sync.RWMutex
	closed     bool
}

// NewFixedResourceManager creates a resource manager with the given
// capacity. Capacities below one are raised to one.
func NewFixedResourceManager(capacity int) *FixedResourceManager {
	if capacity <= 0 {
		capacity = 1
	}
	return &FixedResourceManager{
		capacity:   capacity,
		semaphore:  make(chan struct{}, capacity),
		activeRuns: make(map[string]time.Time),
	}
}

// Acquire claims a slot for the given run ID, blocking until one is free.
func (rm *FixedResourceManager) Acquire(ctx context.Context, runID string) error {
	rm.mutex.Lock()
	if rm.closed {
		rm.mutex.Unlock()
		return fmt.Errorf("resource manager is closed")
	}
	rm.mutex.Unlock()

	select {
	case rm.semaphore <- struct{}{}:
		rm.mutex.Lock()
		rm.activeRuns[runID] = time.Now()
		rm.mutex.Unlock()
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Release returns the slot held by the given run ID. Releasing an unknown ID
// is a no-op.
func (rm *FixedResourceManager) Release(runID string) {
	rm.mutex.Lock()
	defer rm.mutex.Unlock()

	if _, exists := rm.activeRuns[runID]; !exists {
		return
	}
	delete(rm.activeRuns, runID)

	select {
	case <-rm.semaphore:
	default:
	}
}

// GetActiveRuns returns the number of runs currently holding slots.
func (rm *FixedResourceManager) GetActiveRuns() int {
	rm.mutex.RLock()
	defer rm.mutex.RUnlock()

	return len(rm.activeRuns)
}

// GetAvailableSlots returns the number of free slots.
func (rm *FixedResourceManager) GetAvailableSlots() int {
	rm.mutex.RLock()
	defer rm.mutex.RUnlock()

	return rm.capacity - len(rm.activeRuns)
}

// GetLongRunning returns the IDs of runs holding a slot longer than the
// long-run threshold. A long run is not necessarily stuck, so the list is
// surfaced for status reporting rather than acted on.
func (rm *FixedResourceManager) GetLongRunning() []string {
	rm.mutex.RLock()
	defer rm.mutex.RUnlock()

	var ids []string
	now := time.Now()
	for id, started := range rm.activeRuns {
		if now.Sub(started) > longRunThreshold {
			ids = append(ids, id)
		}
	}
	return ids
}

// Close shuts the manager down and drains all slots.
func (rm *FixedResourceManager) Close() error {
	rm.mutex.Lock()
	defer rm.mutex.Unlock()

	if rm.closed {
		return nil
	}
	rm.closed = true
	rm.activeRuns = make(map[string]time.Time)

	for {
		select {
		case <-rm.semaphore:
		default:
			return nil
		}
	}
}

// GetStats returns a snapshot of the manager state for status endpoints.
func (rm *FixedResourceManager) GetStats() map[string]interface{} {
	rm.mutex.RLock()
	defer rm.mutex.RUnlock()

	return map[string]interface{}{
		"capacity":        rm.capacity,
		"active_runs":     len(rm.activeRuns),
		"available_slots": rm.capacity - len(rm.activeRuns),
		"closed":          rm.closed,
	}
}
