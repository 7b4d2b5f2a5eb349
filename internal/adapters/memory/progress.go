package memory

import (
	"sync"
	"time"

	"github.com/creatorlens/creatorlens/internal/app/domain"
	"github.com/creatorlens/creatorlens/internal/app/ports"
)

const defaultRetention = 5 * time.Minute

// ProgressRegistry tracks per-account sync runs in process memory. Terminal
// states stay readable for the retention period and then evict, so pollers
// that reconnect late still see the outcome.
type ProgressRegistry struct {
	mu        sync.Mutex
	runs      map[string]*runState
	retention time.Duration
}

type runState struct {
	progress domain.SyncProgress
	evict    *time.Timer
}

// NewProgressRegistry creates a registry with the given terminal-state
// retention. Zero or negative retention falls back to the default.
func NewProgressRegistry(retention time.Duration) *ProgressRegistry {
	if retention <= 0 {
		retention = defaultRetention
	}
	return &ProgressRegistry{
		runs:      make(map[string]*runState),
		retention: retention,
	}
}

// Begin admits a run for the account. It returns false while another run is
// active; the check and the state transition are atomic.
func (r *ProgressRegistry) Begin(accountKey string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if state, ok := r.runs[accountKey]; ok {
		if state.progress.Status == domain.SyncStatusRunning {
			return false
		}
		if state.evict != nil {
			state.evict.Stop()
		}
	}
	r.runs[accountKey] = &runState{
		progress: domain.SyncProgress{Stage: "starting", Status: domain.SyncStatusRunning},
	}
	return true
}

// Update advances the run's stage. Percent never moves backwards.
func (r *ProgressRegistry) Update(accountKey, stage string, percent int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	state, ok := r.runs[accountKey]
	if !ok || state.progress.Status != domain.SyncStatusRunning {
		return
	}
	state.progress.Stage = stage
	if percent > 100 {
		percent = 100
	}
	if percent > state.progress.Percent {
		state.progress.Percent = percent
	}
}

// Finish marks the run completed and schedules eviction.
func (r *ProgressRegistry) Finish(accountKey string, result domain.SyncResult) {
	r.mu.Lock()
	defer r.mu.Unlock()

	state, ok := r.runs[accountKey]
	if !ok {
		return
	}
	state.progress = domain.SyncProgress{
		Stage:   "done",
		Percent: 100,
		Status:  domain.SyncStatusCompleted,
		Result:  &result,
	}
	r.scheduleEviction(accountKey, state)
}

// Fail marks the run failed and schedules eviction.
func (r *ProgressRegistry) Fail(accountKey, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	state, ok := r.runs[accountKey]
	if !ok {
		return
	}
	state.progress.Status = domain.SyncStatusError
	state.progress.Error = message
	r.scheduleEviction(accountKey, state)
}

// Get returns the account's current run state.
func (r *ProgressRegistry) Get(accountKey string) (domain.SyncProgress, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	state, ok := r.runs[accountKey]
	if !ok {
		return domain.SyncProgress{}, false
	}
	return state.progress, true
}

// Clear drops the account's run state immediately.
func (r *ProgressRegistry) Clear(accountKey string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if state, ok := r.runs[accountKey]; ok && state.evict != nil {
		state.evict.Stop()
	}
	delete(r.runs, accountKey)
}

// scheduleEviction arms the retention timer; the caller holds the lock. The
// timer compares state pointers so a newer run is never evicted by a stale
// timer.
func (r *ProgressRegistry) scheduleEviction(accountKey string, state *runState) {
	if state.evict != nil {
		state.evict.Stop()
	}
	state.evict = time.AfterFunc(r.retention, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		if current, ok := r.runs[accountKey]; ok && current == state {
			delete(r.runs, accountKey)
		}
	})
}

var _ ports.ProgressRegistry = (*ProgressRegistry)(nil)
