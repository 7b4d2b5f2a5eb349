package ports

import "github.com/creatorlens/creatorlens/internal/app/domain"

// ProgressRegistry tracks ephemeral per-account run state. Begin is the only
// admission point: it atomically rejects a second run while one is recorded
// as running for the same account. Backings other than the in-memory adapter
// (an external cache for multi-instance deployments) implement the same
// contract.
type ProgressRegistry interface {
	// Begin records a new running state for the account. It returns false,
	// without modifying existing state, when a run is already in progress.
	Begin(accountKey string) bool
	// Update sets the current stage and percent. Percent is monotone
	// non-decreasing within a run; lower values are clamped.
	Update(accountKey, stage string, percent int)
	// Finish marks the run completed with its result summary at 100 percent.
	Finish(accountKey string, result domain.SyncResult)
	// Fail marks the run errored, leaving percent at its last value.
	Fail(accountKey, message string)
	// Get returns the current state, if any run has been recorded and not
	// yet evicted.
	Get(accountKey string) (domain.SyncProgress, bool)
	// Clear drops the account's state immediately.
	Clear(accountKey string)
}
