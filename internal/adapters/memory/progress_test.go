package memory

import (
	"testing"
	"time"

	"github.com/creatorlens/creatorlens/internal/app/domain"
)

func TestBeginRejectsActiveRun(t *testing.T) {
	t.Parallel()
	registry := NewProgressRegistry(time.Minute)

	if !registry.Begin("acct-1") {
		t.Fatal("first Begin() = false, want admission")
	}
	if registry.Begin("acct-1") {
		t.Fatal("second Begin() = true while a run is active")
	}
	if !registry.Begin("acct-2") {
		t.Fatal("Begin() for another account = false, want independent admission")
	}
}

func TestBeginAllowsNewRunAfterTerminalState(t *testing.T) {
	t.Parallel()
	registry := NewProgressRegistry(time.Minute)

	registry.Begin("acct-1")
	registry.Finish("acct-1", domain.SyncResult{PostCount: 1})
	if !registry.Begin("acct-1") {
		t.Fatal("Begin() after completion = false, want a fresh run")
	}

	registry.Fail("acct-1", "upstream down")
	if !registry.Begin("acct-1") {
		t.Fatal("Begin() after failure = false, want a fresh run")
	}
}

func TestUpdatePercentIsMonotonic(t *testing.T) {
	t.Parallel()
	registry := NewProgressRegistry(time.Minute)
	registry.Begin("acct-1")

	registry.Update("acct-1", "fetching posts", 40)
	registry.Update("acct-1", "late batch", 25)
	state, ok := registry.Get("acct-1")
	if !ok {
		t.Fatal("Get() found no state")
	}
	if state.Percent != 40 {
		t.Fatalf("percent regressed to %d, want 40", state.Percent)
	}
	if state.Stage != "late batch" {
		t.Fatalf("stage = %q, stage text should still advance", state.Stage)
	}

	registry.Update("acct-1", "overflow", 250)
	state, _ = registry.Get("acct-1")
	if state.Percent != 100 {
		t.Fatalf("percent = %d, want clamped to 100", state.Percent)
	}
}

func TestUpdateIgnoredAfterTerminalState(t *testing.T) {
	t.Parallel()
	registry := NewProgressRegistry(time.Minute)
	registry.Begin("acct-1")
	registry.Finish("acct-1", domain.SyncResult{InteractionCount: 3})

	registry.Update("acct-1", "stale goroutine", 10)
	state, _ := registry.Get("acct-1")
	if state.Status != domain.SyncStatusCompleted || state.Stage != "done" {
		t.Fatalf("terminal state mutated: %+v", state)
	}
	if state.Result == nil || state.Result.InteractionCount != 3 {
		t.Fatalf("result lost: %+v", state.Result)
	}
}

func TestTerminalStateEvictsAfterRetention(t *testing.T) {
	t.Parallel()
	registry := NewProgressRegistry(20 * time.Millisecond)
	registry.Begin("acct-1")
	registry.Finish("acct-1", domain.SyncResult{})

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if _, ok := registry.Get("acct-1"); !ok {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("terminal state never evicted")
}

func TestEvictionTimerDoesNotRemoveNewRun(t *testing.T) {
	t.Parallel()
	registry := NewProgressRegistry(20 * time.Millisecond)
	registry.Begin("acct-1")
	registry.Finish("acct-1", domain.SyncResult{})

	// A fresh run started before the old timer fires must survive it.
	if !registry.Begin("acct-1") {
		t.Fatal("Begin() after completion = false")
	}
	time.Sleep(100 * time.Millisecond)
	state, ok := registry.Get("acct-1")
	if !ok || state.Status != domain.SyncStatusRunning {
		t.Fatalf("new run evicted by the previous run's timer: %+v ok=%v", state, ok)
	}
}

func TestClearRemovesStateImmediately(t *testing.T) {
	t.Parallel()
	registry := NewProgressRegistry(time.Minute)
	registry.Begin("acct-1")
	registry.Clear("acct-1")
	if _, ok := registry.Get("acct-1"); ok {
		t.Fatal("Clear() left state behind")
	}
}
