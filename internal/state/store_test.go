package state

import (
	"errors"
	"testing"
	"time"

	"github.com/five82/sidequest/internal/sidequest"
)

func remoteBoard(quests ...sidequest.Quest) sidequest.Board {
	return sidequest.Board{IsActive: true, LastRefreshed: "2025-06-01T06:00:00Z", Quests: quests}
}

func TestStore_ReplaceAndSnapshotClone(t *testing.T) {
	var s Store

	before := time.Now()
	gen := s.Replace(remoteBoard(
		sidequest.Quest{ID: "q1", Status: sidequest.StatusPotential, Tags: []string{"a"}},
		sidequest.Quest{ID: "q2", Status: sidequest.StatusAccepted},
	))

	snap := s.Snapshot()
	if gen != 1 || snap.Generation != 1 {
		t.Fatalf("Generation = %d/%d, want 1", gen, snap.Generation)
	}
	if snap.Board.Len() != 2 {
		t.Fatalf("board len = %d, want 2", snap.Board.Len())
	}
	if snap.LastLoadedAt.Before(before) {
		t.Fatalf("LastLoadedAt = %v, want >= %v", snap.LastLoadedAt, before)
	}
	if snap.LoadError != nil || !snap.Loaded() {
		t.Fatalf("LoadError = %v, Loaded = %v; want nil, true", snap.LoadError, snap.Loaded())
	}

	// Quests handed out should be independent of the stored ones.
	quests := snap.Board.Quests()
	quests[0].Tags[0] = "mutated"
	quests[0].Status = sidequest.StatusDeclined
	got, _ := s.Board().Get("q1")
	if got.Tags[0] != "a" || got.Status != sidequest.StatusPotential {
		t.Fatalf("Snapshot should clone quests; got %#v", got)
	}
}

func TestStore_FailClearsBoardAndKeepsFallback(t *testing.T) {
	var s Store
	s.Replace(remoteBoard(sidequest.Quest{ID: "q1", Status: sidequest.StatusPotential}))

	origErr := &sidequest.TransportError{Op: "POST /board", Status: 503}
	s.Fail(origErr, []sidequest.Quest{{ID: "cached"}}, "cache")

	snap := s.Snapshot()
	if snap.Board.Len() != 0 {
		t.Fatalf("board len = %d, want 0 after failure", snap.Board.Len())
	}
	if !errors.Is(snap.LoadError, origErr) {
		t.Fatalf("LoadError = %v, want %v", snap.LoadError, origErr)
	}
	if len(snap.Fallback) != 1 || snap.FallbackSource != "cache" {
		t.Fatalf("Fallback = %#v from %q, want cached quest", snap.Fallback, snap.FallbackSource)
	}
	if snap.Generation != 2 {
		t.Fatalf("Generation = %d, want 2", snap.Generation)
	}
	if snap.Loaded() {
		t.Fatalf("Loaded() = true, want false after failure")
	}

	s.Replace(remoteBoard())
	snap = s.Snapshot()
	if snap.Fallback != nil || snap.FallbackSource != "" {
		t.Fatalf("Replace should clear fallback, got %#v", snap.Fallback)
	}
}

func TestStore_ConsecutiveFailures(t *testing.T) {
	var s Store

	snap := s.Snapshot()
	if snap.ConsecutiveFailures != 0 || snap.IsOffline() {
		t.Fatalf("fresh store: failures=%d offline=%v", snap.ConsecutiveFailures, snap.IsOffline())
	}

	s.Fail(errors.New("fail 1"), nil, "")
	if snap = s.Snapshot(); snap.ConsecutiveFailures != 1 || snap.IsOffline() {
		t.Fatalf("after 1 failure: failures=%d offline=%v", snap.ConsecutiveFailures, snap.IsOffline())
	}

	s.Fail(errors.New("fail 2"), nil, "")
	if snap = s.Snapshot(); snap.ConsecutiveFailures != 2 || !snap.IsOffline() {
		t.Fatalf("after 2 failures: failures=%d offline=%v", snap.ConsecutiveFailures, snap.IsOffline())
	}

	s.Replace(remoteBoard())
	if snap = s.Snapshot(); snap.ConsecutiveFailures != 0 || snap.IsOffline() {
		t.Fatalf("after success: failures=%d offline=%v", snap.ConsecutiveFailures, snap.IsOffline())
	}
}

func TestStore_ApplyLocalReturnsPreviousQuest(t *testing.T) {
	var s Store
	gen := s.Replace(remoteBoard(sidequest.Quest{ID: "q1", Status: sidequest.StatusPotential}))

	prev, atGen, err := s.ApplyLocal("q1", sidequest.StatusAccepted)
	if err != nil {
		t.Fatalf("ApplyLocal returned error: %v", err)
	}
	if prev.Status != sidequest.StatusPotential || atGen != gen {
		t.Fatalf("prev = %q at gen %d, want potential at %d", prev.Status, atGen, gen)
	}
	if got, _ := s.Board().Get("q1"); got.Status != sidequest.StatusAccepted {
		t.Fatalf("status = %q, want accepted", got.Status)
	}

	_, _, err = s.ApplyLocal("missing", sidequest.StatusAccepted)
	var notFound *sidequest.NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("ApplyLocal(missing) error = %v, want NotFoundError", err)
	}

	_, _, err = s.ApplyLocal("q1", sidequest.StatusDeclined)
	var conflict *sidequest.ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("ApplyLocal(accepted -> declined) error = %v, want ConflictError", err)
	}
	if q, _ := s.Board().Get("q1"); q.Status != sidequest.StatusAccepted {
		t.Fatalf("status after rejected move = %q, want accepted", q.Status)
	}
}

func TestStore_RollbackRespectsGeneration(t *testing.T) {
	var s Store
	s.Replace(remoteBoard(sidequest.Quest{ID: "q1", Status: sidequest.StatusPotential}))

	prev, gen, _ := s.ApplyLocal("q1", sidequest.StatusAccepted)
	cause := errors.New("offline")
	if !s.Rollback(prev, gen, cause) {
		t.Fatalf("Rollback = false, want true on same generation")
	}
	snap := s.Snapshot()
	if got, _ := snap.Board.Get("q1"); got.Status != sidequest.StatusPotential {
		t.Fatalf("status = %q, want potential after rollback", got.Status)
	}
	if snap.TransitionError != cause {
		t.Fatalf("TransitionError = %v, want %v", snap.TransitionError, cause)
	}

	prev, gen, _ = s.ApplyLocal("q1", sidequest.StatusDeclined)
	s.Replace(remoteBoard(sidequest.Quest{ID: "q1", Status: sidequest.StatusAccepted}))
	if s.Rollback(prev, gen, cause) {
		t.Fatalf("Rollback = true, want false after board replace")
	}
	if got, _ := s.Board().Get("q1"); got.Status != sidequest.StatusAccepted {
		t.Fatalf("status = %q, want replaced board to win", got.Status)
	}

	if err := s.ApplyCanonical(sidequest.Quest{ID: "q1", Status: sidequest.StatusCompleted}); err != nil {
		t.Fatalf("ApplyCanonical returned error: %v", err)
	}
	if s.Snapshot().TransitionError != nil {
		t.Fatalf("ApplyCanonical should clear TransitionError")
	}
}

func TestStore_LastErrorFollowsLatestOutcome(t *testing.T) {
	var s Store
	s.Replace(remoteBoard(sidequest.Quest{ID: "q1", Status: sidequest.StatusPotential}))

	prev, gen, _ := s.ApplyLocal("q1", sidequest.StatusAccepted)
	rejected := errors.New("rejected")
	s.Rollback(prev, gen, rejected)
	if got := s.Snapshot().LastError; got != rejected {
		t.Fatalf("LastError = %v, want %v", got, rejected)
	}

	s.Replace(remoteBoard(sidequest.Quest{ID: "q1", Status: sidequest.StatusPotential}))
	snap := s.Snapshot()
	if snap.TransitionError != nil || snap.LastError != nil {
		t.Fatalf("after Replace TransitionError = %v, LastError = %v; want nil, nil", snap.TransitionError, snap.LastError)
	}

	down := errors.New("down")
	s.Fail(down, nil, "")
	if got := s.Snapshot().LastError; got != down {
		t.Fatalf("LastError = %v, want %v", got, down)
	}
}
