package state

import (
	"slices"
	"sync"
	"time"

	"github.com/five82/sidequest/internal/sidequest"
)

// Snapshot represents the latest board data available to the UI.
type Snapshot struct {
	Board               Board
	Generation          uint64 // bumped by every Replace and Fail
	LastLoadedAt        time.Time
	LoadError           error
	TransitionError     error
	LastError           error // whichever of the two was recorded last
	ConsecutiveFailures int // Number of consecutive load failures

	// Fallback holds read-only quests to show while the board is unavailable.
	Fallback       []sidequest.Quest
	FallbackSource string
}

// IsOffline returns true when the API has been unreachable for multiple loads.
func (s Snapshot) IsOffline() bool {
	return s.ConsecutiveFailures >= 2
}

// Loaded reports whether at least one board load has succeeded since the last failure.
func (s Snapshot) Loaded() bool {
	return !s.LastLoadedAt.IsZero() && s.LoadError == nil
}

// Store coordinates concurrent access to the board. The zero value is ready to use.
type Store struct {
	mu       sync.RWMutex
	snapshot Snapshot
	now      func() time.Time
}

// Replace swaps in a freshly loaded board and clears both error slots.
func (s *Store) Replace(remote sidequest.Board) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	board := FromRemote(remote)
	if board.LastRefreshed.IsZero() {
		board.LastRefreshed = s.clock()
	}
	s.snapshot.Board = board
	s.snapshot.Generation++
	s.snapshot.LastLoadedAt = s.clock()
	s.snapshot.LoadError = nil
	s.snapshot.TransitionError = nil
	s.snapshot.LastError = nil
	s.snapshot.ConsecutiveFailures = 0
	s.snapshot.Fallback = nil
	s.snapshot.FallbackSource = ""
	return s.snapshot.Generation
}

// Fail clears the board and records err. fallback, when non-empty, is kept
// separately so the UI can tell "offline" apart from "no quests".
func (s *Store) Fail(err error, fallback []sidequest.Quest, source string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot.Board = Board{}
	s.snapshot.Generation++
	s.snapshot.LoadError = err
	s.snapshot.TransitionError = nil
	s.snapshot.LastError = err
	s.snapshot.ConsecutiveFailures++
	s.snapshot.Fallback = cloneQuests(fallback)
	s.snapshot.FallbackSource = source
}

// ApplyLocal sets a quest's status optimistically after checking CanTransition
// against the quest's current status. It returns the quest as it was before the
// change and the board generation the change was made against.
func (s *Store) ApplyLocal(id string, status sidequest.Status) (sidequest.Quest, uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, ok := s.snapshot.Board.Get(id)
	if !ok {
		return sidequest.Quest{}, s.snapshot.Generation, &sidequest.NotFoundError{ID: id}
	}
	if err := CanTransition(prev.Status, status).Error(id); err != nil {
		return sidequest.Quest{}, s.snapshot.Generation, err
	}
	next, err := s.snapshot.Board.ApplyLocal(id, status)
	if err != nil {
		return sidequest.Quest{}, s.snapshot.Generation, err
	}
	s.snapshot.Board = next
	return prev, s.snapshot.Generation, nil
}

// ApplyCanonical replaces one quest with the server's record and clears the
// transition error.
func (s *Store) ApplyCanonical(q sidequest.Quest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := s.snapshot.Board.ApplyCanonical(q)
	if err != nil {
		return err
	}
	s.snapshot.Board = next
	s.snapshot.TransitionError = nil
	s.snapshot.LastError = s.snapshot.LoadError
	return nil
}

// Rollback restores prev and records cause in one step. The restore is skipped
// when the board has been replaced since gen; the replace already carried
// canonical data. It reports whether prev was restored.
func (s *Store) Rollback(prev sidequest.Quest, gen uint64, cause error) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot.TransitionError = cause
	s.snapshot.LastError = cause
	if gen != s.snapshot.Generation {
		return false
	}
	next, err := s.snapshot.Board.ApplyCanonical(prev)
	if err != nil {
		return false
	}
	s.snapshot.Board = next
	return true
}

// SetTransitionError records a transition failure that had nothing to roll back.
func (s *Store) SetTransitionError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot.TransitionError = err
	s.snapshot.LastError = err
	if err == nil {
		s.snapshot.LastError = s.snapshot.LoadError
	}
}

// Snapshot returns a copy of the current snapshot.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snapshot
	snap.Fallback = cloneQuests(s.snapshot.Fallback)
	return snap
}

// Board returns the current board.
func (s *Store) Board() Board {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot.Board
}

func (s *Store) clock() time.Time {
	if s.now != nil {
		return s.now()
	}
	return time.Now()
}

func cloneQuests(items []sidequest.Quest) []sidequest.Quest {
	if len(items) == 0 {
		return nil
	}
	dup := slices.Clone(items)
	for i := range dup {
		dup[i] = dup[i].Clone()
	}
	return dup
}
