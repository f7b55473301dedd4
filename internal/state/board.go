package state

import (
	"iter"
	"slices"
	"time"

	"github.com/five82/sidequest/internal/sidequest"
)

// Board is an immutable, ordered set of quests keyed by id. Every transition
// returns a new Board; the receiver is never modified.
type Board struct {
	quests        []sidequest.Quest
	index         map[string]int
	LastRefreshed time.Time
	IsActive      bool
}

// NewBoard builds a Board from quests in order. Duplicate ids keep the first occurrence.
func NewBoard(quests []sidequest.Quest, refreshed time.Time, active bool) Board {
	b := Board{
		quests:        make([]sidequest.Quest, 0, len(quests)),
		index:         make(map[string]int, len(quests)),
		LastRefreshed: refreshed,
		IsActive:      active,
	}
	for _, q := range quests {
		if _, dup := b.index[q.ID]; dup {
			continue
		}
		b.index[q.ID] = len(b.quests)
		b.quests = append(b.quests, q.Clone())
	}
	return b
}

// FromRemote converts a backend board payload.
func FromRemote(remote sidequest.Board) Board {
	return NewBoard(remote.Quests, remote.ParsedLastRefreshed(), remote.IsActive)
}

// Len returns the number of quests on the board.
func (b Board) Len() int {
	return len(b.quests)
}

// Get returns a copy of the quest with id.
func (b Board) Get(id string) (sidequest.Quest, bool) {
	i, ok := b.index[id]
	if !ok {
		return sidequest.Quest{}, false
	}
	return b.quests[i].Clone(), true
}

// Quests returns a copy of every quest in board order.
func (b Board) Quests() []sidequest.Quest {
	return slices.Collect(b.All())
}

// Replace returns a board holding exactly quests. Nothing from b is merged in.
func (b Board) Replace(quests []sidequest.Quest, refreshed time.Time) Board {
	return NewBoard(quests, refreshed, true)
}

// ApplyLocal returns a board with the quest's status set locally.
func (b Board) ApplyLocal(id string, status sidequest.Status) (Board, error) {
	i, ok := b.index[id]
	if !ok {
		return b, &sidequest.NotFoundError{ID: id}
	}
	next := b.clone()
	next.quests[i].Status = status
	return next, nil
}

// ApplyCanonical returns a board with the quest's full record replaced by q.
func (b Board) ApplyCanonical(q sidequest.Quest) (Board, error) {
	i, ok := b.index[q.ID]
	if !ok {
		return b, &sidequest.NotFoundError{ID: q.ID}
	}
	next := b.clone()
	next.quests[i] = q.Clone()
	return next, nil
}

// All yields every quest in board order.
func (b Board) All() iter.Seq[sidequest.Quest] {
	return b.Filter(nil)
}

// Filter lazily yields copies of the quests matching pred. A nil pred matches all.
func (b Board) Filter(pred func(sidequest.Quest) bool) iter.Seq[sidequest.Quest] {
	return func(yield func(sidequest.Quest) bool) {
		for _, q := range b.quests {
			if pred != nil && !pred(q) {
				continue
			}
			if !yield(q.Clone()) {
				return
			}
		}
	}
}

// ByStatus lazily yields quests whose status is one of statuses.
func (b Board) ByStatus(statuses ...sidequest.Status) iter.Seq[sidequest.Quest] {
	return b.Filter(func(q sidequest.Quest) bool {
		return slices.Contains(statuses, q.Status)
	})
}

// clone copies the backing slice; the index is shared because ids never move.
func (b Board) clone() Board {
	next := b
	next.quests = slices.Clone(b.quests)
	return next
}
