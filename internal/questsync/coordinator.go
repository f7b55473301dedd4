package questsync

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/five82/sidequest/internal/cache"
	"github.com/five82/sidequest/internal/fallback"
	"github.com/five82/sidequest/internal/sidequest"
	"github.com/five82/sidequest/internal/state"
)

// Sources reported in state.Snapshot.FallbackSource.
const (
	FallbackCache   = "cache"
	FallbackBuiltin = "builtin"
)

const boardFlight = "board"

// PendingMutation describes a transition that has been applied locally and
// is waiting for the backend.
type PendingMutation struct {
	QuestID    string
	Previous   sidequest.Quest
	Requested  sidequest.Status
	StartedAt  time.Time
	Generation uint64
}

// Coordinator applies quest transitions optimistically and keeps the board in
// step with the backend.
type Coordinator struct {
	store   *state.Store
	gateway sidequest.Gateway
	blobs   cache.Blobs
	logger  *slog.Logger
	now     func() time.Time

	loads singleflight.Group

	mu      sync.Mutex
	pending map[string]PendingMutation
}

// Option customises a Coordinator.
type Option func(*Coordinator)

// WithCache persists every loaded board to blobs and reads it back when a load fails.
func WithCache(blobs cache.Blobs) Option {
	return func(c *Coordinator) { c.blobs = blobs }
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Coordinator) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) {
		if now != nil {
			c.now = now
		}
	}
}

// New returns a Coordinator driving store through gateway.
func New(store *state.Store, gateway sidequest.Gateway, opts ...Option) *Coordinator {
	c := &Coordinator{
		store:   store,
		gateway: gateway,
		logger:  slog.Default(),
		now:     time.Now,
		pending: make(map[string]PendingMutation),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Store returns the board store the coordinator writes to.
func (c *Coordinator) Store() *state.Store {
	return c.store
}

// LoadBoard fetches the current board. Concurrent calls to LoadBoard and
// RefreshBoard share one request and its outcome.
func (c *Coordinator) LoadBoard(ctx context.Context) error {
	return c.load(ctx, "load", c.gateway.GetBoard)
}

// RefreshBoard asks the backend to generate a fresh board and loads it.
func (c *Coordinator) RefreshBoard(ctx context.Context) error {
	return c.load(ctx, "refresh", c.gateway.RefreshBoard)
}

func (c *Coordinator) load(ctx context.Context, op string, fetch func(context.Context) (sidequest.Board, error)) error {
	_, err, shared := c.loads.Do(boardFlight, func() (any, error) {
		remote, err := fetch(ctx)
		if err != nil {
			quests, source := c.fallbackQuests(ctx)
			c.store.Fail(err, quests, source)
			c.logger.Warn("board "+op+" failed", "error", err, "fallback", source, "fallback_quests", len(quests))
			return nil, err
		}
		gen := c.store.Replace(remote)
		c.logger.Debug("board "+op+" succeeded", "quests", len(remote.Quests), "generation", gen)
		if c.blobs != nil {
			if err := cache.PutJSON(ctx, c.blobs, cache.KeyBoard, remote); err != nil {
				c.logger.Warn("cache board failed", "error", err)
			}
		}
		return nil, nil
	})
	if shared {
		c.logger.Debug("board "+op+" joined in-flight load")
	}
	return err
}

// fallbackQuests returns the cached board's quests, or the built-in list.
func (c *Coordinator) fallbackQuests(ctx context.Context) ([]sidequest.Quest, string) {
	if c.blobs != nil {
		var cached sidequest.Board
		ok, err := cache.GetJSON(ctx, c.blobs, cache.KeyBoard, &cached)
		switch {
		case err != nil:
			c.logger.Warn("read cached board failed", "error", err)
		case ok && len(cached.Quests) > 0:
			return cached.Quests, FallbackCache
		}
	}
	quests, err := fallback.Quests(c.now())
	if err != nil {
		c.logger.Error("built-in quests unavailable", "error", err)
		return nil, ""
	}
	return quests, FallbackBuiltin
}

// NeedsRefresh asks the backend whether the board is stale.
func (c *Coordinator) NeedsRefresh(ctx context.Context) (bool, error) {
	return c.gateway.NeedsRefresh(ctx)
}

// Transition moves quest id to status. The board shows the new status until
// the backend answers; the backend's record then replaces it, or the previous
// record is restored if the call fails. A second Transition for the same id
// while one is in flight fails with *sidequest.ConflictError.
func (c *Coordinator) Transition(ctx context.Context, id string, status sidequest.Status, feedback *sidequest.Feedback) (sidequest.Quest, error) {
	c.mu.Lock()
	if _, busy := c.pending[id]; busy {
		c.mu.Unlock()
		return sidequest.Quest{}, &sidequest.ConflictError{ID: id, Reason: "a transition is already in flight"}
	}
	if err := validateFeedback(status, feedback); err != nil {
		c.mu.Unlock()
		return sidequest.Quest{}, err
	}
	prev, gen, err := c.store.ApplyLocal(id, status)
	if err != nil {
		c.mu.Unlock()
		return sidequest.Quest{}, err
	}
	c.pending[id] = PendingMutation{
		QuestID:    id,
		Previous:   prev,
		Requested:  status,
		StartedAt:  c.now(),
		Generation: gen,
	}
	c.mu.Unlock()

	logger := c.logger.With("quest", id, "from", prev.Status, "to", status)
	logger.Debug("transition started")

	quest, err := c.gateway.TransitionQuest(ctx, id, status, feedback)
	if err == nil && quest.ID != id {
		err = &sidequest.TransportError{
			Op:  "transition quest",
			Err: fmt.Errorf("response carried quest %q", quest.ID),
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.pending, id)

	if err != nil {
		restored := c.store.Rollback(prev, gen, err)
		logger.Warn("transition failed", "error", err, "rolled_back", restored)
		return sidequest.Quest{}, err
	}

	if applyErr := c.store.ApplyCanonical(quest); applyErr != nil {
		// The board was replaced while the request was in flight and the quest
		// is no longer on it.
		var notFound *sidequest.NotFoundError
		if !errors.As(applyErr, &notFound) {
			return quest, applyErr
		}
		c.store.SetTransitionError(nil)
		logger.Info("transition confirmed for quest no longer on the board")
		return quest, nil
	}
	if quest.Status != status {
		logger.Info("backend chose a different status", "status", quest.Status)
	}
	logger.Debug("transition confirmed")
	return quest, nil
}

func validateFeedback(status sidequest.Status, feedback *sidequest.Feedback) error {
	if r := state.CanAttachFeedback(status, feedback); !r.Allowed {
		return &sidequest.ValidationError{Field: "feedback", Reason: r.Reason}
	}
	if feedback == nil {
		return nil
	}
	switch feedback.Rating {
	case sidequest.RatingNone, sidequest.RatingThumbsUp, sidequest.RatingThumbsDown:
	default:
		return &sidequest.ValidationError{Field: "feedback.rating", Reason: fmt.Sprintf("unknown rating %q", feedback.Rating)}
	}
	if feedback.TimeSpent < 0 {
		return &sidequest.ValidationError{Field: "feedback.timeSpent", Reason: "must not be negative"}
	}
	return nil
}

// IsPending reports whether a transition for id is in flight.
func (c *Coordinator) IsPending(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.pending[id]
	return ok
}

// Pending returns the in-flight transitions, oldest first.
func (c *Coordinator) Pending() []PendingMutation {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]PendingMutation, 0, len(c.pending))
	for _, m := range c.pending {
		m.Previous = m.Previous.Clone()
		out = append(out, m)
	}
	slices.SortFunc(out, func(a, b PendingMutation) int {
		if d := a.StartedAt.Compare(b.StartedAt); d != 0 {
			return d
		}
		return cmp.Compare(a.QuestID, b.QuestID)
	})
	return out
}

// PotentialQuests returns the quests still on offer.
func (c *Coordinator) PotentialQuests() []sidequest.Quest {
	return slices.Collect(c.store.Board().ByStatus(sidequest.StatusPotential))
}

// ActiveQuests returns the quests the user has taken on, including the ones
// finished today.
func (c *Coordinator) ActiveQuests() []sidequest.Quest {
	return slices.Collect(c.store.Board().ByStatus(
		sidequest.StatusAccepted,
		sidequest.StatusCompleted,
		sidequest.StatusAbandoned,
	))
}

// LastError returns the most recent board error, from either a load or a
// transition. A successful load clears it.
func (c *Coordinator) LastError() error {
	return c.store.Snapshot().LastError
}

// History returns a page of past quests.
func (c *Coordinator) History(ctx context.Context, query sidequest.HistoryQuery) (sidequest.HistoryPage, error) {
	return c.gateway.History(ctx, query)
}

// Stats returns streak and completion statistics.
func (c *Coordinator) Stats(ctx context.Context) (sidequest.HistoryStats, error) {
	return c.gateway.HistoryStats(ctx)
}
