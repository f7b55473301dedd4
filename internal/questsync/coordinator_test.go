package questsync

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/sidequest/internal/cache"
	"github.com/five82/sidequest/internal/sidequest"
	"github.com/five82/sidequest/internal/state"
)

// fakeGateway is a scriptable sidequest.Gateway.
type fakeGateway struct {
	sidequest.Gateway // unused methods panic

	mu         sync.Mutex
	board      sidequest.Board
	boardErr   error
	boardCalls atomic.Int32
	boardGate  chan struct{}

	transition      func(id string, status sidequest.Status) (sidequest.Quest, error)
	transitionGate  chan struct{}
	transitionStart chan string
	transitionCalls atomic.Int32
	lastFeedback    *sidequest.Feedback
}

func (f *fakeGateway) GetBoard(context.Context) (sidequest.Board, error) {
	f.boardCalls.Add(1)
	if f.boardGate != nil {
		<-f.boardGate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.board, f.boardErr
}

func (f *fakeGateway) RefreshBoard(ctx context.Context) (sidequest.Board, error) {
	return f.GetBoard(ctx)
}

func (f *fakeGateway) NeedsRefresh(context.Context) (bool, error) {
	return true, nil
}

func (f *fakeGateway) TransitionQuest(_ context.Context, id string, status sidequest.Status, feedback *sidequest.Feedback) (sidequest.Quest, error) {
	f.transitionCalls.Add(1)
	f.mu.Lock()
	f.lastFeedback = feedback
	f.mu.Unlock()
	if f.transitionStart != nil {
		f.transitionStart <- id
	}
	if f.transitionGate != nil {
		<-f.transitionGate
	}
	if f.transition != nil {
		return f.transition(id, status)
	}
	return sidequest.Quest{ID: id, Status: status}, nil
}

func (f *fakeGateway) setBoard(board sidequest.Board, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.board, f.boardErr = board, err
}

// memBlobs is an in-memory cache.Blobs.
type memBlobs struct {
	mu   sync.Mutex
	data map[string]string
}

func (m *memBlobs) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memBlobs) Put(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data == nil {
		m.data = map[string]string{}
	}
	m.data[key] = value
	return nil
}

func boardOf(quests ...sidequest.Quest) sidequest.Board {
	return sidequest.Board{IsActive: true, LastRefreshed: "2025-06-01 08:00:00", Quests: quests}
}

func potential(id string) sidequest.Quest {
	return sidequest.Quest{ID: id, Text: "quest " + id, Status: sidequest.StatusPotential}
}

func loaded(t *testing.T, gw *fakeGateway, opts ...Option) *Coordinator {
	t.Helper()
	c := New(&state.Store{}, gw, opts...)
	require.NoError(t, c.LoadBoard(context.Background()))
	return c
}

func statusOf(t *testing.T, c *Coordinator, id string) sidequest.Status {
	t.Helper()
	q, ok := c.Store().Board().Get(id)
	require.True(t, ok, "quest %s missing from board", id)
	return q.Status
}

func TestTransition_ConfirmsAccepted(t *testing.T) {
	gw := &fakeGateway{board: boardOf(potential("q1"))}
	c := loaded(t, gw)

	got, err := c.Transition(context.Background(), "q1", sidequest.StatusAccepted, nil)
	require.NoError(t, err)

	assert.Equal(t, sidequest.StatusAccepted, got.Status)
	assert.Equal(t, sidequest.StatusAccepted, statusOf(t, c, "q1"))
	assert.False(t, c.IsPending("q1"))
	assert.Empty(t, c.Pending())
	assert.NoError(t, c.LastError())
}

func TestTransition_RollsBackOnTransportError(t *testing.T) {
	transportErr := &sidequest.TransportError{Op: "transition quest", Err: errors.New("connection reset")}
	gw := &fakeGateway{
		board: boardOf(potential("q1"), potential("q2")),
		transition: func(string, sidequest.Status) (sidequest.Quest, error) {
			return sidequest.Quest{}, transportErr
		},
	}
	c := loaded(t, gw)
	before, _ := c.Store().Board().Get("q1")

	_, err := c.Transition(context.Background(), "q1", sidequest.StatusAccepted, nil)
	require.ErrorIs(t, err, transportErr)

	after, _ := c.Store().Board().Get("q1")
	assert.Equal(t, before, after, "rollback restores the exact snapshot")
	assert.Equal(t, sidequest.KindTransport, sidequest.Kind(c.LastError()))
	assert.False(t, c.IsPending("q1"))
	assert.Equal(t, sidequest.StatusPotential, statusOf(t, c, "q2"))
}

func TestTransition_SecondCallWhilePendingConflicts(t *testing.T) {
	gw := &fakeGateway{
		board:           boardOf(potential("q1")),
		transitionGate:  make(chan struct{}),
		transitionStart: make(chan string, 1),
	}
	c := loaded(t, gw)

	done := make(chan error, 1)
	go func() {
		_, err := c.Transition(context.Background(), "q1", sidequest.StatusAccepted, nil)
		done <- err
	}()
	<-gw.transitionStart

	assert.True(t, c.IsPending("q1"))
	assert.Equal(t, sidequest.StatusAccepted, statusOf(t, c, "q1"), "optimistic status is visible")
	pending := c.Pending()
	require.Len(t, pending, 1)
	assert.Equal(t, sidequest.StatusPotential, pending[0].Previous.Status)
	assert.Equal(t, sidequest.StatusAccepted, pending[0].Requested)

	for _, status := range []sidequest.Status{sidequest.StatusAccepted, sidequest.StatusDeclined, sidequest.StatusCompleted} {
		_, err := c.Transition(context.Background(), "q1", status, nil)
		var conflict *sidequest.ConflictError
		assert.ErrorAs(t, err, &conflict, "status %s", status)
	}

	// Invalid feedback does not hide the in-flight transition.
	_, err := c.Transition(context.Background(), "q1", sidequest.StatusDeclined, &sidequest.Feedback{Rating: sidequest.RatingThumbsUp})
	var conflict *sidequest.ConflictError
	assert.ErrorAs(t, err, &conflict)

	close(gw.transitionGate)
	require.NoError(t, <-done)
	assert.EqualValues(t, 1, gw.transitionCalls.Load())
	assert.False(t, c.IsPending("q1"))
}

func TestTransition_ServerStatusWins(t *testing.T) {
	gw := &fakeGateway{
		board: boardOf(potential("q1")),
		transition: func(id string, _ sidequest.Status) (sidequest.Quest, error) {
			return sidequest.Quest{ID: id, Text: "rewritten", Status: sidequest.StatusDeclined}, nil
		},
	}
	c := loaded(t, gw)

	got, err := c.Transition(context.Background(), "q1", sidequest.StatusAccepted, nil)
	require.NoError(t, err)
	assert.Equal(t, sidequest.StatusDeclined, got.Status)

	q, _ := c.Store().Board().Get("q1")
	assert.Equal(t, sidequest.StatusDeclined, q.Status)
	assert.Equal(t, "rewritten", q.Text)
}

func TestTransition_Guards(t *testing.T) {
	done := sidequest.Quest{ID: "done", Status: sidequest.StatusCompleted}
	gw := &fakeGateway{board: boardOf(potential("q1"), done)}
	c := loaded(t, gw)
	ctx := context.Background()

	_, err := c.Transition(ctx, "done", sidequest.StatusAccepted, nil)
	var conflict *sidequest.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Contains(t, conflict.Reason, "completed")

	_, err = c.Transition(ctx, "q1", sidequest.StatusCompleted, nil)
	assert.ErrorAs(t, err, &conflict, "potential cannot jump to completed")

	_, err = c.Transition(ctx, "missing", sidequest.StatusAccepted, nil)
	var notFound *sidequest.NotFoundError
	assert.ErrorAs(t, err, &notFound)

	_, err = c.Transition(ctx, "q1", sidequest.StatusAccepted, &sidequest.Feedback{Comment: "fun"})
	var invalid *sidequest.ValidationError
	assert.ErrorAs(t, err, &invalid)

	assert.Zero(t, gw.transitionCalls.Load(), "rejected transitions never reach the backend")
	assert.Equal(t, sidequest.StatusPotential, statusOf(t, c, "q1"))
}

func TestTransition_CompleteWithFeedback(t *testing.T) {
	accepted := sidequest.Quest{ID: "q1", Status: sidequest.StatusAccepted}
	gw := &fakeGateway{board: boardOf(accepted)}
	c := loaded(t, gw)
	ctx := context.Background()

	_, err := c.Transition(ctx, "q1", sidequest.StatusCompleted, &sidequest.Feedback{Rating: "meh"})
	var invalid *sidequest.ValidationError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "feedback.rating", invalid.Field)

	fb := &sidequest.Feedback{Rating: sidequest.RatingThumbsUp, Completed: true, TimeSpent: 12}
	_, err = c.Transition(ctx, "q1", sidequest.StatusCompleted, fb)
	require.NoError(t, err)
	assert.Equal(t, fb, gw.lastFeedback)
}

func TestTransition_MismatchedResponseRollsBack(t *testing.T) {
	gw := &fakeGateway{
		board: boardOf(potential("q1")),
		transition: func(string, sidequest.Status) (sidequest.Quest, error) {
			return sidequest.Quest{}, nil
		},
	}
	c := loaded(t, gw)

	_, err := c.Transition(context.Background(), "q1", sidequest.StatusAccepted, nil)
	assert.Equal(t, sidequest.KindTransport, sidequest.Kind(err))
	assert.Equal(t, sidequest.StatusPotential, statusOf(t, c, "q1"))
}

func TestTransition_FailureAfterBoardReplaceKeepsNewBoard(t *testing.T) {
	gw := &fakeGateway{
		board:           boardOf(potential("q1")),
		transitionGate:  make(chan struct{}),
		transitionStart: make(chan string, 1),
		transition: func(string, sidequest.Status) (sidequest.Quest, error) {
			return sidequest.Quest{}, &sidequest.TransportError{Op: "transition quest", Status: 503}
		},
	}
	c := loaded(t, gw)

	done := make(chan error, 1)
	go func() {
		_, err := c.Transition(context.Background(), "q1", sidequest.StatusAccepted, nil)
		done <- err
	}()
	<-gw.transitionStart

	// The backend already recorded the acceptance; a reload delivers it.
	gw.setBoard(boardOf(sidequest.Quest{ID: "q1", Status: sidequest.StatusAccepted}), nil)
	require.NoError(t, c.LoadBoard(context.Background()))

	close(gw.transitionGate)
	require.Error(t, <-done)

	assert.Equal(t, sidequest.StatusAccepted, statusOf(t, c, "q1"), "stale rollback must not resurrect potential")
	assert.Equal(t, sidequest.KindTransport, sidequest.Kind(c.LastError()))
}

func TestTransition_SuccessAfterQuestAgedOut(t *testing.T) {
	gw := &fakeGateway{
		board:           boardOf(potential("q1")),
		transitionGate:  make(chan struct{}),
		transitionStart: make(chan string, 1),
	}
	c := loaded(t, gw)

	done := make(chan error, 1)
	go func() {
		_, err := c.Transition(context.Background(), "q1", sidequest.StatusAccepted, nil)
		done <- err
	}()
	<-gw.transitionStart

	gw.setBoard(boardOf(potential("q9")), nil)
	require.NoError(t, c.RefreshBoard(context.Background()))

	close(gw.transitionGate)
	require.NoError(t, <-done)

	_, ok := c.Store().Board().Get("q1")
	assert.False(t, ok)
	assert.NoError(t, c.LastError())
}

func TestLastError_TracksMostRecentFailure(t *testing.T) {
	offline := &sidequest.TransportError{Op: "transition quest", Err: errors.New("offline")}
	gw := &fakeGateway{
		board: boardOf(potential("q1")),
		transition: func(string, sidequest.Status) (sidequest.Quest, error) {
			return sidequest.Quest{}, offline
		},
	}
	c := loaded(t, gw)

	_, err := c.Transition(context.Background(), "q1", sidequest.StatusAccepted, nil)
	require.ErrorIs(t, err, offline)
	require.ErrorIs(t, c.LastError(), offline)

	require.NoError(t, c.LoadBoard(context.Background()))
	assert.NoError(t, c.LastError())
	assert.NoError(t, c.Store().Snapshot().TransitionError)

	signedOut := &sidequest.AuthError{Status: 401}
	gw.setBoard(sidequest.Board{}, signedOut)
	require.Error(t, c.LoadBoard(context.Background()))
	assert.Equal(t, sidequest.KindAuth, sidequest.Kind(c.LastError()))
	assert.ErrorIs(t, c.LastError(), signedOut)
}

func TestLoadBoard_ConcurrentCallsShareOneRequest(t *testing.T) {
	gw := &fakeGateway{board: boardOf(potential("q1")), boardGate: make(chan struct{})}
	c := New(&state.Store{}, gw)

	var wg sync.WaitGroup
	errs := make([]error, 3)
	for i := range errs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if i%2 == 0 {
				errs[i] = c.LoadBoard(context.Background())
			} else {
				errs[i] = c.RefreshBoard(context.Background())
			}
		}()
	}

	require.Eventually(t, func() bool { return gw.boardCalls.Load() == 1 }, time.Second, time.Millisecond)
	// Give the other callers time to join the in-flight load.
	time.Sleep(50 * time.Millisecond)
	close(gw.boardGate)
	wg.Wait()

	for _, err := range errs {
		assert.NoError(t, err)
	}
	assert.EqualValues(t, 1, gw.boardCalls.Load())
	assert.Len(t, c.PotentialQuests(), 1)
}

func TestLoadBoard_FailureClearsBoardAndExposesCache(t *testing.T) {
	blobs := &memBlobs{}
	gw := &fakeGateway{board: boardOf(potential("q1"), sidequest.Quest{ID: "q2", Status: sidequest.StatusAccepted})}
	c := loaded(t, gw, WithCache(blobs))

	var cached sidequest.Board
	ok, err := cache.GetJSON(context.Background(), blobs, cache.KeyBoard, &cached)
	require.NoError(t, err)
	require.True(t, ok, "successful load writes the cache")

	offline := &sidequest.TransportError{Op: "get board", Err: errors.New("dial tcp: refused")}
	gw.setBoard(sidequest.Board{}, offline)
	require.ErrorIs(t, c.LoadBoard(context.Background()), offline)

	snap := c.Store().Snapshot()
	assert.Zero(t, snap.Board.Len(), "stale board is not kept")
	assert.ErrorIs(t, snap.LoadError, offline)
	assert.Equal(t, FallbackCache, snap.FallbackSource)
	assert.Len(t, snap.Fallback, 2)
	assert.ErrorIs(t, c.LastError(), offline)
	assert.Empty(t, c.PotentialQuests())
}

func TestLoadBoard_FailureWithoutCacheUsesBuiltins(t *testing.T) {
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	gw := &fakeGateway{boardErr: &sidequest.TransportError{Op: "get board", Status: 502}}
	c := New(&state.Store{}, gw, WithCache(&memBlobs{}), WithClock(func() time.Time { return now }))

	require.Error(t, c.LoadBoard(context.Background()))
	snap := c.Store().Snapshot()
	assert.Equal(t, FallbackBuiltin, snap.FallbackSource)
	require.NotEmpty(t, snap.Fallback)
	assert.Equal(t, now.Add(24*time.Hour), snap.Fallback[0].ExpiresAt)
}

func TestReadModels(t *testing.T) {
	gw := &fakeGateway{board: boardOf(
		potential("p1"),
		sidequest.Quest{ID: "a1", Status: sidequest.StatusAccepted},
		sidequest.Quest{ID: "c1", Status: sidequest.StatusCompleted},
		sidequest.Quest{ID: "x1", Status: sidequest.StatusAbandoned},
		sidequest.Quest{ID: "d1", Status: sidequest.StatusDeclined},
		sidequest.Quest{ID: "f1", Status: sidequest.StatusFailed},
	)}
	c := loaded(t, gw)

	ids := func(quests []sidequest.Quest) []string {
		out := make([]string, 0, len(quests))
		for _, q := range quests {
			out = append(out, q.ID)
		}
		return out
	}
	assert.Equal(t, []string{"p1"}, ids(c.PotentialQuests()))
	assert.Equal(t, []string{"a1", "c1", "x1"}, ids(c.ActiveQuests()))

	stale, err := c.NeedsRefresh(context.Background())
	require.NoError(t, err)
	assert.True(t, stale)
}
