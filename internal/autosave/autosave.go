package autosave

import (
	"context"
	"log/slog"
	"reflect"
	"sync"
	"time"
)

// DefaultDebounce is the quiet period used when Options.Debounce is zero.
const DefaultDebounce = 2 * time.Second

// State describes where the draft stands relative to the last saved value.
type State int

const (
	Clean State = iota
	Dirty
	Saving
)

func (s State) String() string {
	switch s {
	case Clean:
		return "clean"
	case Dirty:
		return "dirty"
	case Saving:
		return "saving"
	default:
		return "unknown"
	}
}

// Timer is the part of *time.Timer the coordinator uses.
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f after d. time.AfterFunc satisfies it once wrapped.
type AfterFunc func(d time.Duration, f func()) Timer

// Options configures a Coordinator.
type Options[T any] struct {
	// Save persists v. Required.
	Save func(ctx context.Context, v T) error
	// Equal compares two drafts. Defaults to reflect.DeepEqual.
	Equal func(a, b T) bool
	// Debounce is the quiet period before a scheduled save. Defaults to DefaultDebounce.
	Debounce time.Duration
	// AfterFunc schedules debounce timers. Defaults to time.AfterFunc.
	AfterFunc AfterFunc
	// Context is handed to saves started by the debounce timer.
	Context context.Context
	// OnError is called after every failed save.
	OnError func(error)
	// OnSaved is called with the value of every successful save, after Save
	// returns and outside the lock. Saves overtaken by Reset are not reported.
	OnSaved func(T)
	Logger  *slog.Logger
}

// Coordinator debounces saves of a draft value of type T.
//
// Values passed to NotifyChanged and Reset are stored as-is and handed to Save
// later; callers must not mutate them afterwards.
type Coordinator[T any] struct {
	opts Options[T]

	mu        sync.Mutex
	current   T
	lastSaved T
	saving    bool
	focused   bool
	closed    bool
	lastErr   error

	timer    Timer
	timerGen uint64
	epoch    uint64 // bumped by Reset; a save that straddles a Reset is not recorded
}

// New returns a Coordinator whose draft and last saved value are both initial.
// The owning surface starts focused and mounted.
func New[T any](initial T, opts Options[T]) *Coordinator[T] {
	if opts.Save == nil {
		panic("autosave: Options.Save is required")
	}
	if opts.Equal == nil {
		opts.Equal = func(a, b T) bool { return reflect.DeepEqual(a, b) }
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.AfterFunc == nil {
		opts.AfterFunc = func(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) }
	}
	if opts.Context == nil {
		opts.Context = context.Background()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Coordinator[T]{
		opts:      opts,
		current:   initial,
		lastSaved: initial,
		focused:   true,
	}
}

// NotifyChanged records v as the current draft. A draft equal to the last
// saved value cancels any pending save; anything else restarts the debounce
// window.
func (c *Coordinator[T]) NotifyChanged(v T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.current = v
	if c.opts.Equal(v, c.lastSaved) {
		c.stopTimerLocked()
		return
	}
	c.armLocked()
}

// Flush saves the current draft now. It is a no-op returning nil when the
// draft is clean or another save is already in flight.
func (c *Coordinator[T]) Flush(ctx context.Context) error {
	c.mu.Lock()
	if c.saving {
		c.mu.Unlock()
		c.opts.Logger.Debug("autosave flush dropped, save in flight")
		return nil
	}
	c.stopTimerLocked()
	if c.opts.Equal(c.current, c.lastSaved) {
		c.mu.Unlock()
		return nil
	}
	value := c.current
	c.saving = true
	epoch := c.epoch
	c.mu.Unlock()

	return c.save(ctx, value, epoch)
}

// Blur marks the owning surface as unfocused and saves any unsaved draft
// immediately. The returned error is the save's error.
func (c *Coordinator[T]) Blur(ctx context.Context) error {
	c.mu.Lock()
	c.focused = false
	c.stopTimerLocked()
	c.mu.Unlock()

	return c.Flush(ctx)
}

// Focus marks the owning surface as focused and resumes the debounce if the
// draft has unsaved changes.
func (c *Coordinator[T]) Focus() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.focused = true
	if !c.saving && !c.opts.Equal(c.current, c.lastSaved) {
		c.armLocked()
	}
}

// Close tears the coordinator down. The draft and last saved value are read
// once, here, and a final save of that draft is attempted when they differ and
// nothing is in flight. If a save is in flight, it is followed by one more save
// should the draft still differ when it settles. Close is idempotent; later
// NotifyChanged calls are recorded but never scheduled.
func (c *Coordinator[T]) Close(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.stopTimerLocked()
	current, lastSaved := c.current, c.lastSaved
	if c.saving || c.opts.Equal(current, lastSaved) {
		c.mu.Unlock()
		return nil
	}
	c.saving = true
	epoch := c.epoch
	c.mu.Unlock()

	return c.save(ctx, current, epoch)
}

// Reset rebases both the draft and the last saved value onto v, typically a
// canonical value just loaded from the server.
func (c *Coordinator[T]) Reset(v T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopTimerLocked()
	c.current = v
	c.lastSaved = v
	c.lastErr = nil
	c.epoch++
}

// State reports Clean, Dirty or Saving.
func (c *Coordinator[T]) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch {
	case c.saving:
		return Saving
	case c.opts.Equal(c.current, c.lastSaved):
		return Clean
	default:
		return Dirty
	}
}

// HasUnsavedChanges reports whether the draft differs from the last saved value.
func (c *Coordinator[T]) HasUnsavedChanges() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.opts.Equal(c.current, c.lastSaved)
}

func (c *Coordinator[T]) IsSaving() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.saving
}

// LastError returns the error of the most recent save, or nil after a success.
func (c *Coordinator[T]) LastError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

func (c *Coordinator[T]) Current() T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

func (c *Coordinator[T]) LastSaved() T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastSaved
}

// save runs with c.saving set and the lock released.
func (c *Coordinator[T]) save(ctx context.Context, value T, epoch uint64) error {
	for {
		err := c.opts.Save(ctx, value)

		c.mu.Lock()
		if err != nil {
			c.saving = false
			c.lastErr = err
			c.mu.Unlock()
			c.opts.Logger.Warn("autosave failed", "error", err)
			if c.opts.OnError != nil {
				c.opts.OnError(err)
			}
			return err
		}

		recorded := epoch == c.epoch
		if recorded {
			c.lastSaved = value
			c.lastErr = nil
		}
		pending := !c.opts.Equal(c.current, c.lastSaved)
		if pending && c.closed {
			// Torn down mid-save: nobody is left to schedule the newer draft.
			saved := value
			value = c.current
			epoch = c.epoch
			c.mu.Unlock()
			if recorded {
				c.notifySaved(saved)
			}
			continue
		}
		c.saving = false
		if pending {
			c.armLocked()
		}
		c.mu.Unlock()

		c.opts.Logger.Debug("autosave saved", "pending", pending)
		if recorded {
			c.notifySaved(value)
		}
		return nil
	}
}

func (c *Coordinator[T]) notifySaved(value T) {
	if c.opts.OnSaved != nil {
		c.opts.OnSaved(value)
	}
}

// armLocked restarts the debounce timer if the surface is focused and mounted.
func (c *Coordinator[T]) armLocked() {
	c.stopTimerLocked()
	if !c.focused || c.closed {
		return
	}
	gen := c.timerGen
	c.timer = c.opts.AfterFunc(c.opts.Debounce, func() { c.fire(gen) })
}

func (c *Coordinator[T]) stopTimerLocked() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.timerGen++
}

func (c *Coordinator[T]) fire(gen uint64) {
	c.mu.Lock()
	if gen != c.timerGen || !c.focused || c.closed {
		c.mu.Unlock()
		return
	}
	c.timer = nil
	ctx := c.opts.Context
	c.mu.Unlock()

	// Failures reach the owner through OnError and LastError.
	_ = c.Flush(ctx)
}
