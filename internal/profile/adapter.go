package profile

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/five82/sidequest/internal/autosave"
	"github.com/five82/sidequest/internal/cache"
	"github.com/five82/sidequest/internal/sidequest"
)

// Options configures an Adapter. Only the gateway passed to New is required.
type Options struct {
	Debounce  time.Duration
	AfterFunc autosave.AfterFunc
	// Context is used for saves started by the debounce timer.
	Context  context.Context
	Cache    cache.Blobs
	Logger   *slog.Logger
	Timezone func() string

	// OnCanonical is called with every profile the backend returns.
	OnCanonical func(sidequest.Profile)
	// OnError is called when a background save fails.
	OnError func(error)
}

// Adapter connects a profile editing surface to the backend through an
// autosave engine.
type Adapter struct {
	gateway     sidequest.Gateway
	blobs       cache.Blobs
	logger      *slog.Logger
	timezone    func() string
	onCanonical func(sidequest.Profile)
	engine      *autosave.Coordinator[Draft]

	editMu sync.Mutex

	mu        sync.RWMutex
	canonical sidequest.Profile
	loaded    bool
	stale     bool
	savedAt   time.Time
}

// New returns an Adapter with an empty draft. Call Load before editing.
func New(gateway sidequest.Gateway, opts Options) *Adapter {
	a := &Adapter{
		gateway:     gateway,
		blobs:       opts.Cache,
		logger:      opts.Logger,
		timezone:    opts.Timezone,
		onCanonical: opts.OnCanonical,
	}
	if a.logger == nil {
		a.logger = slog.Default()
	}
	if a.timezone == nil {
		a.timezone = LocalTimezone
	}
	a.engine = autosave.New(Draft{}, autosave.Options[Draft]{
		Save:      a.save,
		Equal:     Draft.Equal,
		Debounce:  opts.Debounce,
		AfterFunc: opts.AfterFunc,
		Context:   opts.Context,
		OnError:   opts.OnError,
		OnSaved:   a.saved,
		Logger:    a.logger.With("component", "profile-autosave"),
	})
	return a
}

// Load fetches the canonical profile and rebases the draft onto it, dropping
// unsaved edits. When the backend is unreachable the cached profile is used
// instead and Stale reports true until the next successful round trip.
func (a *Adapter) Load(ctx context.Context) (sidequest.Profile, error) {
	p, err := a.gateway.GetProfile(ctx)
	if err != nil {
		if sidequest.Kind(err) == sidequest.KindTransport && a.blobs != nil {
			var cached sidequest.Profile
			ok, cacheErr := cache.GetJSON(ctx, a.blobs, cache.KeyProfile, &cached)
			if cacheErr != nil {
				a.logger.Warn("read cached profile failed", "error", cacheErr)
			}
			if ok {
				a.logger.Warn("profile load failed, using cached copy", "error", err)
				a.mu.Lock()
				a.canonical, a.loaded, a.stale = cached, true, true
				a.mu.Unlock()
				a.engine.Reset(DraftFromProfile(cached))
				return cached, nil
			}
		}
		return sidequest.Profile{}, fmt.Errorf("load profile: %w", err)
	}
	a.publish(ctx, p)
	a.engine.Reset(DraftFromProfile(p))
	return p, nil
}

// Update validates d and hands it to the autosave engine.
func (a *Adapter) Update(d Draft) error {
	if err := d.Validate(); err != nil {
		return err
	}
	a.engine.NotifyChanged(d.Clone())
	return nil
}

// Edit applies fn to a copy of the current draft and submits the result.
func (a *Adapter) Edit(fn func(*Draft)) error {
	a.editMu.Lock()
	defer a.editMu.Unlock()

	d := a.engine.Current().Clone()
	fn(&d)
	return a.Update(d)
}

// Reset restores server defaults and rebases the draft onto them.
func (a *Adapter) Reset(ctx context.Context) (sidequest.Profile, error) {
	p, err := a.gateway.ResetProfile(ctx)
	if err != nil {
		return sidequest.Profile{}, fmt.Errorf("reset profile: %w", err)
	}
	a.publish(ctx, p)
	a.engine.Reset(DraftFromProfile(p))
	return p, nil
}

// CompleteOnboarding marks onboarding done for the current user.
func (a *Adapter) CompleteOnboarding(ctx context.Context) (sidequest.OnboardingResult, error) {
	res, err := a.gateway.CompleteOnboarding(ctx)
	if err != nil {
		return sidequest.OnboardingResult{}, fmt.Errorf("complete onboarding: %w", err)
	}
	a.mu.Lock()
	a.canonical.OnboardingCompleted = true
	p := a.canonical
	a.mu.Unlock()
	a.storeCache(ctx, p)
	return res, nil
}

func (a *Adapter) save(ctx context.Context, d Draft) error {
	p, err := a.gateway.UpdateProfile(ctx, d.update(a.timezone()))
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	a.publish(ctx, p)
	return nil
}

func (a *Adapter) saved(d Draft) {
	a.mu.Lock()
	a.savedAt = time.Now()
	a.mu.Unlock()
	a.logger.Debug("profile saved", "categories", len(d.Categories), "notifications", d.NotificationsEnabled)
}

func (a *Adapter) publish(ctx context.Context, p sidequest.Profile) {
	a.mu.Lock()
	a.canonical, a.loaded, a.stale = p, true, false
	a.mu.Unlock()

	a.storeCache(ctx, p)
	if a.onCanonical != nil {
		a.onCanonical(p)
	}
}

func (a *Adapter) storeCache(ctx context.Context, p sidequest.Profile) {
	if a.blobs == nil {
		return
	}
	if err := cache.PutJSON(ctx, a.blobs, cache.KeyProfile, p); err != nil {
		a.logger.Warn("cache profile failed", "error", err)
	}
}

// Canonical returns the last profile received from the backend (or cache).
func (a *Adapter) Canonical() (sidequest.Profile, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.canonical, a.loaded
}

// Stale reports whether Canonical came from the local cache.
func (a *Adapter) Stale() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.stale
}

// SavedAt returns when an edit was last persisted, or the zero time if none
// has been saved since the adapter was created.
func (a *Adapter) SavedAt() time.Time {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.savedAt
}

// Draft returns a copy of the current draft.
func (a *Adapter) Draft() Draft { return a.engine.Current().Clone() }

func (a *Adapter) Focus()                          { a.engine.Focus() }
func (a *Adapter) Blur(ctx context.Context) error  { return a.engine.Blur(ctx) }
func (a *Adapter) Close(ctx context.Context) error { return a.engine.Close(ctx) }
func (a *Adapter) Flush(ctx context.Context) error { return a.engine.Flush(ctx) }
func (a *Adapter) State() autosave.State           { return a.engine.State() }
func (a *Adapter) HasUnsavedChanges() bool         { return a.engine.HasUnsavedChanges() }
func (a *Adapter) IsSaving() bool                  { return a.engine.IsSaving() }
func (a *Adapter) LastError() error                { return a.engine.LastError() }
