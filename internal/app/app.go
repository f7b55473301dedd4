package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/five82/sidequest/internal/cache"
	"github.com/five82/sidequest/internal/config"
	"github.com/five82/sidequest/internal/prefs"
	"github.com/five82/sidequest/internal/profile"
	"github.com/five82/sidequest/internal/questsync"
	"github.com/five82/sidequest/internal/session"
	"github.com/five82/sidequest/internal/sidequest"
	"github.com/five82/sidequest/internal/state"
	"github.com/five82/sidequest/internal/ui"
)

// Options configure the SideQuest application.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/sidequest/prefs.toml
	APIURL     string // overrides the configured API URL when set
	LogPath    string // overrides the configured log file when set
}

// Session is a signed-in client with its coordinators wired together.
type Session struct {
	Config  config.Config
	Logger  *slog.Logger
	Client  *sidequest.Client
	Tokens  *session.Manager
	Cache   *cache.Store
	Store   *state.Store
	Quests  *questsync.Coordinator
	Profile *profile.Adapter

	logFile *os.File
}

// NewSession loads configuration, opens the log and cache, signs in, and
// wires the board and profile coordinators. Failing to sign in within the
// bootstrap timeout is an error.
func NewSession(ctx context.Context, opts Options) (*Session, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if opts.APIURL != "" {
		cfg.APIURL = opts.APIURL
	}
	if opts.LogPath != "" {
		cfg.LogPath = opts.LogPath
	}

	s := &Session{Config: cfg}
	ok := false
	defer func() {
		if !ok {
			_ = s.Close(context.WithoutCancel(ctx))
		}
	}()

	s.Logger, s.logFile, err = openLogger(cfg.LogPath)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(s.Logger)

	// Sign-in needs no token, so it uses its own client.
	auth, err := sidequest.NewClient(cfg.APIURL, sidequest.WithTimeout(cfg.RequestTimeout))
	if err != nil {
		return nil, fmt.Errorf("init sidequest client: %w", err)
	}
	s.Tokens = session.NewManager(auth, cfg.DeviceID, s.Logger)
	if err := s.Tokens.Bootstrap(ctx, cfg.BootstrapTimeout); err != nil {
		return nil, err
	}

	s.Client, err = sidequest.NewClient(cfg.APIURL,
		sidequest.WithTokenSource(s.Tokens),
		sidequest.WithTimeout(cfg.RequestTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("init sidequest client: %w", err)
	}

	qopts := []questsync.Option{questsync.WithLogger(s.Logger.With("component", "questsync"))}
	s.Cache, err = cache.Open(cfg.CachePath)
	if err != nil {
		// The cache only backs offline fallback; run without it.
		s.Logger.Warn("cache unavailable", "path", cfg.CachePath, "error", err)
	} else {
		qopts = append(qopts, questsync.WithCache(s.Cache))
	}

	s.Store = &state.Store{}
	s.Quests = questsync.New(s.Store, s.Client, qopts...)

	popts := profile.Options{
		Debounce: cfg.AutosaveDebounce,
		Context:  context.WithoutCancel(ctx),
		Logger:   s.Logger.With("component", "profile"),
	}
	if s.Cache != nil {
		popts.Cache = s.Cache
	}
	s.Profile = profile.New(s.Client, popts)

	ok = true
	return s, nil
}

// Close saves any outstanding profile draft and releases the cache and log.
func (s *Session) Close(ctx context.Context) error {
	var errs []error
	if s.Profile != nil {
		if err := s.Profile.Close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("save profile: %w", err))
		}
	}
	if s.Cache != nil {
		if err := s.Cache.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close cache: %w", err))
		}
	}
	if s.logFile != nil {
		if err := s.logFile.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close log: %w", err))
		}
	}
	return errors.Join(errs...)
}

// Run boots the SideQuest TUI until the user quits or the context is cancelled.
func Run(ctx context.Context, opts Options) (err error) {
	s, err := NewSession(ctx, opts)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := s.Close(context.WithoutCancel(ctx)); cerr != nil && err == nil {
			err = cerr
		}
	}()

	userPrefs, perr := prefs.Load(opts.PrefsPath)
	if perr != nil {
		s.Logger.Warn("load prefs failed; using defaults", "error", perr)
	}

	// Populate the store before the UI starts; failures show as fallback quests.
	if lerr := s.Quests.LoadBoard(ctx); lerr != nil {
		s.Logger.Warn("initial board load failed", "error", lerr)
	}
	if _, lerr := s.Profile.Load(ctx); lerr != nil {
		s.Logger.Warn("initial profile load failed", "error", lerr)
	}

	renew := func(ctx context.Context) error {
		return s.Tokens.Renew(ctx, s.Config.BootstrapTimeout)
	}
	StartPoller(ctx, s.Quests, renew, s.Config.PollInterval, s.Logger.With("component", "poller"))

	return ui.Run(ui.Options{
		Context:   ctx,
		Quests:    s.Quests,
		Profile:   s.Profile,
		Logger:    s.Logger.With("component", "ui"),
		ThemeName: userPrefs.Theme,
		PrefsPath: opts.PrefsPath,
		StartView: ui.ViewFromTab(userPrefs.DefaultTab),
		Compact:   userPrefs.Compact,
	})
}

func openLogger(path string) (*slog.Logger, *os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log: %w", err)
	}
	logger := slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelInfo}))
	return logger, f, nil
}
