package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/five82/sidequest/internal/questsync"
	"github.com/five82/sidequest/internal/sidequest"
)

const (
	defaultPollInterval = 5 * time.Minute
	retryInterval       = 2 * time.Second
	maxBackoff          = 30 * time.Second
)

// calculateBackoff returns the wait before the next retry after failures
// consecutive failed polls, doubling from base up to maxBackoff.
func calculateBackoff(failures int, base time.Duration) time.Duration {
	if failures <= 0 {
		return base
	}
	d := base
	for range failures {
		d *= 2
		if d >= maxBackoff {
			return maxBackoff
		}
	}
	return d
}

// renewFunc signs in again after the backend rejects the session token.
type renewFunc func(ctx context.Context) error

// StartPoller launches a background goroutine that keeps the board current.
// It returns immediately. While the backend is unreachable it retries with
// backoff instead of waiting a full interval. A rejected session is renewed
// through renew, when non-nil, before the poll is retried.
func StartPoller(ctx context.Context, quests *questsync.Coordinator, renew renewFunc, interval time.Duration, logger *slog.Logger) {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	go func() {
		failures := 0
		first := interval
		if !quests.Store().Snapshot().Loaded() {
			first = retryInterval
		}
		timer := time.NewTimer(first)
		defer timer.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-timer.C:
			}

			wait := interval
			if err := pollWithRenew(ctx, quests, renew, logger); err != nil {
				if ctx.Err() != nil {
					return
				}
				wait = calculateBackoff(failures, retryInterval)
				failures++
				logger.Warn("board poll failed", "error", err, "failures", failures, "retry_in", wait)
			} else {
				failures = 0
			}
			timer.Reset(wait)
		}
	}()
}

// pollWithRenew polls once and, if the backend rejected the session, renews
// it and polls again.
func pollWithRenew(ctx context.Context, quests *questsync.Coordinator, renew renewFunc, logger *slog.Logger) error {
	err := poll(ctx, quests)
	if err == nil || renew == nil || sidequest.Kind(err) != sidequest.KindAuth {
		return err
	}
	logger.Info("session rejected, signing in again", "error", err)
	if rerr := renew(ctx); rerr != nil {
		return fmt.Errorf("renew session: %w", rerr)
	}
	return poll(ctx, quests)
}

// poll reloads the board when the last load failed and otherwise asks the
// backend whether a new day's board is due.
func poll(ctx context.Context, quests *questsync.Coordinator) error {
	if snap := quests.Store().Snapshot(); !snap.Loaded() {
		return quests.LoadBoard(ctx)
	}
	needs, err := quests.NeedsRefresh(ctx)
	if err != nil {
		return err
	}
	if needs {
		return quests.RefreshBoard(ctx)
	}
	return nil
}
