// Package session establishes the anonymous backend session and serves its
// token to the gateway.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/five82/sidequest/internal/sidequest"
)

// DefaultBootstrapTimeout bounds Bootstrap when no timeout is given.
const DefaultBootstrapTimeout = 10 * time.Second

// Authenticator exchanges a device id for a session token.
type Authenticator interface {
	SignInAnonymous(ctx context.Context, deviceID string) (sidequest.SignInResponse, error)
}

// Manager holds the session token. It implements sidequest.TokenSource.
type Manager struct {
	auth     Authenticator
	deviceID string
	logger   *slog.Logger

	renewMu sync.Mutex

	mu    sync.RWMutex
	token string
}

var _ sidequest.TokenSource = (*Manager)(nil)

// NewManager returns a Manager that signs in as deviceID.
func NewManager(auth Authenticator, deviceID string, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{auth: auth, deviceID: strings.TrimSpace(deviceID), logger: logger}
}

// Bootstrap signs in and stores the token. It fails once timeout elapses;
// a non-positive timeout means DefaultBootstrapTimeout. Bootstrap is a no-op
// when a token is already held.
func (m *Manager) Bootstrap(ctx context.Context, timeout time.Duration) error {
	if m.Established() {
		return nil
	}
	if m.auth == nil {
		return fmt.Errorf("session bootstrap: %w", sidequest.ErrNoSession)
	}
	if m.deviceID == "" {
		return &sidequest.ValidationError{Field: "device_id", Reason: "device id required"}
	}
	if timeout <= 0 {
		timeout = DefaultBootstrapTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	resp, err := m.auth.SignInAnonymous(ctx, m.deviceID)
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("session bootstrap timed out after %s: %w", timeout, err)
		}
		return fmt.Errorf("session bootstrap: %w", err)
	}

	m.mu.Lock()
	m.token = resp.Token
	m.mu.Unlock()
	m.logger.Info("session established", "device_id", m.deviceID, "elapsed", time.Since(start).Round(time.Millisecond))
	return nil
}

// Token returns the session token, or sidequest.ErrNoSession before Bootstrap succeeds.
func (m *Manager) Token(context.Context) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.token == "" {
		return "", sidequest.ErrNoSession
	}
	return m.token, nil
}

// Established reports whether a token is held.
func (m *Manager) Established() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token != ""
}

// Renew drops the current token and signs in again. Callers use it after the
// backend rejects the token; concurrent calls sign in one after the other.
func (m *Manager) Renew(ctx context.Context, timeout time.Duration) error {
	m.renewMu.Lock()
	defer m.renewMu.Unlock()

	m.Clear()
	if err := m.Bootstrap(ctx, timeout); err != nil {
		return err
	}
	m.logger.Info("session renewed", "device_id", m.deviceID)
	return nil
}

// Clear forgets the token.
func (m *Manager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
}
