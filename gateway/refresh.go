package gateway

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	apperrors "github.com/harborline/storefront-go/internal/errors"
	"github.com/harborline/storefront-go/session"
)

// ErrNoRefreshToken fails a cycle before any network call when the session
// carries nothing to refresh with.
var ErrNoRefreshToken = apperrors.New(apperrors.KindAuth, "no refresh token available")

// RefreshFunc performs the single network call of a refresh cycle and
// returns the replacement access token with its expiry.
type RefreshFunc func(ctx context.Context, refreshToken string) (string, time.Time, error)

// cycle is one refresh window. Its result fields are written exactly once
// before done is closed; waiters read them only after done.
type cycle struct {
	done  chan struct{}
	token string
	err   error
}

// RefreshCoordinator serializes token refresh for one gateway client.
// However many requests fail with authorization errors concurrently, at
// most one cycle is in flight, and every caller that joined it settles
// with that cycle's outcome. Each coordinator is owned by exactly one
// Client, so independent clients never share refresh state.
type RefreshCoordinator struct {
	mu       sync.Mutex
	inflight *cycle

	store    session.Store
	refresh  RefreshFunc
	onLogout func()
	logger   zerolog.Logger
}

// NewRefreshCoordinator wires a coordinator to its session store, refresh
// call and logout side effect.
func NewRefreshCoordinator(store session.Store, refresh RefreshFunc, onLogout func(), logger zerolog.Logger) *RefreshCoordinator {
	return &RefreshCoordinator{
		store:    store,
		refresh:  refresh,
		onLogout: onLogout,
		logger:   logger,
	}
}

// Refresh joins the in-flight cycle, or initiates one if none is running,
// and returns the new access token once the cycle settles. The cycle
// itself always runs to completion regardless of caller cancellation, so
// the queue of waiters can never be left stuck; an individual waiter whose
// context is cancelled detaches with a cancellation error.
func (rc *RefreshCoordinator) Refresh(ctx context.Context) (string, error) {
	rc.mu.Lock()
	current := rc.inflight
	if current == nil {
		current = &cycle{done: make(chan struct{})}
		rc.inflight = current
		go rc.run(current)
	}
	rc.mu.Unlock()

	select {
	case <-current.done:
		return current.token, current.err
	case <-ctx.Done():
		return "", apperrors.Cancelled("request abandoned during token refresh", ctx.Err())
	}
}

// run executes one cycle start to finish and settles every waiter.
func (rc *RefreshCoordinator) run(c *cycle) {
	rc.logger.Debug().Msg("token refresh cycle started")

	token, expiresAt, err := rc.execute()

	rc.mu.Lock()
	rc.inflight = nil
	rc.mu.Unlock()

	if err != nil {
		rc.logger.Error().Err(err).Msg("token refresh cycle failed, session cleared")
		c.err = err
	} else {
		rc.logger.Info().Time("expires_at", expiresAt).Msg("token refresh cycle succeeded")
		c.token = token
	}
	close(c.done)
}

func (rc *RefreshCoordinator) execute() (string, time.Time, error) {
	sess := rc.store.Get()
	if sess == nil || sess.RefreshToken == "" {
		rc.failSession()
		return "", time.Time{}, ErrNoRefreshToken
	}

	// The cycle is never cancelled once started; the HTTP client's own
	// timeout bounds it.
	token, expiresAt, err := rc.refresh(context.Background(), sess.RefreshToken)
	if err != nil {
		rc.failSession()
		return "", time.Time{}, apperrors.Auth("session refresh failed", err)
	}

	rc.store.UpdateTokens(token, expiresAt)
	return token, expiresAt, nil
}

// failSession is the hard-failure path: clear credentials and emit the
// logout side effect. Refresh failures are never retried within a cycle.
func (rc *RefreshCoordinator) failSession() {
	rc.store.Clear()
	if rc.onLogout != nil {
		rc.onLogout()
	}
}
