package api

import (
	"context"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// RefreshFunc renews the session and stores the new token pair
type RefreshFunc func(ctx context.Context) error

// TokenReader returns the access token currently stored
type TokenReader func(ctx context.Context) (string, error)

// Refresher makes sure at most one session refresh is in flight. Callers
// that hit a 401 while a refresh is running wait for that refresh and share
// its outcome instead of starting their own.
type Refresher struct {
	group      singleflight.Group
	refreshing atomic.Bool
	refresh    RefreshFunc
	current    TokenReader
	onFailure  func(ctx context.Context, cause error)
	calls      atomic.Int64
	logger     *zap.Logger
}

// NewRefresher creates a coordinator around refresh
func NewRefresher(refresh RefreshFunc, logger *zap.Logger) *Refresher {
	return &Refresher{
		refresh: refresh,
		logger:  logger,
	}
}

// withTokenReader lets Refresh skip the network when the token that failed
// has already been rotated by an earlier refresh.
func (r *Refresher) withTokenReader(read TokenReader) *Refresher {
	r.current = read
	return r
}

// onRefreshFailure registers the session cleanup run once per failed refresh
func (r *Refresher) onRefreshFailure(fn func(ctx context.Context, cause error)) *Refresher {
	r.onFailure = fn
	return r
}

// Refreshing reports whether a refresh is in flight
func (r *Refresher) Refreshing() bool {
	return r.refreshing.Load()
}

// Calls returns how many refreshes have actually been started
func (r *Refresher) Calls() int64 {
	return r.calls.Load()
}

// Refresh renews the session on behalf of a caller whose request failed
// with staleToken. It returns nil once a valid token is stored and
// ErrSessionExpired when the session cannot be renewed.
func (r *Refresher) Refresh(ctx context.Context, staleToken string) error {
	if r.rotated(ctx, staleToken) {
		return nil
	}

	ch := r.group.DoChan("refresh", func() (interface{}, error) {
		// a flight that finished just before this one may already have
		// replaced the token
		if r.rotated(ctx, staleToken) {
			return nil, nil
		}

		r.refreshing.Store(true)
		defer r.refreshing.Store(false)
		r.calls.Add(1)

		// Waiters share this result, so the first caller's cancellation
		// must not abort it.
		refreshCtx := context.WithoutCancel(ctx)
		if err := r.refresh(refreshCtx); err != nil {
			r.logger.Warn("Session refresh failed", zap.Error(err))
			if r.onFailure != nil {
				r.onFailure(refreshCtx, err)
			}
			return nil, err
		}
		r.logger.Debug("Session refreshed")
		return nil, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return ErrSessionExpired
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Refresher) rotated(ctx context.Context, staleToken string) bool {
	if r.current == nil {
		return false
	}
	token, err := r.current(ctx)
	return err == nil && token != "" && token != staleToken
}
