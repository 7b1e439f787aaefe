// Package timeouts bounds calls to the remote services the site depends on:
// the file service, the auth service and the email provider.
package timeouts

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// DefaultRemote is used until SetRemote is called.
const DefaultRemote = 10 * time.Second

var remote atomic.Int64

func init() {
	remote.Store(int64(DefaultRemote))
}

// SetRemote sets the timeout for remote calls. Non-positive values are
// ignored.
func SetRemote(d time.Duration) {
	if d > 0 {
		remote.Store(int64(d))
	}
}

// RemoteTimeout returns the current timeout for remote calls.
func RemoteTimeout() time.Duration {
	return time.Duration(remote.Load())
}

// Remote derives a context for one remote call named op.
func Remote(parent context.Context, log *zap.Logger, op string) (context.Context, context.CancelFunc) {
	return WithTimeout(parent, RemoteTimeout(), log, op)
}

// WithTimeout derives a context that expires after timeout. The returned
// cancel logs a warning when the deadline, not the caller, ended the call.
func WithTimeout(parent context.Context, timeout time.Duration, log *zap.Logger, op string) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(parent, timeout)
	return ctx, func() {
		if log != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) && parent.Err() == nil {
			log.Warn("remote call timed out",
				zap.String("operation", op),
				zap.Duration("timeout", timeout),
			)
		}
		cancel()
	}
}
