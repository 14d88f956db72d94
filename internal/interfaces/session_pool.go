package interfaces

import (
	"context"
)

// SessionPool manages a bounded set of isolated browser sessions drawn from a
// single underlying browser process. All browser access goes through the pool;
// tasks never share a session handle.
type SessionPool interface {
	// Acquire blocks until a session slot is free, then returns a fresh
	// isolated browser context and a release function. The release function
	// is idempotent and must be called on every exit path.
	Acquire(ctx context.Context) (context.Context, func(), error)

	// WithSession runs fn inside a scoped acquisition, guaranteeing release
	// on every exit path including panics.
	WithSession(ctx context.Context, fn func(sessionCtx context.Context) error) error

	// Shutdown drains in-flight work or forcibly closes the browser after a
	// grace period. Safe to call more than once.
	Shutdown() error
}
