package ports

import (
	"context"
	"time"
)

// UnlockFunc is a function that releases a run lock.
type UnlockFunc func(ctx context.Context) error

// Locker provides mutual exclusion between runs of the same backup pool.
type Locker interface {
	// Lock attempts to acquire the lock for key.
	// A held lock may be retried for an implementation-defined wait, bounded by ctx;
	// giving up returns an error matching domain.ErrRunLocked.
	// Returns an UnlockFunc that MUST be called to release the lock.
	Lock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)
}
