package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/cback/pkg/domain"
	"github.com/aretw0/cback/pkg/ports"
	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"
	backend "github.com/redis/go-redis/v9"
)

var errHeld = errors.New("lock held")

// Compare-and-delete, so a run never releases a lock that expired and was taken by another run.
const unlockScript = `
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
else
	return 0
end
`

// Locker implements ports.Locker using Redis SET NX PX.
type Locker struct {
	client   *backend.Client
	prefix   string
	wait     time.Duration
	interval time.Duration
}

var _ ports.Locker = (*Locker)(nil)

// LockerOption configures the Locker.
type LockerOption func(*Locker)

// WithWait sets how long Lock keeps retrying a held lock. Zero means a single attempt.
func WithWait(d time.Duration) LockerOption {
	return func(l *Locker) {
		l.wait = d
	}
}

// WithRetryInterval sets the polling interval while waiting.
func WithRetryInterval(d time.Duration) LockerOption {
	return func(l *Locker) {
		if d > 0 {
			l.interval = d
		}
	}
}

// NewLocker creates a new Redis locker.
func NewLocker(client *backend.Client, prefix string, opts ...LockerOption) *Locker {
	l := &Locker{
		client:   client,
		prefix:   prefix,
		interval: 100 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// NewLockerFromAddr creates a locker with its own client.
func NewLockerFromAddr(addr, password string, db int, prefix string, opts ...LockerOption) *Locker {
	client := backend.NewClient(&backend.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return NewLocker(client, prefix, opts...)
}

// Close releases the underlying client.
func (l *Locker) Close() error {
	return l.client.Close()
}

// Key returns the Redis key used for the lock named key.
func (l *Locker) Key(key string) string {
	return l.prefix + "lock:" + key
}

// Lock acquires the lock for key. A held lock is retried until the configured
// wait elapses or ctx is done, then ErrRunLocked is returned.
func (l *Locker) Lock(ctx context.Context, key string, ttl time.Duration) (ports.UnlockFunc, error) {
	lockKey := l.Key(key)
	owner := uuid.NewString()

	acquire := func() (bool, error) {
		ok, err := l.client.SetNX(ctx, lockKey, owner, ttl).Result()
		if err != nil {
			if ctx.Err() != nil {
				return false, backoff.Permanent(ctx.Err())
			}
			return false, backoff.Permanent(fmt.Errorf("redis error acquiring lock: %w", err))
		}
		if !ok {
			return false, errHeld
		}
		return true, nil
	}

	var err error
	if l.wait <= 0 {
		_, err = acquire()
		var perm *backoff.PermanentError
		if errors.As(err, &perm) {
			err = perm.Unwrap()
		}
	} else {
		_, err = backoff.Retry(ctx, acquire,
			backoff.WithBackOff(backoff.NewConstantBackOff(l.interval)),
			backoff.WithMaxElapsedTime(l.wait),
		)
	}

	switch {
	case err == nil:
	case errors.Is(err, errHeld):
		return nil, fmt.Errorf("%w: %s", domain.ErrRunLocked, key)
	case ctx.Err() != nil:
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrRunLocked, key, ctx.Err())
	default:
		return nil, err
	}

	return func(ctx context.Context) error {
		return l.client.Eval(ctx, unlockScript, []string{lockKey}, owner).Err()
	}, nil
}
