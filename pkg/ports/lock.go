package ports

import (
	"context"
	"time"
)

// UnlockFunc releases a held lock.
type UnlockFunc func(ctx context.Context) error

// Locker serializes work across instances sharing a backend. Locks
// expire on their own after their TTL, so a crashed holder cannot
// wedge the others forever.
type Locker interface {
	// Lock blocks until the named lock is acquired or ctx ends.
	Lock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)
}
