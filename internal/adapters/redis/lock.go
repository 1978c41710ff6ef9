package redis

import (
	"context"
	"fmt"
	"time"

	backend "github.com/redis/go-redis/v9"

	"github.com/numberhop/numberhop/pkg/ports"
)

// Locker implements ports.Locker using Redis SET NX PX. Instances
// sharing a board use it to elect one reconciler per cycle.
type Locker struct {
	client *backend.Client
	prefix string
}

var _ ports.Locker = (*Locker)(nil)

// NewLocker creates a lock manager on an existing client. Keys are
// stored under prefix.
func NewLocker(client *backend.Client, prefix string) *Locker {
	return &Locker{
		client: client,
		prefix: prefix,
	}
}

// Locker returns a lock manager sharing this ranker's connection,
// with keys stored next to the board.
func (r *Ranker) Locker() *Locker {
	return NewLocker(r.client, r.key+":")
}

// Lock acquires the named lock, retrying until ctx ends. The value is
// unique per acquisition so a lock that expired mid-hold cannot be
// released out from under its next owner.
func (l *Locker) Lock(ctx context.Context, key string, ttl time.Duration) (ports.UnlockFunc, error) {
	lockKey := l.prefix + "lock:" + key
	val := fmt.Sprintf("%d", time.Now().UnixNano())

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		success, err := l.client.SetNX(ctx, lockKey, val, ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("redis error acquiring lock: %w", err)
		}
		if success {
			return func(ctx context.Context) error {
				// Safe unlock: delete only if we still hold it.
				script := `
					if redis.call("get", KEYS[1]) == ARGV[1] then
						return redis.call("del", KEYS[1])
					else
						return 0
					end
				`
				return l.client.Eval(ctx, script, []string{lockKey}, val).Err()
			}, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}
