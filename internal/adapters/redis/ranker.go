// Package redis implements the leaderboard ranker on a Redis sorted
// set, so ranking survives restarts and is shared across instances.
package redis

import (
	"context"
	"fmt"

	backend "github.com/redis/go-redis/v9"

	"github.com/numberhop/numberhop/pkg/domain"
	"github.com/numberhop/numberhop/pkg/ports"
)

// Ranker implements ports.Ranker using a ZSET keyed by player name.
type Ranker struct {
	client *backend.Client
	key    string
}

var _ ports.Ranker = (*Ranker)(nil)

type Option func(*Ranker)

// WithKey sets the sorted-set key holding the board.
func WithKey(key string) Option {
	return func(r *Ranker) {
		r.key = key
	}
}

// New creates a new Redis ranker with options.
func New(address, password string, db int, opts ...Option) *Ranker {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a new Redis ranker from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Ranker {
	ranker := &Ranker{
		client: client,
		key:    "numberhop:leaderboard",
	}

	for _, opt := range opts {
		opt(ranker)
	}

	return ranker
}

// Record adds points to a player's running total.
func (r *Ranker) Record(ctx context.Context, username string, points int) error {
	if err := r.client.ZIncrBy(ctx, r.key, float64(points), username).Err(); err != nil {
		return fmt.Errorf("failed to record score: %w", err)
	}
	return nil
}

// Top returns the n best players. The whole set is fetched because
// Redis orders equal scores by member descending, while the board
// breaks ties by name ascending; domain.SortLeaderboard settles it.
func (r *Ranker) Top(ctx context.Context, n int) ([]domain.LeaderboardEntry, error) {
	members, err := r.client.ZRevRangeWithScores(ctx, r.key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read leaderboard: %w", err)
	}

	entries := make([]domain.LeaderboardEntry, 0, len(members))
	for _, z := range members {
		name, ok := z.Member.(string)
		if !ok {
			name = fmt.Sprint(z.Member)
		}
		entries = append(entries, domain.LeaderboardEntry{
			Username:    name,
			TotalPoints: int(z.Score),
		})
	}

	domain.SortLeaderboard(entries)
	if n > 0 && len(entries) > n {
		entries = entries[:n]
	}
	return entries, nil
}

// Rebuild atomically replaces the board with the given totals.
func (r *Ranker) Rebuild(ctx context.Context, entries []domain.LeaderboardEntry) error {
	pipe := r.client.TxPipeline()
	pipe.Del(ctx, r.key)

	if len(entries) > 0 {
		members := make([]backend.Z, len(entries))
		for i, e := range entries {
			members[i] = backend.Z{
				Score:  float64(e.TotalPoints),
				Member: e.Username,
			}
		}
		pipe.ZAdd(ctx, r.key, members...)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to rebuild leaderboard: %w", err)
	}
	return nil
}

// Close closes the redis client.
func (r *Ranker) Close() error {
	return r.client.Close()
}
