package ports

import (
	"context"

	"github.com/numberhop/numberhop/pkg/domain"
)

// Ranker maintains the live leaderboard. It is a cache over ScoreStore
// totals: Record keeps it warm on every submit, and Rebuild lets a
// reconciliation job replace it wholesale from the source of truth.
type Ranker interface {
	// Record adds points to a player's running total.
	Record(ctx context.Context, username string, points int) error

	// Top returns the n best players, rank filled in, ties broken by
	// name. Fewer than n entries are returned when the board is small.
	Top(ctx context.Context, n int) ([]domain.LeaderboardEntry, error)

	// Rebuild atomically replaces the whole board with the given totals.
	Rebuild(ctx context.Context, entries []domain.LeaderboardEntry) error
}
