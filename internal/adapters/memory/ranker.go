// Package memory provides an in-memory leaderboard ranker, used when
// Redis is disabled and as a lightweight stand-in for tests.
package memory

import (
	"context"
	"sync"

	"github.com/numberhop/numberhop/pkg/domain"
	"github.com/numberhop/numberhop/pkg/ports"
)

// Ranker implements ports.Ranker with a mutex-guarded map.
type Ranker struct {
	mu     sync.RWMutex
	totals map[string]int
}

var _ ports.Ranker = (*Ranker)(nil)

// NewRanker creates an empty leaderboard.
func NewRanker() *Ranker {
	return &Ranker{
		totals: make(map[string]int),
	}
}

// Record adds points to a player's running total.
func (r *Ranker) Record(ctx context.Context, username string, points int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.totals[username] += points
	return nil
}

// Top returns the n best players.
func (r *Ranker) Top(ctx context.Context, n int) ([]domain.LeaderboardEntry, error) {
	r.mu.RLock()
	entries := make([]domain.LeaderboardEntry, 0, len(r.totals))
	for username, total := range r.totals {
		entries = append(entries, domain.LeaderboardEntry{Username: username, TotalPoints: total})
	}
	r.mu.RUnlock()

	domain.SortLeaderboard(entries)
	if n > 0 && len(entries) > n {
		entries = entries[:n]
	}
	return entries, nil
}

// Rebuild replaces the whole board.
func (r *Ranker) Rebuild(ctx context.Context, entries []domain.LeaderboardEntry) error {
	totals := make(map[string]int, len(entries))
	for _, e := range entries {
		totals[e.Username] = e.TotalPoints
	}

	r.mu.Lock()
	r.totals = totals
	r.mu.Unlock()
	return nil
}
