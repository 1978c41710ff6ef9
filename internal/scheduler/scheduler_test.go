package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/numberhop/numberhop/internal/adapters/memory"
	"github.com/numberhop/numberhop/pkg/domain"
	"github.com/numberhop/numberhop/pkg/ports"
)

// stubScores serves canned totals; the other ScoreStore methods are
// not exercised by the scheduler.
type stubScores struct {
	totals []domain.LeaderboardEntry
}

func (s *stubScores) AddScore(ctx context.Context, sc *domain.Score) error {
	return nil
}

func (s *stubScores) ScoresByPlayer(ctx context.Context, playerID int64) ([]domain.Score, error) {
	return nil, nil
}

func (s *stubScores) TopTotals(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	return s.totals, nil
}

func TestReconcileRebuildsBoard(t *testing.T) {
	scores := &stubScores{totals: []domain.LeaderboardEntry{
		{Username: "ada", TotalPoints: 70},
		{Username: "grace", TotalPoints: 50},
	}}
	ranker := memory.NewRanker()

	// Seed the ranker with drifted state the store knows nothing about.
	require.NoError(t, ranker.Record(context.Background(), "ghost", 999))

	s := New(scores, ranker, time.Minute)
	require.NoError(t, s.Reconcile(context.Background()))

	entries, err := ranker.Top(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "ada", entries[0].Username)
	assert.Equal(t, 70, entries[0].TotalPoints)
}

// stubLocker hands the lock to one caller at a time.
type stubLocker struct {
	mu           sync.Mutex
	held         bool
	acquisitions int
}

func (l *stubLocker) Lock(ctx context.Context, key string, ttl time.Duration) (ports.UnlockFunc, error) {
	for {
		l.mu.Lock()
		if !l.held {
			l.held = true
			l.acquisitions++
			l.mu.Unlock()
			return func(context.Context) error {
				l.mu.Lock()
				l.held = false
				l.mu.Unlock()
				return nil
			}, nil
		}
		l.mu.Unlock()

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestRunReconcilesUnderLock(t *testing.T) {
	scores := &stubScores{totals: []domain.LeaderboardEntry{
		{Username: "ada", TotalPoints: 10},
	}}
	ranker := memory.NewRanker()
	locker := &stubLocker{}

	s := New(scores, ranker, time.Minute, WithLocker(locker))
	s.run()

	entries, err := ranker.Top(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 1, locker.acquisitions)
	assert.False(t, locker.held, "the lock must be released after the rebuild")
}

func TestRunSkipsWhenLockHeld(t *testing.T) {
	scores := &stubScores{totals: []domain.LeaderboardEntry{
		{Username: "ada", TotalPoints: 10},
	}}
	ranker := memory.NewRanker()

	// Another instance is mid-rebuild.
	locker := &stubLocker{held: true}

	s := New(scores, ranker, time.Minute, WithLocker(locker))
	s.run()

	entries, err := ranker.Top(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, entries, "a cycle that cannot get the lock must not rebuild")
}

func TestStartRunsJob(t *testing.T) {
	scores := &stubScores{totals: []domain.LeaderboardEntry{
		{Username: "ada", TotalPoints: 10},
	}}
	ranker := memory.NewRanker()

	s := New(scores, ranker, 10*time.Millisecond)
	require.NoError(t, s.Start())
	defer s.Stop()

	require.Eventually(t, func() bool {
		entries, err := ranker.Top(context.Background(), 1)
		return err == nil && len(entries) == 1
	}, 5*time.Second, 5*time.Millisecond)
}
