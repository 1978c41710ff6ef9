package ports

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/numberhop/numberhop/pkg/domain"
)

// RunRankerContract runs a suite of tests to verify that a Ranker
// implementation adheres to the defined interface contract.
// The ranker must be empty when the suite starts.
func RunRankerContract(t *testing.T, ranker Ranker) {
	ctx := context.Background()

	t.Run("Empty board", func(t *testing.T) {
		entries, err := ranker.Top(ctx, 10)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("Record and Top", func(t *testing.T) {
		// 1. Record a handful of results, some for the same player
		require.NoError(t, ranker.Record(ctx, "ada", 30))
		require.NoError(t, ranker.Record(ctx, "grace", 50))
		require.NoError(t, ranker.Record(ctx, "ada", 40))
		require.NoError(t, ranker.Record(ctx, "linus", 20))

		// 2. Totals accumulate and come back best first
		entries, err := ranker.Top(ctx, 10)
		require.NoError(t, err)
		require.Len(t, entries, 3)

		assert.Equal(t, domain.LeaderboardEntry{Rank: 1, Username: "ada", TotalPoints: 70}, entries[0])
		assert.Equal(t, domain.LeaderboardEntry{Rank: 2, Username: "grace", TotalPoints: 50}, entries[1])
		assert.Equal(t, domain.LeaderboardEntry{Rank: 3, Username: "linus", TotalPoints: 20}, entries[2])
	})

	t.Run("Top truncates", func(t *testing.T) {
		entries, err := ranker.Top(ctx, 2)
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, "ada", entries[0].Username)
		assert.Equal(t, "grace", entries[1].Username)
	})

	t.Run("Ties break by name", func(t *testing.T) {
		require.NoError(t, ranker.Record(ctx, "blaise", 50))

		entries, err := ranker.Top(ctx, 10)
		require.NoError(t, err)
		require.Len(t, entries, 4)

		// blaise and grace both hold 50; blaise sorts first
		assert.Equal(t, "blaise", entries[1].Username)
		assert.Equal(t, "grace", entries[2].Username)
		assert.Equal(t, 2, entries[1].Rank)
		assert.Equal(t, 3, entries[2].Rank)
	})

	t.Run("Rebuild replaces the board", func(t *testing.T) {
		err := ranker.Rebuild(ctx, []domain.LeaderboardEntry{
			{Username: "noether", TotalPoints: 90},
			{Username: "euler", TotalPoints: 80},
		})
		require.NoError(t, err)

		entries, err := ranker.Top(ctx, 10)
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, "noether", entries[0].Username)
		assert.Equal(t, "euler", entries[1].Username)
	})

	t.Run("Rebuild to empty", func(t *testing.T) {
		require.NoError(t, ranker.Rebuild(ctx, nil))

		entries, err := ranker.Top(ctx, 10)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})
}
