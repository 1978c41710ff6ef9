package sqlstore

import (
	"context"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/numberhop/numberhop/pkg/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := sqlx.Connect("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	store, err := New(db)
	require.NoError(t, err)
	return store
}

func TestLoginCreatesPlayerOnce(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first, err := store.Login(ctx, "ada")
	require.NoError(t, err)
	assert.NotZero(t, first.ID)
	assert.Equal(t, "ada", first.Username)
	assert.False(t, first.CreatedAt.IsZero())

	again, err := store.Login(ctx, " ada ")
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID, "login is idempotent per name")

	players, err := store.ListPlayers(ctx)
	require.NoError(t, err)
	require.Len(t, players, 1)
}

func TestLoginRejectsEmptyName(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Login(context.Background(), "   ")
	require.Error(t, err)
}

func TestGetPlayerNotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.GetPlayer(context.Background(), 404)
	require.ErrorIs(t, err, domain.ErrPlayerNotFound)
}

func TestDeletePlayerCascadesScores(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	ada, err := store.Login(ctx, "ada")
	require.NoError(t, err)
	grace, err := store.Login(ctx, "grace")
	require.NoError(t, err)
	require.NoError(t, store.AddScore(ctx, &domain.Score{PlayerID: ada.ID, Level: 1, Points: 30}))
	require.NoError(t, store.AddScore(ctx, &domain.Score{PlayerID: grace.ID, Level: 1, Points: 20}))

	require.NoError(t, store.DeletePlayer(ctx, ada.ID))

	_, err = store.GetPlayer(ctx, ada.ID)
	require.ErrorIs(t, err, domain.ErrPlayerNotFound)

	scores, err := store.ScoresByPlayer(ctx, ada.ID)
	require.NoError(t, err)
	assert.Empty(t, scores, "scores go with the account")

	totals, err := store.TopTotals(ctx, 0)
	require.NoError(t, err)
	require.Len(t, totals, 1)
	assert.Equal(t, "grace", totals[0].Username)

	require.ErrorIs(t, store.DeletePlayer(ctx, ada.ID), domain.ErrPlayerNotFound)
}

func TestQuestionLifecycle(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	q := &domain.Question{Level: 1, Prompt: "3 + 4", Answer: 7}
	require.NoError(t, store.AddQuestion(ctx, q))
	assert.NotZero(t, q.ID)
	assert.False(t, q.CreatedAt.IsZero())

	got, err := store.GetQuestion(ctx, q.ID)
	require.NoError(t, err)
	assert.Equal(t, q, got)

	q.Prompt = "3 + 5"
	q.Answer = 8
	require.NoError(t, store.UpdateQuestion(ctx, q))

	got, err = store.GetQuestion(ctx, q.ID)
	require.NoError(t, err)
	assert.Equal(t, "3 + 5", got.Prompt)
	assert.Equal(t, 8, got.Answer)

	require.NoError(t, store.DeleteQuestion(ctx, q.ID))
	_, err = store.GetQuestion(ctx, q.ID)
	require.ErrorIs(t, err, domain.ErrQuestionNotFound)

	require.ErrorIs(t, store.DeleteQuestion(ctx, q.ID), domain.ErrQuestionNotFound)
	require.ErrorIs(t, store.UpdateQuestion(ctx, q), domain.ErrQuestionNotFound)
}

func TestQuestionsByLevel(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for _, q := range []*domain.Question{
		{Level: 1, Prompt: "1 + 1", Answer: 2},
		{Level: 2, Prompt: "5 - 8", Answer: -3},
		{Level: 1, Prompt: "2 + 3", Answer: 5},
	} {
		require.NoError(t, store.AddQuestion(ctx, q))
	}

	level1, err := store.QuestionsByLevel(ctx, 1)
	require.NoError(t, err)
	require.Len(t, level1, 2)
	assert.Equal(t, "1 + 1", level1[0].Prompt)
	assert.Equal(t, "2 + 3", level1[1].Prompt)

	level9, err := store.QuestionsByLevel(ctx, 9)
	require.NoError(t, err)
	assert.Empty(t, level9)
}

func TestAddScoreRequiresPlayer(t *testing.T) {
	store := newTestStore(t)

	err := store.AddScore(context.Background(), &domain.Score{PlayerID: 404, Level: 1, Points: 10})
	require.ErrorIs(t, err, domain.ErrPlayerNotFound)
}

func TestScoresAndTotals(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	ada, err := store.Login(ctx, "ada")
	require.NoError(t, err)
	grace, err := store.Login(ctx, "grace")
	require.NoError(t, err)

	for _, sc := range []*domain.Score{
		{PlayerID: ada.ID, Level: 1, Points: 30},
		{PlayerID: ada.ID, Level: 2, Points: 40},
		{PlayerID: grace.ID, Level: 1, Points: 50},
	} {
		require.NoError(t, store.AddScore(ctx, sc))
		assert.NotZero(t, sc.ID)
	}

	scores, err := store.ScoresByPlayer(ctx, ada.ID)
	require.NoError(t, err)
	require.Len(t, scores, 2)
	assert.Equal(t, 40, scores[0].Points, "newest first")

	totals, err := store.TopTotals(ctx, 10)
	require.NoError(t, err)
	require.Len(t, totals, 2)
	assert.Equal(t, domain.LeaderboardEntry{Rank: 1, Username: "ada", TotalPoints: 70}, totals[0])
	assert.Equal(t, domain.LeaderboardEntry{Rank: 2, Username: "grace", TotalPoints: 50}, totals[1])

	top1, err := store.TopTotals(ctx, 1)
	require.NoError(t, err)
	require.Len(t, top1, 1)
	assert.Equal(t, "ada", top1[0].Username)
}

func TestTopTotalsBreaksTiesByName(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for _, name := range []string{"zoe", "abe"} {
		p, err := store.Login(ctx, name)
		require.NoError(t, err)
		require.NoError(t, store.AddScore(ctx, &domain.Score{PlayerID: p.ID, Level: 1, Points: 25}))
	}

	totals, err := store.TopTotals(ctx, 0)
	require.NoError(t, err)
	require.Len(t, totals, 2)
	assert.Equal(t, "abe", totals[0].Username)
	assert.Equal(t, "zoe", totals[1].Username)
}
