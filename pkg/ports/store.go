package ports

import (
	"context"

	"github.com/numberhop/numberhop/pkg/domain"
)

// PlayerStore defines the interface for persisting player records.
type PlayerStore interface {
	// Login creates the player on first use and returns the record on
	// every subsequent call with the same name.
	Login(ctx context.Context, username string) (*domain.Player, error)

	// GetPlayer retrieves one player by ID.
	// Returns domain.ErrPlayerNotFound if the player does not exist.
	GetPlayer(ctx context.Context, id int64) (*domain.Player, error)

	// ListPlayers returns all players ordered by creation time.
	ListPlayers(ctx context.Context) ([]domain.Player, error)

	// DeletePlayer removes a player and, with it, every score the
	// player recorded.
	// Returns domain.ErrPlayerNotFound if the player does not exist.
	DeletePlayer(ctx context.Context, id int64) error
}

// QuestionStore defines the interface for the exercise bank.
type QuestionStore interface {
	// AddQuestion inserts a question and fills in its ID.
	AddQuestion(ctx context.Context, q *domain.Question) error

	// GetQuestion retrieves one question by ID.
	// Returns domain.ErrQuestionNotFound if the question does not exist.
	GetQuestion(ctx context.Context, id int64) (*domain.Question, error)

	// QuestionsByLevel returns the questions for a difficulty level,
	// oldest first. An unknown level yields an empty slice, not an error.
	QuestionsByLevel(ctx context.Context, level int) ([]domain.Question, error)

	// UpdateQuestion rewrites an existing question in place.
	// Returns domain.ErrQuestionNotFound if the question does not exist.
	UpdateQuestion(ctx context.Context, q *domain.Question) error

	// DeleteQuestion removes a question by ID.
	// Returns domain.ErrQuestionNotFound if the question does not exist.
	DeleteQuestion(ctx context.Context, id int64) error
}

// ScoreStore defines the interface for recorded practice results.
type ScoreStore interface {
	// AddScore records one result and fills in its ID.
	// Returns domain.ErrPlayerNotFound if the player does not exist.
	AddScore(ctx context.Context, sc *domain.Score) error

	// ScoresByPlayer returns a player's results, newest first.
	ScoresByPlayer(ctx context.Context, playerID int64) ([]domain.Score, error)

	// TopTotals aggregates total points per player, best first, ties
	// broken by name. A limit of zero or less returns every player.
	TopTotals(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error)
}
