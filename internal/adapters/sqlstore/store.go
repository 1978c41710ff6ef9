// Package sqlstore implements the backend stores on a relational
// database. It speaks both sqlite3 and postgres through sqlx; queries
// are written once with ? placeholders and rebound per driver.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/numberhop/numberhop/internal/logging"
	"github.com/numberhop/numberhop/pkg/domain"
	"github.com/numberhop/numberhop/pkg/ports"
)

// Store provides the relational implementation of the backend ports.
type Store struct {
	db     *sqlx.DB
	logger *slog.Logger
}

var (
	_ ports.PlayerStore   = (*Store)(nil)
	_ ports.QuestionStore = (*Store)(nil)
	_ ports.ScoreStore    = (*Store)(nil)
)

// Option configures the Store.
type Option func(*Store)

// WithLogger configures a logger for schema and maintenance events.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// Open connects to the database and initializes the schema.
// Driver is sqlite3 or postgres.
func Open(driver, dsn string, opts ...Option) (*Store, error) {
	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", driver, err)
	}
	store, err := New(db, opts...)
	if err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// New wraps an existing connection and initializes the schema.
func New(db *sqlx.DB, opts ...Option) (*Store, error) {
	s := &Store{
		db:     db,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if db.DriverName() == "sqlite3" {
		// One writer only, and keep :memory: databases on one connection.
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
			return nil, fmt.Errorf("enable foreign keys: %w", err)
		}
	}

	if err := s.initSchema(); err != nil {
		return nil, err
	}
	return s, nil
}

// Close closes the underlying connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) initSchema() error {
	statements, err := schemaStatements(s.db.DriverName())
	if err != nil {
		return err
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("initialize schema: %w", err)
		}
	}
	s.logger.Debug("schema ready", "driver", s.db.DriverName())
	return nil
}

// insertID runs an INSERT and returns the generated key, papering over
// the fact that pq has no LastInsertId.
func (s *Store) insertID(ctx context.Context, query string, args ...any) (int64, error) {
	if s.db.DriverName() == "postgres" {
		var id int64
		err := s.db.GetContext(ctx, &id, s.db.Rebind(query+" RETURNING id"), args...)
		return id, err
	}
	res, err := s.db.ExecContext(ctx, s.db.Rebind(query), args...)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// Login creates the player on first use and returns the stored record.
func (s *Store) Login(ctx context.Context, username string) (*domain.Player, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, fmt.Errorf("login: empty username")
	}

	insert := s.db.Rebind(`INSERT INTO players (username) VALUES (?) ON CONFLICT (username) DO NOTHING`)
	if _, err := s.db.ExecContext(ctx, insert, username); err != nil {
		return nil, fmt.Errorf("create player %q: %w", username, err)
	}

	var p domain.Player
	query := s.db.Rebind(`SELECT id, username, created_at FROM players WHERE username = ?`)
	if err := s.db.GetContext(ctx, &p, query, username); err != nil {
		return nil, fmt.Errorf("load player %q: %w", username, err)
	}
	return &p, nil
}

// GetPlayer retrieves one player by ID.
func (s *Store) GetPlayer(ctx context.Context, id int64) (*domain.Player, error) {
	var p domain.Player
	query := s.db.Rebind(`SELECT id, username, created_at FROM players WHERE id = ?`)
	if err := s.db.GetContext(ctx, &p, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrPlayerNotFound
		}
		return nil, fmt.Errorf("get player %d: %w", id, err)
	}
	return &p, nil
}

// ListPlayers returns all players, oldest first.
func (s *Store) ListPlayers(ctx context.Context) ([]domain.Player, error) {
	players := []domain.Player{}
	query := `SELECT id, username, created_at FROM players ORDER BY created_at, id`
	if err := s.db.SelectContext(ctx, &players, query); err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}
	return players, nil
}

// DeletePlayer removes a player. The scores foreign key cascades, so
// the player's results disappear with the account.
func (s *Store) DeletePlayer(ctx context.Context, id int64) error {
	query := s.db.Rebind(`DELETE FROM players WHERE id = ?`)
	res, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete player %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete player %d: %w", id, err)
	}
	if affected == 0 {
		return domain.ErrPlayerNotFound
	}
	return nil
}

// AddQuestion inserts a question and reloads the stored row into q.
func (s *Store) AddQuestion(ctx context.Context, q *domain.Question) error {
	id, err := s.insertID(ctx,
		`INSERT INTO questions (level, prompt, answer) VALUES (?, ?, ?)`,
		q.Level, q.Prompt, q.Answer)
	if err != nil {
		return fmt.Errorf("add question: %w", err)
	}

	stored, err := s.GetQuestion(ctx, id)
	if err != nil {
		return err
	}
	*q = *stored
	return nil
}

// GetQuestion retrieves one question by ID.
func (s *Store) GetQuestion(ctx context.Context, id int64) (*domain.Question, error) {
	var q domain.Question
	query := s.db.Rebind(`SELECT id, level, prompt, answer, created_at FROM questions WHERE id = ?`)
	if err := s.db.GetContext(ctx, &q, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrQuestionNotFound
		}
		return nil, fmt.Errorf("get question %d: %w", id, err)
	}
	return &q, nil
}

// QuestionsByLevel returns the questions for a level, oldest first.
func (s *Store) QuestionsByLevel(ctx context.Context, level int) ([]domain.Question, error) {
	questions := []domain.Question{}
	query := s.db.Rebind(`SELECT id, level, prompt, answer, created_at FROM questions WHERE level = ? ORDER BY id`)
	if err := s.db.SelectContext(ctx, &questions, query, level); err != nil {
		return nil, fmt.Errorf("questions for level %d: %w", level, err)
	}
	return questions, nil
}

// UpdateQuestion rewrites an existing question.
func (s *Store) UpdateQuestion(ctx context.Context, q *domain.Question) error {
	query := s.db.Rebind(`UPDATE questions SET level = ?, prompt = ?, answer = ? WHERE id = ?`)
	res, err := s.db.ExecContext(ctx, query, q.Level, q.Prompt, q.Answer, q.ID)
	if err != nil {
		return fmt.Errorf("update question %d: %w", q.ID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update question %d: %w", q.ID, err)
	}
	if affected == 0 {
		return domain.ErrQuestionNotFound
	}
	return nil
}

// DeleteQuestion removes a question by ID.
func (s *Store) DeleteQuestion(ctx context.Context, id int64) error {
	query := s.db.Rebind(`DELETE FROM questions WHERE id = ?`)
	res, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete question %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete question %d: %w", id, err)
	}
	if affected == 0 {
		return domain.ErrQuestionNotFound
	}
	return nil
}

// AddScore records one result and reloads the stored row into sc.
func (s *Store) AddScore(ctx context.Context, sc *domain.Score) error {
	if _, err := s.GetPlayer(ctx, sc.PlayerID); err != nil {
		return err
	}

	id, err := s.insertID(ctx,
		`INSERT INTO scores (player_id, level, points) VALUES (?, ?, ?)`,
		sc.PlayerID, sc.Level, sc.Points)
	if err != nil {
		return fmt.Errorf("add score: %w", err)
	}

	var stored domain.Score
	query := s.db.Rebind(`SELECT id, player_id, level, points, created_at FROM scores WHERE id = ?`)
	if err := s.db.GetContext(ctx, &stored, query, id); err != nil {
		return fmt.Errorf("load score %d: %w", id, err)
	}
	*sc = stored
	return nil
}

// ScoresByPlayer returns a player's results, newest first.
func (s *Store) ScoresByPlayer(ctx context.Context, playerID int64) ([]domain.Score, error) {
	scores := []domain.Score{}
	query := s.db.Rebind(`SELECT id, player_id, level, points, created_at FROM scores WHERE player_id = ? ORDER BY created_at DESC, id DESC`)
	if err := s.db.SelectContext(ctx, &scores, query, playerID); err != nil {
		return nil, fmt.Errorf("scores for player %d: %w", playerID, err)
	}
	return scores, nil
}

// TopTotals aggregates total points per player, best first.
func (s *Store) TopTotals(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	query := `SELECT p.username AS username, COALESCE(SUM(s.points), 0) AS total_points
		FROM scores s
		JOIN players p ON p.id = s.player_id
		GROUP BY p.username
		ORDER BY total_points DESC, p.username`

	entries := []domain.LeaderboardEntry{}
	var err error
	if limit > 0 {
		err = s.db.SelectContext(ctx, &entries, s.db.Rebind(query+` LIMIT ?`), limit)
	} else {
		err = s.db.SelectContext(ctx, &entries, query)
	}
	if err != nil {
		return nil, fmt.Errorf("top totals: %w", err)
	}

	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries, nil
}
