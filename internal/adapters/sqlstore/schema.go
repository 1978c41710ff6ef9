package sqlstore

import "fmt"

// Schema is created on startup and is idempotent. The two dialects
// differ only in key generation and timestamp types.

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS players (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT NOT NULL UNIQUE,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS questions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		level INTEGER NOT NULL,
		prompt TEXT NOT NULL,
		answer INTEGER NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS idx_questions_level ON questions(level)`,
	`CREATE TABLE IF NOT EXISTS scores (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		player_id INTEGER NOT NULL REFERENCES players(id) ON DELETE CASCADE,
		level INTEGER NOT NULL,
		points INTEGER NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS idx_scores_player ON scores(player_id)`,
}

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS players (
		id BIGSERIAL PRIMARY KEY,
		username TEXT NOT NULL UNIQUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS questions (
		id BIGSERIAL PRIMARY KEY,
		level INTEGER NOT NULL,
		prompt TEXT NOT NULL,
		answer INTEGER NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_questions_level ON questions(level)`,
	`CREATE TABLE IF NOT EXISTS scores (
		id BIGSERIAL PRIMARY KEY,
		player_id BIGINT NOT NULL REFERENCES players(id) ON DELETE CASCADE,
		level INTEGER NOT NULL,
		points INTEGER NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_scores_player ON scores(player_id)`,
}

func schemaStatements(driver string) ([]string, error) {
	switch driver {
	case "sqlite3":
		return sqliteSchema, nil
	case "postgres":
		return postgresSchema, nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}
