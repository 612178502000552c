package postgres

import (
	"context"
	"fmt"
)

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS accounts (
		id            TEXT PRIMARY KEY,
		username      TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		role          TEXT NOT NULL,
		name          TEXT NOT NULL DEFAULT '',
		email         TEXT NOT NULL DEFAULT '',
		team          TEXT NOT NULL DEFAULT '',
		status        TEXT NOT NULL DEFAULT 'active',
		last_login    TIMESTAMPTZ,
		created_at    TIMESTAMPTZ NOT NULL,
		updated_at    TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS players (
		id                  TEXT PRIMARY KEY,
		ncc_ref             TEXT NOT NULL DEFAULT '',
		name                TEXT NOT NULL,
		belt_rank           TEXT NOT NULL,
		team                TEXT NOT NULL DEFAULT '',
		gender              TEXT NOT NULL DEFAULT '',
		birthdate           TIMESTAMPTZ,
		address             TEXT NOT NULL DEFAULT '',
		contact_number      TEXT NOT NULL DEFAULT '',
		email               TEXT NOT NULL DEFAULT '',
		emergency_contact   TEXT NOT NULL DEFAULT '',
		emergency_number    TEXT NOT NULL DEFAULT '',
		next_belt           TEXT NOT NULL DEFAULT '',
		last_promotion_exam TIMESTAMPTZ,
		photo_url           TEXT NOT NULL DEFAULT '',
		required_forms      TEXT NOT NULL DEFAULT '',
		achievements        TEXT[] NOT NULL DEFAULT '{}',
		competitions        TEXT[] NOT NULL DEFAULT '{}',
		medals              INT NOT NULL DEFAULT 0,
		created_at          TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_players_team ON players (upper(trim(team)))`,
	`CREATE INDEX IF NOT EXISTS idx_players_ncc_ref ON players (ncc_ref)`,
	`CREATE INDEX IF NOT EXISTS idx_players_name ON players (name)`,
	`CREATE TABLE IF NOT EXISTS activity_log (
		seq       BIGSERIAL PRIMARY KEY,
		id        TEXT NOT NULL UNIQUE,
		user_id   TEXT NOT NULL,
		user_role TEXT NOT NULL,
		user_name TEXT NOT NULL,
		activity  TEXT NOT NULL,
		details   TEXT NOT NULL DEFAULT '',
		logged_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS sessions (
		token      TEXT PRIMARY KEY,
		user_id    TEXT NOT NULL,
		username   TEXT NOT NULL,
		name       TEXT NOT NULL DEFAULT '',
		role       TEXT NOT NULL,
		team       TEXT NOT NULL DEFAULT '',
		status     TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		expires_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_sessions_expires ON sessions (expires_at)`,
}

// RunMigrations creates the schema if it does not exist
func (s *Storage) RunMigrations(ctx context.Context) error {
	for _, m := range migrations {
		if _, err := s.pool.Exec(ctx, m); err != nil {
			return fmt.Errorf("executing migration: %w", err)
		}
	}
	s.logger.Info("database migrations completed")
	return nil
}
