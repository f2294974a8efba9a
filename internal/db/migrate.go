package db

import (
	"database/sql"
	"fmt"
	"strings"
)

// Migrate runs all schema migrations.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			// Tolerate "duplicate column name" errors from ALTER TABLE
			// since the migration system re-runs all statements.
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id          TEXT PRIMARY KEY,
		full_name   TEXT NOT NULL DEFAULT '',
		role        TEXT NOT NULL DEFAULT 'user'
		            CHECK(role IN ('user','admin')),
		created_at  TEXT NOT NULL
	)`,

	// Seed the local single-user account used by the CLI.
	`INSERT OR IGNORE INTO users (id, full_name, role, created_at)
		VALUES ('local', 'Local User', 'admin', strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))`,

	`CREATE TABLE IF NOT EXISTS goals (
		id          TEXT PRIMARY KEY,
		owner_id    TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		parent_id   TEXT REFERENCES goals(id) ON DELETE CASCADE,
		label       TEXT NOT NULL,
		order_index INTEGER NOT NULL DEFAULT 0,
		version     INTEGER NOT NULL DEFAULT 1,
		created_at  TEXT NOT NULL,
		updated_at  TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_goals_owner ON goals(owner_id)`,
	`CREATE INDEX IF NOT EXISTS idx_goals_parent ON goals(parent_id)`,

	`CREATE TABLE IF NOT EXISTS checklist_items (
		id          TEXT PRIMARY KEY,
		goal_id     TEXT NOT NULL REFERENCES goals(id) ON DELETE CASCADE,
		label       TEXT NOT NULL,
		checked     INTEGER NOT NULL DEFAULT 0,
		order_index INTEGER NOT NULL DEFAULT 0,
		version     INTEGER NOT NULL DEFAULT 1,
		created_at  TEXT NOT NULL,
		updated_at  TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_checklist_goal ON checklist_items(goal_id)`,

	`CREATE TABLE IF NOT EXISTS streak_leaves (
		id          TEXT PRIMARY KEY,
		goal_id     TEXT NOT NULL REFERENCES goals(id) ON DELETE CASCADE,
		label       TEXT NOT NULL,
		start_date  TEXT NOT NULL,
		target_days INTEGER NOT NULL DEFAULT 0 CHECK(target_days >= 0),
		order_index INTEGER NOT NULL DEFAULT 0,
		version     INTEGER NOT NULL DEFAULT 1,
		created_at  TEXT NOT NULL,
		updated_at  TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_streak_goal ON streak_leaves(goal_id)`,
}
