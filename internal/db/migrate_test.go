package db

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := OpenDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

const ts = "2025-01-01T00:00:00Z"

func TestMigrate_Idempotent(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, Migrate(db))
	require.NoError(t, Migrate(db))
}

func TestMigrate_CreatesAllTables(t *testing.T) {
	db := openTestDB(t)

	for _, table := range []string{"users", "goals", "checklist_items", "streak_leaves"} {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&name)
		require.NoError(t, err, "table %s should exist", table)
		assert.Equal(t, table, name)
	}
}

func TestMigrate_CreatesIndexes(t *testing.T) {
	db := openTestDB(t)

	for _, idx := range []string{"idx_goals_owner", "idx_goals_parent", "idx_checklist_goal", "idx_streak_goal"} {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type='index' AND name=?`, idx).Scan(&name)
		require.NoError(t, err, "index %s should exist", idx)
	}
}

func TestMigrate_ForeignKeysEnabled(t *testing.T) {
	db := openTestDB(t)

	var fk int
	require.NoError(t, db.QueryRow(`PRAGMA foreign_keys`).Scan(&fk))
	assert.Equal(t, 1, fk)
}

func TestOpenDB_FileUsesWAL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "goals.db")
	db, err := OpenDB(path)
	require.NoError(t, err)
	defer db.Close()

	var mode string
	require.NoError(t, db.QueryRow(`PRAGMA journal_mode`).Scan(&mode))
	assert.Equal(t, "wal", mode)

	var fk int
	require.NoError(t, db.QueryRow(`PRAGMA foreign_keys`).Scan(&fk))
	assert.Equal(t, 1, fk)
}

func TestMigrate_SeedsLocalUser(t *testing.T) {
	db := openTestDB(t)

	var role string
	require.NoError(t, db.QueryRow(`SELECT role FROM users WHERE id = 'local'`).Scan(&role))
	assert.Equal(t, "admin", role)
}

func TestMigrate_DeleteCascadesThroughSubtree(t *testing.T) {
	db := openTestDB(t)

	stmts := []string{
		`INSERT INTO goals (id, owner_id, parent_id, label, created_at, updated_at) VALUES ('g1', 'local', NULL, 'root', '` + ts + `', '` + ts + `')`,
		`INSERT INTO goals (id, owner_id, parent_id, label, created_at, updated_at) VALUES ('g2', 'local', 'g1', 'mid', '` + ts + `', '` + ts + `')`,
		`INSERT INTO goals (id, owner_id, parent_id, label, created_at, updated_at) VALUES ('g3', 'local', 'g2', 'leaf', '` + ts + `', '` + ts + `')`,
		`INSERT INTO checklist_items (id, goal_id, label, created_at, updated_at) VALUES ('c1', 'g3', 'item', '` + ts + `', '` + ts + `')`,
		`INSERT INTO streak_leaves (id, goal_id, label, start_date, target_days, created_at, updated_at) VALUES ('s1', 'g2', 'streak', '2025-01-01', 5, '` + ts + `', '` + ts + `')`,
	}
	for _, s := range stmts {
		_, err := db.Exec(s)
		require.NoError(t, err)
	}

	_, err := db.Exec(`DELETE FROM goals WHERE id = 'g1'`)
	require.NoError(t, err)

	for _, table := range []string{"goals", "checklist_items", "streak_leaves"} {
		var n int
		require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM `+table).Scan(&n))
		assert.Zero(t, n, "%s should be empty after cascade", table)
	}
}

func TestMigrate_StreakTargetCheck(t *testing.T) {
	db := openTestDB(t)

	_, err := db.Exec(`INSERT INTO goals (id, owner_id, label, created_at, updated_at) VALUES ('g1', 'local', 'root', ?, ?)`, ts, ts)
	require.NoError(t, err)

	_, err = db.Exec(`INSERT INTO streak_leaves (id, goal_id, label, start_date, target_days, created_at, updated_at)
		VALUES ('s1', 'g1', 'bad', '2025-01-01', -1, ?, ?)`, ts, ts)
	assert.Error(t, err, "negative target_days should be rejected")
}

func TestMigrate_RoleCheck(t *testing.T) {
	db := openTestDB(t)

	_, err := db.Exec(`INSERT INTO users (id, role, created_at) VALUES ('u1', 'root', ?)`, ts)
	assert.Error(t, err)
}
