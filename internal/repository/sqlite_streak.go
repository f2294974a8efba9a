package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/alexanderramin/goaltree/internal/db"
	"github.com/alexanderramin/goaltree/internal/domain"
)

const streakColumns = `s.id, s.goal_id, s.label, s.start_date, s.target_days, s.order_index, s.version`

// SQLiteStreakRepo implements StreakRepo using a SQLite database.
// Start dates are stored as YYYY-MM-DD calendar dates.
type SQLiteStreakRepo struct {
	db db.DBTX
}

func NewSQLiteStreakRepo(db db.DBTX) *SQLiteStreakRepo {
	return &SQLiteStreakRepo{db: db}
}

func (r *SQLiteStreakRepo) Create(ctx context.Context, goalID string, leaf domain.StreakLeaf) error {
	if leaf.Version == 0 {
		leaf.Version = 1
	}
	now := nowUTC()
	query := `INSERT INTO streak_leaves (id, goal_id, label, start_date, target_days, order_index, version, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?,
			(SELECT COALESCE(MAX(order_index), -1) + 1 FROM streak_leaves WHERE goal_id = ?),
			?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		leaf.ID, goalID, leaf.Label, leaf.StartDate.UTC().Format(dateLayout), leaf.TargetDays,
		goalID, leaf.Version, now, now)
	if err != nil {
		return fmt.Errorf("inserting streak leaf: %w", err)
	}
	return nil
}

func (r *SQLiteStreakRepo) GetByID(ctx context.Context, id string) (*StreakRow, error) {
	query := `SELECT ` + streakColumns + ` FROM streak_leaves s WHERE s.id = ?`
	var row StreakRow
	var start string
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&row.ID, &row.GoalID, &row.Label, &start, &row.TargetDays, &row.OrderIndex, &row.Version)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("streak leaf: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning streak leaf: %w", err)
	}
	if row.StartDate, err = time.Parse(dateLayout, start); err != nil {
		return nil, fmt.Errorf("parsing streak start_date: %w", err)
	}
	return &row, nil
}

func (r *SQLiteStreakRepo) ListByOwner(ctx context.Context, ownerID string) ([]StreakRow, error) {
	query := `SELECT ` + streakColumns + ` FROM streak_leaves s
		JOIN goals g ON g.id = s.goal_id
		WHERE g.owner_id = ?
		ORDER BY s.goal_id, s.order_index, s.created_at, s.id`
	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("listing streak leaves by owner: %w", err)
	}
	defer rows.Close()
	return scanStreakRows(rows)
}

func (r *SQLiteStreakRepo) ListAll(ctx context.Context) ([]StreakRow, error) {
	query := `SELECT ` + streakColumns + ` FROM streak_leaves s
		ORDER BY s.goal_id, s.order_index, s.created_at, s.id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing streak leaves: %w", err)
	}
	defer rows.Close()
	return scanStreakRows(rows)
}

func (r *SQLiteStreakRepo) Update(ctx context.Context, leaf domain.StreakLeaf, expected int64) (int64, error) {
	query := `UPDATE streak_leaves SET label = ?, start_date = ?, target_days = ?, version = version + 1, updated_at = ?
		WHERE id = ? AND (? = 0 OR version = ?)`
	res, err := r.db.ExecContext(ctx, query,
		leaf.Label, leaf.StartDate.UTC().Format(dateLayout), leaf.TargetDays, nowUTC(),
		leaf.ID, expected, expected)
	if err != nil {
		return 0, fmt.Errorf("updating streak leaf: %w", err)
	}
	return checkVersioned(ctx, r.db, "streak_leaves", "streak leaf", leaf.ID, expected, res)
}

func (r *SQLiteStreakRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM streak_leaves WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting streak leaf: %w", err)
	}
	return affectedOrNotFound(res, "streak leaf", id)
}

func scanStreakRows(rows *sql.Rows) ([]StreakRow, error) {
	var out []StreakRow
	for rows.Next() {
		var row StreakRow
		var start string
		if err := rows.Scan(&row.ID, &row.GoalID, &row.Label, &start, &row.TargetDays, &row.OrderIndex, &row.Version); err != nil {
			return nil, fmt.Errorf("scanning streak leaf row: %w", err)
		}
		var err error
		if row.StartDate, err = time.Parse(dateLayout, start); err != nil {
			return nil, fmt.Errorf("parsing streak start_date: %w", err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating streak leaf rows: %w", err)
	}
	return out, nil
}
