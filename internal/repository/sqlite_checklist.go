package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/alexanderramin/goaltree/internal/db"
	"github.com/alexanderramin/goaltree/internal/domain"
)

const checklistColumns = `c.id, c.goal_id, c.label, c.checked, c.order_index, c.version`

// SQLiteChecklistRepo implements ChecklistRepo using a SQLite database.
type SQLiteChecklistRepo struct {
	db db.DBTX
}

func NewSQLiteChecklistRepo(db db.DBTX) *SQLiteChecklistRepo {
	return &SQLiteChecklistRepo{db: db}
}

func (r *SQLiteChecklistRepo) Create(ctx context.Context, goalID string, leaf domain.ChecklistLeaf) error {
	if leaf.Version == 0 {
		leaf.Version = 1
	}
	now := nowUTC()
	query := `INSERT INTO checklist_items (id, goal_id, label, checked, order_index, version, created_at, updated_at)
		VALUES (?, ?, ?, ?,
			(SELECT COALESCE(MAX(order_index), -1) + 1 FROM checklist_items WHERE goal_id = ?),
			?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		leaf.ID, goalID, leaf.Label, boolToInt(leaf.Checked), goalID, leaf.Version, now, now)
	if err != nil {
		return fmt.Errorf("inserting checklist item: %w", err)
	}
	return nil
}

func (r *SQLiteChecklistRepo) GetByID(ctx context.Context, id string) (*ChecklistRow, error) {
	query := `SELECT ` + checklistColumns + ` FROM checklist_items c WHERE c.id = ?`
	var row ChecklistRow
	var checked int
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&row.ID, &row.GoalID, &row.Label, &checked, &row.OrderIndex, &row.Version)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("checklist item: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning checklist item: %w", err)
	}
	row.Checked = intToBool(checked)
	return &row, nil
}

func (r *SQLiteChecklistRepo) ListByOwner(ctx context.Context, ownerID string) ([]ChecklistRow, error) {
	query := `SELECT ` + checklistColumns + ` FROM checklist_items c
		JOIN goals g ON g.id = c.goal_id
		WHERE g.owner_id = ?
		ORDER BY c.goal_id, c.order_index, c.created_at, c.id`
	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("listing checklist items by owner: %w", err)
	}
	defer rows.Close()
	return scanChecklistRows(rows)
}

func (r *SQLiteChecklistRepo) ListAll(ctx context.Context) ([]ChecklistRow, error) {
	query := `SELECT ` + checklistColumns + ` FROM checklist_items c
		ORDER BY c.goal_id, c.order_index, c.created_at, c.id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing checklist items: %w", err)
	}
	defer rows.Close()
	return scanChecklistRows(rows)
}

func (r *SQLiteChecklistRepo) Update(ctx context.Context, leaf domain.ChecklistLeaf, expected int64) (int64, error) {
	query := `UPDATE checklist_items SET label = ?, checked = ?, version = version + 1, updated_at = ?
		WHERE id = ? AND (? = 0 OR version = ?)`
	res, err := r.db.ExecContext(ctx, query,
		leaf.Label, boolToInt(leaf.Checked), nowUTC(), leaf.ID, expected, expected)
	if err != nil {
		return 0, fmt.Errorf("updating checklist item: %w", err)
	}
	return checkVersioned(ctx, r.db, "checklist_items", "checklist item", leaf.ID, expected, res)
}

func (r *SQLiteChecklistRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM checklist_items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting checklist item: %w", err)
	}
	return affectedOrNotFound(res, "checklist item", id)
}

func scanChecklistRows(rows *sql.Rows) ([]ChecklistRow, error) {
	var out []ChecklistRow
	for rows.Next() {
		var row ChecklistRow
		var checked int
		if err := rows.Scan(&row.ID, &row.GoalID, &row.Label, &checked, &row.OrderIndex, &row.Version); err != nil {
			return nil, fmt.Errorf("scanning checklist item row: %w", err)
		}
		row.Checked = intToBool(checked)
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating checklist item rows: %w", err)
	}
	return out, nil
}
