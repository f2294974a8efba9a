package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/alexanderramin/goaltree/internal/db"
	"github.com/alexanderramin/goaltree/internal/domain"
)

// goalColumns is the canonical SELECT column list for goals.
const goalColumns = `id, owner_id, parent_id, label, order_index, version, created_at, updated_at`

// SQLiteGoalRepo implements GoalRepo using a SQLite database.
type SQLiteGoalRepo struct {
	db db.DBTX
}

// NewSQLiteGoalRepo creates a new SQLiteGoalRepo.
func NewSQLiteGoalRepo(db db.DBTX) *SQLiteGoalRepo {
	return &SQLiteGoalRepo{db: db}
}

// Create inserts g after its last sibling. A zero version is stored as 1.
func (r *SQLiteGoalRepo) Create(ctx context.Context, g *domain.GoalNode) error {
	if g.Version == 0 {
		g.Version = 1
	}
	query := `INSERT INTO goals (id, owner_id, parent_id, label, order_index, version, created_at, updated_at)
		VALUES (?, ?, ?, ?,
			(SELECT COALESCE(MAX(order_index), -1) + 1 FROM goals WHERE owner_id = ? AND parent_id IS ?),
			?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		g.ID,
		g.OwnerID,
		g.ParentID, // *string: nil becomes SQL NULL
		g.Label,
		g.OwnerID,
		g.ParentID,
		g.Version,
		timeOrNow(g.CreatedAt),
		timeOrNow(g.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting goal: %w", err)
	}
	return nil
}

func (r *SQLiteGoalRepo) GetByID(ctx context.Context, id string) (*domain.GoalNode, error) {
	query := `SELECT ` + goalColumns + ` FROM goals WHERE id = ?`
	row := r.db.QueryRowContext(ctx, query, id)
	return r.scanGoal(row)
}

func (r *SQLiteGoalRepo) ListByOwner(ctx context.Context, ownerID string) ([]*domain.GoalNode, error) {
	query := `SELECT ` + goalColumns + ` FROM goals WHERE owner_id = ? ORDER BY order_index, created_at, id`
	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("listing goals by owner: %w", err)
	}
	defer rows.Close()
	return r.scanGoals(rows)
}

func (r *SQLiteGoalRepo) ListAll(ctx context.Context) ([]*domain.GoalNode, error) {
	query := `SELECT ` + goalColumns + ` FROM goals ORDER BY order_index, created_at, id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing goals: %w", err)
	}
	defer rows.Close()
	return r.scanGoals(rows)
}

func (r *SQLiteGoalRepo) UpdateLabel(ctx context.Context, id, label string, expected int64, at time.Time) (int64, error) {
	query := `UPDATE goals SET label = ?, version = version + 1, updated_at = ?
		WHERE id = ? AND (? = 0 OR version = ?)`
	res, err := r.db.ExecContext(ctx, query, label, timeOrNow(at), id, expected, expected)
	if err != nil {
		return 0, fmt.Errorf("updating goal: %w", err)
	}
	return checkVersioned(ctx, r.db, "goals", "goal", id, expected, res)
}

// Delete removes the goal. Descendant goals and leaves go with it through
// ON DELETE CASCADE.
func (r *SQLiteGoalRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM goals WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting goal: %w", err)
	}
	return affectedOrNotFound(res, "goal", id)
}

func (r *SQLiteGoalRepo) scanGoal(row *sql.Row) (*domain.GoalNode, error) {
	var g domain.GoalNode
	var parentID sql.NullString
	var orderIndex int
	var createdAtStr, updatedAtStr string

	err := row.Scan(&g.ID, &g.OwnerID, &parentID, &g.Label, &orderIndex, &g.Version, &createdAtStr, &updatedAtStr)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("goal: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning goal: %w", err)
	}
	return populateGoal(&g, parentID, createdAtStr, updatedAtStr)
}

func (r *SQLiteGoalRepo) scanGoals(rows *sql.Rows) ([]*domain.GoalNode, error) {
	var goals []*domain.GoalNode
	for rows.Next() {
		var g domain.GoalNode
		var parentID sql.NullString
		var orderIndex int
		var createdAtStr, updatedAtStr string

		if err := rows.Scan(&g.ID, &g.OwnerID, &parentID, &g.Label, &orderIndex, &g.Version, &createdAtStr, &updatedAtStr); err != nil {
			return nil, fmt.Errorf("scanning goal row: %w", err)
		}
		goal, err := populateGoal(&g, parentID, createdAtStr, updatedAtStr)
		if err != nil {
			return nil, err
		}
		goals = append(goals, goal)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating goal rows: %w", err)
	}
	return goals, nil
}

func populateGoal(g *domain.GoalNode, parentID sql.NullString, createdAtStr, updatedAtStr string) (*domain.GoalNode, error) {
	if parentID.Valid {
		pid := parentID.String
		g.ParentID = &pid
	}
	var err error
	if g.CreatedAt, err = parseTime(createdAtStr); err != nil {
		return nil, fmt.Errorf("parsing goal created_at: %w", err)
	}
	if g.UpdatedAt, err = parseTime(updatedAtStr); err != nil {
		return nil, fmt.Errorf("parsing goal updated_at: %w", err)
	}
	g.ChildBars = []*domain.GoalNode{}
	return g, nil
}
