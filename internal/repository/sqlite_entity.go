package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/alexanderramin/goaltree/internal/db"
	"github.com/alexanderramin/goaltree/internal/domain"
)

// SQLiteEntityRepo implements EntityRepo across the goal, checklist and
// streak tables, which share one id namespace.
type SQLiteEntityRepo struct {
	db db.DBTX
}

func NewSQLiteEntityRepo(db db.DBTX) *SQLiteEntityRepo {
	return &SQLiteEntityRepo{db: db}
}

func (r *SQLiteEntityRepo) Lookup(ctx context.Context, id string) (EntityRef, error) {
	query := `SELECT 'goal', id, owner_id FROM goals WHERE id = ?
		UNION ALL
		SELECT 'checklist', g.id, g.owner_id FROM checklist_items c JOIN goals g ON g.id = c.goal_id WHERE c.id = ?
		UNION ALL
		SELECT 'streak', g.id, g.owner_id FROM streak_leaves s JOIN goals g ON g.id = s.goal_id WHERE s.id = ?
		LIMIT 1`
	var ref EntityRef
	var kind string
	err := r.db.QueryRowContext(ctx, query, id, id, id).Scan(&kind, &ref.GoalID, &ref.OwnerID)
	if err != nil {
		if err == sql.ErrNoRows {
			return EntityRef{}, fmt.Errorf("entity %s: %w", id, ErrNotFound)
		}
		return EntityRef{}, fmt.Errorf("looking up entity: %w", err)
	}
	ref.Kind = domain.EntityKind(kind)
	return ref, nil
}

func (r *SQLiteEntityRepo) Exists(ctx context.Context, id string) (bool, error) {
	_, err := r.Lookup(ctx, id)
	if err == nil {
		return true, nil
	}
	if isNotFound(err) {
		return false, nil
	}
	return false, err
}
