package gateway

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/goaltree/internal/db"
	"github.com/alexanderramin/goaltree/internal/domain"
	"github.com/alexanderramin/goaltree/internal/repository"
)

// Local persists to the SQLite database on behalf of one principal. Every
// write runs in its own transaction and is allowed only for the owner of the
// affected tree or an admin. New child goals inherit their parent's owner.
type Local struct {
	db        db.DBTX
	uow       db.UnitOfWork
	principal domain.Principal
	now       func() time.Time
}

// NewLocal creates a Local gateway. Reads go through database; writes go
// through uow.
func NewLocal(database db.DBTX, uow db.UnitOfWork, principal domain.Principal) *Local {
	return &Local{
		db:        database,
		uow:       uow,
		principal: principal,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Principal returns the identity writes are checked against.
func (g *Local) Principal() domain.Principal {
	return g.principal
}

func (g *Local) LoadTree(ctx context.Context, scope Scope) (*domain.Tree, error) {
	owner := scope.OwnerID
	if owner == "" {
		owner = g.principal.UserID
	}
	if scope.All {
		if g.principal.Role != domain.RoleAdmin {
			return nil, fmt.Errorf("loading every owner's goals as %s: %w", g.principal.UserID, domain.ErrUnauthorized)
		}
		owner = ""
	} else if !g.principal.CanMutate(owner) {
		return nil, fmt.Errorf("loading goals of %s as %s: %w", owner, g.principal.UserID, domain.ErrUnauthorized)
	}
	tree, err := repository.LoadTree(ctx, g.db, owner)
	if err != nil {
		return nil, fmt.Errorf("loading tree: %w", err)
	}
	return tree, nil
}

func (g *Local) authorize(ownerID, action string) error {
	if !g.principal.CanMutate(ownerID) {
		return fmt.Errorf("%s may not %s goals of %s: %w", g.principal.UserID, action, ownerID, domain.ErrUnauthorized)
	}
	return nil
}

func (g *Local) PersistAdd(ctx context.Context, parentID string, e domain.Entity) (Result, error) {
	if err := e.Validate(); err != nil {
		return Result{}, err
	}
	err := g.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		entities := repository.NewSQLiteEntityRepo(tx)
		taken, err := entities.Exists(ctx, e.ID())
		if err != nil {
			return err
		}
		if taken || e.ID() == "" {
			return fmt.Errorf("id %q already in use: %w", e.ID(), domain.ErrConflict)
		}

		var parent repository.EntityRef
		if parentID != "" {
			if parent, err = entities.Lookup(ctx, parentID); err != nil {
				return fmt.Errorf("parent: %w", err)
			}
			if parent.Kind != domain.KindGoal {
				return fmt.Errorf("parent %s is a %s, not a goal: %w", parentID, parent.Kind, domain.ErrInvariantViolation)
			}
			if err := g.authorize(parent.OwnerID, "add to"); err != nil {
				return err
			}
		} else if e.Kind != domain.KindGoal {
			return fmt.Errorf("%s leaf needs a parent goal: %w", e.Kind, domain.ErrInvariantViolation)
		}

		switch e.Kind {
		case domain.KindGoal:
			goal := *e.Goal
			goal.Version = 1
			goal.CreatedAt, goal.UpdatedAt = g.now(), g.now()
			if parentID == "" {
				goal.ParentID = nil
				goal.OwnerID = g.rootOwner(goal.OwnerID)
				if err := g.authorize(goal.OwnerID, "add to"); err != nil {
					return err
				}
			} else {
				pid := parentID
				goal.ParentID = &pid
				goal.OwnerID = parent.OwnerID
			}
			return repository.NewSQLiteGoalRepo(tx).Create(ctx, &goal)
		case domain.KindChecklist:
			leaf := *e.Checklist
			leaf.Version = 1
			return repository.NewSQLiteChecklistRepo(tx).Create(ctx, parentID, leaf)
		default:
			leaf := *e.Streak
			leaf.Version = 1
			return repository.NewSQLiteStreakRepo(tx).Create(ctx, parentID, leaf)
		}
	})
	if err != nil {
		return Result{}, err
	}
	return Result{ID: e.ID(), Version: 1}, nil
}

// rootOwner picks the owner of a new root goal. Only admins may create
// roots for someone else.
func (g *Local) rootOwner(requested string) string {
	if requested != "" && g.principal.Role == domain.RoleAdmin {
		return requested
	}
	return g.principal.UserID
}

func (g *Local) PersistEdit(ctx context.Context, e domain.Entity) (Result, error) {
	if err := e.Validate(); err != nil {
		return Result{}, err
	}
	var version int64
	err := g.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		ref, err := repository.NewSQLiteEntityRepo(tx).Lookup(ctx, e.ID())
		if err != nil {
			return err
		}
		if ref.Kind != e.Kind {
			return fmt.Errorf("%s is a %s, not a %s: %w", e.ID(), ref.Kind, e.Kind, domain.ErrInvariantViolation)
		}
		if err := g.authorize(ref.OwnerID, "edit"); err != nil {
			return err
		}
		switch e.Kind {
		case domain.KindGoal:
			version, err = repository.NewSQLiteGoalRepo(tx).UpdateLabel(ctx, e.Goal.ID, e.Goal.Label, e.Goal.Version, g.now())
		case domain.KindChecklist:
			version, err = repository.NewSQLiteChecklistRepo(tx).Update(ctx, *e.Checklist, e.Checklist.Version)
		default:
			version, err = repository.NewSQLiteStreakRepo(tx).Update(ctx, *e.Streak, e.Streak.Version)
		}
		return err
	})
	if err != nil {
		return Result{}, err
	}
	return Result{ID: e.ID(), Version: version}, nil
}

func (g *Local) PersistDelete(ctx context.Context, id string) (Result, error) {
	err := g.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		ref, err := repository.NewSQLiteEntityRepo(tx).Lookup(ctx, id)
		if err != nil {
			return err
		}
		if err := g.authorize(ref.OwnerID, "delete"); err != nil {
			return err
		}
		switch ref.Kind {
		case domain.KindGoal:
			return repository.NewSQLiteGoalRepo(tx).Delete(ctx, id)
		case domain.KindChecklist:
			return repository.NewSQLiteChecklistRepo(tx).Delete(ctx, id)
		default:
			return repository.NewSQLiteStreakRepo(tx).Delete(ctx, id)
		}
	})
	if err != nil {
		return Result{}, err
	}
	return Result{ID: id}, nil
}
