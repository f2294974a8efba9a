package repository

import (
	"context"
	"time"

	"github.com/alexanderramin/goaltree/internal/domain"
)

// ChecklistRow is a checklist leaf together with its storage placement.
type ChecklistRow struct {
	domain.ChecklistLeaf
	GoalID     string
	OrderIndex int
}

// StreakRow is a streak leaf together with its storage placement.
type StreakRow struct {
	domain.StreakLeaf
	GoalID     string
	OrderIndex int
}

// EntityRef locates any stored entity by id.
type EntityRef struct {
	Kind    domain.EntityKind
	GoalID  string // the goal itself, or the goal owning the leaf
	OwnerID string
}

type UserRepo interface {
	Create(ctx context.Context, u *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
}

// GoalRepo stores goal rows. Children are not loaded; use AssembleTree.
// Update methods take the version the caller last saw and return the new
// one; an expected version of zero skips the check.
type GoalRepo interface {
	Create(ctx context.Context, g *domain.GoalNode) error
	GetByID(ctx context.Context, id string) (*domain.GoalNode, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*domain.GoalNode, error)
	ListAll(ctx context.Context) ([]*domain.GoalNode, error)
	UpdateLabel(ctx context.Context, id, label string, expected int64, at time.Time) (int64, error)
	Delete(ctx context.Context, id string) error
}

type ChecklistRepo interface {
	Create(ctx context.Context, goalID string, leaf domain.ChecklistLeaf) error
	GetByID(ctx context.Context, id string) (*ChecklistRow, error)
	ListByOwner(ctx context.Context, ownerID string) ([]ChecklistRow, error)
	ListAll(ctx context.Context) ([]ChecklistRow, error)
	Update(ctx context.Context, leaf domain.ChecklistLeaf, expected int64) (int64, error)
	Delete(ctx context.Context, id string) error
}

type StreakRepo interface {
	Create(ctx context.Context, goalID string, leaf domain.StreakLeaf) error
	GetByID(ctx context.Context, id string) (*StreakRow, error)
	ListByOwner(ctx context.Context, ownerID string) ([]StreakRow, error)
	ListAll(ctx context.Context) ([]StreakRow, error)
	Update(ctx context.Context, leaf domain.StreakLeaf, expected int64) (int64, error)
	Delete(ctx context.Context, id string) error
}

// EntityRepo answers questions that span every entity table.
type EntityRepo interface {
	Lookup(ctx context.Context, id string) (EntityRef, error)
	Exists(ctx context.Context, id string) (bool, error)
}
