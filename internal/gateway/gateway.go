// Package gateway persists goal tree mutations to a backing store and loads
// trees from it. Implementations report failures with the domain sentinel
// errors so callers can roll back and classify them with errors.Is.
package gateway

import (
	"context"

	"github.com/alexanderramin/goaltree/internal/domain"
)

// Scope selects which owner's goals LoadTree returns.
type Scope struct {
	OwnerID string // empty means the caller's own goals
	All     bool   // every owner; admin only
}

// Result identifies the persisted entity and its version after the write.
type Result struct {
	ID      string
	Version int64
}

// Gateway is the persistence boundary for the mutation engine.
type Gateway interface {
	LoadTree(ctx context.Context, scope Scope) (*domain.Tree, error)

	// PersistAdd stores a new entity under parentID. An empty parentID adds
	// a root goal.
	PersistAdd(ctx context.Context, parentID string, e domain.Entity) (Result, error)

	// PersistEdit stores changed fields. The entity's Version is the version
	// the caller last saw; zero skips the staleness check.
	PersistEdit(ctx context.Context, e domain.Entity) (Result, error)

	// PersistDelete removes an entity. Deleting a goal removes its subtree.
	PersistDelete(ctx context.Context, id string) (Result, error)
}
