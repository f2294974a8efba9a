package engine

import (
	"context"

	"github.com/alexanderramin/goaltree/internal/domain"
	"github.com/alexanderramin/goaltree/internal/gateway"
)

// DeleteNode removes goal id with its whole subtree and returns every
// removed id, descendants first.
func (e *Engine) DeleteNode(ctx context.Context, id string) ([]string, error) {
	var removed []string
	err := e.run(ctx, domain.OpDeleteNode, id, func(ctx context.Context) error {
		release, err := e.store.LockParent(id)
		if err != nil {
			return err
		}
		defer release()

		ids, undo, err := e.store.RemoveSubtree(id)
		if err != nil {
			return err
		}
		if _, err := e.persist(domain.OpDeleteNode, undo, func() (gateway.Result, error) {
			return e.gw.PersistDelete(ctx, id)
		}); err != nil {
			return err
		}
		removed = ids
		return nil
	})
	return removed, err
}

// DeleteLeaf removes a single checklist or streak leaf.
func (e *Engine) DeleteLeaf(ctx context.Context, id string) error {
	return e.run(ctx, domain.OpDeleteLeaf, id, func(ctx context.Context) error {
		_, release, err := e.store.LockOwner(id)
		if err != nil {
			return err
		}
		defer release()

		_, _, undo, err := e.store.RemoveLeaf(id)
		if err != nil {
			return err
		}
		_, err = e.persist(domain.OpDeleteLeaf, undo, func() (gateway.Result, error) {
			return e.gw.PersistDelete(ctx, id)
		})
		return err
	})
}

// Delete removes id whichever kind of entity it is and returns the removed
// ids.
func (e *Engine) Delete(ctx context.Context, id string) ([]string, error) {
	kind, err := e.store.Kind(id)
	if err != nil {
		return nil, err
	}
	if kind == domain.KindGoal {
		return e.DeleteNode(ctx, id)
	}
	if err := e.DeleteLeaf(ctx, id); err != nil {
		return nil, err
	}
	return []string{id}, nil
}
