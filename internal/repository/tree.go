package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/alexanderramin/goaltree/internal/db"
	"github.com/alexanderramin/goaltree/internal/domain"
)

func isNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// LoadTree reads every goal and leaf visible to ownerID (all owners when
// ownerID is empty) and assembles them into a forest.
func LoadTree(ctx context.Context, q db.DBTX, ownerID string) (*domain.Tree, error) {
	goals := NewSQLiteGoalRepo(q)
	checks := NewSQLiteChecklistRepo(q)
	streaks := NewSQLiteStreakRepo(q)

	var (
		gs  []*domain.GoalNode
		cs  []ChecklistRow
		ss  []StreakRow
		err error
	)
	if ownerID == "" {
		if gs, err = goals.ListAll(ctx); err != nil {
			return nil, err
		}
		if cs, err = checks.ListAll(ctx); err != nil {
			return nil, err
		}
		if ss, err = streaks.ListAll(ctx); err != nil {
			return nil, err
		}
	} else {
		if gs, err = goals.ListByOwner(ctx, ownerID); err != nil {
			return nil, err
		}
		if cs, err = checks.ListByOwner(ctx, ownerID); err != nil {
			return nil, err
		}
		if ss, err = streaks.ListByOwner(ctx, ownerID); err != nil {
			return nil, err
		}
	}
	return AssembleTree(gs, cs, ss)
}

// AssembleTree links flat goal and leaf rows into a forest. Input order is
// kept within each sibling collection. A goal whose parent is absent from
// gs is treated as a root.
func AssembleTree(gs []*domain.GoalNode, cs []ChecklistRow, ss []StreakRow) (*domain.Tree, error) {
	byID := make(map[string]*domain.GoalNode, len(gs))
	for _, g := range gs {
		if _, dup := byID[g.ID]; dup {
			return nil, fmt.Errorf("duplicate goal %s: %w", g.ID, domain.ErrInvariantViolation)
		}
		if g.ChildBars == nil {
			g.ChildBars = []*domain.GoalNode{}
		}
		byID[g.ID] = g
	}

	tree := &domain.Tree{}
	for _, g := range gs {
		if g.ParentID != nil {
			if parent, ok := byID[*g.ParentID]; ok {
				parent.ChildBars = append(parent.ChildBars, g)
				continue
			}
			g.ParentID = nil
		}
		tree.Roots = append(tree.Roots, g)
	}
	for _, c := range cs {
		owner, ok := byID[c.GoalID]
		if !ok {
			continue
		}
		owner.ChecklistItems = append(owner.ChecklistItems, c.ChecklistLeaf)
	}
	for _, s := range ss {
		owner, ok := byID[s.GoalID]
		if !ok {
			continue
		}
		owner.StreakLeaves = append(owner.StreakLeaves, s.StreakLeaf)
	}
	return tree, nil
}
