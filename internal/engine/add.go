package engine

import (
	"context"
	"strings"
	"time"

	"github.com/alexanderramin/goaltree/internal/domain"
	"github.com/alexanderramin/goaltree/internal/gateway"
	"github.com/alexanderramin/goaltree/internal/store"
)

// AddRootGoal creates a new top-level goal and returns its id.
func (e *Engine) AddRootGoal(ctx context.Context, label string) (string, error) {
	var id string
	err := e.run(ctx, domain.OpAddRoot, "", func(ctx context.Context) error {
		var err error
		id, err = e.addGoal(ctx, domain.OpAddRoot, store.RootScope, label)
		return err
	})
	return id, err
}

// AddChildGoal creates a goal under parentID and returns its id.
func (e *Engine) AddChildGoal(ctx context.Context, parentID, label string) (string, error) {
	var id string
	err := e.run(ctx, domain.OpAddChild, parentID, func(ctx context.Context) error {
		var err error
		id, err = e.addGoal(ctx, domain.OpAddChild, parentID, label)
		return err
	})
	return id, err
}

func (e *Engine) addGoal(ctx context.Context, op domain.Operation, parentID, label string) (string, error) {
	label = strings.TrimSpace(label)
	if err := domain.ValidateLabel(label); err != nil {
		return "", err
	}
	release, err := e.store.Lock(parentID)
	if err != nil {
		return "", err
	}
	defer release()

	owner := e.owner
	var parent *string
	if parentID != store.RootScope {
		if owner, err = e.store.GoalOwner(parentID); err != nil {
			return "", err
		}
		parent = &parentID
	}

	now := e.clock.Now().UTC()
	g := &domain.GoalNode{
		ID:        e.newID(),
		OwnerID:   owner,
		Label:     label,
		CreatedAt: now,
		UpdatedAt: now,
	}
	undo, err := e.store.InsertGoal(parent, g)
	if err != nil {
		return "", err
	}
	res, err := e.persist(op, undo, func() (gateway.Result, error) {
		return e.gw.PersistAdd(ctx, parentID, domain.GoalEntity(g))
	})
	if err != nil {
		return "", err
	}
	e.setGoalVersion(g.ID, res.Version)
	return g.ID, nil
}

// AddChecklistItem adds an unchecked checklist leaf under parentID.
func (e *Engine) AddChecklistItem(ctx context.Context, parentID, label string) (string, error) {
	var id string
	err := e.run(ctx, domain.OpAddChecklist, parentID, func(ctx context.Context) error {
		label = strings.TrimSpace(label)
		if err := domain.ValidateLabel(label); err != nil {
			return err
		}
		release, err := e.store.Lock(parentID)
		if err != nil {
			return err
		}
		defer release()

		leaf := domain.ChecklistLeaf{ID: e.newID(), Label: label}
		undo, err := e.store.InsertChecklist(parentID, leaf)
		if err != nil {
			return err
		}
		res, err := e.persist(domain.OpAddChecklist, undo, func() (gateway.Result, error) {
			return e.gw.PersistAdd(ctx, parentID, domain.ChecklistEntity(leaf))
		})
		if err != nil {
			return err
		}
		e.setChecklistVersion(leaf.ID, res.Version)
		id = leaf.ID
		return nil
	})
	return id, err
}

// AddStreakLeaf adds a streak under parentID starting on the calendar date
// of start.
func (e *Engine) AddStreakLeaf(ctx context.Context, parentID, label string, start time.Time, targetDays int) (string, error) {
	var id string
	err := e.run(ctx, domain.OpAddStreak, parentID, func(ctx context.Context) error {
		label = strings.TrimSpace(label)
		if err := domain.ValidateLabel(label); err != nil {
			return err
		}
		if err := domain.ValidateTargetDays(targetDays); err != nil {
			return err
		}
		release, err := e.store.Lock(parentID)
		if err != nil {
			return err
		}
		defer release()

		leaf := domain.StreakLeaf{
			ID:         e.newID(),
			Label:      label,
			StartDate:  domain.CalendarDate(start),
			TargetDays: targetDays,
		}
		undo, err := e.store.InsertStreak(parentID, leaf)
		if err != nil {
			return err
		}
		res, err := e.persist(domain.OpAddStreak, undo, func() (gateway.Result, error) {
			return e.gw.PersistAdd(ctx, parentID, domain.StreakEntity(leaf))
		})
		if err != nil {
			return err
		}
		e.setStreakVersion(leaf.ID, res.Version)
		id = leaf.ID
		return nil
	})
	return id, err
}

func (e *Engine) setGoalVersion(id string, v int64) {
	if v > 0 {
		_, _, _ = e.store.UpdateGoal(id, func(p *store.GoalPatch) { p.Version = v })
	}
}

func (e *Engine) setChecklistVersion(id string, v int64) {
	if v > 0 {
		_, _, _ = e.store.UpdateChecklist(id, func(l *domain.ChecklistLeaf) { l.Version = v })
	}
}

func (e *Engine) setStreakVersion(id string, v int64) {
	if v > 0 {
		_, _, _ = e.store.UpdateStreak(id, func(l *domain.StreakLeaf) { l.Version = v })
	}
}
