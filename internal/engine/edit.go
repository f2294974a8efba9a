package engine

import (
	"context"
	"strings"
	"time"

	"github.com/alexanderramin/goaltree/internal/domain"
	"github.com/alexanderramin/goaltree/internal/gateway"
	"github.com/alexanderramin/goaltree/internal/store"
)

// StreakPatch lists the streak fields to change. Nil fields are kept.
type StreakPatch struct {
	Label      *string
	StartDate  *time.Time
	TargetDays *int
}

// EditGoal relabels goal id.
func (e *Engine) EditGoal(ctx context.Context, id, label string) error {
	return e.run(ctx, domain.OpEditGoal, id, func(ctx context.Context) error {
		label = strings.TrimSpace(label)
		if err := domain.ValidateLabel(label); err != nil {
			return err
		}
		release, err := e.store.Lock(id)
		if err != nil {
			return err
		}
		defer release()

		updated, undo, err := e.store.UpdateGoal(id, func(p *store.GoalPatch) { p.Label = label })
		if err != nil {
			return err
		}
		res, err := e.persist(domain.OpEditGoal, undo, func() (gateway.Result, error) {
			return e.gw.PersistEdit(ctx, domain.GoalEntity(&updated))
		})
		if err != nil {
			return err
		}
		e.setGoalVersion(id, res.Version)
		return nil
	})
}

// ToggleChecklistItem flips the checked state of checklist leaf id.
func (e *Engine) ToggleChecklistItem(ctx context.Context, id string) error {
	return e.run(ctx, domain.OpToggle, id, func(ctx context.Context) error {
		return e.editChecklist(ctx, domain.OpToggle, id, func(l *domain.ChecklistLeaf) { l.Checked = !l.Checked })
	})
}

// EditChecklistItem relabels checklist leaf id.
func (e *Engine) EditChecklistItem(ctx context.Context, id, label string) error {
	return e.run(ctx, domain.OpEditChecklist, id, func(ctx context.Context) error {
		label = strings.TrimSpace(label)
		if err := domain.ValidateLabel(label); err != nil {
			return err
		}
		return e.editChecklist(ctx, domain.OpEditChecklist, id, func(l *domain.ChecklistLeaf) { l.Label = label })
	})
}

func (e *Engine) editChecklist(ctx context.Context, op domain.Operation, id string, fn func(*domain.ChecklistLeaf)) error {
	_, release, err := e.store.LockOwner(id)
	if err != nil {
		return err
	}
	defer release()

	updated, undo, err := e.store.UpdateChecklist(id, fn)
	if err != nil {
		return err
	}
	res, err := e.persist(op, undo, func() (gateway.Result, error) {
		return e.gw.PersistEdit(ctx, domain.ChecklistEntity(updated))
	})
	if err != nil {
		return err
	}
	e.setChecklistVersion(id, res.Version)
	return nil
}

// EditStreakLeaf applies patch to streak leaf id.
func (e *Engine) EditStreakLeaf(ctx context.Context, id string, patch StreakPatch) error {
	return e.run(ctx, domain.OpEditStreak, id, func(ctx context.Context) error {
		if patch.Label != nil {
			trimmed := strings.TrimSpace(*patch.Label)
			if err := domain.ValidateLabel(trimmed); err != nil {
				return err
			}
			patch.Label = &trimmed
		}
		if patch.TargetDays != nil {
			if err := domain.ValidateTargetDays(*patch.TargetDays); err != nil {
				return err
			}
		}
		_, release, err := e.store.LockOwner(id)
		if err != nil {
			return err
		}
		defer release()

		updated, undo, err := e.store.UpdateStreak(id, func(l *domain.StreakLeaf) {
			if patch.Label != nil {
				l.Label = *patch.Label
			}
			if patch.StartDate != nil {
				l.StartDate = domain.CalendarDate(*patch.StartDate)
			}
			if patch.TargetDays != nil {
				l.TargetDays = *patch.TargetDays
			}
		})
		if err != nil {
			return err
		}
		res, err := e.persist(domain.OpEditStreak, undo, func() (gateway.Result, error) {
			return e.gw.PersistEdit(ctx, domain.StreakEntity(updated))
		})
		if err != nil {
			return err
		}
		e.setStreakVersion(id, res.Version)
		return nil
	})
}
