package domain

import (
	"fmt"
	"strings"
)

// Entity is a tagged variant carrying exactly one of a goal, a checklist
// leaf or a streak leaf. It is the payload exchanged with the gateway.
type Entity struct {
	Kind      EntityKind
	Goal      *GoalNode
	Checklist *ChecklistLeaf
	Streak    *StreakLeaf
}

// GoalEntity wraps a goal without its children.
func GoalEntity(n *GoalNode) Entity {
	flat := *n
	flat.ChildBars = nil
	flat.ChecklistItems = nil
	flat.StreakLeaves = nil
	return Entity{Kind: KindGoal, Goal: &flat}
}

func ChecklistEntity(l ChecklistLeaf) Entity {
	return Entity{Kind: KindChecklist, Checklist: &l}
}

func StreakEntity(l StreakLeaf) Entity {
	return Entity{Kind: KindStreak, Streak: &l}
}

// ID returns the id of the wrapped entity.
func (e Entity) ID() string {
	switch e.Kind {
	case KindGoal:
		if e.Goal != nil {
			return e.Goal.ID
		}
	case KindChecklist:
		if e.Checklist != nil {
			return e.Checklist.ID
		}
	case KindStreak:
		if e.Streak != nil {
			return e.Streak.ID
		}
	}
	return ""
}

// Version returns the version of the wrapped entity.
func (e Entity) Version() int64 {
	switch {
	case e.Kind == KindGoal && e.Goal != nil:
		return e.Goal.Version
	case e.Kind == KindChecklist && e.Checklist != nil:
		return e.Checklist.Version
	case e.Kind == KindStreak && e.Streak != nil:
		return e.Streak.Version
	}
	return 0
}

// Validate checks that the variant is well formed and its fields are legal.
func (e Entity) Validate() error {
	switch e.Kind {
	case KindGoal:
		if e.Goal == nil {
			return fmt.Errorf("goal entity without payload: %w", ErrInvariantViolation)
		}
		return ValidateLabel(e.Goal.Label)
	case KindChecklist:
		if e.Checklist == nil {
			return fmt.Errorf("checklist entity without payload: %w", ErrInvariantViolation)
		}
		return ValidateLabel(e.Checklist.Label)
	case KindStreak:
		if e.Streak == nil {
			return fmt.Errorf("streak entity without payload: %w", ErrInvariantViolation)
		}
		if err := ValidateLabel(e.Streak.Label); err != nil {
			return err
		}
		return ValidateTargetDays(e.Streak.TargetDays)
	default:
		return fmt.Errorf("unknown entity kind %q: %w", e.Kind, ErrInvariantViolation)
	}
}

// ValidateLabel rejects blank labels.
func ValidateLabel(label string) error {
	if strings.TrimSpace(label) == "" {
		return fmt.Errorf("label must not be empty: %w", ErrInvariantViolation)
	}
	return nil
}

// ValidateTargetDays rejects negative streak targets.
func ValidateTargetDays(days int) error {
	if days < 0 {
		return fmt.Errorf("target days must be >= 0, got %d: %w", days, ErrInvariantViolation)
	}
	return nil
}
