package testutil

import (
	"time"

	"github.com/alexanderramin/goaltree/internal/domain"
	"github.com/google/uuid"
)

// Goal options
type GoalOption func(*domain.GoalNode)

func WithParent(id string) GoalOption {
	return func(g *domain.GoalNode) {
		g.ParentID = &id
	}
}

func WithVersion(v int64) GoalOption {
	return func(g *domain.GoalNode) {
		g.Version = v
	}
}

func WithChildren(children ...*domain.GoalNode) GoalOption {
	return func(g *domain.GoalNode) {
		for _, c := range children {
			pid := g.ID
			c.ParentID = &pid
			g.ChildBars = append(g.ChildBars, c)
		}
	}
}

func WithChecklist(items ...domain.ChecklistLeaf) GoalOption {
	return func(g *domain.GoalNode) {
		g.ChecklistItems = append(g.ChecklistItems, items...)
	}
}

func WithStreaks(items ...domain.StreakLeaf) GoalOption {
	return func(g *domain.GoalNode) {
		g.StreakLeaves = append(g.StreakLeaves, items...)
	}
}

func NewTestGoal(ownerID, label string, opts ...GoalOption) *domain.GoalNode {
	now := time.Now().UTC().Truncate(time.Second)
	g := &domain.GoalNode{
		ID:        uuid.New().String(),
		OwnerID:   ownerID,
		Label:     label,
		ChildBars: []*domain.GoalNode{},
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func NewTestChecklist(label string, checked bool) domain.ChecklistLeaf {
	return domain.ChecklistLeaf{
		ID:      uuid.New().String(),
		Label:   label,
		Checked: checked,
		Version: 1,
	}
}

// NewTestStreak returns a streak that started daysAgo calendar days before now.
func NewTestStreak(label string, now time.Time, daysAgo, targetDays int) domain.StreakLeaf {
	return domain.StreakLeaf{
		ID:         uuid.New().String(),
		Label:      label,
		StartDate:  domain.CalendarDate(now.AddDate(0, 0, -daysAgo)),
		TargetDays: targetDays,
		Version:    1,
	}
}

func NewTestUser(id string, role domain.Role) *domain.User {
	return &domain.User{ID: id, FullName: "Test " + id, Role: role}
}
