package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestElapsedDays(t *testing.T) {
	now := time.Date(2025, 3, 15, 14, 30, 0, 0, time.UTC)
	tests := []struct {
		name  string
		start time.Time
		want  int
	}{
		{"same day", time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC), 0},
		{"ten days ago", time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC), 10},
		{"start time of day is ignored", time.Date(2025, 3, 5, 23, 59, 0, 0, time.UTC), 10},
		{"tomorrow is negative", time.Date(2025, 3, 16, 0, 0, 0, 0, time.UTC), -1},
		{"across month boundary", time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC), 15},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ElapsedDays(tt.start, now))
		})
	}
}

func TestCalendarDate(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
		want time.Time
	}{
		{"utc midday", time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC), time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)},
		{"west of utc late evening", time.Date(2025, 6, 1, 23, 30, 0, 0, time.FixedZone("UTC-5", -5*3600)), time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)},
		{"east of utc early morning", time.Date(2025, 6, 1, 1, 0, 0, 0, time.FixedZone("UTC+9", 9*3600)), time.Date(2025, 5, 31, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalendarDate(tt.in)
			assert.True(t, tt.want.Equal(got), "got %s", got)
			assert.Equal(t, time.UTC, got.Location())
		})
	}
}

func TestStreakLeaf_IsComplete(t *testing.T) {
	now := time.Date(2025, 3, 15, 9, 0, 0, 0, time.UTC)
	start := now.AddDate(0, 0, -10)

	assert.True(t, StreakLeaf{StartDate: CalendarDate(start), TargetDays: 10}.IsComplete(now))
	assert.False(t, StreakLeaf{StartDate: CalendarDate(start), TargetDays: 11}.IsComplete(now))
	assert.True(t, StreakLeaf{StartDate: CalendarDate(now), TargetDays: 0}.IsComplete(now))
	assert.False(t, StreakLeaf{StartDate: CalendarDate(now.AddDate(0, 0, 1)), TargetDays: 0}.IsComplete(now))
}

func TestGoalNode_CloneIsDeep(t *testing.T) {
	parent := "root"
	child := &GoalNode{ID: "child", ParentID: &parent, Label: "Child",
		ChecklistItems: []ChecklistLeaf{{ID: "c1", Label: "one"}}}
	root := &GoalNode{ID: "root", Label: "Root", ChildBars: []*GoalNode{child},
		StreakLeaves: []StreakLeaf{{ID: "s1", Label: "run", TargetDays: 3}}}

	c := root.Clone()
	c.ChildBars[0].ChecklistItems[0].Checked = true
	c.ChildBars[0].Label = "changed"
	*c.ChildBars[0].ParentID = "other"
	c.StreakLeaves[0].TargetDays = 99

	assert.False(t, child.ChecklistItems[0].Checked)
	assert.Equal(t, "Child", child.Label)
	assert.Equal(t, "root", *child.ParentID)
	assert.Equal(t, 3, root.StreakLeaves[0].TargetDays)
}

func TestTree_Find(t *testing.T) {
	pid := "a"
	b := &GoalNode{ID: "b", ParentID: &pid}
	tree := &Tree{Roots: []*GoalNode{
		{ID: "a", ChildBars: []*GoalNode{b}},
		{ID: "c"},
	}}

	require.NotNil(t, tree.Find("b"))
	assert.Same(t, b, tree.Find("b"))
	assert.Equal(t, "c", tree.Find("c").ID)
	assert.Nil(t, tree.Find("missing"))
}

func TestEntity_Validate(t *testing.T) {
	tests := []struct {
		name    string
		entity  Entity
		wantErr bool
	}{
		{"goal ok", GoalEntity(&GoalNode{Label: "Run"}), false},
		{"goal blank label", GoalEntity(&GoalNode{Label: "  "}), true},
		{"checklist ok", ChecklistEntity(ChecklistLeaf{Label: "Buy shoes"}), false},
		{"streak negative target", StreakEntity(StreakLeaf{Label: "Daily", TargetDays: -1}), true},
		{"streak zero target", StreakEntity(StreakLeaf{Label: "Daily", TargetDays: 0}), false},
		{"missing payload", Entity{Kind: KindChecklist}, true},
		{"unknown kind", Entity{Kind: "bogus"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.entity.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvariantViolation)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestGoalEntity_DropsChildren(t *testing.T) {
	n := &GoalNode{ID: "g", Label: "G", ChildBars: []*GoalNode{{ID: "x"}},
		ChecklistItems: []ChecklistLeaf{{ID: "c"}}}
	e := GoalEntity(n)

	assert.Equal(t, "g", e.ID())
	assert.Empty(t, e.Goal.ChildBars)
	assert.Empty(t, e.Goal.ChecklistItems)
	assert.Len(t, n.ChildBars, 1, "source node must be untouched")
}

func TestPrincipal_CanMutate(t *testing.T) {
	assert.True(t, Principal{UserID: "u1", Role: RoleUser}.CanMutate("u1"))
	assert.False(t, Principal{UserID: "u1", Role: RoleUser}.CanMutate("u2"))
	assert.True(t, Principal{UserID: "root", Role: RoleAdmin}.CanMutate("u2"))
	assert.False(t, Principal{}.CanMutate(""))
}
