package view

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/alexanderramin/goaltree/internal/domain"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var refNow = time.Date(2025, 6, 20, 15, 0, 0, 0, time.UTC)

func ptr(s string) *string { return &s }

func sampleTree() *domain.Tree {
	start := domain.CalendarDate(refNow.AddDate(0, 0, -3))
	return &domain.Tree{Roots: []*domain.GoalNode{
		{
			ID: "fit", Label: "Get fit",
			StreakLeaves:   []domain.StreakLeaf{{ID: "s1", Label: "Stretch", StartDate: start, TargetDays: 3}},
			ChecklistItems: []domain.ChecklistLeaf{{ID: "c1", Label: "Shoes", Checked: true}, {ID: "c2", Label: "Plan"}},
			ChildBars: []*domain.GoalNode{
				{ID: "run", ParentID: ptr("fit"), Label: "Run"},
				{ID: "swim", ParentID: ptr("fit"), Label: "Swim", ChecklistItems: []domain.ChecklistLeaf{{ID: "c3", Label: "Goggles"}}},
			},
		},
		{ID: "read", Label: "Read"},
	}}
}

func TestProject_CollapsedByDefault(t *testing.T) {
	p := NewProjector()
	got := p.Project(sampleTree(), refNow)

	want := []NodeView{
		// streak done, c1 done, c2 open, run 100, swim 0 -> 3/5
		{ID: "fit", Label: "Get fit", ProgressPercent: 60, StreakCount: 1, ChecklistCount: 2, ChildCount: 2},
		{ID: "read", Label: "Read", ProgressPercent: 100},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Project() mismatch (-want +got):\n%s", diff)
	}
}

func TestProject_ExpandedRenderOrder(t *testing.T) {
	p := NewProjector()
	p.SetExpanded("fit", true)
	got := p.Project(sampleTree(), refNow)
	require.Len(t, got, 2)

	fit := got[0]
	want := NodeView{
		ID: "fit", Label: "Get fit", ProgressPercent: 60, Expanded: true,
		StreakCount: 1, ChecklistCount: 2, ChildCount: 2,
		Streaks: []LeafView{{
			ID: "s1", Kind: domain.KindStreak, Label: "Stretch", Done: true,
			StartDate: domain.CalendarDate(refNow.AddDate(0, 0, -3)), ElapsedDays: 3, TargetDays: 3,
		}},
		Checklist: []LeafView{
			{ID: "c1", Kind: domain.KindChecklist, Label: "Shoes", Done: true},
			{ID: "c2", Kind: domain.KindChecklist, Label: "Plan"},
		},
		Children: []NodeView{
			{ID: "run", ParentID: ptr("fit"), Label: "Run", ProgressPercent: 100},
			{ID: "swim", ParentID: ptr("fit"), Label: "Swim", ProgressPercent: 0, ChecklistCount: 1},
		},
	}
	if diff := cmp.Diff(want, fit); diff != "" {
		t.Errorf("expanded node mismatch (-want +got):\n%s", diff)
	}

	rows := Flatten(got)
	var ids []string
	for _, r := range rows {
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []string{"fit", "s1", "c1", "c2", "run", "swim", "read"}, ids)
	assert.Equal(t, 1, rows[1].Depth)
	assert.Equal(t, "fit", rows[2].OwnerID)
	assert.Equal(t, 100, rows[2].Percent)
}

func TestProjector_StateIsPerNode(t *testing.T) {
	p := NewProjector()
	assert.True(t, p.ToggleExpanded("run"))
	assert.True(t, p.ToggleMenu("swim"))

	assert.Equal(t, UIState{Expanded: true}, p.State("run"))
	assert.Equal(t, UIState{MenuOpen: true}, p.State("swim"))
	assert.Equal(t, UIState{}, p.State("fit"), "siblings and parents are untouched")

	p.SetExpanded("fit", true)
	got := p.Project(sampleTree(), refNow)
	children := got[0].Children
	require.Len(t, children, 2)
	assert.True(t, children[0].Expanded)
	assert.False(t, children[0].MenuOpen)
	assert.False(t, children[1].Expanded)
	assert.True(t, children[1].MenuOpen)

	// Collapsing the parent keeps descendant state for when it reopens.
	assert.False(t, p.ToggleExpanded("fit"))
	assert.True(t, p.State("run").Expanded)

	p.CloseMenu("swim")
	assert.False(t, p.State("swim").MenuOpen)
}

func TestProjectUnder_FiltersByParentContext(t *testing.T) {
	flat := []*domain.GoalNode{
		{ID: "a", Label: "A"},
		{ID: "b", ParentID: ptr("a"), Label: "B"},
		{ID: "c", ParentID: ptr("x"), Label: "C"},
	}
	p := NewProjector()

	ids := func(vs []NodeView) []string {
		var out []string
		for _, v := range vs {
			out = append(out, v.ID)
		}
		return out
	}
	assert.Equal(t, []string{"a"}, ids(p.ProjectUnder(flat, "", refNow)))
	assert.Equal(t, []string{"a", "b"}, ids(p.ProjectUnder(flat, "a", refNow)))
	assert.Len(t, flat, 3, "filtering does not remove nodes")
}

func TestProject_ReadsNowEveryCall(t *testing.T) {
	p := NewProjector()
	tree := &domain.Tree{Roots: []*domain.GoalNode{{
		ID: "g", Label: "g",
		StreakLeaves: []domain.StreakLeaf{{ID: "s", Label: "s", StartDate: domain.CalendarDate(refNow), TargetDays: 1}},
	}}}
	assert.Equal(t, 0, p.Project(tree, refNow)[0].ProgressPercent)
	assert.Equal(t, 100, p.Project(tree, refNow.Add(24*time.Hour))[0].ProgressPercent)
}

func TestPrune(t *testing.T) {
	p := NewProjector()
	p.SetExpanded("fit", true)
	p.SetExpanded("gone", true)
	p.ToggleMenu("also-gone")

	assert.Equal(t, 2, p.Prune(sampleTree()))
	assert.Equal(t, []string{"fit"}, p.ExpandedIDs())
}

func TestBoltStateStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "view.db")
	store, err := OpenBoltStateStore(path)
	require.NoError(t, err)

	p := NewProjector()
	p.SetExpanded("run", true)
	p.SetExpanded("fit", true)
	p.ToggleMenu("swim")
	require.NoError(t, p.Save(store))
	require.NoError(t, store.Close())

	store, err = OpenBoltStateStore(path)
	require.NoError(t, err)
	defer store.Close()

	ids, err := store.LoadExpanded()
	require.NoError(t, err)
	if diff := cmp.Diff([]string{"fit", "run"}, ids, cmpopts.SortSlices(func(a, b string) bool { return a < b })); diff != "" {
		t.Errorf("LoadExpanded() mismatch (-want +got):\n%s", diff)
	}

	restored := NewProjector()
	require.NoError(t, restored.Load(store))
	assert.Equal(t, []string{"fit", "run"}, restored.ExpandedIDs())
	assert.False(t, restored.State("swim").MenuOpen, "menus are not persisted")

	require.NoError(t, store.SaveExpanded(nil))
	ids, err = store.LoadExpanded()
	require.NoError(t, err)
	assert.Empty(t, ids)
}
