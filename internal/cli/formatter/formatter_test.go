package formatter

import (
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/alexanderramin/goaltree/internal/domain"
	"github.com/alexanderramin/goaltree/internal/view"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

func stripANSI(s string) string {
	return ansiPattern.ReplaceAllString(s, "")
}

func TestRenderProgress(t *testing.T) {
	tests := []struct {
		name  string
		pct   int
		width int
		want  string
	}{
		{"empty", 0, 4, "[░░░░]   0%"},
		{"half", 50, 4, "[██░░]  50%"},
		{"full", 100, 4, "[████] 100%"},
		{"over clamps", 150, 4, "[████] 100%"},
		{"negative clamps", -5, 4, "[░░░░]   0%"},
		{"tiny width clamps to 2", 50, 1, "[█░]  50%"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, stripANSI(RenderProgress(tt.pct, tt.width)))
		})
	}
}

func TestRenderCompactBar(t *testing.T) {
	got := stripANSI(RenderCompactBar(75, 4, true))
	assert.Equal(t, "███░", got)
	assert.NotContains(t, got, "%")
}

func TestRenderTree_Connectors(t *testing.T) {
	out := stripANSI(RenderTree([]TreeItem{
		{Title: "root", Level: 0},
		{Title: "a", Level: 1},
		{Title: "b", Level: 1, IsLast: true, Done: true, Detail: "x"},
	}))
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "root", lines[0])
	assert.Equal(t, "├─ a", lines[1])
	assert.True(t, strings.HasPrefix(lines[2], "└─ ✔ b"))
	assert.True(t, strings.HasSuffix(lines[2], "[ x ]"))
}

func TestRenderTable(t *testing.T) {
	cols := []Column{{Title: "ID"}, {Title: "DAYS", Right: true}, {Title: "LABEL"}}
	out := stripANSI(RenderTable(cols, [][]string{{"s1", "3/10", "Stretch"}, {"s22", "12/30", "Run"}}))
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "ID    DAYS  LABEL", lines[0])
	assert.Equal(t, "───  ─────  ───────", lines[1])
	assert.Equal(t, "s1    3/10  Stretch", lines[2])
	assert.Equal(t, "s22  12/30  Run", lines[3])
	assert.Empty(t, RenderTable(nil, nil))
}

func TestFormatGoalTree(t *testing.T) {
	now := time.Date(2025, 6, 20, 12, 0, 0, 0, time.UTC)
	pid := "fit"
	tree := &domain.Tree{Roots: []*domain.GoalNode{{
		ID: "fit", Label: "Get fit",
		StreakLeaves:   []domain.StreakLeaf{{ID: "s1", Label: "Stretch", StartDate: domain.CalendarDate(now.AddDate(0, 0, -2)), TargetDays: 5}},
		ChecklistItems: []domain.ChecklistLeaf{{ID: "c1", Label: "Shoes", Checked: true}},
		ChildBars:      []*domain.GoalNode{{ID: "run", ParentID: &pid, Label: "Run"}},
	}}}
	p := view.NewProjector()
	p.SetExpanded("fit", true)

	out := stripANSI(FormatGoalTree(p.Project(tree, now)))
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], "▾ Get fit")
	assert.Contains(t, lines[0], " 67%")
	assert.Contains(t, lines[1], "├─ ◷ Stretch")
	assert.Contains(t, lines[1], "2/5 days")
	assert.Contains(t, lines[2], "├─ ✔ Shoes")
	assert.Contains(t, lines[3], "└─ ✔ Run")

	assert.Contains(t, stripANSI(FormatGoalTree(nil)), "No goals yet.")
}

func TestStreakDays(t *testing.T) {
	assert.Equal(t, "3/10 days", StreakDays(3, 10))
	assert.Equal(t, "10/10 days", StreakDays(14, 10))
	assert.Equal(t, "starts in 2d", StreakDays(-2, 10))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "long…", Truncate("long label", 5))
}
