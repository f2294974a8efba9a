package formatter

import (
	"fmt"

	"github.com/alexanderramin/goaltree/internal/domain"
	"github.com/alexanderramin/goaltree/internal/view"
)

const barWidth = 10

// FormatGoalTree renders projected goals as a tree with a progress badge on
// every goal and a status badge on every leaf.
func FormatGoalTree(views []view.NodeView) string {
	rows := view.Flatten(views)
	if len(rows) == 0 {
		return Dim("No goals yet.") + "\n"
	}
	items := make([]TreeItem, len(rows))
	for i, r := range rows {
		items[i] = TreeItem{
			Title:  r.Label,
			Level:  r.Depth,
			IsLast: isLastSibling(rows, i),
			Done:   r.Done,
		}
		switch r.Kind {
		case domain.KindGoal:
			items[i].Marker = "▸"
			if r.Expanded {
				items[i].Marker = "▾"
			}
			items[i].Detail = fmt.Sprintf("%s %3d%%  %s", RenderCompactBar(r.Percent, barWidth, !r.Expanded), r.Percent, Dim(r.ID))
		case domain.KindChecklist:
			items[i].Marker = "☐"
			items[i].Detail = Dim(r.ID)
		case domain.KindStreak:
			items[i].Marker = "◷"
			items[i].Detail = fmt.Sprintf("%s  %s", StreakDays(r.Leaf.ElapsedDays, r.Leaf.TargetDays), Dim(r.ID))
		}
	}
	return RenderTree(items)
}

// StreakDays renders elapsed/target days, e.g. "12/30 days".
func StreakDays(elapsed, target int) string {
	if elapsed < 0 {
		return fmt.Sprintf("starts in %dd", -elapsed)
	}
	shown := elapsed
	if shown > target {
		shown = target
	}
	return fmt.Sprintf("%d/%d days", shown, target)
}

// FormatStreakTable lists the streak leaves of views that are expanded.
func FormatStreakTable(views []view.NodeView) string {
	var rows [][]string
	for _, r := range view.Flatten(views) {
		if r.Kind != domain.KindStreak {
			continue
		}
		status := StyleYellow.Render("running")
		if r.Done {
			status = StyleGreen.Render("reached")
		}
		rows = append(rows, []string{
			r.ID,
			r.Label,
			r.Leaf.StartDate.Format(domain.DateLayout),
			StreakDays(r.Leaf.ElapsedDays, r.Leaf.TargetDays),
			status,
		})
	}
	if len(rows) == 0 {
		return Dim("No streaks.") + "\n"
	}
	return RenderTable([]Column{
		{Title: "ID"}, {Title: "LABEL"}, {Title: "START"}, {Title: "DAYS", Right: true}, {Title: "STATUS"},
	}, rows)
}

func isLastSibling(rows []view.Row, i int) bool {
	depth := rows[i].Depth
	for _, r := range rows[i+1:] {
		if r.Depth < depth {
			return true
		}
		if r.Depth == depth {
			return false
		}
	}
	return true
}
