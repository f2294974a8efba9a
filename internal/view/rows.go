package view

import "github.com/alexanderramin/goaltree/internal/domain"

// Row is one line of a flattened projection.
type Row struct {
	Depth    int
	Kind     domain.EntityKind
	ID       string
	OwnerID  string // goal that owns a leaf row; the goal itself for goal rows
	Label    string
	Percent  int
	Expanded bool
	Done     bool
	Leaf     *LeafView
}

// Flatten lists views depth-first in render order: for an expanded goal its
// streaks, then its checklist, then its child goals.
func Flatten(views []NodeView) []Row {
	var rows []Row
	var walk func(vs []NodeView, depth int)
	walk = func(vs []NodeView, depth int) {
		for i := range vs {
			v := &vs[i]
			rows = append(rows, Row{
				Depth:    depth,
				Kind:     domain.KindGoal,
				ID:       v.ID,
				OwnerID:  v.ID,
				Label:    v.Label,
				Percent:  v.ProgressPercent,
				Expanded: v.Expanded,
				Done:     v.ProgressPercent == 100,
			})
			if !v.Expanded {
				continue
			}
			for j := range v.Streaks {
				rows = append(rows, leafRow(&v.Streaks[j], v.ID, depth+1))
			}
			for j := range v.Checklist {
				rows = append(rows, leafRow(&v.Checklist[j], v.ID, depth+1))
			}
			walk(v.Children, depth+1)
		}
	}
	walk(views, 0)
	return rows
}

func leafRow(l *LeafView, owner string, depth int) Row {
	pct := 0
	if l.Done {
		pct = 100
	}
	return Row{
		Depth:   depth,
		Kind:    l.Kind,
		ID:      l.ID,
		OwnerID: owner,
		Label:   l.Label,
		Percent: pct,
		Done:    l.Done,
		Leaf:    l,
	}
}
