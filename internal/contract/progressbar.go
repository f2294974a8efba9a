// Package contract defines the JSON shapes exchanged over /progressBars and
// their conversion to and from domain types.
package contract

import (
	"fmt"

	"github.com/alexanderramin/goaltree/internal/domain"
)

// ProgressBar is one goal with its nested children as served by
// GET /progressBars.
type ProgressBar struct {
	GoalID       string        `json:"goalId"`
	ParentGoalID *string       `json:"parentGoalId"`
	OwnerID      string        `json:"ownerId,omitempty"`
	Label        string        `json:"label"`
	Version      int64         `json:"version"`
	ChildBars    []ProgressBar `json:"childBars"`
	SubGoals     []SubGoal     `json:"subGoals"`
	DayCounters  []DayCounter  `json:"dayCounters"`
}

// SubGoal is a checklist leaf.
type SubGoal struct {
	ID      string `json:"id"`
	Label   string `json:"label"`
	Checked bool   `json:"checked"`
	Version int64  `json:"version"`
}

// DayCounter is a streak leaf. StartingDate is YYYY-MM-DD.
type DayCounter struct {
	ID           string `json:"id"`
	Label        string `json:"label"`
	StartingDate string `json:"startingDate"`
	DayGoal      int    `json:"dayGoal"`
	Version      int64  `json:"version"`
}

type TreeResponse struct {
	ProgressBars []ProgressBar `json:"progressBars"`
}

// FromTree converts a domain forest to its wire form.
func FromTree(t *domain.Tree) TreeResponse {
	out := TreeResponse{ProgressBars: []ProgressBar{}}
	if t == nil {
		return out
	}
	for _, r := range t.Roots {
		out.ProgressBars = append(out.ProgressBars, fromGoal(r))
	}
	return out
}

func fromGoal(n *domain.GoalNode) ProgressBar {
	pb := ProgressBar{
		GoalID:       n.ID,
		ParentGoalID: n.ParentID,
		OwnerID:      n.OwnerID,
		Label:        n.Label,
		Version:      n.Version,
		ChildBars:    make([]ProgressBar, 0, len(n.ChildBars)),
		SubGoals:     make([]SubGoal, 0, len(n.ChecklistItems)),
		DayCounters:  make([]DayCounter, 0, len(n.StreakLeaves)),
	}
	for _, c := range n.ChildBars {
		pb.ChildBars = append(pb.ChildBars, fromGoal(c))
	}
	for _, c := range n.ChecklistItems {
		pb.SubGoals = append(pb.SubGoals, SubGoal{ID: c.ID, Label: c.Label, Checked: c.Checked, Version: c.Version})
	}
	for _, s := range n.StreakLeaves {
		pb.DayCounters = append(pb.DayCounters, DayCounter{
			ID:           s.ID,
			Label:        s.Label,
			StartingDate: s.StartDate.Format(domain.DateLayout),
			DayGoal:      s.TargetDays,
			Version:      s.Version,
		})
	}
	return pb
}

// ToTree converts the wire form back into a domain forest.
func (r TreeResponse) ToTree() (*domain.Tree, error) {
	t := &domain.Tree{}
	for _, pb := range r.ProgressBars {
		n, err := pb.toGoal()
		if err != nil {
			return nil, err
		}
		t.Roots = append(t.Roots, n)
	}
	return t, nil
}

func (pb ProgressBar) toGoal() (*domain.GoalNode, error) {
	n := &domain.GoalNode{
		ID:        pb.GoalID,
		ParentID:  pb.ParentGoalID,
		OwnerID:   pb.OwnerID,
		Label:     pb.Label,
		Version:   pb.Version,
		ChildBars: make([]*domain.GoalNode, 0, len(pb.ChildBars)),
	}
	for _, c := range pb.ChildBars {
		child, err := c.toGoal()
		if err != nil {
			return nil, err
		}
		n.ChildBars = append(n.ChildBars, child)
	}
	for _, c := range pb.SubGoals {
		n.ChecklistItems = append(n.ChecklistItems, domain.ChecklistLeaf{
			ID: c.ID, Label: c.Label, Checked: c.Checked, Version: c.Version,
		})
	}
	for _, d := range pb.DayCounters {
		start, err := domain.ParseDate(d.StartingDate)
		if err != nil {
			return nil, fmt.Errorf("day counter %s: bad starting date %q: %w", d.ID, d.StartingDate, domain.ErrInvariantViolation)
		}
		n.StreakLeaves = append(n.StreakLeaves, domain.StreakLeaf{
			ID: d.ID, Label: d.Label, StartDate: start, TargetDays: d.DayGoal, Version: d.Version,
		})
	}
	return n, nil
}
