package domain

import "time"

// DateLayout is the calendar-date format used for streak start dates.
const DateLayout = "2006-01-02"

// GoalNode is a goal in the progress tree. Its children are nested goals,
// checklist leaves and streak leaves; each contributes one unit to the
// node's progress regardless of its own size.
type GoalNode struct {
	ID             string
	ParentID       *string // nil for root goals
	OwnerID        string
	Label          string
	ChildBars      []*GoalNode
	ChecklistItems []ChecklistLeaf
	StreakLeaves   []StreakLeaf
	Version        int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ChecklistLeaf is a binary completion unit.
type ChecklistLeaf struct {
	ID      string
	Label   string
	Checked bool
	Version int64
}

// StreakLeaf is complete once TargetDays whole days have passed since StartDate.
type StreakLeaf struct {
	ID         string
	Label      string
	StartDate  time.Time // calendar date at UTC midnight
	TargetDays int
	Version    int64
}

// Tree is the ordered forest of root goals visible to one owner scope.
type Tree struct {
	Roots []*GoalNode
}

// UnitCount returns the number of direct children of every kind.
func (n *GoalNode) UnitCount() int {
	return len(n.ChildBars) + len(n.ChecklistItems) + len(n.StreakLeaves)
}

// IsRoot reports whether the node has no parent.
func (n *GoalNode) IsRoot() bool {
	return n.ParentID == nil
}

// ParentIDOrEmpty returns the parent id, or "" for roots.
func (n *GoalNode) ParentIDOrEmpty() string {
	if n.ParentID == nil {
		return ""
	}
	return *n.ParentID
}

// Clone returns a deep copy of the node and its entire subtree.
func (n *GoalNode) Clone() *GoalNode {
	if n == nil {
		return nil
	}
	c := *n
	if n.ParentID != nil {
		pid := *n.ParentID
		c.ParentID = &pid
	}
	c.ChecklistItems = append([]ChecklistLeaf(nil), n.ChecklistItems...)
	c.StreakLeaves = append([]StreakLeaf(nil), n.StreakLeaves...)
	c.ChildBars = make([]*GoalNode, len(n.ChildBars))
	for i, child := range n.ChildBars {
		c.ChildBars[i] = child.Clone()
	}
	return &c
}

// Walk visits the node and its descendants depth-first, parents first.
// Returning false from fn stops descent into that node's children.
func (n *GoalNode) Walk(fn func(*GoalNode) bool) {
	if !fn(n) {
		return
	}
	for _, child := range n.ChildBars {
		child.Walk(fn)
	}
}

// ChecklistIndex returns the index of the checklist leaf with id, or -1.
func (n *GoalNode) ChecklistIndex(id string) int {
	for i := range n.ChecklistItems {
		if n.ChecklistItems[i].ID == id {
			return i
		}
	}
	return -1
}

// StreakIndex returns the index of the streak leaf with id, or -1.
func (n *GoalNode) StreakIndex(id string) int {
	for i := range n.StreakLeaves {
		if n.StreakLeaves[i].ID == id {
			return i
		}
	}
	return -1
}

// ChildIndex returns the index of the nested goal with id, or -1.
func (n *GoalNode) ChildIndex(id string) int {
	for i, c := range n.ChildBars {
		if c.ID == id {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy of the tree.
func (t *Tree) Clone() *Tree {
	if t == nil {
		return &Tree{}
	}
	out := &Tree{Roots: make([]*GoalNode, len(t.Roots))}
	for i, r := range t.Roots {
		out.Roots[i] = r.Clone()
	}
	return out
}

// Find returns the goal with id anywhere in the tree, or nil.
func (t *Tree) Find(id string) *GoalNode {
	var found *GoalNode
	for _, r := range t.Roots {
		r.Walk(func(n *GoalNode) bool {
			if found != nil {
				return false
			}
			if n.ID == id {
				found = n
				return false
			}
			return true
		})
		if found != nil {
			return found
		}
	}
	return nil
}

// Walk visits every goal of the tree, roots in order.
func (t *Tree) Walk(fn func(*GoalNode) bool) {
	for _, r := range t.Roots {
		r.Walk(fn)
	}
}

// ElapsedDays returns the number of whole days between the calendar date of
// start and now, both taken in UTC. It is negative for future start dates.
func ElapsedDays(start, now time.Time) int {
	s := CalendarDate(start)
	d := now.UTC().Sub(s)
	days := int(d / (24 * time.Hour))
	if d < 0 && d%(24*time.Hour) != 0 {
		days--
	}
	return days
}

// CalendarDate truncates t to midnight UTC of its calendar date.
func CalendarDate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.UTC)
}

// IsComplete reports whether the streak has reached its target as of now.
func (s StreakLeaf) IsComplete(now time.Time) bool {
	return ElapsedDays(s.StartDate, now) >= s.TargetDays
}
