// Package view turns a goal tree plus per-node UI state into the structure a
// renderer walks. UI state lives here, keyed by node id, never on the domain
// nodes themselves.
package view

import (
	"slices"
	"sync"
	"time"

	"github.com/alexanderramin/goaltree/internal/domain"
	"github.com/alexanderramin/goaltree/internal/progress"
)

// UIState is the display-only state of one goal.
type UIState struct {
	Expanded bool
	MenuOpen bool
}

// LeafView is a checklist item or streak as rendered.
type LeafView struct {
	ID    string
	Kind  domain.EntityKind
	Label string
	Done  bool

	// Streaks only.
	StartDate   time.Time
	ElapsedDays int
	TargetDays  int
}

// NodeView is one goal as rendered. Leaves and children are filled only when
// the node is expanded; the counts are always set.
type NodeView struct {
	ID              string
	ParentID        *string
	Label           string
	ProgressPercent int
	Expanded        bool
	MenuOpen        bool

	StreakCount    int
	ChecklistCount int
	ChildCount     int

	Streaks   []LeafView
	Checklist []LeafView
	Children  []NodeView
}

// Projector owns the UI state of every goal it has been told about. Nodes
// start collapsed with their menu closed.
type Projector struct {
	mu    sync.RWMutex
	state map[string]UIState
}

func NewProjector() *Projector {
	return &Projector{state: make(map[string]UIState)}
}

// State returns the UI state of id.
func (p *Projector) State(id string) UIState {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state[id]
}

func (p *Projector) update(id string, fn func(*UIState)) UIState {
	p.mu.Lock()
	defer p.mu.Unlock()
	s := p.state[id]
	fn(&s)
	if s == (UIState{}) {
		delete(p.state, id)
	} else {
		p.state[id] = s
	}
	return s
}

// ToggleExpanded flips the expansion of id and returns the new value.
func (p *Projector) ToggleExpanded(id string) bool {
	return p.update(id, func(s *UIState) { s.Expanded = !s.Expanded }).Expanded
}

func (p *Projector) SetExpanded(id string, expanded bool) {
	p.update(id, func(s *UIState) { s.Expanded = expanded })
}

// ToggleMenu flips the action menu of id and returns the new value.
func (p *Projector) ToggleMenu(id string) bool {
	return p.update(id, func(s *UIState) { s.MenuOpen = !s.MenuOpen }).MenuOpen
}

func (p *Projector) CloseMenu(id string) {
	p.update(id, func(s *UIState) { s.MenuOpen = false })
}

// ExpandedIDs lists the expanded goals in sorted order.
func (p *Projector) ExpandedIDs() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	var ids []string
	for id, s := range p.state {
		if s.Expanded {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids
}

// Restore expands every id in ids. Other state is left alone.
func (p *Projector) Restore(ids []string) {
	for _, id := range ids {
		p.SetExpanded(id, true)
	}
}

// Prune forgets state for goals no longer in tree and returns how many
// entries were dropped.
func (p *Projector) Prune(tree *domain.Tree) int {
	live := make(map[string]struct{})
	if tree != nil {
		tree.Walk(func(n *domain.GoalNode) bool {
			live[n.ID] = struct{}{}
			return true
		})
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	dropped := 0
	for id := range p.state {
		if _, ok := live[id]; !ok {
			delete(p.state, id)
			dropped++
		}
	}
	return dropped
}

// Project renders the roots of tree. Percentages are computed against now once
// per call.
func (p *Projector) Project(tree *domain.Tree, now time.Time) []NodeView {
	if tree == nil {
		return nil
	}
	return p.ProjectUnder(tree.Roots, "", now)
}

// ProjectUnder renders nodes in the context of parent goal parentContext
// ("" for the top level). A node whose ParentID is set and names a different
// goal is skipped. The slice is not modified.
func (p *Projector) ProjectUnder(nodes []*domain.GoalNode, parentContext string, now time.Time) []NodeView {
	pcts := progress.ComputeTree(&domain.Tree{Roots: nodes}, now)
	return p.projectUnder(nodes, parentContext, now, pcts)
}

func (p *Projector) projectUnder(nodes []*domain.GoalNode, parentContext string, now time.Time, pcts map[string]int) []NodeView {
	out := make([]NodeView, 0, len(nodes))
	for _, n := range nodes {
		if n.ParentID != nil && *n.ParentID != parentContext {
			continue
		}
		out = append(out, p.node(n, now, pcts))
	}
	return out
}

func (p *Projector) node(n *domain.GoalNode, now time.Time, pcts map[string]int) NodeView {
	st := p.State(n.ID)
	v := NodeView{
		ID:              n.ID,
		ParentID:        n.ParentID,
		Label:           n.Label,
		ProgressPercent: pcts[n.ID],
		Expanded:        st.Expanded,
		MenuOpen:        st.MenuOpen,
		StreakCount:     len(n.StreakLeaves),
		ChecklistCount:  len(n.ChecklistItems),
		ChildCount:      len(n.ChildBars),
	}
	if !st.Expanded {
		return v
	}
	for _, s := range n.StreakLeaves {
		v.Streaks = append(v.Streaks, LeafView{
			ID:          s.ID,
			Kind:        domain.KindStreak,
			Label:       s.Label,
			Done:        s.IsComplete(now),
			StartDate:   s.StartDate,
			ElapsedDays: domain.ElapsedDays(s.StartDate, now),
			TargetDays:  s.TargetDays,
		})
	}
	for _, c := range n.ChecklistItems {
		v.Checklist = append(v.Checklist, LeafView{
			ID:    c.ID,
			Kind:  domain.KindChecklist,
			Label: c.Label,
			Done:  c.Checked,
		})
	}
	v.Children = p.projectUnder(n.ChildBars, n.ID, now, pcts)
	return v
}
