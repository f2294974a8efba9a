package store

import (
	"fmt"

	"github.com/alexanderramin/goaltree/internal/domain"
)

// Undo reverts a single applied mutation.
type Undo func()

// InsertGoal appends a childless goal under parentID, or as a new root when
// parentID is nil. The goal's ParentID is set from parentID.
func (s *Store) InsertGoal(parentID *string, g *domain.GoalNode) (Undo, error) {
	if g.UnitCount() != 0 {
		return nil, fmt.Errorf("new goal %s must not carry children: %w", g.ID, domain.ErrInvariantViolation)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if g.ID == "" || s.idTakenLocked(g.ID) {
		return nil, fmt.Errorf("goal id %q already in use: %w", g.ID, domain.ErrInvariantViolation)
	}
	n := g.Clone()

	if parentID == nil {
		n.ParentID = nil
		s.roots = append(s.roots, n)
		s.nodes[n.ID] = n
		return s.undoInsertGoal(nil, n.ID), nil
	}

	parent, ok := s.nodes[*parentID]
	if !ok {
		return nil, fmt.Errorf("parent goal %s: %w", *parentID, domain.ErrNotFound)
	}
	pid := parent.ID
	n.ParentID = &pid
	parent.ChildBars = append(parent.ChildBars, n)
	s.nodes[n.ID] = n
	return s.undoInsertGoal(parent, n.ID), nil
}

func (s *Store) undoInsertGoal(parent *domain.GoalNode, id string) Undo {
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if parent == nil {
			s.roots = removeGoal(s.roots, id)
		} else {
			parent.ChildBars = removeGoal(parent.ChildBars, id)
		}
		delete(s.nodes, id)
	}
}

// InsertChecklist appends a checklist leaf to the goal parentID.
func (s *Store) InsertChecklist(parentID string, leaf domain.ChecklistLeaf) (Undo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	parent, ok := s.nodes[parentID]
	if !ok {
		return nil, fmt.Errorf("parent goal %s: %w", parentID, domain.ErrNotFound)
	}
	if leaf.ID == "" || s.idTakenLocked(leaf.ID) {
		return nil, fmt.Errorf("checklist id %q already in use: %w", leaf.ID, domain.ErrInvariantViolation)
	}
	parent.ChecklistItems = append(parent.ChecklistItems, leaf)
	s.leaves[leaf.ID] = leafRef{owner: parent.ID, kind: domain.KindChecklist}

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if i := parent.ChecklistIndex(leaf.ID); i >= 0 {
			parent.ChecklistItems = append(parent.ChecklistItems[:i:i], parent.ChecklistItems[i+1:]...)
		}
		delete(s.leaves, leaf.ID)
	}, nil
}

// InsertStreak appends a streak leaf to the goal parentID.
func (s *Store) InsertStreak(parentID string, leaf domain.StreakLeaf) (Undo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	parent, ok := s.nodes[parentID]
	if !ok {
		return nil, fmt.Errorf("parent goal %s: %w", parentID, domain.ErrNotFound)
	}
	if leaf.ID == "" || s.idTakenLocked(leaf.ID) {
		return nil, fmt.Errorf("streak id %q already in use: %w", leaf.ID, domain.ErrInvariantViolation)
	}
	parent.StreakLeaves = append(parent.StreakLeaves, leaf)
	s.leaves[leaf.ID] = leafRef{owner: parent.ID, kind: domain.KindStreak}

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if i := parent.StreakIndex(leaf.ID); i >= 0 {
			parent.StreakLeaves = append(parent.StreakLeaves[:i:i], parent.StreakLeaves[i+1:]...)
		}
		delete(s.leaves, leaf.ID)
	}, nil
}

// GoalPatch is the mutable, non-structural part of a goal.
type GoalPatch struct {
	Label   string
	Version int64
}

// UpdateGoal applies fn to the goal's mutable fields. Identity, parentage and
// children cannot be changed this way.
func (s *Store) UpdateGoal(id string, fn func(*GoalPatch)) (domain.GoalNode, Undo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.nodes[id]
	if !ok {
		return domain.GoalNode{}, nil, fmt.Errorf("goal %s: %w", id, domain.ErrNotFound)
	}
	before := GoalPatch{Label: n.Label, Version: n.Version}
	after := before
	fn(&after)
	n.Label, n.Version = after.Label, after.Version

	updated := *n
	updated.ChildBars, updated.ChecklistItems, updated.StreakLeaves = nil, nil, nil
	if n.ParentID != nil {
		pid := *n.ParentID
		updated.ParentID = &pid
	}
	return updated, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		n.Label, n.Version = before.Label, before.Version
	}, nil
}

// UpdateChecklist applies fn to the checklist leaf with id. The leaf id is
// preserved even if fn changes it.
func (s *Store) UpdateChecklist(id string, fn func(*domain.ChecklistLeaf)) (domain.ChecklistLeaf, Undo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	owner, i, err := s.findLeafLocked(id, domain.KindChecklist)
	if err != nil {
		return domain.ChecklistLeaf{}, nil, err
	}
	before := owner.ChecklistItems[i]
	after := before
	fn(&after)
	after.ID = before.ID
	owner.ChecklistItems[i] = after

	return after, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if j := owner.ChecklistIndex(id); j >= 0 {
			owner.ChecklistItems[j] = before
		}
	}, nil
}

// UpdateStreak applies fn to the streak leaf with id. The leaf id is
// preserved even if fn changes it.
func (s *Store) UpdateStreak(id string, fn func(*domain.StreakLeaf)) (domain.StreakLeaf, Undo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	owner, i, err := s.findLeafLocked(id, domain.KindStreak)
	if err != nil {
		return domain.StreakLeaf{}, nil, err
	}
	before := owner.StreakLeaves[i]
	after := before
	fn(&after)
	after.ID = before.ID
	owner.StreakLeaves[i] = after

	return after, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if j := owner.StreakIndex(id); j >= 0 {
			owner.StreakLeaves[j] = before
		}
	}, nil
}

// RemoveSubtree removes the goal id together with every descendant goal and
// leaf in one step. It returns the removed ids in post-order (descendants
// before ancestors, leaves before their owner).
func (s *Store) RemoveSubtree(id string) ([]string, Undo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.nodes[id]
	if !ok {
		return nil, nil, fmt.Errorf("goal %s: %w", id, domain.ErrNotFound)
	}
	removed := collectPostOrder(n)

	var parent *domain.GoalNode
	var pos int
	if n.ParentID == nil {
		pos = indexOfGoal(s.roots, id)
	} else {
		parent = s.nodes[*n.ParentID]
		if parent == nil {
			return nil, nil, fmt.Errorf("goal %s has dangling parent %s: %w", id, *n.ParentID, domain.ErrInvariantViolation)
		}
		pos = parent.ChildIndex(id)
	}
	if pos < 0 {
		return nil, nil, fmt.Errorf("goal %s missing from its parent collection: %w", id, domain.ErrInvariantViolation)
	}

	// Everything below is infallible, so the removal is all-or-nothing.
	refs := make(map[string]leafRef)
	for _, rid := range removed {
		if ref, ok := s.leaves[rid]; ok {
			refs[rid] = ref
			delete(s.leaves, rid)
			continue
		}
		delete(s.nodes, rid)
	}
	if parent == nil {
		s.roots = removeGoal(s.roots, id)
	} else {
		parent.ChildBars = removeGoal(parent.ChildBars, id)
	}

	return removed, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if parent == nil {
			s.roots = insertGoal(s.roots, pos, n)
		} else {
			parent.ChildBars = insertGoal(parent.ChildBars, pos, n)
		}
		n.Walk(func(g *domain.GoalNode) bool {
			s.nodes[g.ID] = g
			return true
		})
		for rid, ref := range refs {
			s.leaves[rid] = ref
		}
	}, nil
}

// RemoveLeaf removes a single checklist or streak leaf from its owner.
func (s *Store) RemoveLeaf(id string) (domain.EntityKind, string, Undo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ref, ok := s.leaves[id]
	if !ok {
		return "", "", nil, fmt.Errorf("leaf %s: %w", id, domain.ErrNotFound)
	}
	owner, i, err := s.findLeafLocked(id, ref.kind)
	if err != nil {
		return "", "", nil, err
	}
	delete(s.leaves, id)

	switch ref.kind {
	case domain.KindChecklist:
		leaf := owner.ChecklistItems[i]
		owner.ChecklistItems = append(owner.ChecklistItems[:i:i], owner.ChecklistItems[i+1:]...)
		return ref.kind, owner.ID, func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			owner.ChecklistItems = append(owner.ChecklistItems[:i:i], append([]domain.ChecklistLeaf{leaf}, owner.ChecklistItems[i:]...)...)
			s.leaves[id] = ref
		}, nil
	default:
		leaf := owner.StreakLeaves[i]
		owner.StreakLeaves = append(owner.StreakLeaves[:i:i], owner.StreakLeaves[i+1:]...)
		return ref.kind, owner.ID, func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			owner.StreakLeaves = append(owner.StreakLeaves[:i:i], append([]domain.StreakLeaf{leaf}, owner.StreakLeaves[i:]...)...)
			s.leaves[id] = ref
		}, nil
	}
}

// collectPostOrder lists every id in n's subtree, descendants first.
func collectPostOrder(n *domain.GoalNode) []string {
	var ids []string
	var visit func(g *domain.GoalNode)
	visit = func(g *domain.GoalNode) {
		for _, child := range g.ChildBars {
			visit(child)
		}
		for _, st := range g.StreakLeaves {
			ids = append(ids, st.ID)
		}
		for _, c := range g.ChecklistItems {
			ids = append(ids, c.ID)
		}
		ids = append(ids, g.ID)
	}
	visit(n)
	return ids
}

func indexOfGoal(list []*domain.GoalNode, id string) int {
	for i, g := range list {
		if g.ID == id {
			return i
		}
	}
	return -1
}

func removeGoal(list []*domain.GoalNode, id string) []*domain.GoalNode {
	i := indexOfGoal(list, id)
	if i < 0 {
		return list
	}
	return append(list[:i:i], list[i+1:]...)
}

func insertGoal(list []*domain.GoalNode, pos int, g *domain.GoalNode) []*domain.GoalNode {
	if pos > len(list) {
		pos = len(list)
	}
	out := make([]*domain.GoalNode, 0, len(list)+1)
	out = append(out, list[:pos]...)
	out = append(out, g)
	return append(out, list[pos:]...)
}
