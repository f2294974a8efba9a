// Package store owns the canonical in-memory goal tree.
//
// All writes go through Store methods, each of which holds the write lock for
// its whole duration, so readers never observe a half-applied insert or
// cascade removal. Readers receive deep copies.
//
// Every mutating method returns an undo function that restores the exact
// previous state. Callers that persist changes elsewhere use it to roll back
// when the persist fails. Undo is only safe while the caller holds a subtree
// lock (see Lock) covering the mutated collection.
package store

import (
	"fmt"
	"sync"

	"github.com/alexanderramin/goaltree/internal/domain"
)

// RootScope is the lock key for the forest's list of root goals. Holding it
// does not cover the goals inside any tree.
const RootScope = ""

type leafRef struct {
	owner string
	kind  domain.EntityKind
}

// Store holds one goal forest.
type Store struct {
	mu     sync.RWMutex
	roots  []*domain.GoalNode
	nodes  map[string]*domain.GoalNode
	leaves map[string]leafRef
	locked map[string]struct{}
}

// New returns an empty store.
func New() *Store {
	return &Store{
		nodes:  make(map[string]*domain.GoalNode),
		leaves: make(map[string]leafRef),
		locked: make(map[string]struct{}),
	}
}

// Load replaces the store contents with a deep copy of tree after checking
// its structural invariants. On error the store is unchanged.
func (s *Store) Load(tree *domain.Tree) error {
	if tree == nil {
		tree = &domain.Tree{}
	}
	cp := tree.Clone()
	nodes := make(map[string]*domain.GoalNode)
	leaves := make(map[string]leafRef)

	seen := func(id string) bool {
		if _, ok := nodes[id]; ok {
			return true
		}
		_, ok := leaves[id]
		return ok
	}

	var index func(n *domain.GoalNode, parent *domain.GoalNode) error
	index = func(n *domain.GoalNode, parent *domain.GoalNode) error {
		if n.ID == "" {
			return fmt.Errorf("goal without id: %w", domain.ErrInvariantViolation)
		}
		if seen(n.ID) {
			return fmt.Errorf("duplicate id %s: %w", n.ID, domain.ErrInvariantViolation)
		}
		switch {
		case parent == nil && n.ParentID != nil:
			return fmt.Errorf("root goal %s has parent %s: %w", n.ID, *n.ParentID, domain.ErrInvariantViolation)
		case parent != nil && (n.ParentID == nil || *n.ParentID != parent.ID):
			return fmt.Errorf("goal %s is nested under %s but points elsewhere: %w", n.ID, parent.ID, domain.ErrInvariantViolation)
		}
		nodes[n.ID] = n
		for _, c := range n.ChecklistItems {
			if c.ID == "" || seen(c.ID) {
				return fmt.Errorf("checklist leaf id %q reused: %w", c.ID, domain.ErrInvariantViolation)
			}
			leaves[c.ID] = leafRef{owner: n.ID, kind: domain.KindChecklist}
		}
		for _, st := range n.StreakLeaves {
			if st.ID == "" || seen(st.ID) {
				return fmt.Errorf("streak leaf id %q reused: %w", st.ID, domain.ErrInvariantViolation)
			}
			leaves[st.ID] = leafRef{owner: n.ID, kind: domain.KindStreak}
		}
		for _, child := range n.ChildBars {
			if err := index(child, n); err != nil {
				return err
			}
		}
		return nil
	}
	for _, r := range cp.Roots {
		if err := index(r, nil); err != nil {
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.roots = cp.Roots
	s.nodes = nodes
	s.leaves = leaves
	return nil
}

// Snapshot returns a deep copy of the whole forest.
func (s *Store) Snapshot() *domain.Tree {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return (&domain.Tree{Roots: s.roots}).Clone()
}

// Goal returns a deep copy of the goal with id and its subtree.
func (s *Store) Goal(id string) (*domain.GoalNode, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.nodes[id]
	if !ok {
		return nil, fmt.Errorf("goal %s: %w", id, domain.ErrNotFound)
	}
	return n.Clone(), nil
}

// GoalOwner returns the owner id of the goal with id.
func (s *Store) GoalOwner(id string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.nodes[id]
	if !ok {
		return "", fmt.Errorf("goal %s: %w", id, domain.ErrNotFound)
	}
	return n.OwnerID, nil
}

// Checklist returns the checklist leaf with id and its owning goal id.
func (s *Store) Checklist(id string) (domain.ChecklistLeaf, string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	owner, i, err := s.findLeafLocked(id, domain.KindChecklist)
	if err != nil {
		return domain.ChecklistLeaf{}, "", err
	}
	return owner.ChecklistItems[i], owner.ID, nil
}

// Streak returns the streak leaf with id and its owning goal id.
func (s *Store) Streak(id string) (domain.StreakLeaf, string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	owner, i, err := s.findLeafLocked(id, domain.KindStreak)
	if err != nil {
		return domain.StreakLeaf{}, "", err
	}
	return owner.StreakLeaves[i], owner.ID, nil
}

// Kind reports which kind of entity id refers to.
func (s *Store) Kind(id string) (domain.EntityKind, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.nodes[id]; ok {
		return domain.KindGoal, nil
	}
	if ref, ok := s.leaves[id]; ok {
		return ref.kind, nil
	}
	return "", fmt.Errorf("entity %s: %w", id, domain.ErrNotFound)
}

// Contains reports whether any goal or leaf has id.
func (s *Store) Contains(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.idTakenLocked(id)
}

func (s *Store) idTakenLocked(id string) bool {
	if _, ok := s.nodes[id]; ok {
		return true
	}
	_, ok := s.leaves[id]
	return ok
}

func (s *Store) findLeafLocked(id string, kind domain.EntityKind) (*domain.GoalNode, int, error) {
	ref, ok := s.leaves[id]
	if !ok || ref.kind != kind {
		return nil, -1, fmt.Errorf("%s leaf %s: %w", kind, id, domain.ErrNotFound)
	}
	owner := s.nodes[ref.owner]
	var i int
	if kind == domain.KindChecklist {
		i = owner.ChecklistIndex(id)
	} else {
		i = owner.StreakIndex(id)
	}
	if i < 0 {
		return nil, -1, fmt.Errorf("%s leaf %s missing from owner %s: %w", kind, id, ref.owner, domain.ErrInvariantViolation)
	}
	return owner, i, nil
}
