package store

import (
	"fmt"

	"github.com/alexanderramin/goaltree/internal/domain"
)

// forestScope is held by LockForest. It is not a valid goal id because Lock
// only accepts ids present in the store.
const forestScope = "\x00forest"

// Lock marks the subtree rooted at id as having a mutation in flight and
// returns the function that releases it. It fails with ErrBusy when id lies
// inside an already locked subtree or its own subtree contains a locked goal,
// and with ErrNotFound when id is neither a goal nor RootScope.
//
// RootScope guards only the list of root goals: it conflicts with another
// RootScope holder and with LockForest, never with locks inside a tree.
//
// Locks exclude writers only. Snapshot and the other read methods never wait
// on them.
func (s *Store) Lock(id string) (func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id != RootScope {
		if _, ok := s.nodes[id]; !ok {
			return nil, fmt.Errorf("goal %s: %w", id, domain.ErrNotFound)
		}
	}
	if s.conflictsLocked(id) {
		return nil, fmt.Errorf("locking %s: %w", lockName(id), domain.ErrBusy)
	}
	return s.holdLocked(id), nil
}

// LockForest locks the whole store. It fails with ErrBusy while any other
// lock is held.
func (s *Store) LockForest() (func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.locked) > 0 {
		return nil, fmt.Errorf("locking %s: %w", lockName(forestScope), domain.ErrBusy)
	}
	return s.holdLocked(forestScope), nil
}

// LockOwner locks the goal that owns leaf id.
func (s *Store) LockOwner(leafID string) (string, func(), error) {
	s.mu.RLock()
	ref, ok := s.leaves[leafID]
	s.mu.RUnlock()
	if !ok {
		return "", nil, fmt.Errorf("leaf %s: %w", leafID, domain.ErrNotFound)
	}
	release, err := s.Lock(ref.owner)
	if err != nil {
		return "", nil, err
	}
	// The owner cannot change while it is locked, but the leaf may have been
	// removed between the lookup and the lock.
	s.mu.RLock()
	cur, still := s.leaves[leafID]
	s.mu.RUnlock()
	if !still || cur.owner != ref.owner {
		release()
		return "", nil, fmt.Errorf("leaf %s: %w", leafID, domain.ErrNotFound)
	}
	return ref.owner, release, nil
}

// LockParent locks the collection that holds goal id together with id's own
// subtree. For a child goal that is the parent goal's subtree; for a root it
// is RootScope plus the root itself, so other trees stay writable.
func (s *Store) LockParent(id string) (func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.nodes[id]
	if !ok {
		return nil, fmt.Errorf("goal %s: %w", id, domain.ErrNotFound)
	}
	keys := []string{RootScope, id}
	if n.ParentID != nil {
		keys = []string{*n.ParentID}
	}
	for _, k := range keys {
		if s.conflictsLocked(k) {
			return nil, fmt.Errorf("locking %s: %w", lockName(k), domain.ErrBusy)
		}
	}
	releases := make([]func(), len(keys))
	for i, k := range keys {
		releases[i] = s.holdLocked(k)
	}
	return func() {
		for _, r := range releases {
			r()
		}
	}, nil
}

// conflictsLocked reports whether locking id would overlap a held lock.
// Callers hold s.mu.
func (s *Store) conflictsLocked(id string) bool {
	if _, ok := s.locked[forestScope]; ok {
		return true
	}
	if id == RootScope {
		_, ok := s.locked[RootScope]
		return ok
	}
	for held := range s.locked {
		if held == RootScope {
			continue
		}
		if held == id || s.isAncestor(held, id) || s.isAncestor(id, held) {
			return true
		}
	}
	return false
}

// holdLocked records id as locked and returns its idempotent release.
// Callers hold s.mu.
func (s *Store) holdLocked(id string) func() {
	s.locked[id] = struct{}{}
	released := false
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if !released {
			delete(s.locked, id)
			released = true
		}
	}
}

// isAncestor reports whether anc is a strict ancestor of goal id.
// Callers hold s.mu.
func (s *Store) isAncestor(anc, id string) bool {
	n, ok := s.nodes[id]
	for ok && n.ParentID != nil {
		if *n.ParentID == anc {
			return true
		}
		n, ok = s.nodes[*n.ParentID]
	}
	return false
}

func lockName(id string) string {
	switch id {
	case RootScope:
		return "root goals"
	case forestScope:
		return "goal tree"
	}
	return id
}
