// Package gatewaytest provides an in-memory Gateway for tests.
package gatewaytest

import (
	"context"
	"fmt"
	"sync"

	"github.com/alexanderramin/goaltree/internal/domain"
	"github.com/alexanderramin/goaltree/internal/gateway"
	"github.com/alexanderramin/goaltree/internal/store"
)

var _ gateway.Gateway = (*Memory)(nil)

// Call records one request made to a Memory gateway.
type Call struct {
	Op       string // "load", "add", "edit" or "delete"
	ID       string
	ParentID string
	Kind     domain.EntityKind
}

// Memory is an in-process gateway that keeps its own copy of the tree. Hook,
// when set, runs before every call and can fail it or block it.
type Memory struct {
	state *store.Store

	mu    sync.Mutex
	calls []Call
	Hook  func(ctx context.Context, c Call) error
}

// NewMemory returns a Memory gateway seeded with a copy of tree.
func NewMemory(tree *domain.Tree) (*Memory, error) {
	m := &Memory{state: store.New()}
	if err := m.state.Load(tree); err != nil {
		return nil, err
	}
	return m, nil
}

// Calls returns the calls made so far.
func (m *Memory) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Call(nil), m.calls...)
}

// Tree returns a copy of the persisted tree.
func (m *Memory) Tree() *domain.Tree {
	return m.state.Snapshot()
}

// FailNext makes the next call of op fail with err.
func (m *Memory) FailNext(op string, err error) {
	var once sync.Once
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Hook = func(_ context.Context, c Call) error {
		if c.Op != op {
			return nil
		}
		var out error
		once.Do(func() { out = err })
		return out
	}
}

func (m *Memory) record(ctx context.Context, c Call) error {
	m.mu.Lock()
	m.calls = append(m.calls, c)
	hook := m.Hook
	m.mu.Unlock()
	if hook != nil {
		return hook(ctx, c)
	}
	return nil
}

func (m *Memory) LoadTree(ctx context.Context, scope gateway.Scope) (*domain.Tree, error) {
	if err := m.record(ctx, Call{Op: "load", ID: scope.OwnerID}); err != nil {
		return nil, err
	}
	snap := m.state.Snapshot()
	if scope.All || scope.OwnerID == "" {
		return snap, nil
	}
	out := &domain.Tree{}
	for _, r := range snap.Roots {
		if r.OwnerID == scope.OwnerID {
			out.Roots = append(out.Roots, r)
		}
	}
	return out, nil
}

func (m *Memory) PersistAdd(ctx context.Context, parentID string, e domain.Entity) (gateway.Result, error) {
	if err := m.record(ctx, Call{Op: "add", ID: e.ID(), ParentID: parentID, Kind: e.Kind}); err != nil {
		return gateway.Result{}, err
	}
	if err := e.Validate(); err != nil {
		return gateway.Result{}, err
	}
	if m.state.Contains(e.ID()) {
		return gateway.Result{}, fmt.Errorf("id %s already in use: %w", e.ID(), domain.ErrConflict)
	}
	var err error
	switch e.Kind {
	case domain.KindGoal:
		g := *e.Goal
		g.Version = 1
		var parent *string
		if parentID != "" {
			parent = &parentID
		}
		_, err = m.state.InsertGoal(parent, &g)
	case domain.KindChecklist:
		leaf := *e.Checklist
		leaf.Version = 1
		_, err = m.state.InsertChecklist(parentID, leaf)
	case domain.KindStreak:
		leaf := *e.Streak
		leaf.Version = 1
		_, err = m.state.InsertStreak(parentID, leaf)
	}
	if err != nil {
		return gateway.Result{}, err
	}
	return gateway.Result{ID: e.ID(), Version: 1}, nil
}

func (m *Memory) PersistEdit(ctx context.Context, e domain.Entity) (gateway.Result, error) {
	if err := m.record(ctx, Call{Op: "edit", ID: e.ID(), Kind: e.Kind}); err != nil {
		return gateway.Result{}, err
	}
	if err := e.Validate(); err != nil {
		return gateway.Result{}, err
	}
	expected := e.Version()
	stale := func(id string, current int64) error {
		return fmt.Errorf("%s %s is at version %d, not %d: %w", e.Kind, id, current, expected, domain.ErrConflict)
	}

	var version int64
	switch e.Kind {
	case domain.KindGoal:
		cur, err := m.state.Goal(e.Goal.ID)
		if err != nil {
			return gateway.Result{}, err
		}
		if expected != 0 && cur.Version != expected {
			return gateway.Result{}, stale(cur.ID, cur.Version)
		}
		version = cur.Version + 1
		_, _, err = m.state.UpdateGoal(e.Goal.ID, func(p *store.GoalPatch) {
			p.Label, p.Version = e.Goal.Label, version
		})
		if err != nil {
			return gateway.Result{}, err
		}
	case domain.KindChecklist:
		cur, _, err := m.state.Checklist(e.Checklist.ID)
		if err != nil {
			return gateway.Result{}, err
		}
		if expected != 0 && cur.Version != expected {
			return gateway.Result{}, stale(cur.ID, cur.Version)
		}
		version = cur.Version + 1
		next := *e.Checklist
		next.Version = version
		if _, _, err := m.state.UpdateChecklist(next.ID, func(l *domain.ChecklistLeaf) { *l = next }); err != nil {
			return gateway.Result{}, err
		}
	case domain.KindStreak:
		cur, _, err := m.state.Streak(e.Streak.ID)
		if err != nil {
			return gateway.Result{}, err
		}
		if expected != 0 && cur.Version != expected {
			return gateway.Result{}, stale(cur.ID, cur.Version)
		}
		version = cur.Version + 1
		next := *e.Streak
		next.Version = version
		if _, _, err := m.state.UpdateStreak(next.ID, func(l *domain.StreakLeaf) { *l = next }); err != nil {
			return gateway.Result{}, err
		}
	}
	return gateway.Result{ID: e.ID(), Version: version}, nil
}

func (m *Memory) PersistDelete(ctx context.Context, id string) (gateway.Result, error) {
	kind, err := m.state.Kind(id)
	if err != nil {
		_ = m.record(ctx, Call{Op: "delete", ID: id})
		return gateway.Result{}, err
	}
	if err := m.record(ctx, Call{Op: "delete", ID: id, Kind: kind}); err != nil {
		return gateway.Result{}, err
	}
	if kind == domain.KindGoal {
		_, _, err = m.state.RemoveSubtree(id)
	} else {
		_, _, _, err = m.state.RemoveLeaf(id)
	}
	if err != nil {
		return gateway.Result{}, err
	}
	return gateway.Result{ID: id}, nil
}
