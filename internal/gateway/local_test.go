package gateway

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alexanderramin/goaltree/internal/domain"
	"github.com/alexanderramin/goaltree/internal/repository"
	"github.com/alexanderramin/goaltree/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLocal(t *testing.T, p domain.Principal) (*Local, *repository.SQLiteUserRepo) {
	t.Helper()
	database := testutil.NewTestDB(t)
	users := repository.NewSQLiteUserRepo(database)
	for _, u := range []*domain.User{
		testutil.NewTestUser("alice", domain.RoleUser),
		testutil.NewTestUser("bob", domain.RoleUser),
	} {
		require.NoError(t, users.Create(context.Background(), u))
	}
	return NewLocal(database, testutil.NewTestUoW(database), p), users
}

var alice = domain.Principal{UserID: "alice", Role: domain.RoleUser}

func goalEntity(id, label string) domain.Entity {
	return domain.GoalEntity(&domain.GoalNode{ID: id, Label: label})
}

func TestLocal_AddLoadEditDelete(t *testing.T) {
	g, _ := newLocal(t, alice)
	ctx := context.Background()

	res, err := g.PersistAdd(ctx, "", goalEntity("fit", "Get fit"))
	require.NoError(t, err)
	assert.Equal(t, Result{ID: "fit", Version: 1}, res)

	_, err = g.PersistAdd(ctx, "fit", goalEntity("run", "Run"))
	require.NoError(t, err)
	_, err = g.PersistAdd(ctx, "run", domain.ChecklistEntity(domain.ChecklistLeaf{ID: "c1", Label: "5k"}))
	require.NoError(t, err)
	start := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	_, err = g.PersistAdd(ctx, "fit", domain.StreakEntity(domain.StreakLeaf{ID: "s1", Label: "Stretch", StartDate: start, TargetDays: 14}))
	require.NoError(t, err)

	tree, err := g.LoadTree(ctx, Scope{})
	require.NoError(t, err)
	require.Len(t, tree.Roots, 1)
	fit := tree.Roots[0]
	assert.Equal(t, "alice", fit.OwnerID)
	require.Len(t, fit.ChildBars, 1)
	assert.Equal(t, "alice", fit.ChildBars[0].OwnerID)
	require.Len(t, fit.StreakLeaves, 1)
	assert.Equal(t, start, fit.StreakLeaves[0].StartDate)

	res, err = g.PersistEdit(ctx, domain.ChecklistEntity(domain.ChecklistLeaf{ID: "c1", Label: "5k", Checked: true, Version: 1}))
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.Version)

	_, err = g.PersistDelete(ctx, "fit")
	require.NoError(t, err)
	tree, err = g.LoadTree(ctx, Scope{})
	require.NoError(t, err)
	assert.Empty(t, tree.Roots, "cascade removed the subtree")
}

func TestLocal_ErrorsMapToDomain(t *testing.T) {
	g, _ := newLocal(t, alice)
	ctx := context.Background()
	_, err := g.PersistAdd(ctx, "", goalEntity("fit", "Get fit"))
	require.NoError(t, err)

	tests := []struct {
		name string
		call func() error
		want error
	}{
		{"add under missing parent", func() error {
			_, err := g.PersistAdd(ctx, "ghost", goalEntity("x", "X"))
			return err
		}, domain.ErrNotFound},
		{"duplicate id", func() error {
			_, err := g.PersistAdd(ctx, "fit", goalEntity("fit", "again"))
			return err
		}, domain.ErrConflict},
		{"leaf without parent", func() error {
			_, err := g.PersistAdd(ctx, "", domain.ChecklistEntity(domain.ChecklistLeaf{ID: "c", Label: "c"}))
			return err
		}, domain.ErrInvariantViolation},
		{"stale version", func() error {
			_, err := g.PersistEdit(ctx, domain.GoalEntity(&domain.GoalNode{ID: "fit", Label: "x", Version: 7}))
			return err
		}, domain.ErrConflict},
		{"kind mismatch", func() error {
			_, err := g.PersistEdit(ctx, domain.ChecklistEntity(domain.ChecklistLeaf{ID: "fit", Label: "x"}))
			return err
		}, domain.ErrInvariantViolation},
		{"delete missing", func() error {
			_, err := g.PersistDelete(ctx, "ghost")
			return err
		}, domain.ErrNotFound},
		{"blank label", func() error {
			_, err := g.PersistEdit(ctx, goalEntity("fit", ""))
			return err
		}, domain.ErrInvariantViolation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.call(), tt.want)
		})
	}
}

func TestLocal_OwnerOrAdmin(t *testing.T) {
	database := testutil.NewTestDB(t)
	ctx := context.Background()
	users := repository.NewSQLiteUserRepo(database)
	for _, u := range []*domain.User{
		testutil.NewTestUser("alice", domain.RoleUser),
		testutil.NewTestUser("bob", domain.RoleUser),
		testutil.NewTestUser("root", domain.RoleAdmin),
	} {
		require.NoError(t, users.Create(ctx, u))
	}
	uow := testutil.NewTestUoW(database)
	asAlice := NewLocal(database, uow, alice)
	asBob := NewLocal(database, uow, domain.Principal{UserID: "bob", Role: domain.RoleUser})
	asAdmin := NewLocal(database, uow, domain.Principal{UserID: "root", Role: domain.RoleAdmin})

	_, err := asAlice.PersistAdd(ctx, "", goalEntity("fit", "Get fit"))
	require.NoError(t, err)

	_, err = asBob.PersistEdit(ctx, goalEntity("fit", "mine now"))
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	_, err = asBob.PersistAdd(ctx, "fit", goalEntity("x", "X"))
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	_, err = asBob.PersistDelete(ctx, "fit")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	_, err = asBob.LoadTree(ctx, Scope{OwnerID: "alice"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	_, err = asBob.LoadTree(ctx, Scope{All: true})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	// Bob asking to create a root for alice still gets his own root.
	_, err = asBob.PersistAdd(ctx, "", domain.GoalEntity(&domain.GoalNode{ID: "b1", OwnerID: "alice", Label: "B"}))
	require.NoError(t, err)
	bobs, err := asBob.LoadTree(ctx, Scope{})
	require.NoError(t, err)
	require.Len(t, bobs.Roots, 1)
	assert.Equal(t, "bob", bobs.Roots[0].OwnerID)

	_, err = asAdmin.PersistEdit(ctx, goalEntity("fit", "Admin edit"))
	require.NoError(t, err)
	everything, err := asAdmin.LoadTree(ctx, Scope{All: true})
	require.NoError(t, err)
	assert.Len(t, everything.Roots, 2)

	alices, err := asAdmin.LoadTree(ctx, Scope{OwnerID: "alice"})
	require.NoError(t, err)
	require.Len(t, alices.Roots, 1)
	assert.Equal(t, "Admin edit", alices.Roots[0].Label)
}

func TestLocal_FailedWriteRollsBackTransaction(t *testing.T) {
	database := testutil.NewTestDB(t)
	ctx := context.Background()
	boom := errors.New("injected failure")
	admin := domain.Principal{UserID: "local", Role: domain.RoleAdmin}

	uow := &testutil.FailingUoW{DB: database, Table: "checklist_items", FailOn: 2, Err: boom}
	g := NewLocal(database, uow, admin)
	_, err := g.PersistAdd(ctx, "", goalEntity("fit", "Get fit"))
	require.NoError(t, err)
	_, err = g.PersistAdd(ctx, "fit", domain.ChecklistEntity(domain.ChecklistLeaf{ID: "c1", Label: "Buy shoes"}))
	require.NoError(t, err)

	_, err = g.PersistAdd(ctx, "fit", domain.ChecklistEntity(domain.ChecklistLeaf{ID: "c2", Label: "Plan route"}))
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 2, uow.Writes())

	tree, err := g.LoadTree(ctx, Scope{})
	require.NoError(t, err)
	require.Len(t, tree.Roots, 1)
	require.Len(t, tree.Roots[0].ChecklistItems, 1)
	assert.Equal(t, "c1", tree.Roots[0].ChecklistItems[0].ID)

	_, err = g.PersistAdd(ctx, "fit", domain.ChecklistEntity(domain.ChecklistLeaf{ID: "c2", Label: "Plan route"}))
	require.NoError(t, err, "the id was never taken")
}
