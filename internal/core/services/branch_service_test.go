package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roomhub/internal/core/domain"
)

func strPtr(v string) *string { return &v }

func TestBranchCreate(t *testing.T) {
	db := newTestDB(t)
	svc := NewBranchService(db)
	ctx := context.Background()

	branch, err := svc.Create(ctx, globalAdmin(), &CreateBranchInput{
		Name:    "North",
		Address: "1 North Rd",
		Manager: "Alex",
	})
	require.NoError(t, err)
	assert.NotZero(t, branch.ID)

	_, err = svc.Create(ctx, globalAdmin(), &CreateBranchInput{Name: "North"})
	assert.ErrorIs(t, err, domain.ErrConflict)

	// Branch management is global-admin only.
	_, err = svc.Create(ctx, branchAdmin(branch.ID), &CreateBranchInput{Name: "South"})
	assert.ErrorIs(t, err, domain.ErrAccessDenied)
	_, err = svc.Create(ctx, tenantPrincipal(9), &CreateBranchInput{Name: "South"})
	assert.ErrorIs(t, err, domain.ErrAccessDenied)
}

func TestBranchUpdateNameUniqueness(t *testing.T) {
	db := newTestDB(t)
	svc := NewBranchService(db)
	ctx := context.Background()

	createBranch(t, db, "North")
	south := createBranch(t, db, "South")

	_, err := svc.Update(ctx, globalAdmin(), south.ID, &UpdateBranchInput{Name: strPtr("North")})
	assert.ErrorIs(t, err, domain.ErrConflict)

	updated, err := svc.Update(ctx, globalAdmin(), south.ID, &UpdateBranchInput{
		Name:    strPtr("South East"),
		Manager: strPtr("Kim"),
	})
	require.NoError(t, err)
	assert.Equal(t, "South East", updated.Name)
	assert.Equal(t, "Kim", updated.Manager)
}

func TestBranchVisibility(t *testing.T) {
	db := newTestDB(t)
	svc := NewBranchService(db)
	ctx := context.Background()

	north := createBranch(t, db, "North")
	south := createBranch(t, db, "South")

	branches, total, err := svc.List(ctx, globalAdmin(), 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, branches, 2)

	// A scoped admin sees only their own branch.
	branches, total, err = svc.List(ctx, branchAdmin(north.ID), 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, branches, 1)
	assert.Equal(t, north.ID, branches[0].ID)

	_, err = svc.Get(ctx, branchAdmin(north.ID), south.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestBranchSoftDeleteWithRooms(t *testing.T) {
	db := newTestDB(t)
	svc := NewBranchService(db)
	ctx := context.Background()

	branch := createBranch(t, db, "North")
	room := createRoom(t, db, branch.ID, "101", 3000000)

	err := svc.SoftDelete(ctx, globalAdmin(), branch.ID)
	assert.ErrorIs(t, err, domain.ErrBranchInUse)

	require.NoError(t, NewRoomService(db).SoftDelete(ctx, globalAdmin(), room.ID))
	require.NoError(t, svc.SoftDelete(ctx, globalAdmin(), branch.ID))

	_, err = svc.Get(ctx, globalAdmin(), branch.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	deleted, total, err := svc.ListDeleted(ctx, globalAdmin(), 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, deleted, 1)
}

func TestBranchRestoreNameRetaken(t *testing.T) {
	db := newTestDB(t)
	svc := NewBranchService(db)
	ctx := context.Background()

	branch := createBranch(t, db, "North")
	require.NoError(t, svc.SoftDelete(ctx, globalAdmin(), branch.ID))

	createBranch(t, db, "North")

	_, err := svc.Restore(ctx, globalAdmin(), branch.ID)
	assert.ErrorIs(t, err, domain.ErrRestoreConflict)
}

func TestBranchPurgeWithTombstonedRooms(t *testing.T) {
	db := newTestDB(t)
	branchSvc := NewBranchService(db)
	roomSvc := NewRoomService(db)
	ctx := context.Background()

	branch := createBranch(t, db, "North")
	room := createRoom(t, db, branch.ID, "101", 3000000)

	require.NoError(t, roomSvc.SoftDelete(ctx, globalAdmin(), room.ID))
	require.NoError(t, branchSvc.SoftDelete(ctx, globalAdmin(), branch.ID))

	// A tombstoned room still pins the branch.
	err := branchSvc.Purge(ctx, globalAdmin(), branch.ID)
	assert.ErrorIs(t, err, domain.ErrBranchInUse)

	require.NoError(t, roomSvc.Purge(ctx, globalAdmin(), room.ID))
	require.NoError(t, branchSvc.Purge(ctx, globalAdmin(), branch.ID))
}
