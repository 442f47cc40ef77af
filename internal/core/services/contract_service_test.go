package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roomhub/internal/adapters/persistence/models"
	"roomhub/internal/core/domain"
)

func TestContractCreateActiveOccupiesRoom(t *testing.T) {
	db := newTestDB(t)
	svc := NewContractService(db)
	ctx := context.Background()

	branch := createBranch(t, db, "North")
	room := createRoom(t, db, branch.ID, "101", 3000000)
	tenant := createTenant(t, db, branch.ID, "tenant@test.local")

	contract, err := svc.Create(ctx, globalAdmin(), &CreateContractInput{
		RoomID:    room.ID,
		UserID:    tenant.ID,
		StartDate: "2026-09-01",
		Deposit:   5000000,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.ContractActive, contract.Status)
	assert.Equal(t, branch.ID, contract.BranchID)

	var got models.Room
	require.NoError(t, db.First(&got, room.ID).Error)
	assert.Equal(t, domain.RoomOccupied, got.Status)
}

func TestContractCreateRejectsSecondActive(t *testing.T) {
	db := newTestDB(t)
	svc := NewContractService(db)
	ctx := context.Background()

	branch := createBranch(t, db, "North")
	room := createRoom(t, db, branch.ID, "101", 3000000)
	first := createTenant(t, db, branch.ID, "first@test.local")
	second := createTenant(t, db, branch.ID, "second@test.local")
	createActiveContract(t, db, room, first.ID)

	_, err := svc.Create(ctx, globalAdmin(), &CreateContractInput{
		RoomID:    room.ID,
		UserID:    second.ID,
		StartDate: "2026-09-01",
	})
	assert.ErrorIs(t, err, domain.ErrRoomAlreadyRented)

	// A PENDING contract on the same room is fine.
	pending, err := svc.Create(ctx, globalAdmin(), &CreateContractInput{
		RoomID:    room.ID,
		UserID:    second.ID,
		StartDate: "2026-10-01",
		Status:    "PENDING",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.ContractPending, pending.Status)
}

func TestContractCreateValidation(t *testing.T) {
	db := newTestDB(t)
	svc := NewContractService(db)
	ctx := context.Background()

	branch := createBranch(t, db, "North")
	room := createRoom(t, db, branch.ID, "101", 3000000)
	tenant := createTenant(t, db, branch.ID, "tenant@test.local")

	admin := &models.User{FullName: "Admin", Email: "admin@test.local", Password: "x", Role: domain.RoleAdmin}
	require.NoError(t, db.Create(admin).Error)

	// Contracts only bind tenants.
	_, err := svc.Create(ctx, globalAdmin(), &CreateContractInput{
		RoomID:    room.ID,
		UserID:    admin.ID,
		StartDate: "2026-09-01",
	})
	assert.ErrorIs(t, err, domain.ErrValidation)

	// End date must follow start date.
	_, err = svc.Create(ctx, globalAdmin(), &CreateContractInput{
		RoomID:    room.ID,
		UserID:    tenant.ID,
		StartDate: "2026-09-01",
		EndDate:   "2026-09-01",
	})
	assert.ErrorIs(t, err, domain.ErrValidation)

	// Unknown room reads as not found.
	_, err = svc.Create(ctx, globalAdmin(), &CreateContractInput{
		RoomID:    999,
		UserID:    tenant.ID,
		StartDate: "2026-09-01",
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestContractCreateCrossBranchDenied(t *testing.T) {
	db := newTestDB(t)
	svc := NewContractService(db)
	ctx := context.Background()

	north := createBranch(t, db, "North")
	south := createBranch(t, db, "South")
	room := createRoom(t, db, north.ID, "101", 3000000)
	tenant := createTenant(t, db, north.ID, "tenant@test.local")

	// A South admin cannot even see a North room.
	_, err := svc.Create(ctx, branchAdmin(south.ID), &CreateContractInput{
		RoomID:    room.ID,
		UserID:    tenant.ID,
		StartDate: "2026-09-01",
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.Create(ctx, tenantPrincipal(tenant.ID), &CreateContractInput{
		RoomID:    room.ID,
		UserID:    tenant.ID,
		StartDate: "2026-09-01",
	})
	assert.ErrorIs(t, err, domain.ErrAccessDenied)
}

func TestContractUpdateSwapsTenantInStore(t *testing.T) {
	db := newTestDB(t)
	svc := NewContractService(db)
	ctx := context.Background()

	branch := createBranch(t, db, "North")
	room := createRoom(t, db, branch.ID, "101", 3000000)
	first := createTenant(t, db, branch.ID, "first@test.local")
	second := createTenant(t, db, branch.ID, "second@test.local")
	contract := createActiveContract(t, db, room, first.ID)

	updated, err := svc.Update(ctx, globalAdmin(), contract.ID, &UpdateContractInput{
		UserID: &second.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, second.ID, updated.UserID)

	// The swap must survive a round trip, not just show on the
	// returned struct.
	var got models.Contract
	require.NoError(t, db.First(&got, contract.ID).Error)
	assert.Equal(t, second.ID, got.UserID)
}

func TestContractActivate(t *testing.T) {
	db := newTestDB(t)
	svc := NewContractService(db)
	ctx := context.Background()

	branch := createBranch(t, db, "North")
	room := createRoom(t, db, branch.ID, "101", 3000000)
	tenant := createTenant(t, db, branch.ID, "tenant@test.local")
	rival := createTenant(t, db, branch.ID, "rival@test.local")

	pending, err := svc.Create(ctx, globalAdmin(), &CreateContractInput{
		RoomID:    room.ID,
		UserID:    tenant.ID,
		StartDate: "2026-09-01",
		Status:    "PENDING",
	})
	require.NoError(t, err)

	activated, err := svc.Activate(ctx, globalAdmin(), pending.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ContractActive, activated.Status)

	var got models.Room
	require.NoError(t, db.First(&got, room.ID).Error)
	assert.Equal(t, domain.RoomOccupied, got.Status)

	// Already active: not a pending contract anymore.
	_, err = svc.Activate(ctx, globalAdmin(), pending.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidState)

	// A second pending contract loses the race once the room is taken.
	other, err := svc.Create(ctx, globalAdmin(), &CreateContractInput{
		RoomID:    room.ID,
		UserID:    rival.ID,
		StartDate: "2026-10-01",
		Status:    "PENDING",
	})
	require.NoError(t, err)
	_, err = svc.Activate(ctx, globalAdmin(), other.ID)
	assert.ErrorIs(t, err, domain.ErrRoomAlreadyRented)
}

func TestContractTerminateFreesRoom(t *testing.T) {
	db := newTestDB(t)
	svc := NewContractService(db)
	ctx := context.Background()

	branch := createBranch(t, db, "North")
	room := createRoom(t, db, branch.ID, "101", 3000000)
	tenant := createTenant(t, db, branch.ID, "tenant@test.local")
	contract := createActiveContract(t, db, room, tenant.ID)

	terminated, err := svc.Terminate(ctx, globalAdmin(), contract.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ContractTerminated, terminated.Status)
	require.NotNil(t, terminated.EndDate)

	var got models.Room
	require.NoError(t, db.First(&got, room.ID).Error)
	assert.Equal(t, domain.RoomAvailable, got.Status)

	_, err = svc.Terminate(ctx, globalAdmin(), contract.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestContractSoftDeleteAndRestore(t *testing.T) {
	db := newTestDB(t)
	svc := NewContractService(db)
	ctx := context.Background()

	branch := createBranch(t, db, "North")
	room := createRoom(t, db, branch.ID, "101", 3000000)
	tenant := createTenant(t, db, branch.ID, "tenant@test.local")
	contract := createActiveContract(t, db, room, tenant.ID)

	// Deleting an ACTIVE contract terminates it first.
	require.NoError(t, svc.SoftDelete(ctx, globalAdmin(), contract.ID))

	var got models.Room
	require.NoError(t, db.First(&got, room.ID).Error)
	assert.Equal(t, domain.RoomAvailable, got.Status)

	_, err := svc.Get(ctx, globalAdmin(), contract.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	deleted, total, err := svc.ListDeleted(ctx, globalAdmin(), nil, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, deleted, 1)

	// It comes back TERMINATED, not ACTIVE: the room may be let again.
	restored, err := svc.Restore(ctx, globalAdmin(), contract.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ContractTerminated, restored.Status)
}

func TestContractRestoreConflicts(t *testing.T) {
	db := newTestDB(t)
	svc := NewContractService(db)
	ctx := context.Background()

	branch := createBranch(t, db, "North")
	room := createRoom(t, db, branch.ID, "101", 3000000)
	tenant := createTenant(t, db, branch.ID, "tenant@test.local")
	rival := createTenant(t, db, branch.ID, "rival@test.local")

	pending, err := svc.Create(ctx, globalAdmin(), &CreateContractInput{
		RoomID:    room.ID,
		UserID:    tenant.ID,
		StartDate: "2026-09-01",
		Status:    "PENDING",
	})
	require.NoError(t, err)
	require.NoError(t, svc.SoftDelete(ctx, globalAdmin(), pending.ID))

	// While in the trash someone else took the room.
	createActiveContract(t, db, room, rival.ID)

	_, err = svc.Restore(ctx, globalAdmin(), pending.ID)
	assert.ErrorIs(t, err, domain.ErrRestoreConflict)
}

func TestContractPurge(t *testing.T) {
	db := newTestDB(t)
	svc := NewContractService(db)
	ctx := context.Background()

	branch := createBranch(t, db, "North")
	room := createRoom(t, db, branch.ID, "101", 3000000)
	tenant := createTenant(t, db, branch.ID, "tenant@test.local")
	contract := createActiveContract(t, db, room, tenant.ID)

	// Purge only applies to tombstoned rows.
	err := svc.Purge(ctx, globalAdmin(), contract.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, svc.SoftDelete(ctx, globalAdmin(), contract.ID))
	require.NoError(t, svc.Purge(ctx, globalAdmin(), contract.ID))

	var count int64
	require.NoError(t, db.Unscoped().Model(&models.Contract{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestContractExpireOverdue(t *testing.T) {
	db := newTestDB(t)
	svc := NewContractService(db)
	ctx := context.Background()

	branch := createBranch(t, db, "North")
	expiredRoom := createRoom(t, db, branch.ID, "101", 3000000)
	currentRoom := createRoom(t, db, branch.ID, "102", 3000000)
	tenant := createTenant(t, db, branch.ID, "tenant@test.local")
	other := createTenant(t, db, branch.ID, "other@test.local")

	overdue := createActiveContract(t, db, expiredRoom, tenant.ID)
	past := time.Now().AddDate(0, 0, -3)
	require.NoError(t, db.Model(&models.Contract{}).Where("id = ?", overdue.ID).
		Update("end_date", past).Error)

	future := time.Now().AddDate(1, 0, 0)
	current := createActiveContract(t, db, currentRoom, other.ID)
	require.NoError(t, db.Model(&models.Contract{}).Where("id = ?", current.ID).
		Update("end_date", future).Error)

	count, err := svc.ExpireOverdue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	var got models.Contract
	require.NoError(t, db.First(&got, overdue.ID).Error)
	assert.Equal(t, domain.ContractExpired, got.Status)

	var room models.Room
	require.NoError(t, db.First(&room, expiredRoom.ID).Error)
	assert.Equal(t, domain.RoomAvailable, room.Status)

	var gotCurrent models.Contract
	require.NoError(t, db.First(&gotCurrent, current.ID).Error)
	assert.Equal(t, domain.ContractActive, gotCurrent.Status)
}

func TestContractTenantVisibility(t *testing.T) {
	db := newTestDB(t)
	svc := NewContractService(db)
	ctx := context.Background()

	branch := createBranch(t, db, "North")
	roomA := createRoom(t, db, branch.ID, "101", 3000000)
	roomB := createRoom(t, db, branch.ID, "102", 3000000)
	mine := createTenant(t, db, branch.ID, "mine@test.local")
	theirs := createTenant(t, db, branch.ID, "theirs@test.local")

	myContract := createActiveContract(t, db, roomA, mine.ID)
	theirContract := createActiveContract(t, db, roomB, theirs.ID)

	got, err := svc.Get(ctx, tenantPrincipal(mine.ID), myContract.ID)
	require.NoError(t, err)
	assert.Equal(t, myContract.ID, got.ID)

	_, err = svc.Get(ctx, tenantPrincipal(mine.ID), theirContract.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
