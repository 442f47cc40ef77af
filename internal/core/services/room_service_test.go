package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roomhub/internal/adapters/persistence/models"
	"roomhub/internal/core/domain"
)

func TestRoomCreate(t *testing.T) {
	db := newTestDB(t)
	svc := NewRoomService(db)
	ctx := context.Background()

	branch := createBranch(t, db, "North")

	room, err := svc.Create(ctx, globalAdmin(), &CreateRoomInput{
		BranchID:   branch.ID,
		RoomNumber: "101",
		Price:      3000000,
		Area:       25,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.RoomAvailable, room.Status)

	// Room numbers are unique within a branch.
	_, err = svc.Create(ctx, globalAdmin(), &CreateRoomInput{
		BranchID:   branch.ID,
		RoomNumber: "101",
		Price:      3500000,
		Area:       30,
	})
	assert.ErrorIs(t, err, domain.ErrConflict)

	// But fine in a different branch.
	south := createBranch(t, db, "South")
	_, err = svc.Create(ctx, globalAdmin(), &CreateRoomInput{
		BranchID:   south.ID,
		RoomNumber: "101",
		Price:      3500000,
		Area:       30,
	})
	assert.NoError(t, err)
}

func TestRoomCreateScopes(t *testing.T) {
	db := newTestDB(t)
	svc := NewRoomService(db)
	ctx := context.Background()

	north := createBranch(t, db, "North")
	south := createBranch(t, db, "South")

	_, err := svc.Create(ctx, branchAdmin(south.ID), &CreateRoomInput{
		BranchID:   north.ID,
		RoomNumber: "101",
		Price:      3000000,
		Area:       25,
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.Create(ctx, tenantPrincipal(9), &CreateRoomInput{
		BranchID:   north.ID,
		RoomNumber: "101",
		Price:      3000000,
		Area:       25,
	})
	assert.ErrorIs(t, err, domain.ErrAccessDenied)

	_, err = svc.Create(ctx, globalAdmin(), &CreateRoomInput{
		BranchID:   999,
		RoomNumber: "101",
		Price:      3000000,
		Area:       25,
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRoomUpdateBranchImmutableWithContracts(t *testing.T) {
	db := newTestDB(t)
	svc := NewRoomService(db)
	ctx := context.Background()

	north := createBranch(t, db, "North")
	south := createBranch(t, db, "South")
	room := createRoom(t, db, north.ID, "101", 3000000)
	tenant := createTenant(t, db, north.ID, "tenant@test.local")

	// No contracts yet: the room can move.
	moved, err := svc.Update(ctx, globalAdmin(), room.ID, &UpdateRoomInput{BranchID: &south.ID})
	require.NoError(t, err)
	assert.Equal(t, south.ID, moved.BranchID)

	// The move must land in the store, not just on the returned struct.
	var got models.Room
	require.NoError(t, db.First(&got, room.ID).Error)
	assert.Equal(t, south.ID, got.BranchID)

	createActiveContract(t, db, moved, tenant.ID)

	_, err = svc.Update(ctx, globalAdmin(), room.ID, &UpdateRoomInput{BranchID: &north.ID})
	assert.ErrorIs(t, err, domain.ErrValidation)

	// Price edits remain fine while occupied.
	newPrice := int64(3200000)
	updated, err := svc.Update(ctx, globalAdmin(), room.ID, &UpdateRoomInput{Price: &newPrice})
	require.NoError(t, err)
	assert.Equal(t, newPrice, updated.Price)
}

func TestRoomUpdateBranchImmutableWithHistory(t *testing.T) {
	db := newTestDB(t)
	svc := NewRoomService(db)
	ctx := context.Background()

	north := createBranch(t, db, "North")
	south := createBranch(t, db, "South")
	tenant := createTenant(t, db, north.ID, "tenant@test.local")

	// A tombstoned contract still pins the room: restoring it later
	// must not resurrect a row pointing at the wrong branch.
	roomA := createRoom(t, db, north.ID, "101", 3000000)
	contract := createActiveContract(t, db, roomA, tenant.ID)
	require.NoError(t, db.Delete(&models.Contract{}, contract.ID).Error)
	require.NoError(t, db.Model(&models.Room{}).Where("id = ?", roomA.ID).
		Update("status", domain.RoomAvailable).Error)

	_, err := svc.Update(ctx, globalAdmin(), roomA.ID, &UpdateRoomInput{BranchID: &south.ID})
	assert.ErrorIs(t, err, domain.ErrValidation)

	// Invoices pin the room the same way.
	roomB := createRoom(t, db, north.ID, "102", 3000000)
	require.NoError(t, db.Create(&models.Invoice{
		RoomID: roomB.ID, BranchID: north.ID, Month: 8, Year: 2026,
		NewElectricity: 120, NewWater: 40, TotalAmount: 3000000,
		Status: domain.InvoiceUnpaid,
	}).Error)

	_, err = svc.Update(ctx, globalAdmin(), roomB.ID, &UpdateRoomInput{BranchID: &south.ID})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestRoomSoftDeleteOccupied(t *testing.T) {
	db := newTestDB(t)
	svc := NewRoomService(db)
	ctx := context.Background()

	branch := createBranch(t, db, "North")
	room := createRoom(t, db, branch.ID, "101", 3000000)
	tenant := createTenant(t, db, branch.ID, "tenant@test.local")
	contract := createActiveContract(t, db, room, tenant.ID)

	err := svc.SoftDelete(ctx, globalAdmin(), room.ID)
	assert.ErrorIs(t, err, domain.ErrRoomOccupied)

	// Free the room and it may go.
	_, err = NewContractService(db).Terminate(ctx, globalAdmin(), contract.ID)
	require.NoError(t, err)
	require.NoError(t, svc.SoftDelete(ctx, globalAdmin(), room.ID))

	_, err = svc.Get(ctx, globalAdmin(), room.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRoomRestore(t *testing.T) {
	db := newTestDB(t)
	svc := NewRoomService(db)
	ctx := context.Background()

	branch := createBranch(t, db, "North")
	room := createRoom(t, db, branch.ID, "101", 3000000)
	require.NoError(t, svc.SoftDelete(ctx, globalAdmin(), room.ID))

	// The number was retaken while the room sat in the trash.
	createRoom(t, db, branch.ID, "101", 3100000)

	_, err := svc.Restore(ctx, globalAdmin(), room.ID)
	assert.ErrorIs(t, err, domain.ErrRestoreConflict)

	other := createRoom(t, db, branch.ID, "102", 3000000)
	require.NoError(t, svc.SoftDelete(ctx, globalAdmin(), other.ID))

	restored, err := svc.Restore(ctx, globalAdmin(), other.ID)
	require.NoError(t, err)
	assert.Equal(t, other.ID, restored.ID)
	assert.Equal(t, domain.RoomAvailable, restored.Status)
}

func TestRoomPurgeReferenced(t *testing.T) {
	db := newTestDB(t)
	roomSvc := NewRoomService(db)
	contractSvc := NewContractService(db)
	ctx := context.Background()

	branch := createBranch(t, db, "North")
	room := createRoom(t, db, branch.ID, "101", 3000000)
	tenant := createTenant(t, db, branch.ID, "tenant@test.local")
	contract := createActiveContract(t, db, room, tenant.ID)

	_, err := contractSvc.Terminate(ctx, globalAdmin(), contract.ID)
	require.NoError(t, err)
	require.NoError(t, roomSvc.SoftDelete(ctx, globalAdmin(), room.ID))

	// The terminated contract still references the room.
	err = roomSvc.Purge(ctx, globalAdmin(), room.ID)
	assert.ErrorIs(t, err, domain.ErrRoomReferenced)

	require.NoError(t, contractSvc.SoftDelete(ctx, globalAdmin(), contract.ID))
	require.NoError(t, contractSvc.Purge(ctx, globalAdmin(), contract.ID))
	require.NoError(t, roomSvc.Purge(ctx, globalAdmin(), room.ID))
}

func TestRoomBranchScopedListing(t *testing.T) {
	db := newTestDB(t)
	svc := NewRoomService(db)
	ctx := context.Background()

	north := createBranch(t, db, "North")
	south := createBranch(t, db, "South")
	createRoom(t, db, north.ID, "101", 3000000)
	createRoom(t, db, north.ID, "102", 3000000)
	createRoom(t, db, south.ID, "201", 3000000)

	rooms, total, err := svc.List(ctx, globalAdmin(), nil, "", 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, rooms, 3)

	rooms, total, err = svc.List(ctx, branchAdmin(north.ID), nil, "", 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	for _, r := range rooms {
		assert.Equal(t, north.ID, r.BranchID)
	}

	_, _, err = svc.List(ctx, branchAdmin(north.ID), &south.ID, "", 0, 10)
	assert.ErrorIs(t, err, domain.ErrAccessDenied)

	_, _, err = svc.List(ctx, tenantPrincipal(9), nil, "", 0, 10)
	assert.ErrorIs(t, err, domain.ErrAccessDenied)
}

func TestRoomTenantGet(t *testing.T) {
	db := newTestDB(t)
	svc := NewRoomService(db)
	ctx := context.Background()

	branch := createBranch(t, db, "North")
	mine := createRoom(t, db, branch.ID, "101", 3000000)
	other := createRoom(t, db, branch.ID, "102", 3000000)
	tenant := createTenant(t, db, branch.ID, "tenant@test.local")
	createActiveContract(t, db, mine, tenant.ID)

	got, err := svc.Get(ctx, tenantPrincipal(tenant.ID), mine.ID)
	require.NoError(t, err)
	assert.Equal(t, mine.ID, got.ID)

	_, err = svc.Get(ctx, tenantPrincipal(tenant.ID), other.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
