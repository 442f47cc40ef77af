package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roomhub/internal/adapters/persistence/models"
	"roomhub/internal/core/domain"
)

func int64Ptr(v int64) *int64 { return &v }

func TestInvoiceCreateFirstPeriod(t *testing.T) {
	db := newTestDB(t)
	svc := NewInvoiceService(db, testBilling())
	ctx := context.Background()

	branch := createBranch(t, db, "North")
	room := createRoom(t, db, branch.ID, "101", 3000000)
	tenant := createTenant(t, db, branch.ID, "tenant@test.local")
	createActiveContract(t, db, room, tenant.ID)

	inv, err := svc.Create(ctx, globalAdmin(), &CreateInvoiceInput{
		RoomID:         room.ID,
		Month:          9,
		Year:           2026,
		NewElectricity: 120,
		NewWater:       40,
		ServiceFee:     100000,
	})
	require.NoError(t, err)

	// First invoice starts the meter chain at zero.
	assert.Equal(t, int64(0), inv.OldElectricity)
	assert.Equal(t, int64(0), inv.OldWater)
	assert.Equal(t, domain.InvoiceUnpaid, inv.Status)

	// 3000000 + 120*3500 + 40*15000 + 100000
	assert.Equal(t, int64(3000000+420000+600000+100000), inv.TotalAmount)
}

func TestInvoiceCreateCarriesReadingsForward(t *testing.T) {
	db := newTestDB(t)
	svc := NewInvoiceService(db, testBilling())
	ctx := context.Background()

	branch := createBranch(t, db, "North")
	room := createRoom(t, db, branch.ID, "101", 3000000)
	tenant := createTenant(t, db, branch.ID, "tenant@test.local")
	createActiveContract(t, db, room, tenant.ID)

	_, err := svc.Create(ctx, globalAdmin(), &CreateInvoiceInput{
		RoomID: room.ID, Month: 9, Year: 2026,
		NewElectricity: 120, NewWater: 40,
	})
	require.NoError(t, err)

	second, err := svc.Create(ctx, globalAdmin(), &CreateInvoiceInput{
		RoomID: room.ID, Month: 10, Year: 2026,
		NewElectricity: 150, NewWater: 45,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(120), second.OldElectricity)
	assert.Equal(t, int64(40), second.OldWater)
	// 3000000 + 30*3500 + 5*15000
	assert.Equal(t, int64(3000000+105000+75000), second.TotalAmount)
}

func TestInvoiceCreateGuards(t *testing.T) {
	db := newTestDB(t)
	svc := NewInvoiceService(db, testBilling())
	ctx := context.Background()

	branch := createBranch(t, db, "North")
	vacant := createRoom(t, db, branch.ID, "101", 3000000)
	rented := createRoom(t, db, branch.ID, "102", 3000000)
	tenant := createTenant(t, db, branch.ID, "tenant@test.local")
	createActiveContract(t, db, rented, tenant.ID)

	// No active contract, no invoice.
	_, err := svc.Create(ctx, globalAdmin(), &CreateInvoiceInput{
		RoomID: vacant.ID, Month: 9, Year: 2026,
		NewElectricity: 10, NewWater: 5,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidState)

	_, err = svc.Create(ctx, globalAdmin(), &CreateInvoiceInput{
		RoomID: rented.ID, Month: 9, Year: 2026,
		NewElectricity: 120, NewWater: 40,
	})
	require.NoError(t, err)

	// Same room and period twice.
	_, err = svc.Create(ctx, globalAdmin(), &CreateInvoiceInput{
		RoomID: rented.ID, Month: 9, Year: 2026,
		NewElectricity: 130, NewWater: 41,
	})
	assert.ErrorIs(t, err, domain.ErrDuplicatePeriod)

	// Meter readings may never go backwards.
	_, err = svc.Create(ctx, globalAdmin(), &CreateInvoiceInput{
		RoomID: rented.ID, Month: 10, Year: 2026,
		NewElectricity: 100, NewWater: 40,
	})
	assert.ErrorIs(t, err, domain.ErrNonMonotonicMeter)
}

func TestInvoiceUpdateRecomputesTotal(t *testing.T) {
	db := newTestDB(t)
	svc := NewInvoiceService(db, testBilling())
	ctx := context.Background()

	branch := createBranch(t, db, "North")
	room := createRoom(t, db, branch.ID, "101", 3000000)
	tenant := createTenant(t, db, branch.ID, "tenant@test.local")
	createActiveContract(t, db, room, tenant.ID)

	inv, err := svc.Create(ctx, globalAdmin(), &CreateInvoiceInput{
		RoomID: room.ID, Month: 9, Year: 2026,
		NewElectricity: 120, NewWater: 40,
	})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, globalAdmin(), inv.ID, &UpdateInvoiceInput{
		NewElectricity: int64Ptr(130),
		ServiceFee:     int64Ptr(50000),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(130), updated.NewElectricity)
	// 3000000 + 130*3500 + 40*15000 + 50000
	assert.Equal(t, int64(3000000+455000+600000+50000), updated.TotalAmount)

	// Corrections below the carried-forward baseline are rejected.
	_, err = svc.Update(ctx, globalAdmin(), inv.ID, &UpdateInvoiceInput{
		NewElectricity: int64Ptr(-1),
	})
	assert.Error(t, err)
}

func TestInvoiceMeterEditBlockedByNewerInvoice(t *testing.T) {
	db := newTestDB(t)
	svc := NewInvoiceService(db, testBilling())
	ctx := context.Background()

	branch := createBranch(t, db, "North")
	room := createRoom(t, db, branch.ID, "101", 3000000)
	tenant := createTenant(t, db, branch.ID, "tenant@test.local")
	createActiveContract(t, db, room, tenant.ID)

	first, err := svc.Create(ctx, globalAdmin(), &CreateInvoiceInput{
		RoomID: room.ID, Month: 9, Year: 2026,
		NewElectricity: 120, NewWater: 40,
	})
	require.NoError(t, err)

	_, err = svc.Create(ctx, globalAdmin(), &CreateInvoiceInput{
		RoomID: room.ID, Month: 10, Year: 2026,
		NewElectricity: 150, NewWater: 45,
	})
	require.NoError(t, err)

	// October already carried September's readings forward.
	_, err = svc.Update(ctx, globalAdmin(), first.ID, &UpdateInvoiceInput{
		NewElectricity: int64Ptr(125),
	})
	assert.ErrorIs(t, err, domain.ErrConflict)

	// A fee-only correction is still fine.
	_, err = svc.Update(ctx, globalAdmin(), first.ID, &UpdateInvoiceInput{
		ServiceFee: int64Ptr(20000),
	})
	assert.NoError(t, err)
}

func TestInvoiceConfirmPayment(t *testing.T) {
	db := newTestDB(t)
	svc := NewInvoiceService(db, testBilling())
	ctx := context.Background()

	branch := createBranch(t, db, "North")
	room := createRoom(t, db, branch.ID, "101", 3000000)
	tenant := createTenant(t, db, branch.ID, "tenant@test.local")
	createActiveContract(t, db, room, tenant.ID)

	inv, err := svc.Create(ctx, globalAdmin(), &CreateInvoiceInput{
		RoomID: room.ID, Month: 9, Year: 2026,
		NewElectricity: 120, NewWater: 40,
	})
	require.NoError(t, err)

	paid, err := svc.ConfirmPayment(ctx, globalAdmin(), inv.ID, "https://cdn.test.local/proof.jpg")
	require.NoError(t, err)
	assert.Equal(t, domain.InvoicePaid, paid.Status)
	require.NotNil(t, paid.PaidAt)
	assert.Equal(t, "https://cdn.test.local/proof.jpg", paid.PaymentProof)

	_, err = svc.ConfirmPayment(ctx, globalAdmin(), inv.ID, "")
	assert.ErrorIs(t, err, domain.ErrInvalidState)

	// Paid invoices are immutable.
	_, err = svc.Update(ctx, globalAdmin(), inv.ID, &UpdateInvoiceInput{ServiceFee: int64Ptr(1)})
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestInvoiceDeleteOnlyNewest(t *testing.T) {
	db := newTestDB(t)
	svc := NewInvoiceService(db, testBilling())
	ctx := context.Background()

	branch := createBranch(t, db, "North")
	room := createRoom(t, db, branch.ID, "101", 3000000)
	tenant := createTenant(t, db, branch.ID, "tenant@test.local")
	createActiveContract(t, db, room, tenant.ID)

	first, err := svc.Create(ctx, globalAdmin(), &CreateInvoiceInput{
		RoomID: room.ID, Month: 9, Year: 2026,
		NewElectricity: 120, NewWater: 40,
	})
	require.NoError(t, err)
	second, err := svc.Create(ctx, globalAdmin(), &CreateInvoiceInput{
		RoomID: room.ID, Month: 10, Year: 2026,
		NewElectricity: 150, NewWater: 45,
	})
	require.NoError(t, err)

	// Deleting from the middle would break the meter chain.
	err = svc.SoftDelete(ctx, globalAdmin(), first.ID)
	assert.ErrorIs(t, err, domain.ErrConflict)

	require.NoError(t, svc.SoftDelete(ctx, globalAdmin(), second.ID))
	// With October gone September is the newest and may go too.
	require.NoError(t, svc.SoftDelete(ctx, globalAdmin(), first.ID))
}

func TestInvoiceRestore(t *testing.T) {
	db := newTestDB(t)
	svc := NewInvoiceService(db, testBilling())
	ctx := context.Background()

	branch := createBranch(t, db, "North")
	room := createRoom(t, db, branch.ID, "101", 3000000)
	tenant := createTenant(t, db, branch.ID, "tenant@test.local")
	createActiveContract(t, db, room, tenant.ID)

	inv, err := svc.Create(ctx, globalAdmin(), &CreateInvoiceInput{
		RoomID: room.ID, Month: 9, Year: 2026,
		NewElectricity: 120, NewWater: 40,
	})
	require.NoError(t, err)
	require.NoError(t, svc.SoftDelete(ctx, globalAdmin(), inv.ID))

	restored, err := svc.Restore(ctx, globalAdmin(), inv.ID)
	require.NoError(t, err)
	assert.Equal(t, inv.ID, restored.ID)

	// Delete again, reissue the period, and the restore must refuse.
	require.NoError(t, svc.SoftDelete(ctx, globalAdmin(), inv.ID))
	_, err = svc.Create(ctx, globalAdmin(), &CreateInvoiceInput{
		RoomID: room.ID, Month: 9, Year: 2026,
		NewElectricity: 125, NewWater: 41,
	})
	require.NoError(t, err)

	_, err = svc.Restore(ctx, globalAdmin(), inv.ID)
	assert.ErrorIs(t, err, domain.ErrPeriodConflict)
}

func TestInvoiceRestoreRefusedBehindLaterInvoice(t *testing.T) {
	db := newTestDB(t)
	svc := NewInvoiceService(db, testBilling())
	ctx := context.Background()

	branch := createBranch(t, db, "North")
	room := createRoom(t, db, branch.ID, "101", 3000000)
	tenant := createTenant(t, db, branch.ID, "tenant@test.local")
	createActiveContract(t, db, room, tenant.ID)

	_, err := svc.Create(ctx, globalAdmin(), &CreateInvoiceInput{
		RoomID: room.ID, Month: 8, Year: 2026,
		NewElectricity: 50, NewWater: 10,
	})
	require.NoError(t, err)
	sep, err := svc.Create(ctx, globalAdmin(), &CreateInvoiceInput{
		RoomID: room.ID, Month: 9, Year: 2026,
		NewElectricity: 80, NewWater: 15,
	})
	require.NoError(t, err)
	require.NoError(t, svc.SoftDelete(ctx, globalAdmin(), sep.ID))

	// October baselines off August now that September is gone.
	oct, err := svc.Create(ctx, globalAdmin(), &CreateInvoiceInput{
		RoomID: room.ID, Month: 10, Year: 2026,
		NewElectricity: 60, NewWater: 12,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(50), oct.OldElectricity)

	// Restoring September would slot it back into the middle of the
	// meter chain behind October's baseline.
	_, err = svc.Restore(ctx, globalAdmin(), sep.ID)
	assert.ErrorIs(t, err, domain.ErrRestoreConflict)
}

func TestInvoiceTenantVisibility(t *testing.T) {
	db := newTestDB(t)
	svc := NewInvoiceService(db, testBilling())
	ctx := context.Background()

	branch := createBranch(t, db, "North")
	roomA := createRoom(t, db, branch.ID, "101", 3000000)
	roomB := createRoom(t, db, branch.ID, "102", 3000000)
	mine := createTenant(t, db, branch.ID, "mine@test.local")
	theirs := createTenant(t, db, branch.ID, "theirs@test.local")
	createActiveContract(t, db, roomA, mine.ID)
	createActiveContract(t, db, roomB, theirs.ID)

	myInv, err := svc.Create(ctx, globalAdmin(), &CreateInvoiceInput{
		RoomID: roomA.ID, Month: 9, Year: 2026,
		NewElectricity: 100, NewWater: 30,
	})
	require.NoError(t, err)
	theirInv, err := svc.Create(ctx, globalAdmin(), &CreateInvoiceInput{
		RoomID: roomB.ID, Month: 9, Year: 2026,
		NewElectricity: 80, NewWater: 20,
	})
	require.NoError(t, err)

	got, err := svc.Get(ctx, tenantPrincipal(mine.ID), myInv.ID)
	require.NoError(t, err)
	assert.Equal(t, myInv.ID, got.ID)

	_, err = svc.Get(ctx, tenantPrincipal(mine.ID), theirInv.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	list, total, err := svc.List(ctx, tenantPrincipal(mine.ID), nil, nil, "", 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, list, 1)
	assert.Equal(t, myInv.ID, list[0].ID)

	// Tenants never mutate invoices.
	_, err = svc.ConfirmPayment(ctx, tenantPrincipal(mine.ID), myInv.ID, "")
	assert.ErrorIs(t, err, domain.ErrAccessDenied)

	var count int64
	require.NoError(t, db.Model(&models.Invoice{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)
}

func TestInvoiceLatestForRoom(t *testing.T) {
	db := newTestDB(t)
	svc := NewInvoiceService(db, testBilling())
	ctx := context.Background()

	branch := createBranch(t, db, "North")
	room := createRoom(t, db, branch.ID, "101", 3000000)
	tenant := createTenant(t, db, branch.ID, "tenant@test.local")
	createActiveContract(t, db, room, tenant.ID)

	_, err := svc.LatestForRoom(ctx, globalAdmin(), room.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.Create(ctx, globalAdmin(), &CreateInvoiceInput{
		RoomID: room.ID, Month: 12, Year: 2026,
		NewElectricity: 120, NewWater: 40,
	})
	require.NoError(t, err)
	second, err := svc.Create(ctx, globalAdmin(), &CreateInvoiceInput{
		RoomID: room.ID, Month: 1, Year: 2027,
		NewElectricity: 140, NewWater: 42,
	})
	require.NoError(t, err)

	latest, err := svc.LatestForRoom(ctx, globalAdmin(), room.ID)
	require.NoError(t, err)
	// Year ordering wins over month ordering across a year boundary.
	assert.Equal(t, second.ID, latest.ID)
}
