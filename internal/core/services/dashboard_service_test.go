package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roomhub/internal/core/domain"
)

func TestAdminDashboard(t *testing.T) {
	db := newTestDB(t)
	svc := NewDashboardService(db)
	invoiceSvc := NewInvoiceService(db, testBilling())
	ctx := context.Background()

	north := createBranch(t, db, "North")
	south := createBranch(t, db, "South")

	occupied := createRoom(t, db, north.ID, "101", 3000000)
	createRoom(t, db, north.ID, "102", 3000000)
	createRoom(t, db, south.ID, "201", 3000000)

	tenant := createTenant(t, db, north.ID, "tenant@test.local")
	createActiveContract(t, db, occupied, tenant.ID)

	now := time.Now()
	unpaid, err := invoiceSvc.Create(ctx, globalAdmin(), &CreateInvoiceInput{
		RoomID: occupied.ID, Month: int(now.Month()), Year: now.Year(),
		NewElectricity: 100, NewWater: 30,
	})
	require.NoError(t, err)

	data, err := svc.GetAdminDashboard(ctx, globalAdmin(), nil)
	require.NoError(t, err)
	assert.Equal(t, int64(3), data.TotalRooms)
	assert.Equal(t, int64(1), data.OccupiedRooms)
	assert.Equal(t, int64(2), data.AvailableRooms)
	assert.Equal(t, int64(1), data.ActiveContracts)
	assert.Equal(t, int64(1), data.TotalTenants)
	assert.Equal(t, int64(1), data.UnpaidInvoices)
	assert.Equal(t, unpaid.TotalAmount, data.UnpaidAmount)
	assert.Equal(t, int64(0), data.RevenueMonth)
	require.Len(t, data.RecentInvoices, 1)
	assert.Equal(t, unpaid.ID, data.RecentInvoices[0].ID)

	// Paying the invoice moves it from outstanding to revenue.
	_, err = invoiceSvc.ConfirmPayment(ctx, globalAdmin(), unpaid.ID, "")
	require.NoError(t, err)

	data, err = svc.GetAdminDashboard(ctx, globalAdmin(), nil)
	require.NoError(t, err)
	assert.Equal(t, int64(0), data.UnpaidInvoices)
	assert.Equal(t, int64(0), data.UnpaidAmount)
	assert.Equal(t, unpaid.TotalAmount, data.RevenueMonth)

	// Branch scoping trims the counts.
	data, err = svc.GetAdminDashboard(ctx, branchAdmin(south.ID), nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), data.TotalRooms)
	assert.Equal(t, int64(0), data.ActiveContracts)
	assert.Empty(t, data.RecentInvoices)

	_, err = svc.GetAdminDashboard(ctx, tenantPrincipal(tenant.ID), nil)
	assert.ErrorIs(t, err, domain.ErrAccessDenied)
}

func TestTenantDashboard(t *testing.T) {
	db := newTestDB(t)
	svc := NewDashboardService(db)
	invoiceSvc := NewInvoiceService(db, testBilling())
	ctx := context.Background()

	branch := createBranch(t, db, "North")
	myRoom := createRoom(t, db, branch.ID, "101", 3000000)
	otherRoom := createRoom(t, db, branch.ID, "102", 3000000)
	mine := createTenant(t, db, branch.ID, "mine@test.local")
	other := createTenant(t, db, branch.ID, "other@test.local")
	createActiveContract(t, db, myRoom, mine.ID)
	createActiveContract(t, db, otherRoom, other.ID)

	myInv, err := invoiceSvc.Create(ctx, globalAdmin(), &CreateInvoiceInput{
		RoomID: myRoom.ID, Month: 9, Year: 2026,
		NewElectricity: 100, NewWater: 30,
	})
	require.NoError(t, err)
	_, err = invoiceSvc.Create(ctx, globalAdmin(), &CreateInvoiceInput{
		RoomID: otherRoom.ID, Month: 9, Year: 2026,
		NewElectricity: 80, NewWater: 20,
	})
	require.NoError(t, err)

	data, err := svc.GetTenantDashboard(ctx, tenantPrincipal(mine.ID))
	require.NoError(t, err)
	assert.Equal(t, int64(1), data.ActiveContracts)
	assert.Equal(t, int64(1), data.UnpaidInvoices)
	assert.Equal(t, myInv.TotalAmount, data.UnpaidAmount)
	require.Len(t, data.RecentInvoices, 1)
	assert.Equal(t, myInv.ID, data.RecentInvoices[0].ID)

	// A tenant with no contracts gets an empty board, not an error.
	idle := createTenant(t, db, branch.ID, "idle@test.local")
	data, err = svc.GetTenantDashboard(ctx, tenantPrincipal(idle.ID))
	require.NoError(t, err)
	assert.Equal(t, int64(0), data.ActiveContracts)
	assert.Empty(t, data.RecentInvoices)

	_, err = svc.GetTenantDashboard(ctx, globalAdmin())
	assert.ErrorIs(t, err, domain.ErrAccessDenied)
}
