package services

import (
	"context"
	"time"

	"roomhub/internal/adapters/persistence/repositories"
	"roomhub/internal/core/domain"

	"gorm.io/gorm"
)

// DashboardService handles dashboard aggregates
type DashboardService struct {
	db *gorm.DB
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(db *gorm.DB) *DashboardService {
	return &DashboardService{db: db}
}

// AdminDashboardData represents admin dashboard data. All numbers
// respect the caller's branch scope.
type AdminDashboardData struct {
	// Occupancy
	TotalRooms     int64 `json:"total_rooms"`
	OccupiedRooms  int64 `json:"occupied_rooms"`
	AvailableRooms int64 `json:"available_rooms"`

	// Tenancy
	ActiveContracts  int64 `json:"active_contracts"`
	PendingContracts int64 `json:"pending_contracts"`
	TotalTenants     int64 `json:"total_tenants"`

	// Billing
	UnpaidInvoices int64 `json:"unpaid_invoices"`
	UnpaidAmount   int64 `json:"unpaid_amount"`
	RevenueMonth   int64 `json:"revenue_month"`

	// Access
	AccessEvents24h int64 `json:"access_events_24h"`

	// Recent Activity
	RecentInvoices []InvoiceSummary `json:"recent_invoices"`
}

// InvoiceSummary represents invoice summary for the dashboard feed
type InvoiceSummary struct {
	ID          uint      `json:"id"`
	RoomID      uint      `json:"room_id"`
	Month       int       `json:"month"`
	Year        int       `json:"year"`
	TotalAmount int64     `json:"total_amount"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

// GetAdminDashboard returns branch-scoped dashboard data. A global
// admin may request a specific branch or get totals across all.
func (s *DashboardService) GetAdminDashboard(ctx context.Context, p domain.Principal, requestedBranch *uint) (*AdminDashboardData, error) {
	scope, err := adminScope(p, requestedBranch)
	if err != nil {
		return nil, err
	}
	branch := scope.Branch()

	scoped := func(q *gorm.DB) *gorm.DB {
		if branch != nil {
			return q.Where("branch_id = ?", *branch)
		}
		return q
	}

	data := &AdminDashboardData{}

	// Occupancy
	scoped(s.db.WithContext(ctx).Table("rooms").Where("deleted_at IS NULL")).Count(&data.TotalRooms)
	scoped(s.db.WithContext(ctx).Table("rooms").Where("status = ? AND deleted_at IS NULL", domain.RoomOccupied)).Count(&data.OccupiedRooms)
	data.AvailableRooms = data.TotalRooms - data.OccupiedRooms

	// Tenancy
	scoped(s.db.WithContext(ctx).Table("contracts").Where("status = ? AND deleted_at IS NULL", domain.ContractActive)).Count(&data.ActiveContracts)
	scoped(s.db.WithContext(ctx).Table("contracts").Where("status = ? AND deleted_at IS NULL", domain.ContractPending)).Count(&data.PendingContracts)
	scoped(s.db.WithContext(ctx).Table("users").Where("role = ? AND deleted_at IS NULL", domain.RoleTenant)).Count(&data.TotalTenants)

	// Billing
	scoped(s.db.WithContext(ctx).Table("invoices").Where("status = ? AND deleted_at IS NULL", domain.InvoiceUnpaid)).Count(&data.UnpaidInvoices)
	scoped(s.db.WithContext(ctx).Table("invoices").Where("status = ? AND deleted_at IS NULL", domain.InvoiceUnpaid)).
		Select("COALESCE(SUM(total_amount), 0)").Scan(&data.UnpaidAmount)

	now := time.Now()
	scoped(s.db.WithContext(ctx).Table("invoices").
		Where("status = ? AND month = ? AND year = ? AND deleted_at IS NULL", domain.InvoicePaid, int(now.Month()), now.Year())).
		Select("COALESCE(SUM(total_amount), 0)").Scan(&data.RevenueMonth)

	// Access events in the last 24 hours
	count, err := repositories.NewAccessEventRepository(s.db).CountSince(ctx, branch, now.Add(-24*time.Hour))
	if err != nil {
		return nil, err
	}
	data.AccessEvents24h = count

	// Recent invoices
	invoiceQuery := scoped(s.db.WithContext(ctx).Table("invoices").Where("deleted_at IS NULL")).
		Select("id, room_id, month, year, total_amount, status, created_at").
		Order("created_at DESC").
		Limit(5)
	if err := invoiceQuery.Scan(&data.RecentInvoices).Error; err != nil {
		return nil, err
	}

	return data, nil
}

// TenantDashboardData represents a tenant's home screen
type TenantDashboardData struct {
	ActiveContracts int64            `json:"active_contracts"`
	UnpaidInvoices  int64            `json:"unpaid_invoices"`
	UnpaidAmount    int64            `json:"unpaid_amount"`
	RecentInvoices  []InvoiceSummary `json:"recent_invoices"`
}

// GetTenantDashboard returns the signed-in tenant's own numbers
func (s *DashboardService) GetTenantDashboard(ctx context.Context, p domain.Principal) (*TenantDashboardData, error) {
	scope, err := domain.ResolveScope(p, nil)
	if err != nil {
		return nil, err
	}
	tenantID, ok := scope.TenantID()
	if !ok {
		return nil, domain.ErrAccessDenied
	}

	data := &TenantDashboardData{}

	s.db.WithContext(ctx).Table("contracts").
		Where("user_id = ? AND status = ? AND deleted_at IS NULL", tenantID, domain.ContractActive).
		Count(&data.ActiveContracts)

	roomIDs, err := tenantRoomIDs(ctx, s.db, tenantID)
	if err != nil {
		return nil, err
	}
	if len(roomIDs) == 0 {
		data.RecentInvoices = []InvoiceSummary{}
		return data, nil
	}

	s.db.WithContext(ctx).Table("invoices").
		Where("room_id IN ? AND status = ? AND deleted_at IS NULL", roomIDs, domain.InvoiceUnpaid).
		Count(&data.UnpaidInvoices)
	s.db.WithContext(ctx).Table("invoices").
		Where("room_id IN ? AND status = ? AND deleted_at IS NULL", roomIDs, domain.InvoiceUnpaid).
		Select("COALESCE(SUM(total_amount), 0)").Scan(&data.UnpaidAmount)

	if err := s.db.WithContext(ctx).Table("invoices").
		Where("room_id IN ? AND deleted_at IS NULL", roomIDs).
		Select("id, room_id, month, year, total_amount, status, created_at").
		Order("created_at DESC").
		Limit(5).
		Scan(&data.RecentInvoices).Error; err != nil {
		return nil, err
	}

	return data, nil
}
