package repositories

import (
	"context"
	"errors"

	"roomhub/internal/adapters/persistence/models"
	"roomhub/internal/core/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// InvoiceRepository handles invoice data access
type InvoiceRepository struct {
	db *gorm.DB
}

// NewInvoiceRepository creates a new invoice repository
func NewInvoiceRepository(db *gorm.DB) *InvoiceRepository {
	return &InvoiceRepository{db: db}
}

// Create creates a new invoice
func (r *InvoiceRepository) Create(ctx context.Context, invoice *models.Invoice) error {
	return r.db.WithContext(ctx).Create(invoice).Error
}

// GetByID gets an invoice by ID with its room
func (r *InvoiceRepository) GetByID(ctx context.Context, id uint) (*models.Invoice, error) {
	var invoice models.Invoice
	err := r.db.WithContext(ctx).Preload("Room").First(&invoice, id).Error
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

// LatestByRoom returns the most recent live invoice for a room,
// ordered by (year, month, id) descending, or nil if none exists.
// This is the meter carry-forward baseline.
func (r *InvoiceRepository) LatestByRoom(ctx context.Context, roomID uint) (*models.Invoice, error) {
	var invoice models.Invoice
	err := r.db.WithContext(ctx).
		Where("room_id = ?", roomID).
		Order("year DESC, month DESC, id DESC").
		First(&invoice).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

// ExistsForPeriod checks whether a live invoice occupies the
// (room, month, year) slot
func (r *InvoiceRepository) ExistsForPeriod(ctx context.Context, roomID uint, month, year int, excludeID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Invoice{}).
		Where("room_id = ? AND month = ? AND year = ? AND id <> ?", roomID, month, year, excludeID).
		Count(&count).Error
	return count > 0, err
}

// CountByRoom counts live invoices referencing a room
func (r *InvoiceRepository) CountByRoom(ctx context.Context, roomID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Invoice{}).
		Where("room_id = ?", roomID).
		Count(&count).Error
	return count, err
}

// CountByRoomUnscoped counts all invoices referencing a room,
// tombstoned included
func (r *InvoiceRepository) CountByRoomUnscoped(ctx context.Context, roomID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Unscoped().Model(&models.Invoice{}).
		Where("room_id = ?", roomID).
		Count(&count).Error
	return count, err
}

// List lists invoices with pagination, optionally filtered by
// branch, room and status
func (r *InvoiceRepository) List(ctx context.Context, branchID *uint, roomID *uint, status domain.InvoiceStatus, offset, limit int) ([]*models.Invoice, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Invoice{})
	if branchID != nil {
		q = q.Where("branch_id = ?", *branchID)
	}
	if roomID != nil {
		q = q.Where("room_id = ?", *roomID)
	}
	if status != "" {
		q = q.Where("status = ?", status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var invoices []*models.Invoice
	err := q.Preload("Room").
		Order("year DESC, month DESC, id DESC").
		Offset(offset).Limit(limit).Find(&invoices).Error
	return invoices, total, err
}

// ListByRooms lists invoices for a set of rooms; used for
// tenant-facing reads where scope is the tenant's contracted rooms.
func (r *InvoiceRepository) ListByRooms(ctx context.Context, roomIDs []uint, offset, limit int) ([]*models.Invoice, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Invoice{}).Where("room_id IN ?", roomIDs)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var invoices []*models.Invoice
	err := q.Preload("Room").
		Order("year DESC, month DESC, id DESC").
		Offset(offset).Limit(limit).Find(&invoices).Error
	return invoices, total, err
}

// ListUnpaid lists all live UNPAID invoices with room and branch
// preloaded; consumed by the daily reminder job.
func (r *InvoiceRepository) ListUnpaid(ctx context.Context) ([]*models.Invoice, error) {
	var invoices []*models.Invoice
	err := r.db.WithContext(ctx).
		Preload("Room").
		Preload("Branch").
		Where("status = ?", domain.InvoiceUnpaid).
		Find(&invoices).Error
	return invoices, err
}

// Update persists column changes only, skipping preloaded associations
func (r *InvoiceRepository) Update(ctx context.Context, invoice *models.Invoice) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(invoice).Error
}

// Delete soft deletes an invoice
func (r *InvoiceRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Invoice{}, id).Error
}

// ListDeleted lists soft-deleted invoices (recycle bin)
func (r *InvoiceRepository) ListDeleted(ctx context.Context, branchID *uint, offset, limit int) ([]*models.Invoice, int64, error) {
	return listDeleted[models.Invoice](ctx, r.db, branchID, offset, limit)
}

// FindDeleted gets a soft-deleted invoice by ID
func (r *InvoiceRepository) FindDeleted(ctx context.Context, id uint) (*models.Invoice, error) {
	return findDeleted[models.Invoice](ctx, r.db, id)
}

// Restore clears an invoice's tombstone
func (r *InvoiceRepository) Restore(ctx context.Context, id uint) error {
	return restoreRow[models.Invoice](ctx, r.db, id)
}

// Purge permanently removes a soft-deleted invoice
func (r *InvoiceRepository) Purge(ctx context.Context, id uint) error {
	return purgeRow[models.Invoice](ctx, r.db, id)
}
