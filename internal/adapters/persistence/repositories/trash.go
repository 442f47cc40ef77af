package repositories

import (
	"context"

	"gorm.io/gorm"
)

// Generic tombstone lifecycle shared by rooms, contracts, invoices
// and users. Soft-deleted rows disappear from all default queries via
// gorm.DeletedAt; the helpers below are the only code that looks past
// the tombstone. Invariant re-validation on restore belongs to the
// services, not here.

// listDeleted lists soft-deleted rows, newest deletion first,
// optionally restricted to one branch.
func listDeleted[T any](ctx context.Context, db *gorm.DB, branchID *uint, offset, limit int) ([]*T, int64, error) {
	q := db.WithContext(ctx).Unscoped().Model(new(T)).Where("deleted_at IS NOT NULL")
	if branchID != nil {
		q = q.Where("branch_id = ?", *branchID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []*T
	err := q.Order("deleted_at DESC").Offset(offset).Limit(limit).Find(&items).Error
	return items, total, err
}

// findDeleted fetches one soft-deleted row by id.
func findDeleted[T any](ctx context.Context, db *gorm.DB, id uint) (*T, error) {
	var item T
	err := db.WithContext(ctx).Unscoped().
		Where("deleted_at IS NOT NULL").
		First(&item, id).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// restoreRow clears the tombstone. Returns gorm.ErrRecordNotFound
// when the row does not exist or is not deleted, so callers cannot
// restore a live or purged entity.
func restoreRow[T any](ctx context.Context, db *gorm.DB, id uint) error {
	res := db.WithContext(ctx).Unscoped().Model(new(T)).
		Where("id = ? AND deleted_at IS NOT NULL", id).
		Update("deleted_at", nil)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// purgeRow physically removes a soft-deleted row. Terminal.
func purgeRow[T any](ctx context.Context, db *gorm.DB, id uint) error {
	res := db.WithContext(ctx).Unscoped().
		Where("id = ? AND deleted_at IS NOT NULL", id).
		Delete(new(T))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
