package repositories

import (
	"context"
	"errors"

	"roomhub/internal/adapters/persistence/models"
	"roomhub/internal/core/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ContractRepository handles contract data access
type ContractRepository struct {
	db *gorm.DB
}

// NewContractRepository creates a new contract repository
func NewContractRepository(db *gorm.DB) *ContractRepository {
	return &ContractRepository{db: db}
}

// Create creates a new contract
func (r *ContractRepository) Create(ctx context.Context, contract *models.Contract) error {
	return r.db.WithContext(ctx).Create(contract).Error
}

// GetByID gets a contract by ID with relations
func (r *ContractRepository) GetByID(ctx context.Context, id uint) (*models.Contract, error) {
	var contract models.Contract
	err := r.db.WithContext(ctx).
		Preload("Room").
		Preload("Tenant").
		Preload("Branch").
		First(&contract, id).Error
	if err != nil {
		return nil, err
	}
	return &contract, nil
}

// FindActiveByRoom returns the ACTIVE contract for a room, or nil if
// the room is free. Callers that need the single-active invariant
// must hold the room row lock.
func (r *ContractRepository) FindActiveByRoom(ctx context.Context, roomID uint) (*models.Contract, error) {
	var contract models.Contract
	err := r.db.WithContext(ctx).
		Where("room_id = ? AND status = ?", roomID, domain.ContractActive).
		First(&contract).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &contract, nil
}

// ListActiveByUser lists a tenant's ACTIVE contracts
func (r *ContractRepository) ListActiveByUser(ctx context.Context, userID uint) ([]*models.Contract, error) {
	var contracts []*models.Contract
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, domain.ContractActive).
		Find(&contracts).Error
	return contracts, err
}

// CountActiveByUser counts a user's ACTIVE contracts
func (r *ContractRepository) CountActiveByUser(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Contract{}).
		Where("user_id = ? AND status = ?", userID, domain.ContractActive).
		Count(&count).Error
	return count, err
}

// CountByRoom counts live contracts referencing a room, any status
func (r *ContractRepository) CountByRoom(ctx context.Context, roomID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Contract{}).
		Where("room_id = ?", roomID).
		Count(&count).Error
	return count, err
}

// CountByRoomUnscoped counts all contracts referencing a room,
// tombstoned included. Guards room edits that would desync the
// denormalized branch_id on historical rows.
func (r *ContractRepository) CountByRoomUnscoped(ctx context.Context, roomID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Unscoped().Model(&models.Contract{}).
		Where("room_id = ?", roomID).
		Count(&count).Error
	return count, err
}

// CountByUser counts live contracts referencing a user, any status
func (r *ContractRepository) CountByUser(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Contract{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count, err
}

// List lists contracts with pagination, optionally filtered by
// branch, user and status
func (r *ContractRepository) List(ctx context.Context, branchID *uint, userID *uint, status domain.ContractStatus, offset, limit int) ([]*models.Contract, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Contract{})
	if branchID != nil {
		q = q.Where("branch_id = ?", *branchID)
	}
	if userID != nil {
		q = q.Where("user_id = ?", *userID)
	}
	if status != "" {
		q = q.Where("status = ?", status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var contracts []*models.Contract
	err := q.Preload("Room").Preload("Tenant").Preload("Branch").
		Order("created_at DESC").
		Offset(offset).Limit(limit).Find(&contracts).Error
	return contracts, total, err
}

// ListExpiredActive lists ACTIVE contracts whose end date lies in
// the past; consumed by the nightly expiry sweep.
func (r *ContractRepository) ListExpiredActive(ctx context.Context) ([]*models.Contract, error) {
	var contracts []*models.Contract
	err := r.db.WithContext(ctx).
		Where("status = ? AND end_date IS NOT NULL AND end_date < CURRENT_DATE", domain.ContractActive).
		Find(&contracts).Error
	return contracts, err
}

// Update persists column changes only. Associations loaded by
// GetByID are skipped, otherwise a stale preload would write the old
// foreign keys back over an edit.
func (r *ContractRepository) Update(ctx context.Context, contract *models.Contract) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(contract).Error
}

// Delete soft deletes a contract
func (r *ContractRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Contract{}, id).Error
}

// ListDeleted lists soft-deleted contracts (recycle bin)
func (r *ContractRepository) ListDeleted(ctx context.Context, branchID *uint, offset, limit int) ([]*models.Contract, int64, error) {
	return listDeleted[models.Contract](ctx, r.db, branchID, offset, limit)
}

// FindDeleted gets a soft-deleted contract by ID
func (r *ContractRepository) FindDeleted(ctx context.Context, id uint) (*models.Contract, error) {
	return findDeleted[models.Contract](ctx, r.db, id)
}

// Restore clears a contract's tombstone
func (r *ContractRepository) Restore(ctx context.Context, id uint) error {
	return restoreRow[models.Contract](ctx, r.db, id)
}

// Purge permanently removes a soft-deleted contract
func (r *ContractRepository) Purge(ctx context.Context, id uint) error {
	return purgeRow[models.Contract](ctx, r.db, id)
}
