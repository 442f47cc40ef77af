package repositories

import (
	"context"

	"roomhub/internal/adapters/persistence/models"
	"roomhub/internal/core/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RoomRepository handles room data access
type RoomRepository struct {
	db *gorm.DB
}

// NewRoomRepository creates a new room repository
func NewRoomRepository(db *gorm.DB) *RoomRepository {
	return &RoomRepository{db: db}
}

// Create creates a new room
func (r *RoomRepository) Create(ctx context.Context, room *models.Room) error {
	return r.db.WithContext(ctx).Create(room).Error
}

// GetByID gets a room by ID with its branch
func (r *RoomRepository) GetByID(ctx context.Context, id uint) (*models.Room, error) {
	var room models.Room
	err := r.db.WithContext(ctx).Preload("Branch").First(&room, id).Error
	if err != nil {
		return nil, err
	}
	return &room, nil
}

// GetByIDForUpdate gets a room by ID under a row lock. Must run
// inside a transaction; serializes contract activation and invoice
// creation per room. SQLite has no SELECT FOR UPDATE, its
// transactions already lock the whole file.
func (r *RoomRepository) GetByIDForUpdate(ctx context.Context, id uint) (*models.Room, error) {
	q := r.db.WithContext(ctx)
	if r.db.Dialector.Name() == "mysql" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var room models.Room
	err := q.First(&room, id).Error
	if err != nil {
		return nil, err
	}
	return &room, nil
}

// List lists rooms with pagination, optionally filtered by branch
// and status
func (r *RoomRepository) List(ctx context.Context, branchID *uint, status domain.RoomStatus, offset, limit int) ([]*models.Room, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Room{})
	if branchID != nil {
		q = q.Where("branch_id = ?", *branchID)
	}
	if status != "" {
		q = q.Where("status = ?", status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rooms []*models.Room
	err := q.Preload("Branch").Order("branch_id ASC, room_number ASC").
		Offset(offset).Limit(limit).Find(&rooms).Error
	return rooms, total, err
}

// ExistsByNumber checks if a room number is taken within a branch
func (r *RoomRepository) ExistsByNumber(ctx context.Context, branchID uint, number string, excludeID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Room{}).
		Where("branch_id = ? AND room_number = ? AND id <> ?", branchID, number, excludeID).
		Count(&count).Error
	return count > 0, err
}

// CountByBranch counts live rooms in a branch
func (r *RoomRepository) CountByBranch(ctx context.Context, branchID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Room{}).
		Where("branch_id = ?", branchID).
		Count(&count).Error
	return count, err
}

// CountByBranchUnscoped counts rooms referencing a branch,
// tombstoned ones included; used by the branch purge check.
func (r *RoomRepository) CountByBranchUnscoped(ctx context.Context, branchID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Unscoped().Model(&models.Room{}).
		Where("branch_id = ?", branchID).
		Count(&count).Error
	return count, err
}

// Update persists column changes only; the preloaded Branch is
// skipped so it cannot write the old branch_id back over a move.
func (r *RoomRepository) Update(ctx context.Context, room *models.Room) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(room).Error
}

// SetStatus flips room availability. Only the contract service calls
// this, inside the same transaction as the contract transition.
func (r *RoomRepository) SetStatus(ctx context.Context, id uint, status domain.RoomStatus) error {
	return r.db.WithContext(ctx).Model(&models.Room{}).
		Where("id = ?", id).
		Update("status", status).Error
}

// Delete soft deletes a room
func (r *RoomRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Room{}, id).Error
}

// ListDeleted lists soft-deleted rooms (recycle bin)
func (r *RoomRepository) ListDeleted(ctx context.Context, branchID *uint, offset, limit int) ([]*models.Room, int64, error) {
	return listDeleted[models.Room](ctx, r.db, branchID, offset, limit)
}

// FindDeleted gets a soft-deleted room by ID
func (r *RoomRepository) FindDeleted(ctx context.Context, id uint) (*models.Room, error) {
	return findDeleted[models.Room](ctx, r.db, id)
}

// Restore clears a room's tombstone
func (r *RoomRepository) Restore(ctx context.Context, id uint) error {
	return restoreRow[models.Room](ctx, r.db, id)
}

// Purge permanently removes a soft-deleted room
func (r *RoomRepository) Purge(ctx context.Context, id uint) error {
	return purgeRow[models.Room](ctx, r.db, id)
}
