package repositories

import (
	"context"

	"roomhub/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// BranchRepository handles branch data access
type BranchRepository struct {
	db *gorm.DB
}

// NewBranchRepository creates a new branch repository
func NewBranchRepository(db *gorm.DB) *BranchRepository {
	return &BranchRepository{db: db}
}

// Create creates a new branch
func (r *BranchRepository) Create(ctx context.Context, branch *models.Branch) error {
	return r.db.WithContext(ctx).Create(branch).Error
}

// GetByID gets a branch by ID
func (r *BranchRepository) GetByID(ctx context.Context, id uint) (*models.Branch, error) {
	var branch models.Branch
	err := r.db.WithContext(ctx).First(&branch, id).Error
	if err != nil {
		return nil, err
	}
	return &branch, nil
}

// List lists branches, optionally restricted to one branch id for
// scoped admins
func (r *BranchRepository) List(ctx context.Context, branchID *uint, offset, limit int) ([]*models.Branch, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Branch{})
	if branchID != nil {
		q = q.Where("id = ?", *branchID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var branches []*models.Branch
	err := q.Order("name ASC").Offset(offset).Limit(limit).Find(&branches).Error
	return branches, total, err
}

// ExistsByName checks if a branch name is taken
func (r *BranchRepository) ExistsByName(ctx context.Context, name string, excludeID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Branch{}).
		Where("name = ? AND id <> ?", name, excludeID).
		Count(&count).Error
	return count > 0, err
}

// Update updates a branch
func (r *BranchRepository) Update(ctx context.Context, branch *models.Branch) error {
	return r.db.WithContext(ctx).Save(branch).Error
}

// Delete soft deletes a branch
func (r *BranchRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Branch{}, id).Error
}

// ListDeleted lists tombstoned branches
func (r *BranchRepository) ListDeleted(ctx context.Context, offset, limit int) ([]*models.Branch, int64, error) {
	return listDeleted[models.Branch](ctx, r.db, nil, offset, limit)
}

// FindDeleted fetches one tombstoned branch
func (r *BranchRepository) FindDeleted(ctx context.Context, id uint) (*models.Branch, error) {
	return findDeleted[models.Branch](ctx, r.db, id)
}

// Restore clears a branch tombstone
func (r *BranchRepository) Restore(ctx context.Context, id uint) error {
	return restoreRow[models.Branch](ctx, r.db, id)
}

// Purge permanently removes a tombstoned branch
func (r *BranchRepository) Purge(ctx context.Context, id uint) error {
	return purgeRow[models.Branch](ctx, r.db, id)
}
