package repositories

import (
	"context"

	"roomhub/internal/adapters/persistence/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// userRepository implements UserRepository interface
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// Create creates a new user
func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// GetByID gets a user by ID
func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Preload("Branch").First(&user, id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByEmail gets a user by email
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Update persists column changes only, skipping preloaded associations
func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(user).Error
}

// Delete soft deletes a user
func (r *userRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.User{}, id).Error
}

// List lists users with pagination, optionally filtered by branch
// and role
func (r *userRepository) List(ctx context.Context, branchID *uint, role string, offset, limit int) ([]*models.User, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.User{})
	if branchID != nil {
		q = q.Where("branch_id = ?", *branchID)
	}
	if role != "" {
		q = q.Where("role = ?", role)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []*models.User
	err := q.Preload("Branch").Order("created_at DESC").Offset(offset).Limit(limit).Find(&users).Error
	return users, total, err
}

// ExistsByEmail checks if email exists
func (r *userRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&count).Error
	return count > 0, err
}

// ListDeleted lists soft-deleted users (recycle bin)
func (r *userRepository) ListDeleted(ctx context.Context, branchID *uint, offset, limit int) ([]*models.User, int64, error) {
	return listDeleted[models.User](ctx, r.db, branchID, offset, limit)
}

// FindDeleted gets a soft-deleted user by ID
func (r *userRepository) FindDeleted(ctx context.Context, id uint) (*models.User, error) {
	return findDeleted[models.User](ctx, r.db, id)
}

// Restore clears a user's tombstone
func (r *userRepository) Restore(ctx context.Context, id uint) error {
	return restoreRow[models.User](ctx, r.db, id)
}

// Purge permanently removes a soft-deleted user
func (r *userRepository) Purge(ctx context.Context, id uint) error {
	return purgeRow[models.User](ctx, r.db, id)
}
