package repositories

import (
	"context"
	"time"

	"roomhub/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// AccessEventRepository handles access event data access
type AccessEventRepository struct {
	db *gorm.DB
}

// NewAccessEventRepository creates a new access event repository
func NewAccessEventRepository(db *gorm.DB) *AccessEventRepository {
	return &AccessEventRepository{db: db}
}

// Create records a new access event
func (r *AccessEventRepository) Create(ctx context.Context, event *models.AccessEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

// List lists access events newest first, optionally filtered by
// branch and user
func (r *AccessEventRepository) List(ctx context.Context, branchID *uint, userID *uint, offset, limit int) ([]*models.AccessEvent, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.AccessEvent{})
	if branchID != nil {
		q = q.Where("branch_id = ?", *branchID)
	}
	if userID != nil {
		q = q.Where("user_id = ?", *userID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var events []*models.AccessEvent
	err := q.Preload("User").Order("occurred_at DESC").
		Offset(offset).Limit(limit).Find(&events).Error
	return events, total, err
}

// CountSince counts events recorded after a cutoff; feeds the
// dashboard's recent-activity widget.
func (r *AccessEventRepository) CountSince(ctx context.Context, branchID *uint, cutoff time.Time) (int64, error) {
	q := r.db.WithContext(ctx).Model(&models.AccessEvent{}).
		Where("occurred_at >= ?", cutoff)
	if branchID != nil {
		q = q.Where("branch_id = ?", *branchID)
	}
	var count int64
	err := q.Count(&count).Error
	return count, err
}
