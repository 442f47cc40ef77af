package services

import (
	"context"
	"errors"
	"fmt"

	"roomhub/internal/adapters/persistence/models"
	"roomhub/internal/adapters/persistence/repositories"
	"roomhub/internal/core/domain"
	"roomhub/internal/pkg/validate"

	"gorm.io/gorm"
)

// BranchService handles branch registry business logic
type BranchService struct {
	branchRepo *repositories.BranchRepository
	roomRepo   *repositories.RoomRepository
}

// NewBranchService creates a new branch service
func NewBranchService(db *gorm.DB) *BranchService {
	return &BranchService{
		branchRepo: repositories.NewBranchRepository(db),
		roomRepo:   repositories.NewRoomRepository(db),
	}
}

// CreateBranchInput represents create branch input
type CreateBranchInput struct {
	Name    string `json:"name" validate:"required,min=2,max=100"`
	Address string `json:"address" validate:"max=255"`
	Manager string `json:"manager" validate:"max=100"`
}

// Create creates a new branch. Global admins only.
func (s *BranchService) Create(ctx context.Context, p domain.Principal, input *CreateBranchInput) (*models.Branch, error) {
	if !p.IsGlobalAdmin() {
		return nil, fmt.Errorf("%w: only global admins manage branches", domain.ErrAccessDenied)
	}
	if err := validate.Struct(input); err != nil {
		return nil, err
	}

	taken, err := s.branchRepo.ExistsByName(ctx, input.Name, 0)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, fmt.Errorf("%w: branch name already in use", domain.ErrConflict)
	}

	branch := &models.Branch{
		Name:    input.Name,
		Address: input.Address,
		Manager: input.Manager,
	}
	if err := s.branchRepo.Create(ctx, branch); err != nil {
		return nil, err
	}
	return branch, nil
}

// Get gets a branch within the caller's scope
func (s *BranchService) Get(ctx context.Context, p domain.Principal, id uint) (*models.Branch, error) {
	scope, err := domain.ResolveScope(p, nil)
	if err != nil {
		return nil, err
	}

	branch, err := s.branchRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: branch", domain.ErrNotFound)
		}
		return nil, err
	}
	if !scope.Allows(branch.ID) {
		return nil, fmt.Errorf("%w: branch", domain.ErrNotFound)
	}
	return branch, nil
}

// List lists branches visible to the caller
func (s *BranchService) List(ctx context.Context, p domain.Principal, offset, limit int) ([]*models.Branch, int64, error) {
	scope, err := domain.ResolveScope(p, nil)
	if err != nil {
		return nil, 0, err
	}
	return s.branchRepo.List(ctx, scope.Branch(), offset, limit)
}

// UpdateBranchInput represents update branch input
type UpdateBranchInput struct {
	Name    *string `json:"name" validate:"omitempty,min=2,max=100"`
	Address *string `json:"address" validate:"omitempty,max=255"`
	Manager *string `json:"manager" validate:"omitempty,max=100"`
}

// Update updates a branch. Global admins only.
func (s *BranchService) Update(ctx context.Context, p domain.Principal, id uint, input *UpdateBranchInput) (*models.Branch, error) {
	if !p.IsGlobalAdmin() {
		return nil, fmt.Errorf("%w: only global admins manage branches", domain.ErrAccessDenied)
	}
	if err := validate.Struct(input); err != nil {
		return nil, err
	}

	branch, err := s.branchRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: branch", domain.ErrNotFound)
		}
		return nil, err
	}

	if input.Name != nil && *input.Name != branch.Name {
		taken, err := s.branchRepo.ExistsByName(ctx, *input.Name, branch.ID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, fmt.Errorf("%w: branch name already in use", domain.ErrConflict)
		}
		branch.Name = *input.Name
	}
	if input.Address != nil {
		branch.Address = *input.Address
	}
	if input.Manager != nil {
		branch.Manager = *input.Manager
	}

	if err := s.branchRepo.Update(ctx, branch); err != nil {
		return nil, err
	}
	return branch, nil
}

// SoftDelete tombstones a branch. Refused while live rooms still
// reference it.
func (s *BranchService) SoftDelete(ctx context.Context, p domain.Principal, id uint) error {
	if !p.IsGlobalAdmin() {
		return fmt.Errorf("%w: only global admins manage branches", domain.ErrAccessDenied)
	}

	if _, err := s.branchRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: branch", domain.ErrNotFound)
		}
		return err
	}

	rooms, err := s.roomRepo.CountByBranch(ctx, id)
	if err != nil {
		return err
	}
	if rooms > 0 {
		return domain.ErrBranchInUse
	}

	return s.branchRepo.Delete(ctx, id)
}

// ListDeleted lists tombstoned branches. Global admins only.
func (s *BranchService) ListDeleted(ctx context.Context, p domain.Principal, offset, limit int) ([]*models.Branch, int64, error) {
	if !p.IsGlobalAdmin() {
		return nil, 0, fmt.Errorf("%w: only global admins manage branches", domain.ErrAccessDenied)
	}
	return s.branchRepo.ListDeleted(ctx, offset, limit)
}

// Restore brings a tombstoned branch back after re-checking that its
// name was not taken in the meantime.
func (s *BranchService) Restore(ctx context.Context, p domain.Principal, id uint) (*models.Branch, error) {
	if !p.IsGlobalAdmin() {
		return nil, fmt.Errorf("%w: only global admins manage branches", domain.ErrAccessDenied)
	}

	branch, err := s.branchRepo.FindDeleted(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: branch", domain.ErrNotFound)
		}
		return nil, err
	}

	taken, err := s.branchRepo.ExistsByName(ctx, branch.Name, branch.ID)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, domain.ErrRestoreConflict
	}

	if err := s.branchRepo.Restore(ctx, id); err != nil {
		return nil, err
	}
	return s.branchRepo.GetByID(ctx, id)
}

// Purge permanently removes a tombstoned branch. Refused while any
// room, live or tombstoned, still references it.
func (s *BranchService) Purge(ctx context.Context, p domain.Principal, id uint) error {
	if !p.IsGlobalAdmin() {
		return fmt.Errorf("%w: only global admins manage branches", domain.ErrAccessDenied)
	}

	if _, err := s.branchRepo.FindDeleted(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: branch", domain.ErrNotFound)
		}
		return err
	}

	rooms, err := s.roomRepo.CountByBranchUnscoped(ctx, id)
	if err != nil {
		return err
	}
	if rooms > 0 {
		return domain.ErrBranchInUse
	}

	return s.branchRepo.Purge(ctx, id)
}
