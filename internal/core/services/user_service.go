package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"roomhub/internal/adapters/persistence/models"
	"roomhub/internal/adapters/persistence/repositories"
	"roomhub/internal/core/domain"
	"roomhub/internal/pkg/password"
	"roomhub/internal/pkg/validate"

	"gorm.io/gorm"
)

// User service errors
var (
	ErrEmailAlreadyExists  = fmt.Errorf("%w: email already exists", domain.ErrConflict)
	ErrOldPasswordWrong    = fmt.Errorf("%w: old password is incorrect", domain.ErrValidation)
	ErrCannotDeleteSelf    = fmt.Errorf("%w: cannot delete your own account", domain.ErrValidation)
	ErrCannotChangeOwnRole = fmt.Errorf("%w: cannot change your own role", domain.ErrValidation)
)

// UserService handles user management business logic
type UserService struct {
	db           *gorm.DB
	userRepo     repositories.UserRepository
	contractRepo *repositories.ContractRepository
}

// NewUserService creates a new user service
func NewUserService(db *gorm.DB) *UserService {
	return &UserService{
		db:           db,
		userRepo:     repositories.NewUserRepository(db),
		contractRepo: repositories.NewContractRepository(db),
	}
}

// CreateUserInput represents create user input
type CreateUserInput struct {
	FullName string `json:"full_name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone" validate:"omitempty,max=20"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role" validate:"required,oneof=ADMIN TENANT"`
	BranchID *uint  `json:"branch_id"`
}

// Create creates a staff or tenant account. A branch-scoped admin
// can only create accounts pinned to their own branch; the requested
// branch_id is overridden rather than trusted.
func (s *UserService) Create(ctx context.Context, p domain.Principal, input *CreateUserInput) (*models.User, error) {
	scope, err := adminScope(p, nil)
	if err != nil {
		return nil, err
	}
	if err := validate.Struct(input); err != nil {
		return nil, err
	}

	branchID := input.BranchID
	if b := scope.Branch(); b != nil {
		branchID = b
	}

	if branchID != nil {
		if _, err := repositories.NewBranchRepository(s.db).GetByID(ctx, *branchID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: branch", domain.ErrNotFound)
			}
			return nil, err
		}
	}

	exists, err := s.userRepo.ExistsByEmail(ctx, input.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailAlreadyExists
	}

	hashed, err := password.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		FullName: input.FullName,
		Email:    input.Email,
		Phone:    input.Phone,
		Password: hashed,
		Role:     domain.Role(input.Role),
		BranchID: branchID,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	log.Printf("✅ User created: %s (%s)", user.Email, user.Role)
	return user, nil
}

// Get gets a user. Admins see any user within their branch scope;
// tenants only see themselves.
func (s *UserService) Get(ctx context.Context, p domain.Principal, id uint) (*models.User, error) {
	scope, err := domain.ResolveScope(p, nil)
	if err != nil {
		return nil, err
	}
	if tenantID, ok := scope.TenantID(); ok && tenantID != id {
		return nil, fmt.Errorf("%w: user", domain.ErrNotFound)
	}

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user", domain.ErrNotFound)
		}
		return nil, err
	}
	if user.BranchID != nil && !scope.Allows(*user.BranchID) {
		return nil, fmt.Errorf("%w: user", domain.ErrNotFound)
	}
	return user, nil
}

// List lists users within the branch scope, optionally filtered by role
func (s *UserService) List(ctx context.Context, p domain.Principal, requestedBranch *uint, role string, offset, limit int) ([]*models.User, int64, error) {
	scope, err := adminScope(p, requestedBranch)
	if err != nil {
		return nil, 0, err
	}
	return s.userRepo.List(ctx, scope.Branch(), role, offset, limit)
}

// UpdateUserInput represents update user input
type UpdateUserInput struct {
	FullName *string `json:"full_name" validate:"omitempty,min=2,max=100"`
	Email    *string `json:"email" validate:"omitempty,email"`
	Phone    *string `json:"phone" validate:"omitempty,max=20"`
	Role     *string `json:"role" validate:"omitempty,oneof=ADMIN TENANT"`
	BranchID *uint   `json:"branch_id"`
	Password *string `json:"password" validate:"omitempty,min=8"`
}

// Update edits a user account. Admins cannot demote themselves, and
// a tenant with live contracts cannot change role.
func (s *UserService) Update(ctx context.Context, p domain.Principal, id uint, input *UpdateUserInput) (*models.User, error) {
	scope, err := adminScope(p, nil)
	if err != nil {
		return nil, err
	}
	if err := validate.Struct(input); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user", domain.ErrNotFound)
		}
		return nil, err
	}
	if user.BranchID != nil && !scope.Allows(*user.BranchID) {
		return nil, fmt.Errorf("%w: user", domain.ErrNotFound)
	}

	if input.Email != nil && *input.Email != user.Email {
		exists, err := s.userRepo.ExistsByEmail(ctx, *input.Email)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, ErrEmailAlreadyExists
		}
		user.Email = *input.Email
	}

	if input.Role != nil && domain.Role(*input.Role) != user.Role {
		if user.ID == p.UserID {
			return nil, ErrCannotChangeOwnRole
		}
		if user.Role == domain.RoleTenant {
			active, err := s.contractRepo.CountActiveByUser(ctx, user.ID)
			if err != nil {
				return nil, err
			}
			if active > 0 {
				return nil, fmt.Errorf("%w: tenant has active contracts", domain.ErrConflict)
			}
		}
		user.Role = domain.Role(*input.Role)
	}

	if input.BranchID != nil {
		if !scope.Allows(*input.BranchID) {
			return nil, fmt.Errorf("%w: branch", domain.ErrAccessDenied)
		}
		if _, err := repositories.NewBranchRepository(s.db).GetByID(ctx, *input.BranchID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: branch", domain.ErrNotFound)
			}
			return nil, err
		}
		user.BranchID = input.BranchID
	}

	if input.FullName != nil {
		user.FullName = *input.FullName
	}
	if input.Phone != nil {
		user.Phone = *input.Phone
	}
	if input.Password != nil {
		hashed, err := password.Hash(*input.Password)
		if err != nil {
			return nil, err
		}
		user.Password = hashed
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// ChangePasswordInput represents change password input
type ChangePasswordInput struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8"`
}

// ChangePassword lets a signed-in user rotate their own password
func (s *UserService) ChangePassword(ctx context.Context, p domain.Principal, input *ChangePasswordInput) error {
	if err := validate.Struct(input); err != nil {
		return err
	}

	user, err := s.userRepo.GetByID(ctx, p.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: user", domain.ErrNotFound)
		}
		return err
	}
	if !password.Verify(input.OldPassword, user.Password) {
		return ErrOldPasswordWrong
	}

	hashed, err := password.Hash(input.NewPassword)
	if err != nil {
		return err
	}
	user.Password = hashed
	if err := s.userRepo.Update(ctx, user); err != nil {
		return err
	}

	// Force re-login everywhere else
	return repositories.NewRefreshTokenRepository(s.db).RevokeAllByUserID(ctx, user.ID)
}

// SoftDelete tombstones a user account. Refused for your own account
// and for tenants still holding active contracts.
func (s *UserService) SoftDelete(ctx context.Context, p domain.Principal, id uint) error {
	scope, err := adminScope(p, nil)
	if err != nil {
		return err
	}
	if id == p.UserID {
		return ErrCannotDeleteSelf
	}

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: user", domain.ErrNotFound)
		}
		return err
	}
	if user.BranchID != nil && !scope.Allows(*user.BranchID) {
		return fmt.Errorf("%w: user", domain.ErrNotFound)
	}

	active, err := s.contractRepo.CountActiveByUser(ctx, id)
	if err != nil {
		return err
	}
	if active > 0 {
		return domain.ErrUserHasContract
	}

	if err := s.userRepo.Delete(ctx, id); err != nil {
		return err
	}
	return repositories.NewRefreshTokenRepository(s.db).RevokeAllByUserID(ctx, id)
}

// ListDeleted lists tombstoned users within the branch scope
func (s *UserService) ListDeleted(ctx context.Context, p domain.Principal, requestedBranch *uint, offset, limit int) ([]*models.User, int64, error) {
	scope, err := adminScope(p, requestedBranch)
	if err != nil {
		return nil, 0, err
	}
	return s.userRepo.ListDeleted(ctx, scope.Branch(), offset, limit)
}

// Restore brings a tombstoned user back after re-checking that the
// email was not taken in the meantime.
func (s *UserService) Restore(ctx context.Context, p domain.Principal, id uint) (*models.User, error) {
	scope, err := adminScope(p, nil)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindDeleted(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user", domain.ErrNotFound)
		}
		return nil, err
	}
	if user.BranchID != nil && !scope.Allows(*user.BranchID) {
		return nil, fmt.Errorf("%w: user", domain.ErrNotFound)
	}

	exists, err := s.userRepo.ExistsByEmail(ctx, user.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrRestoreConflict
	}

	if err := s.userRepo.Restore(ctx, id); err != nil {
		return nil, err
	}
	return s.userRepo.GetByID(ctx, id)
}

// Purge permanently removes a tombstoned user. Refused while any
// contract still references the account, tombstoned or not.
func (s *UserService) Purge(ctx context.Context, p domain.Principal, id uint) error {
	scope, err := adminScope(p, nil)
	if err != nil {
		return err
	}

	user, err := s.userRepo.FindDeleted(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: user", domain.ErrNotFound)
		}
		return err
	}
	if user.BranchID != nil && !scope.Allows(*user.BranchID) {
		return fmt.Errorf("%w: user", domain.ErrNotFound)
	}

	count, err := s.contractRepo.CountByUser(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("%w: contracts still reference this user", domain.ErrConflict)
	}

	return s.userRepo.Purge(ctx, id)
}
