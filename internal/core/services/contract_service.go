package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"roomhub/internal/adapters/persistence/models"
	"roomhub/internal/adapters/persistence/repositories"
	"roomhub/internal/core/domain"
	"roomhub/internal/pkg/validate"

	"gorm.io/gorm"
)

// ContractService handles tenancy contract lifecycle. All state
// transitions that touch room availability run inside a transaction
// holding the room row lock, so the single-active-contract invariant
// survives concurrent requests.
type ContractService struct {
	db *gorm.DB
}

// NewContractService creates a new contract service
func NewContractService(db *gorm.DB) *ContractService {
	return &ContractService{db: db}
}

// CreateContractInput represents create contract input
type CreateContractInput struct {
	RoomID    uint   `json:"room_id" validate:"required"`
	UserID    uint   `json:"user_id" validate:"required"`
	StartDate string `json:"start_date" validate:"required"`
	EndDate   string `json:"end_date"`
	Deposit   int64  `json:"deposit" validate:"gte=0"`
	Status    string `json:"status" validate:"omitempty,oneof=PENDING ACTIVE"`
	ScanURL   string `json:"scan_url" validate:"omitempty,url"`
}

// Create binds a tenant to a room. The active-contract check and the
// insert execute atomically under the room row lock; a losing racer
// surfaces RoomAlreadyRented instead of corrupting state.
func (s *ContractService) Create(ctx context.Context, p domain.Principal, input *CreateContractInput) (*models.Contract, error) {
	scope, err := adminScope(p, nil)
	if err != nil {
		return nil, err
	}
	if err := validate.Struct(input); err != nil {
		return nil, err
	}

	startDate, err := time.Parse("2006-01-02", input.StartDate)
	if err != nil {
		return nil, fmt.Errorf("%w: start_date must be YYYY-MM-DD", domain.ErrValidation)
	}
	var endDate *time.Time
	if input.EndDate != "" {
		parsed, err := time.Parse("2006-01-02", input.EndDate)
		if err != nil {
			return nil, fmt.Errorf("%w: end_date must be YYYY-MM-DD", domain.ErrValidation)
		}
		if !parsed.After(startDate) {
			return nil, fmt.Errorf("%w: end_date must be after start_date", domain.ErrValidation)
		}
		endDate = &parsed
	}

	status := domain.ContractStatus(input.Status)
	if status == "" {
		status = domain.ContractActive
	}

	var contract *models.Contract
	err = s.db.Transaction(func(tx *gorm.DB) error {
		roomRepo := repositories.NewRoomRepository(tx)
		contractRepo := repositories.NewContractRepository(tx)
		userRepo := repositories.NewUserRepository(tx)

		room, err := roomRepo.GetByIDForUpdate(ctx, input.RoomID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: room", domain.ErrNotFound)
			}
			return err
		}
		if !scope.Allows(room.BranchID) {
			return fmt.Errorf("%w: room", domain.ErrNotFound)
		}

		tenant, err := userRepo.GetByID(ctx, input.UserID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: user", domain.ErrNotFound)
			}
			return err
		}
		if tenant.Role != domain.RoleTenant {
			return fmt.Errorf("%w: contracts can only bind tenants", domain.ErrValidation)
		}

		if status == domain.ContractActive {
			existing, err := contractRepo.FindActiveByRoom(ctx, room.ID)
			if err != nil {
				return err
			}
			if existing != nil {
				return domain.ErrRoomAlreadyRented
			}
		}

		contract = &models.Contract{
			RoomID:    room.ID,
			UserID:    tenant.ID,
			BranchID:  room.BranchID,
			StartDate: startDate,
			EndDate:   endDate,
			Deposit:   input.Deposit,
			Status:    status,
			ScanURL:   input.ScanURL,
		}
		if err := contractRepo.Create(ctx, contract); err != nil {
			return err
		}

		if status == domain.ContractActive {
			if err := roomRepo.SetStatus(ctx, room.ID, domain.RoomOccupied); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("✅ Contract #%d created for room %d (status %s)", contract.ID, contract.RoomID, contract.Status)
	return contract, nil
}

// Get gets a contract within the caller's scope. Tenants only see
// their own contracts.
func (s *ContractService) Get(ctx context.Context, p domain.Principal, id uint) (*models.Contract, error) {
	scope, err := domain.ResolveScope(p, nil)
	if err != nil {
		return nil, err
	}

	contract, err := repositories.NewContractRepository(s.db).GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: contract", domain.ErrNotFound)
		}
		return nil, err
	}
	if !scope.Allows(contract.BranchID) {
		return nil, fmt.Errorf("%w: contract", domain.ErrNotFound)
	}
	if tenantID, ok := scope.TenantID(); ok && contract.UserID != tenantID {
		return nil, fmt.Errorf("%w: contract", domain.ErrNotFound)
	}
	return contract, nil
}

// List lists contracts within scope; tenants are pinned to their own
func (s *ContractService) List(ctx context.Context, p domain.Principal, requestedBranch *uint, userID *uint, status domain.ContractStatus, offset, limit int) ([]*models.Contract, int64, error) {
	scope, err := domain.ResolveScope(p, requestedBranch)
	if err != nil {
		return nil, 0, err
	}
	if tenantID, ok := scope.TenantID(); ok {
		userID = &tenantID
	}
	return repositories.NewContractRepository(s.db).List(ctx, scope.Branch(), userID, status, offset, limit)
}

// Activate moves a PENDING contract to ACTIVE and occupies the room
func (s *ContractService) Activate(ctx context.Context, p domain.Principal, id uint) (*models.Contract, error) {
	scope, err := adminScope(p, nil)
	if err != nil {
		return nil, err
	}

	var contract *models.Contract
	err = s.db.Transaction(func(tx *gorm.DB) error {
		contractRepo := repositories.NewContractRepository(tx)
		roomRepo := repositories.NewRoomRepository(tx)

		ct, err := contractRepo.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: contract", domain.ErrNotFound)
			}
			return err
		}
		if !scope.Allows(ct.BranchID) {
			return fmt.Errorf("%w: contract", domain.ErrNotFound)
		}
		if ct.Status != domain.ContractPending {
			return fmt.Errorf("%w: only pending contracts can be activated", domain.ErrInvalidState)
		}

		if _, err := roomRepo.GetByIDForUpdate(ctx, ct.RoomID); err != nil {
			return err
		}
		existing, err := contractRepo.FindActiveByRoom(ctx, ct.RoomID)
		if err != nil {
			return err
		}
		if existing != nil {
			return domain.ErrRoomAlreadyRented
		}

		ct.Status = domain.ContractActive
		if err := contractRepo.Update(ctx, ct); err != nil {
			return err
		}
		if err := roomRepo.SetStatus(ctx, ct.RoomID, domain.RoomOccupied); err != nil {
			return err
		}
		contract = ct
		return nil
	})
	if err != nil {
		return nil, err
	}
	return contract, nil
}

// Terminate ends an ACTIVE contract and frees the room. Calling it
// on a contract in any other state fails rather than silently
// succeeding.
func (s *ContractService) Terminate(ctx context.Context, p domain.Principal, id uint) (*models.Contract, error) {
	scope, err := adminScope(p, nil)
	if err != nil {
		return nil, err
	}

	var contract *models.Contract
	err = s.db.Transaction(func(tx *gorm.DB) error {
		ct, err := s.terminateLocked(ctx, tx, scope, id, domain.ContractTerminated)
		if err != nil {
			return err
		}
		contract = ct
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("✅ Contract #%d terminated, room %d freed", contract.ID, contract.RoomID)
	return contract, nil
}

// terminateLocked moves an ACTIVE contract to a terminal state and
// frees the room, under the room row lock. Shared by Terminate, the
// trash path and the expiry sweep.
func (s *ContractService) terminateLocked(ctx context.Context, tx *gorm.DB, scope domain.Scope, id uint, to domain.ContractStatus) (*models.Contract, error) {
	contractRepo := repositories.NewContractRepository(tx)
	roomRepo := repositories.NewRoomRepository(tx)

	ct, err := contractRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: contract", domain.ErrNotFound)
		}
		return nil, err
	}
	if !scope.Allows(ct.BranchID) {
		return nil, fmt.Errorf("%w: contract", domain.ErrNotFound)
	}
	if ct.Status != domain.ContractActive {
		return nil, fmt.Errorf("%w: contract is %s, not ACTIVE", domain.ErrInvalidState, ct.Status)
	}

	if _, err := roomRepo.GetByIDForUpdate(ctx, ct.RoomID); err != nil {
		return nil, err
	}

	now := time.Now()
	ct.Status = to
	ct.EndDate = &now
	if err := contractRepo.Update(ctx, ct); err != nil {
		return nil, err
	}
	if err := roomRepo.SetStatus(ctx, ct.RoomID, domain.RoomAvailable); err != nil {
		return nil, err
	}
	return ct, nil
}

// UpdateContractInput represents update contract input
type UpdateContractInput struct {
	RoomID  *uint   `json:"room_id"`
	UserID  *uint   `json:"user_id"`
	EndDate *string `json:"end_date"`
	Deposit *int64  `json:"deposit" validate:"omitempty,gte=0"`
	ScanURL *string `json:"scan_url" validate:"omitempty,url"`
}

// Update edits an ACTIVE contract. Moving it to another room is
// disallowed because that would desynchronize room availability;
// swapping the tenant is allowed after re-validation.
func (s *ContractService) Update(ctx context.Context, p domain.Principal, id uint, input *UpdateContractInput) (*models.Contract, error) {
	scope, err := adminScope(p, nil)
	if err != nil {
		return nil, err
	}
	if err := validate.Struct(input); err != nil {
		return nil, err
	}

	var contract *models.Contract
	err = s.db.Transaction(func(tx *gorm.DB) error {
		contractRepo := repositories.NewContractRepository(tx)
		userRepo := repositories.NewUserRepository(tx)

		ct, err := contractRepo.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: contract", domain.ErrNotFound)
			}
			return err
		}
		if !scope.Allows(ct.BranchID) {
			return fmt.Errorf("%w: contract", domain.ErrNotFound)
		}
		if ct.Status != domain.ContractActive {
			return fmt.Errorf("%w: only active contracts can be edited", domain.ErrInvalidState)
		}

		if input.RoomID != nil && *input.RoomID != ct.RoomID {
			return fmt.Errorf("%w: contracts cannot move between rooms", domain.ErrValidation)
		}

		if input.UserID != nil && *input.UserID != ct.UserID {
			tenant, err := userRepo.GetByID(ctx, *input.UserID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("%w: user", domain.ErrNotFound)
				}
				return err
			}
			if tenant.Role != domain.RoleTenant {
				return fmt.Errorf("%w: contracts can only bind tenants", domain.ErrValidation)
			}
			ct.UserID = tenant.ID
		}

		if input.EndDate != nil {
			if *input.EndDate == "" {
				ct.EndDate = nil
			} else {
				parsed, err := time.Parse("2006-01-02", *input.EndDate)
				if err != nil {
					return fmt.Errorf("%w: end_date must be YYYY-MM-DD", domain.ErrValidation)
				}
				if !parsed.After(ct.StartDate) {
					return fmt.Errorf("%w: end_date must be after start_date", domain.ErrValidation)
				}
				ct.EndDate = &parsed
			}
		}
		if input.Deposit != nil {
			ct.Deposit = *input.Deposit
		}
		if input.ScanURL != nil {
			ct.ScanURL = *input.ScanURL
		}

		if err := contractRepo.Update(ctx, ct); err != nil {
			return err
		}
		contract = ct
		return nil
	})
	if err != nil {
		return nil, err
	}
	return contract, nil
}

// SoftDelete is the trash path: an ACTIVE contract is terminated
// first, a PENDING one is simply cancelled, then the row is
// tombstoned.
func (s *ContractService) SoftDelete(ctx context.Context, p domain.Principal, id uint) error {
	scope, err := adminScope(p, nil)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		contractRepo := repositories.NewContractRepository(tx)

		ct, err := contractRepo.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: contract", domain.ErrNotFound)
			}
			return err
		}
		if !scope.Allows(ct.BranchID) {
			return fmt.Errorf("%w: contract", domain.ErrNotFound)
		}

		if ct.Status == domain.ContractActive {
			if _, err := s.terminateLocked(ctx, tx, scope, id, domain.ContractTerminated); err != nil {
				return err
			}
		}

		return contractRepo.Delete(ctx, id)
	})
}

// ListDeleted lists tombstoned contracts within the branch scope
func (s *ContractService) ListDeleted(ctx context.Context, p domain.Principal, requestedBranch *uint, offset, limit int) ([]*models.Contract, int64, error) {
	scope, err := adminScope(p, requestedBranch)
	if err != nil {
		return nil, 0, err
	}
	return repositories.NewContractRepository(s.db).ListDeleted(ctx, scope.Branch(), offset, limit)
}

// Restore brings a tombstoned contract back. A contract that was
// ACTIVE when deleted comes back TERMINATED (its termination already
// happened on the trash path); the suspended invariants are
// re-checked for the rest.
func (s *ContractService) Restore(ctx context.Context, p domain.Principal, id uint) (*models.Contract, error) {
	scope, err := adminScope(p, nil)
	if err != nil {
		return nil, err
	}

	var contract *models.Contract
	err = s.db.Transaction(func(tx *gorm.DB) error {
		contractRepo := repositories.NewContractRepository(tx)
		roomRepo := repositories.NewRoomRepository(tx)

		ct, err := contractRepo.FindDeleted(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: contract", domain.ErrNotFound)
			}
			return err
		}
		if !scope.Allows(ct.BranchID) {
			return fmt.Errorf("%w: contract", domain.ErrNotFound)
		}

		// Room and tenant must still be alive
		if _, err := roomRepo.GetByIDForUpdate(ctx, ct.RoomID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrRestoreConflict
			}
			return err
		}
		if _, err := repositories.NewUserRepository(tx).GetByID(ctx, ct.UserID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrRestoreConflict
			}
			return err
		}

		if ct.Status == domain.ContractPending {
			existing, err := contractRepo.FindActiveByRoom(ctx, ct.RoomID)
			if err != nil {
				return err
			}
			if existing != nil {
				return domain.ErrRestoreConflict
			}
		}

		if err := contractRepo.Restore(ctx, id); err != nil {
			return err
		}
		contract, err = contractRepo.GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return contract, nil
}

// Purge permanently removes a tombstoned contract
func (s *ContractService) Purge(ctx context.Context, p domain.Principal, id uint) error {
	scope, err := adminScope(p, nil)
	if err != nil {
		return err
	}

	contractRepo := repositories.NewContractRepository(s.db)
	ct, err := contractRepo.FindDeleted(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: contract", domain.ErrNotFound)
		}
		return err
	}
	if !scope.Allows(ct.BranchID) {
		return fmt.Errorf("%w: contract", domain.ErrNotFound)
	}

	return contractRepo.Purge(ctx, id)
}

// ExpireOverdue moves ACTIVE contracts past their end date to
// EXPIRED and frees their rooms. Called by the nightly sweep; each
// contract is handled in its own transaction so one failure does not
// abort the run.
func (s *ContractService) ExpireOverdue(ctx context.Context) (int, error) {
	contracts, err := repositories.NewContractRepository(s.db).ListExpiredActive(ctx)
	if err != nil {
		return 0, err
	}

	sweeper := domain.Principal{Role: domain.RoleAdmin} // global scope
	scope, err := domain.ResolveScope(sweeper, nil)
	if err != nil {
		return 0, err
	}

	expired := 0
	for _, ct := range contracts {
		err := s.db.Transaction(func(tx *gorm.DB) error {
			_, err := s.terminateLocked(ctx, tx, scope, ct.ID, domain.ContractExpired)
			return err
		})
		if err != nil {
			log.Printf("⚠️ Failed to expire contract #%d: %v", ct.ID, err)
			continue
		}
		expired++
	}
	return expired, nil
}
