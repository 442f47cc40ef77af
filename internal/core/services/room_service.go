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

// RoomService handles room inventory business logic
type RoomService struct {
	db           *gorm.DB
	roomRepo     *repositories.RoomRepository
	branchRepo   *repositories.BranchRepository
	contractRepo *repositories.ContractRepository
	invoiceRepo  *repositories.InvoiceRepository
}

// NewRoomService creates a new room service
func NewRoomService(db *gorm.DB) *RoomService {
	return &RoomService{
		db:           db,
		roomRepo:     repositories.NewRoomRepository(db),
		branchRepo:   repositories.NewBranchRepository(db),
		contractRepo: repositories.NewContractRepository(db),
		invoiceRepo:  repositories.NewInvoiceRepository(db),
	}
}

// CreateRoomInput represents create room input
type CreateRoomInput struct {
	BranchID   uint    `json:"branch_id" validate:"required"`
	RoomNumber string  `json:"room_number" validate:"required,max=20"`
	Price      int64   `json:"price" validate:"required,gt=0"`
	Area       float64 `json:"area" validate:"required,gt=0"`
	PhotoURL   string  `json:"photo_url" validate:"omitempty,url"`
}

// Create creates a new room under a branch
func (s *RoomService) Create(ctx context.Context, p domain.Principal, input *CreateRoomInput) (*models.Room, error) {
	scope, err := adminScope(p, nil)
	if err != nil {
		return nil, err
	}
	if err := validate.Struct(input); err != nil {
		return nil, err
	}
	if !scope.Allows(input.BranchID) {
		return nil, fmt.Errorf("%w: branch", domain.ErrNotFound)
	}

	if _, err := s.branchRepo.GetByID(ctx, input.BranchID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: branch", domain.ErrNotFound)
		}
		return nil, err
	}

	taken, err := s.roomRepo.ExistsByNumber(ctx, input.BranchID, input.RoomNumber, 0)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, fmt.Errorf("%w: room number already exists in branch", domain.ErrConflict)
	}

	room := &models.Room{
		BranchID:   input.BranchID,
		RoomNumber: input.RoomNumber,
		Price:      input.Price,
		Area:       input.Area,
		Status:     domain.RoomAvailable,
		PhotoURL:   input.PhotoURL,
	}
	if err := s.roomRepo.Create(ctx, room); err != nil {
		return nil, err
	}
	return room, nil
}

// Get gets a room within the caller's scope. Tenants only reach
// rooms of their own active contracts.
func (s *RoomService) Get(ctx context.Context, p domain.Principal, id uint) (*models.Room, error) {
	scope, err := domain.ResolveScope(p, nil)
	if err != nil {
		return nil, err
	}

	room, err := s.roomRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: room", domain.ErrNotFound)
		}
		return nil, err
	}
	if !scope.Allows(room.BranchID) {
		return nil, fmt.Errorf("%w: room", domain.ErrNotFound)
	}

	if tenantID, ok := scope.TenantID(); ok {
		reachable, err := tenantRoomIDs(ctx, s.db, tenantID)
		if err != nil {
			return nil, err
		}
		if !containsID(reachable, room.ID) {
			return nil, fmt.Errorf("%w: room", domain.ErrNotFound)
		}
	}

	return room, nil
}

// List lists rooms within the resolved branch scope
func (s *RoomService) List(ctx context.Context, p domain.Principal, requestedBranch *uint, status domain.RoomStatus, offset, limit int) ([]*models.Room, int64, error) {
	scope, err := domain.ResolveScope(p, requestedBranch)
	if err != nil {
		return nil, 0, err
	}

	if _, ok := scope.TenantID(); ok {
		return nil, 0, fmt.Errorf("%w: room listing", domain.ErrAccessDenied)
	}

	return s.roomRepo.List(ctx, scope.Branch(), status, offset, limit)
}

// UpdateRoomInput represents update room input
type UpdateRoomInput struct {
	BranchID   *uint    `json:"branch_id"`
	RoomNumber *string  `json:"room_number" validate:"omitempty,max=20"`
	Price      *int64   `json:"price" validate:"omitempty,gt=0"`
	Area       *float64 `json:"area" validate:"omitempty,gt=0"`
	PhotoURL   *string  `json:"photo_url" validate:"omitempty,url"`
}

// Update updates a room. Branch reassignment is rejected once any
// contract or invoice references the room, tombstoned or not; status
// is owned by the contract service and cannot be set here.
func (s *RoomService) Update(ctx context.Context, p domain.Principal, id uint, input *UpdateRoomInput) (*models.Room, error) {
	scope, err := adminScope(p, nil)
	if err != nil {
		return nil, err
	}
	if err := validate.Struct(input); err != nil {
		return nil, err
	}

	room, err := s.roomRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: room", domain.ErrNotFound)
		}
		return nil, err
	}
	if !scope.Allows(room.BranchID) {
		return nil, fmt.Errorf("%w: room", domain.ErrNotFound)
	}

	if input.BranchID != nil && *input.BranchID != room.BranchID {
		// Contracts and invoices denormalize branch_id at creation;
		// tombstoned rows count too, or a restore would resurrect a
		// row pointing at the wrong branch.
		contracts, err := s.contractRepo.CountByRoomUnscoped(ctx, room.ID)
		if err != nil {
			return nil, err
		}
		invoices, err := s.invoiceRepo.CountByRoomUnscoped(ctx, room.ID)
		if err != nil {
			return nil, err
		}
		if contracts > 0 || invoices > 0 {
			return nil, fmt.Errorf("%w: branch is immutable once contracts or invoices exist", domain.ErrValidation)
		}
		if !scope.Allows(*input.BranchID) {
			return nil, fmt.Errorf("%w: branch", domain.ErrNotFound)
		}
		if _, err := s.branchRepo.GetByID(ctx, *input.BranchID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: branch", domain.ErrNotFound)
			}
			return nil, err
		}
		room.BranchID = *input.BranchID
	}

	if input.RoomNumber != nil && *input.RoomNumber != room.RoomNumber {
		taken, err := s.roomRepo.ExistsByNumber(ctx, room.BranchID, *input.RoomNumber, room.ID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, fmt.Errorf("%w: room number already exists in branch", domain.ErrConflict)
		}
		room.RoomNumber = *input.RoomNumber
	}
	if input.Price != nil {
		room.Price = *input.Price
	}
	if input.Area != nil {
		room.Area = *input.Area
	}
	if input.PhotoURL != nil {
		room.PhotoURL = *input.PhotoURL
	}

	if err := s.roomRepo.Update(ctx, room); err != nil {
		return nil, err
	}
	return room, nil
}

// SoftDelete tombstones a room. Refused while occupied.
func (s *RoomService) SoftDelete(ctx context.Context, p domain.Principal, id uint) error {
	scope, err := adminScope(p, nil)
	if err != nil {
		return err
	}

	room, err := s.roomRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: room", domain.ErrNotFound)
		}
		return err
	}
	if !scope.Allows(room.BranchID) {
		return fmt.Errorf("%w: room", domain.ErrNotFound)
	}
	if room.Status == domain.RoomOccupied {
		return domain.ErrRoomOccupied
	}

	return s.roomRepo.Delete(ctx, id)
}

// ListDeleted lists tombstoned rooms within the branch scope
func (s *RoomService) ListDeleted(ctx context.Context, p domain.Principal, requestedBranch *uint, offset, limit int) ([]*models.Room, int64, error) {
	scope, err := adminScope(p, requestedBranch)
	if err != nil {
		return nil, 0, err
	}
	return s.roomRepo.ListDeleted(ctx, scope.Branch(), offset, limit)
}

// Restore brings a tombstoned room back. The suspended invariants
// are re-checked first: the branch must still be alive and the room
// number still free.
func (s *RoomService) Restore(ctx context.Context, p domain.Principal, id uint) (*models.Room, error) {
	scope, err := adminScope(p, nil)
	if err != nil {
		return nil, err
	}

	room, err := s.roomRepo.FindDeleted(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: room", domain.ErrNotFound)
		}
		return nil, err
	}
	if !scope.Allows(room.BranchID) {
		return nil, fmt.Errorf("%w: room", domain.ErrNotFound)
	}

	if _, err := s.branchRepo.GetByID(ctx, room.BranchID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrRestoreConflict
		}
		return nil, err
	}
	taken, err := s.roomRepo.ExistsByNumber(ctx, room.BranchID, room.RoomNumber, room.ID)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, domain.ErrRestoreConflict
	}

	if err := s.roomRepo.Restore(ctx, id); err != nil {
		return nil, err
	}
	return s.roomRepo.GetByID(ctx, id)
}

// Purge permanently removes a tombstoned room. Refused while live
// contracts or invoices still reference the room.
func (s *RoomService) Purge(ctx context.Context, p domain.Principal, id uint) error {
	scope, err := adminScope(p, nil)
	if err != nil {
		return err
	}

	room, err := s.roomRepo.FindDeleted(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: room", domain.ErrNotFound)
		}
		return err
	}
	if !scope.Allows(room.BranchID) {
		return fmt.Errorf("%w: room", domain.ErrNotFound)
	}

	contracts, err := s.contractRepo.CountByRoom(ctx, id)
	if err != nil {
		return err
	}
	invoices, err := s.invoiceRepo.CountByRoom(ctx, id)
	if err != nil {
		return err
	}
	if contracts > 0 || invoices > 0 {
		return domain.ErrRoomReferenced
	}

	return s.roomRepo.Purge(ctx, id)
}

// tenantRoomIDs returns the room ids reachable through a tenant's
// active contracts.
func tenantRoomIDs(ctx context.Context, db *gorm.DB, tenantID uint) ([]uint, error) {
	contracts, err := repositories.NewContractRepository(db).ListActiveByUser(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	ids := make([]uint, 0, len(contracts))
	for _, ct := range contracts {
		ids = append(ids, ct.RoomID)
	}
	return ids, nil
}

// adminScope resolves scope and rejects tenants in one step; used by
// the admin-only mutations.
func adminScope(p domain.Principal, requested *uint) (domain.Scope, error) {
	if p.Role != domain.RoleAdmin {
		return domain.Scope{}, fmt.Errorf("%w: admin role required", domain.ErrAccessDenied)
	}
	return domain.ResolveScope(p, requested)
}

func containsID(ids []uint, id uint) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
