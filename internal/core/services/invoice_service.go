package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"roomhub/internal/adapters/persistence/models"
	"roomhub/internal/adapters/persistence/repositories"
	"roomhub/internal/config"
	"roomhub/internal/core/domain"
	"roomhub/internal/pkg/validate"

	"gorm.io/gorm"
)

// InvoiceService handles utility-metered billing. Meter readings
// carry forward from the previous invoice on the same room, so
// creation and edits run under the room row lock to keep the chain
// consistent.
type InvoiceService struct {
	db      *gorm.DB
	billing config.BillingConfig
}

// NewInvoiceService creates a new invoice service
func NewInvoiceService(db *gorm.DB, billing config.BillingConfig) *InvoiceService {
	return &InvoiceService{db: db, billing: billing}
}

// CreateInvoiceInput represents create invoice input
type CreateInvoiceInput struct {
	RoomID         uint  `json:"room_id" validate:"required"`
	Month          int   `json:"month" validate:"required,min=1,max=12"`
	Year           int   `json:"year" validate:"required,min=2000,max=2100"`
	NewElectricity int64 `json:"new_electricity" validate:"gte=0"`
	NewWater       int64 `json:"new_water" validate:"gte=0"`
	ServiceFee     int64 `json:"service_fee" validate:"gte=0"`
}

// Create issues an invoice for a room's billing period. Old meter
// readings are never supplied by the caller: they carry forward from
// the latest invoice on the room, or start at zero for the first one.
func (s *InvoiceService) Create(ctx context.Context, p domain.Principal, input *CreateInvoiceInput) (*models.Invoice, error) {
	scope, err := adminScope(p, nil)
	if err != nil {
		return nil, err
	}
	if err := validate.Struct(input); err != nil {
		return nil, err
	}

	var invoice *models.Invoice
	err = s.db.Transaction(func(tx *gorm.DB) error {
		roomRepo := repositories.NewRoomRepository(tx)
		invoiceRepo := repositories.NewInvoiceRepository(tx)
		contractRepo := repositories.NewContractRepository(tx)

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

		active, err := contractRepo.FindActiveByRoom(ctx, room.ID)
		if err != nil {
			return err
		}
		if active == nil {
			return fmt.Errorf("%w: room has no active contract", domain.ErrInvalidState)
		}

		exists, err := invoiceRepo.ExistsForPeriod(ctx, room.ID, input.Month, input.Year, 0)
		if err != nil {
			return err
		}
		if exists {
			return domain.ErrDuplicatePeriod
		}

		var oldElec, oldWater int64
		latest, err := invoiceRepo.LatestByRoom(ctx, room.ID)
		if err != nil {
			return err
		}
		if latest != nil {
			oldElec = latest.NewElectricity
			oldWater = latest.NewWater
		}

		if input.NewElectricity < oldElec || input.NewWater < oldWater {
			return domain.ErrNonMonotonicMeter
		}

		invoice = &models.Invoice{
			RoomID:         room.ID,
			BranchID:       room.BranchID,
			Month:          input.Month,
			Year:           input.Year,
			OldElectricity: oldElec,
			NewElectricity: input.NewElectricity,
			OldWater:       oldWater,
			NewWater:       input.NewWater,
			ServiceFee:     input.ServiceFee,
			TotalAmount:    s.total(room.Price, oldElec, input.NewElectricity, oldWater, input.NewWater, input.ServiceFee),
			Status:         domain.InvoiceUnpaid,
		}
		return invoiceRepo.Create(ctx, invoice)
	})
	if err != nil {
		return nil, err
	}

	log.Printf("✅ Invoice #%d issued for room %d (%02d/%d, total %d)", invoice.ID, invoice.RoomID, invoice.Month, invoice.Year, invoice.TotalAmount)
	return invoice, nil
}

func (s *InvoiceService) total(roomPrice, oldElec, newElec, oldWater, newWater, serviceFee int64) int64 {
	return roomPrice +
		(newElec-oldElec)*s.billing.ElectricityUnitPrice +
		(newWater-oldWater)*s.billing.WaterUnitPrice +
		serviceFee
}

// Get gets an invoice within the caller's scope. Tenants see only
// invoices on rooms they hold an active contract for.
func (s *InvoiceService) Get(ctx context.Context, p domain.Principal, id uint) (*models.Invoice, error) {
	scope, err := domain.ResolveScope(p, nil)
	if err != nil {
		return nil, err
	}

	invoice, err := repositories.NewInvoiceRepository(s.db).GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: invoice", domain.ErrNotFound)
		}
		return nil, err
	}
	if !scope.Allows(invoice.BranchID) {
		return nil, fmt.Errorf("%w: invoice", domain.ErrNotFound)
	}
	if tenantID, ok := scope.TenantID(); ok {
		roomIDs, err := tenantRoomIDs(ctx, s.db, tenantID)
		if err != nil {
			return nil, err
		}
		if !containsID(roomIDs, invoice.RoomID) {
			return nil, fmt.Errorf("%w: invoice", domain.ErrNotFound)
		}
	}
	return invoice, nil
}

// List lists invoices; admins filter by branch/room/status, tenants
// get the invoices of their own rooms.
func (s *InvoiceService) List(ctx context.Context, p domain.Principal, requestedBranch *uint, roomID *uint, status domain.InvoiceStatus, offset, limit int) ([]*models.Invoice, int64, error) {
	scope, err := domain.ResolveScope(p, requestedBranch)
	if err != nil {
		return nil, 0, err
	}

	invoiceRepo := repositories.NewInvoiceRepository(s.db)
	if tenantID, ok := scope.TenantID(); ok {
		roomIDs, err := tenantRoomIDs(ctx, s.db, tenantID)
		if err != nil {
			return nil, 0, err
		}
		if len(roomIDs) == 0 {
			return []*models.Invoice{}, 0, nil
		}
		return invoiceRepo.ListByRooms(ctx, roomIDs, offset, limit)
	}
	return invoiceRepo.List(ctx, scope.Branch(), roomID, status, offset, limit)
}

// LatestForRoom returns the newest invoice on a room, the seed for
// the next period's meter readings.
func (s *InvoiceService) LatestForRoom(ctx context.Context, p domain.Principal, roomID uint) (*models.Invoice, error) {
	scope, err := adminScope(p, nil)
	if err != nil {
		return nil, err
	}

	room, err := repositories.NewRoomRepository(s.db).GetByID(ctx, roomID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: room", domain.ErrNotFound)
		}
		return nil, err
	}
	if !scope.Allows(room.BranchID) {
		return nil, fmt.Errorf("%w: room", domain.ErrNotFound)
	}

	latest, err := repositories.NewInvoiceRepository(s.db).LatestByRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if latest == nil {
		return nil, fmt.Errorf("%w: invoice", domain.ErrNotFound)
	}
	return latest, nil
}

// UpdateInvoiceInput represents update invoice input
type UpdateInvoiceInput struct {
	NewElectricity *int64 `json:"new_electricity" validate:"omitempty,gte=0"`
	NewWater       *int64 `json:"new_water" validate:"omitempty,gte=0"`
	ServiceFee     *int64 `json:"service_fee" validate:"omitempty,gte=0"`
}

// Update corrects meter readings or the service fee on an UNPAID
// invoice and recomputes the total. Meter edits are refused once a
// newer invoice exists on the room, because that invoice already
// carried the readings forward.
func (s *InvoiceService) Update(ctx context.Context, p domain.Principal, id uint, input *UpdateInvoiceInput) (*models.Invoice, error) {
	scope, err := adminScope(p, nil)
	if err != nil {
		return nil, err
	}
	if err := validate.Struct(input); err != nil {
		return nil, err
	}

	var invoice *models.Invoice
	err = s.db.Transaction(func(tx *gorm.DB) error {
		invoiceRepo := repositories.NewInvoiceRepository(tx)
		roomRepo := repositories.NewRoomRepository(tx)

		inv, err := invoiceRepo.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: invoice", domain.ErrNotFound)
			}
			return err
		}
		if !scope.Allows(inv.BranchID) {
			return fmt.Errorf("%w: invoice", domain.ErrNotFound)
		}
		if inv.Status != domain.InvoiceUnpaid {
			return fmt.Errorf("%w: paid invoices are immutable", domain.ErrInvalidState)
		}

		room, err := roomRepo.GetByIDForUpdate(ctx, inv.RoomID)
		if err != nil {
			return err
		}

		meterEdit := (input.NewElectricity != nil && *input.NewElectricity != inv.NewElectricity) ||
			(input.NewWater != nil && *input.NewWater != inv.NewWater)
		if meterEdit {
			latest, err := invoiceRepo.LatestByRoom(ctx, inv.RoomID)
			if err != nil {
				return err
			}
			if latest != nil && latest.ID != inv.ID {
				return fmt.Errorf("%w: a newer invoice already carried these readings forward", domain.ErrConflict)
			}
		}

		if input.NewElectricity != nil {
			if *input.NewElectricity < inv.OldElectricity {
				return domain.ErrNonMonotonicMeter
			}
			inv.NewElectricity = *input.NewElectricity
		}
		if input.NewWater != nil {
			if *input.NewWater < inv.OldWater {
				return domain.ErrNonMonotonicMeter
			}
			inv.NewWater = *input.NewWater
		}
		if input.ServiceFee != nil {
			inv.ServiceFee = *input.ServiceFee
		}

		inv.TotalAmount = s.total(room.Price, inv.OldElectricity, inv.NewElectricity, inv.OldWater, inv.NewWater, inv.ServiceFee)
		if err := invoiceRepo.Update(ctx, inv); err != nil {
			return err
		}
		invoice = inv
		return nil
	})
	if err != nil {
		return nil, err
	}
	return invoice, nil
}

// ConfirmPayment marks an UNPAID invoice as PAID and stamps the
// payment time. Optionally records a payment proof URL.
func (s *InvoiceService) ConfirmPayment(ctx context.Context, p domain.Principal, id uint, proofURL string) (*models.Invoice, error) {
	scope, err := adminScope(p, nil)
	if err != nil {
		return nil, err
	}

	invoiceRepo := repositories.NewInvoiceRepository(s.db)
	inv, err := invoiceRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: invoice", domain.ErrNotFound)
		}
		return nil, err
	}
	if !scope.Allows(inv.BranchID) {
		return nil, fmt.Errorf("%w: invoice", domain.ErrNotFound)
	}
	if inv.Status != domain.InvoiceUnpaid {
		return nil, fmt.Errorf("%w: invoice is already %s", domain.ErrInvalidState, inv.Status)
	}

	now := time.Now()
	inv.Status = domain.InvoicePaid
	inv.PaidAt = &now
	if proofURL != "" {
		inv.PaymentProof = proofURL
	}
	if err := invoiceRepo.Update(ctx, inv); err != nil {
		return nil, err
	}

	log.Printf("✅ Invoice #%d paid (%d)", inv.ID, inv.TotalAmount)
	return inv, nil
}

// SoftDelete tombstones an invoice. Only the newest invoice on a
// room may go: deleting from the middle would break the meter chain.
func (s *InvoiceService) SoftDelete(ctx context.Context, p domain.Principal, id uint) error {
	scope, err := adminScope(p, nil)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		invoiceRepo := repositories.NewInvoiceRepository(tx)

		inv, err := invoiceRepo.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: invoice", domain.ErrNotFound)
			}
			return err
		}
		if !scope.Allows(inv.BranchID) {
			return fmt.Errorf("%w: invoice", domain.ErrNotFound)
		}

		if _, err := repositories.NewRoomRepository(tx).GetByIDForUpdate(ctx, inv.RoomID); err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		latest, err := invoiceRepo.LatestByRoom(ctx, inv.RoomID)
		if err != nil {
			return err
		}
		if latest != nil && latest.ID != inv.ID {
			return fmt.Errorf("%w: only the newest invoice on a room can be deleted", domain.ErrConflict)
		}

		return invoiceRepo.Delete(ctx, id)
	})
}

// ListDeleted lists tombstoned invoices within the branch scope
func (s *InvoiceService) ListDeleted(ctx context.Context, p domain.Principal, requestedBranch *uint, offset, limit int) ([]*models.Invoice, int64, error) {
	scope, err := adminScope(p, requestedBranch)
	if err != nil {
		return nil, 0, err
	}
	return repositories.NewInvoiceRepository(s.db).ListDeleted(ctx, scope.Branch(), offset, limit)
}

// Restore brings a tombstoned invoice back, re-checking the
// suspended invariants first: the period slot must be free and no
// later invoice may exist on the room.
func (s *InvoiceService) Restore(ctx context.Context, p domain.Principal, id uint) (*models.Invoice, error) {
	scope, err := adminScope(p, nil)
	if err != nil {
		return nil, err
	}

	var invoice *models.Invoice
	err = s.db.Transaction(func(tx *gorm.DB) error {
		invoiceRepo := repositories.NewInvoiceRepository(tx)

		inv, err := invoiceRepo.FindDeleted(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: invoice", domain.ErrNotFound)
			}
			return err
		}
		if !scope.Allows(inv.BranchID) {
			return fmt.Errorf("%w: invoice", domain.ErrNotFound)
		}

		if _, err := repositories.NewRoomRepository(tx).GetByIDForUpdate(ctx, inv.RoomID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrRestoreConflict
			}
			return err
		}

		exists, err := invoiceRepo.ExistsForPeriod(ctx, inv.RoomID, inv.Month, inv.Year, inv.ID)
		if err != nil {
			return err
		}
		if exists {
			return domain.ErrPeriodConflict
		}

		// Mirror of the newest-only delete rule: a later invoice has
		// already carried its own baseline forward, so this one would
		// slot back into the middle of the meter chain.
		latest, err := invoiceRepo.LatestByRoom(ctx, inv.RoomID)
		if err != nil {
			return err
		}
		if latest != nil && (latest.Year > inv.Year || (latest.Year == inv.Year && latest.Month > inv.Month)) {
			return domain.ErrRestoreConflict
		}

		if err := invoiceRepo.Restore(ctx, id); err != nil {
			return err
		}
		invoice, err = invoiceRepo.GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return invoice, nil
}

// Purge permanently removes a tombstoned invoice
func (s *InvoiceService) Purge(ctx context.Context, p domain.Principal, id uint) error {
	scope, err := adminScope(p, nil)
	if err != nil {
		return err
	}

	invoiceRepo := repositories.NewInvoiceRepository(s.db)
	inv, err := invoiceRepo.FindDeleted(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: invoice", domain.ErrNotFound)
		}
		return err
	}
	if !scope.Allows(inv.BranchID) {
		return fmt.Errorf("%w: invoice", domain.ErrNotFound)
	}

	return invoiceRepo.Purge(ctx, id)
}
