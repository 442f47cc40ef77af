package domain

import (
	"errors"
	"fmt"
)

// Error categories. Every domain failure wraps exactly one of these,
// so handlers can map errors.Is(err, domain.ErrX) to an HTTP status.
var (
	ErrValidation   = errors.New("validation failed")
	ErrConflict     = errors.New("conflict")
	ErrAccessDenied = errors.New("access denied")
	ErrNotFound     = errors.New("not found")
	ErrInvalidState = errors.New("invalid state")
)

// Concrete domain errors
var (
	ErrRoomAlreadyRented = fmt.Errorf("%w: room already has an active contract", ErrConflict)
	ErrDuplicatePeriod   = fmt.Errorf("%w: invoice already exists for this room and period", ErrConflict)
	ErrNonMonotonicMeter = fmt.Errorf("%w: meter reading below previous invoice", ErrValidation)
	ErrRestoreConflict   = fmt.Errorf("%w: restore would violate a live invariant", ErrConflict)
	ErrPeriodConflict    = fmt.Errorf("%w: billing period reused by a newer invoice", ErrConflict)
	ErrRoomOccupied      = fmt.Errorf("%w: room is occupied", ErrConflict)
	ErrBranchInUse       = fmt.Errorf("%w: branch still has rooms", ErrConflict)
	ErrUserHasContract   = fmt.Errorf("%w: user still has an active contract", ErrConflict)
	ErrRoomReferenced    = fmt.Errorf("%w: room is still referenced by contracts or invoices", ErrConflict)
)
