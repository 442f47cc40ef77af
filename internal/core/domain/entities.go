package domain

// Role represents user role in the system
type Role string

const (
	RoleAdmin  Role = "ADMIN"
	RoleTenant Role = "TENANT"
)

// Valid reports whether the role is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleTenant
}

// RoomStatus represents room availability
type RoomStatus string

const (
	RoomAvailable RoomStatus = "AVAILABLE"
	RoomOccupied  RoomStatus = "OCCUPIED"
)

// ContractStatus represents contract lifecycle state
type ContractStatus string

const (
	ContractPending    ContractStatus = "PENDING"
	ContractActive     ContractStatus = "ACTIVE"
	ContractTerminated ContractStatus = "TERMINATED"
	ContractExpired    ContractStatus = "EXPIRED"
)

// Terminal reports whether the contract can no longer change state.
func (s ContractStatus) Terminal() bool {
	return s == ContractTerminated || s == ContractExpired
}

// InvoiceStatus represents invoice payment state
type InvoiceStatus string

const (
	InvoiceUnpaid InvoiceStatus = "UNPAID"
	InvoicePaid   InvoiceStatus = "PAID"
)

// Principal is the acting identity of a request, built by the auth
// middleware from token claims and passed explicitly into every
// service call. BranchID is nil for global admins; tenants never
// carry a branch of their own.
type Principal struct {
	UserID   uint
	Role     Role
	BranchID *uint
}

// IsGlobalAdmin reports whether the principal may see every branch.
func (p Principal) IsGlobalAdmin() bool {
	return p.Role == RoleAdmin && p.BranchID == nil
}
