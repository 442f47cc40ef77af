package models

import (
	"time"

	"gorm.io/gorm"

	"roomhub/internal/core/domain"
)

// ============================================================
// Auth & User Tables
// ============================================================

// User represents users table. BranchID is null for global admins;
// for tenants it records the branch of the admin who created them
// and is used for recycle-bin scoping only.
//
// Email uniqueness applies to live rows only, so a tombstoned
// account frees its address; it is enforced in the user service, not
// by a database index.
type User struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	FullName       string         `gorm:"size:100;not null" json:"full_name"`
	Email          string         `gorm:"index;size:100;not null" json:"email"`
	Phone          string         `gorm:"size:20" json:"phone"`
	Password       string         `gorm:"size:255;not null" json:"-"`
	Role           domain.Role    `gorm:"size:20;not null;default:'TENANT'" json:"role"`
	BranchID       *uint          `gorm:"index" json:"branch_id"`
	FaceRegistered bool           `gorm:"default:false" json:"face_registered"`
	CreatedAt      time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`

	Branch *Branch `gorm:"foreignKey:BranchID" json:"branch,omitempty"`
}

func (User) TableName() string {
	return "users"
}

// UserResponse DTO
type UserResponse struct {
	ID             uint        `json:"id"`
	FullName       string      `json:"full_name"`
	Email          string      `json:"email"`
	Phone          string      `json:"phone"`
	Role           domain.Role `json:"role"`
	BranchID       *uint       `json:"branch_id"`
	BranchName     string      `json:"branch_name,omitempty"`
	FaceRegistered bool        `json:"face_registered"`
	CreatedAt      time.Time   `json:"created_at"`
}

func (u *User) ToResponse() *UserResponse {
	resp := &UserResponse{
		ID:             u.ID,
		FullName:       u.FullName,
		Email:          u.Email,
		Phone:          u.Phone,
		Role:           u.Role,
		BranchID:       u.BranchID,
		FaceRegistered: u.FaceRegistered,
		CreatedAt:      u.CreatedAt,
	}
	if u.Branch != nil {
		resp.BranchName = u.Branch.Name
	}
	return resp
}

// RefreshToken represents refresh_tokens table
type RefreshToken struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uint       `gorm:"index;not null" json:"user_id"`
	TokenHash string     `gorm:"size:255;not null;index" json:"-"`
	ExpiresAt time.Time  `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	RevokedAt *time.Time `gorm:"index" json:"revoked_at"`
	User      User       `gorm:"foreignKey:UserID" json:"-"`
}

func (RefreshToken) TableName() string {
	return "refresh_tokens"
}

func (rt *RefreshToken) IsRevoked() bool {
	return rt.RevokedAt != nil
}

func (rt *RefreshToken) IsExpired() bool {
	return time.Now().After(rt.ExpiresAt)
}

// ============================================================
// Registry Tables
// ============================================================

// Branch represents branches table. Name uniqueness covers live
// rows only and is enforced in the branch service.
type Branch struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"size:100;index;not null" json:"name"`
	Address   string         `gorm:"size:255" json:"address"`
	Manager   string         `gorm:"size:100" json:"manager"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Branch) TableName() string {
	return "branches"
}

// BranchResponse DTO
type BranchResponse struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	Manager   string    `json:"manager"`
	CreatedAt time.Time `json:"created_at"`
}

func (b *Branch) ToResponse() *BranchResponse {
	return &BranchResponse{
		ID:        b.ID,
		Name:      b.Name,
		Address:   b.Address,
		Manager:   b.Manager,
		CreatedAt: b.CreatedAt,
	}
}

// Room represents rooms table. RoomNumber is unique within a branch
// among live rows; a tombstoned room frees its number. Enforced by
// the transactional checks in the room service.
type Room struct {
	ID         uint              `gorm:"primaryKey" json:"id"`
	BranchID   uint              `gorm:"not null;index;index:idx_branch_room" json:"branch_id"`
	RoomNumber string            `gorm:"size:20;not null;index:idx_branch_room" json:"room_number"`
	Price      int64             `gorm:"not null" json:"price"`
	Area       float64           `gorm:"not null" json:"area"`
	Status     domain.RoomStatus `gorm:"size:20;not null;default:'AVAILABLE'" json:"status"`
	PhotoURL   string            `gorm:"size:255" json:"photo_url"`
	CreatedAt  time.Time         `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time         `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt  gorm.DeletedAt    `gorm:"index" json:"-"`

	Branch *Branch `gorm:"foreignKey:BranchID" json:"branch,omitempty"`
}

func (Room) TableName() string {
	return "rooms"
}

// RoomResponse DTO
type RoomResponse struct {
	ID         uint              `json:"id"`
	BranchID   uint              `json:"branch_id"`
	BranchName string            `json:"branch_name,omitempty"`
	RoomNumber string            `json:"room_number"`
	Price      int64             `json:"price"`
	Area       float64           `json:"area"`
	Status     domain.RoomStatus `json:"status"`
	PhotoURL   string            `json:"photo_url,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
}

func (r *Room) ToResponse() *RoomResponse {
	resp := &RoomResponse{
		ID:         r.ID,
		BranchID:   r.BranchID,
		RoomNumber: r.RoomNumber,
		Price:      r.Price,
		Area:       r.Area,
		Status:     r.Status,
		PhotoURL:   r.PhotoURL,
		CreatedAt:  r.CreatedAt,
	}
	if r.Branch != nil {
		resp.BranchName = r.Branch.Name
	}
	return resp
}

// ============================================================
// Tenancy Tables
// ============================================================

// Contract represents contracts table. BranchID is denormalized from
// the room at creation time and drives branch-scoped authorization.
type Contract struct {
	ID        uint                  `gorm:"primaryKey" json:"id"`
	RoomID    uint                  `gorm:"not null;index" json:"room_id"`
	UserID    uint                  `gorm:"not null;index" json:"user_id"`
	BranchID  uint                  `gorm:"not null;index" json:"branch_id"`
	StartDate time.Time             `gorm:"type:date;not null" json:"start_date"`
	EndDate   *time.Time            `gorm:"type:date" json:"end_date"`
	Deposit   int64                 `gorm:"not null" json:"deposit"`
	Status    domain.ContractStatus `gorm:"size:20;not null;default:'PENDING';index" json:"status"`
	ScanURL   string                `gorm:"size:255" json:"scan_url"`
	CreatedAt time.Time             `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time             `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt        `gorm:"index" json:"-"`

	Room   *Room   `gorm:"foreignKey:RoomID" json:"room,omitempty"`
	Tenant *User   `gorm:"foreignKey:UserID" json:"tenant,omitempty"`
	Branch *Branch `gorm:"foreignKey:BranchID" json:"branch,omitempty"`
}

func (Contract) TableName() string {
	return "contracts"
}

// ContractResponse DTO
type ContractResponse struct {
	ID         uint                  `json:"id"`
	RoomID     uint                  `json:"room_id"`
	RoomNumber string                `json:"room_number,omitempty"`
	UserID     uint                  `json:"user_id"`
	TenantName string                `json:"tenant_name,omitempty"`
	BranchID   uint                  `json:"branch_id"`
	BranchName string                `json:"branch_name,omitempty"`
	StartDate  time.Time             `json:"start_date"`
	EndDate    *time.Time            `json:"end_date"`
	Deposit    int64                 `json:"deposit"`
	Status     domain.ContractStatus `json:"status"`
	ScanURL    string                `json:"scan_url,omitempty"`
	CreatedAt  time.Time             `json:"created_at"`
	UpdatedAt  time.Time             `json:"updated_at"`
}

func (ct *Contract) ToResponse() *ContractResponse {
	resp := &ContractResponse{
		ID:        ct.ID,
		RoomID:    ct.RoomID,
		UserID:    ct.UserID,
		BranchID:  ct.BranchID,
		StartDate: ct.StartDate,
		EndDate:   ct.EndDate,
		Deposit:   ct.Deposit,
		Status:    ct.Status,
		ScanURL:   ct.ScanURL,
		CreatedAt: ct.CreatedAt,
		UpdatedAt: ct.UpdatedAt,
	}
	if ct.Room != nil {
		resp.RoomNumber = ct.Room.RoomNumber
	}
	if ct.Tenant != nil {
		resp.TenantName = ct.Tenant.FullName
	}
	if ct.Branch != nil {
		resp.BranchName = ct.Branch.Name
	}
	return resp
}

// Invoice represents invoices table. Meter fields are whole units;
// amounts are VND. TotalAmount is always derived, never hand-set.
type Invoice struct {
	ID             uint                 `gorm:"primaryKey" json:"id"`
	RoomID         uint                 `gorm:"not null;index:idx_room_period" json:"room_id"`
	BranchID       uint                 `gorm:"not null;index" json:"branch_id"`
	Month          int                  `gorm:"not null;index:idx_room_period" json:"month"`
	Year           int                  `gorm:"not null;index:idx_room_period" json:"year"`
	OldElectricity int64                `gorm:"not null" json:"old_electricity"`
	NewElectricity int64                `gorm:"not null" json:"new_electricity"`
	OldWater       int64                `gorm:"not null" json:"old_water"`
	NewWater       int64                `gorm:"not null" json:"new_water"`
	ServiceFee     int64                `gorm:"not null" json:"service_fee"`
	TotalAmount    int64                `gorm:"not null" json:"total_amount"`
	Status         domain.InvoiceStatus `gorm:"size:20;not null;default:'UNPAID';index" json:"status"`
	PaymentProof   string               `gorm:"size:255" json:"payment_proof"`
	PaidAt         *time.Time           `json:"paid_at"`
	CreatedAt      time.Time            `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time            `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt      gorm.DeletedAt       `gorm:"index" json:"-"`

	Room   *Room   `gorm:"foreignKey:RoomID" json:"room,omitempty"`
	Branch *Branch `gorm:"foreignKey:BranchID" json:"branch,omitempty"`
}

func (Invoice) TableName() string {
	return "invoices"
}

// InvoiceResponse DTO
type InvoiceResponse struct {
	ID             uint                 `json:"id"`
	RoomID         uint                 `json:"room_id"`
	RoomNumber     string               `json:"room_number,omitempty"`
	BranchID       uint                 `json:"branch_id"`
	Month          int                  `json:"month"`
	Year           int                  `json:"year"`
	OldElectricity int64                `json:"old_electricity"`
	NewElectricity int64                `json:"new_electricity"`
	OldWater       int64                `json:"old_water"`
	NewWater       int64                `json:"new_water"`
	ServiceFee     int64                `json:"service_fee"`
	TotalAmount    int64                `json:"total_amount"`
	Status         domain.InvoiceStatus `json:"status"`
	PaymentProof   string               `json:"payment_proof,omitempty"`
	PaidAt         *time.Time           `json:"paid_at"`
	CreatedAt      time.Time            `json:"created_at"`
}

func (i *Invoice) ToResponse() *InvoiceResponse {
	resp := &InvoiceResponse{
		ID:             i.ID,
		RoomID:         i.RoomID,
		BranchID:       i.BranchID,
		Month:          i.Month,
		Year:           i.Year,
		OldElectricity: i.OldElectricity,
		NewElectricity: i.NewElectricity,
		OldWater:       i.OldWater,
		NewWater:       i.NewWater,
		ServiceFee:     i.ServiceFee,
		TotalAmount:    i.TotalAmount,
		Status:         i.Status,
		PaymentProof:   i.PaymentProof,
		PaidAt:         i.PaidAt,
		CreatedAt:      i.CreatedAt,
	}
	if i.Room != nil {
		resp.RoomNumber = i.Room.RoomNumber
	}
	return resp
}

// ============================================================
// Auto Migration
// ============================================================

// AutoMigrate runs auto migration for all tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&RefreshToken{},
		&Branch{},
		&Room{},
		&Contract{},
		&Invoice{},
		&AccessEvent{},
	)
}
