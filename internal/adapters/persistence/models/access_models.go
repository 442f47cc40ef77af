package models

import "time"

// ============================================================
// Face-Identity Access Log
// ============================================================

// AccessEvent represents access_events table. Events are recorded
// from Identity Service match results and are append-only: no
// tombstone, no updates.
type AccessEvent struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	UserID      *uint     `gorm:"index" json:"user_id"`
	BranchID    uint      `gorm:"not null;index" json:"branch_id"`
	Matched     bool      `gorm:"not null" json:"matched"`
	Similarity  float64   `json:"similarity"`
	SnapshotURL string    `gorm:"size:255" json:"snapshot_url"`
	OccurredAt  time.Time `gorm:"not null;index" json:"occurred_at"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (AccessEvent) TableName() string {
	return "access_events"
}

// AccessEventResponse DTO
type AccessEventResponse struct {
	ID          string    `json:"id"`
	UserID      *uint     `json:"user_id"`
	UserName    string    `json:"user_name,omitempty"`
	BranchID    uint      `json:"branch_id"`
	Matched     bool      `json:"matched"`
	Similarity  float64   `json:"similarity"`
	SnapshotURL string    `json:"snapshot_url,omitempty"`
	OccurredAt  time.Time `json:"occurred_at"`
}

func (e *AccessEvent) ToResponse() *AccessEventResponse {
	resp := &AccessEventResponse{
		ID:          e.ID,
		UserID:      e.UserID,
		BranchID:    e.BranchID,
		Matched:     e.Matched,
		Similarity:  e.Similarity,
		SnapshotURL: e.SnapshotURL,
		OccurredAt:  e.OccurredAt,
	}
	if e.User != nil {
		resp.UserName = e.User.FullName
	}
	return resp
}
