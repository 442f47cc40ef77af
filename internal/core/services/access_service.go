package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"roomhub/internal/adapters/persistence/models"
	"roomhub/internal/adapters/persistence/repositories"
	"roomhub/internal/core/domain"
	"roomhub/internal/pkg/validate"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Access service errors
var (
	ErrIdentityDisabled    = fmt.Errorf("%w: identity service not configured", domain.ErrInvalidState)
	ErrIdentityUnavailable = errors.New("identity service unavailable")
)

// AccessService records face-recognition door events. Matching runs
// on an external identity service; this side only persists verdicts
// and keeps the FaceRegistered flag in sync.
type AccessService struct {
	db          *gorm.DB
	identityURL string
	client      *http.Client
}

// NewAccessService creates a new access service
func NewAccessService(db *gorm.DB, identityURL string) *AccessService {
	return &AccessService{
		db:          db,
		identityURL: identityURL,
		client:      &http.Client{Timeout: 15 * time.Second},
	}
}

type identityVerifyRequest struct {
	BranchID    uint   `json:"branch_id"`
	SnapshotURL string `json:"snapshot_url"`
}

type identityVerifyResponse struct {
	Matched    bool    `json:"matched"`
	UserID     *uint   `json:"user_id"`
	Similarity float64 `json:"similarity"`
}

type identityEnrollRequest struct {
	UserID   uint   `json:"user_id"`
	ImageURL string `json:"image_url"`
}

// VerifyInput represents a door camera snapshot to verify
type VerifyInput struct {
	BranchID    uint   `json:"branch_id" validate:"required"`
	SnapshotURL string `json:"snapshot_url" validate:"required,url"`
}

// Verify sends a snapshot to the identity service and records the
// verdict as an access event. The event is written whether or not
// the face matched; unmatched events carry no user id.
func (s *AccessService) Verify(ctx context.Context, p domain.Principal, input *VerifyInput) (*models.AccessEvent, error) {
	scope, err := adminScope(p, nil)
	if err != nil {
		return nil, err
	}
	if err := validate.Struct(input); err != nil {
		return nil, err
	}
	if !scope.Allows(input.BranchID) {
		return nil, fmt.Errorf("%w: branch", domain.ErrAccessDenied)
	}
	if s.identityURL == "" {
		return nil, ErrIdentityDisabled
	}

	if _, err := repositories.NewBranchRepository(s.db).GetByID(ctx, input.BranchID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: branch", domain.ErrNotFound)
		}
		return nil, err
	}

	verdict, err := s.callVerify(ctx, input)
	if err != nil {
		return nil, err
	}

	// A matched user id must belong to a live account; an identity
	// hit on a deleted tenant is recorded as unmatched.
	if verdict.Matched && verdict.UserID != nil {
		if _, err := repositories.NewUserRepository(s.db).GetByID(ctx, *verdict.UserID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				verdict.Matched = false
				verdict.UserID = nil
			} else {
				return nil, err
			}
		}
	}

	event := &models.AccessEvent{
		ID:          uuid.NewString(),
		UserID:      verdict.UserID,
		BranchID:    input.BranchID,
		Matched:     verdict.Matched,
		Similarity:  verdict.Similarity,
		SnapshotURL: input.SnapshotURL,
		OccurredAt:  time.Now(),
	}
	if err := repositories.NewAccessEventRepository(s.db).Create(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}

func (s *AccessService) callVerify(ctx context.Context, input *VerifyInput) (*identityVerifyResponse, error) {
	body, err := json.Marshal(identityVerifyRequest{BranchID: input.BranchID, SnapshotURL: input.SnapshotURL})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.identityURL+"/v1/verify", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIdentityUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrIdentityUnavailable, resp.StatusCode)
	}

	var verdict identityVerifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&verdict); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIdentityUnavailable, err)
	}
	return &verdict, nil
}

// RegisterFaceInput represents face enrollment input
type RegisterFaceInput struct {
	UserID   uint   `json:"user_id" validate:"required"`
	ImageURL string `json:"image_url" validate:"required,url"`
}

// RegisterFace enrolls a user's face with the identity service and
// flips FaceRegistered on success.
func (s *AccessService) RegisterFace(ctx context.Context, p domain.Principal, input *RegisterFaceInput) (*models.User, error) {
	scope, err := adminScope(p, nil)
	if err != nil {
		return nil, err
	}
	if err := validate.Struct(input); err != nil {
		return nil, err
	}
	if s.identityURL == "" {
		return nil, ErrIdentityDisabled
	}

	userRepo := repositories.NewUserRepository(s.db)
	user, err := userRepo.GetByID(ctx, input.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user", domain.ErrNotFound)
		}
		return nil, err
	}
	if user.BranchID != nil && !scope.Allows(*user.BranchID) {
		return nil, fmt.Errorf("%w: user", domain.ErrNotFound)
	}

	body, err := json.Marshal(identityEnrollRequest{UserID: user.ID, ImageURL: input.ImageURL})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, "POST", s.identityURL+"/v1/enroll", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIdentityUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrIdentityUnavailable, resp.StatusCode)
	}

	user.FaceRegistered = true
	if err := userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	log.Printf("✅ Face enrolled for user #%d", user.ID)
	return user, nil
}

// ListEvents lists access events within the branch scope, optionally
// filtered by user.
func (s *AccessService) ListEvents(ctx context.Context, p domain.Principal, requestedBranch *uint, userID *uint, offset, limit int) ([]*models.AccessEvent, int64, error) {
	scope, err := adminScope(p, requestedBranch)
	if err != nil {
		return nil, 0, err
	}
	return repositories.NewAccessEventRepository(s.db).List(ctx, scope.Branch(), userID, offset, limit)
}
