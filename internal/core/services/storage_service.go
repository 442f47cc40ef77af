package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"roomhub/internal/core/domain"

	"github.com/google/uuid"
)

// Storage service errors
var (
	ErrStorageDisabled    = fmt.Errorf("%w: storage service not configured", domain.ErrInvalidState)
	ErrStorageUnavailable = errors.New("storage service unavailable")
)

var allowedUploadExts = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".webp": true, ".pdf": true,
}

// StorageService uploads attachments (contract scans, payment
// proofs, face snapshots) to an external object store and hands back
// public URLs.
type StorageService struct {
	baseURL string
	client  *http.Client
}

// NewStorageService creates a new storage service
func NewStorageService(baseURL string) *StorageService {
	return &StorageService{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// IsEnabled checks if storage is configured
func (s *StorageService) IsEnabled() bool {
	return s.baseURL != ""
}

type storageUploadResponse struct {
	URL string `json:"url"`
}

// Upload streams a file to the object store under a random key and
// returns its public URL. The original filename only contributes the
// extension.
func (s *StorageService) Upload(ctx context.Context, filename string, content io.Reader) (string, error) {
	if !s.IsEnabled() {
		return "", ErrStorageDisabled
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedUploadExts[ext] {
		return "", fmt.Errorf("%w: unsupported file type %q", domain.ErrValidation, ext)
	}
	key := uuid.NewString() + ext

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", key)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, content); err != nil {
		return "", err
	}
	if err := writer.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.baseURL+"/v1/objects", &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("%w: status %d", ErrStorageUnavailable, resp.StatusCode)
	}

	var uploaded storageUploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&uploaded); err != nil {
		return "", fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return uploaded.URL, nil
}
