package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roomhub/internal/core/domain"
)

func TestStorageUpload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/objects", r.URL.Path)

		require.NoError(t, r.ParseMultipartForm(1<<20))
		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()

		// Stored under a random key, only the extension survives.
		assert.True(t, strings.HasSuffix(header.Filename, ".pdf"))
		assert.NotEqual(t, "contract.pdf", header.Filename)

		w.WriteHeader(http.StatusCreated)
		require.NoError(t, json.NewEncoder(w).Encode(storageUploadResponse{
			URL: "https://cdn.test.local/" + header.Filename,
		}))
	}))
	t.Cleanup(srv.Close)

	svc := NewStorageService(srv.URL)
	url, err := svc.Upload(context.Background(), "contract.pdf", strings.NewReader("%PDF-1.4"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "https://cdn.test.local/"))
}

func TestStorageUploadRejectsExtension(t *testing.T) {
	svc := NewStorageService("http://storage.test.local")

	_, err := svc.Upload(context.Background(), "malware.exe", strings.NewReader("x"))
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestStorageDisabled(t *testing.T) {
	svc := NewStorageService("")
	assert.False(t, svc.IsEnabled())

	_, err := svc.Upload(context.Background(), "photo.jpg", strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrStorageDisabled)
}

func TestStorageUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	svc := NewStorageService(srv.URL)
	_, err := svc.Upload(context.Background(), "photo.jpg", strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrStorageUnavailable)
}
