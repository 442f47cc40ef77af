package handlers

import (
	"roomhub/internal/core/services"
	"roomhub/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// maxUploadBytes caps attachment size at 10 MB
const maxUploadBytes = 10 << 20

// UploadHandler handles attachment uploads
type UploadHandler struct {
	storageService *services.StorageService
}

// NewUploadHandler creates a new upload handler
func NewUploadHandler(storageService *services.StorageService) *UploadHandler {
	return &UploadHandler{storageService: storageService}
}

// Upload handles multipart file upload
// @Summary Upload attachment
// @Description Upload a contract scan, payment proof or snapshot; returns its public URL
// @Tags Uploads
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "File to upload"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /uploads [post]
func (h *UploadHandler) Upload(c *fiber.Ctx) error {
	if _, ok := principal(c); !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return response.BadRequest(c, "file field is required")
	}
	if fileHeader.Size > maxUploadBytes {
		return response.BadRequest(c, "File exceeds 10 MB limit")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return response.BadRequest(c, "Cannot read uploaded file")
	}
	defer file.Close()

	url, err := h.storageService.Upload(c.Context(), fileHeader.Filename, file)
	if err != nil {
		return response.Domain(c, err)
	}
	return response.Created(c, "File uploaded", fiber.Map{"url": url})
}
