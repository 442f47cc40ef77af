package handlers

import (
	"roomhub/internal/adapters/persistence/models"
	"roomhub/internal/core/services"
	"roomhub/internal/pkg/pagination"
	"roomhub/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// AccessHandler handles face-identity access log endpoints
type AccessHandler struct {
	accessService *services.AccessService
}

// NewAccessHandler creates a new access handler
func NewAccessHandler(accessService *services.AccessService) *AccessHandler {
	return &AccessHandler{accessService: accessService}
}

// Verify handles snapshot verification
// @Summary Verify access snapshot
// @Description Send a door camera snapshot to the identity service and record the verdict
// @Tags Access
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.VerifyInput true "Snapshot data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /access/verify [post]
func (h *AccessHandler) Verify(c *fiber.Ctx) error {
	p, ok := principal(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var input services.VerifyInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	event, err := h.accessService.Verify(c.Context(), p, &input)
	if err != nil {
		return response.Domain(c, err)
	}
	return response.Created(c, "Access event recorded", event.ToResponse())
}

// RegisterFace handles face enrollment
// @Summary Register face
// @Description Enroll a user's face with the identity service
// @Tags Access
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.RegisterFaceInput true "Enrollment data"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /access/register-face [post]
func (h *AccessHandler) RegisterFace(c *fiber.Ctx) error {
	p, ok := principal(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var input services.RegisterFaceInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	user, err := h.accessService.RegisterFace(c.Context(), p, &input)
	if err != nil {
		return response.Domain(c, err)
	}
	return response.Success(c, "Face registered", user.ToResponse())
}

// ListEvents handles access log listing
// @Summary List access events
// @Description List access events within the caller's branch scope
// @Tags Access
// @Produce json
// @Security BearerAuth
// @Param branch_id query int false "Branch filter"
// @Param user_id query int false "User filter"
// @Success 200 {object} response.Response
// @Router /access/events [get]
func (h *AccessHandler) ListEvents(c *fiber.Ctx) error {
	p, ok := principal(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	params := pagination.GetParams(c)
	events, total, err := h.accessService.ListEvents(c.Context(), p, queryUint(c, "branch_id"), queryUint(c, "user_id"), params.Offset, params.Limit)
	if err != nil {
		return response.Domain(c, err)
	}

	items := make([]*models.AccessEventResponse, 0, len(events))
	for _, e := range events {
		items = append(items, e.ToResponse())
	}
	return response.Success(c, "Access events retrieved", pagination.NewResponse(items, params, total))
}
