package handlers

import (
	"roomhub/internal/adapters/persistence/models"
	"roomhub/internal/core/services"
	"roomhub/internal/pkg/pagination"
	"roomhub/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// BranchHandler handles branch endpoints
type BranchHandler struct {
	branchService *services.BranchService
}

// NewBranchHandler creates a new branch handler
func NewBranchHandler(branchService *services.BranchService) *BranchHandler {
	return &BranchHandler{branchService: branchService}
}

// Create handles branch creation
// @Summary Create branch
// @Description Create a new branch (global admin only)
// @Tags Branches
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.CreateBranchInput true "Branch data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /branches [post]
func (h *BranchHandler) Create(c *fiber.Ctx) error {
	p, ok := principal(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var input services.CreateBranchInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	branch, err := h.branchService.Create(c.Context(), p, &input)
	if err != nil {
		return response.Domain(c, err)
	}
	return response.Created(c, "Branch created", branch.ToResponse())
}

// List handles branch listing
// @Summary List branches
// @Description List branches visible to the caller
// @Tags Branches
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Response
// @Router /branches [get]
func (h *BranchHandler) List(c *fiber.Ctx) error {
	p, ok := principal(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	params := pagination.GetParams(c)
	branches, total, err := h.branchService.List(c.Context(), p, params.Offset, params.Limit)
	if err != nil {
		return response.Domain(c, err)
	}

	items := make([]*models.BranchResponse, 0, len(branches))
	for _, b := range branches {
		items = append(items, b.ToResponse())
	}
	return response.Success(c, "Branches retrieved", pagination.NewResponse(items, params, total))
}

// Get handles fetching one branch
// @Summary Get branch
// @Description Get a branch by id
// @Tags Branches
// @Produce json
// @Security BearerAuth
// @Param id path int true "Branch ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /branches/{id} [get]
func (h *BranchHandler) Get(c *fiber.Ctx) error {
	p, ok := principal(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	id, err := paramID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid branch id")
	}

	branch, err := h.branchService.Get(c.Context(), p, id)
	if err != nil {
		return response.Domain(c, err)
	}
	return response.Success(c, "Branch retrieved", branch.ToResponse())
}

// Update handles branch update
// @Summary Update branch
// @Description Update a branch (global admin only)
// @Tags Branches
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Branch ID"
// @Param body body services.UpdateBranchInput true "Branch data"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /branches/{id} [put]
func (h *BranchHandler) Update(c *fiber.Ctx) error {
	p, ok := principal(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	id, err := paramID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid branch id")
	}

	var input services.UpdateBranchInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	branch, err := h.branchService.Update(c.Context(), p, id, &input)
	if err != nil {
		return response.Domain(c, err)
	}
	return response.Success(c, "Branch updated", branch.ToResponse())
}

// Delete handles branch soft delete
// @Summary Delete branch
// @Description Move a branch to the recycle bin
// @Tags Branches
// @Produce json
// @Security BearerAuth
// @Param id path int true "Branch ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /branches/{id} [delete]
func (h *BranchHandler) Delete(c *fiber.Ctx) error {
	p, ok := principal(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	id, err := paramID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid branch id")
	}

	if err := h.branchService.SoftDelete(c.Context(), p, id); err != nil {
		return response.Domain(c, err)
	}
	return response.Success(c, "Branch moved to recycle bin", nil)
}

// ListDeleted handles the branch recycle bin listing
// @Summary List deleted branches
// @Description List branches in the recycle bin
// @Tags Branches
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /branches/trash [get]
func (h *BranchHandler) ListDeleted(c *fiber.Ctx) error {
	p, ok := principal(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	params := pagination.GetParams(c)
	branches, total, err := h.branchService.ListDeleted(c.Context(), p, params.Offset, params.Limit)
	if err != nil {
		return response.Domain(c, err)
	}

	items := make([]*models.BranchResponse, 0, len(branches))
	for _, b := range branches {
		items = append(items, b.ToResponse())
	}
	return response.Success(c, "Deleted branches retrieved", pagination.NewResponse(items, params, total))
}

// Restore handles branch restore
// @Summary Restore branch
// @Description Restore a branch from the recycle bin
// @Tags Branches
// @Produce json
// @Security BearerAuth
// @Param id path int true "Branch ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /branches/{id}/restore [post]
func (h *BranchHandler) Restore(c *fiber.Ctx) error {
	p, ok := principal(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	id, err := paramID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid branch id")
	}

	branch, err := h.branchService.Restore(c.Context(), p, id)
	if err != nil {
		return response.Domain(c, err)
	}
	return response.Success(c, "Branch restored", branch.ToResponse())
}

// Purge handles permanent branch removal
// @Summary Purge branch
// @Description Permanently remove a branch from the recycle bin
// @Tags Branches
// @Produce json
// @Security BearerAuth
// @Param id path int true "Branch ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /branches/{id}/purge [delete]
func (h *BranchHandler) Purge(c *fiber.Ctx) error {
	p, ok := principal(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	id, err := paramID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid branch id")
	}

	if err := h.branchService.Purge(c.Context(), p, id); err != nil {
		return response.Domain(c, err)
	}
	return response.Success(c, "Branch permanently removed", nil)
}
