package handlers

import (
	"roomhub/internal/adapters/persistence/models"
	"roomhub/internal/core/domain"
	"roomhub/internal/core/services"
	"roomhub/internal/pkg/pagination"
	"roomhub/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// ContractHandler handles tenancy contract endpoints
type ContractHandler struct {
	contractService *services.ContractService
}

// NewContractHandler creates a new contract handler
func NewContractHandler(contractService *services.ContractService) *ContractHandler {
	return &ContractHandler{contractService: contractService}
}

// Create handles contract creation
// @Summary Create contract
// @Description Bind a tenant to a room
// @Tags Contracts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.CreateContractInput true "Contract data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /contracts [post]
func (h *ContractHandler) Create(c *fiber.Ctx) error {
	p, ok := principal(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var input services.CreateContractInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	contract, err := h.contractService.Create(c.Context(), p, &input)
	if err != nil {
		return response.Domain(c, err)
	}
	return response.Created(c, "Contract created", contract.ToResponse())
}

// List handles contract listing
// @Summary List contracts
// @Description List contracts; tenants only see their own
// @Tags Contracts
// @Produce json
// @Security BearerAuth
// @Param branch_id query int false "Branch filter"
// @Param user_id query int false "Tenant filter"
// @Param status query string false "Status filter"
// @Success 200 {object} response.Response
// @Router /contracts [get]
func (h *ContractHandler) List(c *fiber.Ctx) error {
	p, ok := principal(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	params := pagination.GetParams(c)
	status := domain.ContractStatus(c.Query("status"))

	contracts, total, err := h.contractService.List(c.Context(), p, queryUint(c, "branch_id"), queryUint(c, "user_id"), status, params.Offset, params.Limit)
	if err != nil {
		return response.Domain(c, err)
	}

	items := make([]*models.ContractResponse, 0, len(contracts))
	for _, ct := range contracts {
		items = append(items, ct.ToResponse())
	}
	return response.Success(c, "Contracts retrieved", pagination.NewResponse(items, params, total))
}

// Get handles fetching one contract
// @Summary Get contract
// @Description Get a contract by id
// @Tags Contracts
// @Produce json
// @Security BearerAuth
// @Param id path int true "Contract ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /contracts/{id} [get]
func (h *ContractHandler) Get(c *fiber.Ctx) error {
	p, ok := principal(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	id, err := paramID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid contract id")
	}

	contract, err := h.contractService.Get(c.Context(), p, id)
	if err != nil {
		return response.Domain(c, err)
	}
	return response.Success(c, "Contract retrieved", contract.ToResponse())
}

// Update handles contract update
// @Summary Update contract
// @Description Edit an active contract
// @Tags Contracts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Contract ID"
// @Param body body services.UpdateContractInput true "Contract data"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /contracts/{id} [put]
func (h *ContractHandler) Update(c *fiber.Ctx) error {
	p, ok := principal(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	id, err := paramID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid contract id")
	}

	var input services.UpdateContractInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	contract, err := h.contractService.Update(c.Context(), p, id, &input)
	if err != nil {
		return response.Domain(c, err)
	}
	return response.Success(c, "Contract updated", contract.ToResponse())
}

// Activate handles PENDING to ACTIVE transition
// @Summary Activate contract
// @Description Activate a pending contract and occupy the room
// @Tags Contracts
// @Produce json
// @Security BearerAuth
// @Param id path int true "Contract ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /contracts/{id}/activate [post]
func (h *ContractHandler) Activate(c *fiber.Ctx) error {
	p, ok := principal(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	id, err := paramID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid contract id")
	}

	contract, err := h.contractService.Activate(c.Context(), p, id)
	if err != nil {
		return response.Domain(c, err)
	}
	return response.Success(c, "Contract activated", contract.ToResponse())
}

// Terminate handles contract termination
// @Summary Terminate contract
// @Description Terminate an active contract and free the room
// @Tags Contracts
// @Produce json
// @Security BearerAuth
// @Param id path int true "Contract ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /contracts/{id}/terminate [post]
func (h *ContractHandler) Terminate(c *fiber.Ctx) error {
	p, ok := principal(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	id, err := paramID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid contract id")
	}

	contract, err := h.contractService.Terminate(c.Context(), p, id)
	if err != nil {
		return response.Domain(c, err)
	}
	return response.Success(c, "Contract terminated", contract.ToResponse())
}

// Delete handles contract soft delete
// @Summary Delete contract
// @Description Move a contract to the recycle bin
// @Tags Contracts
// @Produce json
// @Security BearerAuth
// @Param id path int true "Contract ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /contracts/{id} [delete]
func (h *ContractHandler) Delete(c *fiber.Ctx) error {
	p, ok := principal(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	id, err := paramID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid contract id")
	}

	if err := h.contractService.SoftDelete(c.Context(), p, id); err != nil {
		return response.Domain(c, err)
	}
	return response.Success(c, "Contract moved to recycle bin", nil)
}

// ListDeleted handles the contract recycle bin listing
// @Summary List deleted contracts
// @Description List contracts in the recycle bin
// @Tags Contracts
// @Produce json
// @Security BearerAuth
// @Param branch_id query int false "Branch filter"
// @Success 200 {object} response.Response
// @Router /contracts/trash [get]
func (h *ContractHandler) ListDeleted(c *fiber.Ctx) error {
	p, ok := principal(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	params := pagination.GetParams(c)
	contracts, total, err := h.contractService.ListDeleted(c.Context(), p, queryUint(c, "branch_id"), params.Offset, params.Limit)
	if err != nil {
		return response.Domain(c, err)
	}

	items := make([]*models.ContractResponse, 0, len(contracts))
	for _, ct := range contracts {
		items = append(items, ct.ToResponse())
	}
	return response.Success(c, "Deleted contracts retrieved", pagination.NewResponse(items, params, total))
}

// Restore handles contract restore
// @Summary Restore contract
// @Description Restore a contract from the recycle bin
// @Tags Contracts
// @Produce json
// @Security BearerAuth
// @Param id path int true "Contract ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /contracts/{id}/restore [post]
func (h *ContractHandler) Restore(c *fiber.Ctx) error {
	p, ok := principal(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	id, err := paramID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid contract id")
	}

	contract, err := h.contractService.Restore(c.Context(), p, id)
	if err != nil {
		return response.Domain(c, err)
	}
	return response.Success(c, "Contract restored", contract.ToResponse())
}

// Purge handles permanent contract removal
// @Summary Purge contract
// @Description Permanently remove a contract from the recycle bin
// @Tags Contracts
// @Produce json
// @Security BearerAuth
// @Param id path int true "Contract ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /contracts/{id}/purge [delete]
func (h *ContractHandler) Purge(c *fiber.Ctx) error {
	p, ok := principal(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	id, err := paramID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid contract id")
	}

	if err := h.contractService.Purge(c.Context(), p, id); err != nil {
		return response.Domain(c, err)
	}
	return response.Success(c, "Contract permanently removed", nil)
}
