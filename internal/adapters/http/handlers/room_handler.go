package handlers

import (
	"roomhub/internal/adapters/persistence/models"
	"roomhub/internal/core/domain"
	"roomhub/internal/core/services"
	"roomhub/internal/pkg/pagination"
	"roomhub/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// RoomHandler handles room endpoints
type RoomHandler struct {
	roomService *services.RoomService
}

// NewRoomHandler creates a new room handler
func NewRoomHandler(roomService *services.RoomService) *RoomHandler {
	return &RoomHandler{roomService: roomService}
}

// Create handles room creation
// @Summary Create room
// @Description Create a room under a branch
// @Tags Rooms
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.CreateRoomInput true "Room data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /rooms [post]
func (h *RoomHandler) Create(c *fiber.Ctx) error {
	p, ok := principal(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var input services.CreateRoomInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	room, err := h.roomService.Create(c.Context(), p, &input)
	if err != nil {
		return response.Domain(c, err)
	}
	return response.Created(c, "Room created", room.ToResponse())
}

// List handles room listing
// @Summary List rooms
// @Description List rooms, optionally filtered by branch and status
// @Tags Rooms
// @Produce json
// @Security BearerAuth
// @Param branch_id query int false "Branch filter"
// @Param status query string false "Status filter (AVAILABLE, OCCUPIED)"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Response
// @Router /rooms [get]
func (h *RoomHandler) List(c *fiber.Ctx) error {
	p, ok := principal(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	params := pagination.GetParams(c)
	status := domain.RoomStatus(c.Query("status"))

	rooms, total, err := h.roomService.List(c.Context(), p, queryUint(c, "branch_id"), status, params.Offset, params.Limit)
	if err != nil {
		return response.Domain(c, err)
	}

	items := make([]*models.RoomResponse, 0, len(rooms))
	for _, r := range rooms {
		items = append(items, r.ToResponse())
	}
	return response.Success(c, "Rooms retrieved", pagination.NewResponse(items, params, total))
}

// Get handles fetching one room
// @Summary Get room
// @Description Get a room by id
// @Tags Rooms
// @Produce json
// @Security BearerAuth
// @Param id path int true "Room ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /rooms/{id} [get]
func (h *RoomHandler) Get(c *fiber.Ctx) error {
	p, ok := principal(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	id, err := paramID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid room id")
	}

	room, err := h.roomService.Get(c.Context(), p, id)
	if err != nil {
		return response.Domain(c, err)
	}
	return response.Success(c, "Room retrieved", room.ToResponse())
}

// Update handles room update
// @Summary Update room
// @Description Update room details
// @Tags Rooms
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Room ID"
// @Param body body services.UpdateRoomInput true "Room data"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /rooms/{id} [put]
func (h *RoomHandler) Update(c *fiber.Ctx) error {
	p, ok := principal(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	id, err := paramID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid room id")
	}

	var input services.UpdateRoomInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	room, err := h.roomService.Update(c.Context(), p, id, &input)
	if err != nil {
		return response.Domain(c, err)
	}
	return response.Success(c, "Room updated", room.ToResponse())
}

// Delete handles room soft delete
// @Summary Delete room
// @Description Move a room to the recycle bin
// @Tags Rooms
// @Produce json
// @Security BearerAuth
// @Param id path int true "Room ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /rooms/{id} [delete]
func (h *RoomHandler) Delete(c *fiber.Ctx) error {
	p, ok := principal(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	id, err := paramID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid room id")
	}

	if err := h.roomService.SoftDelete(c.Context(), p, id); err != nil {
		return response.Domain(c, err)
	}
	return response.Success(c, "Room moved to recycle bin", nil)
}

// ListDeleted handles the room recycle bin listing
// @Summary List deleted rooms
// @Description List rooms in the recycle bin
// @Tags Rooms
// @Produce json
// @Security BearerAuth
// @Param branch_id query int false "Branch filter"
// @Success 200 {object} response.Response
// @Router /rooms/trash [get]
func (h *RoomHandler) ListDeleted(c *fiber.Ctx) error {
	p, ok := principal(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	params := pagination.GetParams(c)
	rooms, total, err := h.roomService.ListDeleted(c.Context(), p, queryUint(c, "branch_id"), params.Offset, params.Limit)
	if err != nil {
		return response.Domain(c, err)
	}

	items := make([]*models.RoomResponse, 0, len(rooms))
	for _, r := range rooms {
		items = append(items, r.ToResponse())
	}
	return response.Success(c, "Deleted rooms retrieved", pagination.NewResponse(items, params, total))
}

// Restore handles room restore
// @Summary Restore room
// @Description Restore a room from the recycle bin
// @Tags Rooms
// @Produce json
// @Security BearerAuth
// @Param id path int true "Room ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /rooms/{id}/restore [post]
func (h *RoomHandler) Restore(c *fiber.Ctx) error {
	p, ok := principal(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	id, err := paramID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid room id")
	}

	room, err := h.roomService.Restore(c.Context(), p, id)
	if err != nil {
		return response.Domain(c, err)
	}
	return response.Success(c, "Room restored", room.ToResponse())
}

// Purge handles permanent room removal
// @Summary Purge room
// @Description Permanently remove a room from the recycle bin
// @Tags Rooms
// @Produce json
// @Security BearerAuth
// @Param id path int true "Room ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /rooms/{id}/purge [delete]
func (h *RoomHandler) Purge(c *fiber.Ctx) error {
	p, ok := principal(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	id, err := paramID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid room id")
	}

	if err := h.roomService.Purge(c.Context(), p, id); err != nil {
		return response.Domain(c, err)
	}
	return response.Success(c, "Room permanently removed", nil)
}
