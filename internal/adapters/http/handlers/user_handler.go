package handlers

import (
	"roomhub/internal/adapters/persistence/models"
	"roomhub/internal/core/services"
	"roomhub/internal/pkg/pagination"
	"roomhub/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// UserHandler handles user management endpoints
type UserHandler struct {
	userService *services.UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// Create handles user creation
// @Summary Create user
// @Description Create a staff or tenant account
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.CreateUserInput true "User data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /users [post]
func (h *UserHandler) Create(c *fiber.Ctx) error {
	p, ok := principal(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var input services.CreateUserInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	user, err := h.userService.Create(c.Context(), p, &input)
	if err != nil {
		return response.Domain(c, err)
	}
	return response.Created(c, "User created", user.ToResponse())
}

// List handles user listing
// @Summary List users
// @Description List users within the caller's branch scope
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param branch_id query int false "Branch filter"
// @Param role query string false "Role filter (ADMIN, TENANT)"
// @Success 200 {object} response.Response
// @Router /users [get]
func (h *UserHandler) List(c *fiber.Ctx) error {
	p, ok := principal(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	params := pagination.GetParams(c)
	users, total, err := h.userService.List(c.Context(), p, queryUint(c, "branch_id"), c.Query("role"), params.Offset, params.Limit)
	if err != nil {
		return response.Domain(c, err)
	}

	items := make([]*models.UserResponse, 0, len(users))
	for _, u := range users {
		items = append(items, u.ToResponse())
	}
	return response.Success(c, "Users retrieved", pagination.NewResponse(items, params, total))
}

// Get handles fetching one user
// @Summary Get user
// @Description Get a user by id
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /users/{id} [get]
func (h *UserHandler) Get(c *fiber.Ctx) error {
	p, ok := principal(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	id, err := paramID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid user id")
	}

	user, err := h.userService.Get(c.Context(), p, id)
	if err != nil {
		return response.Domain(c, err)
	}
	return response.Success(c, "User retrieved", user.ToResponse())
}

// Update handles user update
// @Summary Update user
// @Description Edit a user account
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param body body services.UpdateUserInput true "User data"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /users/{id} [put]
func (h *UserHandler) Update(c *fiber.Ctx) error {
	p, ok := principal(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	id, err := paramID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid user id")
	}

	var input services.UpdateUserInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	user, err := h.userService.Update(c.Context(), p, id, &input)
	if err != nil {
		return response.Domain(c, err)
	}
	return response.Success(c, "User updated", user.ToResponse())
}

// ChangePassword handles self-service password rotation
// @Summary Change password
// @Description Change the authenticated user's password
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.ChangePasswordInput true "Passwords"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /users/me/password [put]
func (h *UserHandler) ChangePassword(c *fiber.Ctx) error {
	p, ok := principal(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var input services.ChangePasswordInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.userService.ChangePassword(c.Context(), p, &input); err != nil {
		return response.Domain(c, err)
	}
	return response.Success(c, "Password changed, other sessions revoked", nil)
}

// Delete handles user soft delete
// @Summary Delete user
// @Description Move a user to the recycle bin
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /users/{id} [delete]
func (h *UserHandler) Delete(c *fiber.Ctx) error {
	p, ok := principal(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	id, err := paramID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid user id")
	}

	if err := h.userService.SoftDelete(c.Context(), p, id); err != nil {
		return response.Domain(c, err)
	}
	return response.Success(c, "User moved to recycle bin", nil)
}

// ListDeleted handles the user recycle bin listing
// @Summary List deleted users
// @Description List users in the recycle bin
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param branch_id query int false "Branch filter"
// @Success 200 {object} response.Response
// @Router /users/trash [get]
func (h *UserHandler) ListDeleted(c *fiber.Ctx) error {
	p, ok := principal(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	params := pagination.GetParams(c)
	users, total, err := h.userService.ListDeleted(c.Context(), p, queryUint(c, "branch_id"), params.Offset, params.Limit)
	if err != nil {
		return response.Domain(c, err)
	}

	items := make([]*models.UserResponse, 0, len(users))
	for _, u := range users {
		items = append(items, u.ToResponse())
	}
	return response.Success(c, "Deleted users retrieved", pagination.NewResponse(items, params, total))
}

// Restore handles user restore
// @Summary Restore user
// @Description Restore a user from the recycle bin
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /users/{id}/restore [post]
func (h *UserHandler) Restore(c *fiber.Ctx) error {
	p, ok := principal(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	id, err := paramID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid user id")
	}

	user, err := h.userService.Restore(c.Context(), p, id)
	if err != nil {
		return response.Domain(c, err)
	}
	return response.Success(c, "User restored", user.ToResponse())
}

// Purge handles permanent user removal
// @Summary Purge user
// @Description Permanently remove a user from the recycle bin
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /users/{id}/purge [delete]
func (h *UserHandler) Purge(c *fiber.Ctx) error {
	p, ok := principal(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	id, err := paramID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid user id")
	}

	if err := h.userService.Purge(c.Context(), p, id); err != nil {
		return response.Domain(c, err)
	}
	return response.Success(c, "User permanently removed", nil)
}
