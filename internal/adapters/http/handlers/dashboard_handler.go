package handlers

import (
	"roomhub/internal/core/services"
	"roomhub/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// DashboardHandler handles dashboard endpoints
type DashboardHandler struct {
	dashboardService *services.DashboardService
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(dashboardService *services.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// Admin handles the admin dashboard
// @Summary Admin dashboard
// @Description Branch-scoped occupancy, tenancy and billing aggregates
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Param branch_id query int false "Branch filter (global admin only)"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /dashboard/admin [get]
func (h *DashboardHandler) Admin(c *fiber.Ctx) error {
	p, ok := principal(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	data, err := h.dashboardService.GetAdminDashboard(c.Context(), p, queryUint(c, "branch_id"))
	if err != nil {
		return response.Domain(c, err)
	}
	return response.Success(c, "Dashboard retrieved", data)
}

// Tenant handles the tenant home screen
// @Summary Tenant dashboard
// @Description The signed-in tenant's contracts and outstanding invoices
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /dashboard/me [get]
func (h *DashboardHandler) Tenant(c *fiber.Ctx) error {
	p, ok := principal(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	data, err := h.dashboardService.GetTenantDashboard(c.Context(), p)
	if err != nil {
		return response.Domain(c, err)
	}
	return response.Success(c, "Dashboard retrieved", data)
}
