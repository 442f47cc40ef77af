package handlers

import (
	"roomhub/internal/adapters/persistence/models"
	"roomhub/internal/core/domain"
	"roomhub/internal/core/services"
	"roomhub/internal/pkg/pagination"
	"roomhub/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// InvoiceHandler handles billing endpoints
type InvoiceHandler struct {
	invoiceService *services.InvoiceService
	notifyService  *services.NotificationService
}

// NewInvoiceHandler creates a new invoice handler
func NewInvoiceHandler(invoiceService *services.InvoiceService, notifyService *services.NotificationService) *InvoiceHandler {
	return &InvoiceHandler{
		invoiceService: invoiceService,
		notifyService:  notifyService,
	}
}

// Create handles invoice creation
// @Summary Create invoice
// @Description Issue an invoice for a room's billing period
// @Tags Invoices
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.CreateInvoiceInput true "Invoice data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /invoices [post]
func (h *InvoiceHandler) Create(c *fiber.Ctx) error {
	p, ok := principal(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var input services.CreateInvoiceInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	invoice, err := h.invoiceService.Create(c.Context(), p, &input)
	if err != nil {
		return response.Domain(c, err)
	}

	roomNumber := ""
	if invoice.Room != nil {
		roomNumber = invoice.Room.RoomNumber
	}
	go h.notifyService.NotifyInvoiceIssued(invoice, roomNumber)

	return response.Created(c, "Invoice issued", invoice.ToResponse())
}

// List handles invoice listing
// @Summary List invoices
// @Description List invoices; tenants only see their own rooms
// @Tags Invoices
// @Produce json
// @Security BearerAuth
// @Param branch_id query int false "Branch filter"
// @Param room_id query int false "Room filter"
// @Param status query string false "Status filter (UNPAID, PAID)"
// @Success 200 {object} response.Response
// @Router /invoices [get]
func (h *InvoiceHandler) List(c *fiber.Ctx) error {
	p, ok := principal(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	params := pagination.GetParams(c)
	status := domain.InvoiceStatus(c.Query("status"))

	invoices, total, err := h.invoiceService.List(c.Context(), p, queryUint(c, "branch_id"), queryUint(c, "room_id"), status, params.Offset, params.Limit)
	if err != nil {
		return response.Domain(c, err)
	}

	items := make([]*models.InvoiceResponse, 0, len(invoices))
	for _, inv := range invoices {
		items = append(items, inv.ToResponse())
	}
	return response.Success(c, "Invoices retrieved", pagination.NewResponse(items, params, total))
}

// Get handles fetching one invoice
// @Summary Get invoice
// @Description Get an invoice by id
// @Tags Invoices
// @Produce json
// @Security BearerAuth
// @Param id path int true "Invoice ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /invoices/{id} [get]
func (h *InvoiceHandler) Get(c *fiber.Ctx) error {
	p, ok := principal(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	id, err := paramID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid invoice id")
	}

	invoice, err := h.invoiceService.Get(c.Context(), p, id)
	if err != nil {
		return response.Domain(c, err)
	}
	return response.Success(c, "Invoice retrieved", invoice.ToResponse())
}

// LatestForRoom handles fetching the newest invoice on a room
// @Summary Latest invoice for room
// @Description Get the newest invoice on a room, the seed for the next period's meter readings
// @Tags Invoices
// @Produce json
// @Security BearerAuth
// @Param id path int true "Room ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /rooms/{id}/invoices/latest [get]
func (h *InvoiceHandler) LatestForRoom(c *fiber.Ctx) error {
	p, ok := principal(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	roomID, err := paramID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid room id")
	}

	invoice, err := h.invoiceService.LatestForRoom(c.Context(), p, roomID)
	if err != nil {
		return response.Domain(c, err)
	}
	return response.Success(c, "Latest invoice retrieved", invoice.ToResponse())
}

// Update handles invoice correction
// @Summary Update invoice
// @Description Correct meter readings or service fee on an unpaid invoice
// @Tags Invoices
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Invoice ID"
// @Param body body services.UpdateInvoiceInput true "Invoice data"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /invoices/{id} [put]
func (h *InvoiceHandler) Update(c *fiber.Ctx) error {
	p, ok := principal(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	id, err := paramID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid invoice id")
	}

	var input services.UpdateInvoiceInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	invoice, err := h.invoiceService.Update(c.Context(), p, id, &input)
	if err != nil {
		return response.Domain(c, err)
	}
	return response.Success(c, "Invoice updated", invoice.ToResponse())
}

// ConfirmPaymentRequest represents payment confirmation body
type ConfirmPaymentRequest struct {
	ProofURL string `json:"proof_url"`
}

// ConfirmPayment handles marking an invoice as paid
// @Summary Confirm payment
// @Description Mark an unpaid invoice as paid
// @Tags Invoices
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Invoice ID"
// @Param body body ConfirmPaymentRequest false "Payment proof"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /invoices/{id}/pay [post]
func (h *InvoiceHandler) ConfirmPayment(c *fiber.Ctx) error {
	p, ok := principal(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	id, err := paramID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid invoice id")
	}

	var req ConfirmPaymentRequest
	_ = c.BodyParser(&req) // proof is optional

	invoice, err := h.invoiceService.ConfirmPayment(c.Context(), p, id, req.ProofURL)
	if err != nil {
		return response.Domain(c, err)
	}
	return response.Success(c, "Payment confirmed", invoice.ToResponse())
}

// Delete handles invoice soft delete
// @Summary Delete invoice
// @Description Move an invoice to the recycle bin
// @Tags Invoices
// @Produce json
// @Security BearerAuth
// @Param id path int true "Invoice ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /invoices/{id} [delete]
func (h *InvoiceHandler) Delete(c *fiber.Ctx) error {
	p, ok := principal(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	id, err := paramID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid invoice id")
	}

	if err := h.invoiceService.SoftDelete(c.Context(), p, id); err != nil {
		return response.Domain(c, err)
	}
	return response.Success(c, "Invoice moved to recycle bin", nil)
}

// ListDeleted handles the invoice recycle bin listing
// @Summary List deleted invoices
// @Description List invoices in the recycle bin
// @Tags Invoices
// @Produce json
// @Security BearerAuth
// @Param branch_id query int false "Branch filter"
// @Success 200 {object} response.Response
// @Router /invoices/trash [get]
func (h *InvoiceHandler) ListDeleted(c *fiber.Ctx) error {
	p, ok := principal(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	params := pagination.GetParams(c)
	invoices, total, err := h.invoiceService.ListDeleted(c.Context(), p, queryUint(c, "branch_id"), params.Offset, params.Limit)
	if err != nil {
		return response.Domain(c, err)
	}

	items := make([]*models.InvoiceResponse, 0, len(invoices))
	for _, inv := range invoices {
		items = append(items, inv.ToResponse())
	}
	return response.Success(c, "Deleted invoices retrieved", pagination.NewResponse(items, params, total))
}

// Restore handles invoice restore
// @Summary Restore invoice
// @Description Restore an invoice from the recycle bin
// @Tags Invoices
// @Produce json
// @Security BearerAuth
// @Param id path int true "Invoice ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /invoices/{id}/restore [post]
func (h *InvoiceHandler) Restore(c *fiber.Ctx) error {
	p, ok := principal(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	id, err := paramID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid invoice id")
	}

	invoice, err := h.invoiceService.Restore(c.Context(), p, id)
	if err != nil {
		return response.Domain(c, err)
	}
	return response.Success(c, "Invoice restored", invoice.ToResponse())
}

// Purge handles permanent invoice removal
// @Summary Purge invoice
// @Description Permanently remove an invoice from the recycle bin
// @Tags Invoices
// @Produce json
// @Security BearerAuth
// @Param id path int true "Invoice ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /invoices/{id}/purge [delete]
func (h *InvoiceHandler) Purge(c *fiber.Ctx) error {
	p, ok := principal(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	id, err := paramID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid invoice id")
	}

	if err := h.invoiceService.Purge(c.Context(), p, id); err != nil {
		return response.Domain(c, err)
	}
	return response.Success(c, "Invoice permanently removed", nil)
}
