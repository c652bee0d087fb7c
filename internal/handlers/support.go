package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/localnerve/conexo-admin/internal/middleware"
	"github.com/localnerve/conexo-admin/internal/services"
)

// TicketResponse acknowledges a support ticket
type TicketResponse struct {
	Success   bool   `json:"success"`
	ID        uint64 `json:"id"`
	Reference string `json:"reference"`
}

// CreateTicket handles POST /api/support/tickets
// @Summary Open a support ticket
// @Tags Support
// @Accept json
// @Produce json
// @Param ticket body services.TicketInput true "Ticket"
// @Success 201 {object} TicketResponse
// @Failure 422 {object} ResultResponse
// @Security CookieAuth
// @Router /support/tickets [post]
func (h *Handler) CreateTicket(c *fiber.Ctx) error {
	var in services.TicketInput
	if err := c.BodyParser(&in); err != nil {
		return h.badBody(c, "createTicket")
	}
	ticket, res, err := h.Svc.CreateTicket(c.UserContext(), middleware.Principal(c), in)
	if err != nil {
		return h.serviceError(c, err, "createTicket")
	}
	if !res.Success {
		return h.result(c, res, fiber.StatusCreated)
	}
	return c.Status(fiber.StatusCreated).JSON(TicketResponse{Success: true, ID: ticket.ID, Reference: ticket.Reference})
}
