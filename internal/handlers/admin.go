package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/localnerve/conexo-admin/internal/services"
)

// RejectBody carries the optional reason of a rejection
type RejectBody struct {
	Reason string `json:"reason"`
}

// ListPending handles GET /api/admin/moderation
// @Summary Moderation queue
// @Tags Admin
// @Produce json
// @Success 200 {array} services.PendingItem
// @Failure 403 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /admin/moderation [get]
func (h *Handler) ListPending(c *fiber.Ctx) error {
	items, err := h.Svc.ListPending(c.UserContext())
	if err != nil {
		return h.serviceError(c, err, "listPending")
	}
	return c.JSON(items)
}

// Approve handles POST /api/admin/moderation/:kind/:id/approve
// @Summary Approve a listing
// @Tags Admin
// @Produce json
// @Param kind path string true "business, event or job"
// @Param id path int true "Listing ID"
// @Success 200 {object} ResultResponse
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /admin/moderation/{kind}/{id}/approve [post]
func (h *Handler) Approve(c *fiber.Ctx) error {
	kind, err := services.ParseListingKind(c.Params("kind"))
	if err != nil {
		return h.serviceError(c, err, "approve")
	}
	id := paramID(c, "id")
	if err := h.Svc.Approve(c.UserContext(), kind, id); err != nil {
		return h.serviceError(c, err, "approve")
	}
	return c.JSON(ResultResponse{Success: true, ID: id})
}

// Reject handles POST /api/admin/moderation/:kind/:id/reject
// @Summary Reject a listing
// @Tags Admin
// @Accept json
// @Produce json
// @Param kind path string true "business, event or job"
// @Param id path int true "Listing ID"
// @Param reason body RejectBody false "Reason"
// @Success 200 {object} ResultResponse
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /admin/moderation/{kind}/{id}/reject [post]
func (h *Handler) Reject(c *fiber.Ctx) error {
	kind, err := services.ParseListingKind(c.Params("kind"))
	if err != nil {
		return h.serviceError(c, err, "reject")
	}
	var body RejectBody
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&body); err != nil {
			return h.badBody(c, "reject")
		}
	}
	id := paramID(c, "id")
	if err := h.Svc.Reject(c.UserContext(), kind, id, body.Reason); err != nil {
		return h.serviceError(c, err, "reject")
	}
	return c.JSON(ResultResponse{Success: true, ID: id})
}
