package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/localnerve/conexo-admin/internal/middleware"
)

// ResponseBody is the owner's reply to a review
type ResponseBody struct {
	Body string `json:"body"`
}

// ListReviews handles GET /api/reviews
// @Summary Reviews of the owner's listings
// @Tags Reviews
// @Produce json
// @Success 200 {array} models.Review
// @Security CookieAuth
// @Router /reviews [get]
func (h *Handler) ListReviews(c *fiber.Ctx) error {
	reviews, err := h.Svc.ListForOwner(c.UserContext(), middleware.Principal(c))
	if err != nil {
		return h.serviceError(c, err, "listReviews")
	}
	return c.JSON(reviews)
}

// RespondToReview handles PUT /api/reviews/:id/response
// @Summary Create or replace the owner's response to a review
// @Tags Reviews
// @Accept json
// @Produce json
// @Param id path int true "Review ID"
// @Param response body ResponseBody true "Response"
// @Success 200 {object} ResultResponse
// @Failure 404 {object} ResultResponse
// @Failure 422 {object} ResultResponse
// @Security CookieAuth
// @Router /reviews/{id}/response [put]
func (h *Handler) RespondToReview(c *fiber.Ctx) error {
	var body ResponseBody
	if err := c.BodyParser(&body); err != nil {
		return h.badBody(c, "respondToReview")
	}
	res, err := h.Svc.RespondToReview(c.UserContext(), middleware.Principal(c), paramID(c, "id"), body.Body)
	if err != nil {
		return h.serviceError(c, err, "respondToReview")
	}
	return h.result(c, res, fiber.StatusOK)
}
