package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/localnerve/conexo-admin/internal/services"
)

// Health handles GET /api/health
// @Summary Health check
// @Tags Health
// @Produce json
// @Success 200 {object} services.HealthCheckResult
// @Failure 503 {object} services.HealthCheckResult
// @Router /health [get]
func (h *Handler) Health(c *fiber.Ctx) error {
	result := services.HealthCheck(h.Cfg, h.Svc.DB, h.Log)
	status := fiber.StatusOK
	if result.Status != "healthy" {
		status = fiber.StatusServiceUnavailable
	}
	return c.Status(status).JSON(result)
}
