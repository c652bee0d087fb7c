package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/localnerve/conexo-admin/internal/config"
	"github.com/localnerve/conexo-admin/internal/i18n"
	"github.com/localnerve/conexo-admin/internal/middleware"
	"github.com/localnerve/conexo-admin/internal/types"
)

// ErrorHandler is the global Fiber error handler. CustomError messages are
// message keys and are localized; unexpected errors become error.generic,
// with the underlying error in detail outside production.
func ErrorHandler(cfg *config.Config, msgs *i18n.Bundle, log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		message := ""
		errorType := "unknown"
		detail := ""

		var custom *types.CustomError
		var fiberErr *fiber.Error
		switch {
		case errors.As(err, &custom):
			code = custom.Code
			message = custom.Message
			errorType = custom.Type
		case errors.As(err, &fiberErr):
			code = fiberErr.Code
			message = fiberErr.Message
		default:
			log.Error("unhandled request error",
				zap.String("url", c.OriginalURL()),
				zap.String("principal", middleware.Principal(c)),
				zap.Error(err))
			message = "error.generic"
			if !cfg.IsProduction() {
				detail = err.Error()
			}
		}

		if msgs.Has(message) {
			message = msgs.T(middleware.Lang(c), message)
		}

		body := fiber.Map{
			"status":    code,
			"message":   message,
			"ok":        false,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"url":       c.OriginalURL(),
			"type":      errorType,
		}
		if detail != "" {
			body["detail"] = detail
		}
		return c.Status(code).JSON(body)
	}
}

// NotFound answers unmatched routes
func NotFound(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
		"status":    fiber.StatusNotFound,
		"message":   "[404] Resource Not Found",
		"ok":        false,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"url":       c.OriginalURL(),
	})
}
