// common.go
//
// Conexo admin API: accounts, listings and moderation for the community directory
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of conexo-admin.
// conexo-admin is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// conexo-admin is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with conexo-admin.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/localnerve/conexo-admin/internal/config"
	"github.com/localnerve/conexo-admin/internal/i18n"
	"github.com/localnerve/conexo-admin/internal/middleware"
	"github.com/localnerve/conexo-admin/internal/services"
	"github.com/localnerve/conexo-admin/internal/storage"
	"github.com/localnerve/conexo-admin/internal/utils"
)

// Handler serves the admin API on top of the service layer
type Handler struct {
	Svc  *services.Service
	Cfg  *config.Config
	Msgs *i18n.Bundle
	Log  *zap.Logger
}

// ResultResponse is the body of a workflow response
type ResultResponse struct {
	Success bool              `json:"success"`
	ID      uint64            `json:"id,omitempty"`
	Error   string            `json:"error,omitempty"`
	Code    string            `json:"code,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func (h *Handler) t(c *fiber.Ctx, key string, args ...any) string {
	return h.Msgs.T(middleware.Lang(c), key, args...)
}

// result localizes a workflow result. Failures answer 422 unless the
// listing was not found.
func (h *Handler) result(c *fiber.Ctx, res services.Result, successStatus int) error {
	if res.Success {
		return c.Status(successStatus).JSON(ResultResponse{Success: true, ID: res.ID})
	}

	body := ResultResponse{Code: res.Error, Error: h.t(c, res.Error, res.Args...)}
	if len(res.Fields) > 0 {
		body.Fields = make(map[string]string, len(res.Fields))
		for field, key := range res.Fields {
			body.Fields[field] = h.t(c, key)
		}
	}

	status := fiber.StatusUnprocessableEntity
	if res.Error == services.MsgListingNotFound || res.Error == services.MsgReviewNotFound {
		status = fiber.StatusNotFound
	}
	return c.Status(status).JSON(body)
}

// serviceError answers an error returned by the service layer
func (h *Handler) serviceError(c *fiber.Ctx, err error, operation string) error {
	status, key := classify(err)
	if status == fiber.StatusInternalServerError || status == fiber.StatusBadGateway {
		h.Log.Error("request failed",
			zap.String("operation", operation),
			zap.String("principal", middleware.Principal(c)),
			zap.Error(err))
	}

	message := h.t(c, key)
	if status == fiber.StatusInternalServerError && !h.Cfg.IsProduction() {
		message = message + " (" + err.Error() + ")"
	}
	return utils.ErrorResponse(c, message, status, operation)
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, services.ErrUnauthenticated):
		return fiber.StatusUnauthorized, "error.unauthenticated"
	case errors.Is(err, services.ErrPrincipalPurged):
		return fiber.StatusForbidden, "error.forbidden"
	case errors.Is(err, services.ErrAccountDeleted):
		return fiber.StatusForbidden, "account.deleted"
	case errors.Is(err, services.ErrNotDeleted):
		return fiber.StatusForbidden, "account.not_deleted"
	case errors.Is(err, services.ErrUserNotFound):
		return fiber.StatusNotFound, "account.not_found"
	case errors.Is(err, services.ErrUnknownKind):
		return fiber.StatusNotFound, "moderation.invalid_kind"
	case errors.Is(err, services.ErrModerationTarget):
		return fiber.StatusNotFound, "moderation.not_found"
	case errors.Is(err, services.ErrStorageCleanup):
		return fiber.StatusBadGateway, "account.storage_failed"
	case errors.Is(err, services.ErrProviderDelete):
		return fiber.StatusBadGateway, "account.provider_failed"
	case errors.Is(err, services.ErrResidualUsers):
		return fiber.StatusInternalServerError, "account.verify_failed"
	}
	return fiber.StatusInternalServerError, "error.generic"
}

// paramID parses a numeric path parameter; zero means absent or invalid
func paramID(c *fiber.Ctx, name string) uint64 {
	id, err := strconv.ParseUint(c.Params(name), 10, 64)
	if err != nil {
		return 0
	}
	return id
}

func (h *Handler) badBody(c *fiber.Ctx, operation string) error {
	return utils.ErrorResponse(c, h.t(c, "error.invalid_body"), fiber.StatusBadRequest, operation)
}

func (h *Handler) notFound(c *fiber.Ctx) error {
	return utils.NotFoundResponse(c, h.t(c, "error.not_found"))
}

func (h *Handler) publicURL(key string) string {
	return storage.PublicURL(h.Cfg.StoragePublicBaseURL, key)
}
