// auth.go
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

package middleware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/localnerve/conexo-admin/internal/config"
	"github.com/localnerve/conexo-admin/internal/identity"
	"github.com/localnerve/conexo-admin/internal/models"
	"github.com/localnerve/conexo-admin/internal/services"
	"github.com/localnerve/conexo-admin/internal/types"
)

// SessionCookie is the identity provider's session cookie
const SessionCookie = "cookie_session"

const (
	localPrincipal = "principal"
	localEmail     = "email"
)

// Authenticate validates the session cookie and stores the principal in
// context. Requests without a valid session continue unauthenticated.
func Authenticate(provider identity.Provider, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		cookie := c.Cookies(SessionCookie)
		if cookie == "" {
			return c.Next()
		}

		session, err := provider.ValidateSession(c.UserContext(), cookie)
		if err != nil {
			if !errors.Is(err, identity.ErrInvalidSession) {
				log.Warn("session validation failed", zap.Error(err))
			}
			return c.Next()
		}

		c.Locals(localPrincipal, session.PrincipalID)
		c.Locals(localEmail, session.Email)
		return c.Next()
	}
}

// Principal is the authenticated principal id, or "" for anonymous requests
func Principal(c *fiber.Ctx) string {
	principal, _ := c.Locals(localPrincipal).(string)
	return principal
}

// RequireSession rejects requests without a valid session. Deleted
// accounts pass, so they can reactivate or reset.
func RequireSession() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if Principal(c) == "" {
			return deny(c, services.Decision{RedirectTo: services.PathSignIn, Reason: services.DenyUnauthenticated})
		}
		return c.Next()
	}
}

// RequireAuth admits signed-in principals whose account is not deleted
func RequireAuth(svc *services.Service) fiber.Handler {
	return RequireRole(svc, "")
}

// RequireRole admits signed-in principals with exactly role. An empty role
// admits any role except deleted.
func RequireRole(svc *services.Service, role models.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		decision, err := svc.CheckAccess(c.UserContext(), Principal(c), role)
		if err != nil {
			return err
		}
		if !decision.Allowed {
			return deny(c, decision)
		}
		return c.Next()
	}
}

// RequireAdmin admits the configured admin principals
func RequireAdmin(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal := Principal(c)
		if principal == "" {
			return deny(c, services.Decision{RedirectTo: services.PathSignIn, Reason: services.DenyUnauthenticated})
		}
		if !cfg.IsAdmin(principal) {
			return &types.CustomError{
				Code:    fiber.StatusForbidden,
				Message: "error.forbidden",
				Type:    "authorization.admin",
			}
		}
		return c.Next()
	}
}

// deny answers a refused access decision. Browsers navigating to a page get
// a 303 to the decision's target; API clients get JSON with the same target.
func deny(c *fiber.Ctx, d services.Decision) error {
	status := fiber.StatusForbidden
	if d.Reason == services.DenyUnauthenticated {
		status = fiber.StatusUnauthorized
	}

	if wantsHTML(c) {
		return c.Redirect(d.RedirectTo, fiber.StatusSeeOther)
	}
	return c.Status(status).JSON(fiber.Map{
		"ok":         false,
		"redirectTo": d.RedirectTo,
		"reason":     d.Reason,
	})
}

func wantsHTML(c *fiber.Ctx) bool {
	accept := c.Get(fiber.HeaderAccept)
	return strings.Contains(accept, fiber.MIMETextHTML) && !strings.Contains(accept, fiber.MIMEApplicationJSON)
}
