// routes.go
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
	"github.com/gofiber/fiber/v2"

	"github.com/localnerve/conexo-admin/internal/middleware"
	"github.com/localnerve/conexo-admin/internal/models"
)

// Routes mounts the API on api, which is expected to be the /api group
// with Locale and Authenticate already applied
func (h *Handler) Routes(api fiber.Router) {
	auth := middleware.RequireAuth(h.Svc)
	business := middleware.RequireRole(h.Svc, models.RoleBusiness)
	session := middleware.RequireSession()

	api.Get("/health", h.Health)
	api.Get("/access", session, h.Access)
	api.Get("/me", auth, h.Me)
	api.Get("/categories", h.ListCategories)

	account := api.Group("/account")
	account.Post("/business", auth, h.ActivateBusiness)
	account.Post("/delete", auth, h.RequestDeletion)
	account.Post("/reactivate", session, h.Reactivate)
	account.Post("/reset", session, h.HardReset)

	api.Get("/businesses", business, h.ListBusinesses)
	api.Post("/businesses", business, h.CreateBusiness)
	api.Get("/businesses/:id", business, h.GetBusiness)
	api.Put("/businesses/:id", business, h.UpdateBusiness)

	api.Get("/events", business, h.ListEvents)
	api.Post("/events", business, h.CreateEvent)
	api.Get("/events/:id", business, h.GetEvent)
	api.Put("/events/:id", business, h.UpdateEvent)

	api.Get("/jobs", business, h.ListJobs)
	api.Post("/jobs", business, h.CreateJob)
	api.Get("/jobs/:id", business, h.GetJob)
	api.Put("/jobs/:id", business, h.UpdateJob)

	api.Post("/upload", auth, h.Upload)
	api.Delete("/upload", auth, h.DeleteUpload)

	api.Get("/reviews", business, h.ListReviews)
	api.Put("/reviews/:id/response", business, h.RespondToReview)

	api.Post("/support/tickets", auth, h.CreateTicket)

	admin := api.Group("/admin", middleware.RequireAdmin(h.Cfg))
	admin.Get("/moderation", h.ListPending)
	admin.Post("/moderation/:kind/:id/approve", h.Approve)
	admin.Post("/moderation/:kind/:id/reject", h.Reject)

	api.Post("/internal/accounts/sweep", middleware.ServiceToken(h.Cfg.SweepTokenSecret), h.SweepExpired)
}
