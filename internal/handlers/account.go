package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/localnerve/conexo-admin/internal/middleware"
	"github.com/localnerve/conexo-admin/internal/models"
	"github.com/localnerve/conexo-admin/internal/services"
	"github.com/localnerve/conexo-admin/internal/storage"
)

// MeResponse is the signed-in user's profile
type MeResponse struct {
	PrincipalID         string      `json:"principalId"`
	Email               string      `json:"email"`
	FirstName           string      `json:"firstName"`
	LastName            string      `json:"lastName"`
	Role                models.Role `json:"role"`
	AvatarURL           string      `json:"avatarUrl,omitempty"`
	OnboardingCompleted bool        `json:"onboardingCompleted"`
	RedirectTo          string      `json:"redirectTo"`
}

// RoleResponse reports a role change
type RoleResponse struct {
	Success    bool        `json:"success"`
	Role       models.Role `json:"role"`
	RedirectTo string      `json:"redirectTo"`
}

// ResetResponse is the outcome of a hard reset
type ResetResponse struct {
	Success          bool     `json:"success"`
	DeletedR2Objects int      `json:"deletedR2Objects"`
	Error            string   `json:"error,omitempty"`
	FailedKeys       []string `json:"failedKeys,omitempty"`
	RemainingUsers   int64    `json:"remainingUsers,omitempty"`
}

// Access handles GET /api/access
// @Summary Access decision
// @Description Evaluate the access guard for the signed-in principal and an optional role
// @Tags Account
// @Produce json
// @Param role query string false "Required role (user or business)"
// @Success 200 {object} services.Decision
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 401 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /access [get]
func (h *Handler) Access(c *fiber.Ctx) error {
	role := models.Role(c.Query("role"))
	if role != "" && (!role.Valid() || role == models.RoleDeleted) {
		return h.badBody(c, "access")
	}

	decision, err := h.Svc.CheckAccess(c.UserContext(), middleware.Principal(c), role)
	if err != nil {
		return h.serviceError(c, err, "access")
	}
	return c.JSON(decision)
}

// Me handles GET /api/me
// @Summary Current user
// @Description Resolve the signed-in principal to its account, creating it on first sight
// @Tags Account
// @Produce json
// @Success 200 {object} MeResponse
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /me [get]
func (h *Handler) Me(c *fiber.Ctx) error {
	user, err := h.Svc.ResolveOrCreateUser(c.UserContext(), middleware.Principal(c))
	if err != nil {
		return h.serviceError(c, err, "me")
	}
	return c.JSON(MeResponse{
		PrincipalID:         user.PrincipalID,
		Email:               user.Email,
		FirstName:           user.FirstName,
		LastName:            user.LastName,
		Role:                user.Role,
		AvatarURL:           storage.PublicURL(h.Cfg.StoragePublicBaseURL, user.AvatarKey),
		OnboardingCompleted: user.OnboardingCompleted,
		RedirectTo:          services.HomeFor(user.Role),
	})
}

// ActivateBusiness handles POST /api/account/business
// @Summary Activate the business role
// @Tags Account
// @Produce json
// @Success 200 {object} RoleResponse
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 422 {object} ResultResponse
// @Security CookieAuth
// @Router /account/business [post]
func (h *Handler) ActivateBusiness(c *fiber.Ctx) error {
	res, err := h.Svc.ActivateBusiness(c.UserContext(), middleware.Principal(c))
	if err != nil {
		return h.serviceError(c, err, "activateBusiness")
	}
	if !res.Success {
		return h.result(c, res, fiber.StatusOK)
	}
	return c.JSON(RoleResponse{
		Success:    true,
		Role:       models.RoleBusiness,
		RedirectTo: services.HomeFor(models.RoleBusiness),
	})
}

// RequestDeletion handles POST /api/account/delete
// @Summary Request account deletion
// @Description Soft-delete the account and take its listings offline
// @Tags Account
// @Produce json
// @Success 200 {object} RoleResponse
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /account/delete [post]
func (h *Handler) RequestDeletion(c *fiber.Ctx) error {
	principal := middleware.Principal(c)
	if err := h.Svc.RequestDeletion(c.UserContext(), principal); err != nil {
		return h.serviceError(c, err, "requestDeletion")
	}

	email := ""
	if user, err := h.Svc.FindUser(c.UserContext(), principal); err == nil && user != nil {
		email = user.Email
	}
	return c.JSON(RoleResponse{
		Success:    true,
		Role:       models.RoleDeleted,
		RedirectTo: services.DecisionPath(principal, email),
	})
}

// Reactivate handles POST /api/account/reactivate
// @Summary Reactivate a soft-deleted account
// @Tags Account
// @Produce json
// @Success 200 {object} RoleResponse
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /account/reactivate [post]
func (h *Handler) Reactivate(c *fiber.Ctx) error {
	got, err := h.Svc.Reactivate(c.UserContext(), middleware.Principal(c))
	if err != nil {
		return h.serviceError(c, err, "reactivate")
	}
	return c.JSON(RoleResponse{Success: true, Role: got.Role, RedirectTo: got.RedirectTo})
}

// HardReset handles POST /api/account/reset
// @Summary Irreversibly delete a soft-deleted account
// @Description Removes stored media, the identity provider account and every local row
// @Tags Account
// @Produce json
// @Success 200 {object} ResetResponse
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} ResetResponse
// @Failure 502 {object} ResetResponse
// @Security CookieAuth
// @Router /account/reset [post]
func (h *Handler) HardReset(c *fiber.Ctx) error {
	report, err := h.Svc.HardReset(c.UserContext(), middleware.Principal(c))
	if err == nil {
		return c.JSON(ResetResponse{Success: true, DeletedR2Objects: report.DeletedR2Objects})
	}
	if report.Error == "" {
		return h.serviceError(c, err, "hardReset")
	}

	status, _ := classify(err)
	h.Log.Sugar().Errorw("hard reset failed",
		"principal", middleware.Principal(c),
		"failedKeys", report.FailedKeys,
		"remainingUsers", report.RemainingUsers,
		"error", err)
	return c.Status(status).JSON(ResetResponse{
		DeletedR2Objects: report.DeletedR2Objects,
		Error:            h.t(c, report.Error),
		FailedKeys:       report.FailedKeys,
		RemainingUsers:   report.RemainingUsers,
	})
}

// SweepExpired handles POST /api/internal/accounts/sweep
// @Summary Hard-reset accounts past their deletion grace period
// @Tags Internal
// @Produce json
// @Param Authorization header string true "Bearer service token"
// @Success 200 {array} services.SweepOutcome
// @Failure 401 {object} utils.ErrorResponseStruct
// @Router /internal/accounts/sweep [post]
func (h *Handler) SweepExpired(c *fiber.Ctx) error {
	outcomes, err := h.Svc.SweepExpired(c.UserContext(), h.Svc.Now())
	if err != nil {
		return h.serviceError(c, err, "sweep")
	}
	return c.JSON(outcomes)
}
