package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/localnerve/conexo-admin/internal/middleware"
	"github.com/localnerve/conexo-admin/internal/services"
)

// ListBusinesses handles GET /api/businesses
// @Summary List the owner's businesses
// @Tags Listings
// @Produce json
// @Success 200 {array} services.BusinessView
// @Failure 401 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /businesses [get]
func (h *Handler) ListBusinesses(c *fiber.Ctx) error {
	views, err := h.Svc.ListBusinesses(c.UserContext(), middleware.Principal(c))
	if err != nil {
		return h.serviceError(c, err, "listBusinesses")
	}
	return c.JSON(views)
}

// CreateBusiness handles POST /api/businesses
// @Summary Create a business
// @Tags Listings
// @Accept json
// @Produce json
// @Param business body services.BusinessInput true "Business"
// @Success 201 {object} ResultResponse
// @Failure 422 {object} ResultResponse
// @Security CookieAuth
// @Router /businesses [post]
func (h *Handler) CreateBusiness(c *fiber.Ctx) error {
	var in services.BusinessInput
	if err := c.BodyParser(&in); err != nil {
		return h.badBody(c, "createBusiness")
	}
	res, err := h.Svc.CreateBusiness(c.UserContext(), middleware.Principal(c), in)
	if err != nil {
		return h.serviceError(c, err, "createBusiness")
	}
	return h.result(c, res, fiber.StatusCreated)
}

// GetBusiness handles GET /api/businesses/:id
// @Summary Get one of the owner's businesses
// @Tags Listings
// @Produce json
// @Param id path int true "Business ID"
// @Success 200 {object} services.BusinessView
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /businesses/{id} [get]
func (h *Handler) GetBusiness(c *fiber.Ctx) error {
	view, err := h.Svc.GetBusiness(c.UserContext(), middleware.Principal(c), paramID(c, "id"))
	if err != nil {
		return h.serviceError(c, err, "getBusiness")
	}
	if view == nil {
		return h.notFound(c)
	}
	return c.JSON(view)
}

// UpdateBusiness handles PUT /api/businesses/:id
// @Summary Update a business
// @Tags Listings
// @Accept json
// @Produce json
// @Param id path int true "Business ID"
// @Param business body services.BusinessInput true "Business"
// @Success 200 {object} ResultResponse
// @Failure 404 {object} ResultResponse
// @Failure 422 {object} ResultResponse
// @Security CookieAuth
// @Router /businesses/{id} [put]
func (h *Handler) UpdateBusiness(c *fiber.Ctx) error {
	var in services.BusinessInput
	if err := c.BodyParser(&in); err != nil {
		return h.badBody(c, "updateBusiness")
	}
	res, err := h.Svc.UpdateBusiness(c.UserContext(), middleware.Principal(c), paramID(c, "id"), in)
	if err != nil {
		return h.serviceError(c, err, "updateBusiness")
	}
	return h.result(c, res, fiber.StatusOK)
}

// ListEvents handles GET /api/events
// @Summary List the owner's events
// @Tags Listings
// @Produce json
// @Success 200 {array} services.EventView
// @Security CookieAuth
// @Router /events [get]
func (h *Handler) ListEvents(c *fiber.Ctx) error {
	views, err := h.Svc.ListEvents(c.UserContext(), middleware.Principal(c))
	if err != nil {
		return h.serviceError(c, err, "listEvents")
	}
	return c.JSON(views)
}

// CreateEvent handles POST /api/events
// @Summary Create an event
// @Description Publishing submits the event for moderation
// @Tags Listings
// @Accept json
// @Produce json
// @Param event body services.EventInput true "Event"
// @Success 201 {object} ResultResponse
// @Failure 422 {object} ResultResponse
// @Security CookieAuth
// @Router /events [post]
func (h *Handler) CreateEvent(c *fiber.Ctx) error {
	var in services.EventInput
	if err := c.BodyParser(&in); err != nil {
		return h.badBody(c, "createEvent")
	}
	res, err := h.Svc.CreateEvent(c.UserContext(), middleware.Principal(c), in)
	if err != nil {
		return h.serviceError(c, err, "createEvent")
	}
	return h.result(c, res, fiber.StatusCreated)
}

// GetEvent handles GET /api/events/:id
// @Summary Get one of the owner's events
// @Tags Listings
// @Produce json
// @Param id path int true "Event ID"
// @Success 200 {object} services.EventView
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /events/{id} [get]
func (h *Handler) GetEvent(c *fiber.Ctx) error {
	view, err := h.Svc.GetEvent(c.UserContext(), middleware.Principal(c), paramID(c, "id"))
	if err != nil {
		return h.serviceError(c, err, "getEvent")
	}
	if view == nil {
		return h.notFound(c)
	}
	return c.JSON(view)
}

// UpdateEvent handles PUT /api/events/:id
// @Summary Update an event
// @Tags Listings
// @Accept json
// @Produce json
// @Param id path int true "Event ID"
// @Param event body services.EventInput true "Event"
// @Success 200 {object} ResultResponse
// @Failure 422 {object} ResultResponse
// @Security CookieAuth
// @Router /events/{id} [put]
func (h *Handler) UpdateEvent(c *fiber.Ctx) error {
	var in services.EventInput
	if err := c.BodyParser(&in); err != nil {
		return h.badBody(c, "updateEvent")
	}
	res, err := h.Svc.UpdateEvent(c.UserContext(), middleware.Principal(c), paramID(c, "id"), in)
	if err != nil {
		return h.serviceError(c, err, "updateEvent")
	}
	return h.result(c, res, fiber.StatusOK)
}

// ListJobs handles GET /api/jobs
// @Summary List the owner's job postings
// @Tags Listings
// @Produce json
// @Success 200 {array} services.JobView
// @Security CookieAuth
// @Router /jobs [get]
func (h *Handler) ListJobs(c *fiber.Ctx) error {
	views, err := h.Svc.ListJobs(c.UserContext(), middleware.Principal(c))
	if err != nil {
		return h.serviceError(c, err, "listJobs")
	}
	return c.JSON(views)
}

// CreateJob handles POST /api/jobs
// @Summary Create a job posting
// @Tags Listings
// @Accept json
// @Produce json
// @Param job body services.JobInput true "Job"
// @Success 201 {object} ResultResponse
// @Failure 422 {object} ResultResponse
// @Security CookieAuth
// @Router /jobs [post]
func (h *Handler) CreateJob(c *fiber.Ctx) error {
	var in services.JobInput
	if err := c.BodyParser(&in); err != nil {
		return h.badBody(c, "createJob")
	}
	res, err := h.Svc.CreateJob(c.UserContext(), middleware.Principal(c), in)
	if err != nil {
		return h.serviceError(c, err, "createJob")
	}
	return h.result(c, res, fiber.StatusCreated)
}

// GetJob handles GET /api/jobs/:id
// @Summary Get one of the owner's job postings
// @Tags Listings
// @Produce json
// @Param id path int true "Job ID"
// @Success 200 {object} services.JobView
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /jobs/{id} [get]
func (h *Handler) GetJob(c *fiber.Ctx) error {
	view, err := h.Svc.GetJob(c.UserContext(), middleware.Principal(c), paramID(c, "id"))
	if err != nil {
		return h.serviceError(c, err, "getJob")
	}
	if view == nil {
		return h.notFound(c)
	}
	return c.JSON(view)
}

// UpdateJob handles PUT /api/jobs/:id
// @Summary Update a job posting
// @Tags Listings
// @Accept json
// @Produce json
// @Param id path int true "Job ID"
// @Param job body services.JobInput true "Job"
// @Success 200 {object} ResultResponse
// @Failure 422 {object} ResultResponse
// @Security CookieAuth
// @Router /jobs/{id} [put]
func (h *Handler) UpdateJob(c *fiber.Ctx) error {
	var in services.JobInput
	if err := c.BodyParser(&in); err != nil {
		return h.badBody(c, "updateJob")
	}
	res, err := h.Svc.UpdateJob(c.UserContext(), middleware.Principal(c), paramID(c, "id"), in)
	if err != nil {
		return h.serviceError(c, err, "updateJob")
	}
	return h.result(c, res, fiber.StatusOK)
}

// ListCategories handles GET /api/categories
// @Summary List business categories
// @Tags Listings
// @Produce json
// @Success 200 {array} models.Category
// @Router /categories [get]
func (h *Handler) ListCategories(c *fiber.Ctx) error {
	rows, err := h.Svc.ListCategories(c.UserContext())
	if err != nil {
		return h.serviceError(c, err, "listCategories")
	}
	return c.JSON(rows)
}
