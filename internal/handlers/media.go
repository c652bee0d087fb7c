package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/localnerve/conexo-admin/internal/middleware"
	"github.com/localnerve/conexo-admin/internal/services"
	"github.com/localnerve/conexo-admin/internal/types"
)

// MediaResponse is the outcome of an upload or delete
type MediaResponse struct {
	Ok    bool   `json:"ok"`
	Key   string `json:"key,omitempty"`
	URL   string `json:"url,omitempty"`
	Error string `json:"error,omitempty"`
	Code  string `json:"code,omitempty"`
}

// DetachBody is the body of DELETE /api/upload
type DetachBody struct {
	Entity   string           `json:"entity"`
	EntityID types.FlexUint64 `json:"entityId"`
	Type     string           `json:"type"`
	Key      string           `json:"key"`
	// MediaType is the older name of Type
	MediaType string `json:"mediaType,omitempty"`
}

// slot is the media slot named by type, falling back to mediaType
func slot(value, legacy string) string {
	if value != "" {
		return value
	}
	return legacy
}

// Upload handles POST /api/upload
// @Summary Upload a media file
// @Description Stores an image in a media slot of an entity owned by the caller and links it
// @Tags Media
// @Accept multipart/form-data
// @Produce json
// @Param entity formData string true "users, business, events or jobs"
// @Param entityId formData int false "Entity ID (not used for users)"
// @Param type formData string true "avatar, logo, cover or gallery"
// @Param file formData file true "Image"
// @Success 200 {object} MediaResponse
// @Failure 400 {object} MediaResponse
// @Failure 403 {object} MediaResponse
// @Failure 500 {object} MediaResponse
// @Security CookieAuth
// @Router /upload [post]
func (h *Handler) Upload(c *fiber.Ctx) error {
	var id types.FlexUint64
	if raw := c.FormValue("entityId"); raw != "" {
		if err := id.UnmarshalJSON([]byte(`"` + raw + `"`)); err != nil {
			return h.mediaError(c, &services.MediaError{Class: services.MediaInvalid, Message: "media.missing_entity_id"})
		}
	}

	req := services.AttachRequest{
		Entity:    c.FormValue("entity"),
		EntityID:  id.Uint64(),
		MediaType: slot(c.FormValue("type"), c.FormValue("mediaType")),
	}
	if fh, err := c.FormFile("file"); err == nil {
		file, err := fh.Open()
		if err != nil {
			return h.serviceError(c, err, "upload")
		}
		defer file.Close()
		req.Filename = fh.Filename
		req.ContentType = fh.Header.Get(fiber.HeaderContentType)
		req.Size = fh.Size
		req.Body = file
	}

	key, err := h.Svc.AttachMedia(c.UserContext(), middleware.Principal(c), req)
	if err != nil {
		return h.mediaError(c, err)
	}
	return c.JSON(MediaResponse{Ok: true, Key: key, URL: h.publicURL(key)})
}

// DeleteUpload handles DELETE /api/upload
// @Summary Delete a media file
// @Tags Media
// @Accept json
// @Produce json
// @Param media body DetachBody true "Media reference"
// @Success 200 {object} MediaResponse
// @Failure 400 {object} MediaResponse
// @Failure 403 {object} MediaResponse
// @Security CookieAuth
// @Router /upload [delete]
func (h *Handler) DeleteUpload(c *fiber.Ctx) error {
	var body DetachBody
	if err := c.BodyParser(&body); err != nil {
		return h.badBody(c, "deleteUpload")
	}

	err := h.Svc.DetachMedia(c.UserContext(), middleware.Principal(c), services.DetachRequest{
		Entity:    body.Entity,
		EntityID:  body.EntityID.Uint64(),
		MediaType: slot(body.Type, body.MediaType),
		Key:       body.Key,
	})
	if err != nil {
		return h.mediaError(c, err)
	}
	return c.JSON(MediaResponse{Ok: true})
}

func (h *Handler) mediaError(c *fiber.Ctx, err error) error {
	var merr *services.MediaError
	if !errors.As(err, &merr) {
		return h.serviceError(c, err, "media")
	}

	status := fiber.StatusInternalServerError
	switch merr.Class {
	case services.MediaInvalid:
		status = fiber.StatusBadRequest
	case services.MediaForbidden:
		status = fiber.StatusForbidden
	}
	return c.Status(status).JSON(MediaResponse{
		Key:   merr.Key,
		Error: h.t(c, merr.Message),
		Code:  merr.Message,
	})
}
