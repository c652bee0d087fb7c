package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"path"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/localnerve/conexo-admin/internal/models"
	"github.com/localnerve/conexo-admin/internal/storage"
)

// MaxUploadBytes is the largest accepted media file
const MaxUploadBytes = 5 << 20

// Media entities and slots
const (
	EntityUsers    = "users"
	EntityBusiness = "business"
	EntityEvents   = "events"
	EntityJobs     = "jobs"

	MediaAvatar  = "avatar"
	MediaLogo    = "logo"
	MediaCover   = "cover"
	MediaGallery = "gallery"
)

var mediaSlots = map[string][]string{
	EntityUsers:    {MediaAvatar},
	EntityBusiness: {MediaLogo, MediaCover, MediaGallery},
	EntityEvents:   {MediaCover, MediaGallery},
	EntityJobs:     {MediaLogo, MediaCover},
}

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"image/gif":  true,
}

// MediaErrorClass groups media failures by how a caller should react
type MediaErrorClass string

const (
	MediaInvalid   MediaErrorClass = "invalid"
	MediaForbidden MediaErrorClass = "forbidden"
	MediaStorage   MediaErrorClass = "storage"
	MediaNotLinked MediaErrorClass = "not_linked"
)

// MediaError is a classified media failure. Message is a message key and
// Key is set when an object was stored but could not be linked.
type MediaError struct {
	Class   MediaErrorClass
	Message string
	Key     string
	Err     error
}

func (e *MediaError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("media %s: %s: %v", e.Class, e.Message, e.Err)
	}
	return fmt.Sprintf("media %s: %s", e.Class, e.Message)
}

func (e *MediaError) Unwrap() error {
	return e.Err
}

func mediaErr(class MediaErrorClass, message string, err error) *MediaError {
	return &MediaError{Class: class, Message: message, Err: err}
}

// AttachRequest is one upload
type AttachRequest struct {
	Entity      string
	EntityID    uint64
	MediaType   string
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// DetachRequest removes one stored object
type DetachRequest struct {
	Entity    string
	EntityID  uint64
	MediaType string
	Key       string
}

// StorageKey is the object key for a media slot. Singleton slots have a
// fixed key so a new upload overwrites the previous one; gallery keys are
// unique per upload.
func StorageKey(entity, owner, mediaType, filename string, unixMilli int64) string {
	if mediaType == MediaGallery {
		return fmt.Sprintf("%s/%s/gallery/%d-%s", entity, owner, unixMilli, sanitizeFilename(filename))
	}
	return fmt.Sprintf("%s/%s/%s", entity, owner, mediaType)
}

func galleryPrefix(entity, owner string) string {
	return fmt.Sprintf("%s/%s/gallery/", entity, owner)
}

// sanitizeFilename keeps ASCII letters, digits, dots, dashes and underscores
func sanitizeFilename(name string) string {
	name = strings.ToLower(path.Base(strings.ReplaceAll(name, "\\", "/")))
	var b strings.Builder
	dash := false
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '.', r == '_':
			b.WriteRune(r)
			dash = false
		default:
			if !dash && b.Len() > 0 {
				b.WriteByte('-')
				dash = true
			}
		}
	}
	clean := strings.Trim(b.String(), "-.")
	for strings.Contains(clean, "..") {
		clean = strings.ReplaceAll(clean, "..", ".")
	}
	if len(clean) > 80 {
		clean = clean[len(clean)-80:]
	}
	if clean == "" {
		return "image"
	}
	return clean
}

func validSlot(entity, mediaType string) *MediaError {
	slots, ok := mediaSlots[entity]
	if !ok {
		return mediaErr(MediaInvalid, "media.invalid_entity", nil)
	}
	for _, slot := range slots {
		if slot == mediaType {
			return nil
		}
	}
	return mediaErr(MediaInvalid, "media.invalid_type", nil)
}

// mediaOwner checks that principal owns the target entity and returns the
// path segment identifying it in storage keys
func (s *Service) mediaOwner(ctx context.Context, principal, entity string, id uint64) (string, *MediaError) {
	if entity == EntityUsers {
		return principal, nil
	}
	if id == 0 {
		return "", mediaErr(MediaInvalid, "media.missing_entity_id", nil)
	}

	var model interface{}
	switch entity {
	case EntityBusiness:
		model = &models.Business{}
	case EntityEvents:
		model = &models.Event{}
	case EntityJobs:
		model = &models.Job{}
	}

	var count int64
	if err := s.DB.WithContext(ctx).Model(model).
		Where("id = ? AND owner_id = ?", id, principal).Count(&count).Error; err != nil {
		return "", mediaErr(MediaStorage, "media.storage_failed", err)
	}
	if count == 0 {
		return "", mediaErr(MediaForbidden, "media.forbidden", nil)
	}
	return fmt.Sprintf("%d", id), nil
}

// AttachMedia uploads a file into a media slot of an entity owned by
// principal and links its key. A stored object that could not be linked is
// reported with class MediaNotLinked and its key, so linking can be retried.
func (s *Service) AttachMedia(ctx context.Context, principal string, req AttachRequest) (string, error) {
	if principal == "" {
		return "", ErrUnauthenticated
	}
	if merr := validSlot(req.Entity, req.MediaType); merr != nil {
		return "", merr
	}
	if req.Body == nil || req.Size <= 0 {
		return "", mediaErr(MediaInvalid, "media.missing_file", nil)
	}
	if req.Size > MaxUploadBytes {
		return "", mediaErr(MediaInvalid, "media.too_large", nil)
	}
	contentType, _, err := mime.ParseMediaType(req.ContentType)
	if err != nil || !allowedImageTypes[contentType] {
		return "", mediaErr(MediaInvalid, "media.invalid_content_type", err)
	}

	owner, merr := s.mediaOwner(ctx, principal, req.Entity, req.EntityID)
	if merr != nil {
		return "", merr
	}

	key := StorageKey(req.Entity, owner, req.MediaType, req.Filename, s.now().UnixMilli())
	body := io.LimitReader(req.Body, MaxUploadBytes)
	if err := s.Store.Put(ctx, key, contentType, body); err != nil {
		s.Log.Error("media upload failed",
			zap.String("principal", principal),
			zap.String("key", key),
			zap.String("operation", "attach"),
			zap.Error(err))
		if errors.Is(err, storage.ErrNotConfigured) {
			return "", mediaErr(MediaStorage, "media.storage_not_configured", err)
		}
		return "", mediaErr(MediaStorage, "media.storage_failed", err)
	}

	if err := s.linkMedia(ctx, principal, req, key, contentType); err != nil {
		s.Log.Error("media link failed",
			zap.String("principal", principal),
			zap.String("key", key),
			zap.String("operation", "attach"),
			zap.Error(err))
		return key, &MediaError{Class: MediaNotLinked, Message: "media.stored_not_linked", Key: key, Err: err}
	}
	return key, nil
}

func (s *Service) linkMedia(ctx context.Context, principal string, req AttachRequest, key, contentType string) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		object := models.StorageObject{
			PrincipalID: principal,
			Key:         key,
			ContentType: contentType,
			Size:        req.Size,
			CreatedAt:   s.now(),
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "object_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"principal_id", "content_type", "size"}),
		}).Create(&object).Error; err != nil {
			return err
		}

		switch req.Entity {
		case EntityUsers:
			return tx.Model(&models.User{}).Where("principal_id = ?", principal).
				Update("avatar_key", key).Error
		case EntityBusiness:
			return linkBusinessMedia(tx, principal, req.EntityID, req.MediaType, key)
		}
		return nil
	})
}

func linkBusinessMedia(tx *gorm.DB, principal string, id uint64, mediaType, key string) error {
	scope := tx.Model(&models.Business{}).Where("id = ? AND owner_id = ?", id, principal)
	switch mediaType {
	case MediaLogo:
		return scope.Update("logo_url", key).Error
	case MediaCover:
		return scope.Update("cover_image_url", key).Error
	}

	var b models.Business
	if err := tx.Select("id", "gallery_images").Where("id = ? AND owner_id = ?", id, principal).
		Limit(1).Find(&b).Error; err != nil {
		return err
	}
	if b.ID == 0 {
		return gorm.ErrRecordNotFound
	}
	gallery := b.GalleryImages.Slice()
	for _, existing := range gallery {
		if existing == key {
			return nil
		}
	}
	return scope.Update("gallery_images", models.JSONList[string](append(gallery, key))).Error
}

// DetachMedia deletes a stored object from a media slot and unlinks it.
// A singleton column is cleared only while it still holds the key.
func (s *Service) DetachMedia(ctx context.Context, principal string, req DetachRequest) error {
	if principal == "" {
		return ErrUnauthenticated
	}
	if merr := validSlot(req.Entity, req.MediaType); merr != nil {
		return merr
	}

	owner, merr := s.mediaOwner(ctx, principal, req.Entity, req.EntityID)
	if merr != nil {
		return merr
	}

	key, err := storage.NormalizeStorageKey(req.Key, s.keyPolicy())
	if err != nil {
		return mediaErr(MediaInvalid, "media.invalid_key", err)
	}
	if req.MediaType == MediaGallery {
		rest, found := strings.CutPrefix(key, galleryPrefix(req.Entity, owner))
		if !found || rest == "" || strings.Contains(rest, "/") {
			return mediaErr(MediaInvalid, "media.invalid_key", nil)
		}
	} else if key != StorageKey(req.Entity, owner, req.MediaType, "", 0) {
		return mediaErr(MediaInvalid, "media.invalid_key", nil)
	}

	if err := s.Store.Delete(ctx, key); err != nil && !errors.Is(err, storage.ErrNotFound) {
		s.Log.Error("media delete failed",
			zap.String("principal", principal),
			zap.String("key", key),
			zap.String("operation", "detach"),
			zap.Error(err))
		if errors.Is(err, storage.ErrNotConfigured) {
			return mediaErr(MediaStorage, "media.storage_not_configured", err)
		}
		return mediaErr(MediaStorage, "media.storage_failed", err)
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := unlinkMedia(tx, principal, req, key); err != nil {
			return err
		}
		return tx.Where("object_key = ?", key).Delete(&models.StorageObject{}).Error
	})
	if err != nil {
		s.Log.Error("media unlink failed",
			zap.String("principal", principal),
			zap.String("key", key),
			zap.String("operation", "detach"),
			zap.Error(err))
		return mediaErr(MediaStorage, "media.storage_failed", err)
	}
	return nil
}

func unlinkMedia(tx *gorm.DB, principal string, req DetachRequest, key string) error {
	switch req.Entity {
	case EntityUsers:
		return tx.Model(&models.User{}).Where("principal_id = ? AND avatar_key = ?", principal, key).
			Update("avatar_key", "").Error
	case EntityBusiness:
	default:
		return nil
	}

	scope := tx.Model(&models.Business{}).Where("id = ? AND owner_id = ?", req.EntityID, principal)
	switch req.MediaType {
	case MediaLogo:
		return scope.Where("logo_url = ?", key).Update("logo_url", "").Error
	case MediaCover:
		return scope.Where("cover_image_url = ?", key).Update("cover_image_url", "").Error
	}

	var b models.Business
	if err := tx.Select("id", "gallery_images").Where("id = ? AND owner_id = ?", req.EntityID, principal).
		Limit(1).Find(&b).Error; err != nil {
		return err
	}
	gallery := b.GalleryImages.Slice()
	kept := make([]string, 0, len(gallery))
	for _, existing := range gallery {
		if existing != key {
			kept = append(kept, existing)
		}
	}
	if len(kept) == len(gallery) {
		return nil
	}
	return scope.Update("gallery_images", models.JSONList[string](kept)).Error
}
