package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/localnerve/conexo-admin/internal/models"
	"github.com/localnerve/conexo-admin/internal/types"
)

// EventInput is the event wizard's submission
type EventInput struct {
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Location    string           `json:"location"`
	OrganizerID types.FlexUint64 `json:"organizerId"`
	Publish     bool             `json:"publish"`
	DateRangeInput
	ContactInput
}

// EventView is the wizard's read model of an event
type EventView struct {
	ID            uint64               `json:"id"`
	Title         string               `json:"title"`
	Slug          string               `json:"slug"`
	Description   string               `json:"description"`
	Location      string               `json:"location"`
	OrganizerID   uint64               `json:"organizerId"`
	OrganizerName string               `json:"organizerName"`
	StartDate     string               `json:"startDate"`
	StartTime     string               `json:"startTime"`
	EndDate       string               `json:"endDate"`
	EndTime       string               `json:"endTime"`
	Contacts      []models.Contact     `json:"contacts"`
	Phone         string               `json:"phone"`
	Email         string               `json:"email"`
	Whatsapp      string               `json:"whatsapp"`
	CoverImage    string               `json:"coverImage"`
	CoverImageURL string               `json:"coverImageUrl"`
	GalleryImages []string             `json:"galleryImages"`
	GalleryURLs   []string             `json:"galleryUrls"`
	Status        models.ListingStatus `json:"status"`
	Active        bool                 `json:"active"`
	PublishedAt   *time.Time           `json:"publishedAt"`
}

func (in *EventInput) validate() (*combinedRange, []models.Contact, map[string]string) {
	fields := map[string]string{}
	in.Title = strings.TrimSpace(in.Title)

	requireText(fields, "title", in.Title, 200)
	checkLength(fields, "description", in.Description, 5000)
	checkLength(fields, "location", in.Location, 255)
	if in.OrganizerID == 0 {
		fields["organizerId"] = MsgRequired
	}
	when, _ := in.DateRangeInput.combine(fields, true)
	contacts := in.ContactInput.validate(fields)
	return when, contacts, fields
}

// requestedStatus is the status a wizard submission asks for. Publishing
// goes through moderation first.
func requestedStatus(publish bool) models.ListingStatus {
	if publish {
		return models.StatusPending
	}
	return models.StatusDraft
}

// CreateEvent runs the event creation workflow for principal
func (s *Service) CreateEvent(ctx context.Context, principal string, in EventInput) (Result, error) {
	return s.createListing(ctx, principal, KindEvent, func(tx *gorm.DB, owner *models.User) (Result, error) {
		when, contacts, fields := in.validate()
		if len(fields) > 0 {
			return invalid(fields), nil
		}

		organizer, err := ownedBusiness(tx, in.OrganizerID.Uint64(), owner.PrincipalID)
		if err != nil {
			return Result{}, err
		}
		if organizer == nil {
			return fail(MsgOrganizerNotFound), nil
		}

		e := models.Event{
			OwnerID:     owner.PrincipalID,
			OrganizerID: organizer.ID,
			Title:       in.Title,
			Slug:        s.newSlug(KindEvent, in.Title),
			Description: s.sanitizeDescription(in.Description),
			Location:    strings.TrimSpace(in.Location),
			StartsAt:    when.start,
			EndsAt:      when.end,
			Contacts:    contacts,
			Phone:       in.Phone,
			Email:       in.Email,
			Whatsapp:    in.Whatsapp,
			Status:      requestedStatus(in.Publish),
		}
		if err := tx.Create(&e).Error; err != nil {
			return Result{}, err
		}
		return ok(e.ID), nil
	})
}

// UpdateEvent rewrites the editable fields of an event owned by principal
func (s *Service) UpdateEvent(ctx context.Context, principal string, id uint64, in EventInput) (Result, error) {
	if principal == "" {
		return Result{}, ErrUnauthenticated
	}
	when, contacts, fields := in.validate()
	if id == 0 {
		fields["id"] = MsgRequired
	}
	if len(fields) > 0 {
		return invalid(fields), nil
	}

	return s.updateListing(ctx, KindEvent, func(tx *gorm.DB) (Result, error) {
		var e models.Event
		if err := tx.Where("id = ? AND owner_id = ?", id, principal).Limit(1).Find(&e).Error; err != nil {
			return Result{}, err
		}
		if e.ID == 0 {
			return fail(MsgListingNotFound), nil
		}

		organizer, err := ownedBusiness(tx, in.OrganizerID.Uint64(), principal)
		if err != nil {
			return Result{}, err
		}
		if organizer == nil {
			return fail(MsgOrganizerNotFound), nil
		}

		slug, err := s.updatedSlug(tx, KindEvent, e.ID, e.Slug, in.Title)
		if err != nil {
			return Result{}, err
		}

		updates := map[string]interface{}{
			"title":        in.Title,
			"slug":         slug,
			"description":  s.sanitizeDescription(in.Description),
			"location":     strings.TrimSpace(in.Location),
			"organizer_id": organizer.ID,
			"starts_at":    when.start,
			"ends_at":      when.end,
			"contacts":     models.JSONList[models.Contact](contacts),
			"phone":        in.Phone,
			"email":        in.Email,
			"whatsapp":     in.Whatsapp,
			"updated_at":   s.now(),
		}
		if status, changed := resubmittedStatus(e.Status, in.Publish); changed {
			updates["status"] = status
			if status == models.StatusDraft {
				updates["active"] = false
			}
		}

		if err := tx.Model(&models.Event{}).
			Where("id = ? AND owner_id = ?", e.ID, principal).
			Updates(updates).Error; err != nil {
			return Result{}, err
		}
		return ok(e.ID), nil
	})
}

// resubmittedStatus applies a publish request to a stored status. Published
// listings stay published and a withdrawn request goes back to draft.
func resubmittedStatus(current models.ListingStatus, publish bool) (models.ListingStatus, bool) {
	switch {
	case publish && (current == models.StatusDraft || current == models.StatusRejected):
		return models.StatusPending, true
	case !publish && current != models.StatusDraft:
		return models.StatusDraft, true
	}
	return current, false
}

// GetEvent is the owner-scoped read of one event
func (s *Service) GetEvent(ctx context.Context, principal string, id uint64) (*EventView, error) {
	if principal == "" {
		return nil, ErrUnauthenticated
	}
	var e models.Event
	err := s.DB.WithContext(ctx).Preload("Organizer").
		Where("id = ? AND owner_id = ?", id, principal).Limit(1).Find(&e).Error
	if err != nil {
		return nil, fmt.Errorf("load event: %w", err)
	}
	if e.ID == 0 {
		return nil, nil
	}
	view := s.eventView(&e)
	return &view, nil
}

// ListEvents returns the events owned by principal, soonest first
func (s *Service) ListEvents(ctx context.Context, principal string) ([]EventView, error) {
	if principal == "" {
		return nil, ErrUnauthenticated
	}
	var rows []models.Event
	if err := s.DB.WithContext(ctx).Preload("Organizer").
		Where("owner_id = ?", principal).Order("starts_at, id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	views := make([]EventView, 0, len(rows))
	for i := range rows {
		views = append(views, s.eventView(&rows[i]))
	}
	return views, nil
}

func (s *Service) eventView(e *models.Event) EventView {
	startDate, startTime := SplitDateTime(e.StartsAt)
	endDate, endTime := SplitOptional(e.EndsAt)
	gallery := e.GalleryImages.Slice()

	view := EventView{
		ID:            e.ID,
		Title:         e.Title,
		Slug:          e.Slug,
		Description:   e.Description,
		Location:      e.Location,
		OrganizerID:   e.OrganizerID,
		StartDate:     startDate,
		StartTime:     startTime,
		EndDate:       endDate,
		EndTime:       endTime,
		Contacts:      MergeContacts(e.Contacts.Slice(), LegacyContacts{Phone: e.Phone, Whatsapp: e.Whatsapp, Email: e.Email}),
		Phone:         e.Phone,
		Email:         e.Email,
		Whatsapp:      e.Whatsapp,
		CoverImage:    e.CoverImageURL,
		GalleryImages: gallery,
		GalleryURLs:   s.mediaURLs(gallery),
		Status:        e.Status,
		Active:        e.Active,
		PublishedAt:   e.PublishedAt,
	}
	if e.Organizer != nil {
		view.OrganizerName = e.Organizer.Name
	}
	if e.CoverImageURL != "" {
		view.CoverImageURL = s.publicURL(e.CoverImageURL)
	}
	return view
}
