package services

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/localnerve/conexo-admin/internal/models"
)

// MaxResponseRunes bounds a review response body
const MaxResponseRunes = 2000

// ReviewTarget is the listing a review is about. The set of
// implementations is closed: BusinessTarget, EventTarget and JobTarget.
type ReviewTarget interface {
	reviewTarget()
	ItemID() uint64
}

// BusinessTarget is a review of a business
type BusinessTarget struct{ ID uint64 }

// EventTarget is a review of an event
type EventTarget struct{ ID uint64 }

// JobTarget is a review of a job posting
type JobTarget struct{ ID uint64 }

func (BusinessTarget) reviewTarget() {}
func (EventTarget) reviewTarget()    {}
func (JobTarget) reviewTarget()      {}

func (t BusinessTarget) ItemID() uint64 { return t.ID }
func (t EventTarget) ItemID() uint64    { return t.ID }
func (t JobTarget) ItemID() uint64      { return t.ID }

// TargetFromRow parses the stored discriminant of a review
func TargetFromRow(itemType models.ReviewItemType, itemID uint64) (ReviewTarget, error) {
	switch itemType {
	case models.ReviewItemBusiness:
		return BusinessTarget{ID: itemID}, nil
	case models.ReviewItemEvent:
		return EventTarget{ID: itemID}, nil
	case models.ReviewItemJob:
		return JobTarget{ID: itemID}, nil
	}
	return nil, fmt.Errorf("unknown review item type %q", itemType)
}

// targetOwner loads the owner principal of the reviewed listing, or "" when
// the listing no longer exists
func targetOwner(tx *gorm.DB, target ReviewTarget) (string, error) {
	var model interface{}
	switch target.(type) {
	case BusinessTarget:
		model = &models.Business{}
	case EventTarget:
		model = &models.Event{}
	case JobTarget:
		model = &models.Job{}
	default:
		return "", fmt.Errorf("unsupported review target %T", target)
	}

	var owners []string
	if err := tx.Model(model).Where("id = ?", target.ItemID()).Limit(1).Pluck("owner_id", &owners).Error; err != nil {
		return "", err
	}
	if len(owners) == 0 {
		return "", nil
	}
	return owners[0], nil
}

// RespondToReview creates or replaces the owner's response to a review.
// Ownership is derived from the reviewed listing on every call; anyone but
// the owner gets review.not_found.
func (s *Service) RespondToReview(ctx context.Context, principal string, reviewID uint64, body string) (Result, error) {
	if principal == "" {
		return Result{}, ErrUnauthenticated
	}

	clean := strings.TrimSpace(s.strict.Sanitize(body))
	if n := len([]rune(clean)); n == 0 || n > MaxResponseRunes {
		return Result{Error: MsgReviewInvalidBody, Args: []any{MaxResponseRunes}, Fields: map[string]string{"body": MsgReviewInvalidBody}}, nil
	}

	var out Result
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var review models.Review
		if err := tx.Where("id = ?", reviewID).Limit(1).Find(&review).Error; err != nil {
			return err
		}
		if review.ID == 0 {
			out = fail(MsgReviewNotFound)
			return nil
		}

		target, err := TargetFromRow(review.ItemType, review.ItemID)
		if err != nil {
			return err
		}
		owner, err := targetOwner(tx, target)
		if err != nil {
			return err
		}
		if owner == "" || owner != principal {
			out = fail(MsgReviewNotFound)
			return nil
		}

		now := s.now()
		response := models.ReviewResponse{
			ReviewID:    review.ID,
			ResponderID: principal,
			Body:        clean,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "review_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"responder_id", "body", "updated_at"}),
		}).Create(&response).Error; err != nil {
			return err
		}
		out = ok(review.ID)
		return nil
	})
	if err != nil {
		return Result{}, fmt.Errorf("respond to review: %w", err)
	}
	return out, nil
}

// ListForOwner returns the reviews of every listing principal owns, newest first
func (s *Service) ListForOwner(ctx context.Context, principal string) ([]models.Review, error) {
	if principal == "" {
		return nil, ErrUnauthenticated
	}
	db := s.DB.WithContext(ctx)

	var reviews []models.Review
	err := db.Preload("Response").
		Where("(item_type = ? AND item_id IN (?)) OR (item_type = ? AND item_id IN (?)) OR (item_type = ? AND item_id IN (?))",
			models.ReviewItemBusiness, db.Model(&models.Business{}).Select("id").Where("owner_id = ?", principal),
			models.ReviewItemEvent, db.Model(&models.Event{}).Select("id").Where("owner_id = ?", principal),
			models.ReviewItemJob, db.Model(&models.Job{}).Select("id").Where("owner_id = ?", principal)).
		Order("created_at DESC, id DESC").
		Find(&reviews).Error
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	if reviews == nil {
		reviews = []models.Review{}
	}
	return reviews, nil
}
