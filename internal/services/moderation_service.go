package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/localnerve/conexo-admin/internal/events"
	"github.com/localnerve/conexo-admin/internal/models"
)

// Moderation decisions
const (
	DecisionApproved = "approved"
	DecisionRejected = "rejected"
)

// PendingItem is a listing waiting for moderation
type PendingItem struct {
	Kind        ListingKind `json:"kind"`
	ID          uint64      `json:"id"`
	Title       string      `json:"title"`
	Slug        string      `json:"slug"`
	OwnerID     string      `json:"ownerId"`
	SubmittedAt time.Time   `json:"submittedAt"`
}

// ModerationEvent is the payload of listing.moderated
type ModerationEvent struct {
	Kind     ListingKind `json:"kind"`
	ID       uint64      `json:"id"`
	OwnerID  string      `json:"ownerId"`
	Title    string      `json:"title"`
	Decision string      `json:"decision"`
	Reason   string      `json:"reason,omitempty"`
}

// ListPending returns published businesses awaiting verification and
// events and jobs submitted for publishing, oldest first
func (s *Service) ListPending(ctx context.Context) ([]PendingItem, error) {
	db := s.DB.WithContext(ctx)
	items := []PendingItem{}

	var businesses []models.Business
	if err := db.Where("published = ? AND verified = ?", true, false).Order("updated_at, id").Find(&businesses).Error; err != nil {
		return nil, fmt.Errorf("pending businesses: %w", err)
	}
	for _, b := range businesses {
		items = append(items, PendingItem{Kind: KindBusiness, ID: b.ID, Title: b.Name, Slug: b.Slug, OwnerID: b.OwnerID, SubmittedAt: b.UpdatedAt})
	}

	var evs []models.Event
	if err := db.Where("status = ?", models.StatusPending).Order("updated_at, id").Find(&evs).Error; err != nil {
		return nil, fmt.Errorf("pending events: %w", err)
	}
	for _, e := range evs {
		items = append(items, PendingItem{Kind: KindEvent, ID: e.ID, Title: e.Title, Slug: e.Slug, OwnerID: e.OwnerID, SubmittedAt: e.UpdatedAt})
	}

	var jobs []models.Job
	if err := db.Where("status = ?", models.StatusPending).Order("updated_at, id").Find(&jobs).Error; err != nil {
		return nil, fmt.Errorf("pending jobs: %w", err)
	}
	for _, j := range jobs {
		items = append(items, PendingItem{Kind: KindJob, ID: j.ID, Title: j.Title, Slug: j.Slug, OwnerID: j.OwnerID, SubmittedAt: j.UpdatedAt})
	}
	return items, nil
}

// Approve verifies a business or publishes an event or job. The first
// publication time is kept.
func (s *Service) Approve(ctx context.Context, kind ListingKind, id uint64) error {
	return s.moderate(ctx, kind, id, DecisionApproved, "")
}

// Reject takes a listing out of the moderation queue without publishing it
func (s *Service) Reject(ctx context.Context, kind ListingKind, id uint64, reason string) error {
	return s.moderate(ctx, kind, id, DecisionRejected, strings.TrimSpace(s.strict.Sanitize(reason)))
}

func (s *Service) moderate(ctx context.Context, kind ListingKind, id uint64, decision, reason string) error {
	if kind.Table() == "" {
		return ErrUnknownKind
	}

	var owner, title string
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row struct {
			OwnerID     string
			Title       string
			PublishedAt *time.Time
		}
		titleColumn := "title"
		if kind == KindBusiness {
			titleColumn = "name AS title"
		}
		if err := tx.Table(kind.Table()).Select("owner_id", titleColumn, "published_at").
			Where("id = ?", id).Limit(1).Scan(&row).Error; err != nil {
			return err
		}
		if row.OwnerID == "" {
			return ErrModerationTarget
		}
		owner, title = row.OwnerID, row.Title

		now := s.now()
		updates := moderationUpdates(kind, decision, now)
		if decision == DecisionApproved && kind != KindBusiness && row.PublishedAt == nil {
			updates["published_at"] = now
		}
		res := moderationTarget(tx.Model(kind.model()), kind, id).Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrModerationTarget
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrModerationTarget) {
			return err
		}
		return fmt.Errorf("moderate %s %d: %w", kind, id, err)
	}

	events.Emit(ctx, s.Events, s.Log, events.ListingModerated, ModerationEvent{
		Kind:     kind,
		ID:       id,
		OwnerID:  owner,
		Title:    title,
		Decision: decision,
		Reason:   reason,
	})
	return nil
}

// moderationTarget restricts an update to a listing still in the queue whose
// owner has not requested deletion
func moderationTarget(tx *gorm.DB, kind ListingKind, id uint64) *gorm.DB {
	tx = tx.Where("id = ?", id)
	if kind == KindBusiness {
		tx = tx.Where("published = ? AND verified = ?", true, false)
	} else {
		tx = tx.Where("status = ?", models.StatusPending)
	}
	return tx.Where("NOT EXISTS (SELECT 1 FROM users WHERE users.principal_id = "+kind.Table()+".owner_id AND users.role = ?)",
		models.RoleDeleted)
}

func moderationUpdates(kind ListingKind, decision string, now time.Time) map[string]interface{} {
	updates := map[string]interface{}{"updated_at": now}
	switch {
	case kind == KindBusiness && decision == DecisionApproved:
		updates["verified"] = true
	case kind == KindBusiness:
		updates["published"] = false
	case decision == DecisionApproved:
		updates["status"] = models.StatusPublished
		updates["active"] = true
	default:
		updates["status"] = models.StatusRejected
		updates["active"] = false
	}
	return updates
}
