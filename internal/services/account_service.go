// account_service.go
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

package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/localnerve/conexo-admin/internal/events"
	"github.com/localnerve/conexo-admin/internal/models"
	"github.com/localnerve/conexo-admin/internal/storage"
)

// AccountEvent is the payload of account lifecycle messages
type AccountEvent struct {
	PrincipalID string      `json:"principalId"`
	Email       string      `json:"email,omitempty"`
	Role        models.Role `json:"role,omitempty"`
}

// RequestDeletion soft-deletes the account of principal and takes its
// listings offline. The first deletion timestamp is kept on repeat calls.
func (s *Service) RequestDeletion(ctx context.Context, principal string) error {
	if principal == "" {
		return ErrUnauthenticated
	}

	now := s.now()
	var user models.User
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.User{}).Where("principal_id = ?", principal).Updates(map[string]interface{}{
			"role":                  models.RoleDeleted,
			"deletion_requested_at": gorm.Expr("COALESCE(deletion_requested_at, ?)", now),
			"updated_at":            now,
		})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// mysql reports zero affected rows when nothing changed
			if err := tx.Where("principal_id = ?", principal).Limit(1).Find(&user).Error; err != nil {
				return err
			}
			if user.ID == 0 {
				return ErrUserNotFound
			}
		}

		if err := tx.Model(&models.Business{}).Where("owner_id = ?", principal).
			Update("published", false).Error; err != nil {
			return err
		}
		offline := map[string]interface{}{"status": models.StatusDraft, "active": false}
		if err := tx.Model(&models.Event{}).Where("owner_id = ?", principal).Updates(offline).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Job{}).Where("owner_id = ?", principal).Updates(offline).Error; err != nil {
			return err
		}
		return tx.Where("principal_id = ?", principal).Limit(1).Find(&user).Error
	})
	if err != nil {
		s.Metrics.Transition("request_deletion", "failed")
		if errors.Is(err, ErrUserNotFound) {
			return err
		}
		return fmt.Errorf("request deletion: %w", err)
	}

	s.Metrics.Transition("request_deletion", "ok")
	events.Emit(ctx, s.Events, s.Log, events.AccountDeletionRequested, AccountEvent{
		PrincipalID: principal,
		Email:       user.Email,
		Role:        models.RoleDeleted,
	})
	return nil
}

// Reactivation is the outcome of Reactivate
type Reactivation struct {
	Role       models.Role `json:"role"`
	RedirectTo string      `json:"redirectTo"`
}

// Reactivate restores a soft-deleted account. The role comes back as
// business when the principal still owns any listing, else user. A call on
// an account that is not deleted reports the current role.
func (s *Service) Reactivate(ctx context.Context, principal string) (Reactivation, error) {
	if principal == "" {
		return Reactivation{}, ErrUnauthenticated
	}

	var user models.User
	var restored models.Role
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("principal_id = ?", principal).Limit(1).Find(&user).Error; err != nil {
			return err
		}
		if user.ID == 0 {
			return ErrUserNotFound
		}
		if user.Role != models.RoleDeleted {
			restored = user.Role
			return nil
		}

		owns, err := ownsListings(tx, principal)
		if err != nil {
			return err
		}
		restored = models.RoleUser
		if owns {
			restored = models.RoleBusiness
		}

		return tx.Model(&models.User{}).
			Where("id = ? AND role = ?", user.ID, models.RoleDeleted).
			Updates(map[string]interface{}{
				"role":                  restored,
				"deletion_requested_at": nil,
				"updated_at":            s.now(),
			}).Error
	})
	if err != nil {
		s.Metrics.Transition("reactivate", "failed")
		if errors.Is(err, ErrUserNotFound) {
			return Reactivation{}, err
		}
		return Reactivation{}, fmt.Errorf("reactivate: %w", err)
	}

	if user.Role == models.RoleDeleted {
		s.Metrics.Transition("reactivate", "ok")
		events.Emit(ctx, s.Events, s.Log, events.AccountReactivated, AccountEvent{
			PrincipalID: principal,
			Email:       user.Email,
			Role:        restored,
		})
	} else {
		s.Metrics.Transition("reactivate", "noop")
	}
	return Reactivation{Role: restored, RedirectTo: HomeFor(restored)}, nil
}

func ownsListings(tx *gorm.DB, principal string) (bool, error) {
	for _, kind := range []ListingKind{KindBusiness, KindEvent, KindJob} {
		var count int64
		if err := tx.Model(kind.model()).Where("owner_id = ?", principal).Count(&count).Error; err != nil {
			return false, err
		}
		if count > 0 {
			return true, nil
		}
	}
	return false, nil
}

// ActivateBusiness moves a user account to the business role
func (s *Service) ActivateBusiness(ctx context.Context, principal string) (Result, error) {
	user, err := s.ResolveOrCreateUser(ctx, principal)
	if err != nil {
		return Result{}, err
	}
	switch user.Role {
	case models.RoleDeleted:
		return Result{}, ErrAccountDeleted
	case models.RoleBusiness:
		return fail(MsgAlreadyBusiness), nil
	}

	res := s.DB.WithContext(ctx).Model(&models.User{}).
		Where("id = ? AND role = ?", user.ID, models.RoleUser).
		Updates(map[string]interface{}{"role": models.RoleBusiness, "updated_at": s.now()})
	if res.Error != nil {
		s.Metrics.Transition("activate_business", "failed")
		return Result{}, fmt.Errorf("activate business: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fail(MsgAlreadyBusiness), nil
	}

	s.Metrics.Transition("activate_business", "ok")
	events.Emit(ctx, s.Events, s.Log, events.AccountBusinessActivated, AccountEvent{
		PrincipalID: principal,
		Email:       user.Email,
		Role:        models.RoleBusiness,
	})
	return ok(user.ID), nil
}

// ResetReport describes a hard reset, including the diagnostics of a partial failure
type ResetReport struct {
	Success          bool     `json:"success"`
	DeletedR2Objects int      `json:"deletedR2Objects"`
	FailedKeys       []string `json:"failedKeys,omitempty"`
	RemainingUsers   int64    `json:"remainingUsers,omitempty"`
	Error            string   `json:"error,omitempty"`
}

// HardReset irreversibly purges a soft-deleted account. Stored objects are
// removed first; any failure there stops the reset before the identity
// provider account or local rows are touched. The provider account is
// deleted before the local rows, and a tombstone keeps the principal from
// being recreated afterwards.
func (s *Service) HardReset(ctx context.Context, principal string) (ResetReport, error) {
	if principal == "" {
		return ResetReport{}, ErrUnauthenticated
	}

	user, err := s.FindUser(ctx, principal)
	if err != nil {
		return ResetReport{}, fmt.Errorf("load user: %w", err)
	}
	if user == nil {
		return ResetReport{}, ErrUserNotFound
	}
	if user.Role != models.RoleDeleted {
		s.Metrics.Transition("hard_reset", "rejected")
		return ResetReport{}, ErrNotDeleted
	}

	refs, err := s.collectMediaRefs(ctx, user)
	if err != nil {
		return ResetReport{}, err
	}
	keys := s.normalizeRefs(principal, refs)

	report := ResetReport{}
	for _, key := range keys {
		if err := s.Store.Delete(ctx, key); err != nil && !errors.Is(err, storage.ErrNotFound) {
			s.Log.Error("storage delete failed",
				zap.String("principal", principal),
				zap.String("key", key),
				zap.String("operation", "hard_reset"),
				zap.Error(err))
			report.FailedKeys = append(report.FailedKeys, key)
			continue
		}
		report.DeletedR2Objects++
	}
	s.Metrics.StorageDeletes("ok", report.DeletedR2Objects)
	s.Metrics.StorageDeletes("failed", len(report.FailedKeys))
	if len(report.FailedKeys) > 0 {
		s.Metrics.Transition("hard_reset", "storage_failed")
		report.Error = "account.storage_failed"
		return report, ErrStorageCleanup
	}

	if err := s.Identity.DeleteUser(ctx, principal); err != nil {
		s.Log.Error("identity provider delete failed",
			zap.String("principal", principal),
			zap.String("operation", "hard_reset"),
			zap.Error(err))
		s.Metrics.Transition("hard_reset", "provider_failed")
		report.Error = "account.provider_failed"
		return report, fmt.Errorf("%w: %v", ErrProviderDelete, err)
	}

	if err := s.purgeRows(ctx, principal); err != nil {
		s.Metrics.Transition("hard_reset", "failed")
		return report, fmt.Errorf("purge rows: %w", err)
	}

	if err := s.resweep(ctx, principal); err != nil {
		s.Log.Warn("user re-sweep interrupted", zap.String("principal", principal), zap.Error(err))
	}

	var remaining int64
	if err := s.DB.WithContext(ctx).Model(&models.User{}).
		Where("principal_id = ?", principal).Count(&remaining).Error; err != nil {
		return report, fmt.Errorf("verify purge: %w", err)
	}
	if remaining > 0 {
		s.Log.Error("user rows remain after purge",
			zap.String("principal", principal),
			zap.Int64("remaining", remaining))
		s.Metrics.Transition("hard_reset", "residual")
		report.RemainingUsers = remaining
		report.Error = "account.verify_failed"
		return report, ErrResidualUsers
	}

	report.Success = true
	s.Metrics.Transition("hard_reset", "ok")
	events.Emit(ctx, s.Events, s.Log, events.AccountPurged, AccountEvent{
		PrincipalID: principal,
		Email:       user.Email,
	})
	return report, nil
}

// collectMediaRefs gathers every stored media reference of user's listings,
// avatar and tracked uploads
func (s *Service) collectMediaRefs(ctx context.Context, user *models.User) ([]string, error) {
	db := s.DB.WithContext(ctx)
	principal := user.PrincipalID
	var refs []string

	var businesses []models.Business
	if err := db.Select("id", "logo_url", "cover_image_url", "gallery_images").
		Where("owner_id = ?", principal).Find(&businesses).Error; err != nil {
		return nil, fmt.Errorf("collect business media: %w", err)
	}
	for _, b := range businesses {
		refs = append(refs, b.LogoURL, b.CoverImageURL)
		refs = append(refs, b.GalleryImages.Slice()...)
	}

	var evs []models.Event
	if err := db.Select("id", "cover_image_url", "gallery_images").
		Where("owner_id = ?", principal).Find(&evs).Error; err != nil {
		return nil, fmt.Errorf("collect event media: %w", err)
	}
	for _, e := range evs {
		refs = append(refs, e.CoverImageURL)
		refs = append(refs, e.GalleryImages.Slice()...)
	}

	var jobs []models.Job
	if err := db.Select("id", "logo_url", "cover_image_url").
		Where("owner_id = ?", principal).Find(&jobs).Error; err != nil {
		return nil, fmt.Errorf("collect job media: %w", err)
	}
	for _, j := range jobs {
		refs = append(refs, j.LogoURL, j.CoverImageURL)
	}

	refs = append(refs, user.AvatarKey)

	var tracked []string
	if err := db.Model(&models.StorageObject{}).Where("principal_id = ?", principal).
		Pluck("object_key", &tracked).Error; err != nil {
		return nil, fmt.Errorf("collect tracked objects: %w", err)
	}
	return append(refs, tracked...), nil
}

// normalizeRefs turns references into a sorted, deduplicated key list.
// References outside the allow-lists are logged and skipped.
func (s *Service) normalizeRefs(principal string, refs []string) []string {
	policy := s.keyPolicy()
	seen := make(map[string]bool)
	keys := make([]string, 0, len(refs))
	for _, ref := range refs {
		if ref == "" {
			continue
		}
		key, err := storage.NormalizeStorageKey(ref, policy)
		if err != nil {
			s.Log.Warn("skipping media reference",
				zap.String("principal", principal),
				zap.String("key", ref),
				zap.Error(err))
			continue
		}
		if !seen[key] {
			seen[key] = true
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys
}

// purgeRows deletes every local row of principal in one transaction
func (s *Service) purgeRows(ctx context.Context, principal string) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, m := range []interface{}{&models.UsageHistory{}, &models.StorageObject{}, &models.CreditBalance{}} {
			if err := tx.Where("principal_id = ?", principal).Delete(m).Error; err != nil {
				return err
			}
		}
		if err := tx.Model(&models.SubscriptionEvent{}).Where("principal_id = ?", principal).
			Update("principal_id", nil).Error; err != nil {
			return err
		}

		if err := purgeReviews(tx, principal); err != nil {
			return err
		}

		for _, m := range []interface{}{&models.Job{}, &models.Event{}, &models.Business{}} {
			if err := tx.Where("owner_id = ?", principal).Delete(m).Error; err != nil {
				return err
			}
		}

		tombstone := models.PurgedPrincipal{PrincipalID: principal, PurgedAt: s.now()}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&tombstone).Error; err != nil {
			return err
		}

		// Zero rows here means another process already removed the user
		return tx.Where("principal_id = ?", principal).Delete(&models.User{}).Error
	})
}

// purgeReviews removes the reviews on principal's listings, the reviews
// principal wrote and the responses attached to any of them
func purgeReviews(tx *gorm.DB, principal string) error {
	var reviewIDs []uint64
	err := tx.Model(&models.Review{}).
		Where("(item_type = ? AND item_id IN (?)) OR (item_type = ? AND item_id IN (?)) OR (item_type = ? AND item_id IN (?)) OR author_id = ?",
			models.ReviewItemBusiness, tx.Model(&models.Business{}).Select("id").Where("owner_id = ?", principal),
			models.ReviewItemEvent, tx.Model(&models.Event{}).Select("id").Where("owner_id = ?", principal),
			models.ReviewItemJob, tx.Model(&models.Job{}).Select("id").Where("owner_id = ?", principal),
			principal).
		Pluck("id", &reviewIDs).Error
	if err != nil {
		return err
	}

	if err := tx.Where("responder_id = ?", principal).Delete(&models.ReviewResponse{}).Error; err != nil {
		return err
	}
	if len(reviewIDs) == 0 {
		return nil
	}
	if err := tx.Where("review_id IN ?", reviewIDs).Delete(&models.ReviewResponse{}).Error; err != nil {
		return err
	}
	return tx.Where("id IN ?", reviewIDs).Delete(&models.Review{}).Error
}

// resweep deletes user rows for principal a bounded number of times,
// catching rows recreated by requests that were in flight during the purge
func (s *Service) resweep(ctx context.Context, principal string) error {
	attempts := s.Cfg.ResetResweepAttempts
	for i := 0; i < attempts; i++ {
		res := s.DB.WithContext(ctx).Where("principal_id = ?", principal).Delete(&models.User{})
		if res.Error != nil {
			s.Log.Warn("user re-sweep failed",
				zap.String("principal", principal),
				zap.Int("attempt", i+1),
				zap.Error(res.Error))
		} else if res.RowsAffected > 0 {
			s.Log.Warn("user re-sweep removed recreated rows",
				zap.String("principal", principal),
				zap.Int64("rows", res.RowsAffected))
		}

		if i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(s.Cfg.ResetResweepDelay):
		}
	}
	return nil
}

// SweepOutcome is the result of one hard reset run by SweepExpired
type SweepOutcome struct {
	PrincipalID string      `json:"principalId"`
	Success     bool        `json:"success"`
	Report      ResetReport `json:"report"`
	Error       string      `json:"error,omitempty"`
}

// SweepExpired hard-resets every soft-deleted account whose grace period
// ended at or before now. One failed reset does not stop the others.
func (s *Service) SweepExpired(ctx context.Context, now time.Time) ([]SweepOutcome, error) {
	cutoff := now.UTC().Add(-s.Cfg.AccountDeletionGrace)

	var principals []string
	if err := s.DB.WithContext(ctx).Model(&models.User{}).
		Where("role = ? AND deletion_requested_at IS NOT NULL AND deletion_requested_at <= ?", models.RoleDeleted, cutoff).
		Order("deletion_requested_at").
		Pluck("principal_id", &principals).Error; err != nil {
		return nil, fmt.Errorf("find expired accounts: %w", err)
	}

	outcomes := make([]SweepOutcome, 0, len(principals))
	for _, principal := range principals {
		if ctx.Err() != nil {
			return outcomes, ctx.Err()
		}
		report, err := s.HardReset(ctx, principal)
		outcome := SweepOutcome{PrincipalID: principal, Success: err == nil, Report: report}
		if err != nil {
			outcome.Error = err.Error()
			s.Log.Error("expired account reset failed", zap.String("principal", principal), zap.Error(err))
		}
		outcomes = append(outcomes, outcome)
	}

	s.Log.Info("expired account sweep finished",
		zap.Int("accounts", len(principals)),
		zap.Time("cutoff", cutoff))
	return outcomes, nil
}
