package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm/clause"

	"github.com/localnerve/conexo-admin/internal/database"
	"github.com/localnerve/conexo-admin/internal/identity"
	"github.com/localnerve/conexo-admin/internal/models"
)

// ResolveOrCreateUser returns the user row for principal, creating it on
// first sight. Provider lookups are best effort: without a profile the row
// gets the placeholder email. Concurrent first requests converge on one row.
func (s *Service) ResolveOrCreateUser(ctx context.Context, principal string) (*models.User, error) {
	if principal == "" {
		return nil, ErrUnauthenticated
	}

	user, err := s.FindUser(ctx, principal)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if user != nil {
		s.healEmail(ctx, user)
		return user, nil
	}

	purged, err := s.isPurged(ctx, principal)
	if err != nil {
		return nil, err
	}
	if purged {
		return nil, ErrPrincipalPurged
	}

	profile := s.fetchProfile(ctx, principal)
	candidate := models.User{
		PrincipalID: principal,
		Email:       models.PlaceholderEmail(principal),
		Role:        models.RoleUser,
	}
	if profile != nil {
		if validEmail(profile.Email) {
			candidate.Email = profile.Email
		}
		candidate.FirstName = profile.FirstName
		candidate.LastName = profile.LastName
	}

	db := s.DB.WithContext(ctx)
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&candidate).Error; err != nil && !database.IsDuplicateKey(err) {
		return nil, fmt.Errorf("create user: %w", err)
	}

	// A hard reset may have committed its tombstone while the row was being
	// created; the row must not survive it.
	purged, err = s.isPurged(ctx, principal)
	if err != nil {
		return nil, err
	}
	if purged {
		if err := db.Where("principal_id = ?", principal).Delete(&models.User{}).Error; err != nil {
			s.Log.Error("purged user cleanup failed", zap.String("principal", principal), zap.Error(err))
		}
		return nil, ErrPrincipalPurged
	}

	user, err = s.FindUser(ctx, principal)
	if err != nil {
		return nil, fmt.Errorf("reload user: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("user %s vanished after create", principal)
	}
	return user, nil
}

func (s *Service) isPurged(ctx context.Context, principal string) (bool, error) {
	var count int64
	if err := s.DB.WithContext(ctx).Model(&models.PurgedPrincipal{}).
		Where("principal_id = ?", principal).Count(&count).Error; err != nil {
		return false, fmt.Errorf("tombstone lookup: %w", err)
	}
	return count > 0, nil
}

func (s *Service) fetchProfile(ctx context.Context, principal string) *identity.Profile {
	profile, err := s.Identity.GetProfile(ctx, principal)
	if err != nil {
		if !errors.Is(err, identity.ErrUserNotFound) {
			s.Log.Warn("identity profile lookup failed",
				zap.String("principal", principal),
				zap.String("operation", "get_profile"),
				zap.Error(err))
		}
		return nil
	}
	return profile
}

// healEmail replaces a placeholder email with the provider's, once it has one.
// Failures leave the row untouched.
func (s *Service) healEmail(ctx context.Context, user *models.User) {
	if !user.HasPlaceholderEmail() {
		return
	}
	profile := s.fetchProfile(ctx, user.PrincipalID)
	if profile == nil || !validEmail(profile.Email) || strings.HasSuffix(profile.Email, models.PlaceholderEmailDomain) {
		return
	}

	res := s.DB.WithContext(ctx).Model(&models.User{}).
		Where("id = ? AND email = ?", user.ID, user.Email).
		Update("email", profile.Email)
	if res.Error != nil {
		s.Log.Warn("email repair failed", zap.String("principal", user.PrincipalID), zap.Error(res.Error))
		return
	}
	if res.RowsAffected > 0 {
		user.Email = profile.Email
	}
}
