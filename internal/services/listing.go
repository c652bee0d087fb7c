// listing.go
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
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/localnerve/conexo-admin/internal/database"
	"github.com/localnerve/conexo-admin/internal/models"
	"github.com/localnerve/conexo-admin/internal/types"
)

// ListingKind names one of the listing tables
type ListingKind string

const (
	KindBusiness ListingKind = "business"
	KindEvent    ListingKind = "event"
	KindJob      ListingKind = "job"
)

// ParseListingKind accepts singular and plural kind names
func ParseListingKind(s string) (ListingKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "business", "businesses":
		return KindBusiness, nil
	case "event", "events":
		return KindEvent, nil
	case "job", "jobs":
		return KindJob, nil
	}
	return "", ErrUnknownKind
}

// Table is the listing's table name
func (k ListingKind) Table() string {
	switch k {
	case KindBusiness:
		return "businesses"
	case KindEvent:
		return "events"
	case KindJob:
		return "jobs"
	}
	return ""
}

// TypeWord prefixes fallback slugs
func (k ListingKind) TypeWord() string {
	switch k {
	case KindBusiness:
		return "negocio"
	case KindEvent:
		return "evento"
	case KindJob:
		return "vaga"
	}
	return "item"
}

func (k ListingKind) model() interface{} {
	switch k {
	case KindBusiness:
		return &models.Business{}
	case KindEvent:
		return &models.Event{}
	case KindJob:
		return &models.Job{}
	}
	return nil
}

// ContactInput is the wizard's contact block shared by every listing kind
type ContactInput struct {
	Contacts types.FlexList[models.Contact] `json:"contacts"`
	Phone    string                         `json:"phone"`
	Email    string                         `json:"email"`
	Whatsapp string                         `json:"whatsapp"`
}

func (c *ContactInput) validate(fields map[string]string) []models.Contact {
	contacts := validateContacts(c.Contacts.Slice(), fields)
	c.Phone = NormalizePhone(c.Phone)
	c.Whatsapp = NormalizePhone(c.Whatsapp)
	c.Email = strings.TrimSpace(c.Email)
	if c.Email != "" && !validEmail(c.Email) {
		fields["email"] = MsgInvalidEmail
	}
	return contacts
}

// DateRangeInput carries the wizard's separate date and time inputs
type DateRangeInput struct {
	StartDate string `json:"startDate"`
	StartTime string `json:"startTime"`
	EndDate   string `json:"endDate"`
	EndTime   string `json:"endTime"`
}

func (d DateRangeInput) combine(fields map[string]string, required bool) (*combinedRange, bool) {
	if strings.TrimSpace(d.StartDate) == "" {
		if required {
			fields["startDate"] = MsgRequired
			return nil, false
		}
		if strings.TrimSpace(d.EndDate) != "" {
			fields["startDate"] = MsgRequired
			return nil, false
		}
		return nil, true
	}

	start, err := CombineDateTime(d.StartDate, d.StartTime)
	if err != nil {
		dateTimeError(fields, err, "startDate", "startTime")
		return nil, false
	}
	if strings.TrimSpace(d.EndDate) == "" {
		return &combinedRange{start: start}, true
	}

	endTime := d.EndTime
	if strings.TrimSpace(endTime) == "" {
		endTime = d.StartTime
	}
	end, err := CombineDateTime(d.EndDate, endTime)
	if err != nil {
		dateTimeError(fields, err, "endDate", "endTime")
		return nil, false
	}
	if end.Before(start) {
		fields["endDate"] = MsgEndBeforeStart
		return nil, false
	}
	return &combinedRange{start: start, end: &end}, true
}

func dateTimeError(fields map[string]string, err error, dateField, timeField string) {
	if errors.Is(err, errInvalidTime) {
		fields[timeField] = MsgInvalidTime
		return
	}
	fields[dateField] = MsgInvalidDate
}

type combinedRange struct {
	start time.Time
	end   *time.Time
}

var fallbackSlugPattern = regexp.MustCompile(`^[a-z]+-\d+$`)

func requireText(fields map[string]string, name, value string, maxLen int) {
	if strings.TrimSpace(value) == "" {
		fields[name] = MsgRequired
		return
	}
	checkLength(fields, name, value, maxLen)
}

func checkLength(fields map[string]string, name, value string, maxLen int) {
	if len([]rune(value)) > maxLen {
		fields[name] = MsgTooLong
	}
}

// resolveOwner runs the identity resolver for a listing workflow. Any
// failure other than a missing session becomes a user_resolve result.
func (s *Service) resolveOwner(ctx context.Context, principal string) (*models.User, *Result, error) {
	user, err := s.ResolveOrCreateUser(ctx, principal)
	if errors.Is(err, ErrUnauthenticated) {
		return nil, nil, err
	}
	if err != nil {
		s.Log.Error("user resolve failed", zap.String("principal", principal), zap.Error(err))
		r := fail(MsgUserResolve)
		return nil, &r, nil
	}
	return user, nil, nil
}

// createListing runs fn inside a transaction that holds one of the owner's
// listing slots for kind. On postgres and mysql the owner's user row is
// locked so concurrent creations for one owner serialize on the count.
func (s *Service) createListing(ctx context.Context, principal string, kind ListingKind, fn func(tx *gorm.DB, owner *models.User) (Result, error)) (Result, error) {
	owner, failed, err := s.resolveOwner(ctx, principal)
	if err != nil {
		return Result{}, err
	}
	if failed != nil {
		return *failed, nil
	}

	var out Result
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if database.SupportsRowLocks(tx) {
			var locked models.User
			if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				Where("id = ?", owner.ID).First(&locked).Error; err != nil {
				return err
			}
		}

		var count int64
		if err := tx.Model(kind.model()).Where("owner_id = ?", principal).Count(&count).Error; err != nil {
			return err
		}
		if count >= int64(s.Cfg.ListingLimitPerType) {
			out = fail(MsgLimitReached, s.Cfg.ListingLimitPerType)
			return nil
		}

		r, err := fn(tx, owner)
		out = r
		return err
	})
	if err != nil {
		if database.IsDuplicateKey(err) {
			return fail(MsgDuplicateName), nil
		}
		return Result{}, fmt.Errorf("create %s: %w", kind, err)
	}
	return out, nil
}

// updateListing runs fn inside a transaction and maps a unique violation to duplicate_name
func (s *Service) updateListing(ctx context.Context, kind ListingKind, fn func(tx *gorm.DB) (Result, error)) (Result, error) {
	var out Result
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r, err := fn(tx)
		out = r
		return err
	})
	if err != nil {
		if database.IsDuplicateKey(err) {
			return fail(MsgDuplicateName), nil
		}
		return Result{}, fmt.Errorf("update %s: %w", kind, err)
	}
	return out, nil
}

// newSlug is the slug for a created listing
func (s *Service) newSlug(kind ListingKind, title string) string {
	slug := Slugify(title)
	if slug == "" {
		slug = FallbackSlug(kind.TypeWord(), s.now())
	}
	return slug
}

// updatedSlug recomputes the slug only when the title's slug changed,
// probing for a free candidate on conflict
func (s *Service) updatedSlug(tx *gorm.DB, kind ListingKind, id uint64, current, title string) (string, error) {
	base := Slugify(title)
	if base == "" {
		if fallbackSlugPattern.MatchString(current) && strings.HasPrefix(current, kind.TypeWord()+"-") {
			return current, nil
		}
		base = FallbackSlug(kind.TypeWord(), s.now())
	}
	if base == current {
		return current, nil
	}
	return ResolveUniqueSlug(tx, kind.Table(), base, id, s.Cfg.SlugMaxProbes)
}

// ownedBusiness loads a business owned by principal, or nil
func ownedBusiness(tx *gorm.DB, id uint64, principal string) (*models.Business, error) {
	if id == 0 {
		return nil, nil
	}
	var b models.Business
	err := tx.Where("id = ? AND owner_id = ?", id, principal).Limit(1).Find(&b).Error
	if err != nil {
		return nil, err
	}
	if b.ID == 0 {
		return nil, nil
	}
	return &b, nil
}

func (s *Service) sanitizeDescription(text string) string {
	return strings.TrimSpace(s.ugc.Sanitize(text))
}

func (s *Service) mediaURLs(keys []string) []string {
	urls := make([]string, 0, len(keys))
	for _, k := range keys {
		urls = append(urls, s.publicURL(k))
	}
	return urls
}
