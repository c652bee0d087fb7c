// service.go
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
	"errors"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/localnerve/conexo-admin/internal/config"
	"github.com/localnerve/conexo-admin/internal/events"
	"github.com/localnerve/conexo-admin/internal/identity"
	"github.com/localnerve/conexo-admin/internal/storage"
)

var (
	ErrUnauthenticated  = errors.New("services: unauthenticated")
	ErrPrincipalPurged  = errors.New("services: principal was purged")
	ErrUserNotFound     = errors.New("services: user not found")
	ErrNotDeleted       = errors.New("services: account is not pending deletion")
	ErrAccountDeleted   = errors.New("services: account is pending deletion")
	ErrStorageCleanup   = errors.New("services: storage cleanup failed")
	ErrProviderDelete   = errors.New("services: identity provider deletion failed")
	ErrResidualUsers    = errors.New("services: user rows remain after purge")
	ErrUnknownKind      = errors.New("services: unknown listing kind")
	ErrModerationTarget = errors.New("services: nothing to moderate")
)

// Message keys returned in Result.Error
const (
	MsgUserResolve       = "error.user_resolve"
	MsgLimitReached      = "listing.limit_reached"
	MsgDuplicateName     = "listing.duplicate_name"
	MsgListingNotFound   = "listing.not_found"
	MsgInvalid           = "listing.invalid"
	MsgCategoryNotFound  = "business.category_not_found"
	MsgOrganizerNotFound = "event.organizer_not_found"
	MsgContractorMissing = "job.contractor_not_found"
	MsgRequired          = "validation.required"
	MsgTooLong           = "validation.too_long"
	MsgInvalidDate       = "validation.invalid_date"
	MsgInvalidTime       = "validation.invalid_time"
	MsgEndBeforeStart    = "validation.end_before_start"
	MsgInvalidContact    = "validation.invalid_contact"
	MsgInvalidEmail      = "validation.invalid_email"
	MsgReviewNotFound    = "review.not_found"
	MsgReviewInvalidBody = "review.invalid_body"
	MsgSupportInvalid    = "support.invalid"
	MsgAlreadyBusiness   = "account.already_business"
)

// Result is the outcome of a workflow. Expected business failures are
// reported here rather than as errors; Error holds a message key and
// Fields maps input fields to message keys.
type Result struct {
	Success bool              `json:"success"`
	ID      uint64            `json:"id,omitempty"`
	Error   string            `json:"error,omitempty"`
	Args    []any             `json:"-"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func ok(id uint64) Result {
	return Result{Success: true, ID: id}
}

func fail(key string, args ...any) Result {
	return Result{Error: key, Args: args}
}

func invalid(fields map[string]string) Result {
	return Result{Error: MsgInvalid, Fields: fields}
}

// Service carries the collaborators shared by every workflow
type Service struct {
	DB       *gorm.DB
	Cfg      *config.Config
	Identity identity.Provider
	Store    storage.ObjectStore
	Events   events.Publisher
	Log      *zap.Logger
	Metrics  *Metrics
	Now      func() time.Time

	ugc    *bluemonday.Policy
	strict *bluemonday.Policy
}

// New wires a Service. Nil collaborators are replaced with inert defaults.
func New(db *gorm.DB, cfg *config.Config, idp identity.Provider, store storage.ObjectStore, pub events.Publisher, log *zap.Logger, metrics *Metrics) *Service {
	if idp == nil {
		idp = identity.Unconfigured{}
	}
	if store == nil {
		store = storage.Unconfigured{}
	}
	if pub == nil {
		pub = events.NopPublisher{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		DB:       db,
		Cfg:      cfg,
		Identity: idp,
		Store:    store,
		Events:   pub,
		Log:      log,
		Metrics:  metrics,
		Now:      func() time.Time { return time.Now().UTC() },
		ugc:      bluemonday.UGCPolicy(),
		strict:   bluemonday.StrictPolicy(),
	}
}

func (s *Service) now() time.Time {
	if s.Now == nil {
		return time.Now().UTC()
	}
	return s.Now().UTC()
}

func (s *Service) keyPolicy() storage.KeyPolicy {
	return storage.KeyPolicy{
		AllowedHosts:    s.Cfg.StorageAllowedHosts,
		AllowedPrefixes: s.Cfg.StorageAllowedPrefixes,
		Bucket:          s.Cfg.StorageBucket,
	}
}

func (s *Service) publicURL(key string) string {
	return storage.PublicURL(s.Cfg.StoragePublicBaseURL, key)
}
