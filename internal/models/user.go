// user.go
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

package models

import (
	"strings"
	"time"
)

// Role is the access role of a user account
type Role string

const (
	RoleUser     Role = "user"
	RoleBusiness Role = "business"
	RoleDeleted  Role = "deleted"
)

// Valid reports whether r is a known role
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleBusiness, RoleDeleted:
		return true
	}
	return false
}

// PlaceholderEmailDomain marks emails synthesized for principals without a provider profile
const PlaceholderEmailDomain = "@placeholder.local"

// User maps an identity provider principal to the internal account record
type User struct {
	ID                  uint64     `gorm:"primaryKey;autoIncrement" json:"id"`
	PrincipalID         string     `gorm:"size:128;not null;uniqueIndex:idx_users_principal" json:"principalId"`
	Email               string     `gorm:"size:255;not null" json:"email"`
	FirstName           string     `gorm:"size:120" json:"firstName"`
	LastName            string     `gorm:"size:120" json:"lastName"`
	Phone               string     `gorm:"size:32" json:"phone"`
	Role                Role       `gorm:"size:16;not null;default:user;index" json:"role"`
	DeletionRequestedAt *time.Time `json:"deletionRequestedAt,omitempty"`
	OnboardingCompleted bool       `gorm:"not null;default:false" json:"onboardingCompleted"`
	AvatarKey           string     `gorm:"size:512" json:"avatarKey,omitempty"`
	CreatedAt           time.Time  `json:"createdAt"`
	UpdatedAt           time.Time  `json:"updatedAt"`
}

// TableName overrides the table name for User
func (User) TableName() string {
	return "users"
}

// HasPlaceholderEmail reports whether the stored email needs repair from the provider profile
func (u *User) HasPlaceholderEmail() bool {
	return !strings.Contains(u.Email, "@") || strings.HasSuffix(strings.ToLower(u.Email), PlaceholderEmailDomain)
}

// PlaceholderEmail returns the deterministic fallback email for a principal
func PlaceholderEmail(principalID string) string {
	return principalID + PlaceholderEmailDomain
}

// PurgedPrincipal is the tombstone written by a hard reset. A tombstoned
// principal is never recreated by the identity resolver.
type PurgedPrincipal struct {
	PrincipalID string    `gorm:"primaryKey;size:128"`
	PurgedAt    time.Time `gorm:"not null"`
}

// TableName overrides the table name for PurgedPrincipal
func (PurgedPrincipal) TableName() string {
	return "purged_principals"
}
