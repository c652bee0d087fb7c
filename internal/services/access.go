// access.go
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
	"net/url"

	"github.com/localnerve/conexo-admin/internal/models"
)

// Redirect targets used by the access guard
const (
	PathSignIn          = "/sign-in"
	PathHome            = "/home"
	PathDashboard       = "/dashboard"
	PathAccountDecision = "/account/decision"
)

// DenyReason explains why a Decision is not allowed
type DenyReason string

const (
	DenyNone            DenyReason = ""
	DenyUnauthenticated DenyReason = "unauthenticated"
	DenyDeleted         DenyReason = "deleted"
	DenyRoleMismatch    DenyReason = "role_mismatch"
)

// Decision is the outcome of an access check. It is a pure value; computing
// it has no side effects.
type Decision struct {
	Allowed    bool        `json:"allowed"`
	RedirectTo string      `json:"redirectTo,omitempty"`
	Reason     DenyReason  `json:"reason,omitempty"`
	Role       models.Role `json:"role,omitempty"`
}

// HomeFor is the canonical landing page for a role
func HomeFor(role models.Role) string {
	if role == models.RoleUser {
		return PathHome
	}
	return PathDashboard
}

// DecisionPath is the account decision page for a deleted account
func DecisionPath(principal, email string) string {
	return PathAccountDecision + "?principal=" + url.QueryEscape(principal) + "&email=" + url.QueryEscape(email)
}

// RequireAuth allows any signed-in principal whose account is not deleted.
// A principal without a user row yet is treated as role user.
func RequireAuth(principal string, user *models.User) Decision {
	if principal == "" {
		return Decision{RedirectTo: PathSignIn, Reason: DenyUnauthenticated}
	}

	role := roleOf(user)
	if role == models.RoleDeleted {
		email := ""
		if user != nil {
			email = user.Email
		}
		return Decision{RedirectTo: DecisionPath(principal, email), Reason: DenyDeleted, Role: role}
	}

	return Decision{Allowed: true, Role: role}
}

// RequireRole is RequireAuth plus an exact role match. A mismatch redirects
// to the home of the role the user actually has.
func RequireRole(principal string, user *models.User, target models.Role) Decision {
	d := RequireAuth(principal, user)
	if !d.Allowed {
		return d
	}
	if d.Role != target {
		return Decision{RedirectTo: HomeFor(d.Role), Reason: DenyRoleMismatch, Role: d.Role}
	}
	return d
}

func roleOf(user *models.User) models.Role {
	if user == nil || user.Role == "" {
		return models.RoleUser
	}
	return user.Role
}

// FindUser loads the user for principal without creating it. A missing row is (nil, nil).
func (s *Service) FindUser(ctx context.Context, principal string) (*models.User, error) {
	if principal == "" {
		return nil, nil
	}
	var user models.User
	err := s.DB.WithContext(ctx).Where("principal_id = ?", principal).Limit(1).Find(&user).Error
	if err != nil {
		return nil, err
	}
	if user.ID == 0 {
		return nil, nil
	}
	return &user, nil
}

// CheckAccess evaluates the guard for principal. An empty target role means RequireAuth.
func (s *Service) CheckAccess(ctx context.Context, principal string, target models.Role) (Decision, error) {
	user, err := s.FindUser(ctx, principal)
	if err != nil {
		return Decision{}, err
	}
	if target == "" {
		return RequireAuth(principal, user), nil
	}
	return RequireRole(principal, user, target), nil
}
