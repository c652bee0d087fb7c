// authorizer.go
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

package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/localnerve/authorizer-go"
	"go.uber.org/zap"

	"github.com/localnerve/conexo-admin/internal/config"
)

const adminSecretHeader = "x-authorizer-admin-secret"

const userQuery = `query user($id: String!) {
	_user(params: { id: $id }) {
		id
		email
		given_name
		family_name
	}
}`

const deleteUserMutation = `mutation deleteUser($email: String!) {
	_delete_user(params: { email: $email }) {
		message
	}
}`

// AuthorizerProvider talks to an authorizer.dev instance
type AuthorizerProvider struct {
	client      *authorizer.AuthorizerClient
	adminSecret string
	log         *zap.Logger
}

// NewAuthorizerProvider creates the authorizer client from configuration
func NewAuthorizerProvider(cfg *config.Config, log *zap.Logger) (*AuthorizerProvider, error) {
	if cfg.AuthzURL == "" || cfg.AuthzClientID == "" {
		return nil, ErrNotConfigured
	}

	redirectURL := cfg.AuthzRedirectURL
	if redirectURL == "" {
		redirectURL = cfg.AuthzURL
	}

	log.Info("initializing authorizer",
		zap.String("authorizerURL", cfg.AuthzURL),
		zap.String("clientID", cfg.AuthzClientID),
		zap.String("redirectURL", redirectURL))

	client, err := authorizer.NewAuthorizerClient(cfg.AuthzClientID, cfg.AuthzURL, redirectURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create authorizer client: %w", err)
	}

	return &AuthorizerProvider{
		client:      client,
		adminSecret: cfg.AuthzAdminSecret,
		log:         log,
	}, nil
}

// ValidateSession validates the cookie_session value with the authorizer
func (p *AuthorizerProvider) ValidateSession(ctx context.Context, cookie string) (*Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res, err := p.client.ValidateSession(&authorizer.ValidateSessionInput{
		Cookie: cookie,
	})
	if err != nil {
		return nil, fmt.Errorf("session validation failed: %w", err)
	}
	if res == nil || !res.IsValid || res.User == nil || res.User.ID == "" {
		return nil, ErrInvalidSession
	}

	return &Session{PrincipalID: res.User.ID}, nil
}

type adminUser struct {
	ID         string  `json:"id"`
	Email      string  `json:"email"`
	GivenName  *string `json:"given_name"`
	FamilyName *string `json:"family_name"`
}

// GetProfile reads the principal's profile through the admin API
func (p *AuthorizerProvider) GetProfile(ctx context.Context, principalID string) (*Profile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if p.adminSecret == "" {
		return nil, ErrNotConfigured
	}

	raw, err := p.client.ExecuteGraphQL(&authorizer.GraphQLRequest{
		Query:     userQuery,
		Variables: map[string]interface{}{"id": principalID},
	}, p.adminHeaders())
	if err != nil {
		if isNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("profile lookup failed: %w", err)
	}

	var user adminUser
	if err := decodeField(raw, "_user", &user); err != nil {
		return nil, err
	}
	if user.ID == "" {
		return nil, ErrUserNotFound
	}

	return &Profile{
		PrincipalID: user.ID,
		Email:       user.Email,
		FirstName:   deref(user.GivenName),
		LastName:    deref(user.FamilyName),
	}, nil
}

// DeleteUser removes the principal from the authorizer. The admin API
// deletes by email, so the profile is read first.
func (p *AuthorizerProvider) DeleteUser(ctx context.Context, principalID string) error {
	profile, err := p.GetProfile(ctx, principalID)
	if errors.Is(err, ErrUserNotFound) {
		p.log.Info("identity provider user already absent", zap.String("principal", principalID))
		return nil
	}
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	_, err = p.client.ExecuteGraphQL(&authorizer.GraphQLRequest{
		Query:     deleteUserMutation,
		Variables: map[string]interface{}{"email": profile.Email},
	}, p.adminHeaders())
	if err != nil && !isNotFound(err) {
		return fmt.Errorf("provider delete failed: %w", err)
	}
	return nil
}

func (p *AuthorizerProvider) adminHeaders() map[string]string {
	return map[string]string{adminSecretHeader: p.adminSecret}
}

// decodeField extracts one top-level field of a GraphQL data payload. It
// accepts the payload with or without the "data" envelope.
func decodeField(raw []byte, field string, target interface{}) error {
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("invalid provider response: %w", err)
	}
	if data, ok := payload["data"]; ok {
		if err := json.Unmarshal(data, &payload); err != nil {
			return fmt.Errorf("invalid provider response: %w", err)
		}
	}
	value, ok := payload[field]
	if !ok || string(value) == "null" {
		return ErrUserNotFound
	}
	return json.Unmarshal(value, target)
}

func isNotFound(err error) bool {
	return strings.Contains(strings.ToLower(err.Error()), "not found")
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
