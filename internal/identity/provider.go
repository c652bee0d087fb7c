package identity

import (
	"context"
	"errors"
)

var (
	ErrInvalidSession = errors.New("identity: session is not valid")
	ErrNotConfigured  = errors.New("identity: provider not configured")
	ErrUserNotFound   = errors.New("identity: user not found")
)

// Session is the result of validating a session cookie
type Session struct {
	PrincipalID string
	Email       string
}

// Profile is the best-effort user data held by the identity provider
type Profile struct {
	PrincipalID string
	Email       string
	FirstName   string
	LastName    string
}

// Provider is the external identity provider
type Provider interface {
	// ValidateSession resolves a session cookie to its principal
	ValidateSession(ctx context.Context, cookie string) (*Session, error)
	// GetProfile fetches the provider's profile for a principal
	GetProfile(ctx context.Context, principalID string) (*Profile, error)
	// DeleteUser removes the principal's account. A principal that is
	// already gone is not an error.
	DeleteUser(ctx context.Context, principalID string) error
}

// Unconfigured is the provider used when no identity provider is set up.
// Every call fails with ErrNotConfigured.
type Unconfigured struct{}

func (Unconfigured) ValidateSession(context.Context, string) (*Session, error) {
	return nil, ErrNotConfigured
}

func (Unconfigured) GetProfile(context.Context, string) (*Profile, error) {
	return nil, ErrNotConfigured
}

func (Unconfigured) DeleteUser(context.Context, string) error {
	return ErrNotConfigured
}
