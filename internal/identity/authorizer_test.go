package identity

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/localnerve/conexo-admin/internal/config"
)

func TestDecodeField(t *testing.T) {
	var user adminUser

	require.NoError(t, decodeField([]byte(`{"_user":{"id":"p1","email":"a@b.c","given_name":"Ana"}}`), "_user", &user))
	assert.Equal(t, "p1", user.ID)
	assert.Equal(t, "Ana", deref(user.GivenName))
	assert.Equal(t, "", deref(user.FamilyName))

	user = adminUser{}
	require.NoError(t, decodeField([]byte(`{"data":{"_user":{"id":"p2"}}}`), "_user", &user))
	assert.Equal(t, "p2", user.ID)
}

func TestDecodeFieldMissing(t *testing.T) {
	var user adminUser
	assert.ErrorIs(t, decodeField([]byte(`{"_user":null}`), "_user", &user), ErrUserNotFound)
	assert.ErrorIs(t, decodeField([]byte(`{}`), "_user", &user), ErrUserNotFound)
	assert.Error(t, decodeField([]byte(`not json`), "_user", &user))
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, isNotFound(errors.New("User Not Found")))
	assert.False(t, isNotFound(errors.New("unauthorized")))
}

func TestNewAuthorizerProviderRequiresConfig(t *testing.T) {
	_, err := NewAuthorizerProvider(&config.Config{}, zap.NewNop())
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestUnconfigured(t *testing.T) {
	var p Provider = Unconfigured{}
	ctx := context.Background()

	_, err := p.ValidateSession(ctx, "cookie")
	assert.ErrorIs(t, err, ErrNotConfigured)
	_, err = p.GetProfile(ctx, "p1")
	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.ErrorIs(t, p.DeleteUser(ctx, "p1"), ErrNotConfigured)
}
