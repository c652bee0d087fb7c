package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/localnerve/conexo-admin/internal/models"
	"github.com/localnerve/conexo-admin/tests/helpers"
)

func TestRequireRoleDecisions(t *testing.T) {
	t.Parallel()

	user := func(role models.Role) *models.User {
		return &models.User{PrincipalID: "p1", Email: "ana+loja@example.com", Role: role}
	}

	tests := []struct {
		name      string
		principal string
		user      *models.User
		target    models.Role
		allowed   bool
		redirect  string
		reason    DenyReason
	}{
		{name: "no session", principal: "", target: models.RoleBusiness, redirect: PathSignIn, reason: DenyUnauthenticated},
		{name: "deleted", principal: "p1", user: user(models.RoleDeleted), target: models.RoleBusiness,
			redirect: "/account/decision?principal=p1&email=ana%2Bloja%40example.com", reason: DenyDeleted},
		{name: "user on business page", principal: "p1", user: user(models.RoleUser), target: models.RoleBusiness,
			redirect: PathHome, reason: DenyRoleMismatch},
		{name: "business on user page", principal: "p1", user: user(models.RoleBusiness), target: models.RoleUser,
			redirect: PathDashboard, reason: DenyRoleMismatch},
		{name: "missing row counts as user", principal: "p1", user: nil, target: models.RoleUser, allowed: true},
		{name: "business allowed", principal: "p1", user: user(models.RoleBusiness), target: models.RoleBusiness, allowed: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			d := RequireRole(tt.principal, tt.user, tt.target)
			assert.Equal(t, tt.allowed, d.Allowed)
			assert.Equal(t, tt.redirect, d.RedirectTo)
			assert.Equal(t, tt.reason, d.Reason)

			again := RequireRole(tt.principal, tt.user, tt.target)
			assert.Equal(t, d, again)
		})
	}
}

func TestRequireAuthAllowsAnyActiveRole(t *testing.T) {
	t.Parallel()
	for _, role := range []models.Role{models.RoleUser, models.RoleBusiness} {
		d := RequireAuth("p1", &models.User{Role: role})
		assert.True(t, d.Allowed)
		assert.Equal(t, role, d.Role)
	}
}

func TestHomeFor(t *testing.T) {
	t.Parallel()
	assert.Equal(t, PathHome, HomeFor(models.RoleUser))
	assert.Equal(t, PathDashboard, HomeFor(models.RoleBusiness))
	assert.Equal(t, PathDashboard, HomeFor(models.RoleDeleted))
}

func TestCheckAccess(t *testing.T) {
	env := newTestEnv(t)
	helpers.CreateUser(t, env.db, "p1", models.RoleBusiness)

	d, err := env.svc.CheckAccess(context.Background(), "p1", models.RoleBusiness)
	require.NoError(t, err)
	assert.True(t, d.Allowed)

	d, err = env.svc.CheckAccess(context.Background(), "p1", models.RoleUser)
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Equal(t, PathDashboard, d.RedirectTo)

	d, err = env.svc.CheckAccess(context.Background(), "", "")
	require.NoError(t, err)
	assert.Equal(t, PathSignIn, d.RedirectTo)
}
