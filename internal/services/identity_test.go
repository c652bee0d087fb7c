package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"

	"github.com/localnerve/conexo-admin/internal/models"
	"github.com/localnerve/conexo-admin/tests/helpers"
)

func TestResolveOrCreateUserCreatesFromProfile(t *testing.T) {
	env := newTestEnv(t)
	env.idp.SetProfile("p1", "ana@example.com", "Ana", "Souza")

	user, err := env.svc.ResolveOrCreateUser(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", user.Email)
	assert.Equal(t, "Ana", user.FirstName)
	assert.Equal(t, models.RoleUser, user.Role)

	again, err := env.svc.ResolveOrCreateUser(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, user.ID, again.ID)
	assert.EqualValues(t, 1, helpers.CountRows(t, env.db, &models.User{}, "principal_id = ?", "p1"))
}

func TestResolveOrCreateUserFallsBackToPlaceholder(t *testing.T) {
	env := newTestEnv(t)
	env.idp.GetErr = errors.New("provider down")

	user, err := env.svc.ResolveOrCreateUser(context.Background(), "p2")
	require.NoError(t, err)
	assert.Equal(t, "p2@placeholder.local", user.Email)
	assert.True(t, user.HasPlaceholderEmail())
}

func TestResolveOrCreateUserHealsPlaceholderEmail(t *testing.T) {
	env := newTestEnv(t)

	user, err := env.svc.ResolveOrCreateUser(context.Background(), "p3")
	require.NoError(t, err)
	require.True(t, user.HasPlaceholderEmail())

	env.idp.SetProfile("p3", "real@example.com", "Real", "Person")
	healed, err := env.svc.ResolveOrCreateUser(context.Background(), "p3")
	require.NoError(t, err)
	assert.Equal(t, "real@example.com", healed.Email)

	var stored models.User
	require.NoError(t, env.db.Where("principal_id = ?", "p3").First(&stored).Error)
	assert.Equal(t, "real@example.com", stored.Email)
}

func TestResolveOrCreateUserKeepsRealEmail(t *testing.T) {
	env := newTestEnv(t)
	helpers.CreateUser(t, env.db, "p4", models.RoleBusiness)
	env.idp.SetProfile("p4", "other@example.com", "", "")

	user, err := env.svc.ResolveOrCreateUser(context.Background(), "p4")
	require.NoError(t, err)
	assert.Equal(t, "p4@example.com", user.Email)
	assert.Zero(t, env.idp.Lookups)
}

func TestResolveOrCreateUserRefusesPurgedPrincipal(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.db.Create(&models.PurgedPrincipal{PrincipalID: "gone"}).Error)

	_, err := env.svc.ResolveOrCreateUser(context.Background(), "gone")
	assert.ErrorIs(t, err, ErrPrincipalPurged)
	assert.Zero(t, helpers.CountRows(t, env.db, &models.User{}, "principal_id = ?", "gone"))
}

// tombstoneOnCreate commits a tombstone for principal right after its user
// row is inserted, as a concurrent hard reset would
func tombstoneOnCreate(t *testing.T, db *gorm.DB, principal string) {
	t.Helper()
	require.NoError(t, db.Callback().Create().After("gorm:create").Register("test:tombstone", func(tx *gorm.DB) {
		if tx.Statement.Table == "users" {
			tx.Session(&gorm.Session{NewDB: true}).Create(&models.PurgedPrincipal{PrincipalID: principal})
		}
	}))
}

func TestResolveOrCreateUserLosesTombstoneRace(t *testing.T) {
	env := newTestEnv(t)
	tombstoneOnCreate(t, env.db, "racer")

	_, err := env.svc.ResolveOrCreateUser(context.Background(), "racer")
	assert.ErrorIs(t, err, ErrPrincipalPurged)
	assert.Zero(t, helpers.CountRows(t, env.db, &models.User{}, "principal_id = ?", "racer"))
}

func TestResolveOrCreateUserLogsFailedCleanup(t *testing.T) {
	env := newTestEnv(t)
	core, logs := observer.New(zapcore.ErrorLevel)
	env.svc.Log = zap.New(core)
	tombstoneOnCreate(t, env.db, "racer")
	require.NoError(t, env.db.Callback().Delete().Before("gorm:delete").Register("test:fail", func(tx *gorm.DB) {
		if tx.Statement.Table == "users" {
			_ = tx.AddError(errors.New("database is locked"))
		}
	}))

	_, err := env.svc.ResolveOrCreateUser(context.Background(), "racer")
	assert.ErrorIs(t, err, ErrPrincipalPurged)

	entries := logs.FilterMessage("purged user cleanup failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "racer", entries[0].ContextMap()["principal"])
	assert.Equal(t, "database is locked", entries[0].ContextMap()["error"])
}

func TestResolveOrCreateUserRequiresPrincipal(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.svc.ResolveOrCreateUser(context.Background(), "")
	assert.ErrorIs(t, err, ErrUnauthenticated)
}
