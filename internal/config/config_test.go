package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ENV_FILE", t.TempDir()+"/missing.env")
	t.Setenv("DB_TYPE", "sqlite")
	t.Setenv("DB_APP_DATABASE", ":memory:")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, 3, cfg.ListingLimitPerType)
	assert.Equal(t, 50, cfg.SlugMaxProbes)
	assert.Equal(t, 720*time.Hour, cfg.AccountDeletionGrace)
	assert.Equal(t, 250*time.Millisecond, cfg.ResetResweepDelay)
	assert.Equal(t, []string{"users/", "business/", "events/", "jobs/"}, cfg.StorageAllowedPrefixes)
	assert.Equal(t, "conexo.events", cfg.AMQPExchange)
	assert.False(t, cfg.IsProduction())
}

func TestLoadRequiresDatabase(t *testing.T) {
	t.Setenv("ENV_FILE", t.TempDir()+"/missing.env")
	t.Setenv("DB_TYPE", "postgres")
	t.Setenv("DB_APP_DATABASE", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_APP_DATABASE")
}

func TestLoadRequiresUserForServerDatabases(t *testing.T) {
	t.Setenv("ENV_FILE", t.TempDir()+"/missing.env")
	t.Setenv("DB_TYPE", "postgres")
	t.Setenv("DB_APP_DATABASE", "conexo")
	t.Setenv("DB_APP_USER", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_APP_USER")
}

func TestIsAdmin(t *testing.T) {
	cfg := &Config{AdminPrincipalIDs: []string{"admin-1", " admin-2 "}}

	assert.True(t, cfg.IsAdmin("admin-1"))
	assert.True(t, cfg.IsAdmin("admin-2"))
	assert.False(t, cfg.IsAdmin("user-1"))
	assert.False(t, cfg.IsAdmin(""))
}
