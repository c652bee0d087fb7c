package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/localnerve/conexo-admin/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, AutoMigrate(db))
	return db
}

func TestSeedCategoriesIsRepeatable(t *testing.T) {
	db := setupTestDB(t)

	_, err := SeedCategories(db)
	require.NoError(t, err)

	var first int64
	require.NoError(t, db.Model(&models.Category{}).Count(&first).Error)
	assert.Greater(t, first, int64(0))

	_, err = SeedCategories(db)
	require.NoError(t, err)

	var second int64
	require.NoError(t, db.Model(&models.Category{}).Count(&second).Error)
	assert.Equal(t, first, second)
}

func TestSeedCategoriesRejectsInvalidJSON(t *testing.T) {
	db := setupTestDB(t)
	_, err := seedCategories(db, []byte("{"))
	assert.Error(t, err)
}

func TestDuplicateSlugIsDetected(t *testing.T) {
	db := setupTestDB(t)

	require.NoError(t, db.Create(&models.Category{Name: "A", Slug: "a"}).Error)
	err := db.Create(&models.Category{Name: "B", Slug: "a"}).Error
	require.Error(t, err)
	assert.True(t, IsDuplicateKey(err))
}

func TestSupportsRowLocks(t *testing.T) {
	assert.False(t, SupportsRowLocks(setupTestDB(t)))
}
