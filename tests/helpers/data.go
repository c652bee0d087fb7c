// data.go
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

package helpers

import (
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/localnerve/conexo-admin/internal/config"
	"github.com/localnerve/conexo-admin/internal/database"
	"github.com/localnerve/conexo-admin/internal/models"
)

// NewTestDB creates a migrated in-memory SQLite database for testing.
// The pool holds one connection so every query sees the same database.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get test database handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	return db
}

// TestConfig returns a configuration with the production defaults and a
// storage setup pointing at a test CDN
func TestConfig() *config.Config {
	return &config.Config{
		AppEnv:                 "test",
		DBType:                 "sqlite",
		DBAppDatabase:          ":memory:",
		StorageBucket:          "conexo-media",
		StoragePublicBaseURL:   "https://cdn.conexo.test",
		StorageAllowedHosts:    []string{"cdn.conexo.test", "storage.googleapis.com"},
		StorageAllowedPrefixes: []string{"users/", "business/", "events/", "jobs/"},
		AdminPrincipalIDs:      []string{"admin-1"},
		SweepTokenSecret:       "sweep-secret",
		AccountDeletionGrace:   720 * time.Hour,
		ResetResweepAttempts:   3,
		ResetResweepDelay:      time.Millisecond,
		ListingLimitPerType:    3,
		SlugMaxProbes:          50,
		AMQPExchange:           "conexo.events",
		EmailFrom:              "no-reply@conexo.test",
		LogLevel:               "error",
	}
}

// CreateUser inserts a user row for principal with role
func CreateUser(t *testing.T, db *gorm.DB, principal string, role models.Role) *models.User {
	t.Helper()
	user := models.User{
		PrincipalID: principal,
		Email:       principal + "@example.com",
		FirstName:   "Test",
		LastName:    "User",
		Role:        role,
	}
	if role == models.RoleDeleted {
		requested := time.Now().UTC().Add(-time.Hour)
		user.DeletionRequestedAt = &requested
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}
	return &user
}

// CreateCategory inserts a category
func CreateCategory(t *testing.T, db *gorm.DB, name, slug string) *models.Category {
	t.Helper()
	category := models.Category{Name: name, Slug: slug}
	if err := db.Create(&category).Error; err != nil {
		t.Fatalf("Failed to create category: %v", err)
	}
	return &category
}

// CreateBusiness inserts a business owned by owner, creating a category if none exists
func CreateBusiness(t *testing.T, db *gorm.DB, owner, name, slug string) *models.Business {
	t.Helper()
	var category models.Category
	if err := db.Order("id").Limit(1).Find(&category).Error; err != nil {
		t.Fatalf("Failed to load category: %v", err)
	}
	if category.ID == 0 {
		category = *CreateCategory(t, db, "Outros", "outros")
	}

	business := models.Business{
		OwnerID:    owner,
		Name:       name,
		Slug:       slug,
		CategoryID: category.ID,
		Published:  true,
	}
	if err := db.Create(&business).Error; err != nil {
		t.Fatalf("Failed to create business: %v", err)
	}
	return &business
}

// CreateEvent inserts an event owned by owner under organizer
func CreateEvent(t *testing.T, db *gorm.DB, owner string, organizerID uint64, title, slug string) *models.Event {
	t.Helper()
	event := models.Event{
		OwnerID:     owner,
		OrganizerID: organizerID,
		Title:       title,
		Slug:        slug,
		StartsAt:    time.Date(2024, 11, 20, 11, 0, 0, 0, time.UTC),
		Status:      models.StatusPublished,
		Active:      true,
	}
	if err := db.Create(&event).Error; err != nil {
		t.Fatalf("Failed to create event: %v", err)
	}
	return &event
}

// CreateJob inserts a job owned by owner under contractor
func CreateJob(t *testing.T, db *gorm.DB, owner string, contractorID uint64, title, slug string) *models.Job {
	t.Helper()
	job := models.Job{
		OwnerID:      owner,
		ContractorID: contractorID,
		Title:        title,
		Slug:         slug,
		Status:       models.StatusPublished,
		Active:       true,
	}
	if err := db.Create(&job).Error; err != nil {
		t.Fatalf("Failed to create job: %v", err)
	}
	return &job
}

// CreateReview inserts a review of a listing
func CreateReview(t *testing.T, db *gorm.DB, itemType models.ReviewItemType, itemID uint64, author string) *models.Review {
	t.Helper()
	review := models.Review{
		ItemType: itemType,
		ItemID:   itemID,
		AuthorID: author,
		Rating:   5,
		Comment:  "Great place",
	}
	if err := db.Create(&review).Error; err != nil {
		t.Fatalf("Failed to create review: %v", err)
	}
	return &review
}

// CountRows counts the rows of model matching query
func CountRows(t *testing.T, db *gorm.DB, model interface{}, query string, args ...interface{}) int64 {
	t.Helper()
	var count int64
	if err := db.Model(model).Where(query, args...).Count(&count).Error; err != nil {
		t.Fatalf("Failed to count rows: %v", err)
	}
	return count
}
