package database

import (
	"encoding/json"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/localnerve/conexo-admin/data"
	"github.com/localnerve/conexo-admin/internal/models"
)

// SeedCategories inserts the embedded business categories, skipping existing ones
func SeedCategories(db *gorm.DB) (int64, error) {
	return seedCategories(db, data.SeedCategories)
}

func seedCategories(db *gorm.DB, raw []byte) (int64, error) {
	var categories []models.Category
	if err := json.Unmarshal(raw, &categories); err != nil {
		return 0, fmt.Errorf("invalid category seed: %w", err)
	}
	if len(categories) == 0 {
		return 0, nil
	}

	result := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&categories)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to seed categories: %w", result.Error)
	}
	return result.RowsAffected, nil
}
