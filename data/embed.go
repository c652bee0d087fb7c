package data

import (
	_ "embed"
)

// SeedCategories is the JSON list of business categories loaded at startup
//
//go:embed seed/categories.json
var SeedCategories []byte
