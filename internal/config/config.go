// config.go
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

package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Port   string `envconfig:"PORT" default:"3000"`
	AppEnv string `envconfig:"APP_ENV" default:"development"`

	// Database configuration
	DBType               string `envconfig:"DB_TYPE" default:"postgres"` // mysql, mariadb, postgres, sqlite, sqlite-pure, sqlserver
	DBHost               string `envconfig:"DB_HOST" default:"localhost"`
	DBPort               string `envconfig:"DB_PORT" default:"5432"`
	DBAppDatabase        string `envconfig:"DB_APP_DATABASE"`
	DBAppUser            string `envconfig:"DB_APP_USER"`
	DBAppPassword        string `envconfig:"DB_APP_PASSWORD"`
	DBAppConnectionLimit int    `envconfig:"DB_APP_CONNECTION_LIMIT" default:"5"`

	// Authorizer configuration
	AuthzURL         string `envconfig:"AUTHZ_URL"`
	AuthzClientID    string `envconfig:"AUTHZ_CLIENT_ID"`
	AuthzAdminSecret string `envconfig:"AUTHZ_ADMIN_SECRET"`
	AuthzRedirectURL string `envconfig:"AUTHZ_REDIRECT_URL"`

	// Object storage
	StorageBucket          string   `envconfig:"STORAGE_BUCKET"`
	StoragePublicBaseURL   string   `envconfig:"STORAGE_PUBLIC_BASE_URL"`
	StorageAllowedHosts    []string `envconfig:"STORAGE_ALLOWED_HOSTS"`
	StorageAllowedPrefixes []string `envconfig:"STORAGE_ALLOWED_PREFIXES" default:"users/,business/,events/,jobs/"`
	StorageEndpoint        string   `envconfig:"STORAGE_ENDPOINT"`
	StorageCredentialsFile string   `envconfig:"STORAGE_CREDENTIALS_FILE"`

	// Access control
	AdminPrincipalIDs []string `envconfig:"ADMIN_PRINCIPAL_IDS"`
	SweepTokenSecret  string   `envconfig:"SWEEP_TOKEN_SECRET"`

	// Account lifecycle
	AccountDeletionGrace time.Duration `envconfig:"ACCOUNT_DELETION_GRACE" default:"720h"`
	ResetResweepAttempts int           `envconfig:"RESET_RESWEEP_ATTEMPTS" default:"3"`
	ResetResweepDelay    time.Duration `envconfig:"RESET_RESWEEP_DELAY" default:"250ms"`

	// Listings
	ListingLimitPerType int `envconfig:"LISTING_LIMIT_PER_TYPE" default:"3"`
	SlugMaxProbes       int `envconfig:"SLUG_MAX_PROBES" default:"50"`

	// Messaging
	AMQPURL      string `envconfig:"AMQP_URL"`
	AMQPExchange string `envconfig:"AMQP_EXCHANGE" default:"conexo.events"`
	EmailFrom    string `envconfig:"EMAIL_FROM" default:"no-reply@conexo.local"`

	// Logging
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	LogDev   bool   `envconfig:"LOG_DEV" default:"false"`
	LogFile  string `envconfig:"LOG_FILE"`
}

// Load loads configuration from an optional .env file and the environment
func Load() (*Config, error) {
	envFile := os.Getenv("ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the settings the process cannot start without.
// Optional integrations fail per operation instead.
func (c *Config) Validate() error {
	if c.DBAppDatabase == "" {
		return fmt.Errorf("DB_APP_DATABASE is required")
	}
	if !c.IsSQLite() && c.DBAppUser == "" {
		return fmt.Errorf("DB_APP_USER is required")
	}
	if c.ListingLimitPerType < 1 {
		return fmt.Errorf("LISTING_LIMIT_PER_TYPE must be positive")
	}
	if c.SlugMaxProbes < 1 {
		return fmt.Errorf("SLUG_MAX_PROBES must be positive")
	}
	if c.ResetResweepAttempts < 0 {
		return fmt.Errorf("RESET_RESWEEP_ATTEMPTS must not be negative")
	}
	return nil
}

// IsProduction reports whether internal error details must be hidden
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.AppEnv, "production")
}

// IsSQLite reports whether the configured database is a SQLite file
func (c *Config) IsSQLite() bool {
	return c.DBType == "sqlite" || c.DBType == "sqlite-pure"
}

// IsAdmin reports whether the principal is on the administrator allow-list
func (c *Config) IsAdmin(principal string) bool {
	if principal == "" {
		return false
	}
	for _, id := range c.AdminPrincipalIDs {
		if strings.TrimSpace(id) == principal {
			return true
		}
	}
	return false
}
