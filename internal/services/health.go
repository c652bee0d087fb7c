package services

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/localnerve/conexo-admin/internal/config"
	"github.com/localnerve/conexo-admin/internal/utils"
)

// HealthCheckResult represents the result of a health check
type HealthCheckResult struct {
	Status       string            `json:"status"`
	Database     string            `json:"database"`
	Authorizer   string            `json:"authorizer"`
	Storage      string            `json:"storage"`
	Messaging    string            `json:"messaging"`
	Details      map[string]string `json:"details,omitempty"`
	ErrorMessage string            `json:"error,omitempty"`
}

func (r *HealthCheckResult) fail(component, message string, err error) {
	r.Status = "unhealthy"
	r.Details[component+"_error"] = err.Error()
	if r.ErrorMessage == "" {
		r.ErrorMessage = fmt.Sprintf("%s: %v", message, err)
	} else {
		r.ErrorMessage += fmt.Sprintf("; %s: %v", message, err)
	}
}

// HealthCheck performs a comprehensive health check of the service.
// Optional collaborators that are not configured report "disabled".
func HealthCheck(cfg *config.Config, db *gorm.DB, log *zap.Logger) HealthCheckResult {
	if log == nil {
		log = zap.NewNop()
	}
	result := HealthCheckResult{
		Status:     "healthy",
		Authorizer: "disabled",
		Storage:    "disabled",
		Messaging:  "disabled",
		Details:    make(map[string]string),
	}

	sqlDB, err := db.DB()
	if err != nil {
		result.Database = "error"
		result.fail("database", "Database connection error", err)
		log.Warn("health check failed", zap.String("component", "database"), zap.Error(err))
	} else if err := sqlDB.Ping(); err != nil {
		result.Database = "unreachable"
		result.fail("database_ping", "Database ping failed", err)
		log.Warn("health check failed", zap.String("component", "database"), zap.Error(err))
	} else {
		result.Database = "ok"
		result.Details["database_type"] = cfg.DBType
		result.Details["database_name"] = cfg.DBAppDatabase
	}

	if cfg.AuthzURL != "" {
		if err := utils.PingAuthorizer(cfg.AuthzURL); err != nil {
			result.Authorizer = "unreachable"
			result.fail("authorizer", "Authorizer ping failed", err)
			log.Warn("health check failed", zap.String("component", "authorizer"), zap.Error(err))
		} else {
			result.Authorizer = "ok"
			result.Details["authorizer_url"] = cfg.AuthzURL
		}
	}

	if cfg.StorageBucket != "" {
		result.Storage = "configured"
		result.Details["storage_bucket"] = cfg.StorageBucket
	}

	if cfg.AMQPURL != "" {
		if err := utils.PingBroker(cfg.AMQPURL); err != nil {
			result.Messaging = "unreachable"
			result.fail("messaging", "Broker ping failed", err)
			log.Warn("health check failed", zap.String("component", "messaging"), zap.Error(err))
		} else {
			result.Messaging = "ok"
		}
	}

	if result.Status == "healthy" {
		log.Debug("health check passed")
	}
	return result
}
