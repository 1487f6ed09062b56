package services

import (
	"fmt"
	"log"
	"time"

	"github.com/sqlizer/sqlizer/internal/config"
	"github.com/sqlizer/sqlizer/internal/utils"
	"gorm.io/gorm"
)

// mailerPingTimeout bounds the SMTP reachability probe so a slow mail
// relay cannot stall the health endpoint.
const mailerPingTimeout = 5 * time.Second

// HealthCheckResult represents the result of a health check
type HealthCheckResult struct {
	Status       string            `json:"status"`
	Database     string            `json:"database"`
	Mailer       string            `json:"mailer"`
	Details      map[string]string `json:"details,omitempty"`
	ErrorMessage string            `json:"error,omitempty"`
}

// HealthCheck performs a health check of the service
func HealthCheck(cfg *config.Config, db *gorm.DB) HealthCheckResult {
	result := HealthCheckResult{
		Status:  "healthy",
		Details: make(map[string]string),
	}

	// Check database connectivity
	sqlDB, err := db.DB()
	if err != nil {
		result.Status = "unhealthy"
		result.Database = "error"
		result.Details["database_error"] = err.Error()
		result.ErrorMessage = fmt.Sprintf("Database connection error: %v", err)
		log.Printf("Health check failed - database connection: %v", err)
	} else {
		if err := sqlDB.Ping(); err != nil {
			result.Status = "unhealthy"
			result.Database = "unreachable"
			result.Details["database_ping_error"] = err.Error()
			result.ErrorMessage = fmt.Sprintf("Database ping failed: %v", err)
			log.Printf("Health check failed - database ping: %v", err)
		} else {
			result.Database = "ok"
			result.Details["database_type"] = cfg.DBType
			result.Details["database_name"] = cfg.DBDatabase
		}
	}

	// Check mail relay connectivity (password reset delivery)
	if cfg.SMTPHost == "" {
		result.Mailer = "not_configured"
	} else {
		smtpURL := fmt.Sprintf("smtp://%s:%d", cfg.SMTPHost, cfg.SMTPPort)
		if err := utils.PingService(smtpURL, mailerPingTimeout); err != nil {
			result.Status = "unhealthy"
			result.Mailer = "unreachable"
			result.Details["mailer_error"] = err.Error()
			if result.ErrorMessage == "" {
				result.ErrorMessage = fmt.Sprintf("Mailer ping failed: %v", err)
			} else {
				result.ErrorMessage += fmt.Sprintf("; Mailer ping failed: %v", err)
			}
			log.Printf("Health check failed - mailer ping: %v", err)
		} else {
			result.Mailer = "ok"
			result.Details["mailer_host"] = cfg.SMTPHost
		}
	}

	if result.Status == "healthy" {
		log.Println("Health check passed - all systems operational")
	}

	return result
}
