package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sqlizer/sqlizer/internal/config"
	"github.com/sqlizer/sqlizer/internal/services"
	"gorm.io/gorm"
)

// HealthHandler reports service liveness.
type HealthHandler struct {
	DB  *gorm.DB
	Cfg *config.Config
}

// GetHealth handles GET /health
// @Summary Service health, including database reachability
// @Tags Health
// @Produce json
// @Success 200 {object} services.HealthCheckResult
// @Failure 503 {object} services.HealthCheckResult
// @Router /health [get]
func (h *HealthHandler) GetHealth(c *fiber.Ctx) error {
	result := services.HealthCheck(h.Cfg, h.DB)
	status := fiber.StatusOK
	if result.Status != "healthy" {
		status = fiber.StatusServiceUnavailable
	}
	return c.Status(status).JSON(result)
}
