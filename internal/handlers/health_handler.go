package handlers

import (
	"context"
	"time"

	"orderapi/internal/database"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// APIVersion is reported by the root endpoint.
const APIVersion = 1

// HealthHandler serves the unauthenticated root and health endpoints.
type HealthHandler struct {
	db          *gorm.DB
	serviceName string
}

func NewHealthHandler(db *gorm.DB, serviceName string) *HealthHandler {
	return &HealthHandler{db: db, serviceName: serviceName}
}

func (h *HealthHandler) RegisterRoutes(app fiber.Router) {
	app.Get("/", h.HandleRoot)
	app.Get("/api/health", h.HandleHealth)
}

func (h *HealthHandler) HandleRoot(c *fiber.Ctx) error {
	return ok(c, fiber.StatusOK, fiber.Map{
		"service": h.serviceName,
		"version": APIVersion,
	})
}

// HandleHealth reports 503 when the database does not answer.
func (h *HealthHandler) HandleHealth(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	status, dbState, code := "ok", "up", fiber.StatusOK
	if err := database.Ping(ctx, h.db); err != nil {
		log.Error().Err(err).Msg("Health check: database unreachable")
		status, dbState, code = "degraded", "down", fiber.StatusServiceUnavailable
	}
	return ok(c, code, fiber.Map{
		"status":   status,
		"time":     time.Now().UTC().Format(time.RFC3339),
		"database": dbState,
	})
}
