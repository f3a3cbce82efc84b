package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

const pingTimeout = 2 * time.Second

// Pinger is satisfied by *pgxpool.Pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler reports whether the database is reachable.
type HealthHandler struct {
	pool Pinger
}

// NewHealthHandler creates a new HealthHandler with the given database pool.
func NewHealthHandler(pool Pinger) *HealthHandler {
	return &HealthHandler{pool: pool}
}

// Check handles GET /health. Responds 503 when the database ping fails.
func (h *HealthHandler) Check(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), pingTimeout)
	defer cancel()

	if err := h.pool.Ping(ctx); err != nil {
		requestLog(c, log.Error()).Err(err).Msg("health check failed: database unreachable")
		return respond(c, fiber.StatusServiceUnavailable, "database connection failed", fiber.Map{"status": "unhealthy"})
	}
	return respond(c, fiber.StatusOK, "healthy", fiber.Map{"status": "healthy"})
}
