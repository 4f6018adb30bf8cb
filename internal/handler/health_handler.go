package handler

import (
	"context"
	"time"

	"academy-quiz/internal/domain"
	"academy-quiz/internal/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Pinger is satisfied by *sqlx.DB and *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthResponse reports the state of each backing dependency.
type HealthResponse struct {
	Status   string            `json:"status"`
	Services map[string]string `json:"services"`
}

// HealthHandler serves the liveness probe
type HealthHandler struct {
	db    Pinger
	cache domain.Cache
}

// NewHealthHandler creates a health handler. cache may be nil when Redis is disabled.
func NewHealthHandler(db Pinger, cache domain.Cache) *HealthHandler {
	return &HealthHandler{db: db, cache: cache}
}

// Check godoc
// @Summary Health check
// @Description Pings the database and, when configured, the cache
// @Tags health
// @Produce json
// @Success 200 {object} handler.HealthResponse
// @Failure 503 {object} handler.HealthResponse
// @Router /healthz [get]
func (h *HealthHandler) Check(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	resp := HealthResponse{Status: "ok", Services: map[string]string{}}

	if err := h.db.PingContext(ctx); err != nil {
		logger.Get().Warn("database health check failed", zap.Error(err))
		resp.Status = "degraded"
		resp.Services["database"] = "down"
	} else {
		resp.Services["database"] = "up"
	}

	if h.cache != nil {
		if err := h.cache.Ping(ctx); err != nil {
			logger.Get().Warn("cache health check failed", zap.Error(err))
			resp.Status = "degraded"
			resp.Services["cache"] = "down"
		} else {
			resp.Services["cache"] = "up"
		}
	}

	status := fiber.StatusOK
	if resp.Status != "ok" {
		status = fiber.StatusServiceUnavailable
	}
	return c.Status(status).JSON(resp)
}
