package middleware

import (
	"strconv"
	"time"

	"academy-quiz/internal/logger"
	"academy-quiz/internal/metrics"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// RequestLogger logs each request and records it in m. m may be nil.
// Errors are rendered through the app's ErrorHandler first so the logged status is final.
func RequestLogger(m *metrics.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		m.RequestStarted()
		defer m.RequestFinished()

		if err := c.Next(); err != nil {
			if handlerErr := c.App().ErrorHandler(c, err); handlerErr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		elapsed := time.Since(start)
		status := c.Response().StatusCode()
		route := c.Route().Path
		m.ObserveRequest(c.Method(), route, strconv.Itoa(status), elapsed)

		fields := []zap.Field{
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.String("route", route),
			zap.Int("status", status),
			zap.Duration("latency", elapsed),
			zap.String("ip", c.IP()),
		}
		if userID, ok := c.Locals(UserIDKey).(string); ok {
			fields = append(fields, zap.String("user_id", userID))
		}
		if status >= fiber.StatusInternalServerError {
			logger.Get().Error("request", fields...)
		} else {
			logger.Get().Info("request", fields...)
		}
		return nil
	}
}
