package middleware

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const RequestIDKey = "request_id"

// RequestLogger tags every request with an X-Request-ID and logs it once
// the handler chain returns. Query strings are left out since they can carry
// OAuth codes and session tokens. Fields are copied out of the request
// buffers, which fasthttp reuses once the handler returns.
func RequestLogger(logger *zap.Logger) fiber.Handler {
	if logger == nil {
		logger = zap.L()
	}

	return func(c *fiber.Ctx) error {
		start := time.Now()
		requestID := utils.CopyString(strings.TrimSpace(c.Get(fiber.HeaderXRequestID)))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Locals(RequestIDKey, requestID)
		c.Set(fiber.HeaderXRequestID, requestID)

		chainErr := c.Next()
		if chainErr != nil {
			// let the app error handler set the final status before logging
			if err := c.App().ErrorHandler(c, chainErr); err != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		status := c.Response().StatusCode()
		fields := []zap.Field{
			zap.String("request_id", requestID),
			zap.Int("status", status),
			zap.String("method", utils.CopyString(c.Method())),
			zap.String("path", utils.CopyString(c.Path())),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", utils.CopyString(c.IP())),
			zap.String("user_agent", utils.CopyString(c.Get(fiber.HeaderUserAgent))),
		}
		if accountID, ok := c.Locals(AccountIDKey).(string); ok {
			fields = append(fields, zap.String("account_id", accountID))
		}

		switch {
		case status >= 500:
			logger.Error("http_request", fields...)
		case status >= 400:
			logger.Warn("http_request", fields...)
		default:
			logger.Info("http_request", fields...)
		}
		return nil
	}
}
