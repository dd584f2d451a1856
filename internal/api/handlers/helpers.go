package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/postpilot/internal/api/middleware"
	"github.com/maheshrc27/postpilot/internal/repository"
	"github.com/maheshrc27/postpilot/internal/service"
	"go.uber.org/zap"
)

func GetAccountID(c *fiber.Ctx) string {
	accountID, _ := c.Locals(middleware.AccountIDKey).(string)
	return accountID
}

// respondError maps service errors onto a status code. Unknown errors are
// logged and hidden behind fallback.
func respondError(c *fiber.Ctx, logger *zap.Logger, err error, fallback string) error {
	status := fiber.StatusInternalServerError
	message := fallback

	switch {
	case errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, service.ErrInvalidState):
		status, message = fiber.StatusBadRequest, err.Error()
	case errors.Is(err, repository.ErrNotFound):
		status, message = fiber.StatusNotFound, "Not found"
	case errors.Is(err, service.ErrNoInsights):
		status, message = fiber.StatusNotFound, err.Error()
	case errors.Is(err, service.ErrConflict):
		status, message = fiber.StatusConflict, err.Error()
	case errors.Is(err, service.ErrTrendsUnavailable):
		status, message = fiber.StatusBadGateway, "Trends service is unavailable"
	default:
		logger.Error(fallback, zap.String("path", c.Path()), zap.Error(err))
	}

	return c.Status(status).JSON(fiber.Map{
		"error": message,
	})
}
