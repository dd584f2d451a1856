package handlers

import (
	"io"

	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/postpilot/internal/service"
	"go.uber.org/zap"
)

const maxAnalyticsFileSize = 10 << 20

type AnalyticsHandler struct {
	s      service.AnalyticsService
	logger *zap.Logger
}

func NewAnalyticsHandler(service service.AnalyticsService, logger *zap.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{s: service, logger: logger}
}

func (h *AnalyticsHandler) Upload(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("analyticsFile")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "No file uploaded",
		})
	}
	if fileHeader.Size > maxAnalyticsFileSize {
		return c.Status(fiber.StatusRequestEntityTooLarge).JSON(fiber.Map{
			"error": "File is too large",
		})
	}

	file, err := fileHeader.Open()
	if err != nil {
		return respondError(c, h.logger, err, "Unable to read file")
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		return respondError(c, h.logger, err, "Unable to read file")
	}

	analytics, err := h.s.Upload(c.UserContext(), GetAccountID(c), content)
	if err != nil {
		return respondError(c, h.logger, err, "Unable to process analytics")
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message":            "Analytics processed successfully",
		"best_times_to_post": analytics.BestTimesToPost,
		"hourly_insights":    analytics.HourlyInsights,
	})
}

func (h *AnalyticsHandler) Insights(c *fiber.Ctx) error {
	analytics, err := h.s.Insights(c.UserContext(), GetAccountID(c))
	if err != nil {
		return respondError(c, h.logger, err, "Unable to fetch insights")
	}
	return c.Status(fiber.StatusOK).JSON(analytics)
}
