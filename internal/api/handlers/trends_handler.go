package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/postpilot/internal/service"
	"go.uber.org/zap"
)

const defaultTrendingLimit = 20

type TrendsHandler struct {
	s      service.TrendsService
	logger *zap.Logger
}

func NewTrendsHandler(service service.TrendsService, logger *zap.Logger) *TrendsHandler {
	return &TrendsHandler{s: service, logger: logger}
}

func (h *TrendsHandler) General(c *fiber.Ctx) error {
	body, err := h.s.GeneralTrending(c.UserContext(), c.Query("geo"), c.QueryInt("limit", defaultTrendingLimit))
	if err != nil {
		return respondError(c, h.logger, err, "Unable to fetch trends")
	}
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Status(fiber.StatusOK).Send(body)
}

func (h *TrendsHandler) Analyze(c *fiber.Ctx) error {
	var keywords []string
	for _, k := range strings.Split(c.Query("keywords"), ",") {
		if k = strings.TrimSpace(k); k != "" {
			keywords = append(keywords, k)
		}
	}
	if len(keywords) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "At least one keyword is required",
		})
	}

	body, err := h.s.AnalyzeRaw(c.UserContext(), keywords, c.Query("geo"))
	if err != nil {
		return respondError(c, h.logger, err, "Unable to analyze keywords")
	}
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Status(fiber.StatusOK).Send(body)
}
