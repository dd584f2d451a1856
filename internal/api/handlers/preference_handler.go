package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/postpilot/internal/service"
	"github.com/maheshrc27/postpilot/internal/transfer"
	"go.uber.org/zap"
)

type PreferenceHandler struct {
	s      service.PreferenceService
	logger *zap.Logger
}

func NewPreferenceHandler(service service.PreferenceService, logger *zap.Logger) *PreferenceHandler {
	return &PreferenceHandler{s: service, logger: logger}
}

func (h *PreferenceHandler) GetPreferences(c *fiber.Ctx) error {
	pref, err := h.s.Get(c.UserContext(), GetAccountID(c))
	if err != nil {
		return respondError(c, h.logger, err, "Unable to fetch preferences")
	}
	return c.Status(fiber.StatusOK).JSON(pref)
}

func (h *PreferenceHandler) UpdatePreferences(c *fiber.Ctx) error {
	var input transfer.PreferenceUpdate
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	pref, err := h.s.Update(c.UserContext(), GetAccountID(c), &input)
	if err != nil {
		return respondError(c, h.logger, err, "Unable to update preferences")
	}
	return c.Status(fiber.StatusOK).JSON(pref)
}
