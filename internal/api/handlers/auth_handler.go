package handlers

import (
	"net/url"
	"time"

	"github.com/gofiber/fiber/v2"
	config "github.com/maheshrc27/postpilot/configs"
	"github.com/maheshrc27/postpilot/internal/service"
	"go.uber.org/zap"
)

type AuthHandler struct {
	s      service.AuthService
	cfg    *config.Config
	logger *zap.Logger
}

func NewAuthHandler(cfg *config.Config, service service.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{s: service, cfg: cfg, logger: logger}
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	authURL, err := h.s.LoginURL(c.UserContext())
	if err != nil {
		return respondError(c, h.logger, err, "Unable to start login")
	}
	return c.Redirect(authURL, fiber.StatusTemporaryRedirect)
}

func (h *AuthHandler) LoginCallback(c *fiber.Ctx) error {
	if errParam := c.Query("error"); errParam != "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Authorization was denied: " + errParam,
		})
	}

	code := c.Query("code")
	state := c.Query("state")
	if code == "" || state == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Missing code or state",
		})
	}

	acc, token, err := h.s.LoginCallback(c.UserContext(), state, code)
	if err != nil {
		return respondError(c, h.logger, err, "Login failed")
	}

	c.Cookie(&fiber.Cookie{
		Name:     h.cfg.CookieName,
		Value:    token,
		HTTPOnly: true,
		Secure:   h.cfg.CookieSecure,
		SameSite: fiber.CookieSameSiteLaxMode,
		Path:     "/",
		Expires:  time.Now().Add(h.cfg.SessionTTL),
	})

	h.logger.Info("account logged in", zap.String("account_id", acc.ID), zap.String("username", acc.Username))

	redirect := h.cfg.FrontendURL + "/dashboard?" + url.Values{"token": {token}}.Encode()
	return c.Redirect(redirect, fiber.StatusTemporaryRedirect)
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:   h.cfg.CookieName,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})
	return c.SendStatus(fiber.StatusNoContent)
}
