package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/postpilot/pkg/utils"
	"go.uber.org/zap"
)

const AccountIDKey = "account_id"

type AuthMiddleware struct {
	secretKey  string
	cookieName string
	logger     *zap.Logger
}

func NewAuthMiddleware(secretKey, cookieName string, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{secretKey: secretKey, cookieName: cookieName, logger: logger}
}

// AuthMiddleware accepts a session JWT from the Authorization header or the
// session cookie and stores the account id in the request locals.
func (m *AuthMiddleware) AuthMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := bearerToken(c.Get(fiber.HeaderAuthorization))
		fromCookie := false
		if tokenString == "" {
			tokenString = c.Cookies(m.cookieName)
			fromCookie = tokenString != ""
		}

		if tokenString == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Not authorized, no token",
			})
		}

		claims, err := utils.ValidateToken(m.secretKey, tokenString)
		if err != nil {
			if fromCookie {
				c.Cookie(&fiber.Cookie{
					Name:   m.cookieName,
					Value:  "",
					Path:   "/",
					MaxAge: -1,
				})
			}

			m.logger.Info("session validation failed", zap.Error(err))
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Not authorized, token failed",
			})
		}

		c.Locals(AccountIDKey, claims.AccountID)
		return c.Next()
	}
}

func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
