package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/postpilot/pkg/utils"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newAuthApp() *fiber.App {
	m := NewAuthMiddleware(testSecret, "session", zap.NewNop())

	app := fiber.New()
	app.Use(m.AuthMiddleware())
	app.Get("/me", func(c *fiber.Ctx) error {
		return c.SendString(c.Locals(AccountIDKey).(string))
	})
	return app
}

func TestAuthMiddlewareBearer(t *testing.T) {
	token, err := utils.GenerateToken(testSecret, "acc-1", time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := newAuthApp().Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)
	require.Equal(t, "acc-1", string(body))
}

func TestAuthMiddlewareCookie(t *testing.T) {
	token, err := utils.GenerateToken(testSecret, "acc-2", time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: "session", Value: token})

	resp, err := newAuthApp().Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestAuthMiddlewareRejects(t *testing.T) {
	app := newAuthApp()

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/me", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	expired, err := utils.GenerateToken(testSecret, "acc-1", -time.Minute)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: "session", Value: expired})

	resp, err = app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	require.Contains(t, resp.Header.Get("Set-Cookie"), "session=")

	other, err := utils.GenerateToken("fedcba9876543210fedcba9876543210", "acc-1", time.Hour)
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+other)

	resp, err = app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestBearerToken(t *testing.T) {
	require.Equal(t, "abc", bearerToken("Bearer abc"))
	require.Equal(t, "abc", bearerToken("bearer  abc "))
	require.Empty(t, bearerToken("Basic abc"))
	require.Empty(t, bearerToken("abc"))
}

func TestRateLimiter(t *testing.T) {
	require.Nil(t, NewRateLimiter(0))

	app := fiber.New()
	app.Use(NewRateLimiter(10).Handler())
	app.Get("/", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	// burst is one request for 10 rpm
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
}

func TestDisabledRateLimiterPassesThrough(t *testing.T) {
	var limiter *RateLimiter

	app := fiber.New()
	app.Use(limiter.Handler())
	app.Get("/", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	for i := 0; i < 5; i++ {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
		require.NoError(t, err)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
	}
}

func TestRequestLogger(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)

	app := fiber.New()
	app.Use(RequestLogger(zap.New(core)))
	app.Get("/ok", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })
	app.Get("/boom", func(c *fiber.Ctx) error { return fiber.NewError(fiber.StatusBadGateway, "upstream") })

	req := httptest.NewRequest(http.MethodGet, "/ok?code=secret", nil)
	req.Header.Set("X-Request-ID", "req-123")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, "req-123", resp.Header.Get("X-Request-ID"))

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/boom", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadGateway, resp.StatusCode)
	require.NotEmpty(t, resp.Header.Get("X-Request-ID"))

	entries := logs.FilterMessage("http_request").All()
	require.Len(t, entries, 2)
	require.Equal(t, "/ok", entries[0].ContextMap()["path"])
	require.Equal(t, "req-123", entries[0].ContextMap()["request_id"])
	require.Equal(t, http.MethodGet, entries[0].ContextMap()["method"])
	require.Equal(t, "/boom", entries[1].ContextMap()["path"])
	require.Equal(t, zap.ErrorLevel, entries[1].Level)
}
