package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	config "github.com/maheshrc27/postpilot/configs"
	"github.com/maheshrc27/postpilot/internal/models"
	"github.com/maheshrc27/postpilot/internal/service"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeAuthService struct{}

func (fakeAuthService) LoginURL(context.Context) (string, error) {
	return "https://x.example/authorize?state=abc", nil
}

func (fakeAuthService) LoginCallback(_ context.Context, state, code string) (*models.Account, string, error) {
	if state != "abc" {
		return nil, "", service.ErrInvalidState
	}
	return &models.Account{ID: "acc-1", Username: "jack"}, "session-" + code, nil
}

func newAuthApp() *fiber.App {
	cfg := &config.Config{
		FrontendURL: "http://localhost:5173",
		CookieName:  "postpilot_session",
		SessionTTL:  time.Hour,
	}
	h := NewAuthHandler(cfg, fakeAuthService{}, zap.NewNop())

	app := fiber.New()
	app.Get("/auth/login", h.Login)
	app.Get("/auth/callback", h.LoginCallback)
	app.Post("/auth/logout", h.Logout)
	return app
}

func TestLoginRedirects(t *testing.T) {
	resp, err := newAuthApp().Test(httptest.NewRequest(http.MethodGet, "/auth/login", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusTemporaryRedirect, resp.StatusCode)
	require.Equal(t, "https://x.example/authorize?state=abc", resp.Header.Get("Location"))
}

func TestLoginCallback(t *testing.T) {
	app := newAuthApp()

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/auth/callback?state=abc&code=xyz", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusTemporaryRedirect, resp.StatusCode)

	location, err := url.Parse(resp.Header.Get("Location"))
	require.NoError(t, err)
	require.Equal(t, "/dashboard", location.Path)
	require.Equal(t, "session-xyz", location.Query().Get("token"))

	var session *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == "postpilot_session" {
			session = c
		}
	}
	require.NotNil(t, session)
	require.Equal(t, "session-xyz", session.Value)
	require.True(t, session.HttpOnly)
}

func TestLoginCallbackRejects(t *testing.T) {
	app := newAuthApp()

	for _, target := range []string{
		"/auth/callback?state=wrong&code=xyz",
		"/auth/callback?code=xyz",
		"/auth/callback?error=access_denied",
	} {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, target, nil))
		require.NoError(t, err)
		require.Equal(t, fiber.StatusBadRequest, resp.StatusCode, target)
	}
}

func TestLogoutClearsCookie(t *testing.T) {
	resp, err := newAuthApp().Test(httptest.NewRequest(http.MethodPost, "/auth/logout", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	require.Contains(t, resp.Header.Get("Set-Cookie"), "postpilot_session=")
}
