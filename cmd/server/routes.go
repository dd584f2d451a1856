package main

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	config "github.com/maheshrc27/postpilot/configs"
	"github.com/maheshrc27/postpilot/internal/api/handlers"
	"github.com/maheshrc27/postpilot/internal/api/middleware"
	"github.com/maheshrc27/postpilot/internal/queue"
	"github.com/maheshrc27/postpilot/internal/service"
	"go.uber.org/zap"
)

type services struct {
	auth        service.AuthService
	posts       service.PostService
	preferences service.PreferenceService
	analytics   service.AnalyticsService
	trends      service.TrendsService
	enqueuer    queue.Enqueuer
}

func newApp(cfg *config.Config, logger *zap.Logger, s services) *fiber.App {
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Minute,
		WriteTimeout: time.Minute,
		BodyLimit:    16 * 1024 * 1024,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			var fe *fiber.Error
			if errors.As(err, &fe) {
				code = fe.Code
			}
			if code >= fiber.StatusInternalServerError {
				logger.Error("unhandled request error", zap.String("path", c.Path()), zap.Error(err))
			}
			return c.Status(code).JSON(fiber.Map{"error": err.Error()})
		},
	})

	app.Use(middleware.RequestLogger(logger))
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.FrontendURL,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           3600,
	}))

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	auth := handlers.NewAuthHandler(cfg, s.auth, logger)
	app.Get("/auth/login", auth.Login)
	app.Get("/auth/callback", auth.LoginCallback)
	app.Post("/auth/logout", auth.Logout)

	authMiddleware := middleware.NewAuthMiddleware(cfg.SecretKey, cfg.CookieName, logger)
	limiter := middleware.NewRateLimiter(cfg.RateLimitRPM)

	api := app.Group("/api", limiter.Handler())

	// general trends are public
	trends := handlers.NewTrendsHandler(s.trends, logger)
	api.Get("/trends/general", trends.General)

	api.Use(authMiddleware.AuthMiddleware())
	api.Get("/trends/analyze", trends.Analyze)

	post := handlers.NewPostHandler(s.posts, s.enqueuer, logger)
	api.Post("/posts", post.CreatePost)
	api.Get("/posts", post.ListPosts)
	api.Post("/posts/autocreate", post.AutoCreatePost)
	api.Get("/posts/:id", post.GetPost)
	api.Post("/posts/:id/requeue", post.RequeuePost)

	preferences := handlers.NewPreferenceHandler(s.preferences, logger)
	api.Get("/preferences", preferences.GetPreferences)
	api.Put("/preferences", preferences.UpdatePreferences)

	analytics := handlers.NewAnalyticsHandler(s.analytics, logger)
	api.Post("/analytics/upload", analytics.Upload)
	api.Get("/analytics/insights", analytics.Insights)

	return app
}
