package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	config "github.com/maheshrc27/postpilot/configs"
	"github.com/maheshrc27/postpilot/internal/cache"
	job "github.com/maheshrc27/postpilot/internal/jobs"
	"github.com/maheshrc27/postpilot/internal/provider"
	"github.com/maheshrc27/postpilot/internal/queue"
	"github.com/maheshrc27/postpilot/internal/repository"
	"github.com/maheshrc27/postpilot/internal/service"
	"github.com/maheshrc27/postpilot/pkg/utils"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	dispatchLeaseKey = "dispatch:lease"
	shutdownTimeout  = 30 * time.Second
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Failed to load environment variables", err)
	}

	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger, err := newLogger(cfg.Environment)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server stopped with error", zap.Error(err))
	}
	logger.Info("server shutdown complete")
}

func newLogger(env string) (*zap.Logger, error) {
	if env == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cipher, err := utils.NewCipher([]byte(cfg.SecretKey))
	if err != nil {
		return err
	}

	storage, err := repository.OpenStorage(ctx, repository.StorageConfig{
		Driver:        cfg.StorageDriver,
		PostgresURI:   cfg.PostgresURI,
		MongoURI:      cfg.MongoURI,
		MongoDatabase: cfg.MongoDatabase,
	}, cipher)
	if err != nil {
		return err
	}
	defer closeStorage(storage, logger)
	logger.Info("storage ready", zap.String("driver", cfg.StorageDriver))

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisURI})
	defer redisClient.Close()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		return err
	}

	redisConn := asynq.RedisClientOpt{Addr: cfg.RedisURI}
	asynqClient := asynq.NewClient(redisConn)
	defer asynqClient.Close()

	xClient := provider.NewXClient(provider.XConfig{
		ClientID:     cfg.X.ClientID,
		ClientSecret: cfg.X.ClientSecret,
		CallbackURI:  cfg.X.CallbackURI,
		APIBaseURL:   cfg.X.APIBaseURL,
		AuthURL:      cfg.X.AuthURL,
		TokenURL:     cfg.X.TokenURL,
		Timeout:      cfg.ProviderTimeout,
	})

	var objectStore service.ObjectStore
	if cfg.R2.Enabled() {
		r2Service, err := service.NewR2Service(ctx, cfg.R2, logger)
		if err != nil {
			return err
		}
		objectStore = r2Service
	}

	preferenceService := service.NewPreferenceService(storage.Preferences)
	postService := service.NewPostService(storage.Posts, logger)
	tokenService := service.NewTokenService(storage.Accounts, xClient, cfg.AccessTokenLifetime, logger)
	publishService := service.NewPublishService(storage.Posts, tokenService, xClient, logger)
	analyticsService := service.NewAnalyticsService(storage.Analytics, objectStore, logger)
	trendsService := service.NewTrendsService(cfg.TrendsAPIURL, cfg.ProviderTimeout, logger)
	contentService := service.NewContentService(cfg.OpenRouter.APIKey, cfg.OpenRouter.Model, cfg.OpenRouter.URL, 2*time.Minute, logger)
	draftService := service.NewDraftService(trendsService, contentService, preferenceService, postService, logger)
	authService := service.NewAuthService(service.AuthConfig{
		SecretKey:     cfg.SecretKey,
		SessionTTL:    cfg.SessionTTL,
		TokenLifetime: cfg.AccessTokenLifetime,
		StateTTL:      cfg.OAuthStateTTL,
	}, xClient, xClient, storage.Accounts, preferenceService, cache.NewRedisStateStore(redisClient), logger)

	app := newApp(cfg, logger, services{
		auth:        authService,
		posts:       postService,
		preferences: preferenceService,
		analytics:   analyticsService,
		trends:      trendsService,
		enqueuer:    asynqClient,
	})

	// cron jobs
	dispatchJob := job.NewDispatchJob(storage.Posts, storage.Accounts, publishService,
		cache.NewRedisLease(redisClient, dispatchLeaseKey, cfg.DispatchLeaseTTL), logger)
	c := cron.New()
	dispatchJob.Schedule(ctx, c, cfg.DispatchInterval)
	c.Start()
	logger.Info("dispatch loop started", zap.Duration("interval", cfg.DispatchInterval))

	// queue
	worker := queue.NewQueue(draftService, logger)
	asynqServer := asynq.NewServer(redisConn, asynq.Config{
		Concurrency: cfg.DraftConcurrency,
		Logger:      logger.Sugar(),
	})
	mux := asynq.NewServeMux()
	worker.Register(mux)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := asynqServer.Start(mux); err != nil {
			return err
		}
		<-gctx.Done()
		asynqServer.Shutdown()
		return nil
	})
	g.Go(func() error {
		logger.Info("http server listening", zap.String("port", cfg.HTTPPort))
		return app.Listen(":" + cfg.HTTPPort)
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server")

		c.Stop()
		dispatchJob.Stop()
		if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
			logger.Error("failed to shut down http server", zap.Error(err))
		}
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func closeStorage(storage *repository.Storage, logger *zap.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := storage.Close(ctx); err != nil {
		logger.Error("failed to close storage", zap.Error(err))
		return
	}
	logger.Info("storage closed")
}

