package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type R2 struct {
	AccountID  string
	AccessKey  string
	SecretKey  string
	BucketName string
}

// Enabled reports whether analytics uploads should be archived to R2.
func (r R2) Enabled() bool {
	return r.AccountID != "" && r.AccessKey != "" && r.SecretKey != "" && r.BucketName != ""
}

type X struct {
	ClientID     string
	ClientSecret string
	CallbackURI  string
	APIBaseURL   string
	AuthURL      string
	TokenURL     string
}

type OpenRouter struct {
	APIKey string
	Model  string
	URL    string
}

type Config struct {
	Environment   string
	HTTPPort      string
	StorageDriver string
	PostgresURI   string
	MongoURI      string
	MongoDatabase string
	RedisURI      string
	FrontendURL   string
	SecretKey     string
	CookieName    string
	CookieSecure  bool
	SessionTTL    time.Duration

	X          X
	OpenRouter OpenRouter
	R2         R2

	TrendsAPIURL string

	DispatchInterval    time.Duration
	AccessTokenLifetime time.Duration
	ProviderTimeout     time.Duration
	DispatchLeaseTTL    time.Duration
	OAuthStateTTL       time.Duration
	RateLimitRPM        int
	DraftConcurrency    int
}

func LoadConfig() *Config {
	return &Config{
		Environment:   getEnv("APP_ENV", "development"),
		HTTPPort:      getEnv("HTTP_PORT", "3001"),
		StorageDriver: strings.ToLower(getEnv("STORAGE_DRIVER", "postgres")),
		PostgresURI:   getEnv("POSTGRES_URI", ""),
		MongoURI:      getEnv("MONGO_URI", ""),
		MongoDatabase: getEnv("MONGO_DATABASE", "postpilot"),
		RedisURI:      getEnv("REDIS_URI", "127.0.0.1:6379"),
		FrontendURL:   getEnv("FRONTEND_URL", "http://localhost:5173"),
		SecretKey:     getEnv("SECRET_KEY", ""),
		CookieName:    getEnv("COOKIE_NAME", "postpilot_session"),
		CookieSecure:  getBool("COOKIE_SECURE", false),
		SessionTTL:    getDuration("SESSION_TTL", 30*24*time.Hour),
		X: X{
			ClientID:     getEnv("X_CLIENT_ID", ""),
			ClientSecret: getEnv("X_CLIENT_SECRET", ""),
			CallbackURI:  getEnv("X_CALLBACK_URI", "http://localhost:3001/auth/callback"),
			APIBaseURL:   getEnv("X_API_BASE_URL", "https://api.twitter.com/2"),
			AuthURL:      getEnv("X_AUTH_URL", "https://twitter.com/i/oauth2/authorize"),
			TokenURL:     getEnv("X_TOKEN_URL", "https://api.twitter.com/2/oauth2/token"),
		},
		OpenRouter: OpenRouter{
			APIKey: getEnv("OPENROUTER_API_KEY", ""),
			Model:  getEnv("OPENROUTER_MODEL", "deepseek/deepseek-r1-0528:free"),
			URL:    getEnv("OPENROUTER_URL", "https://openrouter.ai/api/v1/chat/completions"),
		},
		R2: R2{
			AccountID:  getEnv("R2_ACCOUNT_ID", ""),
			AccessKey:  getEnv("R2_ACCESS_KEY", ""),
			SecretKey:  getEnv("R2_SECRET_KEY", ""),
			BucketName: getEnv("R2_BUCKET_NAME", ""),
		},
		TrendsAPIURL:        getEnv("TRENDS_API_URL", "http://localhost:5000"),
		DispatchInterval:    getDuration("DISPATCH_INTERVAL", time.Minute),
		AccessTokenLifetime: getDuration("ACCESS_TOKEN_LIFETIME", 2*time.Hour),
		ProviderTimeout:     getDuration("PROVIDER_TIMEOUT", 15*time.Second),
		DispatchLeaseTTL:    getDuration("DISPATCH_LEASE_TTL", 5*time.Minute),
		OAuthStateTTL:       getDuration("OAUTH_STATE_TTL", 10*time.Minute),
		RateLimitRPM:        getInt("RATE_LIMIT_RPM", 100),
		DraftConcurrency:    getInt("DRAFT_CONCURRENCY", 2),
	}
}

// Validate checks the values the server cannot start without.
func (c *Config) Validate() error {
	switch len(c.SecretKey) {
	case 16, 24, 32:
	default:
		return errors.New("SECRET_KEY must be 16, 24 or 32 bytes long")
	}

	switch c.StorageDriver {
	case "postgres":
		if c.PostgresURI == "" {
			return errors.New("POSTGRES_URI is required for the postgres storage driver")
		}
	case "mongodb":
		if c.MongoURI == "" {
			return errors.New("MONGO_URI is required for the mongodb storage driver")
		}
	case "memory":
	default:
		return fmt.Errorf("unsupported storage driver: %s", c.StorageDriver)
	}

	if c.X.ClientID == "" {
		return errors.New("X_CLIENT_ID is required")
	}
	if c.DispatchInterval <= 0 {
		return errors.New("DISPATCH_INTERVAL must be positive")
	}
	if c.AccessTokenLifetime <= 0 {
		return errors.New("ACCESS_TOKEN_LIFETIME must be positive")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
