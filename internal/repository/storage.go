package repository

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/maheshrc27/postpilot/pkg/utils"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type StorageConfig struct {
	Driver        string
	PostgresURI   string
	MongoURI      string
	MongoDatabase string
}

// Storage is an opened driver together with the means to release it.
type Storage struct {
	*Repositories
	close func(context.Context) error
}

func (s *Storage) Close(ctx context.Context) error {
	if s.close == nil {
		return nil
	}
	return s.close(ctx)
}

// OpenStorage connects the configured driver and prepares its schema.
func OpenStorage(ctx context.Context, cfg StorageConfig, cipher *utils.Cipher) (*Storage, error) {
	switch cfg.Driver {
	case "postgres":
		db, err := sql.Open("postgres", cfg.PostgresURI)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		if err := db.PingContext(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("ping postgres: %w", err)
		}
		if err := EnsurePostgresSchema(ctx, db); err != nil {
			db.Close()
			return nil, err
		}
		return &Storage{
			Repositories: NewPostgresRepositories(db, cipher),
			close:        func(context.Context) error { return db.Close() },
		}, nil

	case "mongodb":
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
		if err != nil {
			return nil, fmt.Errorf("connect mongodb: %w", err)
		}
		if err := client.Ping(ctx, nil); err != nil {
			_ = client.Disconnect(ctx)
			return nil, fmt.Errorf("ping mongodb: %w", err)
		}
		db := client.Database(cfg.MongoDatabase)
		if err := EnsureMongoIndexes(ctx, db); err != nil {
			_ = client.Disconnect(ctx)
			return nil, err
		}
		return &Storage{
			Repositories: NewMongoRepositories(db, cipher),
			close:        client.Disconnect,
		}, nil

	case "memory":
		return &Storage{Repositories: NewMemoryRepositories()}, nil

	default:
		return nil, fmt.Errorf("unsupported storage driver: %s", cfg.Driver)
	}
}
