package repository

import (
	"context"
	"fmt"
	"io/fs"

	"github.com/redis/go-redis/v9"

	"github.com/set-night/chatfeedback/internal/config"
	"github.com/set-night/chatfeedback/internal/domain"
)

// Store persists both the turn history and the feedback records of a chat.
type Store interface {
	AppendTurn(ctx context.Context, chatID string, turn domain.Turn) error
	Turns(ctx context.Context, chatID string) ([]domain.Turn, error)
	AppendFeedback(ctx context.Context, rec domain.FeedbackRecord) error
	Feedback(ctx context.Context, chatID string) ([]domain.FeedbackRecord, error)
	Close() error
}

// Open builds the store selected by cfg.Store. migrationsFS is only read for
// the postgres backend.
func Open(ctx context.Context, cfg *config.Config, migrationsFS fs.FS) (Store, error) {
	switch cfg.Store {
	case config.StorePostgres:
		if err := RunMigrations(cfg.DatabaseURL, migrationsFS); err != nil {
			return nil, err
		}
		pool, err := NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return NewPostgresStore(pool), nil

	case config.StoreRedis:
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		rdb := redis.NewClient(opts)
		if err := rdb.Ping(ctx).Err(); err != nil {
			rdb.Close()
			return nil, fmt.Errorf("ping redis: %w", err)
		}
		return NewRedisStore(rdb, redisTTL), nil

	case config.StoreFile, "":
		return NewFileStore(cfg.DataDir)

	default:
		return nil, fmt.Errorf("unknown store %q", cfg.Store)
	}
}
