package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/set-night/chatfeedback/internal/domain"
)

const (
	redisTTL       = 30 * 24 * time.Hour
	historyPrefix  = "chat:history:"
	feedbackPrefix = "chat:feedback:"
)

// RedisStore keeps each chat as two lists of JSON documents. Every append
// refreshes the TTL of its list.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, ttl: ttl}
}

func (s *RedisStore) AppendTurn(ctx context.Context, chatID string, turn domain.Turn) error {
	return s.push(ctx, historyPrefix+chatID, turn)
}

func (s *RedisStore) Turns(ctx context.Context, chatID string) ([]domain.Turn, error) {
	var turns []domain.Turn
	err := s.load(ctx, historyPrefix+chatID, func(data []byte) error {
		var t domain.Turn
		if err := json.Unmarshal(data, &t); err != nil {
			return err
		}
		turns = append(turns, t)
		return nil
	})
	return turns, err
}

func (s *RedisStore) AppendFeedback(ctx context.Context, rec domain.FeedbackRecord) error {
	return s.push(ctx, feedbackPrefix+rec.ChatID, rec)
}

func (s *RedisStore) Feedback(ctx context.Context, chatID string) ([]domain.FeedbackRecord, error) {
	var records []domain.FeedbackRecord
	err := s.load(ctx, feedbackPrefix+chatID, func(data []byte) error {
		var rec domain.FeedbackRecord
		if err := json.Unmarshal(data, &rec); err != nil {
			return err
		}
		records = append(records, rec)
		return nil
	})
	return records, err
}

func (s *RedisStore) Close() error {
	return s.rdb.Close()
}

func (s *RedisStore) push(ctx context.Context, key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}
	pipe := s.rdb.TxPipeline()
	pipe.RPush(ctx, key, data)
	if s.ttl > 0 {
		pipe.Expire(ctx, key, s.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to append %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) load(ctx context.Context, key string, fn func([]byte) error) error {
	items, err := s.rdb.LRange(ctx, key, 0, -1).Result()
	if err == redis.Nil {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", key, err)
	}
	for i, item := range items {
		if err := fn([]byte(item)); err != nil {
			return fmt.Errorf("failed to unmarshal %s[%d]: %w", key, i, err)
		}
	}
	return nil
}
