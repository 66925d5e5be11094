package history

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/closetmind/assistant/internal/config"
	"github.com/closetmind/assistant/pkg/models"
	"github.com/redis/go-redis/v9"
)

// RedisStore keeps each chat's turns in a Redis list, newest at the tail.
// Every append refreshes the chat's TTL and trims the list to the configured
// maximum turn count.
type RedisStore struct {
	client   *redis.Client
	ttl      time.Duration
	maxTurns int
}

// NewRedisStore creates a Redis-backed history store and verifies the
// connection.
func NewRedisStore(cfg config.RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	maxTurns := cfg.MaxTurns
	if maxTurns <= 0 {
		maxTurns = 100
	}

	return &RedisStore{
		client:   client,
		ttl:      cfg.HistoryTTL,
		maxTurns: maxTurns,
	}, nil
}

func (s *RedisStore) chatKey(chatID int64) string {
	return fmt.Sprintf("chat:%d:turns", chatID)
}

// Append adds a turn to the end of a chat's history, trims to the retained
// window and refreshes the TTL.
func (s *RedisStore) Append(ctx context.Context, chatID int64, turn models.ChatTurn) error {
	data, err := json.Marshal(turn)
	if err != nil {
		return fmt.Errorf("failed to marshal turn: %w", err)
	}

	key := s.chatKey(chatID)
	pipe := s.client.TxPipeline()
	pipe.RPush(ctx, key, data)
	pipe.LTrim(ctx, key, int64(-s.maxTurns), -1)
	if s.ttl > 0 {
		pipe.Expire(ctx, key, s.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to append turn: %w", err)
	}
	return nil
}

// Turns returns all retained turns for a chat, oldest first.
func (s *RedisStore) Turns(ctx context.Context, chatID int64) ([]models.ChatTurn, error) {
	raw, err := s.client.LRange(ctx, s.chatKey(chatID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}

	turns := make([]models.ChatTurn, 0, len(raw))
	for _, item := range raw {
		var turn models.ChatTurn
		if err := json.Unmarshal([]byte(item), &turn); err != nil {
			return nil, fmt.Errorf("failed to parse turn: %w", err)
		}
		turns = append(turns, turn)
	}
	return turns, nil
}

// Clear removes a chat's history.
func (s *RedisStore) Clear(ctx context.Context, chatID int64) error {
	if err := s.client.Del(ctx, s.chatKey(chatID)).Err(); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	return nil
}

// Ping verifies the Redis connection is alive.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
