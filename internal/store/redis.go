package store

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/bonssss/chat-app/internal/models"
)

// messagesChannel is the pub/sub channel carrying message insert events.
const messagesChannel = "inserts:messages"

// RedisStore handles Redis operations: the realtime insert feed and the
// backing store for rate limiting.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a new Redis store.
func NewRedisStore(ctx context.Context, redisURL string) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &RedisStore{client: client}, nil
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Ping checks the Redis connection.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Client exposes the raw Redis client for middleware that needs it.
func (s *RedisStore) Client() *redis.Client {
	return s.client
}

// PublishMessage publishes a newly inserted message to the realtime feed.
func (s *RedisStore) PublishMessage(ctx context.Context, msg *models.Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return s.client.Publish(ctx, messagesChannel, data).Err()
}

// SubscribeMessages subscribes to the realtime insert feed. Events are
// delivered on the returned channel until ctx is cancelled; malformed
// payloads are logged and skipped.
func (s *RedisStore) SubscribeMessages(ctx context.Context, logger zerolog.Logger) (<-chan models.Message, func()) {
	pubsub := s.client.Subscribe(ctx, messagesChannel)
	events := make(chan models.Message, 16)

	go func() {
		defer close(events)
		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case raw, ok := <-ch:
				if !ok {
					return
				}
				var msg models.Message
				if err := json.Unmarshal([]byte(raw.Payload), &msg); err != nil {
					logger.Warn().Err(err).Msg("dropping malformed realtime payload")
					continue
				}
				select {
				case events <- msg:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	cancel := func() {
		_ = pubsub.Close()
	}
	return events, cancel
}
