package redisrepo

import (
	"context"
	"time"

	"ai-assistant-be/internal/repository/contract"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const streamKeyPrefix = "chat:stream:"

// StreamRegistry coordinates the one-stream-per-conversation rule across
// multiple server instances.
type StreamRegistry struct {
	client *redis.Client
}

func NewStreamRegistry(client *redis.Client) contract.StreamRegistry {
	return &StreamRegistry{client: client}
}

func (r *StreamRegistry) Acquire(ctx context.Context, conversationId uuid.UUID, ttl time.Duration) (bool, error) {
	return r.client.SetNX(ctx, streamKeyPrefix+conversationId.String(), "1", ttl).Result()
}

func (r *StreamRegistry) Release(ctx context.Context, conversationId uuid.UUID) error {
	return r.client.Del(ctx, streamKeyPrefix+conversationId.String()).Err()
}
