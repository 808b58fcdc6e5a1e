package memory

import (
	"context"
	"time"

	"ai-assistant-be/internal/repository/contract"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

type StreamRegistry struct {
	cache *cache.Cache
}

// NewStreamRegistry builds a single-process registry. The purge interval keeps
// abandoned slots from lingering past their TTL.
func NewStreamRegistry() contract.StreamRegistry {
	c := cache.New(cache.NoExpiration, 30*time.Second)
	return &StreamRegistry{cache: c}
}

func (r *StreamRegistry) Acquire(_ context.Context, conversationId uuid.UUID, ttl time.Duration) (bool, error) {
	// Add fails when the key is already present, which gives us the
	// test-and-set semantics in one call.
	if err := r.cache.Add(conversationId.String(), struct{}{}, ttl); err != nil {
		return false, nil
	}
	return true, nil
}

func (r *StreamRegistry) Release(_ context.Context, conversationId uuid.UUID) error {
	r.cache.Delete(conversationId.String())
	return nil
}
