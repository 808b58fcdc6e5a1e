package contract

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// StreamRegistry guards against two concurrent streams on one conversation.
type StreamRegistry interface {
	// Acquire claims the stream slot for a conversation. Returns false when
	// another stream already holds it.
	Acquire(ctx context.Context, conversationId uuid.UUID, ttl time.Duration) (bool, error)
	Release(ctx context.Context, conversationId uuid.UUID) error
}
