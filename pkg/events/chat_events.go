package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	TypeStreamCompleted     = "STREAM_COMPLETED"
	TypeConversationDeleted = "CONVERSATION_DELETED"
	TypeTestSuiteGenerated  = "TEST_SUITE_GENERATED"
)

// NewStreamCompletedEvent records the outcome of one streaming exchange,
// whatever that outcome was.
func NewStreamCompletedEvent(conversationId, userId uuid.UUID, model string, visibleLen int, cancelled, failed bool) Event {
	return BaseEvent{
		Type: TypeStreamCompleted,
		Data: map[string]interface{}{
			"conversation_id": conversationId.String(),
			"user_id":         userId.String(),
			"model":           model,
			"visible_length":  visibleLen,
			"cancelled":       cancelled,
			"failed":          failed,
		},
		OccurredAt: time.Now(),
	}
}

func NewConversationDeletedEvent(conversationId, userId uuid.UUID) Event {
	return BaseEvent{
		Type: TypeConversationDeleted,
		Data: map[string]interface{}{
			"conversation_id": conversationId.String(),
			"user_id":         userId.String(),
		},
		OccurredAt: time.Now(),
	}
}

func NewTestSuiteGeneratedEvent(snapshotId, userId uuid.UUID, count int, model string) Event {
	return BaseEvent{
		Type: TypeTestSuiteGenerated,
		Data: map[string]interface{}{
			"snapshot_id": snapshotId.String(),
			"user_id":     userId.String(),
			"test_count":  count,
			"model":       model,
		},
		OccurredAt: time.Now(),
	}
}
