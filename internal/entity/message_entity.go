package entity

import (
	"time"

	"github.com/google/uuid"
)

// Message is one turn in a conversation transcript. Turns are immutable
// once created and ordered by CreatedAt within their conversation.
type Message struct {
	Id             uuid.UUID
	ConversationId uuid.UUID
	Role           string
	Content        string
	Model          *string
	CreatedAt      time.Time
	DeletedAt      *time.Time
	IsDeleted      bool
}
