package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateConversationRequest struct {
	Title string `json:"title" validate:"omitempty,max=200"`
}

type ConversationResponse struct {
	Id        uuid.UUID  `json:"id"`
	Title     string     `json:"title"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
}

type RenameConversationRequest struct {
	Id    uuid.UUID
	Title string `json:"title" validate:"required,max=200"`
}

type DeleteConversationResponse struct {
	Id uuid.UUID `json:"id"`
}

type MessageResponse struct {
	Id             uuid.UUID `json:"id"`
	ConversationId uuid.UUID `json:"conversation_id"`
	Role           string    `json:"role"`
	Content        string    `json:"content"`
	Model          *string   `json:"model,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// ListMessagesRequest pages a transcript backwards. Before is an optional
// exclusive cursor, zero means newest page.
type ListMessagesRequest struct {
	ConversationId uuid.UUID
	Before         time.Time
	Limit          int
}

type ListMessagesResponse struct {
	Items   []MessageResponse `json:"items"`
	HasMore bool              `json:"has_more"`
}

type StreamChatRequest struct {
	ConversationId uuid.UUID
	Content        string `json:"content" validate:"required"`
}
