package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type UiSnapshot struct {
	Id        uuid.UUID
	UserId    uuid.UUID
	Url       string
	Title     string
	Elements  json.RawMessage
	UiMap     json.RawMessage
	CreatedAt time.Time
	DeletedAt *time.Time
	IsDeleted bool
}
