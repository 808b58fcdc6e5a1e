package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type TestStep struct {
	Index    int             `json:"index"`
	Action   string          `json:"action"`
	Selector string          `json:"selector"`
	Details  json.RawMessage `json:"details,omitempty"`
	Expected string          `json:"expected"`
}

type TestCase struct {
	Id             uuid.UUID
	UserId         uuid.UUID
	SnapshotId     uuid.UUID
	Url            string
	Title          string
	Description    string
	Priority       string
	Tags           []string
	Steps          []TestStep
	Negative       bool
	Preconditions  string
	Postconditions string
	Source         string
	Model          string
	CreatedAt      time.Time
	DeletedAt      *time.Time
	IsDeleted      bool
}
