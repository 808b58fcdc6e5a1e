package dto

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type CreateSnapshotRequest struct {
	Url      string          `json:"url" validate:"required,url"`
	Title    string          `json:"title"`
	Elements json.RawMessage `json:"elements" validate:"required"`
}

type SnapshotResponse struct {
	Id        uuid.UUID       `json:"id"`
	Url       string          `json:"url"`
	Title     string          `json:"title"`
	Elements  json.RawMessage `json:"elements,omitempty"`
	UiMap     json.RawMessage `json:"ui_map,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

type GenerateTestsRequest struct {
	SnapshotId uuid.UUID `json:"snapshot_id" validate:"required"`
	Goals      []string  `json:"goals"`
}

type TestStepResponse struct {
	Index    int             `json:"index"`
	Action   string          `json:"action"`
	Selector string          `json:"selector"`
	Details  json.RawMessage `json:"details,omitempty"`
	Expected string          `json:"expected"`
}

type TestCaseResponse struct {
	Id             uuid.UUID          `json:"id"`
	SnapshotId     uuid.UUID          `json:"snapshot_id"`
	Url            string             `json:"url"`
	Title          string             `json:"title"`
	Description    string             `json:"description"`
	Priority       string             `json:"priority"`
	Tags           []string           `json:"tags"`
	Steps          []TestStepResponse `json:"steps"`
	Negative       bool               `json:"negative"`
	Preconditions  string             `json:"preconditions"`
	Postconditions string             `json:"postconditions"`
	Model          string             `json:"model,omitempty"`
	CreatedAt      time.Time          `json:"created_at"`
}
