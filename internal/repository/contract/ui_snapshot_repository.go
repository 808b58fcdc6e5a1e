package contract

import (
	"context"

	"ai-assistant-be/internal/entity"
	"ai-assistant-be/internal/repository/specification"

	"github.com/google/uuid"
)

type UiSnapshotRepository interface {
	Create(ctx context.Context, snapshot *entity.UiSnapshot) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.UiSnapshot, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.UiSnapshot, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
