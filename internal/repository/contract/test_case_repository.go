package contract

import (
	"context"

	"ai-assistant-be/internal/entity"
	"ai-assistant-be/internal/repository/specification"

	"github.com/google/uuid"
)

type TestCaseRepository interface {
	Create(ctx context.Context, testCase *entity.TestCase) error
	CreateAll(ctx context.Context, testCases []*entity.TestCase) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.TestCase, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.TestCase, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
