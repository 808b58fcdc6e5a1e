package implementation

import (
	"context"
	"errors"

	"ai-assistant-be/internal/entity"
	"ai-assistant-be/internal/mapper"
	"ai-assistant-be/internal/model"
	"ai-assistant-be/internal/repository/contract"
	"ai-assistant-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TestCaseRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.UiTestMapper
}

func NewTestCaseRepository(db *gorm.DB) contract.TestCaseRepository {
	return &TestCaseRepositoryImpl{
		db:     db,
		mapper: mapper.NewUiTestMapper(),
	}
}

func (r *TestCaseRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *TestCaseRepositoryImpl) Create(ctx context.Context, testCase *entity.TestCase) error {
	m := r.mapper.TestCaseToModel(testCase)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*testCase = *r.mapper.TestCaseToEntity(m)
	return nil
}

func (r *TestCaseRepositoryImpl) CreateAll(ctx context.Context, testCases []*entity.TestCase) error {
	if len(testCases) == 0 {
		return nil
	}
	models := make([]*model.TestCase, len(testCases))
	for i, tc := range testCases {
		models[i] = r.mapper.TestCaseToModel(tc)
	}
	if err := r.db.WithContext(ctx).Create(&models).Error; err != nil {
		return err
	}
	for i, m := range models {
		*testCases[i] = *r.mapper.TestCaseToEntity(m)
	}
	return nil
}

func (r *TestCaseRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.TestCase{}, id).Error
}

func (r *TestCaseRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.TestCase, error) {
	var m model.TestCase
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.TestCaseToEntity(&m), nil
}

func (r *TestCaseRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.TestCase, error) {
	var models []*model.TestCase
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.TestCase, len(models))
	for i, m := range models {
		entities[i] = r.mapper.TestCaseToEntity(m)
	}
	return entities, nil
}

func (r *TestCaseRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.TestCase{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
