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

type UiSnapshotRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.UiTestMapper
}

func NewUiSnapshotRepository(db *gorm.DB) contract.UiSnapshotRepository {
	return &UiSnapshotRepositoryImpl{
		db:     db,
		mapper: mapper.NewUiTestMapper(),
	}
}

func (r *UiSnapshotRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *UiSnapshotRepositoryImpl) Create(ctx context.Context, snapshot *entity.UiSnapshot) error {
	m := r.mapper.SnapshotToModel(snapshot)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*snapshot = *r.mapper.SnapshotToEntity(m)
	return nil
}

func (r *UiSnapshotRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.UiSnapshot{}, id).Error
}

func (r *UiSnapshotRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.UiSnapshot, error) {
	var m model.UiSnapshot
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.SnapshotToEntity(&m), nil
}

func (r *UiSnapshotRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.UiSnapshot, error) {
	var models []*model.UiSnapshot
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.UiSnapshot, len(models))
	for i, m := range models {
		entities[i] = r.mapper.SnapshotToEntity(m)
	}
	return entities, nil
}

func (r *UiSnapshotRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.UiSnapshot{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
