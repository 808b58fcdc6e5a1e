package mapper

import (
	"encoding/json"
	"time"

	"ai-assistant-be/internal/entity"
	"ai-assistant-be/internal/model"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type UiTestMapper struct{}

func NewUiTestMapper() *UiTestMapper {
	return &UiTestMapper{}
}

func (m *UiTestMapper) SnapshotToEntity(s *model.UiSnapshot) *entity.UiSnapshot {
	if s == nil {
		return nil
	}

	var deletedAt *time.Time
	if s.DeletedAt.Valid {
		t := s.DeletedAt.Time
		deletedAt = &t
	}

	return &entity.UiSnapshot{
		Id:        s.Id,
		UserId:    s.UserId,
		Url:       s.Url,
		Title:     s.Title,
		Elements:  json.RawMessage(s.Elements),
		UiMap:     json.RawMessage(s.UiMap),
		CreatedAt: s.CreatedAt,
		DeletedAt: deletedAt,
		IsDeleted: s.DeletedAt.Valid,
	}
}

func (m *UiTestMapper) SnapshotToModel(s *entity.UiSnapshot) *model.UiSnapshot {
	if s == nil {
		return nil
	}

	var deletedAt gorm.DeletedAt
	if s.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *s.DeletedAt, Valid: true}
	} else if s.IsDeleted {
		deletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	}

	return &model.UiSnapshot{
		Id:        s.Id,
		UserId:    s.UserId,
		Url:       s.Url,
		Title:     s.Title,
		Elements:  datatypes.JSON(s.Elements),
		UiMap:     datatypes.JSON(s.UiMap),
		CreatedAt: s.CreatedAt,
		DeletedAt: deletedAt,
	}
}

func (m *UiTestMapper) TestCaseToEntity(tc *model.TestCase) *entity.TestCase {
	if tc == nil {
		return nil
	}

	var deletedAt *time.Time
	if tc.DeletedAt.Valid {
		t := tc.DeletedAt.Time
		deletedAt = &t
	}

	var tags []string
	if len(tc.Tags) > 0 {
		_ = json.Unmarshal(tc.Tags, &tags)
	}
	var steps []entity.TestStep
	if len(tc.Steps) > 0 {
		_ = json.Unmarshal(tc.Steps, &steps)
	}

	return &entity.TestCase{
		Id:             tc.Id,
		UserId:         tc.UserId,
		SnapshotId:     tc.SnapshotId,
		Url:            tc.Url,
		Title:          tc.Title,
		Description:    tc.Description,
		Priority:       tc.Priority,
		Tags:           tags,
		Steps:          steps,
		Negative:       tc.Negative,
		Preconditions:  tc.Preconditions,
		Postconditions: tc.Postconditions,
		Source:         tc.Source,
		Model:          tc.Model,
		CreatedAt:      tc.CreatedAt,
		DeletedAt:      deletedAt,
		IsDeleted:      tc.DeletedAt.Valid,
	}
}

func (m *UiTestMapper) TestCaseToModel(tc *entity.TestCase) *model.TestCase {
	if tc == nil {
		return nil
	}

	var deletedAt gorm.DeletedAt
	if tc.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *tc.DeletedAt, Valid: true}
	} else if tc.IsDeleted {
		deletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	}

	tags, _ := json.Marshal(tc.Tags)
	steps, _ := json.Marshal(tc.Steps)

	return &model.TestCase{
		Id:             tc.Id,
		UserId:         tc.UserId,
		SnapshotId:     tc.SnapshotId,
		Url:            tc.Url,
		Title:          tc.Title,
		Description:    tc.Description,
		Priority:       tc.Priority,
		Tags:           datatypes.JSON(tags),
		Steps:          datatypes.JSON(steps),
		Negative:       tc.Negative,
		Preconditions:  tc.Preconditions,
		Postconditions: tc.Postconditions,
		Source:         tc.Source,
		Model:          tc.Model,
		CreatedAt:      tc.CreatedAt,
		DeletedAt:      deletedAt,
	}
}
