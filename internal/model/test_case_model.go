package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type TestCase struct {
	Id             uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId         uuid.UUID      `gorm:"type:uuid;not null;index"`
	SnapshotId     uuid.UUID      `gorm:"type:uuid;not null;index"`
	Url            string         `gorm:"type:text"`
	Title          string         `gorm:"type:text;not null"`
	Description    string         `gorm:"type:text"`
	Priority       string         `gorm:"type:varchar(10)"`
	Tags           datatypes.JSON `gorm:"type:jsonb"`
	Steps          datatypes.JSON `gorm:"type:jsonb"`
	Negative       bool
	Preconditions  string         `gorm:"type:text"`
	Postconditions string         `gorm:"type:text"`
	Source         string         `gorm:"type:varchar(50)"`
	Model          string         `gorm:"type:varchar(255)"`
	CreatedAt      time.Time      `gorm:"autoCreateTime"`
	DeletedAt      gorm.DeletedAt `gorm:"index"`
}

func (TestCase) TableName() string {
	return "test_cases"
}
