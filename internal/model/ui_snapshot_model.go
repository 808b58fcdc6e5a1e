package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type UiSnapshot struct {
	Id        uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId    uuid.UUID      `gorm:"type:uuid;not null;index"`
	Url       string         `gorm:"type:text;not null"`
	Title     string         `gorm:"type:text"`
	Elements  datatypes.JSON `gorm:"type:jsonb"`
	UiMap     datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt time.Time      `gorm:"autoCreateTime"`
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (UiSnapshot) TableName() string {
	return "ui_snapshots"
}
