package model

import (
	"time"

	"github.com/google/uuid"
)

type NoteTemplate struct {
	Id              uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId          uuid.UUID `gorm:"type:uuid;not null;index"`
	Name            string    `gorm:"type:varchar(100);not null"`
	Description     string    `gorm:"type:varchar(500)"`
	TitleTemplate   string    `gorm:"type:varchar(200)"`
	ContentTemplate string    `gorm:"type:text"`
	IsPublic        bool      `gorm:"not null;default:false;index"`
	UsageCount      int       `gorm:"not null;default:0"`
	CreatedAt       time.Time `gorm:"autoCreateTime"`
}

func (NoteTemplate) TableName() string {
	return "note_templates"
}
