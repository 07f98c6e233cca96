package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Note struct {
	Id         uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId     uuid.UUID      `gorm:"type:uuid;not null;index"`
	Title      string         `gorm:"type:varchar(200);not null"`
	Content    string         `gorm:"type:text"`
	CategoryId *uuid.UUID     `gorm:"type:uuid;index"`
	IsPinned   bool           `gorm:"not null;default:false"`
	CreatedAt  time.Time      `gorm:"autoCreateTime"`
	UpdatedAt  time.Time      `gorm:"autoUpdateTime"`
	DeletedAt  gorm.DeletedAt `gorm:"index"`
	DeletedBy  *uuid.UUID     `gorm:"type:uuid"`
}

func (Note) TableName() string {
	return "notes"
}

type NoteTag struct {
	NoteId uuid.UUID `gorm:"type:uuid;primaryKey"`
	TagId  uuid.UUID `gorm:"type:uuid;primaryKey;index"`
}

func (NoteTag) TableName() string {
	return "note_tags"
}
