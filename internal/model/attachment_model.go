package model

import (
	"time"

	"github.com/google/uuid"
)

type Attachment struct {
	Id           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	NoteId       uuid.UUID `gorm:"type:uuid;not null;index"`
	StoredName   string    `gorm:"type:varchar(255);not null"`
	OriginalName string    `gorm:"type:varchar(255);not null"`
	MimeType     string    `gorm:"type:varchar(100);not null"`
	Size         int64     `gorm:"not null"`
	Path         string    `gorm:"type:text;not null"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
}

func (Attachment) TableName() string {
	return "attachments"
}
