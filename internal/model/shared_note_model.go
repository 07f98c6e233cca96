package model

import (
	"time"

	"github.com/google/uuid"
)

type SharedNote struct {
	Id         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	NoteId     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_shared_notes_note_grantee,priority:1"`
	SharedBy   uuid.UUID `gorm:"type:uuid;not null"`
	SharedWith uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_shared_notes_note_grantee,priority:2"`
	Permission string    `gorm:"type:varchar(10);not null;default:'read'"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
}

func (SharedNote) TableName() string {
	return "shared_notes"
}
