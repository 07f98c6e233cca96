package entity

import (
	"time"

	"github.com/google/uuid"
)

type NoteTemplate struct {
	Id              uuid.UUID
	UserId          uuid.UUID
	Name            string
	Description     string
	TitleTemplate   string
	ContentTemplate string
	IsPublic        bool
	UsageCount      int
	CreatedAt       time.Time
}
