package entity

import (
	"time"

	"github.com/google/uuid"
)

type Note struct {
	Id         uuid.UUID
	UserId     uuid.UUID
	Title      string
	Content    string
	CategoryId *uuid.UUID
	IsPinned   bool
	CreatedAt  time.Time
	UpdatedAt  *time.Time
	DeletedAt  *time.Time
	DeletedBy  *uuid.UUID
	IsDeleted  bool
}

type Tag struct {
	Id        uuid.UUID
	UserId    uuid.UUID
	Name      string
	CreatedAt time.Time
}

// TagUsage is a tag with the number of active notes carrying it.
type TagUsage struct {
	Tag
	NoteCount int64
}

type Attachment struct {
	Id           uuid.UUID
	NoteId       uuid.UUID
	StoredName   string
	OriginalName string
	MimeType     string
	Size         int64
	Path         string
	CreatedAt    time.Time
}
