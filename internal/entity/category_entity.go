package entity

import (
	"time"

	"github.com/google/uuid"
)

const DefaultCategoryColor = "#3B82F6"

type Category struct {
	Id        uuid.UUID
	UserId    uuid.UUID
	Name      string
	Color     string
	CreatedAt time.Time
	UpdatedAt *time.Time
	DeletedAt *time.Time
	IsDeleted bool
}

type CategoryWithCount struct {
	Category
	NoteCount int64
}
