package dto

import (
	"time"

	"github.com/google/uuid"
)

type CategoryRequest struct {
	Name  string `json:"name" validate:"required,notblank,max=50"`
	Color string `json:"color" validate:"omitempty,color6"`
}

type CategoryResponse struct {
	Id        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	Color     string     `json:"color"`
	NoteCount int64      `json:"note_count"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
}

type TagUsageResponse struct {
	Id        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	NoteCount int64     `json:"note_count"`
	CreatedAt time.Time `json:"created_at"`
}
