package dto

import (
	"time"

	"notevault-be/internal/pkg/apperror"

	"github.com/google/uuid"
)

type ExportedNote struct {
	Id        uuid.UUID  `json:"id"`
	Title     string     `json:"title"`
	Content   string     `json:"content"`
	IsPinned  bool       `json:"is_pinned"`
	Category  *string    `json:"category"`
	Tags      []string   `json:"tags"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
}

type ImportNote struct {
	Title    string   `json:"title" validate:"required,notblank,max=200"`
	Content  string   `json:"content" validate:"max=10000"`
	IsPinned bool     `json:"is_pinned"`
	Tags     []string `json:"tags" validate:"omitempty,max=10,dive,notblank,max=30"`
}

type ImportRequest struct {
	Notes []ImportNote `json:"notes" validate:"required,min=1,max=500"`
}

type ImportError struct {
	Index   int                   `json:"index"`
	Details []apperror.FieldError `json:"details"`
}

type ImportResponse struct {
	Imported int           `json:"imported"`
	Errors   []ImportError `json:"errors"`
}
