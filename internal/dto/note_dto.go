package dto

import (
	"time"

	"notevault-be/pkg/query"

	"github.com/google/uuid"
)

type CreateNoteRequest struct {
	Title      string     `json:"title" validate:"required,notblank,max=200"`
	Content    string     `json:"content" validate:"max=10000"`
	CategoryId *uuid.UUID `json:"category_id"`
	IsPinned   bool       `json:"is_pinned"`
	Tags       []string   `json:"tags" validate:"omitempty,max=10,dive,notblank,max=30"`
}

// UpdateNoteRequest replaces the editable fields. A nil Tags leaves the tag
// set untouched; an empty list clears it.
type UpdateNoteRequest struct {
	Title      string     `json:"title" validate:"required,notblank,max=200"`
	Content    string     `json:"content" validate:"max=10000"`
	CategoryId *uuid.UUID `json:"category_id"`
	IsPinned   bool       `json:"is_pinned"`
	Tags       *[]string  `json:"tags" validate:"omitempty,max=10,dive,notblank,max=30"`
}

// UploadedFile is an attachment already written to storage, waiting for its
// row to be inserted.
type UploadedFile struct {
	StoredName   string
	OriginalName string
	MimeType     string
	Size         int64
	Path         string
}

type TagResponse struct {
	Id   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

type AttachmentResponse struct {
	Id           uuid.UUID `json:"id"`
	OriginalName string    `json:"original_name"`
	MimeType     string    `json:"mime_type"`
	Size         int64     `json:"size"`
	CreatedAt    time.Time `json:"created_at"`
}

type CategorySummary struct {
	Id    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Color string    `json:"color"`
}

type NoteResponse struct {
	Id          uuid.UUID            `json:"id"`
	UserId      uuid.UUID            `json:"user_id"`
	Title       string               `json:"title"`
	Content     string               `json:"content"`
	CategoryId  *uuid.UUID           `json:"category_id"`
	Category    *CategorySummary     `json:"category"`
	IsPinned    bool                 `json:"is_pinned"`
	Tags        []TagResponse        `json:"tags"`
	Attachments []AttachmentResponse `json:"attachments"`
	Permission  string               `json:"permission,omitempty"`
	CreatedAt   time.Time            `json:"created_at"`
	UpdatedAt   *time.Time           `json:"updated_at"`
	DeletedAt   *time.Time           `json:"deleted_at,omitempty"`
}

type NoteListResponse struct {
	Data       []NoteResponse   `json:"data"`
	Pagination query.Pagination `json:"pagination"`
}

// AttachmentDownload locates a stored file for streaming back to the caller.
type AttachmentDownload struct {
	Path         string
	OriginalName string
	MimeType     string
}
