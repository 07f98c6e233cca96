package dto

import (
	"time"

	"github.com/google/uuid"
)

type ShareNoteRequest struct {
	Email      string `json:"email" validate:"required,email"`
	Permission string `json:"permission" validate:"required,oneof=read edit"`
}

type SharedUser struct {
	Id       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Email    string    `json:"email"`
}

type ShareResponse struct {
	Id         uuid.UUID  `json:"id"`
	NoteId     uuid.UUID  `json:"note_id"`
	NoteTitle  string     `json:"note_title"`
	SharedWith SharedUser `json:"shared_with"`
	Permission string     `json:"permission"`
	CreatedAt  time.Time  `json:"created_at"`
}

type GranteeResponse struct {
	ShareId    uuid.UUID `json:"share_id"`
	UserId     uuid.UUID `json:"user_id"`
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	Permission string    `json:"permission"`
	SharedAt   time.Time `json:"shared_at"`
}

type SharedNoteResponse struct {
	ShareId    uuid.UUID        `json:"share_id"`
	Permission string           `json:"permission"`
	SharedAt   time.Time        `json:"shared_at"`
	Owner      SharedUser       `json:"owner"`
	Note       NoteResponse     `json:"note"`
	Category   *CategorySummary `json:"category"`
}
