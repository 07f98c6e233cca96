package entity

import (
	"time"

	"github.com/google/uuid"
)

type Permission string

const (
	PermissionRead Permission = "read"
	PermissionEdit Permission = "edit"
)

// Satisfies reports whether p grants at least the required level.
func (p Permission) Satisfies(required Permission) bool {
	if required == PermissionRead {
		return p == PermissionRead || p == PermissionEdit
	}
	return p == PermissionEdit
}

type SharedNote struct {
	Id         uuid.UUID
	NoteId     uuid.UUID
	SharedBy   uuid.UUID
	SharedWith uuid.UUID
	Permission Permission
	CreatedAt  time.Time
}

// Grantee is a share grant joined with the receiving user.
type Grantee struct {
	ShareId    uuid.UUID
	UserId     uuid.UUID
	Username   string
	Email      string
	Permission Permission
	SharedAt   time.Time
}

// SharedNoteView is a note shared with the caller, joined with owner and category.
type SharedNoteView struct {
	ShareId       uuid.UUID
	Permission    Permission
	SharedAt      time.Time
	Note          Note
	OwnerUsername string
	OwnerEmail    string
	CategoryName  *string
	CategoryColor *string
}
