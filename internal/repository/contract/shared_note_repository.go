package contract

import (
	"context"

	"notevault-be/internal/entity"

	"github.com/google/uuid"
)

type SharedNoteRepository interface {
	// Upsert creates the grant or updates the permission of an existing one.
	Upsert(ctx context.Context, share *entity.SharedNote) error
	FindGrant(ctx context.Context, noteId, userId uuid.UUID) (*entity.SharedNote, error)
	FindGrantees(ctx context.Context, noteId uuid.UUID) ([]*entity.Grantee, error)
	FindSharedWith(ctx context.Context, userId uuid.UUID) ([]*entity.SharedNoteView, error)
	// DeleteOwned removes a grant whose note belongs to ownerId and returns it.
	DeleteOwned(ctx context.Context, shareId, ownerId uuid.UUID) (*entity.SharedNote, error)
}
