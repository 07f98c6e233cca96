package contract

import (
	"context"

	"notevault-be/internal/entity"

	"github.com/google/uuid"
)

type TagRepository interface {
	// Upsert returns the user's tag with the given name, creating it if needed.
	Upsert(ctx context.Context, userId uuid.UUID, name string) (*entity.Tag, error)
	AttachToNote(ctx context.Context, noteId, tagId uuid.UUID) error
	DetachAllFromNote(ctx context.Context, noteId uuid.UUID) error
	FindByNoteIDs(ctx context.Context, noteIds []uuid.UUID) (map[uuid.UUID][]*entity.Tag, error)
	FindUsage(ctx context.Context, userId uuid.UUID) ([]*entity.TagUsage, error)
	// DeleteOwned removes the tag and its note links. ErrRecordNotFound when
	// the tag does not belong to userId.
	DeleteOwned(ctx context.Context, tagId, userId uuid.UUID) error
}
