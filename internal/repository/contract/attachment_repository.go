package contract

import (
	"context"

	"notevault-be/internal/entity"

	"github.com/google/uuid"
)

type AttachmentRepository interface {
	Create(ctx context.Context, attachment *entity.Attachment) error
	FindByNoteIDs(ctx context.Context, noteIds []uuid.UUID) (map[uuid.UUID][]*entity.Attachment, error)
	// FindAccessible loads an attachment of an active note that userId owns
	// or has been granted. Returns nil, nil when no such row exists.
	FindAccessible(ctx context.Context, attachmentId, noteId, userId uuid.UUID) (*entity.Attachment, error)
	Delete(ctx context.Context, id uuid.UUID) error
	// KnownStoredNames returns the subset of names that some attachment row
	// still references.
	KnownStoredNames(ctx context.Context, names []string) (map[string]struct{}, error)
}
