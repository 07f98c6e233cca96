package contract

import (
	"context"

	"notevault-be/internal/entity"
	"notevault-be/internal/repository/specification"

	"github.com/google/uuid"
)

type NoteTemplateRepository interface {
	Create(ctx context.Context, template *entity.NoteTemplate) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.NoteTemplate, error)
	FindVisible(ctx context.Context, userId uuid.UUID) ([]*entity.NoteTemplate, error)
	IncrementUsage(ctx context.Context, id uuid.UUID) error
	DeleteOwned(ctx context.Context, id, userId uuid.UUID) error
}
