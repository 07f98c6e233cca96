package contract

import (
	"context"

	"notevault-be/internal/entity"
	"notevault-be/internal/repository/specification"

	"github.com/google/uuid"
)

type CategoryRepository interface {
	Create(ctx context.Context, category *entity.Category) error
	// Update writes name and color of an active category owned by
	// category.UserId. ErrRecordNotFound when nothing matched.
	Update(ctx context.Context, category *entity.Category) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Category, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Category, error)
	FindAllWithCount(ctx context.Context, userId uuid.UUID) ([]*entity.CategoryWithCount, error)
}
