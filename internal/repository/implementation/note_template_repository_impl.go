package implementation

import (
	"context"
	"errors"

	"notevault-be/internal/entity"
	"notevault-be/internal/mapper"
	"notevault-be/internal/model"
	"notevault-be/internal/repository/contract"
	"notevault-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type NoteTemplateRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.NoteTemplateMapper
}

func NewNoteTemplateRepository(db *gorm.DB) contract.NoteTemplateRepository {
	return &NoteTemplateRepositoryImpl{
		db:     db,
		mapper: mapper.NewNoteTemplateMapper(),
	}
}

func (r *NoteTemplateRepositoryImpl) Create(ctx context.Context, template *entity.NoteTemplate) error {
	m := r.mapper.ToModel(template)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*template = *r.mapper.ToEntity(m)
	return nil
}

func (r *NoteTemplateRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.NoteTemplate, error) {
	var m model.NoteTemplate
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *NoteTemplateRepositoryImpl) FindVisible(ctx context.Context, userId uuid.UUID) ([]*entity.NoteTemplate, error) {
	var models []*model.NoteTemplate
	err := specification.VisibleTemplate{UserID: userId}.Apply(r.db.WithContext(ctx)).
		Clauses(templateOrder(userId)).
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *NoteTemplateRepositoryImpl) IncrementUsage(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&model.NoteTemplate{}).
		Where("id = ?", id).
		UpdateColumn("usage_count", gorm.Expr("usage_count + 1")).Error
}

func (r *NoteTemplateRepositoryImpl) DeleteOwned(ctx context.Context, id, userId uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userId).Delete(&model.NoteTemplate{})
	return affected(result)
}

// templateOrder puts the user's own templates first, then by usage and name.
func templateOrder(userId uuid.UUID) clause.OrderBy {
	return clause.OrderBy{
		Expression: clause.Expr{
			SQL:                "CASE WHEN user_id = ? THEN 0 ELSE 1 END, usage_count DESC, name ASC",
			Vars:               []interface{}{userId},
			WithoutParentheses: true,
		},
	}
}
