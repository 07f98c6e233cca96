package implementation

import (
	"context"
	"errors"
	"time"

	"notevault-be/internal/entity"
	"notevault-be/internal/mapper"
	"notevault-be/internal/model"
	"notevault-be/internal/repository/contract"
	"notevault-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CategoryRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.CategoryMapper
}

func NewCategoryRepository(db *gorm.DB) contract.CategoryRepository {
	return &CategoryRepositoryImpl{
		db:     db,
		mapper: mapper.NewCategoryMapper(),
	}
}

func (r *CategoryRepositoryImpl) Create(ctx context.Context, category *entity.Category) error {
	m := r.mapper.ToModel(category)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*category = *r.mapper.ToEntity(m)
	return nil
}

func (r *CategoryRepositoryImpl) Update(ctx context.Context, category *entity.Category) error {
	now := time.Now()
	result := r.db.WithContext(ctx).
		Model(&model.Category{}).
		Where("id = ? AND user_id = ?", category.Id, category.UserId).
		Updates(map[string]interface{}{
			"name":       category.Name,
			"color":      category.Color,
			"updated_at": now,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return contract.ErrRecordNotFound
	}
	category.UpdatedAt = &now
	return nil
}

func (r *CategoryRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Category, error) {
	var m model.Category
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *CategoryRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Category, error) {
	var models []*model.Category
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *CategoryRepositoryImpl) FindAllWithCount(ctx context.Context, userId uuid.UUID) ([]*entity.CategoryWithCount, error) {
	var rows []struct {
		model.Category
		NoteCount int64
	}
	err := r.db.WithContext(ctx).
		Table("categories").
		Select("categories.id, categories.user_id, categories.name, categories.color, categories.created_at, categories.updated_at, COUNT(notes.id) AS note_count").
		Joins("LEFT JOIN notes ON notes.category_id = categories.id AND notes.deleted_at IS NULL").
		Where("categories.user_id = ? AND categories.deleted_at IS NULL", userId).
		Group("categories.id").
		Order("categories.name ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	result := make([]*entity.CategoryWithCount, len(rows))
	for i := range rows {
		result[i] = &entity.CategoryWithCount{
			Category:  *r.mapper.ToEntity(&rows[i].Category),
			NoteCount: rows[i].NoteCount,
		}
	}
	return result, nil
}
