package implementation

import (
	"context"
	"time"

	"notevault-be/internal/model"
	"notevault-be/internal/repository/contract"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type LifecycleRepositoryImpl struct {
	db *gorm.DB
}

func NewLifecycleRepository(db *gorm.DB) contract.LifecycleRepository {
	return &LifecycleRepositoryImpl{db: db}
}

// modelFor is the only place a Trashable becomes a table.
func modelFor(kind contract.Trashable) (interface{}, error) {
	switch kind {
	case contract.TrashableNotes:
		return &model.Note{}, nil
	case contract.TrashableCategories:
		return &model.Category{}, nil
	default:
		return nil, contract.ErrUnknownTrashable
	}
}

func (r *LifecycleRepositoryImpl) SoftDelete(ctx context.Context, kind contract.Trashable, id, ownerId, actorId uuid.UUID) error {
	m, err := modelFor(kind)
	if err != nil {
		return err
	}

	result := r.db.WithContext(ctx).
		Model(m).
		Where("id = ? AND user_id = ? AND deleted_at IS NULL", id, ownerId).
		UpdateColumns(map[string]interface{}{
			"deleted_at": time.Now(),
			"deleted_by": actorId,
		})
	return affected(result)
}

func (r *LifecycleRepositoryImpl) Restore(ctx context.Context, kind contract.Trashable, id, ownerId uuid.UUID) error {
	m, err := modelFor(kind)
	if err != nil {
		return err
	}

	result := r.db.WithContext(ctx).
		Unscoped().
		Model(m).
		Where("id = ? AND user_id = ? AND deleted_at IS NOT NULL", id, ownerId).
		UpdateColumns(map[string]interface{}{
			"deleted_at": nil,
			"deleted_by": nil,
		})
	return affected(result)
}

func (r *LifecycleRepositoryImpl) Purge(ctx context.Context, kind contract.Trashable, id, ownerId uuid.UUID) ([]string, error) {
	m, err := modelFor(kind)
	if err != nil {
		return nil, err
	}
	db := r.db.WithContext(ctx)

	var count int64
	err = db.Unscoped().
		Model(m).
		Where("id = ? AND user_id = ? AND deleted_at IS NOT NULL", id, ownerId).
		Count(&count).Error
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, contract.ErrRecordNotFound
	}

	switch kind {
	case contract.TrashableNotes:
		return r.purgeNote(db, id)
	default:
		return nil, r.purgeCategory(db, id)
	}
}

func (r *LifecycleRepositoryImpl) purgeNote(db *gorm.DB, id uuid.UUID) ([]string, error) {
	var paths []string
	if err := db.Model(&model.Attachment{}).Where("note_id = ?", id).Pluck("path", &paths).Error; err != nil {
		return nil, err
	}
	if err := db.Where("note_id = ?", id).Delete(&model.Attachment{}).Error; err != nil {
		return nil, err
	}
	if err := db.Where("note_id = ?", id).Delete(&model.NoteTag{}).Error; err != nil {
		return nil, err
	}
	if err := db.Where("note_id = ?", id).Delete(&model.SharedNote{}).Error; err != nil {
		return nil, err
	}
	if err := db.Unscoped().Where("id = ?", id).Delete(&model.Note{}).Error; err != nil {
		return nil, err
	}
	return paths, nil
}

// Notes that pointed at the category, trashed ones included, lose the reference.
func (r *LifecycleRepositoryImpl) purgeCategory(db *gorm.DB, id uuid.UUID) error {
	err := db.Unscoped().
		Model(&model.Note{}).
		Where("category_id = ?", id).
		UpdateColumn("category_id", nil).Error
	if err != nil {
		return err
	}
	return db.Unscoped().Where("id = ?", id).Delete(&model.Category{}).Error
}

func affected(result *gorm.DB) error {
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return contract.ErrRecordNotFound
	}
	return nil
}
