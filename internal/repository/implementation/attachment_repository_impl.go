package implementation

import (
	"context"
	"errors"

	"notevault-be/internal/entity"
	"notevault-be/internal/mapper"
	"notevault-be/internal/model"
	"notevault-be/internal/repository/contract"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AttachmentRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.AttachmentMapper
}

func NewAttachmentRepository(db *gorm.DB) contract.AttachmentRepository {
	return &AttachmentRepositoryImpl{
		db:     db,
		mapper: mapper.NewAttachmentMapper(),
	}
}

func (r *AttachmentRepositoryImpl) Create(ctx context.Context, attachment *entity.Attachment) error {
	m := r.mapper.ToModel(attachment)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*attachment = *r.mapper.ToEntity(m)
	return nil
}

func (r *AttachmentRepositoryImpl) FindByNoteIDs(ctx context.Context, noteIds []uuid.UUID) (map[uuid.UUID][]*entity.Attachment, error) {
	result := make(map[uuid.UUID][]*entity.Attachment, len(noteIds))
	if len(noteIds) == 0 {
		return result, nil
	}

	var models []*model.Attachment
	err := r.db.WithContext(ctx).
		Where("note_id IN ?", noteIds).
		Order("created_at ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	for _, m := range models {
		result[m.NoteId] = append(result[m.NoteId], r.mapper.ToEntity(m))
	}
	return result, nil
}

const accessibleAttachmentSQL = `SELECT a.id, a.note_id, a.stored_name, a.original_name, a.mime_type, a.size, a.path, a.created_at
FROM attachments a
JOIN notes n ON n.id = a.note_id AND n.deleted_at IS NULL
WHERE a.id = ? AND a.note_id = ?
AND (n.user_id = ? OR EXISTS (
	SELECT 1 FROM shared_notes s WHERE s.note_id = n.id AND s.shared_with = ?
))
LIMIT 1`

func (r *AttachmentRepositoryImpl) FindAccessible(ctx context.Context, attachmentId, noteId, userId uuid.UUID) (*entity.Attachment, error) {
	var m model.Attachment
	err := r.db.WithContext(ctx).
		Raw(accessibleAttachmentSQL, attachmentId, noteId, userId, userId).
		Take(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *AttachmentRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Attachment{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return contract.ErrRecordNotFound
	}
	return nil
}

func (r *AttachmentRepositoryImpl) KnownStoredNames(ctx context.Context, names []string) (map[string]struct{}, error) {
	known := make(map[string]struct{}, len(names))
	if len(names) == 0 {
		return known, nil
	}

	var found []string
	err := r.db.WithContext(ctx).
		Model(&model.Attachment{}).
		Where("stored_name IN ?", names).
		Pluck("stored_name", &found).Error
	if err != nil {
		return nil, err
	}
	for _, n := range found {
		known[n] = struct{}{}
	}
	return known, nil
}
