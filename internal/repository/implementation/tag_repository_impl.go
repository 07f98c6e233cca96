package implementation

import (
	"context"

	"notevault-be/internal/entity"
	"notevault-be/internal/mapper"
	"notevault-be/internal/model"
	"notevault-be/internal/repository/contract"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TagRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.TagMapper
}

func NewTagRepository(db *gorm.DB) contract.TagRepository {
	return &TagRepositoryImpl{
		db:     db,
		mapper: mapper.NewTagMapper(),
	}
}

const upsertTagSQL = `INSERT INTO tags (user_id, name) VALUES (?, ?)
ON CONFLICT (user_id, name) DO UPDATE SET name = EXCLUDED.name
RETURNING id, user_id, name, created_at`

func (r *TagRepositoryImpl) Upsert(ctx context.Context, userId uuid.UUID, name string) (*entity.Tag, error) {
	var m model.Tag
	if err := r.db.WithContext(ctx).Raw(upsertTagSQL, userId, name).Scan(&m).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *TagRepositoryImpl) AttachToNote(ctx context.Context, noteId, tagId uuid.UUID) error {
	return r.db.WithContext(ctx).
		Exec("INSERT INTO note_tags (note_id, tag_id) VALUES (?, ?) ON CONFLICT DO NOTHING", noteId, tagId).
		Error
}

func (r *TagRepositoryImpl) DetachAllFromNote(ctx context.Context, noteId uuid.UUID) error {
	return r.db.WithContext(ctx).Where("note_id = ?", noteId).Delete(&model.NoteTag{}).Error
}

func (r *TagRepositoryImpl) FindByNoteIDs(ctx context.Context, noteIds []uuid.UUID) (map[uuid.UUID][]*entity.Tag, error) {
	result := make(map[uuid.UUID][]*entity.Tag, len(noteIds))
	if len(noteIds) == 0 {
		return result, nil
	}

	var rows []struct {
		model.Tag
		NoteId uuid.UUID
	}
	err := r.db.WithContext(ctx).
		Table("tags").
		Select("tags.id, tags.user_id, tags.name, tags.created_at, note_tags.note_id").
		Joins("JOIN note_tags ON note_tags.tag_id = tags.id").
		Where("note_tags.note_id IN ?", noteIds).
		Order("tags.name ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for i := range rows {
		result[rows[i].NoteId] = append(result[rows[i].NoteId], r.mapper.ToEntity(&rows[i].Tag))
	}
	return result, nil
}

func (r *TagRepositoryImpl) FindUsage(ctx context.Context, userId uuid.UUID) ([]*entity.TagUsage, error) {
	var rows []struct {
		model.Tag
		NoteCount int64
	}
	err := r.db.WithContext(ctx).
		Table("tags").
		Select("tags.id, tags.user_id, tags.name, tags.created_at, COUNT(notes.id) AS note_count").
		Joins("LEFT JOIN note_tags ON note_tags.tag_id = tags.id").
		Joins("LEFT JOIN notes ON notes.id = note_tags.note_id AND notes.deleted_at IS NULL").
		Where("tags.user_id = ?", userId).
		Group("tags.id").
		Order("note_count DESC, tags.name ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	usage := make([]*entity.TagUsage, len(rows))
	for i := range rows {
		usage[i] = &entity.TagUsage{Tag: *r.mapper.ToEntity(&rows[i].Tag), NoteCount: rows[i].NoteCount}
	}
	return usage, nil
}

func (r *TagRepositoryImpl) DeleteOwned(ctx context.Context, tagId, userId uuid.UUID) error {
	db := r.db.WithContext(ctx)

	err := db.Exec(
		"DELETE FROM note_tags WHERE tag_id IN (SELECT id FROM tags WHERE id = ? AND user_id = ?)",
		tagId, userId,
	).Error
	if err != nil {
		return err
	}

	result := db.Where("id = ? AND user_id = ?", tagId, userId).Delete(&model.Tag{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return contract.ErrRecordNotFound
	}
	return nil
}
