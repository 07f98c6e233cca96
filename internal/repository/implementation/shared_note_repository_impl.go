package implementation

import (
	"context"
	"errors"
	"time"

	"notevault-be/internal/entity"
	"notevault-be/internal/mapper"
	"notevault-be/internal/model"
	"notevault-be/internal/repository/contract"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SharedNoteRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.SharedNoteMapper
}

func NewSharedNoteRepository(db *gorm.DB) contract.SharedNoteRepository {
	return &SharedNoteRepositoryImpl{
		db:     db,
		mapper: mapper.NewSharedNoteMapper(),
	}
}

const upsertShareSQL = `INSERT INTO shared_notes (note_id, shared_by, shared_with, permission) VALUES (?, ?, ?, ?)
ON CONFLICT (note_id, shared_with) DO UPDATE SET permission = EXCLUDED.permission
RETURNING id, note_id, shared_by, shared_with, permission, created_at`

func (r *SharedNoteRepositoryImpl) Upsert(ctx context.Context, share *entity.SharedNote) error {
	var m model.SharedNote
	err := r.db.WithContext(ctx).
		Raw(upsertShareSQL, share.NoteId, share.SharedBy, share.SharedWith, string(share.Permission)).
		Scan(&m).Error
	if err != nil {
		return err
	}
	*share = *r.mapper.ToEntity(&m)
	return nil
}

func (r *SharedNoteRepositoryImpl) FindGrant(ctx context.Context, noteId, userId uuid.UUID) (*entity.SharedNote, error) {
	var m model.SharedNote
	err := r.db.WithContext(ctx).
		Where("note_id = ? AND shared_with = ?", noteId, userId).
		Take(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *SharedNoteRepositoryImpl) FindGrantees(ctx context.Context, noteId uuid.UUID) ([]*entity.Grantee, error) {
	var rows []struct {
		ShareId    uuid.UUID
		UserId     uuid.UUID
		Username   string
		Email      string
		Permission string
		SharedAt   time.Time
	}
	err := r.db.WithContext(ctx).
		Table("shared_notes").
		Select("shared_notes.id AS share_id, users.id AS user_id, users.username, users.email, shared_notes.permission, shared_notes.created_at AS shared_at").
		Joins("JOIN users ON users.id = shared_notes.shared_with").
		Where("shared_notes.note_id = ?", noteId).
		Order("shared_notes.created_at ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	grantees := make([]*entity.Grantee, len(rows))
	for i, row := range rows {
		grantees[i] = &entity.Grantee{
			ShareId:    row.ShareId,
			UserId:     row.UserId,
			Username:   row.Username,
			Email:      row.Email,
			Permission: entity.Permission(row.Permission),
			SharedAt:   row.SharedAt,
		}
	}
	return grantees, nil
}

func (r *SharedNoteRepositoryImpl) FindSharedWith(ctx context.Context, userId uuid.UUID) ([]*entity.SharedNoteView, error) {
	var rows []struct {
		ShareId       uuid.UUID
		Permission    string
		SharedAt      time.Time
		NoteId        uuid.UUID
		OwnerId       uuid.UUID
		Title         string
		Content       string
		CategoryId    *uuid.UUID
		IsPinned      bool
		CreatedAt     time.Time
		UpdatedAt     time.Time
		OwnerUsername string
		OwnerEmail    string
		CategoryName  *string
		CategoryColor *string
	}
	err := r.db.WithContext(ctx).
		Table("shared_notes").
		Select(`shared_notes.id AS share_id, shared_notes.permission, shared_notes.created_at AS shared_at,
			notes.id AS note_id, notes.user_id AS owner_id, notes.title, notes.content, notes.category_id,
			notes.is_pinned, notes.created_at, notes.updated_at,
			users.username AS owner_username, users.email AS owner_email,
			categories.name AS category_name, categories.color AS category_color`).
		Joins("JOIN notes ON notes.id = shared_notes.note_id AND notes.deleted_at IS NULL").
		Joins("JOIN users ON users.id = notes.user_id").
		Joins("LEFT JOIN categories ON categories.id = notes.category_id AND categories.deleted_at IS NULL").
		Where("shared_notes.shared_with = ?", userId).
		Order("shared_notes.created_at DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	views := make([]*entity.SharedNoteView, len(rows))
	for i, row := range rows {
		updatedAt := row.UpdatedAt
		views[i] = &entity.SharedNoteView{
			ShareId:    row.ShareId,
			Permission: entity.Permission(row.Permission),
			SharedAt:   row.SharedAt,
			Note: entity.Note{
				Id:         row.NoteId,
				UserId:     row.OwnerId,
				Title:      row.Title,
				Content:    row.Content,
				CategoryId: row.CategoryId,
				IsPinned:   row.IsPinned,
				CreatedAt:  row.CreatedAt,
				UpdatedAt:  &updatedAt,
			},
			OwnerUsername: row.OwnerUsername,
			OwnerEmail:    row.OwnerEmail,
			CategoryName:  row.CategoryName,
			CategoryColor: row.CategoryColor,
		}
	}
	return views, nil
}

const deleteOwnedShareSQL = `DELETE FROM shared_notes s USING notes n
WHERE s.id = ? AND s.note_id = n.id AND n.user_id = ?
RETURNING s.id, s.note_id, s.shared_by, s.shared_with, s.permission, s.created_at`

func (r *SharedNoteRepositoryImpl) DeleteOwned(ctx context.Context, shareId, ownerId uuid.UUID) (*entity.SharedNote, error) {
	var rows []model.SharedNote
	if err := r.db.WithContext(ctx).Raw(deleteOwnedShareSQL, shareId, ownerId).Scan(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, contract.ErrRecordNotFound
	}
	return r.mapper.ToEntity(&rows[0]), nil
}
