package service

import (
	"context"

	"notevault-be/internal/dto"
	"notevault-be/internal/entity"
	"notevault-be/internal/pkg/apperror"
	"notevault-be/internal/pkg/cache"
	"notevault-be/internal/pkg/storage"
	"notevault-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

type IAttachmentService interface {
	Download(ctx context.Context, userId, noteId, attachmentId uuid.UUID) (*dto.AttachmentDownload, error)
	Delete(ctx context.Context, userId, noteId, attachmentId uuid.UUID) error
}

type attachmentService struct {
	uowFactory unitofwork.RepositoryFactory
	storage    storage.FileStorage
	cache      *cache.Coordinator
	files      FileJanitor
}

func NewAttachmentService(
	uowFactory unitofwork.RepositoryFactory,
	fileStorage storage.FileStorage,
	cacheCoordinator *cache.Coordinator,
	files FileJanitor,
) IAttachmentService {
	return &attachmentService{
		uowFactory: uowFactory,
		storage:    fileStorage,
		cache:      cacheCoordinator,
		files:      files,
	}
}

// Download resolves an attachment the caller can read. The lookup binds the
// caller id, so an attachment id of another user's note is NotFound.
func (s *attachmentService) Download(ctx context.Context, userId, noteId, attachmentId uuid.UUID) (*dto.AttachmentDownload, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	attachment, err := uow.AttachmentRepository().FindAccessible(ctx, attachmentId, noteId, userId)
	if err != nil {
		return nil, storageError(err)
	}
	if attachment == nil {
		return nil, apperror.NotFound("Attachment not found")
	}

	path, err := s.storage.Resolve(attachment.StoredName)
	if err != nil {
		return nil, err
	}

	return &dto.AttachmentDownload{
		Path:         path,
		OriginalName: attachment.OriginalName,
		MimeType:     attachment.MimeType,
	}, nil
}

func (s *attachmentService) Delete(ctx context.Context, userId, noteId, attachmentId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	access, err := resolveAccess(ctx, uow, noteId, userId, entity.PermissionEdit)
	if err != nil {
		return err
	}

	attachment, err := uow.AttachmentRepository().FindAccessible(ctx, attachmentId, noteId, userId)
	if err != nil {
		return storageError(err)
	}
	if attachment == nil {
		return apperror.NotFound("Attachment not found")
	}

	if err := uow.Begin(ctx); err != nil {
		return storageError(err)
	}
	defer uow.Rollback()

	if err := uow.AttachmentRepository().Delete(ctx, attachment.Id); err != nil {
		return repoError(err, "Attachment not found")
	}
	if err := uow.Commit(); err != nil {
		return storageError(err)
	}

	s.files.remove(ctx, "attachment_delete", attachment.Path)
	s.cache.Invalidate(ctx, userId, access.Note.UserId)
	return nil
}
