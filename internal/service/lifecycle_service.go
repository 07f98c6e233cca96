package service

import (
	"context"
	"errors"

	"notevault-be/internal/entity"
	bus "notevault-be/internal/events"
	"notevault-be/internal/pkg/apperror"
	"notevault-be/internal/pkg/cache"
	"notevault-be/internal/pkg/logger"
	"notevault-be/internal/repository/contract"
	"notevault-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

// ILifecycleService moves notes and categories between active, trashed and
// removed. Every transition is scoped to the owner.
type ILifecycleService interface {
	TrashNote(ctx context.Context, userId, noteId uuid.UUID) error
	SoftDelete(ctx context.Context, kind contract.Trashable, userId, id uuid.UUID) error
	Restore(ctx context.Context, kind contract.Trashable, userId, id uuid.UUID) error
	Purge(ctx context.Context, kind contract.Trashable, userId, id uuid.UUID) error
}

type lifecycleService struct {
	uowFactory unitofwork.RepositoryFactory
	cache      *cache.Coordinator
	bus        bus.Publisher
	files      FileJanitor
	logger     logger.ILogger
}

func NewLifecycleService(
	uowFactory unitofwork.RepositoryFactory,
	cacheCoordinator *cache.Coordinator,
	eventBus bus.Publisher,
	files FileJanitor,
	log logger.ILogger,
) ILifecycleService {
	return &lifecycleService{
		uowFactory: uowFactory,
		cache:      cacheCoordinator,
		bus:        eventBus,
		files:      files,
		logger:     log,
	}
}

// TrashNote soft-deletes a note on behalf of its owner or an edit grantee.
// The row stays owned by the owner; deleted_by records the caller.
func (s *lifecycleService) TrashNote(ctx context.Context, userId, noteId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	access, err := resolveAccess(ctx, uow, noteId, userId, entity.PermissionEdit)
	if err != nil {
		return err
	}
	ownerId := access.Note.UserId

	if err := uow.LifecycleRepository().SoftDelete(ctx, contract.TrashableNotes, noteId, ownerId, userId); err != nil {
		return lifecycleError(err, contract.TrashableNotes)
	}

	s.cache.Invalidate(ctx, userId, ownerId)

	if s.bus != nil {
		err := s.bus.PublishNoteChanged(ctx, bus.NoteChanged{
			Kind:    bus.NoteTrashed,
			NoteId:  noteId,
			OwnerId: ownerId,
			ActorId: userId,
			Title:   access.Note.Title,
		})
		if err != nil {
			s.logger.Warn("LifecycleService", "Failed to publish note change", map[string]interface{}{"note_id": noteId, "error": err.Error()})
		}
	}
	return nil
}

func (s *lifecycleService) SoftDelete(ctx context.Context, kind contract.Trashable, userId, id uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.LifecycleRepository().SoftDelete(ctx, kind, id, userId, userId); err != nil {
		return lifecycleError(err, kind)
	}
	s.cache.Invalidate(ctx, userId)
	return nil
}

func (s *lifecycleService) Restore(ctx context.Context, kind contract.Trashable, userId, id uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.LifecycleRepository().Restore(ctx, kind, id, userId); err != nil {
		return lifecycleError(err, kind)
	}
	s.cache.Invalidate(ctx, userId)
	return nil
}

// Purge removes a trashed row and its dependents in one transaction, then
// deletes the attachment files it referenced.
func (s *lifecycleService) Purge(ctx context.Context, kind contract.Trashable, userId, id uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return storageError(err)
	}
	defer uow.Rollback()

	paths, err := uow.LifecycleRepository().Purge(ctx, kind, id, userId)
	if err != nil {
		return lifecycleError(err, kind)
	}
	if err := uow.Commit(); err != nil {
		return storageError(err)
	}

	s.files.remove(ctx, "purge", paths...)
	s.cache.Invalidate(ctx, userId)

	s.logger.Info("LifecycleService", "Purged", map[string]interface{}{
		"kind":  string(kind),
		"id":    id,
		"files": len(paths),
	})
	return nil
}

func lifecycleError(err error, kind contract.Trashable) error {
	if errors.Is(err, contract.ErrRecordNotFound) {
		return apperror.NotFound(resourceName(kind) + " not found")
	}
	return storageError(err)
}

func resourceName(kind contract.Trashable) string {
	switch kind {
	case contract.TrashableCategories:
		return "Category"
	default:
		return "Note"
	}
}
