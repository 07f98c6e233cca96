package service

import (
	"context"

	"notevault-be/internal/dto"
	"notevault-be/internal/pkg/cache"
	"notevault-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

type ITagService interface {
	List(ctx context.Context, userId uuid.UUID) ([]dto.TagUsageResponse, error)
	Delete(ctx context.Context, userId, tagId uuid.UUID) error
}

type tagService struct {
	uowFactory unitofwork.RepositoryFactory
	cache      *cache.Coordinator
}

func NewTagService(uowFactory unitofwork.RepositoryFactory, cacheCoordinator *cache.Coordinator) ITagService {
	return &tagService{
		uowFactory: uowFactory,
		cache:      cacheCoordinator,
	}
}

func (s *tagService) List(ctx context.Context, userId uuid.UUID) ([]dto.TagUsageResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	usage, err := uow.TagRepository().FindUsage(ctx, userId)
	if err != nil {
		return nil, storageError(err)
	}

	res := make([]dto.TagUsageResponse, 0, len(usage))
	for _, t := range usage {
		res = append(res, dto.TagUsageResponse{
			Id:        t.Id,
			Name:      t.Name,
			NoteCount: t.NoteCount,
			CreatedAt: t.CreatedAt,
		})
	}
	return res, nil
}

// Delete removes the tag and every note link to it in one transaction.
func (s *tagService) Delete(ctx context.Context, userId, tagId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return storageError(err)
	}
	defer uow.Rollback()

	if err := uow.TagRepository().DeleteOwned(ctx, tagId, userId); err != nil {
		return repoError(err, "Tag not found")
	}
	if err := uow.Commit(); err != nil {
		return storageError(err)
	}

	s.cache.Invalidate(ctx, userId)
	return nil
}
