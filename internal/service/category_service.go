package service

import (
	"context"
	"strings"
	"time"

	"notevault-be/internal/dto"
	"notevault-be/internal/entity"
	"notevault-be/internal/pkg/cache"
	"notevault-be/internal/pkg/validation"
	"notevault-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

type ICategoryService interface {
	List(ctx context.Context, userId uuid.UUID) ([]dto.CategoryResponse, error)
	Create(ctx context.Context, userId uuid.UUID, req *dto.CategoryRequest) (*dto.CategoryResponse, error)
	Update(ctx context.Context, userId, categoryId uuid.UUID, req *dto.CategoryRequest) (*dto.CategoryResponse, error)
}

type categoryService struct {
	uowFactory unitofwork.RepositoryFactory
	cache      *cache.Coordinator
}

func NewCategoryService(uowFactory unitofwork.RepositoryFactory, cacheCoordinator *cache.Coordinator) ICategoryService {
	return &categoryService{
		uowFactory: uowFactory,
		cache:      cacheCoordinator,
	}
}

func (s *categoryService) List(ctx context.Context, userId uuid.UUID) ([]dto.CategoryResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	categories, err := uow.CategoryRepository().FindAllWithCount(ctx, userId)
	if err != nil {
		return nil, storageError(err)
	}

	res := make([]dto.CategoryResponse, 0, len(categories))
	for _, c := range categories {
		item := toCategoryResponse(&c.Category)
		item.NoteCount = c.NoteCount
		res = append(res, item)
	}
	return res, nil
}

func (s *categoryService) Create(ctx context.Context, userId uuid.UUID, req *dto.CategoryRequest) (*dto.CategoryResponse, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	category := entity.Category{
		Id:        uuid.New(),
		UserId:    userId,
		Name:      strings.TrimSpace(req.Name),
		Color:     colorOrDefault(req.Color),
		CreatedAt: time.Now(),
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.CategoryRepository().Create(ctx, &category); err != nil {
		return nil, storageError(err)
	}
	s.cache.Invalidate(ctx, userId)

	res := toCategoryResponse(&category)
	return &res, nil
}

func (s *categoryService) Update(ctx context.Context, userId, categoryId uuid.UUID, req *dto.CategoryRequest) (*dto.CategoryResponse, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	category := entity.Category{
		Id:     categoryId,
		UserId: userId,
		Name:   strings.TrimSpace(req.Name),
		Color:  colorOrDefault(req.Color),
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.CategoryRepository().Update(ctx, &category); err != nil {
		return nil, repoError(err, "Category not found")
	}
	s.cache.Invalidate(ctx, userId)

	res := toCategoryResponse(&category)
	return &res, nil
}

func colorOrDefault(color string) string {
	if color == "" {
		return entity.DefaultCategoryColor
	}
	return strings.ToUpper(color)
}

func toCategoryResponse(c *entity.Category) dto.CategoryResponse {
	return dto.CategoryResponse{
		Id:        c.Id,
		Name:      c.Name,
		Color:     c.Color,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}
