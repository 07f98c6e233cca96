package service

import (
	"context"
	"encoding/csv"
	"io"
	"strconv"
	"strings"
	"time"

	"notevault-be/internal/dto"
	"notevault-be/internal/entity"
	"notevault-be/internal/pkg/apperror"
	"notevault-be/internal/pkg/cache"
	"notevault-be/internal/pkg/validation"
	"notevault-be/internal/repository/specification"
	"notevault-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

var csvHeader = []string{"ID", "Title", "Content", "Category", "Tags", "Pinned", "Created At", "Updated At"}

type IExportService interface {
	ExportJSON(ctx context.Context, userId uuid.UUID) ([]dto.ExportedNote, error)
	ExportCSV(ctx context.Context, userId uuid.UUID, w io.Writer) error
	Import(ctx context.Context, userId uuid.UUID, req *dto.ImportRequest) (*dto.ImportResponse, error)
}

type exportService struct {
	uowFactory unitofwork.RepositoryFactory
	cache      *cache.Coordinator
}

func NewExportService(uowFactory unitofwork.RepositoryFactory, cacheCoordinator *cache.Coordinator) IExportService {
	return &exportService{
		uowFactory: uowFactory,
		cache:      cacheCoordinator,
	}
}

func (s *exportService) ExportJSON(ctx context.Context, userId uuid.UUID) ([]dto.ExportedNote, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	notes, err := uow.NoteRepository().FindAll(ctx,
		specification.NoteOwnedByUser{UserID: userId},
		specification.RecentlyUpdatedFirst{},
	)
	if err != nil {
		return nil, storageError(err)
	}

	noteIds := make([]uuid.UUID, 0, len(notes))
	for _, n := range notes {
		noteIds = append(noteIds, n.Id)
	}
	tags, err := uow.TagRepository().FindByNoteIDs(ctx, noteIds)
	if err != nil {
		return nil, storageError(err)
	}
	categories, err := activeCategories(ctx, uow, userId)
	if err != nil {
		return nil, err
	}

	out := make([]dto.ExportedNote, 0, len(notes))
	for _, n := range notes {
		exported := dto.ExportedNote{
			Id:        n.Id,
			Title:     n.Title,
			Content:   n.Content,
			IsPinned:  n.IsPinned,
			Tags:      make([]string, 0, len(tags[n.Id])),
			CreatedAt: n.CreatedAt,
			UpdatedAt: n.UpdatedAt,
		}
		if n.CategoryId != nil {
			if c, ok := categories[*n.CategoryId]; ok {
				name := c.Name
				exported.Category = &name
			}
		}
		for _, t := range tags[n.Id] {
			exported.Tags = append(exported.Tags, t.Name)
		}
		out = append(out, exported)
	}
	return out, nil
}

func (s *exportService) ExportCSV(ctx context.Context, userId uuid.UUID, w io.Writer) error {
	notes, err := s.ExportJSON(ctx, userId)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, n := range notes {
		category := ""
		if n.Category != nil {
			category = *n.Category
		}
		updated := ""
		if n.UpdatedAt != nil {
			updated = n.UpdatedAt.UTC().Format(time.RFC3339)
		}
		record := []string{
			n.Id.String(),
			n.Title,
			n.Content,
			category,
			strings.Join(n.Tags, ";"),
			strconv.FormatBool(n.IsPinned),
			n.CreatedAt.UTC().Format(time.RFC3339),
			updated,
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Import validates every entry first, then writes the valid ones in a single
// transaction. Invalid entries are reported by index.
func (s *exportService) Import(ctx context.Context, userId uuid.UUID, req *dto.ImportRequest) (*dto.ImportResponse, error) {
	if req.Notes == nil {
		return nil, apperror.Validation("Invalid format. Expected array of notes.")
	}
	if len(req.Notes) == 0 || len(req.Notes) > 500 {
		return nil, apperror.Validation("Validation failed", apperror.FieldError{
			Field:   "notes",
			Message: "notes must contain between 1 and 500 items",
		})
	}

	res := &dto.ImportResponse{Errors: []dto.ImportError{}}
	valid := make([]dto.ImportNote, 0, len(req.Notes))
	for i := range req.Notes {
		if err := validation.Struct(&req.Notes[i]); err != nil {
			importErr := dto.ImportError{Index: i}
			if appErr, ok := apperror.As(err); ok {
				importErr.Details = appErr.Details
			}
			res.Errors = append(res.Errors, importErr)
			continue
		}
		valid = append(valid, req.Notes[i])
	}
	if len(valid) == 0 {
		return res, nil
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, storageError(err)
	}
	defer uow.Rollback()

	for _, in := range valid {
		note := entity.Note{
			Id:        uuid.New(),
			UserId:    userId,
			Title:     strings.TrimSpace(in.Title),
			Content:   in.Content,
			IsPinned:  in.IsPinned,
			CreatedAt: time.Now(),
		}
		if err := uow.NoteRepository().Create(ctx, &note); err != nil {
			return nil, storageError(err)
		}
		if _, err := writeTags(ctx, uow, userId, note.Id, in.Tags); err != nil {
			return nil, err
		}
	}

	if err := uow.Commit(); err != nil {
		return nil, storageError(err)
	}

	s.cache.Invalidate(ctx, userId)
	res.Imported = len(valid)
	return res, nil
}
