package service

import (
	"context"
	"strings"
	"time"

	"notevault-be/internal/dto"
	"notevault-be/internal/entity"
	"notevault-be/internal/pkg/apperror"
	"notevault-be/internal/pkg/validation"
	"notevault-be/internal/repository/specification"
	"notevault-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

const untitledNote = "Untitled Note"

type ITemplateService interface {
	List(ctx context.Context, userId uuid.UUID) ([]dto.TemplateResponse, error)
	Create(ctx context.Context, userId uuid.UUID, req *dto.CreateTemplateRequest) (*dto.TemplateResponse, error)
	Use(ctx context.Context, userId, templateId uuid.UUID) (*dto.NoteResponse, error)
	Delete(ctx context.Context, userId, templateId uuid.UUID) error
}

type templateService struct {
	uowFactory  unitofwork.RepositoryFactory
	noteService INoteService
}

func NewTemplateService(uowFactory unitofwork.RepositoryFactory, noteService INoteService) ITemplateService {
	return &templateService{
		uowFactory:  uowFactory,
		noteService: noteService,
	}
}

func (s *templateService) List(ctx context.Context, userId uuid.UUID) ([]dto.TemplateResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	templates, err := uow.NoteTemplateRepository().FindVisible(ctx, userId)
	if err != nil {
		return nil, storageError(err)
	}

	res := make([]dto.TemplateResponse, 0, len(templates))
	for _, t := range templates {
		res = append(res, toTemplateResponse(t, userId))
	}
	return res, nil
}

func (s *templateService) Create(ctx context.Context, userId uuid.UUID, req *dto.CreateTemplateRequest) (*dto.TemplateResponse, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	template := entity.NoteTemplate{
		Id:              uuid.New(),
		UserId:          userId,
		Name:            strings.TrimSpace(req.Name),
		Description:     req.Description,
		TitleTemplate:   req.TitleTemplate,
		ContentTemplate: req.ContentTemplate,
		IsPublic:        req.IsPublic,
		CreatedAt:       time.Now(),
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.NoteTemplateRepository().Create(ctx, &template); err != nil {
		return nil, storageError(err)
	}

	res := toTemplateResponse(&template, userId)
	return &res, nil
}

// Use creates a note from a visible template. The usage counter is bumped in
// the same transaction as the note insert.
func (s *templateService) Use(ctx context.Context, userId, templateId uuid.UUID) (*dto.NoteResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	template, err := uow.NoteTemplateRepository().FindOne(ctx,
		specification.ByID{ID: templateId},
		specification.VisibleTemplate{UserID: userId},
	)
	if err != nil {
		return nil, storageError(err)
	}
	if template == nil {
		return nil, apperror.NotFound("Template not found")
	}

	title := strings.TrimSpace(template.TitleTemplate)
	if title == "" {
		title = untitledNote
	}
	req := &dto.CreateNoteRequest{
		Title:   title,
		Content: template.ContentTemplate,
	}

	return s.noteService.Create(ctx, userId, req, nil,
		func(ctx context.Context, uow unitofwork.UnitOfWork, _ *entity.Note) error {
			return uow.NoteTemplateRepository().IncrementUsage(ctx, template.Id)
		},
	)
}

func (s *templateService) Delete(ctx context.Context, userId, templateId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	err := uow.NoteTemplateRepository().DeleteOwned(ctx, templateId, userId)
	return repoError(err, "Template not found")
}

func toTemplateResponse(t *entity.NoteTemplate, userId uuid.UUID) dto.TemplateResponse {
	return dto.TemplateResponse{
		Id:              t.Id,
		Name:            t.Name,
		Description:     t.Description,
		TitleTemplate:   t.TitleTemplate,
		ContentTemplate: t.ContentTemplate,
		IsPublic:        t.IsPublic,
		IsOwner:         t.UserId == userId,
		UsageCount:      t.UsageCount,
		CreatedAt:       t.CreatedAt,
	}
}
