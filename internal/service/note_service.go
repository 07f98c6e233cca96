package service

import (
	"context"
	"strings"
	"time"

	"notevault-be/internal/dto"
	"notevault-be/internal/entity"
	bus "notevault-be/internal/events"
	"notevault-be/internal/pkg/apperror"
	"notevault-be/internal/pkg/cache"
	"notevault-be/internal/pkg/logger"
	"notevault-be/internal/pkg/validation"
	"notevault-be/internal/repository/specification"
	"notevault-be/internal/repository/unitofwork"
	"notevault-be/pkg/query"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("notevault-be/service")

// NoteWriteHook runs inside the note transaction after the note, its tags
// and attachments are written.
type NoteWriteHook func(ctx context.Context, uow unitofwork.UnitOfWork, note *entity.Note) error

type INoteService interface {
	Create(ctx context.Context, userId uuid.UUID, req *dto.CreateNoteRequest, files []dto.UploadedFile, hooks ...NoteWriteHook) (*dto.NoteResponse, error)
	Update(ctx context.Context, userId, noteId uuid.UUID, req *dto.UpdateNoteRequest, files []dto.UploadedFile) (*dto.NoteResponse, error)
	Show(ctx context.Context, userId, noteId uuid.UUID) (*dto.NoteResponse, error)
	List(ctx context.Context, userId uuid.UUID, params query.Params) (*dto.NoteListResponse, error)
	Trash(ctx context.Context, userId uuid.UUID, params query.Params) (*dto.NoteListResponse, error)
}

type noteService struct {
	uowFactory    unitofwork.RepositoryFactory
	cache         *cache.Coordinator
	bus           bus.Publisher
	files         FileJanitor
	listComposer  *query.Composer
	trashComposer *query.Composer
	logger        logger.ILogger
}

func NewNoteService(
	uowFactory unitofwork.RepositoryFactory,
	cacheCoordinator *cache.Coordinator,
	eventBus bus.Publisher,
	files FileJanitor,
	listComposer *query.Composer,
	trashComposer *query.Composer,
	log logger.ILogger,
) INoteService {
	return &noteService{
		uowFactory:    uowFactory,
		cache:         cacheCoordinator,
		bus:           eventBus,
		files:         files,
		listComposer:  listComposer,
		trashComposer: trashComposer,
		logger:        log,
	}
}

func (s *noteService) Create(ctx context.Context, userId uuid.UUID, req *dto.CreateNoteRequest, files []dto.UploadedFile, hooks ...NoteWriteHook) (res *dto.NoteResponse, err error) {
	ctx, span := tracer.Start(ctx, "NoteService.Create", trace.WithAttributes(
		attribute.String("user.id", userId.String()),
		attribute.Int("note.attachments", len(files)),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			s.files.discard(ctx, files)
		}
		span.End()
	}()

	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)

	category, err := ownedCategory(ctx, uow, userId, req.CategoryId)
	if err != nil {
		return nil, err
	}

	if err := uow.Begin(ctx); err != nil {
		return nil, storageError(err)
	}
	defer uow.Rollback()

	note := entity.Note{
		Id:         uuid.New(),
		UserId:     userId,
		Title:      strings.TrimSpace(req.Title),
		Content:    req.Content,
		CategoryId: req.CategoryId,
		IsPinned:   req.IsPinned,
		CreatedAt:  time.Now(),
	}
	if err := uow.NoteRepository().Create(ctx, &note); err != nil {
		return nil, storageError(err)
	}

	tags, err := writeTags(ctx, uow, userId, note.Id, req.Tags)
	if err != nil {
		return nil, err
	}

	attachments, err := insertAttachments(ctx, uow, note.Id, files)
	if err != nil {
		return nil, err
	}

	for _, hook := range hooks {
		if err := hook(ctx, uow, &note); err != nil {
			return nil, storageError(err)
		}
	}

	if err := uow.Commit(); err != nil {
		return nil, storageError(err)
	}

	s.cache.Invalidate(ctx, userId)
	s.publish(ctx, bus.NoteCreated, &note, userId)

	out := buildNoteResponse(&note, tags, attachments, categorySummary(category))
	out.Permission = string(AccessOwner)
	return &out, nil
}

func (s *noteService) Update(ctx context.Context, userId, noteId uuid.UUID, req *dto.UpdateNoteRequest, files []dto.UploadedFile) (res *dto.NoteResponse, err error) {
	ctx, span := tracer.Start(ctx, "NoteService.Update", trace.WithAttributes(
		attribute.String("user.id", userId.String()),
		attribute.String("note.id", noteId.String()),
		attribute.Int("note.attachments", len(files)),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			s.files.discard(ctx, files)
		}
		span.End()
	}()

	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, storageError(err)
	}
	defer uow.Rollback()

	access, err := resolveAccess(ctx, uow, noteId, userId, entity.PermissionEdit)
	if err != nil {
		return nil, err
	}
	ownerId := access.Note.UserId

	category, err := ownedCategory(ctx, uow, ownerId, req.CategoryId)
	if err != nil {
		return nil, err
	}

	note := *access.Note
	note.Title = strings.TrimSpace(req.Title)
	note.Content = req.Content
	note.CategoryId = req.CategoryId
	note.IsPinned = req.IsPinned
	if err := uow.NoteRepository().Update(ctx, &note); err != nil {
		return nil, repoError(err, "Note not found")
	}

	var tags []*entity.Tag
	if req.Tags != nil {
		if err := uow.TagRepository().DetachAllFromNote(ctx, note.Id); err != nil {
			return nil, storageError(err)
		}
		if tags, err = writeTags(ctx, uow, ownerId, note.Id, *req.Tags); err != nil {
			return nil, err
		}
	} else {
		current, err := uow.TagRepository().FindByNoteIDs(ctx, []uuid.UUID{note.Id})
		if err != nil {
			return nil, storageError(err)
		}
		tags = current[note.Id]
	}

	existing, err := uow.AttachmentRepository().FindByNoteIDs(ctx, []uuid.UUID{note.Id})
	if err != nil {
		return nil, storageError(err)
	}
	added, err := insertAttachments(ctx, uow, note.Id, files)
	if err != nil {
		return nil, err
	}
	attachments := append(existing[note.Id], added...)

	if err := uow.Commit(); err != nil {
		return nil, storageError(err)
	}
	// committed attachment rows own these files from here on
	files = nil

	s.cache.Invalidate(ctx, userId, ownerId)
	s.publish(ctx, bus.NoteUpdated, &note, userId)

	out := buildNoteResponse(&note, tags, attachments, categorySummary(category))
	out.Permission = access.PermissionLabel()
	return &out, nil
}

func (s *noteService) Show(ctx context.Context, userId, noteId uuid.UUID) (*dto.NoteResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	access, err := resolveAccess(ctx, uow, noteId, userId, entity.PermissionRead)
	if err != nil {
		return nil, err
	}
	note := access.Note

	tags, err := uow.TagRepository().FindByNoteIDs(ctx, []uuid.UUID{note.Id})
	if err != nil {
		return nil, storageError(err)
	}
	attachments, err := uow.AttachmentRepository().FindByNoteIDs(ctx, []uuid.UUID{note.Id})
	if err != nil {
		return nil, storageError(err)
	}

	var category *entity.Category
	if note.CategoryId != nil {
		category, err = uow.CategoryRepository().FindOne(ctx,
			specification.ByID{ID: *note.CategoryId},
			specification.UserOwnedBy{UserID: note.UserId},
		)
		if err != nil {
			return nil, storageError(err)
		}
	}

	out := buildNoteResponse(note, tags[note.Id], attachments[note.Id], categorySummary(category))
	out.Permission = access.PermissionLabel()
	return &out, nil
}

func (s *noteService) List(ctx context.Context, userId uuid.UUID, params query.Params) (*dto.NoteListResponse, error) {
	composed, err := s.listComposer.Compose(params)
	if err != nil {
		return nil, err
	}
	return s.page(ctx, userId, composed)
}

func (s *noteService) Trash(ctx context.Context, userId uuid.UUID, params query.Params) (*dto.NoteListResponse, error) {
	composed, err := s.trashComposer.Compose(params)
	if err != nil {
		return nil, err
	}
	return s.page(ctx, userId, composed, specification.OnlyTrashed{})
}

func (s *noteService) page(ctx context.Context, userId uuid.UUID, composed *query.Result, extra ...specification.Specification) (*dto.NoteListResponse, error) {
	ctx, span := tracer.Start(ctx, "NoteService.List")
	defer span.End()

	uow := s.uowFactory.NewUnitOfWork(ctx)

	base := append([]specification.Specification{specification.NoteOwnedByUser{UserID: userId}}, extra...)

	total, err := uow.NoteRepository().Count(ctx, append(base, specification.ComposedFilter{Result: composed})...)
	if err != nil {
		return nil, storageError(err)
	}
	notes, err := uow.NoteRepository().FindAll(ctx, append(base, specification.Composed{Result: composed})...)
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

	data := make([]dto.NoteResponse, 0, len(notes))
	for _, n := range notes {
		var category *dto.CategorySummary
		if n.CategoryId != nil {
			category = categories[*n.CategoryId]
		}
		data = append(data, buildNoteResponse(n, tags[n.Id], nil, category))
	}

	return &dto.NoteListResponse{
		Data:       data,
		Pagination: composed.Pagination(total),
	}, nil
}

func (s *noteService) publish(ctx context.Context, kind string, note *entity.Note, actorId uuid.UUID) {
	if s.bus == nil {
		return
	}
	err := s.bus.PublishNoteChanged(ctx, bus.NoteChanged{
		Kind:    kind,
		NoteId:  note.Id,
		OwnerId: note.UserId,
		ActorId: actorId,
		Title:   note.Title,
	})
	if err != nil {
		s.logger.Warn("NoteService", "Failed to publish note change", map[string]interface{}{
			"note_id": note.Id,
			"kind":    kind,
			"error":   err.Error(),
		})
	}
}

// ownedCategory returns the owner's active category, nil when categoryId is
// nil, or a validation error when it does not resolve.
func ownedCategory(ctx context.Context, uow unitofwork.UnitOfWork, ownerId uuid.UUID, categoryId *uuid.UUID) (*entity.Category, error) {
	if categoryId == nil {
		return nil, nil
	}
	category, err := uow.CategoryRepository().FindOne(ctx,
		specification.ByID{ID: *categoryId},
		specification.UserOwnedBy{UserID: ownerId},
	)
	if err != nil {
		return nil, storageError(err)
	}
	if category == nil {
		return nil, apperror.Validation("Validation failed", apperror.FieldError{
			Field:   "category_id",
			Message: "Category not found",
		})
	}
	return category, nil
}

func activeCategories(ctx context.Context, uow unitofwork.UnitOfWork, userId uuid.UUID) (map[uuid.UUID]*dto.CategorySummary, error) {
	categories, err := uow.CategoryRepository().FindAll(ctx, specification.UserOwnedBy{UserID: userId})
	if err != nil {
		return nil, storageError(err)
	}
	out := make(map[uuid.UUID]*dto.CategorySummary, len(categories))
	for _, c := range categories {
		out[c.Id] = categorySummary(c)
	}
	return out, nil
}

// dedupeTags trims names and drops blanks and repeats, keeping first
// occurrence order.
func dedupeTags(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}

// writeTags get-or-creates each owner tag and links it to the note.
func writeTags(ctx context.Context, uow unitofwork.UnitOfWork, ownerId, noteId uuid.UUID, names []string) ([]*entity.Tag, error) {
	names = dedupeTags(names)
	tags := make([]*entity.Tag, 0, len(names))
	for _, name := range names {
		tag, err := uow.TagRepository().Upsert(ctx, ownerId, name)
		if err != nil {
			return nil, storageError(err)
		}
		if err := uow.TagRepository().AttachToNote(ctx, noteId, tag.Id); err != nil {
			return nil, storageError(err)
		}
		tags = append(tags, tag)
	}
	return tags, nil
}

func insertAttachments(ctx context.Context, uow unitofwork.UnitOfWork, noteId uuid.UUID, files []dto.UploadedFile) ([]*entity.Attachment, error) {
	attachments := make([]*entity.Attachment, 0, len(files))
	for _, f := range files {
		a := entity.Attachment{
			Id:           uuid.New(),
			NoteId:       noteId,
			StoredName:   f.StoredName,
			OriginalName: f.OriginalName,
			MimeType:     f.MimeType,
			Size:         f.Size,
			Path:         f.Path,
			CreatedAt:    time.Now(),
		}
		if err := uow.AttachmentRepository().Create(ctx, &a); err != nil {
			return nil, storageError(err)
		}
		attachments = append(attachments, &a)
	}
	return attachments, nil
}

func categorySummary(c *entity.Category) *dto.CategorySummary {
	if c == nil {
		return nil
	}
	return &dto.CategorySummary{Id: c.Id, Name: c.Name, Color: c.Color}
}

func buildNoteResponse(note *entity.Note, tags []*entity.Tag, attachments []*entity.Attachment, category *dto.CategorySummary) dto.NoteResponse {
	res := dto.NoteResponse{
		Id:          note.Id,
		UserId:      note.UserId,
		Title:       note.Title,
		Content:     note.Content,
		CategoryId:  note.CategoryId,
		Category:    category,
		IsPinned:    note.IsPinned,
		Tags:        make([]dto.TagResponse, 0, len(tags)),
		Attachments: make([]dto.AttachmentResponse, 0, len(attachments)),
		CreatedAt:   note.CreatedAt,
		UpdatedAt:   note.UpdatedAt,
		DeletedAt:   note.DeletedAt,
	}
	for _, t := range tags {
		res.Tags = append(res.Tags, dto.TagResponse{Id: t.Id, Name: t.Name})
	}
	for _, a := range attachments {
		res.Attachments = append(res.Attachments, dto.AttachmentResponse{
			Id:           a.Id,
			OriginalName: a.OriginalName,
			MimeType:     a.MimeType,
			Size:         a.Size,
			CreatedAt:    a.CreatedAt,
		})
	}
	return res
}
