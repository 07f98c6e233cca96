package service

import (
	"context"
	"strings"

	"notevault-be/internal/dto"
	"notevault-be/internal/entity"
	"notevault-be/internal/pkg/apperror"
	"notevault-be/internal/pkg/cache"
	"notevault-be/internal/pkg/logger"
	"notevault-be/internal/pkg/validation"
	"notevault-be/internal/repository/specification"
	"notevault-be/internal/repository/unitofwork"
	"notevault-be/pkg/events"

	"github.com/google/uuid"
)

type AccessRole string

const (
	AccessOwner   AccessRole = "owner"
	AccessGrantee AccessRole = "grantee"
)

// Access is the caller's effective relation to an active note.
type Access struct {
	Role       AccessRole
	Permission entity.Permission
	Note       *entity.Note
}

func (a *Access) IsOwner() bool {
	return a.Role == AccessOwner
}

// PermissionLabel is what the caller sees in note responses.
func (a *Access) PermissionLabel() string {
	if a.IsOwner() {
		return string(AccessOwner)
	}
	return string(a.Permission)
}

type ISharingService interface {
	ResolveAccess(ctx context.Context, noteId, userId uuid.UUID, required entity.Permission) (*Access, error)
	Share(ctx context.Context, ownerId uuid.UUID, ownerEmail string, noteId uuid.UUID, req *dto.ShareNoteRequest) (*dto.ShareResponse, error)
	ListGrantees(ctx context.Context, ownerId, noteId uuid.UUID) ([]dto.GranteeResponse, error)
	SharedWithMe(ctx context.Context, userId uuid.UUID) ([]dto.SharedNoteResponse, error)
	Revoke(ctx context.Context, ownerId, shareId uuid.UUID) error
}

type sharingService struct {
	uowFactory unitofwork.RepositoryFactory
	cache      *cache.Coordinator
	notifier   IEventDispatcher
	logger     logger.ILogger
}

func NewSharingService(
	uowFactory unitofwork.RepositoryFactory,
	cacheCoordinator *cache.Coordinator,
	notifier IEventDispatcher,
	log logger.ILogger,
) ISharingService {
	return &sharingService{
		uowFactory: uowFactory,
		cache:      cacheCoordinator,
		notifier:   notifier,
		logger:     log,
	}
}

// resolveAccess classifies userId against an active note. The owner
// short-circuits; a missing note or grant is NotFound; a grant below the
// required level is a permission error.
func resolveAccess(ctx context.Context, uow unitofwork.UnitOfWork, noteId, userId uuid.UUID, required entity.Permission) (*Access, error) {
	note, err := uow.NoteRepository().FindOne(ctx, specification.ByID{ID: noteId})
	if err != nil {
		return nil, storageError(err)
	}
	if note == nil {
		return nil, apperror.NotFound("Note not found")
	}

	if note.UserId == userId {
		return &Access{Role: AccessOwner, Permission: entity.PermissionEdit, Note: note}, nil
	}

	grant, err := uow.SharedNoteRepository().FindGrant(ctx, noteId, userId)
	if err != nil {
		return nil, storageError(err)
	}
	if grant == nil {
		return nil, apperror.NotFound("Note not found")
	}
	if !grant.Permission.Satisfies(required) {
		return nil, apperror.Forbidden("You do not have permission to edit this note")
	}

	return &Access{Role: AccessGrantee, Permission: grant.Permission, Note: note}, nil
}

func (s *sharingService) ResolveAccess(ctx context.Context, noteId, userId uuid.UUID, required entity.Permission) (*Access, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return resolveAccess(ctx, uow, noteId, userId, required)
}

func (s *sharingService) Share(ctx context.Context, ownerId uuid.UUID, ownerEmail string, noteId uuid.UUID, req *dto.ShareNoteRequest) (*dto.ShareResponse, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	if ownerEmail != "" && strings.EqualFold(strings.TrimSpace(req.Email), strings.TrimSpace(ownerEmail)) {
		return nil, selfShareError()
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)

	note, err := uow.NoteRepository().FindOne(ctx,
		specification.ByID{ID: noteId},
		specification.UserOwnedBy{UserID: ownerId},
	)
	if err != nil {
		return nil, storageError(err)
	}
	if note == nil {
		return nil, apperror.NotFound("Note not found")
	}

	recipient, err := uow.UserRepository().FindOne(ctx, specification.ByEmail{Email: req.Email})
	if err != nil {
		return nil, storageError(err)
	}
	if recipient == nil {
		return nil, apperror.NotFound("User not found")
	}
	if recipient.Id == ownerId {
		return nil, selfShareError()
	}

	share := entity.SharedNote{
		Id:         uuid.New(),
		NoteId:     note.Id,
		SharedBy:   ownerId,
		SharedWith: recipient.Id,
		Permission: entity.Permission(req.Permission),
	}
	if err := uow.SharedNoteRepository().Upsert(ctx, &share); err != nil {
		return nil, storageError(err)
	}

	s.cache.Invalidate(ctx, recipient.Id)

	owner, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: ownerId})
	if err != nil || owner == nil {
		owner = &entity.User{Id: ownerId, Email: ownerEmail}
	}
	s.notifier.Dispatch(ctx, events.New(events.NoteShared, map[string]interface{}{
		"note_id":         note.Id.String(),
		"note_title":      note.Title,
		"share_id":        share.Id.String(),
		"owner_id":        ownerId.String(),
		"owner_name":      owner.Username,
		"recipient_id":    recipient.Id.String(),
		"recipient_email": recipient.Email,
		"permission":      string(share.Permission),
	}))

	return &dto.ShareResponse{
		Id:        share.Id,
		NoteId:    note.Id,
		NoteTitle: note.Title,
		SharedWith: dto.SharedUser{
			Id:       recipient.Id,
			Username: recipient.Username,
			Email:    recipient.Email,
		},
		Permission: string(share.Permission),
		CreatedAt:  share.CreatedAt,
	}, nil
}

func selfShareError() error {
	return apperror.Validation("Validation failed", apperror.FieldError{
		Field:   "email",
		Message: "You cannot share a note with yourself",
	})
}

func (s *sharingService) ListGrantees(ctx context.Context, ownerId, noteId uuid.UUID) ([]dto.GranteeResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	note, err := uow.NoteRepository().FindOne(ctx,
		specification.ByID{ID: noteId},
		specification.UserOwnedBy{UserID: ownerId},
	)
	if err != nil {
		return nil, storageError(err)
	}
	if note == nil {
		return nil, apperror.NotFound("Note not found")
	}

	grantees, err := uow.SharedNoteRepository().FindGrantees(ctx, noteId)
	if err != nil {
		return nil, storageError(err)
	}

	res := make([]dto.GranteeResponse, 0, len(grantees))
	for _, g := range grantees {
		res = append(res, dto.GranteeResponse{
			ShareId:    g.ShareId,
			UserId:     g.UserId,
			Username:   g.Username,
			Email:      g.Email,
			Permission: string(g.Permission),
			SharedAt:   g.SharedAt,
		})
	}
	return res, nil
}

func (s *sharingService) SharedWithMe(ctx context.Context, userId uuid.UUID) ([]dto.SharedNoteResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	views, err := uow.SharedNoteRepository().FindSharedWith(ctx, userId)
	if err != nil {
		return nil, storageError(err)
	}

	noteIds := make([]uuid.UUID, 0, len(views))
	for _, v := range views {
		noteIds = append(noteIds, v.Note.Id)
	}
	tags, err := uow.TagRepository().FindByNoteIDs(ctx, noteIds)
	if err != nil {
		return nil, storageError(err)
	}

	res := make([]dto.SharedNoteResponse, 0, len(views))
	for _, v := range views {
		var category *dto.CategorySummary
		if v.Note.CategoryId != nil && v.CategoryName != nil {
			category = &dto.CategorySummary{Id: *v.Note.CategoryId, Name: *v.CategoryName}
			if v.CategoryColor != nil {
				category.Color = *v.CategoryColor
			}
		}

		note := buildNoteResponse(&v.Note, tags[v.Note.Id], nil, category)
		note.Permission = string(v.Permission)

		res = append(res, dto.SharedNoteResponse{
			ShareId:    v.ShareId,
			Permission: string(v.Permission),
			SharedAt:   v.SharedAt,
			Owner: dto.SharedUser{
				Id:       v.Note.UserId,
				Username: v.OwnerUsername,
				Email:    v.OwnerEmail,
			},
			Note:     note,
			Category: category,
		})
	}
	return res, nil
}

func (s *sharingService) Revoke(ctx context.Context, ownerId, shareId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	share, err := uow.SharedNoteRepository().DeleteOwned(ctx, shareId, ownerId)
	if err != nil {
		return repoError(err, "Share not found")
	}

	s.cache.Invalidate(ctx, share.SharedWith)

	s.notifier.Dispatch(ctx, events.New(events.ShareRevoked, map[string]interface{}{
		"note_id":      share.NoteId.String(),
		"share_id":     share.Id.String(),
		"owner_id":     ownerId.String(),
		"recipient_id": share.SharedWith.String(),
	}))
	return nil
}
