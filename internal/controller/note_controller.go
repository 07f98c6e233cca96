package controller

import (
	"notevault-be/internal/dto"
	"notevault-be/internal/entity"
	"notevault-be/internal/pkg/apperror"
	"notevault-be/internal/pkg/cache"
	"notevault-be/internal/pkg/serverutils"
	"notevault-be/internal/pkg/storage"
	"notevault-be/internal/repository/contract"
	"notevault-be/internal/service"
	"notevault-be/pkg/query"

	"github.com/gofiber/fiber/v2"
)

type INoteController interface {
	RegisterRoutes(r fiber.Router, mw Middleware)
	List(ctx *fiber.Ctx) error
	Trash(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	Create(ctx *fiber.Ctx) error
	Update(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
	Restore(ctx *fiber.Ctx) error
	Purge(ctx *fiber.Ctx) error
	DownloadAttachment(ctx *fiber.Ctx) error
	DeleteAttachment(ctx *fiber.Ctx) error
}

type noteController struct {
	noteService       service.INoteService
	lifecycleService  service.ILifecycleService
	attachmentService service.IAttachmentService
	cache             *cache.Coordinator
	files             storage.FileStorage
	maxFiles          int
}

func NewNoteController(
	noteService service.INoteService,
	lifecycleService service.ILifecycleService,
	attachmentService service.IAttachmentService,
	cacheCoordinator *cache.Coordinator,
	files storage.FileStorage,
	maxFiles int,
) INoteController {
	return &noteController{
		noteService:       noteService,
		lifecycleService:  lifecycleService,
		attachmentService: attachmentService,
		cache:             cacheCoordinator,
		files:             files,
		maxFiles:          maxFiles,
	}
}

func (c *noteController) RegisterRoutes(r fiber.Router, mw Middleware) {
	h := r.Group("/notes", mw.Auth)
	h.Get("/", c.List)
	h.Get("/trash", c.Trash)
	h.Post("/", mw.audit(entity.AuditActionCreate, entity.AuditEntityNote), c.Create)
	h.Get("/:id", c.Show)
	h.Put("/:id", mw.audit(entity.AuditActionUpdate, entity.AuditEntityNote), c.Update)
	h.Delete("/:id", mw.audit(entity.AuditActionDelete, entity.AuditEntityNote), c.Delete)
	h.Post("/:id/restore", mw.audit(entity.AuditActionRestore, entity.AuditEntityNote), c.Restore)
	h.Delete("/:id/permanent", mw.audit(entity.AuditActionPurge, entity.AuditEntityNote), c.Purge)
	h.Get("/:id/attachments/:attachmentId", c.DownloadAttachment)
	h.Delete("/:id/attachments/:attachmentId", c.DeleteAttachment)
}

func (c *noteController) List(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserID(ctx)
	if err != nil {
		return err
	}

	res, err := cache.Remember(ctx.UserContext(), c.cache, userId, ctx.OriginalURL(), func() (*dto.NoteListResponse, error) {
		return c.noteService.List(ctx.UserContext(), userId, query.Params(ctx.Queries()))
	})
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get notes", res))
}

func (c *noteController) Trash(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserID(ctx)
	if err != nil {
		return err
	}

	res, err := cache.Remember(ctx.UserContext(), c.cache, userId, ctx.OriginalURL(), func() (*dto.NoteListResponse, error) {
		return c.noteService.Trash(ctx.UserContext(), userId, query.Params(ctx.Queries()))
	})
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get trashed notes", res))
}

func (c *noteController) Show(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserID(ctx)
	if err != nil {
		return err
	}
	id, err := serverutils.ParamUUID(ctx, "id", "Note")
	if err != nil {
		return err
	}

	res, err := c.noteService.Show(ctx.UserContext(), userId, id)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success show note", res))
}

func (c *noteController) Create(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserID(ctx)
	if err != nil {
		return err
	}

	var req dto.CreateNoteRequest
	if isMultipart(ctx) {
		form, err := readNoteForm(ctx)
		if err != nil {
			return err
		}
		req = dto.CreateNoteRequest{
			Title:      form.Title,
			Content:    form.Content,
			CategoryId: form.CategoryId,
			IsPinned:   form.IsPinned,
			Tags:       form.Tags,
		}
	} else if err := ctx.BodyParser(&req); err != nil {
		return apperror.Validation("Invalid request body")
	}

	files, err := saveUploads(ctx, c.files, c.maxFiles)
	if err != nil {
		return err
	}

	res, err := c.noteService.Create(ctx.UserContext(), userId, &req, files)
	if err != nil {
		return err
	}

	ctx.Locals(serverutils.LocalAuditEntityID, res.Id)
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Success create note", res))
}

func (c *noteController) Update(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserID(ctx)
	if err != nil {
		return err
	}
	id, err := serverutils.ParamUUID(ctx, "id", "Note")
	if err != nil {
		return err
	}

	var req dto.UpdateNoteRequest
	if isMultipart(ctx) {
		form, err := readNoteForm(ctx)
		if err != nil {
			return err
		}
		req = dto.UpdateNoteRequest{
			Title:      form.Title,
			Content:    form.Content,
			CategoryId: form.CategoryId,
			IsPinned:   form.IsPinned,
		}
		if form.HasTags {
			req.Tags = &form.Tags
		}
	} else if err := ctx.BodyParser(&req); err != nil {
		return apperror.Validation("Invalid request body")
	}

	files, err := saveUploads(ctx, c.files, c.maxFiles)
	if err != nil {
		return err
	}

	res, err := c.noteService.Update(ctx.UserContext(), userId, id, &req, files)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success update note", res))
}

func (c *noteController) Delete(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserID(ctx)
	if err != nil {
		return err
	}
	id, err := serverutils.ParamUUID(ctx, "id", "Note")
	if err != nil {
		return err
	}

	if err := c.lifecycleService.TrashNote(ctx.UserContext(), userId, id); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Note moved to trash", nil))
}

func (c *noteController) Restore(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserID(ctx)
	if err != nil {
		return err
	}
	id, err := serverutils.ParamUUID(ctx, "id", "Note")
	if err != nil {
		return err
	}

	if err := c.lifecycleService.Restore(ctx.UserContext(), contract.TrashableNotes, userId, id); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Note restored", nil))
}

func (c *noteController) Purge(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserID(ctx)
	if err != nil {
		return err
	}
	id, err := serverutils.ParamUUID(ctx, "id", "Note")
	if err != nil {
		return err
	}

	if err := c.lifecycleService.Purge(ctx.UserContext(), contract.TrashableNotes, userId, id); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Note permanently deleted", nil))
}

func (c *noteController) DownloadAttachment(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserID(ctx)
	if err != nil {
		return err
	}
	noteId, err := serverutils.ParamUUID(ctx, "id", "Note")
	if err != nil {
		return err
	}
	attachmentId, err := serverutils.ParamUUID(ctx, "attachmentId", "Attachment")
	if err != nil {
		return err
	}

	file, err := c.attachmentService.Download(ctx.UserContext(), userId, noteId, attachmentId)
	if err != nil {
		return err
	}
	ctx.Set(fiber.HeaderContentType, file.MimeType)
	return ctx.Download(file.Path, file.OriginalName)
}

func (c *noteController) DeleteAttachment(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserID(ctx)
	if err != nil {
		return err
	}
	noteId, err := serverutils.ParamUUID(ctx, "id", "Note")
	if err != nil {
		return err
	}
	attachmentId, err := serverutils.ParamUUID(ctx, "attachmentId", "Attachment")
	if err != nil {
		return err
	}

	if err := c.attachmentService.Delete(ctx.UserContext(), userId, noteId, attachmentId); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Attachment deleted", nil))
}
