package controller

import (
	"context"

	"notevault-be/internal/dto"
	"notevault-be/internal/entity"
	"notevault-be/internal/pkg/cache"
	"notevault-be/internal/pkg/serverutils"
	"notevault-be/internal/repository/contract"
	"notevault-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ICategoryController interface {
	RegisterRoutes(r fiber.Router, mw Middleware)
	List(ctx *fiber.Ctx) error
	Create(ctx *fiber.Ctx) error
	Update(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
	Restore(ctx *fiber.Ctx) error
	Purge(ctx *fiber.Ctx) error
}

type categoryController struct {
	categoryService  service.ICategoryService
	lifecycleService service.ILifecycleService
	cache            *cache.Coordinator
}

func NewCategoryController(categoryService service.ICategoryService, lifecycleService service.ILifecycleService, cacheCoordinator *cache.Coordinator) ICategoryController {
	return &categoryController{
		categoryService:  categoryService,
		lifecycleService: lifecycleService,
		cache:            cacheCoordinator,
	}
}

func (c *categoryController) RegisterRoutes(r fiber.Router, mw Middleware) {
	h := r.Group("/categories", mw.Auth)
	h.Get("/", c.List)
	h.Post("/", mw.audit(entity.AuditActionCreate, entity.AuditEntityCategory), c.Create)
	h.Put("/:id", mw.audit(entity.AuditActionUpdate, entity.AuditEntityCategory), c.Update)
	h.Delete("/:id", mw.audit(entity.AuditActionDelete, entity.AuditEntityCategory), c.Delete)
	h.Post("/:id/restore", mw.audit(entity.AuditActionRestore, entity.AuditEntityCategory), c.Restore)
	h.Delete("/:id/permanent", mw.audit(entity.AuditActionPurge, entity.AuditEntityCategory), c.Purge)
}

func (c *categoryController) List(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserID(ctx)
	if err != nil {
		return err
	}

	res, err := cache.Remember(ctx.UserContext(), c.cache, userId, ctx.OriginalURL(), func() ([]dto.CategoryResponse, error) {
		return c.categoryService.List(ctx.UserContext(), userId)
	})
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get categories", res))
}

func (c *categoryController) Create(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserID(ctx)
	if err != nil {
		return err
	}

	var req dto.CategoryRequest
	if err := serverutils.ParseBody(ctx, &req); err != nil {
		return err
	}

	res, err := c.categoryService.Create(ctx.UserContext(), userId, &req)
	if err != nil {
		return err
	}

	ctx.Locals(serverutils.LocalAuditEntityID, res.Id)
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Success create category", res))
}

func (c *categoryController) Update(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserID(ctx)
	if err != nil {
		return err
	}
	id, err := serverutils.ParamUUID(ctx, "id", "Category")
	if err != nil {
		return err
	}

	var req dto.CategoryRequest
	if err := serverutils.ParseBody(ctx, &req); err != nil {
		return err
	}

	res, err := c.categoryService.Update(ctx.UserContext(), userId, id, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success update category", res))
}

func (c *categoryController) Delete(ctx *fiber.Ctx) error {
	return c.transition(ctx, c.lifecycleService.SoftDelete, "Category moved to trash")
}

func (c *categoryController) Restore(ctx *fiber.Ctx) error {
	return c.transition(ctx, c.lifecycleService.Restore, "Category restored")
}

func (c *categoryController) Purge(ctx *fiber.Ctx) error {
	return c.transition(ctx, c.lifecycleService.Purge, "Category permanently deleted")
}

type lifecycleStep func(ctx context.Context, kind contract.Trashable, userId, id uuid.UUID) error

func (c *categoryController) transition(ctx *fiber.Ctx, step lifecycleStep, message string) error {
	userId, err := serverutils.UserID(ctx)
	if err != nil {
		return err
	}
	id, err := serverutils.ParamUUID(ctx, "id", "Category")
	if err != nil {
		return err
	}

	if err := step(ctx.UserContext(), contract.TrashableCategories, userId, id); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any](message, nil))
}
