package controller

import (
	"notevault-be/internal/dto"
	"notevault-be/internal/pkg/cache"
	"notevault-be/internal/pkg/serverutils"
	"notevault-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ITagController interface {
	RegisterRoutes(r fiber.Router, mw Middleware)
	List(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
}

type tagController struct {
	tagService service.ITagService
	cache      *cache.Coordinator
}

func NewTagController(tagService service.ITagService, cacheCoordinator *cache.Coordinator) ITagController {
	return &tagController{tagService: tagService, cache: cacheCoordinator}
}

func (c *tagController) RegisterRoutes(r fiber.Router, mw Middleware) {
	h := r.Group("/tags", mw.Auth)
	h.Get("/", c.List)
	h.Delete("/:id", c.Delete)
}

func (c *tagController) List(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserID(ctx)
	if err != nil {
		return err
	}

	res, err := cache.Remember(ctx.UserContext(), c.cache, userId, ctx.OriginalURL(), func() ([]dto.TagUsageResponse, error) {
		return c.tagService.List(ctx.UserContext(), userId)
	})
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get tags", res))
}

func (c *tagController) Delete(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserID(ctx)
	if err != nil {
		return err
	}
	id, err := serverutils.ParamUUID(ctx, "id", "Tag")
	if err != nil {
		return err
	}

	if err := c.tagService.Delete(ctx.UserContext(), userId, id); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Tag deleted", nil))
}
