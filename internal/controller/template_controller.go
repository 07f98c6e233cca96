package controller

import (
	"notevault-be/internal/dto"
	"notevault-be/internal/entity"
	"notevault-be/internal/pkg/apperror"
	"notevault-be/internal/pkg/serverutils"
	"notevault-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ITemplateController interface {
	RegisterRoutes(r fiber.Router, mw Middleware)
	List(ctx *fiber.Ctx) error
	Create(ctx *fiber.Ctx) error
	Use(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
}

type templateController struct {
	templateService service.ITemplateService
}

func NewTemplateController(templateService service.ITemplateService) ITemplateController {
	return &templateController{templateService: templateService}
}

func (c *templateController) RegisterRoutes(r fiber.Router, mw Middleware) {
	h := r.Group("/templates", mw.Auth)
	h.Get("/", c.List)
	h.Post("/", mw.audit(entity.AuditActionCreate, entity.AuditEntityTemplate), c.Create)
	h.Post("/:templateId/use", mw.audit(entity.AuditActionCreate, entity.AuditEntityNote), c.Use)
	h.Delete("/:templateId", mw.audit(entity.AuditActionDelete, entity.AuditEntityTemplate), c.Delete)
}

func (c *templateController) List(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserID(ctx)
	if err != nil {
		return err
	}

	res, err := c.templateService.List(ctx.UserContext(), userId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get templates", res))
}

func (c *templateController) Create(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserID(ctx)
	if err != nil {
		return err
	}

	var req dto.CreateTemplateRequest
	if err := ctx.BodyParser(&req); err != nil {
		return apperror.Validation("Invalid request body")
	}

	res, err := c.templateService.Create(ctx.UserContext(), userId, &req)
	if err != nil {
		return err
	}

	ctx.Locals(serverutils.LocalAuditEntityID, res.Id)
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Success create template", res))
}

func (c *templateController) Use(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserID(ctx)
	if err != nil {
		return err
	}
	id, err := serverutils.ParamUUID(ctx, "templateId", "Template")
	if err != nil {
		return err
	}

	res, err := c.templateService.Use(ctx.UserContext(), userId, id)
	if err != nil {
		return err
	}

	ctx.Locals(serverutils.LocalAuditEntityID, res.Id)
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Note created from template", res))
}

func (c *templateController) Delete(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserID(ctx)
	if err != nil {
		return err
	}
	id, err := serverutils.ParamUUID(ctx, "templateId", "Template")
	if err != nil {
		return err
	}

	if err := c.templateService.Delete(ctx.UserContext(), userId, id); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Template deleted", nil))
}
