package controller

import (
	"notevault-be/internal/dto"
	"notevault-be/internal/entity"
	"notevault-be/internal/pkg/serverutils"
	"notevault-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ISharingController interface {
	RegisterRoutes(r fiber.Router, mw Middleware)
	Share(ctx *fiber.Ctx) error
	ListGrantees(ctx *fiber.Ctx) error
	SharedWithMe(ctx *fiber.Ctx) error
	Revoke(ctx *fiber.Ctx) error
}

type sharingController struct {
	sharingService service.ISharingService
}

func NewSharingController(sharingService service.ISharingService) ISharingController {
	return &sharingController{sharingService: sharingService}
}

func (c *sharingController) RegisterRoutes(r fiber.Router, mw Middleware) {
	h := r.Group("/sharing", mw.Auth)
	h.Post("/notes/:id/share", mw.audit(entity.AuditActionShare, entity.AuditEntityShare), c.Share)
	h.Get("/notes/:id/users", c.ListGrantees)
	h.Get("/shared-with-me", c.SharedWithMe)
	h.Delete("/:shareId", mw.audit(entity.AuditActionRevoke, entity.AuditEntityShare), c.Revoke)
}

func (c *sharingController) Share(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserID(ctx)
	if err != nil {
		return err
	}
	noteId, err := serverutils.ParamUUID(ctx, "id", "Note")
	if err != nil {
		return err
	}

	var req dto.ShareNoteRequest
	if err := serverutils.ParseBody(ctx, &req); err != nil {
		return err
	}

	res, err := c.sharingService.Share(ctx.UserContext(), userId, serverutils.UserEmail(ctx), noteId, &req)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Note shared successfully", res))
}

func (c *sharingController) ListGrantees(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserID(ctx)
	if err != nil {
		return err
	}
	noteId, err := serverutils.ParamUUID(ctx, "id", "Note")
	if err != nil {
		return err
	}

	res, err := c.sharingService.ListGrantees(ctx.UserContext(), userId, noteId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get shared users", res))
}

func (c *sharingController) SharedWithMe(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserID(ctx)
	if err != nil {
		return err
	}

	res, err := c.sharingService.SharedWithMe(ctx.UserContext(), userId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get shared notes", res))
}

func (c *sharingController) Revoke(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserID(ctx)
	if err != nil {
		return err
	}
	shareId, err := serverutils.ParamUUID(ctx, "shareId", "Share")
	if err != nil {
		return err
	}

	if err := c.sharingService.Revoke(ctx.UserContext(), userId, shareId); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Share revoked", nil))
}
