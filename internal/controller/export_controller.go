package controller

import (
	"bytes"
	"fmt"
	"time"

	"notevault-be/internal/dto"
	"notevault-be/internal/pkg/apperror"
	"notevault-be/internal/pkg/serverutils"
	"notevault-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IExportController interface {
	RegisterRoutes(r fiber.Router, mw Middleware)
	ExportJSON(ctx *fiber.Ctx) error
	ExportCSV(ctx *fiber.Ctx) error
	Import(ctx *fiber.Ctx) error
}

type exportController struct {
	exportService service.IExportService
}

func NewExportController(exportService service.IExportService) IExportController {
	return &exportController{exportService: exportService}
}

func (c *exportController) RegisterRoutes(r fiber.Router, mw Middleware) {
	h := r.Group("/export/notes", mw.Auth)
	h.Get("/json", c.ExportJSON)
	h.Get("/csv", c.ExportCSV)
	h.Post("/import", passThrough(mw.UploadLimiter), c.Import)
}

func (c *exportController) ExportJSON(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserID(ctx)
	if err != nil {
		return err
	}

	res, err := c.exportService.ExportJSON(ctx.UserContext(), userId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success export notes", res))
}

func (c *exportController) ExportCSV(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserID(ctx)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := c.exportService.ExportCSV(ctx.UserContext(), userId, &buf); err != nil {
		return err
	}

	ctx.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	ctx.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="notes-%s.csv"`, time.Now().UTC().Format("2006-01-02")))
	return ctx.Send(buf.Bytes())
}

func (c *exportController) Import(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserID(ctx)
	if err != nil {
		return err
	}

	var req dto.ImportRequest
	if err := ctx.BodyParser(&req); err != nil {
		return apperror.Validation("Invalid format. Expected array of notes.")
	}

	res, err := c.exportService.Import(ctx.UserContext(), userId, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Import completed", res))
}
