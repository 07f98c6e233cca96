package controller

import (
	"bytes"
	"fmt"

	"notevault-be/internal/entity"
	"notevault-be/internal/pkg/serverutils"
	"notevault-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IReportController interface {
	RegisterRoutes(r fiber.Router, mw Middleware)
	AuditCSV(ctx *fiber.Ctx) error
	Weekly(ctx *fiber.Ctx) error
	Monthly(ctx *fiber.Ctx) error
	SendWeekly(ctx *fiber.Ctx) error
}

type reportController struct {
	reportService service.IReportService
}

func NewReportController(reportService service.IReportService) IReportController {
	return &reportController{reportService: reportService}
}

func (c *reportController) RegisterRoutes(r fiber.Router, mw Middleware) {
	h := r.Group("/reports", mw.Auth, serverutils.RequireRole(entity.UserRoleAdmin, entity.UserRoleRootAdmin))
	h.Get("/audit", c.AuditCSV)
	h.Get("/weekly/:userId", c.Weekly)
	h.Get("/monthly/:userId", c.Monthly)
	h.Post("/weekly/:userId/send", c.SendWeekly)
}

func (c *reportController) AuditCSV(ctx *fiber.Ctx) error {
	startDate, endDate := ctx.Query("start_date"), ctx.Query("end_date")

	var buf bytes.Buffer
	if err := c.reportService.AuditCSV(ctx.UserContext(), startDate, endDate, &buf); err != nil {
		return err
	}

	ctx.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	ctx.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="audit-logs-%s-to-%s.csv"`, startDate, endDate))
	return ctx.Send(buf.Bytes())
}

func (c *reportController) Weekly(ctx *fiber.Ctx) error {
	userId, err := serverutils.ParamUUID(ctx, "userId", "User")
	if err != nil {
		return err
	}

	res, err := c.reportService.Weekly(ctx.UserContext(), userId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get weekly report", res))
}

func (c *reportController) Monthly(ctx *fiber.Ctx) error {
	userId, err := serverutils.ParamUUID(ctx, "userId", "User")
	if err != nil {
		return err
	}

	res, err := c.reportService.Monthly(ctx.UserContext(), userId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get monthly report", res))
}

func (c *reportController) SendWeekly(ctx *fiber.Ctx) error {
	userId, err := serverutils.ParamUUID(ctx, "userId", "User")
	if err != nil {
		return err
	}

	if err := c.reportService.SendWeekly(ctx.UserContext(), userId); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Weekly report sent", nil))
}
