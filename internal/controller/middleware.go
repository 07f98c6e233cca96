package controller

import (
	"notevault-be/internal/pkg/serverutils"

	"github.com/gofiber/fiber/v2"
)

// Middleware is the shared route guards handed to every controller.
type Middleware struct {
	Auth          fiber.Handler
	AuthLimiter   fiber.Handler
	UploadLimiter fiber.Handler
	Audit         serverutils.AuditRecorder
}

func (m Middleware) audit(action, entityType string) fiber.Handler {
	if m.Audit == nil {
		return func(ctx *fiber.Ctx) error { return ctx.Next() }
	}
	return serverutils.Audit(m.Audit, action, entityType)
}

func passThrough(h fiber.Handler) fiber.Handler {
	if h == nil {
		return func(ctx *fiber.Ctx) error { return ctx.Next() }
	}
	return h
}
