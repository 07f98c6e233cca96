package serverutils

import (
	"time"

	"notevault-be/internal/pkg/logger"

	"github.com/gofiber/fiber/v2"
)

// RequestLogger renders handler errors itself so the logged status is final.
func RequestLogger(log logger.ILogger) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		start := time.Now()
		renderError(ctx, ctx.Next())

		log.Info("HTTP", "Request", map[string]interface{}{
			"request_id": ctx.GetRespHeader(fiber.HeaderXRequestID),
			"method":     ctx.Method(),
			"path":       ctx.Path(),
			"status":     ctx.Response().StatusCode(),
			"latency_ms": time.Since(start).Milliseconds(),
			"ip":         ctx.IP(),
		})
		return nil
	}
}

// RenderErrors writes a handler error into the response so middleware
// registered before it sees the final status code.
func RenderErrors(ctx *fiber.Ctx) error {
	renderError(ctx, ctx.Next())
	return nil
}

func renderError(ctx *fiber.Ctx, err error) {
	if err == nil {
		return
	}
	if handlerErr := ctx.App().ErrorHandler(ctx, err); handlerErr != nil {
		_ = ctx.SendStatus(fiber.StatusInternalServerError)
	}
}
