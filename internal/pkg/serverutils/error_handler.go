package serverutils

import (
	"errors"
	"net/http"

	"notevault-be/internal/pkg/apperror"
	"notevault-be/internal/pkg/logger"
	"notevault-be/pkg/query"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// NewErrorHandler renders every error returned by a handler as an
// ErrorResponse. Outside production, application errors carry the stack
// recorded where they were created.
func NewErrorHandler(log logger.ILogger, isProduction bool) fiber.ErrorHandler {
	return func(ctx *fiber.Ctx, err error) error {
		status, body := classify(err)

		if status >= http.StatusInternalServerError {
			log.Error("HTTP", "Request failed", map[string]interface{}{
				"method": ctx.Method(),
				"path":   ctx.Path(),
				"status": status,
				"error":  err.Error(),
			})
		}

		if appErr, ok := apperror.As(err); ok && !isProduction {
			body.Stack = appErr.StackTrace()
		}

		return ctx.Status(status).JSON(body)
	}
}

func classify(err error) (int, ErrorResponse) {
	body := ErrorResponse{Success: false}

	if appErr, ok := apperror.As(err); ok {
		body.Error = appErr.Message
		for _, d := range appErr.Details {
			body.Details = append(body.Details, fieldDetail{Field: d.Field, Message: d.Message})
		}
		return appErr.Kind.Status(), body
	}

	var paramErr *query.ParamError
	if errors.As(err, &paramErr) {
		body.Error = "Validation failed"
		body.Details = []fieldDetail{{Field: paramErr.Field, Message: paramErr.Message}}
		return http.StatusBadRequest, body
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			body.Error = "Duplicate entry. This record already exists."
			return http.StatusBadRequest, body
		case pgForeignKeyViolation:
			body.Error = "Invalid reference. Related record not found."
			return http.StatusBadRequest, body
		}
		body.Error = "Database error occurred"
		return http.StatusInternalServerError, body
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		body.Error = fiberErr.Message
		return fiberErr.Code, body
	}

	body.Error = "Internal server error"
	return http.StatusInternalServerError, body
}
