package serverutils

import (
	"notevault-be/internal/pkg/apperror"
	"notevault-be/internal/pkg/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

func ValidateRequest(req interface{}) error {
	return validation.Struct(req)
}

// ParseBody decodes the request body into req and validates it.
func ParseBody(ctx *fiber.Ctx, req interface{}) error {
	if err := ctx.BodyParser(req); err != nil {
		return apperror.Validation("Invalid request body")
	}
	return ValidateRequest(req)
}

// ParamUUID reads a path parameter as an id. Malformed ids cannot match any
// row, so they are reported as not found.
func ParamUUID(ctx *fiber.Ctx, name, resource string) (uuid.UUID, error) {
	id, err := uuid.Parse(ctx.Params(name))
	if err != nil {
		return uuid.Nil, apperror.NotFound(resource + " not found")
	}
	return id, nil
}
