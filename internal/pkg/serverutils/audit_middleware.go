package serverutils

import (
	"context"
	"encoding/json"
	"strings"

	"notevault-be/internal/entity"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/google/uuid"
)

// LocalAuditEntityID lets a handler name the entity it created when the
// route has no :id parameter.
const LocalAuditEntityID = "audit_entity_id"

type AuditRecorder interface {
	Record(ctx context.Context, log *entity.AuditLog)
}

// Audit appends an audit entry after a successful (2xx) response. Strings
// taken from ctx are copied since the recorder may outlive the request.
func Audit(recorder AuditRecorder, action, entityType string) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		if err := ctx.Next(); err != nil {
			return err
		}

		status := ctx.Response().StatusCode()
		if status < 200 || status >= 300 {
			return nil
		}

		entry := &entity.AuditLog{
			Action:     action,
			EntityType: entityType,
			EntityId:   auditEntityID(ctx),
			NewValues:  auditValues(ctx),
			IpAddress:  utils.CopyString(ctx.IP()),
			UserAgent:  utils.CopyString(ctx.Get(fiber.HeaderUserAgent)),
		}
		if id, err := UserID(ctx); err == nil {
			entry.UserId = &id
		}

		recorder.Record(ctx.UserContext(), entry)
		return nil
	}
}

func auditEntityID(ctx *fiber.Ctx) string {
	if id, ok := ctx.Locals(LocalAuditEntityID).(uuid.UUID); ok {
		return id.String()
	}
	for _, name := range []string{"id", "shareId", "templateId"} {
		if v := ctx.Params(name); v != "" {
			return utils.CopyString(v)
		}
	}
	return ""
}

func auditValues(ctx *fiber.Ctx) map[string]interface{} {
	if !strings.HasPrefix(ctx.Get(fiber.HeaderContentType), fiber.MIMEApplicationJSON) {
		return nil
	}
	var values map[string]interface{}
	if err := json.Unmarshal(ctx.Body(), &values); err != nil {
		return nil
	}
	return values
}
