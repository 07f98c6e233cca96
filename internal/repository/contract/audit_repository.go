package contract

import (
	"context"
	"time"

	"notevault-be/internal/entity"
)

type AuditRepository interface {
	Create(ctx context.Context, log *entity.AuditLog) error
	FindBetween(ctx context.Context, from, to time.Time) ([]*entity.AuditLog, error)
}
