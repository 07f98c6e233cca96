package service

import (
	"context"
	"strings"
	"time"

	"notevault-be/internal/entity"
	"notevault-be/internal/pkg/logger"
	"notevault-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

var redactedAuditKeys = map[string]struct{}{
	"password":      {},
	"password_hash": {},
	"token":         {},
}

// AuditService appends audit entries. Failures are logged and never reach the
// request that triggered them.
type AuditService struct {
	uowFactory unitofwork.RepositoryFactory
	logger     logger.ILogger
}

func NewAuditService(uowFactory unitofwork.RepositoryFactory, log logger.ILogger) *AuditService {
	return &AuditService{uowFactory: uowFactory, logger: log}
}

func (s *AuditService) Record(ctx context.Context, log *entity.AuditLog) {
	if log.Id == uuid.Nil {
		log.Id = uuid.New()
	}
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now()
	}
	log.NewValues = redact(log.NewValues)

	ctx = context.WithoutCancel(ctx)
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.AuditRepository().Create(ctx, log); err != nil {
		s.logger.Error("AuditService", "Failed to write audit log", map[string]interface{}{
			"action":      log.Action,
			"entity_type": log.EntityType,
			"entity_id":   log.EntityId,
			"error":       err.Error(),
		})
	}
}

func redact(values map[string]interface{}) map[string]interface{} {
	if len(values) == 0 {
		return values
	}
	out := make(map[string]interface{}, len(values))
	for k, v := range values {
		if _, secret := redactedAuditKeys[strings.ToLower(k)]; secret {
			continue
		}
		out[k] = v
	}
	return out
}
