package implementation

import (
	"context"
	"time"

	"notevault-be/internal/entity"
	"notevault-be/internal/mapper"
	"notevault-be/internal/model"
	"notevault-be/internal/repository/contract"

	"gorm.io/gorm"
)

type AuditRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.AuditLogMapper
}

func NewAuditRepository(db *gorm.DB) contract.AuditRepository {
	return &AuditRepositoryImpl{
		db:     db,
		mapper: mapper.NewAuditLogMapper(),
	}
}

func (r *AuditRepositoryImpl) Create(ctx context.Context, log *entity.AuditLog) error {
	m := r.mapper.ToModel(log)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	log.Id = m.Id
	log.CreatedAt = m.CreatedAt
	return nil
}

func (r *AuditRepositoryImpl) FindBetween(ctx context.Context, from, to time.Time) ([]*entity.AuditLog, error) {
	var rows []struct {
		model.AuditLog
		Username *string
		Email    *string
	}
	err := r.db.WithContext(ctx).
		Table("audit_logs").
		Select("audit_logs.*, users.username, users.email").
		Joins("LEFT JOIN users ON users.id = audit_logs.user_id").
		Where("audit_logs.created_at >= ? AND audit_logs.created_at <= ?", from, to).
		Order("audit_logs.created_at DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	logs := make([]*entity.AuditLog, len(rows))
	for i := range rows {
		logs[i] = r.mapper.ToEntity(&rows[i].AuditLog)
		if rows[i].Username != nil {
			logs[i].Username = *rows[i].Username
		}
		if rows[i].Email != nil {
			logs[i].Email = *rows[i].Email
		}
	}
	return logs, nil
}
