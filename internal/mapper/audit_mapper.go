package mapper

import (
	"encoding/json"

	"notevault-be/internal/entity"
	"notevault-be/internal/model"

	"gorm.io/datatypes"
)

type AuditLogMapper struct{}

func NewAuditLogMapper() *AuditLogMapper {
	return &AuditLogMapper{}
}

func (m *AuditLogMapper) ToModel(a *entity.AuditLog) *model.AuditLog {
	if a == nil {
		return nil
	}

	var values datatypes.JSON
	if len(a.NewValues) > 0 {
		if raw, err := json.Marshal(a.NewValues); err == nil {
			values = datatypes.JSON(raw)
		}
	}

	return &model.AuditLog{
		Id:         a.Id,
		UserId:     a.UserId,
		Action:     a.Action,
		EntityType: a.EntityType,
		EntityId:   a.EntityId,
		NewValues:  values,
		IpAddress:  a.IpAddress,
		UserAgent:  a.UserAgent,
		CreatedAt:  a.CreatedAt,
	}
}

func (m *AuditLogMapper) ToEntity(a *model.AuditLog) *entity.AuditLog {
	if a == nil {
		return nil
	}

	var values map[string]interface{}
	if len(a.NewValues) > 0 {
		_ = json.Unmarshal(a.NewValues, &values)
	}

	return &entity.AuditLog{
		Id:         a.Id,
		UserId:     a.UserId,
		Action:     a.Action,
		EntityType: a.EntityType,
		EntityId:   a.EntityId,
		NewValues:  values,
		IpAddress:  a.IpAddress,
		UserAgent:  a.UserAgent,
		CreatedAt:  a.CreatedAt,
	}
}
