package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// AuditLog is append-only.
type AuditLog struct {
	Id         uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId     *uuid.UUID     `gorm:"type:uuid;index"`
	Action     string         `gorm:"type:varchar(50);not null"`
	EntityType string         `gorm:"type:varchar(50);not null"`
	EntityId   string         `gorm:"type:varchar(64)"`
	NewValues  datatypes.JSON `gorm:"type:jsonb"`
	IpAddress  string         `gorm:"type:varchar(45)"`
	UserAgent  string         `gorm:"type:text"`
	CreatedAt  time.Time      `gorm:"autoCreateTime;index"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}
