package entity

import (
	"time"

	"github.com/google/uuid"
)

type AuditLog struct {
	Id         uuid.UUID
	UserId     *uuid.UUID
	Username   string
	Email      string
	Action     string
	EntityType string
	EntityId   string
	NewValues  map[string]interface{}
	IpAddress  string
	UserAgent  string
	CreatedAt  time.Time
}

const (
	AuditActionCreate  = "CREATE"
	AuditActionUpdate  = "UPDATE"
	AuditActionDelete  = "DELETE"
	AuditActionRestore = "RESTORE"
	AuditActionPurge   = "PURGE"
	AuditActionShare   = "SHARE"
	AuditActionRevoke  = "REVOKE"
)

const (
	AuditEntityNote     = "note"
	AuditEntityCategory = "category"
	AuditEntityShare    = "note_share"
	AuditEntityTemplate = "template"
)
