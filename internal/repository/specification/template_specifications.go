package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// VisibleTemplate matches templates owned by the user or marked public.
type VisibleTemplate struct {
	UserID uuid.UUID
}

func (s VisibleTemplate) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("(user_id = ? OR is_public = ?)", s.UserID, true)
}
