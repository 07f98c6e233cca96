package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"notevault-be/internal/repository/scope"
)

// ByID filters by ID
type ByID struct {
	ID uuid.UUID
}

func (s ByID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("id = ?", s.ID)
}

type RecentlyUpdatedFirst struct{}

func (s RecentlyUpdatedFirst) Apply(db *gorm.DB) *gorm.DB {
	return db.Scopes(scope.OrderByUpdatedDesc)
}

// OnlyTrashed selects soft-deleted rows only.
type OnlyTrashed struct{}

func (s OnlyTrashed) Apply(db *gorm.DB) *gorm.DB {
	return db.Scopes(scope.OnlyTrashed)
}
