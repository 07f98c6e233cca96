package scope

import "gorm.io/gorm"

// OnlyTrashed lifts gorm's soft-delete filter and keeps deleted rows only.
func OnlyTrashed(db *gorm.DB) *gorm.DB {
	return db.Unscoped().Where("deleted_at IS NOT NULL")
}
