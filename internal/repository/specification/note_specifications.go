package specification

import (
	"notevault-be/pkg/query"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NoteOwnedByUser struct {
	UserID uuid.UUID
}

func (s NoteOwnedByUser) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("notes.user_id = ?", s.UserID)
}

// ComposedFilter applies the search and filter predicates of a composed
// list query. Used on its own for counts.
type ComposedFilter struct {
	Result *query.Result
}

func (s ComposedFilter) Apply(db *gorm.DB) *gorm.DB {
	if !s.Result.Search.Empty() {
		db = db.Where(s.Result.Search.SQL, s.Result.Search.Args...)
	}
	if !s.Result.Filter.Empty() {
		db = db.Where(s.Result.Filter.SQL, s.Result.Filter.Args...)
	}
	return db
}

// Composed applies predicates, ordering and the page window.
type Composed struct {
	Result *query.Result
}

func (s Composed) Apply(db *gorm.DB) *gorm.DB {
	return ComposedFilter{Result: s.Result}.Apply(db).
		Order(s.Result.OrderBy).
		Limit(s.Result.Limit).
		Offset(s.Result.Offset)
}
