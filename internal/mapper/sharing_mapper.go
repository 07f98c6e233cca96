package mapper

import (
	"notevault-be/internal/entity"
	"notevault-be/internal/model"
)

type SharedNoteMapper struct{}

func NewSharedNoteMapper() *SharedNoteMapper {
	return &SharedNoteMapper{}
}

func (m *SharedNoteMapper) ToEntity(s *model.SharedNote) *entity.SharedNote {
	if s == nil {
		return nil
	}
	return &entity.SharedNote{
		Id:         s.Id,
		NoteId:     s.NoteId,
		SharedBy:   s.SharedBy,
		SharedWith: s.SharedWith,
		Permission: entity.Permission(s.Permission),
		CreatedAt:  s.CreatedAt,
	}
}
