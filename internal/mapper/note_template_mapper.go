package mapper

import (
	"notevault-be/internal/entity"
	"notevault-be/internal/model"
)

type NoteTemplateMapper struct{}

func NewNoteTemplateMapper() *NoteTemplateMapper {
	return &NoteTemplateMapper{}
}

func (m *NoteTemplateMapper) ToEntity(t *model.NoteTemplate) *entity.NoteTemplate {
	if t == nil {
		return nil
	}
	return &entity.NoteTemplate{
		Id:              t.Id,
		UserId:          t.UserId,
		Name:            t.Name,
		Description:     t.Description,
		TitleTemplate:   t.TitleTemplate,
		ContentTemplate: t.ContentTemplate,
		IsPublic:        t.IsPublic,
		UsageCount:      t.UsageCount,
		CreatedAt:       t.CreatedAt,
	}
}

func (m *NoteTemplateMapper) ToModel(t *entity.NoteTemplate) *model.NoteTemplate {
	if t == nil {
		return nil
	}
	return &model.NoteTemplate{
		Id:              t.Id,
		UserId:          t.UserId,
		Name:            t.Name,
		Description:     t.Description,
		TitleTemplate:   t.TitleTemplate,
		ContentTemplate: t.ContentTemplate,
		IsPublic:        t.IsPublic,
		UsageCount:      t.UsageCount,
		CreatedAt:       t.CreatedAt,
	}
}

func (m *NoteTemplateMapper) ToEntities(templates []*model.NoteTemplate) []*entity.NoteTemplate {
	entities := make([]*entity.NoteTemplate, len(templates))
	for i, t := range templates {
		entities[i] = m.ToEntity(t)
	}
	return entities
}
