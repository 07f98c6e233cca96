package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateTemplateRequest struct {
	Name            string `json:"name" validate:"required,notblank,max=100"`
	Description     string `json:"description" validate:"max=500"`
	TitleTemplate   string `json:"title_template" validate:"max=200"`
	ContentTemplate string `json:"content_template" validate:"max=10000"`
	IsPublic        bool   `json:"is_public"`
}

type TemplateResponse struct {
	Id              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	Description     string    `json:"description"`
	TitleTemplate   string    `json:"title_template"`
	ContentTemplate string    `json:"content_template"`
	IsPublic        bool      `json:"is_public"`
	IsOwner         bool      `json:"is_owner"`
	UsageCount      int       `json:"usage_count"`
	CreatedAt       time.Time `json:"created_at"`
}
