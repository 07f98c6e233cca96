package unitofwork

import (
	"context"

	"notevault-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	UserRepository() contract.UserRepository
	NoteRepository() contract.NoteRepository
	TagRepository() contract.TagRepository
	AttachmentRepository() contract.AttachmentRepository
	CategoryRepository() contract.CategoryRepository
	SharedNoteRepository() contract.SharedNoteRepository
	LifecycleRepository() contract.LifecycleRepository
	AuditRepository() contract.AuditRepository
	NoteTemplateRepository() contract.NoteTemplateRepository
	NotificationRepository() contract.NotificationRepository
	ReportRepository() contract.ReportRepository
}
