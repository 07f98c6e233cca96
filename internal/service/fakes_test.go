package service

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"notevault-be/internal/dto"
	"notevault-be/internal/entity"
	bus "notevault-be/internal/events"
	"notevault-be/internal/model"
	"notevault-be/internal/pkg/cache"
	"notevault-be/internal/pkg/logger"
	"notevault-be/internal/pkg/metrics"
	"notevault-be/internal/pkg/storage"
	"notevault-be/internal/repository/contract"
	"notevault-be/internal/repository/specification"
	"notevault-be/internal/repository/unitofwork"
	"notevault-be/pkg/events"
	"notevault-be/pkg/query"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
)

// fakeDB is an in-memory stand-in for the repositories. Writes made inside a
// transaction are staged and only applied on Commit.
type fakeDB struct {
	mu sync.Mutex

	users         map[uuid.UUID]*entity.User
	notes         map[uuid.UUID]*entity.Note
	categories    map[uuid.UUID]*entity.Category
	tags          map[uuid.UUID]*entity.Tag
	noteTags      map[uuid.UUID][]uuid.UUID
	attachments   map[uuid.UUID]*entity.Attachment
	grants        map[uuid.UUID]*entity.SharedNote
	templates     map[uuid.UUID]*entity.NoteTemplate
	notifications []model.Notification

	attachmentCreateErr error
	notificationErr     error
	summaryErr          map[uuid.UUID]error

	commits   int
	rollbacks int
}

func newFakeDB() *fakeDB {
	return &fakeDB{
		users:       map[uuid.UUID]*entity.User{},
		notes:       map[uuid.UUID]*entity.Note{},
		categories:  map[uuid.UUID]*entity.Category{},
		tags:        map[uuid.UUID]*entity.Tag{},
		noteTags:    map[uuid.UUID][]uuid.UUID{},
		attachments: map[uuid.UUID]*entity.Attachment{},
		grants:      map[uuid.UUID]*entity.SharedNote{},
		templates:   map[uuid.UUID]*entity.NoteTemplate{},
	}
}

func (db *fakeDB) NewUnitOfWork(context.Context) unitofwork.UnitOfWork {
	return &fakeUoW{db: db}
}

func (db *fakeDB) addUser(username, email string) *entity.User {
	u := &entity.User{Id: uuid.New(), Username: username, Email: email, Role: entity.UserRoleUser, CreatedAt: time.Now()}
	db.users[u.Id] = u
	return u
}

func (db *fakeDB) addNote(owner uuid.UUID, title string) *entity.Note {
	n := &entity.Note{Id: uuid.New(), UserId: owner, Title: title, CreatedAt: time.Now()}
	db.notes[n.Id] = n
	return n
}

func (db *fakeDB) grant(noteId, owner, grantee uuid.UUID, p entity.Permission) *entity.SharedNote {
	g := &entity.SharedNote{Id: uuid.New(), NoteId: noteId, SharedBy: owner, SharedWith: grantee, Permission: p, CreatedAt: time.Now()}
	db.grants[g.Id] = g
	return g
}

func (db *fakeDB) tagNames(noteId uuid.UUID) []string {
	db.mu.Lock()
	defer db.mu.Unlock()
	names := []string{}
	for _, id := range db.noteTags[noteId] {
		names = append(names, db.tags[id].Name)
	}
	return names
}

func (db *fakeDB) notificationCount() int {
	db.mu.Lock()
	defer db.mu.Unlock()
	return len(db.notifications)
}

type fakeUoW struct {
	db     *fakeDB
	inTx   bool
	staged []func()
}

func (u *fakeUoW) Begin(context.Context) error {
	if u.inTx {
		return errors.New("transaction already started")
	}
	u.inTx = true
	return nil
}

func (u *fakeUoW) Commit() error {
	if !u.inTx {
		return errors.New("no transaction to commit")
	}
	u.db.mu.Lock()
	for _, apply := range u.staged {
		apply()
	}
	u.db.commits++
	u.db.mu.Unlock()
	u.staged = nil
	u.inTx = false
	return nil
}

func (u *fakeUoW) Rollback() error {
	if !u.inTx {
		return errors.New("no transaction to rollback")
	}
	u.db.mu.Lock()
	u.db.rollbacks++
	u.db.mu.Unlock()
	u.staged = nil
	u.inTx = false
	return nil
}

// write applies fn now or on Commit when a transaction is open.
func (u *fakeUoW) write(fn func()) {
	if u.inTx {
		u.staged = append(u.staged, fn)
		return
	}
	u.db.mu.Lock()
	fn()
	u.db.mu.Unlock()
}

func (u *fakeUoW) UserRepository() contract.UserRepository         { return fakeUsers{u: u} }
func (u *fakeUoW) NoteRepository() contract.NoteRepository         { return fakeNotes{u: u} }
func (u *fakeUoW) TagRepository() contract.TagRepository           { return fakeTags{u: u} }
func (u *fakeUoW) CategoryRepository() contract.CategoryRepository { return fakeCategories{u: u} }
func (u *fakeUoW) SharedNoteRepository() contract.SharedNoteRepository {
	return fakeGrants{u: u}
}
func (u *fakeUoW) AttachmentRepository() contract.AttachmentRepository {
	return fakeAttachments{u: u}
}
func (u *fakeUoW) LifecycleRepository() contract.LifecycleRepository { return fakeLifecycle{u: u} }
func (u *fakeUoW) AuditRepository() contract.AuditRepository         { return nil }
func (u *fakeUoW) NoteTemplateRepository() contract.NoteTemplateRepository {
	return fakeTemplates{u: u}
}
func (u *fakeUoW) NotificationRepository() contract.NotificationRepository {
	return fakeNotifications{u: u}
}
func (u *fakeUoW) ReportRepository() contract.ReportRepository { return fakeReports{u: u} }

type fakeUsers struct {
	contract.UserRepository
	u *fakeUoW
}

func (r fakeUsers) FindOne(_ context.Context, specs ...specification.Specification) (*entity.User, error) {
	r.u.db.mu.Lock()
	defer r.u.db.mu.Unlock()
	for _, user := range r.u.db.users {
		if userMatches(user, specs) {
			copied := *user
			return &copied, nil
		}
	}
	return nil, nil
}

func (r fakeUsers) FindAll(_ context.Context, specs ...specification.Specification) ([]*entity.User, error) {
	r.u.db.mu.Lock()
	defer r.u.db.mu.Unlock()
	out := []*entity.User{}
	for _, user := range r.u.db.users {
		if userMatches(user, specs) {
			copied := *user
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

func (r fakeUsers) Create(_ context.Context, user *entity.User) error {
	copied := *user
	r.u.write(func() { r.u.db.users[copied.Id] = &copied })
	return nil
}

func userMatches(user *entity.User, specs []specification.Specification) bool {
	for _, spec := range specs {
		switch s := spec.(type) {
		case specification.ByID:
			if user.Id != s.ID {
				return false
			}
		case specification.ByEmail:
			if !strings.EqualFold(user.Email, strings.TrimSpace(s.Email)) {
				return false
			}
		case specification.ByUsername:
			if user.Username != s.Username {
				return false
			}
		}
	}
	return true
}

type fakeNotes struct {
	contract.NoteRepository
	u *fakeUoW
}

func (r fakeNotes) Create(_ context.Context, note *entity.Note) error {
	copied := *note
	r.u.write(func() { r.u.db.notes[copied.Id] = &copied })
	return nil
}

func (r fakeNotes) Update(_ context.Context, note *entity.Note) error {
	r.u.db.mu.Lock()
	existing, ok := r.u.db.notes[note.Id]
	r.u.db.mu.Unlock()
	if !ok || existing.IsDeleted || existing.UserId != note.UserId {
		return contract.ErrRecordNotFound
	}
	copied := *note
	r.u.write(func() { r.u.db.notes[copied.Id] = &copied })
	return nil
}

func (r fakeNotes) FindOne(_ context.Context, specs ...specification.Specification) (*entity.Note, error) {
	r.u.db.mu.Lock()
	defer r.u.db.mu.Unlock()
	for _, n := range r.u.db.notes {
		if noteMatches(n, specs) {
			copied := *n
			return &copied, nil
		}
	}
	return nil, nil
}

// FindAll honours ownership, trash state, the composed is_pinned filter and
// the page window. Rows come back newest first.
func (r fakeNotes) FindAll(_ context.Context, specs ...specification.Specification) ([]*entity.Note, error) {
	r.u.db.mu.Lock()
	defer r.u.db.mu.Unlock()
	out := []*entity.Note{}
	for _, n := range r.u.db.notes {
		if noteMatches(n, specs) {
			copied := *n
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })

	for _, spec := range specs {
		if s, ok := spec.(specification.Composed); ok {
			start := s.Result.Offset
			if start > len(out) {
				start = len(out)
			}
			end := start + s.Result.Limit
			if end > len(out) {
				end = len(out)
			}
			out = out[start:end]
		}
	}
	return out, nil
}

func (r fakeNotes) Count(_ context.Context, specs ...specification.Specification) (int64, error) {
	r.u.db.mu.Lock()
	defer r.u.db.mu.Unlock()
	var total int64
	for _, n := range r.u.db.notes {
		if noteMatches(n, specs) {
			total++
		}
	}
	return total, nil
}

// composedPinned reads the is_pinned bound argument of a composed filter.
func composedPinned(f query.Fragment) (bool, bool) {
	for _, arg := range f.Args {
		if named, ok := arg.(sql.NamedArg); ok && named.Name == "is_pinned" {
			return named.Value.(bool), true
		}
	}
	return false, false
}

func noteMatches(n *entity.Note, specs []specification.Specification) bool {
	trashed := false
	for _, spec := range specs {
		switch s := spec.(type) {
		case specification.ByID:
			if n.Id != s.ID {
				return false
			}
		case specification.UserOwnedBy:
			if n.UserId != s.UserID {
				return false
			}
		case specification.NoteOwnedByUser:
			if n.UserId != s.UserID {
				return false
			}
		case specification.OnlyTrashed:
			trashed = true
		case specification.Composed:
			if pinned, ok := composedPinned(s.Result.Filter); ok && n.IsPinned != pinned {
				return false
			}
		case specification.ComposedFilter:
			if pinned, ok := composedPinned(s.Result.Filter); ok && n.IsPinned != pinned {
				return false
			}
		}
	}
	return n.IsDeleted == trashed
}

type fakeTags struct {
	contract.TagRepository
	u *fakeUoW
}

func (r fakeTags) Upsert(_ context.Context, userId uuid.UUID, name string) (*entity.Tag, error) {
	r.u.db.mu.Lock()
	for _, t := range r.u.db.tags {
		if t.UserId == userId && t.Name == name {
			r.u.db.mu.Unlock()
			return t, nil
		}
	}
	r.u.db.mu.Unlock()
	tag := &entity.Tag{Id: uuid.New(), UserId: userId, Name: name, CreatedAt: time.Now()}
	r.u.write(func() { r.u.db.tags[tag.Id] = tag })
	return tag, nil
}

func (r fakeTags) AttachToNote(_ context.Context, noteId, tagId uuid.UUID) error {
	r.u.write(func() { r.u.db.noteTags[noteId] = append(r.u.db.noteTags[noteId], tagId) })
	return nil
}

func (r fakeTags) DetachAllFromNote(_ context.Context, noteId uuid.UUID) error {
	r.u.write(func() { delete(r.u.db.noteTags, noteId) })
	return nil
}

func (r fakeTags) FindByNoteIDs(_ context.Context, noteIds []uuid.UUID) (map[uuid.UUID][]*entity.Tag, error) {
	r.u.db.mu.Lock()
	defer r.u.db.mu.Unlock()
	out := map[uuid.UUID][]*entity.Tag{}
	for _, id := range noteIds {
		for _, tagId := range r.u.db.noteTags[id] {
			out[id] = append(out[id], r.u.db.tags[tagId])
		}
	}
	return out, nil
}

func (r fakeTags) DeleteOwned(_ context.Context, tagId, userId uuid.UUID) error {
	r.u.db.mu.Lock()
	tag, ok := r.u.db.tags[tagId]
	r.u.db.mu.Unlock()
	if !ok || tag.UserId != userId {
		return contract.ErrRecordNotFound
	}
	r.u.write(func() {
		delete(r.u.db.tags, tagId)
		for noteId, ids := range r.u.db.noteTags {
			kept := ids[:0]
			for _, id := range ids {
				if id != tagId {
					kept = append(kept, id)
				}
			}
			r.u.db.noteTags[noteId] = kept
		}
	})
	return nil
}

type fakeCategories struct {
	contract.CategoryRepository
	u *fakeUoW
}

func (r fakeCategories) FindOne(_ context.Context, specs ...specification.Specification) (*entity.Category, error) {
	r.u.db.mu.Lock()
	defer r.u.db.mu.Unlock()
	for _, c := range r.u.db.categories {
		if c.IsDeleted {
			continue
		}
		match := true
		for _, spec := range specs {
			switch s := spec.(type) {
			case specification.ByID:
				match = match && c.Id == s.ID
			case specification.UserOwnedBy:
				match = match && c.UserId == s.UserID
			}
		}
		if match {
			copied := *c
			return &copied, nil
		}
	}
	return nil, nil
}

func (r fakeCategories) FindAll(_ context.Context, specs ...specification.Specification) ([]*entity.Category, error) {
	r.u.db.mu.Lock()
	defer r.u.db.mu.Unlock()
	out := []*entity.Category{}
	for _, c := range r.u.db.categories {
		if c.IsDeleted {
			continue
		}
		owned := true
		for _, spec := range specs {
			if s, ok := spec.(specification.UserOwnedBy); ok {
				owned = owned && c.UserId == s.UserID
			}
		}
		if owned {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r fakeCategories) Create(_ context.Context, c *entity.Category) error {
	copied := *c
	r.u.write(func() { r.u.db.categories[copied.Id] = &copied })
	return nil
}

func (r fakeCategories) Update(_ context.Context, c *entity.Category) error {
	r.u.db.mu.Lock()
	existing, ok := r.u.db.categories[c.Id]
	r.u.db.mu.Unlock()
	if !ok || existing.IsDeleted || existing.UserId != c.UserId {
		return contract.ErrRecordNotFound
	}
	r.u.write(func() {
		existing.Name = c.Name
		existing.Color = c.Color
	})
	return nil
}

func (r fakeCategories) FindAllWithCount(_ context.Context, userId uuid.UUID) ([]*entity.CategoryWithCount, error) {
	r.u.db.mu.Lock()
	defer r.u.db.mu.Unlock()
	out := []*entity.CategoryWithCount{}
	for _, c := range r.u.db.categories {
		if c.IsDeleted || c.UserId != userId {
			continue
		}
		item := &entity.CategoryWithCount{Category: *c}
		for _, n := range r.u.db.notes {
			if !n.IsDeleted && n.CategoryId != nil && *n.CategoryId == c.Id {
				item.NoteCount++
			}
		}
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// fakeReports counts the owner's rows directly and leaves the top lists empty.
type fakeReports struct {
	contract.ReportRepository
	u *fakeUoW
}

func (r fakeReports) Summary(_ context.Context, userId uuid.UUID, from, to time.Time) (*entity.SummaryStatistics, error) {
	r.u.db.mu.Lock()
	defer r.u.db.mu.Unlock()
	if err := r.u.db.summaryErr[userId]; err != nil {
		return nil, err
	}
	stats := &entity.SummaryStatistics{}
	for _, n := range r.u.db.notes {
		if n.UserId != userId {
			continue
		}
		if n.IsDeleted {
			stats.NotesInTrash++
			continue
		}
		stats.ActiveNotes++
		if !n.CreatedAt.Before(from) && !n.CreatedAt.After(to) {
			stats.NotesCreated++
		}
	}
	return stats, nil
}

func (r fakeReports) TopCategories(context.Context, uuid.UUID, int) ([]entity.NamedCount, error) {
	return nil, nil
}

func (r fakeReports) TopTags(context.Context, uuid.UUID, int) ([]entity.NamedCount, error) {
	return nil, nil
}

type fakeAttachments struct {
	contract.AttachmentRepository
	u *fakeUoW
}

func (r fakeAttachments) Create(_ context.Context, a *entity.Attachment) error {
	if r.u.db.attachmentCreateErr != nil {
		return r.u.db.attachmentCreateErr
	}
	copied := *a
	r.u.write(func() { r.u.db.attachments[copied.Id] = &copied })
	return nil
}

func (r fakeAttachments) FindByNoteIDs(_ context.Context, noteIds []uuid.UUID) (map[uuid.UUID][]*entity.Attachment, error) {
	r.u.db.mu.Lock()
	defer r.u.db.mu.Unlock()
	out := map[uuid.UUID][]*entity.Attachment{}
	for _, a := range r.u.db.attachments {
		for _, id := range noteIds {
			if a.NoteId == id {
				out[id] = append(out[id], a)
			}
		}
	}
	return out, nil
}

// FindAccessible mirrors the owner-or-grantee join on active notes.
func (r fakeAttachments) FindAccessible(_ context.Context, attachmentId, noteId, userId uuid.UUID) (*entity.Attachment, error) {
	r.u.db.mu.Lock()
	defer r.u.db.mu.Unlock()
	a, ok := r.u.db.attachments[attachmentId]
	if !ok || a.NoteId != noteId {
		return nil, nil
	}
	n, ok := r.u.db.notes[noteId]
	if !ok || n.IsDeleted {
		return nil, nil
	}
	if n.UserId == userId {
		copied := *a
		return &copied, nil
	}
	for _, g := range r.u.db.grants {
		if g.NoteId == noteId && g.SharedWith == userId {
			copied := *a
			return &copied, nil
		}
	}
	return nil, nil
}

func (r fakeAttachments) KnownStoredNames(_ context.Context, names []string) (map[string]struct{}, error) {
	r.u.db.mu.Lock()
	defer r.u.db.mu.Unlock()
	known := map[string]struct{}{}
	for _, a := range r.u.db.attachments {
		for _, n := range names {
			if a.StoredName == n {
				known[n] = struct{}{}
			}
		}
	}
	return known, nil
}

func (r fakeAttachments) Delete(_ context.Context, id uuid.UUID) error {
	r.u.write(func() { delete(r.u.db.attachments, id) })
	return nil
}

type fakeGrants struct {
	contract.SharedNoteRepository
	u *fakeUoW
}

func (r fakeGrants) Upsert(_ context.Context, share *entity.SharedNote) error {
	r.u.db.mu.Lock()
	defer r.u.db.mu.Unlock()
	for _, g := range r.u.db.grants {
		if g.NoteId == share.NoteId && g.SharedWith == share.SharedWith {
			g.Permission = share.Permission
			share.Id = g.Id
			share.CreatedAt = g.CreatedAt
			return nil
		}
	}
	share.CreatedAt = time.Now()
	copied := *share
	r.u.db.grants[copied.Id] = &copied
	return nil
}

func (r fakeGrants) FindGrant(_ context.Context, noteId, userId uuid.UUID) (*entity.SharedNote, error) {
	r.u.db.mu.Lock()
	defer r.u.db.mu.Unlock()
	for _, g := range r.u.db.grants {
		if g.NoteId == noteId && g.SharedWith == userId {
			copied := *g
			return &copied, nil
		}
	}
	return nil, nil
}

func (r fakeGrants) DeleteOwned(_ context.Context, shareId, ownerId uuid.UUID) (*entity.SharedNote, error) {
	r.u.db.mu.Lock()
	defer r.u.db.mu.Unlock()
	g, ok := r.u.db.grants[shareId]
	if !ok || r.u.db.notes[g.NoteId] == nil || r.u.db.notes[g.NoteId].UserId != ownerId {
		return nil, contract.ErrRecordNotFound
	}
	delete(r.u.db.grants, shareId)
	return g, nil
}

// fakeLifecycle mirrors the owner-scoped UPDATE/DELETE statements.
type fakeLifecycle struct {
	u *fakeUoW
}

func (r fakeLifecycle) SoftDelete(_ context.Context, kind contract.Trashable, id, ownerId, actorId uuid.UUID) error {
	if kind != contract.TrashableNotes {
		return contract.ErrUnknownTrashable
	}
	r.u.db.mu.Lock()
	defer r.u.db.mu.Unlock()
	n, ok := r.u.db.notes[id]
	if !ok || n.UserId != ownerId || n.IsDeleted {
		return contract.ErrRecordNotFound
	}
	now := time.Now()
	n.IsDeleted = true
	n.DeletedAt = &now
	n.DeletedBy = &actorId
	return nil
}

func (r fakeLifecycle) Restore(_ context.Context, kind contract.Trashable, id, ownerId uuid.UUID) error {
	if kind != contract.TrashableNotes {
		return contract.ErrUnknownTrashable
	}
	r.u.db.mu.Lock()
	defer r.u.db.mu.Unlock()
	n, ok := r.u.db.notes[id]
	if !ok || n.UserId != ownerId || !n.IsDeleted {
		return contract.ErrRecordNotFound
	}
	n.IsDeleted = false
	n.DeletedAt = nil
	n.DeletedBy = nil
	return nil
}

func (r fakeLifecycle) Purge(_ context.Context, kind contract.Trashable, id, ownerId uuid.UUID) ([]string, error) {
	if kind != contract.TrashableNotes {
		return nil, contract.ErrUnknownTrashable
	}
	r.u.db.mu.Lock()
	n, ok := r.u.db.notes[id]
	r.u.db.mu.Unlock()
	if !ok || n.UserId != ownerId || !n.IsDeleted {
		return nil, contract.ErrRecordNotFound
	}

	var paths []string
	r.u.db.mu.Lock()
	for _, a := range r.u.db.attachments {
		if a.NoteId == id {
			paths = append(paths, a.Path)
		}
	}
	r.u.db.mu.Unlock()

	r.u.write(func() {
		delete(r.u.db.notes, id)
		delete(r.u.db.noteTags, id)
		for aid, a := range r.u.db.attachments {
			if a.NoteId == id {
				delete(r.u.db.attachments, aid)
			}
		}
		for gid, g := range r.u.db.grants {
			if g.NoteId == id {
				delete(r.u.db.grants, gid)
			}
		}
	})
	return paths, nil
}

type fakeTemplates struct {
	contract.NoteTemplateRepository
	u *fakeUoW
}

func (r fakeTemplates) FindOne(_ context.Context, specs ...specification.Specification) (*entity.NoteTemplate, error) {
	r.u.db.mu.Lock()
	defer r.u.db.mu.Unlock()
	for _, t := range r.u.db.templates {
		match := true
		for _, spec := range specs {
			switch s := spec.(type) {
			case specification.ByID:
				match = match && t.Id == s.ID
			case specification.VisibleTemplate:
				match = match && (t.IsPublic || t.UserId == s.UserID)
			}
		}
		if match {
			copied := *t
			return &copied, nil
		}
	}
	return nil, nil
}

func (r fakeTemplates) IncrementUsage(_ context.Context, id uuid.UUID) error {
	r.u.write(func() { r.u.db.templates[id].UsageCount++ })
	return nil
}

type fakeNotifications struct {
	contract.NotificationRepository
	u *fakeUoW
}

func (r fakeNotifications) CreateNotification(_ context.Context, n *model.Notification) error {
	if r.u.db.notificationErr != nil {
		return r.u.db.notificationErr
	}
	r.u.write(func() { r.u.db.notifications = append(r.u.db.notifications, *n) })
	return nil
}

// fakeStorage records deletes and fails for paths listed in failOn.
type fakeStorage struct {
	storage.FileStorage
	mu       sync.Mutex
	deleted  []string
	failOn   map[string]bool
	onDelete func(path string)
}

func (s *fakeStorage) Delete(_ context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.onDelete != nil {
		s.onDelete(path)
	}
	if s.failOn[path] {
		return errors.New("permission denied")
	}
	s.deleted = append(s.deleted, path)
	return nil
}

func (s *fakeStorage) deletedPaths() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.deleted...)
}

type recordingDispatcher struct {
	mu     sync.Mutex
	events []events.Event
}

func (d *recordingDispatcher) Dispatch(_ context.Context, e events.Event) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, e)
}

func (d *recordingDispatcher) types() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := []string{}
	for _, e := range d.events {
		out = append(out, e.EventType())
	}
	return out
}

type recordingBus struct {
	mu      sync.Mutex
	changes []bus.NoteChanged
}

func (b *recordingBus) PublishNoteChanged(_ context.Context, c bus.NoteChanged) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.changes = append(b.changes, c)
	return nil
}

func (b *recordingBus) kinds() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := []string{}
	for _, c := range b.changes {
		out = append(out, c.Kind)
	}
	return out
}

type fixture struct {
	db      *fakeDB
	cache   *cache.Coordinator
	store   *cache.MemoryStore
	files   *fakeStorage
	metrics *metrics.Metrics
	bus     *recordingBus
	janitor FileJanitor
	log     logger.ILogger
}

func newFixture() *fixture {
	log := logger.NewNopLogger()
	m := metrics.NewMetricsWith("test", prometheus.NewRegistry())
	store := cache.NewMemoryStore(time.Minute)
	files := &fakeStorage{failOn: map[string]bool{}}
	return &fixture{
		db:      newFakeDB(),
		cache:   cache.NewCoordinator(store, time.Minute, log, m),
		store:   store,
		files:   files,
		metrics: m,
		bus:     &recordingBus{},
		janitor: NewFileJanitor(files, m, log),
		log:     log,
	}
}

func uploaded(paths ...string) []dto.UploadedFile {
	out := make([]dto.UploadedFile, 0, len(paths))
	for _, p := range paths {
		out = append(out, dto.UploadedFile{
			StoredName:   p,
			OriginalName: p,
			MimeType:     "text/plain",
			Size:         4,
			Path:         "/uploads/" + p,
		})
	}
	return out
}
