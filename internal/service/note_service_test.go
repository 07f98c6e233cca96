package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"notevault-be/internal/dto"
	"notevault-be/internal/entity"
	bus "notevault-be/internal/events"
	"notevault-be/internal/pkg/apperror"
	"notevault-be/internal/pkg/cache"
	"notevault-be/internal/repository/contract"
	"notevault-be/internal/repository/unitofwork"
	"notevault-be/pkg/query"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testComposers() (list, trash *query.Composer) {
	list = query.MustNew(query.Options{
		Alias:        "notes",
		DefaultLimit: 20,
		MaxLimit:     100,
		SortFields:   []string{"created_at", "updated_at", "title", "is_pinned"},
		DefaultSort:  "created_at",
	})
	trash = query.MustNew(query.Options{
		Alias:        "notes",
		DefaultLimit: 20,
		MaxLimit:     100,
		SortFields:   []string{"deleted_at", "created_at", "updated_at", "title"},
		DefaultSort:  "deleted_at",
	})
	return list, trash
}

func newNoteService(f *fixture) INoteService {
	list, trash := testComposers()
	return NewNoteService(f.db, f.cache, f.bus, f.janitor, list, trash, f.log)
}

// warmCache stores a value for userId so tests can observe invalidation.
func warmCache(t *testing.T, f *fixture, userId uuid.UUID) func() bool {
	t.Helper()
	ctx := context.Background()
	_, err := cache.Remember(ctx, f.cache, userId, "/api/notes", func() (int, error) { return 1, nil })
	require.NoError(t, err)

	return func() bool {
		recomputed := false
		_, err := cache.Remember(ctx, f.cache, userId, "/api/notes", func() (int, error) {
			recomputed = true
			return 2, nil
		})
		require.NoError(t, err)
		return recomputed
	}
}

func TestNoteCreate_WritesNoteTagsAndAttachments(t *testing.T) {
	f := newFixture()
	owner := f.db.addUser("alice", "alice@example.com")
	svc := newNoteService(f)
	wasInvalidated := warmCache(t, f, owner.Id)

	res, err := svc.Create(context.Background(), owner.Id, &dto.CreateNoteRequest{
		Title:   "  Groceries ",
		Content: "milk",
		Tags:    []string{"a", "b", "a"},
	}, uploaded("list.txt"))
	require.NoError(t, err)

	assert.Equal(t, "Groceries", res.Title)
	assert.Equal(t, "owner", res.Permission)
	require.Len(t, res.Tags, 2)
	assert.Equal(t, "a", res.Tags[0].Name)
	assert.Equal(t, "b", res.Tags[1].Name)
	assert.Len(t, res.Attachments, 1)

	assert.Equal(t, []string{"a", "b"}, f.db.tagNames(res.Id))
	assert.Len(t, f.db.attachments, 1)
	assert.Equal(t, 1, f.db.commits)
	assert.True(t, wasInvalidated())
	assert.Equal(t, []string{bus.NoteCreated}, f.bus.kinds())
	assert.Empty(t, f.files.deletedPaths())
}

func TestNoteCreate_AttachmentFailureRollsBackAndDiscardsFiles(t *testing.T) {
	f := newFixture()
	owner := f.db.addUser("alice", "alice@example.com")
	f.db.attachmentCreateErr = errors.New("disk quota")
	svc := newNoteService(f)

	_, err := svc.Create(context.Background(), owner.Id, &dto.CreateNoteRequest{
		Title: "Report",
		Tags:  []string{"work"},
	}, uploaded("a.txt", "b.txt"))
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.KindStorage))

	assert.Empty(t, f.db.notes)
	assert.Empty(t, f.db.tags)
	assert.Zero(t, f.db.commits)
	assert.Equal(t, 1, f.db.rollbacks)
	assert.ElementsMatch(t, []string{"/uploads/a.txt", "/uploads/b.txt"}, f.files.deletedPaths())
	assert.Empty(t, f.bus.kinds())
}

func TestNoteCreate_RejectsForeignCategory(t *testing.T) {
	f := newFixture()
	owner := f.db.addUser("alice", "alice@example.com")
	other := f.db.addUser("bob", "bob@example.com")
	foreign := &entity.Category{Id: uuid.New(), UserId: other.Id, Name: "Bob's"}
	f.db.categories[foreign.Id] = foreign
	svc := newNoteService(f)

	_, err := svc.Create(context.Background(), owner.Id, &dto.CreateNoteRequest{
		Title:      "Note",
		CategoryId: &foreign.Id,
	}, uploaded("x.txt"))
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.KindValidation))
	assert.Empty(t, f.db.notes)
	assert.Equal(t, []string{"/uploads/x.txt"}, f.files.deletedPaths())
}

func TestNoteCreate_ValidationFailureWritesNothing(t *testing.T) {
	f := newFixture()
	owner := f.db.addUser("alice", "alice@example.com")
	svc := newNoteService(f)

	_, err := svc.Create(context.Background(), owner.Id, &dto.CreateNoteRequest{Title: "   "}, nil)
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.KindValidation))
	assert.Empty(t, f.db.notes)
}

func TestNoteUpdate_ReadGranteeForbiddenUntilUpgraded(t *testing.T) {
	f := newFixture()
	owner := f.db.addUser("alice", "alice@example.com")
	grantee := f.db.addUser("bob", "bob@example.com")
	note := f.db.addNote(owner.Id, "Plan")
	share := f.db.grant(note.Id, owner.Id, grantee.Id, entity.PermissionRead)
	svc := newNoteService(f)
	req := &dto.UpdateNoteRequest{Title: "Plan v2", Content: "updated"}

	_, err := svc.Update(context.Background(), grantee.Id, note.Id, req, nil)
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.KindPermission))
	assert.Equal(t, "Plan", f.db.notes[note.Id].Title)

	share.Permission = entity.PermissionEdit
	ownerCacheInvalidated := warmCache(t, f, owner.Id)

	res, err := svc.Update(context.Background(), grantee.Id, note.Id, req, nil)
	require.NoError(t, err)
	assert.Equal(t, "Plan v2", res.Title)
	assert.Equal(t, "edit", res.Permission)
	assert.Equal(t, owner.Id, res.UserId)
	assert.Equal(t, "Plan v2", f.db.notes[note.Id].Title)
	assert.True(t, ownerCacheInvalidated())
	assert.Equal(t, []string{bus.NoteUpdated}, f.bus.kinds())
}

func TestNoteUpdate_NilTagsLeavesTagsAlone(t *testing.T) {
	f := newFixture()
	owner := f.db.addUser("alice", "alice@example.com")
	svc := newNoteService(f)
	ctx := context.Background()

	created, err := svc.Create(ctx, owner.Id, &dto.CreateNoteRequest{Title: "T", Tags: []string{"keep"}}, nil)
	require.NoError(t, err)

	res, err := svc.Update(ctx, owner.Id, created.Id, &dto.UpdateNoteRequest{Title: "T2"}, nil)
	require.NoError(t, err)
	require.Len(t, res.Tags, 1)
	assert.Equal(t, "keep", res.Tags[0].Name)

	cleared := []string{}
	res, err = svc.Update(ctx, owner.Id, created.Id, &dto.UpdateNoteRequest{Title: "T3", Tags: &cleared}, nil)
	require.NoError(t, err)
	assert.Empty(t, res.Tags)
}

func TestNoteShow_AccessRules(t *testing.T) {
	f := newFixture()
	owner := f.db.addUser("alice", "alice@example.com")
	reader := f.db.addUser("bob", "bob@example.com")
	stranger := f.db.addUser("carol", "carol@example.com")
	note := f.db.addNote(owner.Id, "Shared")
	f.db.grant(note.Id, owner.Id, reader.Id, entity.PermissionRead)
	svc := newNoteService(f)
	ctx := context.Background()

	res, err := svc.Show(ctx, owner.Id, note.Id)
	require.NoError(t, err)
	assert.Equal(t, "owner", res.Permission)

	res, err = svc.Show(ctx, reader.Id, note.Id)
	require.NoError(t, err)
	assert.Equal(t, "read", res.Permission)

	_, err = svc.Show(ctx, stranger.Id, note.Id)
	assert.True(t, apperror.Is(err, apperror.KindNotFound))

	_, err = svc.Show(ctx, owner.Id, uuid.New())
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
}

func TestFileJanitor_CountsFailures(t *testing.T) {
	f := newFixture()
	f.files.failOn["/uploads/locked"] = true

	f.janitor.remove(context.Background(), "purge", "/uploads/locked", "/uploads/ok")

	assert.Equal(t, []string{"/uploads/ok"}, f.files.deletedPaths())
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.FileCleanupFailures.WithLabelValues("purge")))
}

func TestDedupeTags(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, dedupeTags([]string{"a", "b", "a"}))
	assert.Equal(t, []string{"x"}, dedupeTags([]string{" x ", "", "x"}))
	assert.Empty(t, dedupeTags(nil))
}

func TestNoteUpdate_AttachmentFailureRollsBackAndDiscardsFiles(t *testing.T) {
	f := newFixture()
	owner := f.db.addUser("alice", "alice@example.com")
	note := f.db.addNote(owner.Id, "Original")
	f.db.attachmentCreateErr = errors.New("disk quota")
	svc := newNoteService(f)

	_, err := svc.Update(context.Background(), owner.Id, note.Id, &dto.UpdateNoteRequest{Title: "Changed"}, uploaded("c.txt"))
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.KindStorage))

	assert.Equal(t, "Original", f.db.notes[note.Id].Title)
	assert.Zero(t, f.db.commits)
	assert.Equal(t, 1, f.db.rollbacks)
	assert.Equal(t, []string{"/uploads/c.txt"}, f.files.deletedPaths())
	assert.Empty(t, f.bus.kinds())
}

// readFailsAfterCommit fails tag and attachment reads once its unit of work
// has committed.
type readFailsAfterCommit struct {
	db *fakeDB
}

func (r readFailsAfterCommit) NewUnitOfWork(context.Context) unitofwork.UnitOfWork {
	return &readFailsAfterCommitUoW{fakeUoW: &fakeUoW{db: r.db}}
}

type readFailsAfterCommitUoW struct {
	*fakeUoW
	committed bool
}

func (u *readFailsAfterCommitUoW) Commit() error {
	err := u.fakeUoW.Commit()
	u.committed = err == nil
	return err
}

func (u *readFailsAfterCommitUoW) TagRepository() contract.TagRepository {
	return failingTagReads{TagRepository: u.fakeUoW.TagRepository(), uow: u}
}

func (u *readFailsAfterCommitUoW) AttachmentRepository() contract.AttachmentRepository {
	return failingAttachmentReads{AttachmentRepository: u.fakeUoW.AttachmentRepository(), uow: u}
}

var errConnReset = errors.New("connection reset")

type failingTagReads struct {
	contract.TagRepository
	uow *readFailsAfterCommitUoW
}

func (r failingTagReads) FindByNoteIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID][]*entity.Tag, error) {
	if r.uow.committed {
		return nil, errConnReset
	}
	return r.TagRepository.FindByNoteIDs(ctx, ids)
}

type failingAttachmentReads struct {
	contract.AttachmentRepository
	uow *readFailsAfterCommitUoW
}

func (r failingAttachmentReads) FindByNoteIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID][]*entity.Attachment, error) {
	if r.uow.committed {
		return nil, errConnReset
	}
	return r.AttachmentRepository.FindByNoteIDs(ctx, ids)
}

func TestNoteUpdate_CommittedUploadsAreKept(t *testing.T) {
	f := newFixture()
	owner := f.db.addUser("alice", "alice@example.com")
	note := f.db.addNote(owner.Id, "Original")
	list, trash := testComposers()
	svc := NewNoteService(readFailsAfterCommit{db: f.db}, f.cache, f.bus, f.janitor, list, trash, f.log)

	res, err := svc.Update(context.Background(), owner.Id, note.Id, &dto.UpdateNoteRequest{Title: "Changed"}, uploaded("a.txt"))
	require.NoError(t, err)

	assert.Equal(t, 1, f.db.commits)
	require.Len(t, f.db.attachments, 1)
	require.Len(t, res.Attachments, 1)
	assert.Equal(t, "a.txt", res.Attachments[0].OriginalName)
	assert.Empty(t, f.files.deletedPaths())
}

func TestNoteUpdate_ResponseKeepsExistingAttachments(t *testing.T) {
	f := newFixture()
	owner := f.db.addUser("alice", "alice@example.com")
	svc := newNoteService(f)
	ctx := context.Background()

	created, err := svc.Create(ctx, owner.Id, &dto.CreateNoteRequest{Title: "T"}, uploaded("first.txt"))
	require.NoError(t, err)

	res, err := svc.Update(ctx, owner.Id, created.Id, &dto.UpdateNoteRequest{Title: "T2"}, uploaded("second.txt"))
	require.NoError(t, err)
	assert.Len(t, res.Attachments, 2)
	assert.Len(t, f.db.attachments, 2)
}

func TestNoteList_PagesOwnersActiveNotes(t *testing.T) {
	f := newFixture()
	owner := f.db.addUser("alice", "alice@example.com")
	other := f.db.addUser("bob", "bob@example.com")
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, title := range []string{"oldest", "middle", "newest"} {
		n := f.db.addNote(owner.Id, title)
		n.CreatedAt = base.Add(time.Duration(i) * time.Hour)
		n.IsPinned = title == "middle"
	}
	f.db.addNote(other.Id, "not mine")
	trashed := f.db.addNote(owner.Id, "trashed")
	trashed.IsDeleted = true
	svc := newNoteService(f)
	ctx := context.Background()

	res, err := svc.List(ctx, owner.Id, query.Params{"limit": "2"})
	require.NoError(t, err)
	require.Len(t, res.Data, 2)
	assert.Equal(t, "newest", res.Data[0].Title)
	assert.Equal(t, "middle", res.Data[1].Title)
	assert.Equal(t, query.Pagination{Page: 1, Limit: 2, TotalPages: 2, TotalCount: 3, HasNextPage: true}, res.Pagination)

	res, err = svc.List(ctx, owner.Id, query.Params{"limit": "2", "page": "2"})
	require.NoError(t, err)
	require.Len(t, res.Data, 1)
	assert.Equal(t, "oldest", res.Data[0].Title)
	assert.True(t, res.Pagination.HasPrevPage)
	assert.False(t, res.Pagination.HasNextPage)

	res, err = svc.List(ctx, owner.Id, query.Params{"is_pinned": "true"})
	require.NoError(t, err)
	require.Len(t, res.Data, 1)
	assert.Equal(t, "middle", res.Data[0].Title)
	assert.Equal(t, int64(1), res.Pagination.TotalCount)

	_, err = svc.List(ctx, owner.Id, query.Params{"category_id": "1 OR 1=1"})
	var paramErr *query.ParamError
	require.ErrorAs(t, err, &paramErr)
	assert.Equal(t, "category_id", paramErr.Field)
}

func TestNoteList_TrashRestoreCycle(t *testing.T) {
	f := newFixture()
	owner := f.db.addUser("alice", "alice@example.com")
	notes := newNoteService(f)
	lifecycle := newLifecycle(f)
	ctx := context.Background()

	created, err := notes.Create(ctx, owner.Id, &dto.CreateNoteRequest{Title: "Cycle", Tags: []string{"t"}}, nil)
	require.NoError(t, err)

	titles := func(res *dto.NoteListResponse, err error) []string {
		require.NoError(t, err)
		out := []string{}
		for _, n := range res.Data {
			out = append(out, n.Title)
		}
		return out
	}

	assert.Equal(t, []string{"Cycle"}, titles(notes.List(ctx, owner.Id, query.Params{})))
	assert.Empty(t, titles(notes.Trash(ctx, owner.Id, query.Params{})))

	require.NoError(t, lifecycle.TrashNote(ctx, owner.Id, created.Id))
	assert.Empty(t, titles(notes.List(ctx, owner.Id, query.Params{})))
	assert.Equal(t, []string{"Cycle"}, titles(notes.Trash(ctx, owner.Id, query.Params{})))

	require.NoError(t, lifecycle.Restore(ctx, contract.TrashableNotes, owner.Id, created.Id))
	listed, err := notes.List(ctx, owner.Id, query.Params{})
	require.NoError(t, err)
	require.Len(t, listed.Data, 1)
	assert.Equal(t, "Cycle", listed.Data[0].Title)
	require.Len(t, listed.Data[0].Tags, 1)
	assert.Empty(t, titles(notes.Trash(ctx, owner.Id, query.Params{})))
}
