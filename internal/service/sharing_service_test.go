package service

import (
	"context"
	"testing"

	"notevault-be/internal/dto"
	"notevault-be/internal/entity"
	"notevault-be/internal/pkg/apperror"
	"notevault-be/pkg/events"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShare_IsIdempotentAndUpdatesPermission(t *testing.T) {
	f := newFixture()
	owner := f.db.addUser("alice", "alice@example.com")
	bob := f.db.addUser("bob", "bob@example.com")
	note := f.db.addNote(owner.Id, "Roadmap")
	notifier := &recordingDispatcher{}
	svc := NewSharingService(f.db, f.cache, notifier, f.log)
	ctx := context.Background()

	first, err := svc.Share(ctx, owner.Id, owner.Email, note.Id, &dto.ShareNoteRequest{Email: "bob@example.com", Permission: "read"})
	require.NoError(t, err)
	assert.Equal(t, "read", first.Permission)
	assert.Equal(t, bob.Id, first.SharedWith.Id)

	second, err := svc.Share(ctx, owner.Id, owner.Email, note.Id, &dto.ShareNoteRequest{Email: "BOB@example.com", Permission: "edit"})
	require.NoError(t, err)
	assert.Equal(t, first.Id, second.Id)
	assert.Equal(t, "edit", second.Permission)

	assert.Len(t, f.db.grants, 1)
	assert.Equal(t, []string{events.NoteShared, events.NoteShared}, notifier.types())
	assert.Equal(t, bob.Id.String(), events.StringField(notifier.events[1], "recipient_id"))
	assert.Equal(t, "alice", events.StringField(notifier.events[1], "owner_name"))
}

func TestShare_SelfShareRejectedBeforePersistence(t *testing.T) {
	f := newFixture()
	owner := f.db.addUser("alice", "alice@example.com")
	note := f.db.addNote(owner.Id, "Mine")
	notifier := &recordingDispatcher{}
	svc := NewSharingService(f.db, f.cache, notifier, f.log)
	ctx := context.Background()

	for _, callerEmail := range []string{owner.Email, ""} {
		_, err := svc.Share(ctx, owner.Id, callerEmail, note.Id, &dto.ShareNoteRequest{Email: "Alice@Example.com", Permission: "read"})
		require.Error(t, err)
		appErr, ok := apperror.As(err)
		require.True(t, ok)
		assert.Equal(t, apperror.KindValidation, appErr.Kind)
		require.Len(t, appErr.Details, 1)
		assert.Equal(t, "email", appErr.Details[0].Field)
	}

	assert.Empty(t, f.db.grants)
	assert.Empty(t, notifier.types())
}

func TestShare_Errors(t *testing.T) {
	f := newFixture()
	owner := f.db.addUser("alice", "alice@example.com")
	bob := f.db.addUser("bob", "bob@example.com")
	bobsNote := f.db.addNote(bob.Id, "Bob's")
	svc := NewSharingService(f.db, f.cache, &recordingDispatcher{}, f.log)
	ctx := context.Background()

	_, err := svc.Share(ctx, owner.Id, owner.Email, bobsNote.Id, &dto.ShareNoteRequest{Email: "bob@example.com", Permission: "read"})
	assert.True(t, apperror.Is(err, apperror.KindNotFound), "only the owner may share")

	own := f.db.addNote(owner.Id, "Mine")
	_, err = svc.Share(ctx, owner.Id, owner.Email, own.Id, &dto.ShareNoteRequest{Email: "nobody@example.com", Permission: "read"})
	assert.True(t, apperror.Is(err, apperror.KindNotFound))

	_, err = svc.Share(ctx, owner.Id, owner.Email, own.Id, &dto.ShareNoteRequest{Email: "bob@example.com", Permission: "admin"})
	assert.True(t, apperror.Is(err, apperror.KindValidation))
}

func TestResolveAccess(t *testing.T) {
	f := newFixture()
	owner := f.db.addUser("alice", "alice@example.com")
	reader := f.db.addUser("bob", "bob@example.com")
	editor := f.db.addUser("carol", "carol@example.com")
	stranger := f.db.addUser("dave", "dave@example.com")
	note := f.db.addNote(owner.Id, "N")
	f.db.grant(note.Id, owner.Id, reader.Id, entity.PermissionRead)
	f.db.grant(note.Id, owner.Id, editor.Id, entity.PermissionEdit)
	svc := NewSharingService(f.db, f.cache, &recordingDispatcher{}, f.log)

	tests := []struct {
		name     string
		user     uuid.UUID
		required entity.Permission
		wantRole AccessRole
		wantKind apperror.Kind
	}{
		{"owner edits", owner.Id, entity.PermissionEdit, AccessOwner, 0},
		{"reader reads", reader.Id, entity.PermissionRead, AccessGrantee, 0},
		{"reader cannot edit", reader.Id, entity.PermissionEdit, "", apperror.KindPermission},
		{"editor edits", editor.Id, entity.PermissionEdit, AccessGrantee, 0},
		{"stranger sees nothing", stranger.Id, entity.PermissionRead, "", apperror.KindNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			access, err := svc.ResolveAccess(context.Background(), note.Id, tt.user, tt.required)
			if tt.wantKind != 0 {
				assert.True(t, apperror.Is(err, tt.wantKind))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantRole, access.Role)
			assert.Equal(t, owner.Id, access.Note.UserId)
		})
	}

	f.db.notes[note.Id].IsDeleted = true
	_, err := svc.ResolveAccess(context.Background(), note.Id, owner.Id, entity.PermissionRead)
	assert.True(t, apperror.Is(err, apperror.KindNotFound), "trashed notes are not accessible")
}

func TestRevoke(t *testing.T) {
	f := newFixture()
	owner := f.db.addUser("alice", "alice@example.com")
	bob := f.db.addUser("bob", "bob@example.com")
	note := f.db.addNote(owner.Id, "N")
	share := f.db.grant(note.Id, owner.Id, bob.Id, entity.PermissionEdit)
	notifier := &recordingDispatcher{}
	svc := NewSharingService(f.db, f.cache, notifier, f.log)
	ctx := context.Background()
	bobCacheInvalidated := warmCache(t, f, bob.Id)

	err := svc.Revoke(ctx, bob.Id, share.Id)
	assert.True(t, apperror.Is(err, apperror.KindNotFound), "grantees cannot revoke")

	require.NoError(t, svc.Revoke(ctx, owner.Id, share.Id))
	assert.Empty(t, f.db.grants)
	assert.True(t, bobCacheInvalidated())
	assert.Equal(t, []string{events.ShareRevoked}, notifier.types())

	_, err = svc.ResolveAccess(ctx, note.Id, bob.Id, entity.PermissionRead)
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
}
