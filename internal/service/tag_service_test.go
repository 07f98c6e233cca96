package service

import (
	"context"
	"testing"

	"notevault-be/internal/dto"
	"notevault-be/internal/pkg/apperror"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTagDelete_RemovesTagAndLinksTogether(t *testing.T) {
	f := newFixture()
	owner := f.db.addUser("alice", "alice@example.com")
	notes := newNoteService(f)
	svc := NewTagService(f.db, f.cache)
	ctx := context.Background()

	created, err := notes.Create(ctx, owner.Id, &dto.CreateNoteRequest{Title: "T", Tags: []string{"drop", "keep"}}, nil)
	require.NoError(t, err)
	commitsBefore := f.db.commits
	wasInvalidated := warmCache(t, f, owner.Id)

	require.NoError(t, svc.Delete(ctx, owner.Id, created.Tags[0].Id))

	assert.Equal(t, []string{"keep"}, f.db.tagNames(created.Id))
	assert.Len(t, f.db.tags, 1)
	assert.Equal(t, commitsBefore+1, f.db.commits)
	assert.True(t, wasInvalidated())
}

func TestTagDelete_ForeignTagIsNotFound(t *testing.T) {
	f := newFixture()
	owner := f.db.addUser("alice", "alice@example.com")
	other := f.db.addUser("bob", "bob@example.com")
	notes := newNoteService(f)
	svc := NewTagService(f.db, f.cache)
	ctx := context.Background()

	created, err := notes.Create(ctx, other.Id, &dto.CreateNoteRequest{Title: "T", Tags: []string{"private"}}, nil)
	require.NoError(t, err)
	rollbacksBefore := f.db.rollbacks

	err = svc.Delete(ctx, owner.Id, created.Tags[0].Id)
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
	assert.Equal(t, []string{"private"}, f.db.tagNames(created.Id))
	assert.Equal(t, rollbacksBefore+1, f.db.rollbacks)

	err = svc.Delete(ctx, owner.Id, uuid.New())
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
}
