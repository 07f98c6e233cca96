package service

import (
	"context"
	"strings"
	"testing"

	"notevault-be/internal/dto"
	"notevault-be/internal/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImport_ReportsInvalidEntriesByIndex(t *testing.T) {
	f := newFixture()
	owner := f.db.addUser("alice", "alice@example.com")
	svc := NewExportService(f.db, f.cache)
	wasInvalidated := warmCache(t, f, owner.Id)

	res, err := svc.Import(context.Background(), owner.Id, &dto.ImportRequest{Notes: []dto.ImportNote{
		{Title: "First", Tags: []string{"x", "x"}},
		{Title: "  "},
		{Title: "Third", Content: "body"},
		{Title: strings.Repeat("t", 201)},
	}})
	require.NoError(t, err)

	assert.Equal(t, 2, res.Imported)
	require.Len(t, res.Errors, 2)
	assert.Equal(t, 1, res.Errors[0].Index)
	assert.Equal(t, 3, res.Errors[1].Index)
	require.NotEmpty(t, res.Errors[0].Details)
	assert.Equal(t, "title", res.Errors[0].Details[0].Field)

	assert.Len(t, f.db.notes, 2)
	assert.Len(t, f.db.tags, 1)
	assert.Equal(t, 1, f.db.commits)
	assert.True(t, wasInvalidated())
}

func TestImport_NothingValidWritesNothing(t *testing.T) {
	f := newFixture()
	owner := f.db.addUser("alice", "alice@example.com")
	svc := NewExportService(f.db, f.cache)

	res, err := svc.Import(context.Background(), owner.Id, &dto.ImportRequest{Notes: []dto.ImportNote{{Title: ""}}})
	require.NoError(t, err)
	assert.Zero(t, res.Imported)
	assert.Len(t, res.Errors, 1)
	assert.Empty(t, f.db.notes)
	assert.Zero(t, f.db.commits)
}

func TestImport_RejectsMissingOrEmptyList(t *testing.T) {
	f := newFixture()
	owner := f.db.addUser("alice", "alice@example.com")
	svc := NewExportService(f.db, f.cache)
	ctx := context.Background()

	_, err := svc.Import(ctx, owner.Id, &dto.ImportRequest{})
	assert.True(t, apperror.Is(err, apperror.KindValidation))

	_, err = svc.Import(ctx, owner.Id, &dto.ImportRequest{Notes: []dto.ImportNote{}})
	assert.True(t, apperror.Is(err, apperror.KindValidation))
}
