package service

import (
	"context"
	"strings"
	"testing"

	"notevault-be/internal/dto"
	"notevault-be/internal/entity"
	"notevault-be/internal/pkg/apperror"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoryCreate_NormalisesColor(t *testing.T) {
	f := newFixture()
	owner := f.db.addUser("alice", "alice@example.com")
	svc := NewCategoryService(f.db, f.cache)
	ctx := context.Background()
	wasInvalidated := warmCache(t, f, owner.Id)

	res, err := svc.Create(ctx, owner.Id, &dto.CategoryRequest{Name: " Work ", Color: "#a1b2c3"})
	require.NoError(t, err)
	assert.Equal(t, "Work", res.Name)
	assert.Equal(t, "#A1B2C3", res.Color)
	assert.True(t, wasInvalidated())

	res, err = svc.Create(ctx, owner.Id, &dto.CategoryRequest{Name: "Home"})
	require.NoError(t, err)
	assert.Equal(t, entity.DefaultCategoryColor, res.Color)
	assert.Len(t, f.db.categories, 2)
}

func TestCategoryCreate_Validation(t *testing.T) {
	f := newFixture()
	owner := f.db.addUser("alice", "alice@example.com")
	svc := NewCategoryService(f.db, f.cache)

	cases := map[string]*dto.CategoryRequest{
		"blank name":    {Name: "   "},
		"bad color":     {Name: "Work", Color: "red"},
		"too long name": {Name: strings.Repeat("n", 51)},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), owner.Id, req)
			assert.True(t, apperror.Is(err, apperror.KindValidation))
		})
	}
	assert.Empty(t, f.db.categories)
}

func TestCategoryList_CountsActiveNotes(t *testing.T) {
	f := newFixture()
	owner := f.db.addUser("alice", "alice@example.com")
	work := &entity.Category{Id: uuid.New(), UserId: owner.Id, Name: "Work", Color: entity.DefaultCategoryColor}
	f.db.categories[work.Id] = work
	active := f.db.addNote(owner.Id, "active")
	active.CategoryId = &work.Id
	trashed := f.db.addNote(owner.Id, "trashed")
	trashed.CategoryId = &work.Id
	trashed.IsDeleted = true
	svc := NewCategoryService(f.db, f.cache)

	res, err := svc.List(context.Background(), owner.Id)
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, "Work", res[0].Name)
	assert.Equal(t, int64(1), res[0].NoteCount)
}

func TestCategoryUpdate_OtherUsersCategoryIsNotFound(t *testing.T) {
	f := newFixture()
	owner := f.db.addUser("alice", "alice@example.com")
	other := f.db.addUser("bob", "bob@example.com")
	theirs := &entity.Category{Id: uuid.New(), UserId: other.Id, Name: "Bob's", Color: entity.DefaultCategoryColor}
	f.db.categories[theirs.Id] = theirs
	svc := NewCategoryService(f.db, f.cache)
	ctx := context.Background()

	_, err := svc.Update(ctx, owner.Id, theirs.Id, &dto.CategoryRequest{Name: "Mine"})
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
	assert.Equal(t, "Bob's", theirs.Name)

	res, err := svc.Update(ctx, other.Id, theirs.Id, &dto.CategoryRequest{Name: "Renamed", Color: "#000000"})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", res.Name)
	assert.Equal(t, "Renamed", theirs.Name)
}
