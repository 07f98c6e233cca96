package contract

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// Trashable names the tables that take part in the soft-delete lifecycle.
type Trashable string

const (
	TrashableNotes      Trashable = "notes"
	TrashableCategories Trashable = "categories"
)

var ErrUnknownTrashable = errors.New("unknown trashable kind")

func (k Trashable) Valid() bool {
	return k == TrashableNotes || k == TrashableCategories
}

type LifecycleRepository interface {
	SoftDelete(ctx context.Context, kind Trashable, id, ownerId, actorId uuid.UUID) error
	Restore(ctx context.Context, kind Trashable, id, ownerId uuid.UUID) error
	// Purge hard-deletes a trashed row and its dependent rows. For notes it
	// returns the paths of the attachment files that were referenced.
	Purge(ctx context.Context, kind Trashable, id, ownerId uuid.UUID) ([]string, error)
}
