package events

import (
	"context"
	"testing"
	"time"

	"notevault-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBus_DeliversNoteChanges(t *testing.T) {
	bus := NewBus(logger.NewNopLogger())
	defer bus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	received := make(chan NoteChanged, 1)
	require.NoError(t, bus.SubscribeNoteChanged(ctx, func(evt NoteChanged) { received <- evt }))

	sent := NoteChanged{Kind: NoteUpdated, NoteId: uuid.New(), OwnerId: uuid.New(), ActorId: uuid.New(), Title: "Plan"}
	require.NoError(t, bus.PublishNoteChanged(ctx, sent))

	select {
	case got := <-received:
		assert.Equal(t, sent.Kind, got.Kind)
		assert.Equal(t, sent.NoteId, got.NoteId)
		assert.Equal(t, sent.ActorId, got.ActorId)
		assert.False(t, got.OccurredAt.IsZero())
	case <-time.After(2 * time.Second):
		t.Fatal("note change was not delivered")
	}
}
