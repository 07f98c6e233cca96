// Package events is the in-process bus that carries note changes from the
// services to the realtime hub.
package events

import (
	"context"
	"encoding/json"
	"time"

	"notevault-be/internal/pkg/logger"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

const TopicNoteChanged = "note.changed"

const (
	NoteCreated = "note.created"
	NoteUpdated = "note.updated"
	NoteTrashed = "note.trashed"
)

type NoteChanged struct {
	Kind       string    `json:"kind"`
	NoteId     uuid.UUID `json:"note_id"`
	OwnerId    uuid.UUID `json:"owner_id"`
	ActorId    uuid.UUID `json:"actor_id"`
	Title      string    `json:"title"`
	OccurredAt time.Time `json:"occurred_at"`
}

type Publisher interface {
	PublishNoteChanged(ctx context.Context, evt NoteChanged) error
}

type Bus struct {
	pubSub *gochannel.GoChannel
	logger logger.ILogger
}

func NewBus(log logger.ILogger) *Bus {
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{OutputChannelBuffer: 256},
		watermill.NopLogger{},
	)
	return &Bus{pubSub: pubSub, logger: log}
}

func (b *Bus) PublishNoteChanged(_ context.Context, evt NoteChanged) error {
	if evt.OccurredAt.IsZero() {
		evt.OccurredAt = time.Now()
	}
	payload, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	return b.pubSub.Publish(TopicNoteChanged, message.NewMessage(watermill.NewUUID(), payload))
}

// SubscribeNoteChanged runs handler for every published change until ctx is
// done. Each message is acked after the handler returns.
func (b *Bus) SubscribeNoteChanged(ctx context.Context, handler func(NoteChanged)) error {
	messages, err := b.pubSub.Subscribe(ctx, TopicNoteChanged)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			var evt NoteChanged
			if err := json.Unmarshal(msg.Payload, &evt); err != nil {
				b.logger.Warn("EventBus", "Dropping malformed note event", map[string]interface{}{"error": err.Error()})
				msg.Ack()
				continue
			}
			handler(evt)
			msg.Ack()
		}
	}()
	return nil
}

func (b *Bus) Close() error {
	return b.pubSub.Close()
}
