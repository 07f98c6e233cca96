package nats

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"notevault-be/pkg/events"
)

const (
	streamName    = "EVENTS"
	subjectPrefix = "events."
)

type envelope struct {
	Type       string                 `json:"type"`
	Data       map[string]interface{} `json:"data"`
	OccurredAt time.Time              `json:"occurred_at"`
}

func Subject(eventType string) string {
	return subjectPrefix + eventType
}

func encode(event events.Event) ([]byte, error) {
	return json.Marshal(envelope{
		Type:       event.EventType(),
		Data:       event.Payload(),
		OccurredAt: event.Timestamp(),
	})
}

// decode rebuilds an event from a message body. Bodies without a type take
// it from the subject.
func decode(subject string, body []byte) (events.BaseEvent, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return events.BaseEvent{}, fmt.Errorf("decode event on %s: %w", subject, err)
	}
	if env.Type == "" {
		env.Type = strings.TrimPrefix(subject, subjectPrefix)
	}
	if env.OccurredAt.IsZero() {
		env.OccurredAt = time.Now()
	}
	return events.BaseEvent{Type: env.Type, Data: env.Data, OccurredAt: env.OccurredAt}, nil
}
