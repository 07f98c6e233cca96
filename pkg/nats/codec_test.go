package nats

import (
	"testing"
	"time"

	"notevault-be/pkg/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubject(t *testing.T) {
	assert.Equal(t, "events.NOTE_SHARED", Subject(events.NoteShared))
}

func TestDecode_KeepsEnvelopeFields(t *testing.T) {
	at := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	body, err := encode(events.BaseEvent{
		Type:       events.NoteShared,
		Data:       map[string]interface{}{"note_id": "n-1"},
		OccurredAt: at,
	})
	require.NoError(t, err)

	got, err := decode("events.SOMETHING_ELSE", body)
	require.NoError(t, err)
	assert.Equal(t, events.NoteShared, got.EventType())
	assert.Equal(t, "n-1", got.Payload()["note_id"])
	assert.True(t, at.Equal(got.Timestamp()))
}

func TestDecode_FallsBackToSubject(t *testing.T) {
	got, err := decode("events.SHARE_REVOKED", []byte(`{"data":{"share_id":"s-1"}}`))
	require.NoError(t, err)
	assert.Equal(t, events.ShareRevoked, got.EventType())
	assert.False(t, got.Timestamp().IsZero())
}

func TestDecode_RejectsGarbage(t *testing.T) {
	_, err := decode("events.X", []byte(`not json`))
	assert.Error(t, err)
}
