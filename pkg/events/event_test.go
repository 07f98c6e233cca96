package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	e := New(NoteShared, map[string]interface{}{"note_title": "Plan", "count": 3})

	assert.Equal(t, NoteShared, e.EventType())
	assert.False(t, e.Timestamp().IsZero())
	assert.Equal(t, "Plan", StringField(e, "note_title"))
	assert.Equal(t, "", StringField(e, "count"))
	assert.Equal(t, "", StringField(e, "missing"))
}
