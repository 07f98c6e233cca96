package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"notevault-be/internal/model"
	"notevault-be/internal/pkg/mailer"
	"notevault-be/pkg/events"
	pktNats "notevault-be/pkg/nats"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pushRecorder struct {
	mu    sync.Mutex
	users []uuid.UUID
}

func (p *pushRecorder) Send(userID uuid.UUID, _ model.Notification) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.users = append(p.users, userID)
}

func (p *pushRecorder) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.users)
}

type mailRecorder struct {
	mailer.IEmailService
	mu   sync.Mutex
	sent []string
	err  error
}

func (m *mailRecorder) SendNoteShared(toEmail, _, _, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, toEmail)
	return m.err
}

type failingPublisher struct{ calls int }

func (p *failingPublisher) Publish(context.Context, events.Event) error {
	p.calls++
	return errors.New("nats: no responders")
}

type stubSubscriber struct{ subject string }

func (s *stubSubscriber) Subscribe(subject, _ string, _ pktNats.EventHandler) error {
	s.subject = subject
	return nil
}

func sharedEvent(recipient uuid.UUID) events.BaseEvent {
	return events.New(events.NoteShared, map[string]interface{}{
		"note_id":         uuid.New().String(),
		"note_title":      "Roadmap",
		"owner_id":        uuid.New().String(),
		"owner_name":      "alice",
		"recipient_id":    recipient.String(),
		"recipient_email": "bob@example.com",
		"permission":      "edit",
	})
}

func TestHandleEvent_NoteSharedPersistsPushesAndMails(t *testing.T) {
	f := newFixture()
	push := &pushRecorder{}
	mail := &mailRecorder{err: errors.New("smtp down")}
	svc := NewNotificationService(f.db, nil, nil, push, mail, nil, f.log)
	recipient := uuid.New()

	require.NoError(t, svc.handleEvent(context.Background(), sharedEvent(recipient)))

	require.Equal(t, 1, f.db.notificationCount())
	stored := f.db.notifications[0]
	assert.Equal(t, recipient, stored.UserID)
	assert.Equal(t, events.NoteShared, stored.TypeCode)
	assert.Contains(t, stored.Message, "Roadmap")
	require.NotNil(t, stored.EntityID)
	require.NotNil(t, stored.ActorID)
	assert.Equal(t, 1, push.count())
	assert.Equal(t, []string{"bob@example.com"}, mail.sent, "mail failures do not fail the event")
}

func TestHandleEvent_SubjectPrefixedType(t *testing.T) {
	f := newFixture()
	svc := NewNotificationService(f.db, nil, nil, nil, nil, nil, f.log)

	event := events.BaseEvent{
		Type:       "events." + events.ShareRevoked,
		Data:       map[string]interface{}{"recipient_id": uuid.New().String()},
		OccurredAt: time.Now(),
	}
	require.NoError(t, svc.handleEvent(context.Background(), event))
	require.Equal(t, 1, f.db.notificationCount())
	assert.Equal(t, events.ShareRevoked, f.db.notifications[0].TypeCode)
}

func TestHandleEvent_StorageErrorIsReturnedForRedelivery(t *testing.T) {
	f := newFixture()
	f.db.notificationErr = errors.New("connection reset")
	push := &pushRecorder{}
	svc := NewNotificationService(f.db, nil, nil, push, nil, nil, f.log)

	err := svc.handleEvent(context.Background(), sharedEvent(uuid.New()))
	require.Error(t, err)
	assert.Zero(t, push.count())
}

func TestHandleEvent_IgnoresUnknownAndMalformed(t *testing.T) {
	f := newFixture()
	svc := NewNotificationService(f.db, nil, nil, nil, nil, nil, f.log)
	ctx := context.Background()

	assert.NoError(t, svc.handleEvent(ctx, events.New("USER_LOGIN", nil)))
	assert.NoError(t, svc.handleEvent(ctx, events.New(events.NoteShared, map[string]interface{}{"recipient_id": "nope"})))
	assert.Zero(t, f.db.notificationCount())
}

func TestDispatch_FallsBackToDirectDelivery(t *testing.T) {
	f := newFixture()
	push := &pushRecorder{}
	publisher := &failingPublisher{}
	subscriber := &stubSubscriber{}
	svc := NewNotificationService(f.db, publisher, subscriber, push, nil, nil, f.log)
	svc.Start()
	assert.Equal(t, "events.>", subscriber.subject)

	svc.Dispatch(context.Background(), sharedEvent(uuid.New()))

	assert.Equal(t, 1, publisher.calls)
	assert.Eventually(t, func() bool { return push.count() == 1 }, time.Second, 10*time.Millisecond)
}

func TestDispatch_WithoutBusHandlesInProcess(t *testing.T) {
	f := newFixture()
	push := &pushRecorder{}
	svc := NewNotificationService(f.db, nil, nil, push, nil, nil, f.log)
	svc.Start()

	svc.Dispatch(context.Background(), sharedEvent(uuid.New()))

	assert.Eventually(t, func() bool { return f.db.notificationCount() == 1 }, time.Second, 10*time.Millisecond)
}
