package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"notevault-be/internal/dto"
	"notevault-be/internal/model"
	"notevault-be/internal/pkg/logger"
	"notevault-be/internal/pkg/mailer"
	"notevault-be/internal/repository/unitofwork"
	"notevault-be/pkg/events"
	pktNats "notevault-be/pkg/nats"
	"notevault-be/pkg/query"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// NotificationDelivery pushes real-time updates. Implemented by the
// WebSocket Hub.
type NotificationDelivery interface {
	Send(userID uuid.UUID, notification model.Notification)
}

// IEventDispatcher hands a domain event to the notification pipeline. It
// never blocks on delivery and never fails the caller.
type IEventDispatcher interface {
	Dispatch(ctx context.Context, event events.Event)
}

type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

type EventSubscriber interface {
	Subscribe(subject string, durableName string, handler pktNats.EventHandler) error
}

type INotificationService interface {
	IEventDispatcher
	Start()
	List(ctx context.Context, userId uuid.UUID, params query.Params) (*dto.NotificationListResponse, error)
	UnreadCount(ctx context.Context, userId uuid.UUID) (*dto.UnreadCountResponse, error)
	MarkAsRead(ctx context.Context, userId, notificationId uuid.UUID) error
	MarkAllAsRead(ctx context.Context, userId uuid.UUID) error
}

type NotificationService struct {
	uowFactory unitofwork.RepositoryFactory
	publisher  EventPublisher
	subscriber EventSubscriber
	delivery   NotificationDelivery
	mailer     mailer.IEmailService
	pager      *query.Composer
	logger     logger.ILogger

	consuming atomic.Bool
}

// NewNotificationService wires the inbox. publisher, subscriber, delivery and
// mail may be nil; events are then handled in-process.
func NewNotificationService(
	uowFactory unitofwork.RepositoryFactory,
	publisher EventPublisher,
	subscriber EventSubscriber,
	delivery NotificationDelivery,
	mail mailer.IEmailService,
	pager *query.Composer,
	log logger.ILogger,
) *NotificationService {
	return &NotificationService{
		uowFactory: uowFactory,
		publisher:  publisher,
		subscriber: subscriber,
		delivery:   delivery,
		mailer:     mail,
		pager:      pager,
		logger:     log,
	}
}

// Start begins listening to the event bus.
func (s *NotificationService) Start() {
	if s.subscriber == nil || s.publisher == nil {
		s.logger.Info("NotificationService", "No event bus configured, handling events in-process", nil)
		return
	}
	err := s.subscriber.Subscribe("events.>", "notif-service-worker", s.handleEvent)
	if err != nil {
		s.logger.Error("NotificationService", "Failed to start notification subscriber", map[string]interface{}{"error": err.Error()})
		return
	}
	s.consuming.Store(true)
	s.logger.Info("NotificationService", "Notification service started, listening to events.>", nil)
}

func (s *NotificationService) Dispatch(ctx context.Context, event events.Event) {
	if s.consuming.Load() {
		err := s.publisher.Publish(ctx, event)
		if err == nil {
			return
		}
		s.logger.Warn("NotificationService", "Publish failed, delivering directly", map[string]interface{}{
			"type":  event.EventType(),
			"error": err.Error(),
		})
	}

	detached := context.WithoutCancel(ctx)
	go func() {
		if err := s.handleEvent(detached, event); err != nil {
			s.logger.Error("NotificationService", "Direct delivery failed", map[string]interface{}{
				"type":  event.EventType(),
				"error": err.Error(),
			})
		}
	}()
}

func (s *NotificationService) handleEvent(ctx context.Context, event events.Event) error {
	typeCode := strings.TrimPrefix(event.EventType(), "events.")
	s.logger.Info("NotificationService", fmt.Sprintf("Processing event: %s", typeCode), map[string]interface{}{"type": typeCode})

	switch typeCode {
	case events.NoteShared:
		return s.onNoteShared(ctx, event)
	case events.ShareRevoked:
		return s.onShareRevoked(ctx, event)
	default:
		s.logger.Debug("NotificationService", "No handler for event", map[string]interface{}{"type": typeCode})
		return nil
	}
}

func (s *NotificationService) onNoteShared(ctx context.Context, event events.Event) error {
	recipientID, err := uuid.Parse(events.StringField(event, "recipient_id"))
	if err != nil {
		s.logger.Warn("NotificationService", "NOTE_SHARED without recipient_id", nil)
		return nil
	}

	ownerName := events.StringField(event, "owner_name")
	if ownerName == "" {
		ownerName = "Someone"
	}
	title := events.StringField(event, "note_title")
	permission := events.StringField(event, "permission")

	notif := s.buildNotification(recipientID, event, "note",
		"A note was shared with you",
		fmt.Sprintf("%s shared \"%s\" with you (%s access)", ownerName, title, permission),
	)
	if err := s.persistAndPush(ctx, notif); err != nil {
		return err
	}

	email := events.StringField(event, "recipient_email")
	if s.mailer != nil && email != "" {
		if err := s.mailer.SendNoteShared(email, ownerName, title, permission); err != nil {
			s.logger.Warn("NotificationService", "Share email failed", map[string]interface{}{
				"user_id": recipientID,
				"error":   err.Error(),
			})
		}
	}
	return nil
}

func (s *NotificationService) onShareRevoked(ctx context.Context, event events.Event) error {
	recipientID, err := uuid.Parse(events.StringField(event, "recipient_id"))
	if err != nil {
		s.logger.Warn("NotificationService", "SHARE_REVOKED without recipient_id", nil)
		return nil
	}

	notif := s.buildNotification(recipientID, event, "note",
		"Access removed",
		"A note that was shared with you is no longer available",
	)
	return s.persistAndPush(ctx, notif)
}

func (s *NotificationService) buildNotification(userID uuid.UUID, event events.Event, entityType, title, message string) model.Notification {
	notif := model.Notification{
		ID:         uuid.New(),
		UserID:     userID,
		TypeCode:   strings.TrimPrefix(event.EventType(), "events."),
		EntityType: entityType,
		Title:      title,
		Message:    message,
		CreatedAt:  time.Now(),
	}
	if actor, err := uuid.Parse(events.StringField(event, "owner_id")); err == nil {
		notif.ActorID = &actor
	}
	if noteID, err := uuid.Parse(events.StringField(event, "note_id")); err == nil {
		notif.EntityID = &noteID
	}
	if meta, err := json.Marshal(event.Payload()); err == nil {
		notif.Metadata = datatypes.JSON(meta)
	}
	return notif
}

// persistAndPush stores the inbox entry, then pushes it. A storage error is
// returned so the bus redelivers.
func (s *NotificationService) persistAndPush(ctx context.Context, notif model.Notification) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.NotificationRepository().CreateNotification(ctx, &notif); err != nil {
		s.logger.Error("NotificationService", fmt.Sprintf("Error saving notification for user %s", notif.UserID), map[string]interface{}{"error": err.Error()})
		return err
	}
	if s.delivery != nil {
		s.delivery.Send(notif.UserID, notif)
	}
	return nil
}

func (s *NotificationService) List(ctx context.Context, userId uuid.UUID, params query.Params) (*dto.NotificationListResponse, error) {
	window := s.pager.Window(params)

	uow := s.uowFactory.NewUnitOfWork(ctx)
	items, total, err := uow.NotificationRepository().GetNotificationsByUserID(ctx, userId, window.Limit, window.Offset)
	if err != nil {
		return nil, storageError(err)
	}
	if items == nil {
		items = []model.Notification{}
	}

	return &dto.NotificationListResponse{
		Data:       items,
		Pagination: window.Pagination(total),
	}, nil
}

func (s *NotificationService) UnreadCount(ctx context.Context, userId uuid.UUID) (*dto.UnreadCountResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	count, err := uow.NotificationRepository().GetUnreadCount(ctx, userId)
	if err != nil {
		return nil, storageError(err)
	}
	return &dto.UnreadCountResponse{Count: count}, nil
}

func (s *NotificationService) MarkAsRead(ctx context.Context, userId, notificationId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	err := uow.NotificationRepository().MarkAsRead(ctx, notificationId, userId)
	return repoError(err, "Notification not found")
}

func (s *NotificationService) MarkAllAsRead(ctx context.Context, userId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return storageError(uow.NotificationRepository().MarkAllAsRead(ctx, userId))
}
