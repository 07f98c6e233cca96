package websocket

import (
	"context"
	"encoding/json"
	"sync"

	bus "notevault-be/internal/events"
	"notevault-be/internal/model"
	"notevault-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const clusterChannel = "cluster_events"

const (
	targetUser = "user"
	targetNote = "note"
)

// NoteAccess reports whether userID may read noteID. A nil error grants
// access.
type NoteAccess func(ctx context.Context, noteID, userID uuid.UUID) error

// Hub fans messages out to connected clients. Each user has a room of
// devices; each note has a room of clients that joined it.
type Hub struct {
	clients map[uuid.UUID][]*Client
	notes   map[uuid.UUID]map[*Client]struct{}

	register   chan *Client
	unregister chan *Client

	mu sync.RWMutex

	rdb        redis.UniversalClient
	instanceID string
	access     NoteAccess

	logger logger.ILogger
}

type clusterMessage struct {
	Origin  string          `json:"origin"`
	Target  string          `json:"target"`
	ID      string          `json:"id"`
	Message json.RawMessage `json:"message"`
}

func NewHub(rdb redis.UniversalClient, access NoteAccess, log logger.ILogger) *Hub {
	return &Hub{
		clients:    make(map[uuid.UUID][]*Client),
		notes:      make(map[uuid.UUID]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		rdb:        rdb,
		instanceID: uuid.NewString(),
		access:     access,
		logger:     log,
	}
}

func (h *Hub) Run(ctx context.Context) {
	if h.rdb != nil {
		go h.subscribeToRedis(ctx)
	}

	for {
		select {
		case <-ctx.Done():
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.UserID] = append(h.clients[client.UserID], client)
			h.mu.Unlock()
			h.logger.Info("Hub", "Client registered", map[string]interface{}{"user_id": client.UserID})

		case client := <-h.unregister:
			h.remove(client)
		}
	}
}

func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients, ok := h.clients[client.UserID]
	if !ok {
		return
	}
	for i, c := range clients {
		if c == client {
			h.clients[client.UserID] = append(clients[:i], clients[i+1:]...)
			close(client.Send)
			break
		}
	}
	if len(h.clients[client.UserID]) == 0 {
		delete(h.clients, client.UserID)
		h.logger.Info("Hub", "Client completely unregistered", map[string]interface{}{"user_id": client.UserID})
	}
	for noteID, members := range h.notes {
		delete(members, client)
		if len(members) == 0 {
			delete(h.notes, noteID)
		}
	}
}

// Join adds the client to a note room after checking read access.
func (h *Hub) Join(ctx context.Context, client *Client, noteID uuid.UUID) error {
	if h.access != nil {
		if err := h.access(ctx, noteID, client.UserID); err != nil {
			return err
		}
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	members, ok := h.notes[noteID]
	if !ok {
		members = make(map[*Client]struct{})
		h.notes[noteID] = members
	}
	members[client] = struct{}{}
	return nil
}

func (h *Hub) Leave(client *Client, noteID uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if members, ok := h.notes[noteID]; ok {
		delete(members, client)
		if len(members) == 0 {
			delete(h.notes, noteID)
		}
	}
}

// Send delivers a notification to every device of userID. Implements the
// notification delivery contract.
func (h *Hub) Send(userID uuid.UUID, notification model.Notification) {
	data, err := json.Marshal(map[string]interface{}{
		"type": "notification",
		"data": notification,
	})
	if err != nil {
		return
	}
	h.deliverToUser(userID, data)
	h.publish(targetUser, userID, data)
}

// NoteChanged pushes a note-updated message to everyone in the note room.
func (h *Hub) NoteChanged(change bus.NoteChanged) {
	data, err := json.Marshal(map[string]interface{}{
		"type": "note-updated",
		"data": change,
	})
	if err != nil {
		return
	}
	h.deliverToNote(change.NoteId, data)
	h.publish(targetNote, change.NoteId, data)
}

func (h *Hub) deliverToUser(userID uuid.UUID, data []byte) {
	h.mu.RLock()
	clients := append([]*Client(nil), h.clients[userID]...)
	h.mu.RUnlock()

	for _, client := range clients {
		h.enqueue(client, data)
	}
}

func (h *Hub) deliverToNote(noteID uuid.UUID, data []byte) {
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.notes[noteID]))
	for c := range h.notes[noteID] {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, client := range clients {
		h.enqueue(client, data)
	}
}

// enqueue never blocks. A client whose buffer is full is dropped.
func (h *Hub) enqueue(client *Client, data []byte) {
	defer func() {
		// Send may already be closed by a concurrent unregister.
		_ = recover()
	}()
	select {
	case client.Send <- data:
	default:
		h.logger.Warn("Hub", "Client Send buffer full, dropping client", map[string]interface{}{"user_id": client.UserID})
		go func() { h.unregister <- client }()
	}
}

func (h *Hub) publish(target string, id uuid.UUID, data []byte) {
	if h.rdb == nil {
		return
	}
	payload, err := json.Marshal(clusterMessage{
		Origin:  h.instanceID,
		Target:  target,
		ID:      id.String(),
		Message: data,
	})
	if err != nil {
		return
	}
	if err := h.rdb.Publish(context.Background(), clusterChannel, payload).Err(); err != nil {
		h.logger.Warn("Hub", "Redis publish failed", map[string]interface{}{"error": err.Error()})
	}
}

func (h *Hub) subscribeToRedis(ctx context.Context) {
	pubsub := h.rdb.Subscribe(ctx, clusterChannel)
	defer pubsub.Close()

	for msg := range pubsub.Channel() {
		h.handleRemote([]byte(msg.Payload))
	}
}

// handleRemote delivers a message published by another instance. Messages
// this instance published were already delivered locally.
func (h *Hub) handleRemote(raw []byte) {
	var msg clusterMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		h.logger.Warn("Hub", "Redis msg parse error", map[string]interface{}{"error": err.Error()})
		return
	}
	if msg.Origin == h.instanceID {
		return
	}
	id, err := uuid.Parse(msg.ID)
	if err != nil {
		return
	}

	switch msg.Target {
	case targetUser:
		h.deliverToUser(id, msg.Message)
	case targetNote:
		h.deliverToNote(id, msg.Message)
	}
}
