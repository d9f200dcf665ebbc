package sse

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"
)

// Event is one server-sent event. TrialID scopes it for filtered streams
// and is not written to the wire.
type Event struct {
	EventType string `json:"event"`
	Data      string `json:"data"`
	TrialID   string `json:"-"`
}

// Client is one connected event stream. A client with TrialID set only
// receives events of that trial plus unscoped ones.
type Client struct {
	ID       string
	Username string
	TrialID  string
	Events   chan Event
}

func (c *Client) wants(e Event) bool {
	return c.TrialID == "" || e.TrialID == "" || c.TrialID == e.TrialID
}

// Hub fans trial events out to connected screens.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
	logger  *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		clients: make(map[string]*Client),
		logger:  logger,
	}
}

// Register adds a new client to the hub
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[client.ID] = client
	h.logger.Debug("sse client registered",
		zap.String("client_id", client.ID), zap.String("username", client.Username), zap.Int("total", len(h.clients)))
}

// Unregister removes a client and closes its channel.
func (h *Hub) Unregister(clientID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if client, ok := h.clients[clientID]; ok {
		close(client.Events)
		delete(h.clients, clientID)
		h.logger.Debug("sse client unregistered", zap.String("client_id", clientID), zap.Int("total", len(h.clients)))
	}
}

// ClientCount number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast sends an event to all connected clients. Slow clients miss it.
func (h *Hub) Broadcast(event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, client := range h.clients {
		h.deliver(client, event)
	}
}

// SendToUser sends an event to every stream of one user.
func (h *Hub) SendToUser(username string, event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, client := range h.clients {
		if client.Username == username {
			h.deliver(client, event)
		}
	}
}

// deliver never blocks; a full buffer drops the event for that client.
// Callers hold h.mu.
func (h *Hub) deliver(client *Client, event Event) {
	if !client.wants(event) {
		return
	}
	select {
	case client.Events <- event:
	default:
		h.logger.Warn("sse client buffer full, skipping event",
			zap.String("client_id", client.ID), zap.String("event", event.EventType))
	}
}

// TrialUpdate is the payload of a trial_update event.
type TrialUpdate struct {
	TrialID          string `json:"trial_id"`
	Kind             string `json:"kind"`
	DepartmentID     int    `json:"department_id"`
	NextDepartmentID int    `json:"next_department_id,omitempty"`
	Action           string `json:"action"`
	Username         string `json:"username"`
}

// PublishTrialUpdate tells every screen that a trial moved.
func (h *Hub) PublishTrialUpdate(u TrialUpdate) {
	data, _ := json.Marshal(u)
	h.Broadcast(Event{EventType: "trial_update", Data: string(data), TrialID: u.TrialID})
	h.logger.Info("published trial_update",
		zap.String("trial_id", u.TrialID), zap.String("kind", u.Kind), zap.String("action", u.Action))
}
