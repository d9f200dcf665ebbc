package handler

import (
	"io"
	"time"

	"github.com/bitfantasy/nimo-qc/internal/qc/sse"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SSEHandler streams trial events to screens.
type SSEHandler struct {
	hub       *sse.Hub
	heartbeat time.Duration
	buffer    int
}

func NewSSEHandler(hub *sse.Hub) *SSEHandler {
	return &SSEHandler{hub: hub, heartbeat: 30 * time.Second, buffer: 64}
}

// Stream GET /api/v1/events?token=&trial_id=
// With trial_id the stream carries only that trial's updates.
func (h *SSEHandler) Stream(c *gin.Context) {
	client := &sse.Client{
		ID:       uuid.New().String(),
		Username: GetActor(c).Username,
		TrialID:  c.Query("trial_id"),
		Events:   make(chan sse.Event, h.buffer),
	}
	h.hub.Register(client)
	defer h.hub.Unregister(client.ID)

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	c.SSEvent("connected", gin.H{"client_id": client.ID, "trial_id": client.TrialID})
	c.Writer.Flush()

	heartbeat := time.NewTicker(h.heartbeat)
	defer heartbeat.Stop()

	c.Stream(func(w io.Writer) bool {
		select {
		case <-c.Request.Context().Done():
			return false
		case event, ok := <-client.Events:
			if !ok {
				return false
			}
			c.SSEvent(event.EventType, event.Data)
			return true
		case <-heartbeat.C:
			_, _ = w.Write([]byte(": keepalive\n\n"))
			return true
		}
	})
}
