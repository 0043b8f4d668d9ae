package api

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type sseMessage struct {
	event string
	data  interface{}
}

func (h *HTTPHandler) registerSSEClient(ch chan sseMessage) {
	if h == nil || ch == nil {
		return
	}
	h.sseMu.Lock()
	defer h.sseMu.Unlock()
	h.sseClients = append(h.sseClients, ch)
}

func (h *HTTPHandler) unregisterSSEClient(target chan sseMessage) {
	if h == nil || target == nil {
		return
	}
	h.sseMu.Lock()
	defer h.sseMu.Unlock()

	remaining := h.sseClients[:0]
	for _, ch := range h.sseClients {
		if ch == target {
			continue
		}
		remaining = append(remaining, ch)
	}
	h.sseClients = remaining
}

// publishSSEMessage broadcasts a state-change event to every connected
// client. Slow consumers drop messages instead of blocking the store.
func (h *HTTPHandler) publishSSEMessage(msg sseMessage) {
	if h == nil {
		return
	}

	h.sseMu.Lock()
	channels := append([]chan sseMessage(nil), h.sseClients...)
	h.sseMu.Unlock()

	for _, ch := range channels {
		select {
		case ch <- msg:
		default:
			logrus.WithField("event", msg.event).Warn("dropping sse message due to slow consumer")
		}
	}
}

// StreamEvents pushes task/state change notifications so a frontend can
// re-read the affected resources without polling the API.
func (h *HTTPHandler) StreamEvents(c *gin.Context) {
	ctx := c.Request.Context()
	events := make(chan sseMessage, 8)
	h.registerSSEClient(events)
	defer h.unregisterSSEClient(events)

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")

	if flusher, ok := c.Writer.(http.Flusher); ok {
		flusher.Flush()
	}

	heartbeatTicker := time.NewTicker(10 * time.Second)
	defer heartbeatTicker.Stop()

	logrus.Info("event stream connected")

	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			logrus.Info("event stream disconnected")
			return false
		case <-heartbeatTicker.C:
			c.SSEvent("ping", gin.H{"ts": time.Now().UnixMilli()})
			return true
		case msg, ok := <-events:
			if !ok {
				return false
			}
			c.SSEvent(msg.event, msg.data)
			return true
		}
	})
}
