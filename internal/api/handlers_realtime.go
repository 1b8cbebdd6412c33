package api

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/wondertwin-ai/backoffice/internal/realtime"
	"github.com/wondertwin-ai/backoffice/pkg/server"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = wsPongWait * 9 / 10
)

// ListEvents handles GET /realtime/events?channel=.
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	server.JSON(w, http.StatusOK, items(h.f.Realtime.ListRecent(r.URL.Query().Get("channel"))))
}

// Publish handles POST /realtime/publish.
func (h *Handler) Publish(w http.ResponseWriter, r *http.Request) {
	body, err := readObject(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	channel, err := requireString(body, "channel")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	eventType, err := requireString(body, "type")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	server.JSON(w, http.StatusOK, h.f.Realtime.Publish(channel, eventType, body["payload"]))
}

// Subscribe handles GET /realtime/subscribe?channel=, streaming every event
// published on the channel as a JSON text frame until the client goes away.
func (h *Handler) Subscribe(w http.ResponseWriter, r *http.Request) {
	channel := r.URL.Query().Get("channel")
	if channel == "" {
		server.Error(w, http.StatusBadRequest, "channel is required")
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written an HTTP error.
		h.logger.Debug("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	done := make(chan struct{})
	out := make(chan realtime.Event, 16)
	unsubscribe := h.f.Realtime.Subscribe(channel, func(evt realtime.Event) {
		select {
		case out <- evt:
		case <-done:
		}
	})
	defer unsubscribe()

	// The read loop only serves control frames and detects disconnects.
	go func() {
		defer close(done)
		conn.SetReadLimit(512)
		conn.SetReadDeadline(time.Now().Add(wsPongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(wsPongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(wsPingPeriod)
	defer ticker.Stop()

	h.logger.Debug("realtime subscriber connected", zap.String("channel", channel))
	for {
		select {
		case evt := <-out:
			conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteJSON(evt); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			h.logger.Debug("realtime subscriber disconnected", zap.String("channel", channel))
			return
		}
	}
}
