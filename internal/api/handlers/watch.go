package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/nico/impostor-party-server/internal/push"
	"github.com/nico/impostor-party-server/internal/service"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// WatchHandler streams room snapshots over a websocket. It is a thin push
// layer over the same read model clients poll: subscribers get an immediate
// snapshot (late subscribers therefore see a consistent countdown/round
// pairing) and one message per room mutation afterwards.
type WatchHandler struct {
	gameService *service.GameService
	hub         *push.Hub
}

func NewWatchHandler(gameService *service.GameService, hub *push.Hub) *WatchHandler {
	return &WatchHandler{gameService: gameService, hub: hub}
}

func (h *WatchHandler) Watch(w http.ResponseWriter, r *http.Request) {
	sess, code, ok := roomSession(w, r)
	if !ok {
		return
	}

	// Resolve the room before upgrading so a bad code is still a plain 404.
	initial, err := h.gameService.State(code, sess.PlayerID)
	if err != nil {
		writeGameError(w, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ERROR [WatchHandler.Watch] upgrade failed: %v", err)
		return
	}

	sub := h.hub.Subscribe(code)
	defer sub.Close()
	defer conn.Close()

	conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(initial); err != nil {
		return
	}

	// Reader goroutine: we never expect client messages, but reading is how
	// websocket close frames surface.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case payload, open := <-sub.Receive():
			if !open {
				// Room was deleted; tell the client and hang up.
				conn.SetWriteDeadline(time.Now().Add(writeWait))
				conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "room closed"))
				return
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
