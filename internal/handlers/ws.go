package handlers

import (
	"net/http"
	"sync"

	"github.com/fevilela/GymFeedback/internal/common"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// Dashboard clients connect from the SPA origin behind the same
		// deployment; CORS already gates the REST surface.
		return true
	},
}

// Hub fans a change notification out to connected dashboard clients. It
// replaces the browser storage-event trick from the first version of the
// dashboard: clients get a nudge and re-fetch, no data is pushed.
type Hub struct {
	mu    sync.Mutex
	conns map[*websocket.Conn]bool
}

func NewHub() *Hub {
	return &Hub{conns: make(map[*websocket.Conn]bool)}
}

func (h *Hub) Broadcast(event string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.conns {
		if err := conn.WriteJSON(map[string]string{"event": event}); err != nil {
			conn.Close()
			delete(h.conns, conn)
		}
	}
}

func (h *Hub) add(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[conn] = true
}

func (h *Hub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.conns[conn] {
		conn.Close()
		delete(h.conns, conn)
	}
}

func CreateWSHandler(s *common.ServerState, hub *Hub) echo.HandlerFunc {
	return func(c echo.Context) error {
		conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
		if err != nil {
			return err
		}

		hub.add(conn)
		defer hub.remove(conn)

		// Clients never send anything meaningful; the read loop only exists
		// to notice the close.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return nil
			}
		}
	}
}
