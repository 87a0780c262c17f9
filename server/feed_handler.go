package server

import (
	"log"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/greenearthng/greenloop/models"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// FeedHub fans newly submitted reports out to every connected feed
// client. Slow or dead connections are dropped rather than blocking the
// broadcast.
type FeedHub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
}

func NewFeedHub() *FeedHub {
	return &FeedHub{
		clients: make(map[*websocket.Conn]struct{}),
	}
}

func (h *FeedHub) register(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[conn] = struct{}{}
}

func (h *FeedHub) unregister(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[conn]; ok {
		delete(h.clients, conn)
		conn.Close()
	}
}

// Broadcast sends the report to all connected clients.
func (h *FeedHub) Broadcast(report *models.Report) {
	if h == nil || report == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		if err := conn.WriteJSON(report); err != nil {
			log.Printf("feed write failed, dropping client: %v", err)
			delete(h.clients, conn)
			conn.Close()
		}
	}
}

// HandleFeed upgrades the connection and keeps it open until the client
// goes away. The read loop only exists to detect disconnects.
func (s *Server) HandleFeed() gin.HandlerFunc {
	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Printf("feed upgrade failed: %v", err)
			return
		}
		s.FeedHub.register(conn)
		defer s.FeedHub.unregister(conn)

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}
}
