package websocket

import (
	"context"
	"sync"

	"github.com/nihalshetty-boop/listri/internal/presence"
	"github.com/nihalshetty-boop/listri/internal/registry"
	"github.com/nihalshetty-boop/listri/pkg/logger"
)

// Hub tracks open connections and runs disconnect cleanup: dropping the
// channel from every room in the registry and clearing its presence entries.
type Hub struct {
	mu         sync.Mutex
	clients    map[*Connection]bool
	Register   chan *Connection
	Unregister chan *Connection

	registry *registry.RoomRegistry
	presence presence.Tracker
	logger   logger.Logger
}

func NewHub(reg *registry.RoomRegistry, tracker presence.Tracker, logg logger.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Connection]bool),
		Register:   make(chan *Connection),
		Unregister: make(chan *Connection),
		registry:   reg,
		presence:   tracker,
		logger:     logg,
	}
}

// Run handles connection lifecycle events until the context is cancelled.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case conn := <-h.Register:
			h.addClient(conn)
		case conn := <-h.Unregister:
			h.removeClient(conn)
		}
	}
}

// Close shuts down every remaining connection.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for conn := range h.clients {
		h.cleanup(conn)
		conn.closeSend()
		conn.ws.Close()
		delete(h.clients, conn)
	}
}

func (h *Hub) addClient(conn *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[conn] = true
}

func (h *Hub) removeClient(conn *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, exists := h.clients[conn]; exists {
		h.cleanup(conn)
		delete(h.clients, conn)
		conn.closeSend()
	}
}

func (h *Hub) cleanup(conn *Connection) {
	ctx := context.Background()
	for _, roomID := range h.registry.Unsubscribe(conn) {
		if err := h.presence.RemoveRoomMember(ctx, roomID, conn.username); err != nil {
			h.logger.Errorf("failed to clear membership of %s in %s: %v", conn.username, roomID, err)
		}
	}
	if err := h.presence.RemoveActiveUser(ctx, conn.username); err != nil {
		h.logger.Errorf("failed to clear active user %s: %v", conn.username, err)
	}
}
