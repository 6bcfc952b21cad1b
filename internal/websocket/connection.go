package websocket

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/nihalshetty-boop/listri/internal/domain"
	"github.com/nihalshetty-boop/listri/internal/presence"
	"github.com/nihalshetty-boop/listri/internal/router"
	"github.com/nihalshetty-boop/listri/pkg/logger"
)

var (
	errSendBufferFull   = errors.New("send buffer full")
	errConnectionClosed = errors.New("connection closed")
)

// Connection is one client channel: it adapts a websocket into the inbound
// event stream the router consumes and the outbound stream it delivers to.
type Connection struct {
	id       string
	ws       *websocket.Conn
	send     chan domain.ChatMessage
	hub      *Hub
	router   *router.Router
	presence presence.Tracker
	username string
	logger   logger.Logger

	closeMu sync.RWMutex
	closed  bool
}

func NewConnection(ws *websocket.Conn, hub *Hub, rtr *router.Router, tracker presence.Tracker, username string, logg logger.Logger) *Connection {
	return &Connection{
		id:       uuid.NewString(),
		ws:       ws,
		send:     make(chan domain.ChatMessage, 256),
		hub:      hub,
		router:   rtr,
		presence: tracker,
		username: username,
		logger:   logg,
	}
}

func (c *Connection) ID() string       { return c.id }
func (c *Connection) Username() string { return c.username }

// Deliver queues an outbound event without blocking. A full buffer means the
// client is not draining; the message is dropped for this recipient only.
func (c *Connection) Deliver(msg domain.ChatMessage) error {
	c.closeMu.RLock()
	defer c.closeMu.RUnlock()
	if c.closed {
		return errConnectionClosed
	}
	select {
	case c.send <- msg:
		return nil
	default:
		return errSendBufferFull
	}
}

// closeSend ends the write pump; Deliver calls after this fail cleanly.
func (c *Connection) closeSend() {
	c.closeMu.Lock()
	defer c.closeMu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// ReadPump decodes inbound events and hands them to the router until the
// connection dies, then triggers cleanup through the hub.
func (c *Connection) ReadPump() {
	defer func() {
		c.hub.Unregister <- c
		c.ws.Close()
	}()

	for {
		var msg domain.ChatMessage
		if err := c.ws.ReadJSON(&msg); err != nil {
			c.logger.Infof("connection %s closed: %v", c.username, err)
			return
		}
		if msg.SenderID == "" {
			msg.SenderID = c.username
		}

		ctx := context.Background()
		switch msg.Type {
		case domain.MessageTypeJoin:
			if err := c.router.HandleJoin(ctx, msg, c); err != nil {
				c.logger.Warnf("join from %s dropped: %v", c.username, err)
				continue
			}
			if err := c.presence.AddRoomMember(ctx, msg.ChatRoomID, c.username); err != nil {
				c.logger.Errorf("failed to record membership for %s: %v", c.username, err)
			}
		default:
			if _, err := c.router.HandleSend(ctx, msg); err != nil {
				c.logger.Warnf("send from %s dropped: %v", c.username, err)
			}
		}
	}
}

// WritePump drains the send queue onto the wire.
func (c *Connection) WritePump() {
	defer c.ws.Close()

	for msg := range c.send {
		if err := c.ws.WriteJSON(msg); err != nil {
			c.logger.Infof("write to %s failed: %v", c.username, err)
			return
		}
	}
}
