package nats

import (
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"

	"github.com/nihalshetty-boop/listri/internal/domain"
)

// Bridge mirrors every room broadcast onto a NATS subject so external
// consumers (search indexing, notifications) can follow the stream. It plugs
// into the router as a tap channel; publish failures never block websocket
// delivery.
type Bridge struct {
	conn *nats.Conn
}

func NewBridge(url string) (*Bridge, error) {
	nc, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return &Bridge{conn: nc}, nil
}

func (b *Bridge) ID() string { return "nats-bridge" }

func (b *Bridge) Deliver(msg domain.ChatMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to serialize message: %w", err)
	}
	return b.conn.Publish(subjectFor(msg.ChatRoomID), data)
}

func (b *Bridge) Close() {
	b.conn.Close()
}

func subjectFor(roomID string) string {
	return fmt.Sprintf("chat.room.%s", roomID)
}
