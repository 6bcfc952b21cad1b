package router

import (
	"context"
	"time"

	"github.com/nihalshetty-boop/listri/internal/domain"
	"github.com/nihalshetty-boop/listri/internal/registry"
	"github.com/nihalshetty-boop/listri/internal/store"
	"github.com/nihalshetty-boop/listri/pkg/logger"
)

// Router is the relay core: it normalizes inbound events, persists chat
// messages, and fans them out to the room's current subscribers. Persist
// always happens before broadcast; subscribers never see a message the store
// has not accepted.
type Router struct {
	store    store.MessageStore
	registry *registry.RoomRegistry
	logger   logger.Logger
	taps     []registry.Channel
	now      func() time.Time
}

func New(ms store.MessageStore, reg *registry.RoomRegistry, logg logger.Logger) *Router {
	return &Router{
		store:    ms,
		registry: reg,
		logger:   logg,
		now:      time.Now,
	}
}

// AddTap registers a channel that receives every room broadcast regardless
// of membership, e.g. the NATS bridge. Call during wiring, before traffic.
func (r *Router) AddTap(ch registry.Channel) {
	r.taps = append(r.taps, ch)
}

// HandleSend validates, stamps, persists, and broadcasts one chat message.
// The returned message carries the store-assigned id and final timestamp.
func (r *Router) HandleSend(ctx context.Context, msg domain.ChatMessage) (domain.ChatMessage, error) {
	if msg.ChatRoomID == "" {
		return domain.ChatMessage{}, &domain.ValidationError{Field: "chatRoomId", Reason: "is required"}
	}
	if msg.SenderID == "" {
		return domain.ChatMessage{}, &domain.ValidationError{Field: "senderId", Reason: "is required"}
	}

	msg.Type = domain.MessageTypeChat
	if msg.Timestamp.IsZero() {
		msg.Timestamp = r.now()
	}

	stored, err := r.store.Persist(ctx, msg)
	if err != nil {
		r.logger.Errorf("persist failed for room %s: %v", msg.ChatRoomID, err)
		return domain.ChatMessage{}, err
	}

	r.broadcast(stored.ChatRoomID, stored)
	return stored, nil
}

// HandleJoin registers the channel under the room and notifies the current
// subscribers. Join notifications are not chat messages and are never
// persisted.
func (r *Router) HandleJoin(ctx context.Context, msg domain.ChatMessage, ch registry.Channel) error {
	if msg.ChatRoomID == "" {
		return &domain.ValidationError{Field: "chatRoomId", Reason: "is required"}
	}

	r.registry.Subscribe(msg.ChatRoomID, ch, msg.SenderID)

	msg.Type = domain.MessageTypeJoin
	if msg.Timestamp.IsZero() {
		msg.Timestamp = r.now()
	}
	r.broadcast(msg.ChatRoomID, msg)
	return nil
}

// broadcast delivers to a snapshot of the room's subscribers, then to the
// taps. A failed recipient is logged and skipped; no lock is held across
// delivery.
func (r *Router) broadcast(roomID string, msg domain.ChatMessage) {
	for _, ch := range r.registry.SubscribersOf(roomID) {
		if err := ch.Deliver(msg); err != nil {
			derr := &domain.DeliveryError{ChannelID: ch.ID(), Room: roomID, Err: err}
			r.logger.Warnf("%v", derr)
		}
	}
	for _, tap := range r.taps {
		if err := tap.Deliver(msg); err != nil {
			derr := &domain.DeliveryError{ChannelID: tap.ID(), Room: roomID, Err: err}
			r.logger.Warnf("%v", derr)
		}
	}
}
