package store

import (
	"context"

	"github.com/nihalshetty-boop/listri/internal/domain"
)

// MessageStore is the durable record of all chat messages. Persist assigns
// the id; the router and clients never do. Every query returns messages
// ordered by timestamp ascending, ties broken by id ascending, so pagination
// sees a total order.
type MessageStore interface {
	Persist(ctx context.Context, msg domain.ChatMessage) (domain.ChatMessage, error)
	QueryByRoom(ctx context.Context, chatRoomID string) ([]domain.ChatMessage, error)
	QueryByListing(ctx context.Context, listingID string) ([]domain.ChatMessage, error)
	// QueryByParticipants matches the exact (sender, receiver) pair in that
	// direction; swapped pairs are a different conversation.
	QueryByParticipants(ctx context.Context, senderID, receiverID string) ([]domain.ChatMessage, error)
}
