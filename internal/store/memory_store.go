package store

import (
	"context"
	"sort"
	"sync"

	"github.com/nihalshetty-boop/listri/internal/domain"
)

// MemoryStore keeps messages in process memory. It backs tests and the
// zero-config dev mode; the query contracts match GormStore exactly.
type MemoryStore struct {
	mu     sync.RWMutex
	msgs   []domain.ChatMessage
	nextID int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{nextID: 1}
}

func (s *MemoryStore) Persist(ctx context.Context, msg domain.ChatMessage) (domain.ChatMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := msg
	stored.ID = s.nextID
	s.nextID++
	s.msgs = append(s.msgs, stored)
	return stored, nil
}

func (s *MemoryStore) QueryByRoom(ctx context.Context, chatRoomID string) ([]domain.ChatMessage, error) {
	return s.query(func(m domain.ChatMessage) bool {
		return m.ChatRoomID == chatRoomID
	}), nil
}

func (s *MemoryStore) QueryByListing(ctx context.Context, listingID string) ([]domain.ChatMessage, error) {
	return s.query(func(m domain.ChatMessage) bool {
		return m.ListingID == listingID
	}), nil
}

func (s *MemoryStore) QueryByParticipants(ctx context.Context, senderID, receiverID string) ([]domain.ChatMessage, error) {
	return s.query(func(m domain.ChatMessage) bool {
		return m.SenderID == senderID && m.ReceiverID == receiverID
	}), nil
}

func (s *MemoryStore) query(match func(domain.ChatMessage) bool) []domain.ChatMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []domain.ChatMessage{}
	for _, m := range s.msgs {
		if match(m) {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].ID < out[j].ID
		}
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out
}
