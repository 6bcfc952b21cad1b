package history

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/nihalshetty-boop/listri/internal/domain"
	"github.com/nihalshetty-boop/listri/internal/store"
	"github.com/nihalshetty-boop/listri/pkg/logger"
)

// Service answers history queries through a read-through cache. Cache
// problems degrade to direct store reads; store problems surface to the
// caller with no partial results.
type Service struct {
	store  store.MessageStore
	cache  Cache // nil disables caching
	ttl    time.Duration
	sf     singleflight.Group
	logger logger.Logger
}

func NewService(ms store.MessageStore, cache Cache, ttl time.Duration, logg logger.Logger) *Service {
	return &Service{
		store:  ms,
		cache:  cache,
		ttl:    ttl,
		logger: logg,
	}
}

func (s *Service) RoomMessages(ctx context.Context, chatRoomID string) ([]domain.ChatMessage, error) {
	return s.fetch(ctx, "room:"+chatRoomID, func() ([]domain.ChatMessage, error) {
		return s.store.QueryByRoom(ctx, chatRoomID)
	})
}

func (s *Service) Conversation(ctx context.Context, senderID, receiverID string) ([]domain.ChatMessage, error) {
	key := fmt.Sprintf("conversation:%s:%s", senderID, receiverID)
	return s.fetch(ctx, key, func() ([]domain.ChatMessage, error) {
		return s.store.QueryByParticipants(ctx, senderID, receiverID)
	})
}

func (s *Service) ListingMessages(ctx context.Context, listingID string) ([]domain.ChatMessage, error) {
	return s.fetch(ctx, "listing:"+listingID, func() ([]domain.ChatMessage, error) {
		return s.store.QueryByListing(ctx, listingID)
	})
}

func (s *Service) fetch(ctx context.Context, key string, query func() ([]domain.ChatMessage, error)) ([]domain.ChatMessage, error) {
	if s.cache == nil {
		return query()
	}

	// Collapse concurrent identical queries into one store round trip.
	result, err, _ := s.sf.Do(key, func() (interface{}, error) {
		cached, err := s.cache.Get(ctx, key)
		if err == nil {
			return cached, nil
		}
		if !errors.Is(err, ErrCacheMiss) {
			s.logger.Warnf("cache get %s: %v", key, err)
		}

		msgs, err := query()
		if err != nil {
			return nil, err
		}

		// Fill asynchronously so a slow cache never delays the response.
		go func() {
			cacheCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := s.cache.Set(cacheCtx, key, msgs, s.ttl); err != nil {
				s.logger.Warnf("cache set %s: %v", key, err)
			}
		}()

		return msgs, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.ChatMessage), nil
}
