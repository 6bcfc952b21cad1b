package router

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nihalshetty-boop/listri/internal/domain"
	"github.com/nihalshetty-boop/listri/internal/registry"
	"github.com/nihalshetty-boop/listri/internal/store"
	"github.com/nihalshetty-boop/listri/pkg/logger"
)

type fakeChannel struct {
	id   string
	fail bool
	mu   sync.Mutex
	msgs []domain.ChatMessage
}

func (f *fakeChannel) ID() string { return f.id }

func (f *fakeChannel) Deliver(msg domain.ChatMessage) error {
	if f.fail {
		return errors.New("connection gone")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.msgs = append(f.msgs, msg)
	return nil
}

func (f *fakeChannel) received() []domain.ChatMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.ChatMessage, len(f.msgs))
	copy(out, f.msgs)
	return out
}

type failingStore struct{}

func (failingStore) Persist(ctx context.Context, msg domain.ChatMessage) (domain.ChatMessage, error) {
	return domain.ChatMessage{}, &domain.PersistenceError{Op: "persist", Err: errors.New("database down")}
}

func (failingStore) QueryByRoom(ctx context.Context, chatRoomID string) ([]domain.ChatMessage, error) {
	return nil, &domain.PersistenceError{Op: "query_by_room", Err: errors.New("database down")}
}

func (failingStore) QueryByListing(ctx context.Context, listingID string) ([]domain.ChatMessage, error) {
	return nil, &domain.PersistenceError{Op: "query_by_listing", Err: errors.New("database down")}
}

func (failingStore) QueryByParticipants(ctx context.Context, senderID, receiverID string) ([]domain.ChatMessage, error) {
	return nil, &domain.PersistenceError{Op: "query_by_participants", Err: errors.New("database down")}
}

func setupRouter(t *testing.T) (*Router, *store.MemoryStore, *registry.RoomRegistry) {
	ms := store.NewMemoryStore()
	reg := registry.New()
	r := New(ms, reg, logger.NewLogger("error", ""))
	return r, ms, reg
}

func TestHandleSendRequiresRoomAndSender(t *testing.T) {
	r, ms, reg := setupRouter(t)
	ch := &fakeChannel{id: "c1"}
	reg.Subscribe("r1", ch, "u1")

	cases := []domain.ChatMessage{
		{SenderID: "u1", Content: "hi"},
		{ChatRoomID: "r1", Content: "hi"},
	}
	for _, msg := range cases {
		_, err := r.HandleSend(context.Background(), msg)

		var verr *domain.ValidationError
		require.ErrorAs(t, err, &verr)
	}

	// Nothing persisted, nothing broadcast.
	stored, err := ms.QueryByRoom(context.Background(), "r1")
	require.NoError(t, err)
	assert.Empty(t, stored)
	assert.Empty(t, ch.received())
}

func TestHandleSendAssignsIDAndTimestamp(t *testing.T) {
	r, ms, reg := setupRouter(t)
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return now }

	ch := &fakeChannel{id: "c1"}
	reg.Subscribe("r1", ch, "u1")

	sent, err := r.HandleSend(context.Background(), domain.ChatMessage{
		ChatRoomID: "r1",
		SenderID:   "u1",
		Content:    "hi",
	})
	require.NoError(t, err)

	assert.Equal(t, int64(1), sent.ID)
	assert.Equal(t, now, sent.Timestamp)
	assert.Equal(t, domain.MessageTypeChat, sent.Type)

	// The broadcast carries the stored identity, not the raw inbound event.
	msgs := ch.received()
	require.Len(t, msgs, 1)
	assert.Equal(t, sent, msgs[0])

	stored, err := ms.QueryByRoom(context.Background(), "r1")
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, sent.ID, stored[0].ID)
	assert.Equal(t, sent.Timestamp, stored[0].Timestamp)
	assert.Equal(t, "hi", stored[0].Content)
}

func TestHandleSendKeepsClientTimestamp(t *testing.T) {
	r, _, _ := setupRouter(t)
	r.now = func() time.Time { t.Fatal("clock should not be consulted"); return time.Time{} }

	supplied := time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)
	sent, err := r.HandleSend(context.Background(), domain.ChatMessage{
		ChatRoomID: "r1",
		SenderID:   "u1",
		Content:    "hi",
		Timestamp:  supplied,
	})
	require.NoError(t, err)
	assert.Equal(t, supplied, sent.Timestamp)
}

func TestNoBroadcastWhenPersistFails(t *testing.T) {
	reg := registry.New()
	r := New(failingStore{}, reg, logger.NewLogger("error", ""))

	ch := &fakeChannel{id: "c1"}
	reg.Subscribe("r1", ch, "u1")

	_, err := r.HandleSend(context.Background(), domain.ChatMessage{
		ChatRoomID: "r1",
		SenderID:   "u1",
		Content:    "hi",
	})

	var perr *domain.PersistenceError
	require.ErrorAs(t, err, &perr)
	assert.Empty(t, ch.received())
}

func TestBroadcastReachesOnlyRoomSubscribers(t *testing.T) {
	r, _, reg := setupRouter(t)

	c1 := &fakeChannel{id: "c1"}
	c2 := &fakeChannel{id: "c2"}
	other := &fakeChannel{id: "c3"}
	reg.Subscribe("r1", c1, "u1")
	reg.Subscribe("r1", c2, "u2")
	reg.Subscribe("r2", other, "u3")

	_, err := r.HandleSend(context.Background(), domain.ChatMessage{
		ChatRoomID: "r1", SenderID: "u1", Content: "hi",
	})
	require.NoError(t, err)

	assert.Len(t, c1.received(), 1)
	assert.Len(t, c2.received(), 1)
	assert.Empty(t, other.received())

	// After unsubscribe the channel sees no further broadcasts.
	reg.Unsubscribe(c1)
	_, err = r.HandleSend(context.Background(), domain.ChatMessage{
		ChatRoomID: "r1", SenderID: "u2", Content: "again",
	})
	require.NoError(t, err)

	assert.Len(t, c1.received(), 1)
	assert.Len(t, c2.received(), 2)
}

func TestDeliveryFailureDoesNotAbortRemaining(t *testing.T) {
	r, ms, reg := setupRouter(t)

	broken := &fakeChannel{id: "c1", fail: true}
	healthy := &fakeChannel{id: "c2"}
	reg.Subscribe("r1", broken, "u1")
	reg.Subscribe("r1", healthy, "u2")

	sent, err := r.HandleSend(context.Background(), domain.ChatMessage{
		ChatRoomID: "r1", SenderID: "u1", Content: "hi",
	})
	require.NoError(t, err)

	// The failed recipient never rolls back persistence or later deliveries.
	assert.Len(t, healthy.received(), 1)
	stored, err := ms.QueryByRoom(context.Background(), "r1")
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, sent.ID, stored[0].ID)
}

func TestHandleJoinNotifiesRoomWithoutPersisting(t *testing.T) {
	r, ms, reg := setupRouter(t)

	existing := &fakeChannel{id: "c1"}
	reg.Subscribe("r1", existing, "u1")

	joiner := &fakeChannel{id: "c2"}
	err := r.HandleJoin(context.Background(), domain.ChatMessage{
		ChatRoomID: "r1", SenderID: "u2",
	}, joiner)
	require.NoError(t, err)

	msgs := existing.received()
	require.Len(t, msgs, 1)
	assert.Equal(t, domain.MessageTypeJoin, msgs[0].Type)
	assert.Equal(t, "u2", msgs[0].SenderID)

	// The joiner is part of the room when the notification goes out.
	assert.Len(t, joiner.received(), 1)

	// Joins never reach the store.
	stored, err := ms.QueryByRoom(context.Background(), "r1")
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestHandleJoinRequiresRoom(t *testing.T) {
	r, _, _ := setupRouter(t)

	err := r.HandleJoin(context.Background(), domain.ChatMessage{SenderID: "u1"}, &fakeChannel{id: "c1"})

	var verr *domain.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestHandleJoinEmptyRoomIsNotAnError(t *testing.T) {
	r, _, _ := setupRouter(t)

	joiner := &fakeChannel{id: "c1"}
	err := r.HandleJoin(context.Background(), domain.ChatMessage{
		ChatRoomID: "fresh", SenderID: "u1",
	}, joiner)

	require.NoError(t, err)
	assert.Len(t, joiner.received(), 1)
}

func TestTapsReceiveEveryBroadcast(t *testing.T) {
	r, _, reg := setupRouter(t)

	tap := &fakeChannel{id: "tap"}
	r.AddTap(tap)

	member := &fakeChannel{id: "c1"}
	reg.Subscribe("r1", member, "u1")

	_, err := r.HandleSend(context.Background(), domain.ChatMessage{
		ChatRoomID: "r1", SenderID: "u1", Content: "hi",
	})
	require.NoError(t, err)

	err = r.HandleJoin(context.Background(), domain.ChatMessage{
		ChatRoomID: "r2", SenderID: "u2",
	}, &fakeChannel{id: "c2"})
	require.NoError(t, err)

	msgs := tap.received()
	require.Len(t, msgs, 2)
	assert.Equal(t, domain.MessageTypeChat, msgs[0].Type)
	assert.Equal(t, domain.MessageTypeJoin, msgs[1].Type)
}

func TestRoomOrderAcrossSends(t *testing.T) {
	r, ms, _ := setupRouter(t)

	t1 := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Minute)

	// Deliver out of chronological order; retrieval must sort by timestamp.
	_, err := r.HandleSend(context.Background(), domain.ChatMessage{
		ChatRoomID: "r1", SenderID: "u2", Content: "second", Timestamp: t2,
	})
	require.NoError(t, err)
	_, err = r.HandleSend(context.Background(), domain.ChatMessage{
		ChatRoomID: "r1", SenderID: "u1", Content: "first", Timestamp: t1,
	})
	require.NoError(t, err)

	stored, err := ms.QueryByRoom(context.Background(), "r1")
	require.NoError(t, err)
	require.Len(t, stored, 2)
	assert.Equal(t, "first", stored[0].Content)
	assert.Equal(t, "second", stored[1].Content)
}
