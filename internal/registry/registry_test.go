package registry

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nihalshetty-boop/listri/internal/domain"
)

type fakeChannel struct {
	id   string
	mu   sync.Mutex
	msgs []domain.ChatMessage
}

func newFakeChannel(id string) *fakeChannel {
	return &fakeChannel{id: id}
}

func (f *fakeChannel) ID() string { return f.id }

func (f *fakeChannel) Deliver(msg domain.ChatMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.msgs = append(f.msgs, msg)
	return nil
}

func channelIDs(chans []Channel) []string {
	ids := make([]string, len(chans))
	for i, c := range chans {
		ids[i] = c.ID()
	}
	return ids
}

func TestSubscribeAndSnapshotOrder(t *testing.T) {
	reg := New()
	c1 := newFakeChannel("c1")
	c2 := newFakeChannel("c2")
	c3 := newFakeChannel("c3")

	reg.Subscribe("roomA", c1, "user1")
	reg.Subscribe("roomA", c2, "user2")
	reg.Subscribe("roomA", c3, "user3")

	assert.Equal(t, []string{"c1", "c2", "c3"}, channelIDs(reg.SubscribersOf("roomA")))
}

func TestSubscribeIsIdempotent(t *testing.T) {
	reg := New()
	c1 := newFakeChannel("c1")
	c2 := newFakeChannel("c2")

	reg.Subscribe("roomA", c1, "user1")
	reg.Subscribe("roomA", c2, "user2")
	reg.Subscribe("roomA", c1, "user1")

	// Re-subscribing keeps the original position and adds nothing.
	assert.Equal(t, []string{"c1", "c2"}, channelIDs(reg.SubscribersOf("roomA")))
}

func TestUnknownRoomIsEmptyNotError(t *testing.T) {
	reg := New()
	assert.Empty(t, reg.SubscribersOf("nope"))
}

func TestUnsubscribeRemovesFromAllRooms(t *testing.T) {
	reg := New()
	c1 := newFakeChannel("c1")
	c2 := newFakeChannel("c2")

	reg.Subscribe("roomA", c1, "user1")
	reg.Subscribe("roomB", c1, "user1")
	reg.Subscribe("roomA", c2, "user2")

	rooms := reg.Unsubscribe(c1)
	assert.ElementsMatch(t, []string{"roomA", "roomB"}, rooms)

	assert.Equal(t, []string{"c2"}, channelIDs(reg.SubscribersOf("roomA")))
	assert.Empty(t, reg.SubscribersOf("roomB"))
}

func TestEmptyRoomsDropFromDirectory(t *testing.T) {
	reg := New()
	c1 := newFakeChannel("c1")

	reg.Subscribe("roomA", c1, "user1")
	assert.Equal(t, []string{"roomA"}, reg.Rooms())

	reg.Unsubscribe(c1)
	assert.Empty(t, reg.Rooms())
}

func TestUnsubscribeUnknownChannelIsNoop(t *testing.T) {
	reg := New()
	assert.Empty(t, reg.Unsubscribe(newFakeChannel("ghost")))
}

func TestConcurrentSubscribeUnsubscribe(t *testing.T) {
	reg := New()
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			ch := newFakeChannel(fmt.Sprintf("c%d", n))
			room := fmt.Sprintf("room%d", n%5)
			reg.Subscribe(room, ch, "user")
			reg.SubscribersOf(room)
			if n%2 == 0 {
				reg.Unsubscribe(ch)
			}
		}(i)
	}
	wg.Wait()

	for i := 0; i < 5; i++ {
		room := fmt.Sprintf("room%d", i)
		for _, ch := range reg.SubscribersOf(room) {
			assert.NotNil(t, ch)
		}
	}
}
