package presence

import (
	"context"
	"sync"
)

// MemoryTracker mirrors RedisTracker in process memory for tests and the
// zero-config dev mode.
type MemoryTracker struct {
	mu    sync.RWMutex
	users map[string]struct{}
	rooms map[string]map[string]struct{}
}

func NewMemoryTracker() *MemoryTracker {
	return &MemoryTracker{
		users: make(map[string]struct{}),
		rooms: make(map[string]map[string]struct{}),
	}
}

func (t *MemoryTracker) AddActiveUser(ctx context.Context, username string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.users[username] = struct{}{}
	return nil
}

func (t *MemoryTracker) RemoveActiveUser(ctx context.Context, username string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.users, username)
	return nil
}

func (t *MemoryTracker) ActiveUsers(ctx context.Context) ([]string, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return keys(t.users), nil
}

func (t *MemoryTracker) AddRoomMember(ctx context.Context, roomID, username string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.rooms[roomID] == nil {
		t.rooms[roomID] = make(map[string]struct{})
	}
	t.rooms[roomID][username] = struct{}{}
	return nil
}

func (t *MemoryTracker) RemoveRoomMember(ctx context.Context, roomID, username string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if members, ok := t.rooms[roomID]; ok {
		delete(members, username)
		if len(members) == 0 {
			delete(t.rooms, roomID)
		}
	}
	return nil
}

func (t *MemoryTracker) RoomMembers(ctx context.Context, roomID string) ([]string, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return keys(t.rooms[roomID]), nil
}

func (t *MemoryTracker) Rooms(ctx context.Context) ([]string, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]string, 0, len(t.rooms))
	for id := range t.rooms {
		out = append(out, id)
	}
	return out, nil
}

func keys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	return out
}
