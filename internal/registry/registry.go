package registry

import (
	"sync"

	"github.com/nihalshetty-boop/listri/internal/domain"
)

// Channel is one connected client as seen by the relay. The transport layer
// owns the real connection; the registry only needs identity and delivery.
type Channel interface {
	ID() string
	Deliver(msg domain.ChatMessage) error
}

type entry struct {
	ch       Channel
	senderID string
}

// room keeps its subscribers in registration order so broadcasts are stable.
type room struct {
	mu      sync.RWMutex
	entries []entry
}

func (r *room) subscribe(ch Channel, senderID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, e := range r.entries {
		if e.ch.ID() == ch.ID() {
			r.entries[i].senderID = senderID
			return
		}
	}
	r.entries = append(r.entries, entry{ch: ch, senderID: senderID})
}

func (r *room) unsubscribe(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, e := range r.entries {
		if e.ch.ID() == id {
			r.entries = append(r.entries[:i], r.entries[i+1:]...)
			return len(r.entries) == 0
		}
	}
	return len(r.entries) == 0
}

func (r *room) snapshot() []Channel {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Channel, len(r.entries))
	for i, e := range r.entries {
		out[i] = e.ch
	}
	return out
}

// RoomRegistry maps room ids to their live subscriber sets. Each room is an
// independently locked unit; the outer lock only guards the maps themselves.
type RoomRegistry struct {
	mu        sync.RWMutex
	rooms     map[string]*room
	byChannel map[string]map[string]struct{} // channel id -> rooms it is in
}

func New() *RoomRegistry {
	return &RoomRegistry{
		rooms:     make(map[string]*room),
		byChannel: make(map[string]map[string]struct{}),
	}
}

// Subscribe adds ch to roomID's subscriber set. Re-subscribing is a no-op
// apart from refreshing the attached sender metadata.
func (g *RoomRegistry) Subscribe(roomID string, ch Channel, senderID string) {
	g.mu.Lock()
	r, ok := g.rooms[roomID]
	if !ok {
		r = &room{}
		g.rooms[roomID] = r
	}
	rooms, ok := g.byChannel[ch.ID()]
	if !ok {
		rooms = make(map[string]struct{})
		g.byChannel[ch.ID()] = rooms
	}
	rooms[roomID] = struct{}{}
	r.subscribe(ch, senderID)
	g.mu.Unlock()
}

// Unsubscribe removes ch from every room it was registered under and returns
// the ids of those rooms. The transport calls this on disconnect.
func (g *RoomRegistry) Unsubscribe(ch Channel) []string {
	g.mu.Lock()
	defer g.mu.Unlock()

	ids := make([]string, 0, len(g.byChannel[ch.ID()]))
	for roomID := range g.byChannel[ch.ID()] {
		r, ok := g.rooms[roomID]
		if !ok {
			continue
		}
		if empty := r.unsubscribe(ch.ID()); empty {
			delete(g.rooms, roomID)
		}
		ids = append(ids, roomID)
	}
	delete(g.byChannel, ch.ID())
	return ids
}

// SubscribersOf returns the channels registered for roomID at call time, in
// registration order. Unknown rooms yield an empty slice, never an error.
func (g *RoomRegistry) SubscribersOf(roomID string) []Channel {
	g.mu.RLock()
	r, ok := g.rooms[roomID]
	g.mu.RUnlock()
	if !ok {
		return nil
	}
	return r.snapshot()
}

// Rooms lists every room that currently has at least one subscriber.
func (g *RoomRegistry) Rooms() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]string, 0, len(g.rooms))
	for id := range g.rooms {
		out = append(out, id)
	}
	return out
}
