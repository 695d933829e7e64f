package realtime

import (
	"encoding/json"
	"sync"

	"github.com/rs/zerolog/log"
)

// Broker is the room membership and fan-out abstraction. Keeping it an
// interface means the router, relay, and chat bridge never depend on a live
// transport; tests drive them with a recording fake.
type Broker interface {
	Join(c *Conn, room string)
	Leave(c *Conn, room string)
	// Broadcast sends one event to every connection in the room except those
	// listed in exclude.
	Broadcast(room, event string, payload any, exclude ...*Conn)
	// LeaveAll removes a connection from every room it is in. Called on
	// transport disconnect.
	LeaveAll(c *Conn)
}

// RoomBroker is the in-process Broker for a single server instance.
type RoomBroker struct {
	mu    sync.RWMutex
	rooms map[string]map[*Conn]struct{}
}

func NewRoomBroker() *RoomBroker {
	return &RoomBroker{rooms: make(map[string]map[*Conn]struct{})}
}

func (b *RoomBroker) Join(c *Conn, room string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	members, ok := b.rooms[room]
	if !ok {
		members = make(map[*Conn]struct{})
		b.rooms[room] = members
	}
	members[c] = struct{}{}
}

func (b *RoomBroker) Leave(c *Conn, room string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	members, ok := b.rooms[room]
	if !ok {
		return
	}
	delete(members, c)
	if len(members) == 0 {
		delete(b.rooms, room)
	}
}

func (b *RoomBroker) LeaveAll(c *Conn) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for room, members := range b.rooms {
		delete(members, c)
		if len(members) == 0 {
			delete(b.rooms, room)
		}
	}
}

func (b *RoomBroker) Broadcast(room, event string, payload any, exclude ...*Conn) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Str("event", event).Msg("marshal broadcast payload")
		return
	}

	frame, err := json.Marshal(Envelope{Event: event, Data: data})
	if err != nil {
		log.Error().Err(err).Str("event", event).Msg("marshal broadcast frame")
		return
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	members := b.rooms[room]
recipients:
	for c := range members {
		for _, ex := range exclude {
			if c == ex {
				continue recipients
			}
		}
		c.enqueue(frame)
	}
}

// RoomSize reports the current membership count of a room.
func (b *RoomBroker) RoomSize(room string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.rooms[room])
}
