package realtime

import (
	"encoding/json"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/boardpulse/boardpulse/internal/domain"
)

// sendBuffer is the per-connection outbound queue depth. A consumer that
// falls further behind than this has its frames dropped rather than stalling
// broadcasts to the rest of the room.
const sendBuffer = 64

// Conn is one transport-level session. It owns an outbound frame queue that
// the transport layer drains; everything else in this package talks to a Conn
// only through Send, so the type is testable without a live websocket.
type Conn struct {
	ID string

	mu      sync.Mutex
	out     chan []byte
	closed  bool
	boardID string          // at most one bound board room
	user    *domain.UserRef // nil for anonymous connections
}

// NewConn creates a connection with the given id. The transport layer drains
// Outbox until Close.
func NewConn(id string) *Conn {
	return &Conn{
		ID:  id,
		out: make(chan []byte, sendBuffer),
	}
}

// Outbox returns the channel of marshaled frames awaiting transport write.
// The channel is closed by Close.
func (c *Conn) Outbox() <-chan []byte { return c.out }

// Send marshals an envelope and enqueues it. Frames to closed or saturated
// connections are dropped; delivery to a dead peer is not this layer's
// problem.
func (c *Conn) Send(event string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Str("event", event).Msg("marshal outbound payload")
		return
	}

	frame, err := json.Marshal(Envelope{Event: event, Data: data})
	if err != nil {
		log.Error().Err(err).Str("event", event).Msg("marshal outbound frame")
		return
	}

	c.enqueue(frame)
}

func (c *Conn) enqueue(frame []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}

	select {
	case c.out <- frame:
	default:
		log.Debug().Str("conn", c.ID).Msg("outbound queue full, dropping frame")
	}
}

// Close marks the connection dead and closes the outbox. Safe to call more
// than once.
func (c *Conn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		c.closed = true
		close(c.out)
	}
}

// BindBoard records the single board this connection is joined to.
func (c *Conn) BindBoard(boardID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.boardID = boardID
}

// BoardID returns the currently bound board, or "" if none.
func (c *Conn) BoardID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.boardID
}

// UnbindBoard clears the board binding if it matches boardID.
func (c *Conn) UnbindBoard(boardID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.boardID == boardID {
		c.boardID = ""
	}
}

// SetUser records the authenticated identity presented on join.
func (c *Conn) SetUser(user *domain.UserRef) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.user = user
}

// User returns the identity bound at join time, or nil for anonymous
// connections.
func (c *Conn) User() *domain.UserRef {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.user
}
