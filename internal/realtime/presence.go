package realtime

import (
	"sync"
	"time"

	"github.com/boardpulse/boardpulse/internal/domain"
)

// Entry is one connection's identity on one board. Two browser tabs from the
// same user are two distinct entries.
type Entry struct {
	domain.UserRef
	JoinedAt time.Time `json:"joined_at"`
}

// Registry tracks which users are connected to which boards. State lives in
// process memory for the lifetime of the server; it is owned by the Router
// and never touched by the relay or chat bridge.
type Registry struct {
	mu     sync.RWMutex
	boards map[string]map[string]Entry // boardID -> connID -> entry
}

func NewRegistry() *Registry {
	return &Registry{boards: make(map[string]map[string]Entry)}
}

// Add records a presence entry, overwriting any existing entry for the same
// connection. Calling it twice for one connection never duplicates.
func (r *Registry) Add(boardID, connID string, user domain.UserRef) {
	r.mu.Lock()
	defer r.mu.Unlock()

	conns, ok := r.boards[boardID]
	if !ok {
		conns = make(map[string]Entry)
		r.boards[boardID] = conns
	}

	conns[connID] = Entry{UserRef: user, JoinedAt: time.Now()}
}

// Remove deletes the entry for a connection and returns it. When the last
// entry for a board is removed the board's bucket is discarded, so abandoned
// boards do not accumulate. Removing an absent entry is a no-op.
func (r *Registry) Remove(boardID, connID string) (Entry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	conns, ok := r.boards[boardID]
	if !ok {
		return Entry{}, false
	}

	entry, ok := conns[connID]
	if !ok {
		return Entry{}, false
	}

	delete(conns, connID)
	if len(conns) == 0 {
		delete(r.boards, boardID)
	}

	return entry, true
}

// List returns a snapshot of the entries currently on a board. Order is not
// guaranteed. An unknown board yields an empty slice, never an error.
func (r *Registry) List(boardID string) []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conns := r.boards[boardID]
	out := make([]Entry, 0, len(conns))
	for _, e := range conns {
		out = append(out, e)
	}
	return out
}

// BoardCount reports how many boards currently hold presence state.
func (r *Registry) BoardCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.boards)
}
