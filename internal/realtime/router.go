package realtime

import (
	"github.com/rs/zerolog/log"

	"github.com/boardpulse/boardpulse/internal/domain"
)

// userJoinedPayload is broadcast to a board room when a named user joins;
// userLeftPayload when one leaves. Both carry the fresh presence snapshot so
// receivers replace their online-user list wholesale instead of diffing.
type userJoinedPayload struct {
	User        Entry   `json:"user"`
	OnlineUsers []Entry `json:"onlineUsers"`
}

type userLeftPayload struct {
	User        Entry   `json:"user"`
	OnlineUsers []Entry `json:"onlineUsers"`
}

// Router binds connections to board and user rooms and keeps the presence
// registry consistent with room membership.
type Router struct {
	broker   Broker
	presence *Registry
}

func NewRouter(broker Broker, presence *Registry) *Router {
	return &Router{broker: broker, presence: presence}
}

// JoinBoard adds the connection to the board room. A named user also joins
// their user room and gets a presence entry; the joiner receives the current
// presence snapshot synchronously, before the userJoined broadcast meant for
// everyone else. An anonymous join receives broadcasts but is invisible to
// presence tracking.
func (rt *Router) JoinBoard(c *Conn, boardID string, user *domain.UserRef) {
	rt.broker.Join(c, BoardRoom(boardID))
	c.BindBoard(boardID)
	c.SetUser(user)

	log.Debug().Str("conn", c.ID).Str("board", boardID).Msg("joined board room")

	if user == nil {
		return
	}

	rt.broker.Join(c, UserRoom(user.ID.String()))
	rt.presence.Add(boardID, c.ID, *user)

	snapshot := rt.presence.List(boardID)

	// The joiner must see who is already here without waiting on (or ever
	// missing) a broadcast addressed to the others.
	c.Send(EventOnlineUsers, snapshot)

	var joined Entry
	for _, e := range snapshot {
		if e.ID == user.ID {
			joined = e
		}
	}
	rt.broker.Broadcast(BoardRoom(boardID), EventUserJoined, userJoinedPayload{
		User:        joined,
		OnlineUsers: snapshot,
	}, c)
}

// JoinUserRoom binds the connection to a user room without any board
// membership, for clients that only want cross-board notifications.
func (rt *Router) JoinUserRoom(c *Conn, userID string) {
	if userID == "" {
		return
	}
	rt.broker.Join(c, UserRoom(userID))
	log.Debug().Str("conn", c.ID).Str("user", userID).Msg("joined user room")
}

// LeaveBoard removes the connection from the board room and, if it had a
// presence entry, tells the remaining members. Leaving a board that was never
// joined is a no-op.
func (rt *Router) LeaveBoard(c *Conn, boardID string) {
	rt.broker.Leave(c, BoardRoom(boardID))
	c.UnbindBoard(boardID)

	entry, ok := rt.presence.Remove(boardID, c.ID)
	if !ok {
		return
	}

	rt.broker.Broadcast(BoardRoom(boardID), EventUserLeft, userLeftPayload{
		User:        entry,
		OnlineUsers: rt.presence.List(boardID),
	}, c)
}

// Disconnect performs the implicit leave of whichever single board the
// connection was bound to, then clears all remaining room membership.
// Tolerates connections that never joined anything.
func (rt *Router) Disconnect(c *Conn) {
	if boardID := c.BoardID(); boardID != "" {
		rt.LeaveBoard(c, boardID)
	}
	rt.broker.LeaveAll(c)
}
