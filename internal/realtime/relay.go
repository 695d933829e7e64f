package realtime

import (
	"encoding/json"

	"github.com/rs/zerolog/log"
)

// Relay fans mutation events out to the rest of the sender's board room. It
// never inspects payloads for business correctness; validation happened in
// the REST handler that produced the entity. The sender is always excluded:
// it already holds the authoritative state from its own REST response, and a
// broadcast echo would only race with it.
type Relay struct {
	broker Broker
}

func NewRelay(broker Broker) *Relay {
	return &Relay{broker: broker}
}

// Rebroadcast republishes one mutation event from conn to the other members
// of its board room, with the sender's identity attached (boardUpdated stays
// sender-transparent). An event whose payload does not name a board cannot be
// routed and is dropped; a bad frame from one client must never take down
// other sessions.
func (r *Relay) Rebroadcast(c *Conn, event string, data json.RawMessage) {
	var payload map[string]any
	if err := json.Unmarshal(data, &payload); err != nil {
		log.Debug().Str("conn", c.ID).Str("event", event).Msg("unparseable relay payload, dropping")
		return
	}

	boardID, ok := payload["boardId"].(string)
	if !ok || boardID == "" {
		log.Debug().Str("conn", c.ID).Str("event", event).Msg("relay payload without boardId, dropping")
		return
	}
	room := BoardRoom(boardID)

	switch event {
	case EventTaskCreated, EventTaskUpdated:
		r.broker.Broadcast(room, event, r.withSender(c, entity(payload, "task")), c)

	case EventListCreated, EventListUpdated:
		r.broker.Broadcast(room, event, r.withSender(c, entity(payload, "list")), c)

	case EventTaskMoved:
		out := map[string]any{
			"taskId":            payload["taskId"],
			"sourceListId":      payload["sourceListId"],
			"destinationListId": payload["destinationListId"],
			"sourceIndex":       payload["sourceIndex"],
			"destinationIndex":  payload["destinationIndex"],
		}
		r.broker.Broadcast(room, event, r.withSender(c, out), c)

	case EventTaskDeleted:
		out := map[string]any{
			"taskId": payload["taskId"],
			"listId": payload["listId"],
		}
		r.broker.Broadcast(room, event, r.withSender(c, out), c)

	case EventListDeleted:
		out := map[string]any{
			"listId": payload["listId"],
		}
		r.broker.Broadcast(room, event, r.withSender(c, out), c)

	case EventBoardUpdated:
		// No sender tag on board updates.
		r.broker.Broadcast(room, event, entity(payload, "board"), c)

	case EventUserTyping, EventChatTyping:
		out := map[string]any{
			"user":     c.User(),
			"isTyping": payload["isTyping"],
		}
		r.broker.Broadcast(room, event, out, c)

	default:
		log.Debug().Str("event", event).Msg("unknown relay event, dropping")
	}
}

// entity pulls the named sub-object out of an inbound payload. A missing or
// malformed entity degrades to an empty object rather than an error.
func entity(payload map[string]any, key string) map[string]any {
	e, ok := payload[key].(map[string]any)
	if !ok {
		return map[string]any{}
	}
	return e
}

func (r *Relay) withSender(c *Conn, out map[string]any) map[string]any {
	out["sender"] = c.User()
	return out
}
