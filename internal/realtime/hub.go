package realtime

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/boardpulse/boardpulse/internal/domain"
	redisstore "github.com/boardpulse/boardpulse/internal/store/redis"
)

// Hub owns the realtime stack for one server instance: room membership,
// presence, the mutation relay, and the chat bridge, bound to WebSocket
// transport.
type Hub struct {
	broker   *RoomBroker
	presence *Registry
	router   *Router
	relay    *Relay
	chat     *ChatBridge
	pubsub   *redisstore.PubSub
}

// NewHub wires the realtime components. pubsub may be nil; notification
// forwarding is then disabled (useful in tests).
func NewHub(messages domain.MessageRepository, users domain.UserRepository, pubsub *redisstore.PubSub) *Hub {
	broker := NewRoomBroker()
	presence := NewRegistry()

	return &Hub{
		broker:   broker,
		presence: presence,
		router:   NewRouter(broker, presence),
		relay:    NewRelay(broker),
		chat:     NewChatBridge(broker, messages, users),
		pubsub:   pubsub,
	}
}

// Presence exposes the registry snapshot API (used by REST handlers that
// report online users).
func (h *Hub) Presence() *Registry { return h.presence }

// ServeSocket upgrades the request and runs the connection's session until
// the peer goes away. One goroutine drains the outbox; the request goroutine
// reads and dispatches frames.
func (h *Hub) ServeSocket(w http.ResponseWriter, r *http.Request) {
	ws, err := websocket.Accept(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("websocket accept")
		return
	}
	defer ws.CloseNow()

	ctx := r.Context()
	conn := NewConn(uuid.NewString())

	go func() {
		for frame := range conn.Outbox() {
			if writeErr := ws.Write(ctx, websocket.MessageText, frame); writeErr != nil {
				log.Debug().Err(writeErr).Str("conn", conn.ID).Msg("websocket write")
				return
			}
		}
	}()

	for {
		_, data, readErr := ws.Read(ctx)
		if readErr != nil {
			break
		}

		var env Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			log.Debug().Str("conn", conn.ID).Msg("malformed frame, skipping")
			continue
		}

		h.dispatch(ctx, conn, env)
	}

	// Ungraceful drops land here too; the implicit leave keeps presence
	// consistent without a heartbeat protocol.
	h.router.Disconnect(conn)
	conn.Close()
	_ = ws.Close(websocket.StatusNormalClosure, "connection closed")
}

func (h *Hub) dispatch(ctx context.Context, c *Conn, env Envelope) {
	switch env.Event {
	case EventJoinBoard:
		boardID, user := decodeJoinBoard(env.Data)
		if boardID == "" {
			log.Debug().Str("conn", c.ID).Msg("joinBoard without boardId, dropping")
			return
		}
		h.router.JoinBoard(c, boardID, user)

	case EventJoinUserRoom:
		h.router.JoinUserRoom(c, decodeStringField(env.Data, "userId"))

	case EventLeaveBoard:
		boardID := decodeStringField(env.Data, "boardId")
		if boardID == "" {
			return
		}
		h.router.LeaveBoard(c, boardID)

	case EventChatMessage:
		h.chat.HandleMessage(ctx, c, env.Data)

	case EventTaskCreated, EventTaskUpdated, EventTaskMoved, EventTaskDeleted,
		EventListCreated, EventListUpdated, EventListDeleted,
		EventBoardUpdated, EventUserTyping, EventChatTyping:
		h.relay.Rebroadcast(c, env.Event, env.Data)

	default:
		log.Debug().Str("event", env.Event).Msg("unknown event, dropping")
	}
}

// decodeJoinBoard accepts both the object form {boardId, user} and the bare
// string form older clients send (a bare string is an anonymous join).
func decodeJoinBoard(data json.RawMessage) (string, *domain.UserRef) {
	var obj struct {
		BoardID string          `json:"boardId"`
		User    *domain.UserRef `json:"user"`
	}
	if err := json.Unmarshal(data, &obj); err == nil && obj.BoardID != "" {
		return obj.BoardID, obj.User
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		return s, nil
	}

	return "", nil
}

// decodeStringField accepts either a bare JSON string or an object carrying
// the named field.
func decodeStringField(data json.RawMessage, field string) string {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		return s
	}

	var obj map[string]any
	if err := json.Unmarshal(data, &obj); err == nil {
		if v, ok := obj[field].(string); ok {
			return v
		}
	}

	return ""
}

// RunNotificationForwarder subscribes to the notification channels and
// forwards each payload to the target user's room. Blocks until ctx is done;
// run it in its own goroutine.
func (h *Hub) RunNotificationForwarder(ctx context.Context) error {
	if h.pubsub == nil {
		<-ctx.Done()
		return nil
	}

	messages, cleanup, err := h.pubsub.SubscribeUserNotifications(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			userID, ok := redisstore.UserIDFromChannel(msg.Channel)
			if !ok {
				log.Debug().Str("channel", msg.Channel).Msg("notification on unexpected channel")
				continue
			}
			h.broker.Broadcast(UserRoom(userID), EventNotification, json.RawMessage(msg.Payload))
		}
	}
}
