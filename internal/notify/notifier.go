package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	redisstore "github.com/boardpulse/boardpulse/internal/store/redis"
)

// Notification is an out-of-band alert delivered to one user's room,
// independent of which board (if any) their connections are viewing.
type Notification struct {
	Message   string    `json:"message"`
	BoardID   uuid.UUID `json:"boardId"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
}

// Notification types.
const (
	TypeBoardInvite = "BOARD_INVITE"
)

// Publisher dispatches notifications to users. REST handlers depend on this
// interface so tests can record deliveries without Redis.
type Publisher interface {
	Notify(ctx context.Context, userID uuid.UUID, n Notification) error
}

// Notifier publishes notifications through Redis pub/sub; the realtime hub's
// forwarder picks them up and pushes them into user rooms. Going through
// Redis keeps the REST layer decoupled from the socket hub.
type Notifier struct {
	pubsub *redisstore.PubSub
}

func New(pubsub *redisstore.PubSub) *Notifier {
	return &Notifier{pubsub: pubsub}
}

func (n *Notifier) Notify(ctx context.Context, userID uuid.UUID, notification Notification) error {
	payload, err := json.Marshal(notification)
	if err != nil {
		return fmt.Errorf("notify.Notifier.Notify: marshal: %w", err)
	}

	if err := n.pubsub.Publish(ctx, redisstore.UserChannel(userID), payload); err != nil {
		return fmt.Errorf("notify.Notifier.Notify: %w", err)
	}

	return nil
}
