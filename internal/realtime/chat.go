package realtime

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/boardpulse/boardpulse/internal/domain"
)

// chatError is sent to the offending connection only; the room never learns
// a send was attempted.
type chatError struct {
	Message string `json:"message"`
}

type inboundChatMessage struct {
	BoardID  string `json:"boardId"`
	SenderID string `json:"senderId"`
	Content  string `json:"content"`
	Type     string `json:"type"`
}

// ChatBridge is the one relay path that persists before fan-out. Chat has no
// optimistic-apply path on the client, so unlike mutation events the resolved
// message is echoed to the sender too.
type ChatBridge struct {
	broker   Broker
	messages domain.MessageRepository
	users    domain.UserRepository
}

func NewChatBridge(broker Broker, messages domain.MessageRepository, users domain.UserRepository) *ChatBridge {
	return &ChatBridge{broker: broker, messages: messages, users: users}
}

// HandleMessage validates, persists, resolves, and broadcasts one chat
// message. Every failure is absorbed here: the sender gets a chatError, the
// relay loop keeps running.
func (b *ChatBridge) HandleMessage(ctx context.Context, c *Conn, data json.RawMessage) {
	var in inboundChatMessage
	if err := json.Unmarshal(data, &in); err != nil {
		c.Send(EventChatError, chatError{Message: "invalid message payload"})
		return
	}

	in.Content = strings.TrimSpace(in.Content)
	if in.Content == "" {
		c.Send(EventChatError, chatError{Message: "message content is required"})
		return
	}
	if len(in.Content) > domain.MaxMessageLength {
		c.Send(EventChatError, chatError{Message: "message content too long"})
		return
	}

	boardID, err := uuid.Parse(in.BoardID)
	if err != nil {
		c.Send(EventChatError, chatError{Message: "invalid board id"})
		return
	}

	senderID, err := uuid.Parse(in.SenderID)
	if err != nil {
		c.Send(EventChatError, chatError{Message: "invalid sender id"})
		return
	}

	msgType := domain.MessageType(in.Type)
	if msgType != domain.MessageTypeSystem {
		msgType = domain.MessageTypeText
	}

	msg := &domain.Message{
		ID:        uuid.New(),
		BoardID:   boardID,
		SenderID:  senderID,
		Content:   in.Content,
		Type:      msgType,
		CreatedAt: time.Now(),
	}

	if err := b.messages.Create(ctx, msg); err != nil {
		log.Error().Err(err).Str("board", in.BoardID).Msg("persist chat message")
		c.Send(EventChatError, chatError{Message: "failed to send message"})
		return
	}

	// Resolve the sender identity before broadcasting so recipients render
	// the message without a second lookup.
	sender, err := b.users.GetByID(ctx, senderID)
	if err != nil {
		log.Error().Err(err).Str("sender", in.SenderID).Msg("resolve chat sender")
		c.Send(EventChatError, chatError{Message: "failed to send message"})
		return
	}
	ref := sender.Ref()
	msg.Sender = &ref

	// The full room, sender included: the sender relies on this echo to see
	// its own message appear.
	b.broker.Broadcast(BoardRoom(in.BoardID), EventNewChatMessage, msg)
}
