package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const MaxMessageLength = 2000

type MessageType string

const (
	MessageTypeText   MessageType = "text"
	MessageTypeSystem MessageType = "system"
)

type Message struct {
	ID        uuid.UUID   `json:"id"`
	BoardID   uuid.UUID   `json:"board_id"`
	SenderID  uuid.UUID   `json:"sender_id"`
	Sender    *UserRef    `json:"sender,omitempty"` // populated for responses
	Content   string      `json:"content"`
	Type      MessageType `json:"type"`
	CreatedAt time.Time   `json:"created_at"`
}

// MessageRepository stores chat messages indexed by (board, created_at) for
// reverse-chronological paged retrieval.
type MessageRepository interface {
	Create(ctx context.Context, m *Message) error
	ListByBoard(ctx context.Context, boardID uuid.UUID, page, limit int) ([]*Message, int, error)
}
