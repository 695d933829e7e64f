package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type List struct {
	ID        uuid.UUID `json:"id"`
	BoardID   uuid.UUID `json:"board_id"`
	Title     string    `json:"title"`
	Order     int       `json:"order"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ListRepository interface {
	Create(ctx context.Context, l *List) error
	GetByID(ctx context.Context, id uuid.UUID) (*List, error)
	ListByBoard(ctx context.Context, boardID uuid.UUID) ([]*List, error)
	Update(ctx context.Context, l *List) error
	Delete(ctx context.Context, id uuid.UUID) error
}
