package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/boardpulse/boardpulse/internal/domain"
)

// MessageRepo stores chat messages indexed by (board_id, created_at) so the
// history endpoint can page in reverse chronological order.
type MessageRepo struct {
	pool *pgxpool.Pool
}

func NewMessageRepo(pool *pgxpool.Pool) *MessageRepo {
	return &MessageRepo{pool: pool}
}

func (r *MessageRepo) Create(ctx context.Context, m *domain.Message) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO messages (id, board_id, sender_id, content, type, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		m.ID, m.BoardID, m.SenderID, m.Content, m.Type, m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("messageRepo.Create: %w", err)
	}

	return nil
}

// ListByBoard returns one page of messages, newest first, with the sender
// identity resolved, plus the board's total message count.
func (r *MessageRepo) ListByBoard(ctx context.Context, boardID uuid.UUID, page, limit int) ([]*domain.Message, int, error) {
	if limit <= 0 {
		limit = 50
	}
	if page < 1 {
		page = 1
	}

	var total int
	err := r.pool.QueryRow(ctx,
		`SELECT count(*) FROM messages WHERE board_id = $1`,
		boardID,
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("messageRepo.ListByBoard: count: %w", err)
	}

	rows, err := r.pool.Query(ctx,
		`SELECT m.id, m.board_id, m.sender_id, m.content, m.type, m.created_at,
		        u.id, u.name, u.email, u.avatar_url
		 FROM messages m
		 JOIN users u ON u.id = m.sender_id
		 WHERE m.board_id = $1
		 ORDER BY m.created_at DESC
		 LIMIT $2 OFFSET $3`,
		boardID, limit, (page-1)*limit,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("messageRepo.ListByBoard: %w", err)
	}
	defer rows.Close()

	var messages []*domain.Message
	for rows.Next() {
		var m domain.Message
		var ref domain.UserRef

		err = rows.Scan(
			&m.ID, &m.BoardID, &m.SenderID, &m.Content, &m.Type, &m.CreatedAt,
			&ref.ID, &ref.Name, &ref.Email, &ref.AvatarURL,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("messageRepo.ListByBoard: scan: %w", err)
		}
		m.Sender = &ref
		messages = append(messages, &m)
	}
	err = rows.Err()
	if err != nil {
		return nil, 0, fmt.Errorf("messageRepo.ListByBoard: rows: %w", err)
	}

	return messages, total, nil
}
