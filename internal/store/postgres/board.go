package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/boardpulse/boardpulse/internal/domain"
)

type BoardRepo struct {
	pool *pgxpool.Pool
}

func NewBoardRepo(pool *pgxpool.Pool) *BoardRepo {
	return &BoardRepo{pool: pool}
}

func (r *BoardRepo) Create(ctx context.Context, b *domain.Board) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("boardRepo.Create: begin: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO boards (id, title, description, owner_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		b.ID, b.Title, b.Description, b.OwnerID, b.CreatedAt, b.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("boardRepo.Create: %w", err)
	}

	for _, member := range b.Members {
		_, err = tx.Exec(ctx,
			`INSERT INTO board_members (board_id, user_id) VALUES ($1, $2)
			 ON CONFLICT DO NOTHING`,
			b.ID, member,
		)
		if err != nil {
			return fmt.Errorf("boardRepo.Create: member: %w", err)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("boardRepo.Create: commit: %w", err)
	}

	return nil
}

func (r *BoardRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Board, error) {
	var b domain.Board

	err := r.pool.QueryRow(ctx,
		`SELECT id, title, description, owner_id, created_at, updated_at
		 FROM boards WHERE id = $1`,
		id,
	).Scan(&b.ID, &b.Title, &b.Description, &b.OwnerID, &b.CreatedAt, &b.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("boardRepo.GetByID: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("boardRepo.GetByID: %w", err)
	}

	b.Members, err = r.members(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("boardRepo.GetByID: %w", err)
	}

	return &b, nil
}

func (r *BoardRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Board, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT DISTINCT b.id, b.title, b.description, b.owner_id, b.created_at, b.updated_at
		 FROM boards b
		 LEFT JOIN board_members m ON m.board_id = b.id
		 WHERE b.owner_id = $1 OR m.user_id = $1
		 ORDER BY b.created_at`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("boardRepo.ListByUser: %w", err)
	}
	defer rows.Close()

	var boards []*domain.Board
	for rows.Next() {
		var b domain.Board

		err = rows.Scan(&b.ID, &b.Title, &b.Description, &b.OwnerID, &b.CreatedAt, &b.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("boardRepo.ListByUser: scan: %w", err)
		}
		boards = append(boards, &b)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("boardRepo.ListByUser: rows: %w", err)
	}

	for _, b := range boards {
		b.Members, err = r.members(ctx, b.ID)
		if err != nil {
			return nil, fmt.Errorf("boardRepo.ListByUser: %w", err)
		}
	}

	return boards, nil
}

func (r *BoardRepo) Update(ctx context.Context, b *domain.Board) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("boardRepo.Update: begin: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		`UPDATE boards SET title = $1, description = $2, owner_id = $3, updated_at = now()
		 WHERE id = $4`,
		b.Title, b.Description, b.OwnerID, b.ID,
	)
	if err != nil {
		return fmt.Errorf("boardRepo.Update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("boardRepo.Update: %w", domain.ErrNotFound)
	}

	// Membership is replaced wholesale to match the board struct.
	_, err = tx.Exec(ctx, `DELETE FROM board_members WHERE board_id = $1`, b.ID)
	if err != nil {
		return fmt.Errorf("boardRepo.Update: clear members: %w", err)
	}
	for _, member := range b.Members {
		_, err = tx.Exec(ctx,
			`INSERT INTO board_members (board_id, user_id) VALUES ($1, $2)
			 ON CONFLICT DO NOTHING`,
			b.ID, member,
		)
		if err != nil {
			return fmt.Errorf("boardRepo.Update: member: %w", err)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("boardRepo.Update: commit: %w", err)
	}

	return nil
}

func (r *BoardRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM boards WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("boardRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("boardRepo.Delete: %w", domain.ErrNotFound)
	}

	return nil
}

func (r *BoardRepo) members(ctx context.Context, boardID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT user_id FROM board_members WHERE board_id = $1`,
		boardID,
	)
	if err != nil {
		return nil, fmt.Errorf("members: %w", err)
	}
	defer rows.Close()

	var members []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err = rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("members: scan: %w", err)
		}
		members = append(members, id)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("members: rows: %w", err)
	}

	return members, nil
}
