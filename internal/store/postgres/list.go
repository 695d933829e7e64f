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

type ListRepo struct {
	pool *pgxpool.Pool
}

func NewListRepo(pool *pgxpool.Pool) *ListRepo {
	return &ListRepo{pool: pool}
}

func (r *ListRepo) Create(ctx context.Context, l *domain.List) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO lists (id, board_id, title, position, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		l.ID, l.BoardID, l.Title, l.Order, l.CreatedAt, l.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("listRepo.Create: %w", err)
	}

	return nil
}

func (r *ListRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.List, error) {
	var l domain.List

	err := r.pool.QueryRow(ctx,
		`SELECT id, board_id, title, position, created_at, updated_at
		 FROM lists WHERE id = $1`,
		id,
	).Scan(&l.ID, &l.BoardID, &l.Title, &l.Order, &l.CreatedAt, &l.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("listRepo.GetByID: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("listRepo.GetByID: %w", err)
	}

	return &l, nil
}

func (r *ListRepo) ListByBoard(ctx context.Context, boardID uuid.UUID) ([]*domain.List, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, board_id, title, position, created_at, updated_at
		 FROM lists WHERE board_id = $1
		 ORDER BY position, created_at`,
		boardID,
	)
	if err != nil {
		return nil, fmt.Errorf("listRepo.ListByBoard: %w", err)
	}
	defer rows.Close()

	var lists []*domain.List
	for rows.Next() {
		var l domain.List

		err = rows.Scan(&l.ID, &l.BoardID, &l.Title, &l.Order, &l.CreatedAt, &l.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("listRepo.ListByBoard: scan: %w", err)
		}
		lists = append(lists, &l)
	}
	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("listRepo.ListByBoard: rows: %w", err)
	}

	return lists, nil
}

func (r *ListRepo) Update(ctx context.Context, l *domain.List) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE lists SET title = $1, position = $2, updated_at = now()
		 WHERE id = $3`,
		l.Title, l.Order, l.ID,
	)
	if err != nil {
		return fmt.Errorf("listRepo.Update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("listRepo.Update: %w", domain.ErrNotFound)
	}

	return nil
}

func (r *ListRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM lists WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("listRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("listRepo.Delete: %w", domain.ErrNotFound)
	}

	return nil
}
