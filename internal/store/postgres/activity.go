package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/boardpulse/boardpulse/internal/domain"
)

type ActivityRepo struct {
	pool *pgxpool.Pool
}

func NewActivityRepo(pool *pgxpool.Pool) *ActivityRepo {
	return &ActivityRepo{pool: pool}
}

func (r *ActivityRepo) Create(ctx context.Context, a *domain.Activity) error {
	metadata, err := json.Marshal(a.Metadata)
	if err != nil {
		return fmt.Errorf("activityRepo.Create: marshal metadata: %w", err)
	}

	_, err = r.pool.Exec(ctx,
		`INSERT INTO activities (id, action_type, user_id, task_id, board_id, message, metadata, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		a.ID, a.ActionType, a.UserID, a.TaskID, a.BoardID, a.Message, metadata, a.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("activityRepo.Create: %w", err)
	}

	return nil
}

func (r *ActivityRepo) ListByBoard(ctx context.Context, boardID uuid.UUID, limit int) ([]*domain.Activity, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, action_type, user_id, task_id, board_id, message, metadata, created_at
		 FROM activities WHERE board_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2`,
		boardID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("activityRepo.ListByBoard: %w", err)
	}
	defer rows.Close()

	return scanActivities(rows, "activityRepo.ListByBoard")
}

func (r *ActivityRepo) ListByTask(ctx context.Context, taskID uuid.UUID) ([]*domain.Activity, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, action_type, user_id, task_id, board_id, message, metadata, created_at
		 FROM activities WHERE task_id = $1
		 ORDER BY created_at DESC`,
		taskID,
	)
	if err != nil {
		return nil, fmt.Errorf("activityRepo.ListByTask: %w", err)
	}
	defer rows.Close()

	return scanActivities(rows, "activityRepo.ListByTask")
}

func scanActivities(rows pgx.Rows, caller string) ([]*domain.Activity, error) {
	var activities []*domain.Activity
	for rows.Next() {
		var a domain.Activity
		var metadata []byte

		if err := rows.Scan(
			&a.ID, &a.ActionType, &a.UserID, &a.TaskID, &a.BoardID,
			&a.Message, &metadata, &a.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", caller, err)
		}
		if err := json.Unmarshal(metadata, &a.Metadata); err != nil {
			return nil, fmt.Errorf("%s: unmarshal metadata: %w", caller, err)
		}
		activities = append(activities, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows: %w", caller, err)
	}

	return activities, nil
}
