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

type TaskRepo struct {
	pool *pgxpool.Pool
}

func NewTaskRepo(pool *pgxpool.Pool) *TaskRepo {
	return &TaskRepo{pool: pool}
}

const taskColumns = `id, board_id, list_id, title, description, status, priority, position,
	due_date, created_by, created_at, updated_at`

func (r *TaskRepo) Create(ctx context.Context, t *domain.Task) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("taskRepo.Create: begin: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO tasks (id, board_id, list_id, title, description, status, priority, position,
		        due_date, created_by, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		t.ID, t.BoardID, t.ListID, t.Title, t.Description, t.Status, t.Priority, t.Order,
		t.DueDate, t.CreatedBy, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("taskRepo.Create: %w", err)
	}

	if err = replaceAssignees(ctx, tx, t.ID, t.AssignedUsers); err != nil {
		return fmt.Errorf("taskRepo.Create: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("taskRepo.Create: commit: %w", err)
	}

	return nil
}

func (r *TaskRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	var t domain.Task

	err := r.pool.QueryRow(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE id = $1`,
		id,
	).Scan(
		&t.ID, &t.BoardID, &t.ListID, &t.Title, &t.Description, &t.Status, &t.Priority, &t.Order,
		&t.DueDate, &t.CreatedBy, &t.CreatedAt, &t.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("taskRepo.GetByID: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("taskRepo.GetByID: %w", err)
	}

	if err = r.hydrate(ctx, []*domain.Task{&t}); err != nil {
		return nil, fmt.Errorf("taskRepo.GetByID: %w", err)
	}

	return &t, nil
}

// ListByBoard returns one page of a board's tasks plus the unpaged total.
// Search matches title and description; the assignee filter narrows to tasks
// the given user is assigned to.
func (r *TaskRepo) ListByBoard(ctx context.Context, boardID uuid.UUID, filter domain.TaskFilter) ([]*domain.Task, int, error) {
	where := `t.board_id = $1`
	args := []any{boardID}

	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		where += fmt.Sprintf(` AND (t.title ILIKE $%d OR t.description ILIKE $%d)`, len(args), len(args))
	}
	if filter.AssignedUser != nil {
		args = append(args, *filter.AssignedUser)
		where += fmt.Sprintf(` AND EXISTS (SELECT 1 FROM task_assignees a
			WHERE a.task_id = t.id AND a.user_id = $%d)`, len(args))
	}

	var total int
	err := r.pool.QueryRow(ctx,
		`SELECT count(*) FROM tasks t WHERE `+where, args...,
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("taskRepo.ListByBoard: count: %w", err)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	args = append(args, limit, (page-1)*limit)

	rows, err := r.pool.Query(ctx,
		`SELECT `+taskColumnsPrefixed+` FROM tasks t WHERE `+where+
			fmt.Sprintf(` ORDER BY t.position, t.created_at LIMIT $%d OFFSET $%d`, len(args)-1, len(args)),
		args...,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("taskRepo.ListByBoard: %w", err)
	}
	defer rows.Close()

	tasks, err := scanTasks(rows, "taskRepo.ListByBoard")
	if err != nil {
		return nil, 0, err
	}

	if err = r.hydrate(ctx, tasks); err != nil {
		return nil, 0, fmt.Errorf("taskRepo.ListByBoard: %w", err)
	}

	return tasks, total, nil
}

func (r *TaskRepo) ListByList(ctx context.Context, listID uuid.UUID) ([]*domain.Task, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE list_id = $1
		 ORDER BY position, created_at`,
		listID,
	)
	if err != nil {
		return nil, fmt.Errorf("taskRepo.ListByList: %w", err)
	}
	defer rows.Close()

	tasks, err := scanTasks(rows, "taskRepo.ListByList")
	if err != nil {
		return nil, err
	}

	if err = r.hydrate(ctx, tasks); err != nil {
		return nil, fmt.Errorf("taskRepo.ListByList: %w", err)
	}

	return tasks, nil
}

func (r *TaskRepo) Update(ctx context.Context, t *domain.Task) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("taskRepo.Update: begin: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		`UPDATE tasks SET list_id = $1, title = $2, description = $3, status = $4,
		        priority = $5, position = $6, due_date = $7, updated_at = now()
		 WHERE id = $8`,
		t.ListID, t.Title, t.Description, t.Status, t.Priority, t.Order, t.DueDate, t.ID,
	)
	if err != nil {
		return fmt.Errorf("taskRepo.Update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("taskRepo.Update: %w", domain.ErrNotFound)
	}

	if err = replaceAssignees(ctx, tx, t.ID, t.AssignedUsers); err != nil {
		return fmt.Errorf("taskRepo.Update: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("taskRepo.Update: commit: %w", err)
	}

	return nil
}

func (r *TaskRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM tasks WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("taskRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("taskRepo.Delete: %w", domain.ErrNotFound)
	}

	return nil
}

func (r *TaskRepo) AddComment(ctx context.Context, taskID uuid.UUID, c *domain.Comment) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO task_comments (id, task_id, user_id, body, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		c.ID, taskID, c.UserID, c.Text, c.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("taskRepo.AddComment: %w", err)
	}

	return nil
}

func (r *TaskRepo) DeleteComment(ctx context.Context, taskID, commentID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM task_comments WHERE task_id = $1 AND id = $2`,
		taskID, commentID,
	)
	if err != nil {
		return fmt.Errorf("taskRepo.DeleteComment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("taskRepo.DeleteComment: %w", domain.ErrNotFound)
	}

	return nil
}

// hydrate attaches assignees and comments to the given tasks.
func (r *TaskRepo) hydrate(ctx context.Context, tasks []*domain.Task) error {
	for _, t := range tasks {
		rows, err := r.pool.Query(ctx,
			`SELECT user_id FROM task_assignees WHERE task_id = $1`,
			t.ID,
		)
		if err != nil {
			return fmt.Errorf("hydrate: assignees: %w", err)
		}
		for rows.Next() {
			var id uuid.UUID
			if err = rows.Scan(&id); err != nil {
				rows.Close()
				return fmt.Errorf("hydrate: assignees: scan: %w", err)
			}
			t.AssignedUsers = append(t.AssignedUsers, id)
		}
		err = rows.Err()
		rows.Close()
		if err != nil {
			return fmt.Errorf("hydrate: assignees: rows: %w", err)
		}

		t.Comments, err = r.comments(ctx, t.ID)
		if err != nil {
			return fmt.Errorf("hydrate: %w", err)
		}
	}

	return nil
}

func (r *TaskRepo) comments(ctx context.Context, taskID uuid.UUID) ([]domain.Comment, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT c.id, c.task_id, c.user_id, c.body, c.created_at,
		        u.id, u.name, u.email, u.avatar_url
		 FROM task_comments c
		 JOIN users u ON u.id = c.user_id
		 WHERE c.task_id = $1
		 ORDER BY c.created_at`,
		taskID,
	)
	if err != nil {
		return nil, fmt.Errorf("comments: %w", err)
	}
	defer rows.Close()

	var comments []domain.Comment
	for rows.Next() {
		var c domain.Comment
		var ref domain.UserRef

		err = rows.Scan(
			&c.ID, &c.TaskID, &c.UserID, &c.Text, &c.CreatedAt,
			&ref.ID, &ref.Name, &ref.Email, &ref.AvatarURL,
		)
		if err != nil {
			return nil, fmt.Errorf("comments: scan: %w", err)
		}
		c.User = &ref
		comments = append(comments, c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("comments: rows: %w", err)
	}

	return comments, nil
}

func replaceAssignees(ctx context.Context, tx pgx.Tx, taskID uuid.UUID, users []uuid.UUID) error {
	_, err := tx.Exec(ctx, `DELETE FROM task_assignees WHERE task_id = $1`, taskID)
	if err != nil {
		return fmt.Errorf("replaceAssignees: %w", err)
	}
	for _, userID := range users {
		_, err = tx.Exec(ctx,
			`INSERT INTO task_assignees (task_id, user_id) VALUES ($1, $2)
			 ON CONFLICT DO NOTHING`,
			taskID, userID,
		)
		if err != nil {
			return fmt.Errorf("replaceAssignees: %w", err)
		}
	}

	return nil
}

const taskColumnsPrefixed = `t.id, t.board_id, t.list_id, t.title, t.description, t.status, t.priority, t.position,
	t.due_date, t.created_by, t.created_at, t.updated_at`

func scanTasks(rows pgx.Rows, caller string) ([]*domain.Task, error) {
	var tasks []*domain.Task
	for rows.Next() {
		var t domain.Task
		if err := rows.Scan(
			&t.ID, &t.BoardID, &t.ListID, &t.Title, &t.Description, &t.Status, &t.Priority, &t.Order,
			&t.DueDate, &t.CreatedBy, &t.CreatedAt, &t.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", caller, err)
		}
		tasks = append(tasks, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows: %w", caller, err)
	}

	return tasks, nil
}
