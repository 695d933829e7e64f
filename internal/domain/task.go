package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "todo"
	TaskStatusInProgress TaskStatus = "in-progress"
	TaskStatusDone       TaskStatus = "done"
)

func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusDone:
		return true
	default:
		return false
	}
}

type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
	TaskPriorityUrgent TaskPriority = "urgent"
)

func (p TaskPriority) Valid() bool {
	switch p {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh, TaskPriorityUrgent:
		return true
	default:
		return false
	}
}

type Task struct {
	ID            uuid.UUID    `json:"id"`
	BoardID       uuid.UUID    `json:"board_id"`
	ListID        uuid.UUID    `json:"list_id"`
	Title         string       `json:"title"`
	Description   string       `json:"description,omitempty"`
	Status        TaskStatus   `json:"status"`
	Priority      TaskPriority `json:"priority"`
	Order         int          `json:"order"`
	DueDate       *time.Time   `json:"due_date,omitempty"`
	AssignedUsers []uuid.UUID  `json:"assigned_users"`
	Comments      []Comment    `json:"comments"`
	CreatedBy     uuid.UUID    `json:"created_by"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

// Comment is embedded in its task; the task document is its unit of storage,
// matching the board tree clients cache.
type Comment struct {
	ID        uuid.UUID `json:"id"`
	TaskID    uuid.UUID `json:"task_id"`
	UserID    uuid.UUID `json:"user_id"`
	User      *UserRef  `json:"user,omitempty"` // populated for responses
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

type TaskRepository interface {
	Create(ctx context.Context, t *Task) error
	GetByID(ctx context.Context, id uuid.UUID) (*Task, error)
	ListByBoard(ctx context.Context, boardID uuid.UUID, filter TaskFilter) ([]*Task, int, error)
	ListByList(ctx context.Context, listID uuid.UUID) ([]*Task, error)
	Update(ctx context.Context, t *Task) error
	Delete(ctx context.Context, id uuid.UUID) error

	AddComment(ctx context.Context, taskID uuid.UUID, c *Comment) error
	DeleteComment(ctx context.Context, taskID, commentID uuid.UUID) error
}

// TaskFilter narrows board-scoped task listings. Zero value means no filter.
type TaskFilter struct {
	Search       string
	AssignedUser *uuid.UUID
	Page         int
	Limit        int
}
