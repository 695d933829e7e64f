package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type ActivityType string

const (
	ActivityTaskCreated        ActivityType = "task_created"
	ActivityTaskUpdated        ActivityType = "task_updated"
	ActivityTaskMoved          ActivityType = "task_moved"
	ActivityTaskDeleted        ActivityType = "task_deleted"
	ActivityUserAssigned       ActivityType = "user_assigned"
	ActivityUserUnassigned     ActivityType = "user_unassigned"
	ActivityPriorityChanged    ActivityType = "priority_changed"
	ActivityDueDateChanged     ActivityType = "duedate_changed"
	ActivityDescriptionUpdated ActivityType = "description_updated"
	ActivityTitleUpdated       ActivityType = "title_updated"
)

type Activity struct {
	ID         uuid.UUID         `json:"id"`
	ActionType ActivityType      `json:"action_type"`
	UserID     uuid.UUID         `json:"user_id"`
	TaskID     uuid.UUID         `json:"task_id"`
	BoardID    uuid.UUID         `json:"board_id"`
	Message    string            `json:"message"`
	Metadata   map[string]string `json:"metadata,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
}

type ActivityRepository interface {
	Create(ctx context.Context, a *Activity) error
	ListByBoard(ctx context.Context, boardID uuid.UUID, limit int) ([]*Activity, error)
	ListByTask(ctx context.Context, taskID uuid.UUID) ([]*Activity, error)
}
