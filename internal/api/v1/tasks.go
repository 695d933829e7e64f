package v1

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/boardpulse/boardpulse/internal/domain"
)

type CreateTaskInput struct {
	Body struct {
		BoardID     uuid.UUID   `json:"board_id" doc:"Board ID"`
		ListID      uuid.UUID   `json:"list_id" doc:"List ID"`
		Title       string      `json:"title" minLength:"1" maxLength:"500" doc:"Task title"`
		Description string      `json:"description,omitempty" doc:"Task description"`
		Priority    string      `json:"priority,omitempty" doc:"low, medium, high or urgent"`
		Order       int         `json:"order,omitempty" minimum:"0" doc:"Position in the list"`
		DueDate     *time.Time  `json:"due_date,omitempty" doc:"Due date"`
		Assignees   []uuid.UUID `json:"assignees,omitempty" doc:"Assigned user IDs"`
	}
}

type CreateTaskOutput struct {
	Body *domain.Task
}

type ListTasksInput struct {
	BoardID      uuid.UUID  `path:"boardID" doc:"Board ID"`
	Search       string     `query:"search" doc:"Match against title and description"`
	AssignedUser *uuid.UUID `query:"assigned_user" doc:"Only tasks assigned to this user"`
	Page         int        `query:"page" minimum:"1" doc:"Page number (1-based)"`
	Limit        int        `query:"limit" minimum:"1" maximum:"200" doc:"Page size"`
}

type ListTasksOutput struct {
	Body struct {
		Tasks []*domain.Task `json:"tasks"`
		Total int            `json:"total"`
	}
}

type GetTaskInput struct {
	ID uuid.UUID `path:"id" doc:"Task ID"`
}

type GetTaskOutput struct {
	Body *domain.Task
}

type UpdateTaskInput struct {
	ID   uuid.UUID `path:"id" doc:"Task ID"`
	Body struct {
		Title       *string      `json:"title,omitempty" maxLength:"500" doc:"Task title"`
		Description *string      `json:"description,omitempty" doc:"Task description"`
		Status      *string      `json:"status,omitempty" doc:"todo, in-progress or done"`
		Priority    *string      `json:"priority,omitempty" doc:"low, medium, high or urgent"`
		DueDate     *time.Time   `json:"due_date,omitempty" doc:"Due date"`
		Assignees   *[]uuid.UUID `json:"assignees,omitempty" doc:"Assigned user IDs (replaces the set)"`
	}
}

type UpdateTaskOutput struct {
	Body *domain.Task
}

type MoveTaskInput struct {
	ID   uuid.UUID `path:"id" doc:"Task ID"`
	Body struct {
		ListID uuid.UUID `json:"list_id" doc:"Destination list ID"`
		Order  int       `json:"order" minimum:"0" doc:"Position in the destination list"`
	}
}

type MoveTaskOutput struct {
	Body *domain.Task
}

type DeleteTaskInput struct {
	ID uuid.UUID `path:"id" doc:"Task ID"`
}

type AddCommentInput struct {
	ID   uuid.UUID `path:"id" doc:"Task ID"`
	Body struct {
		Text string `json:"text" minLength:"1" maxLength:"2000" doc:"Comment text"`
	}
}

type AddCommentOutput struct {
	Body *domain.Comment
}

type DeleteCommentInput struct {
	ID        uuid.UUID `path:"id" doc:"Task ID"`
	CommentID uuid.UUID `path:"commentID" doc:"Comment ID"`
}

// DeleteCommentOutput carries only the removed comment's id; clients rebuild
// the task from their local comment list.
type DeleteCommentOutput struct {
	Body struct {
		CommentID uuid.UUID `json:"comment_id"`
	}
}

// loadTaskForUser resolves a task and enforces board membership.
func loadTaskForUser(ctx context.Context, store DataStore, taskID uuid.UUID) (*domain.Task, uuid.UUID, error) {
	task, err := store.Tasks().GetByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, uuid.Nil, huma.Error404NotFound("task not found")
		}
		return nil, uuid.Nil, huma.Error500InternalServerError("failed to get task", err)
	}

	_, userID, err := loadBoardForUser(ctx, store, task.BoardID)
	if err != nil {
		return nil, uuid.Nil, err
	}

	return task, userID, nil
}

// recordActivity writes a board activity entry. Failures are logged, never
// surfaced: the mutation itself has already committed.
func recordActivity(ctx context.Context, store DataStore, t *domain.Task, userID uuid.UUID, action domain.ActivityType, message string, metadata map[string]string) {
	err := store.Activities().Create(ctx, &domain.Activity{
		ID:         uuid.New(),
		ActionType: action,
		UserID:     userID,
		TaskID:     t.ID,
		BoardID:    t.BoardID,
		Message:    message,
		Metadata:   metadata,
		CreatedAt:  time.Now(),
	})
	if err != nil {
		log.Warn().Err(err).Str("task", t.ID.String()).Str("action", string(action)).Msg("record activity")
	}
}

func RegisterTaskRoutes(api huma.API, store DataStore) {
	huma.Register(api, huma.Operation{
		OperationID: "create-task",
		Method:      http.MethodPost,
		Path:        "/tasks",
		Summary:     "Create a new task",
		Tags:        []string{"Tasks"},
	}, func(ctx context.Context, input *CreateTaskInput) (*CreateTaskOutput, error) {
		_, userID, err := loadBoardForUser(ctx, store, input.Body.BoardID)
		if err != nil {
			return nil, err
		}

		list, err := store.Lists().GetByID(ctx, input.Body.ListID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, huma.Error404NotFound("list not found")
			}
			return nil, huma.Error500InternalServerError("failed to validate list", err)
		}
		if list.BoardID != input.Body.BoardID {
			return nil, huma.Error400BadRequest("list does not belong to this board")
		}

		priority := domain.TaskPriority(input.Body.Priority)
		if input.Body.Priority == "" {
			priority = domain.TaskPriorityMedium
		}
		if !priority.Valid() {
			return nil, huma.Error400BadRequest("unknown priority: " + input.Body.Priority)
		}

		now := time.Now()
		t := &domain.Task{
			ID:            uuid.New(),
			BoardID:       input.Body.BoardID,
			ListID:        input.Body.ListID,
			Title:         input.Body.Title,
			Description:   input.Body.Description,
			Status:        domain.TaskStatusTodo,
			Priority:      priority,
			Order:         input.Body.Order,
			DueDate:       input.Body.DueDate,
			AssignedUsers: input.Body.Assignees,
			CreatedBy:     userID,
			CreatedAt:     now,
			UpdatedAt:     now,
		}

		if err := store.Tasks().Create(ctx, t); err != nil {
			return nil, huma.Error500InternalServerError("failed to create task", err)
		}

		recordActivity(ctx, store, t, userID, domain.ActivityTaskCreated, "created task "+t.Title, nil)

		return &CreateTaskOutput{Body: t}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-tasks",
		Method:      http.MethodGet,
		Path:        "/boards/{boardID}/tasks",
		Summary:     "List a board's tasks",
		Tags:        []string{"Tasks"},
	}, func(ctx context.Context, input *ListTasksInput) (*ListTasksOutput, error) {
		if _, _, err := loadBoardForUser(ctx, store, input.BoardID); err != nil {
			return nil, err
		}

		tasks, total, err := store.Tasks().ListByBoard(ctx, input.BoardID, domain.TaskFilter{
			Search:       input.Search,
			AssignedUser: input.AssignedUser,
			Page:         input.Page,
			Limit:        input.Limit,
		})
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to list tasks", err)
		}

		out := &ListTasksOutput{}
		out.Body.Tasks = tasks
		out.Body.Total = total
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-task",
		Method:      http.MethodGet,
		Path:        "/tasks/{id}",
		Summary:     "Get a task by ID",
		Tags:        []string{"Tasks"},
	}, func(ctx context.Context, input *GetTaskInput) (*GetTaskOutput, error) {
		task, _, err := loadTaskForUser(ctx, store, input.ID)
		if err != nil {
			return nil, err
		}

		return &GetTaskOutput{Body: task}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-task",
		Method:      http.MethodPut,
		Path:        "/tasks/{id}",
		Summary:     "Update a task",
		Tags:        []string{"Tasks"},
	}, func(ctx context.Context, input *UpdateTaskInput) (*UpdateTaskOutput, error) {
		task, userID, err := loadTaskForUser(ctx, store, input.ID)
		if err != nil {
			return nil, err
		}

		action := domain.ActivityTaskUpdated
		if input.Body.Title != nil && *input.Body.Title != "" && *input.Body.Title != task.Title {
			task.Title = *input.Body.Title
			action = domain.ActivityTitleUpdated
		}
		if input.Body.Description != nil && *input.Body.Description != task.Description {
			task.Description = *input.Body.Description
			action = domain.ActivityDescriptionUpdated
		}
		if input.Body.Status != nil {
			status := domain.TaskStatus(*input.Body.Status)
			if !status.Valid() {
				return nil, huma.Error400BadRequest("unknown status: " + *input.Body.Status)
			}
			task.Status = status
		}
		if input.Body.Priority != nil {
			priority := domain.TaskPriority(*input.Body.Priority)
			if !priority.Valid() {
				return nil, huma.Error400BadRequest("unknown priority: " + *input.Body.Priority)
			}
			if priority != task.Priority {
				task.Priority = priority
				action = domain.ActivityPriorityChanged
			}
		}
		if input.Body.DueDate != nil {
			task.DueDate = input.Body.DueDate
			action = domain.ActivityDueDateChanged
		}
		if input.Body.Assignees != nil {
			if len(*input.Body.Assignees) > len(task.AssignedUsers) {
				action = domain.ActivityUserAssigned
			} else if len(*input.Body.Assignees) < len(task.AssignedUsers) {
				action = domain.ActivityUserUnassigned
			}
			task.AssignedUsers = *input.Body.Assignees
		}
		task.UpdatedAt = time.Now()

		if err := store.Tasks().Update(ctx, task); err != nil {
			return nil, huma.Error500InternalServerError("failed to update task", err)
		}

		recordActivity(ctx, store, task, userID, action, "updated task "+task.Title, nil)

		return &UpdateTaskOutput{Body: task}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "move-task",
		Method:      http.MethodPatch,
		Path:        "/tasks/{id}/move",
		Summary:     "Move a task to another list",
		Tags:        []string{"Tasks"},
	}, func(ctx context.Context, input *MoveTaskInput) (*MoveTaskOutput, error) {
		task, userID, err := loadTaskForUser(ctx, store, input.ID)
		if err != nil {
			return nil, err
		}

		dest, err := store.Lists().GetByID(ctx, input.Body.ListID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, huma.Error404NotFound("destination list not found")
			}
			return nil, huma.Error500InternalServerError("failed to validate list", err)
		}
		if dest.BoardID != task.BoardID {
			return nil, huma.Error400BadRequest("destination list belongs to another board")
		}

		source := task.ListID
		task.ListID = dest.ID
		task.Order = input.Body.Order
		task.UpdatedAt = time.Now()

		if err := store.Tasks().Update(ctx, task); err != nil {
			return nil, huma.Error500InternalServerError("failed to move task", err)
		}

		recordActivity(ctx, store, task, userID, domain.ActivityTaskMoved, "moved task "+task.Title, map[string]string{
			"source_list":      source.String(),
			"destination_list": dest.ID.String(),
		})

		return &MoveTaskOutput{Body: task}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "delete-task",
		Method:      http.MethodDelete,
		Path:        "/tasks/{id}",
		Summary:     "Delete a task",
		Tags:        []string{"Tasks"},
	}, func(ctx context.Context, input *DeleteTaskInput) (*struct{}, error) {
		task, userID, err := loadTaskForUser(ctx, store, input.ID)
		if err != nil {
			return nil, err
		}

		if err := store.Tasks().Delete(ctx, input.ID); err != nil {
			return nil, huma.Error500InternalServerError("failed to delete task", err)
		}

		recordActivity(ctx, store, task, userID, domain.ActivityTaskDeleted, "deleted task "+task.Title, nil)

		return nil, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "add-comment",
		Method:      http.MethodPost,
		Path:        "/tasks/{id}/comments",
		Summary:     "Add a comment to a task",
		Tags:        []string{"Tasks"},
	}, func(ctx context.Context, input *AddCommentInput) (*AddCommentOutput, error) {
		task, userID, err := loadTaskForUser(ctx, store, input.ID)
		if err != nil {
			return nil, err
		}

		user, err := store.Users().GetByID(ctx, userID)
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to load user", err)
		}

		ref := user.Ref()
		comment := &domain.Comment{
			ID:        uuid.New(),
			TaskID:    task.ID,
			UserID:    userID,
			User:      &ref,
			Text:      input.Body.Text,
			CreatedAt: time.Now(),
		}

		if err := store.Tasks().AddComment(ctx, task.ID, comment); err != nil {
			return nil, huma.Error500InternalServerError("failed to add comment", err)
		}

		return &AddCommentOutput{Body: comment}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "delete-comment",
		Method:      http.MethodDelete,
		Path:        "/tasks/{id}/comments/{commentID}",
		Summary:     "Delete a comment",
		Tags:        []string{"Tasks"},
	}, func(ctx context.Context, input *DeleteCommentInput) (*DeleteCommentOutput, error) {
		if _, _, err := loadTaskForUser(ctx, store, input.ID); err != nil {
			return nil, err
		}

		if err := store.Tasks().DeleteComment(ctx, input.ID, input.CommentID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, huma.Error404NotFound("comment not found")
			}
			return nil, huma.Error500InternalServerError("failed to delete comment", err)
		}

		out := &DeleteCommentOutput{}
		out.Body.CommentID = input.CommentID
		return out, nil
	})
}
