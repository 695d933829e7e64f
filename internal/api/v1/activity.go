package v1

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"

	"github.com/boardpulse/boardpulse/internal/domain"
)

type ListBoardActivityInput struct {
	BoardID uuid.UUID `path:"boardID" doc:"Board ID"`
	Limit   int       `query:"limit" minimum:"1" maximum:"500" doc:"Maximum entries"`
}

type ListBoardActivityOutput struct {
	Body []*domain.Activity
}

type ListTaskActivityInput struct {
	ID uuid.UUID `path:"id" doc:"Task ID"`
}

type ListTaskActivityOutput struct {
	Body []*domain.Activity
}

func RegisterActivityRoutes(api huma.API, store DataStore) {
	huma.Register(api, huma.Operation{
		OperationID: "list-board-activity",
		Method:      http.MethodGet,
		Path:        "/boards/{boardID}/activity",
		Summary:     "List recent activity on a board",
		Tags:        []string{"Activity"},
	}, func(ctx context.Context, input *ListBoardActivityInput) (*ListBoardActivityOutput, error) {
		if _, _, err := loadBoardForUser(ctx, store, input.BoardID); err != nil {
			return nil, err
		}

		activities, err := store.Activities().ListByBoard(ctx, input.BoardID, input.Limit)
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to list activity", err)
		}

		return &ListBoardActivityOutput{Body: activities}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-task-activity",
		Method:      http.MethodGet,
		Path:        "/tasks/{id}/activity",
		Summary:     "List a task's activity trail",
		Tags:        []string{"Activity"},
	}, func(ctx context.Context, input *ListTaskActivityInput) (*ListTaskActivityOutput, error) {
		if _, _, err := loadTaskForUser(ctx, store, input.ID); err != nil {
			return nil, err
		}

		activities, err := store.Activities().ListByTask(ctx, input.ID)
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to list activity", err)
		}

		return &ListTaskActivityOutput{Body: activities}, nil
	})
}
