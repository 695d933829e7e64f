package v1

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"

	"github.com/boardpulse/boardpulse/internal/domain"
)

type CreateListInput struct {
	BoardID uuid.UUID `path:"boardID" doc:"Board ID"`
	Body    struct {
		Title string `json:"title" minLength:"1" maxLength:"255" doc:"List title"`
		Order int    `json:"order,omitempty" minimum:"0" doc:"Position on the board"`
	}
}

type CreateListOutput struct {
	Body *domain.List
}

type ListListsInput struct {
	BoardID uuid.UUID `path:"boardID" doc:"Board ID"`
}

type ListListsOutput struct {
	Body []*domain.List
}

type UpdateListInput struct {
	ID   uuid.UUID `path:"id" doc:"List ID"`
	Body struct {
		Title string `json:"title,omitempty" maxLength:"255" doc:"List title"`
		Order *int   `json:"order,omitempty" minimum:"0" doc:"Position on the board"`
	}
}

type UpdateListOutput struct {
	Body *domain.List
}

type DeleteListInput struct {
	ID uuid.UUID `path:"id" doc:"List ID"`
}

// loadListForUser resolves a list and enforces board membership.
func loadListForUser(ctx context.Context, store DataStore, listID uuid.UUID) (*domain.List, error) {
	list, err := store.Lists().GetByID(ctx, listID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, huma.Error404NotFound("list not found")
		}
		return nil, huma.Error500InternalServerError("failed to get list", err)
	}

	if _, _, err := loadBoardForUser(ctx, store, list.BoardID); err != nil {
		return nil, err
	}

	return list, nil
}

func RegisterListRoutes(api huma.API, store DataStore) {
	huma.Register(api, huma.Operation{
		OperationID: "create-list",
		Method:      http.MethodPost,
		Path:        "/boards/{boardID}/lists",
		Summary:     "Create a list on a board",
		Tags:        []string{"Lists"},
	}, func(ctx context.Context, input *CreateListInput) (*CreateListOutput, error) {
		if _, _, err := loadBoardForUser(ctx, store, input.BoardID); err != nil {
			return nil, err
		}

		now := time.Now()
		list := &domain.List{
			ID:        uuid.New(),
			BoardID:   input.BoardID,
			Title:     input.Body.Title,
			Order:     input.Body.Order,
			CreatedAt: now,
			UpdatedAt: now,
		}

		if err := store.Lists().Create(ctx, list); err != nil {
			return nil, huma.Error500InternalServerError("failed to create list", err)
		}

		return &CreateListOutput{Body: list}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-lists",
		Method:      http.MethodGet,
		Path:        "/boards/{boardID}/lists",
		Summary:     "List a board's lists",
		Tags:        []string{"Lists"},
	}, func(ctx context.Context, input *ListListsInput) (*ListListsOutput, error) {
		if _, _, err := loadBoardForUser(ctx, store, input.BoardID); err != nil {
			return nil, err
		}

		lists, err := store.Lists().ListByBoard(ctx, input.BoardID)
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to list lists", err)
		}

		return &ListListsOutput{Body: lists}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-list",
		Method:      http.MethodPut,
		Path:        "/lists/{id}",
		Summary:     "Update a list",
		Tags:        []string{"Lists"},
	}, func(ctx context.Context, input *UpdateListInput) (*UpdateListOutput, error) {
		list, err := loadListForUser(ctx, store, input.ID)
		if err != nil {
			return nil, err
		}

		if input.Body.Title != "" {
			list.Title = input.Body.Title
		}
		if input.Body.Order != nil {
			list.Order = *input.Body.Order
		}
		list.UpdatedAt = time.Now()

		if err := store.Lists().Update(ctx, list); err != nil {
			return nil, huma.Error500InternalServerError("failed to update list", err)
		}

		return &UpdateListOutput{Body: list}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "delete-list",
		Method:      http.MethodDelete,
		Path:        "/lists/{id}",
		Summary:     "Delete a list",
		Tags:        []string{"Lists"},
	}, func(ctx context.Context, input *DeleteListInput) (*struct{}, error) {
		if _, err := loadListForUser(ctx, store, input.ID); err != nil {
			return nil, err
		}

		if err := store.Lists().Delete(ctx, input.ID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, huma.Error404NotFound("list not found")
			}
			return nil, huma.Error500InternalServerError("failed to delete list", err)
		}

		return nil, nil
	})
}
