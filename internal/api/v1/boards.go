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
	"github.com/boardpulse/boardpulse/internal/notify"
	"github.com/boardpulse/boardpulse/internal/server/middleware"
)

type CreateBoardInput struct {
	Body struct {
		Title       string `json:"title" minLength:"1" maxLength:"255" doc:"Board title"`
		Description string `json:"description,omitempty" maxLength:"2000" doc:"Board description"`
	}
}

type CreateBoardOutput struct {
	Body *domain.Board
}

type ListBoardsOutput struct {
	Body []*domain.Board
}

type GetBoardInput struct {
	ID uuid.UUID `path:"id" doc:"Board ID"`
}

type GetBoardOutput struct {
	Body *domain.Board
}

type UpdateBoardInput struct {
	ID   uuid.UUID `path:"id" doc:"Board ID"`
	Body struct {
		Title       string `json:"title,omitempty" maxLength:"255" doc:"Board title"`
		Description string `json:"description,omitempty" maxLength:"2000" doc:"Board description"`
	}
}

type UpdateBoardOutput struct {
	Body *domain.Board
}

type DeleteBoardInput struct {
	ID uuid.UUID `path:"id" doc:"Board ID"`
}

type AddBoardMemberInput struct {
	ID   uuid.UUID `path:"id" doc:"Board ID"`
	Body struct {
		UserID uuid.UUID `json:"user_id" doc:"User to add"`
	}
}

type AddBoardMemberOutput struct {
	Body *domain.Board
}

type RemoveBoardMemberInput struct {
	ID     uuid.UUID `path:"id" doc:"Board ID"`
	UserID uuid.UUID `path:"userID" doc:"Member to remove"`
}

type RemoveBoardMemberOutput struct {
	Body *domain.Board
}

// loadBoardForUser fetches a board and enforces membership.
func loadBoardForUser(ctx context.Context, store DataStore, boardID uuid.UUID) (*domain.Board, uuid.UUID, error) {
	userID, ok := middleware.UserIDFromContext(ctx)
	if !ok {
		return nil, uuid.Nil, huma.Error401Unauthorized("missing user context")
	}

	board, err := store.Boards().GetByID(ctx, boardID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, uuid.Nil, huma.Error404NotFound("board not found")
		}
		return nil, uuid.Nil, huma.Error500InternalServerError("failed to get board", err)
	}

	if !board.HasAccess(userID) {
		return nil, uuid.Nil, huma.Error403Forbidden("not a member of this board")
	}

	return board, userID, nil
}

func RegisterBoardRoutes(api huma.API, store DataStore, notifier notify.Publisher) {
	huma.Register(api, huma.Operation{
		OperationID: "create-board",
		Method:      http.MethodPost,
		Path:        "/boards",
		Summary:     "Create a new board",
		Tags:        []string{"Boards"},
	}, func(ctx context.Context, input *CreateBoardInput) (*CreateBoardOutput, error) {
		userID, ok := middleware.UserIDFromContext(ctx)
		if !ok {
			return nil, huma.Error401Unauthorized("missing user context")
		}

		now := time.Now()
		board := &domain.Board{
			ID:          uuid.New(),
			Title:       input.Body.Title,
			Description: input.Body.Description,
			OwnerID:     userID,
			Members:     []uuid.UUID{userID},
			CreatedAt:   now,
			UpdatedAt:   now,
		}

		if err := store.Boards().Create(ctx, board); err != nil {
			return nil, huma.Error500InternalServerError("failed to create board", err)
		}

		return &CreateBoardOutput{Body: board}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-boards",
		Method:      http.MethodGet,
		Path:        "/boards",
		Summary:     "List boards the user belongs to",
		Tags:        []string{"Boards"},
	}, func(ctx context.Context, _ *struct{}) (*ListBoardsOutput, error) {
		userID, ok := middleware.UserIDFromContext(ctx)
		if !ok {
			return nil, huma.Error401Unauthorized("missing user context")
		}

		boards, err := store.Boards().ListByUser(ctx, userID)
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to list boards", err)
		}

		return &ListBoardsOutput{Body: boards}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-board",
		Method:      http.MethodGet,
		Path:        "/boards/{id}",
		Summary:     "Get a board by ID",
		Tags:        []string{"Boards"},
	}, func(ctx context.Context, input *GetBoardInput) (*GetBoardOutput, error) {
		board, _, err := loadBoardForUser(ctx, store, input.ID)
		if err != nil {
			return nil, err
		}

		return &GetBoardOutput{Body: board}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-board",
		Method:      http.MethodPut,
		Path:        "/boards/{id}",
		Summary:     "Update a board",
		Tags:        []string{"Boards"},
	}, func(ctx context.Context, input *UpdateBoardInput) (*UpdateBoardOutput, error) {
		board, _, err := loadBoardForUser(ctx, store, input.ID)
		if err != nil {
			return nil, err
		}

		if input.Body.Title != "" {
			board.Title = input.Body.Title
		}
		if input.Body.Description != "" {
			board.Description = input.Body.Description
		}
		board.UpdatedAt = time.Now()

		if err := store.Boards().Update(ctx, board); err != nil {
			return nil, huma.Error500InternalServerError("failed to update board", err)
		}

		return &UpdateBoardOutput{Body: board}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "delete-board",
		Method:      http.MethodDelete,
		Path:        "/boards/{id}",
		Summary:     "Delete a board",
		Tags:        []string{"Boards"},
	}, func(ctx context.Context, input *DeleteBoardInput) (*struct{}, error) {
		board, userID, err := loadBoardForUser(ctx, store, input.ID)
		if err != nil {
			return nil, err
		}
		if board.OwnerID != userID {
			return nil, huma.Error403Forbidden("only the owner can delete a board")
		}

		if err := store.Boards().Delete(ctx, input.ID); err != nil {
			return nil, huma.Error500InternalServerError("failed to delete board", err)
		}

		return nil, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "add-board-member",
		Method:      http.MethodPost,
		Path:        "/boards/{id}/members",
		Summary:     "Add a member to a board",
		Tags:        []string{"Boards"},
	}, func(ctx context.Context, input *AddBoardMemberInput) (*AddBoardMemberOutput, error) {
		board, _, err := loadBoardForUser(ctx, store, input.ID)
		if err != nil {
			return nil, err
		}

		if _, err := store.Users().GetByID(ctx, input.Body.UserID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, huma.Error404NotFound("user not found")
			}
			return nil, huma.Error500InternalServerError("failed to validate user", err)
		}

		if board.HasAccess(input.Body.UserID) {
			return nil, huma.Error409Conflict("user is already a member")
		}

		board.Members = append(board.Members, input.Body.UserID)
		board.UpdatedAt = time.Now()

		if err := store.Boards().Update(ctx, board); err != nil {
			return nil, huma.Error500InternalServerError("failed to add member", err)
		}

		// The invite notification is best-effort; membership is already
		// committed.
		err = notifier.Notify(ctx, input.Body.UserID, notify.Notification{
			Message:   "You have been added to the board " + board.Title,
			BoardID:   board.ID,
			Type:      notify.TypeBoardInvite,
			Timestamp: time.Now(),
		})
		if err != nil {
			log.Warn().Err(err).Str("board", board.ID.String()).Msg("board invite notification")
		}

		return &AddBoardMemberOutput{Body: board}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "remove-board-member",
		Method:      http.MethodDelete,
		Path:        "/boards/{id}/members/{userID}",
		Summary:     "Remove a member from a board",
		Tags:        []string{"Boards"},
	}, func(ctx context.Context, input *RemoveBoardMemberInput) (*RemoveBoardMemberOutput, error) {
		board, userID, err := loadBoardForUser(ctx, store, input.ID)
		if err != nil {
			return nil, err
		}
		if board.OwnerID != userID && input.UserID != userID {
			return nil, huma.Error403Forbidden("only the owner can remove other members")
		}
		if input.UserID == board.OwnerID {
			return nil, huma.Error400BadRequest("the owner cannot be removed")
		}

		members := board.Members[:0]
		for _, m := range board.Members {
			if m != input.UserID {
				members = append(members, m)
			}
		}
		board.Members = members
		board.UpdatedAt = time.Now()

		if err := store.Boards().Update(ctx, board); err != nil {
			return nil, huma.Error500InternalServerError("failed to remove member", err)
		}

		return &RemoveBoardMemberOutput{Body: board}, nil
	})
}
