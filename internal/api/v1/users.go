package v1

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/boardpulse/boardpulse/internal/domain"
	"github.com/boardpulse/boardpulse/internal/server/middleware"
)

type ListUsersOutput struct {
	Body []domain.UserRef
}

// RegisterUserRoutes exposes the user directory used by the member picker.
// Only identity fields leave the server.
func RegisterUserRoutes(api huma.API, store DataStore) {
	huma.Register(api, huma.Operation{
		OperationID: "list-users",
		Method:      http.MethodGet,
		Path:        "/users",
		Summary:     "List registered users",
		Tags:        []string{"Users"},
	}, func(ctx context.Context, _ *struct{}) (*ListUsersOutput, error) {
		if _, ok := middleware.UserIDFromContext(ctx); !ok {
			return nil, huma.Error401Unauthorized("missing user context")
		}

		users, err := store.Users().List(ctx)
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to list users", err)
		}

		refs := make([]domain.UserRef, 0, len(users))
		for _, u := range users {
			refs = append(refs, u.Ref())
		}

		return &ListUsersOutput{Body: refs}, nil
	})
}
