package v1_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	v1 "github.com/boardpulse/boardpulse/internal/api/v1"
	"github.com/boardpulse/boardpulse/internal/auth"
	"github.com/boardpulse/boardpulse/internal/domain"
)

func TestRegister(t *testing.T) {
	t.Parallel()

	t.Run("happy_path", func(t *testing.T) {
		t.Parallel()

		userID := uuid.New()
		_, api := humatest.New(t)
		v1.RegisterAuthRoutes(api, &mockAuthService{
			registerFunc: func(_ context.Context, email, password, name string) (*domain.User, error) {
				assert.Equal(t, "ada@example.com", email)
				assert.Equal(t, "ada", name)
				return &domain.User{ID: userID, Email: email, Name: name, PasswordHash: "secret"}, nil
			},
			loginFunc: func(_ context.Context, _, _ string) (string, string, error) {
				return "access-token", "refresh-token", nil
			},
		})

		resp := api.Post("/auth/register", map[string]any{
			"email":    "ada@example.com",
			"password": "correct horse",
			"name":     "ada",
		})

		require.Equal(t, http.StatusOK, resp.Code)

		var body struct {
			User         domain.User `json:"user"`
			AccessToken  string      `json:"access_token"`
			RefreshToken string      `json:"refresh_token"`
		}
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
		assert.Equal(t, userID, body.User.ID)
		assert.Empty(t, body.User.PasswordHash, "hash must never leave the server")
		assert.Equal(t, "access-token", body.AccessToken)
		assert.Equal(t, "refresh-token", body.RefreshToken)
	})

	t.Run("duplicate_email", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		v1.RegisterAuthRoutes(api, &mockAuthService{
			registerFunc: func(_ context.Context, _, _, _ string) (*domain.User, error) {
				return nil, fmt.Errorf("auth.Register: %w", auth.ErrUserAlreadyExists)
			},
		})

		resp := api.Post("/auth/register", map[string]any{
			"email":    "ada@example.com",
			"password": "correct horse",
			"name":     "ada",
		})
		assert.Equal(t, http.StatusConflict, resp.Code)
	})

	t.Run("short_password_rejected", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		v1.RegisterAuthRoutes(api, &mockAuthService{})

		resp := api.Post("/auth/register", map[string]any{
			"email":    "ada@example.com",
			"password": "short",
			"name":     "ada",
		})
		assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
	})
}

func TestLogin(t *testing.T) {
	t.Parallel()

	t.Run("happy_path", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		v1.RegisterAuthRoutes(api, &mockAuthService{
			loginFunc: func(_ context.Context, email, password string) (string, string, error) {
				assert.Equal(t, "ada@example.com", email)
				assert.Equal(t, "correct horse", password)
				return "access-token", "refresh-token", nil
			},
		})

		resp := api.Post("/auth/login", map[string]any{
			"email":    "ada@example.com",
			"password": "correct horse",
		})

		require.Equal(t, http.StatusOK, resp.Code)

		var body struct {
			AccessToken  string `json:"access_token"`
			RefreshToken string `json:"refresh_token"`
		}
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
		assert.Equal(t, "access-token", body.AccessToken)
	})

	t.Run("bad_credentials", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		v1.RegisterAuthRoutes(api, &mockAuthService{
			loginFunc: func(_ context.Context, _, _ string) (string, string, error) {
				return "", "", fmt.Errorf("auth.Login: %w", auth.ErrInvalidCredentials)
			},
		})

		resp := api.Post("/auth/login", map[string]any{
			"email":    "ada@example.com",
			"password": "wrong",
		})
		assert.Equal(t, http.StatusUnauthorized, resp.Code)
	})
}

func TestRefreshToken(t *testing.T) {
	t.Parallel()

	t.Run("happy_path", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		v1.RegisterAuthRoutes(api, &mockAuthService{
			refreshTokenFunc: func(_ context.Context, token string) (string, error) {
				assert.Equal(t, "refresh-token", token)
				return "new-access", nil
			},
		})

		resp := api.Post("/auth/refresh", map[string]any{"refresh_token": "refresh-token"})
		require.Equal(t, http.StatusOK, resp.Code)

		var body struct {
			AccessToken string `json:"access_token"`
		}
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
		assert.Equal(t, "new-access", body.AccessToken)
	})

	t.Run("invalid_token", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		v1.RegisterAuthRoutes(api, &mockAuthService{
			refreshTokenFunc: func(_ context.Context, _ string) (string, error) {
				return "", auth.ErrInvalidToken
			},
		})

		resp := api.Post("/auth/refresh", map[string]any{"refresh_token": "expired"})
		assert.Equal(t, http.StatusUnauthorized, resp.Code)
	})
}

func TestGetMe(t *testing.T) {
	t.Parallel()

	t.Run("happy_path", func(t *testing.T) {
		t.Parallel()

		userID := uuid.New()
		_, api := humatest.New(t)
		v1.RegisterMeRoute(api, &mockAuthService{
			getUserFunc: func(_ context.Context, id uuid.UUID) (*domain.User, error) {
				assert.Equal(t, userID, id)
				return &domain.User{ID: id, Name: "ada", PasswordHash: "secret"}, nil
			},
		})

		resp := api.GetCtx(userCtx(userID), "/auth/me")
		require.Equal(t, http.StatusOK, resp.Code)

		var user domain.User
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &user))
		assert.Equal(t, userID, user.ID)
		assert.Empty(t, user.PasswordHash)
	})

	t.Run("missing_user_context", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		v1.RegisterMeRoute(api, &mockAuthService{})

		resp := api.GetCtx(context.Background(), "/auth/me")
		assert.Equal(t, http.StatusUnauthorized, resp.Code)
	})
}
