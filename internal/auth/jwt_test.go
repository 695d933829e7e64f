package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndValidateToken(t *testing.T) {
	t.Parallel()

	userID := uuid.New()

	t.Run("access token round trip", func(t *testing.T) {
		t.Parallel()

		tok, err := IssueAccessToken(testSecret, userID, time.Minute)
		require.NoError(t, err)

		claims, err := ValidateToken(testSecret, tok)
		require.NoError(t, err)
		assert.Equal(t, userID.String(), claims.UserID)
		assert.Equal(t, tokenTypeAccess, claims.TokenType)
		assert.Equal(t, "boardpulse", claims.Issuer)
	})

	t.Run("refresh token round trip", func(t *testing.T) {
		t.Parallel()

		tok, err := IssueRefreshToken(testSecret, userID, time.Hour)
		require.NoError(t, err)

		claims, err := ValidateToken(testSecret, tok)
		require.NoError(t, err)
		assert.Equal(t, tokenTypeRefresh, claims.TokenType)
	})

	t.Run("wrong secret rejected", func(t *testing.T) {
		t.Parallel()

		tok, err := IssueAccessToken(testSecret, userID, time.Minute)
		require.NoError(t, err)

		_, err = ValidateToken("another-secret-also-long-enough-123456", tok)
		require.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired token rejected", func(t *testing.T) {
		t.Parallel()

		tok, err := IssueAccessToken(testSecret, userID, -time.Minute)
		require.NoError(t, err)

		_, err = ValidateToken(testSecret, tok)
		require.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage rejected", func(t *testing.T) {
		t.Parallel()

		_, err := ValidateToken(testSecret, "not.a.jwt")
		require.ErrorIs(t, err, ErrInvalidToken)
	})
}
