package utils

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/yukikurage/issue-tracker-api/internal/models"
)

func TestTokenManager_RoundTrip(t *testing.T) {
	tm := NewTokenManager("test-secret", 1)

	user := &models.User{
		ID:    42,
		Email: "alice@example.com",
		Role:  models.RoleManager,
	}

	token, err := tm.CreateToken(user)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := tm.CheckToken(token)
	require.NoError(t, err)
	require.Equal(t, uint64(42), claims.UserID)
	require.Equal(t, "alice@example.com", claims.Email)
	require.Equal(t, models.RoleManager, claims.Role)
}

func TestTokenManager_RejectsWrongKey(t *testing.T) {
	tm := NewTokenManager("test-secret", 1)
	other := NewTokenManager("other-secret", 1)

	token, err := tm.CreateToken(&models.User{ID: 1, Email: "a@example.com", Role: models.RoleDeveloper})
	require.NoError(t, err)

	_, err = other.CheckToken(token)
	require.Error(t, err)
}

func TestTokenManager_RejectsGarbage(t *testing.T) {
	tm := NewTokenManager("test-secret", 1)

	_, err := tm.CheckToken("not-a-token")
	require.Error(t, err)
}

func TestGenerateSecureToken(t *testing.T) {
	a, err := GenerateInviteToken()
	require.NoError(t, err)
	b, err := GenerateInviteToken()
	require.NoError(t, err)

	require.Len(t, a, 48)
	require.NotEqual(t, a, b)

	r, err := GenerateResetToken()
	require.NoError(t, err)
	require.Len(t, r, 32)
}
