package auth

import (
	"testing"
	"time"

	"github.com/nfrund/goonies/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

func TestPassword(t *testing.T) {
	hash, err := HashPassword("goonies-admin")
	require.NoError(t, err)
	assert.NotEqual(t, "goonies-admin", hash)

	assert.True(t, CheckPassword(hash, "goonies-admin"))
	assert.False(t, CheckPassword(hash, "wrong"))
	assert.False(t, CheckPassword("", "goonies-admin"))
	assert.False(t, CheckPassword("not-a-bcrypt-hash", "goonies-admin"))
}

func testUser(role domain.Role) *domain.User {
	id := surrealmodels.NewRecordID("user", "mikey")
	return &domain.User{ID: &id, Username: "mikey", Role: role}
}

func TestTokens_RoundTrip(t *testing.T) {
	tokens := NewTokens("secret", time.Hour)

	token, err := tokens.Issue(testUser(domain.RoleAdmin))
	require.NoError(t, err)

	id, err := tokens.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user:mikey", id.UserID)
	assert.True(t, id.IsAdmin())
}

func TestTokens_Rejects(t *testing.T) {
	tokens := NewTokens("secret", time.Hour)
	token, err := tokens.Issue(testUser(domain.RoleMember))
	require.NoError(t, err)

	t.Run("wrong secret", func(t *testing.T) {
		_, err := NewTokens("other", time.Hour).Verify(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		late := NewTokens("secret", time.Hour)
		late.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		_, err := late.Verify(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := tokens.Verify("not.a.token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("user without id", func(t *testing.T) {
		_, err := tokens.Issue(&domain.User{Username: "x"})
		assert.Error(t, err)
	})
}

func TestResetToken(t *testing.T) {
	token, hash, err := NewResetToken()
	require.NoError(t, err)
	assert.Len(t, token, 64)
	assert.Equal(t, hash, HashResetToken(token))
	assert.NotEqual(t, token, hash)

	other, _, err := NewResetToken()
	require.NoError(t, err)
	assert.NotEqual(t, token, other)
}
