package security

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTokenManager(t *testing.T) {
	manager := NewTokenManager("test-secret-0123456789abcdef")

	t.Run("Round trip", func(t *testing.T) {
		token, err := manager.GenerateToken(42, "Jane Smith", []string{"manager"}, time.Hour)
		assert.NoError(t, err)
		assert.NotEmpty(t, token)

		claims, err := manager.ValidateToken(token)
		assert.NoError(t, err)
		assert.Equal(t, int32(42), claims.StaffID)
		assert.Equal(t, "Jane Smith", claims.Name)
		assert.Equal(t, []string{"manager"}, claims.Roles)
	})

	t.Run("Expired token", func(t *testing.T) {
		token, err := manager.GenerateToken(42, "Jane Smith", nil, -time.Minute)
		assert.NoError(t, err)

		_, err = manager.ValidateToken(token)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})

	t.Run("Wrong secret", func(t *testing.T) {
		other := NewTokenManager("another-secret-entirely")
		token, err := other.GenerateToken(42, "Jane Smith", nil, time.Hour)
		assert.NoError(t, err)

		_, err = manager.ValidateToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("Garbage token", func(t *testing.T) {
		_, err := manager.ValidateToken("not.a.token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}
