package service

import (
	"context"
	"testing"

	"edvault/cert-portal/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("Should create a student and strip the password hash", func(t *testing.T) {
		svc := NewAuthService(newFakeUserRepo(), "test-secret", 0)

		user, err := svc.Register(ctx, "Ada Lovelace", "ada@example.com", "correct horse", domain.RoleStudent)

		require.NoError(t, err)
		assert.False(t, user.ID.IsZero())
		assert.Equal(t, domain.RoleStudent, user.Role)
		assert.Empty(t, user.PasswordHash)
	})

	t.Run("Should refuse a duplicate email", func(t *testing.T) {
		repo := newFakeUserRepo()
		svc := NewAuthService(repo, "test-secret", 0)

		_, err := svc.Register(ctx, "Ada", "ada@example.com", "correct horse", domain.RoleStudent)
		require.NoError(t, err)

		_, err = svc.Register(ctx, "Imposter", "ada@example.com", "battery staple", domain.RoleAdmin)
		require.ErrorIs(t, err, ErrUserAlreadyExists)
	})
}

func TestLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("Should return a token for valid credentials", func(t *testing.T) {
		repo := newFakeUserRepo()
		svc := NewAuthService(repo, "test-secret", 0)
		_, err := svc.Register(ctx, "Ada", "ada@example.com", "correct horse", domain.RoleAdmin)
		require.NoError(t, err)

		token, user, err := svc.Login(ctx, "ada@example.com", "correct horse")

		require.NoError(t, err)
		assert.NotEmpty(t, token)
		assert.Equal(t, domain.RoleAdmin, user.Role)
		assert.Empty(t, user.PasswordHash)
	})

	t.Run("Should map a wrong password to an authentication failure", func(t *testing.T) {
		repo := newFakeUserRepo()
		svc := NewAuthService(repo, "test-secret", 0)
		_, err := svc.Register(ctx, "Ada", "ada@example.com", "correct horse", domain.RoleStudent)
		require.NoError(t, err)

		_, _, err = svc.Login(ctx, "ada@example.com", "wrong")
		require.ErrorIs(t, err, ErrAuthenticationFailed)
	})

	t.Run("Should map an unknown email to the same failure", func(t *testing.T) {
		svc := NewAuthService(newFakeUserRepo(), "test-secret", 0)

		_, _, err := svc.Login(ctx, "nobody@example.com", "whatever")
		require.ErrorIs(t, err, ErrAuthenticationFailed)
	})
}
