package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/service-desk/internal/auth"
	"github.com/spec-kit/service-desk/internal/config"
	"github.com/spec-kit/service-desk/internal/domain"
)

func newTestAuthService(t *testing.T) (*AuthService, *fakeUserRepo) {
	t.Helper()
	users := newFakeUserRepo()
	hash, err := auth.HashPassword("client123", bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, users.Create(context.Background(), &domain.User{
		Login:        "client1",
		PasswordHash: hash,
		FullName:     "Клиент 1",
		Role:         domain.RoleClient,
	}))

	cfg := config.AuthConfig{JWTSecret: "test-secret", AccessTokenTTLMinutes: 5}
	return NewAuthService(cfg, users), users
}

func TestAuthenticateIssuesParseableToken(t *testing.T) {
	svc, _ := newTestAuthService(t)

	user, token, exp, err := svc.Authenticate(context.Background(), "client1", "client123")
	require.NoError(t, err)
	assert.Equal(t, "client1", user.Login)
	assert.False(t, exp.IsZero())

	claims, err := svc.TokenManager().ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "client1", claims.Login)
	assert.Equal(t, domain.RoleClient, claims.Role)
}

func TestAuthenticateRejectsBadCredentials(t *testing.T) {
	svc, _ := newTestAuthService(t)

	_, _, _, err := svc.Authenticate(context.Background(), "client1", "wrong")
	assert.Equal(t, "AUTH_FAILED", domainCode(t, err))

	// an unknown login yields the same error code as a bad password
	_, _, _, err = svc.Authenticate(context.Background(), "nobody", "client123")
	assert.Equal(t, "AUTH_FAILED", domainCode(t, err))

	_, _, _, err = svc.Authenticate(context.Background(), "", "")
	assert.Equal(t, "VALIDATION_FAILED", domainCode(t, err))
}
