package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"roomhub/internal/adapters/persistence/models"
	"roomhub/internal/adapters/persistence/repositories"
	"roomhub/internal/config"
	"roomhub/internal/core/domain"
	"roomhub/internal/pkg/jwt"
	"roomhub/internal/pkg/password"
)

func newAuthService(t *testing.T, db *gorm.DB) (*AuthService, *config.Config) {
	t.Helper()

	cfg := &config.Config{
		JWT: config.JWTConfig{
			Secret:           "test-access-secret",
			RefreshSecret:    "test-refresh-secret",
			AccessTokenMins:  15,
			RefreshTokenDays: 7,
		},
	}
	svc := NewAuthService(
		repositories.NewUserRepository(db),
		repositories.NewRefreshTokenRepository(db),
		cfg,
	)
	return svc, cfg
}

func createLoginUser(t *testing.T, db *gorm.DB, email, plain string, role domain.Role) *models.User {
	t.Helper()

	hashed, err := password.Hash(plain)
	require.NoError(t, err)
	user := &models.User{
		FullName: "Login User",
		Email:    email,
		Password: hashed,
		Role:     role,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func TestAuthLogin(t *testing.T) {
	db := newTestDB(t)
	svc, cfg := newAuthService(t, db)
	ctx := context.Background()

	user := createLoginUser(t, db, "admin@test.local", "secret123", domain.RoleAdmin)

	resp, err := svc.Login(ctx, &LoginInput{Email: "admin@test.local", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, user.ID, resp.User.ID)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)

	claims, err := jwt.ValidateAccessToken(resp.AccessToken, cfg.JWT.Secret)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, string(domain.RoleAdmin), claims.Role)

	_, err = svc.Login(ctx, &LoginInput{Email: "admin@test.local", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, &LoginInput{Email: "nobody@test.local", Password: "secret123"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthLoginDeletedUser(t *testing.T) {
	db := newTestDB(t)
	svc, _ := newAuthService(t, db)
	ctx := context.Background()

	user := createLoginUser(t, db, "gone@test.local", "secret123", domain.RoleTenant)
	require.NoError(t, db.Delete(&models.User{}, user.ID).Error)

	_, err := svc.Login(ctx, &LoginInput{Email: "gone@test.local", Password: "secret123"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthRefreshRotation(t *testing.T) {
	db := newTestDB(t)
	svc, _ := newAuthService(t, db)
	ctx := context.Background()

	createLoginUser(t, db, "admin@test.local", "secret123", domain.RoleAdmin)
	resp, err := svc.Login(ctx, &LoginInput{Email: "admin@test.local", Password: "secret123"})
	require.NoError(t, err)

	rotated, err := svc.RefreshToken(ctx, resp.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, rotated.AccessToken)
	assert.NotEqual(t, resp.RefreshToken, rotated.RefreshToken)

	// Refresh tokens are single-use.
	_, err = svc.RefreshToken(ctx, resp.RefreshToken)
	assert.ErrorIs(t, err, ErrTokenRevoked)

	// Garbage is rejected outright.
	_, err = svc.RefreshToken(ctx, "not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAuthLogout(t *testing.T) {
	db := newTestDB(t)
	svc, _ := newAuthService(t, db)
	ctx := context.Background()

	user := createLoginUser(t, db, "admin@test.local", "secret123", domain.RoleAdmin)
	resp, err := svc.Login(ctx, &LoginInput{Email: "admin@test.local", Password: "secret123"})
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, resp.RefreshToken))
	_, err = svc.RefreshToken(ctx, resp.RefreshToken)
	assert.ErrorIs(t, err, ErrTokenRevoked)

	// LogoutAll kills every outstanding session.
	first, err := svc.Login(ctx, &LoginInput{Email: "admin@test.local", Password: "secret123"})
	require.NoError(t, err)
	second, err := svc.Login(ctx, &LoginInput{Email: "admin@test.local", Password: "secret123"})
	require.NoError(t, err)

	require.NoError(t, svc.LogoutAll(ctx, user.ID))
	_, err = svc.RefreshToken(ctx, first.RefreshToken)
	assert.ErrorIs(t, err, ErrTokenRevoked)
	_, err = svc.RefreshToken(ctx, second.RefreshToken)
	assert.ErrorIs(t, err, ErrTokenRevoked)
}
