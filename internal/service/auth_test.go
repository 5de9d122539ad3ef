package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"library-service-backend/internal/domain"
	"library-service-backend/internal/security"
	"library-service-backend/internal/service"
)

const testJWTSecret = "0123456789abcdef0123456789abcdef"

func newAuthFixture() (*MockUserRepo, service.AuthService) {
	userRepo := new(MockUserRepo)
	tokens := security.NewTokenManager(testJWTSecret, time.Hour, 24*time.Hour)
	return userRepo, service.NewAuthService(userRepo, tokens)
}

func TestRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		userRepo, svc := newAuthFixture()
		userRepo.On("GetByEmail", ctx, "reader@test.com").Return(nil, domain.ErrNotFound)
		userRepo.On("Create", ctx, mock.AnythingOfType("*domain.User")).Return(nil)

		user, err := svc.Register(ctx, "reader@test.com", "Reader", "secret-password")
		assert.NoError(t, err)
		require.NotNil(t, user)
		assert.Equal(t, "reader@test.com", user.Email)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("secret-password")))
	})

	t.Run("Duplicate email", func(t *testing.T) {
		userRepo, svc := newAuthFixture()
		userRepo.On("GetByEmail", ctx, "reader@test.com").Return(&domain.User{ID: 1}, nil)

		_, err := svc.Register(ctx, "reader@test.com", "Reader", "secret-password")
		assert.ErrorIs(t, err, service.ErrEmailTaken)
	})

	t.Run("Short password", func(t *testing.T) {
		_, svc := newAuthFixture()
		var validation *domain.ValidationError
		_, err := svc.Register(ctx, "reader@test.com", "Reader", "short")
		assert.ErrorAs(t, err, &validation)
	})
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	hash, _ := bcrypt.GenerateFromPassword([]byte("secret-password"), bcrypt.DefaultCost)
	user := &domain.User{ID: 7, Email: "reader@test.com", PasswordHash: string(hash)}

	t.Run("Success", func(t *testing.T) {
		userRepo, svc := newAuthFixture()
		userRepo.On("GetByEmail", ctx, user.Email).Return(user, nil)

		access, refresh, err := svc.Login(ctx, user.Email, "secret-password")
		assert.NoError(t, err)
		assert.NotEmpty(t, access)
		assert.NotEmpty(t, refresh)

		tokens := security.NewTokenManager(testJWTSecret, time.Hour, 24*time.Hour)
		claims, err := tokens.ValidateToken(access)
		require.NoError(t, err)
		assert.Equal(t, user.ID, claims.UserID)
		assert.Equal(t, security.TokenTypeAccess, claims.Type)
	})

	t.Run("Wrong password", func(t *testing.T) {
		userRepo, svc := newAuthFixture()
		userRepo.On("GetByEmail", ctx, user.Email).Return(user, nil)

		_, _, err := svc.Login(ctx, user.Email, "not-the-password")
		assert.ErrorIs(t, err, service.ErrInvalidCredentials)
	})

	t.Run("Unknown email", func(t *testing.T) {
		userRepo, svc := newAuthFixture()
		userRepo.On("GetByEmail", ctx, "nobody@test.com").Return(nil, domain.ErrNotFound)

		_, _, err := svc.Login(ctx, "nobody@test.com", "secret-password")
		assert.ErrorIs(t, err, service.ErrInvalidCredentials)
	})
}

func TestRefreshToken(t *testing.T) {
	ctx := context.Background()
	user := &domain.User{ID: 7, Email: "reader@test.com"}

	t.Run("Success", func(t *testing.T) {
		userRepo, svc := newAuthFixture()
		tokens := security.NewTokenManager(testJWTSecret, time.Hour, 24*time.Hour)
		refresh, err := tokens.GenerateRefreshToken(user.ID, user.Email)
		require.NoError(t, err)
		userRepo.On("GetByID", ctx, user.ID).Return(user, nil)

		access, newRefresh, err := svc.RefreshToken(ctx, refresh)
		assert.NoError(t, err)
		assert.NotEmpty(t, access)
		assert.NotEmpty(t, newRefresh)
	})

	t.Run("Access token is rejected", func(t *testing.T) {
		_, svc := newAuthFixture()
		tokens := security.NewTokenManager(testJWTSecret, time.Hour, 24*time.Hour)
		access, err := tokens.GenerateAccessToken(user.ID, user.Email, false)
		require.NoError(t, err)

		_, _, err = svc.RefreshToken(ctx, access)
		assert.ErrorIs(t, err, security.ErrWrongTokenType)
	})
}
