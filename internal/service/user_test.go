package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"library-service-backend/internal/domain"
	"library-service-backend/internal/service"
)

func TestGetProfile(t *testing.T) {
	ctx := context.Background()

	t.Run("Owner reads their profile", func(t *testing.T) {
		userRepo := new(MockUserRepo)
		svc := service.NewUserService(userRepo)
		stored := &domain.User{ID: 7, Email: "reader@test.com", Name: "Reader"}

		userRepo.On("GetByID", ctx, int32(7)).Return(stored, nil)

		user, err := svc.GetProfile(ctx, domain.Actor{ID: 7, IsAuthenticated: true})
		require.NoError(t, err)
		assert.Equal(t, stored, user)
	})

	t.Run("Anonymous is rejected", func(t *testing.T) {
		userRepo := new(MockUserRepo)
		svc := service.NewUserService(userRepo)

		_, err := svc.GetProfile(ctx, domain.Actor{})
		assert.ErrorIs(t, err, domain.ErrUnauthenticated)
		userRepo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	})
}

func TestUpdateProfile(t *testing.T) {
	ctx := context.Background()
	owner := domain.Actor{ID: 7, Email: "reader@test.com", IsAuthenticated: true}

	t.Run("Binding a telegram chat persists it", func(t *testing.T) {
		userRepo := new(MockUserRepo)
		svc := service.NewUserService(userRepo)
		stored := &domain.User{ID: 7, Email: "reader@test.com", Name: "Reader"}

		userRepo.On("GetByID", ctx, int32(7)).Return(stored, nil)
		userRepo.On("Update", ctx, mock.MatchedBy(func(u *domain.User) bool {
			return u.ID == 7 && u.Name == "Reader" && u.TelegramChatID == "chat-42"
		})).Return(nil)

		user, err := svc.UpdateProfile(ctx, owner, "Reader", "chat-42")
		require.NoError(t, err)
		assert.Equal(t, "chat-42", user.TelegramChatID)
		userRepo.AssertExpectations(t)
	})

	t.Run("Anonymous is rejected", func(t *testing.T) {
		userRepo := new(MockUserRepo)
		svc := service.NewUserService(userRepo)

		_, err := svc.UpdateProfile(ctx, domain.Actor{}, "Reader", "chat-42")
		assert.ErrorIs(t, err, domain.ErrUnauthenticated)
		userRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})
}
