package service

import (
	"context"

	"library-service-backend/internal/domain"
	"library-service-backend/internal/repository"
)

type userService struct {
	userRepo repository.UserRepository
}

func NewUserService(userRepo repository.UserRepository) UserService {
	return &userService{userRepo: userRepo}
}

func (s *userService) GetProfile(ctx context.Context, actor domain.Actor) (*domain.User, error) {
	if err := requireAuthenticated(actor); err != nil {
		return nil, err
	}
	return s.userRepo.GetByID(ctx, actor.ID)
}

func (s *userService) UpdateProfile(ctx context.Context, actor domain.Actor, name, telegramChatID string) (*domain.User, error) {
	if err := requireAuthenticated(actor); err != nil {
		return nil, err
	}
	user, err := s.userRepo.GetByID(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	user.Name = name
	user.TelegramChatID = telegramChatID
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
