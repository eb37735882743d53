package service

import (
	"alcyxob/team-training/internal/domain"
	"alcyxob/team-training/internal/repository"
	"context"
	"errors"
)

// Dashboard is the signed-in user's home view.
type Dashboard struct {
	User      *domain.User      `json:"user"`
	Trainings []domain.Training `json:"trainings"`
}

type ProfileService interface {
	GetProfile(ctx context.Context, session *domain.Session) (*domain.User, error)
	GetDashboard(ctx context.Context, session *domain.Session) (*Dashboard, error)
}

type profileService struct {
	userRepo  repository.UserRepository
	trainings TrainingService
}

func NewProfileService(userRepo repository.UserRepository, trainings TrainingService) ProfileService {
	return &profileService{userRepo: userRepo, trainings: trainings}
}

func (s *profileService) GetProfile(ctx context.Context, session *domain.Session) (*domain.User, error) {
	if session == nil || session.UserID.IsZero() {
		return nil, ErrForbidden
	}
	user, err := s.userRepo.GetByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *profileService) GetDashboard(ctx context.Context, session *domain.Session) (*Dashboard, error) {
	user, err := s.GetProfile(ctx, session)
	if err != nil {
		return nil, err
	}
	trainings, err := s.trainings.ListMine(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return &Dashboard{User: user, Trainings: trainings}, nil
}
