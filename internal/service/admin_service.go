package service

import (
	"alcyxob/team-training/internal/domain"
	"alcyxob/team-training/internal/metrics"
	"alcyxob/team-training/internal/repository"
	"alcyxob/team-training/internal/storage"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/errgroup"
)

// AdminTraining is a training joined with its owner's name for the admin listing.
type AdminTraining struct {
	domain.Training
	OwnerName  string `json:"ownerName,omitempty"`
	OwnerKnown bool   `json:"ownerKnown"`
}

type AdminService interface {
	ListUsers(ctx context.Context) ([]domain.User, error)
	UpdateUser(ctx context.Context, id primitive.ObjectID, fullName string, team domain.Team) (*domain.User, error)
	// DeleteUser removes the user and every training referencing it. Safe to repeat.
	DeleteUser(ctx context.Context, id primitive.ObjectID) (trainings int64, err error)
	ListTrainings(ctx context.Context) ([]AdminTraining, error)
}

type adminService struct {
	userRepo     repository.UserRepository
	trainingRepo repository.TrainingRepository
	images       *imageStore
	cache        StatsCache
	reconciler   Kicker
	log          zerolog.Logger
}

// NewAdminService creates a new AdminService. cache and reconciler may be nil.
func NewAdminService(
	userRepo repository.UserRepository,
	trainingRepo repository.TrainingRepository,
	fileStorage storage.FileStorage,
	cache StatsCache,
	reconciler Kicker,
	presignExpiry time.Duration,
	log zerolog.Logger,
) AdminService {
	if cache == nil {
		cache = noopCache{}
	}
	if reconciler == nil {
		reconciler = noopKicker{}
	}
	return &adminService{
		userRepo:     userRepo,
		trainingRepo: trainingRepo,
		images:       newImageStore(fileStorage, presignExpiry, 0, log),
		cache:        cache,
		reconciler:   reconciler,
		log:          log,
	}
}

func (s *adminService) ListUsers(ctx context.Context) ([]domain.User, error) {
	return s.userRepo.List(ctx)
}

func (s *adminService) UpdateUser(ctx context.Context, id primitive.ObjectID, fullName string, team domain.Team) (*domain.User, error) {
	fullName = strings.TrimSpace(fullName)
	if fullName == "" {
		return nil, validationError("full name is required")
	}
	if !team.Valid() {
		return nil, validationError("unknown team")
	}

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	user.FullName = fullName
	user.Team = team
	if err := s.userRepo.Update(ctx, user); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("update user: %w", err)
	}

	s.invalidate(ctx)
	return user, nil
}

// DeleteUser marks the trainings first and the user last, so a failure in
// between leaves a live user with hidden trainings and a retry finishes the job.
func (s *adminService) DeleteUser(ctx context.Context, id primitive.ObjectID) (int64, error) {
	n, err := s.trainingRepo.MarkDeletedByUser(ctx, id)
	if err != nil {
		return 0, fmt.Errorf("delete user trainings: %w", err)
	}

	if err := s.userRepo.MarkDeleted(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			if n > 0 {
				// Orphaned trainings of a purged user: hidden now, purged later.
				s.reconciler.Kick()
				s.invalidate(ctx)
			}
			return n, ErrUserNotFound
		}
		return n, fmt.Errorf("delete user: %w", err)
	}

	s.invalidate(ctx)
	s.reconciler.Kick()
	metrics.CascadeDeletesTotal.Inc()
	s.log.Info().Str("user_id", id.Hex()).Int64("trainings", n).Msg("user deleted")
	return n, nil
}

func (s *adminService) ListTrainings(ctx context.Context) ([]AdminTraining, error) {
	var (
		trainings []domain.Training
		users     []domain.User
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		trainings, err = s.trainingRepo.ListAll(gctx)
		return
	})
	g.Go(func() (err error) {
		users, err = s.userRepo.List(gctx)
		return
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	names := make(map[primitive.ObjectID]string, len(users))
	for _, u := range users {
		names[u.ID] = u.FullName
	}

	s.images.link(ctx, trainings)
	out := make([]AdminTraining, 0, len(trainings))
	for _, t := range trainings {
		name, ok := names[t.UserID]
		out = append(out, AdminTraining{Training: t, OwnerName: name, OwnerKnown: ok})
	}
	return out, nil
}

func (s *adminService) invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx); err != nil {
		s.log.Warn().Err(err).Msg("invalidate stats cache")
	}
}
