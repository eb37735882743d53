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
)

// Tombstone reasons, stored with each blob waiting for removal.
const (
	tombstoneOrphanUpload = "orphan_upload"
	tombstoneReplaced     = "replaced"
)

// TrainingInput is the editable part of a training.
type TrainingInput struct {
	Type    domain.TrainingType
	Details string
	Image   *ImageUpload // optional
}

type TrainingService interface {
	// Create uploads the image first and only then writes the document.
	Create(ctx context.Context, userID primitive.ObjectID, in TrainingInput) (*domain.Training, error)
	ListMine(ctx context.Context, userID primitive.ObjectID) ([]domain.Training, error)
	// Update is admin-only; a new image replaces the old one.
	Update(ctx context.Context, id primitive.ObjectID, in TrainingInput) (*domain.Training, error)
	// Delete allows the owner or an admin.
	Delete(ctx context.Context, session *domain.Session, id primitive.ObjectID) error
}

// TrainingServiceConfig groups the tunables from config.
type TrainingServiceConfig struct {
	PresignExpiry time.Duration
	MaxImageBytes int64
}

type trainingService struct {
	userRepo      repository.UserRepository
	trainingRepo  repository.TrainingRepository
	tombstoneRepo repository.BlobTombstoneRepository
	images        *imageStore
	cache         StatsCache
	reconciler    Kicker
	log           zerolog.Logger
}

// NewTrainingService creates a new TrainingService. cache and reconciler may be nil.
func NewTrainingService(
	userRepo repository.UserRepository,
	trainingRepo repository.TrainingRepository,
	tombstoneRepo repository.BlobTombstoneRepository,
	fileStorage storage.FileStorage,
	cache StatsCache,
	reconciler Kicker,
	cfg TrainingServiceConfig,
	log zerolog.Logger,
) TrainingService {
	if cache == nil {
		cache = noopCache{}
	}
	if reconciler == nil {
		reconciler = noopKicker{}
	}
	return &trainingService{
		userRepo:      userRepo,
		trainingRepo:  trainingRepo,
		tombstoneRepo: tombstoneRepo,
		images:        newImageStore(fileStorage, cfg.PresignExpiry, cfg.MaxImageBytes, log),
		cache:         cache,
		reconciler:    reconciler,
		log:           log,
	}
}

func validateTrainingInput(in TrainingInput) error {
	if !in.Type.Valid() {
		return validationError("unknown training type")
	}
	if strings.TrimSpace(in.Details) == "" {
		return validationError("details are required")
	}
	return nil
}

func (s *trainingService) Create(ctx context.Context, userID primitive.ObjectID, in TrainingInput) (*domain.Training, error) {
	if err := validateTrainingInput(in); err != nil {
		return nil, err
	}

	// The session may outlive its user.
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	training := &domain.Training{
		UserID:  userID,
		Type:    in.Type,
		Details: in.Details,
	}

	if in.Image != nil {
		img, err := s.images.prepare(userID, in.Image)
		if err != nil {
			return nil, err
		}
		if err := s.images.upload(ctx, img); err != nil {
			return nil, fmt.Errorf("upload training image: %w", err)
		}
		training.ImageKey = img.key
	}

	if _, err := s.trainingRepo.Create(ctx, training); err != nil {
		s.tombstone(ctx, training.ImageKey, tombstoneOrphanUpload)
		return nil, fmt.Errorf("create training: %w", err)
	}

	s.afterMutation(ctx)
	metrics.TrainingsCreatedTotal.WithLabelValues(string(training.Type)).Inc()
	s.log.Info().
		Str("training_id", training.ID.Hex()).
		Str("user_id", userID.Hex()).
		Bool("image", training.HasImage()).
		Msg("training created")

	s.images.linkOne(ctx, training)
	return training, nil
}

func (s *trainingService) ListMine(ctx context.Context, userID primitive.ObjectID) ([]domain.Training, error) {
	trainings, err := s.trainingRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	s.images.link(ctx, trainings)
	return trainings, nil
}

func (s *trainingService) Update(ctx context.Context, id primitive.ObjectID, in TrainingInput) (*domain.Training, error) {
	if err := validateTrainingInput(in); err != nil {
		return nil, err
	}

	training, err := s.trainingRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTrainingNotFound
		}
		return nil, err
	}

	oldKey := training.ImageKey
	if in.Image != nil {
		img, err := s.images.prepare(training.UserID, in.Image)
		if err != nil {
			return nil, err
		}
		if err := s.images.upload(ctx, img); err != nil {
			return nil, fmt.Errorf("upload training image: %w", err)
		}
		training.ImageKey = img.key
	}
	training.Type = in.Type
	training.Details = in.Details

	if err := s.trainingRepo.Update(ctx, training); err != nil {
		if training.ImageKey != oldKey {
			s.tombstone(ctx, training.ImageKey, tombstoneOrphanUpload)
		}
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTrainingNotFound
		}
		return nil, fmt.Errorf("update training: %w", err)
	}

	// The old blob goes only once the document points at the new one.
	if oldKey != "" && oldKey != training.ImageKey {
		s.tombstone(ctx, oldKey, tombstoneReplaced)
	}

	s.afterMutation(ctx)
	metrics.TrainingsUpdatedTotal.Inc()
	s.images.linkOne(ctx, training)
	return training, nil
}

// Delete hides the training at once; the reconciler removes the blob and then the document.
func (s *trainingService) Delete(ctx context.Context, session *domain.Session, id primitive.ObjectID) error {
	if session == nil {
		return ErrForbidden
	}

	training, err := s.trainingRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTrainingNotFound
		}
		return err
	}
	if !session.IsAdmin() && training.UserID != session.UserID {
		return ErrForbidden
	}

	if err := s.trainingRepo.MarkDeleted(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTrainingNotFound
		}
		return fmt.Errorf("delete training: %w", err)
	}

	s.afterMutation(ctx)
	actor := "owner"
	if session.IsAdmin() {
		actor = "admin"
	}
	metrics.TrainingsDeletedTotal.WithLabelValues(actor).Inc()
	s.log.Info().Str("training_id", id.Hex()).Str("by", actor).Msg("training deleted")
	return nil
}

func (s *trainingService) afterMutation(ctx context.Context) {
	if err := s.cache.Invalidate(ctx); err != nil {
		s.log.Warn().Err(err).Msg("invalidate stats cache")
	}
	s.reconciler.Kick()
}

// tombstone records a blob for removal. If even that fails the blob is
// orphaned, so it is logged loudly with the key.
func (s *trainingService) tombstone(ctx context.Context, key, reason string) {
	if key == "" {
		return
	}
	if err := s.tombstoneRepo.Add(ctx, key, reason); err != nil {
		s.log.Error().Err(err).Str("key", key).Str("reason", reason).Msg("record blob tombstone")
	}
}
