package service

import (
	"alcyxob/team-training/internal/domain"
	"alcyxob/team-training/internal/metrics"
	"alcyxob/team-training/internal/repository"
	"alcyxob/team-training/internal/stats"
	"alcyxob/team-training/internal/storage"
	"context"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

type StatsService interface {
	// Snapshot returns the aggregated counts, from cache when fresh.
	Snapshot(ctx context.Context) (*stats.Summary, error)
}

type statsService struct {
	userRepo     repository.UserRepository
	trainingRepo repository.TrainingRepository
	images       *imageStore
	cache        StatsCache
	log          zerolog.Logger
}

// NewStatsService creates a new StatsService. cache may be nil.
func NewStatsService(
	userRepo repository.UserRepository,
	trainingRepo repository.TrainingRepository,
	fileStorage storage.FileStorage,
	cache StatsCache,
	presignExpiry time.Duration,
	log zerolog.Logger,
) StatsService {
	if cache == nil {
		cache = noopCache{}
	}
	return &statsService{
		userRepo:     userRepo,
		trainingRepo: trainingRepo,
		images:       newImageStore(fileStorage, presignExpiry, 0, log),
		cache:        cache,
		log:          log,
	}
}

// Snapshot reads trainings and users concurrently. The two reads are not a
// consistent snapshot; stats.Compute tolerates the mismatch.
func (s *statsService) Snapshot(ctx context.Context) (*stats.Summary, error) {
	var cached stats.Summary
	hit, err := s.cache.Load(ctx, &cached)
	if err != nil {
		s.log.Warn().Err(err).Msg("load stats cache")
	}
	if hit {
		metrics.StatsCacheTotal.WithLabelValues("hit").Inc()
		return &cached, nil
	}
	metrics.StatsCacheTotal.WithLabelValues("miss").Inc()

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

	summary := stats.Compute(trainings, users)
	// Linked before caching: the cached JSON drops image keys.
	s.images.link(ctx, summary.Recent)

	if err := s.cache.Store(ctx, summary); err != nil {
		s.log.Warn().Err(err).Msg("store stats cache")
	}
	return &summary, nil
}
