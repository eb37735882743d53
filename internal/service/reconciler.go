package service

import (
	"alcyxob/team-training/internal/metrics"
	"alcyxob/team-training/internal/repository"
	"alcyxob/team-training/internal/storage"
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
)

const (
	defaultReconcileInterval = time.Minute
	defaultReconcileBatch    = 100
)

// ReconcileResult counts what one pass removed and how many steps failed.
type ReconcileResult struct {
	Trainings int
	Users     int
	Blobs     int
	Errors    int
}

// Reconciler finishes soft deletes in the background: blobs go before the
// documents pointing at them, and users go once none of their trainings remain.
// Every step is idempotent, so a failed step is simply retried next pass.
type Reconciler struct {
	userRepo      repository.UserRepository
	trainingRepo  repository.TrainingRepository
	tombstoneRepo repository.BlobTombstoneRepository
	files         storage.FileStorage
	interval      time.Duration
	batch         int64
	kick          chan struct{}
	log           zerolog.Logger
}

func NewReconciler(
	userRepo repository.UserRepository,
	trainingRepo repository.TrainingRepository,
	tombstoneRepo repository.BlobTombstoneRepository,
	files storage.FileStorage,
	interval time.Duration,
	batch int64,
	log zerolog.Logger,
) *Reconciler {
	if interval <= 0 {
		interval = defaultReconcileInterval
	}
	if batch <= 0 {
		batch = defaultReconcileBatch
	}
	return &Reconciler{
		userRepo:      userRepo,
		trainingRepo:  trainingRepo,
		tombstoneRepo: tombstoneRepo,
		files:         files,
		interval:      interval,
		batch:         batch,
		kick:          make(chan struct{}, 1),
		log:           log,
	}
}

// Kick requests a pass soon. Never blocks; kicks coalesce.
func (r *Reconciler) Kick() {
	select {
	case r.kick <- struct{}{}:
	default:
	}
}

// Run loops until ctx is cancelled.
func (r *Reconciler) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.log.Info().Dur("interval", r.interval).Int64("batch", r.batch).Msg("reconciler started")
	for {
		select {
		case <-ctx.Done():
			r.log.Info().Msg("reconciler stopped")
			return
		case <-ticker.C:
		case <-r.kick:
		}
		r.RunOnce(ctx)
	}
}

// RunOnce performs a single pass.
func (r *Reconciler) RunOnce(ctx context.Context) ReconcileResult {
	start := time.Now()
	var res ReconcileResult

	r.purgeTrainings(ctx, &res)
	r.purgeUsers(ctx, &res)
	r.drainTombstones(ctx, &res)

	metrics.ReconcilerRunDuration.Observe(time.Since(start).Seconds())
	if res.Trainings+res.Users+res.Blobs+res.Errors > 0 {
		r.log.Info().
			Int("trainings", res.Trainings).
			Int("users", res.Users).
			Int("blobs", res.Blobs).
			Int("errors", res.Errors).
			Dur("took", time.Since(start)).
			Msg("reconcile pass")
	}
	return res
}

func (r *Reconciler) fail(res *ReconcileResult, kind string, err error, msg string) {
	res.Errors++
	metrics.ReconcilerErrorsTotal.WithLabelValues(kind).Inc()
	r.log.Error().Err(err).Str("kind", kind).Msg(msg)
}

func (r *Reconciler) purgeTrainings(ctx context.Context, res *ReconcileResult) {
	trainings, err := r.trainingRepo.ListDeleted(ctx, r.batch)
	if err != nil {
		r.fail(res, "training", err, "list deleted trainings")
		return
	}

	for _, t := range trainings {
		if t.HasImage() {
			if err := r.files.DeleteObject(ctx, t.ImageKey); err != nil {
				r.fail(res, "blob", err, "delete training image")
				continue
			}
			metrics.ReconcilerPurgedTotal.WithLabelValues("blob").Inc()
			res.Blobs++
		}
		if err := r.trainingRepo.Purge(ctx, t.ID); err != nil && !errors.Is(err, repository.ErrNotFound) {
			r.fail(res, "training", err, "purge training")
			continue
		}
		metrics.ReconcilerPurgedTotal.WithLabelValues("training").Inc()
		res.Trainings++
	}
}

func (r *Reconciler) purgeUsers(ctx context.Context, res *ReconcileResult) {
	users, err := r.userRepo.ListDeleted(ctx, r.batch)
	if err != nil {
		r.fail(res, "user", err, "list deleted users")
		return
	}

	for _, u := range users {
		// A training created while the delete was in flight is still live; hide it too.
		live, err := r.trainingRepo.CountByUser(ctx, u.ID, false)
		if err != nil {
			r.fail(res, "user", err, "count live trainings")
			continue
		}
		if live > 0 {
			if _, err := r.trainingRepo.MarkDeletedByUser(ctx, u.ID); err != nil {
				r.fail(res, "user", err, "mark straggler trainings")
			}
			continue
		}

		remaining, err := r.trainingRepo.CountByUser(ctx, u.ID, true)
		if err != nil {
			r.fail(res, "user", err, "count deleted trainings")
			continue
		}
		if remaining > 0 {
			continue // wait until their trainings are purged
		}

		if err := r.userRepo.Purge(ctx, u.ID); err != nil && !errors.Is(err, repository.ErrNotFound) {
			r.fail(res, "user", err, "purge user")
			continue
		}
		metrics.ReconcilerPurgedTotal.WithLabelValues("user").Inc()
		res.Users++
	}
}

func (r *Reconciler) drainTombstones(ctx context.Context, res *ReconcileResult) {
	tombstones, err := r.tombstoneRepo.List(ctx, r.batch)
	if err != nil {
		r.fail(res, "blob", err, "list blob tombstones")
		return
	}

	for _, ts := range tombstones {
		if err := r.files.DeleteObject(ctx, ts.ObjectKey); err != nil {
			r.fail(res, "blob", err, "delete tombstoned blob")
			continue
		}
		if err := r.tombstoneRepo.Remove(ctx, ts.ID); err != nil {
			r.fail(res, "blob", err, "remove tombstone")
			continue
		}
		metrics.ReconcilerPurgedTotal.WithLabelValues("blob").Inc()
		res.Blobs++
	}
}
