package main

import (
	"alcyxob/team-training/internal/api"
	"alcyxob/team-training/internal/cache"
	"alcyxob/team-training/internal/config"
	"alcyxob/team-training/internal/logger"
	"alcyxob/team-training/internal/repository/mongo"
	"alcyxob/team-training/internal/service"
	"alcyxob/team-training/internal/storage"
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		bootLog := logger.Init(logger.Options{})
		bootLog.Fatal().Err(err).Msg("could not load config")
	}

	log := logger.Init(logger.Options{Level: cfg.Log.Level, Pretty: cfg.Log.Pretty})
	log.Info().Str("address", cfg.Server.Address).Msg("starting team training server")

	gin.SetMode(cfg.Server.Mode)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Database Connection ---
	dbClient, err := mongo.ConnectDB(cfg.Database.URI)
	if err != nil {
		log.Fatal().Err(err).Msg("could not connect to MongoDB")
	}
	defer func() {
		if err := mongo.DisconnectDB(dbClient); err != nil {
			log.Error().Err(err).Msg("failed to disconnect MongoDB")
		}
	}()
	appDB := dbClient.Database(cfg.Database.Name)
	log.Info().Str("database", cfg.Database.Name).Msg("database connection established")

	go func() {
		indexCtx, cancel := context.WithTimeout(ctx, time.Minute)
		defer cancel()
		mongo.EnsureIndexes(indexCtx, appDB, log)
	}()

	// --- Storage ---
	fileStorage, err := storage.NewS3Storage(ctx, cfg.S3, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize S3 storage")
	}

	// --- Redis (optional) ---
	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient, err = cache.Connect(ctx, cache.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
		if err != nil {
			log.Fatal().Err(err).Str("addr", cfg.Redis.Addr).Msg("could not connect to Redis")
		}
		defer redisClient.Close()
		log.Info().Str("addr", cfg.Redis.Addr).Msg("redis connected")
	} else {
		log.Info().Msg("redis not configured; stats cache and logout denylist disabled")
	}
	statsCache := cache.NewStatsCache(redisClient, cfg.Redis.StatsTTL)
	denylist := cache.NewTokenDenylist(redisClient)

	// --- Repositories ---
	userRepo := mongo.NewMongoUserRepository(appDB)
	trainingRepo := mongo.NewMongoTrainingRepository(appDB)
	tombstoneRepo := mongo.NewMongoTombstoneRepository(appDB)

	// --- Services ---
	reconciler := service.NewReconciler(
		userRepo, trainingRepo, tombstoneRepo, fileStorage,
		cfg.Reconcile.Interval, cfg.Reconcile.BatchSize,
		log.With().Str("component", "reconciler").Logger(),
	)
	reconcilerDone := make(chan struct{})
	go func() {
		defer close(reconcilerDone)
		reconciler.Run(ctx)
	}()

	if !cfg.Admin.AdminEnabled() {
		log.Warn().Msg("no admin password configured; admin login disabled")
	}
	authService := service.NewAuthService(userRepo, denylist, service.AuthConfig{
		JWTSecret:         cfg.JWT.Secret,
		JWTExpiration:     cfg.JWT.Expiration,
		AdminPassword:     cfg.Admin.Password,
		AdminPasswordHash: cfg.Admin.PasswordHash,
	}, log)
	trainingService := service.NewTrainingService(
		userRepo, trainingRepo, tombstoneRepo, fileStorage, statsCache, reconciler,
		service.TrainingServiceConfig{PresignExpiry: cfg.S3.PresignExpiry, MaxImageBytes: cfg.Upload.MaxBytes},
		log,
	)
	adminService := service.NewAdminService(userRepo, trainingRepo, fileStorage, statsCache, reconciler, cfg.S3.PresignExpiry, log)
	statsService := service.NewStatsService(userRepo, trainingRepo, fileStorage, statsCache, cfg.S3.PresignExpiry, log)
	profileService := service.NewProfileService(userRepo, trainingService)

	// --- Routes ---
	deps := map[string]api.Pinger{
		"mongodb": api.PingFunc(func(ctx context.Context) error {
			return dbClient.Ping(ctx, readpref.Primary())
		}),
	}
	if redisClient != nil {
		deps["redis"] = api.PingFunc(func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		})
	}

	router := api.NewRouter(log)
	api.SetupRoutes(router, api.Services{
		Auth:     authService,
		Training: trainingService,
		Admin:    adminService,
		Stats:    statsService,
		Profile:  profileService,
	}, api.NewHealthHandler(deps), cfg.Upload.MaxBytes)

	// --- HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("address", server.Addr).Msg("listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutting down server")
	case err := <-serveErr:
		log.Error().Err(err).Msg("listen failed")
		stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}
	<-reconcilerDone

	log.Info().Msg("server exiting")
}
