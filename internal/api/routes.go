package api

import (
	"alcyxob/team-training/internal/domain"
	"alcyxob/team-training/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Services bundles what the routes depend on.
type Services struct {
	Auth     service.AuthService
	Training service.TrainingService
	Admin    service.AdminService
	Stats    service.StatsService
	Profile  service.ProfileService
}

// NewRouter returns a gin engine with logging, recovery and locale selection installed.
func NewRouter(log zerolog.Logger) *gin.Engine {
	RegisterValidators()

	router := gin.New()
	router.Use(RequestLogger(log), Recovery(log), LocaleMiddleware())
	return router
}

func SetupRoutes(router *gin.Engine, svc Services, health *HealthHandler, maxUploadBytes int64) {
	authHandler := NewAuthHandler(svc.Auth)
	profileHandler := NewProfileHandler(svc.Profile)
	trainingHandler := NewTrainingHandler(svc.Training, maxUploadBytes)
	statsHandler := NewStatsHandler(svc.Stats)
	adminHandler := NewAdminHandler(svc.Admin, svc.Training, maxUploadBytes)

	authMiddleware := AuthMiddleware(svc.Auth)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	router.GET("/health", health.Liveness)
	router.GET("/health/ready", health.Readiness)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	apiV1 := router.Group("/api/v1")
	{
		authGroup := apiV1.Group("/auth")
		{
			authGroup.POST("/signup", authHandler.SignUp)
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/admin", authHandler.AdminLogin)
			authGroup.POST("/logout", authMiddleware, authHandler.Logout)
		}

		apiV1.GET("/session", OptionalAuthMiddleware(svc.Auth), authHandler.Session)
		apiV1.GET("/meta", Meta)
		apiV1.GET("/stats", statsHandler.Stats)
	}

	// --- Member routes ---
	member := apiV1.Group("")
	member.Use(authMiddleware, RoleMiddleware(domain.RoleMember))
	{
		member.GET("/dashboard", profileHandler.Dashboard)
		member.GET("/profile", profileHandler.Profile)

		member.GET("/trainings", trainingHandler.List)
		member.POST("/trainings", trainingHandler.Create)
		member.DELETE("/trainings/:id", trainingHandler.Delete)
	}

	// --- Admin routes ---
	admin := apiV1.Group("/admin")
	admin.Use(authMiddleware, RoleMiddleware(domain.RoleAdmin))
	{
		admin.GET("/users", adminHandler.ListUsers)
		admin.PUT("/users/:id", adminHandler.UpdateUser)
		admin.DELETE("/users/:id", adminHandler.DeleteUser)

		admin.GET("/trainings", adminHandler.ListTrainings)
		admin.PUT("/trainings/:id", adminHandler.UpdateTraining)
		admin.DELETE("/trainings/:id", adminHandler.DeleteTraining)
	}
}
