package api

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/foodbridge/backend/config"
	"github.com/foodbridge/backend/internal/middleware"
	"github.com/foodbridge/backend/internal/service"
)

// Deps carries everything the API surface needs. Redis and S3 are
// optional; absent Redis means in-memory sessions and no rate limiting,
// absent S3 disables photo uploads.
type Deps struct {
	DB     *gorm.DB
	Redis  *redis.Client
	S3     *config.S3Config
	Config *config.Config
	Log    *logrus.Logger
}

// SetupAPI builds the service graph and registers every route under
// /api/v1. It returns the activity recorder so the server can drain it
// on shutdown.
func SetupAPI(router *gin.Engine, deps Deps) *service.ActivityService {
	var sessions service.SessionStore
	if deps.Redis != nil {
		sessions = service.NewRedisSessionStore(deps.Redis)
	} else {
		sessions = service.NewMemorySessionStore()
	}

	activityService := service.NewActivityService(deps.DB, deps.Log)
	authService := service.NewAuthService(deps.DB, sessions, activityService, deps.Log,
		deps.Config.JWTSecret, deps.Config.AdminEmail, deps.Config.AdminPassword, deps.Config.SessionTTL)
	foodService := service.NewFoodService(deps.DB, activityService, deps.Log)
	contactService := service.NewContactService(deps.DB)
	adminService := service.NewAdminService(deps.DB, activityService)
	photoService := service.NewPhotoService(deps.S3, deps.Log)

	contactLimiter := middleware.NewContactRateLimiter(deps.Redis)

	v1 := router.Group("/api/v1")
	{
		NewAuthHandler(authService, deps.Log).RegisterRoutes(v1)
		NewDonorHandler(foodService, photoService, authService, deps.Log).RegisterRoutes(v1)
		NewReceiverHandler(foodService, authService, deps.Log).RegisterRoutes(v1)
		NewContactHandler(contactService, authService, contactLimiter, deps.Log).RegisterRoutes(v1)
		NewAdminHandler(adminService, activityService, authService, deps.Log).RegisterRoutes(v1)
	}

	return activityService
}
