package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	configs "github.com/streamhub/accounts/config"
	"github.com/streamhub/accounts/internal/constants"
	"github.com/streamhub/accounts/internal/handler"
	"github.com/streamhub/accounts/internal/middleware"
	"github.com/streamhub/accounts/internal/repository"
	"github.com/streamhub/accounts/internal/router"
	"github.com/streamhub/accounts/internal/service"
	"github.com/streamhub/accounts/pkg/database"
	"github.com/streamhub/accounts/pkg/logger"
	"github.com/streamhub/accounts/pkg/redis"
	"github.com/streamhub/accounts/pkg/storage"
	"go.uber.org/zap"
)

func main() {
	config, err := configs.LoadConfig()
	if err != nil {
		panic("Failed to load config: " + err.Error())
	}

	if err := logger.InitLogger(logger.Config{
		Environment: config.App.Environment,
		LogsPath:    config.App.LogsPath,
	}); err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer logger.Sync()

	logger.GetLogger().Info("Application starting",
		zap.String("app_name", config.App.Name),
		zap.String("environment", config.App.Environment),
		zap.String("version", constants.AppVersion),
	)

	if config.App.Environment == constants.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgresDB(config.Database)
	if err != nil {
		logger.GetLogger().Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.CloseDB(db)

	if err := database.AutoMigrate(db); err != nil {
		logger.GetLogger().Fatal("Failed to run database migrations", zap.Error(err))
	}
	logger.GetLogger().Info("Database migrated successfully")

	userRepo := repository.NewUserRepository(db)

	redisClient := redis.NewClient(config.Redis, logger.GetLogger())
	defer redisClient.Close()

	logger.GetLogger().Info("Redis client initialized",
		zap.Bool("enabled", redisClient.IsEnabled()),
	)

	uploader, err := storage.NewS3Uploader(context.Background(), config.Storage)
	if err != nil {
		logger.GetLogger().Fatal("Failed to initialize media storage", zap.Error(err))
	}

	tokenService := service.NewTokenService(
		config.JWT.AccessSecret,
		config.JWT.RefreshSecret,
		config.JWT.AccessTTL,
		config.JWT.RefreshTTL,
	)
	profileCache := service.NewProfileCache(redisClient)
	userService := service.NewUserService(userRepo, tokenService, uploader, profileCache)

	userHandler := handler.NewUserHandler(userService)
	authHandler := handler.NewAuthHandler(userService, tokenService, handler.CookieConfig{
		Secure: config.CookieSecure(),
	})
	healthHandler := handler.NewHealthHandler(db, redisClient)

	authMiddleware := middleware.NewAuthMiddleware(tokenService, userRepo)

	engine := router.NewRouter(
		userHandler,
		authHandler,
		healthHandler,
		authMiddleware,
		config,
	).SetupRoutes()

	srv := &http.Server{
		Addr:    ":" + config.App.Port,
		Handler: engine,
	}

	go func() {
		logger.GetLogger().Info("Server starting",
			zap.String("port", config.App.Port),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.GetLogger().Fatal("Failed to start server",
				zap.Error(err),
				zap.String("port", config.App.Port),
			)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.GetLogger().Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.GetLogger().Error("Forced shutdown", zap.Error(err))
	}

	logger.GetLogger().Info("Server stopped")
}
