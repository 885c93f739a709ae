package router

import (
	"github.com/gin-gonic/gin"
	"github.com/streamhub/accounts/config"
	"github.com/streamhub/accounts/internal/handler"
	"github.com/streamhub/accounts/internal/middleware"
)

type Router struct {
	userHandler   *handler.UserHandler
	authHandler   *handler.AuthHandler
	healthHandler *handler.HealthHandler

	authMw *middleware.AuthMiddleware
	config *config.Config
}

func NewRouter(
	user *handler.UserHandler,
	auth *handler.AuthHandler,
	health *handler.HealthHandler,
	authMw *middleware.AuthMiddleware,
	cfg *config.Config,
) *Router {
	return &Router{
		userHandler:   user,
		authHandler:   auth,
		healthHandler: health,
		authMw:        authMw,
		config:        cfg,
	}
}

func (r *Router) SetupRoutes() *gin.Engine {
	router := gin.New()

	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.RecoveryMiddleware())
	router.Use(middleware.ContextMiddleware("http"))
	router.Use(middleware.CORS(r.config.App.CORSOrigin))

	api := router.Group("/api")
	{
		api.GET("/health", r.healthHandler.BasicHealth)
		api.GET("/health/detailed", r.healthHandler.HealthCheck)

		v1 := api.Group("/v1")
		{
			v1.Use(middleware.RateLimit(r.config.RateLimit.MaxRequest, r.config.RateLimit.Duration))

			r.userRoutes(v1)
		}
	}

	return router
}
