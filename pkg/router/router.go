package router

import (
	"os"
	"time"

	"storybook-ai/backend/internal/api"
	"storybook-ai/backend/internal/credentials"
	"storybook-ai/backend/internal/service"
	"storybook-ai/backend/pkg/config"
	"storybook-ai/backend/pkg/di"
	"storybook-ai/backend/pkg/errors"
	"storybook-ai/backend/pkg/logger"
	"storybook-ai/backend/pkg/middleware"
	"storybook-ai/backend/pkg/validator"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	ginprometheus "github.com/zsais/go-gin-prometheus"
)

// Router is the main router for the application
type Router struct {
	Engine    *gin.Engine
	Container *di.Container
	Logger    *logger.Logger
	Config    *config.Config
}

// New creates a new router with the given container
func New(container *di.Container) *Router {
	logger.SetGlobal(container.Logger)

	cfg := container.Config

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()

	engine.Use(middleware.RequestIDMiddleware())

	// Use the logger middleware first to capture all requests
	engine.Use(logger.Middleware(container.Logger))

	// Add custom error handler middleware
	engine.Use(errors.ErrorHandler())

	// Add custom recovery middleware with structured logging instead of default
	engine.Use(errors.RecoveryWithLogger())

	engine.Use(corsMiddleware(cfg.Security.AllowedOrigins))
	engine.Use(middleware.BodyLimit(cfg.Security.MaxBodySize))

	if cfg.Observability.MetricsEnabled {
		p := ginprometheus.NewPrometheus("story")
		p.Use(engine)
	}

	if err := validator.RegisterBindings(); err != nil {
		container.Logger.Error("Failed to register request validators", "error", err.Error())
	}

	return &Router{
		Engine:    engine,
		Container: container,
		Logger:    container.Logger,
		Config:    cfg,
	}
}

// SetupRoutes registers all application routes
func (r *Router) SetupRoutes() {
	if r.Config.OpenAPI.SchemaPath != "" {
		r.AddOpenAPIValidation(r.Config.OpenAPI.SchemaPath)
	}

	r.setupHealthRoutes()

	storyHandler := api.NewStoryHandler(
		r.Container.StoryService,
		r.Container.ImageService,
		r.Container.AudioService,
	)
	storyHandler.RegisterRoutes(r.Engine.Group("/api/story"), api.RequireCredentials(r.Container.Resolver))

	if r.Config.Image.ResponseMode == config.ImageModePersist {
		if err := os.MkdirAll(r.Config.Image.Directory, 0o755); err != nil {
			r.Logger.Error("Failed to create image directory", "path", r.Config.Image.Directory, "error", err.Error())
		}
		r.Engine.Static("/"+service.ImagesRoute, r.Config.Image.Directory)
	}
}

// corsMiddleware allows the configured frontends to call the API with
// credential headers and read download filenames
func corsMiddleware(origins []string) gin.HandlerFunc {
	corsConfig := cors.DefaultConfig()
	if len(origins) > 0 {
		corsConfig.AllowOrigins = origins
	} else {
		corsConfig.AllowOrigins = []string{"http://localhost:3000", "http://frontend:3000"}
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = append([]string{"Origin", "Content-Length", "Content-Type", "Accept", middleware.RequestIDHeader}, credentials.Headers...)
	corsConfig.ExposeHeaders = []string{"Content-Disposition", middleware.RequestIDHeader}
	corsConfig.AllowCredentials = true
	corsConfig.MaxAge = 12 * time.Hour
	return cors.New(corsConfig)
}
