package http

import (
	"github.com/gin-gonic/gin"

	"github.com/furnilens/backend/config"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler) *gin.Engine {
	// Set Gin mode based on environment
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(RequestIDMiddleware())
	router.Use(RecoveryMiddleware())
	router.Use(LoggerMiddleware())
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	// Health check endpoint
	router.GET("/health", handler.HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	v1.Use(RateLimitMiddleware(cfg.RateLimit.PerIP))
	{
		v1.POST("/search", handler.Search)
		v1.GET("/search/suggestions", handler.Suggestions)

		sessions := v1.Group("/sessions")
		{
			sessions.GET("/:id", handler.GetSession)
			sessions.DELETE("/:id", handler.ClearSession)
		}

		v1.GET("/analytics", handler.Analytics)
		v1.GET("/categories", handler.Categories)
		v1.GET("/brands", handler.Brands)
	}

	return router
}
