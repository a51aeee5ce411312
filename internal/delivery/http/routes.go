package http

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/tendermatch/backend/config"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler, log *zap.Logger) *gin.Engine {
	// Set Gin mode based on environment
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(RecoveryMiddleware())
	router.Use(RequestIDMiddleware())
	router.Use(LoggerMiddleware(log))
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))
	if cfg.RateLimit.PerIP > 0 {
		router.Use(RateLimitMiddleware(cfg.RateLimit.PerIP))
	}

	// Health check endpoint
	router.GET("/health", handler.HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		tenders := v1.Group("/tenders")
		tenders.Use(APIKeyMiddleware(cfg.Server.APIKey))
		{
			tenders.POST("/match", handler.MatchTender)
			tenders.GET("/status", handler.ServiceStatus)
		}
	}

	return router
}
