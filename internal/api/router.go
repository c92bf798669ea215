package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/site-generator-api/internal/cache"
	"github.com/site-generator-api/internal/config"
	"github.com/site-generator-api/internal/repository"
	"github.com/site-generator-api/internal/service"
)

// NewRouter creates and configures the Gin router
func NewRouter(services *service.Services, repos *repository.Repositories, contentCache *cache.ContentCache, cfg *config.Config, log zerolog.Logger) *gin.Engine {
	// Set Gin mode
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Middleware
	router.Use(recoveryMiddleware(log))
	router.Use(loggingMiddleware(log))
	router.Use(corsMiddleware())

	// Handlers
	siteHandler := NewSiteHandler(services, log)

	// Health check
	router.GET("/health", healthCheck)
	router.GET("/metrics", metricsHandler(repos, contentCache))

	// API v1
	v1 := router.Group("/v1")
	{
		sites := v1.Group("/sites")
		{
			sites.POST("", siteHandler.CreateSite)
			sites.GET("", siteHandler.ListSites)
			sites.GET("/:id", siteHandler.GetSite)
			sites.PATCH("/:id", siteHandler.UpdateSite)
			sites.DELETE("/:id", siteHandler.DeleteSite)
			sites.POST("/:id/edits", siteHandler.EditSite)
			sites.GET("/:id/versions", siteHandler.ListVersions)
			sites.GET("/:id/versions/:version_id", siteHandler.GetVersion)
			sites.POST("/:id/fork", siteHandler.ForkSite)
		}

		v1.POST("/variations", siteHandler.GenerateVariations)
	}

	return router
}

// healthCheck returns the health status
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"service":   "site-generator-api",
	})
}

// metricsHandler returns store and cache counters
func metricsHandler(repos *repository.Repositories, contentCache *cache.ContentCache) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		usersCount, _ := repos.User.Count(ctx)
		artifactsCount, _ := repos.Artifact.Count(ctx)
		versionsCount, _ := repos.Version.Count(ctx)

		c.JSON(http.StatusOK, gin.H{
			"database": gin.H{
				"users":     usersCount,
				"artifacts": artifactsCount,
				"versions":  versionsCount,
			},
			"generation_cache": gin.H{
				"entries": contentCache.Len(),
			},
			"timestamp": time.Now().Format(time.RFC3339),
		})
	}
}

// recoveryMiddleware handles panics
func recoveryMiddleware(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.Error().Interface("error", err).Msg("Panic recovered")
				c.JSON(http.StatusInternalServerError, gin.H{
					"error": "Internal server error",
				})
				c.Abort()
			}
		}()
		c.Next()
	}
}

// loggingMiddleware logs requests
func loggingMiddleware(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		duration := time.Since(start)
		statusCode := c.Writer.Status()

		event := log.Info()
		if statusCode >= 400 {
			event = log.Warn()
		}
		if statusCode >= 500 {
			event = log.Error()
		}

		event.
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", statusCode).
			Dur("duration", duration).
			Str("client_ip", c.ClientIP()).
			Msg("Request completed")
	}
}

// corsMiddleware handles CORS
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-User-ID")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
