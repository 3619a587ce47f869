package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/help-workstation-api/internal/config"
	"github.com/help-workstation-api/internal/models"
	"github.com/help-workstation-api/internal/service"
	"github.com/rs/zerolog"
)

const (
	actorHeader = "X-Actor-ID"
	actorKey    = "actor"
)

// Pinger reports whether a backing store is reachable
type Pinger interface {
	HealthCheck(ctx context.Context) error
}

// NewRouter creates and configures the Gin router. db may be nil, in which
// case /health does not probe the database.
func NewRouter(services *service.Services, cfg *config.Config, db Pinger, log zerolog.Logger) *gin.Engine {
	router := gin.New()

	// Middleware
	router.Use(recoveryMiddleware(log))
	router.Use(loggingMiddleware(log))
	router.Use(corsMiddleware(cfg.Server.AllowedOrigin))
	router.Use(actorMiddleware(cfg.Lifecycle.DefaultActor))

	// Handlers
	articleHandler := NewArticleHandler(services, log)
	taxonomyHandler := NewTaxonomyHandler(services, log)
	messageHandler := NewMessageHandler(services, log)
	exportHandler := NewExportHandler(services, log)

	// Health check
	router.GET("/health", healthCheck(db))
	router.GET("/metrics", metricsHandler(services, log))

	// API v1
	v1 := router.Group("/v1")
	{
		articles := v1.Group("/articles")
		{
			articles.GET("", articleHandler.List)
			articles.POST("", articleHandler.Create)
			articles.GET("/export", exportHandler.StreamExport)
			articles.GET("/:id", articleHandler.Get)
			articles.PUT("/:id", articleHandler.Update)
			articles.GET("/:id/versions", articleHandler.ListVersions)
			articles.GET("/:id/versions/:version_id", articleHandler.GetVersion)
			articles.POST("/:id/publish", articleHandler.Publish)
			articles.POST("/:id/archive", articleHandler.Archive)
			articles.POST("/:id/restore", articleHandler.Restore)
			articles.POST("/:id/deletion", articleHandler.RequestDelete)
			articles.DELETE("/:id/deletion/:token", articleHandler.ConfirmDelete)
		}

		for path, kind := range map[string]models.TermKind{
			"/categories": models.KindCategory,
			"/audiences":  models.KindAudience,
			"/tags":       models.KindTag,
		} {
			terms := v1.Group(path)
			terms.GET("", taxonomyHandler.List(kind))
			terms.POST("", taxonomyHandler.Create(kind))
			terms.PUT("/order", taxonomyHandler.Reorder(kind))
			terms.PUT("/:id", taxonomyHandler.Update(kind))
			terms.DELETE("/:id", taxonomyHandler.Delete(kind))
		}
		v1.GET("/categories/:id/audiences", taxonomyHandler.GetCategoryAudiences)
		v1.PUT("/categories/:id/audiences", taxonomyHandler.SetCategoryAudiences)

		messages := v1.Group("/messages")
		{
			messages.GET("", messageHandler.List)
			messages.POST("", messageHandler.Create)
			messages.GET("/:id", messageHandler.Get)
			messages.PATCH("/:id/status", messageHandler.UpdateStatus)
		}
	}

	return router
}

// healthCheck returns the health status
func healthCheck(db Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		status, code := "healthy", http.StatusOK
		if db != nil {
			ctx, cancel := contextWithTimeout(c, 2*time.Second)
			defer cancel()
			if err := db.HealthCheck(ctx); err != nil {
				status, code = "unhealthy", http.StatusServiceUnavailable
			}
		}

		c.JSON(code, gin.H{
			"status":    status,
			"timestamp": time.Now().Format(time.RFC3339),
			"service":   "help-workstation-api",
		})
	}
}

// metricsHandler returns content and inbox counters
func metricsHandler(services *service.Services, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		stats, err := services.Stats.Collect(c.Request.Context())
		if err != nil {
			respondError(c, log, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"articles":           stats.Articles,
			"messages":           stats.Messages,
			"top_search_queries": stats.TopSearchQueries,
			"timestamp":          time.Now().Format(time.RFC3339),
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
			Str("actor", c.GetString(actorKey)).
			Msg("Request completed")
	}
}

// corsMiddleware handles CORS
func corsMiddleware(origin string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, "+actorHeader)

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

// actorMiddleware records who is making the request
func actorMiddleware(defaultActor string) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := strings.TrimSpace(c.GetHeader(actorHeader))
		if actor == "" {
			actor = defaultActor
		}
		c.Set(actorKey, actor)
		c.Next()
	}
}

// contextWithTimeout creates a context with timeout for handlers
func contextWithTimeout(c *gin.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), timeout)
}
