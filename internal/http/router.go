package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/moodlog-backend/internal/http/handlers"
	httpMW "github.com/yungbote/moodlog-backend/internal/http/middleware"
	"github.com/yungbote/moodlog-backend/internal/observability"
	"github.com/yungbote/moodlog-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log         *logger.Logger
	ServiceName string
	Metrics     *observability.Metrics
	CORSOrigins []string

	SessionMiddleware *httpMW.SessionMiddleware
	ImageRateLimiter  *httpMW.IPRateLimiter

	HealthHandler        *httpH.HealthHandler
	UserHandler          *httpH.UserHandler
	SessionHandler       *httpH.SessionHandler
	MoodHandler          *httpH.MoodHandler
	GenerateImageHandler *httpH.GenerateImageHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.TraceContext())
	r.Use(httpMW.CORS(cfg.CORSOrigins...))
	r.Use(httpMW.Metrics(cfg.Metrics))
	if cfg.SessionMiddleware != nil {
		r.Use(cfg.SessionMiddleware.Attach())
	}
	r.Use(httpMW.RequestLogger(cfg.Log))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
		r.GET("/readyz", cfg.HealthHandler.Ready)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	// Image proxy, kept at the root path for existing clients
	if cfg.GenerateImageHandler != nil {
		limit := httpMW.RateLimit(cfg.ImageRateLimiter)
		r.POST("/generate-image", limit, cfg.GenerateImageHandler.Generate)
		r.POST("/api/generate-image", limit, cfg.GenerateImageHandler.Generate)
	}

	api := r.Group("/api")
	{
		if cfg.UserHandler != nil {
			api.GET("/users", cfg.UserHandler.ListUsers)
		}

		if cfg.SessionHandler != nil {
			api.POST("/session", cfg.SessionHandler.Create)
			api.GET("/session", cfg.SessionHandler.Get)
			api.DELETE("/session", cfg.SessionHandler.Delete)
		}

		if cfg.MoodHandler != nil {
			api.POST("/moods", cfg.MoodHandler.Submit)
			api.GET("/moods/recent", cfg.MoodHandler.ListRecent)
			api.GET("/moods/timeline", cfg.MoodHandler.Timeline)
		}
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": gin.H{"message": "not found", "code": "not_found"}})
	})
	return r
}
