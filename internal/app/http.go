package app

import (
	httpserver "github.com/yungbote/moodlog-backend/internal/http"
	httpH "github.com/yungbote/moodlog-backend/internal/http/handlers"
	httpMW "github.com/yungbote/moodlog-backend/internal/http/middleware"
	"github.com/yungbote/moodlog-backend/internal/observability"
	"github.com/yungbote/moodlog-backend/internal/platform/logger"
)

func wireHTTP(log *logger.Logger, cfg Config, s Services, metrics *observability.Metrics, probes ...httpH.Probe) *httpserver.Server {
	log.Info("Wiring router...")
	serviceName := ""
	if cfg.Otel.Enabled {
		serviceName = cfg.Otel.ServiceName
	}
	return httpserver.NewServer(httpserver.RouterConfig{
		Log:         log,
		ServiceName: serviceName,
		Metrics:     metrics,
		CORSOrigins: cfg.CORSOrigins,

		SessionMiddleware: httpMW.NewSessionMiddleware(log, s.Session),
		ImageRateLimiter:  httpMW.NewIPRateLimiter(cfg.GenerateImageRatePerMinute),

		HealthHandler:        httpH.NewHealthHandler(probes...),
		UserHandler:          httpH.NewUserHandler(s.Identity),
		SessionHandler:       httpH.NewSessionHandler(s.Session, s.Identity, cfg.SessionSecureCookie),
		MoodHandler:          httpH.NewMoodHandler(s.Moods),
		GenerateImageHandler: httpH.NewGenerateImageHandler(log, s.Images, s.Placeholder),
	})
}
