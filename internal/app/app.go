package app

import (
	"context"
	"fmt"
	"time"

	"github.com/yungbote/moodlog-backend/internal/data/db"
	httpserver "github.com/yungbote/moodlog-backend/internal/http"
	httpH "github.com/yungbote/moodlog-backend/internal/http/handlers"
	"github.com/yungbote/moodlog-backend/internal/observability"
	"github.com/yungbote/moodlog-backend/internal/platform/envutil"
	"github.com/yungbote/moodlog-backend/internal/platform/logger"
)

const shutdownTimeout = 15 * time.Second

type App struct {
	Log      *logger.Logger
	DB       *db.Service
	Server   *httpserver.Server
	Cfg      Config
	Clients  Clients
	Repos    Repos
	Services Services
	Metrics  *observability.Metrics

	otelShutdown func(context.Context) error
}

func New(ctx context.Context) (*App, error) {
	logMode := envutil.String("LOG_MODE", "development")
	log, err := logger.New(logMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	cfg := LoadConfig(log)
	otelShutdown := observability.InitOTel(ctx, log, cfg.Otel)
	var metrics *observability.Metrics
	if cfg.MetricsEnabled {
		metrics = observability.Init(log)
	}

	theDB, err := db.Open(cfg.DB, log)
	if err != nil {
		_ = otelShutdown(ctx)
		log.Sync()
		return nil, fmt.Errorf("init db: %w", err)
	}
	if cfg.DBAutoMigrate {
		if err := theDB.AutoMigrateAll(); err != nil {
			_ = theDB.Close()
			_ = otelShutdown(ctx)
			log.Sync()
			return nil, fmt.Errorf("automigrate: %w", err)
		}
	}

	clients, err := wireClients(ctx, log, cfg)
	if err != nil {
		_ = theDB.Close()
		_ = otelShutdown(ctx)
		log.Sync()
		return nil, fmt.Errorf("init clients: %w", err)
	}

	reposet := wireRepos(theDB.DB(), clients.Redis, log, cfg)
	svcs, err := wireServices(log, cfg, clients, reposet, metrics)
	if err != nil {
		clients.Close()
		_ = theDB.Close()
		_ = otelShutdown(ctx)
		log.Sync()
		return nil, fmt.Errorf("wire services: %w", err)
	}

	return &App{
		Log:          log,
		DB:           theDB,
		Server:       wireHTTP(log, cfg, svcs, metrics, readinessProbes(theDB, clients)...),
		Cfg:          cfg,
		Clients:      clients,
		Repos:        reposet,
		Services:     svcs,
		Metrics:      metrics,
		otelShutdown: otelShutdown,
	}, nil
}

// Run serves until ctx is done, then drains in-flight requests.
func (a *App) Run(ctx context.Context) error {
	addr := ":" + a.Cfg.Port
	errCh := make(chan error, 1)
	go func() {
		a.Log.Info("Server listening", "addr", addr)
		errCh <- a.Server.Run(addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.Log.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return <-errCh
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.otelShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := a.otelShutdown(ctx); err != nil {
			a.Log.Warn("otel shutdown failed", "error", err)
		}
		cancel()
	}
	a.Clients.Close()
	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			a.Log.Warn("db close failed", "error", err)
		}
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}

func readinessProbes(theDB *db.Service, clients Clients) []httpH.Probe {
	probes := []httpH.Probe{{
		Name: "db",
		Check: func(ctx context.Context) error {
			sqlDB, err := theDB.DB().DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}}
	if clients.Redis != nil {
		rdb := clients.Redis
		probes = append(probes, httpH.Probe{
			Name:  "redis",
			Check: func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		})
	}
	return probes
}
