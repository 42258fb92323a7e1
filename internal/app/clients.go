package app

import (
	"context"
	"fmt"
	"strings"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/moodlog-backend/internal/imagegen"
	"github.com/yungbote/moodlog-backend/internal/platform/gcp"
	"github.com/yungbote/moodlog-backend/internal/platform/gemini"
	"github.com/yungbote/moodlog-backend/internal/platform/logger"
	"github.com/yungbote/moodlog-backend/internal/platform/openai"
	"github.com/yungbote/moodlog-backend/internal/platform/pollinations"
	"github.com/yungbote/moodlog-backend/internal/platform/redis"
)

// Clients holds the external backends. Every field is optional: a nil
// backend disables the features that depend on it.
type Clients struct {
	Redis  *goredis.Client
	Bucket gcp.BucketService
	Images imagegen.Backends
}

func wireClients(ctx context.Context, log *logger.Logger, cfg Config) (Clients, error) {
	var out Clients

	if strings.TrimSpace(cfg.RedisAddr) != "" {
		rdb, err := redis.NewClient(ctx, log, redis.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			// The identity cache is an optimization; run without it.
			log.Warn("Redis unavailable, identity cache disabled", "error", err)
		} else {
			out.Redis = rdb
		}
	}

	bucket, err := resolveBucketService(ctx, log, cfg)
	if err != nil {
		out.Close()
		return Clients{}, err
	}
	out.Bucket = bucket

	out.Images = imageBackends(log, cfg)
	return out, nil
}

func imageBackends(log *logger.Logger, cfg Config) imagegen.Backends {
	var b imagegen.Backends

	if strings.TrimSpace(cfg.GeminiAPIKey) != "" {
		g, err := gemini.NewClient(log, gemini.Config{APIKey: cfg.GeminiAPIKey, BaseURL: cfg.GeminiBaseURL})
		if err != nil {
			log.Warn("Gemini client init failed, gemini providers skipped", "error", err)
		} else {
			b.Gemini = g
		}
	} else {
		log.Info("GEMINI_API_KEY not set, gemini providers skipped")
	}

	if strings.TrimSpace(cfg.OpenAIAPIKey) != "" {
		b.OpenAI = func(model, size string) (openai.ImageClient, error) {
			c, err := openai.NewImageClient(log, openai.Config{
				APIKey:  cfg.OpenAIAPIKey,
				BaseURL: cfg.OpenAIBaseURL,
				Model:   model,
				Size:    size,
			})
			if err != nil {
				return nil, fmt.Errorf("openai image client: %w", err)
			}
			return c, nil
		}
	} else {
		log.Info("OPENAI_API_KEY not set, dalle providers skipped")
	}

	b.Pollinations = pollinations.NewClient(log, pollinations.Config{BaseURL: cfg.PollinationsBaseURL})
	return b
}

func (c *Clients) Close() {
	if c.Redis != nil {
		_ = c.Redis.Close()
		c.Redis = nil
	}
	if c.Bucket != nil {
		_ = c.Bucket.Close()
		c.Bucket = nil
	}
}
