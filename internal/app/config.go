package app

import (
	"strings"
	"time"

	"github.com/yungbote/moodlog-backend/internal/data/db"
	"github.com/yungbote/moodlog-backend/internal/observability"
	"github.com/yungbote/moodlog-backend/internal/platform/envutil"
	"github.com/yungbote/moodlog-backend/internal/platform/logger"
	"github.com/yungbote/moodlog-backend/internal/services"
)

const defaultSessionSecret = "moodlog-dev-secret"

type Config struct {
	Port        string
	Environment string
	CORSOrigins []string

	DB            db.Config
	DBAutoMigrate bool

	RedisAddr        string
	RedisPassword    string
	RedisDB          int
	IdentityCacheTTL time.Duration

	SessionSecret       string
	SessionTTL          time.Duration
	SessionSecureCookie bool

	ImageProvidersFile  string
	DefaultMoodImageURL string
	PlaceholderBaseURL  string
	GeminiAPIKey        string
	GeminiBaseURL       string
	OpenAIAPIKey        string
	OpenAIBaseURL       string
	PollinationsBaseURL string

	MoodImageBucket     string
	MoodImageCDNDomain  string
	MoodImagePublicBase string
	ObjectStorageMode   string
	StorageEmulatorHost string
	InlineImageMaxBytes int

	GenerateImageRatePerMinute int

	MetricsEnabled bool
	Otel           observability.OtelConfig
}

func LoadConfig(log *logger.Logger) Config {
	env := envutil.String("APP_ENV", "development")
	cfg := Config{
		Port:        envutil.String("PORT", "8080"),
		Environment: env,
		CORSOrigins: splitList(envutil.String("CORS_ALLOWED_ORIGINS", "")),

		DB: db.Config{
			Driver:           envutil.String("DB_DRIVER", "postgres"),
			PostgresHost:     envutil.String("POSTGRES_HOST", "localhost"),
			PostgresPort:     envutil.String("POSTGRES_PORT", "5432"),
			PostgresUser:     envutil.String("POSTGRES_USER", "postgres"),
			PostgresPassword: envutil.String("POSTGRES_PASSWORD", ""),
			PostgresName:     envutil.String("POSTGRES_NAME", "moodlog"),
			PostgresSSLMode:  envutil.String("POSTGRES_SSLMODE", "disable"),
			SQLitePath:       envutil.String("SQLITE_PATH", "data/moodlog.db"),
		},
		DBAutoMigrate: envutil.Bool("DB_AUTOMIGRATE", true),

		RedisAddr:        envutil.String("REDIS_ADDR", ""),
		RedisPassword:    envutil.String("REDIS_PASSWORD", ""),
		RedisDB:          envutil.Int("REDIS_DB", 0),
		IdentityCacheTTL: envutil.Duration("IDENTITY_CACHE_TTL", 10*time.Minute),

		SessionSecret:       envutil.String("SESSION_SECRET", defaultSessionSecret),
		SessionTTL:          envutil.Duration("SESSION_TTL", 30*24*time.Hour),
		SessionSecureCookie: envutil.Bool("SESSION_SECURE_COOKIE", env == "production"),

		ImageProvidersFile:  envutil.String("IMAGE_PROVIDERS_FILE", ""),
		DefaultMoodImageURL: envutil.String("DEFAULT_MOOD_IMAGE_URL", services.DefaultMoodImageURL),
		PlaceholderBaseURL:  envutil.String("PLACEHOLDER_BASE_URL", ""),
		GeminiAPIKey:        envutil.String("GEMINI_API_KEY", ""),
		GeminiBaseURL:       envutil.String("GEMINI_BASE_URL", ""),
		OpenAIAPIKey:        envutil.String("OPENAI_API_KEY", ""),
		OpenAIBaseURL:       envutil.String("OPENAI_BASE_URL", ""),
		PollinationsBaseURL: envutil.String("POLLINATIONS_BASE_URL", ""),

		MoodImageBucket:     envutil.String("MOOD_IMAGE_GCS_BUCKET_NAME", ""),
		MoodImageCDNDomain:  envutil.String("MOOD_IMAGE_CDN_DOMAIN", ""),
		MoodImagePublicBase: envutil.String("MOOD_IMAGE_PUBLIC_BASE_URL", ""),
		ObjectStorageMode:   envutil.String("OBJECT_STORAGE_MODE", ""),
		StorageEmulatorHost: envutil.String("STORAGE_EMULATOR_HOST", ""),
		InlineImageMaxBytes: envutil.Int("INLINE_IMAGE_MAX_BYTES", 0),

		GenerateImageRatePerMinute: envutil.Int("GENERATE_IMAGE_RATE_PER_MINUTE", 20),

		MetricsEnabled: envutil.Bool("METRICS_ENABLED", true),
		Otel: observability.OtelConfig{
			Enabled:     envutil.Bool("OTEL_ENABLED", false),
			ServiceName: envutil.String("OTEL_SERVICE_NAME", "moodlog-backend"),
			Environment: env,
			Version:     envutil.String("APP_VERSION", "dev"),
			Endpoint:    envutil.String("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			Headers:     envutil.String("OTEL_EXPORTER_OTLP_HEADERS", ""),
			Insecure:    envutil.Bool("OTEL_EXPORTER_OTLP_INSECURE", false),
			SampleRatio: float64(envutil.Int("OTEL_SAMPLE_PERCENT", 100)) / 100,
		},
	}
	if cfg.SessionSecret == defaultSessionSecret {
		log.Warn("SESSION_SECRET not set, using the development secret")
	}
	return cfg
}

func splitList(raw string) []string {
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
