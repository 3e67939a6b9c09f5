package app

import (
	"strings"
	"time"

	"github.com/yungbote/catalog-backend/internal/data/cache"
	"github.com/yungbote/catalog-backend/internal/data/db"
	"github.com/yungbote/catalog-backend/internal/observability"
	"github.com/yungbote/catalog-backend/internal/platform/envutil"
	"github.com/yungbote/catalog-backend/internal/platform/logger"
)

const (
	defaultPort          = "3000"
	defaultHostAPI       = "http://localhost:3000/api"
	defaultStaticDir     = "./static/products"
	defaultUploadMaxSize = 10 << 20
)

type Config struct {
	Port            string
	HostAPI         string
	ShutdownTimeout time.Duration

	DB          db.Config
	AutoMigrate bool

	StaticProductsDir string
	UploadMaxBytes    int64

	SeedEnabled    bool
	MetricsEnabled bool
	CORSOrigins    []string

	Redis           cache.RedisConfig
	ProductCacheTTL time.Duration

	DBStatsInterval time.Duration
	Otel            observability.OtelConfig
}

func (c Config) Address() string {
	port := strings.TrimPrefix(strings.TrimSpace(c.Port), ":")
	if port == "" {
		port = defaultPort
	}
	return ":" + port
}

func LoadConfig(log *logger.Logger) Config {
	cfg := Config{
		Port:            envutil.String("PORT", defaultPort, log),
		HostAPI:         strings.TrimRight(envutil.String("HOST_API", defaultHostAPI, log), "/"),
		ShutdownTimeout: time.Duration(envutil.Int("SHUTDOWN_TIMEOUT_SECONDS", 15, log)) * time.Second,

		DB: db.Config{
			Driver:       envutil.String("DB_DRIVER", db.DriverPostgres, log),
			Host:         envutil.String("POSTGRES_HOST", "localhost", log),
			Port:         envutil.String("POSTGRES_PORT", "5432", log),
			User:         envutil.String("POSTGRES_USER", "postgres", log),
			Password:     envutil.String("POSTGRES_PASSWORD", "", log),
			Name:         envutil.String("POSTGRES_NAME", "catalog", log),
			SSLMode:      envutil.String("POSTGRES_SSLMODE", "disable", log),
			SQLitePath:   envutil.String("SQLITE_PATH", "catalog.db", log),
			MaxOpenConns: envutil.Int("DB_MAX_OPEN_CONNS", 20, log),
			MaxIdleConns: envutil.Int("DB_MAX_IDLE_CONNS", 5, log),
		},
		AutoMigrate: envutil.Bool("DB_AUTO_MIGRATE", true, log),

		StaticProductsDir: envutil.String("STATIC_PRODUCTS_DIR", defaultStaticDir, log),
		UploadMaxBytes:    envutil.Int64("UPLOAD_MAX_BYTES", defaultUploadMaxSize, log),

		SeedEnabled:    envutil.Bool("SEED_ENABLED", true, log),
		MetricsEnabled: envutil.Bool("METRICS_ENABLED", false, log),
		CORSOrigins:    envutil.List("CORS_ALLOW_ORIGINS", nil, log),

		Redis: cache.RedisConfig{
			Addr:     envutil.String("REDIS_ADDR", "", log),
			Password: envutil.String("REDIS_PASSWORD", "", log),
			DB:       envutil.Int("REDIS_DB", 0, log),
		},
		ProductCacheTTL: time.Duration(envutil.Int("PRODUCT_CACHE_TTL_SECONDS", 60, log)) * time.Second,

		DBStatsInterval: time.Duration(envutil.Int("DB_STATS_INTERVAL_SECONDS", 15, log)) * time.Second,
		Otel: observability.OtelConfig{
			Enabled:     envutil.Bool("OTEL_ENABLED", false, log),
			ServiceName: envutil.String("OTEL_SERVICE_NAME", "catalog-backend", log),
			Environment: envutil.String("OTEL_ENVIRONMENT", envutil.String("LOG_MODE", "development", log), log),
			Version:     envutil.String("OTEL_SERVICE_VERSION", "dev", log),
			Endpoint:    envutil.String("OTEL_EXPORTER_OTLP_ENDPOINT", "", log),
			Headers:     observability.ParseHeaders(envutil.String("OTEL_EXPORTER_OTLP_HEADERS", "", log)),
			Insecure:    envutil.Bool("OTEL_EXPORTER_OTLP_INSECURE", false, log),
		},
	}
	cfg.Otel.SampleRatio = float64(envutil.Int("OTEL_SAMPLE_PERCENT", 100, log)) / 100

	if cfg.UploadMaxBytes <= 0 {
		cfg.UploadMaxBytes = defaultUploadMaxSize
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 15 * time.Second
	}
	if cfg.HostAPI == "" {
		cfg.HostAPI = defaultHostAPI
	}
	return cfg
}
