package app

import (
	"context"
	"errors"
	"fmt"
	"os"

	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/yungbote/catalog-backend/internal/data/cache"
	"github.com/yungbote/catalog-backend/internal/data/db"
	apphttp "github.com/yungbote/catalog-backend/internal/http"
	"github.com/yungbote/catalog-backend/internal/http/validation"
	"github.com/yungbote/catalog-backend/internal/observability"
	"github.com/yungbote/catalog-backend/internal/platform/logger"
)

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Cfg      Config
	Repos    Repos
	Services Services
	Metrics  *observability.Metrics
	Server   *apphttp.Server

	dbService     *db.Service
	redis         *goredis.Client
	otelShutdown  func(context.Context) error
	cancelWorkers context.CancelFunc
}

func New() (*App, error) {
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	log.Info("Loading environment variables...")
	cfg := LoadConfig(log)

	dbService, err := openDatabase(log, cfg)
	if err != nil {
		log.Sync()
		return nil, err
	}
	theDB := dbService.DB()

	if err := validation.Register(); err != nil {
		_ = dbService.Close()
		log.Sync()
		return nil, fmt.Errorf("register validators: %w", err)
	}

	metrics := observability.Init(cfg.MetricsEnabled, log)
	otelShutdown := observability.InitOTel(context.Background(), log, cfg.Otel)

	// the product cache is optional; without REDIS_ADDR lookups go straight to the database
	var rdb *goredis.Client
	var cacheClient goredis.UniversalClient
	if cfg.Redis.Addr != "" {
		rdb, err = cache.Dial(context.Background(), log, cfg.Redis)
		if err != nil {
			log.Warn("product cache disabled", "error", err)
			rdb = nil
		} else {
			cacheClient = rdb
		}
	}

	reposet := wireRepos(theDB, log)
	aggs := wireAggregates(theDB, log, reposet, metrics)
	serviceset, err := wireServices(theDB, log, cfg, reposet, aggs, metrics, cacheClient)
	if err != nil {
		if rdb != nil {
			_ = rdb.Close()
		}
		_ = dbService.Close()
		log.Sync()
		return nil, err
	}

	sqlDB, err := theDB.DB()
	if err != nil {
		_ = dbService.Close()
		log.Sync()
		return nil, fmt.Errorf("unwrap sql db: %w", err)
	}
	handlerset := wireHandlers(log, cfg, serviceset, sqlDB)
	server := wireServer(log, cfg, handlerset, metrics)

	return &App{
		Log:          log,
		DB:           theDB,
		Cfg:          cfg,
		Repos:        reposet,
		Services:     serviceset,
		Metrics:      metrics,
		Server:       server,
		dbService:    dbService,
		redis:        rdb,
		otelShutdown: otelShutdown,
	}, nil
}

// openDatabase connects and migrates. Seeding and the HTTP server share it.
func openDatabase(log *logger.Logger, cfg Config) (*db.Service, error) {
	dbService, err := db.NewService(log, cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("init database: %w", err)
	}
	if cfg.AutoMigrate {
		if err := dbService.AutoMigrateAll(); err != nil {
			_ = dbService.Close()
			return nil, fmt.Errorf("database automigrate: %w", err)
		}
	}
	return dbService, nil
}

// Start launches background collectors. Safe to call once.
func (a *App) Start() {
	if a == nil || a.cancelWorkers != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.cancelWorkers = cancel
	if a.Metrics != nil {
		a.Metrics.StartDBCollector(ctx, a.Log, a.DB, a.Cfg.DBStatsInterval)
	}
}

// Run serves HTTP until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Server == nil {
		return errors.New("app not initialized")
	}
	return a.Server.Run(ctx, a.Cfg.Address(), a.Cfg.ShutdownTimeout)
}

// Seed runs the fixture seed once, outside of HTTP.
func (a *App) Seed(ctx context.Context) (string, error) {
	if a == nil || a.Services.Seed == nil {
		return "", errors.New("seeding is disabled (SEED_ENABLED=false)")
	}
	return a.Services.Seed.RunSeed(ctx)
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.cancelWorkers != nil {
		a.cancelWorkers()
		a.cancelWorkers = nil
	}
	if a.otelShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), a.Cfg.ShutdownTimeout)
		if err := a.otelShutdown(ctx); err != nil && a.Log != nil {
			a.Log.Warn("otel shutdown failed", "error", err)
		}
		cancel()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil && a.Log != nil {
			a.Log.Warn("redis close failed", "error", err)
		}
	}
	if a.dbService != nil {
		if err := a.dbService.Close(); err != nil && a.Log != nil {
			a.Log.Warn("database close failed", "error", err)
		}
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
