package app

import (
	"fmt"

	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/yungbote/catalog-backend/internal/data/cache"
	"github.com/yungbote/catalog-backend/internal/observability"
	"github.com/yungbote/catalog-backend/internal/platform/localstore"
	"github.com/yungbote/catalog-backend/internal/platform/logger"
	"github.com/yungbote/catalog-backend/internal/seed"
	"github.com/yungbote/catalog-backend/internal/services"
)

type Services struct {
	Product services.ProductService
	File    services.FileService
	Seed    services.SeedService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, reposet Repos, aggs Aggregates, metrics *observability.Metrics, rdb goredis.UniversalClient) (Services, error) {
	log.Info("Wiring services...")

	store, err := localstore.New(cfg.StaticProductsDir, log)
	if err != nil {
		return Services{}, fmt.Errorf("init product image store: %w", err)
	}

	var opts []services.ProductServiceOption
	if rdb != nil {
		opts = append(opts, services.WithProductCache(cache.NewRedisProductCache(log, rdb, cfg.ProductCacheTTL, metrics)))
	}
	product := services.NewProductService(db, log, reposet.Product, aggs.Product, opts...)

	out := Services{
		Product: product,
		File:    services.NewFileService(log, store, cfg.HostAPI, metrics),
	}

	if cfg.SeedEnabled {
		fixtures, err := seed.Products()
		if err != nil {
			return Services{}, fmt.Errorf("load seed fixtures: %w", err)
		}
		out.Seed = services.NewSeedService(log, product, fixtures, metrics)
	}
	return out, nil
}
