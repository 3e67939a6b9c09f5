package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/catalog-backend/internal/data/aggregates"
	"github.com/yungbote/catalog-backend/internal/data/repos"
	"github.com/yungbote/catalog-backend/internal/observability"
	"github.com/yungbote/catalog-backend/internal/platform/logger"
)

type Repos struct {
	Product      repos.ProductRepo
	ProductImage repos.ProductImageRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Product:      repos.NewProductRepo(db, log),
		ProductImage: repos.NewProductImageRepo(db, log),
	}
}

type Aggregates struct {
	Product aggregates.ProductAggregate
}

func wireAggregates(db *gorm.DB, log *logger.Logger, reposet Repos, metrics *observability.Metrics) Aggregates {
	log.Info("Wiring aggregates...")
	base := aggregates.BaseDeps{
		DB:    db,
		Log:   log,
		Hooks: aggregates.NewObservabilityHooks(metrics),
	}
	return Aggregates{
		Product: aggregates.NewProductAggregate(aggregates.ProductAggregateDeps{
			BaseDeps: base,
			Products: reposet.Product,
			Images:   reposet.ProductImage,
		}),
	}
}
