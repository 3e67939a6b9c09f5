package app

import (
	apphttp "github.com/yungbote/catalog-backend/internal/http"
	httpH "github.com/yungbote/catalog-backend/internal/http/handlers"
	"github.com/yungbote/catalog-backend/internal/observability"
	"github.com/yungbote/catalog-backend/internal/platform/logger"
)

type Handlers struct {
	Health  *httpH.HealthHandler
	Product *httpH.ProductHandler
	File    *httpH.FileHandler
	Seed    *httpH.SeedHandler
}

func wireHandlers(log *logger.Logger, cfg Config, serviceset Services, db httpH.Pinger) Handlers {
	log.Info("Wiring handlers...")
	h := Handlers{
		Health:  httpH.NewHealthHandler(db),
		Product: httpH.NewProductHandler(serviceset.Product),
		File:    httpH.NewFileHandler(serviceset.File, cfg.UploadMaxBytes),
	}
	if serviceset.Seed != nil {
		h.Seed = httpH.NewSeedHandler(serviceset.Seed)
	}
	return h
}

func routerConfig(log *logger.Logger, cfg Config, handlerset Handlers, metrics *observability.Metrics) apphttp.RouterConfig {
	return apphttp.RouterConfig{
		Log:            log,
		Metrics:        metrics,
		CORSOrigins:    cfg.CORSOrigins,
		TracingEnabled: cfg.Otel.Enabled,
		ServiceName:    cfg.Otel.ServiceName,
		HealthHandler:  handlerset.Health,
		ProductHandler: handlerset.Product,
		FileHandler:    handlerset.File,
		SeedHandler:    handlerset.Seed,
	}
}

func wireServer(log *logger.Logger, cfg Config, handlerset Handlers, metrics *observability.Metrics) *apphttp.Server {
	return apphttp.NewServer(routerConfig(log, cfg, handlerset, metrics))
}
