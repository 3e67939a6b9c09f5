package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/catalog-backend/internal/http/handlers"
	httpMW "github.com/yungbote/catalog-backend/internal/http/middleware"
	"github.com/yungbote/catalog-backend/internal/observability"
	"github.com/yungbote/catalog-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	Metrics        *observability.Metrics
	CORSOrigins    []string
	TracingEnabled bool
	ServiceName    string

	ProductHandler *httpH.ProductHandler
	FileHandler    *httpH.FileHandler
	SeedHandler    *httpH.SeedHandler
	HealthHandler  *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.TracingEnabled {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.CORSOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapF(cfg.Metrics.WriteHTTP))
	}

	api := r.Group("/api")
	{
		// Files
		if cfg.FileHandler != nil {
			api.POST("/files/product", cfg.FileHandler.UploadProductImage)
			api.GET("/files/product/:imageName", cfg.FileHandler.FindProductImage)
		}

		// Products
		if cfg.ProductHandler != nil {
			api.POST("/products", cfg.ProductHandler.Create)
			api.GET("/products", cfg.ProductHandler.FindAll)
			api.GET("/products/:search", cfg.ProductHandler.FindOne)
			api.PATCH("/products/:id", cfg.ProductHandler.Update)
			api.DELETE("/products/:id", cfg.ProductHandler.Remove)
		}

		// Seed
		if cfg.SeedHandler != nil {
			api.GET("/seed", cfg.SeedHandler.ExecuteSeed)
		}
	}

	return r
}
