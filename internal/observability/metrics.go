package observability

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/common/expfmt"
	"gorm.io/gorm"

	"github.com/yungbote/catalog-backend/internal/platform/logger"
)

type Metrics struct {
	registry *prometheus.Registry

	apiRequests *prometheus.CounterVec
	apiLatency  *prometheus.HistogramVec
	apiInflight prometheus.Gauge
	apiErrors   prometheus.Counter

	aggregateOps       *prometheus.CounterVec
	aggregateLatency   *prometheus.HistogramVec
	aggregateConflicts *prometheus.CounterVec
	imagesWritten      *prometheus.CounterVec

	uploads      *prometheus.CounterVec
	uploadBytes  prometheus.Counter
	seedRuns     *prometheus.CounterVec
	seedProducts prometheus.Counter

	productCache *prometheus.CounterVec

	dbStats *prometheus.GaugeVec
}

// New builds the catalog metrics on a private registry so tests and
// multiple instances never collide on the global one.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		apiRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "catalog_api_requests_total",
			Help: "Total API requests by method/route/status.",
		}, []string{"method", "route", "status"}),
		apiLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "catalog_api_request_duration_seconds",
			Help:    "API request latency in seconds by method/route/status.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		}, []string{"method", "route", "status"}),
		apiInflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "catalog_api_inflight_requests",
			Help: "In-flight API requests.",
		}),
		apiErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "catalog_api_requests_error_total",
			Help: "Total API requests with 5xx status.",
		}),

		aggregateOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "catalog_aggregate_operations_total",
			Help: "Aggregate writes by operation/status.",
		}, []string{"operation", "status"}),
		aggregateLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "catalog_aggregate_operation_duration_seconds",
			Help:    "Aggregate write latency in seconds by operation/status.",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation", "status"}),
		aggregateConflicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "catalog_aggregate_conflicts_total",
			Help: "Unique-key conflicts by operation.",
		}, []string{"operation"}),
		imagesWritten: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "catalog_product_images_written_total",
			Help: "Product image rows inserted by committed writes, by operation.",
		}, []string{"operation"}),

		uploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "catalog_uploads_total",
			Help: "Product image uploads by outcome.",
		}, []string{"outcome"}),
		uploadBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "catalog_upload_bytes_total",
			Help: "Bytes written for accepted uploads.",
		}),
		seedRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "catalog_seed_runs_total",
			Help: "Seed runs by status.",
		}, []string{"status"}),
		seedProducts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "catalog_seed_products_total",
			Help: "Products created by seed runs.",
		}),

		productCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "catalog_product_cache_total",
			Help: "Product lookup cache results by outcome.",
		}, []string{"result"}),

		dbStats: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "catalog_db_pool",
			Help: "database/sql pool statistics.",
		}, []string{"stat"}),
	}
	m.registry.MustRegister(
		m.apiRequests,
		m.apiLatency,
		m.apiInflight,
		m.apiErrors,
		m.aggregateOps,
		m.aggregateLatency,
		m.aggregateConflicts,
		m.imagesWritten,
		m.uploads,
		m.uploadBytes,
		m.seedRuns,
		m.seedProducts,
		m.productCache,
		m.dbStats,
	)
	return m
}

// Init returns nil when disabled; every method is safe on a nil receiver.
func Init(enabled bool, log *logger.Logger) *Metrics {
	if !enabled {
		return nil
	}
	if log != nil {
		log.Info("metrics enabled")
	}
	return New()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) WriteHTTP(w http.ResponseWriter, r *http.Request) {
	m.Handler().ServeHTTP(w, r)
}

// WritePrometheus dumps every family in text format.
func (m *Metrics) WritePrometheus(w io.Writer) error {
	if m == nil {
		return nil
	}
	families, err := m.registry.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}

func label(v string) string {
	if v = strings.TrimSpace(v); v == "" {
		return "unknown"
	}
	return v
}

func (m *Metrics) ObserveAPI(method, route, status string, dur time.Duration) {
	if m == nil {
		return
	}
	if method == "" {
		method = "UNKNOWN"
	}
	if route == "" {
		route = "unknown"
	}
	if status == "" {
		status = "0"
	}
	m.apiRequests.WithLabelValues(method, route, status).Inc()
	m.apiLatency.WithLabelValues(method, route, status).Observe(dur.Seconds())
	if strings.HasPrefix(status, "5") {
		m.apiErrors.Inc()
	}
}

func (m *Metrics) ApiInflightInc() {
	if m == nil {
		return
	}
	m.apiInflight.Inc()
}

func (m *Metrics) ApiInflightDec() {
	if m == nil {
		return
	}
	m.apiInflight.Dec()
}

func (m *Metrics) ObserveAggregateOperation(op, status string, dur time.Duration) {
	if m == nil {
		return
	}
	op, status = label(op), label(status)
	m.aggregateOps.WithLabelValues(op, status).Inc()
	m.aggregateLatency.WithLabelValues(op, status).Observe(dur.Seconds())
}

func (m *Metrics) IncAggregateConflict(op string) {
	if m == nil {
		return
	}
	m.aggregateConflicts.WithLabelValues(label(op)).Inc()
}

// ObserveImagesWritten counts image rows a committed write inserted.
func (m *Metrics) ObserveImagesWritten(op string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.imagesWritten.WithLabelValues(label(op)).Add(float64(n))
}

// ObserveUpload records one upload outcome: accepted, rejected or failed.
func (m *Metrics) ObserveUpload(outcome string, bytes int64) {
	if m == nil {
		return
	}
	m.uploads.WithLabelValues(label(outcome)).Inc()
	if bytes > 0 {
		m.uploadBytes.Add(float64(bytes))
	}
}

func (m *Metrics) ObserveSeedRun(status string, created int) {
	if m == nil {
		return
	}
	m.seedRuns.WithLabelValues(label(status)).Inc()
	if created > 0 {
		m.seedProducts.Add(float64(created))
	}
}

// ObserveProductCache records hit, miss or error for one cached lookup.
func (m *Metrics) ObserveProductCache(result string) {
	if m == nil {
		return
	}
	m.productCache.WithLabelValues(label(result)).Inc()
}

// StartDBCollector samples the connection pool until ctx is done.
func (m *Metrics) StartDBCollector(ctx context.Context, log *logger.Logger, db *gorm.DB, interval time.Duration) {
	if m == nil || db == nil {
		return
	}
	if interval <= 0 {
		interval = 10 * time.Second
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := m.CollectDBStats(db); err != nil && log != nil {
					log.Warn("metrics: db stats unavailable", "error", err)
				}
			}
		}
	}()
}

func (m *Metrics) CollectDBStats(db *gorm.DB) error {
	if m == nil || db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	stats := sqlDB.Stats()
	m.dbStats.WithLabelValues("open_connections").Set(float64(stats.OpenConnections))
	m.dbStats.WithLabelValues("in_use").Set(float64(stats.InUse))
	m.dbStats.WithLabelValues("idle").Set(float64(stats.Idle))
	m.dbStats.WithLabelValues("wait_count").Set(float64(stats.WaitCount))
	m.dbStats.WithLabelValues("wait_duration_seconds").Set(stats.WaitDuration.Seconds())
	m.dbStats.WithLabelValues("max_open_connections").Set(float64(stats.MaxOpenConnections))
	return nil
}
