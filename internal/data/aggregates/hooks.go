package aggregates

import (
	"time"

	"github.com/yungbote/catalog-backend/internal/observability"
)

// Hooks receives one signal per committed or failed product write, plus the
// number of image rows a committed write inserted.
type Hooks interface {
	ObserveOperation(op, status string, dur time.Duration)
	IncConflict(op string)
	ObserveImagesWritten(op string, n int)
}

type noopHooks struct{}

func (noopHooks) ObserveOperation(string, string, time.Duration) {}
func (noopHooks) IncConflict(string)                             {}
func (noopHooks) ObserveImagesWritten(string, int)               {}

type metricsHooks struct {
	metrics *observability.Metrics
}

// NewObservabilityHooks reports product writes to the catalog metrics. A nil
// metrics set yields hooks that drop everything.
func NewObservabilityHooks(metrics *observability.Metrics) Hooks {
	if metrics == nil {
		return noopHooks{}
	}
	return metricsHooks{metrics: metrics}
}

func (h metricsHooks) ObserveOperation(op, status string, dur time.Duration) {
	h.metrics.ObserveAggregateOperation(op, status, dur)
}

func (h metricsHooks) IncConflict(op string) {
	h.metrics.IncAggregateConflict(op)
}

func (h metricsHooks) ObserveImagesWritten(op string, n int) {
	h.metrics.ObserveImagesWritten(op, n)
}
