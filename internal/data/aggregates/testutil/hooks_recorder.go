package testutil

import (
	"sync"
	"time"

	"github.com/yungbote/catalog-backend/internal/data/aggregates"
)

// HooksRecorder captures aggregate hook signals in tests.
type HooksRecorder struct {
	mu sync.Mutex

	Operations []OperationEvent
	Conflicts  []string
	Images     map[string]int
}

type OperationEvent struct {
	Name     string
	Status   string
	Duration time.Duration
}

var _ aggregates.Hooks = (*HooksRecorder)(nil)

func (h *HooksRecorder) ObserveOperation(name, status string, dur time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Operations = append(h.Operations, OperationEvent{
		Name:     name,
		Status:   status,
		Duration: dur,
	})
}

func (h *HooksRecorder) IncConflict(name string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Conflicts = append(h.Conflicts, name)
}

func (h *HooksRecorder) ObserveImagesWritten(name string, n int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.Images == nil {
		h.Images = map[string]int{}
	}
	h.Images[name] += n
}

// ImagesWritten returns the image rows reported for one operation name.
func (h *HooksRecorder) ImagesWritten(name string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.Images[name]
}

// Statuses returns the recorded statuses for one operation name, in order.
func (h *HooksRecorder) Statuses(name string) []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	var out []string
	for _, op := range h.Operations {
		if op.Name == name {
			out = append(out, op.Status)
		}
	}
	return out
}
