package prediction

import (
	"context"
	"sync"

	"github.com/kilianp07/gridpilot/core/model"
)

// MemoryHistory keeps the most recent demand observations in memory.
type MemoryHistory struct {
	mu   sync.RWMutex
	buf  []model.ForecastPoint
	size int
}

// NewMemoryHistory keeps up to size observations.
func NewMemoryHistory(size int) *MemoryHistory {
	if size <= 0 {
		size = HistoryWindow
	}
	return &MemoryHistory{size: size}
}

// Record appends an observation, evicting the oldest when full.
func (h *MemoryHistory) Record(p model.ForecastPoint) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.buf = append(h.buf, p)
	if len(h.buf) > h.size {
		h.buf = append(h.buf[:0], h.buf[len(h.buf)-h.size:]...)
	}
}

// Len returns the number of stored observations.
func (h *MemoryHistory) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.buf)
}

// Recent implements History.
func (h *MemoryHistory) Recent(_ context.Context, limit int) ([]model.ForecastPoint, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := len(h.buf)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]model.ForecastPoint, n)
	copy(out, h.buf[len(h.buf)-n:])
	return out, nil
}
