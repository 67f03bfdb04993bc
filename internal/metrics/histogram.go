package metrics

import (
	"math"
	"slices"
	"sync"
	"time"
)

// DefaultHistogramSize bounds the samples a Histogram keeps.
const DefaultHistogramSize = 4096

// Histogram keeps recent duration samples and computes percentiles.
type Histogram struct {
	mu      sync.RWMutex
	samples []float64 // milliseconds
	maxSize int
}

// NewHistogram creates a histogram keeping at most maxSize samples. When
// full, the oldest fifth is dropped.
func NewHistogram(maxSize int) *Histogram {
	if maxSize <= 0 {
		maxSize = DefaultHistogramSize
	}
	return &Histogram{samples: make([]float64, 0, 64), maxSize: maxSize}
}

// Record adds a sample.
func (h *Histogram) Record(d time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.samples = append(h.samples, float64(d.Microseconds())/1000)
	if len(h.samples) > h.maxSize {
		h.samples = h.samples[max(1, h.maxSize/5):]
	}
}

// Summary returns the statistics of the recorded samples.
func (h *Histogram) Summary() LatencyStats {
	h.mu.RLock()
	sorted := slices.Clone(h.samples)
	h.mu.RUnlock()

	if len(sorted) == 0 {
		return LatencyStats{}
	}
	slices.Sort(sorted)

	var sum float64
	for _, v := range sorted {
		sum += v
	}

	return LatencyStats{
		Mean:  sum / float64(len(sorted)),
		P50:   percentile(sorted, 50),
		P95:   percentile(sorted, 95),
		Min:   sorted[0],
		Max:   sorted[len(sorted)-1],
		Count: len(sorted),
	}
}

// Count returns the number of samples kept.
func (h *Histogram) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.samples)
}

// percentile interpolates linearly between the two nearest ranks of sorted.
func percentile(sorted []float64, p float64) float64 {
	index := p / 100 * float64(len(sorted)-1)
	lower, upper := int(math.Floor(index)), int(math.Ceil(index))
	if lower == upper {
		return sorted[lower]
	}
	fraction := index - float64(lower)
	return sorted[lower]*(1-fraction) + sorted[upper]*fraction
}
