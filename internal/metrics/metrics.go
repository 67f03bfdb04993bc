// Package metrics counts provider traffic: requests, failures, page cache
// hits and latencies.
package metrics

import (
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
)

// FetchMetrics is safe for concurrent use. A nil *FetchMetrics records
// nothing.
type FetchMetrics struct {
	RequestLatency *Histogram
	LoadLatency    *Histogram

	Requests    atomic.Uint64
	Errors      atomic.Uint64
	CacheHits   atomic.Uint64
	CacheMisses atomic.Uint64

	startTime time.Time
}

// NewFetchMetrics creates an empty collector.
func NewFetchMetrics() *FetchMetrics {
	return &FetchMetrics{
		RequestLatency: NewHistogram(DefaultHistogramSize),
		LoadLatency:    NewHistogram(64),
		startTime:      time.Now(),
	}
}

// RecordRequest records one network request.
func (m *FetchMetrics) RecordRequest(d time.Duration, err error) {
	if m == nil {
		return
	}
	m.Requests.Add(1)
	if err != nil {
		m.Errors.Add(1)
	}
	m.RequestLatency.Record(d)
}

// RecordCache records a page cache lookup.
func (m *FetchMetrics) RecordCache(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.CacheHits.Add(1)
	} else {
		m.CacheMisses.Add(1)
	}
}

// RecordLoad records a complete meta load.
func (m *FetchMetrics) RecordLoad(d time.Duration) {
	if m == nil {
		return
	}
	m.LoadLatency.Record(d)
}

// LatencyStats summarizes a histogram, in milliseconds.
type LatencyStats struct {
	Mean  float64 `json:"mean"`
	P50   float64 `json:"p50"`
	P95   float64 `json:"p95"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Count int     `json:"count"`
}

// FetchStats is a point in time copy of FetchMetrics.
type FetchStats struct {
	RequestLatency LatencyStats `json:"request_latency"`
	LoadLatency    LatencyStats `json:"load_latency"`

	Requests     uint64  `json:"requests"`
	Errors       uint64  `json:"errors"`
	CacheHits    uint64  `json:"cache_hits"`
	CacheMisses  uint64  `json:"cache_misses"`
	CacheHitRate float64 `json:"cache_hit_rate"` // percentage

	Uptime string `json:"uptime"`
}

// Stats returns the current statistics.
func (m *FetchMetrics) Stats() FetchStats {
	if m == nil {
		return FetchStats{}
	}

	hits, misses := m.CacheHits.Load(), m.CacheMisses.Load()
	hitRate := 0.0
	if hits+misses > 0 {
		hitRate = float64(hits) / float64(hits+misses) * 100
	}

	return FetchStats{
		RequestLatency: m.RequestLatency.Summary(),
		LoadLatency:    m.LoadLatency.Summary(),
		Requests:       m.Requests.Load(),
		Errors:         m.Errors.Load(),
		CacheHits:      hits,
		CacheMisses:    misses,
		CacheHitRate:   hitRate,
		Uptime:         time.Since(m.startTime).Round(time.Second).String(),
	}
}

// Fields returns the statistics as log fields.
func (s FetchStats) Fields() logrus.Fields {
	return logrus.Fields{
		"requests":       s.Requests,
		"errors":         s.Errors,
		"cache_hit_rate": s.CacheHitRate,
		"request_p95_ms": s.RequestLatency.P95,
		"loads":          s.LoadLatency.Count,
		"load_mean_ms":   s.LoadLatency.Mean,
		"uptime":         s.Uptime,
	}
}
