package userauth

import (
	"sync/atomic"
	"time"
)

// MetricID names one counter or histogram slot in [Metrics].
type MetricID uint16

const (
	MetricBasicAuthSuccess MetricID = iota
	MetricBasicAuthFailure
	MetricSessionCreated
	MetricSessionCreateFailure
	MetricSessionResolved
	MetricSessionRejected
	MetricSessionExpired
	MetricSessionDestroyed
	MetricSessionDestroyFailure
	MetricStoreFailure
	MetricAccountCreated
	MetricAccountDuplicate
	MetricLoginSuccess
	MetricLoginFailure
	MetricPasswordResetRequest
	MetricPasswordResetConfirm
	MetricPasswordResetFailure
	MetricGuardUnauthorized
	MetricGuardForbidden
	// MetricResolveLatency is the only histogram: time spent in CurrentUser.
	MetricResolveLatency
	metricIDCount
)

// latencyBounds are the upper bounds of every latency bucket but the last,
// which collects the overflow.
var latencyBounds = [...]time.Duration{
	5 * time.Millisecond,
	10 * time.Millisecond,
	25 * time.Millisecond,
	50 * time.Millisecond,
	100 * time.Millisecond,
	250 * time.Millisecond,
	500 * time.Millisecond,
}

const histBucketCount = len(latencyBounds) + 1

// paddedCounter keeps each counter on its own cache line.
type paddedCounter struct {
	atomic.Uint64
	_ [56]byte
}

// MetricsConfig toggles metric collection.
type MetricsConfig struct {
	Enabled                 bool `yaml:"enabled"`
	EnableLatencyHistograms bool `yaml:"enable_latency_histograms"`
}

// Metrics holds lock-free counters shared by the strategies, the middleware
// and the HTTP API. A nil *Metrics is valid and records nothing.
type Metrics struct {
	enabled       bool
	enableLatency bool
	counters      [metricIDCount]paddedCounter
	latency       [histBucketCount]atomic.Uint64
}

// MetricsSnapshot is a point-in-time copy of every counter.
type MetricsSnapshot struct {
	Counters   map[MetricID]uint64
	Histograms map[MetricID][]uint64
}

// NewMetrics returns a Metrics set configured by cfg.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return &Metrics{
		enabled:       cfg.Enabled,
		enableLatency: cfg.Enabled && cfg.EnableLatencyHistograms,
	}
}

// Enabled reports whether counters are recorded.
func (m *Metrics) Enabled() bool {
	return m != nil && m.enabled
}

// Inc adds one to id.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= MetricResolveLatency {
		return
	}
	m.counters[id].Add(1)
}

// Observe records d in the latency histogram. Only MetricResolveLatency is
// a histogram; other ids are ignored.
func (m *Metrics) Observe(id MetricID, d time.Duration) {
	if m == nil || !m.enableLatency || id != MetricResolveLatency {
		return
	}
	m.latency[bucketIndex(d)].Add(1)
}

// Value returns the current count for id.
func (m *Metrics) Value(id MetricID) uint64 {
	if m == nil || id >= MetricResolveLatency {
		return 0
	}
	return m.counters[id].Load()
}

// Snapshot copies every counter, plus the latency buckets when enabled.
// Disabled metrics produce empty maps.
func (m *Metrics) Snapshot() MetricsSnapshot {
	s := MetricsSnapshot{
		Counters:   map[MetricID]uint64{},
		Histograms: map[MetricID][]uint64{},
	}
	if m == nil || !m.enabled {
		return s
	}

	for id := MetricID(0); id < MetricResolveLatency; id++ {
		s.Counters[id] = m.counters[id].Load()
	}
	if m.enableLatency {
		buckets := make([]uint64, histBucketCount)
		for i := range buckets {
			buckets[i] = m.latency[i].Load()
		}
		s.Histograms[MetricResolveLatency] = buckets
	}
	return s
}

// bucketIndex returns the first bucket whose bound is >= d, comparing at
// millisecond resolution.
func bucketIndex(d time.Duration) int {
	d = d.Truncate(time.Millisecond)
	for i, bound := range latencyBounds {
		if d <= bound {
			return i
		}
	}
	return len(latencyBounds)
}
