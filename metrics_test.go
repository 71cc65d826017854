package userauth

import (
	"sync"
	"testing"
	"time"
)

func TestMetricsDisabledNoIncrement(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: false})
	m.Inc(MetricBasicAuthSuccess)

	if got := m.Value(MetricBasicAuthSuccess); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
	if snap := m.Snapshot(); len(snap.Counters) != 0 || len(snap.Histograms) != 0 {
		t.Fatalf("expected empty snapshot, got %+v", snap)
	}
}

func TestMetricsNilIsSafe(t *testing.T) {
	var m *Metrics
	m.Inc(MetricSessionCreated)
	m.Observe(MetricResolveLatency, time.Millisecond)
	if m.Value(MetricSessionCreated) != 0 || m.Enabled() {
		t.Fatal("expected nil metrics to record nothing")
	}
}

func TestMetricsConcurrentIncrementSafe(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true})

	const goroutines = 32
	const perG = 4000

	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < perG; j++ {
				m.Inc(MetricSessionResolved)
			}
		}()
	}
	wg.Wait()

	want := uint64(goroutines * perG)
	if got := m.Value(MetricSessionResolved); got != want {
		t.Fatalf("expected %d, got %d", want, got)
	}
}

func TestMetricsHistogramBucketCorrectness(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true, EnableLatencyHistograms: true})

	observations := []time.Duration{
		5 * time.Millisecond,
		10 * time.Millisecond,
		25 * time.Millisecond,
		50 * time.Millisecond,
		100 * time.Millisecond,
		250 * time.Millisecond,
		500 * time.Millisecond,
		700 * time.Millisecond,
	}
	for _, d := range observations {
		m.Observe(MetricResolveLatency, d)
	}
	m.Observe(MetricSessionCreated, time.Millisecond)

	snap := m.Snapshot()
	buckets := snap.Histograms[MetricResolveLatency]
	if len(buckets) != histBucketCount {
		t.Fatalf("expected %d buckets, got %d", histBucketCount, len(buckets))
	}
	for i, v := range buckets {
		if v != 1 {
			t.Fatalf("bucket %d: expected 1, got %d", i, v)
		}
	}
	if _, ok := snap.Counters[MetricResolveLatency]; ok {
		t.Fatal("histogram id must not appear among counters")
	}
	if len(snap.Histograms) != 1 {
		t.Fatalf("expected only the latency histogram, got %d", len(snap.Histograms))
	}
}

func TestMetricsLatencyRequiresFlag(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true})
	m.Observe(MetricResolveLatency, time.Millisecond)

	if _, ok := m.Snapshot().Histograms[MetricResolveLatency]; ok {
		t.Fatal("expected no histogram when latency is disabled")
	}
}

func TestBucketIndexBoundaries(t *testing.T) {
	cases := []struct {
		d    time.Duration
		want int
	}{
		{0, 0},
		{300 * time.Microsecond, 0},
		{5*time.Millisecond + 900*time.Microsecond, 0},
		{6 * time.Millisecond, 1},
		{26 * time.Millisecond, 3},
		{500 * time.Millisecond, 6},
		{501 * time.Millisecond, 7},
		{time.Minute, 7},
	}
	for _, tc := range cases {
		if got := bucketIndex(tc.d); got != tc.want {
			t.Fatalf("bucketIndex(%s) = %d, want %d", tc.d, got, tc.want)
		}
	}
}

func TestMetricsSnapshotListsEveryCounter(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true})
	m.Inc(MetricGuardForbidden)
	m.Inc(metricIDCount)

	snap := m.Snapshot()
	if len(snap.Counters) != int(MetricResolveLatency) {
		t.Fatalf("expected %d counters, got %d", MetricResolveLatency, len(snap.Counters))
	}
	if snap.Counters[MetricGuardForbidden] != 1 {
		t.Fatalf("guard forbidden = %d", snap.Counters[MetricGuardForbidden])
	}
}
