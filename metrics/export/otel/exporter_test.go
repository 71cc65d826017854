package otel

import (
	"context"
	"sync"
	"testing"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/CipherPhantom/userauth"
)

type fakeSource struct {
	mu       sync.RWMutex
	snapshot userauth.MetricsSnapshot
	dropped  uint64
}

func (f *fakeSource) MetricsSnapshot() userauth.MetricsSnapshot {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := userauth.MetricsSnapshot{
		Counters:   make(map[userauth.MetricID]uint64, len(f.snapshot.Counters)),
		Histograms: make(map[userauth.MetricID][]uint64, len(f.snapshot.Histograms)),
	}
	for k, v := range f.snapshot.Counters {
		out.Counters[k] = v
	}
	for k, buckets := range f.snapshot.Histograms {
		out.Histograms[k] = append([]uint64(nil), buckets...)
	}
	return out
}

func (f *fakeSource) AuditDropped() uint64 {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.dropped
}

func newMeter() (*sdkmetric.ManualReader, *sdkmetric.MeterProvider) {
	reader := sdkmetric.NewManualReader()
	return reader, sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect failed: %v", err)
	}
	out := map[string]metricdata.Metrics{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func TestExporterRegistersAndCollects(t *testing.T) {
	reader, provider := newMeter()
	src := &fakeSource{
		snapshot: userauth.MetricsSnapshot{
			Counters: map[userauth.MetricID]uint64{
				userauth.MetricSessionCreated: 3,
			},
			Histograms: map[userauth.MetricID][]uint64{
				userauth.MetricResolveLatency: {1, 1, 1, 1, 1, 1, 1, 1},
			},
		},
		dropped: 1,
	}

	exp, err := NewExporterFromSource(provider.Meter("userauth-test"), src)
	if err != nil {
		t.Fatalf("NewExporterFromSource failed: %v", err)
	}
	defer func() {
		if err := exp.Close(); err != nil {
			t.Fatalf("Close failed: %v", err)
		}
	}()

	metrics := collect(t, reader)

	created, ok := metrics["userauth_session_created_total"].Data.(metricdata.Sum[int64])
	if !ok || len(created.DataPoints) != 1 || created.DataPoints[0].Value != 3 {
		t.Fatalf("unexpected session counter %+v", metrics["userauth_session_created_total"])
	}

	buckets, ok := metrics["userauth_resolve_latency_seconds_bucket"].Data.(metricdata.Gauge[int64])
	if !ok || len(buckets.DataPoints) != 8 {
		t.Fatalf("expected 8 bucket points, got %+v", metrics["userauth_resolve_latency_seconds_bucket"])
	}
	for _, dp := range buckets.DataPoints {
		le, _ := dp.Attributes.Value("le")
		if le.AsString() == "+Inf" && dp.Value != 8 {
			t.Fatalf("+Inf bucket = %d, want 8", dp.Value)
		}
	}

	dropped, ok := metrics["userauth_audit_dropped_total"].Data.(metricdata.Sum[int64])
	if !ok || dropped.DataPoints[0].Value != 1 {
		t.Fatalf("unexpected dropped counter %+v", metrics["userauth_audit_dropped_total"])
	}
}

func TestExporterRejectsNilInputs(t *testing.T) {
	_, provider := newMeter()

	if _, err := NewExporterFromSource(provider.Meter("userauth-test"), nil); err != ErrNilSource {
		t.Fatalf("expected ErrNilSource, got %v", err)
	}
	if _, err := NewExporterFromSource(nil, &fakeSource{}); err != ErrNilMeter {
		t.Fatalf("expected ErrNilMeter, got %v", err)
	}
	if _, err := NewExporter(provider.Meter("userauth-test"), nil); err != ErrNilSource {
		t.Fatalf("expected ErrNilSource for nil engine, got %v", err)
	}
}

func TestExporterConcurrentCollectNoPanic(t *testing.T) {
	reader, provider := newMeter()
	src := &fakeSource{
		snapshot: userauth.MetricsSnapshot{
			Counters: map[userauth.MetricID]uint64{
				userauth.MetricLoginSuccess: 1,
			},
			Histograms: map[userauth.MetricID][]uint64{
				userauth.MetricResolveLatency: {1, 0, 0, 0, 0, 0, 0, 0},
			},
		},
	}

	exp, err := NewExporterFromSource(provider.Meter("userauth-test"), src)
	if err != nil {
		t.Fatalf("NewExporterFromSource failed: %v", err)
	}
	defer exp.Close()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(v uint64) {
			defer wg.Done()
			src.mu.Lock()
			src.snapshot.Counters[userauth.MetricLoginSuccess] = v
			src.mu.Unlock()

			var rm metricdata.ResourceMetrics
			_ = reader.Collect(context.Background(), &rm)
		}(uint64(i + 1))
	}
	wg.Wait()
}
