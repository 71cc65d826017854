package prometheus

import (
	"net/http"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/CipherPhantom/userauth"
	"github.com/CipherPhantom/userauth/metrics/export/internaldefs"
)

// MetricsSource is what the collector reads on every scrape.
type MetricsSource interface {
	MetricsSnapshot() userauth.MetricsSnapshot
	AuditDropped() uint64
}

// Collector converts userauth snapshots into const Prometheus metrics.
type Collector struct {
	source     MetricsSource
	counters   []*prom.Desc
	histograms []*prom.Desc
	dropped    *prom.Desc
}

var _ prom.Collector = (*Collector)(nil)

// NewCollector reads from engine.
func NewCollector(engine *userauth.Engine) *Collector {
	return NewCollectorFromSource(engine)
}

// NewCollectorFromSource reads from any MetricsSource.
func NewCollectorFromSource(source MetricsSource) *Collector {
	c := &Collector{
		source:  source,
		dropped: prom.NewDesc(internaldefs.AuditDroppedName, internaldefs.AuditDroppedHelp, nil, nil),
	}
	for _, def := range internaldefs.CounterDefs {
		c.counters = append(c.counters, prom.NewDesc(def.Name, def.Help, nil, nil))
	}
	for _, def := range internaldefs.HistogramDefs {
		c.histograms = append(c.histograms, prom.NewDesc(def.Name, def.Help, nil, nil))
	}
	return c
}

func (c *Collector) Describe(ch chan<- *prom.Desc) {
	for _, d := range c.counters {
		ch <- d
	}
	for _, d := range c.histograms {
		ch <- d
	}
	ch <- c.dropped
}

// Collect emits nothing when metrics are disabled and no audit event was
// dropped.
func (c *Collector) Collect(ch chan<- prom.Metric) {
	if c == nil || c.source == nil {
		return
	}

	snapshot := c.source.MetricsSnapshot()
	dropped := c.source.AuditDropped()
	if len(snapshot.Counters) == 0 && len(snapshot.Histograms) == 0 && dropped == 0 {
		return
	}

	for i, def := range internaldefs.CounterDefs {
		v, ok := snapshot.Counters[def.ID]
		if !ok {
			continue
		}
		ch <- prom.MustNewConstMetric(c.counters[i], prom.CounterValue, float64(v))
	}

	for i, def := range internaldefs.HistogramDefs {
		raw, ok := snapshot.Histograms[def.ID]
		if !ok {
			continue
		}
		raw = internaldefs.NormalizeBuckets(raw)
		cumulative := internaldefs.CumulativeBuckets(raw)

		buckets := make(map[float64]uint64, len(internaldefs.HistogramBounds))
		for j, le := range internaldefs.HistogramBounds {
			buckets[le] = cumulative[j]
		}
		count := cumulative[len(cumulative)-1]
		ch <- prom.MustNewConstHistogram(c.histograms[i], count, internaldefs.ApproxSum(raw), buckets)
	}

	ch <- prom.MustNewConstMetric(c.dropped, prom.CounterValue, float64(dropped))
}

// Handler serves c from a private registry in the text exposition format.
func Handler(c *Collector) http.Handler {
	reg := prom.NewRegistry()
	reg.MustRegister(c)
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}
