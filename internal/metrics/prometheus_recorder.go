package metrics

import (
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	once              sync.Once
	recomputeDuration prom.Histogram
	recomputeOutcome  *prom.CounterVec
	invalidations     prom.Counter
	burstSize         prom.Histogram
	indexPages        prom.Gauge
	parseFailures     prom.Counter
}

// NewPrometheusRecorder constructs and registers Prometheus metrics (idempotent).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{}
	pr.once.Do(func() {
		pr.recomputeDuration = prom.NewHistogram(prom.HistogramOpts{
			Namespace: "sitegen",
			Name:      "recompute_duration_seconds",
			Help:      "Duration of full content index recomputes",
			Buckets:   prom.DefBuckets,
		})
		pr.recomputeOutcome = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "sitegen",
			Name:      "recompute_outcomes_total",
			Help:      "Recompute passes by final status",
		}, []string{"outcome"})
		pr.invalidations = prom.NewCounter(prom.CounterOpts{
			Namespace: "sitegen",
			Name:      "invalidations_total",
			Help:      "Invalidate calls received from change notifiers",
		})
		pr.burstSize = prom.NewHistogram(prom.HistogramOpts{
			Namespace: "sitegen",
			Name:      "invalidation_burst_size",
			Help:      "Invalidations coalesced into a single recompute",
			Buckets:   []float64{1, 2, 5, 10, 25, 50, 100},
		})
		pr.indexPages = prom.NewGauge(prom.GaugeOpts{
			Namespace: "sitegen",
			Name:      "index_pages",
			Help:      "Pages in the current content index",
		})
		pr.parseFailures = prom.NewCounter(prom.CounterOpts{
			Namespace: "sitegen",
			Name:      "parse_failures_total",
			Help:      "Documents whose front matter failed to parse",
		})
		reg.MustRegister(pr.recomputeDuration, pr.recomputeOutcome, pr.invalidations, pr.burstSize, pr.indexPages, pr.parseFailures)
	})
	return pr
}

func (p *PrometheusRecorder) ObserveRecomputeDuration(d time.Duration) {
	if p == nil || p.recomputeDuration == nil {
		return
	}
	p.recomputeDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncRecomputeOutcome(outcome OutcomeLabel) {
	if p == nil || p.recomputeOutcome == nil {
		return
	}
	p.recomputeOutcome.WithLabelValues(string(outcome)).Inc()
}

func (p *PrometheusRecorder) IncInvalidations() {
	if p == nil || p.invalidations == nil {
		return
	}
	p.invalidations.Inc()
}

func (p *PrometheusRecorder) ObserveBurstSize(n int) {
	if p == nil || p.burstSize == nil {
		return
	}
	p.burstSize.Observe(float64(n))
}

func (p *PrometheusRecorder) SetIndexPages(n int) {
	if p == nil || p.indexPages == nil {
		return
	}
	p.indexPages.Set(float64(n))
}

func (p *PrometheusRecorder) IncParseFailures() {
	if p == nil || p.parseFailures == nil {
		return
	}
	p.parseFailures.Inc()
}
