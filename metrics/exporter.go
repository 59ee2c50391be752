// Package metrics exports resolution telemetry in Prometheus format.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Exporter records resolution metrics on its own registry. All methods
// are nil-safe so the engine can run without telemetry.
type Exporter struct {
	registry *prometheus.Registry

	resolutions *prometheus.CounterVec
	tierHits    *prometheus.CounterVec
	decisions   *prometheus.CounterVec
	cacheEvents *prometheus.CounterVec
	latency     prometheus.Histogram
}

// NewExporter creates an exporter with a private registry.
func NewExporter() *Exporter {
	e := &Exporter{registry: prometheus.NewRegistry()}

	e.resolutions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "freshchat",
		Name:      "resolutions_total",
		Help:      "Resolutions by terminal result kind.",
	}, []string{"kind"})

	e.tierHits = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "freshchat",
		Name:      "intent_tier_total",
		Help:      "Intent classifications by cascade tier and label.",
	}, []string{"tier", "label"})

	e.decisions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "freshchat",
		Name:      "match_decisions_total",
		Help:      "Disambiguation policy outcomes.",
	}, []string{"decision"})

	e.cacheEvents = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "freshchat",
		Name:      "decision_cache_events_total",
		Help:      "Intent decision cache hits and misses.",
	}, []string{"result"})

	e.latency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "freshchat",
		Name:      "resolution_duration_seconds",
		Help:      "End-to-end resolution latency.",
		Buckets:   prometheus.ExponentialBuckets(0.00005, 4, 10),
	})

	e.registry.MustRegister(e.resolutions, e.tierHits, e.decisions, e.cacheEvents, e.latency)
	return e
}

// RecordResolution counts one completed resolution.
func (e *Exporter) RecordResolution(kind string, d time.Duration) {
	if e == nil {
		return
	}
	e.resolutions.WithLabelValues(kind).Inc()
	e.latency.Observe(d.Seconds())
}

// RecordTier counts one intent classification by source tier.
func (e *Exporter) RecordTier(tier, label string) {
	if e == nil {
		return
	}
	e.tierHits.WithLabelValues(tier, label).Inc()
}

// RecordDecision counts one disambiguation outcome.
func (e *Exporter) RecordDecision(decision string) {
	if e == nil {
		return
	}
	e.decisions.WithLabelValues(decision).Inc()
}

// RecordCache counts a decision-cache lookup.
func (e *Exporter) RecordCache(hit bool) {
	if e == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	e.cacheEvents.WithLabelValues(result).Inc()
}

// Handler exposes the registry for scraping.
func (e *Exporter) Handler() http.Handler {
	return promhttp.HandlerFor(e.registry, promhttp.HandlerOpts{})
}
