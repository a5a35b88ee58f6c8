// Package metrics holds the Prometheus collectors of the stemming service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Fallback reasons.
const (
	ReasonPanic       = "panic"
	ReasonInvalidUTF8 = "invalid_utf8"
	ReasonConfig      = "config"
)

// Metrics is nil-safe: every method on a nil *Metrics is a no-op.
type Metrics struct {
	requests  *prometheus.CounterVec
	words     prometheus.Counter
	fallbacks *prometheus.CounterVec
	cache     *prometheus.CounterVec
	duration  *prometheus.HistogramVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "porter_stem_requests_total",
				Help: "Stem requests served, by endpoint.",
			},
			[]string{"endpoint"},
		),
		words: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "porter_stem_words_total",
				Help: "Words stemmed.",
			},
		),
		fallbacks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "porter_stem_fallback_total",
				Help: "Words returned unchanged because stemming failed, by reason.",
			},
			[]string{"reason"},
		),
		cache: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "porter_cache_lookups_total",
				Help: "Stem cache lookups, by result.",
			},
			[]string{"result"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "porter_request_duration_seconds",
				Help:    "Request latency, by endpoint.",
				Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
			},
			[]string{"endpoint"},
		),
	}
	for _, c := range []prometheus.Collector{m.requests, m.words, m.fallbacks, m.cache, m.duration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) Request(endpoint string, took time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(endpoint).Inc()
	m.duration.WithLabelValues(endpoint).Observe(took.Seconds())
}

func (m *Metrics) Words(n int) {
	if m == nil {
		return
	}
	m.words.Add(float64(n))
}

func (m *Metrics) Fallback(reason string) {
	if m == nil {
		return
	}
	m.fallbacks.WithLabelValues(reason).Inc()
}

func (m *Metrics) CacheLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cache.WithLabelValues(result).Inc()
}
