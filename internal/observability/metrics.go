package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups all Prometheus instruments used by the voice daemon.
type Metrics struct {
	SpeakRequests    *prometheus.CounterVec
	SynthesisLatency *prometheus.HistogramVec
	SynthesisErrors  *prometheus.CounterVec
	CacheEvents      *prometheus.CounterVec
	QueueDepth       prometheus.Gauge
	PlaybackItems    *prometheus.CounterVec
}

// NewMetrics registers all instruments on reg. Pass
// prometheus.DefaultRegisterer in main; tests use a fresh registry.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		SpeakRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "speak_requests_total",
			Help:      "Speak calls by mode (blocking or async).",
		}, []string{"mode"}),
		SynthesisLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "synthesis_latency_ms",
			Help:      "Text-to-speech synthesis latency in milliseconds.",
			Buckets:   []float64{50, 100, 250, 500, 1000, 2000, 4000, 8000},
		}, []string{"provider"}),
		SynthesisErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "synthesis_errors_total",
			Help:      "Synthesis failures by provider and failure class.",
		}, []string{"provider", "class"}),
		CacheEvents: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "synthesis_cache_events_total",
			Help:      "Synthesis cache lookups by result.",
		}, []string{"result"}),
		QueueDepth: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "playback_queue_depth",
			Help:      "Items waiting in the playback queue.",
		}),
		PlaybackItems: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "playback_items_total",
			Help:      "Playback items by kind and outcome.",
		}, []string{"kind", "outcome"}),
	}
}

func (m *Metrics) ObserveSynthesisLatency(provider string, d time.Duration) {
	m.SynthesisLatency.WithLabelValues(provider).Observe(float64(d.Milliseconds()))
}

func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
