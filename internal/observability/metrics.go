package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups all Prometheus instruments used by the service.
type Metrics struct {
	EventsPublished    *prometheus.CounterVec
	EventsDropped      *prometheus.CounterVec
	SubscriberAttached prometheus.Counter
	Turns              *prometheus.CounterVec
	TokenFlushes       prometheus.Counter
	AudioJobs          *prometheus.CounterVec
	ToolCalls          *prometheus.CounterVec
	FirstAudioLatency  prometheus.Histogram
	TurnDuration       prometheus.Histogram
}

func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		EventsPublished: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_published_total",
			Help:      "Events delivered to the subscriber queue by event name.",
		}, []string{"event"}),
		EventsDropped: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_dropped_total",
			Help:      "Events dropped because the subscriber queue was full.",
		}, []string{"event"}),
		SubscriberAttached: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "subscriber_attach_total",
			Help:      "Number of times a push channel was attached, including replacements.",
		}),
		Turns: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "turns_total",
			Help:      "Prompt turns by result.",
		}, []string{"result"}),
		TokenFlushes: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "token_flushes_total",
			Help:      "Batched token flushes committed to the transcript.",
		}),
		AudioJobs: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "audio_jobs_total",
			Help:      "Audio synthesis jobs by status.",
		}, []string{"status"}),
		ToolCalls: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tool_calls_total",
			Help:      "Tool invocations by tool name and status.",
		}, []string{"tool", "status"}),
		FirstAudioLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "first_audio_latency_ms",
			Help:      "Latency from prompt submission to the first queued audio job in milliseconds.",
			Buckets:   []float64{100, 200, 300, 500, 700, 900, 1200, 2000, 5000},
		}),
		TurnDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "turn_duration_seconds",
			Help:      "Wall time of a full prompt turn, excluding detached sub-tasks.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}

func (m *Metrics) ObserveFirstAudioLatency(d time.Duration) {
	m.FirstAudioLatency.Observe(float64(d.Milliseconds()))
}

func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
