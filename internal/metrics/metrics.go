package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "supportbot"

// Metrics holds the service's Prometheus collectors.
//
// Metrics:
//   - supportbot_analytics_report_duration_seconds{range}
//   - supportbot_analytics_report_failures_total
//   - supportbot_chat_messages_total{sender}
//   - supportbot_nlu_request_duration_seconds{operation}
//   - supportbot_nlu_intent_confidence
type Metrics struct {
	registry *prometheus.Registry

	ReportDuration *prometheus.HistogramVec
	ReportFailures prometheus.Counter
	ChatMessages   *prometheus.CounterVec
	NLUDuration    *prometheus.HistogramVec
	NLUConfidence  prometheus.Histogram
}

// New creates the collectors on a fresh registry together with the Go
// runtime and process collectors
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,
		ReportDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "analytics_report_duration_seconds",
				Help:      "Time spent building an analytics report",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"range"},
		),
		ReportFailures: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "analytics_report_failures_total",
				Help:      "Analytics reports aborted by a retrieval failure",
			},
		),
		ChatMessages: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "chat_messages_total",
				Help:      "Chat messages stored, by sender",
			},
			[]string{"sender"},
		),
		NLUDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "nlu_request_duration_seconds",
				Help:      "Latency of calls to the NLU agent",
				Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
			},
			[]string{"operation"},
		),
		NLUConfidence: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "nlu_intent_confidence",
				Help:      "Intent detection confidence reported by the NLU agent",
				Buckets:   []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1},
			},
		),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.ReportDuration,
		m.ReportFailures,
		m.ChatMessages,
		m.NLUDuration,
		m.NLUConfidence,
	)

	return m
}

// ObserveReport records one report build
func (m *Metrics) ObserveReport(rangeName string, elapsed time.Duration, err error) {
	m.ReportDuration.WithLabelValues(rangeName).Observe(elapsed.Seconds())
	if err != nil {
		m.ReportFailures.Inc()
	}
}

// IncChatMessage counts one stored chat message
func (m *Metrics) IncChatMessage(sender string) {
	m.ChatMessages.WithLabelValues(sender).Inc()
}

// ObserveNLU records the latency of one NLU call
func (m *Metrics) ObserveNLU(operation string, elapsed time.Duration) {
	m.NLUDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

// ObserveConfidence records the confidence of one detected intent
func (m *Metrics) ObserveConfidence(confidence float64) {
	m.NLUConfidence.Observe(confidence)
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
