// internal/infrastructure/metrics/prometheus.go
package metrics

import (
	"net/http"
	"time"

	"solboost-bot/internal/core/domain/checkout"
	"solboost-bot/internal/core/domain/payment"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const MetricNameSpace = "solboost"

// Recorder метрики бота в собственном реестре
type Recorder struct {
	registry *prometheus.Registry

	verifications *prometheus.CounterVec
	verifyLatency *prometheus.HistogramVec
	transitions   *prometheus.CounterVec
	events        *prometheus.CounterVec
	dropped       *prometheus.CounterVec
}

var (
	_ payment.MetricsRecorder  = (*Recorder)(nil)
	_ checkout.MetricsRecorder = (*Recorder)(nil)
)

// NewRecorder создает и регистрирует метрики
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		verifications: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: MetricNameSpace,
				Name:      "payment_verifications_total",
				Help:      "Payment verifications by outcome",
			},
			[]string{"status"},
		),
		verifyLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: MetricNameSpace,
				Name:      "payment_verification_seconds",
				Help:      "Payment verification latency",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"status"},
		),
		transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: MetricNameSpace,
				Name:      "checkout_transitions_total",
				Help:      "Conversation stage transitions",
			},
			[]string{"from", "to"},
		),
		events: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: MetricNameSpace,
				Name:      "checkout_events_total",
				Help:      "Inbound conversation events by kind",
			},
			[]string{"kind"},
		),
		dropped: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: MetricNameSpace,
				Name:      "updates_dropped_total",
				Help:      "Inbound updates dropped before processing",
			},
			[]string{"reason"},
		),
	}

	r.registry.MustRegister(
		r.verifications,
		r.verifyLatency,
		r.transitions,
		r.events,
		r.dropped,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

func (r *Recorder) ObserveVerification(status string, d time.Duration) {
	r.verifications.WithLabelValues(status).Inc()
	r.verifyLatency.WithLabelValues(status).Observe(d.Seconds())
}

func (r *Recorder) ObserveTransition(from, to string) {
	r.transitions.WithLabelValues(from, to).Inc()
}

func (r *Recorder) ObserveEvent(kind string) {
	r.events.WithLabelValues(kind).Inc()
}

// ObserveDropped отброшенное входящее обновление (rate limit и т.п.)
func (r *Recorder) ObserveDropped(reason string) {
	r.dropped.WithLabelValues(reason).Inc()
}

// Handler HTTP-обработчик /metrics
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
