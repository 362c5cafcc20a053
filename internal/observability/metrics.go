package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters for the assessment lifecycle.
type Metrics struct {
	AssessmentsStarted   prometheus.Counter
	AssessmentsPublished prometheus.Counter
	AssessmentsDiscarded prometheus.Counter

	StepSaves *prometheus.CounterVec // labels: outcome={success,error}

	NotificationSends *prometheus.CounterVec // labels: channel, outcome={success,error}

	WeatherLookups *prometheus.CounterVec // labels: outcome={ok,stale,unavailable}
}

// NewMetrics creates and registers all metrics with the default registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.AssessmentsStarted,
		m.AssessmentsPublished,
		m.AssessmentsDiscarded,
		m.StepSaves,
		m.NotificationSends,
		m.WeatherLookups,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics across tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		AssessmentsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "gar",
			Name:      "assessments_started_total",
			Help:      "Total draft assessments started.",
		}),
		AssessmentsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "gar",
			Name:      "assessments_published_total",
			Help:      "Total assessments published.",
		}),
		AssessmentsDiscarded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "gar",
			Name:      "assessments_discarded_total",
			Help:      "Total draft assessments discarded.",
		}),
		StepSaves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gar",
			Name:      "step_saves_total",
			Help:      "Step-transition persistence attempts by outcome.",
		}, []string{"outcome"}),
		NotificationSends: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gar",
			Name:      "notification_sends_total",
			Help:      "Notification delivery attempts by channel and outcome.",
		}, []string{"channel", "outcome"}),
		WeatherLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gar",
			Name:      "weather_lookups_total",
			Help:      "Weather snapshot lookups by outcome.",
		}, []string{"outcome"}),
	}
}
