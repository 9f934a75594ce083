package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "tonebot"

// Metrics holds the bot's Prometheus collectors.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	webhooks       *prometheus.CounterVec
	analyses       *prometheus.CounterVec
	analysisTime   prometheus.Histogram
	reminders      *prometheus.CounterVec
	platformErrors *prometheus.CounterVec
}

// New creates the collectors and registers them with reg
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		webhooks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "webhooks_total",
			Help:      "Inbound webhook requests by route.",
		}, []string{"route"}),
		analyses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analyses_total",
			Help:      "Tone analyses by outcome (ok or the analysis error kind).",
		}, []string{"outcome"}),
		analysisTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "analysis_duration_seconds",
			Help:      "Time spent waiting for the language model.",
			Buckets:   prometheus.DefBuckets,
		}),
		reminders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reminders_total",
			Help:      "Urgent message reminders by transition.",
		}, []string{"event"}),
		platformErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "platform_errors_total",
			Help:      "Failed chat platform calls by handler step.",
		}, []string{"step"}),
	}

	reg.MustRegister(m.webhooks, m.analyses, m.analysisTime, m.reminders, m.platformErrors)
	return m
}

// Webhook counts one inbound request
func (m *Metrics) Webhook(route string) {
	if m == nil {
		return
	}
	m.webhooks.WithLabelValues(route).Inc()
}

// Analysis records the outcome and latency of one tone analysis
func (m *Metrics) Analysis(outcome string, took time.Duration) {
	if m == nil {
		return
	}
	m.analyses.WithLabelValues(outcome).Inc()
	m.analysisTime.Observe(took.Seconds())
}

// Reminder counts a reminder transition: scheduled, fired or cancelled
func (m *Metrics) Reminder(event string) {
	if m == nil {
		return
	}
	m.reminders.WithLabelValues(event).Inc()
}

// PlatformError counts a swallowed chat platform failure
func (m *Metrics) PlatformError(step string) {
	if m == nil {
		return
	}
	m.platformErrors.WithLabelValues(step).Inc()
}
