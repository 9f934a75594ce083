package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_Counts(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.Webhook("events")
	m.Webhook("events")
	m.Analysis("ok", 120*time.Millisecond)
	m.Analysis("invalid_tone", time.Second)
	m.Reminder("fired")
	m.PlatformError("post_result")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.webhooks.WithLabelValues("events")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.analyses.WithLabelValues("invalid_tone")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.reminders.WithLabelValues("fired")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.platformErrors.WithLabelValues("post_result")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.analysisTime))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.Webhook("x")
		m.Analysis("ok", time.Second)
		m.Reminder("scheduled")
		m.PlatformError("x")
	})
}
