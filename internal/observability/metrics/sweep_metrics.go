package metrics

import (
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// SweepMetrics tracks outcomes of the membership expiration and
// notification sweeps.
type SweepMetrics struct {
	membershipsExpired  prometheus.Counter
	remindersSent       prometheus.Counter
	remindersFailed     prometheus.Counter
	remindersSuppressed prometheus.Counter
	sweepDuration       *prometheus.HistogramVec
}

var (
	sweepMetricsOnce sync.Once
	sweepMetrics     *SweepMetrics
)

// Sweep returns the process-wide sweep metrics.
func Sweep() *SweepMetrics {
	return SweepWithConfig(Config{})
}

func SweepWithConfig(cfg Config) *SweepMetrics {
	sweepMetricsOnce.Do(func() {
		sweepMetrics = newSweepMetrics(prometheus.DefaultRegisterer, cfg)
	})
	return sweepMetrics
}

func ResetSweepMetricsForTest() {
	sweepMetricsOnce = sync.Once{}
	sweepMetrics = nil
}

func newSweepMetrics(registerer prometheus.Registerer, cfg Config) *SweepMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	serviceName := strings.TrimSpace(cfg.ServiceName)
	if serviceName == "" {
		serviceName = "gymledger"
	}
	constLabels := prometheus.Labels{"service": serviceName}

	m := &SweepMetrics{
		membershipsExpired: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "gymledger_memberships_expired_total",
			Help:        "Memberships flipped from active to expired by the sweep.",
			ConstLabels: constLabels,
		}),
		remindersSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "gymledger_expiry_reminders_sent_total",
			Help:        "Expiry reminders enqueued by the notification sweep.",
			ConstLabels: constLabels,
		}),
		remindersFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "gymledger_expiry_reminders_failed_total",
			Help:        "Expiry reminders that failed to enqueue.",
			ConstLabels: constLabels,
		}),
		remindersSuppressed: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "gymledger_expiry_reminders_suppressed_total",
			Help:        "Reminders skipped by the duplicate-suppression window.",
			ConstLabels: constLabels,
		}),
		sweepDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "gymledger_sweep_duration_seconds",
			Help:        "Duration of scheduled sweeps.",
			Buckets:     prometheus.DefBuckets,
			ConstLabels: constLabels,
		}, []string{"sweep"}),
	}

	for _, collector := range []prometheus.Collector{
		m.membershipsExpired,
		m.remindersSent,
		m.remindersFailed,
		m.remindersSuppressed,
		m.sweepDuration,
	} {
		if err := registerer.Register(collector); err != nil {
			if already, ok := err.(prometheus.AlreadyRegisteredError); ok {
				_ = already
				continue
			}
		}
	}

	return m
}

func (m *SweepMetrics) ObserveExpired(count int) {
	if m == nil || count <= 0 {
		return
	}
	m.membershipsExpired.Add(float64(count))
}

func (m *SweepMetrics) ObserveReminderSent() {
	if m == nil {
		return
	}
	m.remindersSent.Inc()
}

func (m *SweepMetrics) ObserveReminderFailed() {
	if m == nil {
		return
	}
	m.remindersFailed.Inc()
}

func (m *SweepMetrics) ObserveReminderSuppressed() {
	if m == nil {
		return
	}
	m.remindersSuppressed.Inc()
}

func (m *SweepMetrics) ObserveSweepDuration(sweep string, seconds float64) {
	if m == nil {
		return
	}
	m.sweepDuration.WithLabelValues(sweep).Observe(seconds)
}
