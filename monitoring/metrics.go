package monitoring

import (
	"context"
	"log"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	registrationAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "registration_attempts_total",
			Help: "Registration attempts by outcome",
		},
		[]string{"event_id", "outcome"},
	)

	participantCount = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "event_participants_total",
			Help: "Current participant count per event",
		},
		[]string{"event_id"},
	)

	registrationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "registration_duration_seconds",
			Help:    "Duration of registration attempts",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 10),
		},
	)

	notificationFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "confirmation_failures_total",
			Help: "Confirmation notifications that could not be dispatched",
		},
	)
)

// Monitor records registration metrics and periodically refreshes the
// per-event participant gauges from the store.
type Monitor struct {
	interval time.Duration
}

func NewMonitor(interval time.Duration) *Monitor {
	return &Monitor{interval: interval}
}

func (m *Monitor) TrackRegistration(eventID, outcome string, duration time.Duration) {
	registrationAttempts.WithLabelValues(eventID, outcome).Inc()
	registrationDuration.Observe(duration.Seconds())
}

func (m *Monitor) SetParticipantCount(eventID string, count int) {
	participantCount.WithLabelValues(eventID).Set(float64(count))
}

func (m *Monitor) TrackNotificationFailure() {
	notificationFailures.Inc()
}

// WatchCounts refreshes the participant gauges on a ticker until the
// context is cancelled. The closure returns the current counts keyed by
// event id.
func (m *Monitor) WatchCounts(ctx context.Context, counts func(ctx context.Context) (map[string]int, error)) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			snapshot, err := counts(ctx)
			if err != nil {
				log.Printf("Error collecting participant counts: %v", err)
				continue
			}
			for eventID, count := range snapshot {
				participantCount.WithLabelValues(eventID).Set(float64(count))
			}
		case <-ctx.Done():
			return
		}
	}
}
