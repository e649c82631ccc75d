package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all application metrics
type Metrics struct {
	// Reminder scheduler metrics
	ReminderTicks        prometheus.Counter
	ReminderTickFailures prometheus.Counter
	ReminderTickDuration prometheus.Histogram
	EventsInspected      prometheus.Counter

	// Notification metrics
	NotificationsSent    *prometheus.CounterVec
	NotificationsFailed  *prometheus.CounterVec
	NotificationsDeduped *prometheus.CounterVec
	DailySummariesSent   prometheus.Counter

	// Gateway metrics
	GatewayRequests *prometheus.CounterVec
	GatewayLatency  *prometheus.HistogramVec
}

// New creates and registers all application metrics
func New(namespace string) *Metrics {
	return &Metrics{
		ReminderTicks: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reminder_ticks_total",
			Help:      "Total number of reminder check ticks executed",
		}),
		ReminderTickFailures: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reminder_tick_failures_total",
			Help:      "Total number of reminder check ticks that aborted",
		}),
		ReminderTickDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "reminder_tick_duration_seconds",
			Help:      "Time spent per reminder check tick",
			Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}),
		EventsInspected: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_inspected_total",
			Help:      "Total number of calendar events classified",
		}),
		NotificationsSent: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_sent_total",
			Help:      "Total number of notifications sent",
		}, []string{"audience"}),
		NotificationsFailed: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_failed_total",
			Help:      "Total number of notification sends that failed",
		}, []string{"audience"}),
		NotificationsDeduped: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_deduped_total",
			Help:      "Total number of notifications suppressed by the dedup store",
		}, []string{"audience"}),
		DailySummariesSent: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "daily_summaries_sent_total",
			Help:      "Total number of daily agenda summaries sent",
		}),
		GatewayRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "gateway_requests_total",
			Help:      "Total number of calendar gateway requests",
		}, []string{"operation", "status"}),
		GatewayLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "gateway_request_duration_seconds",
			Help:      "Duration of calendar gateway requests",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5},
		}, []string{"operation"}),
	}
}

// NewUnregistered returns a Metrics set backed by collectors that are not
// registered with the default registry. Tests use this to avoid duplicate
// registration panics.
func NewUnregistered(namespace string) *Metrics {
	return &Metrics{
		ReminderTicks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "reminder_ticks_total",
		}),
		ReminderTickFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "reminder_tick_failures_total",
		}),
		ReminderTickDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Name: "reminder_tick_duration_seconds",
		}),
		EventsInspected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "events_inspected_total",
		}),
		NotificationsSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "notifications_sent_total",
		}, []string{"audience"}),
		NotificationsFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "notifications_failed_total",
		}, []string{"audience"}),
		NotificationsDeduped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "notifications_deduped_total",
		}, []string{"audience"}),
		DailySummariesSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "daily_summaries_sent_total",
		}),
		GatewayRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "gateway_requests_total",
		}, []string{"operation", "status"}),
		GatewayLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Name: "gateway_request_duration_seconds",
		}, []string{"operation"}),
	}
}
