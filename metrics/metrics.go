// Package metrics holds the prometheus collectors of the workflow core.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry collects every campusbite metric.
var Registry = prometheus.NewRegistry()

var (
	RateLimitRetries = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "campusbite_rate_limit_retries_total",
		Help: "Remote calls retried after a rate-limit response",
	})

	RateLimitExhausted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "campusbite_rate_limit_exhausted_total",
		Help: "Remote calls that stayed rate limited after every retry",
	})

	OrderTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "campusbite_order_transitions_total",
			Help: "Order status transitions by target status",
		},
		[]string{"to"},
	)

	SkippedRecords = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "campusbite_skipped_records_total",
			Help: "Malformed or dangling records skipped on read paths",
		},
		[]string{"kind"},
	)

	OrphanedUploads = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "campusbite_orphaned_uploads_total",
		Help: "Uploaded files left without a referencing document",
	})

	NotificationsPublished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "campusbite_notifications_published_total",
			Help: "Notification events published to the stream",
		},
		[]string{"result"},
	)
)

func init() {
	Registry.MustRegister(
		RateLimitRetries,
		RateLimitExhausted,
		OrderTransitions,
		SkippedRecords,
		OrphanedUploads,
		NotificationsPublished,
	)
}

// Handler serves the registry in the prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}
