// Package metrics exposes Prometheus counters for the webhook's ingestion
// pipeline. Counters are package-level and registered with the default
// registry; cmd/serve.go mounts promhttp on /metrics.
package metrics

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sesbouncy/sesbouncy/agent"
)

const namespace = "sesbouncy"

var NotificationsVerified = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: namespace,
	Name:      "notifications_verified",
	Help:      "SNS notifications that passed signature verification",
})

var SubscriptionsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Name:      "subscriptions_processed",
	Help:      "SNS subscription handshakes handled",
}, []string{"confirmed"})

var FeedbackIngested = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Name:      "feedback_ingested",
	Help:      "Feedback records stored, one per recipient",
}, []string{"kind"})

// RegisterListeners subscribes the counters to dispatcher events.
func RegisterListeners(dispatcher *agent.Dispatcher) {
	dispatcher.OnNotificationVerified(countNotificationVerified)
	dispatcher.OnSubscriptionProcessed(countSubscriptionProcessed)
	dispatcher.OnFeedbackIngested(countFeedbackIngested)
}

func countNotificationVerified(
	_ context.Context, _ agent.NotificationVerified,
) error {
	NotificationsVerified.Inc()
	return nil
}

func countSubscriptionProcessed(
	_ context.Context, event agent.SubscriptionProcessed,
) error {
	confirmed := "false"
	if event.Confirmed {
		confirmed = "true"
	}
	SubscriptionsProcessed.WithLabelValues(confirmed).Inc()
	return nil
}

func countFeedbackIngested(
	_ context.Context, event agent.FeedbackIngested,
) error {
	FeedbackIngested.WithLabelValues(string(event.Record.Kind)).Inc()
	return nil
}
