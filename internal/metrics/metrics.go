// Package metrics provides Prometheus metrics for the recipe bot.
// Labels are bounded enums only; sender ids never appear in labels.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// WebhookRequestsTotal counts inbound webhook deliveries by platform and outcome.
	WebhookRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "recipe_bot_webhook_requests_total",
		Help: "Total number of inbound webhook requests, by platform and outcome.",
	}, []string{"platform", "outcome"})

	// IntentsTotal counts classified intents by platform and kind.
	IntentsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "recipe_bot_intents_total",
		Help: "Total number of parsed intents, by platform and kind.",
	}, []string{"platform", "kind"})

	// JobsTotal counts deferred jobs by job name and result.
	JobsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "recipe_bot_jobs_total",
		Help: "Total number of deferred jobs executed, by job and result.",
	}, []string{"job", "result"})

	// AIRequestDuration tracks generative backend latency by provider and result.
	AIRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "recipe_bot_ai_request_duration_seconds",
		Help:    "Latency of recipe generation calls, by provider and result.",
		Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60},
	}, []string{"provider", "result"})

	// PaymentsTotal counts payment state transitions by status.
	PaymentsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "recipe_bot_payments_total",
		Help: "Total number of payment status changes, by status.",
	}, []string{"status"})

	// QueueDepth tracks jobs waiting in the background queue.
	QueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "recipe_bot_queue_depth",
		Help: "Current number of jobs waiting in the background queue.",
	})
)

// RecordWebhook increments the webhook counter.
func RecordWebhook(platform, outcome string) {
	WebhookRequestsTotal.WithLabelValues(platform, outcome).Inc()
}

// RecordIntent increments the intent counter.
func RecordIntent(platform, kind string) {
	IntentsTotal.WithLabelValues(platform, kind).Inc()
}

// RecordJob increments the job counter. err decides the result label.
func RecordJob(job string, err error) {
	JobsTotal.WithLabelValues(job, result(err)).Inc()
}

// ObserveAIRequest records one generation call.
func ObserveAIRequest(provider string, d time.Duration, err error) {
	AIRequestDuration.WithLabelValues(provider, result(err)).Observe(d.Seconds())
}

// RecordPayment increments the payment status counter.
func RecordPayment(status string) {
	PaymentsTotal.WithLabelValues(status).Inc()
}

// SetQueueDepth sets the queue depth gauge.
func SetQueueDepth(n int) {
	QueueDepth.Set(float64(n))
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
