package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Webhook pipeline
	WebhookOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "commercebot_webhook_outcomes_total",
			Help: "Webhook deliveries by pipeline outcome",
		},
		[]string{"outcome"},
	)

	UnverifiedWebhooks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "commercebot_unverified_webhooks_total",
			Help: "Webhooks accepted without signature verification because no app secret is configured",
		},
	)

	RateLimitRejections = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "commercebot_rate_limit_rejections_total",
			Help: "Inbound messages rejected by the per-sender rate limiter",
		},
	)

	FlowDispatches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "commercebot_flow_dispatches_total",
			Help: "Conversation flows dispatched",
		},
		[]string{"flow"},
	)

	// Outbound
	OutboundSends = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "commercebot_outbound_sends_total",
			Help: "Outbound send attempts",
		},
		[]string{"type", "status"}, // status: "sent" or "failed"
	)

	OutboundLatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "commercebot_outbound_latency_seconds",
			Help:    "Send API latency",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10},
		},
	)

	// Housekeeping
	PrunedRows = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "commercebot_pruned_rows_total",
			Help: "Rows removed by the retention janitor",
		},
		[]string{"table"},
	)

	// HTTP
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "commercebot_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"method", "path", "status"},
	)
)
