package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatapp_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "chatapp_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"method", "path"},
	)

	// Business metrics
	AccountsRegistered = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chatapp_accounts_registered_total",
			Help: "Total accounts registered",
		},
	)

	SignIns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatapp_signins_total",
			Help: "Total sign-in attempts",
		},
		[]string{"outcome"}, // "ok" or "rejected"
	)

	MessagesSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chatapp_messages_sent_total",
			Help: "Total messages inserted",
		},
	)

	ProfileUpserts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chatapp_profile_upserts_total",
			Help: "Total profile upserts",
		},
	)

	ObjectUploads = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chatapp_object_uploads_total",
			Help: "Total object storage uploads",
		},
	)

	// Realtime metrics
	RealtimeSubscribers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "chatapp_realtime_subscribers",
			Help: "Currently connected realtime subscribers",
		},
	)

	RealtimeEventsDelivered = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chatapp_realtime_events_delivered_total",
			Help: "Total realtime events written to subscribers",
		},
	)

	// Rate limit metrics
	RateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatapp_rate_limit_hits_total",
			Help: "Total rate limit hits",
		},
		[]string{"endpoint"},
	)
)
