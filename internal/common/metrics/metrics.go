package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Tier worker metrics

	// TierBatchDuration tracks wall-clock duration of a batch flush.
	TierBatchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "flowcatalyst",
			Subsystem: "tierworker",
			Name:      "batch_duration_seconds",
			Help:      "Time to flush one batch of events",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"tier"},
	)

	// TierDemotionsTotal tracks events demoted to the next-lower tier.
	TierDemotionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "flowcatalyst",
			Subsystem: "tierworker",
			Name:      "demotions_total",
			Help:      "Total events demoted to the next-lower tier",
		},
		[]string{"tier"},
	)

	// TierRetriesTotal tracks Retry Arbiter invocations.
	TierRetriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "flowcatalyst",
			Subsystem: "tierworker",
			Name:      "retries_total",
			Help:      "Total Retry Arbiter invocations",
		},
		[]string{"tier"},
	)

	// TierDropsTotal tracks events dropped at the tail tier.
	TierDropsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "flowcatalyst",
			Subsystem: "tierworker",
			Name:      "drops_total",
			Help:      "Total events dropped after a tail-tier transport failure",
		},
		[]string{"tier"},
	)

	// TierRollingAverageObservations tracks rolling-average observations.
	TierRollingAverageObservations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "flowcatalyst",
			Subsystem: "tierworker",
			Name:      "rolling_average_observations_total",
			Help:      "Total rolling-average observations recorded",
		},
		[]string{"tier"},
	)

	// Mediator metrics

	// MediatorHTTPRequests tracks HTTP requests made by the mediator.
	MediatorHTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "flowcatalyst",
			Subsystem: "mediator",
			Name:      "http_requests_total",
			Help:      "Total HTTP requests made by the mediator",
		},
		[]string{"tier", "status_code"},
	)

	// MediatorHTTPDuration tracks HTTP request duration.
	MediatorHTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "flowcatalyst",
			Subsystem: "mediator",
			Name:      "http_duration_seconds",
			Help:      "HTTP request duration",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"tier"},
	)

	// MediatorCircuitBreakerState tracks circuit breaker state.
	// 0 = closed (healthy), 1 = open (tripped), 2 = half-open (testing)
	MediatorCircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "flowcatalyst",
			Subsystem: "mediator",
			Name:      "circuit_breaker_state",
			Help:      "Circuit breaker state (0=closed, 1=open, 2=half-open)",
		},
		[]string{"tier"},
	)

	// MediatorCircuitBreakerTrips tracks circuit breaker trip events.
	MediatorCircuitBreakerTrips = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "flowcatalyst",
			Subsystem: "mediator",
			Name:      "circuit_breaker_trips_total",
			Help:      "Total circuit breaker trip events",
		},
		[]string{"tier"},
	)

	// Queue metrics

	// QueueMessagesConsumed tracks records polled from the tier topics.
	QueueMessagesConsumed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "flowcatalyst",
			Subsystem: "queue",
			Name:      "messages_consumed_total",
			Help:      "Total records polled from a tier topic",
		},
		[]string{"tier"},
	)

	// QueuePublishErrors tracks producer publish failures.
	QueuePublishErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "flowcatalyst",
			Subsystem: "queue",
			Name:      "publish_errors_total",
			Help:      "Total publish failures across demotion, retry, and log emission",
		},
		[]string{"kind"}, // demotion, retry, logstash
	)

	// HTTP API metrics (health/metrics bootstrap server)

	// HTTPRequestsTotal tracks HTTP API requests.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "flowcatalyst",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP API requests",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration tracks HTTP API request duration.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "flowcatalyst",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP API request duration",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)

// CircuitBreakerState constants
const (
	CircuitBreakerClosed   = 0
	CircuitBreakerOpen     = 1
	CircuitBreakerHalfOpen = 2
)
