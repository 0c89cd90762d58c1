// FootTraffic - Foot-Traffic Monitoring and Dwell-Time Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/foottraffic

// Package metrics registers the FootTraffic Prometheus collectors on the
// default registry and exposes small Record* helpers so call sites stay to
// one line. Collectors are served by the /metrics route.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Result label values.
const (
	ResultSuccess  = "success"
	ResultFailure  = "failure"
	ResultFallback = "fallback"
	ResultRejected = "rejected"
)

var (
	// API Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foottraffic_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "route", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "foottraffic_api_request_duration_seconds",
			Help:    "API request latency in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"method", "route"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "foottraffic_api_active_requests",
			Help: "Number of in-flight API requests",
		},
	)

	// Polling Metrics
	PollsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foottraffic_polls_total",
			Help: "Stats polls by outcome",
		},
		[]string{"result"}, // success, failure, fallback
	)

	PollDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "foottraffic_poll_duration_seconds",
			Help:    "Duration of upstream stats fetches",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 3, 5},
		},
	)

	PollLastSuccess = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "foottraffic_poll_last_success_timestamp",
			Help: "Unix time of the last successful poll",
		},
	)

	// Store Metrics
	SamplesIngested = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foottraffic_samples_ingested_total",
			Help: "Samples accepted into the shared store",
		},
		[]string{"location"},
	)

	HistorySamples = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "foottraffic_history_samples",
			Help: "Samples currently held in the retention window",
		},
	)

	ReplicationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foottraffic_replications_total",
			Help: "History replications to the remote backup",
		},
		[]string{"result"},
	)

	ReplicationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "foottraffic_replication_duration_seconds",
			Help:    "Duration of history replication calls",
			Buckets: prometheus.DefBuckets,
		},
	)

	RecoveryDegraded = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "foottraffic_recovery_degraded",
			Help: "1 when history was recovered from the local cache instead of the remote backup",
		},
	)

	CacheWriteErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foottraffic_cache_write_errors_total",
			Help: "Failed local cache writes",
		},
		[]string{"key"},
	)

	// Auth Metrics
	CodeSendsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foottraffic_verification_sends_total",
			Help: "Verification code deliveries by provider and outcome",
		},
		[]string{"provider", "result"},
	)

	AuthTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foottraffic_auth_transitions_total",
			Help: "Authentication state transitions",
		},
		[]string{"from", "to"},
	)

	AuthSessionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "foottraffic_auth_sessions_active",
			Help: "Browser sessions currently tracked",
		},
	)

	// Event bus and archive
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foottraffic_events_published_total",
			Help: "Events published to the bus",
		},
		[]string{"topic", "result"},
	)

	ArchiveWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foottraffic_archive_writes_total",
			Help: "Archive file writes by kind and outcome",
		},
		[]string{"kind", "result"},
	)

	ArchiveBackups = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "foottraffic_archive_backups",
			Help: "Backup files retained per kind",
		},
		[]string{"kind"},
	)

	// WebSocket Metrics
	WSConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "foottraffic_websocket_connections",
			Help: "Current number of active WebSocket connections",
		},
	)

	WSMessagesSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foottraffic_websocket_messages_sent_total",
			Help: "WebSocket messages broadcast by type",
		},
		[]string{"type"},
	)

	WSErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foottraffic_websocket_errors_total",
			Help: "Total number of WebSocket errors",
		},
		[]string{"error_type"},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "foottraffic_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foottraffic_circuit_breaker_requests_total",
			Help: "Requests through a circuit breaker by result",
		},
		[]string{"name", "result"}, // success, failure, rejected
	)

	CircuitBreakerConsecutiveFailures = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "foottraffic_circuit_breaker_consecutive_failures",
			Help: "Current number of consecutive failures",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foottraffic_circuit_breaker_state_transitions_total",
			Help: "Circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)
)

// RecordAPIRequest records one served request.
func RecordAPIRequest(method, route, status string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, route, status).Inc()
	APIRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// TrackActiveRequest adjusts the in-flight gauge.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordPoll records one poll tick. duration is zero when no fetch ran.
func RecordPoll(result string, duration time.Duration) {
	PollsTotal.WithLabelValues(result).Inc()
	if duration > 0 {
		PollDuration.Observe(duration.Seconds())
	}
	if result == ResultSuccess {
		PollLastSuccess.Set(float64(time.Now().Unix()))
	}
}

// RecordIngest counts an accepted sample and the resulting history size.
func RecordIngest(location string, historySize int) {
	SamplesIngested.WithLabelValues(location).Inc()
	HistorySamples.Set(float64(historySize))
}

// RecordReplication records a replication attempt.
func RecordReplication(err error, duration time.Duration) {
	ReplicationsTotal.WithLabelValues(result(err)).Inc()
	ReplicationDuration.Observe(duration.Seconds())
}

// RecordCodeSend records a verification code delivery.
func RecordCodeSend(provider string, err error) {
	CodeSendsTotal.WithLabelValues(provider, result(err)).Inc()
}

// RecordAuthTransition records a session state change.
func RecordAuthTransition(from, to string) {
	AuthTransitions.WithLabelValues(from, to).Inc()
}

// RecordEventPublish records a bus publish.
func RecordEventPublish(topic string, err error) {
	EventsPublished.WithLabelValues(topic, result(err)).Inc()
}

// RecordArchiveWrite records an archive write.
func RecordArchiveWrite(kind string, err error) {
	ArchiveWrites.WithLabelValues(kind, result(err)).Inc()
}

// SetDegraded flips the degraded-recovery gauge.
func SetDegraded(degraded bool) {
	if degraded {
		RecoveryDegraded.Set(1)
		return
	}
	RecoveryDegraded.Set(0)
}

func result(err error) string {
	if err != nil {
		return ResultFailure
	}
	return ResultSuccess
}
