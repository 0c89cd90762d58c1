// FootTraffic - Foot-Traffic Monitoring and Dwell-Time Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/foottraffic

package authz

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/tomtom215/foottraffic/internal/auth"
)

var (
	// DecisionsTotal counts guard decisions by session status, view class and outcome.
	DecisionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foottraffic_authz_decisions_total",
			Help: "Total number of view guard decisions",
		},
		[]string{"status", "view", "decision"},
	)

	// DecisionDuration tracks the latency of guard decisions.
	DecisionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "foottraffic_authz_decision_duration_seconds",
			Help:    "Duration of view guard decisions in seconds",
			Buckets: []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01},
		},
	)
)

func recordDecision(status auth.Status, class ViewClass, allowed bool, d time.Duration) {
	decision := "deny"
	if allowed {
		decision = "allow"
	}
	DecisionsTotal.WithLabelValues(string(status), string(class), decision).Inc()
	DecisionDuration.Observe(d.Seconds())
}
