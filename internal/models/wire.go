// FootTraffic - Foot-Traffic Monitoring and Dwell-Time Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/foottraffic

package models

import (
	"time"

	"github.com/goccy/go-json"
)

// StatsEnvelope is the body of GET /api/stats.
type StatsEnvelope struct {
	Success bool      `json:"success"`
	Stats   *RawStats `json:"stats"`
}

// StatsResponse is what FootTraffic serves on its own /api/stats.
type StatsResponse struct {
	Success bool        `json:"success"`
	Stats   *StatSample `json:"stats"`
}

// StatusSuccess is the status value used by the historical endpoints.
const StatusSuccess = "success"

// LoadHistoricalResponse is the body of GET /api/load-historical.
type LoadHistoricalResponse struct {
	Status  string        `json:"status"`
	Data    HistoricalMap `json:"data"`
	Message string        `json:"message,omitempty"`
}

// SaveHistoricalResponse is the body returned by POST /api/save-historical.
type SaveHistoricalResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Samples int    `json:"samples,omitempty"`
}

// DecodeHistoricalMap decodes {location: samples}. A location whose value is
// not an array, or whose array does not decode, maps to an empty series
// instead of failing the whole payload.
func DecodeHistoricalMap(raw map[string]json.RawMessage) HistoricalMap {
	out := make(HistoricalMap, len(raw))
	for loc, msg := range raw {
		var series []StatSample
		if err := json.Unmarshal(msg, &series); err != nil || series == nil {
			series = []StatSample{}
		}
		out[loc] = series
	}
	return out
}

// HealthStatus is served by /api/health.
type HealthStatus struct {
	Status        string     `json:"status"`
	Version       string     `json:"version"`
	Uptime        float64    `json:"uptime_seconds"`
	LastSample    *time.Time `json:"last_sample,omitempty"`
	Locations     int        `json:"locations"`
	Samples       int        `json:"samples"`
	DegradedStart bool       `json:"degraded_start"`
	StatsBreaker  string     `json:"stats_breaker,omitempty"`
	WSClients     int        `json:"websocket_clients"`
}

// PeakPoint is one slot of the peak-hours card.
type PeakPoint struct {
	Time   string `json:"time"`
	Status string `json:"status"`
}

// PeakHours lists the three busiest hourly slots.
type PeakHours struct {
	PeakStart PeakPoint `json:"peakStart"`
	PeakMax   PeakPoint `json:"peakMax"`
	PeakEnd   PeakPoint `json:"peakEnd"`
}

// WeeklySummary is the projected weekly traffic split.
type WeeklySummary struct {
	Monday  int `json:"monday"`
	Weekday int `json:"weekday"`
	Weekend int `json:"weekend"`
	Total   int `json:"total"`
}
