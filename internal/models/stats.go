// FootTraffic - Foot-Traffic Monitoring and Dwell-Time Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/foottraffic

// Package models defines the data structures shared across FootTraffic:
// sensor samples, derived aggregates, map snapshots and wire envelopes.
package models

import (
	"math"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

// UnknownLocation labels samples whose feed omitted the location.
const UnknownLocation = "Unknown Location"

// StatSample is one observation from the video-analysis feed.
// Samples are values and are never mutated after construction.
type StatSample struct {
	Location         string    `json:"location"`
	PeopleCount      int       `json:"people_count"`
	AvgDwellTime     float64   `json:"avg_dwell_time"`
	HighestDwellTime float64   `json:"highest_dwell_time"`
	Timestamp        time.Time `json:"timestamp"`
}

// RawStats is the stats object as the upstream feed sends it. Every field is
// optional; Sample fills in the defaults.
type RawStats struct {
	PeopleCount      *float64 `json:"people_count"`
	AvgDwellTime     *float64 `json:"avg_dwell_time"`
	HighestDwellTime *float64 `json:"highest_dwell_time"`
	Location         *string  `json:"location"`
	Timestamp        *string  `json:"timestamp"`
}

// Sample normalizes the raw feed payload:
//   - missing or negative numbers become 0
//   - avg dwell time is forced to 0 when nobody is present
//   - a blank location becomes UnknownLocation
//   - a missing or unparseable timestamp becomes now
func (r RawStats) Sample(now time.Time) StatSample {
	s := StatSample{
		PeopleCount:      int(math.Round(nonNegative(r.PeopleCount))),
		AvgDwellTime:     nonNegative(r.AvgDwellTime),
		HighestDwellTime: nonNegative(r.HighestDwellTime),
		Location:         UnknownLocation,
		Timestamp:        now,
	}
	if s.PeopleCount == 0 {
		s.AvgDwellTime = 0
	}
	if r.Location != nil && strings.TrimSpace(*r.Location) != "" {
		s.Location = *r.Location
	}
	if r.Timestamp != nil {
		if ts, ok := ParseTimestamp(*r.Timestamp); ok {
			s.Timestamp = ts
		}
	}
	return s
}

func nonNegative(v *float64) float64 {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) || *v < 0 {
		return 0
	}
	return *v
}

// timestampLayouts covers RFC3339 from JS clients and the zone-less
// isoformat() that Python backends emit. Zone-less values are read as local time.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999",
	"2006-01-02 15:04:05",
}

// ParseTimestamp parses the timestamp formats seen on the wire.
func ParseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, true
	}
	for _, layout := range timestampLayouts[1:] {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// UnmarshalJSON accepts the loose upstream shape so archived history written
// by other producers still loads.
func (s *StatSample) UnmarshalJSON(data []byte) error {
	var raw RawStats
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = raw.Sample(time.Now())
	return nil
}

// HistoricalMap is the per-location sample history, keyed by location label.
type HistoricalMap map[string][]StatSample

// Clone returns a deep copy safe to hand to another goroutine.
func (h HistoricalMap) Clone() HistoricalMap {
	out := make(HistoricalMap, len(h))
	for loc, series := range h {
		cp := make([]StatSample, len(series))
		copy(cp, series)
		out[loc] = cp
	}
	return out
}

// SampleCount is the total number of samples across locations.
func (h HistoricalMap) SampleCount() int {
	n := 0
	for _, series := range h {
		n += len(series)
	}
	return n
}

// MinuteAggregate is the per-minute mean of one location's samples.
type MinuteAggregate struct {
	Time         string  `json:"time"`
	Hour         int     `json:"hour"`
	Minute       int     `json:"minute"`
	PeopleCount  float64 `json:"people_count"`
	AvgDwellTime float64 `json:"avg_dwell_time"`
	DataPoints   int     `json:"data_points"`
}

// LocationAggregates pairs a location with its freshly computed aggregates.
type LocationAggregates struct {
	Location   string            `json:"location"`
	Aggregates []MinuteAggregate `json:"aggregates"`
}
