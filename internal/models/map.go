// FootTraffic - Foot-Traffic Monitoring and Dwell-Time Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/foottraffic

package models

// LatLon is a WGS84 coordinate.
type LatLon struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// MapMarker is one location pin on the dashboard map.
type MapMarker struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Lat   float64 `json:"lat"`
	Lon   float64 `json:"lon"`
	Color string  `json:"color"`
	Count int     `json:"count"`
}

// MapSnapshot is the derived map view. It is recomputed, never patched.
type MapSnapshot struct {
	Center   LatLon      `json:"center"`
	Zoom     int         `json:"zoom"`
	ZoneInfo string      `json:"zoneInfo"`
	Markers  []MapMarker `json:"markers"`
}

// Total sums marker counts.
func (m MapSnapshot) Total() int {
	total := 0
	for _, mk := range m.Markers {
		total += mk.Count
	}
	return total
}
