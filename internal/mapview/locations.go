// FootTraffic - Foot-Traffic Monitoring and Dwell-Time Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/foottraffic

package mapview

import "github.com/tomtom215/foottraffic/internal/models"

// Map framing.
var Center = models.LatLon{Lat: 14.5995, Lon: 120.9842}

// DefaultZoom is the initial map zoom level.
const DefaultZoom = 12

// Location is a static map location with its typical hourly traffic.
type Location struct {
	ID   string
	Name string
	Lat  float64
	Lon  float64
	Base int
}

var manila = []Location{
	{ID: "1", Name: "Makati CBD", Lat: 14.5547, Lon: 121.0244, Base: 280},
	{ID: "2", Name: "Bonifacio Global City", Lat: 14.5508, Lon: 121.0551, Base: 340},
	{ID: "3", Name: "SM Mall of Asia", Lat: 14.5355, Lon: 120.9841, Base: 420},
	{ID: "4", Name: "Quezon City Circle", Lat: 14.6515, Lon: 121.0507, Base: 180},
	{ID: "5", Name: "Divisoria Market", Lat: 14.6019, Lon: 120.9724, Base: 390},
	{ID: "6", Name: "Intramuros", Lat: 14.5915, Lon: 120.9722, Base: 160},
	{ID: "7", Name: "Rizal Park", Lat: 14.5832, Lon: 120.9822, Base: 200},
	{ID: "8", Name: "University Belt", Lat: 14.6042, Lon: 120.9822, Base: 290},
	{ID: "9", Name: "Binondo", Lat: 14.6010, Lon: 120.9767, Base: 230},
}

// Locations returns a copy of the static Manila locations.
func Locations() []Location {
	out := make([]Location, len(manila))
	copy(out, manila)
	return out
}
