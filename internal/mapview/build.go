// FootTraffic - Foot-Traffic Monitoring and Dwell-Time Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/foottraffic

package mapview

import (
	"math"
	"sort"
	"time"

	"github.com/tomtom215/foottraffic/internal/aggregate"
	"github.com/tomtom215/foottraffic/internal/models"
)

// Series layout: HistoryHours slots ending at the current hour, then
// ForecastHours slots.
const (
	HistoryHours  = 20
	ForecastHours = 4
)

// minLiveBase is the smallest typical traffic assumed for the live camera.
const minLiveBase = 50

// LocationSeries is one location's hourly traffic and dwell time.
type LocationSeries struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Color           string    `json:"color"`
	Traffic         []int     `json:"traffic_values"`
	DwellTime       []float64 `json:"dwell_time_values"`
	TrafficForecast []int     `json:"traffic_forecast"`
	DwellForecast   []int     `json:"dwell_time_forecast"`
}

// Current is the traffic of the current hour.
func (s LocationSeries) Current() int {
	if len(s.Traffic) == 0 {
		return 0
	}
	return s.Traffic[len(s.Traffic)-1]
}

func (s LocationSeries) sum() int {
	total := 0
	for _, v := range s.Traffic {
		total += v
	}
	return total
}

// View is everything derived from one sample.
type View struct {
	GeneratedAt    time.Time               `json:"generated_at"`
	Map            models.MapSnapshot      `json:"map"`
	TimeLabels     []string                `json:"time_labels"`
	ForecastLabels []string                `json:"forecast_labels"`
	Series         []LocationSeries        `json:"locations"`
	Hourly         []aggregate.HourlyPoint `json:"hourly"`
	PeakHours      models.PeakHours        `json:"peak_hours"`
	Weekly         models.WeeklySummary    `json:"weekly_summary"`
}

// Build derives a View from the latest sample. rnd returns values in [0, 1).
//
// The live camera joins the static locations as LiveCameraID, replacing any
// static location of the same name. Its current hour uses the sample's real
// people count and dwell time.
func Build(latest models.StatSample, now time.Time, rnd func() float64) View {
	y, mo, d := now.Date()
	hourStart := time.Date(y, mo, d, now.Hour(), 0, 0, 0, now.Location())
	camera := CameraName(latest.Location)

	locs := withLiveCamera(Locations(), camera, latest.PeopleCount)

	historyHours := make([]int, HistoryHours)
	timeLabels := make([]string, HistoryHours)
	for i := range historyHours {
		h := hourStart.Add(-time.Duration(HistoryHours-1-i) * time.Hour).Hour()
		historyHours[i] = h
		timeLabels[i] = aggregate.HourLabel(h)
	}
	forecastHours := make([]int, ForecastHours)
	forecastLabels := make([]string, ForecastHours)
	for i := range forecastHours {
		h := hourStart.Add(time.Duration(i+1) * time.Hour).Hour()
		forecastHours[i] = h
		forecastLabels[i] = aggregate.HourLabel(h)
	}

	series := make([]LocationSeries, 0, len(locs))
	markers := make([]models.MapMarker, 0, len(locs))
	for _, loc := range locs {
		live := loc.Name == camera
		s := seriesFor(loc, historyHours, live, latest, rnd)
		series = append(series, s)
		markers = append(markers, models.MapMarker{
			ID:    loc.ID,
			Name:  loc.Name,
			Lat:   loc.Lat,
			Lon:   loc.Lon,
			Color: s.Color,
			Count: s.Current(),
		})
	}

	hourly := make([]aggregate.HourlyPoint, 0, HistoryHours+ForecastHours)
	for i, h := range historyHours {
		total := 0
		for _, s := range series {
			total += s.Traffic[i]
		}
		hourly = append(hourly, aggregate.HourlyPoint{Label: timeLabels[i], Hour: h, Traffic: total})
	}
	for i, h := range forecastHours {
		total := 0
		for _, s := range series {
			total += s.TrafficForecast[i]
		}
		hourly = append(hourly, aggregate.HourlyPoint{Label: forecastLabels[i], Hour: h, Traffic: total, IsForecast: true})
	}

	snap := models.MapSnapshot{
		Center:   Center,
		Zoom:     DefaultZoom,
		ZoneInfo: camera,
		Markers:  markers,
	}

	// Always at least 24 points, so the error is unreachable.
	peak, _ := aggregate.PeakHours(hourly, now)

	sort.SliceStable(series, func(i, j int) bool { return series[i].sum() > series[j].sum() })

	return View{
		GeneratedAt:    now,
		Map:            snap,
		TimeLabels:     timeLabels,
		ForecastLabels: forecastLabels,
		Series:         series,
		Hourly:         hourly,
		PeakHours:      peak,
		Weekly:         aggregate.Weekly(snap.Total(), hourStart.Weekday()),
	}
}

func withLiveCamera(locs []Location, camera string, people int) []Location {
	out := locs[:0]
	for _, l := range locs {
		if l.Name != camera {
			out = append(out, l)
		}
	}
	base := people
	if base < minLiveBase {
		base = minLiveBase
	}
	return append(out, Location{ID: LiveCameraID, Name: camera, Lat: Center.Lat, Lon: Center.Lon, Base: base})
}

func seriesFor(loc Location, hours []int, live bool, latest models.StatSample, rnd func() float64) LocationSeries {
	base := float64(loc.Base)
	last := len(hours) - 1

	traffic := make([]int, len(hours))
	dwell := make([]float64, len(hours))
	trafficF := make([]float64, len(hours))
	for i, h := range hours {
		if i == last && live {
			traffic[i] = latest.PeopleCount
			dwell[i] = latest.AvgDwellTime
		} else {
			traffic[i] = int(math.Floor(aggregate.Jitter(base*aggregate.HourMultiplier(h), rnd())))
			dwell[i] = math.Floor((120 + rnd()*120) * dwellFactor(float64(traffic[i])/base))
		}
		trafficF[i] = float64(traffic[i])
	}

	return LocationSeries{
		ID:              loc.ID,
		Name:            loc.Name,
		Color:           ColorFor(loc.Name),
		Traffic:         traffic,
		DwellTime:       dwell,
		TrafficForecast: aggregate.Forecast(trafficF, ForecastHours, rnd),
		DwellForecast:   aggregate.Forecast(dwell, ForecastHours, rnd),
	}
}

// dwellFactor shortens dwell at busy times and lengthens it at quiet ones.
func dwellFactor(busyness float64) float64 {
	switch {
	case busyness > 1.5:
		return 0.8
	case busyness < 0.6:
		return 1.3
	default:
		return 1
	}
}
