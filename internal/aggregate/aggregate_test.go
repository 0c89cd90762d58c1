// FootTraffic - Foot-Traffic Monitoring and Dwell-Time Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/foottraffic

package aggregate

import (
	"reflect"
	"testing"
	"time"

	"github.com/tomtom215/foottraffic/internal/models"
)

func sampleAt(h, m, s, people int, dwell float64) models.StatSample {
	return models.StatSample{
		Location:     "Market",
		PeopleCount:  people,
		AvgDwellTime: dwell,
		Timestamp:    time.Date(2026, 3, 1, h, m, s, 0, time.Local),
	}
}

func TestByMinute(t *testing.T) {
	t.Parallel()

	series := []models.StatSample{
		sampleAt(9, 1, 5, 30, 12),
		sampleAt(9, 0, 10, 10, 4),
		sampleAt(9, 0, 40, 20, 5),
	}

	got := ByMinute(series)
	want := []models.MinuteAggregate{
		{Time: "09:00", Hour: 9, Minute: 0, PeopleCount: 15, AvgDwellTime: 4.5, DataPoints: 2},
		{Time: "09:01", Hour: 9, Minute: 1, PeopleCount: 30, AvgDwellTime: 12, DataPoints: 1},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ByMinute() = %+v\nwant %+v", got, want)
	}

	if again := ByMinute(series); !reflect.DeepEqual(again, got) {
		t.Error("ByMinute is not idempotent")
	}
}

func TestByMinuteOrderingAndRounding(t *testing.T) {
	t.Parallel()

	series := []models.StatSample{
		sampleAt(23, 59, 0, 1, 0),
		sampleAt(0, 5, 0, 1, 1),
		sampleAt(0, 5, 30, 2, 1),
		sampleAt(0, 5, 45, 2, 2),
		sampleAt(12, 0, 0, 7, 3.33),
	}
	got := ByMinute(series)

	times := make([]string, len(got))
	for i, a := range got {
		times[i] = a.Time
	}
	if want := []string{"00:05", "12:00", "23:59"}; !reflect.DeepEqual(times, want) {
		t.Errorf("order = %v, want %v", times, want)
	}
	if got[0].PeopleCount != 1.7 || got[0].AvgDwellTime != 1.3 || got[0].DataPoints != 3 {
		t.Errorf("00:05 bucket = %+v, want mean 1.7 / 1.3 over 3 points", got[0])
	}
	if got[1].AvgDwellTime != 3.3 {
		t.Errorf("12:00 dwell = %v, want 3.3", got[1].AvgDwellTime)
	}
}

func TestByMinuteEmpty(t *testing.T) {
	t.Parallel()

	got := ByMinute(nil)
	if got == nil || len(got) != 0 {
		t.Errorf("ByMinute(nil) = %#v, want empty slice", got)
	}
}

func TestSince(t *testing.T) {
	t.Parallel()

	series := []models.StatSample{sampleAt(8, 0, 0, 1, 0), sampleAt(9, 0, 0, 2, 0), sampleAt(10, 0, 0, 3, 0)}
	cutoff := time.Date(2026, 3, 1, 9, 0, 0, 0, time.Local)

	if got := Since(series, cutoff); len(got) != 2 || got[0].PeopleCount != 2 {
		t.Errorf("Since() = %+v", got)
	}
	if got := Since(series, time.Time{}); len(got) != 3 {
		t.Errorf("Since(zero) len = %d, want 3", len(got))
	}
}

func TestTrafficCategory(t *testing.T) {
	t.Parallel()

	tests := []struct {
		count int
		want  string
	}{
		{0, TrafficLow}, {20, TrafficLow}, {21, TrafficMedium},
		{50, TrafficMedium}, {51, TrafficHigh}, {400, TrafficHigh},
	}
	for _, tt := range tests {
		if got := TrafficCategory(tt.count); got != tt.want {
			t.Errorf("TrafficCategory(%d) = %q, want %q", tt.count, got, tt.want)
		}
	}
}

func TestHourMultiplier(t *testing.T) {
	t.Parallel()

	tests := map[int]float64{
		0: 0.3, 4: 0.3, 5: 1.2, 7: 1.2, 8: 1.8, 10: 1.8, 11: 1.4, 12: 1.4,
		13: 1.9, 14: 1.9, 15: 1.3, 16: 1.3, 17: 2.0, 19: 2.0, 20: 1.5, 21: 1.5,
		22: 0.8, 23: 0.8,
	}
	for hour, want := range tests {
		if got := HourMultiplier(hour); got != want {
			t.Errorf("HourMultiplier(%d) = %v, want %v", hour, got, want)
		}
	}
}

func TestHourLabel(t *testing.T) {
	t.Parallel()

	tests := map[int]string{0: "12 AM", 1: "1 AM", 11: "11 AM", 12: "12 PM", 15: "3 PM", 23: "11 PM", 24: "12 AM", -1: "11 PM"}
	for hour, want := range tests {
		if got := HourLabel(hour); got != want {
			t.Errorf("HourLabel(%d) = %q, want %q", hour, got, want)
		}
	}
}

func TestPeakHours(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 2, 14, 20, 0, 0, time.Local)
	points := []HourlyPoint{
		{Label: "1 PM", Hour: 13, Traffic: 500},
		{Label: "2 PM", Hour: 14, Traffic: 900},
		{Label: "3 PM", Hour: 15, Traffic: 700, IsForecast: true},
		{Label: "5 PM", Hour: 17, Traffic: 800, IsForecast: true},
		{Label: "6 PM", Hour: 18, Traffic: 100, IsForecast: true},
	}

	got, err := PeakHours(points, now)
	if err != nil {
		t.Fatalf("PeakHours() error = %v", err)
	}
	want := models.PeakHours{
		PeakStart: models.PeakPoint{Time: "3 PM", Status: "in 1 hour"},
		PeakMax:   models.PeakPoint{Time: "2 PM", Status: "happening now"},
		PeakEnd:   models.PeakPoint{Time: "5 PM", Status: "in 3 hours (forecast)"},
	}
	if got != want {
		t.Errorf("PeakHours() = %+v\nwant %+v", got, want)
	}
}

func TestPeakStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		hour, current int
		forecast      bool
		want          string
	}{
		{10, 10, false, "happening now"},
		{10, 10, true, "in 0 hours (forecast)"},
		{11, 10, true, "in 1 hour"},
		{9, 10, false, "in 23 hours"},
		{14, 10, true, "in 4 hours (forecast)"},
	}
	for _, tt := range tests {
		if got := peakStatus(tt.hour, tt.current, tt.forecast); got != tt.want {
			t.Errorf("peakStatus(%d, %d, %v) = %q, want %q", tt.hour, tt.current, tt.forecast, got, tt.want)
		}
	}
}

func TestPeakHoursNotEnough(t *testing.T) {
	t.Parallel()

	if _, err := PeakHours([]HourlyPoint{{}, {}}, time.Now()); err != ErrNotEnoughPoints {
		t.Errorf("PeakHours() error = %v, want ErrNotEnoughPoints", err)
	}
}

func TestWeekly(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		day  time.Weekday
		want models.WeeklySummary
	}{
		{"monday", time.Monday, models.WeeklySummary{Monday: 1000, Weekday: 900, Weekend: 1300, Total: 1000 + 3600 + 2600}},
		{"wednesday", time.Wednesday, models.WeeklySummary{Monday: 900, Weekday: 900, Weekend: 1300, Total: 900 + 3600 + 2600}},
		{"saturday", time.Saturday, models.WeeklySummary{Monday: 900, Weekday: 1200, Weekend: 800, Total: 900 + 4800 + 1600}},
		{"sunday", time.Sunday, models.WeeklySummary{Monday: 900, Weekday: 1200, Weekend: 800, Total: 900 + 4800 + 1600}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Weekly(1000, tt.day); got != tt.want {
				t.Errorf("Weekly(1000, %v) = %+v, want %+v", tt.day, got, tt.want)
			}
		})
	}
}

func TestWeeklyFloors(t *testing.T) {
	t.Parallel()

	got := Weekly(7, time.Tuesday)
	// 7*0.9 = 6.3, 7*1.3 = 9.1
	if got.Monday != 6 || got.Weekday != 6 || got.Weekend != 9 || got.Total != 6+24+18 {
		t.Errorf("Weekly(7) = %+v", got)
	}
}

func TestForecast(t *testing.T) {
	t.Parallel()

	half := func() float64 { return 0.5 }

	// recent = 10,20,30,40: avg 25, trend (40-10)/4 = 7.5
	got := Forecast([]float64{99, 10, 20, 30, 40}, 4, half)
	want := []int{33, 37, 39, 37} // 25+7.5, 25+6*2, 25+4.5*3, 25+3*4
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Forecast() = %v, want %v", got, want)
	}
}

func TestForecastBounds(t *testing.T) {
	t.Parallel()

	if got := Forecast(nil, 3, func() float64 { return 0 }); !reflect.DeepEqual(got, []int{0, 0, 0}) {
		t.Errorf("Forecast(nil) = %v", got)
	}

	falling := Forecast([]float64{100, 0, 0, 0}, 4, func() float64 { return 0 })
	for i, v := range falling {
		if v < 0 {
			t.Errorf("Forecast()[%d] = %d, want >= 0", i, v)
		}
	}

	// Noise is bounded by avg*(0.05+i*0.02)/2 around the trend line.
	lo := Forecast([]float64{100, 100, 100, 100}, 4, func() float64 { return 0 })
	hi := Forecast([]float64{100, 100, 100, 100}, 4, func() float64 { return 0.999999 })
	for i := range lo {
		maxDev := 100 * (0.05 + float64(i)*0.02) / 2
		if float64(100-lo[i]) > maxDev+0.5 || float64(hi[i]-100) > maxDev+0.5 {
			t.Errorf("step %d outside noise band: lo=%d hi=%d", i, lo[i], hi[i])
		}
	}
}
