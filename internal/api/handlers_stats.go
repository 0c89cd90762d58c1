// FootTraffic - Foot-Traffic Monitoring and Dwell-Time Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/foottraffic

package api

import (
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/foottraffic/internal/models"
	"github.com/tomtom215/foottraffic/internal/validation"
)

const (
	healthHealthy  = "healthy"
	healthDegraded = "degraded"
)

// maxRangeHours caps ?hours on the aggregates endpoint.
const maxRangeHours = 24 * 7

// Health reports liveness and data freshness. It never fails: a degraded
// start or an open stats breaker only changes the status field.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	hs := models.HealthStatus{
		Status:        healthHealthy,
		Version:       h.version,
		Uptime:        time.Since(h.startTime).Seconds(),
		Locations:     len(h.store.Locations()),
		Samples:       h.store.SampleCount(),
		DegradedStart: h.store.Degraded(),
	}
	if latest, ok := h.store.LatestStats(); ok {
		ts := latest.Timestamp
		hs.LastSample = &ts
	}
	if h.breaker != nil {
		hs.StatsBreaker = h.breaker()
	}
	if h.hub != nil {
		hs.WSClients = h.hub.GetClientCount()
	}
	if hs.DegradedStart || hs.StatsBreaker == "open" {
		hs.Status = healthDegraded
	}
	NewResponseWriter(w, r).Success(hs)
}

// Stats serves the latest validated sample in the upstream feed's shape.
func (h *Handler) Stats(w http.ResponseWriter, _ *http.Request) {
	latest, ok := h.store.LatestStats()
	if !ok {
		writeRawJSON(w, http.StatusOK, models.StatsResponse{Success: false})
		return
	}
	writeRawJSON(w, http.StatusOK, models.StatsResponse{Success: true, Stats: &latest})
}

// locationParam reads and validates the {location} path segment.
func locationParam(rw *ResponseWriter, r *http.Request) (string, bool) {
	loc, err := url.PathUnescape(chi.URLParam(r, "location"))
	if err != nil {
		rw.BadRequest("Malformed location")
		return "", false
	}
	if verr := validation.ValidateVar("location", loc, "required,location"); verr != nil {
		rw.ValidationError(verr)
		return "", false
	}
	return loc, true
}

// Aggregates serves minute aggregates for one location, optionally limited
// to the trailing ?hours.
func (h *Handler) Aggregates(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	loc, ok := locationParam(rw, r)
	if !ok {
		return
	}

	hours := 0
	if v := r.URL.Query().Get("hours"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 || n > maxRangeHours {
			rw.ErrorWithDetails(http.StatusBadRequest, ErrCodeValidationFailed,
				"hours must be an integer between 0 and "+strconv.Itoa(maxRangeHours),
				map[string]string{"field": "hours"})
			return
		}
		hours = n
	}

	aggs := h.store.AggregatedRange(loc, hours)
	rw.List(models.LocationAggregates{Location: loc, Aggregates: aggs}, len(aggs))
}

// History serves the raw retained samples of one location, oldest first.
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	loc, ok := locationParam(rw, r)
	if !ok {
		return
	}
	series := h.store.History(loc)
	rw.List(series, len(series))
}

// Locations lists every location with retained history.
func (h *Handler) Locations(w http.ResponseWriter, r *http.Request) {
	locs := h.store.Locations()
	NewResponseWriter(w, r).List(locs, len(locs))
}

// Map serves the latest map snapshot and its total.
func (h *Handler) Map(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	snap, ok := h.store.MapSnapshot()
	if !ok {
		rw.Error(http.StatusServiceUnavailable, ErrCodeNoData, "No map snapshot yet")
		return
	}
	rw.Success(map[string]any{"map": snap, "total": h.store.TotalCount()})
}

// View serves the full dashboard projection of the latest sample.
func (h *Handler) View(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	v, ok := h.projector.Latest()
	if !ok {
		rw.Error(http.StatusServiceUnavailable, ErrCodeNoData, "No sample projected yet")
		return
	}
	rw.Success(v)
}

// PeakHours serves the peak-hours card of the latest projection.
func (h *Handler) PeakHours(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	v, ok := h.projector.Latest()
	if !ok {
		rw.Error(http.StatusServiceUnavailable, ErrCodeNoData, "No sample projected yet")
		return
	}
	rw.Success(v.PeakHours)
}

// WeeklySummary serves the weekly split of the latest projection.
func (h *Handler) WeeklySummary(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	v, ok := h.projector.Latest()
	if !ok {
		rw.Error(http.StatusServiceUnavailable, ErrCodeNoData, "No sample projected yet")
		return
	}
	rw.Success(v.Weekly)
}
