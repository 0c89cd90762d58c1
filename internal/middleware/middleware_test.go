// FootTraffic - Foot-Traffic Monitoring and Dwell-Time Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/foottraffic

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tomtom215/foottraffic/internal/logging"
	"github.com/tomtom215/foottraffic/internal/metrics"
)

func TestRequestID(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name       string
		incoming   string
		corr       string
		keepID     bool
		keepCorrID bool
	}{
		{"generated", "", "", false, false},
		{"upstream kept", "req-123", "corr-9", true, true},
		{"garbage replaced", "bad id with spaces\n", "", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var gotReq, gotCorr string
			h := RequestID(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
				gotReq = logging.RequestIDFromContext(r.Context())
				gotCorr = logging.CorrelationIDFromContext(r.Context())
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.incoming != "" {
				req.Header.Set(RequestIDHeader, tt.incoming)
			}
			if tt.corr != "" {
				req.Header.Set(CorrelationIDHeader, tt.corr)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			header := rec.Header().Get(RequestIDHeader)
			if header == "" || header != gotReq {
				t.Errorf("header %q, context %q", header, gotReq)
			}
			if tt.keepID != (header == tt.incoming) {
				t.Errorf("request ID = %q, incoming %q", header, tt.incoming)
			}
			if gotCorr == "" || tt.keepCorrID != (gotCorr == tt.corr) {
				t.Errorf("correlation ID = %q", gotCorr)
			}
		})
	}
}

func TestPrometheusMetricsUsesRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(PrometheusMetrics)
	r.Get("/api/history/{location}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	counter := metrics.APIRequestsTotal.WithLabelValues(http.MethodGet, "/api/history/{location}", "418")
	before := testutil.ToFloat64(counter)

	for _, loc := range []string{"School", "Palengke"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/history/"+loc, nil))
	}
	if got := testutil.ToFloat64(counter) - before; got != 2 {
		t.Errorf("route counter delta = %v, want 2", got)
	}

	unmatched := metrics.APIRequestsTotal.WithLabelValues(http.MethodGet, unmatchedRoute, "404")
	before = testutil.ToFloat64(unmatched)
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nope", nil))
	if got := testutil.ToFloat64(unmatched) - before; got != 1 {
		t.Errorf("unmatched counter delta = %v, want 1", got)
	}
}

func TestStatusWriterKeepsFirstStatus(t *testing.T) {
	t.Parallel()
	rec := httptest.NewRecorder()
	w := &statusWriter{ResponseWriter: rec, status: http.StatusOK}
	w.WriteHeader(http.StatusCreated)
	w.WriteHeader(http.StatusInternalServerError)
	if w.status != http.StatusCreated {
		t.Errorf("status = %d", w.status)
	}
	if w.Unwrap() != rec {
		t.Error("Unwrap() lost the writer")
	}
	if _, _, err := w.Hijack(); err == nil {
		t.Error("Hijack() on a recorder should fail")
	}
}
