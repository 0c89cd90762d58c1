// FootTraffic - Foot-Traffic Monitoring and Dwell-Time Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/foottraffic

package middleware

import (
	"net/http"
	"regexp"

	"github.com/google/uuid"

	"github.com/tomtom215/foottraffic/internal/logging"
)

// RequestIDHeader carries the request ID in both directions.
const RequestIDHeader = "X-Request-ID"

// CorrelationIDHeader lets a caller thread its own correlation ID through.
const CorrelationIDHeader = "X-Correlation-ID"

// Upstream IDs are accepted only when they look like IDs.
var validID = regexp.MustCompile(`^[A-Za-z0-9._-]{1,64}$`)

// RequestID assigns each request an ID, echoes it in the response header
// and stores request and correlation IDs in the context for logging.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(RequestIDHeader)
		if !validID.MatchString(requestID) {
			requestID = uuid.New().String()
		}
		w.Header().Set(RequestIDHeader, requestID)

		ctx := logging.ContextWithRequestID(r.Context(), requestID)
		if corr := r.Header.Get(CorrelationIDHeader); validID.MatchString(corr) {
			ctx = logging.ContextWithCorrelationID(ctx, corr)
		} else {
			ctx = logging.ContextWithNewCorrelationID(ctx)
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
