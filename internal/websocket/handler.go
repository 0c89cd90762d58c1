// FootTraffic - Foot-Traffic Monitoring and Dwell-Time Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/foottraffic

package websocket

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tomtom215/foottraffic/internal/logging"
)

// OriginChecker returns a CheckOrigin func that accepts listed origins.
// "*" accepts any origin. Requests without an Origin header are rejected.
func OriginChecker(allowed []string) func(*http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			logging.Warn().Msg("WebSocket connection rejected: missing Origin header")
			return false
		}
		for _, a := range allowed {
			if a == "*" || a == origin {
				return true
			}
		}
		logging.Warn().Str("origin", origin).Msg("WebSocket connection rejected from unauthorized origin")
		return false
	}
}

// Handler upgrades requests and registers the resulting clients.
func (h *Hub) Handler(checkOrigin func(*http.Request) bool) http.HandlerFunc {
	upgrader := websocket.Upgrader{
		ReadBufferSize:   1024,
		WriteBufferSize:  1024,
		CheckOrigin:      checkOrigin,
		HandshakeTimeout: 10 * time.Second,
	}
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			// Upgrade has already written the error response.
			logging.Ctx(r.Context()).Debug().Err(err).Msg("WebSocket upgrade failed")
			return
		}
		client := NewClient(h, conn)
		select {
		case h.Register <- client:
			client.Start()
		case <-r.Context().Done():
			_ = conn.Close()
		}
	}
}
