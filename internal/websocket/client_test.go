// FootTraffic - Foot-Traffic Monitoring and Dwell-Time Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/foottraffic

package websocket

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
)

const testOrigin = "http://dashboard.test"

func startServer(t *testing.T, hub *Hub) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(hub.Handler(OriginChecker([]string{testOrigin})))
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, srv *httptest.Server, origin string) (*websocket.Conn, *http.Response, error) {
	t.Helper()
	u := "ws" + strings.TrimPrefix(srv.URL, "http")
	h := http.Header{}
	if origin != "" {
		h.Set("Origin", origin)
	}
	return websocket.DefaultDialer.Dial(u, h)
}

func readMessage(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage() error = %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("bad frame %s: %v", data, err)
	}
	return m
}

func TestHandlerOriginCheck(t *testing.T) {
	hub := NewHub()
	runHub(t, hub)
	srv := startServer(t, hub)

	tests := []struct {
		name   string
		origin string
		ok     bool
	}{
		{"allowed", testOrigin, true},
		{"missing", "", false},
		{"foreign", "http://evil.test", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn, resp, err := dial(t, srv, tt.origin)
			if tt.ok {
				if err != nil {
					t.Fatalf("Dial() error = %v", err)
				}
				_ = conn.Close()
				return
			}
			if err == nil {
				_ = conn.Close()
				t.Fatal("Dial() succeeded")
			}
			if resp == nil || resp.StatusCode != http.StatusForbidden {
				t.Errorf("response = %+v", resp)
			}
		})
	}
}

func TestOriginCheckerWildcard(t *testing.T) {
	t.Parallel()
	check := OriginChecker([]string{"*"})
	r := httptest.NewRequest(http.MethodGet, "/ws", nil)
	r.Header.Set("Origin", "http://anything.test")
	if !check(r) {
		t.Error("wildcard rejected origin")
	}
	r.Header.Del("Origin")
	if check(r) {
		t.Error("wildcard accepted a request without Origin")
	}
}

func TestClientEndToEnd(t *testing.T) {
	hub := NewHub()
	hub.SetWelcome(func() []Message {
		return []Message{{Type: MessageTypeTotalUpdate, Data: TotalUpdateData{Total: 3}}}
	})
	runHub(t, hub)
	srv := startServer(t, hub)

	conn, _, err := dial(t, srv, testOrigin)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	if m := readMessage(t, conn); m["type"] != MessageTypeTotalUpdate {
		t.Errorf("welcome = %v", m)
	}

	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"ping"}`)); err != nil {
		t.Fatal(err)
	}
	if m := readMessage(t, conn); m["type"] != MessageTypePong {
		t.Errorf("ping reply = %v", m)
	}

	hub.BroadcastTotal(9)
	m := readMessage(t, conn)
	data, _ := m["data"].(map[string]any)
	if m["type"] != MessageTypeTotalUpdate || data["total"] != float64(9) {
		t.Errorf("broadcast = %v", m)
	}

	_ = conn.Close()
	waitFor(t, func() bool { return hub.GetClientCount() == 0 })
}

func TestClientIDsIncrease(t *testing.T) {
	t.Parallel()
	a := NewClient(nil, nil)
	b := NewClient(nil, nil)
	if b.ID() <= a.ID() {
		t.Errorf("IDs not increasing: %d then %d", a.ID(), b.ID())
	}
	if cap(a.send) != sendBuffer {
		t.Errorf("send buffer = %d", cap(a.send))
	}
}
