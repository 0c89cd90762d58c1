// FootTraffic - Foot-Traffic Monitoring and Dwell-Time Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/foottraffic

package sync

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/foottraffic/internal/models"
	"github.com/tomtom215/foottraffic/internal/store"
)

var _ store.Backup = (*BackupClient)(nil)

type backupServer struct {
	mu       sync.Mutex
	saved    []byte
	loadBody string
	status   string
}

func (b *backupServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.Method == http.MethodPost && r.URL.Path == SaveHistoricalPath:
		body, _ := io.ReadAll(r.Body)
		b.mu.Lock()
		b.saved = body
		status := b.status
		b.mu.Unlock()
		_ = json.NewEncoder(w).Encode(models.SaveHistoricalResponse{Status: status, Message: "disk full"})
	case r.Method == http.MethodGet && r.URL.Path == LoadHistoricalPath:
		b.mu.Lock()
		body := b.loadBody
		b.mu.Unlock()
		_, _ = io.WriteString(w, body)
	default:
		http.NotFound(w, r)
	}
}

func TestBackupClientSave(t *testing.T) {
	t.Parallel()
	bs := &backupServer{status: models.StatusSuccess}
	srv := httptest.NewServer(bs)
	defer srv.Close()
	c := NewBackupClient(srv.URL, time.Second, srv.Client())

	h := models.HistoricalMap{"Gate": {{Location: "Gate", PeopleCount: 4, Timestamp: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}}}
	if err := c.Save(context.Background(), h); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	bs.mu.Lock()
	saved := bs.saved
	bs.mu.Unlock()
	var got models.HistoricalMap
	if err := json.Unmarshal(saved, &got); err != nil {
		t.Fatalf("saved body %s: %v", saved, err)
	}
	if len(got["Gate"]) != 1 || got["Gate"][0].PeopleCount != 4 {
		t.Errorf("saved = %+v", got)
	}

	if err := c.Save(context.Background(), nil); err != nil {
		t.Fatalf("Save(nil) error = %v", err)
	}
	bs.mu.Lock()
	empty := string(bs.saved)
	bs.mu.Unlock()
	if empty != "{}" {
		t.Errorf("Save(nil) body = %s, want {}", empty)
	}
}

func TestBackupClientSaveRejected(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(&backupServer{status: "error"})
	defer srv.Close()
	c := NewBackupClient(srv.URL, time.Second, srv.Client())

	if err := c.Save(context.Background(), models.HistoricalMap{}); !errors.Is(err, ErrBackupRejected) {
		t.Errorf("Save() error = %v, want ErrBackupRejected", err)
	}
}

func TestBackupClientLoad(t *testing.T) {
	t.Parallel()
	bs := &backupServer{loadBody: `{"status":"success","data":{
		"Gate":[{"location":"Gate","people_count":2,"timestamp":"2026-03-01T09:00:00Z"}],
		"Broken":{"not":"an array"},
		"Null":null}}`}
	srv := httptest.NewServer(bs)
	defer srv.Close()
	c := NewBackupClient(srv.URL, time.Second, srv.Client())

	h, err := c.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(h["Gate"]) != 1 || h["Gate"][0].PeopleCount != 2 {
		t.Errorf("Gate = %+v", h["Gate"])
	}
	for _, loc := range []string{"Broken", "Null"} {
		series, ok := h[loc]
		if !ok || series == nil || len(series) != 0 {
			t.Errorf("%s = %#v, want empty series", loc, series)
		}
	}
}

func TestBackupClientLoadErrors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		body string
		want error
	}{
		{name: "error status", body: `{"status":"error","message":"no data"}`, want: ErrBackupRejected},
		{name: "not json", body: `<html>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			srv := httptest.NewServer(&backupServer{loadBody: tt.body})
			defer srv.Close()
			c := NewBackupClient(srv.URL, time.Second, srv.Client())

			_, err := c.Load(context.Background())
			if err == nil {
				t.Fatal("Load() succeeded")
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Errorf("Load() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestBackupClientRecoversStore(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(&backupServer{loadBody: `{"status":"success","data":{"Gate":[{"location":"Gate","people_count":5,"timestamp":"2026-03-01T09:00:00Z"}]}}`})
	defer srv.Close()

	st := store.New(store.Options{Backup: NewBackupClient(srv.URL, time.Second, srv.Client())})
	report := st.Recover(context.Background())
	if report.Source != store.SourceRemote || report.Samples != 1 {
		t.Errorf("report = %+v", report)
	}
}
