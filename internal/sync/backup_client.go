// FootTraffic - Foot-Traffic Monitoring and Dwell-Time Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/foottraffic

package sync

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/foottraffic/internal/breaker"
	"github.com/tomtom215/foottraffic/internal/models"
)

// Backup endpoint paths.
const (
	SaveHistoricalPath = "/api/save-historical"
	LoadHistoricalPath = "/api/load-historical"
)

// ErrBackupRejected is returned when the backup answers with a non-success status.
var ErrBackupRejected = errors.New("backup rejected request")

// BackupClient talks to the remote historical backup.
type BackupClient struct {
	base    string
	client  *http.Client
	breaker *breaker.Breaker[models.HistoricalMap]
}

// NewBackupClient creates a client for baseURL. timeout bounds each request
// when httpClient is nil.
func NewBackupClient(baseURL string, timeout time.Duration, httpClient *http.Client) *BackupClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if httpClient == nil {
		httpClient = defaultHTTPClient(timeout)
	}
	return &BackupClient{
		base:    baseURL,
		client:  httpClient,
		breaker: breaker.New[models.HistoricalMap]("historical-backup", breaker.Settings{}),
	}
}

// Save replaces the remote history with historical.
func (c *BackupClient) Save(ctx context.Context, historical models.HistoricalMap) error {
	if historical == nil {
		historical = models.HistoricalMap{}
	}
	_, err := c.breaker.Execute(func() (models.HistoricalMap, error) {
		var resp models.SaveHistoricalResponse
		if err := postJSON(ctx, c.client, joinURL(c.base, SaveHistoricalPath), historical, &resp); err != nil {
			return nil, fmt.Errorf("save historical: %w", err)
		}
		if resp.Status != models.StatusSuccess {
			return nil, fmt.Errorf("save historical: %w: %s", ErrBackupRejected, resp.Message)
		}
		return nil, nil
	})
	return err
}

// loadEnvelope keeps per-location payloads raw so one malformed series
// does not fail the whole load.
type loadEnvelope struct {
	Status  string                     `json:"status"`
	Data    map[string]json.RawMessage `json:"data"`
	Message string                     `json:"message"`
}

// Load fetches the remote history. Locations whose payload is not an array
// come back as empty series.
func (c *BackupClient) Load(ctx context.Context) (models.HistoricalMap, error) {
	return c.breaker.Execute(func() (models.HistoricalMap, error) {
		var env loadEnvelope
		if err := getJSON(ctx, c.client, joinURL(c.base, LoadHistoricalPath), &env); err != nil {
			return nil, fmt.Errorf("load historical: %w", err)
		}
		if env.Status != models.StatusSuccess {
			return nil, fmt.Errorf("load historical: %w: %s", ErrBackupRejected, env.Message)
		}
		return models.DecodeHistoricalMap(env.Data), nil
	})
}
