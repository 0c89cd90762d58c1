// FootTraffic - Foot-Traffic Monitoring and Dwell-Time Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/foottraffic

package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/tomtom215/foottraffic/internal/backup"
	"github.com/tomtom215/foottraffic/internal/logging"
	"github.com/tomtom215/foottraffic/internal/models"
)

const statusError = "error"

// SaveHistorical stores a replicated history map in the archive. The body
// and response use the upstream backup endpoint's shape.
func (h *Handler) SaveHistorical(w http.ResponseWriter, r *http.Request) {
	var raw map[string]json.RawMessage
	if err := decodeJSON(w, r, maxHistoricalBytes, &raw); err != nil || raw == nil {
		writeRawJSON(w, http.StatusBadRequest, models.SaveHistoricalResponse{
			Status:  statusError,
			Message: "body must be a JSON object of location to samples",
		})
		return
	}

	hist := models.DecodeHistoricalMap(raw)
	if err := h.archive.SaveHistorical(r.Context(), hist); err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Failed to archive historical data")
		writeRawJSON(w, http.StatusInternalServerError, models.SaveHistoricalResponse{
			Status:  statusError,
			Message: "failed to save historical data",
		})
		return
	}
	writeRawJSON(w, http.StatusOK, models.SaveHistoricalResponse{
		Status:  models.StatusSuccess,
		Message: "historical data saved",
		Samples: hist.SampleCount(),
	})
}

// LoadHistorical returns the archived history map. An archive that was
// never written answers with an empty map.
func (h *Handler) LoadHistorical(w http.ResponseWriter, r *http.Request) {
	hist, err := h.archive.LoadHistorical(r.Context())
	switch {
	case errors.Is(err, backup.ErrNotFound):
		hist = models.HistoricalMap{}
	case err != nil:
		logging.Ctx(r.Context()).Error().Err(err).Msg("Failed to read historical archive")
		writeRawJSON(w, http.StatusInternalServerError, models.LoadHistoricalResponse{
			Status:  statusError,
			Data:    models.HistoricalMap{},
			Message: "failed to load historical data",
		})
		return
	}
	writeRawJSON(w, http.StatusOK, models.LoadHistoricalResponse{Status: models.StatusSuccess, Data: hist})
}

// ListBackups lists archive snapshots, newest first.
func (h *Handler) ListBackups(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	list, err := h.archive.List()
	if err != nil {
		rw.InternalError("Failed to list backups", err)
		return
	}
	rw.List(list, len(list))
}

// RestoreResult is returned by RestoreBackup.
type RestoreResult struct {
	Filename string      `json:"filename"`
	Kind     backup.Kind `json:"kind"`
	Samples  int         `json:"samples,omitempty"`
}

// RestoreBackup copies a snapshot over its live file. Restoring history
// also replaces the in-memory history.
func (h *Handler) RestoreBackup(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	filename := chi.URLParam(r, "filename")

	kind, err := h.archive.Restore(r.Context(), filename)
	switch {
	case errors.Is(err, backup.ErrInvalidName), errors.Is(err, backup.ErrUnknownKind):
		rw.BadRequest(err.Error())
		return
	case errors.Is(err, backup.ErrNotFound):
		rw.NotFound("Backup not found")
		return
	case err != nil:
		rw.InternalError("Failed to restore backup", err)
		return
	}

	res := RestoreResult{Filename: filename, Kind: kind}
	if kind == backup.KindHistorical {
		hist, err := h.archive.LoadHistorical(r.Context())
		if err != nil {
			rw.InternalError("Restored history is unreadable", err)
			return
		}
		h.store.ReplaceHistory(r.Context(), hist)
		res.Samples = hist.SampleCount()
	}
	rw.Success(res)
}
