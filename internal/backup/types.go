// FootTraffic - Foot-Traffic Monitoring and Dwell-Time Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/foottraffic

package backup

import (
	"errors"
	"strings"
	"time"
)

// Kind identifies an archived file. Its value is the file's base name.
type Kind string

const (
	// KindStats is the latest-sample file.
	KindStats Kind = "video_stats"

	// KindHistorical is the per-location history file.
	KindHistorical Kind = "historical_data"
)

// Kinds lists every archived kind.
var Kinds = []Kind{KindStats, KindHistorical}

// Filename is the kind's live file name.
func (k Kind) Filename() string { return string(k) + ".json" }

// kindOf classifies a backup filename by prefix.
func kindOf(filename string) (Kind, bool) {
	for _, k := range Kinds {
		if strings.HasPrefix(filename, string(k)) {
			return k, true
		}
	}
	return "", false
}

// Backup describes one snapshot file.
type Backup struct {
	Filename string    `json:"filename"`
	Kind     Kind      `json:"kind"`
	Size     int64     `json:"size"`
	Modified time.Time `json:"modified"`
}

var (
	// ErrNotFound is returned when a live file or backup does not exist.
	ErrNotFound = errors.New("archive file not found")

	// ErrUnknownKind is returned when a backup name matches no kind.
	ErrUnknownKind = errors.New("unknown backup type")

	// ErrInvalidName is returned for names with path components or a
	// non-JSON extension.
	ErrInvalidName = errors.New("invalid backup filename")
)
