// FootTraffic - Foot-Traffic Monitoring and Dwell-Time Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/foottraffic

// Package backup provides the file-backed historical archive that serves the
// save-historical and load-historical endpoints.
//
// Two files live under the data directory:
//
//	video_stats.json      latest sample
//	historical_data.json  {location: samples}
//
// Every overwrite first copies the previous file to
// backups/<name>_YYYYMMDD_HHMMSS.json. Writes go through a temp file and a
// rename, so readers never see a partial file.
//
// Layout:
//
//	<data_dir>/
//	├── video_stats.json
//	├── historical_data.json
//	└── backups/
//	    ├── historical_data_20260301_090000.json
//	    └── video_stats_20260301_085955.json
//
// Usage:
//
//	m, err := backup.NewManager(backup.Config{DataDir: "./data", MaxBackups: 50})
//	err = m.SaveHistorical(ctx, historical)
//	list, err := m.List()
//	kind, err := m.Restore(ctx, list[0].Filename)
//
// Restore decides the target by filename prefix: video_stats* restores the
// stats file, historical_data* the historical file. Anything else, and any
// name containing a path component, is rejected.
//
// Manager also satisfies store.Backup, so a single node can replicate to its
// own archive without an HTTP round trip.
package backup
