// FootTraffic - Foot-Traffic Monitoring and Dwell-Time Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/foottraffic

package backup

import (
	"context"
	"os"
	"path/filepath"

	"github.com/tomtom215/foottraffic/internal/logging"
	"github.com/tomtom215/foottraffic/internal/metrics"
)

// pruneLocked deletes the oldest backups of kind k beyond MaxBackups.
// Deletion failures are logged; the next write retries them.
func (m *Manager) pruneLocked(ctx context.Context, k Kind) {
	defer m.updateBackupGauge(k)
	if m.cfg.MaxBackups <= 0 {
		return
	}

	backups := m.listKind(k)
	if len(backups) <= m.cfg.MaxBackups {
		return
	}

	log := logging.Ctx(ctx)
	for _, b := range backups[m.cfg.MaxBackups:] {
		if err := os.Remove(filepath.Join(m.cfg.BackupDir(), b.Filename)); err != nil {
			log.Warn().Err(err).Str("backup", b.Filename).Msg("Failed to delete old backup")
			continue
		}
		log.Debug().Str("backup", b.Filename).Msg("Deleted old backup")
	}
}

func (m *Manager) updateBackupGauge(k Kind) {
	metrics.ArchiveBackups.WithLabelValues(string(k)).Set(float64(len(m.listKind(k))))
}
