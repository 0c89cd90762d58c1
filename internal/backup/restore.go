// FootTraffic - Foot-Traffic Monitoring and Dwell-Time Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/foottraffic

package backup

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/tomtom215/foottraffic/internal/logging"
	"github.com/tomtom215/foottraffic/internal/metrics"
)

// Restore copies a backup over the live file of its kind. The current live
// file is snapshotted first, so a restore can itself be undone.
func (m *Manager) Restore(ctx context.Context, filename string) (Kind, error) {
	path, err := m.backupPath(filename)
	if err != nil {
		return "", err
	}
	kind, ok := kindOf(filename)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownKind, filename)
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("%s: %w", filename, ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("read backup %s: %w", filename, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, err := m.snapshotLocked(ctx, kind); err != nil {
		return "", err
	}
	err = writeFileAtomic(m.livePath(kind), data)
	metrics.RecordArchiveWrite(string(kind), err)
	if err != nil {
		return "", fmt.Errorf("restore %s: %w", filename, err)
	}
	m.pruneLocked(ctx, kind)

	logging.Ctx(ctx).Info().Str("backup", filename).Str("kind", string(kind)).Msg("Restored from backup")
	return kind, nil
}

// backupPath resolves filename inside the backup directory, rejecting
// anything that would escape it.
func (m *Manager) backupPath(filename string) (string, error) {
	if filename == "" || filename != filepath.Base(filename) ||
		strings.ContainsAny(filename, `/\`) || strings.HasPrefix(filename, ".") ||
		!strings.HasSuffix(filename, ".json") {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, filename)
	}

	dir := filepath.Clean(m.cfg.BackupDir())
	path := filepath.Join(dir, filename)
	if !strings.HasPrefix(path, dir+string(os.PathSeparator)) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, filename)
	}
	return path, nil
}
