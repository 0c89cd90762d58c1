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
	"sync"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/foottraffic/internal/logging"
	"github.com/tomtom215/foottraffic/internal/metrics"
	"github.com/tomtom215/foottraffic/internal/models"
)

// Manager owns the archive directory. All writes are serialized.
type Manager struct {
	cfg Config
	mu  sync.Mutex
}

// NewManager validates cfg and creates the archive directories.
func NewManager(cfg Config) (*Manager, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if err := cfg.EnsureDirs(); err != nil {
		return nil, err
	}
	m := &Manager{cfg: cfg}
	for _, k := range Kinds {
		m.updateBackupGauge(k)
	}
	return m, nil
}

// DataDir is the archive root.
func (m *Manager) DataDir() string { return m.cfg.DataDir }

func (m *Manager) livePath(k Kind) string {
	return filepath.Join(m.cfg.DataDir, k.Filename())
}

// SaveHistorical replaces the historical file.
func (m *Manager) SaveHistorical(ctx context.Context, h models.HistoricalMap) error {
	if h == nil {
		h = models.HistoricalMap{}
	}
	return m.write(ctx, KindHistorical, h)
}

// LoadHistorical reads the historical file. Series that do not decode come
// back empty. A missing file returns ErrNotFound.
func (m *Manager) LoadHistorical(_ context.Context) (models.HistoricalMap, error) {
	var raw map[string]json.RawMessage
	if err := m.read(KindHistorical, &raw); err != nil {
		return nil, err
	}
	return models.DecodeHistoricalMap(raw), nil
}

// SaveStats replaces the latest-sample file.
func (m *Manager) SaveStats(ctx context.Context, s models.StatSample) error {
	return m.write(ctx, KindStats, s)
}

// LoadStats reads the latest-sample file.
func (m *Manager) LoadStats(_ context.Context) (models.StatSample, error) {
	var s models.StatSample
	err := m.read(KindStats, &s)
	return s, err
}

// Save implements store.Backup.
func (m *Manager) Save(ctx context.Context, h models.HistoricalMap) error {
	return m.SaveHistorical(ctx, h)
}

// Load implements store.Backup. An archive that was never written is an
// empty history rather than an outage.
func (m *Manager) Load(ctx context.Context) (models.HistoricalMap, error) {
	h, err := m.LoadHistorical(ctx)
	if errors.Is(err, ErrNotFound) {
		return models.HistoricalMap{}, nil
	}
	return h, err
}

func (m *Manager) write(ctx context.Context, k Kind, v any) (err error) {
	defer func() { metrics.RecordArchiveWrite(string(k), err) }()

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", k, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, err := m.snapshotLocked(ctx, k); err != nil {
		return err
	}
	if err := writeFileAtomic(m.livePath(k), data); err != nil {
		return fmt.Errorf("write %s: %w", k, err)
	}
	m.pruneLocked(ctx, k)
	return nil
}

func (m *Manager) read(k Kind, v any) error {
	data, err := os.ReadFile(m.livePath(k))
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%s: %w", k.Filename(), ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", k, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", k, err)
	}
	return nil
}

// snapshotLocked copies the live file of kind k into the backup directory.
// It returns the backup name, or "" when there was no live file.
func (m *Manager) snapshotLocked(ctx context.Context, k Kind) (string, error) {
	data, err := os.ReadFile(m.livePath(k))
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read %s for backup: %w", k, err)
	}

	name := m.backupName(k)
	if err := writeFileAtomic(filepath.Join(m.cfg.BackupDir(), name), data); err != nil {
		return "", fmt.Errorf("create backup %s: %w", name, err)
	}
	logging.Ctx(ctx).Debug().Str("backup", name).Msg("Created backup")
	return name, nil
}

// backupName stamps k with the current time. Names that already exist get a
// numeric suffix so two writes in the same second keep both snapshots.
func (m *Manager) backupName(k Kind) string {
	stamp := m.cfg.Now().Format("20060102_150405")
	name := fmt.Sprintf("%s_%s.json", k, stamp)
	for i := 1; fileExists(filepath.Join(m.cfg.BackupDir(), name)); i++ {
		name = fmt.Sprintf("%s_%s_%d.json", k, stamp, i)
	}
	return name
}

// writeFileAtomic writes data to a temp file next to path and renames it.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
