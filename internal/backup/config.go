// FootTraffic - Foot-Traffic Monitoring and Dwell-Time Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/foottraffic

package backup

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/tomtom215/foottraffic/internal/config"
)

// BackupDirName is the snapshot directory under the data directory.
const BackupDirName = "backups"

// Config configures the archive.
type Config struct {
	DataDir string

	// MaxBackups kept per kind. Zero or less keeps everything.
	MaxBackups int

	// Now stamps snapshot names. Defaults to time.Now.
	Now func() time.Time
}

// FromAppConfig maps the application's archive section.
func FromAppConfig(c config.ArchiveConfig) Config {
	return Config{DataDir: c.DataDir, MaxBackups: c.MaxBackups}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return errors.New("archive data directory is required")
	}
	return nil
}

// BackupDir is the snapshot directory.
func (c *Config) BackupDir() string {
	return filepath.Join(c.DataDir, BackupDirName)
}

// EnsureDirs creates the data and backup directories.
func (c *Config) EnsureDirs() error {
	if err := os.MkdirAll(c.BackupDir(), 0o750); err != nil {
		return fmt.Errorf("failed to create backup directory: %w", err)
	}
	return nil
}
