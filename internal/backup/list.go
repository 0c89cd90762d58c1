// FootTraffic - Foot-Traffic Monitoring and Dwell-Time Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/foottraffic

package backup

import (
	"fmt"
	"os"
	"sort"
	"strings"
)

// List returns every backup, newest first by modification time.
func (m *Manager) List() ([]Backup, error) {
	entries, err := os.ReadDir(m.cfg.BackupDir())
	if err != nil {
		return nil, fmt.Errorf("list backups: %w", err)
	}

	out := make([]Backup, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue // removed while listing
		}
		kind, _ := kindOf(e.Name())
		out = append(out, Backup{
			Filename: e.Name(),
			Kind:     kind,
			Size:     info.Size(),
			Modified: info.ModTime(),
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Modified.Equal(out[j].Modified) {
			return out[i].Modified.After(out[j].Modified)
		}
		return out[i].Filename > out[j].Filename
	})
	return out, nil
}

func (m *Manager) listKind(k Kind) []Backup {
	all, err := m.List()
	if err != nil {
		return nil
	}
	out := all[:0]
	for _, b := range all {
		if b.Kind == k {
			out = append(out, b)
		}
	}
	return out
}
