// FootTraffic - Foot-Traffic Monitoring and Dwell-Time Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/foottraffic

package store

import (
	"errors"
	"fmt"
	"sync"

	"github.com/dgraph-io/badger/v4"

	"github.com/tomtom215/foottraffic/internal/config"
)

// Local cache keys.
const (
	KeyLatestStats      = "latest_stats"
	KeyLatestMapData    = "latest_map_data"
	KeyLatestTotalCount = "latest_total_count"
	KeyHistoricalData   = "historical_data"
)

// ErrCacheMiss is returned by LocalCache.Get for absent keys.
var ErrCacheMiss = errors.New("cache miss")

// LocalCache is durable key/value storage on the server host.
type LocalCache interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
	Close() error
}

// OpenCache opens the configured backend.
func OpenCache(cfg config.CacheConfig) (LocalCache, error) {
	switch cfg.Backend {
	case "", "badger":
		return OpenBadgerCache(cfg.Path)
	case "memory":
		return NewMemoryCache(), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}

// MemoryCache is a LocalCache that lives only as long as the process.
type MemoryCache struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemoryCache returns an empty cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{data: make(map[string][]byte)}
}

func (c *MemoryCache) Get(key string) ([]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.data[key]
	if !ok {
		return nil, ErrCacheMiss
	}
	return append([]byte(nil), v...), nil
}

func (c *MemoryCache) Set(key string, value []byte) error {
	c.mu.Lock()
	c.data[key] = append([]byte(nil), value...)
	c.mu.Unlock()
	return nil
}

func (c *MemoryCache) Close() error { return nil }

// BadgerCache is a LocalCache backed by BadgerDB.
type BadgerCache struct {
	db *badger.DB
}

// OpenBadgerCache opens (or creates) a cache directory. An empty path opens
// an in-memory database.
func OpenBadgerCache(path string) (*BadgerCache, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open local cache: %w", err)
	}
	return &BadgerCache{db: db}, nil
}

func (c *BadgerCache) Get(key string) ([]byte, error) {
	var out []byte
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrCacheMiss
		}
		if err != nil {
			return fmt.Errorf("get %s: %w", key, err)
		}
		out, err = item.ValueCopy(nil)
		return err
	})
	return out, err
}

func (c *BadgerCache) Set(key string, value []byte) error {
	return c.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), value)
	})
}

func (c *BadgerCache) Close() error { return c.db.Close() }
