// FootTraffic - Foot-Traffic Monitoring and Dwell-Time Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/foottraffic

package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
)

const userKeyPrefix = "user:"

// BadgerUserStore persists accounts in BadgerDB.
type BadgerUserStore struct {
	db     *badger.DB
	ownsDB bool
}

// NewBadgerUserStore wraps an open database. Close does not close db.
func NewBadgerUserStore(db *badger.DB) *BadgerUserStore {
	return &BadgerUserStore{db: db}
}

// OpenBadgerUserStore opens (or creates) a database at path.
func OpenBadgerUserStore(path string) (*BadgerUserStore, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open user store: %w", err)
	}
	return &BadgerUserStore{db: db, ownsDB: true}, nil
}

func (s *BadgerUserStore) Get(_ context.Context, email string) (*User, error) {
	var u User
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(userKeyPrefix + NormalizeEmail(email)))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrUserNotFound
		}
		if err != nil {
			return fmt.Errorf("get user: %w", err)
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &u)
		})
	})
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *BadgerUserStore) Create(_ context.Context, u *User) error {
	cp := *u
	cp.Email = NormalizeEmail(u.Email)
	data, err := json.Marshal(&cp)
	if err != nil {
		return fmt.Errorf("marshal user: %w", err)
	}
	key := []byte(userKeyPrefix + cp.Email)

	return s.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		if err == nil {
			return ErrUserExists
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("check user: %w", err)
		}
		return txn.Set(key, data)
	})
}

// Close closes the database if the store opened it.
func (s *BadgerUserStore) Close() error {
	if !s.ownsDB {
		return nil
	}
	return s.db.Close()
}
