// FootTraffic - Foot-Traffic Monitoring and Dwell-Time Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/foottraffic

package auth

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"
)

var (
	// ErrUserNotFound is returned by UserStore.Get for unknown emails.
	ErrUserNotFound = errors.New("user not found")
	// ErrUserExists is returned by UserStore.Create for taken emails.
	ErrUserExists = errors.New("user already exists")
)

// User is a password account. Emails are stored lower-cased.
type User struct {
	Email        string    `json:"email"`
	DisplayName  string    `json:"display_name,omitempty"`
	PasswordHash []byte    `json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
}

// UserStore persists password accounts.
type UserStore interface {
	Get(ctx context.Context, email string) (*User, error)
	Create(ctx context.Context, u *User) error
	Close() error
}

// NormalizeEmail is the lookup key for an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// MemoryUserStore is a UserStore for development and tests.
type MemoryUserStore struct {
	mu    sync.RWMutex
	users map[string]User
}

// NewMemoryUserStore returns an empty store.
func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{users: make(map[string]User)}
}

func (s *MemoryUserStore) Get(_ context.Context, email string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[NormalizeEmail(email)]
	if !ok {
		return nil, ErrUserNotFound
	}
	return &u, nil
}

func (s *MemoryUserStore) Create(_ context.Context, u *User) error {
	key := NormalizeEmail(u.Email)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[key]; ok {
		return ErrUserExists
	}
	cp := *u
	cp.Email = key
	s.users[key] = cp
	return nil
}

func (s *MemoryUserStore) Close() error { return nil }
