// FootTraffic - Foot-Traffic Monitoring and Dwell-Time Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/foottraffic

package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"sync"
	"time"

	"github.com/tomtom215/foottraffic/internal/logging"
	"github.com/tomtom215/foottraffic/internal/metrics"
)

// Registry defaults.
const (
	DefaultIdleTimeout   = 30 * time.Minute
	DefaultMaxSessions   = 10000
	DefaultSweepInterval = time.Minute
)

// RegistryOptions configures a Registry.
type RegistryOptions struct {
	IdleTimeout   time.Duration
	MaxSessions   int
	SweepInterval time.Duration
	Now           func() time.Time
}

type sessionEntry struct {
	machine  *Machine
	lastSeen time.Time
}

// Registry maps browser session IDs to their machines. When full, the least
// recently used anonymous session is evicted to make room; signed-in and
// mid-verification sessions go only when no anonymous one is left.
type Registry struct {
	opts    RegistryOptions
	factory func() *Machine

	mu       sync.Mutex
	sessions map[string]*sessionEntry
}

// NewRegistry creates a registry; factory builds the machine for each new session.
func NewRegistry(factory func() *Machine, opts RegistryOptions) *Registry {
	if opts.IdleTimeout <= 0 {
		opts.IdleTimeout = DefaultIdleTimeout
	}
	if opts.MaxSessions <= 0 {
		opts.MaxSessions = DefaultMaxSessions
	}
	if opts.SweepInterval <= 0 {
		opts.SweepInterval = DefaultSweepInterval
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Registry{opts: opts, factory: factory, sessions: make(map[string]*sessionEntry)}
}

// IdleTimeout is the configured idle expiry, used for cookie lifetimes.
func (r *Registry) IdleTimeout() time.Duration { return r.opts.IdleTimeout }

// Create starts a new anonymous session.
func (r *Registry) Create() (string, *Machine) {
	id := generateSessionID()
	m := r.factory()
	now := r.opts.Now()

	r.mu.Lock()
	if len(r.sessions) >= r.opts.MaxSessions {
		r.evictOldestLocked()
	}
	r.sessions[id] = &sessionEntry{machine: m, lastSeen: now}
	n := len(r.sessions)
	r.mu.Unlock()

	metrics.AuthSessionsActive.Set(float64(n))
	return id, m
}

// Get returns the session's machine and refreshes its idle timer. Expired
// sessions are removed and reported as missing.
func (r *Registry) Get(id string) (*Machine, bool) {
	if id == "" {
		return nil, false
	}
	now := r.opts.Now()

	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.sessions[id]
	if !ok {
		return nil, false
	}
	if now.Sub(e.lastSeen) > r.opts.IdleTimeout {
		delete(r.sessions, id)
		metrics.AuthSessionsActive.Set(float64(len(r.sessions)))
		return nil, false
	}
	e.lastSeen = now
	return e.machine, true
}

// Delete removes a session. Missing IDs are ignored.
func (r *Registry) Delete(id string) {
	r.mu.Lock()
	delete(r.sessions, id)
	n := len(r.sessions)
	r.mu.Unlock()
	metrics.AuthSessionsActive.Set(float64(n))
}

// Len is the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep removes idle sessions and returns how many were removed.
func (r *Registry) Sweep() int {
	now := r.opts.Now()
	r.mu.Lock()
	removed := 0
	for id, e := range r.sessions {
		if now.Sub(e.lastSeen) > r.opts.IdleTimeout {
			delete(r.sessions, id)
			removed++
		}
	}
	n := len(r.sessions)
	r.mu.Unlock()

	metrics.AuthSessionsActive.Set(float64(n))
	return removed
}

// Serve sweeps periodically until ctx is done. It satisfies suture.Service.
func (r *Registry) Serve(ctx context.Context) error {
	ticker := time.NewTicker(r.opts.SweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if n := r.Sweep(); n > 0 {
				logging.Debug().Int("removed", n).Msg("Expired idle sessions")
			}
		}
	}
}

func (r *Registry) String() string { return "session-registry" }

// evictOldestLocked drops the least recently used anonymous session, or the
// least recently used session of any state when none is anonymous.
func (r *Registry) evictOldestLocked() {
	var oldestID, anonID string
	var oldest, anonOldest time.Time
	for id, e := range r.sessions {
		if oldestID == "" || e.lastSeen.Before(oldest) {
			oldestID, oldest = id, e.lastSeen
		}
		if _, anon := e.machine.State().(Anonymous); !anon {
			continue
		}
		if anonID == "" || e.lastSeen.Before(anonOldest) {
			anonID, anonOldest = id, e.lastSeen
		}
	}
	victim := anonID
	if victim == "" {
		victim = oldestID
	}
	if victim != "" {
		delete(r.sessions, victim)
		logging.Warn().
			Int("max_sessions", r.opts.MaxSessions).
			Bool("anonymous", victim == anonID).
			Msg("Session registry full; evicted least recently used session")
	}
}

func generateSessionID() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		panic("auth: crypto/rand failed: " + err.Error())
	}
	return hex.EncodeToString(b)
}
