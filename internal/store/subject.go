// FootTraffic - Foot-Traffic Monitoring and Dwell-Time Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/foottraffic

package store

import "sync"

// Subject is an observable value. Subscribers are called synchronously on
// the publishing goroutine, outside the lock, and must not block.
type Subject[T any] struct {
	mu     sync.RWMutex
	value  T
	hasVal bool
	subs   map[uint64]func(T)
	nextID uint64
}

// NewSubject returns an empty subject.
func NewSubject[T any]() *Subject[T] {
	return &Subject[T]{subs: make(map[uint64]func(T))}
}

// Get returns the current value and whether one was ever published.
func (s *Subject[T]) Get() (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value, s.hasVal
}

// Publish stores v and notifies subscribers.
func (s *Subject[T]) Publish(v T) {
	s.mu.Lock()
	s.value = v
	s.hasVal = true
	fns := s.snapshotLocked()
	s.mu.Unlock()

	for _, fn := range fns {
		fn(v)
	}
}

// Subscribe registers fn and, if a value exists, calls it immediately.
// The returned func removes the subscription; calling it twice is safe.
func (s *Subject[T]) Subscribe(fn func(T)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	v, ok := s.value, s.hasVal
	s.mu.Unlock()

	if ok {
		fn(v)
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
		})
	}
}

// Subscribers is the number of active subscriptions.
func (s *Subject[T]) Subscribers() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.subs)
}

func (s *Subject[T]) snapshotLocked() []func(T) {
	fns := make([]func(T), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	return fns
}
