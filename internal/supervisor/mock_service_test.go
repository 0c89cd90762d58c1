// FootTraffic - Foot-Traffic Monitoring and Dwell-Time Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/foottraffic

package supervisor

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
)

// mockService fails its first failCount runs, then blocks until canceled.
type mockService struct {
	name      string
	failCount atomic.Int32
	starts    atomic.Int32
}

func newMockService(name string) *mockService {
	return &mockService{name: name}
}

func (m *mockService) setFailCount(n int) { m.failCount.Store(int32(n)) }
func (m *mockService) startCount() int { return int(m.starts.Load()) }

func (m *mockService) Serve(ctx context.Context) error {
	m.starts.Add(1)
	if m.failCount.Load() > 0 {
		m.failCount.Add(-1)
		return errors.New("mock failure")
	}
	<-ctx.Done()
	return ctx.Err()
}

func (m *mockService) String() string { return m.name }

// mockPoller records Start/Stop like sync.Poller.
type mockPoller struct {
	mu      sync.Mutex
	started int
	stopped int
}

func (p *mockPoller) Start(context.Context) error {
	p.mu.Lock()
	p.started++
	p.mu.Unlock()
	return nil
}

func (p *mockPoller) Stop() error {
	p.mu.Lock()
	p.stopped++
	p.mu.Unlock()
	return nil
}

func (p *mockPoller) counts() (int, int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.started, p.stopped
}

func (p *mockPoller) String() string { return "stats-poller" }

// blockingServer is an HTTPServer that serves until Shutdown.
type blockingServer struct {
	once    sync.Once
	stop    chan struct{}
	serving atomic.Bool
}

func newBlockingServer() *blockingServer {
	return &blockingServer{stop: make(chan struct{})}
}

func (b *blockingServer) ListenAndServe() error {
	b.serving.Store(true)
	<-b.stop
	return http.ErrServerClosed
}

func (b *blockingServer) Shutdown(context.Context) error {
	b.once.Do(func() { close(b.stop) })
	return nil
}
