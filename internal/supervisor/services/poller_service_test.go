// FootTraffic - Foot-Traffic Monitoring and Dwell-Time Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/foottraffic

package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/thejerf/suture/v4"
)

var _ suture.Service = (*StartStopService)(nil)

type fakeComponent struct {
	startErr error
	stopErr  error
	starts   atomic.Int32
	stops    atomic.Int32
}

func (f *fakeComponent) Start(context.Context) error {
	f.starts.Add(1)
	return f.startErr
}

func (f *fakeComponent) Stop() error {
	f.stops.Add(1)
	return f.stopErr
}

type namedComponent struct{ fakeComponent }

func (*namedComponent) String() string { return "stats-poller" }

func TestStartStopServiceName(t *testing.T) {
	t.Parallel()
	if got := NewStartStopService(&namedComponent{}).String(); got != "stats-poller" {
		t.Errorf("named String() = %q", got)
	}
	if got := NewStartStopService(&fakeComponent{}).String(); got != "start-stop-service" {
		t.Errorf("unnamed String() = %q", got)
	}
}

func TestStartStopServiceLifecycle(t *testing.T) {
	t.Parallel()

	c := &fakeComponent{}
	svc := NewStartStopService(c)
	ctx, cancel := context.WithCancel(context.Background())

	errCh := make(chan error, 1)
	go func() { errCh <- svc.Serve(ctx) }()

	deadline := time.Now().Add(time.Second)
	for c.starts.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if c.stops.Load() != 0 {
		t.Fatal("stopped before cancel")
	}
	cancel()

	if err := <-errCh; !errors.Is(err, context.Canceled) {
		t.Errorf("Serve() error = %v", err)
	}
	if c.starts.Load() != 1 || c.stops.Load() != 1 {
		t.Errorf("starts/stops = %d/%d", c.starts.Load(), c.stops.Load())
	}
}

func TestStartStopServiceErrors(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")

	err := NewStartStopService(&fakeComponent{startErr: boom}).Serve(context.Background())
	if !errors.Is(err, boom) {
		t.Errorf("start failure: Serve() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c := &fakeComponent{stopErr: boom}
	if err := NewStartStopService(c).Serve(ctx); !errors.Is(err, boom) {
		t.Errorf("stop failure: Serve() error = %v", err)
	}
}
