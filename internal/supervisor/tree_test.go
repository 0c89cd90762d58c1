// FootTraffic - Foot-Traffic Monitoring and Dwell-Time Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/foottraffic

package supervisor

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met in time")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestNewSupervisorTreeDefaults(t *testing.T) {
	t.Parallel()

	tree, err := NewSupervisorTree(nil, TreeConfig{})
	if err != nil {
		t.Fatalf("NewSupervisorTree() error = %v", err)
	}
	if tree.Root() == nil {
		t.Fatal("root supervisor is nil")
	}
	if got, want := tree.Config(), DefaultTreeConfig(); got != want {
		t.Errorf("Config() = %+v, want %+v", got, want)
	}

	custom, _ := NewSupervisorTree(quietLogger(), TreeConfig{FailureThreshold: 2, ShutdownTimeout: time.Second})
	if c := custom.Config(); c.FailureThreshold != 2 || c.ShutdownTimeout != time.Second || c.FailureDecay != 30 {
		t.Errorf("custom Config() = %+v", c)
	}
}

func TestSupervisorTreeStartsEveryLayer(t *testing.T) {
	t.Parallel()

	tree, _ := NewSupervisorTree(quietLogger(), TreeConfig{ShutdownTimeout: time.Second})
	data := newMockService("data")
	msg := newMockService("messaging")
	api := newMockService("api")
	tree.AddDataService(data)
	tree.AddMessagingService(msg)
	tree.AddAPIService(api)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := tree.ServeBackground(ctx)

	waitFor(t, func() bool { return data.startCount() > 0 && msg.startCount() > 0 && api.startCount() > 0 })
	cancel()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("tree did not shut down")
	}
	if report, err := tree.UnstoppedServiceReport(); err != nil || len(report) != 0 {
		t.Errorf("unstopped services = %v, %v", report, err)
	}
}

func TestFailingServiceIsRestartedInIsolation(t *testing.T) {
	t.Parallel()

	tree, _ := NewSupervisorTree(quietLogger(), TreeConfig{
		FailureThreshold: 10,
		FailureBackoff:   10 * time.Millisecond,
		ShutdownTimeout:  time.Second,
	})
	failing := newMockService("failing")
	failing.setFailCount(2)
	stable := newMockService("stable")
	tree.AddMessagingService(failing)
	tree.AddAPIService(stable)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	tree.ServeBackground(ctx)

	waitFor(t, func() bool { return failing.startCount() >= 3 })
	if stable.startCount() != 1 {
		t.Errorf("stable service starts = %d, want 1", stable.startCount())
	}
}

func TestRemoveMessagingService(t *testing.T) {
	t.Parallel()

	tree, _ := NewSupervisorTree(quietLogger(), TreeConfig{ShutdownTimeout: time.Second})
	svc := newMockService("removable")
	token := tree.AddMessagingService(svc)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	tree.ServeBackground(ctx)

	waitFor(t, func() bool { return svc.startCount() > 0 })
	if err := tree.RemoveMessagingServiceAndWait(token, time.Second); err != nil {
		t.Fatalf("RemoveMessagingServiceAndWait() error = %v", err)
	}
}

func TestAddComponents(t *testing.T) {
	t.Parallel()

	tree, _ := NewSupervisorTree(quietLogger(), TreeConfig{ShutdownTimeout: time.Second})
	sessions := newMockService("session-registry")
	hub := newMockService("websocket-hub")
	poller := &mockPoller{}
	server := newBlockingServer()

	n := tree.AddComponents(Components{
		Sessions:   sessions,
		Hub:        hub,
		Poller:     poller,
		HTTPServer: server,
	})
	if n != 4 {
		t.Fatalf("AddComponents() = %d, want 4", n)
	}

	ctx, cancel := context.WithCancel(context.Background())
	errCh := tree.ServeBackground(ctx)

	waitFor(t, func() bool {
		started, _ := poller.counts()
		return sessions.startCount() > 0 && hub.startCount() > 0 && started > 0 && server.serving.Load()
	})
	cancel()
	<-errCh

	if started, stopped := poller.counts(); started != 1 || stopped != 1 {
		t.Errorf("poller start/stop = %d/%d, want 1/1", started, stopped)
	}
}

func TestAddComponentsSkipsNil(t *testing.T) {
	t.Parallel()
	tree, _ := NewSupervisorTree(quietLogger(), TreeConfig{})
	if n := tree.AddComponents(Components{}); n != 0 {
		t.Errorf("AddComponents(empty) = %d", n)
	}
}
