// FootTraffic - Foot-Traffic Monitoring and Dwell-Time Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/foottraffic

package services

import (
	"context"
	"fmt"
)

// StartStopper is a component with its own goroutines: Start returns
// immediately and Stop blocks until they finish. sync.Poller is one.
type StartStopper interface {
	Start(ctx context.Context) error
	Stop() error
}

// StartStopService adapts a StartStopper to suture.Service.
type StartStopService struct {
	component StartStopper
	name      string
}

// NewStartStopService wraps component. The service takes the component's
// name when it is a fmt.Stringer.
func NewStartStopService(component StartStopper) *StartStopService {
	name := "start-stop-service"
	if s, ok := component.(fmt.Stringer); ok {
		name = s.String()
	}
	return &StartStopService{component: component, name: name}
}

// Serve starts the component, waits for ctx and stops it.
func (s *StartStopService) Serve(ctx context.Context) error {
	if err := s.component.Start(ctx); err != nil {
		return fmt.Errorf("%s start failed: %w", s.name, err)
	}

	<-ctx.Done()

	if err := s.component.Stop(); err != nil {
		return fmt.Errorf("%s stop failed: %w", s.name, err)
	}
	return ctx.Err()
}

func (s *StartStopService) String() string {
	return s.name
}
