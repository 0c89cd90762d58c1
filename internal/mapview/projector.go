// FootTraffic - Foot-Traffic Monitoring and Dwell-Time Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/foottraffic

package mapview

import (
	"math/rand/v2"
	"sync"
	"time"

	"github.com/tomtom215/foottraffic/internal/models"
)

// Projector builds views and remembers the most recent one.
type Projector struct {
	rnd func() float64

	mu     sync.RWMutex
	latest *View
}

// NewProjector creates a projector. A nil rnd uses math/rand/v2.
func NewProjector(rnd func() float64) *Projector {
	if rnd == nil {
		rnd = rand.Float64
	}
	return &Projector{rnd: rnd}
}

// Project builds a view for sample and stores it as the latest.
func (p *Projector) Project(sample models.StatSample, now time.Time) View {
	p.mu.Lock()
	defer p.mu.Unlock()
	v := Build(sample, now, p.rnd)
	p.latest = &v
	return v
}

// Latest returns the last projected view.
func (p *Projector) Latest() (View, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.latest == nil {
		return View{}, false
	}
	return *p.latest, true
}
