// Package health monitors store connectivity for the /api/health endpoint.
package health

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// HealthPinger is implemented by components that expose a health probe.
// HealthPing must return nil when the component is healthy.
type HealthPinger interface {
	HealthPing(ctx context.Context) error
}

// Checker monitors a component via periodic probes and caches the result.
type Checker struct {
	name         string
	target       HealthPinger
	healthy      atomic.Int32
	log          zerolog.Logger
	probeTimeout time.Duration
}

// NewChecker creates a checker. It starts unhealthy until the first
// successful probe.
func NewChecker(name string, target HealthPinger, log zerolog.Logger, probeTimeout time.Duration) *Checker {
	hc := &Checker{name: name, target: target, log: log, probeTimeout: probeTimeout}
	hc.healthy.Store(0)
	return hc
}

// Name returns the checker name.
func (hc *Checker) Name() string { return hc.name }

// IsHealthy returns the cached health status (non-blocking).
func (hc *Checker) IsHealthy() bool { return hc.healthy.Load() == 1 }

// Start begins periodic health checking until ctx is cancelled.
func (hc *Checker) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	check := func() {
		to := hc.probeTimeout
		if to <= 0 {
			to = 2 * time.Second
		}
		checkCtx, cancel := context.WithTimeout(ctx, to)
		defer cancel()

		if err := hc.target.HealthPing(checkCtx); err != nil {
			hc.log.Error().Str("checker", hc.name).Err(err).Msg("health check failed")
			hc.healthy.Store(0)
			return
		}
		hc.healthy.Store(1)
	}

	check()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			check()
		}
	}
}
