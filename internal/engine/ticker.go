package engine

import (
	"context"
	"time"

	"github.com/aldealabs/aldea/internal/platform/logger"
)

// Ticker drives the world clock: every real interval it invokes the tick
// callback with the number of game hours to advance.
type Ticker struct {
	interval     time.Duration
	hoursPerTick float64
	log          *logger.Logger
}

// NewTicker creates a ticker advancing hoursPerTick game hours every
// interval of wall time.
func NewTicker(interval time.Duration, hoursPerTick float64, log *logger.Logger) *Ticker {
	return &Ticker{
		interval:     interval,
		hoursPerTick: hoursPerTick,
		log:          log,
	}
}

// Run blocks, firing fn until ctx is cancelled. The callback runs on the
// ticker goroutine; a slow callback delays subsequent ticks rather than
// overlapping them.
func (t *Ticker) Run(ctx context.Context, fn func(hours float64)) {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	if t.log != nil {
		t.log.Info("world ticker started")
	}
	for {
		select {
		case <-ctx.Done():
			if t.log != nil {
				t.log.Info("world ticker stopped")
			}
			return
		case <-ticker.C:
			fn(t.hoursPerTick)
		}
	}
}
