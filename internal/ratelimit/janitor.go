package ratelimit

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// Sweeper is implemented by the in-memory limiters that need periodic
// eviction of idle client keys.
type Sweeper interface {
	Sweep(cutoff time.Time) int
}

// Janitor periodically evicts limiter state for clients that have gone
// idle, bounding the per-key table.
type Janitor struct {
	log     *logrus.Entry
	sweeper Sweeper
	idleTTL time.Duration
	tick    time.Duration
}

func NewJanitor(logger *logrus.Logger, sweeper Sweeper, idleTTL, tick time.Duration) *Janitor {
	return &Janitor{
		log:     logger.WithField("component", "ratelimit_janitor"),
		sweeper: sweeper,
		idleTTL: idleTTL,
		tick:    tick,
	}
}

func (j *Janitor) Start(ctx context.Context) {
	ticker := time.NewTicker(j.tick)
	defer ticker.Stop()

	j.log.Info("Starting rate limit janitor")

	for {
		select {
		case <-ticker.C:
			if evicted := j.sweeper.Sweep(time.Now().Add(-j.idleTTL)); evicted > 0 {
				j.log.WithField("evicted", evicted).Info("Evicted idle rate limit entries")
			}
		case <-ctx.Done():
			j.log.Info("Stopping rate limit janitor")
			return
		}
	}
}
