package governance

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// ExpireStale transitions every awaiting decision past its expiry to
// expired. Expiry is otherwise check-on-access; this is the optional
// active sweep. An empty organizationID sweeps all organizations.
// Returns the number of decisions expired.
func (e *Engine) ExpireStale(organizationID string) (int, error) {
	awaiting, err := e.store.AwaitingDecisions(organizationID)
	if err != nil {
		return 0, err
	}

	now := e.clock.Now()
	expired := 0
	for _, d := range awaiting {
		if now.After(d.ExpiresAt) {
			e.expire(d)
			expired++
		}
	}
	return expired, nil
}

// Sweeper periodically expires stale decisions.
type Sweeper struct {
	engine   *Engine
	interval time.Duration
	log      *zap.Logger
}

// NewSweeper creates a Sweeper with the given interval.
func NewSweeper(engine *Engine, interval time.Duration, log *zap.Logger) *Sweeper {
	if log == nil {
		log = zap.NewNop()
	}
	return &Sweeper{engine: engine, interval: interval, log: log}
}

// Run sweeps on every tick. Blocks until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			n, err := s.engine.ExpireStale("")
			if err != nil {
				s.log.Warn("expiry sweep failed", zap.Error(err))
				continue
			}
			if n > 0 {
				s.log.Info("expired stale decisions", zap.Int("count", n))
			}
		}
	}
}
