package scheduler

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

type Task func(ctx context.Context) error

// Every runs task once right away and then on every tick until ctx is done.
// Runs never overlap; a tick that arrives while a run is in progress is
// dropped by the ticker.
func Every(ctx context.Context, clock clockwork.Clock, interval time.Duration, log *zap.Logger, name string, task Task) {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named(name)

	run := func() {
		if err := task(ctx); err != nil {
			log.Warn("task failed", zap.Error(err))
		}
	}

	t := clock.NewTicker(interval)
	defer t.Stop()

	run()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.Chan():
			run()
		}
	}
}
