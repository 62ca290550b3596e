package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestEveryRunsImmediatelyAndOnTicks(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	clock := clockwork.NewFakeClock()
	var runs atomic.Int32
	ran := make(chan struct{}, 10)
	done := make(chan struct{})

	go func() {
		defer close(done)
		Every(ctx, clock, time.Minute, zaptest.NewLogger(t), "test", func(context.Context) error {
			runs.Add(1)
			ran <- struct{}{}
			return errors.New("boom")
		})
	}()

	<-ran
	assert.EqualValues(t, 1, runs.Load())

	require.NoError(t, clock.BlockUntilContext(ctx, 1))
	clock.Advance(time.Minute)
	<-ran
	assert.EqualValues(t, 2, runs.Load())

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Every did not return after cancel")
	}
}
