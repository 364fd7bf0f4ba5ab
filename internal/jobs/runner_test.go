package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRunnerTicksUntilCancelled(t *testing.T) {
	var ok, failing, panicking atomic.Int32

	r := NewRunner()
	r.Every(5*time.Millisecond, Func{JobName: "ok", Fn: func(ctx context.Context) error {
		ok.Add(1)
		return nil
	}})
	r.Every(5*time.Millisecond, Func{JobName: "failing", Fn: func(ctx context.Context) error {
		failing.Add(1)
		return errors.New("boom")
	}})
	r.Every(5*time.Millisecond, Func{JobName: "panicking", Fn: func(ctx context.Context) error {
		panicking.Add(1)
		panic("boom")
	}})

	ctx, cancel := context.WithCancel(context.Background())
	r.Start(ctx)

	assert.Eventually(t, func() bool {
		return ok.Load() >= 3 && failing.Load() >= 3 && panicking.Load() >= 3
	}, 2*time.Second, 5*time.Millisecond, "failing jobs keep their schedule")

	cancel()
	done := make(chan struct{})
	go func() {
		r.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("runner did not stop")
	}
}
