package sweeper

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeQueue struct {
	mu      sync.Mutex
	windows []time.Duration
	err     error
}

func (f *fakeQueue) Sweep(ctx context.Context, window time.Duration) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	f.windows = append(f.windows, window)
	return 2, nil
}

func (f *fakeQueue) sweeps() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.windows)
}

func TestSweepOncePassesConfiguredWindow(t *testing.T) {
	queue := &fakeQueue{}
	s := New(queue, 24*time.Hour, time.Hour)

	s.SweepOnce(context.Background())

	assert.Equal(t, []time.Duration{24 * time.Hour}, queue.windows)
}

func TestSweepOnceSwallowsTransientErrors(t *testing.T) {
	queue := &fakeQueue{err: assert.AnError}
	s := New(queue, 24*time.Hour, time.Hour)

	// A failed pass only logs; the next interval retries.
	s.SweepOnce(context.Background())

	assert.Equal(t, 0, queue.sweeps())
}

func TestRunSweepsUntilCancelled(t *testing.T) {
	queue := &fakeQueue{}
	s := New(queue, 24*time.Hour, 5*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop after context cancellation")
	}

	assert.GreaterOrEqual(t, queue.sweeps(), 1)
}
