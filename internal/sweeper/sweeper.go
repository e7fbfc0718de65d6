package sweeper

import (
	"context"
	"log"
	"time"
)

// Queue is the slice of the store the sweeper needs.
type Queue interface {
	Sweep(ctx context.Context, window time.Duration) (int64, error)
}

// Sweeper periodically deletes delivered notifications older than the
// retention window. It runs independently of any user session and is safe
// to run concurrently with itself and with enqueue/ack traffic: the delete
// predicate only matches rows that are already delivered and past the
// window, which cannot be concurrently un-delivered.
type Sweeper struct {
	queue    Queue
	window   time.Duration
	interval time.Duration
}

// New creates a sweeper with the given retention window and run interval.
func New(queue Queue, window, interval time.Duration) *Sweeper {
	return &Sweeper{
		queue:    queue,
		window:   window,
		interval: interval,
	}
}

// Run sweeps on a fixed interval until the context is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	log.Printf("Retention sweeper starting (window %s, interval %s)", s.window, s.interval)

	timer := time.NewTimer(s.interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Retention sweeper shutting down.")
			return
		case <-timer.C:
			s.SweepOnce(ctx)
			timer.Reset(s.interval)
		}
	}
}

// SweepOnce performs a single sweep pass.
func (s *Sweeper) SweepOnce(ctx context.Context) {
	deleted, err := s.queue.Sweep(ctx, s.window)
	if err != nil {
		log.Printf("Sweep pass failed: %v", err)
		return
	}
	if deleted > 0 {
		log.Printf("Sweep pass deleted %d delivered notification(s)", deleted)
	}
}
