package agent

import (
	"context"
	"log"
	"sync"
	"time"

	"entrecoiffeur-notify-backend/internal/model"
)

// Renderer is the injected platform notification capability. Render must
// use tag as the platform de-duplication key so that concurrent renders of
// the same logical event coalesce into one visible notification.
type Renderer interface {
	Render(ctx context.Context, tag string, payload model.NotificationPayload) error
}

// Queue is the slice of the store an agent needs: the polling contract.
type Queue interface {
	ListUndelivered(ctx context.Context, userID string) ([]model.NotificationRecord, error)
	MarkDelivered(ctx context.Context, id string) error
}

// Agent polls the pending notification queue for one user, renders each
// undelivered record and acknowledges it. Two agents (the background
// dispatcher and the foreground reconciler) may run against the same user
// concurrently on any relative cadence; they coordinate only through the
// store. The idempotent ack resolves the ack race, and tag coalescing in
// the renderer keeps the visible duplicate count at one per device.
type Agent struct {
	name     string
	userID   string
	interval time.Duration
	queue    Queue
	renderer Renderer

	mu sync.Mutex
	// rendered is a process-local optimization, not a correctness
	// mechanism: it is volatile and reset on restart. Ids are added only
	// after a successful ack so that a failed ack is retried next cycle.
	rendered map[string]struct{}
}

// New creates a delivery agent for a single user.
func New(name, userID string, interval time.Duration, queue Queue, renderer Renderer) *Agent {
	return &Agent{
		name:     name,
		userID:   userID,
		interval: interval,
		queue:    queue,
		renderer: renderer,
		rendered: make(map[string]struct{}),
	}
}

// NewDispatcher creates the background delivery agent.
func NewDispatcher(userID string, interval time.Duration, queue Queue, renderer Renderer) *Agent {
	return New("dispatcher", userID, interval, queue, renderer)
}

// NewReconciler creates the faster in-page agent.
func NewReconciler(userID string, interval time.Duration, queue Queue, renderer Renderer) *Agent {
	return New("reconciler", userID, interval, queue, renderer)
}

// Run polls until the context is cancelled. The agent may be torn down at
// any point between fetch and ack: an un-acked, rendered notification is
// simply re-rendered (tag-coalesced) on the next startup.
func (a *Agent) Run(ctx context.Context) {
	log.Printf("Agent %s starting for user %s (interval %s)", a.name, a.userID, a.interval)

	a.PollOnce(ctx)

	timer := time.NewTimer(a.interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Printf("Agent %s for user %s shutting down", a.name, a.userID)
			return
		case <-timer.C:
			a.PollOnce(ctx)
			timer.Reset(a.interval)
		}
	}
}

// PollOnce performs a single fetch-render-ack cycle.
func (a *Agent) PollOnce(ctx context.Context) {
	records, err := a.queue.ListUndelivered(ctx, a.userID)
	if err != nil {
		log.Printf("Agent %s: error listing undelivered notifications for user %s: %v", a.name, a.userID, err)
		return
	}

	for _, record := range records {
		if a.alreadyRendered(record.ID) {
			continue
		}

		if err := a.renderer.Render(ctx, record.Payload.Tag, record.Payload); err != nil {
			// Render failure (permission revoked, facility unavailable)
			// must not ack; the record stays undelivered and is retried
			// on the next cycle.
			log.Printf("Agent %s: render failed for notification %s (tag %q): %v", a.name, record.ID, record.Payload.Tag, err)
			continue
		}

		if err := a.queue.MarkDelivered(ctx, record.ID); err != nil {
			// Safe to retry: the next cycle re-renders under the same tag
			// and re-acks.
			log.Printf("Agent %s: ack failed for notification %s: %v", a.name, record.ID, err)
			continue
		}

		a.markRendered(record.ID)
	}
}

func (a *Agent) alreadyRendered(id string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	_, ok := a.rendered[id]
	return ok
}

func (a *Agent) markRendered(id string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.rendered[id] = struct{}{}
}
