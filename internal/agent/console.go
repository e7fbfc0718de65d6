package agent

import (
	"context"
	"log"
	"sync"

	"entrecoiffeur-notify-backend/internal/model"
)

// ConsoleRenderer is a Renderer that writes notifications to the process
// log. It coalesces by tag the way a platform notification center does: a
// re-render with the same tag replaces the previous entry instead of
// accumulating a duplicate.
type ConsoleRenderer struct {
	mu      sync.Mutex
	visible map[string]model.NotificationPayload
}

// NewConsoleRenderer creates a console renderer.
func NewConsoleRenderer() *ConsoleRenderer {
	return &ConsoleRenderer{visible: make(map[string]model.NotificationPayload)}
}

// Render displays the payload, replacing any notification already shown
// under the same tag.
func (r *ConsoleRenderer) Render(ctx context.Context, tag string, payload model.NotificationPayload) error {
	r.mu.Lock()
	_, replaced := r.visible[tag]
	r.visible[tag] = payload
	r.mu.Unlock()

	if replaced {
		log.Printf("[notification %s] (updated) %s — %s", tag, payload.Title, payload.Body)
	} else {
		log.Printf("[notification %s] %s — %s", tag, payload.Title, payload.Body)
	}
	return nil
}

// Visible returns how many distinct notifications are currently shown.
func (r *ConsoleRenderer) Visible() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.visible)
}
