package api

import (
	"github.com/SherClockHolmes/webpush-go"

	"entrecoiffeur-notify-backend/internal/push"
	"entrecoiffeur-notify-backend/internal/store"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store   store.Store
	webpush *webpush.Options
	pool    *push.WorkerPool
}

// NewHandler creates a new API handler. pool may be nil when the push
// transport is not configured; delivery then relies on polling alone.
func NewHandler(s store.Store, webpushOptions *webpush.Options, pool *push.WorkerPool) *Handler {
	return &Handler{
		store:   s,
		webpush: webpushOptions,
		pool:    pool,
	}
}
