package push

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"

	"entrecoiffeur-notify-backend/internal/model"
	"entrecoiffeur-notify-backend/internal/store"
)

// Sender defines the interface for sending a web push message.
type Sender interface {
	Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// WebPushSender is a real implementation of Sender using the webpush library.
type WebPushSender struct{}

// Send sends a message using the webpush library.
func (s *WebPushSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return webpush.SendNotification(payload, sub, options)
}

// WorkerPool fans a pending notification out to every active endpoint of
// its user through the platform push gateway. The transport is best-effort
// acceleration only: the pending notification store stays the source of
// truth, and a failed send never touches the record's delivery state.
type WorkerPool struct {
	size    int
	jobs    chan string
	store   store.Store
	webpush *webpush.Options
	sender  Sender
}

// NewWorkerPool creates a new worker pool.
func NewWorkerPool(size int, s store.Store, webpushOptions *webpush.Options) *WorkerPool {
	return &WorkerPool{
		size:    size,
		jobs:    make(chan string, size),
		store:   s,
		webpush: webpushOptions,
		sender:  &WebPushSender{},
	}
}

// Start launches the worker goroutines.
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.size; i++ {
		go wp.worker(ctx, i)
	}
}

// worker is the actual worker goroutine.
func (wp *WorkerPool) worker(ctx context.Context, id int) {
	log.Printf("Push worker %d started", id)
	for {
		select {
		case notificationID := <-wp.jobs:
			wp.sendForNotification(ctx, notificationID)
		case <-ctx.Done():
			log.Printf("Push worker %d shutting down", id)
			return
		}
	}
}

// Dispatch sends a job to the worker pool.
func (wp *WorkerPool) Dispatch(notificationID string) {
	wp.jobs <- notificationID
}

// Jobs returns the jobs channel for testing.
func (wp *WorkerPool) Jobs() chan string {
	return wp.jobs
}

// sendForNotification loads the record and pushes its payload to every
// active subscription of the owning user.
func (wp *WorkerPool) sendForNotification(ctx context.Context, notificationID string) {
	record, err := wp.store.GetNotification(ctx, notificationID)
	if err != nil {
		log.Printf("Error fetching notification %s: %v", notificationID, err)
		return
	}
	if record == nil || record.IsDelivered {
		return
	}

	subscriptions, err := wp.store.ListActive(ctx, record.UserID)
	if err != nil {
		log.Printf("Error fetching subscriptions for user %s: %v", record.UserID, err)
		return
	}
	if len(subscriptions) == 0 {
		return
	}

	body, err := json.Marshal(record.Payload)
	if err != nil {
		log.Printf("Error marshalling payload for notification %s: %v", notificationID, err)
		return
	}

	log.Printf("Pushing notification %s to %d endpoint(s) of user %s", notificationID, len(subscriptions), record.UserID)
	for _, sub := range subscriptions {
		wp.sendToEndpoint(ctx, sub, body)
	}
}

// sendToEndpoint pushes one message to one endpoint. A gateway rejection
// deactivates the subscription; the row is kept until an explicit purge.
func (wp *WorkerPool) sendToEndpoint(ctx context.Context, sub model.PushSubscription, payload []byte) {
	wpSub := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256DH,
			Auth:   sub.Auth,
		},
	}

	resp, err := wp.sender.Send(payload, wpSub, wp.webpush)
	if err != nil {
		log.Printf("Error pushing to %s: %v", sub.Endpoint, err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone {
		log.Printf("Endpoint %s is gone (status %d). Deactivating subscription.", sub.Endpoint, resp.StatusCode)
		if _, err := wp.store.Deactivate(ctx, sub.UserID, sub.Endpoint); err != nil {
			log.Printf("Failed to deactivate subscription %s: %v", sub.ID, err)
		}
	}
}
