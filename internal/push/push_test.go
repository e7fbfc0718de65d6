package push

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/stretchr/testify/assert"

	"entrecoiffeur-notify-backend/internal/model"
	"entrecoiffeur-notify-backend/internal/store"
)

// mockSender is a mock implementation of the Sender interface.
type mockSender struct {
	SendFunc func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// Send calls the mock SendFunc.
func (m *mockSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return m.SendFunc(payload, sub, options)
}

// fakeStore implements store.Store over in-memory state for pool tests.
type fakeStore struct {
	mu            sync.Mutex
	record        *model.NotificationRecord
	subscriptions []model.PushSubscription
	deactivated   []string
}

var _ store.Store = (*fakeStore)(nil)

func (f *fakeStore) Enqueue(ctx context.Context, userID string, payload model.NotificationPayload) (string, error) {
	return "", nil
}

func (f *fakeStore) GetNotification(ctx context.Context, id string) (*model.NotificationRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.record == nil || f.record.ID != id {
		return nil, nil
	}
	record := *f.record
	return &record, nil
}

func (f *fakeStore) ListUndelivered(ctx context.Context, userID string) ([]model.NotificationRecord, error) {
	return nil, nil
}

func (f *fakeStore) CountUndelivered(ctx context.Context, userID string) (int64, error) {
	return 0, nil
}

func (f *fakeStore) MarkDelivered(ctx context.Context, id string) error { return nil }

func (f *fakeStore) MarkAllDelivered(ctx context.Context, userID string) (int64, error) {
	return 0, nil
}

func (f *fakeStore) Sweep(ctx context.Context, window time.Duration) (int64, error) { return 0, nil }

func (f *fakeStore) Register(ctx context.Context, userID, endpoint, p256dh, auth, userAgent string) (string, error) {
	return "", nil
}

func (f *fakeStore) Deactivate(ctx context.Context, userID, endpoint string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deactivated = append(f.deactivated, endpoint)
	return true, nil
}

func (f *fakeStore) PurgeInactive(ctx context.Context, userID string) (int64, error) { return 0, nil }

func (f *fakeStore) ListActive(ctx context.Context, userID string) ([]model.PushSubscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.PushSubscription(nil), f.subscriptions...), nil
}

func pendingRecord(id string) *model.NotificationRecord {
	return &model.NotificationRecord{
		ID:     id,
		UserID: "user-1",
		Payload: model.NotificationPayload{
			Title: "New order",
			Body:  "Someone ordered a product",
			Tag:   "order-A1",
		},
		CreatedAt: time.Now().UTC(),
	}
}

func okResponse() *http.Response {
	return &http.Response{
		StatusCode: http.StatusCreated,
		Body:       io.NopCloser(bytes.NewBufferString("")),
	}
}

func TestWorkerPool_Dispatch(t *testing.T) {
	wp := NewWorkerPool(1, &fakeStore{}, &webpush.Options{})

	wp.Dispatch("n1")

	select {
	case job := <-wp.Jobs():
		assert.Equal(t, "n1", job)
	case <-time.After(1 * time.Second):
		t.Fatal("timed out waiting for job to be dispatched")
	}
}

func TestWorkerPool_FansOutToEveryActiveEndpoint(t *testing.T) {
	fs := &fakeStore{
		record: pendingRecord("n1"),
		subscriptions: []model.PushSubscription{
			{ID: "s1", UserID: "user-1", Endpoint: "https://push.example.com/ep-1", P256DH: "k1", Auth: "a1", IsActive: true},
			{ID: "s2", UserID: "user-1", Endpoint: "https://push.example.com/ep-2", P256DH: "k2", Auth: "a2", IsActive: true},
		},
	}
	wp := NewWorkerPool(1, fs, &webpush.Options{})

	var mu sync.Mutex
	var endpoints []string
	wp.sender = &mockSender{
		SendFunc: func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
			mu.Lock()
			endpoints = append(endpoints, sub.Endpoint)
			mu.Unlock()
			assert.Contains(t, string(payload), `"tag":"order-A1"`)
			assert.Contains(t, string(payload), `"title":"New order"`)
			return okResponse(), nil
		},
	}

	wp.sendForNotification(context.Background(), "n1")

	assert.ElementsMatch(t, []string{
		"https://push.example.com/ep-1",
		"https://push.example.com/ep-2",
	}, endpoints)
	assert.Empty(t, fs.deactivated)
}

func TestWorkerPool_DeactivatesGoneEndpoint(t *testing.T) {
	fs := &fakeStore{
		record: pendingRecord("n1"),
		subscriptions: []model.PushSubscription{
			{ID: "s1", UserID: "user-1", Endpoint: "https://push.example.com/expired", P256DH: "k1", Auth: "a1", IsActive: true},
		},
	}
	wp := NewWorkerPool(1, fs, &webpush.Options{})

	wp.sender = &mockSender{
		SendFunc: func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
			return &http.Response{
				StatusCode: http.StatusGone,
				Body:       io.NopCloser(bytes.NewBufferString("")),
			}, nil
		},
	}

	wp.sendForNotification(context.Background(), "n1")

	assert.Equal(t, []string{"https://push.example.com/expired"}, fs.deactivated)
}

func TestWorkerPool_SendErrorLeavesSubscriptionAlone(t *testing.T) {
	fs := &fakeStore{
		record: pendingRecord("n1"),
		subscriptions: []model.PushSubscription{
			{ID: "s1", UserID: "user-1", Endpoint: "https://push.example.com/flaky", P256DH: "k1", Auth: "a1", IsActive: true},
		},
	}
	wp := NewWorkerPool(1, fs, &webpush.Options{})

	wp.sender = &mockSender{
		SendFunc: func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
			return nil, assert.AnError
		},
	}

	// The transport is best-effort: a failed send neither errors out nor
	// touches the registry.
	wp.sendForNotification(context.Background(), "n1")

	assert.Empty(t, fs.deactivated)
}

func TestWorkerPool_SkipsDeliveredAndUnknownRecords(t *testing.T) {
	delivered := pendingRecord("n1")
	delivered.IsDelivered = true
	fs := &fakeStore{
		record: delivered,
		subscriptions: []model.PushSubscription{
			{ID: "s1", UserID: "user-1", Endpoint: "https://push.example.com/ep-1", P256DH: "k1", Auth: "a1", IsActive: true},
		},
	}
	wp := NewWorkerPool(1, fs, &webpush.Options{})

	var sends int
	wp.sender = &mockSender{
		SendFunc: func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
			sends++
			return okResponse(), nil
		},
	}

	wp.sendForNotification(context.Background(), "n1")
	wp.sendForNotification(context.Background(), "no-such-id")

	assert.Equal(t, 0, sends)
}
