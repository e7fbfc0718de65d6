package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"entrecoiffeur-notify-backend/internal/model"
)

// Client implements the polling contract over HTTP for agents running
// outside the server process.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a client for the given server base URL.
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// ListUndelivered fetches the user's undelivered notifications, newest first.
func (c *Client) ListUndelivered(ctx context.Context, userID string) ([]model.NotificationRecord, error) {
	endpoint := fmt.Sprintf("%s/api/notifications/pending?user_id=%s", c.baseURL, url.QueryEscape(userID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("received non-200 status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var records []model.NotificationRecord
	if err := json.Unmarshal(body, &records); err != nil {
		return nil, fmt.Errorf("failed to unmarshal notifications: %w", err)
	}
	return records, nil
}

// MarkDelivered acknowledges one notification. The server treats the call
// as idempotent, so retries and races with a peer agent are harmless.
func (c *Client) MarkDelivered(ctx context.Context, id string) error {
	endpoint := fmt.Sprintf("%s/api/notifications/%s/delivered", c.baseURL, url.PathEscape(id))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("received unexpected status code: %d", resp.StatusCode)
	}
	return nil
}
