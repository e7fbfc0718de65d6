package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"entrecoiffeur-notify-backend/internal/model"
)

func TestListUndelivered(t *testing.T) {
	records := []model.NotificationRecord{
		{ID: "n1", UserID: "user-1", Payload: model.NotificationPayload{Title: "New order", Body: "b", Tag: "order-1"}},
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/notifications/pending", r.URL.Path)
		assert.Equal(t, "user-1", r.URL.Query().Get("user_id"))
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(records)
	}))
	defer server.Close()

	c := New(server.URL)
	got, err := c.ListUndelivered(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "order-1", got[0].Payload.Tag)
}

func TestListUndeliveredServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	c := New(server.URL)
	_, err := c.ListUndelivered(context.Background(), "user-1")
	assert.Error(t, err)
}

func TestMarkDelivered(t *testing.T) {
	var path string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		assert.Equal(t, http.MethodPost, r.Method)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	c := New(server.URL)
	require.NoError(t, c.MarkDelivered(context.Background(), "n1"))
	assert.Equal(t, "/api/notifications/n1/delivered", path)
}

func TestMarkDeliveredUnexpectedStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	c := New(server.URL)
	assert.Error(t, c.MarkDelivered(context.Background(), "n1"))
}
