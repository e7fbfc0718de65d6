package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"entrecoiffeur-notify-backend/internal/model"
)

type putSubscriptionRequest struct {
	UserID   string `json:"user_id" binding:"required"`
	Endpoint string `json:"endpoint" binding:"required"`
	P256DH   string `json:"p256dh" binding:"required"`
	Auth     string `json:"auth" binding:"required"`
}

// PutSubscription registers a push endpoint for a user, or rotates the
// keys of an existing registration for the same endpoint.
func (h *Handler) PutSubscription(c *gin.Context) {
	var req putSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id, err := h.store.Register(c.Request.Context(), req.UserID, req.Endpoint, req.P256DH, req.Auth, c.Request.UserAgent())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": id})
}

type deleteSubscriptionRequest struct {
	UserID   string `json:"user_id" binding:"required"`
	Endpoint string `json:"endpoint" binding:"required"`
}

// DeleteSubscription deactivates a registration. The row is retained for
// audit until an explicit purge.
func (h *Handler) DeleteSubscription(c *gin.Context) {
	var req deleteSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	existed, err := h.store.Deactivate(c.Request.Context(), req.UserID, req.Endpoint)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if !existed {
		c.JSON(http.StatusNotFound, gin.H{"error": "subscription not found"})
		return
	}

	c.Status(http.StatusNoContent)
}

// DeleteInactiveSubscriptions purges all inactive registrations of a user.
func (h *Handler) DeleteInactiveSubscriptions(c *gin.Context) {
	userID := c.Query("user_id")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
		return
	}

	purged, err := h.store.PurgeInactive(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"purged": purged})
}

// GetSubscriptions lists a user's active registrations.
func (h *Handler) GetSubscriptions(c *gin.Context) {
	userID := c.Query("user_id")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
		return
	}

	subscriptions, err := h.store.ListActive(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if subscriptions == nil {
		subscriptions = []model.PushSubscription{}
	}

	c.JSON(http.StatusOK, subscriptions)
}
