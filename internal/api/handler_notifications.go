package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"entrecoiffeur-notify-backend/internal/model"
)

type enqueueRequest struct {
	UserID  string                    `json:"user_id" binding:"required"`
	Payload model.NotificationPayload `json:"payload" binding:"required"`
}

// PostNotification is the enqueue contract consumed by event producers
// (order, review and support handlers). The payload must carry a title, a
// body and a tag unique per logical event, e.g. "order-<orderNumber>",
// reused across updates to that event so re-renders coalesce.
func (h *Handler) PostNotification(c *gin.Context) {
	var req enqueueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Payload.Title == "" || req.Payload.Body == "" || req.Payload.Tag == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "payload requires title, body and tag"})
		return
	}

	id, err := h.store.Enqueue(c.Request.Context(), req.UserID, req.Payload)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	// Best-effort out-of-band acceleration; the store insert above is the
	// source of truth and transport outcomes never alter it.
	if h.pool != nil {
		h.pool.Dispatch(id)
	}

	c.JSON(http.StatusCreated, gin.H{"id": id})
}

// GetPendingNotifications serves the polling contract: all undelivered
// notifications for a user, newest first.
func (h *Handler) GetPendingNotifications(c *gin.Context) {
	userID := c.Query("user_id")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
		return
	}

	records, err := h.store.ListUndelivered(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if records == nil {
		records = []model.NotificationRecord{}
	}

	c.JSON(http.StatusOK, records)
}

// GetPendingCount returns the badge count for a user.
func (h *Handler) GetPendingCount(c *gin.Context) {
	userID := c.Query("user_id")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
		return
	}

	count, err := h.store.CountUndelivered(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"count": count})
}

// PostDelivered acknowledges one notification. Idempotent by design so a
// double-ack from racing agents returns success for both, and a stale id
// (record already swept) is a no-op success rather than an error.
func (h *Handler) PostDelivered(c *gin.Context) {
	id := c.Param("id")
	if err := h.store.MarkDelivered(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Status(http.StatusNoContent)
}

type markAllRequest struct {
	UserID string `json:"user_id" binding:"required"`
}

// PostAllDelivered marks every pending notification of a user delivered,
// used when the user opens the in-app notification center.
func (h *Handler) PostAllDelivered(c *gin.Context) {
	var req markAllRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	count, err := h.store.MarkAllDelivered(c.Request.Context(), req.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"count": count})
}
