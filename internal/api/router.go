package api

import (
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"entrecoiffeur-notify-backend/config"
	"entrecoiffeur-notify-backend/internal/mw"
	"entrecoiffeur-notify-backend/internal/push"
	"entrecoiffeur-notify-backend/internal/store"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(cfg *config.ServerConfig, s store.Store, webpushOptions *webpush.Options, pool *push.WorkerPool) *gin.Engine {
	r := gin.Default()

	handler := NewHandler(s, webpushOptions, pool)

	rateLimiter := mw.RateLimiter(rate.Limit(cfg.RateLimitPerSec), cfg.RateLimitBurst, cfg.RequestIPHeader)

	cacheTTL := time.Duration(cfg.CacheTTLSeconds) * time.Second
	cacheStore := cache.New(cacheTTL, 2*cacheTTL)
	caching := mw.Cache(cacheStore, cacheTTL)

	// API group
	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		// Enqueue contract (event producers).
		api.POST("/notifications", handler.PostNotification)

		// Polling contract (dispatcher / reconciler agents). Never cached:
		// agents must observe fresh delivery state.
		api.GET("/notifications/pending", handler.GetPendingNotifications)
		api.GET("/notifications/pending/count", handler.GetPendingCount)
		api.POST("/notifications/:id/delivered", handler.PostDelivered)
		api.POST("/notifications/delivered", handler.PostAllDelivered)

		// Subscription contract (client registration flow).
		api.PUT("/subscriptions", handler.PutSubscription)
		api.DELETE("/subscriptions", handler.DeleteSubscription)
		api.DELETE("/subscriptions/inactive", handler.DeleteInactiveSubscriptions)
		api.GET("/subscriptions", handler.GetSubscriptions)

		api.GET("/vapid_public_key", caching, handler.GetVAPIDPublicKey)
	}

	return r
}
