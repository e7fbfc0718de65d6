package api

import (
	"fmt"
	"strings"
	"testing"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"entrecoiffeur-notify-backend/config"
	"entrecoiffeur-notify-backend/internal/model"
	"entrecoiffeur-notify-backend/internal/store"
)

// setupTestRouter wires the full router against an isolated in-memory
// database, without a push pool.
func setupTestRouter(t *testing.T) (*gin.Engine, store.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})
	require.NoError(t, db.AutoMigrate(&model.NotificationRecord{}, &model.PushSubscription{}))

	cfg := &config.ServerConfig{
		RateLimitPerSec: 1000,
		RateLimitBurst:  1000,
		CacheTTLSeconds: 300,
	}
	s := store.NewGormStore(db)
	router := NewRouter(cfg, s, &webpush.Options{VAPIDPublicKey: "test-public-key"}, nil)
	return router, s
}
