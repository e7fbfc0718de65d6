package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"entrecoiffeur-notify-backend/internal/model"
)

// Store defines the interface for all database operations: the pending
// notification queue and the push subscription registry.
type Store interface {
	// Pending notification queue.
	Enqueue(ctx context.Context, userID string, payload model.NotificationPayload) (string, error)
	GetNotification(ctx context.Context, id string) (*model.NotificationRecord, error)
	ListUndelivered(ctx context.Context, userID string) ([]model.NotificationRecord, error)
	CountUndelivered(ctx context.Context, userID string) (int64, error)
	MarkDelivered(ctx context.Context, id string) error
	MarkAllDelivered(ctx context.Context, userID string) (int64, error)
	Sweep(ctx context.Context, window time.Duration) (int64, error)

	// Subscription registry.
	Register(ctx context.Context, userID, endpoint, p256dh, auth, userAgent string) (string, error)
	Deactivate(ctx context.Context, userID, endpoint string) (bool, error)
	PurgeInactive(ctx context.Context, userID string) (int64, error)
	ListActive(ctx context.Context, userID string) ([]model.PushSubscription, error)
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

// Enqueue inserts a new undelivered notification for the user. It never
// fails for lack of subscriptions: a user with zero endpoints still
// accumulates a queue to drain on next login.
func (s *gormStore) Enqueue(ctx context.Context, userID string, payload model.NotificationPayload) (string, error) {
	record := model.NotificationRecord{
		UserID:      userID,
		Payload:     payload,
		IsDelivered: false,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
		return "", fmt.Errorf("failed to enqueue notification for user %s: %w", userID, err)
	}
	return record.ID, nil
}

// GetNotification fetches a single record by id. Returns nil without error
// when the record does not exist.
func (s *gormStore) GetNotification(ctx context.Context, id string) (*model.NotificationRecord, error) {
	var record model.NotificationRecord
	err := s.db.WithContext(ctx).First(&record, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch notification %s: %w", id, err)
	}
	return &record, nil
}

// ListUndelivered returns all undelivered notifications for a user,
// newest first.
func (s *gormStore) ListUndelivered(ctx context.Context, userID string) ([]model.NotificationRecord, error) {
	var records []model.NotificationRecord
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND is_delivered = ?", userID, false).
		Order("created_at DESC").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list undelivered notifications for user %s: %w", userID, err)
	}
	return records, nil
}

// CountUndelivered returns the badge count for a user via the
// (user_id, is_delivered) index.
func (s *gormStore) CountUndelivered(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&model.NotificationRecord{}).
		Where("user_id = ? AND is_delivered = ?", userID, false).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count undelivered notifications for user %s: %w", userID, err)
	}
	return count, nil
}

// MarkDelivered flips a record to delivered. Idempotent: the update is
// guarded on is_delivered = false, so a second call (or a call racing with
// another agent, or a stale id after a sweep) affects zero rows and is a
// no-op success. Nothing ever undelivers a record.
func (s *gormStore) MarkDelivered(ctx context.Context, id string) error {
	now := time.Now().UTC()
	err := s.db.WithContext(ctx).
		Model(&model.NotificationRecord{}).
		Where("id = ? AND is_delivered = ?", id, false).
		Updates(map[string]any{"is_delivered": true, "delivered_at": now}).Error
	if err != nil {
		return fmt.Errorf("failed to mark notification %s delivered: %w", id, err)
	}
	return nil
}

// MarkAllDelivered marks every undelivered notification for a user as
// delivered, returning how many rows were affected.
func (s *gormStore) MarkAllDelivered(ctx context.Context, userID string) (int64, error) {
	now := time.Now().UTC()
	result := s.db.WithContext(ctx).
		Model(&model.NotificationRecord{}).
		Where("user_id = ? AND is_delivered = ?", userID, false).
		Updates(map[string]any{"is_delivered": true, "delivered_at": now})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to mark all notifications delivered for user %s: %w", userID, result.Error)
	}
	return result.RowsAffected, nil
}

// Sweep deletes delivered records whose delivered_at is older than the
// retention window. The predicate never matches undelivered rows, so an
// unseen notification survives regardless of its age or the window value.
func (s *gormStore) Sweep(ctx context.Context, window time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-window)
	result := s.db.WithContext(ctx).
		Where("is_delivered = ? AND delivered_at < ?", true, cutoff).
		Delete(&model.NotificationRecord{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to sweep delivered notifications: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// Register upserts a push subscription keyed on (user_id, endpoint).
// Browsers rotate subscription objects for the same logical device, so a
// re-registration updates the keys and re-activates the row instead of
// duplicating it. Returns the id of the canonical row.
func (s *gormStore) Register(ctx context.Context, userID, endpoint, p256dh, auth, userAgent string) (string, error) {
	now := time.Now().UTC()
	subscription := model.PushSubscription{
		UserID:    userID,
		Endpoint:  endpoint,
		P256DH:    p256dh,
		Auth:      auth,
		UserAgent: userAgent,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "endpoint"}},
		DoUpdates: clause.AssignmentColumns([]string{"p256dh", "auth", "user_agent", "is_active", "updated_at"}),
	}).Create(&subscription).Error
	if err != nil {
		return "", fmt.Errorf("failed to register subscription for user %s: %w", userID, err)
	}

	// On conflict the existing row keeps its id; re-select to return the
	// canonical one.
	var canonical model.PushSubscription
	err = s.db.WithContext(ctx).
		Select("id").
		First(&canonical, "user_id = ? AND endpoint = ?", userID, endpoint).Error
	if err != nil {
		return "", fmt.Errorf("failed to load subscription for user %s after upsert: %w", userID, err)
	}
	return canonical.ID, nil
}

// Deactivate flips a subscription inactive without deleting it; inactive
// rows are retained until an explicit purge. Returns whether a matching
// row existed.
func (s *gormStore) Deactivate(ctx context.Context, userID, endpoint string) (bool, error) {
	result := s.db.WithContext(ctx).
		Model(&model.PushSubscription{}).
		Where("user_id = ? AND endpoint = ?", userID, endpoint).
		Updates(map[string]any{"is_active": false, "updated_at": time.Now().UTC()})
	if result.Error != nil {
		return false, fmt.Errorf("failed to deactivate subscription for user %s: %w", userID, result.Error)
	}
	return result.RowsAffected > 0, nil
}

// PurgeInactive deletes all inactive subscriptions for a user. Manual
// cleanup only, never run automatically.
func (s *gormStore) PurgeInactive(ctx context.Context, userID string) (int64, error) {
	result := s.db.WithContext(ctx).
		Where("user_id = ? AND is_active = ?", userID, false).
		Delete(&model.PushSubscription{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to purge inactive subscriptions for user %s: %w", userID, result.Error)
	}
	return result.RowsAffected, nil
}

// ListActive returns every active subscription for a user.
func (s *gormStore) ListActive(ctx context.Context, userID string) ([]model.PushSubscription, error) {
	var subscriptions []model.PushSubscription
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND is_active = ?", userID, true).
		Find(&subscriptions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list active subscriptions for user %s: %w", userID, err)
	}
	return subscriptions, nil
}
