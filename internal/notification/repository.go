package notification

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sharath018/temple-waste-backend/internal/apperr"
	"github.com/sharath018/temple-waste-backend/internal/store"
)

type Repository interface {
	// StoreInApp inserts n unless the user already has a notification for the
	// same event. It reports whether a row was written.
	StoreInApp(ctx context.Context, n *InAppNotification) (bool, error)
	ListForUser(ctx context.Context, userID string, unreadOnly bool, limit int) ([]InAppNotification, error)
	MarkRead(ctx context.Context, userID string, id uint) error

	UpsertDevice(ctx context.Context, d *DeviceToken) error
	ActiveTokens(ctx context.Context, userIDs []string) ([]string, error)
	Deactivate(ctx context.Context, tokens []string) error
}

type repository struct {
	db      *gorm.DB
	inApp   *store.Repository[InAppNotification]
	devices *store.Repository[DeviceToken]
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{
		db:      db,
		inApp:   store.NewRepository[InAppNotification](db),
		devices: store.NewRepository[DeviceToken](db),
	}
}

func (r *repository) StoreInApp(ctx context.Context, n *InAppNotification) (bool, error) {
	if err := store.Validate(n); err != nil {
		return false, err
	}
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "user_id"}, {Name: "event_id"}}, DoNothing: true}).
		Create(n)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repository) ListForUser(ctx context.Context, userID string, unreadOnly bool, limit int) ([]InAppNotification, error) {
	q := store.Query{}.Where(store.Eq("user_id", userID)).OrderBy("created_at", true).OrderBy("id", true)
	if unreadOnly {
		q = q.Where(store.Eq("is_read", false))
	}
	if limit > 0 {
		q = q.Take(limit)
	}
	return r.inApp.List(ctx, q)
}

// MarkRead only touches the caller's own notifications.
func (r *repository) MarkRead(ctx context.Context, userID string, id uint) error {
	res := r.db.WithContext(ctx).Model(&InAppNotification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("is_read", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("notification %d not found", id)
	}
	return nil
}

// UpsertDevice re-binds an existing token to the caller and reactivates it.
func (r *repository) UpsertDevice(ctx context.Context, d *DeviceToken) error {
	err := r.devices.Upsert(ctx, d, "device_token")
	if errors.Is(err, apperr.ErrConflict) {
		return apperr.Conflict("device token already registered")
	}
	return err
}

func (r *repository) ActiveTokens(ctx context.Context, userIDs []string) ([]string, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	var tokens []string
	err := r.db.WithContext(ctx).Model(&DeviceToken{}).
		Where("user_id IN ? AND is_active = ?", userIDs, true).
		Pluck("device_token", &tokens).Error
	return tokens, err
}

func (r *repository) Deactivate(ctx context.Context, tokens []string) error {
	if len(tokens) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&DeviceToken{}).
		Where("device_token IN ?", tokens).
		Updates(map[string]interface{}{"is_active": false, "updated_at": time.Now()}).Error
}
