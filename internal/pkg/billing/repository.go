package billing

import (
	"context"
	"errors"
	"time"

	"github.com/licitaflash/licitaflash/app/models"
	"gorm.io/gorm"
)

var (
	// ErrSubscriberNotFound means no stored subscriber matched the event.
	ErrSubscriberNotFound = errors.New("billing: subscriber not found")
	// ErrStaleEvent means the subscriber was already updated by a newer event.
	ErrStaleEvent = errors.New("billing: stale event")
)

// SubscriptionUpdate is a single last-write-wins assignment of the
// subscription columns. Nil fields are left untouched.
type SubscriptionUpdate struct {
	Status     string
	Plan       *string
	CustomerID *string
	At         time.Time
	// NotAfter, when set, skips subscribers whose subscription_updated_at is
	// newer than the given instant.
	NotAfter *time.Time
}

func (u SubscriptionUpdate) columns() map[string]any {
	cols := map[string]any{
		"subscription_status":     u.Status,
		"subscription_updated_at": u.At,
	}
	if u.Plan != nil {
		cols["subscription_plan"] = *u.Plan
	}
	if u.CustomerID != nil {
		cols["stripe_customer_id"] = *u.CustomerID
	}
	return cols
}

// Repository provides DB operations used by the billing service.
type Repository interface {
	UpdateSubscriptionByEmail(ctx context.Context, email string, upd SubscriptionUpdate) error
	UpdateSubscriptionByCustomerID(ctx context.Context, customerID string, upd SubscriptionUpdate) error
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a billing repository backed by GORM.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) UpdateSubscriptionByEmail(ctx context.Context, email string, upd SubscriptionUpdate) error {
	return r.update(ctx, func(q *gorm.DB) *gorm.DB {
		return q.Where("LOWER(email) = LOWER(?)", email)
	}, upd)
}

func (r *gormRepository) UpdateSubscriptionByCustomerID(ctx context.Context, customerID string, upd SubscriptionUpdate) error {
	return r.update(ctx, func(q *gorm.DB) *gorm.DB {
		return q.Where("stripe_customer_id = ?", customerID)
	}, upd)
}

func (r *gormRepository) update(ctx context.Context, match func(*gorm.DB) *gorm.DB, upd SubscriptionUpdate) error {
	db := r.db.WithContext(ctx)
	q := match(db.Model(&models.Subscriber{}))
	if upd.NotAfter != nil {
		q = q.Where("(subscription_updated_at IS NULL OR subscription_updated_at <= ?)", *upd.NotAfter)
	}
	res := q.Updates(upd.columns())
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}
	if upd.NotAfter == nil {
		return ErrSubscriberNotFound
	}

	var count int64
	if err := match(db.Model(&models.Subscriber{})).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrStaleEvent
	}
	return ErrSubscriberNotFound
}
