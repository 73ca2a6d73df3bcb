package repository

import (
	"context"
	"strings"

	"github.com/licitaflash/licitaflash/app/models"
	"gorm.io/gorm"
)

type subscriberRepository struct {
	db *gorm.DB
}

func NewSubscriberRepository(db *gorm.DB) SubscriberRepository {
	return &subscriberRepository{db: db}
}

// GetByID retrieves a subscriber by the auth provider identity
func (r *subscriberRepository) GetByID(ctx context.Context, id string) (*models.Subscriber, error) {
	var sub models.Subscriber
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&sub).Error; err != nil {
		return nil, err
	}
	return &sub, nil
}

// GetByEmail matches case-insensitively, the same way checkout events are matched
func (r *subscriberRepository) GetByEmail(ctx context.Context, email string) (*models.Subscriber, error) {
	var sub models.Subscriber
	err := r.db.WithContext(ctx).Where("LOWER(email) = LOWER(?)", strings.TrimSpace(email)).First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *subscriberRepository) GetByCustomerID(ctx context.Context, customerID string) (*models.Subscriber, error) {
	trimmed := strings.TrimSpace(customerID)
	if trimmed == "" {
		return nil, gorm.ErrRecordNotFound
	}
	var sub models.Subscriber
	if err := r.db.WithContext(ctx).Where("stripe_customer_id = ?", trimmed).First(&sub).Error; err != nil {
		return nil, err
	}
	return &sub, nil
}
