package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/licitaflash/licitaflash/app/models"
	"gorm.io/gorm"
)

type waitlistRepository struct {
	db *gorm.DB
}

func NewWaitlistRepository(db *gorm.DB) WaitlistRepository {
	return &waitlistRepository{db: db}
}

// Create inserts a signup. A duplicate email yields ErrAlreadyRegistered.
func (r *waitlistRepository) Create(ctx context.Context, entry *models.WaitlistEntry) error {
	entry.Email = strings.ToLower(strings.TrimSpace(entry.Email))
	if entry.Source == "" {
		entry.Source = models.WaitlistSourceLanding
	}
	err := r.db.WithContext(ctx).Create(entry).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrAlreadyRegistered
	}
	return err
}
