package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/licitaflash/licitaflash/app/models"
	"gorm.io/gorm"
)

var errDraftOwnerRequired = errors.New("draft owner is required")

type draftRepository struct {
	db *gorm.DB
}

func NewDraftRepository(db *gorm.DB) DraftRepository {
	return &draftRepository{db: db}
}

// Create stores a new draft, assigning its id and initial status.
func (r *draftRepository) Create(ctx context.Context, draft *models.Draft) error {
	if draft.UserID == "" {
		return errDraftOwnerRequired
	}
	if draft.ID == "" {
		draft.ID = uuid.NewString()
	}
	if draft.Status == "" {
		draft.Status = models.DraftStatusDraft
	}
	return r.db.WithContext(ctx).Omit("Licitacion").Create(draft).Error
}

func (r *draftRepository) GetForUser(ctx context.Context, id, userID string) (*models.Draft, error) {
	var draft models.Draft
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&draft).Error
	if err != nil {
		return nil, err
	}
	return &draft, nil
}

// ListByUser returns the user's drafts with their tender, last edited first.
func (r *draftRepository) ListByUser(ctx context.Context, userID string) ([]models.Draft, error) {
	drafts := make([]models.Draft, 0)
	err := r.db.WithContext(ctx).
		Joins("Licitacion").
		Where("borradores.user_id = ?", userID).
		Order("borradores.updated_at DESC").
		Find(&drafts).Error
	return drafts, err
}

// UpdateContent replaces the sections of a draft and bumps updated_at.
func (r *draftRepository) UpdateContent(ctx context.Context, id, userID string, content models.DraftContent) (*models.Draft, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Draft{}).
		Where("id = ? AND user_id = ?", id, userID).
		Select("contenido", "updated_at").
		Updates(&models.Draft{Contenido: content, UpdatedAt: time.Now()})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return r.GetForUser(ctx, id, userID)
}
