package repository

import (
	"context"
	"strings"

	"github.com/licitaflash/licitaflash/app/models"
	"gorm.io/gorm"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

type tenderRepository struct {
	db *gorm.DB
}

func NewTenderRepository(db *gorm.DB) TenderRepository {
	return &tenderRepository{db: db}
}

// Search returns open tenders, newest publication first. The free-text query
// is a case-insensitive substring match on title or contracting body.
func (r *tenderRepository) Search(ctx context.Context, params TenderSearch) ([]models.Tender, error) {
	q := r.db.WithContext(ctx).Model(&models.Tender{}).Where("estado = ?", models.TenderStatusOpen)

	if text := strings.TrimSpace(params.Query); text != "" {
		pattern := "%" + likeEscaper.Replace(text) + "%"
		if r.db.Dialector.Name() == "postgres" {
			q = q.Where("(titulo ILIKE ? OR organo_contratacion ILIKE ?)", pattern, pattern)
		} else {
			q = q.Where("(LOWER(titulo) LIKE LOWER(?) OR LOWER(organo_contratacion) LIKE LOWER(?))", pattern, pattern)
		}
	}
	if tipo := strings.TrimSpace(params.Tipo); tipo != "" {
		q = q.Where("tipo_contrato = ?", tipo)
	}

	tenders := make([]models.Tender, 0)
	err := q.Order("fecha_publicacion DESC").Limit(params.EffectiveLimit()).Find(&tenders).Error
	return tenders, err
}

func (r *tenderRepository) GetByID(ctx context.Context, id string) (*models.Tender, error) {
	var tender models.Tender
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&tender).Error; err != nil {
		return nil, err
	}
	return &tender, nil
}
