package models

import (
	"time"
	"unicode/utf8"
)

const DraftStatusDraft = "borrador"

const draftTitleMaxRunes = 60

// Draft is a bid proposal a subscriber writes against one tender.
type Draft struct {
	ID           string       `gorm:"primaryKey;type:uuid" json:"id"`
	UserID       string       `gorm:"type:uuid;index;not null" json:"user_id"`
	LicitacionID string       `gorm:"type:uuid;index" json:"licitacion_id"`
	Titulo       string       `gorm:"type:text" json:"titulo"`
	Contenido    DraftContent `gorm:"type:jsonb;serializer:json" json:"contenido"`
	Status       string       `gorm:"type:text;default:'borrador'" json:"status"`
	CreatedAt    time.Time    `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time    `gorm:"autoUpdateTime" json:"updated_at"`

	Licitacion *Tender `gorm:"foreignKey:LicitacionID" json:"licitacion,omitempty"`
}

// DraftContent holds the sections of a proposal.
type DraftContent struct {
	Resumen     string `json:"resumen" validate:"max=20000"`
	Metodologia string `json:"metodologia" validate:"max=20000"`
	Cronograma  string `json:"cronograma" validate:"max=20000"`
	Equipo      string `json:"equipo" validate:"max=20000"`
}

func (Draft) TableName() string {
	return "borradores"
}

// DraftTitle names a new draft after its tender.
func DraftTitle(tender *Tender) string {
	if tender == nil || tender.Titulo == "" {
		return "Nuevo Borrador"
	}
	title := tender.Titulo
	if utf8.RuneCountInString(title) > draftTitleMaxRunes {
		title = string([]rune(title)[:draftTitleMaxRunes])
	}
	return "Propuesta: " + title
}

// OwnedBy reports whether userID wrote the draft.
func (d *Draft) OwnedBy(userID string) bool {
	return d != nil && userID != "" && d.UserID == userID
}
