package models

import (
	"time"

	"github.com/go-playground/validator/v10"
)

const WaitlistSourceLanding = "landing"

// WaitlistEntry is a pre-launch signup.
type WaitlistEntry struct {
	ID        uint             `gorm:"primaryKey" json:"id"`
	Email     string           `gorm:"uniqueIndex;type:text" json:"email" validate:"required,email,max=200"`
	Source    string           `gorm:"type:text;default:'landing'" json:"source" validate:"max=50"`
	Metadata  WaitlistMetadata `gorm:"type:jsonb;serializer:json" json:"metadata"`
	CreatedAt time.Time        `gorm:"autoCreateTime" json:"created_at"`
}

// WaitlistMetadata carries campaign attribution of a signup.
type WaitlistMetadata struct {
	UTMSource   string `json:"utm_source,omitempty" validate:"max=100"`
	UTMMedium   string `json:"utm_medium,omitempty" validate:"max=100"`
	UTMCampaign string `json:"utm_campaign,omitempty" validate:"max=100"`
	Referrer    string `json:"referrer,omitempty" validate:"max=500"`
}

func (WaitlistEntry) TableName() string {
	return "waitlist"
}

func (w *WaitlistEntry) Validate() error {
	v := validator.New()

	return v.Struct(w)
}
