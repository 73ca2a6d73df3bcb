package models

import (
	"strings"
	"time"
)

const (
	SubscriptionStatusActive    = "active"
	SubscriptionStatusCancelled = "cancelled"
	SubscriptionStatusPastDue   = "past_due"
	SubscriptionStatusInactive  = "inactive"
)

const (
	SubscriptionPlanPro   = "pro"
	SubscriptionPlanUltra = "ultra"
)

// Subscriber is an account row of the hosted users table. Identity and email
// belong to the auth provider; the subscription_* columns and
// stripe_customer_id are written by the billing webhook only.
type Subscriber struct {
	ID                    string     `gorm:"primaryKey;type:uuid" json:"id"`
	Email                 string     `gorm:"type:text;index" json:"email"`
	FullName              string     `gorm:"type:text;default:null" json:"full_name,omitempty"`
	StripeCustomerID      *string    `gorm:"type:text;default:null;index" json:"stripe_customer_id,omitempty"`
	SubscriptionStatus    string     `gorm:"type:text;default:'inactive'" json:"subscription_status"`
	SubscriptionPlan      *string    `gorm:"type:text;default:null" json:"subscription_plan,omitempty"`
	SubscriptionUpdatedAt *time.Time `gorm:"default:null" json:"subscription_updated_at,omitempty"`
	CreatedAt             time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

func (Subscriber) TableName() string {
	return "users"
}

// Plan returns the stored plan name or an empty string.
func (s *Subscriber) Plan() string {
	if s == nil || s.SubscriptionPlan == nil {
		return ""
	}
	return *s.SubscriptionPlan
}

// CustomerID returns the payment provider customer reference or an empty string.
func (s *Subscriber) CustomerID() string {
	if s == nil || s.StripeCustomerID == nil {
		return ""
	}
	return *s.StripeCustomerID
}

// DisplayName falls back to the local part of the email address.
func (s *Subscriber) DisplayName() string {
	if name := strings.TrimSpace(s.FullName); name != "" {
		return name
	}
	local, _, _ := strings.Cut(s.Email, "@")
	if local == "" {
		return "Usuario"
	}
	return local
}
