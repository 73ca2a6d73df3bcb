package repository

import (
	"context"
	"errors"

	"github.com/licitaflash/licitaflash/app/models"
	"gorm.io/gorm"
)

// ErrAlreadyRegistered is returned when a waitlist email already exists.
var ErrAlreadyRegistered = errors.New("already registered")

const (
	DefaultSearchLimit = 20
	MaxSearchLimit     = 100
)

// TenderSearch holds the filters of a tender search. Empty fields do not filter.
type TenderSearch struct {
	Query string
	Tipo  string
	Limit int
}

// EffectiveLimit applies the default and the upper bound.
func (s TenderSearch) EffectiveLimit() int {
	switch {
	case s.Limit <= 0:
		return DefaultSearchLimit
	case s.Limit > MaxSearchLimit:
		return MaxSearchLimit
	default:
		return s.Limit
	}
}

// SubscriberRepository reads subscriber rows. Subscription columns are written
// by the billing reconciler only.
type SubscriberRepository interface {
	GetByID(ctx context.Context, id string) (*models.Subscriber, error)
	GetByEmail(ctx context.Context, email string) (*models.Subscriber, error)
	GetByCustomerID(ctx context.Context, customerID string) (*models.Subscriber, error)
}

// TenderRepository reads the tender catalogue.
type TenderRepository interface {
	Search(ctx context.Context, params TenderSearch) ([]models.Tender, error)
	GetByID(ctx context.Context, id string) (*models.Tender, error)
}

// WaitlistRepository stores pre-launch signups.
type WaitlistRepository interface {
	Create(ctx context.Context, entry *models.WaitlistEntry) error
}

// DraftRepository stores proposal drafts. Reads and writes are scoped to the
// owning user; a draft of another user is reported as gorm.ErrRecordNotFound.
type DraftRepository interface {
	Create(ctx context.Context, draft *models.Draft) error
	GetForUser(ctx context.Context, id, userID string) (*models.Draft, error)
	ListByUser(ctx context.Context, userID string) ([]models.Draft, error)
	UpdateContent(ctx context.Context, id, userID string, content models.DraftContent) (*models.Draft, error)
}

// Repositories struct holds all repository instances
type Repositories struct {
	Subscriber SubscriberRepository
	Tender     TenderRepository
	Waitlist   WaitlistRepository
	Draft      DraftRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Subscriber: NewSubscriberRepository(db),
		Tender:     NewTenderRepository(db),
		Waitlist:   NewWaitlistRepository(db),
		Draft:      NewDraftRepository(db),
	}
}
