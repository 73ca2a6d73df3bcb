package repository

import (
	"sync"

	"gorm.io/gorm"
)

// Factory manages repository instances and ensures they are singletons
type Factory struct {
	db    *gorm.DB
	repos *Repositories
	once  sync.Once
}

// NewFactory creates a new repository factory
func NewFactory(db *gorm.DB) *Factory {
	return &Factory{
		db: db,
	}
}

// GetRepositories returns a singleton instance of all repositories
func (f *Factory) GetRepositories() *Repositories {
	f.once.Do(func() {
		f.repos = NewRepositories(f.db)
	})
	return f.repos
}

func (f *Factory) GetSubscriberRepository() SubscriberRepository {
	return f.GetRepositories().Subscriber
}

func (f *Factory) GetTenderRepository() TenderRepository {
	return f.GetRepositories().Tender
}

func (f *Factory) GetWaitlistRepository() WaitlistRepository {
	return f.GetRepositories().Waitlist
}

func (f *Factory) GetDraftRepository() DraftRepository {
	return f.GetRepositories().Draft
}
