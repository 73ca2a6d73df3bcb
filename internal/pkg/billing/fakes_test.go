package billing

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/licitaflash/licitaflash/app/models"
)

// memoryRepository applies subscription updates to in-memory subscribers.
type memoryRepository struct {
	mu          sync.Mutex
	subscribers []*models.Subscriber
	err         error
	writes      int
}

func newMemoryRepository(subs ...*models.Subscriber) *memoryRepository {
	return &memoryRepository{subscribers: subs}
}

func (r *memoryRepository) UpdateSubscriptionByEmail(ctx context.Context, email string, upd SubscriptionUpdate) error {
	return r.update(func(s *models.Subscriber) bool { return strings.EqualFold(s.Email, email) }, upd)
}

func (r *memoryRepository) UpdateSubscriptionByCustomerID(ctx context.Context, customerID string, upd SubscriptionUpdate) error {
	return r.update(func(s *models.Subscriber) bool { return s.CustomerID() == customerID }, upd)
}

func (r *memoryRepository) update(match func(*models.Subscriber) bool, upd SubscriptionUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}

	matched, applied := 0, 0
	for _, s := range r.subscribers {
		if !match(s) {
			continue
		}
		matched++
		if upd.NotAfter != nil && s.SubscriptionUpdatedAt != nil && s.SubscriptionUpdatedAt.After(*upd.NotAfter) {
			continue
		}
		s.SubscriptionStatus = upd.Status
		at := upd.At
		s.SubscriptionUpdatedAt = &at
		if upd.Plan != nil {
			plan := *upd.Plan
			s.SubscriptionPlan = &plan
		}
		if upd.CustomerID != nil {
			customerID := *upd.CustomerID
			s.StripeCustomerID = &customerID
		}
		applied++
		r.writes++
	}

	switch {
	case applied > 0:
		return nil
	case matched > 0:
		return ErrStaleEvent
	default:
		return ErrSubscriberNotFound
	}
}

type memoryEventLog struct {
	mu   sync.Mutex
	ids  map[string]struct{}
	fail bool
}

func newMemoryEventLog() *memoryEventLog {
	return &memoryEventLog{ids: map[string]struct{}{}}
}

func (l *memoryEventLog) Seen(ctx context.Context, eventID string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.fail {
		return false, errors.New("event log unavailable")
	}
	_, ok := l.ids[eventID]
	return ok, nil
}

func (l *memoryEventLog) Remember(ctx context.Context, eventID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.fail {
		return errors.New("event log unavailable")
	}
	l.ids[eventID] = struct{}{}
	return nil
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func strPtr(s string) *string {
	return &s
}
