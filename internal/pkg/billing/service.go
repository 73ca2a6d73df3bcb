package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/licitaflash/licitaflash/app/models"
	"github.com/licitaflash/licitaflash/internal/pkg/metrics"
	"gorm.io/gorm"
)

// Outcome describes what a reconciled event did to the subscriber store.
type Outcome string

const (
	OutcomeApplied   Outcome = "applied"
	OutcomeUnmatched Outcome = "unmatched"
	OutcomeIgnored   Outcome = "ignored"
	OutcomeStale     Outcome = "stale"
	OutcomeDuplicate Outcome = "duplicate"
	OutcomeFailed    Outcome = "failed"
)

// Service reconciles payment provider events into subscriber rows.
type Service struct {
	repo  Repository
	seen  EventLog
	fence bool
	now   func() time.Time
}

type Option func(*Service)

// WithEventLog short-circuits redeliveries of already applied events.
func WithEventLog(l EventLog) Option {
	return func(s *Service) { s.seen = l }
}

// WithOrderingFence stamps rows with the event creation time and refuses to
// overwrite a row that was stamped by a newer event.
func WithOrderingFence(enabled bool) Option {
	return func(s *Service) { s.fence = enabled }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a billing service from an injected repository.
func NewService(repo Repository, opts ...Option) *Service {
	s := &Service{repo: repo, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewServiceFromDB creates a billing service from a GORM DB handle.
func NewServiceFromDB(db *gorm.DB, opts ...Option) *Service {
	return NewService(NewRepository(db), opts...)
}

// Apply reconciles one event. Unmatched and stale events are not errors; an
// error means the store could not be written and the delivery must be retried.
func (s *Service) Apply(ctx context.Context, ev Event) (Outcome, error) {
	outcome, err := s.apply(ctx, ev)
	if err != nil {
		outcome = OutcomeFailed
	}
	metrics.WebhookEventsTotal.WithLabelValues(ev.Kind(), string(outcome)).Inc()
	return outcome, err
}

func (s *Service) apply(ctx context.Context, ev Event) (Outcome, error) {
	if _, ok := ev.(Ignored); ok {
		return OutcomeIgnored, nil
	}

	if s.seen != nil && ev.EventID() != "" {
		dup, err := s.seen.Seen(ctx, ev.EventID())
		if err != nil {
			log.Warnf("billing: event log lookup for %s failed: %v", ev.EventID(), err)
		} else if dup {
			return OutcomeDuplicate, nil
		}
	}

	var err error
	switch e := ev.(type) {
	case CheckoutCompleted:
		err = s.applyCheckout(ctx, e)
	case SubscriptionDeleted:
		err = s.applyStatusByCustomer(ctx, e.eventMeta, e.CustomerID, models.SubscriptionStatusCancelled)
	case InvoicePaymentFailed:
		err = s.applyStatusByCustomer(ctx, e.eventMeta, e.CustomerID, models.SubscriptionStatusPastDue)
	default:
		return OutcomeFailed, fmt.Errorf("billing: unsupported event %T", ev)
	}

	outcome := OutcomeApplied
	switch {
	case errors.Is(err, ErrSubscriberNotFound):
		outcome = OutcomeUnmatched
	case errors.Is(err, ErrStaleEvent):
		log.Infof("billing: %s %s is older than the stored subscription state, skipped", ev.Kind(), ev.EventID())
		outcome = OutcomeStale
	case err != nil:
		return OutcomeFailed, err
	}

	if s.seen != nil && ev.EventID() != "" {
		if err := s.seen.Remember(ctx, ev.EventID()); err != nil {
			log.Warnf("billing: event log write for %s failed: %v", ev.EventID(), err)
		}
	}
	return outcome, nil
}

func (s *Service) applyCheckout(ctx context.Context, e CheckoutCompleted) error {
	if e.Email == "" {
		log.Warnf("billing: checkout %s carries no customer email, dropped", e.ID)
		return ErrSubscriberNotFound
	}

	plan := PlanForAmount(e.AmountTotal)
	upd := s.update(e.eventMeta, models.SubscriptionStatusActive)
	upd.Plan = &plan
	if e.CustomerID != "" {
		customerID := e.CustomerID
		upd.CustomerID = &customerID
	}

	err := s.repo.UpdateSubscriptionByEmail(ctx, e.Email, upd)
	if errors.Is(err, ErrSubscriberNotFound) {
		log.Warnf("billing: checkout %s for %s matched no subscriber, dropped", e.ID, e.Email)
	}
	return err
}

func (s *Service) applyStatusByCustomer(ctx context.Context, meta eventMeta, customerID, status string) error {
	if customerID == "" {
		log.Warnf("billing: %s %s carries no customer reference, dropped", meta.Type, meta.ID)
		return ErrSubscriberNotFound
	}

	err := s.repo.UpdateSubscriptionByCustomerID(ctx, customerID, s.update(meta, status))
	if errors.Is(err, ErrSubscriberNotFound) {
		log.Warnf("billing: %s %s for customer %s matched no subscriber, dropped", meta.Type, meta.ID, customerID)
	}
	return err
}

func (s *Service) update(meta eventMeta, status string) SubscriptionUpdate {
	upd := SubscriptionUpdate{Status: status, At: s.now().UTC()}
	if s.fence && !meta.Created.IsZero() {
		created := meta.Created
		upd.At = created
		upd.NotAfter = &created
	}
	return upd
}
