package controllers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/licitaflash/licitaflash/app/models"
	"github.com/licitaflash/licitaflash/app/repository"
	"github.com/licitaflash/licitaflash/internal/pkg/billing"
	"github.com/licitaflash/licitaflash/internal/pkg/entitlements"
	"github.com/licitaflash/licitaflash/internal/pkg/usage"
	"github.com/licitaflash/licitaflash/internal/pkg/usercontext"
)

type subscriberStore struct {
	mu   sync.Mutex
	subs []*models.Subscriber
	err  error
}

func (s *subscriberStore) UpdateSubscriptionByEmail(ctx context.Context, email string, upd billing.SubscriptionUpdate) error {
	return s.update(func(sub *models.Subscriber) bool { return strings.EqualFold(sub.Email, email) }, upd)
}

func (s *subscriberStore) UpdateSubscriptionByCustomerID(ctx context.Context, customerID string, upd billing.SubscriptionUpdate) error {
	return s.update(func(sub *models.Subscriber) bool { return sub.CustomerID() == customerID }, upd)
}

func (s *subscriberStore) update(match func(*models.Subscriber) bool, upd billing.SubscriptionUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	found := false
	for _, sub := range s.subs {
		if !match(sub) {
			continue
		}
		found = true
		sub.SubscriptionStatus = upd.Status
		at := upd.At
		sub.SubscriptionUpdatedAt = &at
		if upd.Plan != nil {
			plan := *upd.Plan
			sub.SubscriptionPlan = &plan
		}
		if upd.CustomerID != nil {
			customerID := *upd.CustomerID
			sub.StripeCustomerID = &customerID
		}
	}
	if !found {
		return billing.ErrSubscriberNotFound
	}
	return nil
}

// tenderStore applies the same rules as the SQL search: open listings only,
// q matched case-insensitively against title or contracting body, tipo matched
// exactly, newest publication first.
type tenderStore struct {
	tenders     []models.Tender
	err         error
	lastSearch  repository.TenderSearch
	sawDeadline bool
}

func (s *tenderStore) Search(ctx context.Context, params repository.TenderSearch) ([]models.Tender, error) {
	s.lastSearch = params
	_, s.sawDeadline = ctx.Deadline()
	if s.err != nil {
		return nil, s.err
	}
	q := strings.ToLower(strings.TrimSpace(params.Query))
	tipo := strings.TrimSpace(params.Tipo)

	out := make([]models.Tender, 0)
	for _, t := range s.tenders {
		if !t.IsOpen() {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(t.Titulo), q) && !strings.Contains(strings.ToLower(t.OrganoContratacion), q) {
			continue
		}
		if tipo != "" && t.TipoContrato != tipo {
			continue
		}
		out = append(out, t)
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].FechaPublicacion, out[j].FechaPublicacion
		if a == nil || b == nil {
			return b == nil && a != nil
		}
		return a.After(*b)
	})
	if len(out) > params.EffectiveLimit() {
		out = out[:params.EffectiveLimit()]
	}
	return out, nil
}

func (s *tenderStore) GetByID(ctx context.Context, id string) (*models.Tender, error) {
	if s.err != nil {
		return nil, s.err
	}
	for i := range s.tenders {
		if s.tenders[i].ID == id {
			return &s.tenders[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

type draftStore struct {
	mu        sync.Mutex
	drafts    []*models.Draft
	err       error
	createErr error
	clock     time.Time
}

func (s *draftStore) tick() time.Time {
	if s.clock.IsZero() {
		s.clock = time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)
	}
	s.clock = s.clock.Add(time.Minute)
	return s.clock
}

func (s *draftStore) Create(ctx context.Context, draft *models.Draft) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return s.createErr
	}
	if draft.ID == "" {
		draft.ID = uuid.NewString()
	}
	draft.CreatedAt = s.tick()
	draft.UpdatedAt = draft.CreatedAt
	stored := *draft
	s.drafts = append(s.drafts, &stored)
	return nil
}

func (s *draftStore) find(id, userID string) *models.Draft {
	for _, d := range s.drafts {
		if d.ID == id && d.OwnedBy(userID) {
			return d
		}
	}
	return nil
}

func (s *draftStore) GetForUser(ctx context.Context, id, userID string) (*models.Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	d := s.find(id, userID)
	if d == nil {
		return nil, gorm.ErrRecordNotFound
	}
	out := *d
	return &out, nil
}

func (s *draftStore) ListByUser(ctx context.Context, userID string) ([]models.Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	out := make([]models.Draft, 0)
	for _, d := range s.drafts {
		if d.OwnedBy(userID) {
			out = append(out, *d)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (s *draftStore) UpdateContent(ctx context.Context, id, userID string, content models.DraftContent) (*models.Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	d := s.find(id, userID)
	if d == nil {
		return nil, gorm.ErrRecordNotFound
	}
	d.Contenido = content
	d.UpdatedAt = s.tick()
	out := *d
	return &out, nil
}

type memoryMeter struct {
	mu     sync.Mutex
	counts map[string]int64
	err    error
}

func newMemoryMeter() *memoryMeter {
	return &memoryMeter{counts: map[string]int64{}}
}

func (m *memoryMeter) Consume(ctx context.Context, subscriberID string, feature entitlements.Feature, quota entitlements.Quota) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return 0, m.err
	}
	if !quota.Allowed() {
		return 0, usage.ErrQuotaExceeded
	}
	key := subscriberID + ":" + string(feature)
	if !quota.IsUnlimited() && m.counts[key] >= int64(quota) {
		return m.counts[key], usage.ErrQuotaExceeded
	}
	m.counts[key]++
	return m.counts[key], nil
}

func (m *memoryMeter) Remaining(ctx context.Context, subscriberID string, feature entitlements.Feature, quota entitlements.Quota) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return 0, m.err
	}
	if quota.IsUnlimited() {
		return -1, nil
	}
	return int64(quota) - m.counts[subscriberID+":"+string(feature)], nil
}

func (m *memoryMeter) Release(ctx context.Context, subscriberID string, feature entitlements.Feature) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := subscriberID + ":" + string(feature)
	if m.counts[key] > 0 {
		m.counts[key]--
	}
	return nil
}

type waitlistStore struct {
	entries []*models.WaitlistEntry
	err     error
}

func (s *waitlistStore) Create(ctx context.Context, entry *models.WaitlistEntry) error {
	if s.err != nil {
		return s.err
	}
	for _, e := range s.entries {
		if strings.EqualFold(e.Email, entry.Email) {
			return repository.ErrAlreadyRegistered
		}
	}
	s.entries = append(s.entries, entry)
	return nil
}

type stubCheckout struct {
	email, plan string
	url         string
	err         error
}

func (s *stubCheckout) Create(ctx context.Context, email, plan string) (string, error) {
	s.email, s.plan = email, plan
	return s.url, s.err
}

// asSubscriber installs a fake authenticated caller.
func asSubscriber(sub *models.Subscriber) fiber.Handler {
	return func(c *fiber.Ctx) error {
		usercontext.Set(c, usercontext.UserContext{
			SubscriberID: sub.ID,
			Email:        sub.Email,
			IsLoggedIn:   true,
			Tier:         entitlements.ForSubscriber(sub).Tier,
		}, sub)
		return c.Next()
	}
}

func subscriber(id, status, plan string) *models.Subscriber {
	s := &models.Subscriber{ID: id, Email: id + "@example.com", SubscriptionStatus: status}
	if plan != "" {
		s.SubscriptionPlan = &plan
	}
	return s
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out), "body: %s", raw)
	return out
}
