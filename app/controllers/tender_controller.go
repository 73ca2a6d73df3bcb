package controllers

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/licitaflash/licitaflash/app/models"
	"github.com/licitaflash/licitaflash/app/repository"
	"github.com/licitaflash/licitaflash/internal/pkg/entitlements"
	"github.com/licitaflash/licitaflash/internal/pkg/metrics"
	"github.com/licitaflash/licitaflash/internal/pkg/usage"
	"github.com/licitaflash/licitaflash/internal/pkg/usercontext"
)

// UsageMeter counts metered feature use against a monthly quota.
type UsageMeter interface {
	Consume(ctx context.Context, subscriberID string, feature entitlements.Feature, quota entitlements.Quota) (int64, error)
	Remaining(ctx context.Context, subscriberID string, feature entitlements.Feature, quota entitlements.Quota) (int64, error)
	Release(ctx context.Context, subscriberID string, feature entitlements.Feature) error
}

type TenderController struct {
	tenders repository.TenderRepository
	drafts  repository.DraftRepository
	meter   UsageMeter
}

func NewTenderController(tenders repository.TenderRepository, drafts repository.DraftRepository, meter UsageMeter) *TenderController {
	return &TenderController{tenders: tenders, drafts: drafts, meter: meter}
}

// HandleSearch lists open tenders matching q (title or contracting body) and
// tipo (exact contract type), newest first.
func (tc *TenderController) HandleSearch(c *fiber.Ctx) error {
	start := time.Now()
	params := repository.TenderSearch{
		Query: c.Query("q"),
		Tipo:  c.Query("tipo"),
		Limit: c.QueryInt("limit", repository.DefaultSearchLimit),
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	tenders, err := tc.tenders.Search(ctx, params)
	metrics.SearchDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.SearchRequestsTotal.WithLabelValues("error").Inc()
		log.Errorf("tender search failed: %v", err)
		return jsonError(c, fiber.StatusInternalServerError, "search_failed")
	}

	metrics.SearchRequestsTotal.WithLabelValues("ok").Inc()
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"licitaciones": tenders})
}

// HandleGetTender returns a single tender by id.
func (tc *TenderController) HandleGetTender(c *fiber.Ctx) error {
	tender, status, code := tc.loadTender(c)
	if tender == nil {
		return jsonError(c, status, code)
	}
	return c.Status(fiber.StatusOK).JSON(tender)
}

// HandleSummary returns the stored AI summary of a tender and counts it
// against the caller's monthly summary quota.
func (tc *TenderController) HandleSummary(c *fiber.Ctx) error {
	tender, status, code := tc.loadTender(c)
	if tender == nil {
		return jsonError(c, status, code)
	}
	if tender.ResumenIA == nil || *tender.ResumenIA == "" {
		return jsonError(c, fiber.StatusNotFound, "summary_not_available")
	}

	res, err := tc.consume(c, entitlements.FeatureAISummary)
	if res == nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"licitacion_id": tender.ID,
		"resumen_ia":    *tender.ResumenIA,
		"used":          res.Used,
		"remaining":     res.Remaining,
	})
}

// HandleProposalDraft opens a new proposal draft for a tender and counts it
// against the caller's monthly draft quota.
func (tc *TenderController) HandleProposalDraft(c *fiber.Ctx) error {
	tender, status, code := tc.loadTender(c)
	if tender == nil {
		return jsonError(c, status, code)
	}
	if !tender.IsOpen() {
		return jsonError(c, fiber.StatusConflict, "tender_closed")
	}

	res, err := tc.consume(c, entitlements.FeatureProposalDraft)
	if res == nil {
		return err
	}

	userCtx := usercontext.GetUserContext(c)
	ctx, cancel := requestContext(c)
	defer cancel()

	draft := &models.Draft{
		UserID:       userCtx.SubscriberID,
		LicitacionID: tender.ID,
		Titulo:       models.DraftTitle(tender),
		Status:       models.DraftStatusDraft,
	}
	if err := tc.drafts.Create(ctx, draft); err != nil {
		log.Errorf("draft for tender %s failed: %v", tender.ID, err)
		if rerr := tc.meter.Release(ctx, userCtx.SubscriberID, entitlements.FeatureProposalDraft); rerr != nil {
			log.Errorf("usage release for %s failed: %v", userCtx.SubscriberID, rerr)
		}
		return jsonError(c, fiber.StatusInternalServerError, "draft_failed")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"draft_id":      draft.ID,
		"licitacion_id": tender.ID,
		"titulo":        draft.Titulo,
		"status":        draft.Status,
		"used":          res.Used,
		"remaining":     res.Remaining,
	})
}

func (tc *TenderController) loadTender(c *fiber.Ctx) (*models.Tender, int, string) {
	id := c.Params("id")
	if _, err := uuid.Parse(id); err != nil {
		return nil, fiber.StatusBadRequest, "invalid_id"
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	tender, err := tc.tenders.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fiber.StatusNotFound, "not_found"
		}
		log.Errorf("tender %s lookup failed: %v", id, err)
		return nil, fiber.StatusInternalServerError, "lookup_failed"
	}
	return tender, 0, ""
}

type usageResult struct {
	Used      int64
	Remaining int64
}

// consume charges one use of feature. A nil result means the refusal was
// already written to c.
func (tc *TenderController) consume(c *fiber.Ctx, feature entitlements.Feature) (*usageResult, error) {
	userCtx := usercontext.GetUserContext(c)
	ents := usercontext.GetEntitlements(c)
	quota := ents.Flags.QuotaFor(feature)

	ctx, cancel := requestContext(c)
	defer cancel()

	used, err := tc.meter.Consume(ctx, userCtx.SubscriberID, feature, quota)
	if err != nil {
		if errors.Is(err, usage.ErrQuotaExceeded) {
			metrics.QuotaRejectionsTotal.WithLabelValues(string(feature), string(ents.Tier)).Inc()
			return nil, c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error":   "quota_exceeded",
				"feature": feature,
				"tier":    ents.Tier,
				"limit":   quota,
			})
		}
		log.Errorf("usage metering for %s failed: %v", userCtx.SubscriberID, err)
		return nil, jsonError(c, fiber.StatusServiceUnavailable, "usage_unavailable")
	}

	res := &usageResult{Used: used, Remaining: -1}
	if !quota.IsUnlimited() {
		res.Remaining = int64(quota) - used
	}
	return res, nil
}
