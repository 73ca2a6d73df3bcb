package controllers

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/licitaflash/licitaflash/internal/pkg/billing"
	"github.com/licitaflash/licitaflash/internal/pkg/metrics"
	"github.com/licitaflash/licitaflash/internal/pkg/usercontext"
)

// CheckoutCreator opens a hosted checkout for a plan and returns its URL.
type CheckoutCreator interface {
	Create(ctx context.Context, email, plan string) (string, error)
}

type BillingController struct {
	verifier *billing.Verifier
	service  *billing.Service
	checkout CheckoutCreator
}

func NewBillingController(verifier *billing.Verifier, service *billing.Service, checkout CheckoutCreator) *BillingController {
	return &BillingController{verifier: verifier, service: service, checkout: checkout}
}

// HandleStripeWebhook verifies a payment provider delivery and reconciles it.
// 400 tells the provider not to retry; 500 asks for a retry.
func (bc *BillingController) HandleStripeWebhook(c *fiber.Ctx) error {
	start := time.Now()
	eventType := "unknown"
	status := fiber.StatusOK
	defer func() {
		metrics.WebhookRequestsTotal.WithLabelValues(eventType, strconv.Itoa(status)).Inc()
		metrics.WebhookDuration.WithLabelValues(eventType).Observe(time.Since(start).Seconds())
	}()

	rawBody := append([]byte(nil), c.BodyRaw()...)
	stripeEvent, err := bc.verifier.Verify(rawBody, c.Get(billing.SignatureHeader))
	if err != nil {
		log.Warnf("stripe webhook rejected: %v", err)
		status = fiber.StatusBadRequest
		return jsonError(c, status, "invalid_signature")
	}
	eventType = string(stripeEvent.Type)

	event, err := billing.DecodeEvent(stripeEvent)
	if err != nil {
		log.Warnf("stripe webhook %s (%s) undecodable: %v", stripeEvent.ID, eventType, err)
		status = fiber.StatusBadRequest
		return jsonError(c, status, "invalid_payload")
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	outcome, err := bc.service.Apply(ctx, event)
	if err != nil {
		log.Errorf("stripe webhook %s (%s) processing failed: %v", stripeEvent.ID, eventType, err)
		status = fiber.StatusInternalServerError
		return jsonError(c, status, "processing_failed")
	}

	resp := fiber.Map{"received": true}
	switch outcome {
	case billing.OutcomeIgnored:
		resp["ignored"] = true
	case billing.OutcomeDuplicate:
		resp["duplicate"] = true
	case billing.OutcomeUnmatched:
		resp["unmatched"] = true
	case billing.OutcomeStale:
		resp["stale"] = true
	}
	return c.Status(status).JSON(resp)
}

type checkoutRequest struct {
	Plan string `json:"plan" validate:"required,oneof=pro ultra"`
}

// HandleCreateCheckout opens a hosted checkout for the logged-in subscriber.
func (bc *BillingController) HandleCreateCheckout(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn || userCtx.Email == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "login required"})
	}

	var req checkoutRequest
	if err := bindJSON(c, &req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_request", "fields": validationFields(err)})
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	url, err := bc.checkout.Create(ctx, userCtx.Email, req.Plan)
	if err != nil {
		if errors.Is(err, billing.ErrUnknownPlan) {
			return jsonError(c, fiber.StatusUnprocessableEntity, "plan_unavailable")
		}
		log.Errorf("checkout creation for %s failed: %v", userCtx.SubscriberID, err)
		return jsonError(c, fiber.StatusBadGateway, "checkout_failed")
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"checkout_url": url})
}
