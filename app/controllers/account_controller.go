package controllers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/licitaflash/licitaflash/internal/pkg/entitlements"
	"github.com/licitaflash/licitaflash/internal/pkg/usercontext"
)

type AccountController struct {
	meter UsageMeter
}

func NewAccountController(meter UsageMeter) *AccountController {
	return &AccountController{meter: meter}
}

type featureUsage struct {
	Limit     entitlements.Quota `json:"limit"`
	Remaining *int64             `json:"remaining"`
}

// HandleMe returns the caller's subscription, tier, feature flags and what
// is left of this month's metered quotas.
func (ac *AccountController) HandleMe(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	sub := usercontext.GetSubscriber(c)
	ents := usercontext.GetEntitlements(c)

	ctx, cancel := requestContext(c)
	defer cancel()

	usageByFeature := fiber.Map{}
	for _, feature := range []entitlements.Feature{entitlements.FeatureAISummary, entitlements.FeatureProposalDraft} {
		quota := ents.Flags.QuotaFor(feature)
		fu := featureUsage{Limit: quota}
		left, err := ac.meter.Remaining(ctx, userCtx.SubscriberID, feature, quota)
		if err != nil {
			log.Warnf("usage lookup for %s failed: %v", userCtx.SubscriberID, err)
		} else {
			fu.Remaining = &left
		}
		usageByFeature[string(feature)] = fu
	}

	resp := fiber.Map{
		"id":                  userCtx.SubscriberID,
		"email":               userCtx.Email,
		"subscription_status": nil,
		"subscription_plan":   nil,
		"tier":                ents.Tier,
		"flags":               ents.Flags,
		"usage":               usageByFeature,
	}
	if sub != nil {
		resp["name"] = sub.DisplayName()
		resp["subscription_status"] = sub.SubscriptionStatus
		resp["subscription_plan"] = sub.SubscriptionPlan
	}
	return c.Status(fiber.StatusOK).JSON(resp)
}
