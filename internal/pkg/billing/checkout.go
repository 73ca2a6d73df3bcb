package billing

import (
	"context"
	"errors"
	"fmt"
	"strings"

	stripe "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"
)

var ErrUnknownPlan = errors.New("billing: no price configured for plan")

// CheckoutConfig holds what is needed to open hosted checkout sessions.
type CheckoutConfig struct {
	SecretKey string
	SiteURL   string
	// PriceIDs maps a plan name to the provider price id.
	PriceIDs map[string]string
}

// CheckoutCreator opens hosted checkout sessions for subscription plans. Each
// creator carries its own API client; the package-level stripe.Key is unused.
type CheckoutCreator struct {
	cfg                   CheckoutConfig
	api                   *client.API
	createCheckoutSession func(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
}

func NewCheckoutCreator(cfg CheckoutConfig) *CheckoutCreator {
	sc := &client.API{}
	sc.Init(strings.TrimSpace(cfg.SecretKey), nil)
	return &CheckoutCreator{cfg: cfg, api: sc, createCheckoutSession: sc.CheckoutSessions.New}
}

// Create returns the hosted checkout URL for the given plan. The session is
// opened with the subscriber's email so the completion event can be matched
// back to the stored row.
func (c *CheckoutCreator) Create(ctx context.Context, email, plan string) (string, error) {
	priceID := strings.TrimSpace(c.cfg.PriceIDs[plan])
	if priceID == "" {
		return "", fmt.Errorf("%w: %q", ErrUnknownPlan, plan)
	}

	site := strings.TrimRight(c.cfg.SiteURL, "/")
	params := &stripe.CheckoutSessionParams{
		Mode:          stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		SuccessURL:    stripe.String(site + "/dashboard?checkout=success"),
		CancelURL:     stripe.String(site + "/pricing?checkout=cancelled"),
		CustomerEmail: stripe.String(email),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(priceID),
				Quantity: stripe.Int64(1),
			},
		},
	}
	params.Context = ctx
	params.AddMetadata("plan", plan)

	sess, err := c.createCheckoutSession(params)
	if err != nil {
		return "", fmt.Errorf("create checkout session: %w", err)
	}
	if sess == nil || strings.TrimSpace(sess.URL) == "" {
		return "", errors.New("stripe returned empty checkout URL")
	}
	return strings.TrimSpace(sess.URL), nil
}
