package usercontext

import (
	"github.com/gofiber/fiber/v2"

	"github.com/licitaflash/licitaflash/app/models"
	"github.com/licitaflash/licitaflash/internal/pkg/entitlements"
)

// UserContext represents the authenticated caller of a request
type UserContext struct {
	SubscriberID string            `json:"subscriber_id"`
	Email        string            `json:"email"`
	IsLoggedIn   bool              `json:"is_logged_in"`
	Tier         entitlements.Tier `json:"tier"`
}

// GetUserContext retrieves the user context from fiber context
// Returns a default anonymous context if none is set
func GetUserContext(c *fiber.Ctx) UserContext {
	if ctx, ok := c.Locals(KeyUserContext).(UserContext); ok {
		return ctx
	}
	return UserContext{IsLoggedIn: false, Tier: entitlements.TierFree}
}

// Set stores the caller and the subscriber row loaded for it.
func Set(c *fiber.Ctx, userCtx UserContext, sub *models.Subscriber) {
	c.Locals(KeyUserContext, userCtx)
	c.Locals(KeySubscriber, sub)
}

// GetSubscriber returns the stored subscriber row, nil when the caller has none yet.
func GetSubscriber(c *fiber.Ctx) *models.Subscriber {
	sub, _ := c.Locals(KeySubscriber).(*models.Subscriber)
	return sub
}

// GetEntitlements resolves the caller's tier and feature flags.
func GetEntitlements(c *fiber.Ctx) entitlements.Entitlements {
	return entitlements.ForSubscriber(GetSubscriber(c))
}
