package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/licitaflash/licitaflash/app/controllers"
)

type Router interface {
	InstallRouter(app *fiber.App)
}

// Dependencies are the wired controllers and middleware the routes dispatch to.
type Dependencies struct {
	Tenders  *controllers.TenderController
	Account  *controllers.AccountController
	Billing  *controllers.BillingController
	Waitlist *controllers.WaitlistController
	Drafts   *controllers.DraftController

	// RequireAuth guards subscriber-only operations.
	RequireAuth fiber.Handler
	// LimiterStorage backs the rate limiters; nil keeps counters in memory.
	LimiterStorage fiber.Storage
}

func InstallRouter(app *fiber.App, deps Dependencies) {
	// Webhooks and health checks go first so the /api limiters never see them.
	setup(app, NewHttpRouter(deps), NewApiRouter(deps))
}

func setup(app *fiber.App, router ...Router) {
	for _, r := range router {
		r.InstallRouter(app)
	}
}
