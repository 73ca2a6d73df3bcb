package router

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	apiv1 "github.com/licitaflash/licitaflash/internal/api/v1"
	"github.com/licitaflash/licitaflash/internal/pkg/ratelimit"
)

const (
	apiRequestsPerMinute      = 120
	waitlistRequestsPerMinute = 5
)

type ApiRouter struct {
	deps Dependencies
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	api := app.Group("/api", cors.New(), ratelimit.New(h.deps.LimiterStorage, "api", apiRequestsPerMinute, time.Minute))
	api.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
			"message": "Hello from api",
		})
	})

	// API v1 routes
	v1 := api.Group("/v1")
	apiServer := apiv1.NewAPIServer(h.deps.Tenders, h.deps.Account, h.deps.Billing, h.deps.Waitlist, h.deps.Drafts)
	apiv1.RegisterHandlersWithOptions(v1, apiServer, apiv1.ServerOptions{
		Secured:  []fiber.Handler{h.deps.RequireAuth},
		Waitlist: []fiber.Handler{ratelimit.New(h.deps.LimiterStorage, "waitlist", waitlistRequestsPerMinute, time.Minute)},
	})
}

func NewApiRouter(deps Dependencies) *ApiRouter {
	return &ApiRouter{deps: deps}
}
