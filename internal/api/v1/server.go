package apiv1

import (
	"github.com/gofiber/fiber/v2"
)

// Pong is the body of GET /ping.
type Pong struct {
	Ping string `json:"ping"`
}

// ServerInterface lists the operations described in public/docs/v1/openapi.yml.
type ServerInterface interface {
	// (GET /ping)
	GetPing(c *fiber.Ctx) error
	// (GET /licitaciones/search)
	SearchLicitaciones(c *fiber.Ctx) error
	// (GET /licitaciones/{id})
	GetLicitacion(c *fiber.Ctx, id string) error
	// (POST /licitaciones/{id}/summary)
	PostLicitacionSummary(c *fiber.Ctx, id string) error
	// (POST /licitaciones/{id}/proposal)
	PostLicitacionProposal(c *fiber.Ctx, id string) error
	// (GET /me)
	GetMe(c *fiber.Ctx) error
	// (POST /billing/checkout)
	PostBillingCheckout(c *fiber.Ctx) error
	// (POST /waitlist)
	PostWaitlist(c *fiber.Ctx) error
	// (GET /drafts)
	ListDrafts(c *fiber.Ctx) error
	// (GET /drafts/{id})
	GetDraft(c *fiber.Ctx, id string) error
	// (PUT /drafts/{id})
	PutDraft(c *fiber.Ctx, id string) error
}

// ServerOptions attaches middleware to groups of operations.
type ServerOptions struct {
	// Secured runs before every operation that requires a bearer token.
	Secured []fiber.Handler
	// Waitlist runs before POST /waitlist.
	Waitlist []fiber.Handler
}

// ServerInterfaceWrapper converts fiber contexts to parameters.
type ServerInterfaceWrapper struct {
	Handler ServerInterface
}

func (w *ServerInterfaceWrapper) GetPing(c *fiber.Ctx) error {
	return w.Handler.GetPing(c)
}

func (w *ServerInterfaceWrapper) SearchLicitaciones(c *fiber.Ctx) error {
	return w.Handler.SearchLicitaciones(c)
}

func (w *ServerInterfaceWrapper) GetLicitacion(c *fiber.Ctx) error {
	return w.Handler.GetLicitacion(c, c.Params("id"))
}

func (w *ServerInterfaceWrapper) PostLicitacionSummary(c *fiber.Ctx) error {
	return w.Handler.PostLicitacionSummary(c, c.Params("id"))
}

func (w *ServerInterfaceWrapper) PostLicitacionProposal(c *fiber.Ctx) error {
	return w.Handler.PostLicitacionProposal(c, c.Params("id"))
}

func (w *ServerInterfaceWrapper) GetMe(c *fiber.Ctx) error {
	return w.Handler.GetMe(c)
}

func (w *ServerInterfaceWrapper) PostBillingCheckout(c *fiber.Ctx) error {
	return w.Handler.PostBillingCheckout(c)
}

func (w *ServerInterfaceWrapper) PostWaitlist(c *fiber.Ctx) error {
	return w.Handler.PostWaitlist(c)
}

func (w *ServerInterfaceWrapper) ListDrafts(c *fiber.Ctx) error {
	return w.Handler.ListDrafts(c)
}

func (w *ServerInterfaceWrapper) GetDraft(c *fiber.Ctx) error {
	return w.Handler.GetDraft(c, c.Params("id"))
}

func (w *ServerInterfaceWrapper) PutDraft(c *fiber.Ctx) error {
	return w.Handler.PutDraft(c, c.Params("id"))
}

// RegisterHandlers installs the routes of the OpenAPI document on router.
func RegisterHandlers(router fiber.Router, si ServerInterface) {
	RegisterHandlersWithOptions(router, si, ServerOptions{})
}

// RegisterHandlersWithOptions installs the routes with per-group middleware.
func RegisterHandlersWithOptions(router fiber.Router, si ServerInterface, options ServerOptions) {
	wrapper := ServerInterfaceWrapper{Handler: si}

	secured := func(h fiber.Handler) []fiber.Handler {
		return append(append([]fiber.Handler{}, options.Secured...), h)
	}

	router.Get("/ping", wrapper.GetPing)
	router.Get("/licitaciones/search", wrapper.SearchLicitaciones)
	router.Get("/licitaciones/:id", wrapper.GetLicitacion)
	router.Post("/licitaciones/:id/summary", secured(wrapper.PostLicitacionSummary)...)
	router.Post("/licitaciones/:id/proposal", secured(wrapper.PostLicitacionProposal)...)
	router.Get("/me", secured(wrapper.GetMe)...)
	router.Post("/billing/checkout", secured(wrapper.PostBillingCheckout)...)
	router.Get("/drafts", secured(wrapper.ListDrafts)...)
	router.Get("/drafts/:id", secured(wrapper.GetDraft)...)
	router.Put("/drafts/:id", secured(wrapper.PutDraft)...)
	router.Post("/waitlist", append(append([]fiber.Handler{}, options.Waitlist...), wrapper.PostWaitlist)...)
}
