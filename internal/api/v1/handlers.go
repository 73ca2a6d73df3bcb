package apiv1

import (
	"github.com/gofiber/fiber/v2"

	// Delegate to the controllers so the web and API surfaces share behavior
	"github.com/licitaflash/licitaflash/app/controllers"
)

// APIServer implements the ServerInterface
type APIServer struct {
	tenders  *controllers.TenderController
	account  *controllers.AccountController
	billing  *controllers.BillingController
	waitlist *controllers.WaitlistController
	drafts   *controllers.DraftController
}

// NewAPIServer creates a new API server instance
func NewAPIServer(tenders *controllers.TenderController, account *controllers.AccountController, billing *controllers.BillingController, waitlist *controllers.WaitlistController, drafts *controllers.DraftController) *APIServer {
	return &APIServer{tenders: tenders, account: account, billing: billing, waitlist: waitlist, drafts: drafts}
}

// GetPing handles the ping endpoint
func (s *APIServer) GetPing(c *fiber.Ctx) error {
	response := Pong{
		Ping: "pong",
	}

	return c.Status(fiber.StatusOK).JSON(response)
}

// SearchLicitaciones lists open tenders.
func (s *APIServer) SearchLicitaciones(c *fiber.Ctx) error {
	return s.tenders.HandleSearch(c)
}

// GetLicitacion returns one tender. The controller reads id from the route params.
func (s *APIServer) GetLicitacion(c *fiber.Ctx, id string) error {
	return s.tenders.HandleGetTender(c)
}

// PostLicitacionSummary is metered against the caller's summary quota.
// Security is enforced via the auth middleware attached in the router.
func (s *APIServer) PostLicitacionSummary(c *fiber.Ctx, id string) error {
	return s.tenders.HandleSummary(c)
}

func (s *APIServer) PostLicitacionProposal(c *fiber.Ctx, id string) error {
	return s.tenders.HandleProposalDraft(c)
}

// GetMe returns account information for the authenticated subscriber.
func (s *APIServer) GetMe(c *fiber.Ctx) error {
	return s.account.HandleMe(c)
}

func (s *APIServer) PostBillingCheckout(c *fiber.Ctx) error {
	return s.billing.HandleCreateCheckout(c)
}

func (s *APIServer) PostWaitlist(c *fiber.Ctx) error {
	return s.waitlist.HandleJoin(c)
}

// ListDrafts returns the caller's proposal drafts.
func (s *APIServer) ListDrafts(c *fiber.Ctx) error {
	return s.drafts.HandleList(c)
}

func (s *APIServer) GetDraft(c *fiber.Ctx, id string) error {
	return s.drafts.HandleGet(c)
}

func (s *APIServer) PutDraft(c *fiber.Ctx, id string) error {
	return s.drafts.HandleUpdate(c)
}
