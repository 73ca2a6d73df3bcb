package controllers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/licitaflash/licitaflash/app/models"
	"github.com/licitaflash/licitaflash/app/repository"
)

type WaitlistController struct {
	waitlist repository.WaitlistRepository
}

func NewWaitlistController(waitlist repository.WaitlistRepository) *WaitlistController {
	return &WaitlistController{waitlist: waitlist}
}

const maxReferrerLength = 500

type waitlistRequest struct {
	Email       string `json:"email"`
	Source      string `json:"source"`
	UTMSource   string `json:"utm_source"`
	UTMMedium   string `json:"utm_medium"`
	UTMCampaign string `json:"utm_campaign"`
	Referrer    string `json:"referrer"`
}

// HandleJoin adds an email to the pre-launch waitlist. Joining twice is not
// an error.
func (wc *WaitlistController) HandleJoin(c *fiber.Ctx) error {
	var req waitlistRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_request")
	}

	referrer := req.Referrer
	if referrer == "" {
		referrer = c.Get(fiber.HeaderReferer)
		if len(referrer) > maxReferrerLength {
			referrer = referrer[:maxReferrerLength]
		}
	}
	entry := &models.WaitlistEntry{
		Email:  strings.TrimSpace(req.Email),
		Source: strings.TrimSpace(req.Source),
		Metadata: models.WaitlistMetadata{
			UTMSource:   req.UTMSource,
			UTMMedium:   req.UTMMedium,
			UTMCampaign: req.UTMCampaign,
			Referrer:    referrer,
		},
	}

	if err := entry.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_request", "fields": validationFields(err)})
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if err := wc.waitlist.Create(ctx, entry); err != nil {
		if errors.Is(err, repository.ErrAlreadyRegistered) {
			return c.Status(fiber.StatusOK).JSON(fiber.Map{"registered": true, "already_registered": true})
		}
		log.Errorf("waitlist signup failed: %v", err)
		return jsonError(c, fiber.StatusInternalServerError, "signup_failed")
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"registered": true})
}
