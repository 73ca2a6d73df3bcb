package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/licitaflash/licitaflash/app/models"
	"github.com/licitaflash/licitaflash/app/repository"
	"github.com/licitaflash/licitaflash/internal/pkg/usercontext"
)

// DraftController serves the caller's own proposal drafts. Drafts of other
// users answer 404.
type DraftController struct {
	drafts repository.DraftRepository
}

func NewDraftController(drafts repository.DraftRepository) *DraftController {
	return &DraftController{drafts: drafts}
}

type draftUpdateRequest struct {
	Contenido *models.DraftContent `json:"contenido" validate:"required"`
}

// HandleList returns the caller's drafts, last edited first.
func (dc *DraftController) HandleList(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	ctx, cancel := requestContext(c)
	defer cancel()

	drafts, err := dc.drafts.ListByUser(ctx, userCtx.SubscriberID)
	if err != nil {
		log.Errorf("draft list for %s failed: %v", userCtx.SubscriberID, err)
		return jsonError(c, fiber.StatusInternalServerError, "lookup_failed")
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"borradores": drafts})
}

func (dc *DraftController) HandleGet(c *fiber.Ctx) error {
	id := c.Params("id")
	if _, err := uuid.Parse(id); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_id")
	}

	userCtx := usercontext.GetUserContext(c)
	ctx, cancel := requestContext(c)
	defer cancel()

	draft, err := dc.drafts.GetForUser(ctx, id, userCtx.SubscriberID)
	if err != nil {
		return dc.lookupError(c, id, err)
	}
	return c.Status(fiber.StatusOK).JSON(draft)
}

// HandleUpdate replaces the content sections of a draft.
func (dc *DraftController) HandleUpdate(c *fiber.Ctx) error {
	id := c.Params("id")
	if _, err := uuid.Parse(id); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_id")
	}

	var req draftUpdateRequest
	if err := bindJSON(c, &req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_request", "fields": validationFields(err)})
	}

	userCtx := usercontext.GetUserContext(c)
	ctx, cancel := requestContext(c)
	defer cancel()

	draft, err := dc.drafts.UpdateContent(ctx, id, userCtx.SubscriberID, *req.Contenido)
	if err != nil {
		return dc.lookupError(c, id, err)
	}
	return c.Status(fiber.StatusOK).JSON(draft)
}

func (dc *DraftController) lookupError(c *fiber.Ctx, id string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return jsonError(c, fiber.StatusNotFound, "not_found")
	}
	log.Errorf("draft %s failed: %v", id, err)
	return jsonError(c, fiber.StatusInternalServerError, "lookup_failed")
}
