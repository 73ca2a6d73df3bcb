package middleware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/licitaflash/licitaflash/app/repository"
	"github.com/licitaflash/licitaflash/internal/pkg/entitlements"
	"github.com/licitaflash/licitaflash/internal/pkg/usercontext"
)

// RequireAuth verifies the caller's access token and loads the subscriber
// row. A valid token without a row yet is treated as a free account.
func RequireAuth(verifier *TokenVerifier, subscribers repository.SubscriberRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := extractAccessToken(c)
		if token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Missing access token"})
		}

		claims, err := verifier.Verify(token)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Invalid access token"})
		}

		sub, err := subscribers.GetByID(c.UserContext(), claims.Subject)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Errorf("subscriber lookup for %s failed: %v", claims.Subject, err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Account lookup failed"})
		}

		email := claims.Email
		if sub != nil && sub.Email != "" {
			email = sub.Email
		}
		usercontext.Set(c, usercontext.UserContext{
			SubscriberID: claims.Subject,
			Email:        email,
			IsLoggedIn:   true,
			Tier:         entitlements.ForSubscriber(sub).Tier,
		}, sub)

		return c.Next()
	}
}

func extractAccessToken(c *fiber.Ctx) string {
	auth := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
	if strings.HasPrefix(strings.ToLower(auth), "bearer ") {
		return strings.TrimSpace(auth[7:])
	}
	return strings.TrimSpace(c.Cookies(AccessTokenCookie))
}
