package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/licitaflash/licitaflash/app/models"
	"github.com/licitaflash/licitaflash/internal/pkg/entitlements"
	"github.com/licitaflash/licitaflash/internal/pkg/usercontext"
)

const testSecret = "test-jwt-secret"

type stubSubscribers struct {
	byID map[string]*models.Subscriber
	err  error
}

func (s stubSubscribers) GetByID(_ context.Context, id string) (*models.Subscriber, error) {
	if s.err != nil {
		return nil, s.err
	}
	if sub, ok := s.byID[id]; ok {
		return sub, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s stubSubscribers) GetByEmail(context.Context, string) (*models.Subscriber, error) {
	return nil, gorm.ErrRecordNotFound
}

func (s stubSubscribers) GetByCustomerID(context.Context, string) (*models.Subscriber, error) {
	return nil, gorm.ErrRecordNotFound
}

func signToken(t *testing.T, secret string, claims Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func validClaims(sub string) Claims {
	return Claims{
		Email: sub + "@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
}

func newAuthApp(subs stubSubscribers) *fiber.App {
	app := fiber.New()
	app.Get("/me", RequireAuth(NewTokenVerifier(testSecret), subs), func(c *fiber.Ctx) error {
		return c.JSON(usercontext.GetUserContext(c))
	})
	return app
}

func TestTokenVerifier(t *testing.T) {
	v := NewTokenVerifier(testSecret)

	claims, err := v.Verify(signToken(t, testSecret, validClaims("u1")))
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.Subject)
	assert.Equal(t, "u1@example.com", claims.Email)

	_, err = v.Verify(signToken(t, "other-secret", validClaims("u1")))
	assert.True(t, errors.Is(err, ErrInvalidToken))

	expired := validClaims("u1")
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
	_, err = v.Verify(signToken(t, testSecret, expired))
	assert.True(t, errors.Is(err, ErrInvalidToken))

	noExpiry := validClaims("u1")
	noExpiry.ExpiresAt = nil
	_, err = v.Verify(signToken(t, testSecret, noExpiry))
	assert.True(t, errors.Is(err, ErrInvalidToken))

	_, err = v.Verify(signToken(t, testSecret, validClaims("")))
	assert.True(t, errors.Is(err, ErrInvalidToken))

	_, err = NewTokenVerifier("").Verify("anything")
	assert.True(t, errors.Is(err, ErrInvalidToken))
}

func TestRequireAuthRejectsMissingAndInvalidTokens(t *testing.T) {
	app := newAuthApp(stubSubscribers{})

	resp, err := app.Test(httptest.NewRequest("GET", "/me", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	req := httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestRequireAuthSetsUserContext(t *testing.T) {
	plan := models.SubscriptionPlanUltra
	app := newAuthApp(stubSubscribers{byID: map[string]*models.Subscriber{
		"u1": {ID: "u1", Email: "stored@example.com", SubscriptionStatus: models.SubscriptionStatusActive, SubscriptionPlan: &plan},
	}})

	req := httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, validClaims("u1")))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var got usercontext.UserContext
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, "u1", got.SubscriberID)
	assert.Equal(t, "stored@example.com", got.Email)
	assert.True(t, got.IsLoggedIn)
	assert.Equal(t, entitlements.TierUltra, got.Tier)
}

func TestRequireAuthAcceptsCookieAndMissingRow(t *testing.T) {
	app := newAuthApp(stubSubscribers{byID: map[string]*models.Subscriber{}})

	req := httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Cookie", AccessTokenCookie+"="+signToken(t, testSecret, validClaims("u2")))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var got usercontext.UserContext
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, "u2@example.com", got.Email)
	assert.Equal(t, entitlements.TierFree, got.Tier)
}

func TestRequireAuthStoreFailure(t *testing.T) {
	app := newAuthApp(stubSubscribers{err: errors.New("connection reset")})

	req := httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, validClaims("u1")))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
}
