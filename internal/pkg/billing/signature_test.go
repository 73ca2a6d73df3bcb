package billing

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	stripewebhook "github.com/stripe/stripe-go/v82/webhook"
)

const testWebhookSecret = "whsec_test_secret"

func signPayload(t *testing.T, payload, secret string, ts time.Time) *stripewebhook.SignedPayload {
	t.Helper()
	return stripewebhook.GenerateTestSignedPayload(&stripewebhook.UnsignedPayload{
		Payload:   []byte(payload),
		Secret:    secret,
		Timestamp: ts,
		Scheme:    "v1",
	})
}

const testEventJSON = `{"id":"evt_sig","object":"event","type":"invoice.payment_failed","created":1700000000,"data":{"object":{"object":"invoice","customer":"cus_sig"}}}`

func TestVerifierAcceptsValidSignature(t *testing.T) {
	signed := signPayload(t, testEventJSON, testWebhookSecret, time.Now())

	ev, err := NewVerifier(testWebhookSecret).Verify(signed.Payload, signed.Header)
	require.NoError(t, err)
	assert.Equal(t, "evt_sig", ev.ID)
	assert.Equal(t, EventInvoicePaymentFailed, string(ev.Type))
}

func TestVerifierRejectsMutatedPayload(t *testing.T) {
	signed := signPayload(t, testEventJSON, testWebhookSecret, time.Now())

	for i := range signed.Payload {
		mutated := append([]byte(nil), signed.Payload...)
		mutated[i] ^= 0x01
		_, err := NewVerifier(testWebhookSecret).Verify(mutated, signed.Header)
		if !errors.Is(err, ErrInvalidSignature) {
			t.Fatalf("byte %d mutated: expected ErrInvalidSignature, got %v", i, err)
		}
	}
}

func TestVerifierRejectsWrongSecretAndMissingHeader(t *testing.T) {
	signed := signPayload(t, testEventJSON, "whsec_other", time.Now())

	_, err := NewVerifier(testWebhookSecret).Verify(signed.Payload, signed.Header)
	assert.True(t, errors.Is(err, ErrInvalidSignature))

	_, err = NewVerifier(testWebhookSecret).Verify(signed.Payload, "")
	assert.True(t, errors.Is(err, ErrInvalidSignature))

	_, err = NewVerifier("").Verify(signed.Payload, signed.Header)
	assert.True(t, errors.Is(err, ErrInvalidSignature))
}

func TestVerifierRejectsExpiredTimestamp(t *testing.T) {
	signed := signPayload(t, testEventJSON, testWebhookSecret, time.Now().Add(-time.Hour))

	_, err := NewVerifier(testWebhookSecret).Verify(signed.Payload, signed.Header)
	assert.True(t, errors.Is(err, ErrInvalidSignature))
}
