package billing

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	stripe "github.com/stripe/stripe-go/v82"
)

const (
	EventCheckoutCompleted    = "checkout.session.completed"
	EventSubscriptionDeleted  = "customer.subscription.deleted"
	EventInvoicePaymentFailed = "invoice.payment_failed"
)

// ErrInvalidPayload is returned when a verified event carries an object that
// cannot be decoded.
var ErrInvalidPayload = errors.New("billing: invalid event payload")

// Event is a verified payment provider notification. The set of
// implementations is closed: CheckoutCompleted, SubscriptionDeleted,
// InvoicePaymentFailed and Ignored.
type Event interface {
	EventID() string
	Kind() string
	CreatedAt() time.Time
	sealed()
}

type eventMeta struct {
	ID      string
	Type    string
	Created time.Time
}

func (m eventMeta) EventID() string      { return m.ID }
func (m eventMeta) Kind() string         { return m.Type }
func (m eventMeta) CreatedAt() time.Time { return m.Created }
func (eventMeta) sealed()                {}

// CheckoutCompleted is a finished checkout session.
type CheckoutCompleted struct {
	eventMeta
	Email       string
	CustomerID  string
	AmountTotal int64
}

// SubscriptionDeleted ends the subscription of a customer.
type SubscriptionDeleted struct {
	eventMeta
	CustomerID string
}

// InvoicePaymentFailed marks a failed renewal charge.
type InvoicePaymentFailed struct {
	eventMeta
	CustomerID string
}

// Ignored is any event kind the reconciler does not act on.
type Ignored struct {
	eventMeta
}

type checkoutSessionObject struct {
	Customer        string `json:"customer"`
	CustomerEmail   string `json:"customer_email"`
	AmountTotal     int64  `json:"amount_total"`
	CustomerDetails *struct {
		Email string `json:"email"`
	} `json:"customer_details"`
}

type customerObject struct {
	Customer string `json:"customer"`
}

// DecodeEvent turns a verified provider event into one of the closed event
// variants. Unknown kinds decode to Ignored without looking at the payload.
func DecodeEvent(ev stripe.Event) (Event, error) {
	meta := eventMeta{ID: ev.ID, Type: string(ev.Type)}
	if ev.Created > 0 {
		meta.Created = time.Unix(ev.Created, 0).UTC()
	}

	switch meta.Type {
	case EventCheckoutCompleted:
		var obj checkoutSessionObject
		if err := decodeObject(ev, &obj); err != nil {
			return nil, err
		}
		email := strings.TrimSpace(obj.CustomerEmail)
		if email == "" && obj.CustomerDetails != nil {
			email = strings.TrimSpace(obj.CustomerDetails.Email)
		}
		return CheckoutCompleted{
			eventMeta:   meta,
			Email:       email,
			CustomerID:  strings.TrimSpace(obj.Customer),
			AmountTotal: obj.AmountTotal,
		}, nil

	case EventSubscriptionDeleted:
		var obj customerObject
		if err := decodeObject(ev, &obj); err != nil {
			return nil, err
		}
		return SubscriptionDeleted{eventMeta: meta, CustomerID: strings.TrimSpace(obj.Customer)}, nil

	case EventInvoicePaymentFailed:
		var obj customerObject
		if err := decodeObject(ev, &obj); err != nil {
			return nil, err
		}
		return InvoicePaymentFailed{eventMeta: meta, CustomerID: strings.TrimSpace(obj.Customer)}, nil

	default:
		return Ignored{eventMeta: meta}, nil
	}
}

func decodeObject(ev stripe.Event, dst any) error {
	if ev.Data == nil || len(ev.Data.Raw) == 0 {
		return fmt.Errorf("%w: %s has no data object", ErrInvalidPayload, ev.Type)
	}
	if err := json.Unmarshal(ev.Data.Raw, dst); err != nil {
		return fmt.Errorf("%w: decode %s: %v", ErrInvalidPayload, ev.Type, err)
	}
	return nil
}
