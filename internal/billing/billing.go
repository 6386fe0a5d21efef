// Package billing abstracts the card payment provider. The storefront
// talks to this interface; the Stripe implementation lives alongside a
// mock for tests.
package billing

import (
	"context"
)

// Metadata keys attached to every payment intent so webhook events can
// be tied back to an order.
const (
	MetaOrderID     = "order_id"
	MetaUserID      = "user_id"
	MetaPaymentType = "payment_type"
)

// EventPaymentSucceeded is the provider event type that settles an
// order's online amount.
const EventPaymentSucceeded = "payment_intent.succeeded"

// CreateIntentParams describes the charge to register with the
// provider. Amount is in minor units (pence).
type CreateIntentParams struct {
	Amount   int64
	Currency string
	Metadata map[string]string
}

// Intent is the provider's handle for an in-flight payment. The
// client secret goes to the browser to complete the charge.
type Intent struct {
	ID           string
	ClientSecret string
}

// WebhookEvent is a verified provider webhook delivery.
type WebhookEvent struct {
	ID   string
	Type string

	// Intent carries the payment intent payload for payment events,
	// nil otherwise.
	Intent *IntentData
}

// IntentData is the slice of the provider's payment intent object the
// storefront consumes.
type IntentData struct {
	ID       string
	Metadata map[string]string
}

// Provider is the payment processor integration.
type Provider interface {
	// CreateIntent registers a payment intent and returns its handle.
	CreateIntent(ctx context.Context, params CreateIntentParams) (*Intent, error)

	// ConstructWebhookEvent verifies a raw webhook delivery against
	// the signing secret and decodes it. Returns ErrInvalidSignature
	// or ErrMalformedPayload on bad deliveries.
	ConstructWebhookEvent(payload []byte, signature, secret string) (*WebhookEvent, error)
}
