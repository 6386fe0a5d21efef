package billing

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/paymentintent"
	"github.com/stripe/stripe-go/v82/webhook"
)

// StripeProvider implements Provider against the Stripe API.
type StripeProvider struct{}

var _ Provider = (*StripeProvider)(nil)

// NewStripeProvider configures the Stripe client with the account's
// secret key.
func NewStripeProvider(secretKey string) *StripeProvider {
	stripe.Key = secretKey
	return &StripeProvider{}
}

func (p *StripeProvider) CreateIntent(ctx context.Context, params CreateIntentParams) (*Intent, error) {
	piParams := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(params.Amount),
		Currency: stripe.String(params.Currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	piParams.Context = ctx
	for k, v := range params.Metadata {
		piParams.AddMetadata(k, v)
	}

	pi, err := paymentintent.New(piParams)
	if err != nil {
		return nil, fmt.Errorf("stripe: create payment intent: %w", err)
	}

	return &Intent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
	}, nil
}

func (p *StripeProvider) ConstructWebhookEvent(payload []byte, signature, secret string) (*WebhookEvent, error) {
	if !json.Valid(payload) {
		return nil, ErrMalformedPayload
	}
	if strings.TrimSpace(signature) == "" {
		return nil, fmt.Errorf("%w: missing signature header", ErrInvalidSignature)
	}

	event, err := webhook.ConstructEvent(payload, signature, secret)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	out := &WebhookEvent{
		ID:   event.ID,
		Type: string(event.Type),
	}

	if strings.HasPrefix(string(event.Type), "payment_intent.") {
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
		}
		out.Intent = &IntentData{
			ID:       pi.ID,
			Metadata: pi.Metadata,
		}
	}

	return out, nil
}
