package billing

import (
	"context"
	"fmt"
	"sync"
)

// MockProvider is an in-memory Provider for tests. Behavior is
// overridable per test via the function fields; the defaults succeed.
type MockProvider struct {
	mu sync.Mutex

	// CreateIntentFn overrides CreateIntent when set.
	CreateIntentFn func(ctx context.Context, params CreateIntentParams) (*Intent, error)

	// ConstructWebhookEventFn overrides ConstructWebhookEvent when set.
	ConstructWebhookEventFn func(payload []byte, signature, secret string) (*WebhookEvent, error)

	// CreatedIntents records every CreateIntent call.
	CreatedIntents []CreateIntentParams

	counter int
}

var _ Provider = (*MockProvider)(nil)

func NewMockProvider() *MockProvider {
	return &MockProvider{}
}

func (m *MockProvider) CreateIntent(ctx context.Context, params CreateIntentParams) (*Intent, error) {
	m.mu.Lock()
	m.CreatedIntents = append(m.CreatedIntents, params)
	m.counter++
	n := m.counter
	m.mu.Unlock()

	if m.CreateIntentFn != nil {
		return m.CreateIntentFn(ctx, params)
	}

	id := fmt.Sprintf("pi_mock_%d", n)
	return &Intent{
		ID:           id,
		ClientSecret: id + "_secret",
	}, nil
}

func (m *MockProvider) ConstructWebhookEvent(payload []byte, signature, secret string) (*WebhookEvent, error) {
	if m.ConstructWebhookEventFn != nil {
		return m.ConstructWebhookEventFn(payload, signature, secret)
	}
	if signature == "" {
		return nil, ErrInvalidSignature
	}
	return &WebhookEvent{ID: "evt_mock", Type: EventPaymentSucceeded}, nil
}
