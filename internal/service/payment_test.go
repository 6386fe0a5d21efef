package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dehaan/tannery/internal/billing"
	"github.com/dehaan/tannery/internal/domain"
)

type paymentFixture struct {
	svc      *PaymentService
	repo     *fakeOrderRepo
	provider *billing.MockProvider
	deduper  *memoryDeduper
	notifier *fakeNotifier
}

func newPaymentFixture() *paymentFixture {
	repo := newFakeOrderRepo()
	provider := billing.NewMockProvider()
	deduper := newMemoryDeduper()
	notifier := &fakeNotifier{}
	svc := NewPaymentService(PaymentServiceConfig{
		Repo:          repo,
		Provider:      provider,
		Deduper:       deduper,
		Notifier:      notifier,
		Currency:      "gbp",
		WebhookSecret: "whsec_test",
		Logger:        testLogger(),
	})
	return &paymentFixture{
		svc:      svc,
		repo:     repo,
		provider: provider,
		deduper:  deduper,
		notifier: notifier,
	}
}

func (f *paymentFixture) seedOrder(t *testing.T, method domain.PaymentMethod) *domain.Order {
	t.Helper()
	order := &domain.Order{
		ID:               uuid.New(),
		UserID:           uuid.New(),
		FullName:         "Ada Lovelace",
		Email:            "ada@example.com",
		PaymentMethod:    method,
		Status:           domain.OrderStatusPending,
		Subtotal:         dec("100.00"),
		ShippingCost:     dec("9.99"),
		VAT:              dec("22.00"),
		TotalAmount:      dec("131.99"),
		AmountPaidOnline: dec("131.99"),
		RemainingAmount:  dec("0.00"),
	}
	if method == domain.PaymentPartial {
		order.AmountPaidOnline = dec("66.00")
		order.RemainingAmount = dec("65.99")
	}
	require.NoError(t, f.repo.CreateOrder(context.Background(), order, nil))
	return order
}

// succeededEvent wires the mock provider to return a verified
// payment_intent.succeeded event with the given metadata.
func (f *paymentFixture) succeededEvent(eventID string, order *domain.Order, paymentType string) {
	f.provider.ConstructWebhookEventFn = func(payload []byte, signature, secret string) (*billing.WebhookEvent, error) {
		return &billing.WebhookEvent{
			ID:   eventID,
			Type: billing.EventPaymentSucceeded,
			Intent: &billing.IntentData{
				ID: "pi_123",
				Metadata: map[string]string{
					billing.MetaOrderID:     order.ID.String(),
					billing.MetaUserID:      order.UserID.String(),
					billing.MetaPaymentType: paymentType,
				},
			},
		}, nil
	}
}

func TestPaymentService_CreateIntent(t *testing.T) {
	ctx := context.Background()
	f := newPaymentFixture()
	order := f.seedOrder(t, domain.PaymentFull)

	result, err := f.svc.CreateIntent(ctx, order.ID, order.UserID)
	require.NoError(t, err)
	assert.NotEmpty(t, result.ClientSecret)
	assert.True(t, result.Amount.Equal(dec("131.99")))

	// The provider got pence and the metadata that ties the intent to
	// the order.
	require.Len(t, f.provider.CreatedIntents, 1)
	params := f.provider.CreatedIntents[0]
	assert.Equal(t, int64(13199), params.Amount)
	assert.Equal(t, "gbp", params.Currency)
	assert.Equal(t, order.ID.String(), params.Metadata[billing.MetaOrderID])
	assert.Equal(t, order.UserID.String(), params.Metadata[billing.MetaUserID])
	assert.Equal(t, "full", params.Metadata[billing.MetaPaymentType])

	// The order tracks the intent.
	stored, err := f.repo.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, "pi_mock_1", stored.PaymentIntentID)
}

func TestPaymentService_CreateIntent_PartialChargesDeposit(t *testing.T) {
	f := newPaymentFixture()
	order := f.seedOrder(t, domain.PaymentPartial)

	result, err := f.svc.CreateIntent(context.Background(), order.ID, order.UserID)
	require.NoError(t, err)
	assert.True(t, result.Amount.Equal(dec("66.00")))
	require.Len(t, f.provider.CreatedIntents, 1)
	assert.Equal(t, int64(6600), f.provider.CreatedIntents[0].Amount)
	assert.Equal(t, "partial", f.provider.CreatedIntents[0].Metadata[billing.MetaPaymentType])
}

func TestPaymentService_CreateIntent_RepeatReplacesIntent(t *testing.T) {
	ctx := context.Background()
	f := newPaymentFixture()
	order := f.seedOrder(t, domain.PaymentFull)

	_, err := f.svc.CreateIntent(ctx, order.ID, order.UserID)
	require.NoError(t, err)
	_, err = f.svc.CreateIntent(ctx, order.ID, order.UserID)
	require.NoError(t, err)

	stored, err := f.repo.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, "pi_mock_2", stored.PaymentIntentID)
}

func TestPaymentService_CreateIntent_Rejections(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown order", func(t *testing.T) {
		f := newPaymentFixture()
		_, err := f.svc.CreateIntent(ctx, uuid.New(), uuid.New())
		assert.True(t, domain.IsCode(err, domain.ENOTFOUND))
	})

	t.Run("someone else's order", func(t *testing.T) {
		f := newPaymentFixture()
		order := f.seedOrder(t, domain.PaymentFull)
		_, err := f.svc.CreateIntent(ctx, order.ID, uuid.New())
		assert.True(t, domain.IsCode(err, domain.ENOTFOUND))
	})

	t.Run("already paid in full", func(t *testing.T) {
		f := newPaymentFixture()
		order := f.seedOrder(t, domain.PaymentFull)
		_, err := f.repo.ApplyPaymentSuccess(ctx, order.ID, domain.PaymentFull)
		require.NoError(t, err)

		_, err = f.svc.CreateIntent(ctx, order.ID, order.UserID)
		assert.ErrorIs(t, err, ErrAlreadyPaid)
	})

	t.Run("deposit already received", func(t *testing.T) {
		f := newPaymentFixture()
		order := f.seedOrder(t, domain.PaymentPartial)
		_, err := f.repo.ApplyPaymentSuccess(ctx, order.ID, domain.PaymentPartial)
		require.NoError(t, err)

		_, err = f.svc.CreateIntent(ctx, order.ID, order.UserID)
		assert.ErrorIs(t, err, ErrAlreadyPaid)
	})

	t.Run("provider failure maps to payment error", func(t *testing.T) {
		f := newPaymentFixture()
		order := f.seedOrder(t, domain.PaymentFull)
		f.provider.CreateIntentFn = func(context.Context, billing.CreateIntentParams) (*billing.Intent, error) {
			return nil, errors.New("card network unreachable")
		}

		_, err := f.svc.CreateIntent(ctx, order.ID, order.UserID)
		assert.True(t, domain.IsCode(err, domain.EPAYMENT))
	})
}

func TestPaymentService_HandleWebhook_FullPayment(t *testing.T) {
	ctx := context.Background()
	f := newPaymentFixture()
	order := f.seedOrder(t, domain.PaymentFull)
	f.succeededEvent("evt_1", order, "full")

	require.NoError(t, f.svc.HandleWebhook(ctx, []byte(`{}`), "sig"))

	stored, err := f.repo.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.True(t, stored.Paid)
	assert.True(t, stored.PartialPaymentReceived)
	assert.Equal(t, domain.OrderStatusProcessing, stored.Status)
	assert.Equal(t, []domain.NotificationKind{domain.NotificationConfirmed}, f.notifier.kinds())
}

func TestPaymentService_HandleWebhook_PartialPayment(t *testing.T) {
	ctx := context.Background()
	f := newPaymentFixture()
	order := f.seedOrder(t, domain.PaymentPartial)
	f.succeededEvent("evt_2", order, "partial")

	require.NoError(t, f.svc.HandleWebhook(ctx, []byte(`{}`), "sig"))

	stored, err := f.repo.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.False(t, stored.Paid)
	assert.True(t, stored.PartialPaymentReceived)
	assert.Equal(t, domain.OrderStatusProcessing, stored.Status)
}

func TestPaymentService_HandleWebhook_ReplayIsIdempotent(t *testing.T) {
	ctx := context.Background()
	f := newPaymentFixture()
	order := f.seedOrder(t, domain.PaymentFull)
	f.succeededEvent("evt_3", order, "full")

	require.NoError(t, f.svc.HandleWebhook(ctx, []byte(`{}`), "sig"))
	require.NoError(t, f.svc.HandleWebhook(ctx, []byte(`{}`), "sig"))
	require.NoError(t, f.svc.HandleWebhook(ctx, []byte(`{}`), "sig"))

	stored, err := f.repo.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.True(t, stored.Paid)

	// One settlement, one confirmation email.
	assert.Equal(t, []domain.NotificationKind{domain.NotificationConfirmed}, f.notifier.kinds())
}

func TestPaymentService_HandleWebhook_RetryAfterDBErrorStillConfirms(t *testing.T) {
	ctx := context.Background()
	f := newPaymentFixture()
	order := f.seedOrder(t, domain.PaymentFull)
	f.succeededEvent("evt_retry", order, "full")

	// First delivery fails at the database, so the provider retries.
	f.repo.applyErr = errors.New("connection reset")
	require.Error(t, f.svc.HandleWebhook(ctx, []byte(`{}`), "sig"))

	stored, err := f.repo.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	require.False(t, stored.Paid)
	require.Empty(t, f.notifier.kinds())

	// The retry must settle and still send the confirmation.
	require.NoError(t, f.svc.HandleWebhook(ctx, []byte(`{}`), "sig"))

	stored, err = f.repo.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.True(t, stored.Paid)
	assert.Equal(t, []domain.NotificationKind{domain.NotificationConfirmed}, f.notifier.kinds())
}

func TestPaymentService_HandleWebhook_DedupOutageStillSettlesOnce(t *testing.T) {
	ctx := context.Background()
	f := newPaymentFixture()
	order := f.seedOrder(t, domain.PaymentFull)
	f.succeededEvent("evt_4", order, "full")
	f.deduper.err = errors.New("redis down")

	require.NoError(t, f.svc.HandleWebhook(ctx, []byte(`{}`), "sig"))
	require.NoError(t, f.svc.HandleWebhook(ctx, []byte(`{}`), "sig"))

	stored, err := f.repo.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.True(t, stored.Paid)
	// The flag guard stops the second apply even without dedup.
	assert.Equal(t, []domain.NotificationKind{domain.NotificationConfirmed}, f.notifier.kinds())
}

func TestPaymentService_HandleWebhook_StatusBeyondPendingKept(t *testing.T) {
	ctx := context.Background()
	f := newPaymentFixture()
	order := f.seedOrder(t, domain.PaymentFull)
	require.NoError(t, f.repo.UpdateStatus(ctx, order.ID, domain.OrderStatusShipped))
	f.succeededEvent("evt_5", order, "full")

	require.NoError(t, f.svc.HandleWebhook(ctx, []byte(`{}`), "sig"))

	stored, err := f.repo.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.True(t, stored.Paid)
	assert.Equal(t, domain.OrderStatusShipped, stored.Status)
}

func TestPaymentService_HandleWebhook_NoOps(t *testing.T) {
	ctx := context.Background()

	t.Run("unrelated event type", func(t *testing.T) {
		f := newPaymentFixture()
		f.provider.ConstructWebhookEventFn = func([]byte, string, string) (*billing.WebhookEvent, error) {
			return &billing.WebhookEvent{ID: "evt_x", Type: "charge.refunded"}, nil
		}
		assert.NoError(t, f.svc.HandleWebhook(ctx, []byte(`{}`), "sig"))
	})

	t.Run("missing order metadata", func(t *testing.T) {
		f := newPaymentFixture()
		f.provider.ConstructWebhookEventFn = func([]byte, string, string) (*billing.WebhookEvent, error) {
			return &billing.WebhookEvent{
				ID:     "evt_y",
				Type:   billing.EventPaymentSucceeded,
				Intent: &billing.IntentData{ID: "pi_x", Metadata: map[string]string{}},
			}, nil
		}
		assert.NoError(t, f.svc.HandleWebhook(ctx, []byte(`{}`), "sig"))
	})

	t.Run("unknown order acknowledges", func(t *testing.T) {
		f := newPaymentFixture()
		ghost := &domain.Order{ID: uuid.New(), UserID: uuid.New()}
		f.succeededEvent("evt_z", ghost, "full")
		assert.NoError(t, f.svc.HandleWebhook(ctx, []byte(`{}`), "sig"))
	})
}

func TestPaymentService_HandleWebhook_VerificationErrorsPropagate(t *testing.T) {
	f := newPaymentFixture()
	f.provider.ConstructWebhookEventFn = func([]byte, string, string) (*billing.WebhookEvent, error) {
		return nil, billing.ErrInvalidSignature
	}

	err := f.svc.HandleWebhook(context.Background(), []byte(`{}`), "bad")
	assert.ErrorIs(t, err, billing.ErrInvalidSignature)
}

func TestPaymentService_HandleWebhook_MalformedPayload(t *testing.T) {
	f := newPaymentFixture()
	f.provider.ConstructWebhookEventFn = func(payload []byte, _, _ string) (*billing.WebhookEvent, error) {
		if !json.Valid(payload) {
			return nil, billing.ErrMalformedPayload
		}
		return &billing.WebhookEvent{ID: "evt_ok", Type: "noop"}, nil
	}

	err := f.svc.HandleWebhook(context.Background(), []byte(`{not json`), "sig")
	assert.ErrorIs(t, err, billing.ErrMalformedPayload)
}
