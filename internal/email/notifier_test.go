package email

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dehaan/tannery/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testOrder() (*domain.Order, []domain.OrderItem) {
	order := &domain.Order{
		ID:                uuid.New(),
		UserID:            uuid.New(),
		FullName:          "Ada Lovelace",
		Email:             "ada@example.com",
		Status:            domain.OrderStatusPending,
		ShippingMethod:    domain.ShippingStandard,
		EstimatedDelivery: "5-7 business days",
		PaymentMethod:     domain.PaymentPartial,
		Subtotal:          decimal.RequireFromString("100.00"),
		ShippingCost:      decimal.Zero,
		VAT:               decimal.RequireFromString("20.00"),
		TotalAmount:       decimal.RequireFromString("120.00"),
		AmountPaidOnline:  decimal.RequireFromString("60.00"),
		RemainingAmount:   decimal.RequireFromString("60.00"),
	}
	items := []domain.OrderItem{
		{
			ID:          uuid.New(),
			OrderID:     order.ID,
			ProductID:   uuid.New(),
			ProductName: "Aviator Jacket",
			Size:        "M",
			Price:       decimal.RequireFromString("100.00"),
			Quantity:    1,
		},
	}
	return order, items
}

func TestNotifier_RendersOrderSummary(t *testing.T) {
	sender := NewMockSender()
	notifier := NewNotifier(sender, "Tannery Leather", testLogger())

	order, items := testOrder()
	err := notifier.Notify(context.Background(), domain.NotificationOrderCreated, order, items)
	require.NoError(t, err)

	require.Len(t, sender.Sent, 1)
	sent := sender.Sent[0]

	assert.Equal(t, []string{"ada@example.com"}, sent.To)
	assert.Equal(t, "We've received your order", sent.Subject)
	assert.Contains(t, sent.TextBody, order.ID.String())
	assert.Contains(t, sent.TextBody, "1 x Aviator Jacket (M)")
	assert.Contains(t, sent.TextBody, "Total:     £120.00")
	assert.Contains(t, sent.TextBody, "Due on delivery: £60.00")
	assert.Contains(t, sent.TextBody, "Tannery Leather")
}

func TestNotifier_FullPaymentOmitsBalance(t *testing.T) {
	sender := NewMockSender()
	notifier := NewNotifier(sender, "Tannery Leather", testLogger())

	order, items := testOrder()
	order.PaymentMethod = domain.PaymentFull
	order.Paid = true
	order.AmountPaidOnline = order.TotalAmount
	order.RemainingAmount = decimal.Zero

	err := notifier.Notify(context.Background(), domain.NotificationConfirmed, order, items)
	require.NoError(t, err)

	require.Len(t, sender.Sent, 1)
	assert.NotContains(t, sender.Sent[0].TextBody, "Due on delivery")
	assert.Contains(t, sender.Sent[0].TextBody, "Paid in full")
}

func TestNotifier_SubjectPerKind(t *testing.T) {
	tests := []struct {
		kind    domain.NotificationKind
		subject string
	}{
		{domain.NotificationOrderCreated, "We've received your order"},
		{domain.NotificationConfirmed, "Your order is confirmed"},
		{domain.NotificationShipped, "Your order has shipped"},
		{domain.NotificationDelivered, "Your order has been delivered"},
		{domain.NotificationCancelled, "Your order has been cancelled"},
		{domain.NotificationStatusUpdated, "An update on your order"},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			sender := NewMockSender()
			notifier := NewNotifier(sender, "Tannery Leather", testLogger())

			order, items := testOrder()
			require.NoError(t, notifier.Notify(context.Background(), tt.kind, order, items))
			require.Len(t, sender.Sent, 1)
			assert.Equal(t, tt.subject, sender.Sent[0].Subject)
		})
	}
}

func TestNotifier_UnknownKind(t *testing.T) {
	sender := NewMockSender()
	notifier := NewNotifier(sender, "Tannery Leather", testLogger())

	order, items := testOrder()
	err := notifier.Notify(context.Background(), domain.NotificationKind("bogus"), order, items)
	assert.Error(t, err)
	assert.Empty(t, sender.Sent)
}
