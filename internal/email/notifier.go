package email

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"text/template"

	"github.com/shopspring/decimal"

	"github.com/dehaan/tannery/internal/domain"
)

var templateFuncs = template.FuncMap{
	"money": func(d decimal.Decimal) string {
		return "£" + d.StringFixed(2)
	},
}

var subjects = map[domain.NotificationKind]string{
	domain.NotificationOrderCreated:  "We've received your order",
	domain.NotificationConfirmed:     "Your order is confirmed",
	domain.NotificationShipped:       "Your order has shipped",
	domain.NotificationDelivered:     "Your order has been delivered",
	domain.NotificationCancelled:     "Your order has been cancelled",
	domain.NotificationStatusUpdated: "An update on your order",
}

// Notifier renders and sends the order lifecycle emails. It implements
// domain.OrderNotifier.
type Notifier struct {
	sender   Sender
	shopName string
	logger   *slog.Logger
}

var _ domain.OrderNotifier = (*Notifier)(nil)

func NewNotifier(sender Sender, shopName string, logger *slog.Logger) *Notifier {
	return &Notifier{
		sender:   sender,
		shopName: shopName,
		logger:   logger,
	}
}

type templateData struct {
	Order *domain.Order
	Items []domain.OrderItem
	Shop  string
}

// Notify sends the email for an order event to the order's customer.
func (n *Notifier) Notify(ctx context.Context, kind domain.NotificationKind, order *domain.Order, items []domain.OrderItem) error {
	tmpl, ok := orderTemplates[string(kind)]
	if !ok {
		return fmt.Errorf("email: no template for notification %q", kind)
	}
	subject, ok := subjects[kind]
	if !ok {
		return fmt.Errorf("email: no subject for notification %q", kind)
	}

	var body bytes.Buffer
	err := tmpl.Execute(&body, templateData{
		Order: order,
		Items: items,
		Shop:  n.shopName,
	})
	if err != nil {
		return fmt.Errorf("email: render %q: %w", kind, err)
	}

	_, err = n.sender.Send(ctx, &Email{
		To:       []string{order.Email},
		Subject:  subject,
		TextBody: body.String(),
	})
	if err != nil {
		return fmt.Errorf("email: send %q: %w", kind, err)
	}

	n.logger.Debug("order email sent",
		slog.String("kind", string(kind)),
		slog.String("order_id", order.ID.String()),
	)
	return nil
}
