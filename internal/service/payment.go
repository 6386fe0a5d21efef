package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/dehaan/tannery/internal/billing"
	"github.com/dehaan/tannery/internal/domain"
	"github.com/dehaan/tannery/internal/pricing"
)

// EventDeduper recognizes webhook deliveries that were already
// processed. Implemented by redisx.Deduper.
type EventDeduper interface {
	// Seen reports whether the event ID was already processed.
	Seen(ctx context.Context, eventID string) (bool, error)
	// MarkProcessed records the event ID, reporting whether this was
	// the first sighting.
	MarkProcessed(ctx context.Context, eventID string) (bool, error)
}

// PaymentServiceConfig wires the collaborators and provider secrets.
type PaymentServiceConfig struct {
	Repo          OrderRepository
	Provider      billing.Provider
	Deduper       EventDeduper
	Notifier      domain.OrderNotifier
	Currency      string
	WebhookSecret string
	Logger        *slog.Logger
}

// PaymentService coordinates payment intents and webhook settlement.
type PaymentService struct {
	repo          OrderRepository
	provider      billing.Provider
	deduper       EventDeduper
	notifier      domain.OrderNotifier
	currency      string
	webhookSecret string
	logger        *slog.Logger
}

var _ domain.PaymentService = (*PaymentService)(nil)

func NewPaymentService(cfg PaymentServiceConfig) *PaymentService {
	currency := cfg.Currency
	if currency == "" {
		currency = "gbp"
	}
	return &PaymentService{
		repo:          cfg.Repo,
		provider:      cfg.Provider,
		deduper:       cfg.Deduper,
		notifier:      cfg.Notifier,
		currency:      currency,
		webhookSecret: cfg.WebhookSecret,
		logger:        cfg.Logger,
	}
}

// CreateIntent registers a payment intent for the order's online
// amount. Calling again before settlement creates a fresh intent and
// the order tracks only the newest one; once the online amount has
// been collected further attempts return ErrAlreadyPaid.
func (s *PaymentService) CreateIntent(ctx context.Context, orderID, userID uuid.UUID) (*domain.PaymentIntentResult, error) {
	order, err := s.repo.GetOrderForUser(ctx, orderID, userID)
	if err != nil {
		return nil, err
	}

	if order.Paid {
		return nil, ErrAlreadyPaid
	}
	if order.PaymentMethod == domain.PaymentPartial && order.PartialPaymentReceived {
		return nil, ErrAlreadyPaid
	}

	amount := order.AmountPaidOnline
	intent, err := s.provider.CreateIntent(ctx, billing.CreateIntentParams{
		Amount:   pricing.Pence(amount),
		Currency: s.currency,
		Metadata: map[string]string{
			billing.MetaOrderID:     order.ID.String(),
			billing.MetaUserID:      order.UserID.String(),
			billing.MetaPaymentType: string(order.PaymentMethod),
		},
	})
	if err != nil {
		return nil, domain.WrapError(err, domain.EPAYMENT, "payment.intent", "Payment provider rejected the request")
	}

	if err := s.repo.SetPaymentIntentID(ctx, order.ID, intent.ID); err != nil {
		return nil, err
	}

	s.logger.Info("payment intent created",
		slog.String("order_id", order.ID.String()),
		slog.String("intent_id", intent.ID),
		slog.Int64("amount_pence", pricing.Pence(amount)),
	)

	return &domain.PaymentIntentResult{
		ClientSecret: intent.ClientSecret,
		Amount:       amount,
	}, nil
}

// HandleWebhook verifies and processes one raw webhook delivery.
//
// Settlement is idempotent two ways: the event ID is recorded so exact
// replays are recognized, and the flag update itself no-ops once the
// order is marked paid. Events for unknown orders acknowledge cleanly
// so the provider stops retrying.
func (s *PaymentService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	event, err := s.provider.ConstructWebhookEvent(payload, signature, s.webhookSecret)
	if err != nil {
		return err
	}

	if event.Type != billing.EventPaymentSucceeded {
		s.logger.Debug("ignoring webhook event", slog.String("type", event.Type))
		return nil
	}
	if event.Intent == nil {
		s.logger.Warn("payment event without intent payload", slog.String("event_id", event.ID))
		return nil
	}

	orderIDRaw := event.Intent.Metadata[billing.MetaOrderID]
	if orderIDRaw == "" {
		// Not one of ours; some other system's intent on the same account.
		s.logger.Debug("payment event without order metadata", slog.String("event_id", event.ID))
		return nil
	}
	orderID, err := uuid.Parse(orderIDRaw)
	if err != nil {
		s.logger.Warn("payment event with invalid order id",
			slog.String("event_id", event.ID),
			slog.String("order_id", orderIDRaw),
		)
		return nil
	}

	if s.deduper != nil {
		seen, err := s.deduper.Seen(ctx, event.ID)
		if err != nil {
			// Settlement must not depend on the dedup store being up;
			// the flag guard below still protects against doubles.
			s.logger.Warn("webhook dedup unavailable",
				slog.String("event_id", event.ID),
				slog.String("error", err.Error()),
			)
		} else if seen {
			s.logger.Info("replayed webhook event ignored",
				slog.String("event_id", event.ID),
			)
			return nil
		}
	}

	paymentType := domain.PaymentMethod(event.Intent.Metadata[billing.MetaPaymentType])
	if paymentType != domain.PaymentPartial {
		paymentType = domain.PaymentFull
	}

	applied, err := s.repo.ApplyPaymentSuccess(ctx, orderID, paymentType)
	if err != nil {
		if domain.IsCode(err, domain.ENOTFOUND) {
			s.logger.Warn("payment event for unknown order",
				slog.String("event_id", event.ID),
				slog.String("order_id", orderID.String()),
			)
			return nil
		}
		// The event stays unmarked, so the provider's retry gets a
		// full pass at settlement.
		return err
	}

	// Only a settled event is recorded. A delivery that failed above
	// must look brand new when it is retried.
	if s.deduper != nil {
		if _, err := s.deduper.MarkProcessed(ctx, event.ID); err != nil {
			s.logger.Warn("webhook dedup unavailable",
				slog.String("event_id", event.ID),
				slog.String("error", err.Error()),
			)
		}
	}

	if !applied {
		s.logger.Info("duplicate payment event ignored",
			slog.String("event_id", event.ID),
			slog.String("order_id", orderID.String()),
		)
		return nil
	}

	s.logger.Info("payment settled",
		slog.String("event_id", event.ID),
		slog.String("order_id", orderID.String()),
		slog.String("payment_type", string(paymentType)),
	)

	// The flag-guarded update applies exactly once per payment type,
	// so gating on it keeps the email single-shot even across retries.
	s.sendConfirmation(ctx, orderID)
	return nil
}

// sendConfirmation emails the customer after a successful settlement.
// Best-effort; the webhook is already acknowledged.
func (s *PaymentService) sendConfirmation(ctx context.Context, orderID uuid.UUID) {
	if s.notifier == nil {
		return
	}
	order, err := s.repo.GetOrder(ctx, orderID)
	if err != nil {
		s.logger.Warn("failed to load order for payment confirmation",
			slog.String("order_id", orderID.String()),
			slog.String("error", err.Error()),
		)
		return
	}
	items, err := s.repo.GetOrderItems(ctx, orderID)
	if err != nil {
		items = nil
	}
	if err := s.notifier.Notify(ctx, domain.NotificationConfirmed, order, items); err != nil {
		s.logger.Error("payment confirmation email failed",
			slog.String("order_id", orderID.String()),
			slog.String("error", err.Error()),
		)
	}
}
