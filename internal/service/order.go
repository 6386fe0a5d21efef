package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dehaan/tannery/internal/domain"
	"github.com/dehaan/tannery/internal/pricing"
)

// OrderRepository is the persistence surface the order and payment
// services need. Implemented by postgres.OrderStore.
type OrderRepository interface {
	CreateOrder(ctx context.Context, order *domain.Order, items []domain.OrderItem) error
	GetOrder(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	GetOrderForUser(ctx context.Context, id, userID uuid.UUID) (*domain.Order, error)
	ListOrdersForUser(ctx context.Context, userID uuid.UUID) ([]domain.Order, error)
	ListOrders(ctx context.Context, status domain.OrderStatus) ([]domain.Order, error)
	GetOrderItems(ctx context.Context, orderID uuid.UUID) ([]domain.OrderItem, error)
	SetPaymentIntentID(ctx context.Context, orderID uuid.UUID, intentID string) error
	UpdateStatus(ctx context.Context, orderID uuid.UUID, status domain.OrderStatus) error
	ApplyPaymentSuccess(ctx context.Context, orderID uuid.UUID, paymentType domain.PaymentMethod) (bool, error)
}

// OrderService materializes carts into orders and drives the status
// lifecycle.
type OrderService struct {
	repo     OrderRepository
	carts    domain.CartService
	engine   *pricing.Engine
	notifier domain.OrderNotifier
	validate *validator.Validate
	logger   *slog.Logger
}

var _ domain.OrderService = (*OrderService)(nil)

func round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

func NewOrderService(repo OrderRepository, carts domain.CartService, engine *pricing.Engine, notifier domain.OrderNotifier, logger *slog.Logger) *OrderService {
	return &OrderService{
		repo:     repo,
		carts:    carts,
		engine:   engine,
		notifier: notifier,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger,
	}
}

// CreateOrder freezes the session cart into an immutable priced order.
// The order row and its lines land in one transaction; only after the
// write succeeds is the confirmation email sent and the cart cleared.
func (s *OrderService) CreateOrder(ctx context.Context, sessionID string, userID uuid.UUID, input domain.CreateOrderInput) (*domain.Order, error) {
	if err := s.validateInput(input); err != nil {
		return nil, err
	}

	shippingMethod, err := domain.ParseShippingMethod(input.ShippingMethod)
	if err != nil {
		return nil, err
	}
	paymentMethod, err := domain.ParsePaymentMethod(input.PaymentMethod)
	if err != nil {
		return nil, err
	}

	cart, err := s.carts.GetCart(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if len(cart.Lines) == 0 {
		return nil, ErrEmptyCart
	}

	// Components are fixed at two places on persist; the stored total
	// is exactly their sum.
	subtotal := cart.Subtotal
	shipping := round2(s.engine.ShippingCost(shippingMethod, subtotal))
	vat := round2(s.engine.VAT(subtotal, shipping))
	total := pricing.Total(subtotal, shipping, vat)
	online, remaining := pricing.SplitPayment(total, paymentMethod)

	now := time.Now().UTC()
	order := &domain.Order{
		ID:                uuid.New(),
		UserID:            userID,
		FullName:          input.FullName,
		Email:             input.Email,
		Phone:             input.Phone,
		AddressLine1:      input.AddressLine1,
		AddressLine2:      input.AddressLine2,
		City:              input.City,
		County:            input.County,
		Postcode:          input.Postcode,
		ShippingMethod:    shippingMethod,
		EstimatedDelivery: s.engine.EstimatedDelivery(shippingMethod),
		PaymentMethod:     paymentMethod,
		Status:            domain.OrderStatusPending,
		Subtotal:          subtotal,
		ShippingCost:      shipping,
		VAT:               vat,
		TotalAmount:       total,
		AmountPaidOnline:  online,
		RemainingAmount:   remaining,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	items := make([]domain.OrderItem, 0, len(cart.Lines))
	for _, line := range cart.Lines {
		name := ""
		if line.Product != nil {
			name = line.Product.Name
		}
		items = append(items, domain.OrderItem{
			ID:          uuid.New(),
			OrderID:     order.ID,
			ProductID:   line.ProductID,
			ProductName: name,
			Size:        line.Size,
			Price:       line.UnitPrice,
			Quantity:    line.Quantity,
		})
	}

	if err := s.repo.CreateOrder(ctx, order, items); err != nil {
		return nil, err
	}

	s.logger.Info("order created",
		slog.String("order_id", order.ID.String()),
		slog.String("user_id", userID.String()),
		slog.String("total", order.TotalAmount.StringFixed(2)),
		slog.String("payment_method", string(paymentMethod)),
	)

	s.notify(ctx, domain.NotificationOrderCreated, order, items)

	if err := s.carts.Clear(ctx, sessionID); err != nil {
		// The order exists; a stale cart is an annoyance, not a failure.
		s.logger.Warn("failed to clear cart after checkout",
			slog.String("session_id", sessionID),
			slog.String("order_id", order.ID.String()),
			slog.String("error", err.Error()),
		)
	}

	return order, nil
}

// validateInput maps struct tag failures to field-level errors.
func (s *OrderService) validateInput(input domain.CreateOrderInput) error {
	err := s.validate.Struct(input)
	if err == nil {
		return nil
	}

	var invalid validator.ValidationErrors
	if !errors.As(err, &invalid) {
		return domain.Internal(err, "order.validate", "failed to validate order input")
	}

	var ve error
	for _, fe := range invalid {
		switch fe.Tag() {
		case "required":
			ve = domain.AddFieldError(ve, fe.Field(), "This field is required")
		case "email":
			ve = domain.AddFieldError(ve, fe.Field(), "Enter a valid email address")
		case "oneof":
			ve = domain.AddFieldError(ve, fe.Field(), "Invalid choice")
		default:
			ve = domain.AddFieldError(ve, fe.Field(), "Invalid value")
		}
	}
	return ve
}

// GetOrder returns a customer's order with its lines.
func (s *OrderService) GetOrder(ctx context.Context, orderID, userID uuid.UUID) (*domain.OrderDetail, error) {
	order, err := s.repo.GetOrderForUser(ctx, orderID, userID)
	if err != nil {
		return nil, err
	}
	items, err := s.repo.GetOrderItems(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return &domain.OrderDetail{Order: order, Items: items}, nil
}

// ListOrders returns a customer's orders, newest first.
func (s *OrderService) ListOrders(ctx context.Context, userID uuid.UUID) ([]domain.Order, error) {
	return s.repo.ListOrdersForUser(ctx, userID)
}

// ListAllOrders returns every order, optionally filtered by status.
func (s *OrderService) ListAllOrders(ctx context.Context, status domain.OrderStatus) ([]domain.Order, error) {
	if status != "" {
		if _, err := domain.ParseOrderStatus(string(status)); err != nil {
			return nil, err
		}
	}
	return s.repo.ListOrders(ctx, status)
}

// UpdateStatus sets the order's status and sends the email matching
// the transition. The status set is deliberately unconstrained beyond
// membership; operators can move an order anywhere, including back.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID uuid.UUID, status string) (*domain.Order, error) {
	newStatus, err := domain.ParseOrderStatus(status)
	if err != nil {
		return nil, err
	}

	order, err := s.repo.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	oldStatus := order.Status

	if err := s.repo.UpdateStatus(ctx, orderID, newStatus); err != nil {
		return nil, err
	}
	order.Status = newStatus
	order.UpdatedAt = time.Now().UTC()

	s.logger.Info("order status updated",
		slog.String("order_id", orderID.String()),
		slog.String("from", string(oldStatus)),
		slog.String("to", string(newStatus)),
	)

	items, err := s.repo.GetOrderItems(ctx, orderID)
	if err != nil {
		s.logger.Warn("failed to load items for status notification",
			slog.String("order_id", orderID.String()),
			slog.String("error", err.Error()),
		)
		items = nil
	}
	s.notify(ctx, domain.NotificationFor(oldStatus, newStatus), order, items)

	return order, nil
}

// notify sends the email best-effort. Notification failures are logged
// and swallowed; they never fail the operation that triggered them.
func (s *OrderService) notify(ctx context.Context, kind domain.NotificationKind, order *domain.Order, items []domain.OrderItem) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, kind, order, items); err != nil {
		s.logger.Error("order notification failed",
			slog.String("order_id", order.ID.String()),
			slog.String("kind", string(kind)),
			slog.String("error", err.Error()),
		)
	}
}
