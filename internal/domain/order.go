package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =============================================================================
// ORDER DOMAIN TYPES
// =============================================================================

// OrderStatus represents the fulfilment state of an order.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// ParseOrderStatus validates a raw status string.
func ParseOrderStatus(s string) (OrderStatus, error) {
	switch OrderStatus(s) {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return OrderStatus(s), nil
	}
	return "", Errorf(EINVALID, "order.status", "invalid order status: %q", s)
}

// Terminal reports whether the status is an end state.
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// ShippingMethod selects a row of the flat-rate shipping table.
type ShippingMethod string

const (
	ShippingStandard      ShippingMethod = "standard"
	ShippingExpress       ShippingMethod = "express"
	ShippingNextDay       ShippingMethod = "next_day"
	ShippingInternational ShippingMethod = "international"
)

// ParseShippingMethod validates a raw shipping method string.
func ParseShippingMethod(s string) (ShippingMethod, error) {
	switch ShippingMethod(s) {
	case ShippingStandard, ShippingExpress, ShippingNextDay, ShippingInternational:
		return ShippingMethod(s), nil
	}
	return "", Errorf(EINVALID, "order.shipping", "invalid shipping method: %q", s)
}

// PaymentMethod selects how much of the order total is collected
// online at checkout.
type PaymentMethod string

const (
	// PaymentFull collects the entire total online.
	PaymentFull PaymentMethod = "full"

	// PaymentPartial collects half online; the balance is settled on
	// delivery.
	PaymentPartial PaymentMethod = "partial"
)

// ParsePaymentMethod validates a raw payment method string.
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	switch PaymentMethod(s) {
	case PaymentFull, PaymentPartial:
		return PaymentMethod(s), nil
	}
	return "", Errorf(EINVALID, "order.payment", "invalid payment method: %q", s)
}

// Order is an immutable priced snapshot of a checkout. The monetary
// components are fixed at creation; TotalAmount is always the sum of
// the stored Subtotal, ShippingCost and VAT.
type Order struct {
	ID     uuid.UUID
	UserID uuid.UUID

	// Contact and delivery address.
	FullName     string
	Email        string
	Phone        string
	AddressLine1 string
	AddressLine2 string
	City         string
	County       string
	Postcode     string

	ShippingMethod    ShippingMethod
	EstimatedDelivery string

	PaymentMethod          PaymentMethod
	Status                 OrderStatus
	Paid                   bool
	PartialPaymentReceived bool

	Subtotal         decimal.Decimal
	ShippingCost     decimal.Decimal
	VAT              decimal.Decimal
	TotalAmount      decimal.Decimal
	AmountPaidOnline decimal.Decimal
	RemainingAmount  decimal.Decimal

	PaymentIntentID string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// AmountDue returns the online amount still owed on the order. Zero
// once the order's online portion has been collected.
func (o *Order) AmountDue() decimal.Decimal {
	if o.Paid || (o.PaymentMethod == PaymentPartial && o.PartialPaymentReceived) {
		return decimal.Zero
	}
	return o.AmountPaidOnline
}

// PaymentStatusDisplay returns the customer-facing payment state.
func (o *Order) PaymentStatusDisplay() string {
	switch {
	case o.Paid:
		return "Paid in full"
	case o.PartialPaymentReceived:
		return "50% deposit paid"
	default:
		return "Payment pending"
	}
}

// OrderItem is a priced line frozen into an order. ProductName and
// Price are snapshots; the referenced product may change or disappear
// afterwards without affecting the order.
type OrderItem struct {
	ID          uuid.UUID
	OrderID     uuid.UUID
	ProductID   uuid.UUID
	ProductName string
	Size        string
	Price       decimal.Decimal
	Quantity    int
}

// LineTotal returns Price multiplied by Quantity.
func (i *OrderItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// =============================================================================
// STATUS NOTIFICATIONS
// =============================================================================

// NotificationKind names a customer email sent in reaction to an order
// event.
type NotificationKind string

const (
	NotificationOrderCreated  NotificationKind = "order_created"
	NotificationConfirmed     NotificationKind = "order_confirmed"
	NotificationShipped       NotificationKind = "order_shipped"
	NotificationDelivered     NotificationKind = "order_delivered"
	NotificationCancelled     NotificationKind = "order_cancelled"
	NotificationStatusUpdated NotificationKind = "order_status_updated"
)

// NotificationFor maps a status transition to the email it triggers.
// The new status dominates; pending to processing is the one pair that
// gets its own confirmation message. Everything else falls through to
// the generic update.
func NotificationFor(from, to OrderStatus) NotificationKind {
	if from == OrderStatusPending && to == OrderStatusProcessing {
		return NotificationConfirmed
	}
	switch to {
	case OrderStatusShipped:
		return NotificationShipped
	case OrderStatusDelivered:
		return NotificationDelivered
	case OrderStatusCancelled:
		return NotificationCancelled
	}
	return NotificationStatusUpdated
}

// OrderNotifier delivers customer emails for order events. Failures
// are reported but never block the triggering operation.
type OrderNotifier interface {
	Notify(ctx context.Context, kind NotificationKind, order *Order, items []OrderItem) error
}

// =============================================================================
// SERVICE INTERFACES
// =============================================================================

// CreateOrderInput is the checkout form: contact details, delivery
// address and the shipping/payment choices.
type CreateOrderInput struct {
	FullName       string `json:"full_name" validate:"required"`
	Email          string `json:"email" validate:"required,email"`
	Phone          string `json:"phone" validate:"required"`
	AddressLine1   string `json:"address_line1" validate:"required"`
	AddressLine2   string `json:"address_line2"`
	City           string `json:"city" validate:"required"`
	County         string `json:"county"`
	Postcode       string `json:"postcode" validate:"required"`
	ShippingMethod string `json:"shipping_method" validate:"required,oneof=standard express next_day international"`
	PaymentMethod  string `json:"payment_method" validate:"required,oneof=full partial"`
}

// OrderDetail pairs an order with its frozen lines.
type OrderDetail struct {
	Order *Order
	Items []OrderItem
}

// OrderService materializes carts into orders and drives the order
// status lifecycle.
type OrderService interface {
	// CreateOrder turns the session cart into an immutable priced
	// order: validates the input, prices the cart through the shipping
	// and VAT rules, persists the order with its lines atomically,
	// sends the order-received email and clears the cart.
	//
	// Returns ErrEmptyCart when the cart has no lines and a
	// ValidationError when the input is incomplete.
	CreateOrder(ctx context.Context, sessionID string, userID uuid.UUID, input CreateOrderInput) (*Order, error)

	// GetOrder returns a customer's order with its items. Orders
	// belonging to other customers read as ENOTFOUND.
	GetOrder(ctx context.Context, orderID, userID uuid.UUID) (*OrderDetail, error)

	// ListOrders returns a customer's orders, newest first.
	ListOrders(ctx context.Context, userID uuid.UUID) ([]Order, error)

	// ListAllOrders returns every order, optionally filtered by
	// status. Operator surface.
	ListAllOrders(ctx context.Context, status OrderStatus) ([]Order, error)

	// UpdateStatus sets an order's status and sends the matching
	// notification email. Any valid status is accepted from any
	// current state; re-posting the current status still sends the
	// generic update email.
	UpdateStatus(ctx context.Context, orderID uuid.UUID, status string) (*Order, error)
}

// PaymentIntentResult is what a client needs to finish a payment in
// the browser.
type PaymentIntentResult struct {
	ClientSecret string          `json:"client_secret"`
	Amount       decimal.Decimal `json:"amount"`
}

// PaymentService coordinates payment intents and webhook settlement.
type PaymentService interface {
	// CreateIntent registers a payment intent for the order's online
	// amount and returns the client secret. Repeat calls before
	// settlement create a fresh intent; the order tracks only the most
	// recent one. Returns ErrAlreadyPaid once the online amount has
	// been collected.
	CreateIntent(ctx context.Context, orderID, userID uuid.UUID) (*PaymentIntentResult, error)

	// HandleWebhook verifies and processes a raw provider webhook
	// delivery. Settlement events mark the order paid and advance
	// pending orders to processing; replays and events for unknown
	// orders are acknowledged without effect.
	HandleWebhook(ctx context.Context, payload []byte, signature string) error
}
