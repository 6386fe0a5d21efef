package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dehaan/tannery/internal/domain"
)

// OrderStore persists orders and their frozen lines.
type OrderStore struct {
	pool *pgxpool.Pool
}

func NewOrderStore(pool *pgxpool.Pool) *OrderStore {
	return &OrderStore{pool: pool}
}

const orderColumns = `id, user_id, full_name, email, phone, address_line1, address_line2,
	city, county, postcode, shipping_method, estimated_delivery, payment_method,
	status, paid, partial_payment_received, subtotal, shipping_cost, vat,
	total_amount, amount_paid_online, remaining_amount, payment_intent_id,
	created_at, updated_at`

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var o domain.Order
	err := row.Scan(
		&o.ID,
		&o.UserID,
		&o.FullName,
		&o.Email,
		&o.Phone,
		&o.AddressLine1,
		&o.AddressLine2,
		&o.City,
		&o.County,
		&o.Postcode,
		&o.ShippingMethod,
		&o.EstimatedDelivery,
		&o.PaymentMethod,
		&o.Status,
		&o.Paid,
		&o.PartialPaymentReceived,
		&o.Subtotal,
		&o.ShippingCost,
		&o.VAT,
		&o.TotalAmount,
		&o.AmountPaidOnline,
		&o.RemainingAmount,
		&o.PaymentIntentID,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// CreateOrder inserts the order and all of its lines in one
// transaction. Either everything lands or nothing does.
func (s *OrderStore) CreateOrder(ctx context.Context, order *domain.Order, items []domain.OrderItem) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return domain.Internal(err, "order.create", "failed to begin transaction")
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO orders (
			id, user_id, full_name, email, phone, address_line1, address_line2,
			city, county, postcode, shipping_method, estimated_delivery, payment_method,
			status, paid, partial_payment_received, subtotal, shipping_cost, vat,
			total_amount, amount_paid_online, remaining_amount, payment_intent_id,
			created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13,
			$14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25
		)`,
		order.ID, order.UserID, order.FullName, order.Email, order.Phone,
		order.AddressLine1, order.AddressLine2, order.City, order.County, order.Postcode,
		order.ShippingMethod, order.EstimatedDelivery, order.PaymentMethod,
		order.Status, order.Paid, order.PartialPaymentReceived,
		order.Subtotal, order.ShippingCost, order.VAT,
		order.TotalAmount, order.AmountPaidOnline, order.RemainingAmount,
		order.PaymentIntentID, order.CreatedAt, order.UpdatedAt,
	)
	if err != nil {
		return domain.Internal(err, "order.create", "failed to insert order")
	}

	for _, item := range items {
		_, err = tx.Exec(ctx, `
			INSERT INTO order_items (id, order_id, product_id, product_name, size, price, quantity)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			item.ID, item.OrderID, item.ProductID, item.ProductName, item.Size, item.Price, item.Quantity,
		)
		if err != nil {
			return domain.Internal(err, "order.create", "failed to insert order item")
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.Internal(err, "order.create", "failed to commit order")
	}
	return nil
}

// GetOrder returns an order by ID.
func (s *OrderStore) GetOrder(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
	o, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NotFound("order.get", "order", id.String())
		}
		return nil, domain.Internal(err, "order.get", "failed to load order")
	}
	return o, nil
}

// GetOrderForUser returns an order only when it belongs to the user.
// Another customer's order reads as not found.
func (s *OrderStore) GetOrderForUser(ctx context.Context, id, userID uuid.UUID) (*domain.Order, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1 AND user_id = $2`, id, userID)
	o, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NotFound("order.get", "order", id.String())
		}
		return nil, domain.Internal(err, "order.get", "failed to load order")
	}
	return o, nil
}

// ListOrdersForUser returns a customer's orders, newest first.
func (s *OrderStore) ListOrdersForUser(ctx context.Context, userID uuid.UUID) ([]domain.Order, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, domain.Internal(err, "order.list", "failed to list orders")
	}
	defer rows.Close()
	return collectOrders(rows)
}

// ListOrders returns every order, optionally filtered by status.
func (s *OrderStore) ListOrders(ctx context.Context, status domain.OrderStatus) ([]domain.Order, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if status == "" {
		rows, err = s.pool.Query(ctx,
			`SELECT `+orderColumns+` FROM orders ORDER BY created_at DESC`)
	} else {
		rows, err = s.pool.Query(ctx,
			`SELECT `+orderColumns+` FROM orders WHERE status = $1 ORDER BY created_at DESC`, status)
	}
	if err != nil {
		return nil, domain.Internal(err, "order.list", "failed to list orders")
	}
	defer rows.Close()
	return collectOrders(rows)
}

func collectOrders(rows pgx.Rows) ([]domain.Order, error) {
	var orders []domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, domain.Internal(err, "order.list", "failed to scan order")
		}
		orders = append(orders, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Internal(err, "order.list", "failed to read orders")
	}
	return orders, nil
}

// GetOrderItems returns the frozen lines of an order.
func (s *OrderStore) GetOrderItems(ctx context.Context, orderID uuid.UUID) ([]domain.OrderItem, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, order_id, product_id, product_name, size, price, quantity
		FROM order_items WHERE order_id = $1 ORDER BY product_name, size`, orderID)
	if err != nil {
		return nil, domain.Internal(err, "order.items", "failed to list order items")
	}
	defer rows.Close()

	var items []domain.OrderItem
	for rows.Next() {
		var i domain.OrderItem
		err := rows.Scan(&i.ID, &i.OrderID, &i.ProductID, &i.ProductName, &i.Size, &i.Price, &i.Quantity)
		if err != nil {
			return nil, domain.Internal(err, "order.items", "failed to scan order item")
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Internal(err, "order.items", "failed to read order items")
	}
	return items, nil
}

// SetPaymentIntentID records the most recent payment intent for the
// order. Re-initiating checkout overwrites the previous handle.
func (s *OrderStore) SetPaymentIntentID(ctx context.Context, orderID uuid.UUID, intentID string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE orders SET payment_intent_id = $2, updated_at = now() WHERE id = $1`,
		orderID, intentID)
	if err != nil {
		return domain.Internal(err, "order.intent", "failed to record payment intent")
	}
	if tag.RowsAffected() == 0 {
		return domain.NotFound("order.intent", "order", orderID.String())
	}
	return nil
}

// UpdateStatus sets the order's status.
func (s *OrderStore) UpdateStatus(ctx context.Context, orderID uuid.UUID, status domain.OrderStatus) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE orders SET status = $2, updated_at = now() WHERE id = $1`,
		orderID, status)
	if err != nil {
		return domain.Internal(err, "order.status", "failed to update status")
	}
	if tag.RowsAffected() == 0 {
		return domain.NotFound("order.status", "order", orderID.String())
	}
	return nil
}

// ApplyPaymentSuccess settles the online portion of the order: sets
// the payment flags for the payment type and advances a pending order
// to processing. The guard in the WHERE clause makes the write
// idempotent; a replayed event matches zero rows and reports applied
// as false. Orders already moved past pending keep their status.
func (s *OrderStore) ApplyPaymentSuccess(ctx context.Context, orderID uuid.UUID, paymentType domain.PaymentMethod) (bool, error) {
	var (
		tag pgconn.CommandTag
		err error
	)
	if paymentType == domain.PaymentPartial {
		tag, err = s.pool.Exec(ctx, `
			UPDATE orders
			SET partial_payment_received = true,
			    status = CASE WHEN status = 'pending' THEN 'processing' ELSE status END,
			    updated_at = now()
			WHERE id = $1 AND partial_payment_received = false`,
			orderID)
	} else {
		tag, err = s.pool.Exec(ctx, `
			UPDATE orders
			SET paid = true,
			    partial_payment_received = true,
			    status = CASE WHEN status = 'pending' THEN 'processing' ELSE status END,
			    updated_at = now()
			WHERE id = $1 AND paid = false`,
			orderID)
	}
	if err != nil {
		return false, domain.Internal(err, "order.settle", "failed to record payment")
	}
	if tag.RowsAffected() > 0 {
		return true, nil
	}

	// Zero rows is either a replay or an unknown order.
	var exists bool
	err = s.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM orders WHERE id = $1)`, orderID).Scan(&exists)
	if err != nil {
		return false, domain.Internal(err, "order.settle", "failed to check order")
	}
	if !exists {
		return false, domain.NotFound("order.settle", "order", orderID.String())
	}
	return false, nil
}
