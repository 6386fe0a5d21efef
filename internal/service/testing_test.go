package service

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/dehaan/tannery/internal/domain"
)

// fakeOrderRepo is an in-memory OrderRepository.
type fakeOrderRepo struct {
	mu     sync.Mutex
	orders map[uuid.UUID]*domain.Order
	items  map[uuid.UUID][]domain.OrderItem

	// createErr forces CreateOrder to fail.
	createErr error
	// applyErr forces the next ApplyPaymentSuccess to fail, once.
	applyErr error
}

var _ OrderRepository = (*fakeOrderRepo)(nil)

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{
		orders: make(map[uuid.UUID]*domain.Order),
		items:  make(map[uuid.UUID][]domain.OrderItem),
	}
}

func (r *fakeOrderRepo) CreateOrder(_ context.Context, order *domain.Order, items []domain.OrderItem) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *order
	r.orders[order.ID] = &cp
	r.items[order.ID] = append([]domain.OrderItem(nil), items...)
	return nil
}

func (r *fakeOrderRepo) GetOrder(_ context.Context, id uuid.UUID) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, ErrOrderNotFound
	}
	cp := *o
	return &cp, nil
}

func (r *fakeOrderRepo) GetOrderForUser(ctx context.Context, id, userID uuid.UUID) (*domain.Order, error) {
	o, err := r.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.UserID != userID {
		return nil, ErrOrderNotFound
	}
	return o, nil
}

func (r *fakeOrderRepo) ListOrdersForUser(_ context.Context, userID uuid.UUID) ([]domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Order
	for _, o := range r.orders {
		if o.UserID == userID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (r *fakeOrderRepo) ListOrders(_ context.Context, status domain.OrderStatus) ([]domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Order
	for _, o := range r.orders {
		if status == "" || o.Status == status {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (r *fakeOrderRepo) GetOrderItems(_ context.Context, orderID uuid.UUID) ([]domain.OrderItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.OrderItem(nil), r.items[orderID]...), nil
}

func (r *fakeOrderRepo) SetPaymentIntentID(_ context.Context, orderID uuid.UUID, intentID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[orderID]
	if !ok {
		return ErrOrderNotFound
	}
	o.PaymentIntentID = intentID
	return nil
}

func (r *fakeOrderRepo) UpdateStatus(_ context.Context, orderID uuid.UUID, status domain.OrderStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[orderID]
	if !ok {
		return ErrOrderNotFound
	}
	o.Status = status
	return nil
}

func (r *fakeOrderRepo) ApplyPaymentSuccess(_ context.Context, orderID uuid.UUID, paymentType domain.PaymentMethod) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.applyErr != nil {
		err := r.applyErr
		r.applyErr = nil
		return false, err
	}
	o, ok := r.orders[orderID]
	if !ok {
		return false, ErrOrderNotFound
	}

	if paymentType == domain.PaymentPartial {
		if o.PartialPaymentReceived {
			return false, nil
		}
		o.PartialPaymentReceived = true
	} else {
		if o.Paid {
			return false, nil
		}
		o.Paid = true
		o.PartialPaymentReceived = true
	}
	if o.Status == domain.OrderStatusPending {
		o.Status = domain.OrderStatusProcessing
	}
	return true, nil
}

// fakeNotifier records notifications.
type fakeNotifier struct {
	mu    sync.Mutex
	sent  []domain.NotificationKind
	fail  error
	order []*domain.Order
}

var _ domain.OrderNotifier = (*fakeNotifier)(nil)

func (n *fakeNotifier) Notify(_ context.Context, kind domain.NotificationKind, order *domain.Order, _ []domain.OrderItem) error {
	if n.fail != nil {
		return n.fail
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, kind)
	n.order = append(n.order, order)
	return nil
}

func (n *fakeNotifier) kinds() []domain.NotificationKind {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]domain.NotificationKind(nil), n.sent...)
}

// memoryDeduper is an in-process EventDeduper.
type memoryDeduper struct {
	mu   sync.Mutex
	seen map[string]bool
	err  error
}

var _ EventDeduper = (*memoryDeduper)(nil)

func newMemoryDeduper() *memoryDeduper {
	return &memoryDeduper{seen: make(map[string]bool)}
}

func (d *memoryDeduper) Seen(_ context.Context, eventID string) (bool, error) {
	if d.err != nil {
		return false, d.err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.seen[eventID], nil
}

func (d *memoryDeduper) MarkProcessed(_ context.Context, eventID string) (bool, error) {
	if d.err != nil {
		return false, d.err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.seen[eventID] {
		return false, nil
	}
	d.seen[eventID] = true
	return true, nil
}
