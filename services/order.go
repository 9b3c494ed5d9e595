package services

import (
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"go-shop/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartReader gives the ledger read access to carts.
type CartReader interface {
	Get(userID string) (models.Cart, error)
}

// StatusPolicy decides whether an order may move from one status to another.
type StatusPolicy func(from, to models.OrderStatus) bool

// PermissiveStatus accepts any transition.
func PermissiveStatus(_, _ models.OrderStatus) bool { return true }

var strictTransitions = map[models.OrderStatus][]models.OrderStatus{
	models.OrderPending: {models.OrderShipped, models.OrderCanceled},
	models.OrderShipped: {models.OrderDelivered, models.OrderCanceled},
}

// StrictStatus only allows the forward lifecycle
// PENDING -> SHIPPED -> DELIVERED, with cancellation before delivery.
// Re-applying the current status is always allowed.
func StrictStatus(from, to models.OrderStatus) bool {
	if from == to {
		return true
	}
	return slices.Contains(strictTransitions[from], to)
}

// OrderLedger is the authoritative in-memory order collection.
type OrderLedger struct {
	mu     sync.RWMutex
	orders map[string]*models.Order
	seq    []string // insertion order of ids
	carts  CartReader
	policy StatusPolicy
	now    func() time.Time
	newID  func() string
	log    *slog.Logger
}

// LedgerOption configures an OrderLedger.
type LedgerOption func(*OrderLedger)

// WithStatusPolicy replaces the default permissive status policy.
func WithStatusPolicy(p StatusPolicy) LedgerOption {
	return func(l *OrderLedger) { l.policy = p }
}

// WithClock sets the clock used to stamp CreatedAt.
func WithClock(now func() time.Time) LedgerOption {
	return func(l *OrderLedger) { l.now = now }
}

// WithIDGenerator sets the order id generator.
func WithIDGenerator(gen func() string) LedgerOption {
	return func(l *OrderLedger) { l.newID = gen }
}

// NewOrderLedger creates an empty ledger reading carts from carts.
func NewOrderLedger(carts CartReader, log *slog.Logger, opts ...LedgerOption) *OrderLedger {
	if log == nil {
		log = slog.Default()
	}
	l := &OrderLedger{
		orders: make(map[string]*models.Order),
		carts:  carts,
		policy: PermissiveStatus,
		now:    time.Now,
		newID:  uuid.NewString,
		log:    log.With("component", "orders"),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func requireOrderID(id string) error {
	if id == "" {
		return fmt.Errorf("%w: order id cannot be empty", ErrValidation)
	}
	return nil
}

// CreateFromCart snapshots the user's cart into a new PENDING order.
// An empty cart yields an empty order with a zero total. The cart itself is
// left as it is.
func (l *OrderLedger) CreateFromCart(userID string) (models.Order, error) {
	if err := requireUser(userID); err != nil {
		return models.Order{}, err
	}
	cart, err := l.carts.Get(userID)
	if err != nil {
		return models.Order{}, err
	}
	items := make([]models.OrderItem, len(cart.Items))
	copy(items, cart.Items)
	order := &models.Order{
		ID:          l.newID(),
		UserID:      userID,
		Items:       items,
		TotalAmount: models.SumItems(items),
		Status:      models.OrderPending,
		CreatedAt:   l.now().UTC(),
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if _, dup := l.orders[order.ID]; dup {
		return models.Order{}, fmt.Errorf("%w: order %s already exists", ErrConflict, order.ID)
	}
	l.orders[order.ID] = order
	l.seq = append(l.seq, order.ID)
	l.log.Info("order created", "order_id", order.ID, "user_id", userID, "total", order.TotalAmount.String())
	return order.Clone(), nil
}

// Get returns order id.
func (l *OrderLedger) Get(id string) (models.Order, error) {
	if err := requireOrderID(id); err != nil {
		return models.Order{}, err
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	o, ok := l.orders[id]
	if !ok {
		return models.Order{}, fmt.Errorf("%w: order %s", ErrNotFound, id)
	}
	return o.Clone(), nil
}

// List returns every order in creation order.
func (l *OrderLedger) List() []models.Order {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.collect(func(*models.Order) bool { return true })
}

// ListByUser returns the user's orders; no orders is an empty list.
func (l *OrderLedger) ListByUser(userID string) ([]models.Order, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.collect(func(o *models.Order) bool { return o.UserID == userID }), nil
}

// ListByStatus returns orders whose status matches exactly. Unlike
// ListByUser, an empty result is reported as ErrNotFound.
func (l *OrderLedger) ListByStatus(status models.OrderStatus) ([]models.Order, error) {
	if status == "" {
		return nil, fmt.Errorf("%w: order status cannot be empty", ErrValidation)
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := l.collect(func(o *models.Order) bool { return o.Status == status })
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: no orders with status %s", ErrNotFound, status)
	}
	return out, nil
}

// UpdateStatus overwrites the order status. Lines and total never change.
func (l *OrderLedger) UpdateStatus(id string, status models.OrderStatus) (models.Order, error) {
	if err := requireOrderID(id); err != nil {
		return models.Order{}, err
	}
	if status == "" {
		return models.Order{}, fmt.Errorf("%w: order status cannot be empty", ErrValidation)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	o, ok := l.orders[id]
	if !ok {
		return models.Order{}, fmt.Errorf("%w: order %s", ErrNotFound, id)
	}
	if !l.policy(o.Status, status) {
		return models.Order{}, fmt.Errorf("%w: order %s cannot move from %s to %s", ErrConflict, id, o.Status, status)
	}
	prev := o.Status
	o.Status = status
	l.log.Info("order status changed", "order_id", id, "from", prev, "to", status)
	return o.Clone(), nil
}

// Cancel removes the order from the ledger entirely.
func (l *OrderLedger) Cancel(id string) error {
	if err := requireOrderID(id); err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.orders[id]; !ok {
		return fmt.Errorf("%w: order %s", ErrNotFound, id)
	}
	delete(l.orders, id)
	l.seq = slices.DeleteFunc(l.seq, func(s string) bool { return s == id })
	l.log.Info("order canceled", "order_id", id)
	return nil
}

// CountByUser is the number of orders the user has placed.
func (l *OrderLedger) CountByUser(userID string) (int, error) {
	orders, err := l.ListByUser(userID)
	if err != nil {
		return 0, err
	}
	return len(orders), nil
}

// TotalSpentByUser sums the totals of the user's orders.
func (l *OrderLedger) TotalSpentByUser(userID string) (decimal.Decimal, error) {
	orders, err := l.ListByUser(userID)
	if err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, o := range orders {
		total = total.Add(o.TotalAmount)
	}
	return total, nil
}

// collect must be called with mu held.
func (l *OrderLedger) collect(keep func(*models.Order) bool) []models.Order {
	out := []models.Order{}
	for _, id := range l.seq {
		if o := l.orders[id]; keep(o) {
			out = append(out, o.Clone())
		}
	}
	return out
}
