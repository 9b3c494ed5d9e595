package controllers

import (
	"net/http"

	"go-shop/metrics"
	"go-shop/models"
	"go-shop/services"
	"go-shop/utils"

	"github.com/gorilla/mux"
)

// OrderController handles order-related requests
type OrderController struct {
	Ledger   *services.OrderLedger
	Users    *services.UserService
	Notifier *utils.OrderNotifier
}

// NewOrderController creates a new OrderController. users and notifier may be
// nil, in which case no emails are sent.
func NewOrderController(ledger *services.OrderLedger, users *services.UserService, notifier *utils.OrderNotifier) *OrderController {
	return &OrderController{Ledger: ledger, Users: users, Notifier: notifier}
}

// notify emails the order owner when both a user directory and a notifier
// are configured. Unknown users are skipped.
func (oc *OrderController) notify(r *http.Request, order models.Order, render func(string, models.Order) (string, string)) {
	if oc.Users == nil || oc.Notifier == nil {
		return
	}
	user, err := oc.Users.Get(r.Context(), order.UserID)
	if err != nil {
		utils.LoggerFromCtx(r.Context()).Debug("no email for order owner", "order_id", order.ID, "err", err)
		return
	}
	subject, body := render(user.Username, order)
	oc.Notifier.Send(user, subject, body)
}

// GetOrders retrieves all orders
func (oc *OrderController) GetOrders(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, oc.Ledger.List())
}

// GetOrderByID retrieves a single order
func (oc *OrderController) GetOrderByID(w http.ResponseWriter, r *http.Request) {
	order, err := oc.Ledger.Get(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

// GetOrdersByUser retrieves all orders for a user
func (oc *OrderController) GetOrdersByUser(w http.ResponseWriter, r *http.Request) {
	orders, err := oc.Ledger.ListByUser(mux.Vars(r)["userId"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

// CreateOrder creates a new order from the user's cart
func (oc *OrderController) CreateOrder(w http.ResponseWriter, r *http.Request) {
	order, err := oc.Ledger.CreateFromCart(mux.Vars(r)["userId"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	metrics.OrdersCreated.Inc()
	oc.notify(r, order, utils.OrderConfirmation)
	writeJSON(w, http.StatusCreated, order)
}

// UpdateOrderStatus allows admin to update the order status
func (oc *OrderController) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	status := models.OrderStatus(r.URL.Query().Get("status"))
	order, err := oc.Ledger.UpdateStatus(mux.Vars(r)["id"], status)
	if err != nil {
		writeError(w, r, err)
		return
	}
	metrics.OrderStatusChanges.WithLabelValues(statusLabel(status)).Inc()
	oc.notify(r, order, utils.StatusChanged)
	writeJSON(w, http.StatusOK, order)
}

// statusLabel keeps the metric label set bounded: free-text statuses are
// counted as "other".
func statusLabel(status models.OrderStatus) string {
	switch status {
	case models.OrderPending, models.OrderShipped, models.OrderDelivered, models.OrderCanceled:
		return string(status)
	default:
		return "other"
	}
}

// CancelOrder removes an order
func (oc *OrderController) CancelOrder(w http.ResponseWriter, r *http.Request) {
	if err := oc.Ledger.Cancel(mux.Vars(r)["id"]); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetOrdersByStatus lists orders with one status
func (oc *OrderController) GetOrdersByStatus(w http.ResponseWriter, r *http.Request) {
	orders, err := oc.Ledger.ListByStatus(models.OrderStatus(mux.Vars(r)["status"]))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

// GetOrderCount returns how many orders a user has placed
func (oc *OrderController) GetOrderCount(w http.ResponseWriter, r *http.Request) {
	count, err := oc.Ledger.CountByUser(mux.Vars(r)["userId"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, count)
}

// GetTotalSpent returns the sum of a user's order totals
func (oc *OrderController) GetTotalSpent(w http.ResponseWriter, r *http.Request) {
	total, err := oc.Ledger.TotalSpentByUser(mux.Vars(r)["userId"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, total)
}
