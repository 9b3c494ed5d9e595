package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is free text; the constants below are the statuses the shop
// itself uses.
type OrderStatus string

const (
	OrderPending   OrderStatus = "PENDING"
	OrderShipped   OrderStatus = "SHIPPED"
	OrderDelivered OrderStatus = "DELIVERED"
	OrderCanceled  OrderStatus = "CANCELED"
)

// OrderItem has the same shape as a cart line, copied when the order is placed.
type OrderItem = CartItem

// Order represents a user's order
type Order struct {
	ID          string          `json:"id"`
	UserID      string          `json:"userId"`
	Items       []OrderItem     `json:"items"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	Status      OrderStatus     `json:"status"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// Clone returns a copy whose item slice is not shared with o.
func (o *Order) Clone() Order {
	out := *o
	out.Items = make([]OrderItem, len(o.Items))
	copy(out.Items, o.Items)
	return out
}
