package models

import "github.com/shopspring/decimal"

// CartItem is one product line in a cart. Name and price are snapshots taken
// when the product was first added.
type CartItem struct {
	ProductID   string          `json:"productId"`
	ProductName string          `json:"productName"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
}

// Subtotal is price times quantity.
func (i CartItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Cart represents a user's shopping cart
type Cart struct {
	UserID      string          `json:"userId"`
	Items       []CartItem      `json:"items"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
}

// NewCart returns an empty cart owned by userID.
func NewCart(userID string) *Cart {
	return &Cart{UserID: userID, Items: []CartItem{}}
}

// Recalculate re-sums every line into TotalAmount.
func (c *Cart) Recalculate() {
	c.TotalAmount = SumItems(c.Items)
}

// Line returns the index of the line for productID, or -1.
func (c *Cart) Line(productID string) int {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

// Clone returns a copy whose item slice is not shared with c.
func (c *Cart) Clone() Cart {
	out := *c
	out.Items = make([]CartItem, len(c.Items))
	copy(out.Items, c.Items)
	return out
}

// SumItems adds up the subtotals of items.
func SumItems(items []CartItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Subtotal())
	}
	return total
}
