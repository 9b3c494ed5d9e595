package controllers

import (
	"net/http"

	"go-shop/metrics"
	"go-shop/services"

	"github.com/gorilla/mux"
)

// CartController handles cart-related requests
type CartController struct {
	Carts *services.CartService
}

// NewCartController creates a new CartController
func NewCartController(carts *services.CartService) *CartController {
	return &CartController{Carts: carts}
}

// GetCart retrieves the user's cart
func (cc *CartController) GetCart(w http.ResponseWriter, r *http.Request) {
	cart, err := cc.Carts.Get(mux.Vars(r)["userId"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cart)
}

// CreateCart returns the user's cart, creating an empty one if needed
func (cc *CartController) CreateCart(w http.ResponseWriter, r *http.Request) {
	cart, err := cc.Carts.GetOrCreate(mux.Vars(r)["userId"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cart)
}

// AddToCart adds a product to the user's cart
func (cc *CartController) AddToCart(w http.ResponseWriter, r *http.Request) {
	quantity, err := intParam(r, "quantity")
	if err != nil {
		writeError(w, r, err)
		return
	}
	cart, err := cc.Carts.AddItem(mux.Vars(r)["userId"], r.URL.Query().Get("productId"), quantity)
	if err != nil {
		writeError(w, r, err)
		return
	}
	metrics.CartItemsAdded.Add(float64(quantity))
	writeJSON(w, http.StatusOK, cart)
}

// UpdateCartItem sets the quantity of one line
func (cc *CartController) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	quantity, err := intParam(r, "quantity")
	if err != nil {
		writeError(w, r, err)
		return
	}
	vars := mux.Vars(r)
	cart, err := cc.Carts.UpdateItemQuantity(vars["userId"], vars["productId"], quantity)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cart)
}

// RemoveFromCart removes a product from the user's cart
func (cc *CartController) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	cart, err := cc.Carts.RemoveItem(vars["userId"], vars["productId"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cart)
}

// ClearCart empties the user's cart
func (cc *CartController) ClearCart(w http.ResponseWriter, r *http.Request) {
	cart, err := cc.Carts.Clear(mux.Vars(r)["userId"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cart)
}

// GetCartSize returns the number of distinct lines
func (cc *CartController) GetCartSize(w http.ResponseWriter, r *http.Request) {
	size, err := cc.Carts.Size(mux.Vars(r)["userId"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, size)
}

// GetCartTotal returns the cart total
func (cc *CartController) GetCartTotal(w http.ResponseWriter, r *http.Request) {
	total, err := cc.Carts.Total(mux.Vars(r)["userId"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, total)
}
