package services

import (
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"go-shop/models"

	"github.com/shopspring/decimal"
)

// ProductLookup resolves products for cart lines.
type ProductLookup interface {
	Get(id string) (models.Product, error)
}

// CartService keeps one cart per user.
type CartService struct {
	mu       sync.RWMutex
	carts    map[string]*models.Cart
	products ProductLookup
	log      *slog.Logger
}

// NewCartService creates a cart service resolving products through products.
func NewCartService(products ProductLookup, log *slog.Logger) *CartService {
	if log == nil {
		log = slog.Default()
	}
	return &CartService{
		carts:    make(map[string]*models.Cart),
		products: products,
		log:      log.With("component", "cart"),
	}
}

func requireUser(userID string) error {
	if userID == "" {
		return fmt.Errorf("%w: user id cannot be empty", ErrValidation)
	}
	return nil
}

// cart must be called with mu held.
func (s *CartService) cart(userID string) (*models.Cart, error) {
	c, ok := s.carts[userID]
	if !ok {
		return nil, fmt.Errorf("%w: cart for user %s", ErrNotFound, userID)
	}
	return c, nil
}

// GetOrCreate returns the user's cart, creating an empty one if needed.
func (s *CartService) GetOrCreate(userID string) (models.Cart, error) {
	if err := requireUser(userID); err != nil {
		return models.Cart{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.carts[userID]
	if !ok {
		c = models.NewCart(userID)
		s.carts[userID] = c
	}
	return c.Clone(), nil
}

// Get returns the user's cart.
func (s *CartService) Get(userID string) (models.Cart, error) {
	if err := requireUser(userID); err != nil {
		return models.Cart{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, err := s.cart(userID)
	if err != nil {
		return models.Cart{}, err
	}
	return c.Clone(), nil
}

// AddItem adds quantity units of productID. An existing line keeps its price
// and name snapshot and only grows in quantity.
func (s *CartService) AddItem(userID, productID string, quantity int) (models.Cart, error) {
	if err := requireUser(userID); err != nil {
		return models.Cart{}, err
	}
	if productID == "" {
		return models.Cart{}, fmt.Errorf("%w: product id cannot be empty", ErrValidation)
	}
	if quantity <= 0 {
		return models.Cart{}, fmt.Errorf("%w: quantity must be greater than zero", ErrValidation)
	}
	product, err := s.products.Get(productID)
	if err != nil {
		return models.Cart{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.carts[userID]
	if !ok {
		c = models.NewCart(userID)
		s.carts[userID] = c
	}
	if i := c.Line(productID); i >= 0 {
		c.Items[i].Quantity += quantity
	} else {
		c.Items = append(c.Items, models.CartItem{
			ProductID:   product.ID,
			ProductName: product.Name,
			Quantity:    quantity,
			Price:       product.Price,
		})
	}
	c.Recalculate()
	s.log.Debug("item added", "user_id", userID, "product_id", productID, "quantity", quantity)
	return c.Clone(), nil
}

// UpdateItemQuantity sets the quantity of an existing line. Zero is allowed
// and keeps the line.
func (s *CartService) UpdateItemQuantity(userID, productID string, quantity int) (models.Cart, error) {
	if err := requireUser(userID); err != nil {
		return models.Cart{}, err
	}
	if productID == "" {
		return models.Cart{}, fmt.Errorf("%w: product id cannot be empty", ErrValidation)
	}
	if quantity < 0 {
		return models.Cart{}, fmt.Errorf("%w: quantity cannot be negative", ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	c, err := s.cart(userID)
	if err != nil {
		return models.Cart{}, err
	}
	i := c.Line(productID)
	if i < 0 {
		return models.Cart{}, fmt.Errorf("%w: product %s is not in the cart", ErrNotFound, productID)
	}
	c.Items[i].Quantity = quantity
	c.Recalculate()
	return c.Clone(), nil
}

// RemoveItem drops the line for productID. Removing an absent line is a no-op.
func (s *CartService) RemoveItem(userID, productID string) (models.Cart, error) {
	if err := requireUser(userID); err != nil {
		return models.Cart{}, err
	}
	if productID == "" {
		return models.Cart{}, fmt.Errorf("%w: product id cannot be empty", ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	c, err := s.cart(userID)
	if err != nil {
		return models.Cart{}, err
	}
	c.Items = slices.DeleteFunc(c.Items, func(it models.CartItem) bool {
		return it.ProductID == productID
	})
	c.Recalculate()
	return c.Clone(), nil
}

// Clear empties the cart.
func (s *CartService) Clear(userID string) (models.Cart, error) {
	if err := requireUser(userID); err != nil {
		return models.Cart{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c, err := s.cart(userID)
	if err != nil {
		return models.Cart{}, err
	}
	c.Items = []models.CartItem{}
	c.TotalAmount = decimal.Zero
	return c.Clone(), nil
}

// Size is the number of distinct lines, not the sum of quantities.
func (s *CartService) Size(userID string) (int, error) {
	c, err := s.Get(userID)
	if err != nil {
		return 0, err
	}
	return len(c.Items), nil
}

// Total is the cart's current total amount.
func (s *CartService) Total(userID string) (decimal.Decimal, error) {
	c, err := s.Get(userID)
	if err != nil {
		return decimal.Zero, err
	}
	return c.TotalAmount, nil
}
