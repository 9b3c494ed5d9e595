package services

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"go-shop/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductCatalog is the authoritative in-memory product collection.
type ProductCatalog struct {
	mu       sync.RWMutex
	products []*models.Product
	log      *slog.Logger
}

// NewProductCatalog creates an empty catalog.
func NewProductCatalog(log *slog.Logger) *ProductCatalog {
	if log == nil {
		log = slog.Default()
	}
	return &ProductCatalog{log: log.With("component", "catalog")}
}

// ProductQuery narrows and orders a catalog listing. Nil fields are ignored.
type ProductQuery struct {
	Category *string
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
	SortKey  string
}

// Seed loads the demo catalog.
func (c *ProductCatalog) Seed() {
	seed := []struct {
		name, desc, category string
		price                int64
		stock                int
	}{
		{"Laptop", "High-performance laptop", "Electronics", 1200, 10},
		{"Smartphone", "Latest smartphone", "Electronics", 800, 15},
		{"Headphones", "Noise-cancelling headphones", "Electronics", 150, 20},
		{"T-Shirt", "Cotton t-shirt", "Clothing", 25, 50},
		{"Jeans", "Blue jeans", "Clothing", 45, 30},
		{"Running Shoes", "Sports running shoes", "Footwear", 95, 25},
		{"Desk Lamp", "LED desk lamp", "Home", 35, 40},
		{"Coffee Maker", "Automatic coffee maker", "Kitchen", 120, 15},
	}
	for _, s := range seed {
		_, err := c.Create(models.Product{
			Name:        s.name,
			Description: s.desc,
			Category:    s.category,
			Price:       decimal.NewFromInt(s.price),
			Stock:       s.stock,
		})
		if err != nil {
			c.log.Error("seed product", "name", s.name, "err", err)
		}
	}
	c.log.Info("catalog seeded", "count", len(seed))
}

func validateProduct(p models.Product) error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: product name is required", ErrValidation)
	}
	if p.Price.IsNegative() {
		return fmt.Errorf("%w: price cannot be negative", ErrValidation)
	}
	if p.Stock < 0 {
		return fmt.Errorf("%w: stock cannot be negative", ErrValidation)
	}
	for k, a := range p.Attributes {
		if err := a.Validate(); err != nil {
			return fmt.Errorf("%w: attribute %q: %v", ErrValidation, k, err)
		}
	}
	return nil
}

// find must be called with mu held.
func (c *ProductCatalog) find(id string) (int, *models.Product) {
	for i, p := range c.products {
		if p.ID == id {
			return i, p
		}
	}
	return -1, nil
}

// Create stores p, assigning a fresh id when p.ID is empty.
func (c *ProductCatalog) Create(p models.Product) (models.Product, error) {
	if err := validateProduct(p); err != nil {
		return models.Product{}, err
	}
	p = p.Clone()
	if p.ID == "" {
		p.ID = uuid.NewString()
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, existing := c.find(p.ID); existing != nil {
		return models.Product{}, fmt.Errorf("%w: product %s already exists", ErrConflict, p.ID)
	}
	c.products = append(c.products, &p)
	return p.Clone(), nil
}

// Get returns the product with the given id.
func (c *ProductCatalog) Get(id string) (models.Product, error) {
	if id == "" {
		return models.Product{}, fmt.Errorf("%w: product id cannot be empty", ErrValidation)
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, p := c.find(id)
	if p == nil {
		return models.Product{}, fmt.Errorf("%w: product %s", ErrNotFound, id)
	}
	return p.Clone(), nil
}

// List returns every product in insertion order.
func (c *ProductCatalog) List() []models.Product {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.collect(func(*models.Product) bool { return true })
}

// Update overwrites the mutable fields of product id with those of p.
// The id itself never changes.
func (c *ProductCatalog) Update(id string, p models.Product) (models.Product, error) {
	if id == "" {
		return models.Product{}, fmt.Errorf("%w: product id cannot be empty", ErrValidation)
	}
	if err := validateProduct(p); err != nil {
		return models.Product{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	_, existing := c.find(id)
	if existing == nil {
		return models.Product{}, fmt.Errorf("%w: product %s", ErrNotFound, id)
	}
	if p.ID != "" && p.ID != id {
		if _, other := c.find(p.ID); other != nil {
			return models.Product{}, fmt.Errorf("%w: product id %s belongs to another product", ErrConflict, p.ID)
		}
		return models.Product{}, fmt.Errorf("%w: product id cannot be changed", ErrValidation)
	}

	p = p.Clone()
	existing.Name = p.Name
	existing.Price = p.Price
	existing.Description = p.Description
	existing.Stock = p.Stock
	existing.Category = p.Category
	existing.ImageURL = p.ImageURL
	existing.Attributes = p.Attributes
	return existing.Clone(), nil
}

// Delete removes product id.
func (c *ProductCatalog) Delete(id string) error {
	if id == "" {
		return fmt.Errorf("%w: product id cannot be empty", ErrValidation)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	i, p := c.find(id)
	if p == nil {
		return fmt.Errorf("%w: product %s", ErrNotFound, id)
	}
	c.products = slices.Delete(c.products, i, i+1)
	return nil
}

// ListByCategory matches the category case-insensitively.
func (c *ProductCatalog) ListByCategory(category string) []models.Product {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.collect(func(p *models.Product) bool {
		return strings.EqualFold(p.Category, category)
	})
}

// Search matches query as a case-insensitive substring of name or description.
func (c *ProductCatalog) Search(query string) []models.Product {
	q := strings.ToLower(query)
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.collect(func(p *models.Product) bool {
		return strings.Contains(strings.ToLower(p.Name), q) ||
			strings.Contains(strings.ToLower(p.Description), q)
	})
}

// AdjustStock adds delta to the product's stock. A result below zero is
// rejected and leaves the stock untouched.
func (c *ProductCatalog) AdjustStock(id string, delta int) (models.Product, error) {
	if id == "" {
		return models.Product{}, fmt.Errorf("%w: product id cannot be empty", ErrValidation)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	_, p := c.find(id)
	if p == nil {
		return models.Product{}, fmt.Errorf("%w: product %s", ErrNotFound, id)
	}
	if p.Stock+delta < 0 {
		return models.Product{}, fmt.Errorf("%w: insufficient stock for %s (have %d, delta %d)",
			ErrValidation, p.Name, p.Stock, delta)
	}
	p.Stock += delta
	return p.Clone(), nil
}

// Categories returns the distinct categories, sorted.
func (c *ProductCatalog) Categories() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	seen := make(map[string]struct{})
	out := []string{}
	for _, p := range c.products {
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		out = append(out, p.Category)
	}
	slices.Sort(out)
	return out
}

// FilterByPriceRange returns products priced within [lo, hi].
func (c *ProductCatalog) FilterByPriceRange(lo, hi decimal.Decimal) []models.Product {
	return c.FilterAndSort(ProductQuery{MinPrice: &lo, MaxPrice: &hi})
}

// FilterAndSort applies the optional category and price filters of q and then
// sorts by q.SortKey. An unknown sort field leaves the filtered order as is.
func (c *ProductCatalog) FilterAndSort(q ProductQuery) []models.Product {
	c.mu.RLock()
	out := c.collect(func(p *models.Product) bool {
		if q.Category != nil && !strings.EqualFold(p.Category, *q.Category) {
			return false
		}
		if q.MinPrice != nil && p.Price.LessThan(*q.MinPrice) {
			return false
		}
		if q.MaxPrice != nil && p.Price.GreaterThan(*q.MaxPrice) {
			return false
		}
		return true
	})
	c.mu.RUnlock()

	if cmp := ParseSortKey(q.SortKey).compare(); cmp != nil {
		slices.SortStableFunc(out, cmp)
	}
	return out
}

// collect must be called with mu held.
func (c *ProductCatalog) collect(keep func(*models.Product) bool) []models.Product {
	out := []models.Product{}
	for _, p := range c.products {
		if keep(p) {
			out = append(out, p.Clone())
		}
	}
	return out
}

// SortKey is a parsed "<field>_<direction>" listing order.
type SortKey struct {
	Field      string
	Descending bool
}

// ParseSortKey parses keys such as "price_desc" or "name". The direction
// defaults to ascending.
func ParseSortKey(raw string) SortKey {
	raw = strings.ToLower(strings.TrimSpace(raw))
	field, dir, found := strings.Cut(raw, "_")
	if !found {
		return SortKey{Field: field}
	}
	return SortKey{Field: field, Descending: dir == "desc"}
}

func (k SortKey) compare() func(a, b models.Product) int {
	var cmp func(a, b models.Product) int
	switch k.Field {
	case "name":
		cmp = func(a, b models.Product) int {
			return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
		}
	case "price":
		cmp = func(a, b models.Product) int { return a.Price.Cmp(b.Price) }
	default:
		return nil
	}
	if k.Descending {
		return func(a, b models.Product) int { return cmp(b, a) }
	}
	return cmp
}
