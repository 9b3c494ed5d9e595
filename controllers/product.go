package controllers

import (
	"net/http"

	"go-shop/models"
	"go-shop/services"

	"github.com/gorilla/mux"
)

// ProductController handles product-related requests
type ProductController struct {
	Catalog *services.ProductCatalog
}

// NewProductController creates a new ProductController
func NewProductController(catalog *services.ProductCatalog) *ProductController {
	return &ProductController{Catalog: catalog}
}

// GetProducts lists products. Any of category, minPrice, maxPrice or sortBy
// switches to the filtered and sorted listing.
func (pc *ProductController) GetProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if !q.Has("category") && !q.Has("minPrice") && !q.Has("maxPrice") && !q.Has("sortBy") {
		writeJSON(w, http.StatusOK, pc.Catalog.List())
		return
	}

	var query services.ProductQuery
	if c := q.Get("category"); c != "" {
		query.Category = &c
	}
	var err error
	if query.MinPrice, err = decimalParam(r, "minPrice"); err != nil {
		writeError(w, r, err)
		return
	}
	if query.MaxPrice, err = decimalParam(r, "maxPrice"); err != nil {
		writeError(w, r, err)
		return
	}
	query.SortKey = q.Get("sortBy")
	writeJSON(w, http.StatusOK, pc.Catalog.FilterAndSort(query))
}

// GetProductByID retrieves a single product by ID
func (pc *ProductController) GetProductByID(w http.ResponseWriter, r *http.Request) {
	product, err := pc.Catalog.Get(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

// CreateProduct handles adding a new product (Admin only)
func (pc *ProductController) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var product models.Product
	if err := decodeBody(r, &product); err != nil {
		writeError(w, r, err)
		return
	}
	created, err := pc.Catalog.Create(product)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// UpdateProduct handles updating a product (Admin only)
func (pc *ProductController) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	var product models.Product
	if err := decodeBody(r, &product); err != nil {
		writeError(w, r, err)
		return
	}
	updated, err := pc.Catalog.Update(mux.Vars(r)["id"], product)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// DeleteProduct handles deleting a product (Admin only)
func (pc *ProductController) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := pc.Catalog.Delete(mux.Vars(r)["id"]); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetProductsByCategory lists one category.
func (pc *ProductController) GetProductsByCategory(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, pc.Catalog.ListByCategory(mux.Vars(r)["category"]))
}

// SearchProducts matches the query against names and descriptions.
func (pc *ProductController) SearchProducts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, pc.Catalog.Search(r.URL.Query().Get("query")))
}

// UpdateStock adds the quantity parameter (possibly negative) to the stock (Admin only)
func (pc *ProductController) UpdateStock(w http.ResponseWriter, r *http.Request) {
	delta, err := intParam(r, "quantity")
	if err != nil {
		writeError(w, r, err)
		return
	}
	product, err := pc.Catalog.AdjustStock(mux.Vars(r)["id"], delta)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

// GetCategories lists the distinct categories.
func (pc *ProductController) GetCategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, pc.Catalog.Categories())
}

// GetByPriceRange lists products priced within [min, max].
func (pc *ProductController) GetByPriceRange(w http.ResponseWriter, r *http.Request) {
	lo, err := decimalParam(r, "min")
	if err != nil {
		writeError(w, r, err)
		return
	}
	hi, err := decimalParam(r, "max")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if lo == nil || hi == nil {
		writeError(w, r, badParam("price range", errMissingBounds))
		return
	}
	writeJSON(w, http.StatusOK, pc.Catalog.FilterByPriceRange(*lo, *hi))
}
