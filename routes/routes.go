package routes

import (
	"net/http"

	"go-shop/controllers"
	"go-shop/metrics"
	"go-shop/middleware"

	"github.com/gorilla/mux"
)

// Controllers groups the handlers mounted by RegisterRoutes.
type Controllers struct {
	Users    *controllers.UserController
	Products *controllers.ProductController
	Carts    *controllers.CartController
	Orders   *controllers.OrderController
}

// RegisterRoutes sets up all the routes for the application
func RegisterRoutes(router *mux.Router, c Controllers, auth *middleware.Auth) {
	authed := func(h http.HandlerFunc) http.Handler {
		return auth.AuthMiddleware(h)
	}
	admin := func(h http.HandlerFunc) http.Handler {
		return auth.AuthMiddleware(auth.AdminMiddleware(h))
	}

	router.Use(metrics.Middleware)

	router.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)
	router.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}).Methods(http.MethodGet)

	api := router.PathPrefix("/api").Subrouter()

	// Product routes; literal paths before /{id}
	products := api.PathPrefix("/products").Subrouter()
	products.HandleFunc("", c.Products.GetProducts).Methods(http.MethodGet)
	products.Handle("", admin(c.Products.CreateProduct)).Methods(http.MethodPost)
	products.HandleFunc("/categories", c.Products.GetCategories).Methods(http.MethodGet)
	products.HandleFunc("/search", c.Products.SearchProducts).Methods(http.MethodGet)
	products.HandleFunc("/price-range", c.Products.GetByPriceRange).Methods(http.MethodGet)
	products.HandleFunc("/category/{category}", c.Products.GetProductsByCategory).Methods(http.MethodGet)
	products.HandleFunc("/{id}", c.Products.GetProductByID).Methods(http.MethodGet)
	products.Handle("/{id}", admin(c.Products.UpdateProduct)).Methods(http.MethodPut)
	products.Handle("/{id}", admin(c.Products.DeleteProduct)).Methods(http.MethodDelete)
	products.Handle("/{id}/stock", admin(c.Products.UpdateStock)).Methods(http.MethodPatch)

	// Cart routes
	carts := api.PathPrefix("/carts/{userId}").Subrouter()
	carts.HandleFunc("", c.Carts.GetCart).Methods(http.MethodGet)
	carts.HandleFunc("", c.Carts.CreateCart).Methods(http.MethodPost)
	carts.HandleFunc("", c.Carts.ClearCart).Methods(http.MethodDelete)
	carts.HandleFunc("/items", c.Carts.AddToCart).Methods(http.MethodPost)
	carts.HandleFunc("/items/{productId}", c.Carts.UpdateCartItem).Methods(http.MethodPut)
	carts.HandleFunc("/items/{productId}", c.Carts.RemoveFromCart).Methods(http.MethodDelete)
	carts.HandleFunc("/size", c.Carts.GetCartSize).Methods(http.MethodGet)
	carts.HandleFunc("/total", c.Carts.GetCartTotal).Methods(http.MethodGet)

	// Order routes
	orders := api.PathPrefix("/orders").Subrouter()
	orders.HandleFunc("", c.Orders.GetOrders).Methods(http.MethodGet)
	orders.HandleFunc("/status/{status}", c.Orders.GetOrdersByStatus).Methods(http.MethodGet)
	orders.HandleFunc("/user/{userId}", c.Orders.GetOrdersByUser).Methods(http.MethodGet)
	orders.HandleFunc("/user/{userId}", c.Orders.CreateOrder).Methods(http.MethodPost)
	orders.HandleFunc("/user/{userId}/count", c.Orders.GetOrderCount).Methods(http.MethodGet)
	orders.HandleFunc("/user/{userId}/total-spent", c.Orders.GetTotalSpent).Methods(http.MethodGet)
	orders.HandleFunc("/{id}", c.Orders.GetOrderByID).Methods(http.MethodGet)
	orders.HandleFunc("/{id}", c.Orders.CancelOrder).Methods(http.MethodDelete)
	orders.Handle("/{id}/status", admin(c.Orders.UpdateOrderStatus)).Methods(http.MethodPatch)

	// User routes
	users := api.PathPrefix("/users").Subrouter()
	users.HandleFunc("", c.Users.GetUsers).Methods(http.MethodGet)
	users.HandleFunc("", c.Users.Register).Methods(http.MethodPost)
	users.HandleFunc("/login", c.Users.Login).Methods(http.MethodPost)
	users.HandleFunc("/username/{username}", c.Users.GetUserByUsername).Methods(http.MethodGet)
	users.HandleFunc("/email/{email}", c.Users.GetUserByEmail).Methods(http.MethodGet)
	users.HandleFunc("/{id}", c.Users.GetUserByID).Methods(http.MethodGet)
	users.Handle("/{id}", authed(c.Users.UpdateUser)).Methods(http.MethodPut)
	users.Handle("/{id}", authed(c.Users.DeleteUser)).Methods(http.MethodDelete)
}
