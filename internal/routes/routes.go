// Package routes wires the HTTP surface: middleware chain, API routes, and
// the operational endpoints.
package routes

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/greenseam/storefront/internal/handler/storefront"
	"github.com/greenseam/storefront/internal/middleware"
)

// Deps contains the handlers and middleware the router mounts.
type Deps struct {
	Logger  *slog.Logger
	Metrics *middleware.Metrics

	Products *storefront.ProductHandler
	Cart     *storefront.CartHandler
	Checkout *storefront.CheckoutHandler
	Orders   *storefront.OrderHandler
	Wishlist *storefront.WishlistHandler
	Reviews  *storefront.ReviewHandler
}

// New builds the router with the full middleware chain.
func New(deps Deps) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.WithRequestLogger(deps.Logger))
	r.Use(middleware.RequestLogging(deps.Logger))
	r.Use(middleware.Recovery(deps.Logger))
	if deps.Metrics != nil {
		r.Use(deps.Metrics.Middleware)
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	if deps.Metrics != nil {
		r.Handle("/metrics", deps.Metrics.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		// Catalog
		r.Get("/products", deps.Products.List)
		r.Get("/products/{id}", deps.Products.Detail)
		r.Get("/products/{id}/reviews", deps.Reviews.List)
		r.Post("/products/{id}/reviews", deps.Reviews.Create)

		// Cart
		r.Get("/cart", deps.Cart.View)
		r.Delete("/cart", deps.Cart.Clear)
		r.Post("/cart/items", deps.Cart.Add)
		r.Put("/cart/items", deps.Cart.Update)
		r.Delete("/cart/items", deps.Cart.Remove)
		r.Post("/cart/toggle", deps.Cart.ToggleVisibility)

		// Checkout flow
		r.Post("/checkout", deps.Checkout.Begin)
		r.Get("/checkout", deps.Checkout.State)
		r.Post("/checkout/shipping", deps.Checkout.SubmitShipping)
		r.Post("/checkout/suggestion", deps.Checkout.ResolveSuggestion)
		r.Post("/checkout/payment", deps.Checkout.SubmitPayment)
		r.Post("/checkout/back", deps.Checkout.Back)
		r.Post("/checkout/place-order", deps.Checkout.PlaceOrder)

		// Orders
		r.Get("/orders", deps.Orders.List)
		r.Get("/orders/{number}", deps.Orders.Detail)

		// Wishlist
		r.Get("/wishlist", deps.Wishlist.List)
		r.Post("/wishlist", deps.Wishlist.Add)
		r.Delete("/wishlist/{id}", deps.Wishlist.Remove)
	})

	return r
}
