package storefront

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/greenseam/storefront/internal/domain"
	"github.com/greenseam/storefront/internal/identity"
	"github.com/greenseam/storefront/internal/order"
)

// OrderHandler serves order lookup routes.
type OrderHandler struct {
	orders   *order.Service
	identity identity.Provider
}

// NewOrderHandler creates an order handler.
func NewOrderHandler(orders *order.Service, provider identity.Provider) *OrderHandler {
	return &OrderHandler{orders: orders, identity: provider}
}

// Detail handles GET /api/orders/{number}.
func (h *OrderHandler) Detail(w http.ResponseWriter, r *http.Request) {
	number := chi.URLParam(r, "number")
	if number == "" {
		respondError(w, r, domain.Invalid("order.detail", "Missing order number"))
		return
	}

	ord, err := h.orders.GetByNumber(r.Context(), number)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, ord)
}

// List handles GET /api/orders, newest first, for the authenticated user.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	user := h.currentUser(r)
	if user == nil {
		respondError(w, r, domain.Unauthorized("order.list", "Authentication required"))
		return
	}

	orders, err := h.orders.ListByEmail(r.Context(), user.Email)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"orders": orders})
}

func (h *OrderHandler) currentUser(r *http.Request) *identity.User {
	if h.identity == nil {
		return nil
	}
	return h.identity.Current(r.Context())
}
