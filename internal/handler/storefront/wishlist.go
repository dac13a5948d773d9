package storefront

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/greenseam/storefront/internal/domain"
	"github.com/greenseam/storefront/internal/identity"
	"github.com/greenseam/storefront/internal/telemetry"
	"github.com/greenseam/storefront/internal/wishlist"
)

// WishlistHandler serves the saved-products routes.
type WishlistHandler struct {
	wishlist *wishlist.Service
	identity identity.Provider
	metrics  *telemetry.BusinessMetrics
}

// NewWishlistHandler creates a wishlist handler.
func NewWishlistHandler(svc *wishlist.Service, provider identity.Provider, metrics *telemetry.BusinessMetrics) *WishlistHandler {
	return &WishlistHandler{wishlist: svc, identity: provider, metrics: metrics}
}

func (h *WishlistHandler) currentUser(r *http.Request) *identity.User {
	if h.identity == nil {
		return nil
	}
	return h.identity.Current(r.Context())
}

// List handles GET /api/wishlist.
func (h *WishlistHandler) List(w http.ResponseWriter, r *http.Request) {
	user := h.currentUser(r)
	if user == nil {
		respondError(w, r, domain.Unauthorized("wishlist.list", "Authentication required"))
		return
	}

	ids, err := h.wishlist.List(r.Context(), user.ID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if ids == nil {
		ids = []int64{}
	}
	respondJSON(w, http.StatusOK, map[string]any{"product_ids": ids})
}

type wishlistAddRequest struct {
	ProductID int64 `json:"product_id"`
}

// Add handles POST /api/wishlist. Adding a product twice succeeds.
func (h *WishlistHandler) Add(w http.ResponseWriter, r *http.Request) {
	user := h.currentUser(r)
	if user == nil {
		respondError(w, r, domain.Unauthorized("wishlist.add", "Authentication required"))
		return
	}

	var req wishlistAddRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	if err := h.wishlist.Add(r.Context(), user.ID, req.ProductID); err != nil {
		respondError(w, r, err)
		return
	}

	h.metrics.WishlistAdds.Inc()
	respondJSON(w, http.StatusOK, map[string]string{"status": "saved"})
}

// Remove handles DELETE /api/wishlist/{id}.
func (h *WishlistHandler) Remove(w http.ResponseWriter, r *http.Request) {
	user := h.currentUser(r)
	if user == nil {
		respondError(w, r, domain.Unauthorized("wishlist.remove", "Authentication required"))
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, r, domain.Invalid("wishlist.remove", "Invalid product ID"))
		return
	}

	if err := h.wishlist.Remove(r.Context(), user.ID, id); err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "removed"})
}
