package storefront

import (
	"net/http"

	"github.com/greenseam/storefront/internal/cart"
	"github.com/greenseam/storefront/internal/domain"
	"github.com/greenseam/storefront/internal/pricing"
	"github.com/greenseam/storefront/internal/telemetry"
)

// CartHandler serves the cart routes.
type CartHandler struct {
	carts   *cart.Manager
	catalog domain.Catalog
	metrics *telemetry.BusinessMetrics
	secure  bool
}

// NewCartHandler creates a cart handler.
func NewCartHandler(carts *cart.Manager, catalog domain.Catalog, metrics *telemetry.BusinessMetrics, secure bool) *CartHandler {
	return &CartHandler{
		carts:   carts,
		catalog: catalog,
		metrics: metrics,
		secure:  secure,
	}
}

// cartLineView is one cart line as rendered to the client.
type cartLineView struct {
	Key            cart.Key      `json:"key"`
	Quantity       int64         `json:"quantity"`
	Product        cart.Snapshot `json:"product"`
	EffectivePrice string        `json:"effective_price"`
	LineTotal      string        `json:"line_total"`
}

// cartView is the cart response body. Money is rendered as fixed two-decimal
// strings.
type cartView struct {
	Items          []cartLineView `json:"items"`
	TotalItemCount int64          `json:"total_item_count"`
	Subtotal       string         `json:"subtotal"`
	Visible        bool           `json:"visible"`
}

func newCartView(summary *cart.Summary, visible bool) cartView {
	items := make([]cartLineView, len(summary.Items))
	for i, li := range summary.Items {
		items[i] = cartLineView{
			Key:            li.Key,
			Quantity:       li.Quantity,
			Product:        li.Product,
			EffectivePrice: pricing.Display(li.EffectivePrice()),
			LineTotal:      pricing.Display(li.LineTotal()),
		}
	}
	return cartView{
		Items:          items,
		TotalItemCount: summary.TotalItemCount,
		Subtotal:       pricing.Display(summary.Subtotal),
		Visible:        visible,
	}
}

// View handles GET /api/cart.
func (h *CartHandler) View(w http.ResponseWriter, r *http.Request) {
	store := h.carts.Get(r.Context(), GetSessionIDFromCookie(r))
	if store == nil {
		respondJSON(w, http.StatusOK, cartView{Items: []cartLineView{}, Subtotal: "0.00"})
		return
	}
	respondJSON(w, http.StatusOK, newCartView(store.Summary(), store.Visible()))
}

type addItemRequest struct {
	ProductID int64  `json:"product_id"`
	Quantity  int64  `json:"quantity"`
	Color     string `json:"color,omitempty"`
	Size      string `json:"size,omitempty"`
}

// Add handles POST /api/cart/items.
func (h *CartHandler) Add(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req addItemRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	product, err := h.catalog.GetProduct(ctx, req.ProductID)
	if err != nil {
		respondError(w, r, err)
		return
	}

	sessionID := GetSessionIDFromCookie(r)
	store, newSessionID := h.carts.GetOrCreate(ctx, sessionID)
	if newSessionID != sessionID {
		SetSessionCookie(w, newSessionID, h.secure)
	}

	summary, err := store.AddItem(ctx, product, req.Quantity, req.Color, req.Size)
	if err != nil {
		respondError(w, r, err)
		return
	}

	h.metrics.CartItemsAdded.Inc()
	respondJSON(w, http.StatusOK, newCartView(summary, store.Visible()))
}

type updateItemRequest struct {
	Key      cart.Key `json:"key"`
	Quantity int64    `json:"quantity"`
}

// Update handles PUT /api/cart/items.
func (h *CartHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req updateItemRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	store := h.carts.Get(ctx, GetSessionIDFromCookie(r))
	if store == nil {
		respondError(w, r, domain.NotFound("cart.update", "Cart", ""))
		return
	}

	summary, err := store.UpdateQuantity(ctx, req.Key, req.Quantity)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, newCartView(summary, store.Visible()))
}

type removeItemRequest struct {
	Key cart.Key `json:"key"`
}

// Remove handles DELETE /api/cart/items.
func (h *CartHandler) Remove(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req removeItemRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	store := h.carts.Get(ctx, GetSessionIDFromCookie(r))
	if store == nil {
		respondError(w, r, domain.NotFound("cart.remove", "Cart", ""))
		return
	}

	summary, err := store.RemoveItem(ctx, req.Key)
	if err != nil {
		respondError(w, r, err)
		return
	}

	h.metrics.CartItemRemoved.Inc()
	respondJSON(w, http.StatusOK, newCartView(summary, store.Visible()))
}

// Clear handles DELETE /api/cart.
func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	store := h.carts.Get(ctx, GetSessionIDFromCookie(r))
	if store == nil {
		respondJSON(w, http.StatusOK, cartView{Items: []cartLineView{}, Subtotal: "0.00"})
		return
	}

	if err := store.Clear(ctx); err != nil {
		respondError(w, r, err)
		return
	}

	h.metrics.CartCleared.Inc()
	respondJSON(w, http.StatusOK, newCartView(store.Summary(), store.Visible()))
}

// ToggleVisibility handles POST /api/cart/toggle.
func (h *CartHandler) ToggleVisibility(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sessionID := GetSessionIDFromCookie(r)
	store, newSessionID := h.carts.GetOrCreate(ctx, sessionID)
	if newSessionID != sessionID {
		SetSessionCookie(w, newSessionID, h.secure)
	}

	respondJSON(w, http.StatusOK, map[string]bool{"visible": store.ToggleVisibility()})
}
