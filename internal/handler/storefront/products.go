package storefront

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/greenseam/storefront/internal/domain"
)

// ProductHandler serves catalog browsing routes.
type ProductHandler struct {
	catalog domain.Catalog
}

// NewProductHandler creates a product handler over the catalog.
func NewProductHandler(catalog domain.Catalog) *ProductHandler {
	return &ProductHandler{catalog: catalog}
}

// List handles GET /api/products.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.ListProducts(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"products": products})
}

// Detail handles GET /api/products/{id}.
func (h *ProductHandler) Detail(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, r, domain.Invalid("product.detail", "Invalid product ID"))
		return
	}

	product, err := h.catalog.GetProduct(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, product)
}
