package storefront

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/greenseam/storefront/internal/domain"
	"github.com/greenseam/storefront/internal/identity"
	"github.com/greenseam/storefront/internal/reviews"
	"github.com/greenseam/storefront/internal/telemetry"
)

// ReviewHandler serves the product review routes.
type ReviewHandler struct {
	reviews  *reviews.Service
	catalog  domain.Catalog
	identity identity.Provider
	metrics  *telemetry.BusinessMetrics
}

// NewReviewHandler creates a review handler.
func NewReviewHandler(svc *reviews.Service, catalog domain.Catalog, provider identity.Provider, metrics *telemetry.BusinessMetrics) *ReviewHandler {
	return &ReviewHandler{reviews: svc, catalog: catalog, identity: provider, metrics: metrics}
}

func (h *ReviewHandler) currentUser(r *http.Request) *identity.User {
	if h.identity == nil {
		return nil
	}
	return h.identity.Current(r.Context())
}

func (h *ReviewHandler) productID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.Invalid("reviews", "Invalid product ID")
	}
	return id, nil
}

// List handles GET /api/products/{id}/reviews. Reviews are public; no
// authentication is required to read them.
func (h *ReviewHandler) List(w http.ResponseWriter, r *http.Request) {
	id, err := h.productID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	if _, err := h.catalog.GetProduct(r.Context(), id); err != nil {
		respondError(w, r, err)
		return
	}

	list, err := h.reviews.ListByProduct(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if list == nil {
		list = []reviews.Review{}
	}

	body := map[string]any{
		"reviews": list,
		"count":   len(list),
	}
	if len(list) > 0 {
		body["average_rating"] = reviews.AverageRating(list).StringFixed(1)
	}
	respondJSON(w, http.StatusOK, body)
}

type createReviewRequest struct {
	Rating  int    `json:"rating"`
	Title   string `json:"title"`
	Comment string `json:"comment"`
}

// Create handles POST /api/products/{id}/reviews.
func (h *ReviewHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := h.currentUser(r)
	if user == nil {
		respondError(w, r, domain.Unauthorized("reviews.create", "You must be logged in to submit a review"))
		return
	}

	id, err := h.productID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	if _, err := h.catalog.GetProduct(r.Context(), id); err != nil {
		respondError(w, r, err)
		return
	}

	var req createReviewRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	review, err := h.reviews.Create(r.Context(), user.ID, authorName(user), id, req.Rating, req.Title, req.Comment)
	if err != nil {
		if fields := domain.GetValidationFields(err); len(fields) > 0 {
			respondFieldErrors(w, fields)
			return
		}
		respondError(w, r, err)
		return
	}

	h.metrics.ReviewsCreated.Inc()
	respondJSON(w, http.StatusCreated, review)
}

// authorName derives the display name shown next to a review.
func authorName(u *identity.User) string {
	if local, _, ok := strings.Cut(u.Email, "@"); ok && local != "" {
		return local
	}
	return "Anonymous"
}
