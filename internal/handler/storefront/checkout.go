package storefront

import (
	"errors"
	"net/http"
	"sync"

	"github.com/greenseam/storefront/internal/address"
	"github.com/greenseam/storefront/internal/cart"
	"github.com/greenseam/storefront/internal/checkout"
	"github.com/greenseam/storefront/internal/domain"
	"github.com/greenseam/storefront/internal/pricing"
	"github.com/greenseam/storefront/internal/telemetry"
)

// cartRedirect is where empty-cart checkout attempts are sent.
const cartRedirect = "/cart"

// CheckoutHandler serves the checkout flow. One checkout session is kept
// per cart session; it lives until the order confirms or the session is
// restarted.
type CheckoutHandler struct {
	wizard  *checkout.Wizard
	carts   *cart.Manager
	metrics *telemetry.BusinessMetrics

	mu       sync.Mutex
	sessions map[string]*checkout.Session
}

// NewCheckoutHandler creates a checkout handler.
func NewCheckoutHandler(wizard *checkout.Wizard, carts *cart.Manager, metrics *telemetry.BusinessMetrics) *CheckoutHandler {
	return &CheckoutHandler{
		wizard:   wizard,
		carts:    carts,
		metrics:  metrics,
		sessions: make(map[string]*checkout.Session),
	}
}

func (h *CheckoutHandler) session(sessionID string) *checkout.Session {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.sessions[sessionID]
}

// totalsView renders order totals with presentation rounding applied.
type totalsView struct {
	Subtotal string `json:"subtotal"`
	Tax      string `json:"tax"`
	Shipping string `json:"shipping"`
	Total    string `json:"total"`
}

func newTotalsView(t pricing.Totals) totalsView {
	return totalsView{
		Subtotal: pricing.Display(t.Subtotal),
		Tax:      pricing.Display(t.Tax),
		Shipping: pricing.Display(t.Shipping),
		Total:    pricing.Display(t.Total),
	}
}

// checkoutView is the checkout state response body.
type checkoutView struct {
	Step        checkout.Step         `json:"step"`
	Shipping    checkout.ShippingInfo `json:"shipping"`
	Totals      totalsView            `json:"totals"`
	Suggestion  *address.Address      `json:"suggestion,omitempty"`
	OrderNumber string                `json:"order_number,omitempty"`
}

func newCheckoutView(s *checkout.Session) checkoutView {
	return checkoutView{
		Step:        s.Step(),
		Shipping:    s.Shipping(),
		Totals:      newTotalsView(s.Totals()),
		Suggestion:  s.Suggestion(),
		OrderNumber: s.OrderNumber(),
	}
}

// Begin handles POST /api/checkout. Re-entering with an unfinished session
// resumes it; an empty cart redirects back to the cart.
func (h *CheckoutHandler) Begin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID := GetSessionIDFromCookie(r)

	store := h.carts.Get(ctx, sessionID)
	if store == nil {
		http.Redirect(w, r, cartRedirect, http.StatusSeeOther)
		return
	}

	h.mu.Lock()
	existing := h.sessions[sessionID]
	h.mu.Unlock()
	if existing != nil && existing.Step() != checkout.StepConfirmation {
		respondJSON(w, http.StatusOK, newCheckoutView(existing))
		return
	}

	s, err := h.wizard.Begin(ctx, store)
	if err != nil {
		if errors.Is(err, checkout.ErrCartEmpty) {
			http.Redirect(w, r, cartRedirect, http.StatusSeeOther)
			return
		}
		respondError(w, r, err)
		return
	}

	h.mu.Lock()
	h.sessions[sessionID] = s
	h.mu.Unlock()

	h.metrics.CheckoutStarted.Inc()
	respondJSON(w, http.StatusOK, newCheckoutView(s))
}

// State handles GET /api/checkout. A session whose cart has been emptied
// mid-checkout is sent back to the cart unless the order already confirmed.
func (h *CheckoutHandler) State(w http.ResponseWriter, r *http.Request) {
	sessionID := GetSessionIDFromCookie(r)
	s := h.session(sessionID)
	if s == nil {
		http.Redirect(w, r, cartRedirect, http.StatusSeeOther)
		return
	}

	if s.Step() != checkout.StepConfirmation {
		store := h.carts.Get(r.Context(), sessionID)
		if store == nil || store.IsEmpty() {
			http.Redirect(w, r, cartRedirect, http.StatusSeeOther)
			return
		}
	}
	respondJSON(w, http.StatusOK, newCheckoutView(s))
}

// SubmitShipping handles POST /api/checkout/shipping.
func (h *CheckoutHandler) SubmitShipping(w http.ResponseWriter, r *http.Request) {
	s := h.session(GetSessionIDFromCookie(r))
	if s == nil {
		http.Redirect(w, r, cartRedirect, http.StatusSeeOther)
		return
	}

	var info checkout.ShippingInfo
	if err := decodeJSON(r, &info); err != nil {
		respondError(w, r, err)
		return
	}

	fields, err := s.SubmitShipping(r.Context(), info)
	switch {
	case errors.Is(err, checkout.ErrSuggestionPending):
		respondJSON(w, http.StatusConflict, map[string]any{
			"suggestion": s.Suggestion(),
			"message":    "We found a suggested address. Confirm which one to use.",
		})
		return
	case err != nil:
		respondError(w, r, err)
		return
	case len(fields) > 0:
		respondFieldErrors(w, fields)
		return
	}

	h.metrics.CheckoutStep.WithLabelValues(string(checkout.StepPayment)).Inc()
	respondJSON(w, http.StatusOK, newCheckoutView(s))
}

type resolveSuggestionRequest struct {
	AcceptSuggested bool `json:"accept_suggested"`
}

// ResolveSuggestion handles POST /api/checkout/suggestion.
func (h *CheckoutHandler) ResolveSuggestion(w http.ResponseWriter, r *http.Request) {
	s := h.session(GetSessionIDFromCookie(r))
	if s == nil {
		http.Redirect(w, r, cartRedirect, http.StatusSeeOther)
		return
	}

	var req resolveSuggestionRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	if err := s.ResolveSuggestion(req.AcceptSuggested); err != nil {
		respondError(w, r, err)
		return
	}

	h.metrics.CheckoutStep.WithLabelValues(string(checkout.StepPayment)).Inc()
	respondJSON(w, http.StatusOK, newCheckoutView(s))
}

// SubmitPayment handles POST /api/checkout/payment.
func (h *CheckoutHandler) SubmitPayment(w http.ResponseWriter, r *http.Request) {
	s := h.session(GetSessionIDFromCookie(r))
	if s == nil {
		http.Redirect(w, r, cartRedirect, http.StatusSeeOther)
		return
	}

	var info checkout.PaymentInfo
	if err := decodeJSON(r, &info); err != nil {
		respondError(w, r, err)
		return
	}

	fields, err := s.SubmitPayment(info)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if len(fields) > 0 {
		respondFieldErrors(w, fields)
		return
	}

	h.metrics.CheckoutStep.WithLabelValues(string(checkout.StepReview)).Inc()
	respondJSON(w, http.StatusOK, newCheckoutView(s))
}

type backRequest struct {
	To checkout.Step `json:"to"`
}

// Back handles POST /api/checkout/back.
func (h *CheckoutHandler) Back(w http.ResponseWriter, r *http.Request) {
	s := h.session(GetSessionIDFromCookie(r))
	if s == nil {
		http.Redirect(w, r, cartRedirect, http.StatusSeeOther)
		return
	}

	var req backRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	if err := s.Back(req.To); err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, newCheckoutView(s))
}

// PlaceOrder handles POST /api/checkout/place-order. Failures leave the
// session in Review with the cart intact, so the client can retry.
func (h *CheckoutHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	sessionID := GetSessionIDFromCookie(r)
	s := h.session(sessionID)
	if s == nil {
		http.Redirect(w, r, cartRedirect, http.StatusSeeOther)
		return
	}

	ord, err := s.PlaceOrder(r.Context())
	if err != nil {
		if domain.ErrorCode(err) == domain.EPAYMENT {
			h.metrics.PaymentFailed.Inc()
		}
		respondError(w, r, err)
		return
	}

	h.metrics.CheckoutCompleted.Inc()
	h.metrics.ObserveOrder(ord.Total, len(ord.Items))

	respondJSON(w, http.StatusOK, map[string]any{
		"order_number": ord.Number,
		"order":        ord,
	})
}
