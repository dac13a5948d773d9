// Package checkout implements the multi-step checkout flow: Shipping,
// Payment, Review, Confirmation. Each step validates before advancing, and
// order placement is guarded so a double submission never places two orders.
package checkout

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/greenseam/storefront/internal/address"
	"github.com/greenseam/storefront/internal/cart"
	"github.com/greenseam/storefront/internal/domain"
	"github.com/greenseam/storefront/internal/identity"
	"github.com/greenseam/storefront/internal/order"
	"github.com/greenseam/storefront/internal/payment"
	"github.com/greenseam/storefront/internal/pricing"
)

// Step is the wizard position. Confirmation is terminal.
type Step string

const (
	StepShipping     Step = "shipping"
	StepPayment      Step = "payment"
	StepReview       Step = "review"
	StepConfirmation Step = "confirmation"
)

var (
	ErrCartEmpty         = &domain.Error{Code: domain.EINVALID, Message: "Your cart is empty"}
	ErrAlreadyProcessing = &domain.Error{Code: domain.ECONFLICT, Message: "Your order is already being processed"}
	ErrSuggestionPending = &domain.Error{Code: domain.ECONFLICT, Message: "A suggested address is awaiting confirmation"}
	ErrInvalidStep       = &domain.Error{Code: domain.ECONFLICT, Message: "That action is not available at this checkout step"}
)

// Config wires the wizard's collaborators. Verifier and Identity are
// optional: a nil Verifier skips address verification, a nil Identity means
// guest checkout.
type Config struct {
	Locale     Locale
	Calculator *pricing.Calculator
	Gateway    payment.Gateway
	Verifier   address.Verifier
	Orders     *order.Service
	Identity   identity.Provider
	Currency   string
	Logger     *slog.Logger

	// Now is injectable for expiry validation in tests. Defaults to time.Now.
	Now func() time.Time
}

// Wizard creates checkout sessions over a fixed set of collaborators.
type Wizard struct {
	cfg Config
}

// NewWizard validates required collaborators and returns a session factory.
func NewWizard(cfg Config) *Wizard {
	if cfg.Calculator == nil {
		panic("checkout: Calculator is required")
	}
	if cfg.Gateway == nil {
		panic("checkout: Gateway is required")
	}
	if cfg.Orders == nil {
		panic("checkout: Orders is required")
	}
	if cfg.Currency == "" {
		cfg.Currency = "usd"
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Wizard{cfg: cfg}
}

// Session is one customer's progress through checkout. All methods are safe
// for concurrent use; the processing guard relies on it.
type Session struct {
	mu sync.Mutex

	cfg  Config
	cart *cart.Store

	step         Step
	shipping     ShippingInfo
	payment      PaymentInfo
	orderNumber  string
	placedTotals *pricing.Totals
	processing   bool

	// A pending suggestion holds the Shipping -> Payment transition until
	// the customer picks the original or the suggested address.
	pendingShipping *ShippingInfo
	suggested       *address.Address

	idempotencyKey string
}

// Begin starts a checkout session for the given cart. An empty cart cannot
// enter checkout. If an authenticated identity is available its email
// pre-fills the shipping form.
func (w *Wizard) Begin(ctx context.Context, cartStore *cart.Store) (*Session, error) {
	if cartStore == nil || cartStore.IsEmpty() {
		return nil, ErrCartEmpty
	}

	s := &Session{
		cfg:            w.cfg,
		cart:           cartStore,
		step:           StepShipping,
		idempotencyKey: uuid.NewString(),
	}
	s.shipping.Country = w.cfg.Locale.Country

	if w.cfg.Identity != nil {
		if u := w.cfg.Identity.Current(ctx); u != nil && s.shipping.Email == "" {
			s.shipping.Email = u.Email
		}
	}
	return s, nil
}

// Step returns the current wizard position.
func (s *Session) Step() Step {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.step
}

// Shipping returns the shipping form as captured so far.
func (s *Session) Shipping() ShippingInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.shipping
}

// OrderNumber returns the assigned order number, empty until Confirmation.
func (s *Session) OrderNumber() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.orderNumber
}

// Suggestion returns the verifier's suggested address while the shipping
// transition is held, nil otherwise.
func (s *Session) Suggestion() *address.Address {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.suggested == nil {
		return nil
	}
	out := *s.suggested
	return &out
}

// Totals computes the order totals for the current cart contents. Once an
// order has been placed it returns the totals that were charged; the cart is
// cleared by then and no longer reflects the order.
func (s *Session) Totals() pricing.Totals {
	s.mu.Lock()
	if s.placedTotals != nil {
		placed := *s.placedTotals
		s.mu.Unlock()
		return placed
	}
	s.mu.Unlock()

	summary := s.cart.Summary()
	items := make([]pricing.Item, len(summary.Items))
	for i, li := range summary.Items {
		items[i] = li.PricingItem()
	}
	return s.cfg.Calculator.Totals(items)
}

// SubmitShipping validates the shipping form and advances to Payment.
// A non-empty field map blocks the transition. When address verification
// returns a suggestion the transition is held: the caller must call
// ResolveSuggestion before the session moves on. Verifier failures never
// block checkout.
func (s *Session) SubmitShipping(ctx context.Context, info ShippingInfo) (map[string]string, error) {
	s.mu.Lock()
	if s.step != StepShipping {
		s.mu.Unlock()
		return nil, ErrInvalidStep
	}
	if s.suggested != nil {
		s.mu.Unlock()
		return nil, ErrSuggestionPending
	}
	locale := s.cfg.Locale
	s.mu.Unlock()

	if info.Country == "" {
		info.Country = locale.Country
	}
	if errs := locale.ValidateShipping(info); len(errs) > 0 {
		return errs, nil
	}

	if s.cfg.Verifier != nil {
		result, err := s.cfg.Verifier.Verify(ctx, address.Address{
			Line1:      info.Address,
			Line2:      info.Address2,
			City:       info.City,
			State:      info.State,
			PostalCode: info.ZipCode,
			Country:    info.Country,
		})
		switch {
		case err != nil:
			s.cfg.Logger.Warn("address verification unavailable, proceeding",
				slog.String("error", err.Error()))
		case result.Suggested != nil:
			s.mu.Lock()
			s.pendingShipping = &info
			s.suggested = result.Suggested
			s.mu.Unlock()
			return nil, ErrSuggestionPending
		}
	}

	s.mu.Lock()
	s.shipping = info
	s.step = StepPayment
	s.mu.Unlock()
	return nil, nil
}

// ResolveSuggestion completes a held shipping transition. With
// acceptSuggested the verifier's address replaces the submitted one;
// otherwise the original stands.
func (s *Session) ResolveSuggestion(acceptSuggested bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.suggested == nil || s.pendingShipping == nil {
		return ErrInvalidStep
	}

	info := *s.pendingShipping
	if acceptSuggested {
		info.Address = s.suggested.Line1
		info.Address2 = s.suggested.Line2
		info.City = s.suggested.City
		info.State = s.suggested.State
		info.ZipCode = s.suggested.PostalCode
		if s.suggested.Country != "" {
			info.Country = s.suggested.Country
		}
	}

	s.shipping = info
	s.pendingShipping = nil
	s.suggested = nil
	s.step = StepPayment
	return nil
}

// SubmitPayment validates the card form and advances to Review. A non-empty
// field map blocks the transition.
func (s *Session) SubmitPayment(info PaymentInfo) (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.step != StepPayment {
		return nil, ErrInvalidStep
	}
	if errs := ValidatePayment(info, s.cfg.Now()); len(errs) > 0 {
		return errs, nil
	}

	s.payment = info
	s.step = StepReview
	return nil, nil
}

// Back navigates to an earlier step. Allowed: Payment to Shipping, Review to
// Shipping or Payment. Confirmation is terminal.
func (s *Session) Back(to Step) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	allowed := map[Step][]Step{
		StepPayment: {StepShipping},
		StepReview:  {StepShipping, StepPayment},
	}
	for _, t := range allowed[s.step] {
		if t == to {
			s.step = to
			return nil
		}
	}
	return ErrInvalidStep
}

// PlaceOrder submits the order through the payment gateway. While one
// attempt is in flight any second attempt is rejected without a gateway
// call. On failure the session stays in Review and the cart is untouched,
// so the customer can retry. On success the order is recorded, the cart is
// cleared, and the session reaches Confirmation.
func (s *Session) PlaceOrder(ctx context.Context) (*order.Order, error) {
	s.mu.Lock()
	if s.step != StepReview {
		s.mu.Unlock()
		return nil, ErrInvalidStep
	}
	if s.processing {
		s.mu.Unlock()
		return nil, ErrAlreadyProcessing
	}
	if s.cart.IsEmpty() {
		s.mu.Unlock()
		return nil, ErrCartEmpty
	}
	s.processing = true
	shipping := s.shipping
	card := s.payment
	idempotencyKey := s.idempotencyKey
	s.mu.Unlock()

	totals := s.Totals().Rounded()
	summary := s.cart.Summary()

	items := make([]payment.LineItem, len(summary.Items))
	orderItems := make([]order.Item, len(summary.Items))
	for i, li := range summary.Items {
		items[i] = payment.LineItem{
			Name:      li.Product.Name,
			UnitPrice: li.EffectivePrice(),
			Quantity:  li.Quantity,
			Color:     li.Key.Color,
			Size:      li.Key.Size,
			ImageURL:  li.Product.ImageURL,
		}
		orderItems[i] = order.Item{
			Name:      li.Product.Name,
			UnitPrice: li.EffectivePrice(),
			Quantity:  li.Quantity,
			Color:     li.Key.Color,
			Size:      li.Key.Size,
			ImageURL:  li.Product.ImageURL,
		}
	}

	dest := payment.ShippingDetails{
		Name:       shipping.FullName(),
		Line1:      shipping.Address,
		Line2:      shipping.Address2,
		City:       shipping.City,
		State:      shipping.State,
		PostalCode: shipping.ZipCode,
		Country:    shipping.Country,
		Phone:      shipping.Phone,
	}

	receipt, err := s.cfg.Gateway.PlaceOrder(ctx, payment.PlaceOrderParams{
		Items:         items,
		Subtotal:      totals.Subtotal,
		Tax:           totals.Tax,
		Shipping:      totals.Shipping,
		Total:         totals.Total,
		Currency:      s.cfg.Currency,
		CustomerEmail: shipping.Email,
		ShippingTo:    dest,
		CardSummary: payment.CardSummary{
			Brand: CardBrand(card.CardNumber),
			Last4: Last4(card.CardNumber),
		},
		IdempotencyKey: idempotencyKey,
	})
	if err != nil {
		s.mu.Lock()
		s.processing = false
		// The gateway replays whatever response it recorded for a key,
		// failures included. The key stays fixed only while one attempt
		// is in flight; a retry must carry a fresh one.
		s.idempotencyKey = uuid.NewString()
		s.mu.Unlock()
		return nil, err
	}

	ord := &order.Order{
		Number:   receipt.OrderNumber,
		Email:    shipping.Email,
		Items:    orderItems,
		Subtotal: totals.Subtotal,
		Tax:      totals.Tax,
		Shipping: totals.Shipping,
		Total:    totals.Total,
		ShippingTo: order.Address{
			Name:       dest.Name,
			Line1:      dest.Line1,
			Line2:      dest.Line2,
			City:       dest.City,
			State:      dest.State,
			PostalCode: dest.PostalCode,
			Country:    dest.Country,
			Phone:      dest.Phone,
		},
		Payment: order.PaymentSummary{
			Brand: CardBrand(card.CardNumber),
			Last4: Last4(card.CardNumber),
		},
		Status:       order.StatusProcessing,
		ProviderTxID: receipt.ProviderTxID,
		CreatedAt:    s.cfg.Now(),
	}

	// The charge already went through; record and cleanup failures are
	// logged, not surfaced as a failed checkout.
	if err := s.cfg.Orders.Save(ctx, ord); err != nil {
		s.cfg.Logger.Error("failed to record placed order",
			slog.String("order_number", ord.Number),
			slog.String("error", err.Error()))
	}
	if err := s.cart.Clear(ctx); err != nil {
		s.cfg.Logger.Error("failed to clear cart after order",
			slog.String("order_number", ord.Number),
			slog.String("error", err.Error()))
	}

	s.mu.Lock()
	s.orderNumber = receipt.OrderNumber
	s.placedTotals = &totals
	s.step = StepConfirmation
	s.processing = false
	s.mu.Unlock()
	return ord, nil
}
