package checkout_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenseam/storefront/internal/address"
	"github.com/greenseam/storefront/internal/cart"
	"github.com/greenseam/storefront/internal/checkout"
	"github.com/greenseam/storefront/internal/domain"
	"github.com/greenseam/storefront/internal/identity"
	"github.com/greenseam/storefront/internal/order"
	"github.com/greenseam/storefront/internal/payment"
	"github.com/greenseam/storefront/internal/pricing"
	"github.com/greenseam/storefront/internal/storage"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fixture struct {
	kv       *storage.MemoryStore
	cart     *cart.Store
	gateway  *payment.MockGateway
	verifier *address.MockVerifier
	orders   *order.Service
	wizard   *checkout.Wizard
}

func newFixture(t *testing.T, opts ...func(*checkout.Config)) *fixture {
	t.Helper()

	kv := storage.NewMemoryStore()
	logger := testLogger()
	calc := pricing.NewCalculator(dec("0.08"), dec("9.99"), dec("75"))

	f := &fixture{
		kv:       kv,
		cart:     cart.NewStore(context.Background(), kv, "session-1", logger),
		gateway:  payment.NewMockGateway(0),
		verifier: &address.MockVerifier{},
		orders:   order.NewService(kv, logger),
	}

	cfg := checkout.Config{
		Locale:     checkout.LocaleFor("US"),
		Calculator: &calc,
		Gateway:    f.gateway,
		Verifier:   f.verifier,
		Orders:     f.orders,
		Currency:   "usd",
		Logger:     logger,
		Now: func() time.Time {
			return time.Date(2026, time.August, 15, 12, 0, 0, 0, time.UTC)
		},
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	f.wizard = checkout.NewWizard(cfg)
	return f
}

func (f *fixture) addProduct(t *testing.T, price string) {
	t.Helper()
	_, err := f.cart.AddItem(context.Background(), &domain.Product{
		ID:      1,
		Name:    "Canvas Backpack",
		Price:   dec(price),
		InStock: true,
	}, 1, "", "")
	require.NoError(t, err)
}

func validShipping() checkout.ShippingInfo {
	return checkout.ShippingInfo{
		FirstName: "Avery",
		LastName:  "Quinn",
		Email:     "avery@example.com",
		Phone:     "5125550147",
		Address:   "200 Congress Ave",
		City:      "Austin",
		State:     "TX",
		ZipCode:   "78701",
		Country:   "US",
	}
}

func validCard() checkout.PaymentInfo {
	return checkout.PaymentInfo{
		CardNumber: "4242 4242 4242 4242",
		CardName:   "Avery Quinn",
		ExpiryDate: "12/30",
		CVV:        "123",
	}
}

// advanceToReview walks a fresh session through shipping and payment.
func advanceToReview(t *testing.T, f *fixture) *checkout.Session {
	t.Helper()
	ctx := context.Background()

	s, err := f.wizard.Begin(ctx, f.cart)
	require.NoError(t, err)

	errs, err := s.SubmitShipping(ctx, validShipping())
	require.NoError(t, err)
	require.Empty(t, errs)

	errs, err = s.SubmitPayment(validCard())
	require.NoError(t, err)
	require.Empty(t, errs)

	require.Equal(t, checkout.StepReview, s.Step())
	return s
}

func TestBegin_EmptyCartRejected(t *testing.T) {
	f := newFixture(t)

	_, err := f.wizard.Begin(context.Background(), f.cart)
	assert.ErrorIs(t, err, checkout.ErrCartEmpty)
}

func TestBegin_PrefillsEmailFromIdentity(t *testing.T) {
	f := newFixture(t, func(cfg *checkout.Config) {
		cfg.Identity = identity.Static{User: identity.User{ID: "u-1", Email: "saved@example.com"}}
	})
	f.addProduct(t, "50")

	s, err := f.wizard.Begin(context.Background(), f.cart)
	require.NoError(t, err)
	assert.Equal(t, "saved@example.com", s.Shipping().Email)
	assert.Equal(t, checkout.StepShipping, s.Step())
}

func TestSubmitShipping_MissingFieldBlocksThenPasses(t *testing.T) {
	f := newFixture(t)
	f.addProduct(t, "50")
	ctx := context.Background()

	s, err := f.wizard.Begin(ctx, f.cart)
	require.NoError(t, err)

	info := validShipping()
	info.ZipCode = ""
	errs, err := s.SubmitShipping(ctx, info)
	require.NoError(t, err)
	assert.Equal(t, "This field is required", errs["zipCode"])
	assert.Equal(t, checkout.StepShipping, s.Step())

	info.ZipCode = "78701"
	errs, err = s.SubmitShipping(ctx, info)
	require.NoError(t, err)
	assert.Empty(t, errs)
	assert.Equal(t, checkout.StepPayment, s.Step())
}

func TestSubmitShipping_SuggestionHoldsTransition(t *testing.T) {
	f := newFixture(t)
	f.addProduct(t, "50")
	ctx := context.Background()

	f.verifier.VerifyFunc = func(_ context.Context, addr address.Address) (*address.Result, error) {
		suggested := addr
		suggested.PostalCode = "78701-4294"
		return &address.Result{Valid: true, Suggested: &suggested}, nil
	}

	s, err := f.wizard.Begin(ctx, f.cart)
	require.NoError(t, err)

	errs, err := s.SubmitShipping(ctx, validShipping())
	assert.Empty(t, errs)
	assert.ErrorIs(t, err, checkout.ErrSuggestionPending)
	assert.Equal(t, checkout.StepShipping, s.Step())

	suggestion := s.Suggestion()
	require.NotNil(t, suggestion)
	assert.Equal(t, "78701-4294", suggestion.PostalCode)

	require.NoError(t, s.ResolveSuggestion(true))
	assert.Equal(t, checkout.StepPayment, s.Step())
	assert.Equal(t, "78701-4294", s.Shipping().ZipCode)
	assert.Nil(t, s.Suggestion())
}

func TestResolveSuggestion_KeepOriginal(t *testing.T) {
	f := newFixture(t)
	f.addProduct(t, "50")
	ctx := context.Background()

	f.verifier.VerifyFunc = func(_ context.Context, addr address.Address) (*address.Result, error) {
		suggested := addr
		suggested.PostalCode = "78701-4294"
		return &address.Result{Valid: true, Suggested: &suggested}, nil
	}

	s, err := f.wizard.Begin(ctx, f.cart)
	require.NoError(t, err)

	_, err = s.SubmitShipping(ctx, validShipping())
	require.ErrorIs(t, err, checkout.ErrSuggestionPending)

	require.NoError(t, s.ResolveSuggestion(false))
	assert.Equal(t, checkout.StepPayment, s.Step())
	assert.Equal(t, "78701", s.Shipping().ZipCode)
}

func TestResolveSuggestion_WithoutPendingSuggestion(t *testing.T) {
	f := newFixture(t)
	f.addProduct(t, "50")

	s, err := f.wizard.Begin(context.Background(), f.cart)
	require.NoError(t, err)

	assert.ErrorIs(t, s.ResolveSuggestion(true), checkout.ErrInvalidStep)
}

func TestSubmitShipping_VerifierFailureIsFailOpen(t *testing.T) {
	f := newFixture(t)
	f.addProduct(t, "50")
	ctx := context.Background()

	f.verifier.VerifyFunc = func(context.Context, address.Address) (*address.Result, error) {
		return nil, domain.Internal(nil, "address.verify", "verification service down")
	}

	s, err := f.wizard.Begin(ctx, f.cart)
	require.NoError(t, err)

	errs, err := s.SubmitShipping(ctx, validShipping())
	require.NoError(t, err)
	assert.Empty(t, errs)
	assert.Equal(t, checkout.StepPayment, s.Step())
}

func TestSubmitPayment_InvalidCardBlocks(t *testing.T) {
	f := newFixture(t)
	f.addProduct(t, "50")
	ctx := context.Background()

	s, err := f.wizard.Begin(ctx, f.cart)
	require.NoError(t, err)
	_, err = s.SubmitShipping(ctx, validShipping())
	require.NoError(t, err)

	card := validCard()
	card.ExpiryDate = "07/26"
	errs, err := s.SubmitPayment(card)
	require.NoError(t, err)
	assert.Equal(t, "Card has expired", errs["expiryDate"])
	assert.Equal(t, checkout.StepPayment, s.Step())
}

func TestSubmitPayment_WrongStepRejected(t *testing.T) {
	f := newFixture(t)
	f.addProduct(t, "50")

	s, err := f.wizard.Begin(context.Background(), f.cart)
	require.NoError(t, err)

	_, err = s.SubmitPayment(validCard())
	assert.ErrorIs(t, err, checkout.ErrInvalidStep)
}

func TestBack_Navigation(t *testing.T) {
	f := newFixture(t)
	f.addProduct(t, "50")

	s := advanceToReview(t, f)

	require.NoError(t, s.Back(checkout.StepPayment))
	assert.Equal(t, checkout.StepPayment, s.Step())

	require.NoError(t, s.Back(checkout.StepShipping))
	assert.Equal(t, checkout.StepShipping, s.Step())

	assert.ErrorIs(t, s.Back(checkout.StepPayment), checkout.ErrInvalidStep)
}

func TestBack_ConfirmationIsTerminal(t *testing.T) {
	f := newFixture(t)
	f.addProduct(t, "50")

	s := advanceToReview(t, f)
	_, err := s.PlaceOrder(context.Background())
	require.NoError(t, err)

	assert.ErrorIs(t, s.Back(checkout.StepReview), checkout.ErrInvalidStep)
	assert.ErrorIs(t, s.Back(checkout.StepShipping), checkout.ErrInvalidStep)
}

func TestPlaceOrder_Success(t *testing.T) {
	f := newFixture(t)
	f.addProduct(t, "50")
	ctx := context.Background()

	s := advanceToReview(t, f)

	ord, err := s.PlaceOrder(ctx)
	require.NoError(t, err)
	require.NotNil(t, ord)

	assert.Regexp(t, `^GS-\d{6}$`, ord.Number)
	assert.Equal(t, checkout.StepConfirmation, s.Step())
	assert.Equal(t, ord.Number, s.OrderNumber())
	assert.True(t, f.cart.IsEmpty())

	assert.True(t, ord.Subtotal.Equal(dec("50")))
	assert.True(t, ord.Tax.Equal(dec("4")))
	assert.True(t, ord.Shipping.Equal(dec("9.99")))
	assert.True(t, ord.Total.Equal(dec("63.99")))
	assert.Equal(t, "Visa", ord.Payment.Brand)
	assert.Equal(t, "4242", ord.Payment.Last4)
	assert.Equal(t, "Avery Quinn", ord.ShippingTo.Name)
	assert.Equal(t, order.StatusProcessing, ord.Status)

	saved, err := f.orders.GetByNumber(ctx, ord.Number)
	require.NoError(t, err)
	assert.Equal(t, "avery@example.com", saved.Email)
	require.Len(t, saved.Items, 1)
	assert.Equal(t, "Canvas Backpack", saved.Items[0].Name)
}

func TestPlaceOrder_FreeShippingAboveThreshold(t *testing.T) {
	f := newFixture(t)
	f.addProduct(t, "100")

	s := advanceToReview(t, f)

	ord, err := s.PlaceOrder(context.Background())
	require.NoError(t, err)
	assert.True(t, ord.Shipping.IsZero())
	assert.True(t, ord.Total.Equal(dec("108")))
}

func TestPlaceOrder_FailureKeepsCartAndStep(t *testing.T) {
	f := newFixture(t)
	f.addProduct(t, "50")
	ctx := context.Background()

	f.gateway.PlaceOrderFunc = func(context.Context, payment.PlaceOrderParams) (*payment.Receipt, error) {
		return nil, payment.ErrPaymentFailed
	}

	s := advanceToReview(t, f)

	_, err := s.PlaceOrder(ctx)
	require.Error(t, err)
	assert.Equal(t, domain.EPAYMENT, domain.ErrorCode(err))

	assert.Equal(t, checkout.StepReview, s.Step())
	assert.False(t, f.cart.IsEmpty())
	assert.Empty(t, s.OrderNumber())

	// The failure is retryable: clearing the fault lets the same session
	// place the order.
	f.gateway.PlaceOrderFunc = nil
	ord, err := s.PlaceOrder(ctx)
	require.NoError(t, err)
	assert.Equal(t, checkout.StepConfirmation, s.Step())
	assert.True(t, f.cart.IsEmpty())
	assert.NotEmpty(t, ord.Number)
}

func TestPlaceOrder_RetryUsesFreshIdempotencyKey(t *testing.T) {
	f := newFixture(t)
	f.addProduct(t, "50")
	ctx := context.Background()

	var keys []string
	fail := true
	f.gateway.PlaceOrderFunc = func(_ context.Context, params payment.PlaceOrderParams) (*payment.Receipt, error) {
		keys = append(keys, params.IdempotencyKey)
		if fail {
			return nil, payment.ErrPaymentFailed
		}
		return &payment.Receipt{OrderNumber: payment.NewOrderNumber()}, nil
	}

	s := advanceToReview(t, f)

	_, err := s.PlaceOrder(ctx)
	require.Error(t, err)

	fail = false
	_, err = s.PlaceOrder(ctx)
	require.NoError(t, err)

	// A gateway that cached the failed attempt under its key must see a
	// different key on the retry.
	require.Len(t, keys, 2)
	assert.NotEmpty(t, keys[0])
	assert.NotEmpty(t, keys[1])
	assert.NotEqual(t, keys[0], keys[1])
}

func TestTotals_FrozenAtConfirmation(t *testing.T) {
	f := newFixture(t)
	f.addProduct(t, "50")

	s := advanceToReview(t, f)

	ord, err := s.PlaceOrder(context.Background())
	require.NoError(t, err)
	require.True(t, f.cart.IsEmpty())

	// The confirmation view shows what was charged, not the emptied cart.
	totals := s.Totals()
	assert.True(t, totals.Subtotal.Equal(ord.Subtotal))
	assert.True(t, totals.Total.Equal(dec("63.99")))
}

func TestPlaceOrder_DoubleSubmitPlacesOneOrder(t *testing.T) {
	f := newFixture(t)
	f.addProduct(t, "50")
	ctx := context.Background()

	inGateway := make(chan struct{})
	release := make(chan struct{})
	var calls int
	var callsMu sync.Mutex
	f.gateway.PlaceOrderFunc = func(context.Context, payment.PlaceOrderParams) (*payment.Receipt, error) {
		callsMu.Lock()
		calls++
		callsMu.Unlock()
		close(inGateway)
		<-release
		return &payment.Receipt{OrderNumber: payment.NewOrderNumber()}, nil
	}

	s := advanceToReview(t, f)

	done := make(chan error, 1)
	go func() {
		_, err := s.PlaceOrder(ctx)
		done <- err
	}()

	<-inGateway
	_, err := s.PlaceOrder(ctx)
	assert.ErrorIs(t, err, checkout.ErrAlreadyProcessing)

	close(release)
	require.NoError(t, <-done)

	callsMu.Lock()
	defer callsMu.Unlock()
	assert.Equal(t, 1, calls)
	assert.Equal(t, checkout.StepConfirmation, s.Step())
}

func TestPlaceOrder_WrongStepRejected(t *testing.T) {
	f := newFixture(t)
	f.addProduct(t, "50")

	s, err := f.wizard.Begin(context.Background(), f.cart)
	require.NoError(t, err)

	_, err = s.PlaceOrder(context.Background())
	assert.ErrorIs(t, err, checkout.ErrInvalidStep)
}

func TestTotals_ReflectCurrentCart(t *testing.T) {
	f := newFixture(t)
	f.addProduct(t, "50")

	s, err := f.wizard.Begin(context.Background(), f.cart)
	require.NoError(t, err)

	totals := s.Totals()
	assert.True(t, totals.Subtotal.Equal(dec("50")))
	assert.True(t, totals.Tax.Equal(dec("4")))
	assert.True(t, totals.Shipping.Equal(dec("9.99")))
	assert.True(t, totals.Total.Equal(dec("63.99")))
}
