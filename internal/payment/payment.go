// Package payment defines the order-placement collaborator. The checkout
// wizard only ever talks to the Gateway interface; whether the charge is
// simulated or goes through Stripe is a configuration choice, not a
// conditional scattered through the flow.
package payment

import (
	"context"

	"github.com/greenseam/storefront/internal/domain"
	"github.com/shopspring/decimal"
)

var (
	ErrPaymentFailed = &domain.Error{Code: domain.EPAYMENT, Message: "Payment could not be processed. Please try again."}
)

// Gateway places an order against a payment backend.
type Gateway interface {
	// PlaceOrder charges the customer and returns the assigned order number.
	// Failures are retryable: the caller keeps its cart and checkout state.
	PlaceOrder(ctx context.Context, params PlaceOrderParams) (*Receipt, error)
}

// PlaceOrderParams is the order-submission payload handed to the gateway.
// Line items are snapshots, independent of live cart state.
type PlaceOrderParams struct {
	Items         []LineItem
	Subtotal      decimal.Decimal
	Tax           decimal.Decimal
	Shipping      decimal.Decimal
	Total         decimal.Decimal
	Currency      string
	CustomerEmail string
	ShippingTo    ShippingDetails
	CardSummary   CardSummary

	// IdempotencyKey prevents duplicate charges when a submission is retried.
	IdempotencyKey string
}

// LineItem is an order line snapshot.
type LineItem struct {
	Name      string
	UnitPrice decimal.Decimal
	Quantity  int64
	Color     string
	Size      string
	ImageURL  string
}

// ShippingDetails is the destination for the order.
type ShippingDetails struct {
	Name       string
	Line1      string
	Line2      string
	City       string
	State      string
	PostalCode string
	Country    string
	Phone      string
}

// CardSummary is the only card data that leaves the checkout session:
// brand and last four digits.
type CardSummary struct {
	Brand string
	Last4 string
}

// Receipt is the gateway's response for a placed order.
type Receipt struct {
	// OrderNumber is the customer-facing order identifier.
	OrderNumber string

	// ProviderTxID is the backend's transaction reference (e.g. a Stripe
	// payment intent ID). Empty for simulated orders.
	ProviderTxID string
}
