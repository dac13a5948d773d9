package payment

import (
	"context"

	"github.com/greenseam/storefront/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/paymentintent"
)

// StripeGateway places orders by creating Stripe Payment Intents.
type StripeGateway struct{}

// NewStripeGateway configures the Stripe SDK and returns the gateway.
func NewStripeGateway(apiKey string) *StripeGateway {
	stripe.Key = apiKey
	return &StripeGateway{}
}

// PlaceOrder creates a payment intent for the order total. The order number
// is assigned locally; the payment intent ID is kept as the provider
// transaction reference.
func (g *StripeGateway) PlaceOrder(ctx context.Context, params PlaceOrderParams) (*Receipt, error) {
	piParams := &stripe.PaymentIntentParams{
		Amount:       stripe.Int64(toCents(params.Total)),
		Currency:     stripe.String(params.Currency),
		ReceiptEmail: stripe.String(params.CustomerEmail),
		Shipping: &stripe.ShippingDetailsParams{
			Name:  stripe.String(params.ShippingTo.Name),
			Phone: stripe.String(params.ShippingTo.Phone),
			Address: &stripe.AddressParams{
				Line1:      stripe.String(params.ShippingTo.Line1),
				Line2:      stripe.String(params.ShippingTo.Line2),
				City:       stripe.String(params.ShippingTo.City),
				State:      stripe.String(params.ShippingTo.State),
				PostalCode: stripe.String(params.ShippingTo.PostalCode),
				Country:    stripe.String(params.ShippingTo.Country),
			},
		},
	}
	piParams.Context = ctx

	if params.IdempotencyKey != "" {
		piParams.SetIdempotencyKey(params.IdempotencyKey)
	}

	orderNumber := NewOrderNumber()
	piParams.AddMetadata("order_number", orderNumber)
	piParams.AddMetadata("subtotal", params.Subtotal.Round(2).StringFixed(2))
	piParams.AddMetadata("tax", params.Tax.Round(2).StringFixed(2))
	piParams.AddMetadata("shipping", params.Shipping.Round(2).StringFixed(2))

	pi, err := paymentintent.New(piParams)
	if err != nil {
		return nil, &domain.Error{
			Code:    domain.EPAYMENT,
			Op:      "payment.place_order",
			Message: ErrPaymentFailed.Message,
			Err:     err,
		}
	}

	return &Receipt{
		OrderNumber:  orderNumber,
		ProviderTxID: pi.ID,
	}, nil
}

// toCents converts a decimal dollar amount to the smallest currency unit,
// rounding at this final boundary only.
func toCents(d decimal.Decimal) int64 {
	return d.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}
