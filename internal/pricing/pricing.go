// Package pricing holds the money arithmetic for cart and checkout.
//
// All functions are pure and operate on decimal values. Intermediate results
// are never rounded; rounding to two places happens only at presentation
// (Display / Totals.Rounded) so that discounted line prices do not compound
// rounding error across a cart.
package pricing

import (
	"github.com/shopspring/decimal"
)

var (
	hundred = decimal.NewFromInt(100)
	zero    = decimal.Zero
)

// Item is the minimal shape pricing needs to know about a cart line.
type Item struct {
	UnitPrice          decimal.Decimal
	OnSale             bool
	DiscountPercentage decimal.Decimal
	Quantity           int64
}

// EffectivePrice returns the per-unit price actually charged after any sale
// discount. Negative prices and discounts outside [0,100] are clamped.
func EffectivePrice(it Item) decimal.Decimal {
	price := it.UnitPrice
	if price.IsNegative() {
		price = zero
	}

	if !it.OnSale || it.DiscountPercentage.IsZero() {
		return price
	}

	disc := it.DiscountPercentage
	if disc.IsNegative() {
		disc = zero
	}
	if disc.GreaterThan(hundred) {
		disc = hundred
	}

	return price.Mul(hundred.Sub(disc)).Div(hundred)
}

// LineTotal returns EffectivePrice multiplied by quantity.
// Non-positive quantities contribute nothing.
func LineTotal(it Item) decimal.Decimal {
	if it.Quantity <= 0 {
		return zero
	}
	return EffectivePrice(it).Mul(decimal.NewFromInt(it.Quantity))
}

// Subtotal sums LineTotal over all items.
func Subtotal(items []Item) decimal.Decimal {
	sum := zero
	for _, it := range items {
		sum = sum.Add(LineTotal(it))
	}
	return sum
}

// Calculator applies the configured tax and shipping policy on top of a
// subtotal. The zero value charges no tax and no shipping.
type Calculator struct {
	taxRate               decimal.Decimal
	shippingFlatFee       decimal.Decimal
	freeShippingThreshold decimal.Decimal
}

// NewCalculator creates a calculator with the given policy. The free-shipping
// threshold is applied uniformly: subtotals at or above it ship free, all
// others pay the flat fee.
func NewCalculator(taxRate, shippingFlatFee, freeShippingThreshold decimal.Decimal) Calculator {
	return Calculator{
		taxRate:               taxRate,
		shippingFlatFee:       shippingFlatFee,
		freeShippingThreshold: freeShippingThreshold,
	}
}

// EstimatedTax returns subtotal multiplied by the configured tax rate.
func (c Calculator) EstimatedTax(subtotal decimal.Decimal) decimal.Decimal {
	if subtotal.IsNegative() {
		return zero
	}
	return subtotal.Mul(c.taxRate)
}

// ShippingFee returns the flat fee, or zero once the subtotal reaches the
// free-shipping threshold. A zero threshold disables free shipping only when
// the flat fee itself is nonzero and the subtotal is zero-or-negative.
func (c Calculator) ShippingFee(subtotal decimal.Decimal) decimal.Decimal {
	if subtotal.LessThanOrEqual(zero) {
		return zero
	}
	if c.freeShippingThreshold.IsPositive() && subtotal.GreaterThanOrEqual(c.freeShippingThreshold) {
		return zero
	}
	return c.shippingFlatFee
}

// GrandTotal returns subtotal + tax + shipping for the given subtotal.
func (c Calculator) GrandTotal(subtotal decimal.Decimal) decimal.Decimal {
	return subtotal.Add(c.EstimatedTax(subtotal)).Add(c.ShippingFee(subtotal))
}

// Totals is the full money breakdown for a set of items.
type Totals struct {
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Shipping decimal.Decimal
	Total    decimal.Decimal
}

// Totals computes the complete breakdown for a set of items.
func (c Calculator) Totals(items []Item) Totals {
	sub := Subtotal(items)
	tax := c.EstimatedTax(sub)
	fee := c.ShippingFee(sub)
	return Totals{
		Subtotal: sub,
		Tax:      tax,
		Shipping: fee,
		Total:    sub.Add(tax).Add(fee),
	}
}

// Rounded returns the breakdown rounded to two places for presentation.
func (t Totals) Rounded() Totals {
	return Totals{
		Subtotal: t.Subtotal.Round(2),
		Tax:      t.Tax.Round(2),
		Shipping: t.Shipping.Round(2),
		Total:    t.Total.Round(2),
	}
}

// Display formats an amount for presentation, rounded to two places.
func Display(d decimal.Decimal) string {
	return d.Round(2).StringFixed(2)
}
