package pricing_test

import (
	"testing"

	"github.com/greenseam/storefront/internal/pricing"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func Test_EffectivePrice(t *testing.T) {
	tests := []struct {
		name     string
		item     pricing.Item
		expected string
	}{
		{
			name:     "regular price passes through",
			item:     pricing.Item{UnitPrice: dec("24.99")},
			expected: "24.99",
		},
		{
			name:     "ten percent sale",
			item:     pricing.Item{UnitPrice: dec("29.99"), OnSale: true, DiscountPercentage: dec("10")},
			expected: "26.991",
		},
		{
			name:     "sale flag without discount keeps full price",
			item:     pricing.Item{UnitPrice: dec("29.99"), OnSale: true},
			expected: "29.99",
		},
		{
			name:     "discount ignored when not on sale",
			item:     pricing.Item{UnitPrice: dec("29.99"), DiscountPercentage: dec("50")},
			expected: "29.99",
		},
		{
			name:     "negative price clamps to zero",
			item:     pricing.Item{UnitPrice: dec("-5")},
			expected: "0",
		},
		{
			name:     "discount above 100 clamps to free",
			item:     pricing.Item{UnitPrice: dec("10"), OnSale: true, DiscountPercentage: dec("150")},
			expected: "0",
		},
		{
			name:     "negative discount clamps to full price",
			item:     pricing.Item{UnitPrice: dec("10"), OnSale: true, DiscountPercentage: dec("-20")},
			expected: "10",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := pricing.EffectivePrice(tt.item)
			assert.True(t, dec(tt.expected).Equal(got), "expected %s, got %s", tt.expected, got)
		})
	}
}

func Test_LineTotal(t *testing.T) {
	item := pricing.Item{UnitPrice: dec("24.99"), Quantity: 2}
	assert.True(t, dec("49.98").Equal(pricing.LineTotal(item)))

	// Non-positive quantities contribute nothing.
	item.Quantity = 0
	assert.True(t, pricing.LineTotal(item).IsZero())
	item.Quantity = -3
	assert.True(t, pricing.LineTotal(item).IsZero())
}

// Test_Subtotal_MixedCart validates the exact figure from the end-to-end
// scenario: 2 x $24.99 plus 1 x $29.99 at 10% off = $76.97 displayed.
func Test_Subtotal_MixedCart(t *testing.T) {
	items := []pricing.Item{
		{UnitPrice: dec("24.99"), Quantity: 2},
		{UnitPrice: dec("29.99"), OnSale: true, DiscountPercentage: dec("10"), Quantity: 1},
	}

	sub := pricing.Subtotal(items)
	assert.True(t, dec("76.971").Equal(sub), "intermediate subtotal keeps full precision, got %s", sub)
	assert.Equal(t, "76.97", pricing.Display(sub))
}

func Test_Calculator_ShippingFee(t *testing.T) {
	calc := pricing.NewCalculator(dec("0.08"), dec("9.99"), dec("75"))

	tests := []struct {
		name     string
		subtotal string
		expected string
	}{
		{"below threshold pays flat fee", "74.99", "9.99"},
		{"at threshold ships free", "75", "0"},
		{"above threshold ships free", "129.99", "0"},
		{"empty cart ships nothing", "0", "0"},
		{"negative subtotal ships nothing", "-10", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := calc.ShippingFee(dec(tt.subtotal))
			assert.True(t, dec(tt.expected).Equal(got), "expected %s, got %s", tt.expected, got)
		})
	}
}

func Test_Calculator_Totals(t *testing.T) {
	calc := pricing.NewCalculator(dec("0.08"), dec("9.99"), dec("75"))

	items := []pricing.Item{
		{UnitPrice: dec("24.99"), Quantity: 2},
	}

	totals := calc.Totals(items).Rounded()
	assert.Equal(t, "49.98", totals.Subtotal.StringFixed(2))
	assert.Equal(t, "4.00", totals.Tax.StringFixed(2), "49.98 * 0.08 = 3.9984 rounds to 4.00")
	assert.Equal(t, "9.99", totals.Shipping.StringFixed(2))
	assert.Equal(t, "63.97", totals.Total.StringFixed(2))
}

func Test_Calculator_GrandTotal_FreeShipping(t *testing.T) {
	calc := pricing.NewCalculator(dec("0.08"), dec("9.99"), dec("75"))

	// $100 subtotal: free shipping, 8% tax.
	got := calc.GrandTotal(dec("100"))
	assert.True(t, dec("108").Equal(got), "expected 108, got %s", got)
}

func Test_Calculator_ZeroValue(t *testing.T) {
	var calc pricing.Calculator

	assert.True(t, calc.EstimatedTax(dec("100")).IsZero())
	assert.True(t, calc.ShippingFee(dec("10")).IsZero())
	assert.True(t, dec("100").Equal(calc.GrandTotal(dec("100"))))
}
