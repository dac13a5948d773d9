// Package cart implements the session shopping cart: line items keyed by
// product + variant, derived totals recomputed on every mutation, and a
// versioned persisted record per session.
package cart

import (
	"fmt"

	"github.com/greenseam/storefront/internal/domain"
	"github.com/greenseam/storefront/internal/pricing"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidQuantity = &domain.Error{Code: domain.EINVALID, Message: "Quantity must be greater than 0"}
	ErrOutOfStock      = &domain.Error{Code: domain.EINVALID, Message: "Product is out of stock"}
)

// Key identifies a cart line. Two additions merge into one line iff product
// ID, color and size all match.
type Key struct {
	ProductID int64  `json:"product_id"`
	Color     string `json:"color,omitempty"`
	Size      string `json:"size,omitempty"`
}

// String renders the key in "id[-color][-size]" form for logs and APIs.
func (k Key) String() string {
	s := fmt.Sprintf("%d", k.ProductID)
	if k.Color != "" {
		s += "-" + k.Color
	}
	if k.Size != "" {
		s += "-" + k.Size
	}
	return s
}

// Snapshot is the product display data captured when a line is added.
// It is deliberately independent of the live catalog: price changes after
// add-time do not rewrite existing cart lines.
type Snapshot struct {
	Name               string          `json:"name"`
	UnitPrice          decimal.Decimal `json:"unit_price"`
	OnSale             bool            `json:"on_sale,omitempty"`
	OriginalPrice      decimal.Decimal `json:"original_price,omitempty"`
	DiscountPercentage decimal.Decimal `json:"discount_percentage,omitempty"`
	ImageURL           string          `json:"image_url,omitempty"`
}

// LineItem is one cart entry. Quantity is always >= 1 while the line exists.
type LineItem struct {
	Key      Key      `json:"key"`
	Quantity int64    `json:"quantity"`
	Product  Snapshot `json:"product"`
}

// PricingItem converts the line for the pricing package.
func (li LineItem) PricingItem() pricing.Item {
	return pricing.Item{
		UnitPrice:          li.Product.UnitPrice,
		OnSale:             li.Product.OnSale,
		DiscountPercentage: li.Product.DiscountPercentage,
		Quantity:           li.Quantity,
	}
}

// EffectivePrice returns the per-unit price charged for this line.
func (li LineItem) EffectivePrice() decimal.Decimal {
	return pricing.EffectivePrice(li.PricingItem())
}

// LineTotal returns the effective price multiplied by quantity.
func (li LineItem) LineTotal() decimal.Decimal {
	return pricing.LineTotal(li.PricingItem())
}

// Summary aggregates the cart contents with derived totals. The derived
// fields are always a pure function of Items, never patched incrementally.
type Summary struct {
	Items          []LineItem
	TotalItemCount int64
	Subtotal       decimal.Decimal
}

func summarize(items []LineItem) *Summary {
	out := make([]LineItem, len(items))
	copy(out, items)

	var count int64
	priced := make([]pricing.Item, len(items))
	for i, li := range items {
		count += li.Quantity
		priced[i] = li.PricingItem()
	}

	return &Summary{
		Items:          out,
		TotalItemCount: count,
		Subtotal:       pricing.Subtotal(priced),
	}
}
