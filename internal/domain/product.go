package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

// =============================================================================
// PRODUCT DOMAIN TYPES
// =============================================================================

// Product is the read-only catalog reference consumed by the cart and
// checkout. Catalog management itself lives behind the Catalog interface;
// this core only reads product display data.
type Product struct {
	ID       int64
	Name     string
	Price    decimal.Decimal
	InStock  bool

	// Sale pricing. When IsSale is true and DiscountPercentage is set,
	// the effective unit price is Price reduced by that percentage.
	// OriginalPrice is display-only (strikethrough price).
	IsSale             bool
	OriginalPrice      decimal.Decimal
	DiscountPercentage decimal.Decimal

	// Available variants. Empty slices mean the product has no variant axis.
	Colors []string
	Sizes  []string

	Images []string
}

// PrimaryImage returns the first product image, or empty string.
func (p Product) PrimaryImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

// Catalog provides read access to the product catalog.
// Implementations are external to this core (database, headless CMS, etc.).
type Catalog interface {
	// GetProduct returns the product with the given ID.
	GetProduct(ctx context.Context, id int64) (*Product, error)

	// ListProducts returns all purchasable products.
	ListProducts(ctx context.Context) ([]Product, error)
}

var ErrProductNotFound = &Error{Code: ENOTFOUND, Message: "Product not found"}

// StaticCatalog is an in-memory Catalog backed by a fixed product list.
// Used for development and tests.
type StaticCatalog struct {
	products map[int64]Product
	order    []int64
}

// NewStaticCatalog creates a catalog from a fixed product list.
func NewStaticCatalog(products []Product) *StaticCatalog {
	c := &StaticCatalog{products: make(map[int64]Product, len(products))}
	for _, p := range products {
		if _, dup := c.products[p.ID]; dup {
			continue
		}
		c.products[p.ID] = p
		c.order = append(c.order, p.ID)
	}
	return c
}

// GetProduct returns the product with the given ID.
func (c *StaticCatalog) GetProduct(_ context.Context, id int64) (*Product, error) {
	p, ok := c.products[id]
	if !ok {
		return nil, ErrProductNotFound
	}
	return &p, nil
}

// ListProducts returns all products in insertion order.
func (c *StaticCatalog) ListProducts(_ context.Context) ([]Product, error) {
	out := make([]Product, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.products[id])
	}
	return out, nil
}

// DemoProducts returns the development catalog fixtures.
func DemoProducts() []Product {
	return []Product{
		{
			ID:      1,
			Name:    "Premium Leather Wallet",
			Price:   decimal.NewFromFloat(59.99),
			InStock: true,
			Colors:  []string{"Brown", "Black", "Tan"},
			Images:  []string{"/images/products/wallet-1.jpg"},
		},
		{
			ID:      2,
			Name:    "Organic Cotton T-Shirt",
			Price:   decimal.NewFromFloat(29.99),
			InStock: true,
			Colors:  []string{"White", "Black", "Navy", "Gray"},
			Sizes:   []string{"S", "M", "L", "XL", "XXL"},
			Images:  []string{"/images/products/tshirt-1.jpg"},
		},
		{
			ID:                 3,
			Name:               "Merino Wool Scarf",
			Price:              decimal.NewFromFloat(49.99),
			InStock:            true,
			IsSale:             true,
			OriginalPrice:      decimal.NewFromFloat(49.99),
			DiscountPercentage: decimal.NewFromInt(10),
			Colors:             []string{"Gray", "Navy", "Burgundy", "Camel"},
			Images:             []string{"/images/products/scarf-1.jpg"},
		},
		{
			ID:      4,
			Name:    "Developer Tech Hoodie",
			Price:   decimal.NewFromFloat(89.99),
			InStock: true,
			Colors:  []string{"Black", "Dark Gray", "Navy Blue"},
			Sizes:   []string{"S", "M", "L", "XL", "XXL"},
			Images:  []string{"/images/products/hoodie-1.jpg"},
		},
		{
			ID:      5,
			Name:    "Tech Backpack Pro",
			Price:   decimal.NewFromFloat(129.99),
			InStock: true,
			Colors:  []string{"Black", "Gray", "Midnight Blue"},
			Images:  []string{"/images/products/backpack-1.jpg"},
		},
		{
			ID:      6,
			Name:    "Leather Notebook Cover",
			Price:   decimal.NewFromFloat(39.99),
			InStock: false,
			Colors:  []string{"Brown", "Black", "Tan"},
			Images:  []string{"/images/products/notebook-1.jpg"},
		},
	}
}
