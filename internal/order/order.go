// Package order persists completed order records and serves account order
// history. Records are snapshots: they never change when the live catalog or
// cart does.
package order

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/greenseam/storefront/internal/domain"
	"github.com/greenseam/storefront/internal/storage"
	"github.com/shopspring/decimal"
)

// Status is the fulfillment state of an order.
type Status string

const (
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

// Item is one order line snapshot.
type Item struct {
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int64           `json:"quantity"`
	Color     string          `json:"color,omitempty"`
	Size      string          `json:"size,omitempty"`
	ImageURL  string          `json:"image_url,omitempty"`
}

// Address is the shipping destination recorded on the order.
type Address struct {
	Name       string `json:"name"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
	Phone      string `json:"phone,omitempty"`
}

// PaymentSummary is the only card data retained on an order record.
type PaymentSummary struct {
	Brand string `json:"brand"`
	Last4 string `json:"last4"`
}

// Order is a completed order record.
type Order struct {
	Number       string          `json:"number"`
	Email        string          `json:"email"`
	Items        []Item          `json:"items"`
	Subtotal     decimal.Decimal `json:"subtotal"`
	Tax          decimal.Decimal `json:"tax"`
	Shipping     decimal.Decimal `json:"shipping"`
	Total        decimal.Decimal `json:"total"`
	ShippingTo   Address         `json:"shipping_to"`
	Payment      PaymentSummary  `json:"payment"`
	Status       Status          `json:"status"`
	ProviderTxID string          `json:"provider_tx_id,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}

// Service stores and retrieves order records.
type Service struct {
	kv     storage.KV
	logger *slog.Logger
}

// NewService creates an order service over the given store.
func NewService(kv storage.KV, logger *slog.Logger) *Service {
	return &Service{kv: kv, logger: logger}
}

// Save persists the order record and indexes it under the customer email.
func (s *Service) Save(ctx context.Context, o *Order) error {
	if o.Number == "" {
		return domain.Invalid("order.save", "order number is required")
	}

	data, err := json.Marshal(o)
	if err != nil {
		return domain.Internal(err, "order.save", "failed to serialize order")
	}

	if err := s.kv.Set(ctx, recordKey(o.Number), data); err != nil {
		return domain.Internal(err, "order.save", "failed to persist order")
	}

	if o.Email != "" {
		if err := s.appendToIndex(ctx, o.Email, o.Number); err != nil {
			// The order itself is saved; a broken history index is not
			// worth failing the checkout over.
			s.logger.Warn("failed to index order for customer",
				slog.String("order_number", o.Number), slog.Any("error", err))
		}
	}

	return nil
}

// GetByNumber returns the order with the given number.
func (s *Service) GetByNumber(ctx context.Context, number string) (*Order, error) {
	data, err := s.kv.Get(ctx, recordKey(number))
	if errors.Is(err, storage.ErrKeyNotFound) {
		return nil, domain.NotFound("order.get", "order", number)
	}
	if err != nil {
		return nil, domain.Internal(err, "order.get", "failed to load order")
	}

	var o Order
	if err := json.Unmarshal(data, &o); err != nil {
		return nil, domain.Internal(err, "order.get", "failed to decode order")
	}
	return &o, nil
}

// ListByEmail returns the customer's orders, newest first.
func (s *Service) ListByEmail(ctx context.Context, email string) ([]Order, error) {
	numbers, err := s.readIndex(ctx, email)
	if err != nil {
		return nil, err
	}

	orders := make([]Order, 0, len(numbers))
	for i := len(numbers) - 1; i >= 0; i-- {
		o, err := s.GetByNumber(ctx, numbers[i])
		if err != nil {
			if domain.IsCode(err, domain.ENOTFOUND) {
				continue
			}
			return nil, err
		}
		orders = append(orders, *o)
	}
	return orders, nil
}

func (s *Service) appendToIndex(ctx context.Context, email, number string) error {
	numbers, err := s.readIndex(ctx, email)
	if err != nil {
		return err
	}

	numbers = append(numbers, number)
	data, err := json.Marshal(numbers)
	if err != nil {
		return err
	}
	return s.kv.Set(ctx, indexKey(email), data)
}

func (s *Service) readIndex(ctx context.Context, email string) ([]string, error) {
	data, err := s.kv.Get(ctx, indexKey(email))
	if errors.Is(err, storage.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, domain.Internal(err, "order.list", "failed to load order index")
	}

	var numbers []string
	if err := json.Unmarshal(data, &numbers); err != nil {
		return nil, domain.Internal(err, "order.list", "failed to decode order index")
	}
	return numbers, nil
}

func recordKey(number string) string { return "order:" + number }
func indexKey(email string) string   { return "orders:" + email }
