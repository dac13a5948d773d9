package payment

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"
)

// orderNumberPrefix matches the storefront's customer-facing order ids.
const orderNumberPrefix = "GS"

// NewOrderNumber generates a customer-facing order number, e.g. "GS-482951".
func NewOrderNumber() string {
	return fmt.Sprintf("%s-%06d", orderNumberPrefix, 100000+rand.IntN(900000))
}

// MockGateway simulates order placement without calling a payment backend.
// It waits a configurable delay (the demo checkout's processing time) and
// returns a generated order number.
type MockGateway struct {
	// Delay simulates gateway latency before the receipt is returned.
	Delay time.Duration

	// PlaceOrderFunc allows customizing placement behavior in tests.
	PlaceOrderFunc func(ctx context.Context, params PlaceOrderParams) (*Receipt, error)

	// Receipts stores placed orders by order number for assertions.
	Receipts map[string]PlaceOrderParams

	// CallLog tracks method calls for test assertions.
	CallLog []string
}

// NewMockGateway creates a mock gateway with the given simulated latency.
func NewMockGateway(delay time.Duration) *MockGateway {
	return &MockGateway{
		Delay:    delay,
		Receipts: make(map[string]PlaceOrderParams),
	}
}

// PlaceOrder simulates a successful charge after the configured delay.
func (m *MockGateway) PlaceOrder(ctx context.Context, params PlaceOrderParams) (*Receipt, error) {
	m.CallLog = append(m.CallLog, fmt.Sprintf("PlaceOrder(%s, %s)", params.Total, params.Currency))

	if m.PlaceOrderFunc != nil {
		return m.PlaceOrderFunc(ctx, params)
	}

	if m.Delay > 0 {
		select {
		case <-time.After(m.Delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	receipt := &Receipt{OrderNumber: NewOrderNumber()}
	m.Receipts[receipt.OrderNumber] = params
	return receipt, nil
}
