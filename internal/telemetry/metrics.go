// Package telemetry holds business-level Prometheus metrics: the checkout
// funnel and order outcomes, as opposed to raw HTTP traffic.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/shopspring/decimal"
)

// BusinessMetrics tracks storefront funnel activity for dashboards.
type BusinessMetrics struct {
	// Cart
	CartItemsAdded  prometheus.Counter
	CartItemRemoved prometheus.Counter
	CartCleared     prometheus.Counter

	// Checkout funnel
	CheckoutStarted   prometheus.Counter
	CheckoutStep      *prometheus.CounterVec
	CheckoutCompleted prometheus.Counter
	PaymentFailed     prometheus.Counter

	// Orders
	OrdersCreated  prometheus.Counter
	OrderValue     prometheus.Histogram
	OrderItemCount prometheus.Histogram

	// Wishlist
	WishlistAdds prometheus.Counter

	// Reviews
	ReviewsCreated prometheus.Counter
}

// NewBusinessMetrics creates and registers the business metrics with the
// default registry.
func NewBusinessMetrics(namespace string) *BusinessMetrics {
	if namespace == "" {
		namespace = "storefront"
	}

	return &BusinessMetrics{
		CartItemsAdded: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cart_items_added_total",
			Help:      "Total line items added to carts",
		}),
		CartItemRemoved: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cart_items_removed_total",
			Help:      "Total line items removed from carts",
		}),
		CartCleared: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cart_cleared_total",
			Help:      "Total carts emptied",
		}),
		CheckoutStarted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checkout_started_total",
			Help:      "Total checkout sessions begun",
		}),
		CheckoutStep: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checkout_step_total",
			Help:      "Checkout step transitions by step",
		}, []string{"step"}),
		CheckoutCompleted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checkout_completed_total",
			Help:      "Total checkouts that reached confirmation",
		}),
		PaymentFailed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payment_failed_total",
			Help:      "Total failed order placement attempts",
		}),
		OrdersCreated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_created_total",
			Help:      "Total orders placed",
		}),
		OrderValue: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "order_value",
			Help:      "Order grand totals",
			Buckets:   []float64{10, 25, 50, 75, 100, 150, 250, 500, 1000},
		}),
		OrderItemCount: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "order_item_count",
			Help:      "Number of line items per order",
			Buckets:   []float64{1, 2, 3, 5, 8, 13, 21},
		}),
		WishlistAdds: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "wishlist_adds_total",
			Help:      "Total wishlist additions",
		}),
		ReviewsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reviews_created_total",
			Help:      "Total product reviews submitted",
		}),
	}
}

// ObserveOrder records the value and size of a placed order.
func (m *BusinessMetrics) ObserveOrder(total decimal.Decimal, itemCount int) {
	m.OrdersCreated.Inc()
	m.OrderValue.Observe(total.InexactFloat64())
	m.OrderItemCount.Observe(float64(itemCount))
}
