package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Checkout outcome labels.
const (
	CheckoutResultPlaced            = "placed"
	CheckoutResultNotFound          = "not_found"
	CheckoutResultInsufficientStock = "insufficient_stock"
	CheckoutResultError             = "error"
)

var checkoutTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "market_checkout_total",
		Help: "Checkout attempts by outcome.",
	},
	[]string{"result"},
)

var lowStockTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Name: "market_low_stock_events_total",
		Help: "Low-stock events raised during checkout.",
	},
)

// ObserveCheckout records a checkout attempt outcome.
func ObserveCheckout(result string) {
	checkoutTotal.WithLabelValues(result).Inc()
}

// ObserveLowStock records a low-stock event emission.
func ObserveLowStock() {
	lowStockTotal.Inc()
}
