package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var outboxPublishTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "market_outbox_publish_total",
		Help: "Outbox publish attempts by outcome.",
	},
	[]string{"outcome"},
)

// ObserveOutboxPublish records a publish attempt ("published" or "failed").
func ObserveOutboxPublish(outcome string) {
	outboxPublishTotal.WithLabelValues(outcome).Inc()
}
