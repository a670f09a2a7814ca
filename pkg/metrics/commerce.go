package metrics

import "github.com/prometheus/client_golang/prometheus"

// CommerceMetrics counts reservation operations by outcome.
type CommerceMetrics struct {
	operations *prometheus.CounterVec
	expired    prometheus.Counter
	synced     prometheus.Gauge
}

// NewCommerceMetrics registers the reservation core metrics.
func NewCommerceMetrics(reg prometheus.Registerer) *CommerceMetrics {
	if reg == nil {
		return &CommerceMetrics{}
	}
	operations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "commerce_operations_total",
		Help: "Reservation operations by name and outcome.",
	}, []string{"operation", "outcome"})
	expired := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "commerce_cart_items_expired_total",
		Help: "Cart items removed by expiration.",
	})
	synced := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "commerce_catalog_products",
		Help: "Product count installed by the last successful sync.",
	})
	reg.MustRegister(operations, expired, synced)
	return &CommerceMetrics{
		operations: operations,
		expired:    expired,
		synced:     synced,
	}
}

// IncOperation counts one operation with the given outcome (accepted/rejected/error).
func (c *CommerceMetrics) IncOperation(operation, outcome string) {
	if c == nil || c.operations == nil {
		return
	}
	c.operations.WithLabelValues(normalizeLabel(operation), normalizeLabel(outcome)).Inc()
}

// AddExpired counts items removed by expiration sweeps or timers.
func (c *CommerceMetrics) AddExpired(count int) {
	if c == nil || c.expired == nil || count <= 0 {
		return
	}
	c.expired.Add(float64(count))
}

// SetCatalogSize records the product count from the last sync.
func (c *CommerceMetrics) SetCatalogSize(count int) {
	if c == nil || c.synced == nil {
		return
	}
	c.synced.Set(float64(count))
}
