package metrics

import "github.com/prometheus/client_golang/prometheus"

// CartMetrics counts cart mutations. It subscribes to the cart manager so
// the counters track what actually changed, not what was merely requested.
type CartMetrics struct {
	operations *prometheus.CounterVec
}

// NewCartMetrics registers the cart metrics on the provided registerer.
func NewCartMetrics(reg prometheus.Registerer) *CartMetrics {
	if reg == nil {
		return &CartMetrics{}
	}
	operations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_operations_total",
		Help: "Applied cart mutations, by operation.",
	}, []string{"operation"})
	reg.MustRegister(operations)
	return &CartMetrics{operations: operations}
}

// IncOperation increments the counter for the named cart operation.
func (c *CartMetrics) IncOperation(operation string) {
	if c == nil || c.operations == nil {
		return
	}
	c.operations.WithLabelValues(normalizeLabel(operation)).Inc()
}
