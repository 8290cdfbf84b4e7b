package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
)

// StorefrontMetrics counts cart, wishlist and order activity. A nil receiver
// or one built without a registerer records nothing.
type StorefrontMetrics struct {
	cartMutations     *prometheus.CounterVec
	wishlistMutations *prometheus.CounterVec
	ordersCreated     *prometheus.CounterVec
	orderTotal        prometheus.Histogram
	requestDuration   *prometheus.HistogramVec
}

// NewStorefrontMetrics registers the storefront metrics on the provided registerer.
func NewStorefrontMetrics(reg prometheus.Registerer) *StorefrontMetrics {
	if reg == nil {
		return &StorefrontMetrics{}
	}
	m := &StorefrontMetrics{
		cartMutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "attire",
			Name:      "cart_mutations_total",
			Help:      "Server cart mutations by operation and outcome.",
		}, []string{"op", "outcome"}),
		wishlistMutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "attire",
			Name:      "wishlist_mutations_total",
			Help:      "Server wishlist mutations by operation and outcome.",
		}, []string{"op", "outcome"}),
		ordersCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "attire",
			Name:      "orders_created_total",
			Help:      "Orders materialized, by payment method.",
		}, []string{"payment_method"}),
		orderTotal: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "attire",
			Name:      "order_total_amount",
			Help:      "Order totals as submitted by the client.",
			Buckets:   []float64{250, 500, 1000, 2000, 5000, 10000, 25000},
		}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "attire",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route pattern and status class.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "status"}),
	}
	reg.MustRegister(m.cartMutations, m.wishlistMutations, m.ordersCreated, m.orderTotal, m.requestDuration)
	return m
}

func (m *StorefrontMetrics) CartMutation(op string, err error) {
	if m == nil || m.cartMutations == nil {
		return
	}
	m.cartMutations.WithLabelValues(normalizeLabel(op), outcome(err)).Inc()
}

func (m *StorefrontMetrics) WishlistMutation(op string, err error) {
	if m == nil || m.wishlistMutations == nil {
		return
	}
	m.wishlistMutations.WithLabelValues(normalizeLabel(op), outcome(err)).Inc()
}

// OrderCreated records a materialized order and its total.
func (m *StorefrontMetrics) OrderCreated(paymentMethod string, total decimal.Decimal) {
	if m == nil || m.ordersCreated == nil {
		return
	}
	m.ordersCreated.WithLabelValues(normalizeLabel(paymentMethod)).Inc()
	m.orderTotal.Observe(total.InexactFloat64())
}

// ObserveRequest records latency for a routed request.
func (m *StorefrontMetrics) ObserveRequest(route string, status int, d time.Duration) {
	if m == nil || m.requestDuration == nil {
		return
	}
	m.requestDuration.WithLabelValues(normalizeLabel(route), statusClass(status)).Observe(d.Seconds())
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
