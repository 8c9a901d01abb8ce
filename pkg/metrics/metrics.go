package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
)

// Outcome labels shared by the checkout and gateway counters.
const (
	OutcomeSuccess  = "success"
	OutcomeRejected = "rejected"
	OutcomeFailure  = "failure"
)

// Storefront groups the collectors exported by the API process.
type Storefront struct {
	checkoutSubmissions *prometheus.CounterVec
	orderTotal          prometheus.Histogram
	gatewayRequests     *prometheus.CounterVec
	gatewayDuration     *prometheus.HistogramVec
	httpRequests        *prometheus.CounterVec
	httpDuration        *prometheus.HistogramVec
}

// NewStorefront registers the storefront metrics on the provided registerer.
// A nil registerer yields a no-op recorder.
func NewStorefront(reg prometheus.Registerer) *Storefront {
	if reg == nil {
		return &Storefront{}
	}
	m := &Storefront{
		checkoutSubmissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "checkout_submissions_total",
			Help: "Checkout submissions by payment method and outcome.",
		}, []string{"payment_method", "outcome"}),
		orderTotal: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "checkout_order_total_brl",
			Help:    "Total of submitted orders in BRL.",
			Buckets: []float64{50, 100, 250, 500, 1000, 2500, 5000, 10000},
		}),
		gatewayRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "payment_gateway_requests_total",
			Help: "Calls issued to the payment gateway by operation and outcome.",
		}, []string{"operation", "outcome"}),
		gatewayDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "payment_gateway_request_duration_seconds",
			Help:    "Latency of payment gateway calls in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests served by route, method and status.",
		}, []string{"route", "method", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method"}),
	}
	reg.MustRegister(
		m.checkoutSubmissions,
		m.orderTotal,
		m.gatewayRequests,
		m.gatewayDuration,
		m.httpRequests,
		m.httpDuration,
	)
	return m
}

// ObserveCheckout records one checkout submission.
func (m *Storefront) ObserveCheckout(paymentMethod, outcome string) {
	if m == nil || m.checkoutSubmissions == nil {
		return
	}
	m.checkoutSubmissions.WithLabelValues(normalizeLabel(paymentMethod), normalizeLabel(outcome)).Inc()
}

// ObserveOrderTotal records the payable total of a created order.
func (m *Storefront) ObserveOrderTotal(total decimal.Decimal) {
	if m == nil || m.orderTotal == nil {
		return
	}
	m.orderTotal.Observe(total.InexactFloat64())
}

// ObserveGateway records a payment gateway call.
func (m *Storefront) ObserveGateway(operation, outcome string, duration time.Duration) {
	if m == nil || m.gatewayRequests == nil {
		return
	}
	op := normalizeLabel(operation)
	m.gatewayRequests.WithLabelValues(op, normalizeLabel(outcome)).Inc()
	m.gatewayDuration.WithLabelValues(op).Observe(duration.Seconds())
}

// ObserveHTTP records a served HTTP request.
func (m *Storefront) ObserveHTTP(route, method string, status int, duration time.Duration) {
	if m == nil || m.httpRequests == nil {
		return
	}
	r := normalizeLabel(route)
	m.httpRequests.WithLabelValues(r, method, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(r, method).Observe(duration.Seconds())
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
