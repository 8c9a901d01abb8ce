package metrics

import (
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/shopspring/decimal"
)

func TestStorefrontExportsCheckoutMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewStorefront(reg)
	m.ObserveCheckout("pix", OutcomeSuccess)
	m.ObserveCheckout("pix", OutcomeSuccess)
	m.ObserveCheckout("boleto", OutcomeFailure)
	m.ObserveOrderTotal(decimal.RequireFromString("267.405"))

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "checkout_submissions_total", map[string]string{"payment_method": "pix", "outcome": OutcomeSuccess}); err != nil {
		t.Fatalf("fetch pix: %v", err)
	} else if got != 2 {
		t.Fatalf("expected pix success=2, got %f", got)
	}
	if got, err := fetchCounterValue(mfs, "checkout_submissions_total", map[string]string{"payment_method": "boleto", "outcome": OutcomeFailure}); err != nil {
		t.Fatalf("fetch boleto: %v", err)
	} else if got != 1 {
		t.Fatalf("expected boleto failure=1, got %f", got)
	}

	if n, err := testutil.GatherAndCount(reg, "checkout_submissions_total"); err != nil || n != 2 {
		t.Fatalf("expected 2 checkout series, got %d err=%v", n, err)
	}

	mf := findMetricFamily(mfs, "checkout_order_total_brl")
	if mf == nil || len(mf.GetMetric()) != 1 {
		t.Fatalf("order total histogram missing")
	}
	if sum := mf.GetMetric()[0].GetHistogram().GetSampleSum(); sum < 267.4 || sum > 267.41 {
		t.Fatalf("unexpected histogram sum %f", sum)
	}
}

func TestStorefrontExportsGatewayAndHTTPMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewStorefront(reg)
	m.ObserveGateway("create_preference", OutcomeSuccess, 120*time.Millisecond)
	m.ObserveHTTP("/api/v1/cart", "GET", 200, 5*time.Millisecond)
	m.ObserveHTTP("", "GET", 404, time.Millisecond)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	if got, err := fetchCounterValue(mfs, "payment_gateway_requests_total", map[string]string{"operation": "create_preference", "outcome": OutcomeSuccess}); err != nil || got != 1 {
		t.Fatalf("expected gateway counter=1, got %f err=%v", got, err)
	}
	if got, err := fetchCounterValue(mfs, "http_requests_total", map[string]string{"route": "/api/v1/cart", "status": "200"}); err != nil || got != 1 {
		t.Fatalf("expected http counter=1, got %f err=%v", got, err)
	}
	if got, err := fetchCounterValue(mfs, "http_requests_total", map[string]string{"route": "unknown", "status": "404"}); err != nil || got != 1 {
		t.Fatalf("expected unknown route counter=1, got %f err=%v", got, err)
	}
}

func TestNilStorefrontIsNoop(t *testing.T) {
	var m *Storefront
	m.ObserveCheckout("pix", OutcomeSuccess)
	m.ObserveGateway("x", OutcomeFailure, time.Second)
	m.ObserveHTTP("/", "GET", 200, time.Second)
	m.ObserveOrderTotal(decimal.NewFromInt(1))

	unregistered := NewStorefront(nil)
	unregistered.ObserveCheckout("pix", OutcomeSuccess)
}

func fetchCounterValue(mfs []*dto.MetricFamily, name string, labels map[string]string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabels(metric.GetLabel(), labels) {
			return metric.GetCounter().GetValue(), nil
		}
	}
	return 0, fmt.Errorf("metric %q missing labels %v", name, labels)
}

func findMetricFamily(mfs []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func matchesLabels(pairs []*dto.LabelPair, want map[string]string) bool {
	matched := 0
	for _, pair := range pairs {
		if v, ok := want[pair.GetName()]; ok && v == pair.GetValue() {
			matched++
		}
	}
	return matched == len(want)
}
