package metrics

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/shopspring/decimal"
)

func TestStorefrontMetricsExportsCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewStorefrontMetrics(reg)

	m.CartMutation("add", nil)
	m.CartMutation("add", nil)
	m.CartMutation("update", errors.New("not found"))
	m.WishlistMutation("remove", nil)
	m.OrderCreated("cod", decimal.NewFromInt(2150))
	m.ObserveRequest("/api/cart", 201, 15*time.Millisecond)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	checks := []struct {
		name   string
		labels map[string]string
		want   float64
	}{
		{"attire_cart_mutations_total", map[string]string{"op": "add", "outcome": "ok"}, 2},
		{"attire_cart_mutations_total", map[string]string{"op": "update", "outcome": "error"}, 1},
		{"attire_wishlist_mutations_total", map[string]string{"op": "remove", "outcome": "ok"}, 1},
		{"attire_orders_created_total", map[string]string{"payment_method": "cod"}, 1},
	}
	for _, c := range checks {
		got, err := counterValue(mfs, c.name, c.labels)
		if err != nil {
			t.Fatalf("%s: %v", c.name, err)
		}
		if got != c.want {
			t.Fatalf("%s%v expected %v got %v", c.name, c.labels, c.want, got)
		}
	}

	sum, err := histogramSum(mfs, "attire_order_total_amount")
	if err != nil {
		t.Fatalf("order total histogram: %v", err)
	}
	if sum != 2150 {
		t.Fatalf("expected order total sum 2150, got %v", sum)
	}
}

func TestNilMetricsAreNoops(t *testing.T) {
	var m *StorefrontMetrics
	m.CartMutation("add", nil)
	m.OrderCreated("cod", decimal.Zero)

	unregistered := NewStorefrontMetrics(nil)
	unregistered.WishlistMutation("add", nil)
	unregistered.ObserveRequest("", 500, time.Second)
}

func TestStatusClass(t *testing.T) {
	for status, want := range map[int]string{200: "2xx", 304: "3xx", 404: "4xx", 503: "5xx"} {
		if got := statusClass(status); got != want {
			t.Fatalf("status %d expected %s got %s", status, want, got)
		}
	}
}

func counterValue(mfs []*dto.MetricFamily, name string, labels map[string]string) (float64, error) {
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
		for _, metric := range mf.GetMetric() {
			if matchLabels(metric, labels) {
				return metric.GetCounter().GetValue(), nil
			}
		}
	}
	return 0, fmt.Errorf("metric %s%v not found", name, labels)
}

func histogramSum(mfs []*dto.MetricFamily, name string) (float64, error) {
	for _, mf := range mfs {
		if mf.GetName() == name && len(mf.GetMetric()) > 0 {
			return mf.GetMetric()[0].GetHistogram().GetSampleSum(), nil
		}
	}
	return 0, fmt.Errorf("histogram %s not found", name)
}

func matchLabels(metric *dto.Metric, labels map[string]string) bool {
	matched := 0
	for _, pair := range metric.GetLabel() {
		if want, ok := labels[pair.GetName()]; ok {
			if want != pair.GetValue() {
				return false
			}
			matched++
		}
	}
	return matched == len(labels)
}
