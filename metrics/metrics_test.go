package metrics

import (
	"testing"
	"time"

	dto "github.com/prometheus/client_model/go"
)

func TestNewRegistersAllMetrics(t *testing.T) {
	t.Parallel()
	r := New("test")

	r.OrdersSubmitted.Inc()
	r.RiskRejections.WithLabelValues("max_order_size").Inc()

	families, err := r.Registerer.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	if len(families) == 0 {
		t.Fatal("expected at least one registered metric family")
	}

	var found bool
	for _, f := range families {
		if f.GetName() == "test_orders_submitted_total" {
			found = true
			if f.GetMetric()[0].GetCounter().GetValue() != 1 {
				t.Errorf("expected orders_submitted_total=1, got %v", f.GetMetric()[0].GetCounter().GetValue())
			}
		}
	}
	if !found {
		t.Fatal("expected test_orders_submitted_total in gathered metrics")
	}
}

func TestNewDefaultsNamespaceWhenEmpty(t *testing.T) {
	t.Parallel()
	r := New("")
	families, err := r.Registerer.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	var found bool
	for _, f := range families {
		if f.GetName() == "hft_orders_submitted_total" {
			found = true
		}
	}
	if !found {
		t.Fatal("expected default namespace 'hft' to prefix metric names")
	}
}

func TestObserveSinceRecordsElapsed(t *testing.T) {
	t.Parallel()
	r := New("test2")
	start := time.Now().Add(-10 * time.Millisecond)
	ObserveSince(r.PreTradeLatency, start)

	families, err := r.Registerer.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	var hist *dto.Histogram
	for _, f := range families {
		if f.GetName() == "test2_pretrade_check_latency_seconds" {
			hist = f.GetMetric()[0].GetHistogram()
		}
	}
	if hist == nil {
		t.Fatal("expected pretrade_check_latency_seconds histogram")
	}
	if hist.GetSampleCount() != 1 {
		t.Fatalf("expected 1 sample recorded, got %d", hist.GetSampleCount())
	}
}
