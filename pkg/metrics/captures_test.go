package metrics

import (
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestCaptureMetricsExportsCountersAndHistograms(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewCaptureMetrics(reg)

	metrics.IncCapture("bd_final", "captured")
	metrics.IncCapture("bd_final", "insufficient_balance")
	metrics.ObserveCaptureAmount("bd_final", 125.50)
	metrics.IncLedgerEntry("charge_shipping_captured")
	metrics.ObserveHTTPRequest("POST", "/api/v1/orders/{orderID}/capture", "200", 42*time.Millisecond)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "payment_captures_total", "outcome", "captured"); err != nil {
		t.Fatalf("fetch captures: %v", err)
	} else if got != 1 {
		t.Fatalf("expected captured=1, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "payment_captures_total", "outcome", "insufficient_balance"); err != nil {
		t.Fatalf("fetch captures: %v", err)
	} else if got != 1 {
		t.Fatalf("expected insufficient_balance=1, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "wallet_ledger_entries_total", "entry_type", "charge_shipping_captured"); err != nil {
		t.Fatalf("fetch ledger entries: %v", err)
	} else if got != 1 {
		t.Fatalf("expected ledger entries=1, got %f", got)
	}

	if got, err := fetchHistogramSum(mfs, "payment_capture_amount", "payment_type", "bd_final"); err != nil {
		t.Fatalf("fetch capture amount: %v", err)
	} else if got != 125.50 {
		t.Fatalf("expected amount sum=125.50, got %f", got)
	}

	if got, err := fetchHistogramSum(mfs, "http_request_duration_seconds", "method", "POST"); err != nil {
		t.Fatalf("fetch http duration: %v", err)
	} else if got <= 0 {
		t.Fatalf("expected duration sum > 0, got %f", got)
	}
}

func TestCaptureMetricsNilSafe(t *testing.T) {
	var metrics *CaptureMetrics
	metrics.IncCapture("deposit", "captured")
	metrics.ObserveCaptureAmount("deposit", 10)
	metrics.IncLedgerEntry("topup_verified")

	unregistered := NewCaptureMetrics(nil)
	unregistered.IncCapture("deposit", "captured")
}

func fetchCounterValue(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetCounter().GetValue(), nil
		}
	}
	return 0, fmt.Errorf("metric %q missing label %s=%s", name, label, value)
}

func fetchHistogramSum(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetHistogram().GetSampleSum(), nil
		}
	}
	return 0, fmt.Errorf("histogram %q missing label %s=%s", name, label, value)
}

func findMetricFamily(mfs []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func matchesLabel(labels []*dto.LabelPair, name, value string) bool {
	for _, label := range labels {
		if label.GetName() == name && label.GetValue() == value {
			return true
		}
	}
	return false
}
