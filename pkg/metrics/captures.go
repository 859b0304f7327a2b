package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CaptureMetrics records the capture engine's operational counters.
type CaptureMetrics struct {
	captures      *prometheus.CounterVec
	captureAmount *prometheus.HistogramVec
	ledgerEntries *prometheus.CounterVec
	httpDuration  *prometheus.HistogramVec
}

// NewCaptureMetrics registers the capture metrics on the provided registerer.
func NewCaptureMetrics(reg prometheus.Registerer) *CaptureMetrics {
	if reg == nil {
		return &CaptureMetrics{}
	}
	captures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_captures_total",
		Help: "Capture attempts by payment type and outcome.",
	}, []string{"payment_type", "outcome"})
	captureAmount := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "payment_capture_amount",
		Help:    "Applied capture amounts by payment type.",
		Buckets: prometheus.ExponentialBuckets(10, 4, 8),
	}, []string{"payment_type"})
	ledgerEntries := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "wallet_ledger_entries_total",
		Help: "Ledger entries appended by entry type.",
	}, []string{"entry_type"})
	httpDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency by route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
	reg.MustRegister(captures, captureAmount, ledgerEntries, httpDuration)
	return &CaptureMetrics{
		captures:      captures,
		captureAmount: captureAmount,
		ledgerEntries: ledgerEntries,
		httpDuration:  httpDuration,
	}
}

// IncCapture counts one capture attempt outcome.
func (m *CaptureMetrics) IncCapture(paymentType, outcome string) {
	if m == nil || m.captures == nil {
		return
	}
	m.captures.WithLabelValues(normalizeLabel(paymentType), normalizeLabel(outcome)).Inc()
}

// ObserveCaptureAmount records the applied amount of a committed capture.
func (m *CaptureMetrics) ObserveCaptureAmount(paymentType string, amount float64) {
	if m == nil || m.captureAmount == nil {
		return
	}
	m.captureAmount.WithLabelValues(normalizeLabel(paymentType)).Observe(amount)
}

// IncLedgerEntry counts one appended ledger entry.
func (m *CaptureMetrics) IncLedgerEntry(entryType string) {
	if m == nil || m.ledgerEntries == nil {
		return
	}
	m.ledgerEntries.WithLabelValues(normalizeLabel(entryType)).Inc()
}

// ObserveHTTPRequest records one served request.
func (m *CaptureMetrics) ObserveHTTPRequest(method, route, status string, duration time.Duration) {
	if m == nil || m.httpDuration == nil {
		return
	}
	m.httpDuration.WithLabelValues(normalizeLabel(method), normalizeLabel(route), normalizeLabel(status)).
		Observe(duration.Seconds())
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
