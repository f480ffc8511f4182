package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/exitwatch/prover/internal/store"
)

func TestObserveStoreStatsSetsGauges(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveStoreStats(store.Stats{Slots: 3, TrackedValidators: 7})

	if got := gaugeValue(t, m.StoreSlots); got != 3 {
		t.Fatalf("expected store_slots=3, got %v", got)
	}
	if got := gaugeValue(t, m.StoreTrackedValidators); got != 7 {
		t.Fatalf("expected store_tracked_validators=7, got %v", got)
	}
}

func TestObserveSubmissionIncrementsByMode(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveSubmission(SubmissionModeCurrent)
	m.ObserveSubmission(SubmissionModeCurrent)
	m.ObserveSubmission(SubmissionModeHistorical)

	if got := counterValue(t, m.TxSubmissionsTotal.WithLabelValues(string(SubmissionModeCurrent))); got != 2 {
		t.Fatalf("expected 2 current-mode submissions, got %v", got)
	}
	if got := counterValue(t, m.TxSubmissionsTotal.WithLabelValues(string(SubmissionModeHistorical))); got != 1 {
		t.Fatalf("expected 1 historical-mode submission, got %v", got)
	}
}

func gaugeValue(t *testing.T, g prometheus.Gauge) float64 {
	t.Helper()
	var m dto.Metric
	if err := g.Write(&m); err != nil {
		t.Fatalf("write gauge: %v", err)
	}
	return m.GetGauge().GetValue()
}

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("write counter: %v", err)
	}
	return m.GetCounter().GetValue()
}
