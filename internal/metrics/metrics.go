// Package metrics defines the prometheus collectors for the observability
// counters spec.md §4.5 and §6 name (store size, cycle sleeps, gas retries,
// submission counts). The core never serves HTTP for these itself (spec.md
// §1's scope boundary); the daemon entrypoint registers Metrics against a
// prometheus.Registry and hands that registry to an external HTTP handler.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/exitwatch/prover/internal/store"
)

// SleepReason labels cycle_sleep_total, distinguishing a routine no-op sleep
// (prev.root == latest.root) from one forced by a cycle-level failure
// (spec.md §4.9 "counts a sleep with reason error_recovery").
type SleepReason string

const (
	SleepReasonNoNewRoot     SleepReason = "no_new_root"
	SleepReasonIdle          SleepReason = "idle"
	SleepReasonErrorRecovery SleepReason = "error_recovery"
)

// SubmissionMode labels tx_submissions_total.
type SubmissionMode string

const (
	SubmissionModeCurrent    SubmissionMode = "current"
	SubmissionModeHistorical SubmissionMode = "historical"
)

// Metrics bundles the collectors registered against one prometheus.Registry.
type Metrics struct {
	StoreTrackedValidators prometheus.Gauge
	StoreSlots             prometheus.Gauge
	CycleSleepTotal        *prometheus.CounterVec
	GasHighFeeRetriesTotal prometheus.Gauge
	TxSubmissionsTotal     *prometheus.CounterVec
}

// New constructs Metrics and registers every collector against reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		StoreTrackedValidators: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "store_tracked_validators",
			Help: "Number of validator deadline entries currently tracked by the store.",
		}),
		StoreSlots: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "store_slots",
			Help: "Number of distinct deadline slots currently tracked by the store.",
		}),
		CycleSleepTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cycle_sleep_total",
			Help: "Number of cycle-driver sleeps, labeled by reason.",
		}, []string{"reason"}),
		GasHighFeeRetriesTotal: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "gas_high_fee_retries_total",
			Help: "Cumulative count of submissions retried due to HighGasFee.",
		}),
		TxSubmissionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tx_submissions_total",
			Help: "Number of successful proof submissions, labeled by mode (current/historical).",
		}, []string{"mode"}),
	}

	reg.MustRegister(
		m.StoreTrackedValidators,
		m.StoreSlots,
		m.CycleSleepTotal,
		m.GasHighFeeRetriesTotal,
		m.TxSubmissionsTotal,
	)
	return m
}

// ObserveStoreStats updates the store gauges from a store.Stats snapshot
// (spec.md §4.5 "Observability").
func (m *Metrics) ObserveStoreStats(s store.Stats) {
	m.StoreTrackedValidators.Set(float64(s.TrackedValidators))
	m.StoreSlots.Set(float64(s.Slots))
}

// ObserveSleep increments cycle_sleep_total{reason}.
func (m *Metrics) ObserveSleep(reason SleepReason) {
	m.CycleSleepTotal.WithLabelValues(string(reason)).Inc()
}

// ObserveHighGasFeeRetries sets the cumulative HighGasFee retry count, as
// reported by tx.Executor.HighGasFeeRetries().
func (m *Metrics) ObserveHighGasFeeRetries(total uint64) {
	m.GasHighFeeRetriesTotal.Set(float64(total))
}

// ObserveSubmission increments tx_submissions_total{mode} once per
// successfully submitted batch.
func (m *Metrics) ObserveSubmission(mode SubmissionMode) {
	m.TxSubmissionsTotal.WithLabelValues(string(mode)).Inc()
}
