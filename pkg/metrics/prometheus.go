package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	barsStored  *prometheus.CounterVec
	snapshots   *prometheus.CounterVec
	regimeEvals *prometheus.CounterVec
	errorsTotal *prometheus.CounterVec
	lastClose   *prometheus.GaugeVec
	latency     *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		barsStored: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stocklens_bars_stored_total",
				Help: "Total number of bars written to the backend",
			},
			[]string{"market", "symbol"},
		),
		snapshots: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stocklens_snapshots_computed_total",
				Help: "Total number of indicator snapshots computed",
			},
			[]string{"symbol"},
		),
		regimeEvals: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stocklens_regime_evaluations_total",
				Help: "Regime evaluation outcomes",
			},
			[]string{"regime"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stocklens_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		lastClose: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "stocklens_last_close",
				Help: "Last recorded close for a symbol",
			},
			[]string{"symbol"},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "stocklens_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordBarStored records one bar written to the backend.
func (r *Recorder) RecordBarStored(market, symbol string) {
	r.barsStored.WithLabelValues(market, symbol).Inc()
}

// RecordSnapshotComputed records a computed indicator snapshot.
func (r *Recorder) RecordSnapshotComputed(symbol string) {
	r.snapshots.WithLabelValues(symbol).Inc()
}

// RecordRegime records a regime evaluation outcome.
func (r *Recorder) RecordRegime(regime string) {
	r.regimeEvals.WithLabelValues(regime).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLastClose records the last close for a symbol.
func (r *Recorder) RecordLastClose(symbol string, price float64) {
	r.lastClose.WithLabelValues(symbol).Set(price)
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
